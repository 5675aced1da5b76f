/*
File: memory.go
Description: Device-side memory monitoring for the target package. Samples
resident memory through the device shell at a fixed interval, tracks growth
against the first sample and captures a logcat snapshot when growth crosses
the configured leak threshold.
*/

package monitoring

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DeviceSampler is the slice of the device bridge the monitor needs.
type DeviceSampler interface {
	Top(ctx context.Context) (string, error)
	CaptureLogcat(ctx context.Context, dir, tag string) (string, error)
}

// Sample is one resident-memory observation of the target process.
type Sample struct {
	Taken      time.Time `json:"taken"`
	ResidentKB int64     `json:"resident_kb"`
}

// MemoryMonitor polls the device for the target's resident memory.
type MemoryMonitor struct {
	dev          DeviceSampler
	pkg          string
	interval     time.Duration
	thresholdPct float64
	outputDir    string
	logger       *logrus.Logger

	mu       sync.Mutex
	samples  []Sample
	baseline int64
	captured bool
}

// NewMemoryMonitor builds a monitor for pkg. interval is the sampling
// period, thresholdPct the resident growth (percent over the first
// sample) that triggers a logcat capture into outputDir.
func NewMemoryMonitor(dev DeviceSampler, pkg string, interval time.Duration, thresholdPct float64, outputDir string, logger *logrus.Logger) *MemoryMonitor {
	if logger == nil {
		logger = logrus.New()
	}
	return &MemoryMonitor{
		dev:          dev,
		pkg:          pkg,
		interval:     interval,
		thresholdPct: thresholdPct,
		outputDir:    outputDir,
		logger:       logger,
	}
}

// Run samples until the context is cancelled. Sampling errors are logged
// and skipped; a dead target process between invocations is expected.
func (m *MemoryMonitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	m.sampleOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			m.sampleOnce(ctx)
		}
	}
}

func (m *MemoryMonitor) sampleOnce(ctx context.Context) {
	out, err := m.dev.Top(ctx)
	if err != nil {
		m.logger.WithError(err).Debug("Memory sample failed")
		return
	}
	res, ok := ParseTop(out, m.pkg)
	if !ok {
		m.logger.WithField("package", m.pkg).Debug("Target not present in process list")
		return
	}

	m.mu.Lock()
	if m.baseline == 0 {
		m.baseline = res
	}
	m.samples = append(m.samples, Sample{Taken: time.Now(), ResidentKB: res})
	growth := m.growthLocked()
	over := m.thresholdPct > 0 && growth > m.thresholdPct && !m.captured
	if over {
		m.captured = true
	}
	m.mu.Unlock()

	m.logger.WithFields(logrus.Fields{
		"package":     m.pkg,
		"resident_kb": res,
		"growth_pct":  fmt.Sprintf("%.1f", growth),
	}).Debug("Memory sample")

	if over {
		m.logger.WithFields(logrus.Fields{
			"package":    m.pkg,
			"growth_pct": fmt.Sprintf("%.1f", growth),
			"threshold":  m.thresholdPct,
		}).Warn("Resident memory growth exceeded threshold, capturing logcat")
		if path, err := m.dev.CaptureLogcat(ctx, m.outputDir, "memgrowth"); err != nil {
			m.logger.WithError(err).Error("Logcat capture failed")
		} else {
			m.logger.WithField("path", path).Info("Logcat snapshot written")
		}
	}
}

// Samples returns a copy of all observations so far.
func (m *MemoryMonitor) Samples() []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sample, len(m.samples))
	copy(out, m.samples)
	return out
}

// GrowthPct reports resident growth relative to the first sample.
func (m *MemoryMonitor) GrowthPct() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.growthLocked()
}

func (m *MemoryMonitor) growthLocked() float64 {
	if m.baseline == 0 || len(m.samples) == 0 {
		return 0
	}
	latest := m.samples[len(m.samples)-1].ResidentKB
	return float64(latest-m.baseline) / float64(m.baseline) * 100
}

var sizeTokenRe = regexp.MustCompile(`^(\d+(?:\.\d+)?)([KMGkmg]?)$`)

// ParseTop extracts the resident set size in KB for pkg from `top`
// output. Lines carry VIRT before RES, so with two or more size tokens
// the second is taken; single-column output uses the only one.
func ParseTop(out, pkg string) (int64, bool) {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, pkg) {
			continue
		}
		var sizes []int64
		for _, f := range strings.Fields(line) {
			if kb, err := parseSizeKB(f); err == nil {
				sizes = append(sizes, kb)
			}
		}
		switch {
		case len(sizes) >= 2:
			return sizes[1], true
		case len(sizes) == 1:
			return sizes[0], true
		}
	}
	return 0, false
}

// parseSizeKB accepts tokens like "345M", "1.2G", "45678K". Bare numbers
// are rejected so PID and priority columns do not match.
func parseSizeKB(tok string) (int64, error) {
	m := sizeTokenRe.FindStringSubmatch(tok)
	if m == nil || m[2] == "" {
		return 0, fmt.Errorf("not a size token: %q", tok)
	}
	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, err
	}
	switch strings.ToUpper(m[2]) {
	case "K":
		return int64(v), nil
	case "M":
		return int64(v * 1024), nil
	case "G":
		return int64(v * 1024 * 1024), nil
	}
	return 0, fmt.Errorf("unknown unit in %q", tok)
}
