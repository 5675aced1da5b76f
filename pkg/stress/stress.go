/*
File: stress.go
Description: Deliberately misbehaving workload generators used as known-bad
fixtures when exercising the harness end to end. Each worker leaks or burns
one resource class, runs until its context is cancelled and releases what
it held on the way out.
*/

package stress

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Stresser is a single resource-exhaustion worker.
type Stresser interface {
	// Name identifies the worker in logs and on the command line.
	Name() string
	// Run applies pressure until the context is cancelled or the worker
	// hits its own limit. A nil or context error means a clean stop.
	Run(ctx context.Context) error
}

// ErrDeliberateCrash is returned by the crash worker when its fuse burns
// down before cancellation.
var ErrDeliberateCrash = errors.New("deliberate crash fired")

// MemoryHog grows a heap buffer by ChunkMB every Interval up to MaxMB,
// then holds it until cancelled.
type MemoryHog struct {
	ChunkMB  int
	MaxMB    int
	Interval time.Duration
	Logger   *logrus.Logger

	mu   sync.Mutex
	held [][]byte
}

func (m *MemoryHog) Name() string { return "memory" }

func (m *MemoryHog) Run(ctx context.Context) error {
	defer m.release()
	ticker := time.NewTicker(m.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if m.HeldMB() >= m.MaxMB {
				continue
			}
			chunk := make([]byte, m.ChunkMB<<20)
			for i := 0; i < len(chunk); i += 4096 {
				chunk[i] = 1
			}
			m.mu.Lock()
			m.held = append(m.held, chunk)
			m.mu.Unlock()
			if m.Logger != nil {
				m.Logger.WithField("held_mb", m.HeldMB()).Debug("Memory hog grew")
			}
		}
	}
}

// HeldMB reports how much the hog currently retains.
func (m *MemoryHog) HeldMB() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, c := range m.held {
		total += len(c) >> 20
	}
	return total
}

func (m *MemoryHog) release() {
	m.mu.Lock()
	m.held = nil
	m.mu.Unlock()
	runtime.GC()
}

// ThreadHog parks Count goroutines, each pinned to its own OS thread,
// until cancelled.
type ThreadHog struct {
	Count  int
	Logger *logrus.Logger
}

func (t *ThreadHog) Name() string { return "thread" }

func (t *ThreadHog) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < t.Count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runtime.LockOSThread()
			defer runtime.UnlockOSThread()
			<-ctx.Done()
		}()
	}
	if t.Logger != nil {
		t.Logger.WithField("threads", t.Count).Debug("Thread hog parked")
	}
	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

// FDHog opens throwaway files until Max descriptors are held, then keeps
// them open until cancelled.
type FDHog struct {
	Max    int
	Dir    string
	Logger *logrus.Logger

	mu    sync.Mutex
	files []*os.File
}

func (f *FDHog) Name() string { return "fd" }

func (f *FDHog) Run(ctx context.Context) error {
	defer f.release()
	dir := f.Dir
	if dir == "" {
		dir = os.TempDir()
	}
	for i := 0; i < f.Max; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		file, err := os.CreateTemp(dir, "fdhog-*")
		if err != nil {
			return fmt.Errorf("open descriptor %d: %w", i+1, err)
		}
		os.Remove(file.Name())
		f.mu.Lock()
		f.files = append(f.files, file)
		f.mu.Unlock()
	}
	if f.Logger != nil {
		f.Logger.WithField("descriptors", f.Held()).Debug("FD hog saturated")
	}
	<-ctx.Done()
	return ctx.Err()
}

// Held reports how many descriptors are currently open.
func (f *FDHog) Held() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.files)
}

func (f *FDHog) release() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, file := range f.files {
		file.Close()
	}
	f.files = nil
}

// Crasher fails on purpose after Fuse elapses. Cancellation beats the
// fuse, so a supervising harness can always stop it cleanly.
type Crasher struct {
	Fuse   time.Duration
	Logger *logrus.Logger
}

func (c *Crasher) Name() string { return "crash" }

func (c *Crasher) Run(ctx context.Context) error {
	timer := time.NewTimer(c.Fuse)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		if c.Logger != nil {
			c.Logger.Error("Crash fuse expired")
		}
		return ErrDeliberateCrash
	}
}

// Defaults returns the full worker set with conservative limits.
func Defaults(logger *logrus.Logger) map[string]Stresser {
	return map[string]Stresser{
		"memory": &MemoryHog{ChunkMB: 8, MaxMB: 256, Interval: 200 * time.Millisecond, Logger: logger},
		"thread": &ThreadHog{Count: 64, Logger: logger},
		"fd":     &FDHog{Max: 512, Logger: logger},
		"crash":  &Crasher{Fuse: 5 * time.Second, Logger: logger},
	}
}

// Names lists available worker names in stable order.
func Names(set map[string]Stresser) []string {
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RunAll runs the selected workers concurrently until the context ends
// and returns the first non-cancellation error.
func RunAll(ctx context.Context, workers []Stresser, logger *logrus.Logger) error {
	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		first error
	)
	for _, w := range workers {
		wg.Add(1)
		go func(w Stresser) {
			defer wg.Done()
			if logger != nil {
				logger.WithField("worker", w.Name()).Info("Stress worker started")
			}
			err := w.Run(ctx)
			if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				mu.Lock()
				if first == nil {
					first = fmt.Errorf("worker %s: %w", w.Name(), err)
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return first
}
