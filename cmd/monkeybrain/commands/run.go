/*
File: run.go
Description: The run subcommand. Drives the monkey invocation loop,
monitors target memory on the device, captures logcat and turns the
session output into JSON and HTML reports.
*/

package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/iuu77/MonkeyBrain/pkg/adb"
	"github.com/iuu77/MonkeyBrain/pkg/analysis"
	"github.com/iuu77/MonkeyBrain/pkg/config"
	"github.com/iuu77/MonkeyBrain/pkg/monitoring"
	"github.com/iuu77/MonkeyBrain/pkg/monkey"
	"github.com/iuu77/MonkeyBrain/pkg/reporting"
)

// RunSession executes a full stability session.
func RunSession(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	if cerr := cfg.Validate(); cerr != nil {
		return cerr
	}

	logger, err := setupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", cfg.OutputDir, err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	bridge := adb.New(cfg.DeviceID)
	if err := bridge.Resolve(ctx); err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"device":  bridge.DeviceID,
		"package": cfg.TargetPackage,
	}).Info("Session starting")

	if info, err := bridge.DeviceInfo(ctx); err == nil {
		logger.WithFields(logrus.Fields{
			"model":   info["ro.product.model"],
			"release": info["ro.build.version.release"],
			"sdk":     info["ro.build.version.sdk"],
		}).Info("Device identified")
	}
	if err := bridge.ClearLogcat(ctx); err != nil {
		logger.WithError(err).Warn("Logcat clear failed, captures may carry stale entries")
	}

	monCtx, cancelMon := context.WithCancel(ctx)
	monitor := monitoring.NewMemoryMonitor(
		bridge,
		cfg.TargetPackage,
		time.Duration(cfg.Interval)*time.Second,
		cfg.Threshold,
		cfg.OutputDir,
		logger.Logger,
	)
	monDone := make(chan struct{})
	go func() {
		defer close(monDone)
		monitor.Run(monCtx)
	}()

	var capture strings.Builder
	driver := monkey.NewDriver(cfg, bridge, logger.Logger)
	driver.OnInvocation = func(inv monkey.Invocation) {
		logger.LogInvocation(inv)
		fmt.Fprintf(&capture, "=== invocation %d (exit %d) ===\n%s\n", inv.Seq, inv.ExitCode, inv.Output)
	}

	result, runErr := driver.Run(ctx)
	cancelMon()
	<-monDone

	if runErr != nil {
		var execErr *monkey.ExecutionError
		if errors.As(runErr, &execErr) {
			return execErr
		}
		if !errors.Is(runErr, context.Canceled) {
			return runErr
		}
		logger.Warn("Session interrupted, reporting partial results")
	}

	capturePath := filepath.Join(cfg.OutputDir, "monkey_capture.log")
	if err := os.WriteFile(capturePath, []byte(capture.String()), 0o644); err != nil {
		return fmt.Errorf("write capture: %w", err)
	}
	logcatPath, err := bridge.CaptureLogcat(ctx, cfg.OutputDir, "session")
	if err != nil {
		logger.WithError(err).Warn("Logcat capture failed")
	}

	report, err := analyzeSession(cfg, capturePath, logcatPath)
	if err != nil {
		return err
	}
	for _, issue := range report.Issues {
		logger.LogIssue(issue)
	}
	if err := report.Save(filepath.Join(cfg.OutputDir, "report.json")); err != nil {
		return err
	}

	gen, err := reporting.NewGenerator(cfg.OutputDir, logger.Logger)
	if err != nil {
		return err
	}
	if _, err := gen.Write(report, result); err != nil {
		return err
	}

	if samples := monitor.Samples(); len(samples) > 0 {
		logger.WithFields(logrus.Fields{
			"samples":    len(samples),
			"growth_pct": fmt.Sprintf("%.1f", monitor.GrowthPct()),
		}).Info("Memory monitoring finished")
	}

	logger.LogSession(result)
	fmt.Println()
	fmt.Print(report.Summary())

	if !result.Success {
		failed := 0
		for _, inv := range result.Invocations {
			if inv.ExitCode != 0 {
				failed++
			}
		}
		return fmt.Errorf("stability run failed: %d of %d invocations exited non-zero", failed, len(result.Invocations))
	}
	return nil
}

// analyzeSession scans the monkey capture and, when present, the logcat
// snapshot as one stream.
func analyzeSession(cfg *config.Config, capturePath, logcatPath string) (*analysis.Report, error) {
	readers := []io.Reader{}
	f, err := os.Open(capturePath)
	if err != nil {
		return nil, fmt.Errorf("open capture %s: %w", capturePath, err)
	}
	defer f.Close()
	readers = append(readers, f)

	if logcatPath != "" {
		if lf, err := os.Open(logcatPath); err == nil {
			defer lf.Close()
			readers = append(readers, strings.NewReader("\n"), lf)
		}
	}

	return analysis.NewAnalyzer(cfg.TargetPackage).Analyze(io.MultiReader(readers...))
}
