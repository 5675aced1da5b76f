/*
File: logger.go
Description: Logger construction for the harness. Builds a logrus logger
that writes the colored console stream and a timestamped plain-text log
file per session, pruning old session logs beyond a retention count.
*/

package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iuu77/MonkeyBrain/pkg/analysis"
	"github.com/iuu77/MonkeyBrain/pkg/monkey"
)

// Config controls logger construction.
type Config struct {
	// Level is a logrus level name, e.g. "debug" or "info".
	Level string
	// OutputDir receives the session log files. Empty disables file output.
	OutputDir string
	// Console enables the colored stdout stream.
	Console bool
	// MaxFiles is how many session logs to retain. Zero keeps all.
	MaxFiles int
}

// Logger wraps logrus with the session log file it writes to.
type Logger struct {
	*logrus.Logger
	file *os.File
}

// New builds a session logger. The file name carries a timestamp so
// consecutive runs never clobber each other.
func New(cfg Config) (*Logger, error) {
	base := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	base.SetLevel(level)

	var writers []io.Writer
	if cfg.Console {
		writers = append(writers, os.Stdout)
	}

	l := &Logger{Logger: base}
	if cfg.OutputDir != "" {
		if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
			return nil, fmt.Errorf("create log dir %s: %w", cfg.OutputDir, err)
		}
		name := fmt.Sprintf("monkeybrain_%s.log", time.Now().Format("20060102_150405"))
		f, err := os.Create(filepath.Join(cfg.OutputDir, name))
		if err != nil {
			return nil, fmt.Errorf("create log file: %w", err)
		}
		l.file = f
		writers = append(writers, f)
		if cfg.MaxFiles > 0 {
			pruneSessionLogs(cfg.OutputDir, cfg.MaxFiles)
		}
	}

	if len(writers) == 0 {
		base.SetOutput(io.Discard)
	} else {
		base.SetOutput(io.MultiWriter(writers...))
	}
	base.SetFormatter(&ConsoleFormatter{Timestamp: true, Colors: cfg.Console})
	return l, nil
}

// Close flushes and closes the session log file.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}

// Path returns the session log file path, empty when file output is off.
func (l *Logger) Path() string {
	if l.file == nil {
		return ""
	}
	return l.file.Name()
}

// pruneSessionLogs deletes the oldest session logs beyond keep.
func pruneSessionLogs(dir string, keep int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "monkeybrain_") && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, e.Name())
		}
	}
	// Timestamped names sort chronologically.
	sort.Strings(logs)
	for len(logs) > keep {
		os.Remove(filepath.Join(dir, logs[0]))
		logs = logs[1:]
	}
}

// LogInvocation records one completed exerciser invocation.
func (l *Logger) LogInvocation(inv monkey.Invocation) {
	entry := l.WithFields(logrus.Fields{
		"seq":       inv.Seq,
		"exit_code": inv.ExitCode,
		"duration":  inv.Duration,
	})
	if inv.ExitCode == 0 {
		entry.Info("Monkey invocation finished")
	} else {
		entry.Warn("Monkey invocation failed")
	}
}

// LogIssue records one deduplicated stability finding.
func (l *Logger) LogIssue(issue *analysis.Issue) {
	l.WithFields(logrus.Fields{
		"type":     issue.Type,
		"process":  issue.Process,
		"severity": issue.Severity,
		"count":    issue.Count,
	}).Warn("Stability issue detected")
}

// LogSession records the final result of a run.
func (l *Logger) LogSession(res *monkey.RunResult) {
	entry := l.WithFields(logrus.Fields{
		"session":     res.SessionID,
		"invocations": len(res.Invocations),
		"elapsed":     res.Elapsed,
	})
	if res.Success {
		entry.Info("Session passed")
	} else {
		entry.Warn("Session finished with failures")
	}
}
