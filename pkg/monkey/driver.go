/*
File: driver.go
Description: Invocation driver for the MonkeyBrain stability harness. Repeatedly
invokes the monkey exerciser against the target package until the configured
minimum monitor duration has elapsed, recording each invocation's exit code and
output. Individual failures are detection signals and never stop the loop; only
an unstartable bridge command aborts the run.
*/

package monkey

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/iuu77/MonkeyBrain/pkg/config"
)

// Executor runs a single exerciser invocation and returns its exit code and
// combined output. err is non-nil only when the command could not be started
// or executed at all. *adb.Bridge satisfies this.
type Executor interface {
	Exec(ctx context.Context, args ...string) (int, string, error)
}

// ExecutionError means the exerciser command itself could not be run (bridge
// binary not found, device unreachable). It is fatal for the run.
type ExecutionError struct {
	Args []string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("exerciser invocation failed to start (%s): %v", strings.Join(e.Args, " "), e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// Invocation records the outcome of one exerciser execution.
type Invocation struct {
	Seq      int           `json:"seq"`
	Args     []string      `json:"args"`
	ExitCode int           `json:"exit_code"`
	Output   string        `json:"-"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
}

// RunResult is the ordered outcome of a complete driver run.
type RunResult struct {
	SessionID   string        `json:"session_id"`
	Invocations []Invocation  `json:"invocations"`
	Elapsed     time.Duration `json:"elapsed"`
	// Success is true when every invocation exited with code zero.
	Success bool `json:"success"`
}

// Driver owns the invocation loop. It has no shared mutable state beyond the
// elapsed-time clock and the result sequence, both of which it owns exclusively.
type Driver struct {
	cfg    *config.Config
	exec   Executor
	logger *logrus.Logger

	// now is the wall clock, injectable for tests.
	now func() time.Time

	// OnInvocation, when set, is called after each invocation is recorded.
	// The run command uses it to persist the monkey log and capture logcat.
	OnInvocation func(Invocation)
}

// NewDriver creates a driver for the given configuration and device bridge.
func NewDriver(cfg *config.Config, executor Executor, logger *logrus.Logger) *Driver {
	if logger == nil {
		logger = logrus.New()
	}
	return &Driver{
		cfg:    cfg,
		exec:   executor,
		logger: logger,
		now:    time.Now,
	}
}

// Run executes the invocation loop. It always performs at least one invocation
// and stops as soon as the elapsed wall-clock time meets or exceeds the
// configured monitor duration. A partial RunResult accompanies any error so
// completed invocations are never lost.
func (d *Driver) Run(ctx context.Context) (*RunResult, error) {
	if err := d.cfg.Validate(); err != nil {
		return nil, err
	}

	args := BuildMonkeyArgs(d.cfg)
	minDuration := time.Duration(d.cfg.MonitorDuration) * time.Second
	start := d.now()

	result := &RunResult{
		SessionID: uuid.NewString(),
		Success:   true,
	}

	d.logger.WithFields(logrus.Fields{
		"session_id":       result.SessionID,
		"target_package":   d.cfg.TargetPackage,
		"monkey_events":    d.cfg.MonkeyEvents,
		"monitor_duration": minDuration.String(),
		"args":             strings.Join(args, " "),
	}).Info("Starting monkey run")

	for seq := 1; ; seq++ {
		invStart := d.now()
		code, out, err := d.exec.Exec(ctx, args...)
		if err != nil {
			result.Elapsed = d.now().Sub(start)
			return result, &ExecutionError{Args: args, Err: err}
		}

		inv := Invocation{
			Seq:      seq,
			Args:     args,
			ExitCode: code,
			Output:   out,
			Started:  invStart,
			Duration: d.now().Sub(invStart),
		}
		result.Invocations = append(result.Invocations, inv)
		if code != 0 {
			// A crashing or hanging target is the detection signal we are
			// here for, not a driver fault.
			result.Success = false
			d.logger.WithFields(logrus.Fields{
				"seq":       seq,
				"exit_code": code,
			}).Warn("Monkey invocation exited non-zero")
		} else {
			d.logger.WithFields(logrus.Fields{
				"seq":      seq,
				"duration": inv.Duration.String(),
			}).Info("Monkey invocation completed")
		}
		if d.OnInvocation != nil {
			d.OnInvocation(inv)
		}

		result.Elapsed = d.now().Sub(start)
		if result.Elapsed >= minDuration {
			break
		}
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
	}

	d.logger.WithFields(logrus.Fields{
		"session_id":  result.SessionID,
		"invocations": len(result.Invocations),
		"elapsed":     result.Elapsed.String(),
		"success":     result.Success,
	}).Info("Monkey run finished")
	return result, nil
}
