/*
File: stress.go
Description: The stress subcommand. Runs local resource-exhaustion
workers so a run of the harness has a reproducibly unstable workload.
*/

package commands

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iuu77/MonkeyBrain/pkg/stress"
)

// RunStress runs the selected workers until the duration elapses or a
// signal arrives.
func RunStress(cmd *cobra.Command, args []string) error {
	logger, err := setupLogging()
	if err != nil {
		return err
	}
	defer logger.Close()

	available := stress.Defaults(logger.Logger)
	var selected []stress.Stresser
	for _, name := range viper.GetStringSlice("stress_workers") {
		w, ok := available[strings.TrimSpace(name)]
		if !ok {
			return fmt.Errorf("unknown stress worker %q, available: %s",
				name, strings.Join(stress.Names(available), ", "))
		}
		selected = append(selected, w)
	}
	if len(selected) == 0 {
		return fmt.Errorf("no stress workers selected")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, viper.GetDuration("stress_duration"))
	defer cancel()

	if err := stress.RunAll(ctx, selected, logger.Logger); err != nil {
		return err
	}
	logger.Info("Stress workers stopped cleanly")
	return nil
}
