/*
File: summarize.go
Description: The summarize subcommand. Aggregates a directory of HTML
issue reports into a terminal summary.
*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iuu77/MonkeyBrain/pkg/reporting"
)

// RunSummarize summarizes the issue pages under the given directory.
func RunSummarize(cmd *cobra.Command, args []string) error {
	summary, err := reporting.Summarize(args[0])
	if err != nil {
		return err
	}
	if out := viper.GetString("summarize_html"); out != "" {
		if err := summary.WriteHTML(out); err != nil {
			return err
		}
		fmt.Printf("Summary page written to %s\n", out)
	}
	fmt.Print(summary.Render())
	return nil
}
