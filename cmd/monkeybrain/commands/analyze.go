/*
File: analyze.go
Description: The analyze subcommand. Scans existing captures without
running a session.
*/

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iuu77/MonkeyBrain/pkg/analysis"
)

// RunAnalyze analyzes one or more capture files as a single stream.
func RunAnalyze(cmd *cobra.Command, args []string) error {
	analyzer := analysis.NewAnalyzer(viper.GetString("analyze_package"))

	readers := make([]io.Reader, 0, len(args))
	for _, path := range args {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open capture %s: %w", path, err)
		}
		defer f.Close()
		readers = append(readers, f)
	}

	report, err := analyzer.Analyze(io.MultiReader(readers...))
	if err != nil {
		return err
	}

	if out := viper.GetString("analyze_json"); out != "" {
		if err := report.Save(out); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", out)
	}

	fmt.Print(report.Summary())
	return nil
}
