/*
File: main.go
Description: Command-line interface for MonkeyBrain. Wires up the root
command, persistent flags and the run, analyze, summarize, devices,
stress and generate-config subcommands.
*/

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iuu77/MonkeyBrain/cmd/monkeybrain/commands"
)

var (
	// Logging configuration
	logLevel    string
	logDir      string
	logMaxFiles int
	noColor     bool

	// Run configuration
	deviceID      string
	targetPackage string
	monkeyEvents  int
	monitorDur    int
	interval      int
	threshold     float64
	outputDir     string
	monkeyParams  []string

	// Analyze configuration
	analyzeTarget string
	analyzeJSON   string

	// Summarize configuration
	summaryHTML string

	// Stress configuration
	stressWorkers  []string
	stressDuration time.Duration

	// Generate-config configuration
	forceWrite bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "monkeybrain",
		Short: "MonkeyBrain - Android stability harness built on the monkey exerciser",
		Long: `MonkeyBrain drives Android's monkey UI exerciser against a target package
over adb, repeats invocations until a monitoring window has elapsed, watches the
target's memory on the device and turns the captured output into deduplicated
crash, ANR and exception reports.`,
		Version: "1.0.0",
	}

	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Logging level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logDir, "log-dir", "./logs", "Log output directory (empty disables file logs)")
	rootCmd.PersistentFlags().IntVar(&logMaxFiles, "log-max-files", 10, "Maximum number of session log files to keep")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored console output")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_dir", rootCmd.PersistentFlags().Lookup("log-dir"))
	viper.BindPFlag("log_max_files", rootCmd.PersistentFlags().Lookup("log-max-files"))
	viper.BindPFlag("no_color", rootCmd.PersistentFlags().Lookup("no-color"))

	runCmd := &cobra.Command{
		Use:   "run [config.json]",
		Short: "Run a monkey stability session against a target package",
		Long: `Run monkey invocations in a loop until the configured monitoring duration
has elapsed. The target always receives at least one invocation. Exits zero only
when every invocation returned a zero exit code.`,
		Args: cobra.MaximumNArgs(1),
		RunE: commands.RunSession,
	}
	runCmd.Flags().StringVar(&deviceID, "device", "", "Device serial (empty = sole connected device)")
	runCmd.Flags().StringVar(&targetPackage, "package", "", "Target package name")
	runCmd.Flags().IntVar(&monkeyEvents, "events", 0, "Events per monkey invocation")
	runCmd.Flags().IntVar(&monitorDur, "duration", -1, "Monitoring duration in seconds")
	runCmd.Flags().IntVar(&interval, "interval", 0, "Memory sampling interval in seconds")
	runCmd.Flags().Float64Var(&threshold, "threshold", 0, "Memory growth threshold percent")
	runCmd.Flags().StringVar(&outputDir, "output", "", "Output directory for captures and reports")
	runCmd.Flags().StringSliceVar(&monkeyParams, "monkey-params", nil, "Extra monkey parameters as key=value pairs")

	viper.BindPFlag("flag_device", runCmd.Flags().Lookup("device"))
	viper.BindPFlag("flag_package", runCmd.Flags().Lookup("package"))
	viper.BindPFlag("flag_events", runCmd.Flags().Lookup("events"))
	viper.BindPFlag("flag_duration", runCmd.Flags().Lookup("duration"))
	viper.BindPFlag("flag_interval", runCmd.Flags().Lookup("interval"))
	viper.BindPFlag("flag_threshold", runCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("flag_output", runCmd.Flags().Lookup("output"))
	viper.BindPFlag("flag_monkey_params", runCmd.Flags().Lookup("monkey-params"))

	analyzeCmd := &cobra.Command{
		Use:   "analyze <capture.log> [more captures...]",
		Short: "Analyze captured monkey or logcat output for stability issues",
		Args:  cobra.MinimumNArgs(1),
		RunE:  commands.RunAnalyze,
	}
	analyzeCmd.Flags().StringVar(&analyzeTarget, "package", "", "Target package for severity escalation")
	analyzeCmd.Flags().StringVar(&analyzeJSON, "json", "", "Also write the report as JSON to this path")
	viper.BindPFlag("analyze_package", analyzeCmd.Flags().Lookup("package"))
	viper.BindPFlag("analyze_json", analyzeCmd.Flags().Lookup("json"))

	summarizeCmd := &cobra.Command{
		Use:   "summarize <report-dir>",
		Short: "Summarize a directory of HTML issue reports",
		Args:  cobra.ExactArgs(1),
		RunE:  commands.RunSummarize,
	}
	summarizeCmd.Flags().StringVar(&summaryHTML, "html", "", "Also write the summary as an HTML page to this path")
	viper.BindPFlag("summarize_html", summarizeCmd.Flags().Lookup("html"))

	devicesCmd := &cobra.Command{
		Use:   "devices",
		Short: "List connected Android devices",
		RunE:  commands.RunDevices,
	}

	stressCmd := &cobra.Command{
		Use:   "stress",
		Short: "Run local resource-exhaustion workers as a known-bad fixture",
		Long: `Run deliberately misbehaving workers (memory, thread, fd, crash) so the
harness has a reproducibly unstable workload to exercise end to end. Workers stop
cleanly on SIGINT or when the duration elapses.`,
		RunE: commands.RunStress,
	}
	stressCmd.Flags().StringSliceVar(&stressWorkers, "workers", []string{"memory"}, "Workers to run (memory, thread, fd, crash)")
	stressCmd.Flags().DurationVar(&stressDuration, "duration", 30*time.Second, "How long to keep the workers running")
	viper.BindPFlag("stress_workers", stressCmd.Flags().Lookup("workers"))
	viper.BindPFlag("stress_duration", stressCmd.Flags().Lookup("duration"))

	generateCmd := &cobra.Command{
		Use:   "generate-config [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  commands.RunGenerateConfig,
	}
	generateCmd.Flags().BoolVar(&forceWrite, "force", false, "Overwrite an existing file")
	viper.BindPFlag("flag_force", generateCmd.Flags().Lookup("force"))

	rootCmd.AddCommand(runCmd, analyzeCmd, summarizeCmd, devicesCmd, stressCmd, generateCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
