/*
File: utils.go
Description: Shared helpers for the CLI commands: configuration loading
with flag overrides and logger construction.
*/

package commands

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/iuu77/MonkeyBrain/pkg/config"
	"github.com/iuu77/MonkeyBrain/pkg/logging"
)

// DefaultConfigPath is consulted when no config argument is given. When
// it does not exist either, built-in defaults apply.
const DefaultConfigPath = "configs/monkey_config.json"

// loadConfig resolves the effective configuration: the config file named
// by the positional argument (or the default path when present), with
// any set command-line flags layered on top.
func loadConfig(args []string) (*config.Config, error) {
	path := ""
	switch {
	case len(args) > 0:
		path = args[0]
	default:
		if _, err := os.Stat(DefaultConfigPath); err == nil {
			path = DefaultConfigPath
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	} else {
		cfg = config.Default()
	}

	applyOverrides(cfg)
	return cfg, nil
}

// applyOverrides layers explicitly set flags over the file values.
func applyOverrides(cfg *config.Config) {
	if v := viper.GetString("flag_device"); v != "" {
		cfg.DeviceID = v
	}
	if v := viper.GetString("flag_package"); v != "" {
		cfg.TargetPackage = v
	}
	if v := viper.GetInt("flag_events"); v != 0 {
		cfg.MonkeyEvents = v
	}
	if v := viper.GetInt("flag_duration"); v >= 0 {
		cfg.MonitorDuration = v
	}
	if v := viper.GetInt("flag_interval"); v != 0 {
		cfg.Interval = v
	}
	if v := viper.GetFloat64("flag_threshold"); v != 0 {
		cfg.Threshold = v
	}
	if v := viper.GetString("flag_output"); v != "" {
		cfg.OutputDir = v
	}
	for _, kv := range viper.GetStringSlice("flag_monkey_params") {
		key, val, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if cfg.MonkeyParams == nil {
			cfg.MonkeyParams = make(map[string]interface{})
		}
		cfg.MonkeyParams[key] = coerceParam(val)
	}
}

// coerceParam keeps flag-provided parameter values typed the way a JSON
// config would type them.
func coerceParam(val string) interface{} {
	if b, err := strconv.ParseBool(val); err == nil {
		return b
	}
	if n, err := strconv.Atoi(val); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(val, 64); err == nil {
		return f
	}
	return val
}

// setupLogging builds the session logger from the persistent flags.
func setupLogging() (*logging.Logger, error) {
	logger, err := logging.New(logging.Config{
		Level:     viper.GetString("log_level"),
		OutputDir: viper.GetString("log_dir"),
		Console:   true,
		MaxFiles:  viper.GetInt("log_max_files"),
	})
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}
	if viper.GetBool("no_color") {
		logger.SetFormatter(&logging.ConsoleFormatter{Timestamp: true, Colors: false})
	}
	return logger, nil
}
