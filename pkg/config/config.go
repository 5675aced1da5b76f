/*
File: config.go
Description: Run configuration for the MonkeyBrain stability harness. Loads the JSON
configuration (device, event budget, monitor duration, monkey parameters), applies
defaults matching the bundled default_config.json, and validates it before any
device invocation happens.
*/

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config is the externally supplied run configuration. It is immutable for the
// duration of a run.
type Config struct {
	// DeviceID is the adb serial of the target device. Empty means "the sole
	// attached device"; resolution fails when zero or multiple are attached.
	DeviceID string `json:"device_id" mapstructure:"device_id"`

	// MonkeyEvents is the number of synthetic UI events per single monkey
	// invocation.
	MonkeyEvents int `json:"monkey_events" mapstructure:"monkey_events"`

	// MonitorDuration is the minimum number of seconds the overall run must
	// span. The driver keeps issuing invocations until it is met or exceeded.
	MonitorDuration int `json:"monitor_duration" mapstructure:"monitor_duration"`

	// Interval is the delay in seconds between memory checks while monitoring.
	Interval int `json:"interval" mapstructure:"interval"`

	// Threshold is the memory growth percentage over baseline that counts as a
	// leak.
	Threshold float64 `json:"threshold" mapstructure:"threshold"`

	// TargetPackage is the application under test.
	TargetPackage string `json:"target_package" mapstructure:"target_package"`

	// MonkeyParams maps monkey parameter names to values. Each entry becomes
	// exactly one command-line flag; see monkey.BuildParamArgs for the mapping.
	MonkeyParams map[string]interface{} `json:"monkey_params" mapstructure:"monkey_params"`

	// OutputDir is where monkey logs, logcat captures and reports are written.
	OutputDir string `json:"output_dir" mapstructure:"output_dir"`
}

// ConfigError describes a malformed or missing configuration field. It is
// reported to the operator before any invocation is attempted.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

// Default returns the bundled configuration, mirroring default_config.json.
func Default() *Config {
	return &Config{
		MonkeyEvents:    600,
		MonitorDuration: 300,
		Interval:        30,
		Threshold:       50,
		TargetPackage:   "com.android.chrome",
		MonkeyParams: map[string]interface{}{
			"throttle":               100,
			"ignore_crashes":         true,
			"ignore_timeouts":        true,
			"monitor_native_crashes": true,
			"verbose":                3,
		},
		OutputDir: "./monkey_output",
	}
}

// Load reads the configuration file at path (JSON) on top of the defaults.
// An empty path skips the file layer. Precedence, lowest to highest:
// built-in defaults, config file, MONKEYBRAIN_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix("MONKEYBRAIN")
	v.AutomaticEnv()

	// Every key must be known to viper up front, otherwise AutomaticEnv
	// never consults the environment for it during Unmarshal.
	defaults := Default()
	v.SetDefault("device_id", defaults.DeviceID)
	v.SetDefault("monkey_events", defaults.MonkeyEvents)
	v.SetDefault("monitor_duration", defaults.MonitorDuration)
	v.SetDefault("interval", defaults.Interval)
	v.SetDefault("threshold", defaults.Threshold)
	v.SetDefault("target_package", defaults.TargetPackage)
	v.SetDefault("monkey_params", defaults.MonkeyParams)
	v.SetDefault("output_dir", defaults.OutputDir)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := new(Config)
	// Environment values arrive as strings; decode them weakly so
	// MONKEYBRAIN_MONKEY_EVENTS=250 lands in an int field.
	weak := func(dc *mapstructure.DecoderConfig) { dc.WeaklyTypedInput = true }
	if err := v.Unmarshal(cfg, weak); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration invariants the driver depends on.
// It returns a *ConfigError describing the first violation found.
func (c *Config) Validate() error {
	if c.TargetPackage == "" {
		return &ConfigError{Field: "target_package", Reason: "must not be empty"}
	}
	if c.MonkeyEvents <= 0 {
		return &ConfigError{Field: "monkey_events", Reason: "must be positive"}
	}
	if c.MonitorDuration < 0 {
		return &ConfigError{Field: "monitor_duration", Reason: "must not be negative"}
	}
	return nil
}

// WriteDefault writes the bundled configuration to path as indented JSON,
// so operators can edit it instead of starting from scratch.
func WriteDefault(path string) error {
	data, err := json.MarshalIndent(Default(), "", "    ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}
