/*
File: args_test.go
Description: Tests for monkey command-line construction. Covers the
parameter-to-flag mapping, verbose expansion, extra argument passthrough
and full command assembly.
*/

package monkey_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iuu77/MonkeyBrain/pkg/config"
	"github.com/iuu77/MonkeyBrain/pkg/monkey"
)

// TestBuildParamArgsBooleans tests presence/absence flag mapping
func TestBuildParamArgsBooleans(t *testing.T) {
	args := monkey.BuildParamArgs(map[string]interface{}{
		"ignore_crashes":  true,
		"ignore_timeouts": false,
	})
	assert.Equal(t, []string{"--ignore-crashes"}, args)
}

// TestBuildParamArgsValues tests key/value flag mapping and underscore conversion
func TestBuildParamArgsValues(t *testing.T) {
	args := monkey.BuildParamArgs(map[string]interface{}{
		"throttle":   100,
		"pct_touch":  40,
		"kill_delay": 1.5,
		"pkg_suffix": "debug",
	})
	assert.Equal(t, []string{
		"--kill-delay", "1.5",
		"--pct-touch", "40",
		"--pkg-suffix", "debug",
		"--throttle", "100",
	}, args)
}

// TestBuildParamArgsVerbose tests that verbose levels expand to repeated -v
func TestBuildParamArgsVerbose(t *testing.T) {
	args := monkey.BuildParamArgs(map[string]interface{}{
		"verbose":  3,
		"throttle": 100,
	})
	assert.Equal(t, []string{"--throttle", "100", "-v", "-v", "-v"}, args)

	// Float-typed levels come from JSON decoding and must behave the same.
	args = monkey.BuildParamArgs(map[string]interface{}{"verbose": float64(2)})
	assert.Equal(t, []string{"-v", "-v"}, args)

	args = monkey.BuildParamArgs(map[string]interface{}{"verbose": 0})
	assert.Empty(t, args)
}

// TestBuildParamArgsNil tests that nil values become bare flags
func TestBuildParamArgsNil(t *testing.T) {
	args := monkey.BuildParamArgs(map[string]interface{}{"dbg_no_events": nil})
	assert.Equal(t, []string{"--dbg-no-events"}, args)
}

// TestBuildParamArgsExtraArgs tests that extra_args tokens come last
func TestBuildParamArgsExtraArgs(t *testing.T) {
	args := monkey.BuildParamArgs(map[string]interface{}{
		"extra_args": "--setup scriptfile -f /sdcard/monkey.script",
		"throttle":   50,
	})
	assert.Equal(t, []string{
		"--throttle", "50",
		"--setup", "scriptfile", "-f", "/sdcard/monkey.script",
	}, args)
}

// TestBuildParamArgsDeterministic tests that output order is stable
func TestBuildParamArgsDeterministic(t *testing.T) {
	params := map[string]interface{}{
		"throttle":       100,
		"ignore_crashes": true,
		"pct_motion":     25,
	}
	first := monkey.BuildParamArgs(params)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, monkey.BuildParamArgs(params))
	}
}

// TestBuildMonkeyArgs tests full command assembly
func TestBuildMonkeyArgs(t *testing.T) {
	cfg := &config.Config{
		TargetPackage: "com.example.app",
		MonkeyEvents:  600,
		MonkeyParams: map[string]interface{}{
			"throttle":       100,
			"ignore_crashes": true,
			"verbose":        2,
		},
	}
	assert.Equal(t, []string{
		"shell", "monkey", "-p", "com.example.app",
		"--ignore-crashes", "--throttle", "100", "-v", "-v",
		"600",
	}, monkey.BuildMonkeyArgs(cfg))
}

// TestBuildMonkeyArgsNoParams tests assembly with an empty parameter map
func TestBuildMonkeyArgsNoParams(t *testing.T) {
	cfg := &config.Config{TargetPackage: "com.example.app", MonkeyEvents: 50}
	assert.Equal(t,
		[]string{"shell", "monkey", "-p", "com.example.app", "50"},
		monkey.BuildMonkeyArgs(cfg))
}
