/*
File: bridge_test.go
Description: Tests for adb output parsing and device selection.
*/

package adb

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseDevices tests `adb devices` output parsing
func TestParseDevices(t *testing.T) {
	out := "List of devices attached\n" +
		"emulator-5554\tdevice\n" +
		"R58M123ABC\tunauthorized\n" +
		"192.168.1.20:5555\toffline\n" +
		"\n"
	devices := ParseDevices(out)
	assert.Equal(t, []Device{
		{Serial: "emulator-5554", State: "device"},
		{Serial: "R58M123ABC", State: "unauthorized"},
		{Serial: "192.168.1.20:5555", State: "offline"},
	}, devices)
}

// TestParseDevicesEmpty tests parsing when nothing is attached
func TestParseDevicesEmpty(t *testing.T) {
	assert.Empty(t, ParseDevices("List of devices attached\n\n"))
	assert.Empty(t, ParseDevices(""))
}

// TestPrefix tests device selection argument construction
func TestPrefix(t *testing.T) {
	assert.Nil(t, New("").prefix())
	assert.Equal(t, []string{"-s", "emulator-5554"}, New("emulator-5554").prefix())
}
