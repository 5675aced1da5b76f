/*
File: bridge.go
Description: Device bridge for the MonkeyBrain harness. Wraps the adb binary for
shell command execution with optional device selection, device enumeration and
resolution, logcat capture, and device property collection. Exit codes and combined
output are surfaced to callers; the bridge never interprets the output itself.
*/

package adb

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Device is one row of `adb devices`.
type Device struct {
	Serial string `json:"serial"`
	State  string `json:"state"`
}

// Bridge issues adb invocations against a single device.
type Bridge struct {
	// ADB is the adb binary name or path.
	ADB string
	// DeviceID is the serial passed via -s. Empty means adb's default device.
	DeviceID string
}

// New returns a Bridge using the adb binary from PATH.
func New(deviceID string) *Bridge {
	return &Bridge{ADB: "adb", DeviceID: deviceID}
}

func (b *Bridge) prefix() []string {
	if b.DeviceID != "" {
		return []string{"-s", b.DeviceID}
	}
	return nil
}

// Exec runs one adb invocation and returns its exit code and combined output.
// A non-zero exit is not an error; err is non-nil only when the process could
// not be started or was killed before producing an exit code.
func (b *Bridge) Exec(ctx context.Context, args ...string) (int, string, error) {
	full := append(b.prefix(), args...)
	cmd := exec.CommandContext(ctx, b.ADB, full...)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	if err == nil {
		return 0, buf.String(), nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode(), buf.String(), nil
	}
	return -1, buf.String(), fmt.Errorf("%s %s: %w", b.ADB, strings.Join(full, " "), err)
}

// Shell runs `adb shell <args...>`.
func (b *Bridge) Shell(ctx context.Context, args ...string) (int, string, error) {
	return b.Exec(ctx, append([]string{"shell"}, args...)...)
}

// Devices lists attached devices from `adb devices`.
func (b *Bridge) Devices(ctx context.Context) ([]Device, error) {
	code, out, err := b.Exec(ctx, "devices")
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, fmt.Errorf("adb devices exited with code %d: %s", code, strings.TrimSpace(out))
	}
	return ParseDevices(out), nil
}

// ParseDevices parses `adb devices` output. The header line and empty lines are
// skipped; offline and unauthorized entries are kept so callers can report them.
func ParseDevices(out string) []Device {
	var devices []Device
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "List of devices") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		devices = append(devices, Device{Serial: fields[0], State: fields[1]})
	}
	return devices
}

// Resolve fills in DeviceID when it is unset: exactly one attached device in the
// "device" state is required, otherwise resolution fails.
func (b *Bridge) Resolve(ctx context.Context) error {
	if b.DeviceID != "" {
		return nil
	}
	devices, err := b.Devices(ctx)
	if err != nil {
		return err
	}
	var online []Device
	for _, d := range devices {
		if d.State == "device" {
			online = append(online, d)
		}
	}
	switch len(online) {
	case 0:
		return errors.New("no attached device found")
	case 1:
		b.DeviceID = online[0].Serial
		return nil
	default:
		serials := make([]string, len(online))
		for i, d := range online {
			serials[i] = d.Serial
		}
		return fmt.Errorf("multiple attached devices (%s); set device_id", strings.Join(serials, ", "))
	}
}

// CaptureLogcat dumps the device log (`logcat -d -v threadtime`) to a
// timestamped file under dir, tagged with the capture reason, and returns the
// file path.
func (b *Bridge) CaptureLogcat(ctx context.Context, dir, tag string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create logcat directory: %w", err)
	}
	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("logcat_%s_%s.log", tag, timestamp))

	code, out, err := b.Exec(ctx, "logcat", "-d", "-v", "threadtime")
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("logcat exited with code %d", code)
	}
	if err := os.WriteFile(path, []byte(out), 0644); err != nil {
		return "", fmt.Errorf("failed to write logcat file: %w", err)
	}
	return path, nil
}

// ClearLogcat empties the device log buffer so the next capture only contains
// events from the current invocation.
func (b *Bridge) ClearLogcat(ctx context.Context) error {
	code, out, err := b.Exec(ctx, "logcat", "-c")
	if err != nil {
		return err
	}
	if code != 0 {
		return fmt.Errorf("logcat -c exited with code %d: %s", code, strings.TrimSpace(out))
	}
	return nil
}

// DeviceInfo collects device properties via getprop.
func (b *Bridge) DeviceInfo(ctx context.Context) (map[string]string, error) {
	code, out, err := b.Shell(ctx, "getprop")
	if err != nil {
		return nil, err
	}
	if code != 0 {
		return nil, fmt.Errorf("getprop exited with code %d", code)
	}
	info := make(map[string]string)
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "[") {
			continue
		}
		parts := strings.SplitN(line, ": ", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.Trim(parts[0], "[]")
		val := strings.Trim(parts[1], "[]")
		info[key] = val
	}
	return info, nil
}

// Top returns one batch-mode snapshot of the device process list.
func (b *Bridge) Top(ctx context.Context) (string, error) {
	code, out, err := b.Shell(ctx, "top", "-b", "-n", "1")
	if err != nil {
		return "", err
	}
	if code != 0 {
		return "", fmt.Errorf("top exited with code %d", code)
	}
	return out, nil
}
