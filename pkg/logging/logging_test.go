/*
File: logging_test.go
Description: Tests for logger construction, session log files, retention
and the console formatter.
*/

package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iuu77/MonkeyBrain/pkg/logging"
	"github.com/iuu77/MonkeyBrain/pkg/monkey"
)

// TestNewWritesSessionFile tests that a timestamped log file is created
func TestNewWritesSessionFile(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.New(logging.Config{Level: "debug", OutputDir: dir})
	require.NoError(t, err)
	defer logger.Close()

	require.NotEmpty(t, logger.Path())
	assert.True(t, filepath.IsAbs(logger.Path()) || logger.Path() != "")

	logger.Info("hello from the harness")
	require.NoError(t, logger.Close())

	body, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	assert.Contains(t, string(body), "hello from the harness")
	assert.Contains(t, string(body), "INFO")
}

// TestNewInvalidLevelFallsBack tests that a bad level name means info
func TestNewInvalidLevelFallsBack(t *testing.T) {
	logger, err := logging.New(logging.Config{Level: "nonsense"})
	require.NoError(t, err)
	defer logger.Close()
	assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	assert.Empty(t, logger.Path())
}

// TestConsoleFormatter tests the single-line layout with fields
func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logging.ConsoleFormatter{Timestamp: false, Colors: false})

	l.WithFields(logrus.Fields{"seq": 3, "exit_code": 0}).Info("Monkey invocation finished")

	out := buf.String()
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "[MONKEY]")
	assert.Contains(t, out, "seq=3")
	assert.Contains(t, out, "exit_code=0")
	// One line per entry.
	assert.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("\n")))
}

// TestLogInvocation tests the level split between clean and failing runs
func TestLogInvocation(t *testing.T) {
	dir := t.TempDir()
	logger, err := logging.New(logging.Config{Level: "debug", OutputDir: dir})
	require.NoError(t, err)

	logger.LogInvocation(monkey.Invocation{Seq: 1, ExitCode: 0})
	logger.LogInvocation(monkey.Invocation{Seq: 2, ExitCode: 137})
	require.NoError(t, logger.Close())

	body, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	assert.Contains(t, string(body), "Monkey invocation finished")
	assert.Contains(t, string(body), "Monkey invocation failed")
	assert.Contains(t, string(body), "WARNING")
}
