/*
File: reporting_test.go
Description: Tests for HTML report generation and the summarizer that
parses the pages back.
*/

package reporting_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iuu77/MonkeyBrain/pkg/analysis"
	"github.com/iuu77/MonkeyBrain/pkg/monkey"
	"github.com/iuu77/MonkeyBrain/pkg/reporting"
)

const capture = `// CRASH: com.example.app (pid 4242)
// java.lang.NullPointerException: boom
06-01 12:00:01.000  1000  2000 E ActivityManager: ANR in com.example.app
`

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func sessionFixture(t *testing.T) (*analysis.Report, *monkey.RunResult) {
	t.Helper()
	report, err := analysis.NewAnalyzer("com.example.app").AnalyzeString(capture)
	require.NoError(t, err)
	require.NotEmpty(t, report.Issues)

	result := &monkey.RunResult{
		SessionID: "0f2e7a1c-test",
		Invocations: []monkey.Invocation{
			{Seq: 1, ExitCode: 0, Started: time.Now(), Duration: time.Minute},
			{Seq: 2, ExitCode: 137, Started: time.Now(), Duration: 30 * time.Second},
		},
		Elapsed: 90 * time.Second,
		Success: false,
	}
	return report, result
}

// TestGeneratorWrite tests that one page per issue plus an overview appear
func TestGeneratorWrite(t *testing.T) {
	dir := t.TempDir()
	report, result := sessionFixture(t)

	gen, err := reporting.NewGenerator(dir, quietLogger())
	require.NoError(t, err)
	paths, err := gen.Write(report, result)
	require.NoError(t, err)

	require.Len(t, paths, len(report.Issues)+1)
	assert.Equal(t, "session.html", filepath.Base(paths[0]))
	for _, p := range paths {
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Greater(t, info.Size(), int64(0))
	}

	// The overview names the session and its verdict.
	body, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), "0f2e7a1c-test")
	assert.Contains(t, string(body), "FAIL")
	assert.Contains(t, string(body), "137")
}

// TestSummarizeRoundTrip tests that generated pages summarize back correctly
func TestSummarizeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	report, result := sessionFixture(t)

	gen, err := reporting.NewGenerator(dir, quietLogger())
	require.NoError(t, err)
	_, err = gen.Write(report, result)
	require.NoError(t, err)

	summary, err := reporting.Summarize(dir)
	require.NoError(t, err)
	require.Len(t, summary.Rows, len(report.Issues))
	assert.Equal(t, 1, summary.ByType["crash"])
	assert.Equal(t, 1, summary.ByType["anr"])

	rendered := summary.Render()
	assert.Contains(t, rendered, "crash")
	assert.Contains(t, rendered, "com.example.app")
}

// TestSummarizeEmptyDir tests summarizing a directory with no issue pages
func TestSummarizeEmptyDir(t *testing.T) {
	summary, err := reporting.Summarize(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, summary.Rows)
	assert.True(t, strings.Contains(summary.Render(), "Issue pages: 0"))
}

// TestSummaryWriteHTML tests the standalone summary page, including the
// success variant
func TestSummaryWriteHTML(t *testing.T) {
	dir := t.TempDir()
	report, result := sessionFixture(t)

	gen, err := reporting.NewGenerator(dir, quietLogger())
	require.NoError(t, err)
	_, err = gen.Write(report, result)
	require.NoError(t, err)

	summary, err := reporting.Summarize(dir)
	require.NoError(t, err)
	page := filepath.Join(dir, "summary.html")
	require.NoError(t, summary.WriteHTML(page))

	body, err := os.ReadFile(page)
	require.NoError(t, err)
	assert.Contains(t, string(body), "com.example.app")

	// An empty summary renders the success page.
	empty, err := reporting.Summarize(t.TempDir())
	require.NoError(t, err)
	successPage := filepath.Join(dir, "empty.html")
	require.NoError(t, empty.WriteHTML(successPage))
	body, err = os.ReadFile(successPage)
	require.NoError(t, err)
	assert.Contains(t, string(body), "No stability issues detected")
}

// TestSummarizeSkipsForeignFiles tests that unrelated HTML is ignored
func TestSummarizeSkipsForeignFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "issue_bogus.html"),
		[]byte("<html><body><p>not a report</p></body></html>"), 0o644))

	summary, err := reporting.Summarize(dir)
	require.NoError(t, err)
	assert.Empty(t, summary.Rows)
}
