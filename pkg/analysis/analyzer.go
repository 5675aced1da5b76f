/*
File: analyzer.go
Description: Logcat and monkey output analysis. Scans captured output for
crashes, ANRs and Java exceptions, deduplicates them by stack signature,
scores target stability and attaches remediation hints.
*/

package analysis

import (
	"bufio"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IssueType classifies a detected stability issue.
type IssueType string

const (
	IssueCrash     IssueType = "crash"
	IssueANR       IssueType = "anr"
	IssueException IssueType = "exception"
)

// Severity buckets issues for reporting.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Issue is a single deduplicated stability finding.
type Issue struct {
	ID          string    `json:"id"`
	Type        IssueType `json:"type"`
	Process     string    `json:"process"`
	Line        int       `json:"line"`
	Message     string    `json:"message"`
	Context     []string  `json:"context"`
	Signature   string    `json:"signature"`
	Severity    Severity  `json:"severity"`
	Count       int       `json:"count"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

// Report is the result of analyzing one output capture.
type Report struct {
	TargetPackage  string    `json:"target_package"`
	GeneratedAt    time.Time `json:"generated_at"`
	LinesScanned   int       `json:"lines_scanned"`
	EventsInjected int       `json:"events_injected"`
	Issues         []*Issue  `json:"issues"`
	StabilityScore int       `json:"stability_score"`
}

// Crashes returns only crash issues.
func (r *Report) Crashes() []*Issue { return r.byType(IssueCrash) }

// ANRs returns only ANR issues.
func (r *Report) ANRs() []*Issue { return r.byType(IssueANR) }

// Exceptions returns only exception issues.
func (r *Report) Exceptions() []*Issue { return r.byType(IssueException) }

func (r *Report) byType(t IssueType) []*Issue {
	var out []*Issue
	for _, is := range r.Issues {
		if is.Type == t {
			out = append(out, is)
		}
	}
	return out
}

var (
	anrRe   = regexp.MustCompile(`(?i)ANR in (\S+)`)
	crashRe = regexp.MustCompile(`(?i)CRASH:?\s*(\S+)`)
	// Threadtime logcat lines carry no process name, so the leading token
	// here is only a fallback; the class from exceptionClassRe is preferred.
	exceptionRe      = regexp.MustCompile(`(\S+)\s.*[Ee]xception`)
	exceptionClassRe = regexp.MustCompile(`([\w.$]+[Ee]xception)`)
	eventsRe         = regexp.MustCompile(`Events injected:\s*(\d+)`)
	stackLineRe      = regexp.MustCompile(`^\s*at\s+\S+`)
)

// monkeyInternalPatterns match noise the exerciser itself emits that is
// not a fault of the target and must not be counted against it.
var monkeyInternalPatterns = []string{
	"com.android.commands.monkey",
	"monkey aborted",
	"args for monkey",
}

// contextWindow is how many lines after a finding are kept as context,
// enough to hold the top of a typical stack trace.
const contextWindow = 12

// Analyzer scans monkey and logcat output for stability issues.
type Analyzer struct {
	TargetPackage string
}

// NewAnalyzer returns an Analyzer focused on the given package. Issues in
// the target's own process are escalated one severity level.
func NewAnalyzer(targetPackage string) *Analyzer {
	return &Analyzer{TargetPackage: targetPackage}
}

// AnalyzeFile analyzes a single output capture on disk.
func (a *Analyzer) AnalyzeFile(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture %s: %w", path, err)
	}
	defer f.Close()
	return a.Analyze(f)
}

// AnalyzeString analyzes output already held in memory.
func (a *Analyzer) AnalyzeString(s string) (*Report, error) {
	return a.Analyze(strings.NewReader(s))
}

// Analyze reads the capture line by line and produces a deduplicated
// report. Findings with the same type, process and top stack frame
// collapse into one issue with an incremented count.
func (a *Analyzer) Analyze(r io.Reader) (*Report, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan capture: %w", err)
	}

	report := &Report{
		TargetPackage: a.TargetPackage,
		GeneratedAt:   time.Now().UTC(),
		LinesScanned:  len(lines),
	}

	seen := make(map[string]*Issue)
	for i, line := range lines {
		if isMonkeyInternal(line) {
			if m := eventsRe.FindStringSubmatch(line); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					report.EventsInjected = n
				}
			}
			continue
		}
		if m := eventsRe.FindStringSubmatch(line); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil {
				report.EventsInjected = n
			}
			continue
		}

		var (
			typ     IssueType
			process string
		)
		switch {
		case crashRe.MatchString(line):
			typ = IssueCrash
			process = crashRe.FindStringSubmatch(line)[1]
		case anrRe.MatchString(line):
			typ = IssueANR
			process = anrRe.FindStringSubmatch(line)[1]
		case exceptionRe.MatchString(line) && !stackLineRe.MatchString(line):
			typ = IssueException
			process = exceptionRe.FindStringSubmatch(line)[1]
			if m := exceptionClassRe.FindStringSubmatch(line); m != nil {
				process = m[1]
			}
		default:
			continue
		}

		ctx := contextAfter(lines, i, contextWindow)
		sig := signature(typ, process, ctx)
		if existing, ok := seen[sig]; ok {
			existing.Count++
			continue
		}

		issue := &Issue{
			ID:          uuid.NewString(),
			Type:        typ,
			Process:     strings.TrimSuffix(process, ":"),
			Line:        i + 1,
			Message:     strings.TrimSpace(line),
			Context:     ctx,
			Signature:   sig,
			Severity:    a.severity(typ, process, ctx),
			Count:       1,
			Suggestions: suggestions(line, ctx),
		}
		seen[sig] = issue
		report.Issues = append(report.Issues, issue)
	}

	sortIssues(report.Issues)
	report.StabilityScore = stabilityScore(report)
	return report, nil
}

func isMonkeyInternal(line string) bool {
	lower := strings.ToLower(line)
	for _, p := range monkeyInternalPatterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// contextAfter returns up to n lines following index i, stopping early
// when the stack trace visibly ends.
func contextAfter(lines []string, i, n int) []string {
	var ctx []string
	blanks := 0
	for j := i + 1; j < len(lines) && len(ctx) < n; j++ {
		if strings.TrimSpace(lines[j]) == "" {
			blanks++
			if blanks > 1 {
				break
			}
			continue
		}
		ctx = append(ctx, lines[j])
	}
	return ctx
}

// signature derives a stable dedup key from the finding type, the owning
// process and the first stack frame in the context.
func signature(typ IssueType, process string, ctx []string) string {
	frame := ""
	for _, c := range ctx {
		if stackLineRe.MatchString(c) {
			frame = strings.TrimSpace(c)
			break
		}
	}
	h := sha1.Sum([]byte(string(typ) + "|" + process + "|" + frame))
	return hex.EncodeToString(h[:])[:16]
}

// severity escalates one level when the target package owns the process
// or appears in the trailing stack frames. Exception lines never name a
// process, so the context scan is what catches faults inside the target.
func (a *Analyzer) severity(typ IssueType, process string, ctx []string) Severity {
	base := SeverityLow
	switch typ {
	case IssueCrash:
		base = SeverityHigh
	case IssueANR:
		base = SeverityMedium
	}
	if a.TargetPackage == "" {
		return base
	}
	if strings.Contains(process, a.TargetPackage) {
		return escalate(base)
	}
	for _, c := range ctx {
		if strings.Contains(c, a.TargetPackage) {
			return escalate(base)
		}
	}
	return base
}

func escalate(s Severity) Severity {
	switch s {
	case SeverityLow:
		return SeverityMedium
	case SeverityMedium:
		return SeverityHigh
	}
	return SeverityHigh
}

func severityRank(s Severity) int {
	switch s {
	case SeverityHigh:
		return 0
	case SeverityMedium:
		return 1
	}
	return 2
}

func sortIssues(issues []*Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		ri, rj := severityRank(issues[i].Severity), severityRank(issues[j].Severity)
		if ri != rj {
			return ri < rj
		}
		return issues[i].Line < issues[j].Line
	})
}

// stabilityScore maps findings onto a 0-100 scale. Crashes weigh the
// most, exceptions the least.
func stabilityScore(r *Report) int {
	score := 100
	for _, is := range r.Issues {
		switch is.Type {
		case IssueCrash:
			score -= 15 * is.Count
		case IssueANR:
			score -= 8 * is.Count
		case IssueException:
			score -= 3 * is.Count
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// suggestions attaches remediation hints based on the failure class.
func suggestions(line string, ctx []string) []string {
	joined := line + "\n" + strings.Join(ctx, "\n")
	var out []string
	if strings.Contains(joined, "NullPointerException") {
		out = append(out, "Audit the frames below for unchecked null dereferences, often a missing lifecycle guard.")
	}
	if strings.Contains(joined, "OutOfMemoryError") {
		out = append(out, "Capture a heap dump under the same workload and look for bitmap or listener leaks.")
	}
	if strings.Contains(joined, "IndexOutOfBounds") {
		out = append(out, "Check adapter and list mutations for stale positions during rapid input.")
	}
	if strings.Contains(joined, "IllegalStateException") {
		out = append(out, "Verify fragment transactions and dialog dismissals against the current lifecycle state.")
	}
	if anrRe.MatchString(line) {
		out = append(out, "Move blocking work off the main thread; check for lock contention and slow binder calls.")
	}
	return out
}
