/*
File: summarize.go
Description: Aggregates a directory of per-issue HTML reports into a
single summary by parsing the pages back, so summaries work across
sessions and on report directories produced elsewhere.
*/

package reporting

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// SummaryRow is one issue page reduced to its metadata.
type SummaryRow struct {
	File     string `json:"file"`
	Type     string `json:"type"`
	Process  string `json:"process"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

// Summary aggregates all issue pages found in a report directory.
type Summary struct {
	Rows       []SummaryRow   `json:"rows"`
	ByType     map[string]int `json:"by_type"`
	BySeverity map[string]int `json:"by_severity"`
}

// Summarize parses every issue_*.html page under dir. Pages that do not
// carry the expected markup are skipped, not failed on.
func Summarize(dir string) (*Summary, error) {
	pages, err := filepath.Glob(filepath.Join(dir, "issue_*.html"))
	if err != nil {
		return nil, fmt.Errorf("glob reports in %s: %w", dir, err)
	}
	sort.Strings(pages)

	sum := &Summary{
		ByType:     make(map[string]int),
		BySeverity: make(map[string]int),
	}
	for _, page := range pages {
		row, err := parseIssuePage(page)
		if err != nil {
			return nil, err
		}
		if row == nil {
			continue
		}
		sum.Rows = append(sum.Rows, *row)
		sum.ByType[row.Type] += row.Count
		sum.BySeverity[row.Severity] += row.Count
	}
	return sum, nil
}

func parseIssuePage(path string) (*SummaryRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report %s: %w", path, err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}

	typ := strings.TrimSpace(doc.Find(".issue-type").First().Text())
	if typ == "" {
		return nil, nil
	}
	count, err := strconv.Atoi(strings.TrimSpace(doc.Find(".issue-count").First().Text()))
	if err != nil || count < 1 {
		count = 1
	}
	return &SummaryRow{
		File:     filepath.Base(path),
		Type:     typ,
		Process:  strings.TrimSpace(doc.Find(".issue-process").First().Text()),
		Severity: strings.TrimSpace(doc.Find(".issue-severity").First().Text()),
		Count:    count,
	}, nil
}

// WriteHTML renders the summary as a standalone page, including the
// success page when no issues were found.
func (s *Summary) WriteHTML(path string) error {
	tmpl, err := template.New("summary").Parse(summaryTemplate)
	if err != nil {
		return fmt.Errorf("parse summary template: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create summary %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, s); err != nil {
		return fmt.Errorf("render summary: %w", err)
	}
	return nil
}

// Render formats the summary for terminal output.
func (s *Summary) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Issue pages: %d\n", len(s.Rows))
	if len(s.Rows) == 0 {
		return b.String()
	}
	b.WriteString("By type:\n")
	for _, k := range sortedKeys(s.ByType) {
		fmt.Fprintf(&b, "  %-10s %d\n", k, s.ByType[k])
	}
	b.WriteString("By severity:\n")
	for _, k := range sortedKeys(s.BySeverity) {
		fmt.Fprintf(&b, "  %-10s %d\n", k, s.BySeverity[k])
	}
	b.WriteString("Pages:\n")
	for _, r := range s.Rows {
		fmt.Fprintf(&b, "  %-9s %-7s x%-3d %-30s %s\n", r.Type, r.Severity, r.Count, r.Process, r.File)
	}
	return b.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
