/*
File: report.go
Description: Serialization and terminal summary for analysis reports.
*/

package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Save writes the report as indented JSON.
func (r *Report) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	return nil
}

// LoadReport reads a previously saved JSON report.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse report %s: %w", path, err)
	}
	return &r, nil
}

// Summary renders a short human-readable digest for terminal output.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Target:          %s\n", r.TargetPackage)
	fmt.Fprintf(&b, "Lines scanned:   %d\n", r.LinesScanned)
	if r.EventsInjected > 0 {
		fmt.Fprintf(&b, "Events injected: %d\n", r.EventsInjected)
	}
	fmt.Fprintf(&b, "Stability score: %d/100\n", r.StabilityScore)
	fmt.Fprintf(&b, "Findings:        %d crash, %d ANR, %d exception\n",
		len(r.Crashes()), len(r.ANRs()), len(r.Exceptions()))
	for _, is := range r.Issues {
		fmt.Fprintf(&b, "  [%-6s] %-9s x%d  %s\n", is.Severity, is.Type, is.Count, is.Message)
	}
	return b.String()
}
