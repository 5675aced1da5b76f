/*
File: generator.go
Description: Writes per-issue HTML reports and a session overview page
from an analysis report and a completed run.
*/

package reporting

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/iuu77/MonkeyBrain/pkg/analysis"
	"github.com/iuu77/MonkeyBrain/pkg/monkey"
)

// Generator renders HTML reports into an output directory.
type Generator struct {
	outputDir string
	logger    *logrus.Logger
	issueTmpl *template.Template
	sessTmpl  *template.Template
}

// NewGenerator parses the report templates and ensures outputDir exists.
func NewGenerator(outputDir string, logger *logrus.Logger) (*Generator, error) {
	if logger == nil {
		logger = logrus.New()
	}
	issueTmpl, err := template.New("issue").Parse(issueTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse issue template: %w", err)
	}
	sessTmpl, err := template.New("session").Parse(sessionTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse session template: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create report dir %s: %w", outputDir, err)
	}
	return &Generator{
		outputDir: outputDir,
		logger:    logger,
		issueTmpl: issueTmpl,
		sessTmpl:  sessTmpl,
	}, nil
}

type issueRow struct {
	*analysis.Issue
	File string
}

type sessionData struct {
	SessionID      string
	TargetPackage  string
	StabilityScore int
	Success        bool
	Invocations    []monkey.Invocation
	Issues         []issueRow
}

// Write renders one HTML page per issue plus a session overview page and
// returns the paths written, overview first.
func (g *Generator) Write(report *analysis.Report, result *monkey.RunResult) ([]string, error) {
	var rows []issueRow
	var paths []string
	for _, is := range report.Issues {
		name := fmt.Sprintf("issue_%s.html", is.Signature)
		if err := g.render(g.issueTmpl, name, is); err != nil {
			return paths, err
		}
		rows = append(rows, issueRow{Issue: is, File: name})
		paths = append(paths, filepath.Join(g.outputDir, name))
	}

	data := sessionData{
		SessionID:      result.SessionID,
		TargetPackage:  report.TargetPackage,
		StabilityScore: report.StabilityScore,
		Success:        result.Success,
		Invocations:    result.Invocations,
		Issues:         rows,
	}
	const overview = "session.html"
	if err := g.render(g.sessTmpl, overview, data); err != nil {
		return paths, err
	}
	paths = append([]string{filepath.Join(g.outputDir, overview)}, paths...)

	g.logger.WithFields(logrus.Fields{
		"session": result.SessionID,
		"reports": len(paths),
		"dir":     g.outputDir,
	}).Info("HTML reports written")
	return paths, nil
}

func (g *Generator) render(tmpl *template.Template, name string, data interface{}) error {
	path := filepath.Join(g.outputDir, name)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report %s: %w", path, err)
	}
	defer f.Close()
	if err := tmpl.Execute(f, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}
