/*
File: templates.go
Description: HTML templates for issue and session reports. The class names
on the metadata fields are the contract the summarizer selects on.
*/

package reporting

const issueTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Type}} in {{.Process}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2em; color: #1a1a1a; }
h1 { font-size: 1.4em; }
.meta { margin: 1em 0; }
.meta span { display: inline-block; margin-right: 2em; }
.severity-high { color: #c0392b; font-weight: bold; }
.severity-medium { color: #d68910; font-weight: bold; }
.severity-low { color: #2874a6; }
pre { background: #f4f4f4; padding: 1em; overflow-x: auto; font-size: 0.85em; }
ul.suggestions li { margin: 0.4em 0; }
</style>
</head>
<body>
<h1><span class="issue-type">{{.Type}}</span> in <span class="issue-process">{{.Process}}</span></h1>
<div class="meta">
<span>Severity: <span class="issue-severity severity-{{.Severity}}">{{.Severity}}</span></span>
<span>Occurrences: <span class="issue-count">{{.Count}}</span></span>
<span>Line: {{.Line}}</span>
</div>
<h2>Message</h2>
<pre class="issue-message">{{.Message}}</pre>
{{if .Context}}
<h2>Context</h2>
<pre class="issue-context">{{range .Context}}{{.}}
{{end}}</pre>
{{end}}
{{if .Suggestions}}
<h2>Suggestions</h2>
<ul class="suggestions">
{{range .Suggestions}}<li>{{.}}</li>
{{end}}</ul>
{{end}}
</body>
</html>
`

const summaryTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Report summary</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2em; color: #1a1a1a; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
.ok { color: #1e8449; font-weight: bold; }
</style>
</head>
<body>
<h1>Report summary</h1>
{{if .Rows}}
<table>
<tr><th>Type</th><th>Process</th><th>Severity</th><th>Count</th><th>Page</th></tr>
{{range .Rows}}<tr>
<td>{{.Type}}</td>
<td>{{.Process}}</td>
<td>{{.Severity}}</td>
<td>{{.Count}}</td>
<td><a href="{{.File}}">{{.File}}</a></td>
</tr>
{{end}}</table>
{{else}}
<p class="ok">No stability issues detected across the scanned reports.</p>
{{end}}
</body>
</html>
`

const sessionTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Session {{.SessionID}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", sans-serif; margin: 2em; color: #1a1a1a; }
table { border-collapse: collapse; margin: 1em 0; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
.ok { color: #1e8449; font-weight: bold; }
.fail { color: #c0392b; font-weight: bold; }
</style>
</head>
<body>
<h1>Stability session <span class="session-id">{{.SessionID}}</span></h1>
<p>Target <strong class="session-target">{{.TargetPackage}}</strong>,
stability score <strong class="session-score">{{.StabilityScore}}</strong>/100,
result <span class="session-result {{if .Success}}ok{{else}}fail{{end}}">{{if .Success}}PASS{{else}}FAIL{{end}}</span>.</p>
<h2>Invocations</h2>
<table>
<tr><th>#</th><th>Exit code</th><th>Started</th><th>Duration</th></tr>
{{range .Invocations}}<tr>
<td>{{.Seq}}</td>
<td class="{{if eq .ExitCode 0}}ok{{else}}fail{{end}}">{{.ExitCode}}</td>
<td>{{.Started.Format "15:04:05"}}</td>
<td>{{.Duration}}</td>
</tr>
{{end}}</table>
<h2>Findings</h2>
{{if .Issues}}
<table>
<tr><th>Type</th><th>Process</th><th>Severity</th><th>Count</th><th>Report</th></tr>
{{range .Issues}}<tr>
<td>{{.Type}}</td>
<td>{{.Process}}</td>
<td>{{.Severity}}</td>
<td>{{.Count}}</td>
<td><a href="{{.File}}">{{.File}}</a></td>
</tr>
{{end}}</table>
{{else}}
<p class="ok">No stability issues detected.</p>
{{end}}
</body>
</html>
`
