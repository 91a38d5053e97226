// Package report renders a pipeline run into the HTML digest and sends
// it over SMTP.
package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/courtvision/lineup-service/internal/types"
)

var funcs = template.FuncMap{
	"score": func(s *types.ScoreRecord) string {
		if !s.HasScore() {
			return "—"
		}
		return fmt.Sprintf("%.2f", *s.CategoryScore)
	},
	"pct":   func(v float64) string { return fmt.Sprintf("%.0f%%", v) },
	"delta": func(v float64) string { return fmt.Sprintf("%+.2f", v) },
}

var reportTmpl = template.Must(template.New("report").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<body style="font-family:Arial,Helvetica,sans-serif;color:#222;max-width:720px;margin:0 auto">
<h2 style="background:#1a3a5c;color:#fff;padding:8px 12px">Lineup Report — {{.Date}}</h2>

<h3 style="border-bottom:2px solid #1a3a5c">Recommended Active Lineup</h3>
<table width="100%" cellpadding="6" cellspacing="0" style="border-collapse:collapse">
<tr style="background:#eef2f7"><th align="left">Slot</th><th align="left">Player</th><th align="left">Team</th><th align="right">Score</th><th align="left">Notes</th></tr>
{{range .Assignment.Active}}
<tr style="border-bottom:1px solid #ddd">
<td><b>{{.Slot}}</b></td>
{{if .Player}}<td>{{.Player.Identity.DisplayName}}{{if .Player.IsUntouchable}} &#128274;{{end}}</td>
<td>{{.Player.Team}}</td>
<td align="right">{{score .Player.Score}}</td>
<td>{{if .FlagInjured}}<span style="color:#b03030"><b>{{.Player.InjuryStatus}}</b></span>{{end}}
{{if .LowConfidence}}<span style="color:#9a7b00">low confidence</span>{{end}}</td>
{{else}}<td colspan="4" style="color:#b03030"><i>empty — no eligible player</i></td>{{end}}
</tr>
{{end}}
</table>

<h3 style="border-bottom:2px solid #1a3a5c">Bench</h3>
<p style="color:#666;margin:4px 0">Shape: {{.BenchShapeDesc}}{{if not .BenchShapeMet}} &mdash; <b style="color:#b03030">off target</b>{{end}}</p>
<table width="100%" cellpadding="6" cellspacing="0" style="border-collapse:collapse">
{{range .Assignment.Bench}}
<tr style="border-bottom:1px solid #ddd"><td>{{.Identity.DisplayName}}</td><td>{{.Team}}</td><td align="right">{{score .Score}}</td></tr>
{{end}}
</table>

{{if or .ILFlags.MoveToIL .ILFlags.ActivateFromIL}}
<h3 style="border-bottom:2px solid #1a3a5c">IL Flags — Action Required</h3>
<ul>
{{range .ILFlags.MoveToIL}}<li><b>{{.Name}}</b> ({{.InjuryStatus}}) — move to IL from {{.CurrentSlot}}</li>{{end}}
{{range .ILFlags.ActivateFromIL}}<li><b>{{.Name}}</b> — activate from {{.CurrentSlot}}{{if .DropCandidate}}, drop <b>{{.DropCandidate.Name}}</b> ({{.DropCandidate.Reason}}){{end}}</li>{{end}}
</ul>
{{end}}

{{if .Swaps}}
<h3 style="border-bottom:2px solid #1a3a5c">Waiver Wire Upgrades</h3>
<table width="100%" cellpadding="6" cellspacing="0" style="border-collapse:collapse">
<tr style="background:#eef2f7"><th align="left">Add</th><th align="left">Drop</th><th align="right">Weekly Δ</th></tr>
{{range .Swaps}}
<tr style="border-bottom:1px solid #ddd">
<td>{{.FreeAgent.Identity.DisplayName}} ({{.FreeAgent.Team}})</td>
<td>{{.ReplacesName}}</td>
<td align="right"><b>{{delta .ValueDelta}}</b></td>
</tr>
{{end}}
</table>
{{end}}

{{if .Untouchables}}
<h3 style="border-bottom:2px solid #1a3a5c">Weekly Untouchables (Do Not Drop)</h3>
<ul>{{range $name, $p := .Untouchables}}<li>{{$name}} — MVP {{pct $p}}</li>{{end}}</ul>
{{end}}

{{if .Alerts}}
<h3 style="border-bottom:2px solid #b03030">Alerts</h3>
<ul>{{range .Alerts}}<li style="color:#b03030">{{.}}</li>{{end}}</ul>
{{end}}

{{if .Unmatched}}
<p style="color:#666"><i>Unmatched names: {{range $i, $n := .Unmatched}}{{if $i}}, {{end}}{{$n}}{{end}}</i></p>
{{end}}

<p style="color:#999;font-size:12px">Run {{.RunID}} · generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>
</body>
</html>`))

// RenderHTML renders the run report as a self-contained HTML email body.
func RenderHTML(r *types.Report) (string, error) {
	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, r); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

// Subject builds the email subject line for a run.
func Subject(r *types.Report) string {
	s := fmt.Sprintf("Lineup Report %s", r.Date)
	if len(r.Swaps) > 0 {
		s += fmt.Sprintf(" — %d waiver upgrade(s)", len(r.Swaps))
	}
	if len(r.Alerts) > 0 {
		s += fmt.Sprintf(" — %d alert(s)", len(r.Alerts))
	}
	return s
}
