package web

import (
	"context"
	"html/template"
	"net/url"

	"github.com/nikogura/resume-matcher/pkg/theme"
	"github.com/nikogura/resume-matcher/pkg/view"
)

type chipGroup struct {
	Label string
	Chips view.ChipList
}

type pageData struct {
	Theme      string
	Palette    theme.Palette
	Alerts     []string
	ShowStatus bool
	ShowResult bool
	ShowCopy   bool
	ShowExport bool
	ScoreText  string
	GaugeWidth string
	GaugeColor string
	Suggestion string
	Error      string
	Groups     []chipGroup
	ChartURL   string
	CopyLabel  string
}

func (s *Server) pageData(ctx context.Context) (data pageData) {
	snap := s.page.Snapshot()

	data = pageData{
		Theme:      string(snap.Theme),
		Alerts:     s.page.DrainAlerts(),
		ShowStatus: snap.Visible[view.PanelStatus],
		ShowResult: snap.Visible[view.PanelResult],
		ShowCopy:   snap.Visible[view.PanelCopy],
		ShowExport: snap.Visible[view.PanelExport],
		ScoreText:  snap.Texts[view.SlotScoreText],
		GaugeWidth: snap.GaugeWidth,
		GaugeColor: snap.GaugeColor,
		Suggestion: snap.Texts[view.SlotSuggestion],
		Error:      snap.Error,
		Groups: []chipGroup{
			{Label: "Your Skills", Chips: snap.Chips[view.SlotResumeSkills]},
			{Label: "Job Skills", Chips: snap.Chips[view.SlotJobSkills]},
			{Label: "Matched Skills", Chips: snap.Chips[view.SlotMatchedSkills]},
		},
		CopyLabel: snap.Texts[view.SlotCopyButton],
	}

	if data.Theme == "" {
		data.Theme = string(theme.Light)
	}
	if s.opts.Palettes != nil {
		data.Palette = s.opts.Palettes.Palette(ctx)
	} else {
		data.Palette = theme.DefaultPalettes().For(theme.Theme(data.Theme))
	}
	if snap.ChartDrawn {
		data.ChartURL = "/chart.png?c=" + url.QueryEscape(s.ctrl.Cycle())
	}
	return data
}

//nolint:gochecknoglobals // Parsed once
var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en" data-theme="{{.Theme}}">
<head>
<meta charset="utf-8">
<title>AI Resume Matcher</title>
<style>
  body { font-family: Arial, sans-serif; margin: 0 auto; max-width: 720px; padding: 20px; background: {{.Palette.Background}}; color: {{.Palette.Text}}; }
  .card { border: 1px solid {{.Palette.Border}}; border-radius: 8px; padding: 16px; margin-bottom: 16px; }
  .gauge { height: 12px; border-radius: 6px; background: {{.Palette.Border}}; overflow: hidden; }
  .gauge-fill { height: 100%; }
  .skill-chip { display: inline-block; padding: 4px 12px; margin: 2px; border-radius: 20px; background: #eef2ff; color: #4361ee; font-size: 12px; }
  .alert { border-left: 4px solid #ff9f00; padding: 8px 12px; margin-bottom: 12px; }
  .error { color: red; }
  .actions form { display: inline; }
</style>
</head>
<body>
<form method="post" action="/theme"><button type="submit" id="themeToggle">Toggle theme</button></form>
<h1>AI Resume Matcher</h1>
{{- range .Alerts}}
<div class="alert" role="alert">{{.}}</div>
{{- end}}
<form class="card" method="post" action="/analyze" enctype="multipart/form-data">
  <p><label>Resume (PDF or DOCX) <input type="file" name="file" accept=".pdf,.docx"></label></p>
  <p><label>Job description<br><textarea name="job_description" rows="8" cols="70"></textarea></label></p>
  <button type="submit">Analyze</button>
</form>
{{- if .ShowStatus}}
<div id="status" class="card">Analyzing...</div>
{{- end}}
{{- if .ShowResult}}
<div id="result" class="card">
{{- if .Error}}
  <p id="suggestionText"><span class="error">{{.Error}}</span></p>
{{- else}}
  <h2 id="scoreText">{{.ScoreText}}</h2>
  <div class="gauge"><div class="gauge-fill" style="width: {{.GaugeWidth}}; background: {{.GaugeColor}}"></div></div>
{{- if .ChartURL}}
  <p><img id="comparisonChart" src="{{.ChartURL}}" alt="Before and after match score"></p>
{{- end}}
{{- range .Groups}}
  <h3>{{.Label}}</h3>
  <div class="skills">
  {{- if .Chips.Items}}{{range .Chips.Items}}<span class="skill-chip">{{.}}</span>{{end}}{{else}}<em>{{.Chips.Fallback}}</em>{{end -}}
  </div>
{{- end}}
  <h3>Suggestion</h3>
  <p id="suggestionText">{{.Suggestion}}</p>
{{- end}}
</div>
{{- end}}
<div class="actions">
{{- if .ShowCopy}}
  <form method="post" action="/copy"><button type="submit" id="copyBtn">{{.CopyLabel}}</button></form>
{{- end}}
{{- if .ShowExport}}
  <a id="exportPdfBtn" href="/export">Export PDF</a>
{{- end}}
</div>
</body>
</html>
`
