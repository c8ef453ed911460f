package renderer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/resume-matcher/pkg/report"
	"github.com/pkg/errors"
)

// Fallback texts for empty chip lists in the exported report.
const (
	NoSkillsDetected = "No skills detected"
	NoMatchingSkills = "No matching skills"
)

// Fragment is a self-contained, styled HTML fragment of a report.
type Fragment struct {
	ID   string
	HTML string
}

// FormatOptions controls report formatting.
type FormatOptions struct {
	GeneratedAt time.Time
	Title       string
}

type chipSection struct {
	Label    string
	Items    []string
	Fallback string
}

type reportData struct {
	Title           string
	GeneratedOn     string
	ScoreClass      string
	Score           string
	KeywordMatch    string
	SkillsMatch     string
	MatchingSkills  int
	Chips           []chipSection
	Suggestion      string
	ResumeChars     int
	ResumeLines     int
	ExperienceYears string
	MissingKeywords string
}

// Format renders a report as a fragment independent of page styles.
// All service-supplied text is escaped by the template.
func Format(r report.MatchReport, opts FormatOptions) (fragment Fragment, err error) {
	title := opts.Title
	if title == "" {
		title = "AI Resume Match Report"
	}

	missing := "None"
	if len(r.MissingKeywordsSample) > 0 {
		missing = strings.Join(r.MissingKeywordsSample, ", ")
	}

	data := reportData{
		Title:          title,
		GeneratedOn:    opts.GeneratedAt.Format("January 2, 2006 15:04 MST"),
		ScoreClass:     string(report.TierFor(r.MatchPercentage)) + "-score",
		Score:          percent(r.MatchPercentage),
		KeywordMatch:   percent(r.KeywordOverlapRatio),
		SkillsMatch:    percent(r.SkillsAnalysis.SkillsMatchPercentage),
		MatchingSkills: r.SkillsAnalysis.SkillsMatchCount,
		Chips: []chipSection{
			{Label: "Your Skills", Items: nonBlank(r.SkillsAnalysis.ResumeSkillsFound), Fallback: NoSkillsDetected},
			{Label: "Job Required Skills", Items: nonBlank(r.SkillsAnalysis.JDSkillsFound), Fallback: NoSkillsDetected},
			{Label: "Matched Skills", Items: nonBlank(r.SkillsAnalysis.MatchedSkills), Fallback: NoMatchingSkills},
		},
		Suggestion:      r.SuggestionText(),
		ResumeChars:     r.Details.ResumeChars,
		ResumeLines:     r.Details.ResumeLines,
		ExperienceYears: r.ExperienceAnalysis.ResumeExperienceYears.String(),
		MissingKeywords: missing,
	}

	var buf bytes.Buffer
	err = reportTemplate.Execute(&buf, data)
	if err != nil {
		err = errors.Wrap(err, "failed to render report fragment")
		return fragment, err
	}

	fragment = Fragment{
		ID:   "pdf-report-" + uuid.NewString(),
		HTML: buf.String(),
	}
	return fragment, err
}

// Document wraps a fragment into a standalone HTML document.
func Document(fragment Fragment, title string) (doc string, err error) {
	var buf bytes.Buffer
	err = documentTemplate.Execute(&buf, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		//nolint:gosec // Fragment HTML is produced by reportTemplate, which escapes all input.
		Body: template.HTML(fragment.HTML),
	})
	if err != nil {
		err = errors.Wrap(err, "failed to render report document")
		return doc, err
	}
	doc = buf.String()
	return doc, err
}

func percent(value float64) (text string) {
	text = fmt.Sprintf("%.1f%%", report.ClampPercent(value))
	return text
}

func nonBlank(items []string) (kept []string) {
	for _, item := range items {
		if strings.TrimSpace(item) != "" {
			kept = append(kept, item)
		}
	}
	return kept
}

//nolint:gochecknoglobals // Parsed once
var reportTemplate = template.Must(template.New("report").Parse(reportHTML))

//nolint:gochecknoglobals // Parsed once
var documentTemplate = template.Must(template.New("document").Parse(documentHTML))

const documentHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
</body>
</html>
`

const reportHTML = `<div class="pdf-report">
<style>
  .pdf-report { font-family: Arial, sans-serif; padding: 20px; max-width: 600px; margin: 0 auto; background: white; color: black; }
  .pdf-report .pdf-header { text-align: center; border-bottom: 2px solid #4361ee; padding-bottom: 15px; margin-bottom: 20px; }
  .pdf-report .pdf-title { font-size: 24px; color: #4361ee; margin: 0; font-weight: bold; }
  .pdf-report .pdf-subtitle { font-size: 14px; color: #666; margin: 5px 0 0 0; }
  .pdf-report .pdf-section { margin-bottom: 20px; border: 1px solid #ddd; border-radius: 8px; padding: 15px; background: white; }
  .pdf-report .pdf-section h3 { color: #4361ee; margin: 0 0 10px 0; font-size: 18px; border-bottom: 1px solid #eee; padding-bottom: 5px; }
  .pdf-report .pdf-score { text-align: center; font-size: 24px; font-weight: bold; margin: 10px 0; }
  .pdf-report .high-score { color: #2ec4b6; }
  .pdf-report .medium-score { color: #ff9f00; }
  .pdf-report .low-score { color: #e71d36; }
  .pdf-report .pdf-skills { margin: 10px 0; min-height: 20px; }
  .pdf-report .pdf-skill-chip { background: #eef2ff; color: #4361ee; padding: 4px 12px; border-radius: 20px; font-size: 12px; display: inline-block; margin: 2px; }
  .pdf-report .pdf-suggestion { background: #f8f9fa; padding: 12px; border-radius: 6px; border-left: 4px solid #4361ee; white-space: pre-wrap; }
  .pdf-report .pdf-stats { display: table; width: 100%; border-spacing: 15px 0; margin: 15px 0; }
  .pdf-report .pdf-stat-item { display: table-cell; text-align: center; padding: 10px; background: #f8f9fa; border-radius: 6px; }
  .pdf-report .pdf-stat-value { font-size: 18px; font-weight: bold; color: #4361ee; }
  .pdf-report .pdf-stat-label { font-size: 12px; color: #666; }
  .pdf-report .pdf-additional-info { font-size: 12px; }
</style>
<div class="pdf-header">
  <h1 class="pdf-title">{{.Title}}</h1>
  <p class="pdf-subtitle">Generated on {{.GeneratedOn}}</p>
</div>
<div class="pdf-section">
  <h3>Overall Match Score</h3>
  <div class="pdf-score {{.ScoreClass}}">{{.Score}}</div>
  <div class="pdf-stats">
    <div class="pdf-stat-item"><div class="pdf-stat-value">{{.KeywordMatch}}</div><div class="pdf-stat-label">Keyword Match</div></div>
    <div class="pdf-stat-item"><div class="pdf-stat-value">{{.SkillsMatch}}</div><div class="pdf-stat-label">Skills Match</div></div>
    <div class="pdf-stat-item"><div class="pdf-stat-value">{{.MatchingSkills}}</div><div class="pdf-stat-label">Matching Skills</div></div>
  </div>
</div>
<div class="pdf-section">
  <h3>Skills Analysis</h3>
{{- range .Chips}}
  <p><strong>{{.Label}}:</strong></p>
  <div class="pdf-skills">
  {{- if .Items}}{{range .Items}}<span class="pdf-skill-chip">{{.}}</span>{{end}}{{else}}<em>{{.Fallback}}</em>{{end -}}
  </div>
{{- end}}
</div>
<div class="pdf-section">
  <h3>Recommendation</h3>
  <div class="pdf-suggestion">{{.Suggestion}}</div>
</div>
<div class="pdf-section">
  <h3>Additional Information</h3>
  <div class="pdf-additional-info">
    <p><strong>Resume Length:</strong> {{.ResumeChars}} characters, {{.ResumeLines}} lines</p>
    <p><strong>Experience Years (detected):</strong> {{.ExperienceYears}}</p>
    <p><strong>Missing Keywords Sample:</strong> {{.MissingKeywords}}</p>
  </div>
</div>
</div>
`
