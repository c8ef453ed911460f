package view

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/nikogura/resume-matcher/pkg/report"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const gaugeCells = 40

// WriteTerminal prints the result panel of a snapshot.
func WriteTerminal(w io.Writer, s Snapshot, tier report.Tier) (err error) {
	if !s.Visible[PanelResult] {
		return err
	}

	heading := color.New(color.Bold)
	b := &strings.Builder{}

	if s.Error != "" {
		_, _ = color.New(color.FgRed).Fprintln(b, s.Error)
		_, err = io.WriteString(w, b.String())
		return err
	}

	tierColor := color.New(tierAttribute(tier), color.Bold)
	title := cases.Title(language.English).String(string(tier))

	_, _ = heading.Fprintln(b, "Match Score")
	fmt.Fprintf(b, "  %s %s\n", gauge(s.GaugeWidth, tierColor), tierColor.Sprintf("%s (%s)", s.Texts[SlotScoreText], title))
	fmt.Fprintln(b)

	writeChips(b, heading, "Your Skills", s.Chips[SlotResumeSkills])
	writeChips(b, heading, "Job Required Skills", s.Chips[SlotJobSkills])
	writeChips(b, heading, "Matched Skills", s.Chips[SlotMatchedSkills])

	_, _ = heading.Fprintln(b, "Suggestion")
	fmt.Fprintf(b, "  %s\n", s.Texts[SlotSuggestion])

	_, err = io.WriteString(w, b.String())
	return err
}

func writeChips(b *strings.Builder, heading *color.Color, title string, chips ChipList) {
	_, _ = heading.Fprintln(b, title)
	if chips.Empty() {
		fmt.Fprintf(b, "  %s\n\n", color.New(color.Italic).Sprint(chips.Fallback))
		return
	}
	chip := color.New(color.FgBlue)
	parts := make([]string, 0, len(chips.Items))
	for _, item := range chips.Items {
		parts = append(parts, chip.Sprintf("[%s]", item))
	}
	fmt.Fprintf(b, "  %s\n\n", strings.Join(parts, " "))
}

// gauge renders the width percentage as a bar of fixed cell count.
func gauge(width string, fill *color.Color) (bar string) {
	var pct float64
	_, err := fmt.Sscanf(strings.TrimSuffix(width, "%"), "%g", &pct)
	if err != nil {
		pct = 0
	}
	pct = report.ClampPercent(pct)
	filled := int(pct / 100 * gaugeCells)
	bar = "[" + fill.Sprint(strings.Repeat("█", filled)) + strings.Repeat("░", gaugeCells-filled) + "]"
	return bar
}

func tierAttribute(tier report.Tier) (attr color.Attribute) {
	switch tier {
	case report.TierHigh:
		attr = color.FgGreen
	case report.TierMedium:
		attr = color.FgYellow
	default:
		attr = color.FgRed
	}
	return attr
}
