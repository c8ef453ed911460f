// Package view binds a match report onto the result panel.
package view

import (
	"fmt"
	"strconv"

	"github.com/nikogura/resume-matcher/pkg/report"
)

// Fallback texts for empty chip lists on the result panel.
const (
	NoResumeSkills  = "None detected"
	NoJobSkills     = "None detected"
	NoMatchedSkills = "None"
)

// ChipList is a list of skill chips with the text shown when it is empty.
type ChipList struct {
	Items    []string
	Fallback string
}

// Empty reports whether the fallback is shown instead of chips.
func (c ChipList) Empty() (empty bool) {
	empty = len(c.Items) == 0
	return empty
}

// ViewModel holds the already-derived display values of a report.
type ViewModel struct {
	Score         float64
	ScoreText     string
	GaugeWidth    string
	Tier          report.Tier
	GaugeColor    string
	ResumeSkills  ChipList
	JobSkills     ChipList
	MatchedSkills ChipList
	Suggestion    string
}

// NewViewModel derives display values from a report.
func NewViewModel(r report.MatchReport, colors report.TierColors) (vm ViewModel) {
	colors = colors.WithDefaults()
	score := report.ClampPercent(r.MatchPercentage)
	tier := report.TierFor(score)

	vm = ViewModel{
		Score:         score,
		ScoreText:     fmt.Sprintf("%.1f%%", score),
		GaugeWidth:    strconv.FormatFloat(score, 'f', -1, 64) + "%",
		Tier:          tier,
		GaugeColor:    colors.For(tier),
		ResumeSkills:  chips(r.SkillsAnalysis.ResumeSkillsFound, NoResumeSkills),
		JobSkills:     chips(r.SkillsAnalysis.JDSkillsFound, NoJobSkills),
		MatchedSkills: chips(r.SkillsAnalysis.MatchedSkills, NoMatchedSkills),
		Suggestion:    r.SuggestionText(),
	}
	return vm
}

func chips(items []string, fallback string) (list ChipList) {
	list = ChipList{Fallback: fallback}
	for _, item := range items {
		if item == "" {
			continue
		}
		list.Items = append(list.Items, item)
	}
	return list
}
