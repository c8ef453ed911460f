package report

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// NoSuggestion is the placeholder shown when the service returns no suggestion.
const NoSuggestion = "No suggestion available."

// MatchReport is the scoring service's analysis of one resume/job description pair.
type MatchReport struct {
	MatchPercentage       float64            `json:"match_percentage"`
	KeywordOverlapRatio   float64            `json:"keyword_overlap_ratio"`
	CommonKeywordsCount   int                `json:"common_keywords_count"`
	MissingKeywordsSample []string           `json:"missing_keywords_sample"`
	Suggestion            string             `json:"suggestion"`
	SkillsAnalysis        SkillsAnalysis     `json:"skills_analysis"`
	ExperienceAnalysis    ExperienceAnalysis `json:"experience_analysis"`
	Details               Details            `json:"details"`
}

// SkillsAnalysis holds the skills detected on each side and their overlap.
type SkillsAnalysis struct {
	ResumeSkillsFound     []string `json:"resume_skills_found"`
	JDSkillsFound         []string `json:"jd_skills_found"`
	MatchedSkills         []string `json:"matched_skills"`
	SkillsMatchCount      int      `json:"skills_match_count"`
	SkillsMatchPercentage float64  `json:"skills_match_percentage"`
}

// ExperienceAnalysis holds what the service detected about experience.
type ExperienceAnalysis struct {
	ResumeExperienceYears ExperienceYears `json:"resume_experience_years"`
	JDExperienceMentioned bool            `json:"jd_experience_mentioned"`
}

// Details holds size statistics of the submitted texts.
type Details struct {
	ResumeChars int `json:"resume_chars"`
	JDChars     int `json:"jd_chars"`
	ResumeLines int `json:"resume_lines"`
}

// SuggestionText returns the suggestion, or the placeholder when it is absent.
func (r MatchReport) SuggestionText() (text string) {
	text = strings.TrimSpace(r.Suggestion)
	if text == "" {
		text = NoSuggestion
		return text
	}
	text = r.Suggestion
	return text
}

// ExperienceYears is either a number of years or a descriptive string.
type ExperienceYears struct {
	Years   float64
	Text    string
	Numeric bool
}

// UnmarshalJSON accepts a JSON number, a JSON string or null.
func (e *ExperienceYears) UnmarshalJSON(data []byte) (err error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*e = ExperienceYears{}
		return err
	}

	if data[0] == '"' {
		var text string
		err = json.Unmarshal(data, &text)
		if err != nil {
			err = errors.Wrap(err, "failed to parse experience years text")
			return err
		}
		*e = ExperienceYears{Text: text}
		return err
	}

	var years float64
	err = json.Unmarshal(data, &years)
	if err != nil {
		err = errors.Wrapf(err, "experience years must be a number or string, got %s", string(data))
		return err
	}
	*e = ExperienceYears{Years: years, Numeric: true}
	return err
}

// MarshalJSON writes the value back in the form it was received.
func (e ExperienceYears) MarshalJSON() (data []byte, err error) {
	if e.Numeric {
		data, err = json.Marshal(e.Years)
		return data, err
	}
	if e.Text == "" {
		data = []byte("null")
		return data, err
	}
	data, err = json.Marshal(e.Text)
	return data, err
}

// String renders the value for display. Unknown values render as "Not detected".
func (e ExperienceYears) String() (text string) {
	if e.Numeric {
		text = strconv.FormatFloat(e.Years, 'f', -1, 64)
		return text
	}
	text = strings.TrimSpace(e.Text)
	if text == "" {
		text = "Not detected"
	}
	return text
}
