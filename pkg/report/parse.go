package report

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// ErrInvalidPayload marks a service response that does not match the MatchReport schema.
var ErrInvalidPayload = errors.New("invalid match report payload")

// requiredNumbers must be present as JSON numbers.
//
//nolint:gochecknoglobals // Schema definition
var requiredNumbers = []string{
	"match_percentage",
	"keyword_overlap_ratio",
}

// optionalNumbers must be numbers when present.
//
//nolint:gochecknoglobals // Schema definition
var optionalNumbers = []string{
	"common_keywords_count",
	"skills_analysis.skills_match_count",
	"skills_analysis.skills_match_percentage",
	"details.resume_chars",
	"details.resume_lines",
	"details.jd_chars",
}

// optionalLists must be arrays when present.
//
//nolint:gochecknoglobals // Schema definition
var optionalLists = []string{
	"missing_keywords_sample",
	"skills_analysis.resume_skills_found",
	"skills_analysis.jd_skills_found",
	"skills_analysis.matched_skills",
}

// Parse validates a service response body and decodes it into a MatchReport.
func Parse(body []byte) (r MatchReport, err error) {
	if !gjson.ValidBytes(body) {
		err = errors.Wrap(ErrInvalidPayload, "response is not valid JSON")
		return r, err
	}

	doc := gjson.ParseBytes(body)
	if !doc.IsObject() {
		err = errors.Wrap(ErrInvalidPayload, "response is not a JSON object")
		return r, err
	}

	err = validate(doc)
	if err != nil {
		return r, err
	}

	err = json.Unmarshal(body, &r)
	if err != nil {
		err = errors.Wrapf(ErrInvalidPayload, "failed to decode response: %v", err)
		return r, err
	}

	return r, err
}

func validate(doc gjson.Result) (err error) {
	for _, path := range requiredNumbers {
		field := doc.Get(path)
		if !field.Exists() {
			err = errors.Wrapf(ErrInvalidPayload, "missing required field %q", path)
			return err
		}
		if field.Type != gjson.Number {
			err = errors.Wrapf(ErrInvalidPayload, "field %q must be a number, got %s", path, field.Type)
			return err
		}
	}

	skills := doc.Get("skills_analysis")
	if !skills.Exists() {
		err = errors.Wrap(ErrInvalidPayload, `missing required field "skills_analysis"`)
		return err
	}
	if !skills.IsObject() {
		err = errors.Wrap(ErrInvalidPayload, `field "skills_analysis" must be an object`)
		return err
	}

	for _, path := range optionalNumbers {
		field := doc.Get(path)
		if field.Exists() && field.Type != gjson.Number && field.Type != gjson.Null {
			err = errors.Wrapf(ErrInvalidPayload, "field %q must be a number, got %s", path, field.Type)
			return err
		}
	}

	for _, path := range optionalLists {
		field := doc.Get(path)
		if field.Exists() && !field.IsArray() && field.Type != gjson.Null {
			err = errors.Wrapf(ErrInvalidPayload, "field %q must be a list", path)
			return err
		}
	}

	return err
}

// ClampPercent limits a percentage to [0,100]. NaN clamps to 0.
func ClampPercent(value float64) (clamped float64) {
	switch {
	case math.IsNaN(value), value < 0:
		clamped = 0
	case value > 100:
		clamped = 100
	default:
		clamped = value
	}
	return clamped
}
