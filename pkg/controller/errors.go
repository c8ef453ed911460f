package controller

import (
	"fmt"

	"github.com/pkg/errors"
)

// Validation messages shown to the user.
const (
	MsgMissingResume = "Please select a resume file (PDF or DOCX)."
	MsgMissingJD     = "Please paste a job description."
)

// ErrSubmissionInFlight is returned when a submission starts while another is pending.
var ErrSubmissionInFlight = errors.New("an analysis is already in progress")

// ErrNoReport is returned by actions that need a successful analysis first.
var ErrNoReport = errors.New("no analysis result available")

// ValidationError is a local input problem detected before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() (msg string) {
	msg = e.Message
	return msg
}

// ExportError wraps an exporter failure.
type ExportError struct {
	Err error
}

func (e *ExportError) Error() (msg string) {
	msg = fmt.Sprintf("failed to export report: %v", e.Err)
	return msg
}

func (e *ExportError) Unwrap() (err error) {
	err = e.Err
	return err
}
