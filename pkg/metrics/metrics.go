package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Submission outcomes.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeFailed    = "failed"
	OutcomeInvalid   = "invalid"
	OutcomeRejected  = "rejected"
)

// Action statuses.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

//nolint:gochecknoglobals // Registered once with the default registry
var (
	// Counter for analysis submissions
	submissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_matcher_submissions_total",
			Help: "Total number of analysis submissions",
		},
		[]string{"outcome"}, // outcome: succeeded/failed/invalid/rejected
	)

	// Histogram for round trips to the scoring service
	submissionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "resume_matcher_submission_duration_seconds",
			Help:    "Time spent waiting on the scoring service",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"outcome"},
	)

	// Counter for exported reports
	exports = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_matcher_exports_total",
			Help: "Total number of report exports",
		},
		[]string{"status"},
	)

	// Counter for clipboard copies
	copies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_matcher_copies_total",
			Help: "Total number of suggestion copies",
		},
		[]string{"status"},
	)

	// Counter for theme toggles
	themeToggles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "resume_matcher_theme_toggles_total",
			Help: "Total number of theme toggles by resulting theme",
		},
		[]string{"theme"},
	)
)

// Submission counts one submission by outcome.
func Submission(outcome string) {
	submissions.WithLabelValues(outcome).Inc()
}

// SubmissionDuration records one scoring round trip.
func SubmissionDuration(outcome string, d time.Duration) {
	submissionDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

// Export counts one export attempt.
func Export(status string) {
	exports.WithLabelValues(status).Inc()
}

// Copy counts one clipboard copy attempt.
func Copy(status string) {
	copies.WithLabelValues(status).Inc()
}

// ThemeToggle counts one toggle to the given theme.
func ThemeToggle(theme string) {
	themeToggles.WithLabelValues(theme).Inc()
}

// Status maps an error to a status label.
func Status(err error) (status string) {
	if err != nil {
		status = StatusFailure
		return status
	}
	status = StatusSuccess
	return status
}

// Handler serves the default registry.
func Handler() (h http.Handler) {
	h = promhttp.Handler()
	return h
}
