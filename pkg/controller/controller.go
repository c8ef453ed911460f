package controller

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nikogura/resume-matcher/pkg/chart"
	"github.com/nikogura/resume-matcher/pkg/clipboard"
	"github.com/nikogura/resume-matcher/pkg/metrics"
	"github.com/nikogura/resume-matcher/pkg/renderer"
	"github.com/nikogura/resume-matcher/pkg/report"
	"github.com/nikogura/resume-matcher/pkg/scoring"
	"github.com/nikogura/resume-matcher/pkg/theme"
	"github.com/nikogura/resume-matcher/pkg/view"
	"github.com/pkg/errors"
)

// DefaultCopyAckDelay is how long the copy button shows its confirmation.
const DefaultCopyAckDelay = 2 * time.Second

// Analyzer scores a submission.
type Analyzer interface {
	Analyze(ctx context.Context, sub scoring.Submission) (r report.MatchReport, err error)
}

// ChartRenderer draws the before/after chart.
type ChartRenderer interface {
	Render(ctx context.Context, canvas chart.Canvas, before float64)
}

// ThemeToggler flips the persisted theme.
type ThemeToggler interface {
	Toggle(ctx context.Context) (next theme.Theme, err error)
}

// Surface is the page the controller drives.
type Surface interface {
	view.Slots
	SetVisible(panel view.Panel, visible bool)
	Visible(panel view.Panel) (visible bool)
	ShowError(text string)
	ClearError()
	Alert(text string)
	Attach(fragment view.Fragment) (detach func())
	DrawChart(draw func(canvas chart.Canvas))
}

// Deps are the collaborators of a Controller. Clipboard, Exporter and Theme may be nil.
type Deps struct {
	Analyzer  Analyzer
	Surface   Surface
	Chart     ChartRenderer
	Exporter  renderer.Exporter
	Clipboard clipboard.Writer
	Theme     ThemeToggler
}

// Options tune a Controller.
type Options struct {
	Colors        report.TierColors
	ExportOptions renderer.ExportOptions
	CopyAckDelay  time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
}

// Controller runs one analysis cycle at a time and the actions on its result.
type Controller struct {
	deps     Deps
	opts     Options
	logger   *slog.Logger
	inFlight atomic.Bool

	mu        sync.Mutex
	state     State
	current   *report.MatchReport
	cycle     string
	copyTimer *time.Timer
}

// New creates an idle controller.
func New(deps Deps, opts Options) (c *Controller) {
	opts.Colors = opts.Colors.WithDefaults()
	if opts.CopyAckDelay <= 0 {
		opts.CopyAckDelay = DefaultCopyAckDelay
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.ExportOptions == (renderer.ExportOptions{}) {
		opts.ExportOptions = renderer.DefaultExportOptions()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c = &Controller{
		deps:   deps,
		opts:   opts,
		logger: logger.With("component", "controller"),
		state:  Idle,
	}
	return c
}

// State returns the current state.
func (c *Controller) State() (s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s = c.state
	return s
}

// Current returns the report of the last successful cycle.
func (c *Controller) Current() (r report.MatchReport, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return r, false
	}
	r = *c.current
	ok = true
	return r, ok
}

// Cycle returns the id of the latest analysis cycle.
func (c *Controller) Cycle() (id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id = c.cycle
	return id
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = s
}

// Submit validates the submission, calls the scoring service and updates the page.
// A validation failure is alerted and returns the controller to Idle without a network call.
func (c *Controller) Submit(ctx context.Context, sub scoring.Submission) (r report.MatchReport, err error) {
	if !c.inFlight.CompareAndSwap(false, true) {
		metrics.Submission(metrics.OutcomeRejected)
		err = ErrSubmissionInFlight
		return r, err
	}
	defer c.inFlight.Store(false)

	c.setState(Validating)
	err = Validate(sub)
	if err != nil {
		c.deps.Surface.Alert("⚠️ " + err.Error())
		c.setState(Idle)
		metrics.Submission(metrics.OutcomeInvalid)
		return r, err
	}

	cycle := uuid.NewString()
	c.mu.Lock()
	c.current = nil
	c.cycle = cycle
	c.state = Submitting
	c.mu.Unlock()

	logger := c.logger.With("cycle", cycle)
	logger.Info("submitting analysis", "file", sub.FileName, "jd_chars", len(sub.JobDescription))

	surface := c.deps.Surface
	surface.ClearError()
	surface.SetVisible(view.PanelStatus, true)
	surface.SetVisible(view.PanelResult, false)
	surface.SetVisible(view.PanelCopy, false)
	surface.SetVisible(view.PanelExport, false)

	start := time.Now()
	r, err = c.deps.Analyzer.Analyze(ctx, sub)
	surface.SetVisible(view.PanelStatus, false)

	if err != nil {
		metrics.Submission(metrics.OutcomeFailed)
		metrics.SubmissionDuration(metrics.OutcomeFailed, time.Since(start))
		logger.Error("analysis failed", "error", err)

		surface.SetVisible(view.PanelResult, true)
		surface.ShowError("❌ Error: " + err.Error())
		c.setState(Failed)
		return r, err
	}

	metrics.Submission(metrics.OutcomeSucceeded)
	metrics.SubmissionDuration(metrics.OutcomeSucceeded, time.Since(start))
	logger.Info("analysis succeeded", "match_percentage", r.MatchPercentage)

	surface.SetVisible(view.PanelResult, true)
	if c.deps.Chart != nil {
		surface.DrawChart(func(canvas chart.Canvas) {
			c.deps.Chart.Render(ctx, canvas, r.MatchPercentage)
		})
	}
	view.Bind(view.NewViewModel(r, c.opts.Colors), surface)
	surface.SetVisible(view.PanelCopy, true)
	surface.SetVisible(view.PanelExport, true)

	stored := r
	c.mu.Lock()
	c.current = &stored
	c.state = Succeeded
	c.mu.Unlock()

	return r, err
}

// Validate checks a submission locally: a resume file is required and the job description must not be blank.
func Validate(sub scoring.Submission) (err error) {
	if strings.TrimSpace(sub.FileName) == "" {
		err = &ValidationError{Field: "file", Message: MsgMissingResume}
		return err
	}
	if strings.TrimSpace(sub.JobDescription) == "" {
		err = &ValidationError{Field: "job_description", Message: MsgMissingJD}
		return err
	}
	return err
}

// Copy writes the current suggestion to the clipboard and briefly relabels the copy button.
func (c *Controller) Copy(ctx context.Context) (err error) {
	r, ok := c.Current()
	if !ok {
		err = ErrNoReport
		return err
	}
	if c.deps.Clipboard == nil {
		err = errors.New("no clipboard configured")
		return err
	}

	err = c.deps.Clipboard.WriteText(ctx, r.SuggestionText())
	metrics.Copy(metrics.Status(err))
	if err != nil {
		c.logger.Warn("copy failed", "cycle", c.Cycle(), "error", err)
		err = errors.Wrap(err, "failed to copy suggestion")
		return err
	}

	surface := c.deps.Surface
	surface.SetText(view.SlotCopyButton, view.CopiedLabel)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.copyTimer != nil {
		c.copyTimer.Stop()
	}
	c.copyTimer = time.AfterFunc(c.opts.CopyAckDelay, func() {
		surface.SetText(view.SlotCopyButton, view.CopyLabel)
	})

	return err
}

// Export renders the current report and hands it to the exporter.
// The result panel is hidden and exactly one fragment is attached while the exporter runs;
// both are restored on every path.
func (c *Controller) Export(ctx context.Context) (path string, err error) {
	path, err = c.ExportTo(ctx, c.opts.ExportOptions.OutputDir)
	return path, err
}

// ExportTo is Export writing into outputDir instead of the configured directory.
func (c *Controller) ExportTo(ctx context.Context, outputDir string) (path string, err error) {
	r, ok := c.Current()
	if !ok {
		err = ErrNoReport
		return path, err
	}
	if c.deps.Exporter == nil {
		err = &ExportError{Err: errors.New("no exporter configured")}
		return path, err
	}

	logger := c.logger.With("cycle", c.Cycle())

	var fragment renderer.Fragment
	fragment, err = renderer.Format(r, renderer.FormatOptions{
		GeneratedAt: c.opts.Now(),
		Title:       c.opts.ExportOptions.Title,
	})
	if err != nil {
		metrics.Export(metrics.StatusFailure)
		err = &ExportError{Err: err}
		return path, err
	}

	surface := c.deps.Surface
	wasVisible := surface.Visible(view.PanelResult)
	if wasVisible {
		surface.SetVisible(view.PanelResult, false)
	}
	detach := surface.Attach(view.Fragment{ID: fragment.ID, HTML: fragment.HTML})
	defer func() {
		detach()
		if wasVisible {
			surface.SetVisible(view.PanelResult, true)
		}
	}()

	opts := c.opts.ExportOptions
	opts.OutputDir = outputDir
	path, err = c.deps.Exporter.Export(ctx, fragment, opts)
	metrics.Export(metrics.Status(err))
	if err != nil {
		logger.Error("export failed", "error", err)
		err = &ExportError{Err: err}
		return path, err
	}

	logger.Info("report exported", "path", path)
	return path, err
}

// ToggleTheme flips the theme through the configured toggler.
func (c *Controller) ToggleTheme(ctx context.Context) (next theme.Theme, err error) {
	if c.deps.Theme == nil {
		err = errors.New("no theme store configured")
		return next, err
	}

	next, err = c.deps.Theme.Toggle(ctx)
	metrics.ThemeToggle(string(next))
	if err != nil {
		c.logger.Warn("theme not persisted", "theme", next, "error", err)
	}
	return next, err
}

// Close stops the pending copy label timer.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.copyTimer != nil {
		c.copyTimer.Stop()
		c.copyTimer = nil
	}
}
