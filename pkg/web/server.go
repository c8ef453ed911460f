package web

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/nikogura/resume-matcher/pkg/chart"
	"github.com/nikogura/resume-matcher/pkg/controller"
	"github.com/nikogura/resume-matcher/pkg/metrics"
	"github.com/nikogura/resume-matcher/pkg/scoring"
	"github.com/nikogura/resume-matcher/pkg/view"
	"github.com/pkg/errors"
)

// DefaultBodyLimit caps uploads at 10 MiB.
const DefaultBodyLimit = 10 << 20

// HealthChecker reports the scoring service status.
type HealthChecker interface {
	Health(ctx context.Context) (status string, err error)
}

// Options configure the page server.
type Options struct {
	BodyLimit int
	Palettes  chart.PaletteSource
	Health    HealthChecker
	Logger    *slog.Logger
	// ScratchDir holds per-download export directories. Empty means the OS temp dir.
	ScratchDir string
}

// Server serves the page and its actions over HTTP.
type Server struct {
	app    *fiber.App
	ctrl   *controller.Controller
	page   *view.Page
	opts   Options
	logger *slog.Logger
}

// NewServer creates the fiber app serving page, driven by ctrl.
func NewServer(ctrl *controller.Controller, page *view.Page, opts Options) (s *Server) {
	if opts.BodyLimit <= 0 {
		opts.BodyLimit = DefaultBodyLimit
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s = &Server{
		ctrl:   ctrl,
		page:   page,
		opts:   opts,
		logger: logger.With("component", "web"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "Resume Matcher",
		ReadTimeout:           30 * time.Second,
		BodyLimit:             opts.BodyLimit,
		ErrorHandler:          errorHandler,
		DisableStartupMessage: true,
	})
	s.app.Use(recover.New())
	s.app.Use(s.requestLogger)
	s.routes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() (app *fiber.App) {
	app = s.app
	return app
}

// Listen serves until Shutdown is called.
func (s *Server) Listen(addr string) (err error) {
	s.logger.Info("serving page", "addr", addr)
	err = s.app.Listen(addr)
	if err != nil {
		err = errors.Wrapf(err, "failed to serve on %s", addr)
		return err
	}
	return err
}

// Shutdown stops the server within ctx.
func (s *Server) Shutdown(ctx context.Context) (err error) {
	err = s.app.ShutdownWithContext(ctx)
	return err
}

func (s *Server) routes() {
	s.app.Get("/", s.handleIndex)
	s.app.Post("/analyze", s.handleAnalyze)
	s.app.Get("/chart.png", s.handleChart)
	s.app.Post("/theme", s.handleAction(controller.ActionToggleTheme))
	s.app.Post("/copy", s.handleAction(controller.ActionCopy))
	s.app.Get("/export", s.handleExport)
	s.app.Get("/health", s.handleHealth)
	s.app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))
}

func (s *Server) requestLogger(c *fiber.Ctx) (err error) {
	start := time.Now()
	err = c.Next()
	s.logger.Debug("request",
		"method", c.Method(),
		"path", c.Path(),
		"status", c.Response().StatusCode(),
		"latency", time.Since(start),
	)
	return err
}

func (s *Server) handleIndex(c *fiber.Ctx) (err error) {
	data := s.pageData(c.UserContext())

	var buf bytes.Buffer
	err = pageTemplate.Execute(&buf, data)
	if err != nil {
		err = errors.Wrap(err, "failed to render page")
		return err
	}

	c.Type("html", "utf-8")
	err = c.Send(buf.Bytes())
	return err
}

func (s *Server) handleAnalyze(c *fiber.Ctx) (err error) {
	var sub scoring.Submission
	sub, err = submission(c)
	if err != nil {
		return err
	}

	_, err = s.ctrl.Submit(c.UserContext(), sub)
	if errors.Is(err, controller.ErrSubmissionInFlight) {
		err = fiber.NewError(fiber.StatusConflict, err.Error())
		return err
	}

	if wantsJSON(c) {
		err = s.analyzeJSON(c, err)
		return err
	}

	// Validation and service failures are already on the page.
	err = c.Redirect("/", fiber.StatusSeeOther)
	return err
}

func (s *Server) analyzeJSON(c *fiber.Ctx, submitErr error) (err error) {
	var vErr *controller.ValidationError
	switch {
	case errors.As(submitErr, &vErr):
		_ = s.page.DrainAlerts()
		err = c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": vErr.Message, "field": vErr.Field})
	case submitErr != nil:
		err = c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": submitErr.Error()})
	default:
		r, _ := s.ctrl.Current()
		err = c.JSON(r)
	}
	return err
}

func (s *Server) handleChart(c *fiber.Ctx) (err error) {
	var buf bytes.Buffer
	err = s.page.WriteChartPNG(&buf)
	if errors.Is(err, view.ErrNoChart) {
		err = fiber.NewError(fiber.StatusNotFound, err.Error())
		return err
	}
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "image/png")
	c.Set(fiber.HeaderCacheControl, "no-store")
	err = c.Send(buf.Bytes())
	return err
}

func (s *Server) handleAction(action controller.Action) (h fiber.Handler) {
	h = func(c *fiber.Ctx) (err error) {
		var out controller.Outcome
		out, err = s.ctrl.Dispatch(c.UserContext(), action)
		if errors.Is(err, controller.ErrNoReport) {
			err = fiber.NewError(fiber.StatusNotFound, err.Error())
			return err
		}
		if err != nil && action != controller.ActionToggleTheme {
			return err
		}

		// A toggle whose persistence failed is still applied to the page.
		if wantsJSON(c) {
			err = c.JSON(fiber.Map{"action": action, "theme": out.Theme})
			return err
		}
		err = c.Redirect("/", fiber.StatusSeeOther)
		return err
	}
	return h
}

// handleExport exports into a scratch directory and removes it once the document is in the response.
func (s *Server) handleExport(c *fiber.Ctx) (err error) {
	var dir string
	dir, err = os.MkdirTemp(s.opts.ScratchDir, "resume-matcher-download-")
	if err != nil {
		err = errors.Wrap(err, "failed to create export directory")
		return err
	}
	defer os.RemoveAll(dir)

	var path string
	path, err = s.ctrl.ExportTo(c.UserContext(), dir)
	if errors.Is(err, controller.ErrNoReport) {
		err = fiber.NewError(fiber.StatusNotFound, err.Error())
		return err
	}
	if err != nil {
		return err
	}

	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read export: %s", path)
		return err
	}

	c.Attachment(filepath.Base(path))
	err = c.Send(data)
	return err
}

func (s *Server) handleHealth(c *fiber.Ctx) (err error) {
	resp := fiber.Map{
		"status": "healthy",
		"state":  s.ctrl.State().String(),
		"time":   time.Now(),
	}

	if s.opts.Health != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
		defer cancel()

		upstream, upErr := s.opts.Health.Health(ctx)
		if upErr != nil {
			resp["upstream_error"] = upErr.Error()
		} else {
			resp["upstream"] = upstream
		}
	}

	err = c.JSON(resp)
	return err
}

func submission(c *fiber.Ctx) (sub scoring.Submission, err error) {
	sub.JobDescription = c.FormValue("job_description")

	fh, fileErr := c.FormFile("file")
	if fileErr != nil {
		// No file selected; the controller reports it.
		return sub, err
	}

	var f multipart.File
	f, err = fh.Open()
	if err != nil {
		err = errors.Wrap(err, "failed to open uploaded file")
		return sub, err
	}
	defer f.Close()

	sub.File, err = io.ReadAll(f)
	if err != nil {
		err = errors.Wrap(err, "failed to read uploaded file")
		return sub, err
	}
	sub.FileName = fh.Filename
	return sub, err
}

func wantsJSON(c *fiber.Ctx) (ok bool) {
	ok = strings.Contains(c.Get(fiber.HeaderAccept), fiber.MIMEApplicationJSON)
	return ok
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}
