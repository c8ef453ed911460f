package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nikogura/resume-matcher/pkg/chart"
	"github.com/nikogura/resume-matcher/pkg/clipboard"
	"github.com/nikogura/resume-matcher/pkg/config"
	"github.com/nikogura/resume-matcher/pkg/controller"
	"github.com/nikogura/resume-matcher/pkg/renderer"
	"github.com/nikogura/resume-matcher/pkg/scoring"
	"github.com/nikogura/resume-matcher/pkg/theme"
	"github.com/nikogura/resume-matcher/pkg/view"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// app is one wired page with its controller.
type app struct {
	cfg    config.Config
	logger *slog.Logger
	page   *view.Page
	canvas *chart.ImageCanvas
	themes *theme.Manager
	client *scoring.Client
	ctrl   *controller.Controller
	redis  *redis.Client
}

func (a *app) Close() {
	a.ctrl.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// loadConfig loads the config named by --config.
func loadConfig() (cfg config.Config, err error) {
	cfg, err = config.Load(getConfigFile())
	if err != nil {
		err = errors.Wrap(err, "failed to load config")
		return cfg, err
	}
	return cfg, err
}

// newApp wires the page, theme, chart, scoring client, exporter and controller from cfg.
func newApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (a *app, err error) {
	a = &app{cfg: cfg, logger: logger}

	a.canvas, err = chart.NewImageCanvas(cfg.Chart.Width, cfg.Chart.Height)
	if err != nil {
		return a, err
	}
	a.page = view.NewPage(a.canvas)

	var store theme.Store
	store, a.redis, err = newThemeStore(ctx, cfg.Theme)
	if err != nil {
		return a, err
	}
	a.themes = theme.NewManager(store, a.page, cfg.Palettes, logger)
	a.themes.Apply(ctx)

	a.client = scoring.NewClient(cfg.Endpoint, cfg.Timeout())

	a.ctrl = controller.New(controller.Deps{
		Analyzer:  a.client,
		Surface:   a.page,
		Chart:     chart.NewRenderer(cfg.Chart.Geometry, cfg.Colors, a.themes),
		Exporter:  newExporter(cfg.Export, logger),
		Clipboard: clipboard.NewSystem(),
		Theme:     a.themes,
	}, controller.Options{
		Colors:        cfg.Colors,
		ExportOptions: cfg.Export.ExportOptions,
		CopyAckDelay:  cfg.CopyAckDelay(),
		Logger:        logger,
	})

	return a, err
}

func newThemeStore(ctx context.Context, cfg config.ThemeConfig) (store theme.Store, client *redis.Client, err error) {
	switch cfg.Backend {
	case config.BackendRedis:
		client, err = theme.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return store, client, err
		}
		store = theme.NewRedisStore(client, cfg.RedisPrefix)
	case config.BackendMemory:
		store = theme.NewMemoryStore()
	default:
		store, err = theme.NewFileStore(cfg.StatePath)
	}
	return store, client, err
}

func newExporter(cfg config.ExportConfig, logger *slog.Logger) (e renderer.Exporter) {
	if cfg.Format == config.FormatHTML {
		e = renderer.NewHTMLExporter()
		return e
	}

	e = &renderer.FallbackExporter{
		Primary:  renderer.NewPandocExporter(cfg.PDFEngine),
		Fallback: renderer.NewHTMLExporter(),
		OnFallback: func(err error) {
			logger.Warn("pandoc unavailable, exporting HTML instead", "error", err)
			if getVerbose() {
				fmt.Println("Note: pandoc not found, report exported as HTML")
			}
		},
	}
	return e
}
