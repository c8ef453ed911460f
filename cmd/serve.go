package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/nikogura/resume-matcher/pkg/web"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveAddr string

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the matcher as a local web page",
	Long: `Serve the upload form, result panel, chart, copy/export actions and theme
toggle on a local address. Prometheus metrics are exposed at /metrics.

Example:
  resume-matcher serve
  resume-matcher serve --addr 127.0.0.1:9090`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger()
	var a *app
	a, err = newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	server := web.NewServer(a.ctrl, a.page, web.Options{
		Palettes: a.themes,
		Health:   a.client,
		Logger:   logger,
	})

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr := server.Shutdown(shutdownCtx)
		if shutdownErr != nil {
			logger.Error("shutdown failed", "error", shutdownErr)
		}
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving on http://%s (Ctrl+C to stop)\n", addr)
	err = server.Listen(addr)
	return err
}
