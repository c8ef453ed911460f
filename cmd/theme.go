package cmd

import (
	"context"
	"fmt"

	"github.com/nikogura/resume-matcher/pkg/config"
	"github.com/nikogura/resume-matcher/pkg/theme"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var themeCmd = &cobra.Command{
	Use:   "theme [toggle]",
	Short: "Show or toggle the persisted light/dark theme",
	Long: `Print the persisted theme, or flip it with "toggle".

The theme is stored in the configured backend (a local state file by default,
or redis for a profile shared between machines).

Example:
  resume-matcher theme
  resume-matcher theme toggle`,
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"toggle"},
	RunE:      runTheme,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(cmd *cobra.Command, args []string) (err error) {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(args) == 1 && args[0] != "toggle" {
		err = errors.Errorf("unknown theme action: %s", args[0])
		return err
	}

	store, redisClient, err := newThemeStore(ctx, cfg.Theme)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	manager := theme.NewManager(store, nil, cfg.Palettes, newLogger())

	current := manager.Get(ctx)
	if len(args) == 1 {
		current, err = manager.Toggle(ctx)
		if err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), current)
	if getVerbose() {
		fmt.Fprintf(cmd.OutOrStdout(), "Backend: %s\n", backendName(cfg.Theme))
	}
	return err
}

func backendName(cfg config.ThemeConfig) (name string) {
	switch cfg.Backend {
	case config.BackendRedis:
		name = "redis " + cfg.RedisAddr
	case config.BackendMemory:
		name = "memory"
	default:
		name = "file " + cfg.StatePath
	}
	return name
}
