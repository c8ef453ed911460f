package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/nikogura/resume-matcher/pkg/scoring"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that the scoring service is reachable",
	Args:  cobra.NoArgs,
	RunE:  runHealth,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(healthCmd)
}

func runHealth(cmd *cobra.Command, args []string) (err error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := scoring.NewClient(cfg.Endpoint, cfg.Timeout())
	status, err := client.Health(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s: %s\n", client.Endpoint(), status)
	return err
}
