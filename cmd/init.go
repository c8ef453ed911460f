package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/nikogura/resume-matcher/pkg/config"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a default configuration to $HOME/.resume-matcher/config.json
(or the path given with --config). An existing file is never overwritten.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) (err error) {
	err = config.InitConfig(getConfigFile())
	if err != nil {
		return err
	}

	path := getConfigFile()
	if path == "" {
		var dir string
		dir, err = config.Dir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "config.json")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Config written to %s\n", path)
	return err
}
