package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var verbose bool

//nolint:gochecknoglobals // Cobra boilerplate
var configFile string

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "resume-matcher",
	Short: "Match a resume against a job description",
	Long: `resume-matcher sends a resume and a job description to a scoring service
and renders the match analysis: overall score, skill overlap and a suggestion.

Results can be exported as a PDF report, the suggestion copied to the clipboard,
and everything is also available as a local web page (resume-matcher serve).`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.resume-matcher/config.json)")
}

// getVerbose returns the verbose flag value.
func getVerbose() (result bool) {
	result = verbose
	return result
}

// getConfigFile returns the config file path.
func getConfigFile() (result string) {
	result = configFile
	return result
}

// newLogger logs to stderr, at debug level with --verbose and warnings only otherwise.
func newLogger() (logger *slog.Logger) {
	level := slog.LevelWarn
	if getVerbose() {
		level = slog.LevelDebug
	}
	logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	return logger
}
