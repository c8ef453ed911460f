package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/nikogura/resume-matcher/pkg/controller"
	"github.com/nikogura/resume-matcher/pkg/jd"
	"github.com/nikogura/resume-matcher/pkg/report"
	"github.com/nikogura/resume-matcher/pkg/scoring"
	"github.com/nikogura/resume-matcher/pkg/view"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var jdSource string

//nolint:gochecknoglobals // Cobra boilerplate
var jdText string

//nolint:gochecknoglobals // Cobra boilerplate
var chartPath string

//nolint:gochecknoglobals // Cobra boilerplate
var exportReport bool

//nolint:gochecknoglobals // Cobra boilerplate
var copySuggestion bool

//nolint:gochecknoglobals // Cobra boilerplate
var jsonOutput bool

//nolint:gochecknoglobals // Cobra boilerplate
var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume-file>",
	Short: "Score a resume against a job description",
	Long: `Send a resume (PDF or DOCX) and a job description to the scoring service
and print the match analysis.

The job description can be provided as:
- A file path (--jd jd.txt)
- A URL (--jd https://example.com/jobs/123)
- Standard input (--jd -)
- Inline text (--jd-text "...")

Example:
  resume-matcher analyze cv.pdf --jd jd.txt
  resume-matcher analyze cv.docx --jd https://example.com/jobs/123 --export
  pbpaste | resume-matcher analyze cv.pdf --jd - --chart chart.png --copy`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&jdSource, "jd", "", "Job description file, URL, or - for stdin")
	analyzeCmd.Flags().StringVar(&jdText, "jd-text", "", "Job description text")
	analyzeCmd.Flags().StringVar(&chartPath, "chart", "", "Write the before/after chart as PNG to this path")
	analyzeCmd.Flags().BoolVar(&exportReport, "export", false, "Export the report (PDF, or HTML per config)")
	analyzeCmd.Flags().BoolVar(&copySuggestion, "copy", false, "Copy the suggestion to the clipboard")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw match report as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
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

	var sub scoring.Submission
	sub, err = buildSubmission(ctx, args)
	if err != nil {
		return err
	}

	if !getVerbose() && !jsonOutput {
		indicator := newStatusIndicator(os.Stderr, fmt.Sprintf("Analyzing with %s...", a.client.Endpoint()))
		indicator.follow(a.page)
		defer indicator.hide()
	} else if getVerbose() {
		fmt.Printf("Submitting %s to %s\n", sub.FileName, a.client.Endpoint())
	}

	var r report.MatchReport
	r, err = a.ctrl.Submit(ctx, sub)

	var vErr *controller.ValidationError
	if errors.As(err, &vErr) {
		for _, alert := range a.page.DrainAlerts() {
			fmt.Fprintln(os.Stderr, alert)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if err != nil {
		_ = view.WriteTerminal(out, a.page.Snapshot(), report.TierLow)
		return err
	}

	if jsonOutput {
		err = printJSON(out, r)
	} else {
		err = view.WriteTerminal(out, a.page.Snapshot(), report.TierFor(r.MatchPercentage))
	}
	if err != nil {
		return err
	}

	err = runAnalyzeActions(ctx, a, out)
	return err
}

func runAnalyzeActions(ctx context.Context, a *app, out io.Writer) (err error) {
	if chartPath != "" {
		err = writeChart(a.page, chartPath)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Chart written to %s\n", chartPath)
	}

	if copySuggestion {
		err = a.ctrl.Copy(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, "✓ Suggestion copied to clipboard")
	}

	if exportReport {
		var path string
		path, err = a.ctrl.Export(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "✓ Report exported to %s\n", path)
	}

	return err
}

func buildSubmission(ctx context.Context, args []string) (sub scoring.Submission, err error) {
	if len(args) > 0 {
		sub.FileName = filepath.Base(args[0])
		sub.File, err = os.ReadFile(args[0])
		if err != nil {
			err = errors.Wrapf(err, "failed to read resume: %s", args[0])
			return sub, err
		}
	}

	switch {
	case jdText != "":
		sub.JobDescription = jdText
	case jdSource != "":
		sub.JobDescription, err = loadJD(ctx, jdSource)
		if err != nil {
			return sub, err
		}
	}

	return sub, err
}

// loadJD loads the job description and, when a URL cannot be read, offers to accept pasted text.
func loadJD(ctx context.Context, source string) (text string, err error) {
	if getVerbose() {
		fmt.Printf("Loading job description from: %s\n", source)
	}

	loader := jd.NewLoader()
	text, err = loader.Load(ctx, source)
	if err == nil {
		if getVerbose() {
			fmt.Printf("Job description loaded (%d characters)\n", len(text))
		}
		return text, err
	}

	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		return text, err
	}

	fmt.Printf("\nWarning: Failed to fetch job description from URL: %v\n", err)
	fmt.Println("This often happens with JavaScript-rendered pages (Lever, Workable, etc.)")
	fmt.Println("\nPlease paste the job description text below.")
	fmt.Println("When finished, press Ctrl+D (Unix/Mac) or Ctrl+Z then Enter (Windows):")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}

	if scanner.Err() != nil {
		err = errors.Wrap(scanner.Err(), "failed to read job description from stdin")
		return text, err
	}

	// An empty paste is caught by submission validation.
	text = jd.Normalize(strings.Join(lines, "\n"))
	fmt.Printf("\nJob description received (%d characters)\n", len(text))
	err = nil
	return text, err
}

func writeChart(page *view.Page, path string) (err error) {
	var f *os.File
	f, err = os.Create(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to create chart file: %s", path)
		return err
	}
	defer f.Close()

	err = page.WriteChartPNG(f)
	if err != nil {
		err = errors.Wrap(err, "failed to write chart")
		return err
	}
	return err
}

func printJSON(out io.Writer, r report.MatchReport) (err error) {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	err = enc.Encode(r)
	if err != nil {
		err = errors.Wrap(err, "failed to encode report")
		return err
	}
	return err
}
