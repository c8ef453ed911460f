package renderer

import (
	"context"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultFilenameTemplate names exported reports; {date} becomes YYYY-MM-DD.
const DefaultFilenameTemplate = "resume-match-report-{date}.pdf"

// ExportOptions configures the exported document.
type ExportOptions struct {
	OutputDir        string  `json:"output_dir"`
	FilenameTemplate string  `json:"filename_template"`
	MarginMM         float64 `json:"margin_mm"`
	ImageQuality     float64 `json:"image_quality"`
	Scale            float64 `json:"scale"`
	PageSize         string  `json:"page_size"`
	Orientation      string  `json:"orientation"`
	Title            string  `json:"title,omitempty"`
}

// DefaultExportOptions returns 10mm margins, 0.98 image quality, 2x scale, A4 portrait.
func DefaultExportOptions() (opts ExportOptions) {
	opts = ExportOptions{
		OutputDir:        ".",
		FilenameTemplate: DefaultFilenameTemplate,
		MarginMM:         10,
		ImageQuality:     0.98,
		Scale:            2,
		PageSize:         "A4",
		Orientation:      "portrait",
	}
	return opts
}

// ExportFilename expands the filename template for the given time.
func ExportFilename(template string, now time.Time) (name string) {
	if template == "" {
		template = DefaultFilenameTemplate
	}
	name = strings.ReplaceAll(template, "{date}", now.Format("2006-01-02"))
	return name
}

// Exporter turns a report fragment into a downloadable document.
type Exporter interface {
	Export(ctx context.Context, fragment Fragment, opts ExportOptions) (path string, err error)
}

// PandocExporter renders PDFs with pandoc using an HTML-capable PDF engine.
type PandocExporter struct {
	Engine string
	Now    func() time.Time
}

// NewPandocExporter creates an exporter using the given pdf engine (default wkhtmltopdf).
func NewPandocExporter(engine string) (e *PandocExporter) {
	if engine == "" {
		engine = "wkhtmltopdf"
	}
	e = &PandocExporter{
		Engine: engine,
		Now:    time.Now,
	}
	return e
}

// Export writes the fragment to a temporary HTML file, converts it and removes the temp file.
func (e *PandocExporter) Export(ctx context.Context, fragment Fragment, opts ExportOptions) (path string, err error) {
	err = checkPandocExists(ctx)
	if err != nil {
		return path, err
	}

	path = outputPath(opts, e.Now(), ".pdf")
	outputDir := filepath.Dir(path)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return path, err
	}

	var tmpDir string
	tmpDir, err = os.MkdirTemp("", "resume-matcher-export-")
	if err != nil {
		err = errors.Wrap(err, "failed to create temp directory")
		return path, err
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, fragment.ID+".html")
	err = WriteDocument(fragment, opts.Title, htmlPath)
	if err != nil {
		return path, err
	}

	args := e.buildArgs(htmlPath, path, opts)
	cmd := exec.CommandContext(ctx, "pandoc", args...)

	var output []byte
	output, err = cmd.CombinedOutput()
	if err != nil {
		err = errors.Wrapf(err, "pandoc failed: %s", string(output))
		return path, err
	}

	return path, err
}

// buildArgs maps export options onto pandoc and pdf engine flags.
func (e *PandocExporter) buildArgs(inputPath, outputPath string, opts ExportOptions) (args []string) {
	margin := formatNumber(opts.MarginMM) + "mm"
	args = []string{
		"-f", "html",
		"-t", "pdf",
		"-o", outputPath,
		"--pdf-engine=" + e.Engine,
	}

	if e.Engine == "wkhtmltopdf" {
		quality := int(math.Round(opts.ImageQuality * 100))
		engineOpts := []string{
			"--page-size", opts.PageSize,
			"--orientation", orientation(opts.Orientation),
			"--margin-top", margin,
			"--margin-bottom", margin,
			"--margin-left", margin,
			"--margin-right", margin,
			"--image-quality", strconv.Itoa(quality),
			"--zoom", formatNumber(opts.Scale),
		}
		for _, opt := range engineOpts {
			args = append(args, "--pdf-engine-opt="+opt)
		}
	} else {
		args = append(args,
			"-V", "geometry:margin="+margin,
			"-V", "papersize="+strings.ToLower(opts.PageSize),
		)
		if orientation(opts.Orientation) == "Landscape" {
			args = append(args, "-V", "geometry:landscape")
		}
	}

	args = append(args, inputPath)
	return args
}

// HTMLExporter writes the report as a standalone HTML document.
type HTMLExporter struct {
	Now func() time.Time
}

// NewHTMLExporter creates an HTML exporter.
func NewHTMLExporter() (e *HTMLExporter) {
	e = &HTMLExporter{Now: time.Now}
	return e
}

// Export writes the document next to where the PDF would go, with an .html extension.
func (e *HTMLExporter) Export(_ context.Context, fragment Fragment, opts ExportOptions) (path string, err error) {
	path = outputPath(opts, e.Now(), ".html")
	err = WriteDocument(fragment, opts.Title, path)
	return path, err
}

// WriteDocument writes a fragment as a standalone HTML file.
func WriteDocument(fragment Fragment, title, outputPath string) (err error) {
	if title == "" {
		title = "AI Resume Match Report"
	}

	var doc string
	doc, err = Document(fragment, title)
	if err != nil {
		return err
	}

	outputDir := filepath.Dir(outputPath)
	err = os.MkdirAll(outputDir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create output directory: %s", outputDir)
		return err
	}

	err = os.WriteFile(outputPath, []byte(doc), 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write report file: %s", outputPath)
		return err
	}

	return err
}

// checkPandocExists verifies pandoc is installed.
func checkPandocExists(ctx context.Context) (err error) {
	cmd := exec.CommandContext(ctx, "pandoc", "--version")
	err = cmd.Run()
	if err != nil {
		err = errors.Wrap(ErrPandocMissing, err.Error())
		return err
	}
	return err
}

// ErrPandocMissing is returned when pandoc cannot be run.
var ErrPandocMissing = errors.New("pandoc not found in PATH (install pandoc to generate PDFs)")

func outputPath(opts ExportOptions, now time.Time, ext string) (path string) {
	name := ExportFilename(opts.FilenameTemplate, now)
	name = strings.TrimSuffix(name, filepath.Ext(name)) + ext
	dir := opts.OutputDir
	if dir == "" {
		dir = "."
	}
	path = filepath.Join(dir, name)
	return path
}

func orientation(value string) (o string) {
	if strings.EqualFold(value, "landscape") {
		o = "Landscape"
		return o
	}
	o = "Portrait"
	return o
}

func formatNumber(value float64) (text string) {
	text = strconv.FormatFloat(value, 'f', -1, 64)
	return text
}
