package web

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/nikogura/resume-matcher/pkg/chart"
	"github.com/nikogura/resume-matcher/pkg/clipboard"
	"github.com/nikogura/resume-matcher/pkg/controller"
	"github.com/nikogura/resume-matcher/pkg/renderer"
	"github.com/nikogura/resume-matcher/pkg/report"
	"github.com/nikogura/resume-matcher/pkg/scoring"
	"github.com/nikogura/resume-matcher/pkg/theme"
	"github.com/nikogura/resume-matcher/pkg/view"
)

const samplePayload = `{
  "match_percentage": 85,
  "keyword_overlap_ratio": 40,
  "suggestion": "Excellent match!",
  "skills_analysis": {
    "resume_skills_found": ["Go", "Docker"],
    "jd_skills_found": ["Go"],
    "matched_skills": ["Go"],
    "skills_match_count": 1,
    "skills_match_percentage": 100
  }
}`

type testEnv struct {
	server     *Server
	page       *view.Page
	clipboard  *clipboard.Memory
	outputDir  string
	scratchDir string
}

func newTestEnv(t *testing.T, handler http.HandlerFunc) (env *testEnv) {
	t.Helper()

	upstream := httptest.NewServer(handler)
	t.Cleanup(upstream.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	canvas, err := chart.NewImageCanvas(400, 300)
	if err != nil {
		t.Fatalf("Failed to create canvas: %v", err)
	}
	page := view.NewPage(canvas)
	themes := theme.NewManager(theme.NewMemoryStore(), page, theme.DefaultPalettes(), logger)
	themes.Apply(context.Background())

	exportOpts := renderer.DefaultExportOptions()
	exportOpts.OutputDir = t.TempDir()

	client := scoring.NewClient(upstream.URL+"/analyze", 5*time.Second)
	clip := clipboard.NewMemory()

	ctrl := controller.New(controller.Deps{
		Analyzer:  client,
		Surface:   page,
		Chart:     chart.NewRenderer(chart.DefaultGeometry(), report.DefaultTierColors(), themes),
		Exporter:  renderer.NewHTMLExporter(),
		Clipboard: clip,
		Theme:     themes,
	}, controller.Options{
		ExportOptions: exportOpts,
		Logger:        logger,
	})
	t.Cleanup(ctrl.Close)

	scratch := t.TempDir()
	env = &testEnv{
		server:     NewServer(ctrl, page, Options{Palettes: themes, Health: client, Logger: logger, ScratchDir: scratch}),
		page:       page,
		clipboard:  clip,
		outputDir:  exportOpts.OutputDir,
		scratchDir: scratch,
	}
	return env
}

func scoringHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/health" {
		_, _ = w.Write([]byte("ok"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(samplePayload))
}

func analyzeRequest(t *testing.T, fileName, jd string) (req *http.Request) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if fileName != "" {
		part, err := mw.CreateFormFile("file", fileName)
		if err != nil {
			t.Fatalf("Failed to create file part: %v", err)
		}
		_, _ = part.Write([]byte("%PDF-1.4"))
	}
	_ = mw.WriteField("job_description", jd)
	_ = mw.Close()

	req = httptest.NewRequest(http.MethodPost, "/analyze", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func (env *testEnv) do(t *testing.T, req *http.Request) (resp *http.Response, body string) {
	t.Helper()

	resp, err := env.server.App().Test(req, -1)
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	data, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	body = string(data)
	return resp, body
}

func (env *testEnv) get(t *testing.T, path string) (resp *http.Response, body string) {
	t.Helper()
	resp, body = env.do(t, httptest.NewRequest(http.MethodGet, path, nil))
	return resp, body
}

func TestIndexInitial(t *testing.T) {
	env := newTestEnv(t, scoringHandler)

	resp, body := env.get(t, "/")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `data-theme="light"`) {
		t.Error("Expected light theme on first load")
	}
	if strings.Contains(body, `id="result"`) || strings.Contains(body, `id="copyBtn"`) {
		t.Error("Result and actions must be hidden before any analysis")
	}
}

func TestAnalyzeFlow(t *testing.T) {
	env := newTestEnv(t, scoringHandler)

	resp, _ := env.do(t, analyzeRequest(t, "cv.pdf", "Go engineer"))
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Location") != "/" {
		t.Errorf("Expected redirect to /, got %s", resp.Header.Get("Location"))
	}

	_, body := env.get(t, "/")
	for _, want := range []string{
		`<h2 id="scoreText">85.0%</h2>`,
		`<span class="skill-chip">Docker</span>`,
		"Excellent match!",
		"width: 85%",
		`id="comparisonChart"`,
		`id="copyBtn">Copy Suggestion</button>`,
		`id="exportPdfBtn"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q in page", want)
		}
	}

	resp, png := env.get(t, "/chart.png")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected chart, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Content-Type") != "image/png" || !strings.HasPrefix(png, "\x89PNG") {
		t.Error("Expected PNG chart")
	}
}

func TestAnalyzeValidation(t *testing.T) {
	calls := 0
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		scoringHandler(w, r)
	})

	resp, _ := env.do(t, analyzeRequest(t, "", "Go engineer"))
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", resp.StatusCode)
	}
	if calls != 0 {
		t.Error("Validation failure must not call the scoring service")
	}

	_, body := env.get(t, "/")
	if !strings.Contains(body, "Please select a resume file (PDF or DOCX).") {
		t.Error("Expected missing resume alert")
	}

	// Alerts are shown once.
	_, body = env.get(t, "/")
	if strings.Contains(body, `role="alert"`) {
		t.Error("Alert should be drained after display")
	}

	req := analyzeRequest(t, "cv.pdf", "   ")
	req.Header.Set("Accept", "application/json")
	resp, body = env.do(t, req)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, controller.MsgMissingJD) {
		t.Errorf("Expected job description message, got %s", body)
	}
}

func TestAnalyzeServiceFailure(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("model unavailable"))
	})

	req := analyzeRequest(t, "cv.pdf", "Go engineer")
	req.Header.Set("Accept", "application/json")
	resp, body := env.do(t, req)
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("Expected 502, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "HTTP 500: model unavailable") {
		t.Errorf("Unexpected body %s", body)
	}

	_, page := env.get(t, "/")
	if !strings.Contains(page, "❌ Error: HTTP 500: model unavailable") {
		t.Error("Expected inline error on page")
	}
	if strings.Contains(page, `id="exportPdfBtn"`) {
		t.Error("Export must stay hidden after failure")
	}

	resp, _ = env.get(t, "/chart.png")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected no chart after failure, got %d", resp.StatusCode)
	}
}

func TestAnalyzeJSON(t *testing.T) {
	env := newTestEnv(t, scoringHandler)

	req := analyzeRequest(t, "cv.pdf", "Go engineer")
	req.Header.Set("Accept", "application/json")
	resp, body := env.do(t, req)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}

	var r report.MatchReport
	err := json.Unmarshal([]byte(body), &r)
	if err != nil {
		t.Fatalf("Failed to decode report: %v", err)
	}
	if r.MatchPercentage != 85 {
		t.Errorf("Expected 85, got %v", r.MatchPercentage)
	}
}

func TestActionsWithoutReport(t *testing.T) {
	env := newTestEnv(t, scoringHandler)

	for _, tc := range []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/export"},
		{http.MethodPost, "/copy"},
		{http.MethodGet, "/chart.png"},
	} {
		resp, _ := env.do(t, httptest.NewRequest(tc.method, tc.path, nil))
		if resp.StatusCode != http.StatusNotFound {
			t.Errorf("%s %s: expected 404, got %d", tc.method, tc.path, resp.StatusCode)
		}
	}
}

func TestExportDownload(t *testing.T) {
	env := newTestEnv(t, scoringHandler)
	env.do(t, analyzeRequest(t, "cv.pdf", "Go engineer"))

	resp, body := env.get(t, "/export")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "resume-match-report-") {
		t.Errorf("Unexpected disposition %s", resp.Header.Get("Content-Disposition"))
	}
	if !strings.Contains(body, "pdf-report") {
		t.Error("Expected report document")
	}
	if len(env.page.Fragments()) != 0 {
		t.Error("Export fragment must be detached")
	}
	if !env.page.Visible(view.PanelResult) {
		t.Error("Result panel must be restored after export")
	}
}

func TestExportDownloadLeavesNoFiles(t *testing.T) {
	env := newTestEnv(t, scoringHandler)
	env.do(t, analyzeRequest(t, "cv.pdf", "Go engineer"))

	for i := 0; i < 3; i++ {
		resp, body := env.get(t, "/export")
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, body)
		}
	}

	for _, dir := range []string{env.outputDir, env.scratchDir} {
		entries, err := os.ReadDir(dir)
		if err != nil {
			t.Fatalf("Failed to read %s: %v", dir, err)
		}
		if len(entries) != 0 {
			t.Errorf("Expected %s to be empty after downloads, found %d entries", dir, len(entries))
		}
	}
}

func TestCopy(t *testing.T) {
	env := newTestEnv(t, scoringHandler)
	env.do(t, analyzeRequest(t, "cv.pdf", "Go engineer"))

	resp, _ := env.do(t, httptest.NewRequest(http.MethodPost, "/copy", nil))
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", resp.StatusCode)
	}
	if env.clipboard.Text() != "Excellent match!" {
		t.Errorf("Unexpected clipboard %q", env.clipboard.Text())
	}

	_, body := env.get(t, "/")
	if !strings.Contains(body, view.CopiedLabel) {
		t.Error("Expected copied label")
	}
}

func TestThemeToggle(t *testing.T) {
	env := newTestEnv(t, scoringHandler)

	resp, _ := env.do(t, httptest.NewRequest(http.MethodPost, "/theme", nil))
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("Expected 303, got %d", resp.StatusCode)
	}

	_, body := env.get(t, "/")
	if !strings.Contains(body, `data-theme="dark"`) {
		t.Error("Expected dark theme after toggle")
	}
	if !strings.Contains(body, "#121212") {
		t.Error("Expected dark palette in page styles")
	}

	req := httptest.NewRequest(http.MethodPost, "/theme", nil)
	req.Header.Set("Accept", "application/json")
	_, body = env.do(t, req)
	if !strings.Contains(body, `"theme":"light"`) {
		t.Errorf("Expected light theme after second toggle, got %s", body)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, scoringHandler)

	resp, body := env.get(t, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}

	var health map[string]any
	err := json.Unmarshal([]byte(body), &health)
	if err != nil {
		t.Fatalf("Failed to decode health: %v", err)
	}
	if health["status"] != "healthy" || health["upstream"] != "ok" || health["state"] != "idle" {
		t.Errorf("Unexpected health %v", health)
	}
}

func TestMetrics(t *testing.T) {
	env := newTestEnv(t, scoringHandler)
	env.do(t, analyzeRequest(t, "cv.pdf", "Go engineer"))

	resp, body := env.get(t, "/metrics")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "resume_matcher_submissions_total") {
		t.Error("Expected submission counter")
	}
}
