package jd

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromFile(t *testing.T) {
	// Create a test file.
	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "test.txt")

	err := os.WriteFile(testFile, []byte("Senior  Go\n\n engineer.\t Kubernetes "), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	content, err := NewLoader().Load(context.Background(), testFile)
	if err != nil {
		t.Fatalf("Failed to load from file: %v", err)
	}

	if content != "Senior Go engineer. Kubernetes" {
		t.Errorf("Expected normalized content, got '%s'", content)
	}
}

func TestLoadFromFileNonexistent(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), "/nonexistent/file.txt")
	if err == nil {
		t.Error("Expected error loading nonexistent file, got nil")
	}
}

func TestLoadFromFileEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	emptyFile := filepath.Join(tmpDir, "empty.txt")

	err := os.WriteFile(emptyFile, []byte(" \n\t"), 0600)
	if err != nil {
		t.Fatalf("Failed to create test file: %v", err)
	}

	_, err = NewLoader().Load(context.Background(), emptyFile)
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("Expected ErrEmpty, got %v", err)
	}
}

func TestLoadFromStdin(t *testing.T) {
	l := NewLoader()
	l.Stdin = strings.NewReader("Platform engineer\nwith Terraform\n")

	content, err := l.Load(context.Background(), StdinSource)
	if err != nil {
		t.Fatalf("Failed to load from stdin: %v", err)
	}
	if content != "Platform engineer with Terraform" {
		t.Errorf("Unexpected content '%s'", content)
	}
}

func TestLoadFromURL(t *testing.T) {
	testContent := "<html><head><style>h1{color:red}</style></head><body><h1>Job Title</h1><p>Job description here.</p><script>track()</script></body></html>"
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(testContent))
	}))
	defer server.Close()

	content, err := NewLoader().Load(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to load from URL: %v", err)
	}

	if content != "Job Title Job description here." {
		t.Errorf("Unexpected content '%s'", content)
	}
}

func TestLoadFromURLPlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("Needs 5 years of Go & <generics>"))
	}))
	defer server.Close()

	content, err := NewLoader().Load(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Failed to load from URL: %v", err)
	}
	if content != "Needs 5 years of Go & <generics>" {
		t.Errorf("Plain text should be kept verbatim, got '%s'", content)
	}
}

func TestLoadFromURL404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewLoader().Load(context.Background(), server.URL)
	if err == nil {
		t.Error("Expected error for 404 response, got nil")
	}
}

func TestLoadFromURLTimeout(t *testing.T) {
	// Create a server that takes too long.
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		select {
		case <-release:
		case <-time.After(5 * time.Second):
		}
		_, _ = w.Write([]byte("too slow"))
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := NewLoader().Load(ctx, server.URL)
	if err == nil {
		t.Error("Expected timeout error, got nil")
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "simple tags",
			input:    "<p>Hello <strong>world</strong></p>",
			expected: "Hello world",
		},
		{
			name:     "script tags",
			input:    "<p>Text</p><script>alert('hi')</script><p>More</p>",
			expected: "Text  More",
		},
		{
			name:     "style tags",
			input:    "<style>.class{color:red}</style><p>Content</p>",
			expected: "Content",
		},
		{
			name:     "entities",
			input:    "<p>R&amp;D &lt;team&gt;</p>",
			expected: "R&D <team>",
		},
		{
			name:     "no HTML",
			input:    "Plain text",
			expected: "Plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StripHTML(tt.input)
			if result != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, result)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("  a\n\n b\t\tc  "); got != "a b c" {
		t.Errorf("Expected 'a b c', got '%s'", got)
	}
	if got := Normalize(" \n "); got != "" {
		t.Errorf("Expected empty, got '%s'", got)
	}
}
