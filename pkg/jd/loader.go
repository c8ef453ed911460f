package jd

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/net/html"
)

// StdinSource reads the job description from standard input.
const StdinSource = "-"

// MaxBytes caps how much of a job description source is read.
const MaxBytes = 1 << 20

// ErrEmpty is returned when a source yields no text.
var ErrEmpty = errors.New("job description is empty")

// Loader reads job descriptions from files, URLs or standard input.
type Loader struct {
	HTTPClient *http.Client
	Stdin      io.Reader
	UserAgent  string
}

// NewLoader creates a loader reading stdin from os.Stdin.
func NewLoader() (l *Loader) {
	l = &Loader{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Stdin:      os.Stdin,
		UserAgent:  "resume-matcher/1.0",
	}
	return l
}

// Load retrieves job description text from source: "-" for stdin, an http(s) URL, or a file path.
// HTML pages are reduced to their visible text. Whitespace is collapsed.
func (l *Loader) Load(ctx context.Context, source string) (text string, err error) {
	switch {
	case source == StdinSource:
		text, err = l.fromReader(l.Stdin)
		if err != nil {
			err = errors.Wrap(err, "failed to read job description from stdin")
			return text, err
		}
	case isURL(source):
		text, err = l.fromURL(ctx, source)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch job description from URL: %s", source)
			return text, err
		}
	default:
		text, err = fromFile(source)
		if err != nil {
			err = errors.Wrapf(err, "failed to read job description from file: %s", source)
			return text, err
		}
	}

	text = Normalize(text)
	if text == "" {
		err = errors.Wrapf(ErrEmpty, "source %s", source)
		return text, err
	}

	return text, err
}

// Normalize collapses runs of whitespace to single spaces and trims the ends.
func Normalize(text string) (normalized string) {
	normalized = strings.Join(strings.Fields(text), " ")
	return normalized
}

func isURL(source string) (ok bool) {
	parsed, err := url.Parse(source)
	ok = err == nil && (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
	return ok
}

func fromFile(path string) (text string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", path)
		return text, err
	}

	text = string(data)
	if looksLikeHTML(text) {
		text = StripHTML(text)
	}
	return text, err
}

func (l *Loader) fromReader(r io.Reader) (text string, err error) {
	if r == nil {
		err = errors.New("no input available")
		return text, err
	}

	var data []byte
	data, err = io.ReadAll(io.LimitReader(r, MaxBytes))
	if err != nil {
		return text, err
	}
	text = string(data)
	return text, err
}

func (l *Loader) fromURL(ctx context.Context, source string) (text string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return text, err
	}
	req.Header.Set("User-Agent", l.UserAgent)

	client := l.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return text, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return text, err
	}

	var body []byte
	body, err = io.ReadAll(io.LimitReader(resp.Body, MaxBytes))
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return text, err
	}

	text = string(body)
	if strings.Contains(resp.Header.Get("Content-Type"), "html") || looksLikeHTML(text) {
		text = StripHTML(text)
	}
	return text, err
}

func looksLikeHTML(text string) (ok bool) {
	head := strings.ToLower(strings.TrimSpace(text))
	if len(head) > 512 {
		head = head[:512]
	}
	ok = strings.HasPrefix(head, "<!doctype html") || strings.Contains(head, "<html") || strings.Contains(head, "<body")
	return ok
}

// StripHTML returns the visible text of an HTML document. Script and style contents are dropped
// and block elements are separated by spaces.
func StripHTML(doc string) (text string) {
	z := html.NewTokenizer(strings.NewReader(doc))
	var b strings.Builder
	skip := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			text = strings.TrimSpace(b.String())
			return text
		case html.StartTagToken, html.EndTagToken:
			name, _ := z.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" || tag == "noscript" {
				if tt == html.StartTagToken {
					skip++
				} else if skip > 0 {
					skip--
				}
			}
			if blockTags[tag] {
				b.WriteByte(' ')
			}
		case html.SelfClosingTagToken:
			name, _ := z.TagName()
			if string(name) == "br" {
				b.WriteByte(' ')
			}
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

//nolint:gochecknoglobals // Lookup table
var blockTags = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "ul": true, "ol": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"tr": true, "td": true, "th": true, "section": true, "article": true,
	"header": true, "footer": true, "table": true,
}
