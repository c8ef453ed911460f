package scoring

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikogura/resume-matcher/pkg/report"
	"github.com/pkg/errors"
)

const (
	// DefaultEndpoint is the hosted scoring service.
	DefaultEndpoint = "https://ai-resume-matcher-0aki.onrender.com/analyze"
	// DefaultTimeout bounds a single analysis request.
	DefaultTimeout = 120 * time.Second
	// UserAgent identifies this client to the service.
	UserAgent = "resume-matcher/1.0"
	// MaxResponseBytes caps how much of a service response is read.
	MaxResponseBytes = 4 << 20
)

// Submission is one resume/job description pair to score.
type Submission struct {
	FileName       string
	File           []byte
	JobDescription string
}

// Client talks to the scoring service.
type Client struct {
	endpoint   string
	httpClient *http.Client
	maxBody    int64
}

// NewClient creates a scoring client for the analyze endpoint.
func NewClient(endpoint string, timeout time.Duration) (client *Client) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	client = &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		maxBody: MaxResponseBytes,
	}
	return client
}

// Endpoint returns the analyze URL.
func (c *Client) Endpoint() (endpoint string) {
	endpoint = c.endpoint
	return endpoint
}

// Analyze posts the submission as multipart form data and parses the match report.
func (c *Client) Analyze(ctx context.Context, sub Submission) (r report.MatchReport, err error) {
	var body bytes.Buffer
	var contentType string
	contentType, err = writeForm(&body, sub)
	if err != nil {
		return r, err
	}

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return r, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	var respBody []byte
	respBody, err = c.do(req)
	if err != nil {
		return r, err
	}

	r, err = report.Parse(respBody)
	if err != nil {
		err = errors.Wrap(err, "failed to parse match report")
		return r, err
	}

	return r, err
}

// Health calls the service health route next to the analyze endpoint.
func (c *Client) Health(ctx context.Context) (status string, err error) {
	var healthURL string
	healthURL, err = siblingURL(c.endpoint, "health")
	if err != nil {
		return status, err
	}

	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return status, err
	}
	req.Header.Set("User-Agent", UserAgent)

	var respBody []byte
	respBody, err = c.do(req)
	if err != nil {
		return status, err
	}

	status = strings.TrimSpace(string(respBody))
	return status, err
}

// do sends the request and returns the body of a 2xx response.
func (c *Client) do(req *http.Request) (respBody []byte, err error) {
	var resp *http.Response
	resp, err = c.httpClient.Do(req)
	if err != nil {
		err = &NetworkError{URL: req.URL.String(), Err: err}
		return respBody, err
	}
	defer resp.Body.Close()

	respBody, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		err = &NetworkError{URL: req.URL.String(), Err: errors.Wrap(err, "failed to read response body")}
		return respBody, err
	}
	if int64(len(respBody)) > c.maxBody {
		err = errors.Wrapf(ErrResponseTooLarge, "response from %s exceeds %d bytes", req.URL.String(), c.maxBody)
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err = &ServiceError{StatusCode: resp.StatusCode, Body: string(respBody)}
		return respBody, err
	}

	return respBody, err
}

func writeForm(buf *bytes.Buffer, sub Submission) (contentType string, err error) {
	mw := multipart.NewWriter(buf)

	var part io.Writer
	part, err = mw.CreateFormFile("file", filepath.Base(sub.FileName))
	if err != nil {
		err = errors.Wrap(err, "failed to create file part")
		return contentType, err
	}

	_, err = part.Write(sub.File)
	if err != nil {
		err = errors.Wrap(err, "failed to write file part")
		return contentType, err
	}

	err = mw.WriteField("job_description", sub.JobDescription)
	if err != nil {
		err = errors.Wrap(err, "failed to write job description field")
		return contentType, err
	}

	err = mw.Close()
	if err != nil {
		err = errors.Wrap(err, "failed to close multipart body")
		return contentType, err
	}

	contentType = mw.FormDataContentType()
	return contentType, err
}

// siblingURL replaces the last path segment of endpoint with name.
func siblingURL(endpoint, name string) (sibling string, err error) {
	var u *url.URL
	u, err = url.Parse(endpoint)
	if err != nil {
		err = errors.Wrapf(err, "invalid endpoint: %s", endpoint)
		return sibling, err
	}

	path := strings.TrimSuffix(u.Path, "/")
	if idx := strings.LastIndex(path, "/"); idx >= 0 {
		path = path[:idx]
	}
	u.Path = path + "/" + name
	u.RawQuery = ""
	sibling = u.String()
	return sibling, err
}
