// Package tracker posts feedback reports to issue trackers.
//
// Each tracker is an Adapter. Adapters that can host the screenshot themselves also
// implement Uploader; Submit uploads the image first so the issue body can link it.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/ironsheep/feedback-tools-mcp/internal/feedback"
)

var (
	// ErrUploadUnsupported is returned by an Uploader that is not configured to host images.
	ErrUploadUnsupported = errors.New("tracker: screenshot upload not supported")

	// ErrNoTracker is returned by FromConfig when no tracker is configured.
	ErrNoTracker = errors.New("tracker: no tracker configured")

	// ErrUnknownTracker is returned by FromConfig for an unrecognized tracker type.
	ErrUnknownTracker = errors.New("tracker: unknown tracker type")
)

// Adapter creates issues in one tracker.
type Adapter interface {
	Name() string
	CreateIssue(ctx context.Context, fb *feedback.Feedback) (*IssueResponse, error)
}

// Uploader is implemented by adapters that can host a screenshot and return its URL.
type Uploader interface {
	UploadScreenshot(ctx context.Context, png []byte) (string, error)
}

// IssueResponse identifies the created issue.
type IssueResponse struct {
	ID            string `json:"id"`
	Number        int    `json:"number,omitempty"`
	URL           string `json:"url"`
	Tracker       string `json:"tracker"`
	ScreenshotURL string `json:"screenshot_url,omitempty"`
}

// APIError is a non-2xx response from a tracker.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("tracker: HTTP %d", e.Status)
	}
	return fmt.Sprintf("tracker: HTTP %d: %s", e.Status, e.Body)
}

// maxErrorBody bounds how much of a failed response is kept in APIError.
const maxErrorBody = 4 << 10

// maxResponseBody bounds successful response decoding.
const maxResponseBody = 1 << 20

func httpClient(c *http.Client) *http.Client {
	if c == nil {
		return http.DefaultClient
	}
	return c
}

// do sends req and decodes a 2xx JSON response into out. out may be nil.
func do(client *http.Client, req *http.Request, out interface{}) error {
	resp, err := httpClient(client).Do(req)
	if err != nil {
		return fmt.Errorf("failed to call %s: %w", req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func newJSONRequest(ctx context.Context, method, url string, in interface{}) (*http.Request, error) {
	payload, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

// newUploadRequest builds a multipart/form-data POST carrying data as the "file" field.
func newUploadRequest(ctx context.Context, url, filename string, data []byte) (*http.Request, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, fmt.Errorf("failed to write form file: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")
	return req, nil
}
