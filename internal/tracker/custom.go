package tracker

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"github.com/ironsheep/feedback-tools-mcp/internal/capture"
	"github.com/ironsheep/feedback-tools-mcp/internal/feedback"
)

// Custom posts the whole feedback bundle as JSON to a user supplied endpoint.
//
// The request body is
//
//	{"id", "title", "description", "body", "labels", "screenshot", "screenshot_url",
//	 "metadata", "created_at"}
//
// where screenshot is the base64 PNG, sent only when no screenshot_url is available.
// The endpoint answers {"id", "url"} and optionally "number".
type Custom struct {
	Endpoint       string
	UploadEndpoint string // optional multipart endpoint answering {"url"}
	Headers        map[string]string
	HTTPClient     *http.Client
}

type customPayload struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	Description   string           `json:"description"`
	Body          string           `json:"body"`
	Labels        []string         `json:"labels,omitempty"`
	Screenshot    string           `json:"screenshot,omitempty"`
	ScreenshotURL string           `json:"screenshot_url,omitempty"`
	Metadata      capture.Metadata `json:"metadata"`
	CreatedAt     time.Time        `json:"created_at"`
}

// Name implements Adapter.
func (c *Custom) Name() string { return "custom" }

func (c *Custom) setHeaders(req *http.Request) {
	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}
}

// UploadScreenshot implements Uploader when UploadEndpoint is set.
func (c *Custom) UploadScreenshot(ctx context.Context, png []byte) (string, error) {
	if c.UploadEndpoint == "" {
		return "", ErrUploadUnsupported
	}
	req, err := newUploadRequest(ctx, c.UploadEndpoint, "screenshot.png", png)
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	var out struct {
		URL string `json:"url"`
	}
	if err := do(c.HTTPClient, req, &out); err != nil {
		return "", err
	}
	if out.URL == "" {
		return "", fmt.Errorf("upload endpoint returned no url")
	}
	return out.URL, nil
}

// CreateIssue implements Adapter.
func (c *Custom) CreateIssue(ctx context.Context, fb *feedback.Feedback) (*IssueResponse, error) {
	payload := customPayload{
		ID:            fb.ID,
		Title:         fb.Title,
		Description:   fb.Description,
		Body:          fb.Body(),
		Labels:        fb.Labels,
		ScreenshotURL: fb.ScreenshotURL,
		Metadata:      fb.Metadata,
		CreatedAt:     fb.CreatedAt,
	}
	if fb.ScreenshotURL == "" && fb.HasScreenshot() {
		payload.Screenshot = base64.StdEncoding.EncodeToString(fb.Screenshot)
	}

	req, err := newJSONRequest(ctx, http.MethodPost, c.Endpoint, payload)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	var out struct {
		ID     string `json:"id"`
		Number int    `json:"number"`
		URL    string `json:"url"`
	}
	if err := do(c.HTTPClient, req, &out); err != nil {
		return nil, err
	}

	return &IssueResponse{
		ID:      out.ID,
		Number:  out.Number,
		URL:     out.URL,
		Tracker: c.Name(),
	}, nil
}
