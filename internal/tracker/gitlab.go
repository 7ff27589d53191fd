package tracker

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ironsheep/feedback-tools-mcp/internal/feedback"
)

// GitLab creates issues through the GitLab REST API v4.
type GitLab struct {
	BaseURL    string // e.g. https://gitlab.com
	ProjectID  string // numeric id or "group/project"
	Token      string
	HTTPClient *http.Client
}

// Name implements Adapter.
func (g *GitLab) Name() string { return "gitlab" }

func (g *GitLab) projectURL(suffix string) string {
	return strings.TrimRight(g.BaseURL, "/") + "/api/v4/projects/" + url.PathEscape(g.ProjectID) + suffix
}

// UploadScreenshot implements Uploader using the project uploads endpoint.
func (g *GitLab) UploadScreenshot(ctx context.Context, png []byte) (string, error) {
	req, err := newUploadRequest(ctx, g.projectURL("/uploads"), "screenshot.png", png)
	if err != nil {
		return "", err
	}
	req.Header.Set("PRIVATE-TOKEN", g.Token)

	var out struct {
		URL      string `json:"url"`
		FullPath string `json:"full_path"`
	}
	if err := do(g.HTTPClient, req, &out); err != nil {
		return "", err
	}

	base := strings.TrimRight(g.BaseURL, "/")
	switch {
	case out.FullPath != "":
		return base + out.FullPath, nil
	case out.URL != "":
		return base + "/" + strings.Trim(g.ProjectID, "/") + out.URL, nil
	}
	return "", fmt.Errorf("gitlab upload returned no url")
}

// CreateIssue implements Adapter.
func (g *GitLab) CreateIssue(ctx context.Context, fb *feedback.Feedback) (*IssueResponse, error) {
	payload := map[string]interface{}{
		"title":       fb.Title,
		"description": fb.Body(),
	}
	if len(fb.Labels) > 0 {
		payload["labels"] = strings.Join(fb.Labels, ",")
	}

	req, err := newJSONRequest(ctx, http.MethodPost, g.projectURL("/issues"), payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("PRIVATE-TOKEN", g.Token)

	var out struct {
		ID     int64  `json:"id"`
		IID    int    `json:"iid"`
		WebURL string `json:"web_url"`
	}
	if err := do(g.HTTPClient, req, &out); err != nil {
		return nil, err
	}

	return &IssueResponse{
		ID:      strconv.FormatInt(out.ID, 10),
		Number:  out.IID,
		URL:     out.WebURL,
		Tracker: g.Name(),
	}, nil
}
