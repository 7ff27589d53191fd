package tracker

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/feedback-tools-mcp/internal/feedback"
)

// GitHub creates issues through the GitHub REST API. GitHub has no public image upload
// endpoint, so screenshots are committed under UploadDir through the contents API when
// it is set.
type GitHub struct {
	BaseURL      string // e.g. https://api.github.com
	Owner        string
	Repo         string
	Token        string
	UploadBranch string
	UploadDir    string
	HTTPClient   *http.Client
}

// Name implements Adapter.
func (g *GitHub) Name() string { return "github" }

func (g *GitHub) repoURL(suffix string) string {
	return strings.TrimRight(g.BaseURL, "/") + "/repos/" + url.PathEscape(g.Owner) + "/" + url.PathEscape(g.Repo) + suffix
}

func (g *GitHub) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+g.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
}

// UploadScreenshot implements Uploader by committing the image to the repository.
func (g *GitHub) UploadScreenshot(ctx context.Context, png []byte) (string, error) {
	if g.UploadDir == "" {
		return "", ErrUploadUnsupported
	}

	name := uuid.New().String() + ".png"
	filePath := path.Join(strings.Trim(g.UploadDir, "/"), name)
	payload := map[string]string{
		"message": "Add feedback screenshot " + name,
		"content": base64.StdEncoding.EncodeToString(png),
	}
	if g.UploadBranch != "" {
		payload["branch"] = g.UploadBranch
	}

	req, err := newJSONRequest(ctx, http.MethodPut, g.repoURL("/contents/"+filePath), payload)
	if err != nil {
		return "", err
	}
	g.authorize(req)

	var out struct {
		Content struct {
			DownloadURL string `json:"download_url"`
		} `json:"content"`
	}
	if err := do(g.HTTPClient, req, &out); err != nil {
		return "", err
	}
	if out.Content.DownloadURL == "" {
		return "", fmt.Errorf("github upload returned no download_url")
	}
	return out.Content.DownloadURL, nil
}

// CreateIssue implements Adapter.
func (g *GitHub) CreateIssue(ctx context.Context, fb *feedback.Feedback) (*IssueResponse, error) {
	payload := map[string]interface{}{
		"title": fb.Title,
		"body":  fb.Body(),
	}
	if len(fb.Labels) > 0 {
		payload["labels"] = fb.Labels
	}

	req, err := newJSONRequest(ctx, http.MethodPost, g.repoURL("/issues"), payload)
	if err != nil {
		return nil, err
	}
	g.authorize(req)

	var out struct {
		ID      int64  `json:"id"`
		Number  int    `json:"number"`
		HTMLURL string `json:"html_url"`
	}
	if err := do(g.HTTPClient, req, &out); err != nil {
		return nil, err
	}

	return &IssueResponse{
		ID:      strconv.FormatInt(out.ID, 10),
		Number:  out.Number,
		URL:     out.HTMLURL,
		Tracker: g.Name(),
	}, nil
}
