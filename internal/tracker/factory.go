package tracker

import (
	"fmt"
	"net/http"

	"github.com/ironsheep/feedback-tools-mcp/internal/config"
)

// FromConfig builds the adapter selected by cfg.Type. A nil client uses
// http.DefaultClient. It returns ErrNoTracker when the type is empty or "none".
func FromConfig(cfg config.TrackerConfig, client *http.Client) (Adapter, error) {
	switch cfg.Type {
	case "", config.TrackerNone:
		return nil, ErrNoTracker
	case config.TrackerGitLab:
		return &GitLab{
			BaseURL:    cfg.GitLab.BaseURL,
			ProjectID:  cfg.GitLab.ProjectID,
			Token:      cfg.GitLab.Token,
			HTTPClient: client,
		}, nil
	case config.TrackerGitHub:
		return &GitHub{
			BaseURL:      cfg.GitHub.BaseURL,
			Owner:        cfg.GitHub.Owner,
			Repo:         cfg.GitHub.Repo,
			Token:        cfg.GitHub.Token,
			UploadBranch: cfg.GitHub.UploadBranch,
			UploadDir:    cfg.GitHub.UploadDir,
			HTTPClient:   client,
		}, nil
	case config.TrackerCustom:
		return &Custom{
			Endpoint:       cfg.Custom.Endpoint,
			UploadEndpoint: cfg.Custom.UploadEndpoint,
			Headers:        cfg.Custom.Headers,
			HTTPClient:     client,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTracker, cfg.Type)
	}
}
