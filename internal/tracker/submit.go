package tracker

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ironsheep/feedback-tools-mcp/internal/feedback"
	"github.com/ironsheep/feedback-tools-mcp/internal/imaging"
)

// SubmitOption configures Submit.
type SubmitOption func(*submitConfig)

type submitConfig struct {
	logger    *zap.Logger
	maxWidth  int
	maxHeight int
}

// WithLogger logs upload fallbacks and the created issue.
func WithLogger(l *zap.Logger) SubmitOption {
	return func(c *submitConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMaxSize downscales the screenshot to fit within the limits before it is sent.
// Non-positive values disable a limit.
func WithMaxSize(width, height int) SubmitOption {
	return func(c *submitConfig) { c.maxWidth, c.maxHeight = width, height }
}

// Submit validates fb and files it with adapter.
//
// When the adapter is an Uploader and a screenshot is attached, the screenshot is
// uploaded first and linked from the issue body. A failed upload is logged and the
// issue is created without the link. fb is not modified.
func Submit(ctx context.Context, adapter Adapter, fb *feedback.Feedback, opts ...SubmitOption) (*IssueResponse, error) {
	cfg := submitConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}

	if err := fb.Validate(); err != nil {
		return nil, err
	}

	report := *fb
	if report.HasScreenshot() && (cfg.maxWidth > 0 || cfg.maxHeight > 0) {
		fitted, err := imaging.FitPNG(report.Screenshot, cfg.maxWidth, cfg.maxHeight)
		if err != nil {
			return nil, fmt.Errorf("failed to resize screenshot: %w", err)
		}
		report.Screenshot = fitted
	}

	if up, ok := adapter.(Uploader); ok && report.HasScreenshot() && report.ScreenshotURL == "" {
		u, err := up.UploadScreenshot(ctx, report.Screenshot)
		switch {
		case errors.Is(err, ErrUploadUnsupported):
		case err != nil:
			cfg.logger.Warn("screenshot upload failed, creating issue without it",
				zap.String("tracker", adapter.Name()),
				zap.Error(err))
		default:
			report.ScreenshotURL = u
		}
	}

	resp, err := adapter.CreateIssue(ctx, &report)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s issue: %w", adapter.Name(), err)
	}
	resp.ScreenshotURL = report.ScreenshotURL

	cfg.logger.Info("issue created",
		zap.String("tracker", resp.Tracker),
		zap.String("id", resp.ID),
		zap.String("url", resp.URL))
	return resp, nil
}
