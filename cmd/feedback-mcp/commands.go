package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/feedback-tools-mcp/internal/annotate"
	"github.com/ironsheep/feedback-tools-mcp/internal/capture"
	"github.com/ironsheep/feedback-tools-mcp/internal/feedback"
	"github.com/ironsheep/feedback-tools-mcp/internal/report"
	"github.com/ironsheep/feedback-tools-mcp/internal/server"
	"github.com/ironsheep/feedback-tools-mcp/internal/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server on stdin/stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg, server.WithLogger(logger), server.WithVersion(Version))
		logger.Info("MCP server listening on stdio")
		return srv.Run(ctx)
	},
}

var captureFlags struct {
	out      string
	metadata string
	fullPage bool
	width    int
	height   int
}

var captureCmd = &cobra.Command{
	Use:   "capture [url]",
	Short: "Screenshot a web page with a headless browser",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		c := cfg.Capture
		opts := capture.Options{
			URL:            args[0],
			FullPage:       c.FullPage || captureFlags.fullPage,
			ViewportWidth:  c.ViewportWidth,
			ViewportHeight: c.ViewportHeight,
			DeviceScale:    c.DeviceScale,
			Timeout:        cfg.GetCaptureTimeout(),
			Headless:       c.Headless,
			BrowserBin:     c.BrowserBin,
			ControlURL:     c.ControlURL,
		}
		if captureFlags.width > 0 {
			opts.ViewportWidth = captureFlags.width
		}
		if captureFlags.height > 0 {
			opts.ViewportHeight = captureFlags.height
		}

		res, err := capture.NewRodCapturer(logger).Capture(ctx, opts)
		if err != nil {
			return err
		}
		if err := os.WriteFile(captureFlags.out, res.PNG, 0644); err != nil {
			return fmt.Errorf("failed to write screenshot: %w", err)
		}
		if captureFlags.metadata != "" {
			if err := writeJSON(captureFlags.metadata, res.Metadata); err != nil {
				return err
			}
		}
		fmt.Fprintln(cmd.OutOrStdout(), captureFlags.out)
		return nil
	},
}

var annotateFlags struct {
	out     string
	strokes []string
}

var annotateCmd = &cobra.Command{
	Use:   "annotate [image]",
	Short: "Draw strokes onto an image",
	Long: `Replays strokes of the form tool:color:points[:label] onto an image.

Example:
  feedback-mcp annotate shot.png -o marked.png \
    --stroke "arrow:red:10,10 120,80" \
    --stroke "text:black:130,80:Misaligned"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs := make([]annotate.StrokeSpec, 0, len(annotateFlags.strokes))
		for _, raw := range annotateFlags.strokes {
			spec, err := annotate.ParseStroke(raw)
			if err != nil {
				return err
			}
			specs = append(specs, spec)
		}

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open image: %w", err)
		}
		defer f.Close()

		opts := append(cfg.EditorOptions(), annotate.WithLogger(logger))
		ed := annotate.New(opts...)
		if err := ed.Load(f); err != nil {
			return err
		}
		for _, spec := range specs {
			if err := ed.Apply(spec); err != nil {
				return err
			}
		}
		art, err := ed.Save()
		if err != nil {
			return err
		}
		if err := os.WriteFile(annotateFlags.out, art.PNG, 0644); err != nil {
			return fmt.Errorf("failed to write image: %w", err)
		}
		logger.Info("image annotated",
			zap.String("out", annotateFlags.out),
			zap.Int("strokes", len(specs)))
		fmt.Fprintln(cmd.OutOrStdout(), annotateFlags.out)
		return nil
	},
}

var feedbackFlags struct {
	title       string
	description string
	labels      []string
	metadata    string
	out         string
}

// loadFeedback builds a report from the feedback flags and an optional screenshot.
func loadFeedback(args []string) (*feedback.Feedback, error) {
	fb := feedback.New(feedbackFlags.title, feedbackFlags.description)
	if err := fb.Validate(); err != nil {
		return nil, err
	}
	fb.Labels = feedbackFlags.labels
	if len(fb.Labels) == 0 {
		fb.Labels = cfg.Tracker.Labels
	}

	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("failed to read screenshot: %w", err)
		}
		// Re-encode so the tracker always receives a PNG.
		ed := annotate.New()
		if err := ed.Load(bytes.NewReader(data)); err != nil {
			return nil, err
		}
		art, err := ed.Save()
		if err != nil {
			return nil, err
		}
		fb.Screenshot = art.PNG
	}

	if feedbackFlags.metadata != "" {
		data, err := os.ReadFile(feedbackFlags.metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to read metadata: %w", err)
		}
		if err := json.Unmarshal(data, &fb.Metadata); err != nil {
			return nil, fmt.Errorf("failed to parse metadata: %w", err)
		}
	}
	return fb, nil
}

var submitCmd = &cobra.Command{
	Use:   "submit [screenshot]",
	Short: "File feedback with the configured tracker",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fb, err := loadFeedback(args)
		if err != nil {
			return err
		}
		adapter, err := tracker.FromConfig(cfg.Tracker, &http.Client{Timeout: cfg.GetTrackerTimeout()})
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GetTrackerTimeout())
		defer cancel()
		resp, err := tracker.Submit(ctx, adapter, fb,
			tracker.WithLogger(logger),
			tracker.WithMaxSize(cfg.Upload.MaxWidth, cfg.Upload.MaxHeight))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), resp.URL)
		return nil
	},
}

var reportCmd = &cobra.Command{
	Use:   "report [screenshot]",
	Short: "Write feedback to a PDF file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fb, err := loadFeedback(args)
		if err != nil {
			return err
		}
		if err := report.WriteFile(feedbackFlags.out, fb); err != nil {
			return err
		}
		logger.Info("report written", zap.String("out", feedbackFlags.out), zap.String("feedback_id", fb.ID))
		fmt.Fprintln(cmd.OutOrStdout(), feedbackFlags.out)
		return nil
	},
}

func writeJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func init() {
	captureCmd.Flags().StringVarP(&captureFlags.out, "out", "o", "screenshot.png", "Output PNG")
	captureCmd.Flags().StringVar(&captureFlags.metadata, "metadata", "", "Write page metadata JSON to this file")
	captureCmd.Flags().BoolVar(&captureFlags.fullPage, "full-page", false, "Capture the whole scrollable page")
	captureCmd.Flags().IntVar(&captureFlags.width, "width", 0, "Viewport width (default from config)")
	captureCmd.Flags().IntVar(&captureFlags.height, "height", 0, "Viewport height (default from config)")

	annotateCmd.Flags().StringVarP(&annotateFlags.out, "out", "o", "annotated.png", "Output PNG")
	annotateCmd.Flags().StringArrayVarP(&annotateFlags.strokes, "stroke", "s", nil, "Stroke to draw (repeatable)")

	for _, c := range []*cobra.Command{submitCmd, reportCmd} {
		c.Flags().StringVarP(&feedbackFlags.title, "title", "t", "", "Feedback title (required)")
		c.Flags().StringVarP(&feedbackFlags.description, "description", "d", "", "Feedback description")
		c.Flags().StringSliceVarP(&feedbackFlags.labels, "labels", "l", nil, "Issue labels (default from config)")
		c.Flags().StringVar(&feedbackFlags.metadata, "metadata", "", "Page metadata JSON from capture --metadata")
		_ = c.MarkFlagRequired("title")
	}
	reportCmd.Flags().StringVarP(&feedbackFlags.out, "out", "o", "feedback.pdf", "Output PDF")
}
