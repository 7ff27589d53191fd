package main

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"fyne.io/fyne/v2/app"
	"github.com/spf13/cobra"

	"github.com/ironsheep/feedback-tools-mcp/internal/capture"
	"github.com/ironsheep/feedback-tools-mcp/internal/config"
	"github.com/ironsheep/feedback-tools-mcp/internal/logging"
	"github.com/ironsheep/feedback-tools-mcp/internal/tracker"
	"github.com/ironsheep/feedback-tools-mcp/internal/ui"
)

// Version information - set by ldflags during build
var Version = "dev"

var (
	configPath string
	pageURL    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "feedback-desktop [screenshot]",
	Short: "Annotate a screenshot and send it as feedback",
	Long: `Opens a window to mark up a screenshot, describe the problem and file it
with the tracker from the configuration file. Pass an image, or --url to capture a
page first.`,
	Version:      Version,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().StringVar(&configPath, "config", config.DefaultPath(), "Config file")
	rootCmd.Flags().StringVar(&pageURL, "url", "", "Capture this page instead of opening a file")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func run(cmd *cobra.Command, args []string) error {
	if (len(args) == 1) == (pageURL != "") {
		return errors.New("pass either a screenshot file or --url")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var (
		shot []byte
		meta capture.Metadata
	)
	if pageURL != "" {
		c := cfg.Capture
		res, err := capture.NewRodCapturer(logger).Capture(cmd.Context(), capture.Options{
			URL:            pageURL,
			FullPage:       c.FullPage,
			ViewportWidth:  c.ViewportWidth,
			ViewportHeight: c.ViewportHeight,
			DeviceScale:    c.DeviceScale,
			Timeout:        cfg.GetCaptureTimeout(),
			Headless:       c.Headless,
			BrowserBin:     c.BrowserBin,
			ControlURL:     c.ControlURL,
		})
		if err != nil {
			return err
		}
		shot, meta = res.PNG, res.Metadata
	} else {
		shot, err = os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read screenshot: %w", err)
		}
	}

	opts := []ui.WindowOption{ui.WithMetadata(meta), ui.WithWindowLogger(logger)}
	adapter, err := tracker.FromConfig(cfg.Tracker, &http.Client{Timeout: cfg.GetTrackerTimeout()})
	switch {
	case errors.Is(err, tracker.ErrNoTracker):
		logger.Info("no tracker configured, only PDF reports are available")
	case err != nil:
		return err
	default:
		opts = append(opts, ui.WithTracker(adapter))
	}

	a := app.NewWithID("com.ironsheep.feedback-desktop")
	fw, err := ui.NewFeedbackWindow(a, shot, cfg, opts...)
	if err != nil {
		return err
	}
	fw.Window().SetMaster()
	fw.Window().ShowAndRun()
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
