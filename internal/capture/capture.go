package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// ErrNoURL is returned when Capture is called without a page URL.
var ErrNoURL = errors.New("capture: url is required")

// Options controls a single capture.
type Options struct {
	URL            string
	FullPage       bool
	ViewportWidth  int
	ViewportHeight int
	DeviceScale    float64
	Timeout        time.Duration
	Headless       bool
	BrowserBin     string
	ControlURL     string // attach to a running browser instead of launching one
}

// DefaultOptions returns a headless 1280x800 capture with a 30 second page timeout.
func DefaultOptions() Options {
	return Options{
		ViewportWidth:  1280,
		ViewportHeight: 800,
		DeviceScale:    1,
		Timeout:        30 * time.Second,
		Headless:       true,
	}
}

// Result is a captured screenshot and the environment it was taken in.
type Result struct {
	PNG      []byte
	Metadata Metadata
}

// Capturer takes page screenshots.
type Capturer interface {
	Capture(ctx context.Context, opts Options) (*Result, error)
}

// RodCapturer captures pages with go-rod.
type RodCapturer struct {
	logger *zap.Logger
}

// NewRodCapturer creates a capturer. A nil logger disables logging.
func NewRodCapturer(logger *zap.Logger) *RodCapturer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RodCapturer{logger: logger}
}

// Capture loads opts.URL and returns its screenshot and metadata.
func (c *RodCapturer) Capture(ctx context.Context, opts Options) (*Result, error) {
	if opts.URL == "" {
		return nil, ErrNoURL
	}
	opts = withDefaults(opts)

	controlURL := opts.ControlURL
	launched := false
	if controlURL == "" {
		l := launcher.New().Headless(opts.Headless)
		if opts.BrowserBin != "" {
			l = l.Bin(opts.BrowserBin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		defer l.Cleanup()
		controlURL = u
		launched = true
	}

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	if launched {
		defer func() { _ = browser.Close() }()
	}

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	defer func() { _ = page.Close() }()

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             opts.ViewportWidth,
		Height:            opts.ViewportHeight,
		DeviceScaleFactor: opts.DeviceScale,
		Mobile:            false,
	}).Call(page); err != nil {
		c.logger.Warn("failed to set viewport", zap.Error(err))
	}

	c.logger.Debug("navigating", zap.String("url", opts.URL))
	timed := page.Timeout(opts.Timeout)
	if err := timed.Navigate(opts.URL); err != nil {
		return nil, fmt.Errorf("failed to navigate to %s: %w", opts.URL, err)
	}
	if err := timed.WaitLoad(); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", opts.URL, err)
	}

	res, err := timed.Evaluate(&rod.EvalOptions{
		JS:      metadataScript,
		ByValue: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read page metadata: %w", err)
	}
	raw, err := res.Value.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to read page metadata: %w", err)
	}
	meta, err := ParseMetadata(raw)
	if err != nil {
		return nil, err
	}

	png, err := timed.Screenshot(opts.FullPage, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to take screenshot: %w", err)
	}
	meta.CapturedAt = time.Now().UTC()

	c.logger.Info("page captured",
		zap.String("url", meta.URL),
		zap.Int("bytes", len(png)),
		zap.Bool("full_page", opts.FullPage))

	return &Result{PNG: png, Metadata: meta}, nil
}

func withDefaults(opts Options) Options {
	def := DefaultOptions()
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = def.ViewportWidth
	}
	if opts.ViewportHeight <= 0 {
		opts.ViewportHeight = def.ViewportHeight
	}
	if opts.DeviceScale <= 0 {
		opts.DeviceScale = def.DeviceScale
	}
	if opts.Timeout <= 0 {
		opts.Timeout = def.Timeout
	}
	return opts
}
