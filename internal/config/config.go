// Package config loads the feedback tools configuration from YAML with environment
// overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/feedback-tools-mcp/internal/annotate"
	"github.com/ironsheep/feedback-tools-mcp/internal/logging"
)

// Environment variables read by Load.
const (
	EnvConfigPath  = "FEEDBACK_MCP_CONFIG"
	EnvTracker     = "FEEDBACK_TRACKER"
	EnvGitLabToken = "FEEDBACK_GITLAB_TOKEN"
	EnvGitHubToken = "FEEDBACK_GITHUB_TOKEN"
)

// Tracker types.
const (
	TrackerNone   = "none"
	TrackerGitLab = "gitlab"
	TrackerGitHub = "github"
	TrackerCustom = "custom"
)

// Config holds all feedback tools configuration.
type Config struct {
	Tracker TrackerConfig `yaml:"tracker"`
	Capture CaptureConfig `yaml:"capture"`
	Editor  EditorConfig  `yaml:"editor"`
	Upload  UploadConfig  `yaml:"upload"`
	Logging LoggingConfig `yaml:"logging"`
}

// TrackerConfig selects and configures the issue tracker adapter.
type TrackerConfig struct {
	Type    string       `yaml:"type"` // none, gitlab, github, custom
	Labels  []string     `yaml:"labels"`
	Timeout string       `yaml:"timeout"`
	GitLab  GitLabConfig `yaml:"gitlab"`
	GitHub  GitHubConfig `yaml:"github"`
	Custom  CustomConfig `yaml:"custom"`
}

// GitLabConfig configures the GitLab adapter.
type GitLabConfig struct {
	BaseURL   string `yaml:"base_url"`
	ProjectID string `yaml:"project_id"`
	Token     string `yaml:"token"`
}

// GitHubConfig configures the GitHub adapter. Screenshots are committed under
// UploadDir when it is set.
type GitHubConfig struct {
	BaseURL      string `yaml:"base_url"`
	Owner        string `yaml:"owner"`
	Repo         string `yaml:"repo"`
	Token        string `yaml:"token"`
	UploadBranch string `yaml:"upload_branch"`
	UploadDir    string `yaml:"upload_dir"`
}

// CustomConfig configures a custom HTTP backend.
type CustomConfig struct {
	Endpoint       string            `yaml:"endpoint"`
	UploadEndpoint string            `yaml:"upload_endpoint"`
	Headers        map[string]string `yaml:"headers,omitempty"`
}

// CaptureConfig holds browser capture defaults.
type CaptureConfig struct {
	FullPage       bool    `yaml:"full_page"`
	ViewportWidth  int     `yaml:"viewport_width"`
	ViewportHeight int     `yaml:"viewport_height"`
	DeviceScale    float64 `yaml:"device_scale"`
	Timeout        string  `yaml:"timeout"`
	Headless       bool    `yaml:"headless"`
	BrowserBin     string  `yaml:"browser_bin"`
	ControlURL     string  `yaml:"control_url"`
}

// EditorConfig holds the initial annotation tool settings.
type EditorConfig struct {
	Tool     string  `yaml:"tool"`
	Color    string  `yaml:"color"`
	FontSize float64 `yaml:"font_size"`
}

// UploadConfig limits the size of screenshots sent to a tracker. Zero disables a limit.
type UploadConfig struct {
	MaxWidth  int `yaml:"max_width"`
	MaxHeight int `yaml:"max_height"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Tracker: TrackerConfig{
			Type:    TrackerNone,
			Labels:  []string{"feedback"},
			Timeout: "30s",
			GitLab: GitLabConfig{
				BaseURL: "https://gitlab.com",
			},
			GitHub: GitHubConfig{
				BaseURL:      "https://api.github.com",
				UploadBranch: "main",
			},
		},
		Capture: CaptureConfig{
			ViewportWidth:  1280,
			ViewportHeight: 800,
			DeviceScale:    1,
			Timeout:        "30s",
			Headless:       true,
		},
		Editor: EditorConfig{
			Tool:     annotate.Arrow.String(),
			Color:    annotate.Red.String(),
			FontSize: annotate.DefaultFontSize,
		},
		Upload: UploadConfig{
			MaxWidth:  1920,
			MaxHeight: 1920,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the configuration path from FEEDBACK_MCP_CONFIG, or "".
func DefaultPath() string {
	return os.Getenv(EnvConfigPath)
}

// Load loads configuration from a YAML file. An empty path or a missing file yields
// the defaults; environment overrides are applied in every case.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if t := os.Getenv(EnvTracker); t != "" {
		c.Tracker.Type = strings.ToLower(t)
	}
	if token := os.Getenv(EnvGitLabToken); token != "" {
		c.Tracker.GitLab.Token = token
	}
	if token := os.Getenv(EnvGitHubToken); token != "" {
		c.Tracker.GitHub.Token = token
	}
	if level := os.Getenv(logging.EnvLevel); level != "" {
		c.Logging.Level = level
	}
}

// Validate checks that the selected tracker is fully configured and that the editor
// and logging settings are recognized.
func (c *Config) Validate() error {
	var errs []error

	switch c.Tracker.Type {
	case "", TrackerNone:
	case TrackerGitLab:
		g := c.Tracker.GitLab
		if g.BaseURL == "" || g.ProjectID == "" || g.Token == "" {
			errs = append(errs, fmt.Errorf("tracker.gitlab requires base_url, project_id and token"))
		}
	case TrackerGitHub:
		g := c.Tracker.GitHub
		if g.BaseURL == "" || g.Owner == "" || g.Repo == "" || g.Token == "" {
			errs = append(errs, fmt.Errorf("tracker.github requires base_url, owner, repo and token"))
		}
	case TrackerCustom:
		if c.Tracker.Custom.Endpoint == "" {
			errs = append(errs, fmt.Errorf("tracker.custom requires endpoint"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown tracker type %q", c.Tracker.Type))
	}

	if _, err := annotate.ParseTool(c.Editor.Tool); err != nil {
		errs = append(errs, fmt.Errorf("editor.tool: %w", err))
	}
	if _, err := annotate.ParseColor(c.Editor.Color); err != nil {
		errs = append(errs, fmt.Errorf("editor.color: %w", err))
	}
	if c.Upload.MaxWidth < 0 || c.Upload.MaxHeight < 0 {
		errs = append(errs, fmt.Errorf("upload limits must not be negative"))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}

	return errors.Join(errs...)
}

// GetTrackerTimeout returns the tracker HTTP timeout as a duration.
func (c *Config) GetTrackerTimeout() time.Duration {
	d, err := time.ParseDuration(c.Tracker.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetCaptureTimeout returns the page load timeout as a duration.
func (c *Config) GetCaptureTimeout() time.Duration {
	d, err := time.ParseDuration(c.Capture.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// EditorOptions translates the editor section into annotate options. Unknown values
// fall back to the editor defaults.
func (c *Config) EditorOptions() []annotate.Option {
	var opts []annotate.Option
	if t, err := annotate.ParseTool(c.Editor.Tool); err == nil {
		opts = append(opts, annotate.WithTool(t))
	}
	if col, err := annotate.ParseColor(c.Editor.Color); err == nil {
		opts = append(opts, annotate.WithColor(col))
	}
	if c.Editor.FontSize > 0 {
		opts = append(opts, annotate.WithFontSize(c.Editor.FontSize))
	}
	return opts
}
