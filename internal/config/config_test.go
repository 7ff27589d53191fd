package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/feedback-tools-mcp/internal/annotate"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{EnvTracker, EnvGitLabToken, EnvGitHubToken, "FEEDBACK_MCP_LOG_LEVEL"} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, TrackerNone, cfg.Tracker.Type)
	assert.Equal(t, "arrow", cfg.Editor.Tool)
	assert.Equal(t, "red", cfg.Editor.Color)
	assert.True(t, cfg.Capture.Headless)
	assert.Equal(t, 30*time.Second, cfg.GetCaptureTimeout())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	cfg, err = Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoad_ParsesYAML(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "feedback.yaml")
	data := `
tracker:
  type: gitlab
  labels: [bug, ui]
  gitlab:
    base_url: https://gitlab.example.com
    project_id: "42"
    token: secret
capture:
  full_page: true
  timeout: 5s
editor:
  tool: pen
  color: blue
upload:
  max_width: 800
logging:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, TrackerGitLab, cfg.Tracker.Type)
	assert.Equal(t, []string{"bug", "ui"}, cfg.Tracker.Labels)
	assert.Equal(t, "42", cfg.Tracker.GitLab.ProjectID)
	assert.True(t, cfg.Capture.FullPage)
	assert.Equal(t, 5*time.Second, cfg.GetCaptureTimeout())
	assert.Equal(t, 1280, cfg.Capture.ViewportWidth, "unset keys keep defaults")
	assert.Equal(t, 800, cfg.Upload.MaxWidth)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tracker: [unclosed"), 0600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("tokens and tracker type", func(t *testing.T) {
		t.Setenv(EnvTracker, "GitHub")
		t.Setenv(EnvGitHubToken, "gh-token")
		t.Setenv(EnvGitLabToken, "gl-token")

		cfg := &Config{}
		cfg.applyEnvOverrides()

		assert.Equal(t, TrackerGitHub, cfg.Tracker.Type)
		assert.Equal(t, "gh-token", cfg.Tracker.GitHub.Token)
		assert.Equal(t, "gl-token", cfg.Tracker.GitLab.Token)
	})

	t.Run("log level", func(t *testing.T) {
		t.Setenv("FEEDBACK_MCP_LOG_LEVEL", "debug")

		cfg := DefaultConfig()
		cfg.applyEnvOverrides()

		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("empty values do not override", func(t *testing.T) {
		clearEnv(t)

		cfg := &Config{Tracker: TrackerConfig{Type: TrackerCustom}}
		cfg.applyEnvOverrides()

		assert.Equal(t, TrackerCustom, cfg.Tracker.Type)
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"gitlab complete", func(c *Config) {
			c.Tracker.Type = TrackerGitLab
			c.Tracker.GitLab.ProjectID = "1"
			c.Tracker.GitLab.Token = "t"
		}, false},
		{"gitlab missing token", func(c *Config) {
			c.Tracker.Type = TrackerGitLab
			c.Tracker.GitLab.ProjectID = "1"
		}, true},
		{"github missing repo", func(c *Config) {
			c.Tracker.Type = TrackerGitHub
			c.Tracker.GitHub.Owner = "o"
			c.Tracker.GitHub.Token = "t"
		}, true},
		{"custom without endpoint", func(c *Config) { c.Tracker.Type = TrackerCustom }, true},
		{"unknown tracker", func(c *Config) { c.Tracker.Type = "jira" }, true},
		{"bad tool", func(c *Config) { c.Editor.Tool = "laser" }, true},
		{"bad color", func(c *Config) { c.Editor.Color = "mauve" }, true},
		{"negative limit", func(c *Config) { c.Upload.MaxHeight = -1 }, true},
		{"bad level", func(c *Config) { c.Logging.Level = "chatty" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeoutFallbacks(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 30*time.Second, cfg.GetTrackerTimeout())
	assert.Equal(t, 30*time.Second, cfg.GetCaptureTimeout())

	cfg.Tracker.Timeout = "2m"
	assert.Equal(t, 2*time.Minute, cfg.GetTrackerTimeout())
}

func TestSaveRoundTrip(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "feedback.yaml")

	cfg := DefaultConfig()
	cfg.Tracker.Type = TrackerCustom
	cfg.Tracker.Custom.Endpoint = "https://feedback.example.com/api"
	require.NoError(t, cfg.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestEditorOptions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Editor.Tool = "circle"
	cfg.Editor.Color = "green"

	e := annotate.New(cfg.EditorOptions()...)
	assert.Equal(t, annotate.Circle, e.Tool())
	assert.Equal(t, annotate.Green, e.Color())

	cfg.Editor.Tool = "bogus"
	e = annotate.New(cfg.EditorOptions()...)
	assert.Equal(t, annotate.Arrow, e.Tool())
}
