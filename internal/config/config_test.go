package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return dir
}

const validConfig = `{
  "youtube": {"api_key": "test-key"},
  "report": {
    "channel_name": "Test Channel",
    "published_after": "2024-01-01T00:00:00Z",
    "published_before": "2024-06-01T00:00:00Z"
  }
}`

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		config  string
		setup   func()
		cleanup func()
		wantErr string
		check   func(*testing.T, *Config)
	}{
		{
			name:   "valid config applies defaults",
			config: validConfig,
			check: func(t *testing.T, cfg *Config) {
				if cfg.YouTube.APIKey != "test-key" {
					t.Errorf("YouTube.APIKey = %q, want test-key", cfg.YouTube.APIKey)
				}
				if cfg.YouTube.BaseURL != "https://www.googleapis.com/youtube/v3" {
					t.Errorf("YouTube.BaseURL = %q, want default", cfg.YouTube.BaseURL)
				}
				if cfg.YouTube.Timeout != 15*time.Second {
					t.Errorf("YouTube.Timeout = %v, want 15s", cfg.YouTube.Timeout)
				}
				if cfg.YouTube.DailyQuota != 10000 {
					t.Errorf("YouTube.DailyQuota = %d, want 10000", cfg.YouTube.DailyQuota)
				}
				if cfg.YouTube.QuotaThreshold != 90 {
					t.Errorf("YouTube.QuotaThreshold = %d, want 90", cfg.YouTube.QuotaThreshold)
				}
				if cfg.Report.MaxResults != 10 {
					t.Errorf("Report.MaxResults = %d, want 10", cfg.Report.MaxResults)
				}
				if cfg.Logging.Level != "info" {
					t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
				}
			},
		},
		{
			name: "missing api key is fatal",
			config: `{
  "report": {
    "channel_name": "Test Channel",
    "published_after": "2024-01-01T00:00:00Z",
    "published_before": "2024-06-01T00:00:00Z"
  }
}`,
			wantErr: "api_key",
		},
		{
			name: "api key from environment",
			config: `{
  "report": {
    "channel_name": "Test Channel",
    "published_after": "2024-01-01T00:00:00Z",
    "published_before": "2024-06-01T00:00:00Z"
  }
}`,
			setup: func() {
				os.Setenv("APP_YOUTUBE_API_KEY", "env-key")
			},
			cleanup: func() {
				os.Unsetenv("APP_YOUTUBE_API_KEY")
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.YouTube.APIKey != "env-key" {
					t.Errorf("YouTube.APIKey = %q, want env-key", cfg.YouTube.APIKey)
				}
			},
		},
		{
			name: "missing channel name",
			config: `{
  "youtube": {"api_key": "test-key"},
  "report": {
    "published_after": "2024-01-01T00:00:00Z",
    "published_before": "2024-06-01T00:00:00Z"
  }
}`,
			wantErr: "channel_name",
		},
		{
			name: "invalid published_after timestamp",
			config: `{
  "youtube": {"api_key": "test-key"},
  "report": {
    "channel_name": "Test Channel",
    "published_after": "yesterday",
    "published_before": "2024-06-01T00:00:00Z"
  }
}`,
			wantErr: "published_after",
		},
		{
			name: "inverted window",
			config: `{
  "youtube": {"api_key": "test-key"},
  "report": {
    "channel_name": "Test Channel",
    "published_after": "2024-06-01T00:00:00Z",
    "published_before": "2024-01-01T00:00:00Z"
  }
}`,
			wantErr: "must be before",
		},
		{
			name: "max results out of range",
			config: `{
  "youtube": {"api_key": "test-key"},
  "report": {
    "channel_name": "Test Channel",
    "max_results": 100,
    "published_after": "2024-01-01T00:00:00Z",
    "published_before": "2024-06-01T00:00:00Z"
  }
}`,
			wantErr: "max_results",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			viper.Reset()
			if tt.setup != nil {
				tt.setup()
			}
			defer func() {
				if tt.cleanup != nil {
					tt.cleanup()
				}
				viper.Reset()
			}()

			dir := writeConfig(t, tt.config)

			cfg, err := Load(dir)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("Load() succeeded, want error containing %q", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("Load() error = %v, want error containing %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if tt.check != nil {
				tt.check(t, cfg)
			}
		})
	}
}

func TestWindow(t *testing.T) {
	r := ReportConfig{
		PublishedAfter:  "2024-01-01T00:00:00Z",
		PublishedBefore: "2024-06-01T00:00:00Z",
	}

	start, end, err := r.Window()
	if err != nil {
		t.Fatalf("Window() error = %v", err)
	}
	if !start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %v, want 2024-01-01", start)
	}
	if !end.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %v, want 2024-06-01", end)
	}
	if !start.Before(end) {
		t.Error("start is not before end")
	}
}
