// Package config provides configuration management for the report CLI.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for a single report run. It is constructed
// once by Load and passed by reference into each step; nothing mutates it
// afterwards.
type Config struct {
	YouTube YouTubeConfig
	Report  ReportConfig
	Logging LoggingConfig
}

// YouTubeConfig contains Data API credentials and client tuning.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type YouTubeConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	DailyQuota        int           `mapstructure:"daily_quota"`
	QuotaThreshold    int           `mapstructure:"quota_threshold"`
}

// ReportConfig contains the report query: which channel, which publish-date
// window, and the optional title filter.
//
//nolint:govet // fieldalignment: Accept minor memory overhead for better readability
type ReportConfig struct {
	ChannelName     string `mapstructure:"channel_name"`
	MaxResults      int    `mapstructure:"max_results"`
	PublishedAfter  string `mapstructure:"published_after"`
	PublishedBefore string `mapstructure:"published_before"`
	TitleFilter     string `mapstructure:"title_filter"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level string
	File  string
}

// Load loads configuration from file and environment variables. Paths may be
// supplied to override the default config search locations (used by tests).
func Load(configPaths ...string) (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("json")
	if len(configPaths) == 0 {
		configPaths = []string{".", "./config"}
	}
	for _, p := range configPaths {
		viper.AddConfigPath(p)
	}

	setDefaults()

	// Read environment variables
	viper.AutomaticEnv()
	viper.SetEnvPrefix("APP")
	// AutomaticEnv does not resolve nested keys, so bind the overridable ones
	// explicitly.
	_ = viper.BindEnv("youtube.api_key", "APP_YOUTUBE_API_KEY")
	_ = viper.BindEnv("youtube.base_url", "APP_YOUTUBE_BASE_URL")
	_ = viper.BindEnv("report.channel_name", "APP_REPORT_CHANNEL_NAME")
	_ = viper.BindEnv("report.title_filter", "APP_REPORT_TITLE_FILTER")
	_ = viper.BindEnv("logging.level", "APP_LOGGING_LEVEL")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks the loaded configuration. A missing API key is fatal: the
// run never proceeds with an empty credential.
func (c *Config) Validate() error {
	if c.YouTube.APIKey == "" {
		return fmt.Errorf("youtube.api_key is required")
	}
	if c.Report.ChannelName == "" {
		return fmt.Errorf("report.channel_name is required")
	}
	if c.Report.MaxResults < 1 || c.Report.MaxResults > 50 {
		return fmt.Errorf("report.max_results must be between 1 and 50, got %d", c.Report.MaxResults)
	}
	if _, _, err := c.Report.Window(); err != nil {
		return err
	}
	return nil
}

// Window parses the publish-date bounds. The start is inclusive and the end
// exclusive, matching the Data API's publishedAfter/publishedBefore
// parameters.
func (r *ReportConfig) Window() (start, end time.Time, err error) {
	start, err = time.Parse(time.RFC3339, r.PublishedAfter)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("report.published_after is not a valid RFC3339 timestamp: %w", err)
	}
	end, err = time.Parse(time.RFC3339, r.PublishedBefore)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("report.published_before is not a valid RFC3339 timestamp: %w", err)
	}
	if !start.Before(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("report.published_after must be before report.published_before")
	}
	return start, end, nil
}

func setDefaults() {
	// YouTube
	viper.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	viper.SetDefault("youtube.timeout", 15*time.Second)
	viper.SetDefault("youtube.requests_per_second", 4.0)
	viper.SetDefault("youtube.daily_quota", 10000)
	viper.SetDefault("youtube.quota_threshold", 90)

	// Report
	viper.SetDefault("report.max_results", 10)

	// Logging
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.file", "")
}
