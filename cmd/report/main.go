package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-report/internal/config"
	"github.com/ad-tracker/youtube-channel-report/internal/report"
	"github.com/ad-tracker/youtube-channel-report/internal/service/quota"
	"github.com/ad-tracker/youtube-channel-report/internal/service/youtube"
	"github.com/ad-tracker/youtube-channel-report/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush on exit

	tracker := quota.NewTracker(cfg.YouTube.DailyQuota, cfg.YouTube.QuotaThreshold, logger.Log)

	client, err := youtube.NewClient(youtube.ClientConfig{
		APIKey:            cfg.YouTube.APIKey,
		BaseURL:           cfg.YouTube.BaseURL,
		Timeout:           cfg.YouTube.Timeout,
		RequestsPerSecond: cfg.YouTube.RequestsPerSecond,
		Quota:             tracker,
		Logger:            logger.Log,
	})
	if err != nil {
		logger.Log.Error("failed to initialize YouTube client", zap.Error(err))
		os.Exit(1)
	}

	runner := report.NewRunner(cfg, client, os.Stdout, logger.Log)

	if err := runner.Run(context.Background()); err != nil {
		logger.Log.Error("report failed", zap.Error(err))
		os.Exit(1)
	}

	logger.Log.Debug("report complete",
		zap.Int("quota_used", tracker.Used()),
		zap.Int("api_calls", tracker.Operations()),
	)
}
