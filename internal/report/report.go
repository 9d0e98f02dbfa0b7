// Package report orchestrates the single-pass reporting workflow: resolve
// channel, list videos, fetch details, print the table.
package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-channel-report/internal/config"
	"github.com/ad-tracker/youtube-channel-report/internal/service/youtube"
)

// Column widths of the printed table.
const (
	titleWidth = 90
	viewsWidth = 15
	dateWidth  = 20
)

// Runner executes one report run. Steps are strictly sequential; any failed
// step aborts the run and nothing downstream executes.
type Runner struct {
	cfg    *config.Config
	client *youtube.Client
	out    io.Writer
	log    *zap.Logger
}

// NewRunner creates a report runner writing the table to out.
func NewRunner(cfg *config.Config, client *youtube.Client, out io.Writer, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{
		cfg:    cfg,
		client: client,
		out:    out,
		log:    log,
	}
}

// Run resolves the channel, lists its videos in the configured window,
// fetches their details, and prints the report. The two empty-result
// outcomes print a message and return nil; everything else is an error.
func (r *Runner) Run(ctx context.Context) error {
	start, end, err := r.cfg.Report.Window()
	if err != nil {
		return err
	}

	channelID, err := r.client.ResolveChannel(ctx, r.cfg.Report.ChannelName)
	if errors.Is(err, youtube.ErrChannelNotFound) {
		fmt.Fprintln(r.out, "Channel not found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to resolve channel %q: %w", r.cfg.Report.ChannelName, err)
	}

	r.log.Info("channel resolved",
		zap.String("channel", r.cfg.Report.ChannelName),
		zap.String("channel_id", channelID),
	)

	videoIDs, err := r.client.SearchVideos(ctx, channelID, youtube.SearchOptions{
		PublishedAfter:  start,
		PublishedBefore: end,
		TitleFilter:     r.cfg.Report.TitleFilter,
		MaxResults:      r.cfg.Report.MaxResults,
	})
	if errors.Is(err, youtube.ErrNoVideos) {
		fmt.Fprintln(r.out, "No videos found.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to list videos for channel %s: %w", channelID, err)
	}

	r.log.Info("videos listed",
		zap.String("channel_id", channelID),
		zap.Int("count", len(videoIDs)),
	)

	details, err := r.client.FetchVideoDetails(ctx, videoIDs)
	if err != nil {
		return fmt.Errorf("failed to fetch video details: %w", err)
	}

	r.render(details)
	return nil
}

// render prints the fixed-width table, one row per video in the order the
// API returned them.
func (r *Runner) render(videos []youtube.VideoDetail) {
	fmt.Fprintf(r.out, "%-*s %-*s %-*s\n",
		titleWidth, "Title",
		viewsWidth, "Views",
		dateWidth, "Published Date",
	)
	fmt.Fprintln(r.out, strings.Repeat("-", titleWidth+viewsWidth+dateWidth+2))

	for _, v := range videos {
		fmt.Fprintf(r.out, "%-*s %-*s %-*s\n",
			titleWidth, truncate(v.Title, titleWidth),
			viewsWidth, formatViews(v.ViewCount),
			dateWidth, v.PublishedAt,
		)
	}
}

// formatViews renders a view count with thousands separators. Values that do
// not parse as integers (overflow, non-numeric) pass through verbatim.
func formatViews(raw string) string {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return raw
	}
	return humanize.Comma(n)
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return string(runes[:width])
}
