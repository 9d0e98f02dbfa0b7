// Package youtube implements a typed client for the three Data API v3 calls
// the report needs: channel search, video search, and batch video details.
package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ad-tracker/youtube-channel-report/internal/service/quota"
)

// DefaultBaseURL is the public Data API v3 endpoint.
const DefaultBaseURL = "https://www.googleapis.com/youtube/v3"

const maxBatchSize = 50

var (
	// ErrChannelNotFound is returned when a channel search yields no usable
	// channel identifier.
	ErrChannelNotFound = errors.New("youtube: channel not found")

	// ErrNoVideos is returned when a video search leaves no identifiers
	// after filtering.
	ErrNoVideos = errors.New("youtube: no videos found")
)

// Client issues Data API requests. Calls are paced by a client-side rate
// limiter and accounted against the quota tracker before and after each
// request.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	quota   *quota.Tracker
	log     *zap.Logger
}

// ClientConfig configures a Client. APIKey is required; everything else has
// a usable zero-value fallback.
type ClientConfig struct {
	APIKey            string
	BaseURL           string
	Timeout           time.Duration
	RequestsPerSecond float64
	Quota             *quota.Tracker
	Logger            *zap.Logger
}

// NewClient creates a new Data API client.
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("youtube API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 4
	}
	if cfg.Quota == nil {
		cfg.Quota = quota.NewTracker(0, 0, cfg.Logger)
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		quota:   cfg.Quota,
		log:     cfg.Logger,
	}, nil
}

// SearchOptions scopes a video search.
type SearchOptions struct {
	// PublishedAfter is the inclusive start of the publish-date window.
	PublishedAfter time.Time

	// PublishedBefore is the exclusive end of the publish-date window.
	PublishedBefore time.Time

	// TitleFilter keeps only videos whose decoded, trimmed title contains it
	// case-insensitively. It is also passed as a search hint, but the server
	// does not guarantee substring matching, so the client-side check is the
	// enforcement mechanism.
	TitleFilter string

	// MaxResults bounds the number of returned identifiers (1..50).
	MaxResults int
}

// VideoDetail is one row of the report. ViewCount stays a string: the API
// serves it as one, and unparseable values must survive to display verbatim.
type VideoDetail struct {
	ID          string
	Title       string
	PublishedAt string
	ViewCount   string
}

// Typed response shapes for the two endpoints. Only the fields the report
// reads are declared; everything else in the payload is ignored.

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID      searchItemID  `json:"id"`
	Snippet searchSnippet `json:"snippet"`
}

// searchItemID and searchSnippet together cover both places a channel search
// result may carry its identifier.
type searchItemID struct {
	Kind      string `json:"kind"`
	ChannelID string `json:"channelId"`
	VideoID   string `json:"videoId"`
}

type searchSnippet struct {
	Title       string `json:"title"`
	ChannelID   string `json:"channelId"`
	PublishedAt string `json:"publishedAt"`
}

type videoListResponse struct {
	Items []videoItem `json:"items"`
}

type videoItem struct {
	ID      string `json:"id"`
	Snippet struct {
		Title       string `json:"title"`
		PublishedAt string `json:"publishedAt"`
	} `json:"snippet"`
	Statistics struct {
		ViewCount string `json:"viewCount"`
	} `json:"statistics"`
}

// ResolveChannel resolves a channel display name to its channel ID via one
// channel-type search. It always takes the first match; the identifier is
// read from id.channelId first, then snippet.channelId.
func (c *Client) ResolveChannel(ctx context.Context, name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("channel name is required")
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "channel")
	params.Set("q", name)

	var resp searchResponse
	if err := c.get(ctx, "/search", params, quota.SearchListCost, &resp); err != nil {
		return "", fmt.Errorf("channel search failed: %w", err)
	}

	if len(resp.Items) == 0 {
		return "", ErrChannelNotFound
	}

	first := resp.Items[0]
	channelID := first.ID.ChannelID
	if channelID == "" {
		channelID = first.Snippet.ChannelID
	}
	if channelID == "" {
		return "", ErrChannelNotFound
	}

	c.log.Debug("resolved channel",
		zap.String("name", name),
		zap.String("channel_id", channelID),
	)
	return channelID, nil
}

// SearchVideos lists video IDs for a channel inside the publish-date window,
// ordered by view count descending. Results are filtered client-side by the
// title substring and capped at opts.MaxResults; identifiers come back in
// server order.
func (c *Client) SearchVideos(ctx context.Context, channelID string, opts SearchOptions) ([]string, error) {
	if channelID == "" {
		return nil, fmt.Errorf("channel ID is required")
	}
	max := opts.MaxResults
	if max < 1 || max > maxBatchSize {
		return nil, fmt.Errorf("max results must be between 1 and %d, got %d", maxBatchSize, max)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("type", "video")
	params.Set("channelId", channelID)
	params.Set("order", "viewCount")
	params.Set("maxResults", strconv.Itoa(max))
	params.Set("publishedAfter", opts.PublishedAfter.UTC().Format(time.RFC3339))
	params.Set("publishedBefore", opts.PublishedBefore.UTC().Format(time.RFC3339))
	if opts.TitleFilter != "" {
		// Search hint only; the client-side containment check below decides.
		params.Set("q", opts.TitleFilter)
	}

	var resp searchResponse
	if err := c.get(ctx, "/search", params, quota.SearchListCost, &resp); err != nil {
		return nil, fmt.Errorf("video search failed: %w", err)
	}

	filter := strings.ToLower(opts.TitleFilter)
	ids := make([]string, 0, len(resp.Items))
	for _, item := range resp.Items {
		title := strings.TrimSpace(html.UnescapeString(item.Snippet.Title))
		if filter != "" && !strings.Contains(strings.ToLower(title), filter) {
			c.log.Debug("skipping video outside title filter",
				zap.String("title", title),
				zap.String("filter", opts.TitleFilter),
			)
			continue
		}
		if item.ID.VideoID == "" {
			continue
		}
		ids = append(ids, item.ID.VideoID)
		if len(ids) == max {
			break
		}
	}

	if len(ids) == 0 {
		return nil, ErrNoVideos
	}
	return ids, nil
}

// FetchVideoDetails batch-fetches snippet and statistics for up to 50 video
// IDs in a single call. Items come back in whatever order the API returns
// them, which is not guaranteed to match the request order.
func (c *Client) FetchVideoDetails(ctx context.Context, videoIDs []string) ([]VideoDetail, error) {
	if len(videoIDs) == 0 {
		return nil, fmt.Errorf("no video IDs provided")
	}
	if len(videoIDs) > maxBatchSize {
		return nil, fmt.Errorf("too many video IDs (max %d, got %d)", maxBatchSize, len(videoIDs))
	}

	params := url.Values{}
	params.Set("part", "snippet,statistics")
	params.Set("id", strings.Join(videoIDs, ","))

	var resp videoListResponse
	if err := c.get(ctx, "/videos", params, quota.VideosListCost, &resp); err != nil {
		return nil, fmt.Errorf("video details fetch failed: %w", err)
	}

	details := make([]VideoDetail, 0, len(resp.Items))
	for _, item := range resp.Items {
		details = append(details, VideoDetail{
			ID:          item.ID,
			Title:       strings.TrimSpace(html.UnescapeString(item.Snippet.Title)),
			PublishedAt: item.Snippet.PublishedAt,
			ViewCount:   item.Statistics.ViewCount,
		})
	}

	return details, nil
}

// get issues one rate-limited, quota-checked GET and decodes the JSON body
// into out.
func (c *Client) get(ctx context.Context, path string, params url.Values, cost int, out any) error {
	if err := c.quota.Check(cost); err != nil {
		return err
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	params.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.log.Error("youtube api returned non-success status",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		return fmt.Errorf("youtube api %s returned status %d", path, resp.StatusCode)
	}

	// The call reached the API, so the units are spent even if the body
	// fails to decode.
	c.quota.Record(cost, path)

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
