// Package youtube implements the ProviderClient port against the YouTube
// Data API v3. The provider identity is "google" because the credential is
// issued by the Google authorization flow.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
)

// Provider is the identity this adapter is registered under.
const Provider = "google"

const defaultBaseURL = "https://www.googleapis.com"

// Compile-time interface satisfaction check.
var _ driven.ProviderClient = (*Client)(nil)

// Client implements the ProviderClient port against the YouTube Data API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client against the production YouTube API.
func NewClient() *Client {
	return &Client{httpClient: http.DefaultClient, baseURL: defaultBaseURL}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and
// base URL, for tests backed by httptest servers.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{httpClient: httpClient, baseURL: baseURL}
}

// Provider returns the stable provider identity.
func (c *Client) Provider() string { return Provider }

type channelList struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount       string `json:"viewCount"`
			SubscriberCount string `json:"subscriberCount"`
		} `json:"statistics"`
	} `json:"items"`
}

type videoList struct {
	Items []struct {
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"` // ISO 8601, e.g. PT1H2M3S
		} `json:"contentDetails"`
	} `json:"items"`
}

// Fetch retrieves the user's channel and liked videos. The API exposes no
// watch-time total, so hours are estimated from liked-video durations. The
// activity scalar is watch hours.
func (c *Client) Fetch(ctx context.Context, accessToken string, _ int) (model.ProviderRecord, error) {
	var channels channelList
	if err := c.getJSON(ctx, accessToken, "/youtube/v3/channels?part=snippet,statistics&mine=true", &channels); err != nil {
		return model.ProviderRecord{}, err
	}

	var likes videoList
	if err := c.getJSON(ctx, accessToken, "/youtube/v3/videos?part=snippet,contentDetails&myRating=like&maxResults=50", &likes); err != nil {
		return model.ProviderRecord{}, err
	}

	channelName := ""
	subscriberCount := ""
	viewCount := ""
	if len(channels.Items) > 0 {
		channelName = channels.Items[0].Snippet.Title
		subscriberCount = channels.Items[0].Statistics.SubscriberCount
		viewCount = channels.Items[0].Statistics.ViewCount
	}

	topVideo := ""
	var likedSeconds int
	for i, item := range likes.Items {
		if i == 0 {
			topVideo = item.Snippet.Title
		}
		likedSeconds += parseISODuration(item.ContentDetails.Duration)
	}
	watchHours := likedSeconds / 3600

	return model.ProviderRecord{
		Provider: Provider,
		Metrics: map[string]any{
			"channel_name":     channelName,
			"top_video":        topVideo,
			"watch_hours":      watchHours,
			"liked_videos":     len(likes.Items),
			"subscriber_count": subscriberCount,
			"view_count":       viewCount,
		},
		Activity: float64(watchHours),
	}, nil
}

var isoDurationRe = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// parseISODuration converts the API's ISO 8601 video duration to seconds.
// Unrecognized values count as zero.
func parseISODuration(s string) int {
	m := isoDurationRe.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	min, _ := strconv.Atoi(m[2])
	sec, _ := strconv.Atoi(m[3])
	return h*3600 + min*60 + sec
}

func (c *Client) getJSON(ctx context.Context, accessToken, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return &driven.UpstreamError{Provider: Provider, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &driven.UpstreamError{Provider: Provider, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &driven.UpstreamError{Provider: Provider, Err: fmt.Errorf("GET %s: status %d", path, resp.StatusCode)}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &driven.UpstreamError{Provider: Provider, Err: fmt.Errorf("GET %s: decode: %w", path, err)}
	}

	return nil
}
