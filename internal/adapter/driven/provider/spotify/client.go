// Package spotify implements the ProviderClient port against the Spotify
// Web API.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
)

// Provider is the identity this adapter is registered under.
const Provider = "spotify"

const defaultBaseURL = "https://api.spotify.com"

// Compile-time interface satisfaction check.
var _ driven.ProviderClient = (*Client)(nil)

// Client implements the ProviderClient port against the Spotify Web API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client against the production Spotify API.
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

type trackItem struct {
	Name       string `json:"name"`
	DurationMS int    `json:"duration_ms"`
}

type artistItem struct {
	Name   string   `json:"name"`
	Genres []string `json:"genres"`
}

type playedItem struct {
	Track trackItem `json:"track"`
}

// Fetch retrieves top tracks, top artists, and recent listening history.
// The Spotify API exposes no year-total listening time, so minutes are
// estimated from the recently-played window. The activity scalar is
// listening minutes.
func (c *Client) Fetch(ctx context.Context, accessToken string, _ int) (model.ProviderRecord, error) {
	var topTracks struct {
		Items []trackItem `json:"items"`
	}
	if err := c.getJSON(ctx, accessToken, "/v1/me/top/tracks?limit=10&time_range=medium_term", &topTracks); err != nil {
		return model.ProviderRecord{}, err
	}

	var topArtists struct {
		Items []artistItem `json:"items"`
	}
	if err := c.getJSON(ctx, accessToken, "/v1/me/top/artists?limit=10&time_range=medium_term", &topArtists); err != nil {
		return model.ProviderRecord{}, err
	}

	var recent struct {
		Items []playedItem `json:"items"`
	}
	if err := c.getJSON(ctx, accessToken, "/v1/me/player/recently-played?limit=50", &recent); err != nil {
		return model.ProviderRecord{}, err
	}

	topSong := ""
	if len(topTracks.Items) > 0 {
		topSong = topTracks.Items[0].Name
	}
	topArtist := ""
	topGenre := ""
	if len(topArtists.Items) > 0 {
		topArtist = topArtists.Items[0].Name
		if len(topArtists.Items[0].Genres) > 0 {
			topGenre = topArtists.Items[0].Genres[0]
		}
	}

	var playedMS int
	for _, item := range recent.Items {
		playedMS += item.Track.DurationMS
	}
	minutes := playedMS / 60000

	return model.ProviderRecord{
		Provider: Provider,
		Metrics: map[string]any{
			"top_song":   topSong,
			"top_artist": topArtist,
			"top_genre":  topGenre,
			"minutes":    minutes,
		},
		Activity: float64(minutes),
	}, nil
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
