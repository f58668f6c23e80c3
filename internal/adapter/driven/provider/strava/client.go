// Package strava implements the ProviderClient port against the Strava v3
// API.
package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
)

// Provider is the identity this adapter is registered under.
const Provider = "strava"

const defaultBaseURL = "https://www.strava.com"

// Compile-time interface satisfaction check.
var _ driven.ProviderClient = (*Client)(nil)

// Client implements the ProviderClient port against the Strava v3 API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a Client against the production Strava API.
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

type athlete struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
}

type activity struct {
	Distance           float64 `json:"distance"` // meters
	SportType          string  `json:"sport_type"`
	Type               string  `json:"type"`
	TotalElevationGain float64 `json:"total_elevation_gain"`
}

// Fetch retrieves the athlete profile and all activities recorded since
// Jan 1 of the period, then folds them into distance, activity count, top
// sport, and elevation gain. The activity scalar is kilometers.
func (c *Client) Fetch(ctx context.Context, accessToken string, period int) (model.ProviderRecord, error) {
	var ath athlete
	if err := c.getJSON(ctx, accessToken, "/api/v3/athlete", &ath); err != nil {
		return model.ProviderRecord{}, err
	}

	after := time.Date(period, 1, 1, 0, 0, 0, 0, time.UTC).Unix()

	var all []activity
	for page := 1; ; page++ {
		path := fmt.Sprintf("/api/v3/athlete/activities?after=%d&per_page=100&page=%d", after, page)
		var batch []activity
		if err := c.getJSON(ctx, accessToken, path, &batch); err != nil {
			return model.ProviderRecord{}, err
		}
		if len(batch) == 0 {
			break
		}
		all = append(all, batch...)
	}

	var totalMeters, elevationGain float64
	sportCounts := map[string]int{}
	for _, act := range all {
		totalMeters += act.Distance
		elevationGain += act.TotalElevationGain
		sport := act.SportType
		if sport == "" {
			sport = act.Type
		}
		if sport == "" {
			sport = "Unknown"
		}
		sportCounts[sport]++
	}

	topSport := ""
	best := 0
	for sport, count := range sportCounts {
		if count > best || (count == best && sport < topSport) {
			best = count
			topSport = sport
		}
	}

	distanceKM := int(totalMeters / 1000)

	return model.ProviderRecord{
		Provider: Provider,
		Metrics: map[string]any{
			"athlete_name":   ath.FirstName + " " + ath.LastName,
			"distance_km":    distanceKM,
			"activities":     len(all),
			"top_sport":      topSport,
			"elevation_gain": elevationGain,
		},
		Activity: float64(distanceKM),
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
