package youtube

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
)

func TestParseISODuration(t *testing.T) {
	for input, want := range map[string]int{
		"PT1H2M3S": 3723,
		"PT15M":    900,
		"PT42S":    42,
		"PT2H":     7200,
		"":         0,
		"P1DT2H":   0,
		"garbage":  0,
	} {
		assert.Equal(t, want, parseISODuration(input), "input %q", input)
	}
}

func TestClient_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /youtube/v3/channels", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "true", r.URL.Query().Get("mine"))
		fmt.Fprint(w, `{"items":[{"snippet":{"title":"My Channel"},"statistics":{"viewCount":"1234","subscriberCount":"56"}}]}`)
	})
	mux.HandleFunc("GET /youtube/v3/videos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "like", r.URL.Query().Get("myRating"))
		fmt.Fprint(w, `{"items":[
			{"snippet":{"title":"Top Video"},"contentDetails":{"duration":"PT1H30M"}},
			{"snippet":{"title":"Other"},"contentDetails":{"duration":"PT45M"}},
			{"snippet":{"title":"Short"},"contentDetails":{"duration":"PT50S"}}
		]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	rec, err := client.Fetch(context.Background(), "tok", 2025)
	require.NoError(t, err)

	assert.Equal(t, "google", rec.Provider)
	assert.Equal(t, "My Channel", rec.Metrics["channel_name"])
	assert.Equal(t, "Top Video", rec.Metrics["top_video"])
	assert.Equal(t, 2, rec.Metrics["watch_hours"], "2h15m50s of liked video -> 2 hours")
	assert.Equal(t, 3, rec.Metrics["liked_videos"])
	assert.Equal(t, "56", rec.Metrics["subscriber_count"])
	assert.Equal(t, float64(2), rec.Activity)
}

func TestClient_FetchNoChannel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	t.Cleanup(srv.Close)
	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	rec, err := client.Fetch(context.Background(), "tok", 2025)
	require.NoError(t, err)

	assert.Equal(t, float64(0), rec.Activity)
	assert.Equal(t, "", rec.Metrics["channel_name"])
}

func TestClient_FetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403}}`, http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)
	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	_, err := client.Fetch(context.Background(), "tok", 2025)

	var uerr *driven.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "google", uerr.Provider)
}
