package spotify

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

func TestClient_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/me/top/tracks", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"items":[{"name":"Song A","duration_ms":200000},{"name":"Song B","duration_ms":180000}]}`)
	})
	mux.HandleFunc("GET /v1/me/top/artists", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"name":"Artist A","genres":["indie rock","shoegaze"]}]}`)
	})
	mux.HandleFunc("GET /v1/me/player/recently-played", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[{"track":{"name":"Song A","duration_ms":240000}},{"track":{"name":"Song C","duration_ms":180000}}]}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	rec, err := client.Fetch(context.Background(), "tok", 2025)
	require.NoError(t, err)

	assert.Equal(t, "spotify", rec.Provider)
	assert.Equal(t, "Song A", rec.Metrics["top_song"])
	assert.Equal(t, "Artist A", rec.Metrics["top_artist"])
	assert.Equal(t, "indie rock", rec.Metrics["top_genre"])
	assert.Equal(t, 7, rec.Metrics["minutes"], "420000ms played -> 7 minutes")
	assert.Equal(t, float64(7), rec.Activity)
}

func TestClient_FetchEmptyHistory(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"items":[]}`)
	}))
	t.Cleanup(srv.Close)
	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	rec, err := client.Fetch(context.Background(), "tok", 2025)
	require.NoError(t, err)

	assert.Equal(t, float64(0), rec.Activity)
	assert.Equal(t, "", rec.Metrics["top_song"])
	assert.Equal(t, "", rec.Metrics["top_genre"])
}

func TestClient_FetchUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"status":401}}`, http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)
	client := NewClientWithHTTPClient(srv.Client(), srv.URL)

	_, err := client.Fetch(context.Background(), "expired", 2025)

	var uerr *driven.UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, "spotify", uerr.Provider)
}
