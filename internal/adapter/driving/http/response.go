package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error","code":"internal_error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status, message,
// and machine-readable code.
func writeError(w http.ResponseWriter, status int, message, code string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// WrapResponse is the JSON representation of an aggregated wrap.
type WrapResponse struct {
	UserID      string                          `json:"user_id"`
	Period      int                             `json:"period"`
	Providers   map[string]model.ProviderRecord `json:"providers"`
	Summary     model.DerivedSummary            `json:"summary"`
	GeneratedAt string                          `json:"generated_at"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// toWrapResponse converts a domain AggregatedWrap to its JSON response
// representation. The provider map is free-form by design; only the outer
// envelope is fixed.
func toWrapResponse(wrap model.AggregatedWrap) WrapResponse {
	providers := wrap.Providers
	if providers == nil {
		providers = map[string]model.ProviderRecord{}
	}

	return WrapResponse{
		UserID:      wrap.UserID,
		Period:      wrap.Period,
		Providers:   providers,
		Summary:     wrap.Summary,
		GeneratedAt: wrap.GeneratedAt.UTC().Format(time.RFC3339),
	}
}
