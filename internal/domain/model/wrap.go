package model

import "time"

// ProviderRecord is the normalized output of one adapter fetch. Metrics is
// provider-specific and schema-less on purpose; each provider's own schema is
// fixed by its adapter. Activity is the primary scalar in provider-native
// units (listening minutes, watch hours, commits, kilometers) that the
// derived summary weights into a common measure.
type ProviderRecord struct {
	Provider string         `json:"provider"`
	Metrics  map[string]any `json:"metrics"`
	Activity float64        `json:"activity"`
}

// DerivedSummary is recomputed on every aggregation run and never stored
// independently of its parent wrap.
type DerivedSummary struct {
	TotalHours  int    `json:"total_hours"`
	TopCategory string `json:"top_category"`
	TopProvider string `json:"top_provider"`
}

// AggregatedWrap is one user's computed summary for one period (a calendar
// year). Providers contains an entry only for providers whose fetch
// succeeded; a provider that failed in isolation is simply absent. Exactly
// one wrap exists per (UserID, Period), enforced by upsert on that key.
type AggregatedWrap struct {
	UserID      string                    `json:"user_id"`
	Period      int                       `json:"period"`
	Providers   map[string]ProviderRecord `json:"providers"`
	Summary     DerivedSummary            `json:"summary"`
	GeneratedAt time.Time                 `json:"generated_at"`
}
