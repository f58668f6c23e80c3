package model

import "time"

// Credential holds the encrypted secrets for one (user, provider) pair.
// AccessToken and RefreshToken are vault envelopes, never plaintext; the
// external authorization flow writes them and the aggregation engine reads
// them. ExpiresAt is zero when the provider does not expire tokens.
type Credential struct {
	UserID       string
	Provider     string
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UpdatedAt    time.Time
}
