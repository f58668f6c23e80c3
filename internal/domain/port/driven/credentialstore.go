package driven

import (
	"context"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
)

// CredentialStore defines the driven port for encrypted credential rows
// keyed by (user, provider). Token values cross this boundary as vault
// envelopes; decryption is the aggregation engine's job, not the store's.
// Writes happen during the external authorization flow; this core only
// reads, but Set is part of the port so that flow and the tests share one
// contract.
type CredentialStore interface {
	// Set stores or replaces the credential for (cred.UserID, cred.Provider).
	Set(ctx context.Context, cred model.Credential) error

	// Get retrieves the credential for the given user and provider.
	// Returns (nil, nil) if no credential exists.
	Get(ctx context.Context, userID, provider string) (*model.Credential, error)

	// ListProviders returns the provider identities the user has connected,
	// ordered by provider name. Empty slice when the user has none.
	ListProviders(ctx context.Context, userID string) ([]string, error)
}
