package driven

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
)

// UpstreamError classifies any failure talking to an external provider:
// network errors, expired tokens, malformed responses, timeouts. Adapters
// must wrap every failure in this type so the aggregation engine can
// isolate it per provider.
type UpstreamError struct {
	Provider string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ProviderClient is the uniform capability each provider integration
// implements: given a decrypted access token, produce one normalized usage
// record for the period.
//
// Implementations must not mutate or persist the token, must be safe for
// concurrent use, and must return failures as *UpstreamError. A provider
// with no data for the period returns a record with zero metrics, not an
// error; only a failed fetch yields no record.
type ProviderClient interface {
	// Provider returns the stable identity string, the same key used for
	// credential rows and the wrap's provider map.
	Provider() string

	// Fetch retrieves and normalizes the user's activity for the given
	// period (a calendar year).
	Fetch(ctx context.Context, accessToken string, period int) (model.ProviderRecord, error)
}
