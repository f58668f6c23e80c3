package driven

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
)

// PersistenceError wraps a storage-layer failure from the WrapStore. The
// store never retries; retry policy belongs to the caller.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("wrap store: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// WrapStore defines the driven port for aggregated wrap persistence keyed
// by (user, period).
type WrapStore interface {
	// Get retrieves the stored wrap for the composite key.
	// Returns (nil, nil) if none exists.
	Get(ctx context.Context, userID string, period int) (*model.AggregatedWrap, error)

	// Upsert inserts or wholesale-replaces the wrap for
	// (wrap.UserID, wrap.Period). The replace is a single-row write:
	// concurrent upserts for the same key are last-writer-wins, never a
	// field-level merge.
	Upsert(ctx context.Context, wrap model.AggregatedWrap) error
}
