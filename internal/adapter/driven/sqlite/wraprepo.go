package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.WrapStore = (*WrapRepo)(nil)

// WrapRepo is the SQLite implementation of the WrapStore port. The full
// aggregated wrap is stored as one JSON payload column so new providers
// never require a migration.
type WrapRepo struct {
	db *DB
}

// NewWrapRepo creates a new WrapRepo backed by the given DB.
func NewWrapRepo(db *DB) *WrapRepo {
	return &WrapRepo{db: db}
}

// Get retrieves the stored wrap for (userID, period).
// Returns (nil, nil) if none exists.
func (r *WrapRepo) Get(ctx context.Context, userID string, period int) (*model.AggregatedWrap, error) {
	const query = `SELECT payload FROM wraps WHERE user_id = ? AND period = ?`

	var payload []byte
	err := r.db.Reader.QueryRowContext(ctx, query, userID, period).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, &driven.PersistenceError{Op: fmt.Sprintf("get wrap %s/%d", userID, period), Err: err}
	}

	var wrap model.AggregatedWrap
	if err := json.Unmarshal(payload, &wrap); err != nil {
		return nil, &driven.PersistenceError{Op: fmt.Sprintf("decode wrap %s/%d", userID, period), Err: err}
	}

	return &wrap, nil
}

// Upsert inserts or wholesale-replaces the wrap for (wrap.UserID,
// wrap.Period). A single-row conflict update keeps concurrent refreshes
// last-writer-wins at the row level.
func (r *WrapRepo) Upsert(ctx context.Context, wrap model.AggregatedWrap) error {
	payload, err := json.Marshal(wrap)
	if err != nil {
		return &driven.PersistenceError{Op: fmt.Sprintf("encode wrap %s/%d", wrap.UserID, wrap.Period), Err: err}
	}

	const query = `
		INSERT INTO wraps (user_id, period, payload, generated_at, updated_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (user_id, period) DO UPDATE SET
			payload = excluded.payload,
			generated_at = excluded.generated_at,
			updated_at = CURRENT_TIMESTAMP`

	_, err = r.db.Writer.ExecContext(ctx, query,
		wrap.UserID, wrap.Period, string(payload), wrap.GeneratedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return &driven.PersistenceError{Op: fmt.Sprintf("upsert wrap %s/%d", wrap.UserID, wrap.Period), Err: err}
	}

	return nil
}
