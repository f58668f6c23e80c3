package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
	"github.com/ericfisherdev/mywrap/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialStore = (*CredentialRepo)(nil)

// CredentialRepo is the SQLite implementation of the CredentialStore port.
// Token columns hold vault envelopes; this repo never sees plaintext.
type CredentialRepo struct {
	db *DB
}

// NewCredentialRepo creates a new CredentialRepo backed by the given DB.
func NewCredentialRepo(db *DB) *CredentialRepo {
	return &CredentialRepo{db: db}
}

// Set stores or replaces the credential for (cred.UserID, cred.Provider).
func (r *CredentialRepo) Set(ctx context.Context, cred model.Credential) error {
	const query = `
		INSERT OR REPLACE INTO credentials (user_id, provider, access_token, refresh_token, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`

	expiresAt := ""
	if !cred.ExpiresAt.IsZero() {
		expiresAt = cred.ExpiresAt.UTC().Format(time.RFC3339)
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		cred.UserID, cred.Provider, cred.AccessToken, cred.RefreshToken, expiresAt)
	if err != nil {
		return fmt.Errorf("set credential %s/%s: %w", cred.UserID, cred.Provider, err)
	}
	return nil
}

// Get retrieves the credential for the given user and provider.
// Returns (nil, nil) if no credential exists.
func (r *CredentialRepo) Get(ctx context.Context, userID, provider string) (*model.Credential, error) {
	const query = `
		SELECT user_id, provider, access_token, refresh_token, expires_at, updated_at
		FROM credentials WHERE user_id = ? AND provider = ?`

	var cred model.Credential
	var expiresAt, updatedAt string
	err := r.db.Reader.QueryRowContext(ctx, query, userID, provider).Scan(
		&cred.UserID, &cred.Provider, &cred.AccessToken, &cred.RefreshToken, &expiresAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get credential %s/%s: %w", userID, provider, err)
	}

	if expiresAt != "" {
		cred.ExpiresAt, err = time.Parse(time.RFC3339, expiresAt)
		if err != nil {
			return nil, fmt.Errorf("parse expires_at for %s/%s: %w", userID, provider, err)
		}
	}
	cred.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at for %s/%s: %w", userID, provider, err)
	}

	return &cred, nil
}

// ListProviders returns the provider identities the user has connected,
// ordered by provider name.
func (r *CredentialRepo) ListProviders(ctx context.Context, userID string) ([]string, error) {
	const query = `SELECT provider FROM credentials WHERE user_id = ? ORDER BY provider`

	rows, err := r.db.Reader.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list providers for %s: %w", userID, err)
	}
	defer rows.Close()

	providers := []string{}
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("scan provider: %w", err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate providers: %w", err)
	}

	return providers, nil
}

// parseTime parses SQLite timestamp strings, which arrive either as
// CURRENT_TIMESTAMP's "2006-01-02 15:04:05" or as RFC 3339.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
