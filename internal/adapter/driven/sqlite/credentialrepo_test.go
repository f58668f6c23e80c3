package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/mywrap/internal/domain/model"
)

func TestCredentialRepo_SetAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	expires := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	err := repo.Set(ctx, model.Credential{
		UserID:       "u1",
		Provider:     "spotify",
		AccessToken:  "0a0b:0c0d:0e0f",
		RefreshToken: "1a1b:1c1d:1e1f",
		ExpiresAt:    expires,
	})
	require.NoError(t, err)

	cred, err := repo.Get(ctx, "u1", "spotify")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "u1", cred.UserID)
	assert.Equal(t, "spotify", cred.Provider)
	assert.Equal(t, "0a0b:0c0d:0e0f", cred.AccessToken)
	assert.Equal(t, "1a1b:1c1d:1e1f", cred.RefreshToken)
	assert.True(t, cred.ExpiresAt.Equal(expires))
	assert.False(t, cred.UpdatedAt.IsZero())
}

func TestCredentialRepo_GetMissing(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)

	cred, err := repo.Get(context.Background(), "u1", "github")
	require.NoError(t, err)
	assert.Nil(t, cred)
}

func TestCredentialRepo_SetReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	err := repo.Set(ctx, model.Credential{UserID: "u1", Provider: "github", AccessToken: "old"})
	require.NoError(t, err)
	err = repo.Set(ctx, model.Credential{UserID: "u1", Provider: "github", AccessToken: "new"})
	require.NoError(t, err)

	cred, err := repo.Get(ctx, "u1", "github")
	require.NoError(t, err)
	require.NotNil(t, cred)
	assert.Equal(t, "new", cred.AccessToken)
	assert.Zero(t, cred.ExpiresAt)
}

func TestCredentialRepo_ListProviders(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)
	ctx := context.Background()

	for _, p := range []string{"strava", "spotify", "github"} {
		require.NoError(t, repo.Set(ctx, model.Credential{UserID: "u1", Provider: p, AccessToken: "t"}))
	}
	require.NoError(t, repo.Set(ctx, model.Credential{UserID: "u2", Provider: "google", AccessToken: "t"}))

	providers, err := repo.ListProviders(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"github", "spotify", "strava"}, providers)
}

func TestCredentialRepo_ListProvidersEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCredentialRepo(db)

	providers, err := repo.ListProviders(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, providers)
}
