package data

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavechat/wavechat-api/internal/domain/model"
	"github.com/wavechat/wavechat-api/internal/testutil"
)

func TestTokenRepo_Replace_KeepsSingleLiveToken(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewTokenRepo(db)
		ctx := context.Background()

		first, err := repo.Replace(ctx, NewTokenParams(
			"user@example.com", "token-one", model.TokenTypeVerification, time.Hour,
		))
		require.NoError(t, err)
		assert.NotEmpty(t, first.ID)

		second, err := repo.Replace(ctx, NewTokenParams(
			"user@example.com", "token-two", model.TokenTypeVerification, time.Hour,
		))
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		// The first token is gone: regeneration invalidates the prior value.
		_, err = repo.GetByValue(ctx, "token-one", model.TokenTypeVerification)
		require.ErrorIs(t, err, ErrTokenNotFound)

		live, err := repo.GetByEmail(ctx, "user@example.com", model.TokenTypeVerification)
		require.NoError(t, err)
		assert.Equal(t, second.ID, live.ID)
		assert.Equal(t, "token-two", live.Token)

		var count int
		require.NoError(t, db.QueryRow(
			`SELECT count(*) FROM tokens WHERE email = $1 AND type = $2`,
			"user@example.com", model.TokenTypeVerification,
		).Scan(&count))
		assert.Equal(t, 1, count)
	})
}

func TestTokenRepo_Replace_TypesAreIndependent(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewTokenRepo(db)
		ctx := context.Background()

		_, err := repo.Replace(ctx, NewTokenParams(
			"user@example.com", "verify-token", model.TokenTypeVerification, time.Hour,
		))
		require.NoError(t, err)

		// A reset token for the same email must not displace the verification one.
		_, err = repo.Replace(ctx, NewTokenParams(
			"user@example.com", "reset-token", model.TokenTypePasswordReset, time.Hour,
		))
		require.NoError(t, err)

		_, err = repo.GetByValue(ctx, "verify-token", model.TokenTypeVerification)
		require.NoError(t, err)

		// Lookup is scoped by type: the right value with the wrong type misses.
		_, err = repo.GetByValue(ctx, "verify-token", model.TokenTypePasswordReset)
		require.ErrorIs(t, err, ErrTokenNotFound)
	})
}

func TestTokenRepo_Replace_Validation(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewTokenRepo(db)
		ctx := context.Background()

		_, err := repo.Replace(ctx, model.Token{Token: "v", Type: model.TokenTypeVerification})
		require.Error(t, err)

		_, err = repo.Replace(ctx, model.Token{Email: "e@example.com", Token: "v", Type: "BOGUS"})
		require.Error(t, err)
	})
}

func TestTokenRepo_Delete(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewTokenRepo(db)
		ctx := context.Background()

		created, err := repo.Replace(ctx, NewTokenParams(
			"del@example.com", "del-token", model.TokenTypeTwoFactor, 10*time.Minute,
		))
		require.NoError(t, err)

		deleted, err := repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, deleted)

		// Second delete is a no-op, not an error.
		deleted, err = repo.Delete(ctx, created.ID)
		require.NoError(t, err)
		assert.False(t, deleted)

		deleted, err = repo.Delete(ctx, uuid.NewString())
		require.NoError(t, err)
		assert.False(t, deleted)
	})
}

func TestTokenRepo_ExpiryStoredUTC(t *testing.T) {
	testutil.SkipIfNoTestDB(t)
	testutil.WithTestDB(t, func(db *sql.DB) {
		repo := NewTokenRepo(db)
		ctx := context.Background()

		ttl := 30 * time.Minute
		created, err := repo.Replace(ctx, NewTokenParams(
			"utc@example.com", "utc-token", model.TokenTypeVerification, ttl,
		))
		require.NoError(t, err)

		assert.WithinDuration(t, time.Now().Add(ttl), created.ExpiresAt, 5*time.Second)
		assert.False(t, created.Expired(time.Now()))
		assert.True(t, created.Expired(time.Now().Add(ttl+time.Minute)))
	})
}
