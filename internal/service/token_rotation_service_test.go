package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/habanero-api/internal/apperr"
	"github.com/phrazzld/habanero-api/internal/domain"
	"github.com/phrazzld/habanero-api/internal/store"
)

// rotationFixture bundles the token rotation service with its fakes.
type rotationFixture struct {
	service       TokenRotationService
	refreshTokens *fakeRefreshTokenStore
	codec         *fakeCodec
	now           time.Time
}

func newRotationFixture(t *testing.T) *rotationFixture {
	t.Helper()

	f := &rotationFixture{
		refreshTokens: newFakeRefreshTokenStore(),
		codec:         &fakeCodec{},
		now:           time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewTokenRotationService(
		f.refreshTokens,
		f.codec,
		720*time.Hour,
		func() time.Time { return f.now },
		discardLogger(),
	)
	return f
}

func TestRefresh(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("retires the old token and mints a successor", func(t *testing.T) {
		t.Parallel()
		f := newRotationFixture(t)

		old := domain.NewRefreshToken("account-1", 720*time.Hour, f.now)
		require.NoError(t, f.refreshTokens.Insert(ctx, old))

		accessToken, err := f.service.Refresh(ctx, old.Token)
		require.NoError(t, err)

		_, err = f.refreshTokens.GetByToken(ctx, old.Token)
		assert.ErrorIs(t, err, store.ErrRefreshTokenNotFound)

		require.Len(t, f.refreshTokens.tokens, 1)
		var successor *domain.RefreshToken
		for _, token := range f.refreshTokens.tokens {
			successor = token
		}
		assert.Equal(t, "account-1", successor.AccountID)
		assert.NotEqual(t, old.Token, successor.Token)
		assert.Equal(t, "access|account-1|"+successor.Token, accessToken)
	})

	t.Run("unknown token is a conflict", func(t *testing.T) {
		t.Parallel()
		f := newRotationFixture(t)

		_, err := f.service.Refresh(ctx, "no-such-token")
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("expired token is retired and rejected", func(t *testing.T) {
		t.Parallel()
		f := newRotationFixture(t)

		old := domain.NewRefreshToken("account-1", time.Hour, f.now)
		require.NoError(t, f.refreshTokens.Insert(ctx, old))

		f.now = f.now.Add(2 * time.Hour)
		_, err := f.service.Refresh(ctx, old.Token)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		assert.Empty(t, f.refreshTokens.tokens)
	})

	t.Run("signing failure leaves the presented token usable", func(t *testing.T) {
		t.Parallel()
		f := newRotationFixture(t)

		old := domain.NewRefreshToken("account-1", 720*time.Hour, f.now)
		require.NoError(t, f.refreshTokens.Insert(ctx, old))

		f.codec.issueErr = errors.New("signer unavailable")
		_, err := f.service.Refresh(ctx, old.Token)
		assert.True(t, apperr.IsKind(err, apperr.KindSystem))

		// The old record survives and no unseen successor was persisted.
		_, err = f.refreshTokens.GetByToken(ctx, old.Token)
		assert.NoError(t, err)
		assert.Len(t, f.refreshTokens.tokens, 1)

		// The same value rotates normally once the signer recovers.
		f.codec.issueErr = nil
		_, err = f.service.Refresh(ctx, old.Token)
		assert.NoError(t, err)
	})

	t.Run("a retired token cannot be replayed", func(t *testing.T) {
		t.Parallel()
		f := newRotationFixture(t)

		old := domain.NewRefreshToken("account-1", 720*time.Hour, f.now)
		require.NoError(t, f.refreshTokens.Insert(ctx, old))

		_, err := f.service.Refresh(ctx, old.Token)
		require.NoError(t, err)

		_, err = f.service.Refresh(ctx, old.Token)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))

		// Only the successor from the first rotation remains.
		assert.Len(t, f.refreshTokens.tokens, 1)
	})
}
