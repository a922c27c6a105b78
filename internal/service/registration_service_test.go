package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/habanero-api/internal/apperr"
	"github.com/phrazzld/habanero-api/internal/domain"
	"github.com/phrazzld/habanero-api/internal/store"
)

// registrationFixture bundles the registration service with its fakes so each
// test can reach into the stores directly.
type registrationFixture struct {
	service  RegistrationService
	accounts *fakeAccountStore
	tokens   *fakeCertificationTokenStore
	mailer   *fakeMailer
	now      time.Time
}

func newRegistrationFixture(t *testing.T) *registrationFixture {
	t.Helper()

	f := &registrationFixture{
		accounts: newFakeAccountStore(),
		tokens:   newFakeCertificationTokenStore(),
		mailer:   &fakeMailer{},
		now:      time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	f.service = NewRegistrationService(
		nil,
		f.accounts,
		f.tokens,
		&fakeHasher{},
		f.mailer,
		NewCertificationLinkBuilder("https://app.example.com"),
		24*time.Hour,
		func() time.Time { return f.now },
		discardLogger(),
	)
	return f
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("creates account, token, and sends mail", func(t *testing.T) {
		t.Parallel()
		f := newRegistrationFixture(t)

		summary, err := f.service.Register(ctx, "owner@example.com", "owner", "Passw0rd!")
		require.NoError(t, err)
		assert.Equal(t, "owner", summary.ScreenName)
		assert.NotEmpty(t, summary.ID)

		account, err := f.accounts.GetByID(ctx, summary.ID)
		require.NoError(t, err)
		assert.Equal(t, "owner@example.com", account.Email)
		assert.Equal(t, "digest:Passw0rd!", account.PasswordDigest)
		assert.False(t, account.IsCertificated)

		token, err := f.tokens.GetByAccountID(ctx, summary.ID)
		require.NoError(t, err)
		assert.Equal(t, f.now.Add(24*time.Hour), token.ExpireAt)

		require.Len(t, f.mailer.sent, 1)
		assert.Equal(t, "owner@example.com", f.mailer.sent[0].Recipient)
		assert.True(t, strings.Contains(f.mailer.sent[0].CertificationLink, token.Token),
			"certification link must carry the token value")
	})

	t.Run("rejects certificated email", func(t *testing.T) {
		t.Parallel()
		f := newRegistrationFixture(t)

		account, err := domain.NewAccount("owner@example.com", "owner", "digest:x", f.now)
		require.NoError(t, err)
		account.IsCertificated = true
		require.NoError(t, f.accounts.Insert(ctx, account))

		_, err = f.service.Register(ctx, "owner@example.com", "other", "Passw0rd!")
		assert.True(t, apperr.IsKind(err, apperr.KindBusiness))
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("rejects while certification is pending", func(t *testing.T) {
		t.Parallel()
		f := newRegistrationFixture(t)

		_, err := f.service.Register(ctx, "owner@example.com", "owner", "Passw0rd!")
		require.NoError(t, err)

		_, err = f.service.Register(ctx, "owner@example.com", "owner", "Passw0rd!")
		assert.True(t, apperr.IsKind(err, apperr.KindBusiness))
	})

	t.Run("garbage-collects abandoned registration", func(t *testing.T) {
		t.Parallel()
		f := newRegistrationFixture(t)

		first, err := f.service.Register(ctx, "owner@example.com", "owner", "Passw0rd!")
		require.NoError(t, err)

		// Let the certification window lapse, then register again.
		f.now = f.now.Add(25 * time.Hour)
		second, err := f.service.Register(ctx, "owner@example.com", "owner", "Passw0rd!")
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, second.ID)

		_, err = f.accounts.GetByID(ctx, first.ID)
		assert.ErrorIs(t, err, store.ErrAccountNotFound)
		_, err = f.tokens.GetByAccountID(ctx, first.ID)
		assert.ErrorIs(t, err, store.ErrCertificationTokenNotFound)

		_, err = f.accounts.GetByID(ctx, second.ID)
		assert.NoError(t, err)
	})

	t.Run("garbage-collects account left without a token", func(t *testing.T) {
		t.Parallel()
		f := newRegistrationFixture(t)

		account, err := domain.NewAccount("owner@example.com", "owner", "digest:x", f.now)
		require.NoError(t, err)
		require.NoError(t, f.accounts.Insert(ctx, account))

		summary, err := f.service.Register(ctx, "owner@example.com", "owner", "Passw0rd!")
		require.NoError(t, err)
		assert.NotEqual(t, account.ID, summary.ID)
	})

	t.Run("mail failure persists nothing", func(t *testing.T) {
		t.Parallel()
		f := newRegistrationFixture(t)
		f.mailer.sendErr = errors.New("smtp down")

		_, err := f.service.Register(ctx, "owner@example.com", "owner", "Passw0rd!")
		assert.True(t, apperr.IsKind(err, apperr.KindSystem))

		_, err = f.accounts.GetByEmail(ctx, "owner@example.com")
		assert.Error(t, err)
		assert.Empty(t, f.tokens.tokens)
	})

	t.Run("losing the insert race reads as already registered", func(t *testing.T) {
		t.Parallel()
		f := newRegistrationFixture(t)

		// The email lookup sees nothing, but the insert hits the unique
		// constraint, as when two registrations interleave.
		f.accounts.insertErr = store.ErrEmailExists

		_, err := f.service.Register(ctx, "owner@example.com", "owner", "Passw0rd!")
		assert.True(t, apperr.IsKind(err, apperr.KindBusiness))
	})
}
