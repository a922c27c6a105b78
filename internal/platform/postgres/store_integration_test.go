package postgres_test

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/habanero-api/internal/domain"
	"github.com/phrazzld/habanero-api/internal/platform/postgres"
	"github.com/phrazzld/habanero-api/internal/store"
)

// openTestDB connects to the database named by HABANERO_TEST_DB_URL, applies
// migrations, and truncates the tables. Tests are skipped when the variable
// is unset so the suite runs without a database by default.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	url := os.Getenv("HABANERO_TEST_DB_URL")
	if url == "" {
		t.Skip("HABANERO_TEST_DB_URL not set, skipping database integration test")
	}

	db, err := sql.Open("pgx", url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, postgres.MigrateUp(db))

	_, err = db.Exec("TRUNCATE accounts, certification_tokens, refresh_tokens")
	require.NoError(t, err)

	return db
}

func insertTestAccount(t *testing.T, accounts store.AccountStore, email string) *domain.Account {
	t.Helper()

	account, err := domain.NewAccount(email, "owner", "digest", time.Now())
	require.NoError(t, err)
	require.NoError(t, accounts.Insert(context.Background(), account))
	return account
}

func TestPostgresAccountStore(t *testing.T) {
	db := openTestDB(t)
	accounts := postgres.NewPostgresAccountStore(db, nil)
	ctx := context.Background()

	account := insertTestAccount(t, accounts, "owner@example.com")

	t.Run("round-trips by id and email", func(t *testing.T) {
		byID, err := accounts.GetByID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, account.Email, byID.Email)
		assert.False(t, byID.IsCertificated)

		byEmail, err := accounts.GetByEmail(ctx, account.Email)
		require.NoError(t, err)
		assert.Equal(t, account.ID, byEmail.ID)
	})

	t.Run("duplicate email is rejected by the unique index", func(t *testing.T) {
		dup, err := domain.NewAccount("owner@example.com", "other", "digest", time.Now())
		require.NoError(t, err)
		err = accounts.Insert(ctx, dup)
		assert.ErrorIs(t, err, store.ErrEmailExists)
	})

	t.Run("certificated lookups see only certificated accounts", func(t *testing.T) {
		_, err := accounts.GetCertificatedByID(ctx, account.ID)
		assert.ErrorIs(t, err, store.ErrAccountNotFound)

		require.NoError(t, accounts.Certificate(ctx, account.ID))

		got, err := accounts.GetCertificatedByEmail(ctx, account.Email)
		require.NoError(t, err)
		assert.True(t, got.IsCertificated)
	})

	t.Run("uncertificated delete refuses a certificated account", func(t *testing.T) {
		err := accounts.DeleteUncertificated(ctx, account.ID)
		assert.ErrorIs(t, err, store.ErrAccountNotFound)

		_, err = accounts.GetByID(ctx, account.ID)
		assert.NoError(t, err)
	})

	t.Run("delete reports a missing row", func(t *testing.T) {
		require.NoError(t, accounts.Delete(ctx, account.ID))
		err := accounts.Delete(ctx, account.ID)
		assert.ErrorIs(t, err, store.ErrAccountNotFound)
	})
}

func TestPostgresCertificationTokenStore(t *testing.T) {
	db := openTestDB(t)
	accounts := postgres.NewPostgresAccountStore(db, nil)
	tokens := postgres.NewPostgresCertificationTokenStore(db, nil)
	ctx := context.Background()

	account := insertTestAccount(t, accounts, "owner@example.com")
	token := domain.NewCertificationToken(account.ID, 24*time.Hour, time.Now())
	require.NoError(t, tokens.Insert(ctx, token))

	t.Run("one token per account", func(t *testing.T) {
		second := domain.NewCertificationToken(account.ID, 24*time.Hour, time.Now())
		err := tokens.Insert(ctx, second)
		assert.ErrorIs(t, err, store.ErrDuplicate)
	})

	t.Run("replace rotates the value in place", func(t *testing.T) {
		rotated := domain.NewCertificationToken(account.ID, 24*time.Hour, time.Now())
		require.NoError(t, tokens.Replace(ctx, rotated))

		got, err := tokens.GetByAccountID(ctx, account.ID)
		require.NoError(t, err)
		assert.Equal(t, rotated.Token, got.Token)
	})

	t.Run("find-and-delete consumes the token exactly once", func(t *testing.T) {
		held, err := tokens.GetByAccountID(ctx, account.ID)
		require.NoError(t, err)

		got, err := tokens.FindAndDeleteByToken(ctx, held.Token)
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.AccountID)

		_, err = tokens.FindAndDeleteByToken(ctx, held.Token)
		assert.ErrorIs(t, err, store.ErrCertificationTokenNotFound)
	})
}

func TestPostgresRefreshTokenStore(t *testing.T) {
	db := openTestDB(t)
	accounts := postgres.NewPostgresAccountStore(db, nil)
	tokens := postgres.NewPostgresRefreshTokenStore(db, nil)
	ctx := context.Background()

	account := insertTestAccount(t, accounts, "owner@example.com")

	t.Run("an account may hold several tokens", func(t *testing.T) {
		first := domain.NewRefreshToken(account.ID, time.Hour, time.Now())
		second := domain.NewRefreshToken(account.ID, time.Hour, time.Now())
		require.NoError(t, tokens.Insert(ctx, first))
		require.NoError(t, tokens.Insert(ctx, second))

		got, err := tokens.GetByToken(ctx, first.Token)
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.AccountID)
	})

	t.Run("delete is single-winner", func(t *testing.T) {
		token := domain.NewRefreshToken(account.ID, time.Hour, time.Now())
		require.NoError(t, tokens.Insert(ctx, token))

		require.NoError(t, tokens.DeleteByToken(ctx, token.Token))
		err := tokens.DeleteByToken(ctx, token.Token)
		assert.ErrorIs(t, err, store.ErrRefreshTokenNotFound)
	})
}
