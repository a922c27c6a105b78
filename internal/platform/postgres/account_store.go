package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/habanero-api/internal/domain"
	"github.com/phrazzld/habanero-api/internal/store"
)

// PostgresAccountStore implements the store.AccountStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAccountStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAccountStore creates a new PostgreSQL implementation of the
// AccountStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresAccountStore(db store.DBTX, logger *slog.Logger) *PostgresAccountStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAccountStore{
		db:     db,
		logger: logger.With(slog.String("component", "account_store")),
	}
}

// Ensure PostgresAccountStore implements store.AccountStore interface
var _ store.AccountStore = (*PostgresAccountStore)(nil)

// WithTx implements store.AccountStore.WithTx
func (s *PostgresAccountStore) WithTx(tx *sql.Tx) store.AccountStore {
	return &PostgresAccountStore{db: tx, logger: s.logger}
}

// Insert implements store.AccountStore.Insert.
// The unique index on email resolves concurrent registrations for the same
// address: exactly one insert succeeds, the loser gets ErrEmailExists.
func (s *PostgresAccountStore) Insert(ctx context.Context, account *domain.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	query := `
		INSERT INTO accounts (id, email, screen_name, password_digest, is_certificated, signed_up_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := s.db.ExecContext(ctx, query,
		account.ID,
		account.Email,
		account.ScreenName,
		account.PasswordDigest,
		account.IsCertificated,
		account.SignedUpAt,
	)
	if err != nil {
		if store.IsDuplicateError(MapError(err)) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		return store.NewStoreError("account", "insert", "execute failed", err)
	}

	return nil
}

// GetByID implements store.AccountStore.GetByID
func (s *PostgresAccountStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT id, email, screen_name, password_digest, is_certificated, signed_up_at
		FROM accounts
		WHERE id = $1`

	return s.scanAccount(s.db.QueryRowContext(ctx, query, id))
}

// GetByEmail implements store.AccountStore.GetByEmail
func (s *PostgresAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, email, screen_name, password_digest, is_certificated, signed_up_at
		FROM accounts
		WHERE email = $1`

	return s.scanAccount(s.db.QueryRowContext(ctx, query, email))
}

// GetCertificatedByEmail implements store.AccountStore.GetCertificatedByEmail
func (s *PostgresAccountStore) GetCertificatedByEmail(ctx context.Context, email string) (*domain.Account, error) {
	query := `
		SELECT id, email, screen_name, password_digest, is_certificated, signed_up_at
		FROM accounts
		WHERE email = $1 AND is_certificated = TRUE`

	return s.scanAccount(s.db.QueryRowContext(ctx, query, email))
}

// GetCertificatedByID implements store.AccountStore.GetCertificatedByID
func (s *PostgresAccountStore) GetCertificatedByID(ctx context.Context, id string) (*domain.Account, error) {
	query := `
		SELECT id, email, screen_name, password_digest, is_certificated, signed_up_at
		FROM accounts
		WHERE id = $1 AND is_certificated = TRUE`

	return s.scanAccount(s.db.QueryRowContext(ctx, query, id))
}

// Certificate implements store.AccountStore.Certificate
func (s *PostgresAccountStore) Certificate(ctx context.Context, id string) error {
	query := `UPDATE accounts SET is_certificated = TRUE WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%w: certificate account: %v", store.ErrUpdateFailed, err)
	}

	return CheckRowsAffected(result, store.ErrAccountNotFound)
}

// Delete implements store.AccountStore.Delete
func (s *PostgresAccountStore) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return store.NewStoreError("account", "delete", "execute failed", err)
	}

	return CheckRowsAffected(result, store.ErrAccountNotFound)
}

// DeleteUncertificated implements store.AccountStore.DeleteUncertificated.
// The is_certificated guard in the predicate makes the delete safe against a
// concurrent certification between the caller's lookup and this statement.
func (s *PostgresAccountStore) DeleteUncertificated(ctx context.Context, id string) error {
	query := `DELETE FROM accounts WHERE id = $1 AND is_certificated = FALSE`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return store.NewStoreError("account", "delete", "execute failed", err)
	}

	return CheckRowsAffected(result, store.ErrAccountNotFound)
}

// DeleteByEmail implements store.AccountStore.DeleteByEmail
func (s *PostgresAccountStore) DeleteByEmail(ctx context.Context, email string) error {
	query := `DELETE FROM accounts WHERE email = $1`

	if _, err := s.db.ExecContext(ctx, query, email); err != nil {
		return store.NewStoreError("account", "delete", "execute failed", err)
	}

	return nil
}

// scanAccount maps a single account row, translating sql.ErrNoRows into
// store.ErrAccountNotFound.
func (s *PostgresAccountStore) scanAccount(row *sql.Row) (*domain.Account, error) {
	var account domain.Account
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.ScreenName,
		&account.PasswordDigest,
		&account.IsCertificated,
		&account.SignedUpAt,
	)
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrAccountNotFound
		}
		return nil, store.NewStoreError("account", "select", "scan failed", err)
	}

	return &account, nil
}
