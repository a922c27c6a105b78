package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/habanero-api/internal/domain"
	"github.com/phrazzld/habanero-api/internal/store"
)

// PostgresCertificationTokenStore implements the
// store.CertificationTokenStore interface using a PostgreSQL database as the
// storage backend. The unique index on account_id enforces the
// one-live-token-per-account invariant at the storage layer.
type PostgresCertificationTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresCertificationTokenStore creates a new PostgreSQL implementation
// of the CertificationTokenStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresCertificationTokenStore(db store.DBTX, logger *slog.Logger) *PostgresCertificationTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresCertificationTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "certification_token_store")),
	}
}

// Ensure PostgresCertificationTokenStore implements store.CertificationTokenStore interface
var _ store.CertificationTokenStore = (*PostgresCertificationTokenStore)(nil)

// WithTx implements store.CertificationTokenStore.WithTx
func (s *PostgresCertificationTokenStore) WithTx(tx *sql.Tx) store.CertificationTokenStore {
	return &PostgresCertificationTokenStore{db: tx, logger: s.logger}
}

// Insert implements store.CertificationTokenStore.Insert
func (s *PostgresCertificationTokenStore) Insert(ctx context.Context, token *domain.CertificationToken) error {
	query := `
		INSERT INTO certification_tokens (account_id, token, expire_at)
		VALUES ($1, $2, $3)`

	_, err := s.db.ExecContext(ctx, query, token.AccountID, token.Token, token.ExpireAt)
	if err != nil {
		if store.IsDuplicateError(MapError(err)) {
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		}
		return store.NewStoreError("certification token", "insert", "execute failed", err)
	}

	return nil
}

// GetByAccountID implements store.CertificationTokenStore.GetByAccountID
func (s *PostgresCertificationTokenStore) GetByAccountID(ctx context.Context, accountID string) (*domain.CertificationToken, error) {
	query := `
		SELECT account_id, token, expire_at
		FROM certification_tokens
		WHERE account_id = $1`

	return s.scanToken(s.db.QueryRowContext(ctx, query, accountID))
}

// FindAndDeleteByToken implements store.CertificationTokenStore.FindAndDeleteByToken.
// DELETE ... RETURNING is a single atomic statement, so under concurrent
// redemption of the same token exactly one caller gets the row back.
func (s *PostgresCertificationTokenStore) FindAndDeleteByToken(ctx context.Context, token string) (*domain.CertificationToken, error) {
	query := `
		DELETE FROM certification_tokens
		WHERE token = $1
		RETURNING account_id, token, expire_at`

	return s.scanToken(s.db.QueryRowContext(ctx, query, token))
}

// Replace implements store.CertificationTokenStore.Replace
func (s *PostgresCertificationTokenStore) Replace(ctx context.Context, token *domain.CertificationToken) error {
	query := `
		UPDATE certification_tokens
		SET token = $2, expire_at = $3
		WHERE account_id = $1`

	result, err := s.db.ExecContext(ctx, query, token.AccountID, token.Token, token.ExpireAt)
	if err != nil {
		return fmt.Errorf("%w: replace certification token: %v", store.ErrUpdateFailed, err)
	}

	return CheckRowsAffected(result, store.ErrCertificationTokenNotFound)
}

// DeleteByAccountID implements store.CertificationTokenStore.DeleteByAccountID
func (s *PostgresCertificationTokenStore) DeleteByAccountID(ctx context.Context, accountID string) error {
	query := `DELETE FROM certification_tokens WHERE account_id = $1`

	if _, err := s.db.ExecContext(ctx, query, accountID); err != nil {
		return store.NewStoreError("certification token", "delete", "execute failed", err)
	}

	return nil
}

// scanToken maps a single certification token row, translating
// sql.ErrNoRows into store.ErrCertificationTokenNotFound.
func (s *PostgresCertificationTokenStore) scanToken(row *sql.Row) (*domain.CertificationToken, error) {
	var token domain.CertificationToken
	err := row.Scan(&token.AccountID, &token.Token, &token.ExpireAt)
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrCertificationTokenNotFound
		}
		return nil, store.NewStoreError("certification token", "select", "scan failed", err)
	}

	return &token, nil
}
