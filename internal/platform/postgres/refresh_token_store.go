package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/habanero-api/internal/domain"
	"github.com/phrazzld/habanero-api/internal/store"
)

// PostgresRefreshTokenStore implements the store.RefreshTokenStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRefreshTokenStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRefreshTokenStore creates a new PostgreSQL implementation of
// the RefreshTokenStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresRefreshTokenStore(db store.DBTX, logger *slog.Logger) *PostgresRefreshTokenStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRefreshTokenStore{
		db:     db,
		logger: logger.With(slog.String("component", "refresh_token_store")),
	}
}

// Ensure PostgresRefreshTokenStore implements store.RefreshTokenStore interface
var _ store.RefreshTokenStore = (*PostgresRefreshTokenStore)(nil)

// WithTx implements store.RefreshTokenStore.WithTx
func (s *PostgresRefreshTokenStore) WithTx(tx *sql.Tx) store.RefreshTokenStore {
	return &PostgresRefreshTokenStore{db: tx, logger: s.logger}
}

// Insert implements store.RefreshTokenStore.Insert
func (s *PostgresRefreshTokenStore) Insert(ctx context.Context, token *domain.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (account_id, token, expire_at)
		VALUES ($1, $2, $3)`

	_, err := s.db.ExecContext(ctx, query, token.AccountID, token.Token, token.ExpireAt)
	if err != nil {
		if store.IsDuplicateError(MapError(err)) {
			return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
		}
		return store.NewStoreError("refresh token", "insert", "execute failed", err)
	}

	return nil
}

// GetByToken implements store.RefreshTokenStore.GetByToken
func (s *PostgresRefreshTokenStore) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	query := `
		SELECT account_id, token, expire_at
		FROM refresh_tokens
		WHERE token = $1`

	var refreshToken domain.RefreshToken
	err := s.db.QueryRowContext(ctx, query, token).
		Scan(&refreshToken.AccountID, &refreshToken.Token, &refreshToken.ExpireAt)
	if err != nil {
		if store.IsNotFoundError(MapError(err)) {
			return nil, store.ErrRefreshTokenNotFound
		}
		return nil, store.NewStoreError("refresh token", "select", "scan failed", err)
	}

	return &refreshToken, nil
}

// DeleteByToken implements store.RefreshTokenStore.DeleteByToken.
// Zero rows affected reports ErrRefreshTokenNotFound so that two concurrent
// rotations of the same token resolve to exactly one winner.
func (s *PostgresRefreshTokenStore) DeleteByToken(ctx context.Context, token string) error {
	query := `DELETE FROM refresh_tokens WHERE token = $1`

	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		return store.NewStoreError("refresh token", "delete", "execute failed", err)
	}

	return CheckRowsAffected(result, store.ErrRefreshTokenNotFound)
}
