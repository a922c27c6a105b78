package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/habanero-api/internal/domain"
)

// RefreshTokenStore defines the interface for refresh token persistence.
// An account may hold many rows, one per active session.
type RefreshTokenStore interface {
	// Insert saves a new refresh token.
	Insert(ctx context.Context, token *domain.RefreshToken) error

	// GetByToken retrieves a refresh token by its value.
	// Returns ErrRefreshTokenNotFound if it does not exist.
	GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error)

	// DeleteByToken removes a refresh token by its value.
	// Returns ErrRefreshTokenNotFound if no row was deleted; callers must
	// treat that as "not found" rather than silently succeeding, which is
	// what makes rotation single-use under concurrent reuse.
	DeleteByToken(ctx context.Context, token string) error

	// WithTx returns a RefreshTokenStore bound to the given transaction.
	WithTx(tx *sql.Tx) RefreshTokenStore
}
