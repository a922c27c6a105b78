package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/habanero-api/internal/domain"
)

// CertificationTokenStore defines the interface for certification token
// persistence. The storage layer enforces at most one token per account.
type CertificationTokenStore interface {
	// Insert saves a new certification token.
	// Returns ErrDuplicate if the account already holds a token.
	Insert(ctx context.Context, token *domain.CertificationToken) error

	// GetByAccountID retrieves the token held by the given account.
	// Returns ErrCertificationTokenNotFound if the account holds none.
	GetByAccountID(ctx context.Context, accountID string) (*domain.CertificationToken, error)

	// FindAndDeleteByToken atomically deletes the row with the given token
	// value and returns it. Under concurrent redemption exactly one caller
	// observes the token; the rest get ErrCertificationTokenNotFound.
	FindAndDeleteByToken(ctx context.Context, token string) (*domain.CertificationToken, error)

	// Replace updates the token value and expiry of the row held by the
	// given account, in place rather than inserting a second row.
	// Returns ErrCertificationTokenNotFound if the account holds none.
	Replace(ctx context.Context, token *domain.CertificationToken) error

	// DeleteByAccountID removes the token held by the given account,
	// ignoring a missing row. Used by the lazy cleanup paths.
	DeleteByAccountID(ctx context.Context, accountID string) error

	// WithTx returns a CertificationTokenStore bound to the given transaction.
	WithTx(tx *sql.Tx) CertificationTokenStore
}
