package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/habanero-api/internal/domain"
)

// AccountStore defines the interface for account persistence.
type AccountStore interface {
	// Insert saves a new account to the store.
	// Returns ErrEmailExists if the email is already taken; uniqueness is
	// enforced by the storage layer so concurrent registrations for the
	// same email resolve to exactly one winner.
	Insert(ctx context.Context, account *domain.Account) error

	// GetByID retrieves an account by its unique ID.
	// Returns ErrAccountNotFound if the account does not exist.
	GetByID(ctx context.Context, id string) (*domain.Account, error)

	// GetByEmail retrieves an account by its email address.
	// Returns ErrAccountNotFound if the account does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)

	// GetCertificatedByEmail retrieves an account by email where
	// IsCertificated is true. Returns ErrAccountNotFound otherwise.
	GetCertificatedByEmail(ctx context.Context, email string) (*domain.Account, error)

	// GetCertificatedByID retrieves an account by ID where IsCertificated
	// is true. Returns ErrAccountNotFound otherwise.
	GetCertificatedByID(ctx context.Context, id string) (*domain.Account, error)

	// Certificate flips IsCertificated to true for the given account ID.
	// Returns ErrAccountNotFound if no row was updated.
	Certificate(ctx context.Context, id string) error

	// Delete removes an account by ID.
	// Returns ErrAccountNotFound if no row was deleted.
	Delete(ctx context.Context, id string) error

	// DeleteUncertificated removes an account by ID only while it is still
	// uncertificated, guarding against a race with a concurrent
	// certification. Returns ErrAccountNotFound if no row was deleted.
	DeleteUncertificated(ctx context.Context, id string) error

	// DeleteByEmail removes an account by email, ignoring a missing row.
	// Used by the idempotent-registration cleanup of abandoned signups.
	DeleteByEmail(ctx context.Context, email string) error

	// WithTx returns an AccountStore bound to the given transaction.
	WithTx(tx *sql.Tx) AccountStore
}
