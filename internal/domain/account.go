package domain

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
)

// Common validation errors
var (
	ErrEmptyAccountID      = errors.New("account ID cannot be empty")
	ErrEmptyEmail          = errors.New("email cannot be empty")
	ErrEmptyScreenName     = errors.New("screen name cannot be empty")
	ErrEmptyPasswordDigest = errors.New("password digest cannot be empty")
)

// Account represents a registered account of the Habanero service.
// An account starts out uncertificated and becomes certificated once the
// owner redeems the certification token mailed to them.
type Account struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	ScreenName     string    `json:"screen_name"`
	PasswordDigest string    `json:"-"` // Never expose the password hash in JSON
	IsCertificated bool      `json:"is_certificated"`
	SignedUpAt     time.Time `json:"signed_up_at"`
}

// NewAccount creates a new uncertificated Account with the given email,
// screen name, and already-hashed password. The ID is a ULID: sortable by
// creation time, with crypto/rand entropy so it is not guessable even
// though it doubles as the account's external reference.
func NewAccount(email, screenName, passwordDigest string, now time.Time) (*Account, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account ID: %w", err)
	}

	account := &Account{
		ID:             id.String(),
		Email:          email,
		ScreenName:     screenName,
		PasswordDigest: passwordDigest,
		IsCertificated: false,
		SignedUpAt:     now.UTC(),
	}

	if err := account.Validate(); err != nil {
		return nil, err
	}

	return account, nil
}

// Validate checks if the Account has valid data.
// Returns an error if any field fails validation.
func (a *Account) Validate() error {
	if a.ID == "" {
		return ErrEmptyAccountID
	}

	if a.Email == "" {
		return ErrEmptyEmail
	}

	if a.ScreenName == "" {
		return ErrEmptyScreenName
	}

	if a.PasswordDigest == "" {
		return ErrEmptyPasswordDigest
	}

	return nil
}
