package domain

import (
	"time"

	"github.com/google/uuid"
)

// CertificationToken is a single-use, short-lived secret proving control of
// an account's email address. At most one live token exists per account;
// resending replaces the token value and expiry in place.
type CertificationToken struct {
	AccountID string    `json:"account_id"`
	Token     string    `json:"token"`
	ExpireAt  time.Time `json:"expire_at"`
}

// NewCertificationToken creates a certification token for the given account
// with an opaque random value expiring ttl from now.
func NewCertificationToken(accountID string, ttl time.Duration, now time.Time) *CertificationToken {
	return &CertificationToken{
		AccountID: accountID,
		Token:     uuid.NewString(),
		ExpireAt:  now.UTC().Add(ttl),
	}
}

// IsExpired reports whether the token's expiry is in the past at the given
// instant. Expiry is enforced lazily on the read paths; an expired row may
// linger in storage until next touched.
func (t *CertificationToken) IsExpired(now time.Time) bool {
	return t.ExpireAt.Before(now)
}
