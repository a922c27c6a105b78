package domain

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a long-lived, single-use secret that authorizes minting a
// new access token without re-entering credentials. An account may hold many
// refresh tokens (one per active session); each use rotates the record by
// deleting the old token and inserting its successor, so a value is never
// reused once retired.
type RefreshToken struct {
	AccountID string    `json:"account_id"`
	Token     string    `json:"token"`
	ExpireAt  time.Time `json:"expire_at"`
}

// NewRefreshToken creates a refresh token for the given account with an
// opaque random value expiring ttl from now.
func NewRefreshToken(accountID string, ttl time.Duration, now time.Time) *RefreshToken {
	return &RefreshToken{
		AccountID: accountID,
		Token:     uuid.NewString(),
		ExpireAt:  now.UTC().Add(ttl),
	}
}

// IsExpired reports whether the token's expiry is in the past at the given instant.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpireAt)
}
