package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/habanero-api/internal/apperr"
	"github.com/phrazzld/habanero-api/internal/domain"
	"github.com/phrazzld/habanero-api/internal/service/auth"
	"github.com/phrazzld/habanero-api/internal/store"
)

// AuthenticationService verifies credentials and emits access/refresh token pairs.
type AuthenticationService interface {
	// Login verifies the credentials against certificated accounts and, on
	// success, persists a new refresh token and returns a signed access
	// token embedding its value. An unknown email and a wrong password
	// produce the identical BusinessError so neither is distinguishable.
	Login(ctx context.Context, email, password string) (string, error)
}

// AuthenticationServiceImpl implements the AuthenticationService interface.
type AuthenticationServiceImpl struct {
	accounts      store.AccountStore
	refreshTokens store.RefreshTokenStore
	verifier      auth.PasswordVerifier
	codec         auth.AccessTokenCodec
	refreshTTL    time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewAuthenticationService creates a new AuthenticationService.
// If now is nil, time.Now is used.
func NewAuthenticationService(
	accounts store.AccountStore,
	refreshTokens store.RefreshTokenStore,
	verifier auth.PasswordVerifier,
	codec auth.AccessTokenCodec,
	refreshTTL time.Duration,
	now func() time.Time,
	logger *slog.Logger,
) AuthenticationService {
	if now == nil {
		now = time.Now
	}
	return &AuthenticationServiceImpl{
		accounts:      accounts,
		refreshTokens: refreshTokens,
		verifier:      verifier,
		codec:         codec,
		refreshTTL:    refreshTTL,
		now:           now,
		logger:        logger.With("component", "authentication_service"),
	}
}

// errBadCredentials is the single error for every login failure mode, so the
// response never leaks whether the email exists or which check failed.
func errBadCredentials() error {
	return apperr.Business("account", "email or password is incorrect")
}

// Login implements AuthenticationService.Login.
func (s *AuthenticationServiceImpl) Login(ctx context.Context, email, password string) (string, error) {
	account, err := s.accounts.GetCertificatedByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return "", errBadCredentials()
		}
		s.logger.Error("failed to look up account for login", "error", err)
		return "", apperr.System(fmt.Errorf("failed to look up account: %w", err))
	}

	if err := s.verifier.Compare(account.PasswordDigest, password); err != nil {
		s.logger.Debug("password verification failed", "account_id", account.ID)
		return "", errBadCredentials()
	}

	refreshToken := domain.NewRefreshToken(account.ID, s.refreshTTL, s.now())

	// Minting has no side effect; if the insert below fails, the embedded
	// rft claim is an orphan that no future refresh will honor.
	accessToken, err := s.codec.Issue(ctx, account.ID, refreshToken.Token)
	if err != nil {
		s.logger.Error("failed to issue access token", "error", err, "account_id", account.ID)
		return "", apperr.System(fmt.Errorf("failed to issue access token: %w", err))
	}

	if err := s.refreshTokens.Insert(ctx, refreshToken); err != nil {
		s.logger.Error("failed to insert refresh token", "error", err, "account_id", account.ID)
		return "", apperr.System(fmt.Errorf("failed to insert refresh token: %w", err))
	}

	s.logger.Info("account logged in",
		"account_id", account.ID,
		"refresh_expire_at", refreshToken.ExpireAt)
	return accessToken, nil
}
