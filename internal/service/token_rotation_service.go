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

// TokenRotationService validates and rotates refresh tokens.
type TokenRotationService interface {
	// Refresh rotates the refresh token: an access token embedding a
	// successor value is minted, then the presented value is retired and
	// the successor inserted in its place. A refresh token is single-use;
	// unknown, expired, and concurrently-reused values all get the same
	// ConflictError.
	Refresh(ctx context.Context, refreshTokenValue string) (string, error)
}

// TokenRotationServiceImpl implements the TokenRotationService interface.
type TokenRotationServiceImpl struct {
	refreshTokens store.RefreshTokenStore
	codec         auth.AccessTokenCodec
	refreshTTL    time.Duration
	now           func() time.Time
	logger        *slog.Logger
}

// NewTokenRotationService creates a new TokenRotationService.
// If now is nil, time.Now is used.
func NewTokenRotationService(
	refreshTokens store.RefreshTokenStore,
	codec auth.AccessTokenCodec,
	refreshTTL time.Duration,
	now func() time.Time,
	logger *slog.Logger,
) TokenRotationService {
	if now == nil {
		now = time.Now
	}
	return &TokenRotationServiceImpl{
		refreshTokens: refreshTokens,
		codec:         codec,
		refreshTTL:    refreshTTL,
		now:           now,
		logger:        logger.With("component", "token_rotation_service"),
	}
}

// errInvalidRefreshToken covers not-found, expired, and concurrently-reused
// tokens alike, so a caller cannot distinguish expired from forged values.
func errInvalidRefreshToken() error {
	return apperr.Conflict("token", "invalid")
}

// Refresh implements TokenRotationService.Refresh.
func (s *TokenRotationServiceImpl) Refresh(ctx context.Context, refreshTokenValue string) (string, error) {
	oldToken, err := s.refreshTokens.GetByToken(ctx, refreshTokenValue)
	if err != nil {
		if errors.Is(err, store.ErrRefreshTokenNotFound) {
			return "", errInvalidRefreshToken()
		}
		s.logger.Error("failed to look up refresh token", "error", err)
		return "", apperr.System(fmt.Errorf("failed to look up refresh token: %w", err))
	}

	if oldToken.IsExpired(s.now()) {
		if err := s.refreshTokens.DeleteByToken(ctx, oldToken.Token); err != nil &&
			!errors.Is(err, store.ErrRefreshTokenNotFound) {
			s.logger.Error("failed to delete expired refresh token",
				"error", err,
				"account_id", oldToken.AccountID)
		}
		return "", errInvalidRefreshToken()
	}

	// Sign before touching storage: if the signer fails, the presented token
	// stays usable and no successor the caller never saw is left behind.
	newToken := domain.NewRefreshToken(oldToken.AccountID, s.refreshTTL, s.now())
	accessToken, err := s.codec.Issue(ctx, oldToken.AccountID, newToken.Token)
	if err != nil {
		s.logger.Error("failed to issue access token",
			"error", err,
			"account_id", oldToken.AccountID)
		return "", apperr.System(fmt.Errorf("failed to issue access token: %w", err))
	}

	// Rotation: retire the old record, then insert its successor. Only one
	// of two concurrent refreshes deletes a still-present row; the loser
	// sees zero rows affected and is rejected, so the same value can never
	// mint two successors.
	if err := s.refreshTokens.DeleteByToken(ctx, oldToken.Token); err != nil {
		if errors.Is(err, store.ErrRefreshTokenNotFound) {
			s.logger.Debug("refresh token reused concurrently",
				"account_id", oldToken.AccountID)
			return "", errInvalidRefreshToken()
		}
		s.logger.Error("failed to delete refresh token",
			"error", err,
			"account_id", oldToken.AccountID)
		return "", apperr.System(fmt.Errorf("failed to delete refresh token: %w", err))
	}

	if err := s.refreshTokens.Insert(ctx, newToken); err != nil {
		s.logger.Error("failed to insert rotated refresh token",
			"error", err,
			"account_id", oldToken.AccountID)
		return "", apperr.System(fmt.Errorf("failed to insert rotated refresh token: %w", err))
	}

	s.logger.Info("refresh token rotated",
		"account_id", oldToken.AccountID,
		"expire_at", newToken.ExpireAt)
	return accessToken, nil
}
