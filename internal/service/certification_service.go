package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/habanero-api/internal/apperr"
	"github.com/phrazzld/habanero-api/internal/domain"
	"github.com/phrazzld/habanero-api/internal/platform/mail"
	"github.com/phrazzld/habanero-api/internal/store"
)

// CertificationService redeems and resends certification tokens, and
// garbage-collects accounts whose certification window expired without
// redemption. Cleanup happens lazily on these read paths, not via a
// background sweep.
type CertificationService interface {
	// Redeem consumes the certification token and flips the account to
	// certificated. The token is single-use: under concurrent redemption
	// exactly one caller succeeds and the rest get a NotFoundError.
	Redeem(ctx context.Context, token string) error

	// Replace rotates the account's certification token in place and mails
	// the new link. The old link stops working even if the new mail never
	// arrives; the owner can request another resend.
	Replace(ctx context.Context, accountID string) error
}

// CertificationServiceImpl implements the CertificationService interface.
type CertificationServiceImpl struct {
	accounts   store.AccountStore
	certTokens store.CertificationTokenStore
	mailer     mail.Sender
	links      *CertificationLinkBuilder
	tokenTTL   time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewCertificationService creates a new CertificationService.
// If now is nil, time.Now is used.
func NewCertificationService(
	accounts store.AccountStore,
	certTokens store.CertificationTokenStore,
	mailer mail.Sender,
	links *CertificationLinkBuilder,
	tokenTTL time.Duration,
	now func() time.Time,
	logger *slog.Logger,
) CertificationService {
	if now == nil {
		now = time.Now
	}
	return &CertificationServiceImpl{
		accounts:   accounts,
		certTokens: certTokens,
		mailer:     mailer,
		links:      links,
		tokenTTL:   tokenTTL,
		now:        now,
		logger:     logger.With("component", "certification_service"),
	}
}

// Redeem implements CertificationService.Redeem.
func (s *CertificationServiceImpl) Redeem(ctx context.Context, token string) error {
	certToken, err := s.certTokens.FindAndDeleteByToken(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrCertificationTokenNotFound) {
			return apperr.NotFound("token", "invalid")
		}
		s.logger.Error("failed to find-and-delete certification token", "error", err)
		return apperr.System(fmt.Errorf("failed to find-and-delete certification token: %w", err))
	}

	if certToken.IsExpired(s.now()) {
		return s.collectExpired(ctx, certToken)
	}

	if err := s.accounts.Certificate(ctx, certToken.AccountID); err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return apperr.NotFound("account", "must register again")
		}
		s.logger.Error("failed to certificate account",
			"error", err,
			"account_id", certToken.AccountID)
		return apperr.System(fmt.Errorf("failed to certificate account: %w", err))
	}

	s.logger.Info("account certificated", "account_id", certToken.AccountID)
	return nil
}

// collectExpired removes the account behind an expired certification token.
// The uncertificated guard on the delete covers the race where certification
// completed between our lookup and the delete.
func (s *CertificationServiceImpl) collectExpired(ctx context.Context, certToken *domain.CertificationToken) error {
	err := s.accounts.DeleteUncertificated(ctx, certToken.AccountID)
	switch {
	case err == nil:
		s.logger.Debug("garbage-collected account with expired certification",
			"account_id", certToken.AccountID)
		return apperr.Conflict("account", "must register again")
	case errors.Is(err, store.ErrAccountNotFound):
		return apperr.NotFound("account", "must register again")
	default:
		s.logger.Error("failed to delete account with expired certification",
			"error", err,
			"account_id", certToken.AccountID)
		return apperr.System(fmt.Errorf("failed to delete account: %w", err))
	}
}

// Replace implements CertificationService.Replace.
func (s *CertificationServiceImpl) Replace(ctx context.Context, accountID string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			// Drop any orphaned token for the missing account.
			if delErr := s.certTokens.DeleteByAccountID(ctx, accountID); delErr != nil {
				s.logger.Error("failed to delete orphaned certification token",
					"error", delErr,
					"account_id", accountID)
			}
			return apperr.NotFound("accountId", "invalid")
		}
		s.logger.Error("failed to look up account", "error", err, "account_id", accountID)
		return apperr.System(fmt.Errorf("failed to look up account: %w", err))
	}

	if account.IsCertificated {
		// A lingering token would violate the tokens-imply-uncertificated
		// invariant; clean it up while rejecting.
		if delErr := s.certTokens.DeleteByAccountID(ctx, account.ID); delErr != nil {
			s.logger.Error("failed to delete lingering certification token",
				"error", delErr,
				"account_id", account.ID)
		}
		return apperr.Conflict("accountId", "already certificated")
	}

	oldToken, err := s.certTokens.GetByAccountID(ctx, account.ID)
	if err != nil && !errors.Is(err, store.ErrCertificationTokenNotFound) {
		s.logger.Error("failed to look up certification token",
			"error", err,
			"account_id", account.ID)
		return apperr.System(fmt.Errorf("failed to look up certification token: %w", err))
	}

	if err != nil || oldToken.IsExpired(s.now()) {
		// No path to certification remains; garbage-collect the account.
		if err == nil {
			if delErr := s.certTokens.DeleteByAccountID(ctx, account.ID); delErr != nil {
				s.logger.Error("failed to delete expired certification token",
					"error", delErr,
					"account_id", account.ID)
			}
		}
		if delErr := s.accounts.Delete(ctx, account.ID); delErr != nil && !errors.Is(delErr, store.ErrAccountNotFound) {
			s.logger.Error("failed to delete account without certification path",
				"error", delErr,
				"account_id", account.ID)
			return apperr.System(fmt.Errorf("failed to delete account: %w", delErr))
		}
		return apperr.NotFound("account", "must register again")
	}

	newToken := domain.NewCertificationToken(account.ID, s.tokenTTL, s.now())
	if err := s.certTokens.Replace(ctx, newToken); err != nil {
		s.logger.Error("failed to replace certification token",
			"error", err,
			"account_id", account.ID)
		return apperr.System(fmt.Errorf("failed to replace certification token: %w", err))
	}

	// The token is already rotated in storage at this point. If the send
	// fails the old link is invalidated without a new one arriving, which
	// is accepted: the owner can request another resend.
	link := s.links.Build(newToken.Token)
	if err := s.mailer.SendCertification(ctx, account.Email, account.ScreenName, link); err != nil {
		s.logger.Error("failed to send certification mail",
			"error", err,
			"account_id", account.ID)
		return apperr.System(fmt.Errorf("failed to send certification mail: %w", err))
	}

	s.logger.Info("certification token replaced",
		"account_id", account.ID,
		"expire_at", newToken.ExpireAt)
	return nil
}
