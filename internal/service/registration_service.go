package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/habanero-api/internal/apperr"
	"github.com/phrazzld/habanero-api/internal/domain"
	"github.com/phrazzld/habanero-api/internal/platform/mail"
	"github.com/phrazzld/habanero-api/internal/service/auth"
	"github.com/phrazzld/habanero-api/internal/store"
)

// AccountSummary is the public projection of an account: the generated ID
// doubles as the external reference, everything else stays internal.
type AccountSummary struct {
	ID         string `json:"id"`
	ScreenName string `json:"screen_name"`
}

// RegistrationService orchestrates account creation, certification token
// issuance, and certification mail dispatch.
type RegistrationService interface {
	// Register creates an uncertificated account and mails its owner a
	// certification link. Registration is idempotent for abandoned signups:
	// an uncertificated account whose certification token is missing or
	// expired is garbage-collected and re-registered as if it never existed.
	// Fails with a BusinessError while a prior registration is live
	// (certificated, or pending with an unexpired token).
	Register(ctx context.Context, email, screenName, password string) (*AccountSummary, error)
}

// RegistrationServiceImpl implements the RegistrationService interface.
type RegistrationServiceImpl struct {
	db         *sql.DB
	accounts   store.AccountStore
	certTokens store.CertificationTokenStore
	hasher     auth.PasswordHasher
	mailer     mail.Sender
	links      *CertificationLinkBuilder
	tokenTTL   time.Duration
	now        func() time.Time
	logger     *slog.Logger
}

// NewRegistrationService creates a new RegistrationService.
// db may be nil, in which case the abandoned-registration cleanup runs
// without a surrounding transaction. If now is nil, time.Now is used.
func NewRegistrationService(
	db *sql.DB,
	accounts store.AccountStore,
	certTokens store.CertificationTokenStore,
	hasher auth.PasswordHasher,
	mailer mail.Sender,
	links *CertificationLinkBuilder,
	tokenTTL time.Duration,
	now func() time.Time,
	logger *slog.Logger,
) RegistrationService {
	if now == nil {
		now = time.Now
	}
	return &RegistrationServiceImpl{
		db:         db,
		accounts:   accounts,
		certTokens: certTokens,
		hasher:     hasher,
		mailer:     mailer,
		links:      links,
		tokenTTL:   tokenTTL,
		now:        now,
		logger:     logger.With("component", "registration_service"),
	}
}

// errAlreadyRegistered is the single signal for every live-duplicate path,
// including losing the insert race on the email unique constraint.
func errAlreadyRegistered() error {
	return apperr.Business("email", "already registered")
}

// Register implements RegistrationService.Register.
func (s *RegistrationServiceImpl) Register(ctx context.Context, email, screenName, password string) (*AccountSummary, error) {
	now := s.now()

	if err := s.cleanUpOrReject(ctx, email, now); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, apperr.System(fmt.Errorf("failed to hash password: %w", err))
	}

	account, err := domain.NewAccount(email, screenName, digest, now)
	if err != nil {
		s.logger.Error("failed to build account", "error", err)
		return nil, apperr.System(fmt.Errorf("failed to build account: %w", err))
	}
	certToken := domain.NewCertificationToken(account.ID, s.tokenTTL, now)

	// Mail goes out before anything is persisted: the account must never
	// exist without an attempt to notify its owner.
	link := s.links.Build(certToken.Token)
	if err := s.mailer.SendCertification(ctx, account.Email, account.ScreenName, link); err != nil {
		s.logger.Error("failed to send certification mail",
			"error", err,
			"account_id", account.ID)
		return nil, apperr.System(fmt.Errorf("failed to send certification mail: %w", err))
	}

	if err := s.accounts.Insert(ctx, account); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			// Lost the race against a concurrent registration for the same
			// email; indistinguishable from the found-existing path.
			s.logger.Debug("concurrent registration for email lost insert race",
				"account_id", account.ID)
			return nil, errAlreadyRegistered()
		}
		s.logger.Error("failed to insert account", "error", err, "account_id", account.ID)
		return nil, apperr.System(fmt.Errorf("failed to insert account: %w", err))
	}

	// No automatic rollback of the already-inserted account if this fails;
	// the stale row is garbage-collected by the next registration attempt.
	if err := s.certTokens.Insert(ctx, certToken); err != nil {
		s.logger.Error("failed to insert certification token",
			"error", err,
			"account_id", account.ID)
		return nil, apperr.System(fmt.Errorf("failed to insert certification token: %w", err))
	}

	s.logger.Info("account registered",
		"account_id", account.ID,
		"certification_expire_at", certToken.ExpireAt)

	return &AccountSummary{ID: account.ID, ScreenName: account.ScreenName}, nil
}

// cleanUpOrReject applies the duplicate-registration policy: reject while a
// prior registration for the email is live, otherwise garbage-collect the
// abandoned one so the fresh registration proceeds as if it never existed.
func (s *RegistrationServiceImpl) cleanUpOrReject(ctx context.Context, email string, now time.Time) error {
	existing, err := s.accounts.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil
		}
		s.logger.Error("failed to look up account by email", "error", err)
		return apperr.System(fmt.Errorf("failed to look up account: %w", err))
	}

	if existing.IsCertificated {
		return errAlreadyRegistered()
	}

	token, err := s.certTokens.GetByAccountID(ctx, existing.ID)
	switch {
	case err == nil && !token.IsExpired(now):
		// Pending certification blocks re-registration.
		return errAlreadyRegistered()
	case err != nil && !errors.Is(err, store.ErrCertificationTokenNotFound):
		s.logger.Error("failed to look up certification token",
			"error", err,
			"account_id", existing.ID)
		return apperr.System(fmt.Errorf("failed to look up certification token: %w", err))
	}

	if err := s.collectAbandoned(ctx, email, existing.ID); err != nil {
		s.logger.Error("failed to delete stale account", "error", err, "account_id", existing.ID)
		return apperr.System(fmt.Errorf("failed to delete stale account: %w", err))
	}

	s.logger.Debug("garbage-collected abandoned registration", "account_id", existing.ID)
	return nil
}

// collectAbandoned drops an expired certification token and its account in a
// single transaction, so a failure leaves the abandoned registration whole
// for the next attempt to collect.
func (s *RegistrationServiceImpl) collectAbandoned(ctx context.Context, email, accountID string) error {
	collect := func(ctx context.Context, accounts store.AccountStore, certTokens store.CertificationTokenStore) error {
		if err := certTokens.DeleteByAccountID(ctx, accountID); err != nil {
			return fmt.Errorf("failed to delete expired certification token: %w", err)
		}
		return accounts.DeleteByEmail(ctx, email)
	}

	if s.db == nil {
		return collect(ctx, s.accounts, s.certTokens)
	}
	return store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return collect(ctx, s.accounts.WithTx(tx), s.certTokens.WithTx(tx))
	})
}
