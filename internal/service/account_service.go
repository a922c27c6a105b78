package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/habanero-api/internal/apperr"
	"github.com/phrazzld/habanero-api/internal/store"
)

// AccountService exposes read access to certificated accounts.
type AccountService interface {
	// Get returns the public projection of a certificated account.
	// Uncertificated and unknown accounts are both NotFoundError.
	Get(ctx context.Context, id string) (*AccountSummary, error)
}

// AccountServiceImpl implements the AccountService interface.
type AccountServiceImpl struct {
	accounts store.AccountStore
	logger   *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(accounts store.AccountStore, logger *slog.Logger) AccountService {
	return &AccountServiceImpl{
		accounts: accounts,
		logger:   logger.With("component", "account_service"),
	}
}

// Get implements AccountService.Get.
func (s *AccountServiceImpl) Get(ctx context.Context, id string) (*AccountSummary, error) {
	account, err := s.accounts.GetCertificatedByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrAccountNotFound) {
			return nil, apperr.NotFound("account", "not found")
		}
		s.logger.Error("failed to look up account", "error", err, "account_id", id)
		return nil, apperr.System(fmt.Errorf("failed to look up account: %w", err))
	}

	return &AccountSummary{ID: account.ID, ScreenName: account.ScreenName}, nil
}
