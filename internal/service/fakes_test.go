package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/phrazzld/habanero-api/internal/domain"
	"github.com/phrazzld/habanero-api/internal/store"
)

// discardLogger returns a logger for tests that should stay silent.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAccountStore is an in-memory store.AccountStore keyed by account ID.
// Per-method error hooks let tests inject storage failures.
type fakeAccountStore struct {
	accounts map[string]*domain.Account

	insertErr error
	getErr    error
	deleteErr error
}

func newFakeAccountStore() *fakeAccountStore {
	return &fakeAccountStore{accounts: make(map[string]*domain.Account)}
}

func (s *fakeAccountStore) Insert(ctx context.Context, account *domain.Account) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	for _, existing := range s.accounts {
		if existing.Email == account.Email {
			return store.ErrEmailExists
		}
	}
	copied := *account
	s.accounts[account.ID] = &copied
	return nil
}

func (s *fakeAccountStore) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	account, ok := s.accounts[id]
	if !ok {
		return nil, store.ErrAccountNotFound
	}
	copied := *account
	return &copied, nil
}

func (s *fakeAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	for _, account := range s.accounts {
		if account.Email == email {
			copied := *account
			return &copied, nil
		}
	}
	return nil, store.ErrAccountNotFound
}

func (s *fakeAccountStore) GetCertificatedByEmail(ctx context.Context, email string) (*domain.Account, error) {
	account, err := s.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !account.IsCertificated {
		return nil, store.ErrAccountNotFound
	}
	return account, nil
}

func (s *fakeAccountStore) GetCertificatedByID(ctx context.Context, id string) (*domain.Account, error) {
	account, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !account.IsCertificated {
		return nil, store.ErrAccountNotFound
	}
	return account, nil
}

func (s *fakeAccountStore) Certificate(ctx context.Context, id string) error {
	account, ok := s.accounts[id]
	if !ok {
		return store.ErrAccountNotFound
	}
	account.IsCertificated = true
	return nil
}

func (s *fakeAccountStore) Delete(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	if _, ok := s.accounts[id]; !ok {
		return store.ErrAccountNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *fakeAccountStore) DeleteUncertificated(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	account, ok := s.accounts[id]
	if !ok || account.IsCertificated {
		return store.ErrAccountNotFound
	}
	delete(s.accounts, id)
	return nil
}

func (s *fakeAccountStore) DeleteByEmail(ctx context.Context, email string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	for id, account := range s.accounts {
		if account.Email == email {
			delete(s.accounts, id)
			return nil
		}
	}
	return nil
}

func (s *fakeAccountStore) WithTx(tx *sql.Tx) store.AccountStore { return s }

// fakeCertificationTokenStore is an in-memory store.CertificationTokenStore
// keyed by account ID, mirroring the one-token-per-account constraint.
type fakeCertificationTokenStore struct {
	tokens map[string]*domain.CertificationToken

	insertErr error
	getErr    error
}

func newFakeCertificationTokenStore() *fakeCertificationTokenStore {
	return &fakeCertificationTokenStore{tokens: make(map[string]*domain.CertificationToken)}
}

func (s *fakeCertificationTokenStore) Insert(ctx context.Context, token *domain.CertificationToken) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	if _, ok := s.tokens[token.AccountID]; ok {
		return store.ErrDuplicate
	}
	copied := *token
	s.tokens[token.AccountID] = &copied
	return nil
}

func (s *fakeCertificationTokenStore) GetByAccountID(ctx context.Context, accountID string) (*domain.CertificationToken, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	token, ok := s.tokens[accountID]
	if !ok {
		return nil, store.ErrCertificationTokenNotFound
	}
	copied := *token
	return &copied, nil
}

func (s *fakeCertificationTokenStore) FindAndDeleteByToken(ctx context.Context, token string) (*domain.CertificationToken, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	for accountID, held := range s.tokens {
		if held.Token == token {
			copied := *held
			delete(s.tokens, accountID)
			return &copied, nil
		}
	}
	return nil, store.ErrCertificationTokenNotFound
}

func (s *fakeCertificationTokenStore) Replace(ctx context.Context, token *domain.CertificationToken) error {
	if _, ok := s.tokens[token.AccountID]; !ok {
		return store.ErrCertificationTokenNotFound
	}
	copied := *token
	s.tokens[token.AccountID] = &copied
	return nil
}

func (s *fakeCertificationTokenStore) DeleteByAccountID(ctx context.Context, accountID string) error {
	delete(s.tokens, accountID)
	return nil
}

func (s *fakeCertificationTokenStore) WithTx(tx *sql.Tx) store.CertificationTokenStore { return s }

// fakeRefreshTokenStore is an in-memory store.RefreshTokenStore keyed by
// token value.
type fakeRefreshTokenStore struct {
	tokens map[string]*domain.RefreshToken

	insertErr error
	getErr    error
}

func newFakeRefreshTokenStore() *fakeRefreshTokenStore {
	return &fakeRefreshTokenStore{tokens: make(map[string]*domain.RefreshToken)}
}

func (s *fakeRefreshTokenStore) Insert(ctx context.Context, token *domain.RefreshToken) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	copied := *token
	s.tokens[token.Token] = &copied
	return nil
}

func (s *fakeRefreshTokenStore) GetByToken(ctx context.Context, token string) (*domain.RefreshToken, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	held, ok := s.tokens[token]
	if !ok {
		return nil, store.ErrRefreshTokenNotFound
	}
	copied := *held
	return &copied, nil
}

func (s *fakeRefreshTokenStore) DeleteByToken(ctx context.Context, token string) error {
	if _, ok := s.tokens[token]; !ok {
		return store.ErrRefreshTokenNotFound
	}
	delete(s.tokens, token)
	return nil
}

func (s *fakeRefreshTokenStore) WithTx(tx *sql.Tx) store.RefreshTokenStore { return s }

// sentMail records one dispatched certification mail.
type sentMail struct {
	Recipient         string
	ScreenName        string
	CertificationLink string
}

// fakeMailer records certification mails instead of sending them.
type fakeMailer struct {
	sent    []sentMail
	sendErr error
}

func (m *fakeMailer) SendCertification(ctx context.Context, recipient, screenName, certificationLink string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.sent = append(m.sent, sentMail{
		Recipient:         recipient,
		ScreenName:        screenName,
		CertificationLink: certificationLink,
	})
	return nil
}

// fakeHasher is a transparent stand-in for the bcrypt hasher so tests can
// assert on digests without paying the bcrypt cost.
type fakeHasher struct {
	hashErr error
}

func (h *fakeHasher) Hash(password string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "digest:" + password, nil
}

func (h *fakeHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "digest:"+password {
		return fmt.Errorf("password mismatch")
	}
	return nil
}

// fakeCodec mints transparent access tokens so tests can read the embedded
// account ID and refresh token value back out.
type fakeCodec struct {
	issueErr error
}

func (c *fakeCodec) Issue(ctx context.Context, accountID, refreshTokenValue string) (string, error) {
	if c.issueErr != nil {
		return "", c.issueErr
	}
	return "access|" + accountID + "|" + refreshTokenValue, nil
}

func (c *fakeCodec) Verify(ctx context.Context, tokenString string) (string, error) {
	parts := strings.Split(tokenString, "|")
	if len(parts) != 3 || parts[0] != "access" {
		return "", fmt.Errorf("malformed token")
	}
	return parts[1], nil
}
