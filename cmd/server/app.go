package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/habanero-api/internal/api"
	"github.com/phrazzld/habanero-api/internal/config"
	"github.com/phrazzld/habanero-api/internal/platform/mail"
	"github.com/phrazzld/habanero-api/internal/platform/postgres"
	"github.com/phrazzld/habanero-api/internal/service"
	"github.com/phrazzld/habanero-api/internal/service/auth"
	"github.com/phrazzld/habanero-api/internal/store"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	// Configuration
	config *config.Config

	// Core services
	logger *slog.Logger
	db     *sql.DB

	// Stores (using interfaces for proper abstraction)
	accountStore        store.AccountStore
	certificationTokens store.CertificationTokenStore
	refreshTokens       store.RefreshTokenStore

	// Auth primitives
	keys   *auth.KeyMaterial
	codec  auth.AccessTokenCodec
	hasher *auth.BcryptHasher

	// Service interfaces
	registrationService   service.RegistrationService
	certificationService  service.CertificationService
	authenticationService service.AuthenticationService
	tokenRotationService  service.TokenRotationService
	accountService        service.AccountService

	// Request validation
	validator *api.RequestValidator
}

// newApplication creates a new application instance with all dependencies
// initialized. It accepts core dependencies like configuration, logger, and
// database connection that must be established before application
// initialization.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.keys, err = auth.LoadKeyMaterial(cfg.Auth.PrivateKeyPath, cfg.Auth.PublicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load signing keys: %w", err)
	}

	app.codec, err = auth.NewAccessTokenCodec(app.keys, cfg.Auth.Issuer, cfg.Auth.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize access token codec: %w", err)
	}
	logger.Info("Access token codec initialized",
		"issuer", cfg.Auth.Issuer,
		"access_token_ttl", cfg.Auth.AccessTokenTTL)

	app.hasher = auth.NewBcryptHasher()

	// Initialize stores
	app.accountStore = postgres.NewPostgresAccountStore(db, logger)
	app.certificationTokens = postgres.NewPostgresCertificationTokenStore(db, logger)
	app.refreshTokens = postgres.NewPostgresRefreshTokenStore(db, logger)

	// Initialize the mail sender
	var mailer mail.Sender
	if cfg.Mail.DevMode {
		logger.Warn("Mail dev mode enabled, certification links go to the log")
		mailer = mail.NewDevLogSender(logger)
	} else {
		mailer, err = mail.NewSMTPSender(cfg.Mail)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize mail sender: %w", err)
		}
	}

	links := service.NewCertificationLinkBuilder(cfg.Mail.UIBaseURL)

	// Initialize services
	app.registrationService = service.NewRegistrationService(
		db,
		app.accountStore,
		app.certificationTokens,
		app.hasher,
		mailer,
		links,
		cfg.Auth.CertificationTokenTTL,
		nil,
		logger,
	)
	app.certificationService = service.NewCertificationService(
		app.accountStore,
		app.certificationTokens,
		mailer,
		links,
		cfg.Auth.CertificationTokenTTL,
		nil,
		logger,
	)
	app.authenticationService = service.NewAuthenticationService(
		app.accountStore,
		app.refreshTokens,
		app.hasher,
		app.codec,
		cfg.Auth.RefreshTokenTTL,
		nil,
		logger,
	)
	app.tokenRotationService = service.NewTokenRotationService(
		app.refreshTokens,
		app.codec,
		cfg.Auth.RefreshTokenTTL,
		nil,
		logger,
	)
	app.accountService = service.NewAccountService(app.accountStore, logger)

	app.validator, err = api.NewRequestValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize request validator: %w", err)
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
// It returns an error if the server fails to start or encounters problems.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
