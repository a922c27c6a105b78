package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/phrazzld/habanero-api/internal/api"
	apiMiddleware "github.com/phrazzld/habanero-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware. It accepts the application dependencies to create handlers
// and register routes.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	// Apply standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.CORS)
	r.Use(apiMiddleware.TraceMiddleware)

	// Create API handlers using the application's services
	accountHandler := api.NewAccountHandler(app.registrationService, app.accountService, app.validator)
	certificationHandler := api.NewCertificationHandler(app.certificationService)
	sessionHandler := api.NewSessionHandler(app.authenticationService, app.tokenRotationService)
	publicKeyHandler := api.NewPublicKeyHandler(app.keys)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.codec)

	// Public endpoints
	r.Post("/account", accountHandler.Register)
	r.Put("/account/certification/{token}", certificationHandler.Redeem)
	r.Put("/account/certification/token/{accountId}", certificationHandler.Resend)
	r.Post("/login", sessionHandler.Login)
	r.Put("/refresh", sessionHandler.Refresh)
	r.Get("/publicKey", publicKeyHandler.Get)

	// Protected endpoints
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.Authenticate)
		r.Get("/account", accountHandler.GetCurrent)
		r.Get("/account/{id}", accountHandler.GetByID)
	})

	// Health check endpoint
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("Failed to write health check response", "error", err)
		}
	})

	return r
}
