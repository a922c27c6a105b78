package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/habanero-api/internal/api/middleware"
	"github.com/phrazzld/habanero-api/internal/api/shared"
	"github.com/phrazzld/habanero-api/internal/service"
)

// AccountHandler handles account registration and lookup requests.
type AccountHandler struct {
	registration service.RegistrationService
	accounts     service.AccountService
	validator    *RequestValidator
}

// NewAccountHandler creates a new AccountHandler with the given dependencies.
func NewAccountHandler(
	registration service.RegistrationService,
	accounts service.AccountService,
	validator *RequestValidator,
) *AccountHandler {
	return &AccountHandler{
		registration: registration,
		accounts:     accounts,
		validator:    validator,
	}
}

// Register handles POST /account.
func (h *AccountHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterAccountRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.ValidateRegisterAccount(&req); err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	summary, err := h.registration.Register(r.Context(), req.Email, req.ScreenName, req.Password)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AccountResponse{
		ID:         summary.ID,
		ScreenName: summary.ScreenName,
	})
}

// GetCurrent handles GET /account for the authenticated account.
func (h *AccountHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	accountID, ok := middleware.GetAccountID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	h.respondWithAccount(w, r, accountID)
}

// GetByID handles GET /account/{id}.
func (h *AccountHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	h.respondWithAccount(w, r, chi.URLParam(r, "id"))
}

func (h *AccountHandler) respondWithAccount(w http.ResponseWriter, r *http.Request, accountID string) {
	summary, err := h.accounts.Get(r.Context(), accountID)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AccountResponse{
		ID:         summary.ID,
		ScreenName: summary.ScreenName,
	})
}
