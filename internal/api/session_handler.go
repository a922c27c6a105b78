package api

import (
	"net/http"

	"github.com/phrazzld/habanero-api/internal/api/shared"
	"github.com/phrazzld/habanero-api/internal/apperr"
	"github.com/phrazzld/habanero-api/internal/service"
)

// SessionHandler handles login and refresh-token rotation requests.
type SessionHandler struct {
	authentication service.AuthenticationService
	rotation       service.TokenRotationService
}

// NewSessionHandler creates a new SessionHandler with the given dependencies.
func NewSessionHandler(
	authentication service.AuthenticationService,
	rotation service.TokenRotationService,
) *SessionHandler {
	return &SessionHandler{
		authentication: authentication,
		rotation:       rotation,
	}
}

// Login handles POST /login.
func (h *SessionHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	token, err := h.authentication.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{Token: token})
}

// Refresh handles PUT /refresh. The refresh token travels as the `token`
// query parameter, never in a body.
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	refreshToken := r.URL.Query().Get("token")
	if refreshToken == "" {
		RespondWithAppError(w, r, apperr.Validation().Add("token", "is required"))
		return
	}

	token, err := h.rotation.Refresh(r.Context(), refreshToken)
	if err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, TokenResponse{Token: token})
}
