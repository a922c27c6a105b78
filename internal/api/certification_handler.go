package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/phrazzld/habanero-api/internal/apperr"
	"github.com/phrazzld/habanero-api/internal/service"
)

// CertificationHandler handles certification token redemption and resend requests.
type CertificationHandler struct {
	certification service.CertificationService
}

// NewCertificationHandler creates a new CertificationHandler with the given dependencies.
func NewCertificationHandler(certification service.CertificationService) *CertificationHandler {
	return &CertificationHandler{
		certification: certification,
	}
}

// Redeem handles PUT /account/certification/{token}.
func (h *CertificationHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		RespondWithAppError(w, r, apperr.Validation().Add("token", "is required"))
		return
	}

	if err := h.certification.Redeem(r.Context(), token); err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Resend handles PUT /account/certification/token/{accountId}.
func (h *CertificationHandler) Resend(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")
	if accountID == "" {
		RespondWithAppError(w, r, apperr.Validation().Add("accountId", "is required"))
		return
	}

	if err := h.certification.Replace(r.Context(), accountID); err != nil {
		RespondWithAppError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
