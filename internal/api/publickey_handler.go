package api

import (
	"net/http"

	"github.com/phrazzld/habanero-api/internal/api/shared"
	"github.com/phrazzld/habanero-api/internal/service/auth"
)

// PublicKeyHandler serves the access-token verification key.
type PublicKeyHandler struct {
	keys *auth.KeyMaterial
}

// NewPublicKeyHandler creates a new PublicKeyHandler with the given key material.
func NewPublicKeyHandler(keys *auth.KeyMaterial) *PublicKeyHandler {
	return &PublicKeyHandler{
		keys: keys,
	}
}

// Get handles GET /publicKey.
func (h *PublicKeyHandler) Get(w http.ResponseWriter, r *http.Request) {
	encoded, err := h.keys.PublicKeyBase64()
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, http.StatusInternalServerError, "Internal server error", err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, PublicKeyResponse{PublicKey: encoded})
}
