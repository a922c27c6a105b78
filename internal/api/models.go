package api

// Common request/response structures

// RegisterAccountRequest defines the payload for the account registration endpoint.
type RegisterAccountRequest struct {
	Email      string `json:"email"`
	ScreenName string `json:"screen_name"`
	Password   string `json:"password"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountResponse is the public projection of an account.
type AccountResponse struct {
	ID         string `json:"id"`
	ScreenName string `json:"screen_name"`
}

// TokenResponse carries a freshly minted access token. The embedded rft
// claim holds the refresh token for session continuation.
type TokenResponse struct {
	Token string `json:"token"`
}

// PublicKeyResponse carries the verification key as base64-encoded PKIX DER.
type PublicKeyResponse struct {
	PublicKey string `json:"public_key"`
}
