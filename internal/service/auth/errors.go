package auth

import "errors"

// Common authentication service errors
var (
	// ErrInvalidToken indicates the token format is invalid, the signature
	// doesn't verify against the public key, or the issuer doesn't match.
	ErrInvalidToken = errors.New("invalid access token")

	// ErrExpiredToken indicates the access token has expired.
	ErrExpiredToken = errors.New("access token has expired")

	// ErrTokenNotYetValid indicates the token is not yet valid (nbf claim in the future).
	ErrTokenNotYetValid = errors.New("access token not yet valid")

	// ErrMissingToken indicates a token was expected but not provided.
	ErrMissingToken = errors.New("access token is missing")
)
