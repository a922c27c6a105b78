package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/phrazzld/habanero-api/internal/platform/logger"
)

// AccessTokenCodec signs and verifies the bearer access token.
// It is stateless: verification checks only the signature, issuer, and time
// window, never the database.
type AccessTokenCodec interface {
	// Issue creates a signed access token for the given account, embedding
	// the current refresh token's value as the rft claim.
	Issue(ctx context.Context, accountID, refreshTokenValue string) (string, error)

	// Verify checks the token's signature, issuer, and time window and
	// returns the account ID from the subject claim. Returns
	// ErrExpiredToken, ErrTokenNotYetValid, or ErrInvalidToken on failure.
	Verify(ctx context.Context, tokenString string) (string, error)
}

// accessTokenClaims is the claim set carried by an access token: the
// registered iss/sub/nbf/iat/exp claims plus rft, the refresh token value
// the client uses to continue the session once exp passes.
type accessTokenClaims struct {
	RefreshToken string `json:"rft"`
	jwt.RegisteredClaims
}

// rsaAccessTokenCodec is an implementation of AccessTokenCodec using RSA-SHA256 signing.
type rsaAccessTokenCodec struct {
	keys     *KeyMaterial
	issuer   string
	lifetime time.Duration    // Access token lifetime, much shorter than the refresh TTL
	timeFunc func() time.Time // Injectable for testing
}

// Ensure rsaAccessTokenCodec implements AccessTokenCodec interface
var _ AccessTokenCodec = (*rsaAccessTokenCodec)(nil)

// NewAccessTokenCodec creates an AccessTokenCodec using RS256 signing with
// the given key material.
func NewAccessTokenCodec(keys *KeyMaterial, issuer string, lifetime time.Duration) (AccessTokenCodec, error) {
	if keys == nil {
		return nil, fmt.Errorf("key material is required")
	}
	if issuer == "" {
		return nil, fmt.Errorf("issuer is required")
	}

	return &rsaAccessTokenCodec{
		keys:     keys,
		issuer:   issuer,
		lifetime: lifetime,
		timeFunc: time.Now,
	}, nil
}

// Issue implements AccessTokenCodec.Issue.
func (c *rsaAccessTokenCodec) Issue(ctx context.Context, accountID, refreshTokenValue string) (string, error) {
	log := logger.FromContext(ctx)
	now := c.timeFunc()

	claims := accessTokenClaims{
		RefreshToken: refreshTokenValue,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   accountID,
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.lifetime)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signedToken, err := token.SignedString(c.keys.privateKey)
	if err != nil {
		log.Error("failed to sign access token",
			"error", err,
			"account_id", accountID,
			"signing_method", jwt.SigningMethodRS256.Name)
		return "", fmt.Errorf("failed to sign access token with RS256: %w", err)
	}

	return signedToken, nil
}

// Verify implements AccessTokenCodec.Verify.
func (c *rsaAccessTokenCodec) Verify(ctx context.Context, tokenString string) (string, error) {
	log := logger.FromContext(ctx)

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Name}),
		jwt.WithIssuer(c.issuer),
		jwt.WithTimeFunc(c.timeFunc),
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&accessTokenClaims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return c.keys.publicKey, nil
		},
		parserOpts...)

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			log.Debug("access token verification failed: token expired", "error", err)
			return "", ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			log.Debug("access token verification failed: token not yet valid", "error", err)
			return "", ErrTokenNotYetValid
		default:
			log.Debug("access token verification failed", "error", err)
			return "", ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*accessTokenClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		log.Debug("access token verification failed: invalid claims")
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
