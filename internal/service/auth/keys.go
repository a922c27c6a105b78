package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// KeyMaterial holds the RSA key pair used to sign and verify access tokens.
// It is immutable after construction; the private key never leaves this
// package, while the public key is exposed read-only so any party can verify
// tokens independently.
type KeyMaterial struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
}

// LoadKeyMaterial reads a PEM-encoded RSA private key and public key from
// the given paths. The private key may be PKCS#1 or PKCS#8, the public key
// PKIX or PKCS#1, matching what openssl genrsa/rsa emit.
func LoadKeyMaterial(privateKeyPath, publicKeyPath string) (*KeyMaterial, error) {
	privatePEM, err := os.ReadFile(privateKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM(privatePEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	publicPEM, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}

	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}

	return &KeyMaterial{privateKey: privateKey, publicKey: publicKey}, nil
}

// NewKeyMaterial wraps an in-memory key pair. Used by tests that generate
// throwaway keys instead of reading PEM files.
func NewKeyMaterial(privateKey *rsa.PrivateKey) *KeyMaterial {
	return &KeyMaterial{privateKey: privateKey, publicKey: &privateKey.PublicKey}
}

// PublicKey returns the public half of the key pair.
func (k *KeyMaterial) PublicKey() *rsa.PublicKey {
	return k.publicKey
}

// PublicKeyBase64 returns the public key as base64-encoded PKIX DER, the
// representation served to external verifiers.
func (k *KeyMaterial) PublicKeyBase64() (string, error) {
	der, err := x509.MarshalPKIXPublicKey(k.publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}
