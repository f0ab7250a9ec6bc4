package keyfetcher

import (
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

var ErrKeyNotConfigured = errors.New("key is not configured")

type PublicKeyFetcher interface {
	FetchPublicKey() (*rsa.PublicKey, error)
}

type PrivateKeyFetcher interface {
	FetchPrivateKey() (*rsa.PrivateKey, error)
}

// From loads PEM encoded key material.
type From func() ([]byte, error)

// FetchPublicKey parses the loaded key as an RSA public key.
func (f From) FetchPublicKey() (*rsa.PublicKey, error) {
	keyBytes, err := f()
	if err != nil {
		return nil, err
	}

	return jwt.ParseRSAPublicKeyFromPEM(keyBytes)
}

// FetchPrivateKey parses the loaded key as an RSA private key.
func (f From) FetchPrivateKey() (*rsa.PrivateKey, error) {
	keyBytes, err := f()
	if err != nil {
		return nil, err
	}

	return jwt.ParseRSAPrivateKeyFromPEM(keyBytes)
}

// FromBase64 decodes a Base64 encoded PEM value taken from configuration.
func FromBase64(value string) From {
	return func() ([]byte, error) {
		if value == "" {
			return nil, ErrKeyNotConfigured
		}

		return base64.StdEncoding.DecodeString(value)
	}
}

// FromFile reads a PEM file.
func FromFile(path string) From {
	return func() ([]byte, error) {
		if path == "" {
			return nil, ErrKeyNotConfigured
		}

		keyBytes, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}

		return keyBytes, nil
	}
}
