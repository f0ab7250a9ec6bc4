package keyfetcher

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom_FetchPublicKey(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pubKeyBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	pubKeyPem := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubKeyBytes,
	})

	keyPath := filepath.Join(t.TempDir(), "public.pem")
	require.NoError(t, os.WriteFile(keyPath, pubKeyPem, 0o600))

	cases := map[string]struct {
		fetcher    From
		expectedPk *rsa.PublicKey
		expectedEr string
	}{
		"base64 value": {
			fetcher:    FromBase64(base64.StdEncoding.EncodeToString(pubKeyPem)),
			expectedPk: &privateKey.PublicKey,
		},
		"pem file": {
			fetcher:    FromFile(keyPath),
			expectedPk: &privateKey.PublicKey,
		},
		"empty value": {
			fetcher:    FromBase64(""),
			expectedEr: "key is not configured",
		},
		"empty path": {
			fetcher:    FromFile(""),
			expectedEr: "key is not configured",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			pk, err := tc.fetcher.FetchPublicKey()

			if tc.expectedEr != "" {
				assert.EqualError(t, err, tc.expectedEr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedPk, pk)
		})
	}
}

func TestFrom_FetchPrivateKey(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privKeyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	require.NoError(t, err)

	privKeyPem := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: privKeyBytes,
	})

	cases := map[string]struct {
		fetcher    From
		expectedPk *rsa.PrivateKey
		expectedEr string
	}{
		"base64 value": {
			fetcher:    FromBase64(base64.StdEncoding.EncodeToString(privKeyPem)),
			expectedPk: privateKey,
		},
		"empty value": {
			fetcher:    FromBase64(""),
			expectedEr: "key is not configured",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			pk, err := tc.fetcher.FetchPrivateKey()

			if tc.expectedEr != "" {
				assert.EqualError(t, err, tc.expectedEr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedPk.D, pk.D)
			assert.Equal(t, tc.expectedPk.PublicKey, pk.PublicKey)
		})
	}
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missing.pem")).FetchPublicKey()

	assert.ErrorContains(t, err, "read key file")
}
