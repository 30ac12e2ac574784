package jwtinfra

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/admin-session-gate/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeKeyPair generates a fresh RSA key pair into t.TempDir() and returns the config pointing at it.
func writeKeyPair(t *testing.T) (*config.Config, *rsa.PrivateKey) {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privPath := filepath.Join(dir, "private.pem")
	pubPath := filepath.Join(dir, "public.pem")

	privPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	require.NoError(t, os.WriteFile(privPath, privPEM, 0600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&privKey.PublicKey)
	require.NoError(t, err)
	pubPEM := pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes})
	require.NoError(t, os.WriteFile(pubPath, pubPEM, 0600))

	return &config.Config{
		JWTPrivateKeyPath: privPath,
		JWTPublicKeyPath:  pubPath,
		SessionTTL:        time.Hour,
	}, privKey
}

func TestProvider_SignVerify(t *testing.T) {
	cfg, _ := writeKeyPair(t)
	p, err := NewProvider(cfg)
	require.NoError(t, err)

	signed, err := p.Sign("01HSESSION")
	require.NoError(t, err)

	claims, err := p.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "01HSESSION", claims.SessionID)
	assert.Equal(t, time.Hour, p.Expiry())
}

func TestProvider_RejectsOtherKey(t *testing.T) {
	cfgA, _ := writeKeyPair(t)
	cfgB, _ := writeKeyPair(t)
	a, err := NewProvider(cfgA)
	require.NoError(t, err)
	b, err := NewProvider(cfgB)
	require.NoError(t, err)

	signed, err := a.Sign("s1")
	require.NoError(t, err)

	_, err = b.Verify(signed)
	assert.Error(t, err)
}

func TestProvider_RejectsExpired(t *testing.T) {
	cfg, privKey := writeKeyPair(t)
	p, err := NewProvider(cfg)
	require.NoError(t, err)

	claims := &Claims{
		SessionID: "s1",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)), // already expired
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privKey)
	require.NoError(t, err)

	_, err = p.Verify(signed)
	assert.Error(t, err)
}

func TestProvider_RejectsMissingSessionID(t *testing.T) {
	cfg, privKey := writeKeyPair(t)
	p, err := NewProvider(cfg)
	require.NoError(t, err)

	claims := &Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(privKey)
	require.NoError(t, err)

	_, err = p.Verify(signed)
	assert.Error(t, err)
}

func TestNewProvider_MissingKeyFile(t *testing.T) {
	_, err := NewProvider(&config.Config{JWTPrivateKeyPath: filepath.Join(t.TempDir(), "absent.pem")})
	assert.ErrorContains(t, err, "read private key")
}
