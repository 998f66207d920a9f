package service

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/acrelay/internal/relay/store/drivers/memory"
	"github.com/aussiebroadwan/acrelay/pkg/cryptox"
	"github.com/aussiebroadwan/acrelay/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer = "n8n-converter-backend"
	testSecret = "s3cr3t"
)

var testJWTSecret = []byte("0123456789abcdef0123456789abcdef")

func newTokenService(t *testing.T) *TokenService {
	t.Helper()

	hash, err := cryptox.HashSecret(testSecret)
	require.NoError(t, err)

	return &TokenService{
		Signer:     jwtx.NewSignerHS256(testJWTSecret),
		Verifier:   jwtx.NewVerifierHS256(testJWTSecret, jwtx.VerifyOptions{Issuer: testIssuer, Leeway: time.Second}),
		SecretHash: hash,
		Issuer:     testIssuer,
	}
}

func issueToken(t *testing.T, s *TokenService) string {
	t.Helper()

	tok, err := s.Issue(t.Context(), testSecret)
	require.NoError(t, err)
	return tok.Token
}

func newDelivery() *DeliveryManager {
	return NewDeliveryManager(memory.NewStore())
}
