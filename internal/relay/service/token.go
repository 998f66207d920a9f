package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/acrelay/internal/relay/domain"
	"github.com/aussiebroadwan/acrelay/pkg/cryptox"
	"github.com/aussiebroadwan/acrelay/pkg/jwtx"
	"github.com/aussiebroadwan/acrelay/pkg/slogx"
)

// EngineAudience is the audience of tokens the relay presents to the
// workflow engine. Client tokens carry no audience.
const EngineAudience = "workflow-engine"

// TokenService exchanges the shared client secret for short-lived bearer
// tokens and verifies them on the way back in. It holds no per-token state.
type TokenService struct {
	Signer     *jwtx.HS256Signer
	Verifier   jwtx.Verifier
	SecretHash string // argon2id hash of the shared client secret
	Issuer     string
	TTL        time.Duration
	EngineTTL  time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *TokenService) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return jwtx.DefaultClientTokenTTL
}

func (s *TokenService) engineTTL() time.Duration {
	if s.EngineTTL > 0 {
		return s.EngineTTL
	}
	return jwtx.DefaultEngineTokenTTL
}

func (s *TokenService) signer() (*jwtx.HS256Signer, error) {
	if s.Signer == nil {
		return nil, misconfigured("JWT secret", jwtx.ErrNoKey)
	}
	if err := s.Signer.Validate(); err != nil {
		return nil, misconfigured("JWT secret", err)
	}
	return s.Signer, nil
}

// Issue trades the provided secret for a client token. Surrounding
// whitespace on the secret is ignored.
func (s *TokenService) Issue(ctx context.Context, providedSecret string) (domain.IssuedToken, error) {
	l := slogx.FromContext(ctx)

	signer, err := s.signer()
	if err != nil {
		l.Error("token issuance unavailable", "error", err)
		return domain.IssuedToken{}, err
	}
	if s.SecretHash == "" {
		l.Error("token issuance unavailable", "error", "client secret not configured")
		return domain.IssuedToken{}, misconfigured("CLIENT_SECRET", nil)
	}

	providedSecret = strings.TrimSpace(providedSecret)
	if providedSecret == "" {
		return domain.IssuedToken{}, fmt.Errorf("%w: no client secret provided", ErrUnauthorized)
	}

	if err := cryptox.VerifySecret(providedSecret, s.SecretHash); err != nil {
		if errors.Is(err, cryptox.ErrInvalidHash) {
			l.Error("client secret hash is unusable", "error", err)
			return domain.IssuedToken{}, misconfigured("CLIENT_SECRET", err)
		}
		l.Info("client secret rejected")
		return domain.IssuedToken{}, fmt.Errorf("%w: invalid client secret", ErrUnauthorized)
	}

	ttl := s.ttl()
	token, err := signer.Sign(jwtx.NewClaims(s.Issuer, nil, ttl, s.now()))
	if err != nil {
		return domain.IssuedToken{}, fmt.Errorf("sign client token: %w", err)
	}

	l.Info("client token issued", slog.String("token", slogx.TokenPrefix(token)), slog.Duration("ttl", ttl))
	return domain.IssuedToken{Token: token, ExpiresIn: ttl}, nil
}

// Verify checks a client token. Engine tokens are refused so they cannot be
// replayed as client credentials.
func (s *TokenService) Verify(raw string) (jwtx.Claims, error) {
	if s.Verifier == nil {
		return jwtx.Claims{}, misconfigured("JWT secret", jwtx.ErrNoKey)
	}

	claims, err := s.Verifier.Verify(raw)
	if err != nil {
		if errors.Is(err, jwtx.ErrNoKey) {
			return jwtx.Claims{}, misconfigured("JWT secret", err)
		}
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	if slices.Contains(claims.Audience, EngineAudience) {
		return jwtx.Claims{}, fmt.Errorf("%w: %w", ErrUnauthorized, jwtx.ErrAudience)
	}
	return claims, nil
}

// SignEngineToken mints the bearer token sent with each forwarded job.
func (s *TokenService) SignEngineToken() (string, error) {
	signer, err := s.signer()
	if err != nil {
		return "", err
	}
	return signer.Sign(jwtx.NewClaims(s.Issuer, []string{EngineAudience}, s.engineTTL(), s.now()))
}

// Ready reports whether tokens can currently be issued.
func (s *TokenService) Ready() error {
	if _, err := s.signer(); err != nil {
		return err
	}
	if s.SecretHash == "" {
		return misconfigured("CLIENT_SECRET", nil)
	}
	return nil
}
