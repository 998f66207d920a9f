package httpx

import (
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/acrelay/pkg/jwtx"
	"github.com/aussiebroadwan/acrelay/pkg/slogx"
)

// TokenExtractor pulls a raw bearer token out of a request, or returns "".
type TokenExtractor func(*http.Request) string

// BearerToken reads "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer "))
}

// HeaderToken reads a token from a custom header such as X-Client-Token.
func HeaderToken(name string) TokenExtractor {
	return func(r *http.Request) string {
		return strings.TrimSpace(r.Header.Get(name))
	}
}

// QueryToken reads a token from a query parameter. EventSource cannot set
// headers, so push subscriptions authenticate this way.
func QueryToken(name string) TokenExtractor {
	return func(r *http.Request) string {
		return strings.TrimSpace(r.URL.Query().Get(name))
	}
}

// FirstToken tries each extractor in order.
func FirstToken(extractors ...TokenExtractor) TokenExtractor {
	return func(r *http.Request) string {
		for _, extract := range extractors {
			if tok := extract(r); tok != "" {
				return tok
			}
		}
		return ""
	}
}

// AuthnMiddleware verifies the request token and injects it, with its claims,
// into the request context. Failures are answered with a JSON {error} body.
func AuthnMiddleware(v jwtx.Verifier, extract TokenExtractor) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			raw := extract(r)
			if raw == "" {
				writeBearerError(w, "Unauthorized: No token provided")
				return
			}

			claims, err := v.Verify(raw)
			if err != nil {
				if errors.Is(err, jwtx.ErrNoKey) {
					log.Error("token verification unavailable", "err", err)
					WriteError(w, http.StatusInternalServerError, "Server configuration error: JWT secret not set")
					return
				}
				log.Warn("jwt verify failed", "err", err, "token", slogx.TokenPrefix(raw))
				writeBearerError(w, "Unauthorized: Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(contextWithAuth(ctx, raw, claims)))
		})
	}
}

// RFC 6750-style challenge plus the JSON envelope browsers already parse.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteError(w, http.StatusUnauthorized, desc)
}
