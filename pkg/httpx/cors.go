package httpx

import (
	"net/http"
	"slices"
	"strings"
)

// DefaultAllowedHeaders are the request headers browsers may send cross-origin.
var DefaultAllowedHeaders = []string{
	"Authorization",
	"Content-Type",
	"X-Client-Secret",
	"X-Client-Token",
	"X-Request-ID",
}

// CORSMiddleware allows requests without an Origin (same-origin, curl, the
// workflow engine) and requests from the listed origins. Anything else is
// refused with 403 before reaching the handler.
func CORSMiddleware(allowed []string) Middleware {
	normalized := make([]string, 0, len(allowed))
	for _, o := range allowed {
		if o = strings.TrimRight(strings.TrimSpace(o), "/"); o != "" {
			normalized = append(normalized, o)
		}
	}
	allowHeaders := strings.Join(DefaultAllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			if !slices.Contains(normalized, "*") && !slices.Contains(normalized, origin) {
				WriteError(w, http.StatusForbidden, "Not allowed by CORS")
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
				w.Header().Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
