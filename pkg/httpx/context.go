package httpx

import (
	"context"

	"github.com/aussiebroadwan/acrelay/pkg/jwtx"
)

type ctxKey string

const (
	CtxKeyToken  ctxKey = "token"
	CtxKeyClaims ctxKey = "claims"
)

// TokenFromContext returns the verified bearer token of the request.
func TokenFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(CtxKeyToken).(string)
	return v, ok && v != ""
}

// ClaimsFromContext returns the verified claims of the request.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	v, ok := ctx.Value(CtxKeyClaims).(jwtx.Claims)
	return v, ok
}

func contextWithAuth(ctx context.Context, token string, c jwtx.Claims) context.Context {
	ctx = context.WithValue(ctx, CtxKeyToken, token)
	ctx = context.WithValue(ctx, CtxKeyClaims, c)
	return ctx
}
