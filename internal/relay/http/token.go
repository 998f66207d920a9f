package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/acrelay/internal/relay/service"
	"github.com/aussiebroadwan/acrelay/pkg/httpx"
	"github.com/aussiebroadwan/acrelay/pkg/relaysdk"
	"github.com/aussiebroadwan/acrelay/pkg/slogx"
)

// TokenHandler serves POST /api/token.
type TokenHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Issue Client Token
//	@Description	Exchanges the shared client secret for a short-lived bearer token (15 minutes).
//	@Description	The secret is read from the X-Client-Secret header, falling back to the JSON body.
//	@Tags			Token
//	@Accept			json
//	@Produce		json
//	@Param			X-Client-Secret	header		string					false	"Shared client secret"
//	@Param			request			body		relaysdk.TokenRequest	false	"Shared client secret"
//	@Success		200				{object}	relaysdk.TokenResponse	"token, expiresIn"
//	@Failure		401				{object}	relaysdk.ErrorResponse	"secret missing or wrong"
//	@Failure		429				{object}	relaysdk.ErrorResponse	"rate limited"
//	@Failure		500				{object}	relaysdk.ErrorResponse	"server misconfigured"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Router			/api/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	secret := r.Header.Get("X-Client-Secret")
	if secret == "" && r.Body != nil {
		var req relaysdk.TokenRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err == nil {
			secret = req.ClientSecret
		}
	}

	issued, err := h.TokenService.Issue(r.Context(), secret)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnauthorized):
			relaysdk.ErrInvalidClientSecret.WriteError(w)
		case writeMisconfigured(w, err):
		default:
			slogx.FromContext(r.Context()).Error("token issuance failed", "error", err)
			relaysdk.ErrInternal.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, relaysdk.TokenResponse{
		Token:     issued.Token,
		ExpiresIn: int(issued.ExpiresInSeconds()),
	})
}
