package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/acrelay/internal/relay/service"
	"github.com/aussiebroadwan/acrelay/internal/relay/store"
	"github.com/aussiebroadwan/acrelay/pkg/httpx"
	"github.com/aussiebroadwan/acrelay/pkg/relaysdk"
	"github.com/aussiebroadwan/acrelay/pkg/slogx"
)

// ResultHandler serves GET /api/result, the polling path.
type ResultHandler struct {
	Delivery *service.DeliveryManager
}

// ServeHTTP godoc
//
//	@Summary		Poll For Result
//	@Description	Returns the latest callback payload stored for the caller's token. Reading does not consume it.
//	@Tags			Conversion
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	map[string]any				"callback payload"
//	@Failure		401	{object}	relaysdk.ErrorResponse		"missing or invalid token"
//	@Failure		404	{object}	relaysdk.PendingResponse	"no result yet"
//	@Router			/api/result [get].
func (h *ResultHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := httpx.TokenFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
		return
	}

	payload, err := h.Delivery.Lookup(ctx, token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteJSON(w, http.StatusNotFound, relaysdk.PendingResponse{Status: "pending"})
			return
		}
		slogx.FromContext(ctx).Error("result lookup failed", "error", err)
		relaysdk.ErrInternal.WriteError(w)
		return
	}

	slogx.FromContext(ctx).Debug("result served", "token", slogx.TokenPrefix(token))
	httpx.WriteJSON(w, http.StatusOK, payload)
}
