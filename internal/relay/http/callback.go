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

// CallbackHandler serves POST /api/callback for the workflow engine.
type CallbackHandler struct {
	CallbackService *service.CallbackService
}

// ServeHTTP godoc
//
//	@Summary		Workflow Callback
//	@Description	Receives the final result from the workflow engine. The clientToken field identifies the
//	@Description	job; the remaining fields are stored and pushed to any open event stream for that token.
//	@Tags			Callback
//	@Accept			json
//	@Produce		json
//	@Param			request	body		map[string]any			true	"Result fields plus clientToken"
//	@Success		200		{object}	relaysdk.OKResponse		"stored"
//	@Failure		400		{object}	relaysdk.ErrorResponse	"clientToken required or invalid body"
//	@Failure		401		{object}	relaysdk.ErrorResponse	"invalid clientToken"
//	@Failure		500		{object}	relaysdk.ErrorResponse	"callback failed"
//	@Router			/api/callback [post].
func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body map[string]json.RawMessage
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<20)).Decode(&body); err != nil || body == nil {
		relaysdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	if err := h.CallbackService.Accept(ctx, body); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCallback):
			relaysdk.ErrClientTokenRequired.WriteError(w)
		case errors.Is(err, service.ErrUnauthorized):
			relaysdk.ErrInvalidClientToken.WriteError(w)
		case writeMisconfigured(w, err):
		default:
			slogx.FromContext(ctx).Error("callback failed", "error", err)
			relaysdk.ErrCallbackFailed.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, relaysdk.OKResponse{OK: true})
}
