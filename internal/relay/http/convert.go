package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/acrelay/internal/relay/domain"
	"github.com/aussiebroadwan/acrelay/internal/relay/service"
	"github.com/aussiebroadwan/acrelay/pkg/httpx"
	"github.com/aussiebroadwan/acrelay/pkg/relaysdk"
	"github.com/aussiebroadwan/acrelay/pkg/slogx"
)

// CallbackPath is where the workflow engine reports results.
const CallbackPath = "/api/callback"

// convertBody accepts both the long and the short field names.
type convertBody struct {
	AcceptanceCriteria string `json:"acceptanceCriteria"`
	Criteria           string `json:"criteria"`
	AIAgent            string `json:"aiAgent"`
	Agent              string `json:"agent"`
	OutputFormat       string `json:"outputFormat"`
}

func (b convertBody) job() domain.Job {
	return domain.Job{
		AcceptanceCriteria: firstNonEmpty(b.AcceptanceCriteria, b.Criteria),
		AIAgent:            firstNonEmpty(b.AIAgent, b.Agent),
		OutputFormat:       b.OutputFormat,
	}
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// ConvertHandler serves POST /api/convert.
type ConvertHandler struct {
	ConvertService *service.ConvertService

	// PublicBaseURL overrides the callback base derived from the request.
	PublicBaseURL string
}

// ServeHTTP godoc
//
//	@Summary		Submit Conversion Job
//	@Description	Forwards the acceptance criteria to the workflow engine together with the caller's token and
//	@Description	the callback URL. Returns the engine's immediate reply; non-JSON replies are wrapped as
//	@Description	{"message", "success"}. The final result arrives later through /api/events or /api/result.
//	@Tags			Conversion
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		relaysdk.ConvertRequest	true	"Conversion job"
//	@Success		200		{object}	map[string]any			"engine reply"
//	@Failure		400		{object}	relaysdk.ErrorResponse	"invalid body"
//	@Failure		401		{object}	relaysdk.ErrorResponse	"missing or invalid token"
//	@Failure		500		{object}	relaysdk.ErrorResponse	"server misconfigured"
//	@Failure		502		{object}	relaysdk.ErrorResponse	"workflow engine failed"
//	@Router			/api/convert [post].
func (h *ConvertHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	token, ok := httpx.TokenFromContext(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "Unauthorized: No token provided")
		return
	}

	var body convertBody
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&body); err != nil {
		relaysdk.ErrInvalidJSONBody.WriteError(w)
		return
	}

	reply, err := h.ConvertService.Forward(ctx, body.job(), token, h.callbackURL(r))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidJob):
			relaysdk.ErrCriteriaRequired.WriteError(w)
		case writeMisconfigured(w, err):
		case writeUpstream(w, err):
		default:
			slogx.FromContext(ctx).Error("convert failed", "error", err)
			relaysdk.ErrInternal.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, reply)
}

// callbackURL is PublicBaseURL, or the scheme and host the request came in
// on, plus CallbackPath.
func (h *ConvertHandler) callbackURL(r *http.Request) string {
	if h.PublicBaseURL != "" {
		return strings.TrimSuffix(h.PublicBaseURL, "/") + CallbackPath
	}

	proto := r.Header.Get("X-Forwarded-Proto")
	if i := strings.IndexByte(proto, ','); i >= 0 {
		proto = proto[:i]
	}
	proto = strings.TrimSpace(proto)
	if proto == "" {
		proto = "https"
	}
	return proto + "://" + r.Host + CallbackPath
}
