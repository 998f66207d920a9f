package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/acrelay/internal/relay/service"
	"github.com/aussiebroadwan/acrelay/internal/relay/store"
	"github.com/aussiebroadwan/acrelay/pkg/httpx"
	"github.com/aussiebroadwan/acrelay/pkg/relaysdk"
)

// LivezHandler godoc
//
//	@Summary		Liveness Probe
//	@Description	Returns 200 OK while the process is serving, with uptime and version.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	relaysdk.HealthResponse	"status, uptime, version"
//	@Router			/livez [get].
func LivezHandler(startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, relaysdk.HealthResponse{
			Status:  "ok",
			Uptime:  time.Since(startTime).String(),
			Version: version,
		})
	}
}

// ReadyzHandler godoc
//
//	@Summary		Readiness Probe
//	@Description	Checks the result store, the token signer and the workflow engine configuration.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	relaysdk.HealthResponse	"status, uptime, version, checks"
//	@Failure		503	{object}	relaysdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	tokens *service.TokenService,
	convert *service.ConvertService,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &relaysdk.HealthChecks{Store: "ok", Signer: "ok", Engine: "ok"}
		status, code := "ok", http.StatusOK

		degrade := func(field *string, msg string) {
			*field = "error: " + msg
			status, code = "degraded", http.StatusServiceUnavailable
		}

		if err := st.Ping(r.Context()); err != nil {
			degrade(&checks.Store, err.Error())
		}
		if err := tokens.Ready(); err != nil {
			degrade(&checks.Signer, err.Error())
		}
		if convert == nil || convert.WebhookURL == "" {
			degrade(&checks.Engine, "N8N_WEBHOOK_URL not set")
		}

		httpx.WriteJSON(w, code, relaysdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
