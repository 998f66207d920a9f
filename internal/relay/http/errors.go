package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/acrelay/internal/relay/service"
	"github.com/aussiebroadwan/acrelay/pkg/httpx"
	"github.com/aussiebroadwan/acrelay/pkg/relaysdk"
)

// writeMisconfigured answers 500 naming the missing setting, as operators
// read these straight from the browser console.
func writeMisconfigured(w http.ResponseWriter, err error) bool {
	var me *service.MisconfiguredError
	if !errors.As(err, &me) {
		if errors.Is(err, service.ErrServerMisconfigured) {
			httpx.WriteError(w, http.StatusInternalServerError, "Server configuration error")
			return true
		}
		return false
	}
	httpx.WriteError(w, http.StatusInternalServerError, "Server configuration error: "+me.Setting+" not set")
	return true
}

// writeUpstream answers 502 with the engine's own message when it gave one.
func writeUpstream(w http.ResponseWriter, err error) bool {
	var ue *service.UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	if ue.Message == "" {
		relaysdk.ErrUpstream.WriteError(w)
		return true
	}
	httpx.WriteError(w, http.StatusBadGateway, ue.Message)
	return true
}
