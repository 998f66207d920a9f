package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/aussiebroadwan/acrelay/internal/relay/service"
	"github.com/aussiebroadwan/acrelay/pkg/httpx"
	"github.com/aussiebroadwan/acrelay/pkg/slogx"
)

// DefaultKeepAlive is the comment interval on idle event streams.
const DefaultKeepAlive = 25 * time.Second

var eventsToken = httpx.QueryToken("token")

// EventsHandler serves GET /api/events. EventSource cannot set headers, so
// the token arrives as ?token= and errors are plain text.
type EventsHandler struct {
	TokenService *service.TokenService
	Delivery     *service.DeliveryManager
	KeepAlive    time.Duration
}

// ServeHTTP godoc
//
//	@Summary		Stream Result Events
//	@Description	Opens a server-sent event stream that emits exactly one data event carrying the callback
//	@Description	payload for the token, then closes. A result stored before the stream opened is sent
//	@Description	immediately. Idle streams receive ": keep-alive" comments.
//	@Tags			Conversion
//	@Produce		text/event-stream
//	@Param			token	query		string	true	"Client token"
//	@Success		200		{string}	string	"data: {...}"
//	@Failure		401		{string}	string	"token required, or invalid token"
//	@Failure		500		{string}	string	"JWT secret missing"
//	@Router			/api/events [get].
func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := slogx.FromContext(ctx)

	token := eventsToken(r)
	if token == "" {
		http.Error(w, "token required", http.StatusUnauthorized)
		return
	}

	if _, err := h.TokenService.Verify(token); err != nil {
		if errors.Is(err, service.ErrServerMisconfigured) {
			http.Error(w, "JWT secret missing", http.StatusInternalServerError)
			return
		}
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	sub, err := h.Delivery.Subscribe(ctx, token)
	if err != nil {
		l.Error("subscribe failed", "error", err)
		http.Error(w, "subscribe failed", http.StatusInternalServerError)
		return
	}
	defer h.Delivery.Unsubscribe(sub)

	rc := http.NewResponseController(w)
	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	_ = rc.Flush()

	// Long-lived; the server's write timeout must not cut the stream.
	_ = rc.SetWriteDeadline(time.Time{})

	keepAlive := h.KeepAlive
	if keepAlive <= 0 {
		keepAlive = DefaultKeepAlive
	}
	ticker := time.NewTicker(keepAlive)
	defer ticker.Stop()

	l.Debug("event stream opened", "token", slogx.TokenPrefix(token))

	for {
		select {
		case <-ctx.Done():
			l.Debug("event stream closed by client")
			return
		case <-ticker.C:
			if _, err := w.Write([]byte(": keep-alive\n\n")); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
		case payload := <-sub.C():
			var buf bytes.Buffer
			if err := json.Compact(&buf, payload); err != nil {
				buf.Reset()
				buf.Write(payload)
			}
			if _, err := w.Write([]byte("data: " + buf.String() + "\n\n")); err != nil {
				l.Warn("event write failed", "error", err)
				return
			}
			_ = rc.Flush()
			l.Debug("event delivered", "token", slogx.TokenPrefix(token))
			return
		}
	}
}
