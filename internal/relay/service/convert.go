package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/acrelay/internal/relay/domain"
	"github.com/aussiebroadwan/acrelay/pkg/idx"
	"github.com/aussiebroadwan/acrelay/pkg/slogx"
)

// maxEngineResponse caps how much of an engine reply is buffered.
const maxEngineResponse = 4 << 20

// ConvertService forwards conversion jobs to the workflow engine webhook and
// relays its synchronous reply. The engine reports the final result later
// through the callback endpoint, keyed by the client token. When Delivery is
// set, the token's previous result is dropped before each job goes out.
type ConvertService struct {
	Tokens     *TokenService
	Delivery   *DeliveryManager
	WebhookURL string
	Client     *http.Client
	Timeout    time.Duration
}

func (s *ConvertService) client() *http.Client {
	if s.Client != nil {
		return s.Client
	}
	return http.DefaultClient
}

// Forward validates job, hands it to the engine and returns the engine's
// reply as a JSON object. Non-JSON replies become {"message", "success"}.
func (s *ConvertService) Forward(
	ctx context.Context,
	job domain.Job,
	clientToken, callbackURL string,
) (json.RawMessage, error) {
	if strings.TrimSpace(job.AcceptanceCriteria) == "" {
		return nil, fmt.Errorf("%w: acceptance criteria required", ErrInvalidJob)
	}
	if s.WebhookURL == "" {
		return nil, misconfigured("N8N_WEBHOOK_URL", nil)
	}
	if job.ID == "" {
		job.ID = idx.New().String()
	}

	ctx = slogx.With(ctx, slog.String("job_id", job.ID))
	l := slogx.FromContext(ctx)

	engineToken, err := s.Tokens.SignEngineToken()
	if err != nil {
		return nil, err
	}

	if s.Delivery != nil {
		if err := s.Delivery.Reset(ctx, clientToken); err != nil {
			return nil, fmt.Errorf("reset previous result: %w", err)
		}
	}

	body, err := json.Marshal(domain.EngineRequest{
		AcceptanceCriteria: job.AcceptanceCriteria,
		AIAgent:            job.AIAgent,
		OutputFormat:       job.OutputFormat,
		CallbackURL:        callbackURL,
		ClientToken:        clientToken,
	})
	if err != nil {
		return nil, fmt.Errorf("encode engine request: %w", err)
	}

	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return nil, misconfigured("N8N_WEBHOOK_URL", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+engineToken)
	req.Header.Set("X-Job-ID", job.ID)

	started := time.Now()
	resp, err := s.client().Do(req)
	if err != nil {
		l.Error("workflow engine unreachable", "error", err)
		return nil, &UpstreamError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxEngineResponse))
	if err != nil {
		l.Error("failed to read engine response", "error", err)
		return nil, &UpstreamError{Err: err}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	data := normalizeEngineReply(resp.Header.Get("Content-Type"), raw, ok)

	l.Info("job forwarded",
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(started)),
		slog.String("agent", job.AIAgent),
		slog.String("format", job.OutputFormat),
		slog.String("token", slogx.TokenPrefix(clientToken)),
	)

	if !ok {
		return nil, &UpstreamError{Status: resp.StatusCode, Message: engineMessage(data, resp.Status)}
	}
	return data, nil
}

// normalizeEngineReply keeps JSON object bodies verbatim and wraps anything
// else as {"message": <text>, "success": ok}.
func normalizeEngineReply(contentType string, raw []byte, ok bool) json.RawMessage {
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if strings.HasSuffix(mediaType, "json") {
		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '{' && json.Valid(trimmed) {
			return json.RawMessage(trimmed)
		}
	}

	wrapped, _ := json.Marshal(struct {
		Message string `json:"message"`
		Success bool   `json:"success"`
	}{Message: string(raw), Success: ok})
	return wrapped
}

// engineMessage digs a human readable reason out of a failed engine reply.
func engineMessage(data json.RawMessage, fallback string) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(data, &body)
	switch {
	case body.Error != "":
		return body.Error
	case strings.TrimSpace(body.Message) != "":
		return strings.TrimSpace(body.Message)
	default:
		return fallback
	}
}
