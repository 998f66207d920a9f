package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aussiebroadwan/acrelay/pkg/slogx"
)

// okPayload is stored when the engine calls back with nothing but the token.
var okPayload = json.RawMessage(`{"message":"OK"}`)

// CallbackService accepts results posted by the workflow engine.
type CallbackService struct {
	Tokens   *TokenService
	Delivery *DeliveryManager
}

// Accept verifies the clientToken field of body, strips it and publishes the
// remaining fields as the token's result.
func (s *CallbackService) Accept(ctx context.Context, body map[string]json.RawMessage) error {
	l := slogx.FromContext(ctx)

	var token string
	raw, ok := body["clientToken"]
	if !ok || json.Unmarshal(raw, &token) != nil || token == "" {
		return fmt.Errorf("%w: clientToken required", ErrInvalidCallback)
	}

	if _, err := s.Tokens.Verify(token); err != nil {
		l.Warn("callback token rejected", "error", err, "token", slogx.TokenPrefix(token))
		return err
	}

	rest := make(map[string]json.RawMessage, len(body))
	for k, v := range body {
		if k != "clientToken" {
			rest[k] = v
		}
	}

	payload := okPayload
	if len(rest) > 0 {
		var err error
		if payload, err = json.Marshal(rest); err != nil {
			return fmt.Errorf("encode callback payload: %w", err)
		}
	}

	pushed, err := s.Delivery.Publish(ctx, token, payload)
	if err != nil {
		l.Error("failed to store callback result", "error", err)
		return fmt.Errorf("store callback result: %w", err)
	}

	keys := make([]string, 0, len(rest))
	for k := range rest {
		keys = append(keys, k)
	}
	l.Info("callback received", "token", slogx.TokenPrefix(token), "payload_keys", keys, "pushed", pushed)
	return nil
}
