package relaysdk

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Session hands out valid client tokens, fetching a new one through the
// prompter whenever the cache is empty.
type Session struct {
	client   *Client
	cache    TokenCache
	prompter SecretPrompter

	mu sync.Mutex
}

// NewSession creates a session. A nil cache keeps tokens in memory only.
func NewSession(client *Client, cache TokenCache, prompter SecretPrompter) *Session {
	if cache == nil {
		cache = &MemoryTokenCache{}
	}
	return &Session{client: client, cache: cache, prompter: prompter}
}

// GetValid returns the cached token if it is still trusted, otherwise asks
// for the secret, exchanges it and caches the result.
func (s *Session) GetValid(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.cache.Load(); ok {
		return rec.Token, nil
	}
	return s.issueLocked(ctx)
}

// Reauthenticate drops the cached token and fetches a fresh one.
func (s *Session) Reauthenticate(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache.Clear()
	return s.issueLocked(ctx)
}

// Invalidate drops the cached token.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Clear()
}

func (s *Session) issueLocked(ctx context.Context) (string, error) {
	if s.prompter == nil {
		return "", ErrNoSecretProvided
	}

	secret, err := s.prompter.PromptSecret(ctx)
	if err != nil {
		return "", fmt.Errorf("prompt for secret: %w", err)
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", ErrNoSecretProvided
	}

	tokenResp, err := s.client.IssueToken(ctx, secret)
	if err != nil {
		return "", err
	}

	return s.cache.Save(tokenResp.Token).Token, nil
}
