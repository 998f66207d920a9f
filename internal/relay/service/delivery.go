package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/aussiebroadwan/acrelay/internal/relay/domain"
	"github.com/aussiebroadwan/acrelay/internal/relay/store"
	"github.com/aussiebroadwan/acrelay/pkg/slogx"
)

// Subscription is one open push channel waiting for a token's result. C
// yields the payload at most once and is never closed.
type Subscription struct {
	token string
	ch    chan json.RawMessage
}

func (s *Subscription) Token() string             { return s.token }
func (s *Subscription) C() <-chan json.RawMessage { return s.ch }

// DeliveryManager couples the results store with the per-token subscriber
// sets. Both Subscribe and Publish run under one lock, so a result is either
// seen by Subscribe or handed to every subscription registered before it.
type DeliveryManager struct {
	Store store.Store

	mu   sync.Mutex
	subs map[string]map[*Subscription]struct{}
}

func NewDeliveryManager(s store.Store) *DeliveryManager {
	return &DeliveryManager{
		Store: s,
		subs:  make(map[string]map[*Subscription]struct{}),
	}
}

// Subscribe returns a subscription for token. When a result already exists
// the subscription is resolved on return and nothing is registered.
func (m *DeliveryManager) Subscribe(ctx context.Context, token string) (*Subscription, error) {
	sub := &Subscription{token: token, ch: make(chan json.RawMessage, 1)}

	m.mu.Lock()
	defer m.mu.Unlock()

	res, err := m.Store.Results().GetResult(ctx, token)
	switch {
	case err == nil:
		sub.ch <- res.Payload
		return sub, nil
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	set, ok := m.subs[token]
	if !ok {
		set = make(map[*Subscription]struct{})
		m.subs[token] = set
	}
	set[sub] = struct{}{}
	return sub, nil
}

// Publish stores payload as the token's result and hands it to every open
// subscription, then forgets them. It returns how many were notified.
func (m *DeliveryManager) Publish(ctx context.Context, token string, payload json.RawMessage) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.Store.Results().PutResult(ctx, domain.Result{Token: token, Payload: payload}); err != nil {
		return 0, err
	}

	set := m.subs[token]
	delete(m.subs, token)
	for sub := range set {
		// Buffered and fresh; a subscription is only ever sent to once.
		sub.ch <- payload
	}

	if len(set) > 0 {
		slogx.FromContext(ctx).Debug("result pushed", "token", slogx.TokenPrefix(token), "subscribers", len(set))
	}
	return len(set), nil
}

// Reset forgets the token's stored result so a new job starts clean. Open
// subscriptions stay registered and receive the next Publish.
func (m *DeliveryManager) Reset(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Store.Results().DeleteResult(ctx, token)
}

// Unsubscribe drops sub from its token's set. Safe to call more than once
// and after the subscription was resolved.
func (m *DeliveryManager) Unsubscribe(sub *Subscription) {
	if sub == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.subs[sub.token]
	if !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(m.subs, sub.token)
	}
}

// SubscriberCount reports the open subscriptions waiting on token.
func (m *DeliveryManager) SubscriberCount(token string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs[token])
}

// Lookup returns the stored result for token without consuming it.
func (m *DeliveryManager) Lookup(ctx context.Context, token string) (json.RawMessage, error) {
	res, err := m.Store.Results().GetResult(ctx, token)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}
