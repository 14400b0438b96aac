// Package signal is a small process-wide pub/sub hub. Subscriptions are
// keyed by stable tokens with reference counting so UI layers that
// re-execute their setup code can subscribe/unsubscribe symmetrically
// without churning the underlying registration.
package signal

import (
	"sync"

	"github.com/google/uuid"
)

// Token identifies one subscription.
type Token string

type subscription struct {
	fn   func(any)
	refs int
}

// Hub fans a published value out to every live subscriber synchronously,
// in no particular order.
type Hub struct {
	mu   sync.Mutex
	subs map[Token]*subscription
}

func NewHub() *Hub {
	return &Hub{subs: make(map[Token]*subscription)}
}

// Subscribe registers fn and returns its token with a reference count of 1.
func (h *Hub) Subscribe(fn func(any)) Token {
	h.mu.Lock()
	defer h.mu.Unlock()
	tok := Token(uuid.NewString())
	h.subs[tok] = &subscription{fn: fn, refs: 1}
	return tok
}

// Retain increments the reference count of an existing subscription.
// Retaining an unknown token is a no-op.
func (h *Hub) Retain(tok Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sub, ok := h.subs[tok]; ok {
		sub.refs++
	}
}

// Release decrements the reference count and removes the subscription when
// it reaches zero. Releasing an unknown token is a no-op.
func (h *Hub) Release(tok Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	sub, ok := h.subs[tok]
	if !ok {
		return
	}
	sub.refs--
	if sub.refs <= 0 {
		delete(h.subs, tok)
	}
}

// Publish delivers v to every current subscriber. Callbacks run on the
// caller's goroutine and must not block.
func (h *Hub) Publish(v any) {
	h.mu.Lock()
	fns := make([]func(any), 0, len(h.subs))
	for _, sub := range h.subs {
		fns = append(fns, sub.fn)
	}
	h.mu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
