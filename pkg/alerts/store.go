// Package alerts holds the capped alert history and the toast notification
// engine that decides which alerts surface, merges repeats and expires them.
package alerts

import (
	"sync"
	"time"

	"netwatch-client/pkg/model"
	"netwatch-client/pkg/signal"
)

// DefaultStoreCapacity caps the in-memory alert history.
const DefaultStoreCapacity = 100

// Store is a capped, insertion-ordered (most-recent-first) alert list with
// acknowledge semantics. Duplicate ids are dropped on ingest; the oldest
// record is evicted at capacity.
type Store struct {
	mu     sync.RWMutex
	cap    int
	alerts []model.Alert
	ids    map[string]struct{}
	stats  *model.AlertStats
	hub    *signal.Hub
}

func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &Store{
		cap: capacity,
		ids: make(map[string]struct{}),
		hub: signal.NewHub(),
	}
}

// Ingest prepends a new alert. An alert whose id is already present is a
// no-op; the list is truncated to capacity afterwards.
func (s *Store) Ingest(a model.Alert) {
	s.mu.Lock()
	if _, dup := s.ids[a.ID]; dup {
		s.mu.Unlock()
		return
	}
	s.ids[a.ID] = struct{}{}
	s.alerts = append([]model.Alert{a}, s.alerts...)
	if len(s.alerts) > s.cap {
		for _, evicted := range s.alerts[s.cap:] {
			delete(s.ids, evicted.ID)
		}
		s.alerts = s.alerts[:s.cap]
	}
	s.mu.Unlock()
	s.hub.Publish(nil)
}

// SeedFromList initializes the store from the alert-list REST response.
// The same dedupe and capacity rules as Ingest apply.
func (s *Store) SeedFromList(list []model.Alert) {
	for _, a := range list {
		s.Ingest(a)
	}
}

// Acknowledge flips an alert acknowledged optimistically, before the
// server confirms. Unknown ids and repeat calls are no-ops; the store
// never reports an error for them.
func (s *Store) Acknowledge(id string) {
	s.mu.Lock()
	changed := false
	for i := range s.alerts {
		if s.alerts[i].ID != id {
			continue
		}
		if s.alerts[i].Acknowledged {
			break
		}
		now := time.Now()
		s.alerts[i].Acknowledged = true
		s.alerts[i].AcknowledgedAt = &now
		s.alerts[i].AckState = model.AckPending
		changed = true
		break
	}
	s.mu.Unlock()
	if changed {
		s.hub.Publish(nil)
	}
}

// ConfirmAck applies the server's acknowledge echo, promoting a pending
// acknowledge (or applying one that originated elsewhere).
func (s *Store) ConfirmAck(id string) {
	s.mu.Lock()
	changed := false
	for i := range s.alerts {
		if s.alerts[i].ID != id {
			continue
		}
		if !s.alerts[i].Acknowledged {
			now := time.Now()
			s.alerts[i].Acknowledged = true
			s.alerts[i].AcknowledgedAt = &now
		}
		changed = s.alerts[i].AckState != model.AckConfirmed
		s.alerts[i].AckState = model.AckConfirmed
		break
	}
	s.mu.Unlock()
	if changed {
		s.hub.Publish(nil)
	}
}

// RollbackAck undoes an optimistic acknowledge after an explicit server
// rejection. Only a pending acknowledge rolls back.
func (s *Store) RollbackAck(id string) {
	s.mu.Lock()
	changed := false
	for i := range s.alerts {
		if s.alerts[i].ID != id {
			continue
		}
		if s.alerts[i].AckState != model.AckPending {
			break
		}
		s.alerts[i].Acknowledged = false
		s.alerts[i].AcknowledgedAt = nil
		s.alerts[i].AckState = model.AckNone
		changed = true
		break
	}
	s.mu.Unlock()
	if changed {
		s.hub.Publish(nil)
	}
}

// UnreadCount is derived from the capped local list. It is distinct from
// the server-pushed stats aggregate (ServerStats), which is computed over
// full server-side history; the two can diverge and are not reconciled.
func (s *Store) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for i := range s.alerts {
		if !s.alerts[i].Acknowledged {
			count++
		}
	}
	return count
}

// Snapshot returns the current list, most-recent-first.
func (s *Store) Snapshot() []model.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out
}

// Len returns the number of stored alerts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// ClearAll empties the store.
func (s *Store) ClearAll() {
	s.mu.Lock()
	s.alerts = nil
	s.ids = make(map[string]struct{})
	s.mu.Unlock()
	s.hub.Publish(nil)
}

// SetServerStats records the latest server-pushed aggregate verbatim.
func (s *Store) SetServerStats(stats model.AlertStats) {
	s.mu.Lock()
	s.stats = &stats
	s.mu.Unlock()
	s.hub.Publish(nil)
}

// ServerStats returns the last server-pushed aggregate, or nil before the
// first stats frame.
func (s *Store) ServerStats() *model.AlertStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stats == nil {
		return nil
	}
	cp := *s.stats
	return &cp
}

// Subscribe registers fn to run after every mutation.
func (s *Store) Subscribe(fn func()) signal.Token {
	return s.hub.Subscribe(func(any) { fn() })
}

// Unsubscribe releases a subscription token.
func (s *Store) Unsubscribe(tok signal.Token) {
	s.hub.Release(tok)
}
