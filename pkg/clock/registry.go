package clock

import (
	"sync"
	"time"
)

// TimerRegistry tracks every timer a component schedules so teardown can
// cancel them all in one call. A timer firing after its owner is disposed
// would mutate stale state; Schedule wraps callbacks so that cannot happen.
type TimerRegistry struct {
	mu       sync.Mutex
	clock    Clock
	next     uint64
	timers   map[uint64]Timer
	disposed bool
}

func NewTimerRegistry(c Clock) *TimerRegistry {
	if c == nil {
		c = RealClock{}
	}
	return &TimerRegistry{clock: c, timers: make(map[uint64]Timer)}
}

// Schedule runs fn after d unless the registry is disposed or the returned
// handle is cancelled first. Returns 0 when the registry is already
// disposed (nothing was scheduled).
func (r *TimerRegistry) Schedule(d time.Duration, fn func()) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return 0
	}
	r.next++
	id := r.next
	r.timers[id] = r.clock.AfterFunc(d, func() {
		r.mu.Lock()
		if r.disposed {
			r.mu.Unlock()
			return
		}
		_, live := r.timers[id]
		delete(r.timers, id)
		r.mu.Unlock()
		if live {
			fn()
		}
	})
	return id
}

// Cancel stops a pending timer. Cancelling an already-fired or unknown id
// is a no-op.
func (r *TimerRegistry) Cancel(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.timers[id]; ok {
		t.Stop()
		delete(r.timers, id)
	}
}

// Pending returns the number of timers that have not fired or been cancelled.
func (r *TimerRegistry) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.timers)
}

// DisposeAll cancels every pending timer and marks the registry terminal;
// later Schedule calls do nothing.
func (r *TimerRegistry) DisposeAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disposed = true
	for id, t := range r.timers {
		t.Stop()
		delete(r.timers, id)
	}
}
