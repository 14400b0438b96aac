package capture

import (
	"context"
	"log"
	"sync"
	"time"

	"netwatch-client/pkg/clock"
	"netwatch-client/pkg/signal"
	"netwatch-client/pkg/telemetry"
)

// StatusFetcher returns the authoritative capture-running flag from the
// REST surface.
type StatusFetcher func(ctx context.Context) (bool, error)

// StatusMirror tracks whether capture is running. Status frames from the
// capture channel are the fast path (last-write-wins); the REST snapshot
// seeds the value at startup and an optional poll catches drift if the
// channel silently stalls.
type StatusMirror struct {
	mu       sync.RWMutex
	running  bool
	fetch    StatusFetcher
	registry *clock.TimerRegistry
	interval time.Duration
	polling  bool
	logger   *log.Logger
	pub      telemetry.TelemetryPublisher
	hub      *signal.Hub
}

func NewStatusMirror(fetch StatusFetcher, clk clock.Clock, logger *log.Logger, pub telemetry.TelemetryPublisher) *StatusMirror {
	if logger == nil {
		logger = log.Default()
	}
	if pub == nil {
		pub = telemetry.NewNoopPublisher()
	}
	return &StatusMirror{
		fetch:    fetch,
		registry: clock.NewTimerRegistry(clk),
		logger:   logger,
		pub:      pub,
		hub:      signal.NewHub(),
	}
}

// Running returns the current flag.
func (m *StatusMirror) Running() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// SetRunning applies a status frame. Last write wins; no merge logic.
func (m *StatusMirror) SetRunning(running bool) {
	m.mu.Lock()
	changed := m.running != running
	m.running = running
	m.mu.Unlock()
	if changed {
		m.hub.Publish(running)
	}
}

// Seed fetches the REST snapshot once, before any frame arrives.
func (m *StatusMirror) Seed(ctx context.Context) error {
	running, err := m.fetch(ctx)
	if err != nil {
		return err
	}
	m.SetRunning(running)
	return nil
}

// StartPolling re-fetches the snapshot on an interval as a drift backstop.
// A fetch failure is logged and counted, never surfaced; the next tick
// tries again.
func (m *StatusMirror) StartPolling(interval time.Duration) {
	m.mu.Lock()
	if m.polling || interval <= 0 {
		m.mu.Unlock()
		return
	}
	m.polling = true
	m.interval = interval
	m.mu.Unlock()
	m.scheduleTick()
}

func (m *StatusMirror) scheduleTick() {
	m.mu.RLock()
	interval := m.interval
	active := m.polling
	m.mu.RUnlock()
	if !active {
		return
	}
	m.registry.Schedule(interval, m.tick)
}

func (m *StatusMirror) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	running, err := m.fetch(ctx)
	cancel()
	if err != nil {
		m.logger.Printf("status poll failed: %v", err)
		m.pub.Publish(telemetry.NewClientError(err, "status_poll", telemetry.ErrorSeverityInfo))
	} else {
		m.SetRunning(running)
	}
	m.scheduleTick()
}

// Stop cancels the poll loop and any pending tick.
func (m *StatusMirror) Stop() {
	m.mu.Lock()
	m.polling = false
	m.mu.Unlock()
	m.registry.DisposeAll()
}

// Subscribe registers fn to run with the new value whenever the flag flips.
func (m *StatusMirror) Subscribe(fn func(bool)) signal.Token {
	return m.hub.Subscribe(func(v any) {
		if running, ok := v.(bool); ok {
			fn(running)
		}
	})
}

// Unsubscribe releases a subscription token.
func (m *StatusMirror) Unsubscribe(tok signal.Token) {
	m.hub.Release(tok)
}
