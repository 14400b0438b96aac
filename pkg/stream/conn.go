// Package stream owns the socket lifecycle of one logical push channel:
// connect, typed frame dispatch, fixed-delay reconnect, teardown. Two
// independent instances exist in the client (capture channel, alerts
// channel); they share no state.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"netwatch-client/pkg/clock"
	"netwatch-client/pkg/model"
	"netwatch-client/pkg/telemetry"
)

// ErrNotConnected is returned by Send when the channel is not Connected.
var ErrNotConnected = errors.New("stream: not connected")

// Default reconnect policy: fixed delay, unbounded attempts.
const (
	DefaultReconnectDelay = 5 * time.Second
	DefaultDialTimeout    = 10 * time.Second
)

// Handler receives the raw payload of one dispatched frame.
type Handler func(data json.RawMessage)

// Options configures a Conn. Zero values fall back to production defaults.
type Options struct {
	Dialer               Dialer
	Clock                clock.Clock
	ReconnectDelay       time.Duration
	MaxReconnectAttempts int // consecutive failed attempts before giving up; 0 = unbounded
	DialTimeout          time.Duration
	Logger               *log.Logger
	Publisher            telemetry.TelemetryPublisher
}

// Conn owns exactly one channel's socket and turns its lifecycle into
// typed dispatch calls plus a resilient reconnect loop.
type Conn struct {
	name string
	url  string

	dial        Dialer
	clk         clock.Clock
	delay       time.Duration
	maxAttempts int
	dialTimeout time.Duration
	logger      *log.Logger
	pub         telemetry.TelemetryPublisher

	mu           sync.Mutex
	state        State
	desiredOpen  bool
	transport    Transport
	attempts     int
	pendingRetry uint64
	gen          uint64 // invalidates read loops from a previous transport
	registry     *clock.TimerRegistry
	handlers     map[string]Handler
	stateSubs    []func(State)
	errorSubs    []func(error)
}

// New creates a Conn for one channel. The name is used in logs and
// telemetry ("capture", "alerts").
func New(name, url string, opts Options) *Conn {
	if opts.Dialer == nil {
		opts.Dialer = WebsocketDialer
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.ReconnectDelay <= 0 {
		opts.ReconnectDelay = DefaultReconnectDelay
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Publisher == nil {
		opts.Publisher = telemetry.NewNoopPublisher()
	}
	return &Conn{
		name:        name,
		url:         url,
		dial:        opts.Dialer,
		clk:         opts.Clock,
		delay:       opts.ReconnectDelay,
		maxAttempts: opts.MaxReconnectAttempts,
		dialTimeout: opts.DialTimeout,
		logger:      opts.Logger,
		pub:         opts.Publisher,
		registry:    clock.NewTimerRegistry(opts.Clock),
		handlers:    make(map[string]Handler),
	}
}

// Handle registers the dispatch handler for one frame type. Registration
// must complete before Connect; frames of an unregistered type are ignored.
func (c *Conn) Handle(frameType string, fn Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[frameType] = fn
}

// OnStateChange registers a subscriber notified on every state transition.
func (c *Conn) OnStateChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stateSubs = append(c.stateSubs, fn)
}

// OnError registers a subscriber for transport errors. Errors never bubble
// as return values from the dispatch path; this is the only error surface.
func (c *Conn) OnError(fn func(error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errorSubs = append(c.errorSubs, fn)
}

// Connect opens the socket and starts the read loop. It returns once the
// transport reports open, or with the dial error. Calling it while already
// Connected (or mid-Connecting) is a no-op. A dial failure while the
// connection is desired open schedules a retry before returning the error.
func (c *Conn) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == Connected || c.state == Connecting {
		c.mu.Unlock()
		return nil
	}
	c.desiredOpen = true
	c.setStateLocked(Connecting)
	c.mu.Unlock()

	t, err := c.dial(ctx, c.url)

	c.mu.Lock()
	if !c.desiredOpen {
		// Disconnect won the race; discard whatever the dial produced.
		c.mu.Unlock()
		if t != nil {
			_ = t.Close()
		}
		return nil
	}
	if err != nil {
		c.notifyErrorLocked(err)
		c.pub.Publish(telemetry.NewClientError(err, "dial", telemetry.ErrorSeverityWarning))
		c.setStateLocked(Reconnecting)
		c.scheduleRetryLocked()
		c.mu.Unlock()
		return fmt.Errorf("dial %s channel: %w", c.name, err)
	}

	c.transport = t
	c.attempts = 0
	c.gen++
	gen := c.gen
	c.setStateLocked(Connected)
	c.mu.Unlock()

	c.pub.Publish(telemetry.NewConnectionStatusChanged(c.name, true))
	c.logger.Printf("%s channel connected (%s)", c.name, c.url)

	go c.readLoop(gen, t)
	return nil
}

// Disconnect cancels any pending reconnect timer, closes the transport and
// transitions to Disconnected. It is terminal until Connect is called again.
func (c *Conn) Disconnect() {
	c.mu.Lock()
	c.desiredOpen = false
	if c.pendingRetry != 0 {
		c.registry.Cancel(c.pendingRetry)
		c.pendingRetry = 0
	}
	t := c.transport
	c.transport = nil
	c.gen++
	wasConnected := c.state == Connected
	c.setStateLocked(Disconnected)
	c.mu.Unlock()

	if t != nil {
		_ = t.Close()
	}
	if wasConnected {
		c.pub.Publish(telemetry.NewConnectionStatusChanged(c.name, false))
	}
	c.logger.Printf("%s channel disconnected", c.name)
}

// State returns the current lifecycle state.
func (c *Conn) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether the channel is Connected.
func (c *Conn) IsConnected() bool {
	return c.State() == Connected
}

// Send JSON-encodes v and writes it on the channel. Returns
// ErrNotConnected when the channel is not Connected.
func (c *Conn) Send(ctx context.Context, v any) error {
	c.mu.Lock()
	t := c.transport
	connected := c.state == Connected
	c.mu.Unlock()
	if !connected || t == nil {
		return ErrNotConnected
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode outbound message: %w", err)
	}
	return t.Write(ctx, data)
}

// PendingTimers reports outstanding reconnect timers. Zero after
// Disconnect is an invariant, not an optimization.
func (c *Conn) PendingTimers() int {
	return c.registry.Pending()
}

func (c *Conn) readLoop(gen uint64, t Transport) {
	for {
		data, err := t.Read(context.Background())
		if err != nil {
			c.handleClosed(gen, err)
			return
		}
		c.dispatch(data)
	}
}

// dispatch parses one inbound frame and routes it by type. A malformed
// frame is logged and dropped; it never terminates the stream. Unknown
// frame types are ignored.
func (c *Conn) dispatch(data []byte) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("frame handler panic: %v", r)
			c.logger.Printf("%s channel: %v", c.name, err)
			c.pub.Publish(telemetry.NewClientError(err, "frame_dispatch", telemetry.ErrorSeverityError))
		}
	}()

	var frame model.Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		c.logger.Printf("%s channel: dropping malformed frame: %v", c.name, err)
		c.pub.Publish(telemetry.NewClientError(err, "frame_parse", telemetry.ErrorSeverityWarning))
		return
	}

	c.pub.Publish(telemetry.NewFrameReceived(c.name, frame.Type))

	c.mu.Lock()
	handler := c.handlers[frame.Type]
	c.mu.Unlock()
	if handler == nil {
		return
	}
	handler(frame.Data)
}

// handleClosed runs when the read loop observes transport failure. A close
// the caller did not ask for feeds the reconnect state machine.
func (c *Conn) handleClosed(gen uint64, err error) {
	c.mu.Lock()
	if gen != c.gen {
		// A stale loop from a transport that was already replaced.
		c.mu.Unlock()
		return
	}
	c.transport = nil
	if !c.desiredOpen {
		c.setStateLocked(Disconnected)
		c.mu.Unlock()
		return
	}
	c.notifyErrorLocked(err)
	c.setStateLocked(Reconnecting)
	c.scheduleRetryLocked()
	c.mu.Unlock()

	c.pub.Publish(telemetry.NewConnectionStatusChanged(c.name, false))
	c.pub.Publish(telemetry.NewClientError(err, "transport_close", telemetry.ErrorSeverityWarning))
	c.logger.Printf("%s channel closed (%v), reconnecting in %s", c.name, err, c.delay)
}

// scheduleRetryLocked arms the single reconnect timer. Callers hold c.mu.
func (c *Conn) scheduleRetryLocked() {
	if c.maxAttempts > 0 && c.attempts >= c.maxAttempts {
		c.logger.Printf("%s channel: giving up after %d reconnect attempts", c.name, c.attempts)
		c.desiredOpen = false
		c.setStateLocked(Disconnected)
		return
	}
	c.attempts++
	c.pendingRetry = c.registry.Schedule(c.delay, c.retry)
}

func (c *Conn) retry() {
	c.mu.Lock()
	c.pendingRetry = 0
	if !c.desiredOpen || c.state != Reconnecting {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.dialTimeout)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		c.logger.Printf("%s channel: reconnect attempt failed: %v", c.name, err)
	}
}

func (c *Conn) setStateLocked(s State) {
	if c.state == s {
		return
	}
	c.state = s
	for _, fn := range c.stateSubs {
		fn(s)
	}
}

func (c *Conn) notifyErrorLocked(err error) {
	for _, fn := range c.errorSubs {
		fn(err)
	}
}
