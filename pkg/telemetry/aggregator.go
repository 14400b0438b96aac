package telemetry

import (
	"context"
	"sync"
	"time"
)

// Clock interface allows for deterministic testing
type Clock interface {
	Now() time.Time
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// Config for telemetry settings
type Config struct {
	BufferSize        int
	MaxRecentErrors   int
	RateWindowSeconds int
}

func DefaultConfig() Config {
	return Config{
		BufferSize:        1000,
		MaxRecentErrors:   50,
		RateWindowSeconds: 10,
	}
}

// Aggregator is the core stateful component that processes telemetry events
type Aggregator struct {
	mu    sync.RWMutex
	clock Clock
	cfg   Config

	// Core counters
	framesReceived  uint64
	packetsCaptured uint64
	alertsReceived  uint64
	errorsTotal     uint64

	// Breakdown
	framesByChannel  map[string]uint64
	alertsBySeverity map[string]uint64
	alertsByType     map[string]uint64
	toastsByAction   map[string]uint64
	errorsByContext  map[string]uint64
	errorsBySeverity map[ErrorSeverity]uint64

	// Rate calculations (pruned time windows)
	frameTimes  []time.Time
	packetTimes []time.Time

	// Connection flags per channel
	connected map[string]bool

	// Recent errors (ring buffer)
	recentErrors []string
	errorIndex   int

	// Control channels
	eventCh chan TelemetryEvent
	done    chan struct{}
	wg      sync.WaitGroup

	startTime time.Time
}

// NewAggregator creates a new telemetry aggregator
func NewAggregator(clock Clock, cfg Config) *Aggregator {
	if clock == nil {
		clock = RealClock{}
	}

	return &Aggregator{
		clock:            clock,
		cfg:              cfg,
		framesByChannel:  make(map[string]uint64),
		alertsBySeverity: make(map[string]uint64),
		alertsByType:     make(map[string]uint64),
		toastsByAction:   make(map[string]uint64),
		errorsByContext:  make(map[string]uint64),
		errorsBySeverity: make(map[ErrorSeverity]uint64),
		frameTimes:       make([]time.Time, 0, cfg.RateWindowSeconds*10),
		packetTimes:      make([]time.Time, 0, cfg.RateWindowSeconds*10),
		connected:        make(map[string]bool),
		recentErrors:     make([]string, cfg.MaxRecentErrors),
		eventCh:          make(chan TelemetryEvent, cfg.BufferSize),
		done:             make(chan struct{}),
		startTime:        clock.Now(),
	}
}

// Start begins processing telemetry events
func (a *Aggregator) Start(ctx context.Context) {
	a.wg.Add(1)
	go a.processEvents(ctx)
}

// Stop gracefully shuts down the aggregator
func (a *Aggregator) Stop() {
	close(a.done)
	a.wg.Wait()
}

// Publish implements TelemetryPublisher interface
func (a *Aggregator) Publish(event TelemetryEvent) {
	select {
	case a.eventCh <- event:
	default:
		// Non-blocking send - drop if channel is full
		// This protects the hot path from being blocked
	}
}

// Snapshot implements TelemetryReader interface
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()

	now := a.clock.Now()

	framesPerSecond := a.calculateRate(a.frameTimes, now)
	packetsPerSecond := a.calculateRate(a.packetTimes, now)

	uptime := now.Sub(a.startTime).Seconds()
	channelUtilization := float64(len(a.eventCh)) / float64(cap(a.eventCh)) * 100

	// Copy maps to prevent data races
	framesCopy := copyMap(a.framesByChannel)
	severityCopy := copyMap(a.alertsBySeverity)
	typeCopy := copyMap(a.alertsByType)
	toastsCopy := copyMap(a.toastsByAction)
	errCtxCopy := copyMap(a.errorsByContext)

	errorsBySeverityCopy := make(map[ErrorSeverity]uint64)
	for k, v := range a.errorsBySeverity {
		errorsBySeverityCopy[k] = v
	}

	// Copy recent errors, newest first
	recentErrors := make([]string, 0)
	for i := 0; i < a.cfg.MaxRecentErrors; i++ {
		idx := (a.errorIndex - i - 1 + len(a.recentErrors)) % len(a.recentErrors)
		if a.recentErrors[idx] != "" {
			recentErrors = append(recentErrors, a.recentErrors[idx])
		}
	}

	return Snapshot{
		FramesReceived:     a.framesReceived,
		PacketsCaptured:    a.packetsCaptured,
		AlertsReceived:     a.alertsReceived,
		ErrorsTotal:        a.errorsTotal,
		FramesByChannel:    framesCopy,
		AlertsBySeverity:   severityCopy,
		AlertsByType:       typeCopy,
		ToastsByAction:     toastsCopy,
		CaptureConnected:   a.connected["capture"],
		AlertsConnected:    a.connected["alerts"],
		RecentErrors:       recentErrors,
		FramesPerSecond:    framesPerSecond,
		PacketsPerSecond:   packetsPerSecond,
		UptimeSeconds:      uptime,
		ErrorsByContext:    errCtxCopy,
		ErrorsBySeverity:   errorsBySeverityCopy,
		ChannelUtilization: channelUtilization,
	}
}

func (a *Aggregator) processEvents(ctx context.Context) {
	defer a.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-a.done:
			return
		case event := <-a.eventCh:
			a.handleEvent(event)
		}
	}
}

func (a *Aggregator) handleEvent(event TelemetryEvent) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()

	switch e := event.(type) {
	case FrameReceived:
		a.framesReceived++
		a.framesByChannel[e.Channel]++
		a.frameTimes = pruneAndAppend(a.frameTimes, now, a.cfg.RateWindowSeconds)

	case PacketCaptured:
		a.packetsCaptured++
		a.packetTimes = pruneAndAppend(a.packetTimes, now, a.cfg.RateWindowSeconds)

	case AlertReceived:
		a.alertsReceived++
		a.alertsBySeverity[e.Severity]++
		a.alertsByType[e.AlertType]++

	case ToastLifecycle:
		a.toastsByAction[e.Action]++

	case ConnectionStatusChanged:
		a.connected[e.Channel] = e.Connected

	case ClientError:
		a.errorsTotal++
		a.errorsByContext[e.Context]++
		a.errorsBySeverity[e.Severity]++
		a.addRecentError(e.Err.Error())
	}
}

func (a *Aggregator) addRecentError(err string) {
	a.recentErrors[a.errorIndex] = err
	a.errorIndex = (a.errorIndex + 1) % len(a.recentErrors)
}

func (a *Aggregator) calculateRate(times []time.Time, now time.Time) float64 {
	if len(times) == 0 {
		return 0.0
	}

	cutoff := now.Add(-time.Duration(a.cfg.RateWindowSeconds) * time.Second)
	count := 0

	for _, t := range times {
		if t.After(cutoff) {
			count++
		}
	}

	return float64(count) / float64(a.cfg.RateWindowSeconds)
}

func pruneAndAppend(times []time.Time, t time.Time, windowSeconds int) []time.Time {
	cutoff := t.Add(-time.Duration(windowSeconds) * time.Second)
	for len(times) > 0 && times[0].Before(cutoff) {
		times = times[1:]
	}
	return append(times, t)
}

func copyMap(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
