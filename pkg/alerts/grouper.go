package alerts

import (
	"log"
	"sync"
	"time"

	"netwatch-client/pkg/clock"
	"netwatch-client/pkg/model"
	"netwatch-client/pkg/signal"
	"netwatch-client/pkg/telemetry"
)

// Severity filter values from the persisted settings blob.
const (
	FilterAll          = "all"
	FilterCriticalHigh = "critical-high"
	FilterCritical     = "critical"
)

// Policy is the slice of the client settings the grouper consults. It is
// re-read through the provider on every ingested alert, so a settings
// change applies from the next alert on; visible toasts are not
// retroactively re-filtered or rescheduled.
type Policy struct {
	Enabled       bool
	Filter        string
	MaxToasts     int
	ToastDuration time.Duration
}

// PolicyProvider returns the current notification policy.
type PolicyProvider func() Policy

// ShouldShow reports whether an alert of the given severity passes the
// filter. An unrecognized filter admits everything.
func ShouldShow(sev model.Severity, filter string) bool {
	switch filter {
	case FilterCritical:
		return sev == model.SeverityCritical
	case FilterCriticalHigh:
		return sev == model.SeverityCritical || sev == model.SeverityHigh
	default:
		return true
	}
}

// GroupKey merges repeat alerts of the same kind into one toast.
type GroupKey struct {
	Type     string
	Severity model.Severity
}

func (k GroupKey) String() string {
	return k.Type + "-" + k.Severity.String()
}

// Toast is one visible notification. Count accumulates merged repeats;
// the Alert stays the one that opened the group.
type Toast struct {
	Key             GroupKey
	Alert           model.Alert
	Count           int
	LastRefreshedAt time.Time
}

type group struct {
	toast   Toast
	timerID uint64
	gen     uint64 // guards against an expiry racing a merge
}

// Grouper consumes ingested alerts and maintains the bounded set of
// visible toasts: severity filtering, (type, severity) grouping with
// in-place merge, per-group expiry timers, oldest-first eviction over
// capacity. Every timer it creates is tracked so Dispose cancels them all.
type Grouper struct {
	mu       sync.Mutex
	clk      clock.Clock
	registry *clock.TimerRegistry
	policy   PolicyProvider
	groups   map[GroupKey]*group
	order    []GroupKey // group creation order, oldest first
	disposed bool
	logger   *log.Logger
	pub      telemetry.TelemetryPublisher
	hub      *signal.Hub
}

func NewGrouper(policy PolicyProvider, clk clock.Clock, logger *log.Logger, pub telemetry.TelemetryPublisher) *Grouper {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	if pub == nil {
		pub = telemetry.NewNoopPublisher()
	}
	return &Grouper{
		clk:      clk,
		registry: clock.NewTimerRegistry(clk),
		policy:   policy,
		groups:   make(map[GroupKey]*group),
		logger:   logger,
		pub:      pub,
		hub:      signal.NewHub(),
	}
}

// Ingest decides whether alert a surfaces as a toast. The caller ingests
// the alert into the Store independently; suppressing the toast never
// drops the record.
func (g *Grouper) Ingest(a model.Alert) {
	p := g.policy()
	if !p.Enabled {
		return
	}
	if !ShouldShow(a.Severity, p.Filter) {
		return
	}

	key := GroupKey{Type: a.Type, Severity: a.Severity}

	g.mu.Lock()
	if g.disposed {
		g.mu.Unlock()
		return
	}

	if grp, live := g.groups[key]; live {
		// Repeat within the group's lifetime: merge in place and push the
		// expiry out to ToastDuration from this refresh.
		g.registry.Cancel(grp.timerID)
		grp.gen++
		grp.toast.Count++
		grp.toast.LastRefreshedAt = a.Timestamp
		grp.timerID = g.scheduleExpiryLocked(key, grp.gen, p.ToastDuration)
		count := grp.toast.Count
		g.mu.Unlock()
		g.pub.Publish(telemetry.NewToastLifecycle(telemetry.ToastMerged, key.String(), count))
		g.hub.Publish(nil)
		return
	}

	if p.MaxToasts > 0 && len(g.groups) >= p.MaxToasts {
		oldest := g.order[0]
		g.removeLocked(oldest)
		g.pub.Publish(telemetry.NewToastLifecycle(telemetry.ToastEvicted, oldest.String(), 0))
	}

	grp := &group{
		toast: Toast{
			Key:             key,
			Alert:           a,
			Count:           1,
			LastRefreshedAt: a.Timestamp,
		},
	}
	g.groups[key] = grp
	g.order = append(g.order, key)
	grp.timerID = g.scheduleExpiryLocked(key, grp.gen, p.ToastDuration)
	g.mu.Unlock()

	g.pub.Publish(telemetry.NewToastLifecycle(telemetry.ToastShown, key.String(), 1))
	g.hub.Publish(nil)
}

// scheduleExpiryLocked arms the group's expiry timer. Callers hold g.mu.
func (g *Grouper) scheduleExpiryLocked(key GroupKey, gen uint64, d time.Duration) uint64 {
	return g.registry.Schedule(d, func() { g.expire(key, gen) })
}

// expire removes the group when its timer fires. No re-check of policy or
// store state; the generation only filters out a timer whose group was
// merged or replaced while the callback was in flight.
func (g *Grouper) expire(key GroupKey, gen uint64) {
	g.mu.Lock()
	grp, live := g.groups[key]
	if !live || grp.gen != gen {
		g.mu.Unlock()
		return
	}
	g.removeLocked(key)
	g.mu.Unlock()

	g.pub.Publish(telemetry.NewToastLifecycle(telemetry.ToastExpired, key.String(), 0))
	g.hub.Publish(nil)
}

// Dismiss removes the toast whose opening alert has the given id,
// regardless of count or age. Dismiss never acknowledges; callers that
// want both chain the two explicitly.
func (g *Grouper) Dismiss(id string) {
	g.mu.Lock()
	var found *GroupKey
	for key, grp := range g.groups {
		if grp.toast.Alert.ID == id {
			k := key
			found = &k
			break
		}
	}
	if found == nil {
		g.mu.Unlock()
		return
	}
	g.removeLocked(*found)
	g.mu.Unlock()

	g.pub.Publish(telemetry.NewToastLifecycle(telemetry.ToastDismissed, found.String(), 0))
	g.hub.Publish(nil)
}

// DismissAll clears every visible toast.
func (g *Grouper) DismissAll() {
	g.mu.Lock()
	for _, key := range append([]GroupKey(nil), g.order...) {
		g.removeLocked(key)
	}
	g.mu.Unlock()
	g.hub.Publish(nil)
}

// Visible returns the current toasts, oldest first.
func (g *Grouper) Visible() []Toast {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]Toast, 0, len(g.order))
	for _, key := range g.order {
		if grp, ok := g.groups[key]; ok {
			out = append(out, grp.toast)
		}
	}
	return out
}

// Dispose cancels every live expiry timer and makes the grouper inert.
// A timer that was mid-flight when Dispose ran finds disposed set and
// mutates nothing.
func (g *Grouper) Dispose() {
	g.mu.Lock()
	g.disposed = true
	g.groups = make(map[GroupKey]*group)
	g.order = nil
	g.mu.Unlock()
	g.registry.DisposeAll()
}

// PendingTimers reports outstanding expiry timers; exactly one per
// visible toast is an invariant.
func (g *Grouper) PendingTimers() int {
	return g.registry.Pending()
}

// Subscribe registers fn to run after every toast-set change.
func (g *Grouper) Subscribe(fn func()) signal.Token {
	return g.hub.Subscribe(func(any) { fn() })
}

// Unsubscribe releases a subscription token.
func (g *Grouper) Unsubscribe(tok signal.Token) {
	g.hub.Release(tok)
}

// removeLocked cancels the group's timer and drops it. Callers hold g.mu.
func (g *Grouper) removeLocked(key GroupKey) {
	grp, ok := g.groups[key]
	if !ok {
		return
	}
	g.registry.Cancel(grp.timerID)
	grp.gen++
	delete(g.groups, key)
	for i, k := range g.order {
		if k == key {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}
