package testutil

import (
	"sort"
	"sync"
	"time"

	"netwatch-client/pkg/clock"
)

// ManualClock implements clock.Clock with time that only moves when a
// test calls Advance. Timers fire synchronously, in due order, on the
// goroutine calling Advance.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	nextID int
	timers map[int]*manualTimer
}

type manualTimer struct {
	clk  *ManualClock
	id   int
	when time.Time
	fn   func()
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{
		now:    start,
		timers: make(map[int]*manualTimer),
	}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, fn func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	t := &manualTimer{clk: c, id: c.nextID, when: c.now.Add(d), fn: fn}
	c.timers[t.id] = t
	return t
}

// Stop removes the timer. It reports false when the timer already fired.
func (t *manualTimer) Stop() bool {
	t.clk.mu.Lock()
	defer t.clk.mu.Unlock()
	if _, live := t.clk.timers[t.id]; !live {
		return false
	}
	delete(t.clk.timers, t.id)
	return true
}

// Advance moves the clock forward by d, firing every timer due on the
// way in chronological order. Callbacks run without the clock lock held,
// so they may schedule or stop timers themselves.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	for {
		next := c.earliestLocked(target)
		if next == nil {
			break
		}
		delete(c.timers, next.id)
		if next.when.After(c.now) {
			c.now = next.when
		}
		c.mu.Unlock()
		next.fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// earliestLocked picks the due timer with the smallest deadline, using
// creation order to break ties so firing is deterministic.
func (c *ManualClock) earliestLocked(target time.Time) *manualTimer {
	due := make([]*manualTimer, 0, len(c.timers))
	for _, t := range c.timers {
		if !t.when.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].when.Equal(due[j].when) {
			return due[i].id < due[j].id
		}
		return due[i].when.Before(due[j].when)
	})
	return due[0]
}

// Pending returns the number of timers not yet fired or stopped.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
