package clock_test

import (
	"testing"
	"time"

	"netwatch-client/pkg/clock"
	"netwatch-client/pkg/testutil"
)

func TestRegistrySchedule(t *testing.T) {
	t.Run("fires after the delay", func(t *testing.T) {
		clk := testutil.NewManualClock(time.Unix(1700000000, 0))
		r := clock.NewTimerRegistry(clk)

		fired := 0
		r.Schedule(5*time.Second, func() { fired++ })

		clk.Advance(4 * time.Second)
		if fired != 0 {
			t.Error("timer fired early")
		}
		clk.Advance(1 * time.Second)
		if fired != 1 {
			t.Errorf("expected 1 fire, got %d", fired)
		}
		if r.Pending() != 0 {
			t.Errorf("expected no pending timers, got %d", r.Pending())
		}
	})

	t.Run("fires once", func(t *testing.T) {
		clk := testutil.NewManualClock(time.Unix(1700000000, 0))
		r := clock.NewTimerRegistry(clk)

		fired := 0
		r.Schedule(time.Second, func() { fired++ })

		clk.Advance(time.Minute)
		if fired != 1 {
			t.Errorf("expected 1 fire, got %d", fired)
		}
	})

	t.Run("callback may reschedule", func(t *testing.T) {
		clk := testutil.NewManualClock(time.Unix(1700000000, 0))
		r := clock.NewTimerRegistry(clk)

		fired := 0
		var tick func()
		tick = func() {
			fired++
			r.Schedule(time.Second, tick)
		}
		r.Schedule(time.Second, tick)

		clk.Advance(3 * time.Second)
		if fired != 3 {
			t.Errorf("expected 3 fires, got %d", fired)
		}
		if r.Pending() != 1 {
			t.Errorf("expected the next tick pending, got %d", r.Pending())
		}
	})
}

func TestRegistryCancel(t *testing.T) {
	clk := testutil.NewManualClock(time.Unix(1700000000, 0))
	r := clock.NewTimerRegistry(clk)

	fired := false
	id := r.Schedule(5*time.Second, func() { fired = true })
	r.Cancel(id)

	clk.Advance(time.Minute)
	if fired {
		t.Error("cancelled timer fired")
	}
	if r.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", r.Pending())
	}

	// Cancelling again, or an unknown id, is a no-op
	r.Cancel(id)
	r.Cancel(999)
}

func TestRegistryDisposeAll(t *testing.T) {
	clk := testutil.NewManualClock(time.Unix(1700000000, 0))
	r := clock.NewTimerRegistry(clk)

	fired := 0
	for i := 0; i < 5; i++ {
		r.Schedule(time.Second, func() { fired++ })
	}
	r.DisposeAll()

	clk.Advance(time.Minute)
	if fired != 0 {
		t.Errorf("expected no fires after dispose, got %d", fired)
	}
	if r.Pending() != 0 {
		t.Errorf("expected no pending timers, got %d", r.Pending())
	}

	// Dispose is terminal: nothing schedules afterwards
	if id := r.Schedule(time.Second, func() { fired++ }); id != 0 {
		t.Errorf("expected Schedule to return 0 after dispose, got %d", id)
	}
	clk.Advance(time.Minute)
	if fired != 0 {
		t.Errorf("expected no fires, got %d", fired)
	}
}

func TestRealClock(t *testing.T) {
	clk := clock.RealClock{}
	if clk.Now().IsZero() {
		t.Error("expected a real timestamp")
	}

	done := make(chan struct{})
	timer := clk.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("real timer never fired")
	}
	if timer.Stop() {
		t.Error("Stop after fire must report false")
	}
}
