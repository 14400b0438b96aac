package signal

import (
	"sort"
	"testing"
)

func TestHubPublish(t *testing.T) {
	t.Run("fans out to every subscriber", func(t *testing.T) {
		h := NewHub()

		var got []int
		h.Subscribe(func(v any) { got = append(got, v.(int)*10) })
		h.Subscribe(func(v any) { got = append(got, v.(int)*100) })

		h.Publish(7)

		sort.Ints(got)
		if len(got) != 2 || got[0] != 70 || got[1] != 700 {
			t.Errorf("unexpected deliveries: %v", got)
		}
	})

	t.Run("no subscribers", func(t *testing.T) {
		h := NewHub()
		h.Publish("ignored")
	})

	t.Run("subscriber may publish again", func(t *testing.T) {
		h := NewHub()

		var got []string
		h.Subscribe(func(v any) {
			s := v.(string)
			got = append(got, s)
			if s == "first" {
				h.Publish("second")
			}
		})

		h.Publish("first")
		if len(got) != 2 || got[0] != "first" || got[1] != "second" {
			t.Errorf("unexpected deliveries: %v", got)
		}
	})
}

func TestHubRelease(t *testing.T) {
	t.Run("release removes the subscription", func(t *testing.T) {
		h := NewHub()

		calls := 0
		tok := h.Subscribe(func(any) { calls++ })
		h.Release(tok)

		h.Publish(1)
		if calls != 0 {
			t.Errorf("released subscriber still called %d times", calls)
		}
		if h.Len() != 0 {
			t.Errorf("expected empty hub, got %d subscriptions", h.Len())
		}
	})

	t.Run("retain keeps the subscription alive", func(t *testing.T) {
		h := NewHub()

		calls := 0
		tok := h.Subscribe(func(any) { calls++ })
		h.Retain(tok)

		h.Release(tok)
		h.Publish(1)
		if calls != 1 {
			t.Errorf("expected 1 call while retained, got %d", calls)
		}

		h.Release(tok)
		h.Publish(1)
		if calls != 1 {
			t.Errorf("expected no calls after final release, got %d", calls)
		}
	})

	t.Run("unknown tokens are no-ops", func(t *testing.T) {
		h := NewHub()
		h.Retain(Token("nope"))
		h.Release(Token("nope"))
		if h.Len() != 0 {
			t.Errorf("expected empty hub, got %d subscriptions", h.Len())
		}
	})
}

func TestHubLen(t *testing.T) {
	h := NewHub()
	a := h.Subscribe(func(any) {})
	b := h.Subscribe(func(any) {})
	if h.Len() != 2 {
		t.Errorf("expected 2 subscriptions, got %d", h.Len())
	}
	h.Release(a)
	h.Release(b)
	if h.Len() != 0 {
		t.Errorf("expected 0 subscriptions, got %d", h.Len())
	}
}
