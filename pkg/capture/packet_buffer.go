// Package capture holds the client-side mirrors of live capture state: the
// bounded packet buffer fed by the capture channel and the capture-running
// flag reconciled against the REST snapshot.
package capture

import (
	"sync"

	"netwatch-client/pkg/model"
	"netwatch-client/pkg/signal"
)

// DefaultPacketCapacity bounds memory growth of the packet stream.
const DefaultPacketCapacity = 200

// PacketBuffer is a fixed-capacity, most-recent-first packet store. The
// oldest record is evicted when a new one arrives at capacity. Records are
// immutable once appended.
type PacketBuffer struct {
	mu   sync.RWMutex
	buf  []model.Packet // ring storage
	head int            // index of the most recent record
	size int
	hub  *signal.Hub
}

// NewPacketBuffer creates a buffer holding at most capacity records.
// A non-positive capacity falls back to DefaultPacketCapacity.
func NewPacketBuffer(capacity int) *PacketBuffer {
	if capacity <= 0 {
		capacity = DefaultPacketCapacity
	}
	return &PacketBuffer{
		buf: make([]model.Packet, capacity),
		hub: signal.NewHub(),
	}
}

// Append stores p as the newest record, evicting the oldest at capacity.
func (b *PacketBuffer) Append(p model.Packet) {
	b.mu.Lock()
	b.head = (b.head + 1) % len(b.buf)
	b.buf[b.head] = p
	if b.size < len(b.buf) {
		b.size++
	}
	b.mu.Unlock()
	b.hub.Publish(nil)
}

// Snapshot returns the current contents, most-recent-first.
func (b *PacketBuffer) Snapshot() []model.Packet {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]model.Packet, b.size)
	for i := 0; i < b.size; i++ {
		idx := (b.head - i + len(b.buf)) % len(b.buf)
		out[i] = b.buf[idx]
	}
	return out
}

// Len returns the number of buffered records.
func (b *PacketBuffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.size
}

// Clear empties the buffer (capture reset/restart).
func (b *PacketBuffer) Clear() {
	b.mu.Lock()
	b.size = 0
	b.head = 0
	b.mu.Unlock()
	b.hub.Publish(nil)
}

// Subscribe registers fn to run after every mutation.
func (b *PacketBuffer) Subscribe(fn func()) signal.Token {
	return b.hub.Subscribe(func(any) { fn() })
}

// Unsubscribe releases a subscription token.
func (b *PacketBuffer) Unsubscribe(tok signal.Token) {
	b.hub.Release(tok)
}
