package testutil

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// ErrTransportClosed is what MockTransport reads and writes return after Close.
var ErrTransportClosed = errors.New("transport closed")

type readResult struct {
	data []byte
	err  error
}

// MockTransport is a scriptable in-memory stand-in for a websocket
// connection. Tests feed inbound frames with Deliver/DeliverFrame, force
// read failures with FailRead, and inspect outbound traffic via Written.
// It satisfies stream.Transport without importing it, so stream's own
// tests can use it too.
type MockTransport struct {
	mu      sync.Mutex
	inbound chan readResult
	done    chan struct{}
	once    sync.Once
	written [][]byte

	// WriteErr, when set, is returned by every subsequent Write.
	WriteErr error
}

func NewMockTransport() *MockTransport {
	return &MockTransport{
		inbound: make(chan readResult, 64),
		done:    make(chan struct{}),
	}
}

// Deliver queues one inbound message.
func (m *MockTransport) Deliver(data []byte) {
	m.inbound <- readResult{data: data}
}

// DeliverFrame queues an envelope built from the given type and payload.
func (m *MockTransport) DeliverFrame(frameType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	envelope, err := json.Marshal(map[string]json.RawMessage{
		"type": json.RawMessage(`"` + frameType + `"`),
		"data": raw,
	})
	if err != nil {
		panic(err)
	}
	m.Deliver(envelope)
}

// FailRead makes the next Read return err, as a dropped connection would.
func (m *MockTransport) FailRead(err error) {
	m.inbound <- readResult{err: err}
}

func (m *MockTransport) Read(ctx context.Context) ([]byte, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-m.done:
		return nil, ErrTransportClosed
	case r := <-m.inbound:
		return r.data, r.err
	}
}

func (m *MockTransport) Write(_ context.Context, data []byte) error {
	select {
	case <-m.done:
		return ErrTransportClosed
	default:
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.written = append(m.written, append([]byte(nil), data...))
	return nil
}

func (m *MockTransport) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}

// Closed reports whether Close has been called.
func (m *MockTransport) Closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// Written returns a copy of every payload written so far.
func (m *MockTransport) Written() [][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.written))
	copy(out, m.written)
	return out
}
