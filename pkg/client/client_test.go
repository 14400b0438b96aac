package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"netwatch-client/pkg/config"
	"netwatch-client/pkg/model"
	"netwatch-client/pkg/stream"
	"netwatch-client/pkg/testutil"
)

type testHarness struct {
	client    *Client
	capture   *testutil.MockTransport
	alertsT   *testutil.MockTransport
	clock     *testutil.ManualClock
	publisher *testutil.CapturingPublisher
	requests  *requestLog
}

type requestLog struct {
	mu    sync.Mutex
	paths []string
}

func (r *requestLog) record(method, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, method+" "+path)
}

func (r *requestLog) has(entry string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.paths {
		if p == entry {
			return true
		}
	}
	return false
}

type harnessOptions struct {
	captureDialErr error
	seedRunning    bool
	seedAlerts     []model.Alert
}

func newHarness(t *testing.T, opts harnessOptions) *testHarness {
	t.Helper()

	reqs := &requestLog{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqs.record(r.Method, r.URL.Path)
		switch {
		case r.URL.Path == "/capture/status":
			json.NewEncoder(w).Encode(map[string]any{
				"is_running":       opts.seedRunning,
				"packets_captured": 0,
				"interface":        nil,
				"filter":           nil,
			})
		case r.URL.Path == "/alerts" && r.Method == http.MethodGet:
			alerts := opts.seedAlerts
			if alerts == nil {
				alerts = []model.Alert{}
			}
			json.NewEncoder(w).Encode(alerts)
		case r.URL.Path == "/capture/interfaces":
			json.NewEncoder(w).Encode(map[string]any{"interfaces": []string{"eth0"}})
		default:
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{}`))
		}
	}))
	t.Cleanup(srv.Close)

	settings, err := config.OpenSettings(filepath.Join(t.TempDir(), "settings.json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	enabled := config.DefaultSettings()
	enabled.Notifications = true
	enabled.NotificationSeverityFilter = "all"
	if err := settings.Update(enabled); err != nil {
		t.Fatal(err)
	}

	h := &testHarness{
		capture:   testutil.NewMockTransport(),
		alertsT:   testutil.NewMockTransport(),
		clock:     testutil.NewManualClock(time.Unix(1700000000, 0)),
		publisher: testutil.NewCapturingPublisher(),
		requests:  reqs,
	}

	dialer := func(_ context.Context, url string) (stream.Transport, error) {
		switch url {
		case "ws://test/capture":
			if opts.captureDialErr != nil {
				return nil, opts.captureDialErr
			}
			return h.capture, nil
		case "ws://test/alerts":
			return h.alertsT, nil
		}
		t.Errorf("unexpected dial url %s", url)
		return nil, errors.New("unexpected url")
	}

	cfg := &config.Config{
		CaptureWSURL: "ws://test/capture",
		AlertsWSURL:  "ws://test/alerts",
		APIBaseURL:   srv.URL,
		Reconnect:    config.ReconnectConfig{DelaySeconds: 5},
		StatusPoll:   config.StatusPollConfig{IntervalSeconds: 0},
		Timeouts:     config.TimeoutConfig{DialSeconds: 5, RequestSeconds: 5},
	}

	c, err := New(Options{
		Config:    cfg,
		Settings:  settings,
		Publisher: h.publisher,
		Dialer:    dialer,
		Clock:     h.clock,
	})
	if err != nil {
		t.Fatal(err)
	}
	h.client = c
	t.Cleanup(c.Close)
	return h
}

// waitFor polls until cond holds; frames travel through the read loop
// goroutine, so state changes are not immediate.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatal(msg)
}

func sampleAlert(id string, severity model.Severity) model.Alert {
	return model.Alert{
		ID:        id,
		Timestamp: time.Unix(1700000000, 0).UTC(),
		Type:      "port_scan",
		Severity:  severity,
		Title:     "Port scan detected",
	}
}

func TestFrameRouting(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	if err := h.client.Start(context.Background()); err != nil {
		t.Fatalf("expected clean start, got %v", err)
	}

	t.Run("packet frames land in the buffer", func(t *testing.T) {
		h.capture.DeliverFrame(model.FramePacket, map[string]any{
			"timestamp": "2026-08-29T10:00:00Z",
			"src_ip":    "10.0.0.5",
			"dst_ip":    "93.184.216.34",
			"protocol":  "TCP",
			"length":    1500,
		})
		waitFor(t, func() bool { return h.client.Packets().Len() == 1 }, "packet never reached the buffer")

		packets := h.client.Packets().Snapshot()
		if packets[0].SrcIP != "10.0.0.5" || packets[0].Protocol != "TCP" {
			t.Errorf("unexpected packet: %+v", packets[0])
		}
	})

	t.Run("status frames drive the mirror", func(t *testing.T) {
		h.capture.DeliverFrame(model.FrameStatus, map[string]any{"is_running": true})
		waitFor(t, func() bool { return h.client.Status().Running() }, "mirror never saw running=true")

		h.capture.DeliverFrame(model.FrameStatus, map[string]any{"is_running": false})
		waitFor(t, func() bool { return !h.client.Status().Running() }, "mirror never saw running=false")
	})

	t.Run("alert frames hit store and grouper", func(t *testing.T) {
		h.alertsT.DeliverFrame(model.FrameAlert, sampleAlert("a-1", model.SeverityCritical))
		waitFor(t, func() bool { return h.client.Alerts().Len() == 1 }, "alert never reached the store")
		waitFor(t, func() bool { return len(h.client.Toasts().Visible()) == 1 }, "toast never appeared")
	})

	t.Run("stats frames update server stats", func(t *testing.T) {
		h.alertsT.DeliverFrame(model.FrameStats, model.AlertStats{Total: 42, Unacknowledged: 7})
		waitFor(t, func() bool {
			stats := h.client.Alerts().ServerStats()
			return stats != nil && stats.Total == 42
		}, "server stats never arrived")
	})

	t.Run("acknowledged frames confirm the ack", func(t *testing.T) {
		h.client.Alerts().Acknowledge("a-1")
		h.alertsT.DeliverFrame(model.FrameAcknowledged, map[string]any{"alert_id": "a-1"})
		waitFor(t, func() bool {
			for _, a := range h.client.Alerts().Snapshot() {
				if a.ID == "a-1" && a.AckState == model.AckConfirmed {
					return true
				}
			}
			return false
		}, "ack was never confirmed")
	})

	t.Run("malformed frames are dropped", func(t *testing.T) {
		before := h.client.Packets().Len()
		h.capture.Deliver([]byte(`{"type":"packet","data":"not-an-object"}`))
		h.capture.DeliverFrame(model.FramePacket, map[string]any{
			"timestamp": "2026-08-29T10:00:01Z",
			"src_ip":    "10.0.0.6",
			"dst_ip":    "10.0.0.7",
			"protocol":  "UDP",
			"length":    64,
		})
		waitFor(t, func() bool { return h.client.Packets().Len() == before+1 }, "channel died after malformed frame")
	})
}

func TestAcknowledgeRoundTrip(t *testing.T) {
	t.Run("optimistic flip then wire message", func(t *testing.T) {
		h := newHarness(t, harnessOptions{})
		if err := h.client.Start(context.Background()); err != nil {
			t.Fatal(err)
		}

		h.alertsT.DeliverFrame(model.FrameAlert, sampleAlert("a-1", model.SeverityHigh))
		waitFor(t, func() bool { return h.client.Alerts().Len() == 1 }, "alert never ingested")

		if err := h.client.Acknowledge(context.Background(), "a-1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		// Local state flips immediately
		a := h.client.Alerts().Snapshot()[0]
		if !a.Acknowledged || a.AckState != model.AckPending {
			t.Errorf("expected pending optimistic ack, got %+v", a)
		}

		// The control message went out on the alerts channel
		written := h.alertsT.Written()
		if len(written) != 1 {
			t.Fatalf("expected 1 outbound message, got %d", len(written))
		}
		var ctrl model.Control
		if err := json.Unmarshal(written[0], &ctrl); err != nil {
			t.Fatal(err)
		}
		if ctrl.Action != model.ActionAcknowledge || ctrl.AlertID != "a-1" {
			t.Errorf("unexpected control message: %+v", ctrl)
		}
	})

	t.Run("send failure rolls the flip back", func(t *testing.T) {
		h := newHarness(t, harnessOptions{})
		if err := h.client.Start(context.Background()); err != nil {
			t.Fatal(err)
		}

		h.alertsT.DeliverFrame(model.FrameAlert, sampleAlert("a-2", model.SeverityHigh))
		waitFor(t, func() bool { return h.client.Alerts().Len() == 1 }, "alert never ingested")

		h.alertsT.WriteErr = errors.New("broken pipe")
		if err := h.client.Acknowledge(context.Background(), "a-2"); err == nil {
			t.Fatal("expected error from failed send")
		}

		a := h.client.Alerts().Snapshot()[0]
		if a.Acknowledged || a.AckState != model.AckNone {
			t.Errorf("expected rollback, got %+v", a)
		}
	})
}

func TestRequestStats(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	if err := h.client.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if err := h.client.RequestStats(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	written := h.alertsT.Written()
	if len(written) != 1 {
		t.Fatalf("expected 1 outbound message, got %d", len(written))
	}
	var ctrl model.Control
	if err := json.Unmarshal(written[0], &ctrl); err != nil {
		t.Fatal(err)
	}
	if ctrl.Action != model.ActionStats || ctrl.AlertID != "" {
		t.Errorf("unexpected control message: %+v", ctrl)
	}
}

func TestStartIndependentChannels(t *testing.T) {
	h := newHarness(t, harnessOptions{captureDialErr: errors.New("connection refused")})

	err := h.client.Start(context.Background())
	if err == nil {
		t.Fatal("expected the capture dial failure to surface")
	}

	// The alerts channel connected despite the capture failure
	if h.client.AlertsState() != stream.Connected {
		t.Errorf("expected alerts connected, got %v", h.client.AlertsState())
	}
	if h.client.CaptureState() != stream.Reconnecting {
		t.Errorf("expected capture reconnecting, got %v", h.client.CaptureState())
	}
}

func TestSeeding(t *testing.T) {
	seed := []model.Alert{
		sampleAlert("seed-1", model.SeverityMedium),
		sampleAlert("seed-2", model.SeverityLow),
	}
	h := newHarness(t, harnessOptions{seedRunning: true, seedAlerts: seed})

	if err := h.client.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	if !h.client.Status().Running() {
		t.Error("expected running state seeded from REST before any frame")
	}
	if h.client.Alerts().Len() != 2 {
		t.Errorf("expected 2 seeded alerts, got %d", h.client.Alerts().Len())
	}
	// Seeding fills the store without raising toasts
	if len(h.client.Toasts().Visible()) != 0 {
		t.Error("seeded alerts must not produce toasts")
	}
}

func TestResetCapture(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	if err := h.client.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.capture.DeliverFrame(model.FramePacket, map[string]any{
		"timestamp": "2026-08-29T10:00:00Z",
		"src_ip":    "10.0.0.5",
		"dst_ip":    "10.0.0.9",
		"protocol":  "TCP",
		"length":    60,
	})
	waitFor(t, func() bool { return h.client.Packets().Len() == 1 }, "packet never buffered")

	if err := h.client.ResetCapture(context.Background()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if h.client.Packets().Len() != 0 {
		t.Error("expected local buffer cleared")
	}
	if !h.requests.has("POST /capture/stop") {
		t.Error("expected capture stop request")
	}
	if !h.requests.has("POST /capture/clear") {
		t.Error("expected packet clear request")
	}
}

func TestInterfaces(t *testing.T) {
	h := newHarness(t, harnessOptions{})

	ifaces, err := h.client.Interfaces(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(ifaces) != 1 || ifaces[0] != "eth0" {
		t.Errorf("unexpected interfaces: %v", ifaces)
	}
}

func TestClose(t *testing.T) {
	h := newHarness(t, harnessOptions{})
	if err := h.client.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	h.alertsT.DeliverFrame(model.FrameAlert, sampleAlert("a-1", model.SeverityCritical))
	waitFor(t, func() bool { return len(h.client.Toasts().Visible()) == 1 }, "toast never appeared")

	h.client.Close()

	if h.client.CaptureState() != stream.Disconnected {
		t.Errorf("expected capture disconnected, got %v", h.client.CaptureState())
	}
	if h.client.AlertsState() != stream.Disconnected {
		t.Errorf("expected alerts disconnected, got %v", h.client.AlertsState())
	}
	if h.client.Toasts().PendingTimers() != 0 {
		t.Errorf("expected no pending toast timers, got %d", h.client.Toasts().PendingTimers())
	}
	if !h.capture.Closed() || !h.alertsT.Closed() {
		t.Error("expected both transports closed")
	}
}
