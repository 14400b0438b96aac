package telemetry

import "time"

type TelemetryEvent interface {
	Timestamp() time.Time // When the event occurred
	EventType() string    // For categorization/filtering
}

// FrameReceived records one inbound frame on a stream channel.
type FrameReceived struct {
	timestamp time.Time
	Channel   string
	FrameType string
}

func (e FrameReceived) Timestamp() time.Time { return e.timestamp }
func (e FrameReceived) EventType() string    { return "frame_received" }

func NewFrameReceived(channel, frameType string) FrameReceived {
	return FrameReceived{timestamp: time.Now(), Channel: channel, FrameType: frameType}
}

// PacketCaptured records one packet appended to the telemetry buffer.
type PacketCaptured struct {
	timestamp time.Time
	Protocol  string
	Length    int
}

func (e PacketCaptured) Timestamp() time.Time { return e.timestamp }
func (e PacketCaptured) EventType() string    { return "packet_captured" }

func NewPacketCaptured(protocol string, length int) PacketCaptured {
	return PacketCaptured{timestamp: time.Now(), Protocol: protocol, Length: length}
}

// AlertReceived records one alert ingested from the alerts channel.
type AlertReceived struct {
	timestamp time.Time
	AlertType string
	Severity  string
}

func (e AlertReceived) Timestamp() time.Time { return e.timestamp }
func (e AlertReceived) EventType() string    { return "alert_received" }

func NewAlertReceived(alertType, severity string) AlertReceived {
	return AlertReceived{timestamp: time.Now(), AlertType: alertType, Severity: severity}
}

// ToastLifecycle records a toast transition. Action is one of "shown",
// "merged", "expired", "evicted", "dismissed".
type ToastLifecycle struct {
	timestamp time.Time
	Action    string
	GroupKey  string
	Count     int
}

func (e ToastLifecycle) Timestamp() time.Time { return e.timestamp }
func (e ToastLifecycle) EventType() string    { return "toast_" + e.Action }

func NewToastLifecycle(action, groupKey string, count int) ToastLifecycle {
	return ToastLifecycle{timestamp: time.Now(), Action: action, GroupKey: groupKey, Count: count}
}

// Toast lifecycle actions.
const (
	ToastShown     = "shown"
	ToastMerged    = "merged"
	ToastExpired   = "expired"
	ToastEvicted   = "evicted"
	ToastDismissed = "dismissed"
)

// ConnectionStatusChanged records a channel going up or down.
type ConnectionStatusChanged struct {
	timestamp time.Time
	Channel   string
	Connected bool
}

func (e ConnectionStatusChanged) Timestamp() time.Time { return e.timestamp }
func (e ConnectionStatusChanged) EventType() string    { return "connection_status_changed" }

func NewConnectionStatusChanged(channel string, connected bool) ConnectionStatusChanged {
	return ConnectionStatusChanged{timestamp: time.Now(), Channel: channel, Connected: connected}
}

// ClientError records a handled failure with where it happened
// (e.g. "frame_parse", "reconnect", "status_poll").
type ClientError struct {
	timestamp time.Time
	Err       error
	Context   string
	Severity  ErrorSeverity
}

func (e ClientError) Timestamp() time.Time { return e.timestamp }
func (e ClientError) EventType() string    { return "client_error" }

func NewClientError(err error, context string, severity ErrorSeverity) ClientError {
	return ClientError{timestamp: time.Now(), Err: err, Context: context, Severity: severity}
}

type ErrorSeverity int

const (
	ErrorSeverityInfo ErrorSeverity = iota
	ErrorSeverityWarning
	ErrorSeverityError
	ErrorSeverityCritical
)

type TelemetryPublisher interface {
	// Publish sends a telemetry event to the aggregator.
	// This is a non-blocking, fire-and-forget call.
	Publish(event TelemetryEvent)
}
