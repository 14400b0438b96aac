package telemetry

type Snapshot struct {
	// Core metrics
	FramesReceived  uint64
	PacketsCaptured uint64
	AlertsReceived  uint64
	ErrorsTotal     uint64

	// Breakdown
	FramesByChannel  map[string]uint64
	AlertsBySeverity map[string]uint64
	AlertsByType     map[string]uint64
	ToastsByAction   map[string]uint64

	// Connection status
	CaptureConnected bool
	AlertsConnected  bool

	// Rate metrics
	FramesPerSecond  float64
	PacketsPerSecond float64

	// System metrics
	UptimeSeconds      float64
	ChannelUtilization float64

	// Error breakdown
	ErrorsByContext  map[string]uint64
	ErrorsBySeverity map[ErrorSeverity]uint64
	RecentErrors     []string
}

type TelemetryReader interface {
	Snapshot() Snapshot
}
