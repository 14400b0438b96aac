package model

import "encoding/json"

// Frame is the wire envelope pushed on both stream channels.
// The payload is kept raw; each channel handler decodes it into its own type.
type Frame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Frame types on the capture channel.
const (
	FramePacket = "packet"
	FrameStatus = "status"
	FrameStats  = "stats"
)

// Frame types on the alerts channel (FrameStats is shared).
const (
	FrameAlert        = "alert"
	FrameAcknowledged = "acknowledged"
)

// StatusPayload is the body of a capture-channel "status" frame.
type StatusPayload struct {
	IsRunning bool `json:"is_running"`
}

// AckPayload is the body of an alerts-channel "acknowledged" frame,
// the server-confirmed echo of a prior acknowledge action.
type AckPayload struct {
	AlertID string `json:"alert_id"`
}

// Control is an outbound message on the alerts channel.
type Control struct {
	Action  string `json:"action"`
	AlertID string `json:"alert_id,omitempty"`
}

// Control actions.
const (
	ActionAcknowledge = "acknowledge"
	ActionStats       = "stats"
)
