package model

import (
	"encoding/json"
	"time"
)

// AckState tracks the acknowledge round-trip. The optimistic local flip is
// AckPending until the server echoes confirmation; an explicit rejection
// rolls the alert back to AckNone.
type AckState int

const (
	AckNone AckState = iota
	AckPending
	AckConfirmed
)

// AlertSource attributes an alert to a process, address or domain.
// All fields are optional.
type AlertSource struct {
	ProcessName *string `json:"process_name,omitempty"`
	PID         *int    `json:"pid,omitempty"`
	SrcIP       *string `json:"src_ip,omitempty"`
	DstIP       *string `json:"dst_ip,omitempty"`
	SrcPort     *int    `json:"src_port,omitempty"`
	DstPort     *int    `json:"dst_port,omitempty"`
	Domain      *string `json:"domain,omitempty"`
}

// Alert is one alert record. The id is server-assigned and stable.
// Count is the server-side occurrence count for grouped alerts, distinct
// from the client-side toast merge count.
type Alert struct {
	ID             string                     `json:"id"`
	Timestamp      time.Time                  `json:"timestamp"`
	Type           string                     `json:"type"`
	Severity       Severity                   `json:"severity"`
	Title          string                     `json:"title"`
	Description    string                     `json:"description"`
	Source         *AlertSource               `json:"source,omitempty"`
	Metadata       map[string]json.RawMessage `json:"metadata,omitempty"`
	Acknowledged   bool                       `json:"acknowledged"`
	AcknowledgedAt *time.Time                 `json:"acknowledged_at,omitempty"`
	Count          int                        `json:"count,omitempty"`

	// AckState is local bookkeeping, never sent on the wire.
	AckState AckState `json:"-"`
}

// AlertStats is the server-pushed aggregate computed over the full
// server-side history. It can diverge from locally derived counts once the
// capped client list starts evicting.
type AlertStats struct {
	Total          int            `json:"total"`
	Unacknowledged int            `json:"unacknowledged"`
	BySeverity     map[string]int `json:"by_severity"`
	ByType         map[string]int `json:"by_type"`
	Recent24h      int            `json:"recent_24h"`
}
