package model

// Packet is one captured packet record as pushed on the capture channel.
// Records are immutable once created; the buffer never rewrites them.
type Packet struct {
	Timestamp      string  `json:"timestamp"`
	SrcIP          string  `json:"src_ip"`
	DstIP          string  `json:"dst_ip"`
	SrcPort        *int    `json:"src_port"`
	DstPort        *int    `json:"dst_port"`
	Protocol       string  `json:"protocol"`
	Length         int     `json:"length"`
	PayloadPreview *string `json:"payload_preview"`
	Flags          *string `json:"flags"`
	ProcessName    *string `json:"process_name,omitempty"`
	PID            *int    `json:"pid,omitempty"`
	DNSQueryID     *string `json:"dns_query_id,omitempty"`
	DNSDomain      *string `json:"dns_domain,omitempty"`
}
