package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Severity is the ordered alert severity scale. The zero value is
// SeverityInfo so an absent field decodes to the lowest level.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = map[Severity]string{
	SeverityInfo:     "info",
	SeverityLow:      "low",
	SeverityMedium:   "medium",
	SeverityHigh:     "high",
	SeverityCritical: "critical",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return fmt.Sprintf("severity(%d)", int(s))
}

// ParseSeverity maps a wire string to a Severity. Matching is
// case-insensitive; unknown values report an error.
func ParseSeverity(raw string) (Severity, error) {
	lower := strings.ToLower(raw)
	for sev, name := range severityNames {
		if name == lower {
			return sev, nil
		}
	}
	return SeverityInfo, fmt.Errorf("unknown severity %q", raw)
}

func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	sev, err := ParseSeverity(raw)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
