package model

import (
	"encoding/json"
	"testing"
)

func TestSeverityOrdering(t *testing.T) {
	// The filter logic relies on this ordering
	ordered := []Severity{SeverityInfo, SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] >= ordered[i] {
			t.Errorf("expected %v < %v", ordered[i-1], ordered[i])
		}
	}
}

func TestParseSeverity(t *testing.T) {
	cases := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"info", SeverityInfo, false},
		{"low", SeverityLow, false},
		{"medium", SeverityMedium, false},
		{"high", SeverityHigh, false},
		{"critical", SeverityCritical, false},
		{"CRITICAL", SeverityCritical, false},
		{"High", SeverityHigh, false},
		{"urgent", 0, true},
		{"", 0, true},
	}

	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseSeverity(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Errorf("expected error for %q", tc.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("ParseSeverity(%q) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}

func TestSeverityJSON(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		raw, err := json.Marshal(SeverityHigh)
		if err != nil {
			t.Fatal(err)
		}
		if string(raw) != `"high"` {
			t.Errorf(`expected "high", got %s`, raw)
		}

		var s Severity
		if err := json.Unmarshal(raw, &s); err != nil {
			t.Fatal(err)
		}
		if s != SeverityHigh {
			t.Errorf("expected SeverityHigh, got %v", s)
		}
	})

	t.Run("unknown severity fails decode", func(t *testing.T) {
		var s Severity
		if err := json.Unmarshal([]byte(`"mega"`), &s); err == nil {
			t.Error("expected error for unknown severity")
		}
	})
}
