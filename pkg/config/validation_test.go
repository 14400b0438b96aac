package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		CaptureWSURL: "ws://localhost:8000/ws/capture",
		AlertsWSURL:  "ws://localhost:8000/ws/alerts",
		APIBaseURL:   "http://localhost:8000/api",
		SettingsPath: DefaultSettingsPath,
		Reconnect: ReconnectConfig{
			DelaySeconds: DefaultReconnectDelaySeconds,
			MaxAttempts:  DefaultReconnectMaxAttempts,
		},
		StatusPoll: StatusPollConfig{IntervalSeconds: DefaultStatusPollSeconds},
		Timeouts: TimeoutConfig{
			DialSeconds:    DefaultTimeoutDialSeconds,
			RequestSeconds: DefaultTimeoutRequestSeconds,
		},
	}
}

func TestValidate(t *testing.T) {
	t.Run("valid config passes", func(t *testing.T) {
		if err := validConfig().validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	t.Run("required fields", func(t *testing.T) {
		cases := []struct {
			name   string
			mutate func(*Config)
			want   string
		}{
			{"missing capture url", func(c *Config) { c.CaptureWSURL = "" }, "CAPTURE_WS_URL"},
			{"missing alerts url", func(c *Config) { c.AlertsWSURL = "" }, "ALERTS_WS_URL"},
			{"missing api url", func(c *Config) { c.APIBaseURL = "" }, "API_BASE_URL"},
			{"zero reconnect delay", func(c *Config) { c.Reconnect.DelaySeconds = 0 }, "RECONNECT_DELAY_SECONDS"},
			{"negative max attempts", func(c *Config) { c.Reconnect.MaxAttempts = -1 }, "RECONNECT_MAX_ATTEMPTS"},
			{"negative poll interval", func(c *Config) { c.StatusPoll.IntervalSeconds = -1 }, "STATUS_POLL_SECONDS"},
			{"zero dial timeout", func(c *Config) { c.Timeouts.DialSeconds = 0 }, "TIMEOUT_DIAL_SECONDS"},
			{"zero request timeout", func(c *Config) { c.Timeouts.RequestSeconds = 0 }, "TIMEOUT_REQUEST_SECONDS"},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				cfg := validConfig()
				tc.mutate(cfg)
				err := cfg.validate()
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !strings.Contains(err.Error(), tc.want) {
					t.Errorf("expected error mentioning %s, got %v", tc.want, err)
				}
			})
		}
	})

	t.Run("zero poll interval disables polling", func(t *testing.T) {
		cfg := validConfig()
		cfg.StatusPoll.IntervalSeconds = 0
		if err := cfg.validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}
