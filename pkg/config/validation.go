package config

import "fmt"

func (c *Config) validate() error {
	if c.CaptureWSURL == "" {
		return fmt.Errorf("CAPTURE_WS_URL is required")
	}
	if c.AlertsWSURL == "" {
		return fmt.Errorf("ALERTS_WS_URL is required")
	}
	if c.APIBaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}
	if c.Reconnect.DelaySeconds <= 0 {
		return fmt.Errorf("RECONNECT_DELAY_SECONDS must be positive")
	}
	if c.Reconnect.MaxAttempts < 0 {
		return fmt.Errorf("RECONNECT_MAX_ATTEMPTS must not be negative")
	}
	if c.StatusPoll.IntervalSeconds < 0 {
		return fmt.Errorf("STATUS_POLL_SECONDS must not be negative")
	}
	if c.Timeouts.DialSeconds <= 0 {
		return fmt.Errorf("TIMEOUT_DIAL_SECONDS must be positive")
	}
	if c.Timeouts.RequestSeconds <= 0 {
		return fmt.Errorf("TIMEOUT_REQUEST_SECONDS must be positive")
	}
	return nil
}
