package config

// Configuration key constants
// These constants centralize all environment variable and configuration key
// names to eliminate magic strings and improve maintainability.

const (
	// Core service configuration keys
	KeyCaptureWSURL = "CAPTURE_WS_URL"
	KeyAlertsWSURL  = "ALERTS_WS_URL"
	KeyAPIBaseURL   = "API_BASE_URL"
	KeySettingsPath = "SETTINGS_PATH"

	// Reconnect configuration keys
	KeyReconnectDelaySeconds = "RECONNECT_DELAY_SECONDS"
	KeyReconnectMaxAttempts  = "RECONNECT_MAX_ATTEMPTS"

	// Status poll configuration keys
	KeyStatusPollSeconds = "STATUS_POLL_SECONDS"

	// Timeout configuration keys
	KeyTimeoutDialSeconds    = "TIMEOUT_DIAL_SECONDS"
	KeyTimeoutRequestSeconds = "TIMEOUT_REQUEST_SECONDS"
)

// Default values for configuration
const (
	// Reconnect defaults: fixed delay, unbounded attempts (0 = no cap).
	DefaultReconnectDelaySeconds = 5
	DefaultReconnectMaxAttempts  = 0

	// Status poll default; 0 disables the REST backstop.
	DefaultStatusPollSeconds = 30

	// Timeout defaults
	DefaultTimeoutDialSeconds    = 10
	DefaultTimeoutRequestSeconds = 10

	// Settings blob default location
	DefaultSettingsPath = "settings.json"
)

// CLI flag name constants
const (
	// CLI flag names (kebab-case for command line)
	FlagCaptureWSURL          = "capture-ws-url"
	FlagAlertsWSURL           = "alerts-ws-url"
	FlagAPIBaseURL            = "api-base-url"
	FlagSettingsPath          = "settings-path"
	FlagReconnectDelaySeconds = "reconnect-delay-seconds"
	FlagReconnectMaxAttempts  = "reconnect-max-attempts"
	FlagStatusPollSeconds     = "status-poll-seconds"
	FlagTimeoutDialSeconds    = "timeout-dial-seconds"
	FlagTimeoutRequestSeconds = "timeout-request-seconds"
	FlagHelp                  = "help"
)

// Help message constants
const (
	AppName        = "Netwatch Client"
	AppDescription = "Live telemetry and alert client for the capture dashboard backend"
	UsageFormat    = "netwatch [OPTIONS]"

	// Help descriptions
	HelpCaptureWSURL          = "Capture channel websocket URL (required)"
	HelpAlertsWSURL           = "Alerts channel websocket URL (required)"
	HelpAPIBaseURL            = "REST API base URL (required)"
	HelpSettingsPath          = "Path to the persisted settings blob"
	HelpReconnectDelaySeconds = "Fixed reconnect delay in seconds"
	HelpReconnectMaxAttempts  = "Reconnect attempt cap (0 = unbounded)"
	HelpStatusPollSeconds     = "Capture status poll interval in seconds (0 disables)"
	HelpTimeoutDialSeconds    = "Websocket dial timeout in seconds"
	HelpTimeoutRequestSeconds = "REST request timeout in seconds"
	HelpShowHelp              = "Show this help message"

	// Help section headers
	HelpOptions         = "Options:"
	HelpEnvironmentVars = "Environment Variables:"
	HelpUsage           = "Usage:"
	HelpNote            = "Note: CLI options override environment variables"
)
