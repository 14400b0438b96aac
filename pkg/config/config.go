package config

type Config struct {
	CaptureWSURL string
	AlertsWSURL  string
	APIBaseURL   string
	SettingsPath string
	Reconnect    ReconnectConfig
	StatusPoll   StatusPollConfig
	Timeouts     TimeoutConfig
}

type ReconnectConfig struct {
	DelaySeconds int
	// MaxAttempts caps consecutive reconnect attempts per channel.
	// 0 means retry forever at the fixed delay, the observed default.
	MaxAttempts int
}

type StatusPollConfig struct {
	IntervalSeconds int
}

type TimeoutConfig struct {
	DialSeconds    int
	RequestSeconds int
}

// Load loads configuration from CLI flags and environment variables
// CLI flags take precedence over environment variables
func Load() (*Config, error) {
	// Parse CLI flags
	flagSource, showHelp := parseCLIFlags()

	if showHelp {
		printUsage()
		return nil, nil // Return nil to indicate help was shown
	}

	// Create resolver with precedence: CLI flags > Environment variables
	resolver := NewConfigResolver(flagSource, &EnvSource{})

	// Build configuration using resolver
	cfg := &Config{
		CaptureWSURL: resolver.ResolveString(KeyCaptureWSURL, ""),
		AlertsWSURL:  resolver.ResolveString(KeyAlertsWSURL, ""),
		APIBaseURL:   resolver.ResolveString(KeyAPIBaseURL, ""),
		SettingsPath: resolver.ResolveString(KeySettingsPath, DefaultSettingsPath),
		Reconnect: ReconnectConfig{
			DelaySeconds: resolver.ResolveInt(KeyReconnectDelaySeconds, DefaultReconnectDelaySeconds),
			MaxAttempts:  resolver.ResolveInt(KeyReconnectMaxAttempts, DefaultReconnectMaxAttempts),
		},
		StatusPoll: StatusPollConfig{
			IntervalSeconds: resolver.ResolveInt(KeyStatusPollSeconds, DefaultStatusPollSeconds),
		},
		Timeouts: TimeoutConfig{
			DialSeconds:    resolver.ResolveInt(KeyTimeoutDialSeconds, DefaultTimeoutDialSeconds),
			RequestSeconds: resolver.ResolveInt(KeyTimeoutRequestSeconds, DefaultTimeoutRequestSeconds),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
