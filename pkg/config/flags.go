package config

import (
	"flag"
	"fmt"
)

// parseCLIFlags parses command-line flags and returns a FlagSource and help flag
func parseCLIFlags() (*FlagSource, bool) {
	flagSource := NewFlagSource()

	// Define CLI flags
	captureWSURL := flag.String(FlagCaptureWSURL, "", HelpCaptureWSURL)
	alertsWSURL := flag.String(FlagAlertsWSURL, "", HelpAlertsWSURL)
	apiBaseURL := flag.String(FlagAPIBaseURL, "", HelpAPIBaseURL)
	settingsPath := flag.String(FlagSettingsPath, "", HelpSettingsPath)
	reconnectDelaySeconds := flag.Int(FlagReconnectDelaySeconds, 0, HelpReconnectDelaySeconds)
	reconnectMaxAttempts := flag.Int(FlagReconnectMaxAttempts, 0, HelpReconnectMaxAttempts)
	statusPollSeconds := flag.Int(FlagStatusPollSeconds, -1, HelpStatusPollSeconds)
	timeoutDialSeconds := flag.Int(FlagTimeoutDialSeconds, 0, HelpTimeoutDialSeconds)
	timeoutRequestSeconds := flag.Int(FlagTimeoutRequestSeconds, 0, HelpTimeoutRequestSeconds)
	help := flag.Bool(FlagHelp, false, HelpShowHelp)

	flag.Parse()

	if *help {
		return flagSource, true
	}

	// Store non-zero/non-empty values in flag source
	if *captureWSURL != "" {
		flagSource.Set(KeyCaptureWSURL, *captureWSURL)
	}
	if *alertsWSURL != "" {
		flagSource.Set(KeyAlertsWSURL, *alertsWSURL)
	}
	if *apiBaseURL != "" {
		flagSource.Set(KeyAPIBaseURL, *apiBaseURL)
	}
	if *settingsPath != "" {
		flagSource.Set(KeySettingsPath, *settingsPath)
	}
	if *reconnectDelaySeconds != 0 {
		flagSource.Set(KeyReconnectDelaySeconds, *reconnectDelaySeconds)
	}
	if *reconnectMaxAttempts != 0 {
		flagSource.Set(KeyReconnectMaxAttempts, *reconnectMaxAttempts)
	}
	// 0 is meaningful here: it disables polling entirely
	if *statusPollSeconds >= 0 {
		flagSource.Set(KeyStatusPollSeconds, *statusPollSeconds)
	}
	if *timeoutDialSeconds != 0 {
		flagSource.Set(KeyTimeoutDialSeconds, *timeoutDialSeconds)
	}
	if *timeoutRequestSeconds != 0 {
		flagSource.Set(KeyTimeoutRequestSeconds, *timeoutRequestSeconds)
	}

	return flagSource, false
}

// printUsage prints the usage message
func printUsage() {
	fmt.Printf("%s - %s\n", AppName, AppDescription)
	fmt.Println()
	fmt.Printf("%s\n", HelpUsage)
	fmt.Printf("  %s\n", UsageFormat)
	fmt.Println()
	fmt.Printf("%s\n", HelpOptions)
	fmt.Printf("  --%s string           %s\n", FlagCaptureWSURL, HelpCaptureWSURL)
	fmt.Printf("  --%s string            %s\n", FlagAlertsWSURL, HelpAlertsWSURL)
	fmt.Printf("  --%s string           %s\n", FlagAPIBaseURL, HelpAPIBaseURL)
	fmt.Printf("  --%s string            %s (default: %s)\n", FlagSettingsPath, HelpSettingsPath, DefaultSettingsPath)
	fmt.Printf("  --%s int  %s (default: %d)\n", FlagReconnectDelaySeconds, HelpReconnectDelaySeconds, DefaultReconnectDelaySeconds)
	fmt.Printf("  --%s int   %s (default: %d)\n", FlagReconnectMaxAttempts, HelpReconnectMaxAttempts, DefaultReconnectMaxAttempts)
	fmt.Printf("  --%s int      %s (default: %d)\n", FlagStatusPollSeconds, HelpStatusPollSeconds, DefaultStatusPollSeconds)
	fmt.Printf("  --%s int     %s (default: %d)\n", FlagTimeoutDialSeconds, HelpTimeoutDialSeconds, DefaultTimeoutDialSeconds)
	fmt.Printf("  --%s int  %s (default: %d)\n", FlagTimeoutRequestSeconds, HelpTimeoutRequestSeconds, DefaultTimeoutRequestSeconds)
	fmt.Printf("  --%s                          %s\n", FlagHelp, HelpShowHelp)
	fmt.Println()
	fmt.Printf("%s\n", HelpEnvironmentVars)
	fmt.Printf("  %-26s %s\n", KeyCaptureWSURL, HelpCaptureWSURL)
	fmt.Printf("  %-26s %s\n", KeyAlertsWSURL, HelpAlertsWSURL)
	fmt.Printf("  %-26s %s\n", KeyAPIBaseURL, HelpAPIBaseURL)
	fmt.Printf("  %-26s %s\n", KeySettingsPath, HelpSettingsPath)
	fmt.Printf("  %-26s %s\n", KeyReconnectDelaySeconds, HelpReconnectDelaySeconds)
	fmt.Printf("  %-26s %s\n", KeyReconnectMaxAttempts, HelpReconnectMaxAttempts)
	fmt.Printf("  %-26s %s\n", KeyStatusPollSeconds, HelpStatusPollSeconds)
	fmt.Printf("  %-26s %s\n", KeyTimeoutDialSeconds, HelpTimeoutDialSeconds)
	fmt.Printf("  %-26s %s\n", KeyTimeoutRequestSeconds, HelpTimeoutRequestSeconds)
	fmt.Println()
	fmt.Printf("%s\n", HelpNote)
}
