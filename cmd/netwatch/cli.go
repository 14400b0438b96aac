package main

import (
	"context"
	"log"
	"strings"
	"time"

	"netwatch-client/pkg/config"
	"netwatch-client/pkg/telemetry"
	"netwatch-client/pkg/utils"
)

// CLI represents the command-line interface runner
type CLI struct {
	telemetry telemetry.TelemetryReader
	config    *config.Config
	logger    *log.Logger

	// State
	lastSnapshot telemetry.Snapshot
	done         chan struct{}
}

// NewCLI creates a new command-line interface runner
func NewCLI(telemetryReader telemetry.TelemetryReader, cfg *config.Config, logger *log.Logger) *CLI {
	return &CLI{
		telemetry: telemetryReader,
		config:    cfg,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Run starts the CLI runner and blocks until shutdown
func (c *CLI) Run(ctx context.Context) error {
	c.logger.Printf("Starting Netwatch Client in quiet mode")
	c.logger.Printf("Capture channel: %s", c.config.CaptureWSURL)
	c.logger.Printf("Alerts channel: %s", c.config.AlertsWSURL)
	c.logger.Printf("API: %s", c.config.APIBaseURL)

	// Print periodic status updates
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.logger.Printf("Shutting down...")
			return nil
		case <-ticker.C:
			c.printStatus()
		case <-c.done:
			return nil
		}
	}
}

// SetError logs an error message
func (c *CLI) SetError(err string) {
	c.logger.Printf("ERROR: %s", err)
}

// Stop stops the CLI runner
func (c *CLI) Stop() {
	close(c.done)
}

// printStatus prints current telemetry status
func (c *CLI) printStatus() {
	snapshot := c.telemetry.Snapshot()

	// Only print if there are changes or significant activity
	if c.shouldPrintStatus(snapshot) {
		c.logger.Printf("Status - Frames: %s, packets: %s (%.1f/s), alerts: %s, errors: %d",
			utils.FormatNumber(snapshot.FramesReceived),
			utils.FormatNumber(snapshot.PacketsCaptured),
			snapshot.PacketsPerSecond,
			utils.FormatNumber(snapshot.AlertsReceived),
			snapshot.ErrorsTotal)

		// Print connection status
		c.logger.Printf("Connections - Capture: %t, Alerts: %t",
			snapshot.CaptureConnected,
			snapshot.AlertsConnected)

		// Print alert breakdown if there is one
		if len(snapshot.AlertsBySeverity) > 0 {
			c.logger.Printf("Alerts by severity: %s", formatCounts(snapshot.AlertsBySeverity))
		}
	}

	c.lastSnapshot = snapshot
}

// shouldPrintStatus determines if we should print a status update
func (c *CLI) shouldPrintStatus(snapshot telemetry.Snapshot) bool {
	// Always print first status
	if c.lastSnapshot.FramesReceived == 0 && c.lastSnapshot.PacketsCaptured == 0 {
		return true
	}

	// Print if traffic counts changed
	if snapshot.FramesReceived != c.lastSnapshot.FramesReceived ||
		snapshot.AlertsReceived != c.lastSnapshot.AlertsReceived {
		return true
	}

	// Print if there are errors
	if snapshot.ErrorsTotal > c.lastSnapshot.ErrorsTotal {
		return true
	}

	// Print if connection status changed
	if snapshot.CaptureConnected != c.lastSnapshot.CaptureConnected ||
		snapshot.AlertsConnected != c.lastSnapshot.AlertsConnected {
		return true
	}

	return false
}

// formatCounts renders a counter map as "critical=2 high=5" ordered by count
func formatCounts(counts map[string]uint64) string {
	parts := make([]string, 0, len(counts))
	for _, lc := range utils.SortCountsByLabel(counts) {
		parts = append(parts, lc.Label+"="+utils.FormatNumber(lc.Count))
	}
	return strings.Join(parts, " ")
}
