package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"netwatch-client/pkg/client"
	"netwatch-client/pkg/config"
	"netwatch-client/pkg/telemetry"
	"netwatch-client/pkg/version"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		info := version.Info()
		fmt.Printf("netwatch version %s, commit %s, built %s\n", info.Version, info.Commit, info.Built)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg == nil {
		// Help was shown
		return
	}

	logger := log.New(os.Stderr, "", log.LstdFlags)

	settings, err := config.OpenSettings(cfg.SettingsPath, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading settings: %v\n", err)
		os.Exit(1)
	}
	settings.Watch()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	agg := telemetry.NewAggregator(telemetry.RealClock{}, telemetry.DefaultConfig())
	agg.Start(ctx)
	defer agg.Stop()

	cl, err := client.New(client.Options{
		Config:    cfg,
		Settings:  settings,
		Logger:    logger,
		Publisher: agg,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating client: %v\n", err)
		os.Exit(1)
	}
	defer cl.Close()

	if err := cl.Start(ctx); err != nil {
		// Reconnects are already scheduled; report and keep running.
		logger.Printf("startup: %v", err)
	}

	cli := NewCLI(agg, cfg, logger)
	if err := cli.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
