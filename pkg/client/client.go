// Package client wires the two push channels, the REST collaborator and
// the local state holders into one dashboard-facing facade.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"netwatch-client/pkg/alerts"
	"netwatch-client/pkg/capture"
	"netwatch-client/pkg/clock"
	"netwatch-client/pkg/config"
	"netwatch-client/pkg/model"
	"netwatch-client/pkg/restapi"
	"netwatch-client/pkg/stream"
	"netwatch-client/pkg/telemetry"
)

// Channel names used in logs and telemetry.
const (
	ChannelCapture = "capture"
	ChannelAlerts  = "alerts"
)

// Options configures a Client. Config and Settings are required; the
// rest default to production implementations.
type Options struct {
	Config    *config.Config
	Settings  *config.SettingsStore
	Logger    *log.Logger
	Publisher telemetry.TelemetryPublisher

	// Dialer and Clock are test seams.
	Dialer stream.Dialer
	Clock  clock.Clock
}

// Client owns the capture and alerts channels, the packet buffer, the
// alert store, the toast grouper and the capture status mirror.
type Client struct {
	captureConn *stream.Conn
	alertsConn  *stream.Conn

	packets *capture.PacketBuffer
	status  *capture.StatusMirror
	store   *alerts.Store
	toasts  *alerts.Grouper
	api     *restapi.Client

	settings     *config.SettingsStore
	pollInterval time.Duration
	logger       *log.Logger
	pub          telemetry.TelemetryPublisher
}

func New(opts Options) (*Client, error) {
	if opts.Config == nil {
		return nil, errors.New("client: Config is required")
	}
	if opts.Settings == nil {
		return nil, errors.New("client: Settings is required")
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Publisher == nil {
		opts.Publisher = telemetry.NewNoopPublisher()
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}

	cfg := opts.Config
	api := restapi.New(cfg.APIBaseURL, time.Duration(cfg.Timeouts.RequestSeconds)*time.Second)

	c := &Client{
		packets:      capture.NewPacketBuffer(capture.DefaultPacketCapacity),
		store:        alerts.NewStore(alerts.DefaultStoreCapacity),
		api:          api,
		settings:     opts.Settings,
		pollInterval: time.Duration(cfg.StatusPoll.IntervalSeconds) * time.Second,
		logger:       opts.Logger,
		pub:          opts.Publisher,
	}

	c.status = capture.NewStatusMirror(func(ctx context.Context) (bool, error) {
		st, err := api.Status(ctx)
		if err != nil {
			return false, err
		}
		return st.IsRunning, nil
	}, opts.Clock, opts.Logger, opts.Publisher)

	c.toasts = alerts.NewGrouper(func() alerts.Policy {
		s := opts.Settings.Current()
		return alerts.Policy{
			Enabled:       s.Notifications,
			Filter:        s.NotificationSeverityFilter,
			MaxToasts:     s.MaxToasts,
			ToastDuration: time.Duration(s.ToastDurationSeconds) * time.Second,
		}
	}, opts.Clock, opts.Logger, opts.Publisher)

	streamOpts := stream.Options{
		Dialer:               opts.Dialer,
		Clock:                opts.Clock,
		ReconnectDelay:       time.Duration(cfg.Reconnect.DelaySeconds) * time.Second,
		MaxReconnectAttempts: cfg.Reconnect.MaxAttempts,
		DialTimeout:          time.Duration(cfg.Timeouts.DialSeconds) * time.Second,
		Logger:               opts.Logger,
		Publisher:            opts.Publisher,
	}
	c.captureConn = stream.New(ChannelCapture, cfg.CaptureWSURL, streamOpts)
	c.alertsConn = stream.New(ChannelAlerts, cfg.AlertsWSURL, streamOpts)

	c.registerCaptureHandlers()
	c.registerAlertHandlers()

	return c, nil
}

func (c *Client) registerCaptureHandlers() {
	c.captureConn.Handle(model.FramePacket, func(data json.RawMessage) {
		var p model.Packet
		if err := json.Unmarshal(data, &p); err != nil {
			c.logger.Printf("Dropping malformed packet frame: %v", err)
			c.pub.Publish(telemetry.NewClientError(err, "packet_parse", telemetry.ErrorSeverityWarning))
			return
		}
		c.packets.Append(p)
		c.pub.Publish(telemetry.NewPacketCaptured(p.Protocol, p.Length))
	})

	c.captureConn.Handle(model.FrameStatus, func(data json.RawMessage) {
		var s model.StatusPayload
		if err := json.Unmarshal(data, &s); err != nil {
			c.logger.Printf("Dropping malformed status frame: %v", err)
			c.pub.Publish(telemetry.NewClientError(err, "status_parse", telemetry.ErrorSeverityWarning))
			return
		}
		c.status.SetRunning(s.IsRunning)
	})

	// Aggregate counters are not modeled client-side; the frame still
	// counts toward channel telemetry via the dispatch path.
	c.captureConn.Handle(model.FrameStats, func(json.RawMessage) {})
}

func (c *Client) registerAlertHandlers() {
	c.alertsConn.Handle(model.FrameAlert, func(data json.RawMessage) {
		var a model.Alert
		if err := json.Unmarshal(data, &a); err != nil {
			c.logger.Printf("Dropping malformed alert frame: %v", err)
			c.pub.Publish(telemetry.NewClientError(err, "alert_parse", telemetry.ErrorSeverityWarning))
			return
		}
		c.pub.Publish(telemetry.NewAlertReceived(a.Type, a.Severity.String()))
		// Store first, so a record always exists by the time the toast shows.
		c.store.Ingest(a)
		c.toasts.Ingest(a)
	})

	c.alertsConn.Handle(model.FrameStats, func(data json.RawMessage) {
		var stats model.AlertStats
		if err := json.Unmarshal(data, &stats); err != nil {
			c.logger.Printf("Dropping malformed alert stats frame: %v", err)
			c.pub.Publish(telemetry.NewClientError(err, "alert_stats_parse", telemetry.ErrorSeverityWarning))
			return
		}
		c.store.SetServerStats(stats)
	})

	c.alertsConn.Handle(model.FrameAcknowledged, func(data json.RawMessage) {
		var ack model.AckPayload
		if err := json.Unmarshal(data, &ack); err != nil {
			c.logger.Printf("Dropping malformed acknowledged frame: %v", err)
			c.pub.Publish(telemetry.NewClientError(err, "ack_parse", telemetry.ErrorSeverityWarning))
			return
		}
		c.store.ConfirmAck(ack.AlertID)
	})
}

// Start seeds local state from the REST API, opens both channels and
// begins the status poll backstop. The channels are independent failure
// domains: a failed dial schedules its own retry and does not stop the
// other channel. The returned error reports initial dial failures only.
func (c *Client) Start(ctx context.Context) error {
	if err := c.status.Seed(ctx); err != nil {
		c.logger.Printf("Capture status seed failed, waiting for status frames: %v", err)
		c.pub.Publish(telemetry.NewClientError(err, "status_seed", telemetry.ErrorSeverityWarning))
	}
	if err := c.SeedAlerts(ctx); err != nil {
		c.logger.Printf("Alert seed failed, starting empty: %v", err)
		c.pub.Publish(telemetry.NewClientError(err, "alert_seed", telemetry.ErrorSeverityWarning))
	}

	captureErr := c.captureConn.Connect(ctx)
	alertsErr := c.alertsConn.Connect(ctx)

	if c.pollInterval > 0 {
		c.status.StartPolling(c.pollInterval)
	}

	return errors.Join(captureErr, alertsErr)
}

// SeedAlerts initializes the alert store from the REST list endpoint.
func (c *Client) SeedAlerts(ctx context.Context) error {
	list, err := c.api.ListAlerts(ctx, restapi.AlertQuery{Limit: alerts.DefaultStoreCapacity})
	if err != nil {
		return err
	}
	c.store.SeedFromList(list)
	return nil
}

// Close tears the client down: both channels disconnect, the status
// poll stops and every pending toast timer is cancelled.
func (c *Client) Close() {
	c.captureConn.Disconnect()
	c.alertsConn.Disconnect()
	c.status.Stop()
	c.toasts.Dispose()
}

// Acknowledge flips the alert locally, then tells the server. On a send
// failure the local flip is rolled back and the error returned.
func (c *Client) Acknowledge(ctx context.Context, alertID string) error {
	c.store.Acknowledge(alertID)
	err := c.alertsConn.Send(ctx, model.Control{Action: model.ActionAcknowledge, AlertID: alertID})
	if err != nil {
		c.store.RollbackAck(alertID)
		return fmt.Errorf("failed to acknowledge alert %s: %w", alertID, err)
	}
	return nil
}

// RequestStats asks the alerts channel for a fresh stats push.
func (c *Client) RequestStats(ctx context.Context) error {
	if err := c.alertsConn.Send(ctx, model.Control{Action: model.ActionStats}); err != nil {
		return fmt.Errorf("failed to request alert stats: %w", err)
	}
	return nil
}

// StartCapture starts the backend capture engine, then refreshes the
// status mirror rather than assuming the transition happened.
func (c *Client) StartCapture(ctx context.Context, opts restapi.StartCaptureOptions) error {
	if err := c.api.StartCapture(ctx, opts); err != nil {
		return err
	}
	if err := c.status.Seed(ctx); err != nil {
		c.logger.Printf("Status refresh after capture start failed: %v", err)
	}
	return nil
}

// StopCapture stops the backend capture engine.
func (c *Client) StopCapture(ctx context.Context) error {
	if err := c.api.StopCapture(ctx); err != nil {
		return err
	}
	if err := c.status.Seed(ctx); err != nil {
		c.logger.Printf("Status refresh after capture stop failed: %v", err)
	}
	return nil
}

// ResetCapture stops the capture and clears packet history on both
// sides. The local buffer clears even if the server-side clear fails.
func (c *Client) ResetCapture(ctx context.Context) error {
	stopErr := c.StopCapture(ctx)
	clearErr := c.api.ClearPackets(ctx)
	c.packets.Clear()
	return errors.Join(stopErr, clearErr)
}

// Interfaces lists the backend's capture interfaces.
func (c *Client) Interfaces(ctx context.Context) ([]string, error) {
	return c.api.Interfaces(ctx)
}

// Accessors for the state holders the dashboard reads.

func (c *Client) Packets() *capture.PacketBuffer { return c.packets }
func (c *Client) Alerts() *alerts.Store          { return c.store }
func (c *Client) Toasts() *alerts.Grouper        { return c.toasts }
func (c *Client) Status() *capture.StatusMirror  { return c.status }

// CaptureState reports the capture channel's connection state.
func (c *Client) CaptureState() stream.State { return c.captureConn.State() }

// AlertsState reports the alerts channel's connection state.
func (c *Client) AlertsState() stream.State { return c.alertsConn.State() }

// OnCaptureStateChange subscribes to capture channel state transitions.
func (c *Client) OnCaptureStateChange(fn func(stream.State)) { c.captureConn.OnStateChange(fn) }

// OnAlertsStateChange subscribes to alerts channel state transitions.
func (c *Client) OnAlertsStateChange(fn func(stream.State)) { c.alertsConn.OnStateChange(fn) }
