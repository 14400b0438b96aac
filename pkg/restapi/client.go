// Package restapi is the HTTP client for the capture backend's REST
// surface. The live channels in pkg/stream carry the push traffic; this
// client covers seeding, capture control and alert management.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"netwatch-client/pkg/model"
)

// ErrNotFound is returned when the backend reports 404 for a resource.
var ErrNotFound = errors.New("not found")

const DefaultRequestTimeout = 10 * time.Second

// Client talks to the backend REST API. Methods return errors to the
// caller; nothing here retries or logs.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// CaptureStatus mirrors the backend's capture state report.
type CaptureStatus struct {
	IsRunning       bool    `json:"is_running"`
	PacketsCaptured int     `json:"packets_captured"`
	Interface       *string `json:"interface"`
	Filter          *string `json:"filter"`
}

// StartCaptureOptions narrows what the capture engine listens to.
// Zero values mean backend defaults.
type StartCaptureOptions struct {
	Interface    string
	PacketFilter string
	MaxPackets   int
}

// AlertQuery filters ListAlerts. Zero values are omitted from the request.
type AlertQuery struct {
	Type         string
	Severity     string
	Acknowledged *bool
	Limit        int
}

// Status fetches the current capture state.
func (c *Client) Status(ctx context.Context) (*CaptureStatus, error) {
	var status CaptureStatus
	if err := c.get(ctx, "/capture/status", &status); err != nil {
		return nil, fmt.Errorf("failed to fetch capture status: %w", err)
	}
	return &status, nil
}

// Interfaces lists the capture interfaces the backend can listen on.
func (c *Client) Interfaces(ctx context.Context) ([]string, error) {
	var resp struct {
		Interfaces []string `json:"interfaces"`
	}
	if err := c.get(ctx, "/capture/interfaces", &resp); err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	return resp.Interfaces, nil
}

// StartCapture asks the backend to begin capturing.
func (c *Client) StartCapture(ctx context.Context, opts StartCaptureOptions) error {
	body := map[string]any{}
	if opts.Interface != "" {
		body["interface"] = opts.Interface
	}
	if opts.PacketFilter != "" {
		body["packet_filter"] = opts.PacketFilter
	}
	if opts.MaxPackets > 0 {
		body["max_packets"] = opts.MaxPackets
	}
	if err := c.post(ctx, "/capture/start", body, nil); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}
	return nil
}

// StopCapture asks the backend to stop capturing.
func (c *Client) StopCapture(ctx context.Context) error {
	if err := c.post(ctx, "/capture/stop", nil, nil); err != nil {
		return fmt.Errorf("failed to stop capture: %w", err)
	}
	return nil
}

// ClearPackets drops the backend's captured packet history.
func (c *Client) ClearPackets(ctx context.Context) error {
	if err := c.post(ctx, "/capture/clear", nil, nil); err != nil {
		return fmt.Errorf("failed to clear packets: %w", err)
	}
	return nil
}

// ListAlerts fetches alerts matching the query, newest first.
func (c *Client) ListAlerts(ctx context.Context, q AlertQuery) ([]model.Alert, error) {
	params := url.Values{}
	if q.Type != "" {
		params.Set("alert_type", q.Type)
	}
	if q.Severity != "" {
		params.Set("severity", q.Severity)
	}
	if q.Acknowledged != nil {
		params.Set("acknowledged", strconv.FormatBool(*q.Acknowledged))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	path := "/alerts"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var alerts []model.Alert
	if err := c.get(ctx, path, &alerts); err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	return alerts, nil
}

// AlertStats fetches the server-side alert statistics.
func (c *Client) AlertStats(ctx context.Context) (*model.AlertStats, error) {
	var stats model.AlertStats
	if err := c.get(ctx, "/alerts/stats", &stats); err != nil {
		return nil, fmt.Errorf("failed to fetch alert stats: %w", err)
	}
	return &stats, nil
}

// AcknowledgeAlert marks one alert acknowledged on the server.
func (c *Client) AcknowledgeAlert(ctx context.Context, alertID string) error {
	if err := c.post(ctx, "/alerts/"+url.PathEscape(alertID)+"/acknowledge", nil, nil); err != nil {
		return fmt.Errorf("failed to acknowledge alert %s: %w", alertID, err)
	}
	return nil
}

// AcknowledgeAll marks every alert acknowledged and returns how many
// the server touched.
func (c *Client) AcknowledgeAll(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.post(ctx, "/alerts/acknowledge-all", nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to acknowledge all alerts: %w", err)
	}
	return resp.Count, nil
}

// DeleteAlert removes one alert on the server.
func (c *Client) DeleteAlert(ctx context.Context, alertID string) error {
	if err := c.do(ctx, http.MethodDelete, "/alerts/"+url.PathEscape(alertID), nil, nil); err != nil {
		return fmt.Errorf("failed to delete alert %s: %w", alertID, err)
	}
	return nil
}

// ClearAlerts removes every alert on the server and returns the count.
func (c *Client) ClearAlerts(ctx context.Context) (int, error) {
	var resp struct {
		Count int `json:"count"`
	}
	if err := c.do(ctx, http.MethodDelete, "/alerts", nil, &resp); err != nil {
		return 0, fmt.Errorf("failed to clear alerts: %w", err)
	}
	return resp.Count, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, errorDetail(resp.Body))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// errorDetail pulls the backend's {"detail": ...} message out of an
// error response, falling back to the raw body.
func errorDetail(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return "no detail"
	}
	var parsed struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &parsed); err == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return string(raw)
}
