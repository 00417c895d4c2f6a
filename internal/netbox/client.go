// Package netbox is a minimal client for the NetBox inventory API, covering
// only the operations discovery reconciliation needs. When NetBox is not
// configured the package degrades to a no-op client so the service can run in
// simulate-only mode.
package netbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultTimeout bounds every NetBox request.
const DefaultTimeout = 10 * time.Second

// Inventory is the capability surface the reconciliation engine depends on.
type Inventory interface {
	// FindDeviceByName looks a device up by exact name. A nil device with a
	// nil error means no match.
	FindDeviceByName(ctx context.Context, name string) (*Device, error)

	// CreateDevice creates a device and returns the created record.
	CreateDevice(ctx context.Context, payload DevicePayload) (*Device, error)

	// UpdateDevice patches an existing device.
	UpdateDevice(ctx context.Context, id int64, patch DevicePatch) (*Device, error)

	// CreateInterface creates an interface linked to a device.
	CreateInterface(ctx context.Context, payload InterfacePayload) (*Interface, error)

	// CreateIPAddress creates an IP address, optionally assigned to an interface.
	CreateIPAddress(ctx context.Context, payload IPAddressPayload) (*IPAddress, error)
}

// APIError is returned for any non-2xx NetBox response. Requests are never
// retried; the caller records the failure and moves on.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("netbox %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// Config holds the connection settings for a NetBox instance.
type Config struct {
	URL       string        // Base URL, e.g. https://netbox.example.com
	Token     string        // API token
	Timeout   time.Duration // Per-request timeout; DefaultTimeout if zero
	RateLimit float64       // Requests per second; 0 disables client-side limiting
}

// Configured reports whether both the base URL and token are present.
func (c Config) Configured() bool {
	return c.URL != "" && c.Token != ""
}

// New returns an Inventory for cfg. An unconfigured cfg yields the no-op
// client: every operation logs and returns an empty result instead of
// touching the network.
func New(cfg Config, logger *zap.Logger) Inventory {
	if !cfg.Configured() {
		logger.Info("NetBox not configured, inventory writes will be simulated")
		return &Noop{logger: logger}
	}
	return NewClient(cfg, logger)
}

// Client talks to a live NetBox instance over HTTP.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// Compile-time interface guard.
var _ Inventory = (*Client)(nil)

// NewClient creates a Client for a configured NetBox instance.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		token:   cfg.Token,
		httpc:   &http.Client{Timeout: timeout},
		limiter: limiter,
		logger:  logger,
	}
}

func (c *Client) FindDeviceByName(ctx context.Context, name string) (*Device, error) {
	var list deviceList
	query := url.Values{"name": []string{name}}
	if err := c.do(ctx, http.MethodGet, "/api/dcim/devices/?"+query.Encode(), nil, &list); err != nil {
		return nil, err
	}
	if list.Count == 0 || len(list.Results) == 0 {
		return nil, nil
	}
	if list.Count > 1 {
		// Name is the natural key; multiple matches mean the remote inventory
		// holds duplicates. Take the first and flag it.
		c.logger.Warn("multiple devices matched name, using first",
			zap.String("name", name),
			zap.Int("count", list.Count),
		)
	}
	return &list.Results[0], nil
}

func (c *Client) CreateDevice(ctx context.Context, payload DevicePayload) (*Device, error) {
	var created Device
	if err := c.do(ctx, http.MethodPost, "/api/dcim/devices/", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) UpdateDevice(ctx context.Context, id int64, patch DevicePatch) (*Device, error) {
	var updated Device
	path := fmt.Sprintf("/api/dcim/devices/%d/", id)
	if err := c.do(ctx, http.MethodPatch, path, patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Client) CreateInterface(ctx context.Context, payload InterfacePayload) (*Interface, error) {
	var created Interface
	if err := c.do(ctx, http.MethodPost, "/api/dcim/interfaces/", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Client) CreateIPAddress(ctx context.Context, payload IPAddressPayload) (*IPAddress, error) {
	var created IPAddress
	if err := c.do(ctx, http.MethodPost, "/api/ipam/ip-addresses/", payload, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// do performs one request against NetBox. Non-2xx responses become an
// *APIError carrying the status and response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s request: %w", method, path, err)
	}
	req.Header.Set("Authorization", "Token "+c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("netbox %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s %s response: %w", method, path, err)
		}
	}
	return nil
}
