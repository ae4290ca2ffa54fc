package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/muurk/relaydeck/internal/logging"
)

// DefaultTimeout is the default HTTP request timeout
const DefaultTimeout = 10 * time.Second

// Client is the typed HTTP client for the hub backend. Each call performs
// exactly one request: retry policy belongs to the caller, not here.
type Client struct {
	// BaseURL is the hub base URL (e.g., "http://hub.lan:5001")
	BaseURL string

	// HTTPClient is the underlying HTTP client
	HTTPClient *http.Client
}

// NewClient creates a client for the hub at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// SetTimeout sets the HTTP request timeout
func (c *Client) SetTimeout(timeout time.Duration) {
	c.HTTPClient.Timeout = timeout
}

// ListDevices retrieves all registered devices in the hub's listing order
func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var devices []Device
	if err := c.getJSON(ctx, "/api/devices", &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// FetchAllStates retrieves the current relay states for every device the hub
// has polled
func (c *Client) FetchAllStates(ctx context.Context) (Snapshot, error) {
	var wire wireStates
	if err := c.getJSON(ctx, "/api/states", &wire); err != nil {
		return nil, err
	}
	return decodeSnapshot(wire), nil
}

// CreateDevice registers a new relay board with the hub. The hub probes the
// board for its relay count before accepting it, so rejection messages
// (duplicate address, unreachable board) are user-facing.
func (c *Client) CreateDevice(ctx context.Context, name, ip, room string) (*Device, error) {
	payload := map[string]string{"name": name, "ip": ip, "room": room}

	var device Device
	if err := c.postJSON(ctx, "/api/devices", payload, &device, true); err != nil {
		return nil, err
	}
	return &device, nil
}

// DeleteDevice removes a device from the hub's registry
func (c *Client) DeleteDevice(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.BaseURL+"/api/devices/"+id, nil)
	if err != nil {
		return NewTransportError("failed to create DELETE request", err)
	}
	return c.do(req, nil, false)
}

// SetRelay switches a single relay on or off
func (c *Client) SetRelay(ctx context.Context, id string, index int, on bool) error {
	path := fmt.Sprintf("/api/devices/%s/relay/%d", id, index)
	payload := map[string]string{"state": stateString(on)}
	return c.postJSON(ctx, path, payload, nil, false)
}

// RenameRelay updates a relay's display name. Call sites treat this as
// fire-and-forget; the error return exists for completeness and tests.
func (c *Client) RenameRelay(ctx context.Context, id string, index int, name string) error {
	path := fmt.Sprintf("/api/devices/%s/relay_name", id)
	payload := map[string]interface{}{"relayIndex": index, "name": name}
	return c.postJSON(ctx, path, payload, nil, false)
}

// SendChatMessage submits a chat message to the assistant. The reply arrives
// later over the push channel, not in the response body.
func (c *Client) SendChatMessage(ctx context.Context, text string) error {
	payload := map[string]string{"message": text}
	return c.postJSON(ctx, "/api/chat", payload, nil, false)
}

// getJSON performs a GET request and decodes the response body into out
func (c *Client) getJSON(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return NewTransportError("failed to create GET request", err)
	}
	return c.do(req, out, false)
}

// postJSON performs a POST request with a JSON body. When validationAware is
// set, a non-2xx response carrying an {"error": ...} body becomes a
// ValidationError with the hub's message; otherwise every failure is a
// transport error.
func (c *Client) postJSON(ctx context.Context, path string, payload interface{}, out interface{}, validationAware bool) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return NewTransportError("failed to encode request body", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return NewTransportError("failed to create POST request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out, validationAware)
}

func (c *Client) do(req *http.Request, out interface{}, validationAware bool) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logging.LogAPICall(req.Method, req.URL.Path, 0, err)
		return NewTransportError("hub unreachable", err)
	}
	defer func() { _ = resp.Body.Close() }()

	logging.LogAPICall(req.Method, req.URL.Path, resp.StatusCode, nil)

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewTransportError("failed to read response body", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if validationAware {
			if msg := errorMessage(raw); msg != "" {
				return NewValidationError(resp.StatusCode, msg)
			}
		}
		return NewHTTPError(resp.StatusCode, fmt.Sprintf("unexpected status code: %d", resp.StatusCode))
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return NewTransportError("failed to parse hub response", err)
		}
	}

	return nil
}

// errorMessage extracts the hub's {"error": "..."} rejection message, if any
func errorMessage(body []byte) string {
	var wire struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &wire); err != nil {
		return ""
	}
	return wire.Error
}
