package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// HTTPClient matches the subset of http.Client used by Client.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// API is the backend surface consumed by the dashboard. *Client implements
// it; tests substitute fakes.
type API interface {
	SignIn(ctx context.Context, creds Credentials) (*SignInResult, error)
	AdminDevices(ctx context.Context, token string) ([]Device, error)
	AdminUsers(ctx context.Context, token string) ([]User, error)
	AdminLogs(ctx context.Context, token string) (string, error)
}

// Client talks to the tracker backend's REST endpoints.
type Client struct {
	base   *url.URL
	client HTTPClient
	logger *zap.Logger
}

// NewClient constructs a Client for the given backend base URL.
func NewClient(baseURL string, client HTTPClient, logger *zap.Logger) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.New("tracker: base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("tracker: parse base URL: %w", err)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		base:   parsed,
		client: client,
		logger: logger,
	}, nil
}

// SignIn exchanges credentials for a bearer token. A non-2xx response yields
// an *AuthError carrying the backend's message when present.
func (c *Client) SignIn(ctx context.Context, creds Credentials) (*SignInResult, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(creds); err != nil {
		return nil, fmt.Errorf("tracker: encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve("/signin"), &buf)
	if err != nil {
		return nil, fmt.Errorf("tracker: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracker: sign-in request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &AuthError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(resp.Body),
		}
	}

	var payload SignInResult
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("tracker: decode sign-in result: %w", err)
	}
	return &payload, nil
}

// AdminDevices lists all registered devices across users.
func (c *Client) AdminDevices(ctx context.Context, token string) ([]Device, error) {
	var devices []Device
	if err := c.getJSON(ctx, "/admin/devices", token, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// AdminUsers lists all registered users.
func (c *Client) AdminUsers(ctx context.Context, token string) ([]User, error) {
	var users []User
	if err := c.getJSON(ctx, "/admin/users", token, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// AdminLogs fetches the backend's raw newline-delimited log tail.
func (c *Client) AdminLogs(ctx context.Context, token string) (string, error) {
	resp, err := c.get(ctx, "/admin/logs", token)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("tracker: read log stream: %w", err)
	}
	return string(raw), nil
}

// Health probes the backend's health endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("/health"), nil)
	if err != nil {
		return fmt.Errorf("tracker: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("tracker: health request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &FetchError{StatusCode: resp.StatusCode}
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, token string, out any) error {
	resp, err := c.get(ctx, endpoint, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tracker: decode %s: %w", endpoint, err)
	}
	return nil
}

// get performs an authenticated fetch. Every protected call flows through
// here: bearer headers attached, non-2xx mapped to *FetchError.
func (c *Client) get(ctx context.Context, endpoint, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(endpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("tracker: build request: %w", err)
	}
	for key, values := range BearerHeader(token) {
		for _, v := range values {
			req.Header.Set(key, v)
		}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tracker: request failed: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		status := resp.StatusCode
		resp.Body.Close()
		c.logger.Warn("backend fetch rejected",
			zap.String("endpoint", endpoint),
			zap.Int("status", status))
		return nil, &FetchError{StatusCode: status}
	}
	return resp, nil
}

// resolve appends the endpoint to the base URL, keeping any path prefix the
// base carries (e.g. a backend mounted under /api).
func (c *Client) resolve(endpoint string) string {
	joined, err := url.JoinPath(c.base.String(), endpoint)
	if err != nil {
		return c.base.String()
	}
	return joined
}
