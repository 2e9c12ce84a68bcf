package oanda

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

	"github.com/rustyeddy/bandtrader/broker"
)

const (
	// PracticeURL is the URL for OANDA's practice/demo environment
	PracticeURL = "https://api-fxpractice.oanda.com"
	// LiveURL is the URL for OANDA's live trading environment
	LiveURL = "https://api-fxtrade.oanda.com"
)

var _ broker.Broker = (*Client)(nil)

// Client represents an OANDA v20 REST API client
type Client struct {
	baseURL    string
	token      string
	accountID  string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithAccountID pins the account used for order calls. Without it the
// first account visible to the token is used.
func WithAccountID(id string) Option {
	return func(c *Client) { c.accountID = id }
}

// WithHTTPClient replaces the default 30s timeout client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL points the client somewhere other than the OANDA hosts.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// NewClient creates a new OANDA API client
func NewClient(token string, practice bool, opts ...Option) *Client {
	baseURL := LiveURL
	if practice {
		baseURL = PracticeURL
	}

	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientForEnv creates a client for the named environment
// (practice, demo or live).
func NewClientForEnv(token, env string, opts ...Option) (*Client, error) {
	u, err := BaseURL(env)
	if err != nil {
		return nil, err
	}
	return NewClient(token, u == PracticeURL, opts...), nil
}

// BaseURL maps an environment name onto the REST host.
func BaseURL(env string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "practice", "demo":
		return PracticeURL, nil
	case "live":
		return LiveURL, nil
	default:
		return "", fmt.Errorf("unknown OANDA env %q (want practice|live)", env)
	}
}

// APIError is a non-2xx response from the REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// do sends one request and decodes a JSON response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.token == "" {
		return fmt.Errorf("oanda: missing token")
	}

	apiURL := c.baseURL + path
	if len(query) > 0 {
		apiURL += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, apiURL, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept-Datetime-Format", "RFC3339")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	hc := c.httpClient
	if hc == nil {
		hc = http.DefaultClient
	}

	resp, err := hc.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
