package alpaca

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/portfolio/broker"
)

const (
	// PaperURL is the trading API of Alpaca's paper environment
	PaperURL = "https://paper-api.alpaca.markets"
	// LiveURL is the trading API of Alpaca's live environment
	LiveURL = "https://api.alpaca.markets"
	// DataURL is the market data API shared by both environments
	DataURL = "https://data.alpaca.markets"

	// DefaultFeed is the free market data feed.
	DefaultFeed = "iex"

	maxPageSize = 10000
)

// ErrAPI is returned for any non-200 answer from the API.
var ErrAPI = errors.New("alpaca api error")

// Client talks to the Alpaca trading and market data APIs on behalf of one
// account.
type Client struct {
	name       string
	baseURL    string
	dataURL    string
	keyID      string
	secretKey  string
	feed       string
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithDataURL overrides the market data endpoint.
func WithDataURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.dataURL = strings.TrimRight(u, "/")
		}
	}
}

// WithFeed selects the market data feed (iex or sip).
func WithFeed(feed string) Option {
	return func(c *Client) {
		if feed != "" {
			c.feed = feed
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient = &http.Client{Timeout: d}
		}
	}
}

// NewClient creates a client for the given account credentials. An empty
// base URL selects the paper environment.
func NewClient(creds broker.Credentials, opts ...Option) *Client {
	baseURL := strings.TrimRight(creds.BaseURL, "/")
	if baseURL == "" {
		baseURL = PaperURL
	}

	c := &Client{
		name:      creds.Name,
		baseURL:   baseURL,
		dataURL:   DataURL,
		keyID:     creds.KeyID,
		secretKey: creds.SecretKey,
		feed:      DefaultFeed,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connector returns a broker.Connector that builds a new Client per account.
func Connector(opts ...Option) broker.Connector {
	return broker.ConnectorFunc(func(creds broker.Credentials) (broker.Source, error) {
		if creds.KeyID == "" || creds.SecretKey == "" {
			return nil, broker.Wrap("connect", creds.Name, broker.ErrNoCredentials)
		}
		return NewClient(creds, opts...), nil
	})
}

// get performs an authenticated GET and decodes the JSON body into out.
func (c *Client) get(ctx context.Context, base, path string, params url.Values, out any) error {
	apiURL := base + path
	if len(params) > 0 {
		apiURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("APCA-API-KEY-ID", c.keyID)
	req.Header.Set("APCA-API-SECRET-KEY", c.secretKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("%w (status %d): %s", ErrAPI, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
