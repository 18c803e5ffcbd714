// Package tradingeconomics provides a minimal client for the Trading
// Economics markets API, used as a fallback source for government bond
// yields when the primary quote endpoint fails.
package tradingeconomics

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
)

const (
	// DefaultBaseURL is the base URL for the Trading Economics API.
	DefaultBaseURL = "https://api.tradingeconomics.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second
)

// APIError represents a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tradingeconomics API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// HTTPStatus returns the HTTP status code carried by the error.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// bondRow is one instrument row from a /bond response. The API is
// inconsistent about which field carries the quote, so both are optional.
type bondRow struct {
	Last  *float64 `json:"Last"`
	Value *float64 `json:"Value"`
}

// Client is a Trading Economics API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     arbor.ILogger
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new Trading Economics API client. An empty apiKey is
// allowed; HasKey reports whether the client is usable.
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// HasKey reports whether an API key is configured.
func (c *Client) HasKey() bool {
	return c.apiKey != ""
}

// GetBondYield retrieves the latest yield for a government bond, e.g.
// GetBondYield(ctx, "china", "10y").
func (c *Client) GetBondYield(ctx context.Context, country, tenor string) (float64, error) {
	path := fmt.Sprintf("/bond/%s/%s", country, tenor)
	reqURL := fmt.Sprintf("%s%s?c=%s", c.baseURL, path, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("Trading Economics API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	var rows []bondRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return 0, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(rows) == 0 {
		return 0, fmt.Errorf("no bond rows for %s/%s", country, tenor)
	}

	// Zero reads as "not quoted" in either field.
	first := rows[0]
	if first.Last != nil && *first.Last != 0 {
		return *first.Last, nil
	}
	if first.Value != nil && *first.Value != 0 {
		return *first.Value, nil
	}

	return 0, fmt.Errorf("no yield in bond row for %s/%s", country, tenor)
}
