package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the base URL for the push2 quote API.
	DefaultBaseURL = "https://push2.eastmoney.com"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second

	// DefaultRateLimit is the default rate limit (requests per second).
	DefaultRateLimit = 5

	// DefaultUserAgent mimics a desktop browser; push2 rejects bare clients.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"

	// DefaultReferer accompanies the User-Agent on every request.
	DefaultReferer = "https://eastmoney.com/"
)

// Client is an Eastmoney push2 API client.
type Client struct {
	baseURL    string
	userAgent  string
	referer    string
	httpClient *http.Client
	logger     arbor.ILogger
	limiter    *rate.Limiter
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

// WithRateLimit sets a custom rate limit.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithBrowserHeaders sets the User-Agent and Referer sent with every request.
func WithBrowserHeaders(userAgent, referer string) ClientOption {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
		if referer != "" {
			c.referer = referer
		}
	}
}

// NewClient creates a new Eastmoney push2 API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		referer:   DefaultReferer,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// getJSON performs a GET request and decodes the JSON payload after stripping
// any JSONP wrapper.
func (c *Client) getJSON(ctx context.Context, path string, params url.Values, result interface{}) error {
	// Wait for rate limiter
	if err := c.limiter.Wait(ctx); err != nil {
		return &RateLimitError{RetryAfter: time.Second}
	}

	// Build URL
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Referer", c.referer)

	// Log request
	if c.logger != nil {
		c.logger.Debug().
			Str("url", c.baseURL+path).
			Msg("Eastmoney API request")
	}

	// Execute request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	// Check status
	if resp.StatusCode != http.StatusOK {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   path,
		}
	}

	// Parse response
	payload, err := StripJSONP(string(body))
	if err != nil {
		return &ParseError{Endpoint: path, Reason: err.Error()}
	}
	if err := json.Unmarshal([]byte(payload), result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// GetQuotePE retrieves the trailing P/E for an index or security.
// SecID format: MARKET.CODE (e.g. "1.000001" for the SSE composite,
// "1.000300" for the CSI 300).
func (c *Client) GetQuotePE(ctx context.Context, secID string) (float64, error) {
	const endpoint = "/api/qt/stock/get"

	params := url.Values{}
	params.Set("secid", secID)
	params.Set("fields", "f57,f58,f162,f167")

	var result quoteResponse
	if err := c.getJSON(ctx, endpoint, params, &result); err != nil {
		return 0, err
	}

	if result.Data == nil {
		return 0, &ParseError{Endpoint: endpoint, Reason: "empty data for " + secID}
	}
	// The field reads zero or negative when the API has no P/E for the secid.
	if result.Data.PE <= 0 {
		return 0, &ParseError{Endpoint: endpoint, Reason: fmt.Sprintf("non-positive P/E %v for %s", result.Data.PE, secID)}
	}

	return result.Data.PE, nil
}

// GetBondYield retrieves the latest intraday yield for a bond secid
// (e.g. "105.BCNY10Y" for the 10-year CGB).
func (c *Client) GetBondYield(ctx context.Context, secID string) (float64, error) {
	const endpoint = "/api/qt/bond/trends2/get"

	params := url.Values{}
	params.Set("secid", secID)
	params.Set("fields1", "f1,f2,f3,f4,f5,f6")
	params.Set("fields2", "f51,f52,f53,f54,f55,f56")
	params.Set("iscr", "0")

	var result trendsResponse
	if err := c.getJSON(ctx, endpoint, params, &result); err != nil {
		return 0, err
	}

	if result.Data == nil || len(result.Data.Trends) == 0 {
		return 0, &ParseError{Endpoint: endpoint, Reason: "no trend points for " + secID}
	}

	// Last point carries the current yield in its second field.
	last := result.Data.Trends[len(result.Data.Trends)-1]
	parts := strings.Split(last, ",")
	if len(parts) < 2 {
		return 0, &ParseError{Endpoint: endpoint, Reason: "malformed trend point: " + last}
	}
	yield, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, &ParseError{Endpoint: endpoint, Reason: "non-numeric yield: " + parts[1]}
	}

	return yield, nil
}

// GetNorthboundKlines retrieves up to days daily northbound net-flow points,
// oldest first. Net values are in 100 million CNY.
func (c *Client) GetNorthboundKlines(ctx context.Context, days int) ([]FlowPoint, error) {
	const endpoint = "/api/qt/kamtbs.kline/get"

	params := url.Values{}
	params.Set("fields1", "f1,f3,f5")
	params.Set("fields2", "f51,f52,f54")
	params.Set("klt", "101")
	params.Set("lmt", strconv.Itoa(days))

	var result klineResponse
	if err := c.getJSON(ctx, endpoint, params, &result); err != nil {
		return nil, err
	}

	if result.Data == nil || len(result.Data.Klines) == 0 {
		return nil, &ParseError{Endpoint: endpoint, Reason: "no kline rows"}
	}

	points := make([]FlowPoint, 0, len(result.Data.Klines))
	for _, row := range result.Data.Klines {
		parts := strings.Split(row, ",")
		if len(parts) < 2 {
			return nil, &ParseError{Endpoint: endpoint, Reason: "malformed kline row: " + row}
		}
		net, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, &ParseError{Endpoint: endpoint, Reason: "non-numeric net flow: " + parts[1]}
		}
		points = append(points, FlowPoint{Date: parts[0], Net: net})
	}

	return points, nil
}
