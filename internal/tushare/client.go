package tushare

import (
	"bytes"
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
	// DefaultBaseURL is the endpoint for the TuShare Pro API.
	DefaultBaseURL = "https://api.tushare.pro"

	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 10 * time.Second
)

// Client is a TuShare Pro API client.
type Client struct {
	baseURL    string
	token      string
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

// NewClient creates a new TuShare Pro API client. An empty token is allowed;
// HasToken reports whether the client is usable.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// HasToken reports whether an API token is configured.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// queryRequest is the POST envelope every TuShare call uses.
type queryRequest struct {
	APIName string            `json:"api_name"`
	Token   string            `json:"token"`
	Params  map[string]string `json:"params"`
	Fields  string            `json:"fields"`
}

// queryResponse is the response envelope. Code zero means success.
type queryResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		Fields []string        `json:"fields"`
		Items  [][]interface{} `json:"items"`
	} `json:"data"`
}

// Query executes a named API call and returns its tabular result.
func (c *Client) Query(ctx context.Context, apiName string, params map[string]string, fields string) (*ResultSet, error) {
	payload, err := json.Marshal(queryRequest{
		APIName: apiName,
		Token:   c.token,
		Params:  params,
		Fields:  fields,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.logger != nil {
		c.logger.Debug().
			Str("api_name", apiName).
			Msg("TuShare API request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			APIName:    apiName,
		}
	}

	var result queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if result.Code != 0 {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       result.Code,
			Message:    result.Msg,
			APIName:    apiName,
		}
	}
	if result.Data == nil {
		return nil, fmt.Errorf("empty data for %s", apiName)
	}

	return &ResultSet{Fields: result.Data.Fields, Items: result.Data.Items}, nil
}

// QuarterlyProfitGrowth retrieves per-stock quarter-on-quarter profit growth
// figures for one reporting period (a quarter-end date, YYYYMMDD).
func (c *Client) QuarterlyProfitGrowth(ctx context.Context, period string) ([]float64, error) {
	rs, err := c.Query(ctx, "fina_indicator", map[string]string{"period": period}, "ts_code,q_profit_yoy")
	if err != nil {
		return nil, err
	}
	return rs.FloatColumn("q_profit_yoy"), nil
}
