package telegram

import (
	"bytes"
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
)

const (
	// DefaultBaseURL is the Telegram Bot API root.
	DefaultBaseURL = "https://api.telegram.org"

	// DefaultSendTimeout bounds one sendMessage call.
	DefaultSendTimeout = 15 * time.Second

	// DefaultRequestTimeout bounds one getUpdates call. It must exceed the
	// long-poll hold so held calls are not cut short.
	DefaultRequestTimeout = 30 * time.Second
)

// Client is a Telegram Bot API client bound to one bot and one chat.
type Client struct {
	baseURL     string
	token       string
	chatID      string
	sendTimeout time.Duration
	httpClient  *http.Client
	logger      arbor.ILogger
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

// WithTimeouts sets the per-send timeout and the overall request timeout.
func WithTimeouts(send, request time.Duration) ClientOption {
	return func(c *Client) {
		if send > 0 {
			c.sendTimeout = send
		}
		if request > 0 {
			c.httpClient.Timeout = request
		}
	}
}

// NewClient creates a new Bot API client. Empty credentials are allowed;
// Configured reports whether the client can reach the chat.
func NewClient(token, chatID string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     DefaultBaseURL,
		token:       token,
		chatID:      chatID,
		sendTimeout: DefaultSendTimeout,
		httpClient: &http.Client{
			Timeout: DefaultRequestTimeout,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Configured reports whether both the bot token and the chat ID are set.
func (c *Client) Configured() bool {
	return c.token != "" && c.chatID != ""
}

// SendMessage delivers text to the configured chat with HTML parse mode.
// Missing credentials and delivery failures are logged, never returned; the
// result reports whether the message went out.
func (c *Client) SendMessage(ctx context.Context, text string) bool {
	if !c.Configured() {
		if c.logger != nil {
			c.logger.Error().Msg("Bot token or chat ID not set, cannot send message")
		}
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, c.sendTimeout)
	defer cancel()

	payload, err := json.Marshal(map[string]string{
		"chat_id":    c.chatID,
		"text":       text,
		"parse_mode": "HTML",
	})
	if err != nil {
		if c.logger != nil {
			c.logger.Error().Err(err).Msg("Failed to encode sendMessage payload")
		}
		return false
	}

	reqURL := fmt.Sprintf("%s/bot%s/sendMessage", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(payload))
	if err != nil {
		if c.logger != nil {
			c.logger.Error().Err(err).Msg("Failed to create sendMessage request")
		}
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error().Err(err).Msg("sendMessage request failed")
		}
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if c.logger != nil {
			c.logger.Error().
				Int("status_code", resp.StatusCode).
				Str("body", strings.TrimSpace(string(body))).
				Msg("sendMessage rejected")
		}
		return false
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		if c.logger != nil {
			c.logger.Error().Err(err).Msg("Failed to decode sendMessage response")
		}
		return false
	}
	if !result.OK {
		if c.logger != nil {
			c.logger.Error().
				Int("error_code", result.ErrorCode).
				Str("description", result.Description).
				Msg("sendMessage rejected")
		}
		return false
	}

	if c.logger != nil {
		c.logger.Debug().
			Int("length", len(text)).
			Msg("Message delivered")
	}
	return true
}

// GetUpdates long-polls for updates at or after offset, holding the call
// open for up to holdSeconds. A zero offset asks for the oldest pending
// updates.
func (c *Client) GetUpdates(ctx context.Context, offset int64, holdSeconds int) ([]Update, error) {
	const endpoint = "/getUpdates"

	params := url.Values{}
	params.Set("timeout", strconv.Itoa(holdSeconds))
	if offset > 0 {
		params.Set("offset", strconv.FormatInt(offset, 10))
	}

	reqURL := fmt.Sprintf("%s/bot%s%s?%s", c.baseURL, c.token, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
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
			Endpoint:   endpoint,
		}
	}

	var result updatesResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if !result.OK {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Code:       result.ErrorCode,
			Message:    result.Description,
			Endpoint:   endpoint,
		}
	}

	return result.Result, nil
}
