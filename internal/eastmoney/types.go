// Package eastmoney provides a client for the Eastmoney push2 quote API and
// a label-anchored scraper for valuation pages. This package centralizes all
// Eastmoney interactions for the application.
package eastmoney

import (
	"fmt"
	"time"
)

// APIError represents a non-2xx response from the push2 API.
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eastmoney API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// HTTPStatus returns the HTTP status code carried by the error.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// ParseError represents a 2xx response whose body could not be interpreted.
type ParseError struct {
	Endpoint string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("eastmoney parse error: %s (endpoint: %s)", e.Reason, e.Endpoint)
}

// RateLimitError represents a rate limit error.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("eastmoney rate limit exceeded, retry after %v", e.RetryAfter)
}

// quoteResponse is the envelope returned by /api/qt/stock/get.
type quoteResponse struct {
	Data *quoteData `json:"data"`
}

// quoteData carries the fields requested via the fields parameter. The API
// keys them by field number, not by name.
type quoteData struct {
	Code string  `json:"f57"`
	Name string  `json:"f58"`
	PE   float64 `json:"f162"`
	PB   float64 `json:"f167"`
}

// trendsResponse is the envelope returned by /api/qt/bond/trends2/get.
// Each trend point is a comma-joined string, time first, yield second.
type trendsResponse struct {
	Data *struct {
		Trends []string `json:"trends"`
	} `json:"data"`
}

// klineResponse is the envelope returned by /api/qt/kamtbs.kline/get.
// Each kline row is a comma-joined string, date first, net flow second.
type klineResponse struct {
	Data *struct {
		Klines []string `json:"klines"`
	} `json:"data"`
}

// FlowPoint is one daily northbound net-flow observation. Net is in units of
// 100 million CNY, as reported by the API. Points arrive oldest first.
type FlowPoint struct {
	Date string
	Net  float64
}
