package eastmoney

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/ternarybob/arbor"
)

// Scraper extracts a labeled numeric figure from a valuation page. It backs
// up the push2 quote endpoints when they stop carrying the P/E field.
type Scraper struct {
	userAgent  string
	httpClient *http.Client
	logger     arbor.ILogger
}

// ScraperOption configures the Scraper.
type ScraperOption func(*Scraper)

// WithScraperHTTPClient sets a custom HTTP client.
func WithScraperHTTPClient(httpClient *http.Client) ScraperOption {
	return func(s *Scraper) {
		s.httpClient = httpClient
	}
}

// WithScraperLogger sets a logger.
func WithScraperLogger(logger arbor.ILogger) ScraperOption {
	return func(s *Scraper) {
		s.logger = logger
	}
}

// WithScraperUserAgent sets the User-Agent sent with scrape requests.
func WithScraperUserAgent(userAgent string) ScraperOption {
	return func(s *Scraper) {
		if userAgent != "" {
			s.userAgent = userAgent
		}
	}
}

// NewScraper creates a new valuation page scraper.
func NewScraper(opts ...ScraperOption) *Scraper {
	s := &Scraper{
		userAgent: DefaultUserAgent,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ScrapeLabeledNumber fetches a page and returns the first number that
// follows the given label in its visible text.
func (s *Scraper) ScrapeLabeledNumber(ctx context.Context, pageURL, label string) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	if s.logger != nil {
		s.logger.Debug().
			Str("url", pageURL).
			Str("label", label).
			Msg("Valuation page scrape")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, &APIError{
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
			Endpoint:   pageURL,
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Script and style bodies would otherwise pollute the text search.
	doc.Find("script, style").Remove()
	text := doc.Find("body").Text()

	return extractLabeledNumber(text, label, pageURL)
}

// extractLabeledNumber finds the first number within a short span after the
// label. The span absorbs separator glyphs between label and value without
// letting the match wander off to an unrelated figure.
func extractLabeledNumber(text, label, endpoint string) (float64, error) {
	pattern := regexp.MustCompile(regexp.QuoteMeta(label) + `[^0-9\-]{0,40}?(-?[0-9]+(?:\.[0-9]+)?)`)

	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return 0, &ParseError{Endpoint: endpoint, Reason: "label not found: " + label}
	}

	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, &ParseError{Endpoint: endpoint, Reason: "non-numeric value: " + m[1]}
	}

	return value, nil
}
