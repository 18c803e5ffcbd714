package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment string           `toml:"environment"` // "development" or "production"
	Telegram    TelegramConfig   `toml:"telegram"`
	Providers   ProvidersConfig  `toml:"providers"`
	Fetch       FetchConfig      `toml:"fetch"`
	Sources     SourcesConfig    `toml:"sources"`
	Thresholds  ThresholdsConfig `toml:"thresholds"`
	Policy      PolicyConfig     `toml:"policy"`
	Report      ReportConfig     `toml:"report"`
	Logging     LoggingConfig    `toml:"logging"`
}

// TelegramConfig contains the messaging credentials and poll behavior.
// Token and chat ID normally come from the environment, not the file.
type TelegramConfig struct {
	BotToken       string `toml:"bot_token"`       // Bot API credential (SPECULA_BOT_TOKEN / BOT_TOKEN)
	ChatID         string `toml:"chat_id"`         // Recipient chat (SPECULA_CHAT_ID / CHAT_ID)
	BaseURL        string `toml:"base_url"`        // Bot API server; override for self-hosted servers
	SendTimeout    string `toml:"send_timeout"`    // HTTP timeout for sendMessage (default: "15s")
	RequestTimeout string `toml:"request_timeout"` // HTTP timeout for getUpdates, must exceed the server hold (default: "30s")
	PollTimeout    int    `toml:"poll_timeout"`    // Server-side long-poll hold in seconds (default: 20)
	PollInterval   string `toml:"poll_interval"`   // Sleep between empty polls (default: "2s")
	DefaultWindow  string `toml:"default_window"`  // Listening window when none is given (default: "8m")
}

// ProvidersConfig contains market-data provider credentials and HTTP behavior.
type ProvidersConfig struct {
	TushareToken   string `toml:"tushare_token"`   // Optional, enables the earnings-breadth signal
	TEAPIKey       string `toml:"te_api_key"`      // Optional, enables the TradingEconomics yield fallback
	UserAgent      string `toml:"user_agent"`      // Browser-like agent; the quote endpoints reject obvious bots
	Referer        string `toml:"referer"`         // Referer header sent to the quote endpoints
	RequestTimeout string `toml:"request_timeout"` // HTTP timeout for provider calls (default: "10s")
	RateLimit      int    `toml:"rate_limit" validate:"min=1"` // Requests per second to the quote API
}

// FetchConfig tunes the per-indicator retry budget.
type FetchConfig struct {
	MaxAttempts       int     `toml:"max_attempts" validate:"min=1"`
	InitialBackoff    string  `toml:"initial_backoff"` // e.g. "1s"
	MaxBackoff        string  `toml:"max_backoff"`     // e.g. "10s"
	BackoffMultiplier float64 `toml:"backoff_multiplier" validate:"gte=1"`
}

// SourcesConfig pins the upstream endpoints and instrument identifiers.
// Secids follow the quote API's market.code convention.
type SourcesConfig struct {
	EastmoneyBaseURL      string  `toml:"eastmoney_base_url"`
	IndexSecID            string  `toml:"index_secid"`             // SSE Composite
	AllMarketSecID        string  `toml:"all_market_secid"`        // CSI 300, basis of the all-market proxy
	AllMarketFactor       float64 `toml:"all_market_factor" validate:"gt=0"` // Proxy uplift over CSI 300 valuation
	BondSecID             string  `toml:"bond_secid"`              // 10Y CGB trends series
	NorthboundDays        int     `toml:"northbound_days" validate:"min=5"` // Kline rows requested; last five are summed
	IndexScrapeURL        string  `toml:"index_scrape_url"`        // HTML fallback page for the index P/E
	AllMarketScrapeURL    string  `toml:"all_market_scrape_url"`   // HTML fallback page for the proxy P/E
	ScrapeLabel           string  `toml:"scrape_label"`            // Label anchoring the number on the fallback pages
	TEBaseURL             string  `toml:"te_base_url"`
	TushareBaseURL        string  `toml:"tushare_base_url"`
	LeverageRatioOverride float64 `toml:"leverage_ratio_override" validate:"gte=0,lt=1"` // Operator-supplied margin/float ratio; 0 = absent
}

// ThresholdsConfig carries the rule bounds. Green and red cuts differ so a
// neutral band sits between them; validation enforces the band ordering.
type ThresholdsConfig struct {
	IndexPEGreenMax     float64 `toml:"index_pe_green_max" validate:"gt=0"`
	IndexPERedMin       float64 `toml:"index_pe_red_min" validate:"gtfield=IndexPEGreenMax"`
	AllMarketPEGreenMax float64 `toml:"all_market_pe_green_max" validate:"gt=0"`
	AllMarketPERedMin   float64 `toml:"all_market_pe_red_min" validate:"gtfield=AllMarketPEGreenMax"`
	ERPGreenMin         float64 `toml:"erp_green_min" validate:"gtfield=ERPRedMax"`
	ERPRedMax           float64 `toml:"erp_red_max"`
	LeverageRedMin      float64 `toml:"leverage_red_min" validate:"gt=0"`
}

// PolicyConfig carries the decision count thresholds.
type PolicyConfig struct {
	AdvanceMinGreens int `toml:"advance_min_greens" validate:"min=1"`
	AdvanceMaxReds   int `toml:"advance_max_reds" validate:"min=0"`
	RetreatMinReds   int `toml:"retreat_min_reds" validate:"min=1"`
}

// ReportConfig controls panel rendering.
type ReportConfig struct {
	TimezoneOffsetHours int `toml:"timezone_offset_hours" validate:"min=-12,max=14"` // Display offset for the header timestamp
}

// LoggingConfig mirrors the arbor writer setup.
type LoggingConfig struct {
	Level      string   `toml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format     string   `toml:"format"`      // "json" or "text"
	Output     []string `toml:"output"`      // "stdout", "file"
	TimeFormat string   `toml:"time_format"` // Time format for logs (default: "15:04:05")
}

// NewDefaultConfig creates a configuration with default values.
// Endpoint identifiers and thresholds carry the reference defaults; only
// credentials genuinely need to be provided.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Telegram: TelegramConfig{
			BaseURL:        "https://api.telegram.org",
			SendTimeout:    "15s",
			RequestTimeout: "30s",
			PollTimeout:    20,
			PollInterval:   "2s",
			DefaultWindow:  "8m",
		},
		Providers: ProvidersConfig{
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Referer:        "https://eastmoney.com/",
			RequestTimeout: "10s",
			RateLimit:      5,
		},
		Fetch: FetchConfig{
			MaxAttempts:       3,
			InitialBackoff:    "1s",
			MaxBackoff:        "10s",
			BackoffMultiplier: 2.0,
		},
		Sources: SourcesConfig{
			EastmoneyBaseURL:   "https://push2.eastmoney.com",
			IndexSecID:         "1.000001",
			AllMarketSecID:     "1.000300",
			AllMarketFactor:    1.05, // All-A valuation runs above CSI 300; conservative uplift
			BondSecID:          "105.BCNY10Y",
			NorthboundDays:     6,
			IndexScrapeURL:     "https://legulegu.com/stockdata/shanghaiPE",
			AllMarketScrapeURL: "https://legulegu.com/stockdata/hs300-ttm-pe",
			ScrapeLabel:        "市盈率",
			TEBaseURL:          "https://api.tradingeconomics.com",
			TushareBaseURL:     "https://api.tushare.pro",
		},
		Thresholds: ThresholdsConfig{
			IndexPEGreenMax:     17.5,
			IndexPERedMin:       18.5,
			AllMarketPEGreenMax: 18.0,
			AllMarketPERedMin:   19.0,
			ERPGreenMin:         3.8,
			ERPRedMax:           3.2,
			LeverageRedMin:      0.03,
		},
		Policy: PolicyConfig{
			AdvanceMinGreens: 3,
			AdvanceMaxReds:   1,
			RetreatMinReds:   2,
		},
		Report: ReportConfig{
			TimezoneOffsetHours: 8, // Panel audience reads Beijing time
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: []string{"stdout"},
		},
	}
}

// LoadFromFile loads configuration with priority: default -> file -> env
func LoadFromFile(path string) (*Config, error) {
	if path == "" {
		return LoadFromFiles()
	}
	return LoadFromFiles(path)
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config.
// SPECULA_-prefixed names win; the bare names match the deployment secrets.
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("SPECULA_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	// Messaging credentials
	if token := os.Getenv("SPECULA_BOT_TOKEN"); token != "" {
		config.Telegram.BotToken = token
	} else if token := os.Getenv("BOT_TOKEN"); token != "" {
		config.Telegram.BotToken = token
	}
	if chatID := os.Getenv("SPECULA_CHAT_ID"); chatID != "" {
		config.Telegram.ChatID = chatID
	} else if chatID := os.Getenv("CHAT_ID"); chatID != "" {
		config.Telegram.ChatID = chatID
	}

	// Optional provider credentials
	if token := os.Getenv("SPECULA_TUSHARE_TOKEN"); token != "" {
		config.Providers.TushareToken = token
	} else if token := os.Getenv("TUSHARE_TOKEN"); token != "" {
		config.Providers.TushareToken = token
	}
	if key := os.Getenv("SPECULA_TE_API_KEY"); key != "" {
		config.Providers.TEAPIKey = key
	} else if key := os.Getenv("TE_API_KEY"); key != "" {
		config.Providers.TEAPIKey = key
	}

	// Logging configuration
	if level := os.Getenv("SPECULA_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("SPECULA_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if output := os.Getenv("SPECULA_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if trimmed := strings.TrimSpace(o); trimmed != "" {
				outputs = append(outputs, trimmed)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Debug toggle forces the level down; it never raises it
	if debug := debugEnv(); debug {
		config.Logging.Level = "debug"
	}
}

// debugEnv reads the debug toggle (SPECULA_DEBUG, fallback DEBUG).
func debugEnv() bool {
	for _, name := range []string{"SPECULA_DEBUG", "DEBUG"} {
		if v := os.Getenv(name); v != "" {
			if d, err := strconv.ParseBool(v); err == nil {
				return d
			}
		}
	}
	return false
}

// Validate checks the configuration for internally consistent values.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsProduction returns true if the environment is set to production
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}

// parseDurationOr parses a duration string, falling back when empty or bad.
func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// SendTimeoutDuration returns the parsed sendMessage timeout.
func (t TelegramConfig) SendTimeoutDuration() time.Duration {
	return parseDurationOr(t.SendTimeout, 15*time.Second)
}

// RequestTimeoutDuration returns the parsed getUpdates client timeout.
func (t TelegramConfig) RequestTimeoutDuration() time.Duration {
	return parseDurationOr(t.RequestTimeout, 30*time.Second)
}

// PollIntervalDuration returns the sleep between empty polls.
func (t TelegramConfig) PollIntervalDuration() time.Duration {
	return parseDurationOr(t.PollInterval, 2*time.Second)
}

// DefaultWindowDuration returns the listening window used when the caller
// does not supply one.
func (t TelegramConfig) DefaultWindowDuration() time.Duration {
	return parseDurationOr(t.DefaultWindow, 8*time.Minute)
}

// RequestTimeoutDuration returns the parsed provider HTTP timeout.
func (p ProvidersConfig) RequestTimeoutDuration() time.Duration {
	return parseDurationOr(p.RequestTimeout, 10*time.Second)
}

// InitialBackoffDuration returns the parsed first retry delay.
func (f FetchConfig) InitialBackoffDuration() time.Duration {
	return parseDurationOr(f.InitialBackoff, time.Second)
}

// MaxBackoffDuration returns the parsed backoff cap.
func (f FetchConfig) MaxBackoffDuration() time.Duration {
	return parseDurationOr(f.MaxBackoff, 10*time.Second)
}
