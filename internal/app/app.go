// Package app wires the configured provider clients, fetchers, and
// evaluation stages into the three invocation behaviors the command line
// exposes: immediate run, single-response listen, and windowed polling.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/specula/internal/common"
	"github.com/ternarybob/specula/internal/eastmoney"
	"github.com/ternarybob/specula/internal/models"
	"github.com/ternarybob/specula/internal/report"
	"github.com/ternarybob/specula/internal/signals"
	"github.com/ternarybob/specula/internal/sources"
	"github.com/ternarybob/specula/internal/telegram"
	"github.com/ternarybob/specula/internal/tradingeconomics"
	"github.com/ternarybob/specula/internal/tushare"
)

// App holds the wired pipeline components for one process lifetime.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	fetcher    *sources.Fetcher
	dispatcher *telegram.Client
	listener   *telegram.Listener
	builder    *report.Builder
	thresholds signals.Thresholds
	policy     signals.Policy
}

// New wires all components from the configuration. Construction never fails;
// a missing credential degrades the affected indicator or the send at run
// time instead of blocking startup.
func New(cfg *common.Config, logger arbor.ILogger) *App {
	providerHTTP := &http.Client{Timeout: cfg.Providers.RequestTimeoutDuration()}

	quotes := eastmoney.NewClient(
		eastmoney.WithBaseURL(cfg.Sources.EastmoneyBaseURL),
		eastmoney.WithHTTPClient(providerHTTP),
		eastmoney.WithBrowserHeaders(cfg.Providers.UserAgent, cfg.Providers.Referer),
		eastmoney.WithRateLimit(cfg.Providers.RateLimit),
		eastmoney.WithLogger(logger),
	)

	scraper := eastmoney.NewScraper(
		eastmoney.WithScraperHTTPClient(providerHTTP),
		eastmoney.WithScraperUserAgent(cfg.Providers.UserAgent),
		eastmoney.WithScraperLogger(logger),
	)

	yields := tradingeconomics.NewClient(
		cfg.Providers.TEAPIKey,
		tradingeconomics.WithBaseURL(cfg.Sources.TEBaseURL),
		tradingeconomics.WithHTTPClient(providerHTTP),
		tradingeconomics.WithLogger(logger),
	)

	earnings := tushare.NewClient(
		cfg.Providers.TushareToken,
		tushare.WithBaseURL(cfg.Sources.TushareBaseURL),
		tushare.WithHTTPClient(providerHTTP),
		tushare.WithLogger(logger),
	)

	retry := sources.NewRetryPolicyFromConfig(cfg.Fetch)
	fetcher := sources.NewFetcher(sources.Clients{
		Eastmoney:        quotes,
		Scraper:          scraper,
		TradingEconomics: yields,
		TuShare:          earnings,
	}, retry, cfg.Sources, logger)

	dispatcher := telegram.NewClient(
		cfg.Telegram.BotToken,
		cfg.Telegram.ChatID,
		telegram.WithBaseURL(cfg.Telegram.BaseURL),
		telegram.WithTimeouts(cfg.Telegram.SendTimeoutDuration(), cfg.Telegram.RequestTimeoutDuration()),
		telegram.WithLogger(logger),
	)

	listener := telegram.NewListener(dispatcher, cfg.Telegram.PollTimeout, cfg.Telegram.PollIntervalDuration(), logger)

	app := &App{
		Config:     cfg,
		Logger:     logger,
		fetcher:    fetcher,
		dispatcher: dispatcher,
		listener:   listener,
		builder:    report.NewBuilder(cfg.Report.TimezoneOffsetHours),
		thresholds: thresholdsFromConfig(cfg.Thresholds),
		policy:     policyFromConfig(cfg.Policy),
	}

	logger.Debug().
		Bool("telegram_configured", dispatcher.Configured()).
		Bool("breadth_enabled", earnings.HasToken()).
		Bool("yield_fallback_enabled", yields.HasKey()).
		Msg("Pipeline components wired")

	return app
}

// Collect runs every fetcher once, in a fixed order, and assembles the
// snapshot. A failed fetch degrades to an absent reading; the panel never
// aborts because a source went dark.
func (a *App) Collect(ctx context.Context) models.Snapshot {
	snap := models.Snapshot{Taken: time.Now().UTC()}

	if pe, err := a.fetcher.FetchIndexPE(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Index P/E unavailable")
	} else {
		snap.IndexPE = models.MetricOf(pe)
	}

	if pe, err := a.fetcher.FetchAllMarketPE(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("All-market proxy P/E unavailable")
	} else {
		snap.AllMarketPE = models.MetricOf(pe)
	}

	if y, err := a.fetcher.FetchBondYield(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("10Y bond yield unavailable")
	} else {
		snap.BondYield10Y = models.MetricOf(y)
	}

	if flow, err := a.fetcher.FetchNorthbound(ctx); err != nil {
		a.Logger.Warn().Err(err).Msg("Northbound flow unavailable")
	} else {
		snap.Northbound = flow
	}

	// Leverage and breadth have no default source, so missing readings are
	// the steady state here and log at debug only.
	if ratio, err := a.fetcher.FetchLeverageRatio(ctx); err != nil {
		a.Logger.Debug().Err(err).Msg("Leverage ratio unavailable")
	} else {
		snap.LeverageRatio = models.MetricOf(ratio)
	}

	breadth, err := a.fetcher.FetchBreadth(ctx)
	if err != nil {
		a.Logger.Debug().Err(err).Msg("Earnings breadth unavailable")
	}
	snap.Breadth = breadth

	snap.ERP = signals.ComputeERP(snap.IndexPE, snap.BondYield10Y)

	a.Logger.Info().
		Str("index_pe", snap.IndexPE.String()).
		Str("all_market_pe", snap.AllMarketPE.String()).
		Str("bond_yield", snap.BondYield10Y.String()).
		Str("erp", snap.ERP.String()).
		Bool("northbound", snap.Northbound != nil).
		Str("breadth", snap.Breadth.String()).
		Msg("Snapshot collected")

	return snap
}

// BuildReport evaluates a snapshot against the rule table, decides the
// action, and renders the panel.
func (a *App) BuildReport(snap models.Snapshot) report.Report {
	ev := signals.Evaluate(snap, a.thresholds)
	advice := signals.Decide(ev.GreenCount(), ev.RedCount(), a.policy)
	rpt := a.builder.Build(snap, ev, advice)

	a.Logger.Info().
		Str("report_id", rpt.ID).
		Str("advice", advice.String()).
		Int("green_count", ev.GreenCount()).
		Int("red_count", ev.RedCount()).
		Msg("Report built")

	return rpt
}

// RunOnce executes the full pipeline and reports whether the panel was
// delivered. Failures are logged, never propagated; the process exits clean
// either way.
func (a *App) RunOnce(ctx context.Context) bool {
	rpt := a.BuildReport(a.Collect(ctx))

	delivered := a.dispatcher.SendMessage(ctx, rpt.Text)
	if !delivered {
		a.Logger.Warn().Str("report_id", rpt.ID).Msg("Panel not delivered")
	}
	return delivered
}

// RespondOnce waits for a single status command within the window, runs the
// pipeline for it, and exits. Returns the number of commands handled, zero
// or one.
func (a *App) RespondOnce(ctx context.Context, window time.Duration) int {
	return a.listener.Listen(ctx, window, 1, func(ctx context.Context) {
		a.RunOnce(ctx)
	})
}

// Listen answers every status command that arrives within the window.
// Returns the number of commands handled.
func (a *App) Listen(ctx context.Context, window time.Duration) int {
	return a.listener.Listen(ctx, window, 0, func(ctx context.Context) {
		a.RunOnce(ctx)
	})
}

func thresholdsFromConfig(tc common.ThresholdsConfig) signals.Thresholds {
	return signals.Thresholds{
		IndexPEGreenMax:     tc.IndexPEGreenMax,
		IndexPERedMin:       tc.IndexPERedMin,
		AllMarketPEGreenMax: tc.AllMarketPEGreenMax,
		AllMarketPERedMin:   tc.AllMarketPERedMin,
		ERPGreenMin:         tc.ERPGreenMin,
		ERPRedMax:           tc.ERPRedMax,
		LeverageRedMin:      tc.LeverageRedMin,
	}
}

func policyFromConfig(pc common.PolicyConfig) signals.Policy {
	return signals.Policy{
		AdvanceMinGreens: pc.AdvanceMinGreens,
		AdvanceMaxReds:   pc.AdvanceMaxReds,
		RetreatMinReds:   pc.RetreatMinReds,
	}
}
