package sources

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/specula/internal/common"
	"github.com/ternarybob/specula/internal/eastmoney"
	"github.com/ternarybob/specula/internal/models"
	"github.com/ternarybob/specula/internal/tradingeconomics"
	"github.com/ternarybob/specula/internal/tushare"
)

// Clients bundles the provider clients a Fetcher draws from. TradingEconomics
// and TuShare are optional; the corresponding indicators degrade to absent.
type Clients struct {
	Eastmoney        *eastmoney.Client
	Scraper          *eastmoney.Scraper
	TradingEconomics *tradingeconomics.Client
	TuShare          *tushare.Client
}

// Fetcher resolves each panel indicator through its source chain.
type Fetcher struct {
	clients Clients
	retry   *RetryPolicy
	cfg     common.SourcesConfig
	logger  arbor.ILogger
}

// NewFetcher creates a Fetcher over the given provider clients.
func NewFetcher(clients Clients, retry *RetryPolicy, cfg common.SourcesConfig, logger arbor.ILogger) *Fetcher {
	return &Fetcher{
		clients: clients,
		retry:   retry,
		cfg:     cfg,
		logger:  logger,
	}
}

// strategy is one way to obtain an indicator value. Strategies run in order;
// the first success wins.
type strategy struct {
	name string
	fn   func(ctx context.Context) (float64, error)
}

// resolve runs each strategy under the retry policy and returns the first
// value obtained. When every strategy fails, the last error comes back.
func (f *Fetcher) resolve(ctx context.Context, indicator string, strategies []strategy) (float64, error) {
	var lastErr error

	for _, s := range strategies {
		var value float64
		err := f.retry.Execute(ctx, f.logger, func() error {
			v, err := s.fn(ctx)
			if err != nil {
				return err
			}
			value = v
			return nil
		})
		if err == nil {
			f.logger.Debug().
				Str("indicator", indicator).
				Str("strategy", s.name).
				Float64("value", value).
				Msg("Indicator resolved")
			return value, nil
		}

		lastErr = err
		f.logger.Warn().
			Str("indicator", indicator).
			Str("strategy", s.name).
			Err(err).
			Msg("Indicator strategy failed")
	}

	return 0, fmt.Errorf("all strategies failed for %s: %w", indicator, lastErr)
}

// FetchIndexPE returns the SSE composite trailing P/E.
func (f *Fetcher) FetchIndexPE(ctx context.Context) (float64, error) {
	return f.resolve(ctx, "index_pe", []strategy{
		{"push2 quote", func(ctx context.Context) (float64, error) {
			return f.clients.Eastmoney.GetQuotePE(ctx, f.cfg.IndexSecID)
		}},
		{"page scrape", func(ctx context.Context) (float64, error) {
			return f.clients.Scraper.ScrapeLabeledNumber(ctx, f.cfg.IndexScrapeURL, f.cfg.ScrapeLabel)
		}},
	})
}

// FetchAllMarketPE returns the all-market P/E proxy: CSI 300 P/E scaled by a
// conservative factor, rounded to two decimals. The factor is applied
// whichever source produced the raw figure.
func (f *Fetcher) FetchAllMarketPE(ctx context.Context) (float64, error) {
	pe, err := f.resolve(ctx, "all_market_pe", []strategy{
		{"push2 quote", func(ctx context.Context) (float64, error) {
			return f.clients.Eastmoney.GetQuotePE(ctx, f.cfg.AllMarketSecID)
		}},
		{"page scrape", func(ctx context.Context) (float64, error) {
			return f.clients.Scraper.ScrapeLabeledNumber(ctx, f.cfg.AllMarketScrapeURL, f.cfg.ScrapeLabel)
		}},
	})
	if err != nil {
		return 0, err
	}
	return models.Round2(pe * f.cfg.AllMarketFactor), nil
}

// FetchBondYield returns the 10-year government bond yield in percent.
func (f *Fetcher) FetchBondYield(ctx context.Context) (float64, error) {
	strategies := []strategy{
		{"push2 bond trends", func(ctx context.Context) (float64, error) {
			return f.clients.Eastmoney.GetBondYield(ctx, f.cfg.BondSecID)
		}},
	}
	if f.clients.TradingEconomics != nil && f.clients.TradingEconomics.HasKey() {
		strategies = append(strategies, strategy{"tradingeconomics", func(ctx context.Context) (float64, error) {
			return f.clients.TradingEconomics.GetBondYield(ctx, "china", "10y")
		}})
	}
	return f.resolve(ctx, "bond_yield_10y", strategies)
}

// FetchNorthbound returns the northbound flow pair. The five-day sum needs at
// least five daily points; a shorter series is an error so the indicator
// reads absent rather than summing a partial week.
func (f *Fetcher) FetchNorthbound(ctx context.Context) (*models.Northbound, error) {
	var points []eastmoney.FlowPoint
	err := f.retry.Execute(ctx, f.logger, func() error {
		p, err := f.clients.Eastmoney.GetNorthboundKlines(ctx, f.cfg.NorthboundDays)
		if err != nil {
			return err
		}
		points = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(points) < 5 {
		return nil, fmt.Errorf("northbound series too short: %d points", len(points))
	}

	var sum float64
	for _, p := range points[len(points)-5:] {
		sum += p.Net
	}

	return &models.Northbound{
		FiveDaySum: models.Round2(sum),
		LastDay:    points[len(points)-1].Net,
	}, nil
}

// FetchLeverageRatio returns the margin-balance-to-float-cap ratio. No public
// endpoint reliably carries the denominator, so the value comes from an
// operator-supplied override and is otherwise absent.
func (f *Fetcher) FetchLeverageRatio(ctx context.Context) (float64, error) {
	if f.cfg.LeverageRatioOverride > 0 {
		return f.cfg.LeverageRatioOverride, nil
	}
	return 0, errors.New("no leverage ratio source configured")
}

// FetchBreadth compares the share of companies with positive quarterly profit
// growth across the last two completed reporting periods.
func (f *Fetcher) FetchBreadth(ctx context.Context) (models.Breadth, error) {
	if f.clients.TuShare == nil || !f.clients.TuShare.HasToken() {
		return models.BreadthUnknown, errors.New("tushare token not configured")
	}

	lastPeriod, prevPeriod := lastTwoQuarterEnds(time.Now())

	lastFrac, err := f.breadthFraction(ctx, lastPeriod)
	if err != nil {
		return models.BreadthUnknown, err
	}
	prevFrac, err := f.breadthFraction(ctx, prevPeriod)
	if err != nil {
		return models.BreadthUnknown, err
	}

	if lastFrac > prevFrac {
		return models.BreadthImproving, nil
	}
	return models.BreadthWeakening, nil
}

// breadthFraction returns the fraction of stocks with positive
// quarter-on-quarter profit growth in one reporting period.
func (f *Fetcher) breadthFraction(ctx context.Context, period string) (float64, error) {
	var growth []float64
	err := f.retry.Execute(ctx, f.logger, func() error {
		g, err := f.clients.TuShare.QuarterlyProfitGrowth(ctx, period)
		if err != nil {
			return err
		}
		growth = g
		return nil
	})
	if err != nil {
		return 0, err
	}
	if len(growth) == 0 {
		return 0, fmt.Errorf("no growth figures for period %s", period)
	}

	positive := 0
	for _, g := range growth {
		if g > 0 {
			positive++
		}
	}
	return float64(positive) / float64(len(growth)), nil
}

// lastTwoQuarterEnds returns the two most recent completed reporting periods
// as quarter-end dates (YYYYMMDD). The quarter in progress is skipped since
// its filings are incomplete.
func lastTwoQuarterEnds(now time.Time) (string, string) {
	year := now.Year()
	q := (int(now.Month())-1)/3 + 1

	var lastY, lastQ, prevY, prevQ int
	if q == 1 {
		lastY, lastQ = year-1, 4
		prevY, prevQ = year-1, 3
	} else {
		lastY, lastQ = year, q-1
		if q-1 == 1 {
			prevY, prevQ = year-1, 4
		} else {
			prevY, prevQ = year, q-2
		}
	}

	return quarterEnd(lastY, lastQ), quarterEnd(prevY, prevQ)
}

// quarterEnd formats a reporting period as its closing date.
func quarterEnd(year, quarter int) string {
	switch quarter {
	case 1:
		return fmt.Sprintf("%d0331", year)
	case 2:
		return fmt.Sprintf("%d0630", year)
	case 3:
		return fmt.Sprintf("%d0930", year)
	default:
		return fmt.Sprintf("%d1231", year)
	}
}
