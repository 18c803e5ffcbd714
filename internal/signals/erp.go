package signals

import (
	"github.com/ternarybob/specula/internal/models"
)

// ComputeERP derives the equity risk premium proxy from a trailing P/E and a
// 10-year bond yield, both in percent terms: earnings yield (100/PE) minus
// the bond yield, rounded to two decimals. Either input absent, or a
// non-positive P/E, makes the result absent.
func ComputeERP(pe, bondYield models.Metric) models.Metric {
	if !pe.Present() || pe.Value() <= 0 || !bondYield.Present() {
		return models.NoMetric()
	}

	earningsYield := 100.0 / pe.Value()
	return models.MetricOf(models.Round2(earningsYield - bondYield.Value()))
}
