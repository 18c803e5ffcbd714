package signals

import (
	"fmt"

	"github.com/ternarybob/specula/internal/models"
)

// Evaluate runs the rule table over a snapshot. Every rule gates on its
// input being present; an absent input lights neither list. List order is
// fixed: valuation, ERP, breadth, northbound, leverage.
func Evaluate(snap models.Snapshot, t Thresholds) Evaluation {
	var ev Evaluation

	// Valuation group
	if snap.IndexPE.Present() && snap.IndexPE.Value() <= t.IndexPEGreenMax {
		ev.Greens = append(ev.Greens, fmt.Sprintf("valuation: SSE PE <= %.1f ✅", t.IndexPEGreenMax))
	}
	if snap.AllMarketPE.Present() && snap.AllMarketPE.Value() <= t.AllMarketPEGreenMax {
		ev.Greens = append(ev.Greens, fmt.Sprintf("valuation: all-market proxy PE <= %.1f ✅", t.AllMarketPEGreenMax))
	}
	if snap.IndexPE.Present() && snap.IndexPE.Value() >= t.IndexPERedMin {
		ev.Reds = append(ev.Reds, fmt.Sprintf("valuation: SSE PE >= %.1f ❌", t.IndexPERedMin))
	}
	if snap.AllMarketPE.Present() && snap.AllMarketPE.Value() >= t.AllMarketPERedMin {
		ev.Reds = append(ev.Reds, fmt.Sprintf("valuation: all-market proxy PE >= %.1f ❌", t.AllMarketPERedMin))
	}
	// The growth-board percentile rule has no keyless public source, so
	// structural heat never lights a hard red here.

	// Risk premium group
	if snap.ERP.Present() && snap.ERP.Value() >= t.ERPGreenMin {
		ev.Greens = append(ev.Greens, fmt.Sprintf("ERP >= %.1f%% ✅", t.ERPGreenMin))
	}
	if snap.ERP.Present() && snap.ERP.Value() <= t.ERPRedMax {
		ev.Reds = append(ev.Reds, fmt.Sprintf("ERP <= %.1f%% ❌", t.ERPRedMax))
	}

	// Earnings and liquidity group
	switch snap.Breadth {
	case models.BreadthImproving:
		ev.Greens = append(ev.Greens, "earnings breadth improving quarter-on-quarter ✅")
	case models.BreadthWeakening:
		ev.Reds = append(ev.Reds, "earnings breadth weakening quarter-on-quarter ❌")
	}

	if snap.Northbound != nil {
		if snap.Northbound.FiveDaySum > 0 {
			ev.Greens = append(ev.Greens, "northbound 5-day net inflow positive ✅")
		} else {
			ev.Reds = append(ev.Reds, "northbound 5-day net inflow negative ❌")
		}
	}

	if snap.LeverageRatio.Present() && snap.LeverageRatio.Value() >= t.LeverageRedMin {
		ev.Reds = append(ev.Reds, fmt.Sprintf("margin leverage >= %.0f%% of float (hot) ❌", t.LeverageRedMin*100))
	}

	return ev
}
