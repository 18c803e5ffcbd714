// Package signals implements the threshold rule table and the three-way
// exposure policy for the indicator panel.
package signals

// Thresholds holds the cut lines for every rule on the panel. Each green and
// red bound pair leaves a deliberate neutral band between them.
type Thresholds struct {
	IndexPEGreenMax     float64 `json:"index_pe_green_max"`
	IndexPERedMin       float64 `json:"index_pe_red_min"`
	AllMarketPEGreenMax float64 `json:"all_market_pe_green_max"`
	AllMarketPERedMin   float64 `json:"all_market_pe_red_min"`
	ERPGreenMin         float64 `json:"erp_green_min"`
	ERPRedMax           float64 `json:"erp_red_max"`
	LeverageRedMin      float64 `json:"leverage_red_min"`
}

// DefaultThresholds returns the reference rule bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		IndexPEGreenMax:     17.5,
		IndexPERedMin:       18.5,
		AllMarketPEGreenMax: 18.0,
		AllMarketPERedMin:   19.0,
		ERPGreenMin:         3.8,
		ERPRedMax:           3.2,
		LeverageRedMin:      0.03,
	}
}

// Evaluation is the outcome of one pass over a snapshot: the lit green and
// red signals in panel order.
type Evaluation struct {
	Greens []string `json:"greens"`
	Reds   []string `json:"reds"`
}

// GreenCount returns the number of lit green signals.
func (e Evaluation) GreenCount() int {
	return len(e.Greens)
}

// RedCount returns the number of lit red signals.
func (e Evaluation) RedCount() int {
	return len(e.Reds)
}

// Advice is the three-way exposure recommendation.
type Advice int

const (
	AdviceHold Advice = iota
	AdviceAdvance
	AdviceRetreat
)

// String returns the short name used in logs.
func (a Advice) String() string {
	switch a {
	case AdviceAdvance:
		return "advance"
	case AdviceRetreat:
		return "retreat"
	default:
		return "hold"
	}
}

// Text returns the recommendation line shown on the panel.
func (a Advice) Text() string {
	switch a {
	case AdviceAdvance:
		return "step up gradually to 35% equity, tilted to dividend payers and sector leaders"
	case AdviceRetreat:
		return "fall back to <= 30% equity and cut exposure to crowded high-valuation themes"
	default:
		return "hold neutral"
	}
}

// Policy maps signal counts to an Advice.
type Policy struct {
	AdvanceMinGreens int `json:"advance_min_greens"`
	AdvanceMaxReds   int `json:"advance_max_reds"`
	RetreatMinReds   int `json:"retreat_min_reds"`
}

// DefaultPolicy returns the reference decision rule: three greens with at
// most one red advances, two reds always retreat.
func DefaultPolicy() Policy {
	return Policy{
		AdvanceMinGreens: 3,
		AdvanceMaxReds:   1,
		RetreatMinReds:   2,
	}
}
