package models

import "time"

// Breadth classifies quarter-on-quarter earnings breadth across the market.
// Unknown covers both "no data provider configured" and "query failed".
type Breadth int

const (
	BreadthUnknown Breadth = iota
	BreadthImproving
	BreadthWeakening
)

// String returns the panel rendering of the flag.
func (b Breadth) String() string {
	switch b {
	case BreadthImproving:
		return "improving"
	case BreadthWeakening:
		return "weakening"
	default:
		return "N/A"
	}
}

// Northbound holds the cross-border flow figures, in 100M CNY. The pair is
// optional as a whole; a nil *Northbound means the series was unavailable.
type Northbound struct {
	FiveDaySum float64
	LastDay    float64
}

// Snapshot is the result of one collection run over all indicators.
// Immutable once built; absent readings stay absent.
type Snapshot struct {
	Taken         time.Time
	IndexPE       Metric
	AllMarketPE   Metric
	BondYield10Y  Metric
	ERP           Metric
	Northbound    *Northbound
	LeverageRatio Metric
	Breadth       Breadth
}
