package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/specula/internal/common"
	"github.com/ternarybob/specula/internal/models"
	"github.com/ternarybob/specula/internal/signals"
)

const disclaimer = "Note: public endpoints drift without notice; adjust source settings in config if the panel goes dark."

// Builder renders panel reports with timestamps in a fixed display timezone.
type Builder struct {
	location *time.Location
}

// NewBuilder creates a Builder displaying timestamps at the given UTC offset
// (8 for Beijing time).
func NewBuilder(offsetHours int) *Builder {
	name := fmt.Sprintf("UTC%+d", offsetHours)
	return &Builder{
		location: time.FixedZone(name, offsetHours*3600),
	}
}

// Build stamps a report record and renders its panel text. The snapshot
// timestamp is the report timestamp.
func (b *Builder) Build(snap models.Snapshot, ev signals.Evaluation, advice signals.Advice) Report {
	return Report{
		ID:         common.NewReportID(),
		Generated:  snap.Taken,
		Snapshot:   snap,
		Evaluation: ev,
		Advice:     advice,
		Text:       b.render(snap, ev, advice),
	}
}

// render assembles the panel text. Field order is fixed; absent values print
// as the literal N/A and every numeric uses two decimals.
func (b *Builder) render(snap models.Snapshot, ev signals.Evaluation, advice signals.Advice) string {
	var sb strings.Builder

	local := snap.Taken.In(b.location)
	fmt.Fprintf(&sb, "📊 A-share threshold panel %s (%s)\n", local.Format("2006-01-02 15:04"), b.location)
	sb.WriteString("— three-factor, six-line rulebook —\n\n")

	fmt.Fprintf(&sb, "• SSE PE (TTM): %s\n", snap.IndexPE)
	fmt.Fprintf(&sb, "• All-market proxy PE (TTM): %s  ← scaled CSI 300 valuation used as proxy\n", snap.AllMarketPE)
	fmt.Fprintf(&sb, "• 10Y CGB yield (%%): %s\n", snap.BondYield10Y)
	fmt.Fprintf(&sb, "• ERP (estimated, %%): %s\n", snap.ERP)

	if snap.Northbound != nil {
		fmt.Fprintf(&sb, "• Northbound flow (100M CNY): 5-day net %.2f; last day %.2f\n",
			snap.Northbound.FiveDaySum, snap.Northbound.LastDay)
	} else {
		sb.WriteString("• Northbound flow (100M CNY): N/A\n")
	}

	if snap.LeverageRatio.Present() {
		fmt.Fprintf(&sb, "• Margin leverage / float: %.2f%%\n", snap.LeverageRatio.Value()*100)
	} else {
		sb.WriteString("• Margin leverage / float: N/A (no public series)\n")
	}

	switch snap.Breadth {
	case models.BreadthImproving:
		sb.WriteString("• Earnings breadth (latest quarter): improving quarter-on-quarter? yes\n")
	case models.BreadthWeakening:
		sb.WriteString("• Earnings breadth (latest quarter): improving quarter-on-quarter? no\n")
	default:
		sb.WriteString("• Earnings breadth (latest quarter): N/A (set TUSHARE_TOKEN to enable)\n")
	}

	if len(ev.Greens) > 0 {
		sb.WriteString("\n✅ Green lights:\n")
		for _, g := range ev.Greens {
			fmt.Fprintf(&sb, "  - %s\n", g)
		}
	}
	if len(ev.Reds) > 0 {
		sb.WriteString("\n❌ Red lights:\n")
		for _, r := range ev.Reds {
			fmt.Fprintf(&sb, "  - %s\n", r)
		}
	}

	sb.WriteString("\n🎯 Action: " + advice.Text() + "\n")
	sb.WriteString("\n" + disclaimer)

	return sb.String()
}
