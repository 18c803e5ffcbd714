package signals

import (
	"reflect"
	"testing"

	"github.com/ternarybob/specula/internal/models"
)

func TestEvaluate_IndexPEBounds(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name       string
		indexPE    float64
		wantGreens int
		wantReds   int
	}{
		{"green at bound", 17.5, 1, 0},
		{"just above green", 17.51, 0, 0},
		{"neutral band", 18.0, 0, 0},
		{"just below red", 18.49, 0, 0},
		{"red at bound", 18.5, 0, 1},
		{"deep green", 12.0, 1, 0},
		{"deep red", 25.0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate(models.Snapshot{IndexPE: models.MetricOf(tt.indexPE)}, th)
			if ev.GreenCount() != tt.wantGreens || ev.RedCount() != tt.wantReds {
				t.Errorf("Evaluate(PE=%v) = %d greens, %d reds, want %d/%d",
					tt.indexPE, ev.GreenCount(), ev.RedCount(), tt.wantGreens, tt.wantReds)
			}
		})
	}
}

func TestEvaluate_AllMarketPEBounds(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name       string
		pe         float64
		wantGreens int
		wantReds   int
	}{
		{"green at bound", 18.0, 1, 0},
		{"neutral band", 18.5, 0, 0},
		{"red at bound", 19.0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate(models.Snapshot{AllMarketPE: models.MetricOf(tt.pe)}, th)
			if ev.GreenCount() != tt.wantGreens || ev.RedCount() != tt.wantReds {
				t.Errorf("Evaluate(allPE=%v) = %d greens, %d reds, want %d/%d",
					tt.pe, ev.GreenCount(), ev.RedCount(), tt.wantGreens, tt.wantReds)
			}
		})
	}
}

func TestEvaluate_ERPBounds(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name       string
		erp        float64
		wantGreens int
		wantReds   int
	}{
		{"green at bound", 3.8, 1, 0},
		{"neutral band", 3.36, 0, 0},
		{"red at bound", 3.2, 0, 1},
		{"deep green", 6.0, 1, 0},
		{"negative premium", -1.0, 0, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate(models.Snapshot{ERP: models.MetricOf(tt.erp)}, th)
			if ev.GreenCount() != tt.wantGreens || ev.RedCount() != tt.wantReds {
				t.Errorf("Evaluate(ERP=%v) = %d greens, %d reds, want %d/%d",
					tt.erp, ev.GreenCount(), ev.RedCount(), tt.wantGreens, tt.wantReds)
			}
		})
	}
}

func TestEvaluate_Northbound(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name       string
		nb         *models.Northbound
		wantGreens int
		wantReds   int
	}{
		{"inflow", &models.Northbound{FiveDaySum: 42.5, LastDay: 10}, 1, 0},
		{"outflow", &models.Northbound{FiveDaySum: -12.3, LastDay: -1}, 0, 1},
		{"exactly flat reads red", &models.Northbound{FiveDaySum: 0, LastDay: 0}, 0, 1},
		{"absent", nil, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate(models.Snapshot{Northbound: tt.nb}, th)
			if ev.GreenCount() != tt.wantGreens || ev.RedCount() != tt.wantReds {
				t.Errorf("Evaluate(nb=%v) = %d greens, %d reds, want %d/%d",
					tt.nb, ev.GreenCount(), ev.RedCount(), tt.wantGreens, tt.wantReds)
			}
		})
	}
}

func TestEvaluate_Leverage(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name     string
		ratio    models.Metric
		wantReds int
	}{
		{"hot at bound", models.MetricOf(0.03), 1},
		{"hot above bound", models.MetricOf(0.047), 1},
		{"cool", models.MetricOf(0.025), 0},
		{"absent", models.NoMetric(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate(models.Snapshot{LeverageRatio: tt.ratio}, th)
			if ev.GreenCount() != 0 {
				t.Errorf("leverage must never light a green, got %v", ev.Greens)
			}
			if ev.RedCount() != tt.wantReds {
				t.Errorf("Evaluate(lev=%v) = %d reds, want %d", tt.ratio, ev.RedCount(), tt.wantReds)
			}
		})
	}
}

func TestEvaluate_Breadth(t *testing.T) {
	th := DefaultThresholds()

	tests := []struct {
		name       string
		breadth    models.Breadth
		wantGreens int
		wantReds   int
	}{
		{"improving", models.BreadthImproving, 1, 0},
		{"weakening", models.BreadthWeakening, 0, 1},
		{"unknown", models.BreadthUnknown, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Evaluate(models.Snapshot{Breadth: tt.breadth}, th)
			if ev.GreenCount() != tt.wantGreens || ev.RedCount() != tt.wantReds {
				t.Errorf("Evaluate(breadth=%v) = %d greens, %d reds, want %d/%d",
					tt.breadth, ev.GreenCount(), ev.RedCount(), tt.wantGreens, tt.wantReds)
			}
		})
	}
}

func TestEvaluate_EmptySnapshot(t *testing.T) {
	ev := Evaluate(models.Snapshot{}, DefaultThresholds())
	if ev.GreenCount() != 0 || ev.RedCount() != 0 {
		t.Errorf("empty snapshot lit signals: greens=%v reds=%v", ev.Greens, ev.Reds)
	}
}

func TestEvaluate_GreenListOrder(t *testing.T) {
	snap := models.Snapshot{
		IndexPE:       models.MetricOf(12.0),
		AllMarketPE:   models.MetricOf(12.6),
		ERP:           models.MetricOf(6.1),
		Breadth:       models.BreadthImproving,
		Northbound:    &models.Northbound{FiveDaySum: 42.5, LastDay: 10},
		LeverageRatio: models.MetricOf(0.01),
	}

	ev := Evaluate(snap, DefaultThresholds())

	wantGreens := []string{
		"valuation: SSE PE <= 17.5 ✅",
		"valuation: all-market proxy PE <= 18.0 ✅",
		"ERP >= 3.8% ✅",
		"earnings breadth improving quarter-on-quarter ✅",
		"northbound 5-day net inflow positive ✅",
	}
	if !reflect.DeepEqual(ev.Greens, wantGreens) {
		t.Errorf("Greens = %v, want %v", ev.Greens, wantGreens)
	}
	if ev.RedCount() != 0 {
		t.Errorf("Reds = %v, want none", ev.Reds)
	}
}

func TestEvaluate_RedListOrder(t *testing.T) {
	snap := models.Snapshot{
		IndexPE:       models.MetricOf(20.0),
		AllMarketPE:   models.MetricOf(21.0),
		ERP:           models.MetricOf(2.9),
		Breadth:       models.BreadthWeakening,
		Northbound:    &models.Northbound{FiveDaySum: -12.3, LastDay: -1},
		LeverageRatio: models.MetricOf(0.035),
	}

	ev := Evaluate(snap, DefaultThresholds())

	wantReds := []string{
		"valuation: SSE PE >= 18.5 ❌",
		"valuation: all-market proxy PE >= 19.0 ❌",
		"ERP <= 3.2% ❌",
		"earnings breadth weakening quarter-on-quarter ❌",
		"northbound 5-day net inflow negative ❌",
		"margin leverage >= 3% of float (hot) ❌",
	}
	if !reflect.DeepEqual(ev.Reds, wantReds) {
		t.Errorf("Reds = %v, want %v", ev.Reds, wantReds)
	}
	if ev.GreenCount() != 0 {
		t.Errorf("Greens = %v, want none", ev.Greens)
	}
}

func TestEvaluate_Deterministic(t *testing.T) {
	snap := models.Snapshot{
		IndexPE:     models.MetricOf(17.5),
		AllMarketPE: models.MetricOf(19.0),
		ERP:         models.MetricOf(3.36),
		Northbound:  &models.Northbound{FiveDaySum: 1.0, LastDay: 1.0},
	}
	th := DefaultThresholds()

	first := Evaluate(snap, th)
	second := Evaluate(snap, th)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeat evaluation differs: %v vs %v", first, second)
	}
}
