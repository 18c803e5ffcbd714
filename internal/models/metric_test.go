package models

import "testing"

func TestMetric(t *testing.T) {
	tests := []struct {
		name        string
		metric      Metric
		wantPresent bool
		wantString  string
	}{
		{name: "present value", metric: MetricOf(17.234), wantPresent: true, wantString: "17.23"},
		{name: "present zero", metric: MetricOf(0), wantPresent: true, wantString: "0.00"},
		{name: "present negative", metric: MetricOf(-3.5), wantPresent: true, wantString: "-3.50"},
		{name: "absent", metric: NoMetric(), wantPresent: false, wantString: "N/A"},
		{name: "zero value is absent", metric: Metric{}, wantPresent: false, wantString: "N/A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.metric.Present(); got != tt.wantPresent {
				t.Errorf("Present() = %v, want %v", got, tt.wantPresent)
			}
			if got := tt.metric.String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{100.0/18.0 - 2.2, 3.36},
		{3.3544, 3.35},
		{-2.567, -2.57},
		{0, 0},
		{17.5, 17.5},
	}

	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBreadthString(t *testing.T) {
	if BreadthUnknown.String() != "N/A" {
		t.Errorf("unknown breadth should render as N/A")
	}
	if BreadthImproving.String() != "improving" {
		t.Errorf("improving breadth rendered as %q", BreadthImproving.String())
	}
	if BreadthWeakening.String() != "weakening" {
		t.Errorf("weakening breadth rendered as %q", BreadthWeakening.String())
	}
}
