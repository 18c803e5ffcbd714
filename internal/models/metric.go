// Package models defines the indicator readings shared across the fetch,
// evaluation, and report layers. Nothing here is mutated after construction.
package models

import (
	"fmt"
	"math"
)

// Metric is an optional numeric indicator reading. A reading is either
// present with a value or explicitly absent, never partially valid. The zero
// value is absent.
type Metric struct {
	value   float64
	present bool
}

// MetricOf returns a present reading.
func MetricOf(v float64) Metric {
	return Metric{value: v, present: true}
}

// NoMetric returns an absent reading.
func NoMetric() Metric {
	return Metric{}
}

// Present reports whether the reading holds a value.
func (m Metric) Present() bool {
	return m.present
}

// Value returns the reading, or zero when absent. Callers gate on Present.
func (m Metric) Value() float64 {
	return m.value
}

// String renders the reading with two decimals, or the N/A sentinel.
func (m Metric) String() string {
	if !m.present {
		return "N/A"
	}
	return fmt.Sprintf("%.2f", m.value)
}

// Round2 rounds to two decimal places, the precision every panel figure
// carries.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
