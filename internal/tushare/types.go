// Package tushare provides a client for the TuShare Pro data API, used for
// the optional earnings-breadth indicator. All endpoints go through a single
// POST envelope keyed by api_name.
package tushare

import (
	"fmt"
)

// APIError represents a failed query: either a non-2xx transport response or
// a response envelope with a non-zero application code.
type APIError struct {
	StatusCode int
	Code       int
	Message    string
	APIName    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tushare API error: %s (status: %d, code: %d, api: %s)", e.Message, e.StatusCode, e.Code, e.APIName)
}

// HTTPStatus returns the HTTP status code carried by the error.
func (e *APIError) HTTPStatus() int {
	return e.StatusCode
}

// ResultSet is the tabular payload of a query response: column names plus
// row-major cells. Cells decode as float64, string or nil.
type ResultSet struct {
	Fields []string
	Items  [][]interface{}
}

// ColumnIndex returns the position of a named field, or -1 when absent.
func (rs *ResultSet) ColumnIndex(name string) int {
	for i, f := range rs.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// FloatColumn extracts a numeric column by name. Null and non-numeric cells
// are skipped, so the result may be shorter than Items.
func (rs *ResultSet) FloatColumn(name string) []float64 {
	idx := rs.ColumnIndex(name)
	if idx < 0 {
		return nil
	}

	out := make([]float64, 0, len(rs.Items))
	for _, row := range rs.Items {
		if idx >= len(row) {
			continue
		}
		if v, ok := row[idx].(float64); ok {
			out = append(out, v)
		}
	}
	return out
}
