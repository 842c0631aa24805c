package analysis

import (
	"hermannm.dev/findash/dataset"
	"hermannm.dev/wrap"
)

// Dashboard holds everything rendered for one filter selection.
type Dashboard struct {
	Filter       FilterSpec            `json:"filter"`
	RowCount     int                   `json:"rowCount"`
	Metrics      Metrics               `json:"metrics"`
	Aggregations []AggregationResult   `json:"aggregations"`
	Preview      []dataset.Transaction `json:"preview"`
}

// BuildDashboard filters the table and derives metrics, aggregations and a preview of at most
// previewLimit rows from the result.
func BuildDashboard(table *dataset.Table, spec FilterSpec, previewLimit int) (Dashboard, error) {
	filtered, err := Filter(table, spec)
	if err != nil {
		return Dashboard{}, wrap.Error(err, "failed to filter transactions")
	}

	return NewDashboard(filtered, spec, previewLimit), nil
}

// NewDashboard derives the dashboard from a table that has already been filtered by spec.
func NewDashboard(filtered *dataset.Table, spec FilterSpec, previewLimit int) Dashboard {
	return Dashboard{
		Filter:       spec,
		RowCount:     filtered.Len(),
		Metrics:      Summarize(filtered),
		Aggregations: AggregateAll(filtered),
		Preview:      filtered.Head(previewLimit).Transactions(),
	}
}
