package analysis

import (
	"fmt"

	"cloud.google.com/go/civil"
	"hermannm.dev/findash/dataset"
)

// FilterSpec selects transactions. An empty value set places no restriction on its column. The
// date range is inclusive on both ends.
type FilterSpec struct {
	Clients    []string   `json:"clients"`
	Countries  []string   `json:"countries"`
	Currencies []string   `json:"currencies"`
	StartDate  civil.Date `json:"startDate"`
	EndDate    civil.Date `json:"endDate"`
}

type InvalidFilterError struct {
	StartDate civil.Date
	EndDate   civil.Date
	Reason    string
}

func (err *InvalidFilterError) Error() string {
	return fmt.Sprintf(
		"invalid filter date range [%s, %s]: %s",
		err.StartDate,
		err.EndDate,
		err.Reason,
	)
}

func (spec FilterSpec) Validate() error {
	if !spec.StartDate.IsValid() || !spec.EndDate.IsValid() {
		return &InvalidFilterError{
			StartDate: spec.StartDate,
			EndDate:   spec.EndDate,
			Reason:    "start and end dates must both be valid calendar dates",
		}
	}
	if spec.StartDate.After(spec.EndDate) {
		return &InvalidFilterError{
			StartDate: spec.StartDate,
			EndDate:   spec.EndDate,
			Reason:    "start date is after end date",
		}
	}
	return nil
}

// DefaultFilterSpec matches every row of the table the options were taken from.
func DefaultFilterSpec(options dataset.FilterOptions) FilterSpec {
	return FilterSpec{StartDate: options.MinDate, EndDate: options.MaxDate}
}

// Filter returns the rows of the table that satisfy every predicate of the filter, in their
// original order. Fails with *InvalidFilterError if the filter's date range is invalid.
func Filter(table *dataset.Table, spec FilterSpec) (*dataset.Table, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	clients := newValueSet(spec.Clients)
	countries := newValueSet(spec.Countries)
	currencies := newValueSet(spec.Currencies)

	return table.Select(func(transaction dataset.Transaction) bool {
		return clients.allows(transaction.Client) &&
			countries.allows(transaction.Country) &&
			currencies.allows(transaction.Currency) &&
			!transaction.Date.Before(spec.StartDate) &&
			!transaction.Date.After(spec.EndDate)
	}), nil
}

type valueSet map[string]struct{}

func newValueSet(values []string) valueSet {
	set := make(valueSet, len(values))
	for _, value := range values {
		set[value] = struct{}{}
	}
	return set
}

// An empty set allows every value.
func (set valueSet) allows(value string) bool {
	if len(set) == 0 {
		return true
	}
	_, ok := set[value]
	return ok
}
