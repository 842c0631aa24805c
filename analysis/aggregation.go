package analysis

import (
	"fmt"
	"slices"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"hermannm.dev/findash/dataset"
)

// AggregationResult is a grouped, sorted and possibly truncated table, ready for charting.
type AggregationResult struct {
	Kind        AggregationKind     `json:"kind"`
	KeyColumn   string              `json:"keyColumn"`
	ValueColumn string              `json:"valueColumn"`
	Operator    AggregationOperator `json:"operator"`
	SortOrder   SortOrder           `json:"sortOrder"`
	// 0 means no limit.
	Limit int             `json:"limit"`
	Rows  []AggregatedRow `json:"rows"`
}

type AggregatedRow struct {
	Key   string          `json:"key"`
	Value decimal.Decimal `json:"value"`
}

const (
	TopClientsLimit           = 10
	CountryDistributionLimit  = 15
	CurrencyDistributionLimit = 10

	// Value column name for row counts.
	CountColumn = "Count"
)

var aggregationHandlers = map[AggregationKind]func(*dataset.Table) AggregationResult{
	AggregationTimeSeries:           aggregateTimeSeries,
	AggregationTopClients:           aggregateTopClients,
	AggregationCountryDistribution:  aggregateCountryDistribution,
	AggregationCurrencyDistribution: aggregateCurrencyDistribution,
}

// Aggregate is a pure function of the table's rows, so equal tables give equal results.
func Aggregate(table *dataset.Table, kind AggregationKind) (AggregationResult, error) {
	handler, ok := aggregationHandlers[kind]
	if !ok {
		return AggregationResult{}, fmt.Errorf("unrecognized aggregation kind %v", kind)
	}
	return handler(table), nil
}

// AggregateAll runs every aggregation kind, in the order of AggregationKinds.
func AggregateAll(table *dataset.Table) []AggregationResult {
	results := make([]AggregationResult, 0, len(AggregationKinds))
	for _, kind := range AggregationKinds {
		results = append(results, aggregationHandlers[kind](table))
	}
	return results
}

func aggregateTimeSeries(table *dataset.Table) AggregationResult {
	groups := groupBy(table, transactionDate, transactionAmount)

	slices.SortStableFunc(groups, func(a group[civil.Date], b group[civil.Date]) int {
		return compareDates(a.key, b.key)
	})

	return AggregationResult{
		Kind:        AggregationTimeSeries,
		KeyColumn:   dataset.ColumnDate,
		ValueColumn: dataset.ColumnUSDM,
		Operator:    OperatorSum,
		SortOrder:   SortOrderAscending,
		Rows:        toAggregatedRows(groups, 0, civil.Date.String),
	}
}

func aggregateTopClients(table *dataset.Table) AggregationResult {
	groups := groupBy(table, transactionClient, transactionAmount)
	sortByValueDescending(groups)

	return AggregationResult{
		Kind:        AggregationTopClients,
		KeyColumn:   dataset.ColumnClient,
		ValueColumn: dataset.ColumnUSDM,
		Operator:    OperatorSum,
		SortOrder:   SortOrderDescending,
		Limit:       TopClientsLimit,
		Rows:        toAggregatedRows(groups, TopClientsLimit, identity),
	}
}

func aggregateCountryDistribution(table *dataset.Table) AggregationResult {
	groups := groupBy(table, transactionCountry, transactionAmount)
	sortByValueDescending(groups)

	return AggregationResult{
		Kind:        AggregationCountryDistribution,
		KeyColumn:   dataset.ColumnCountry,
		ValueColumn: dataset.ColumnUSDM,
		Operator:    OperatorSum,
		SortOrder:   SortOrderDescending,
		Limit:       CountryDistributionLimit,
		Rows:        toAggregatedRows(groups, CountryDistributionLimit, identity),
	}
}

func aggregateCurrencyDistribution(table *dataset.Table) AggregationResult {
	groups := groupBy(table, transactionCurrency, countOne)
	sortByValueDescending(groups)

	return AggregationResult{
		Kind:        AggregationCurrencyDistribution,
		KeyColumn:   dataset.ColumnCurrency,
		ValueColumn: CountColumn,
		Operator:    OperatorCount,
		SortOrder:   SortOrderDescending,
		Limit:       CurrencyDistributionLimit,
		Rows:        toAggregatedRows(groups, CurrencyDistributionLimit, identity),
	}
}

type group[K comparable] struct {
	key   K
	value decimal.Decimal
}

// groupBy sums value per key. Groups are returned in order of first appearance, so a stable sort
// afterwards breaks ties by input order.
func groupBy[K comparable](
	table *dataset.Table,
	key func(dataset.Transaction) K,
	value func(dataset.Transaction) decimal.Decimal,
) []group[K] {
	var groups []group[K]
	indexes := make(map[K]int)

	for i := 0; i < table.Len(); i++ {
		transaction := table.Row(i)
		groupKey := key(transaction)

		if index, ok := indexes[groupKey]; ok {
			groups[index].value = groups[index].value.Add(value(transaction))
		} else {
			indexes[groupKey] = len(groups)
			groups = append(groups, group[K]{key: groupKey, value: value(transaction)})
		}
	}

	return groups
}

func sortByValueDescending[K comparable](groups []group[K]) {
	slices.SortStableFunc(groups, func(a group[K], b group[K]) int {
		return b.value.Cmp(a.value)
	})
}

func toAggregatedRows[K comparable](
	groups []group[K],
	limit int,
	formatKey func(K) string,
) []AggregatedRow {
	if limit > 0 && len(groups) > limit {
		groups = groups[:limit]
	}

	rows := make([]AggregatedRow, 0, len(groups))
	for _, grouped := range groups {
		rows = append(rows, AggregatedRow{Key: formatKey(grouped.key), Value: grouped.value})
	}
	return rows
}

func compareDates(a civil.Date, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

func transactionDate(transaction dataset.Transaction) civil.Date { return transaction.Date }
func transactionClient(transaction dataset.Transaction) string   { return transaction.Client }
func transactionCountry(transaction dataset.Transaction) string  { return transaction.Country }
func transactionCurrency(transaction dataset.Transaction) string { return transaction.Currency }

func transactionAmount(transaction dataset.Transaction) decimal.Decimal {
	return transaction.USDM
}

var one = decimal.NewFromInt(1)

func countOne(dataset.Transaction) decimal.Decimal { return one }

func identity(value string) string { return value }
