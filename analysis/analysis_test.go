package analysis_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hermannm.dev/findash/analysis"
	"hermannm.dev/findash/dataset"
)

func date(year int, month int, day int) civil.Date {
	return civil.Date{Year: year, Month: time.Month(month), Day: day}
}

func amount(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func scenarioTable() *dataset.Table {
	return dataset.NewTable([]dataset.Transaction{
		{Client: "A", Country: "US", Currency: "USD", Date: date(2024, 1, 1), USDM: amount("10")},
		{Client: "B", Country: "MX", Currency: "MXN", Date: date(2024, 1, 2), USDM: amount("5")},
	})
}

// A larger table with repeated keys and ties.
func mixedTable() *dataset.Table {
	var transactions []dataset.Transaction
	for i := 0; i < 40; i++ {
		transactions = append(transactions, dataset.Transaction{
			Client:   fmt.Sprintf("client-%02d", i%13),
			Country:  fmt.Sprintf("country-%02d", i%17),
			Currency: fmt.Sprintf("cur-%02d", i%12),
			Date:     date(2024, 1, 1+i%9),
			USDM:     amount(fmt.Sprintf("%d.25", i%5)),
		})
	}
	return dataset.NewTable(transactions)
}

func fullRange(table *dataset.Table) analysis.FilterSpec {
	return analysis.DefaultFilterSpec(table.Options())
}

func TestScenarioAllRows(t *testing.T) {
	spec := analysis.FilterSpec{
		Clients:    []string{},
		Countries:  []string{},
		Currencies: []string{},
		StartDate:  date(2024, 1, 1),
		EndDate:    date(2024, 1, 2),
	}

	filtered, err := analysis.Filter(scenarioTable(), spec)
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Len())

	metrics := analysis.Summarize(filtered)
	assert.True(t, metrics.TotalUSDB.Equal(amount("0.015")), "got %s", metrics.TotalUSDB)
	assert.Equal(t, 2, metrics.DistinctClients)
	assert.Equal(t, 2, metrics.DistinctCountries)
	assert.Equal(t, 2, metrics.DistinctCurrencies)
}

func TestScenarioCountryFilter(t *testing.T) {
	spec := analysis.FilterSpec{
		Countries: []string{"US"},
		StartDate: date(2024, 1, 1),
		EndDate:   date(2024, 1, 2),
	}

	filtered, err := analysis.Filter(scenarioTable(), spec)
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Len())
	assert.Equal(t, "A", filtered.Row(0).Client)

	topClients, err := analysis.Aggregate(filtered, analysis.AggregationTopClients)
	require.NoError(t, err)
	require.Len(t, topClients.Rows, 1)
	assert.Equal(t, "A", topClients.Rows[0].Key)
	assert.True(t, topClients.Rows[0].Value.Equal(amount("10")))
}

func TestScenarioInvertedDateRange(t *testing.T) {
	spec := analysis.FilterSpec{StartDate: date(2024, 1, 3), EndDate: date(2024, 1, 1)}

	_, err := analysis.Filter(scenarioTable(), spec)

	var filterErr *analysis.InvalidFilterError
	require.True(t, errors.As(err, &filterErr))
	assert.Equal(t, date(2024, 1, 3), filterErr.StartDate)
}

func TestFilterRejectsUnsetDates(t *testing.T) {
	_, err := analysis.Filter(scenarioTable(), analysis.FilterSpec{})

	var filterErr *analysis.InvalidFilterError
	assert.True(t, errors.As(err, &filterErr))
}

func TestFilterDateRangeIsInclusive(t *testing.T) {
	spec := analysis.FilterSpec{StartDate: date(2024, 1, 2), EndDate: date(2024, 1, 2)}

	filtered, err := analysis.Filter(scenarioTable(), spec)
	require.NoError(t, err)
	require.Equal(t, 1, filtered.Len())
	assert.Equal(t, "B", filtered.Row(0).Client)
}

func TestFilterCombinesPredicates(t *testing.T) {
	table := mixedTable()
	spec := fullRange(table)
	spec.Clients = []string{"client-01", "client-02"}
	spec.Currencies = []string{"cur-01"}

	filtered, err := analysis.Filter(table, spec)
	require.NoError(t, err)

	require.NotZero(t, filtered.Len())
	for _, transaction := range filtered.Transactions() {
		assert.Contains(t, spec.Clients, transaction.Client)
		assert.Equal(t, "cur-01", transaction.Currency)
	}
}

func TestFilterIsStable(t *testing.T) {
	table := mixedTable()
	spec := fullRange(table)
	spec.Countries = []string{"country-03", "country-01"}

	filtered, err := analysis.Filter(table, spec)
	require.NoError(t, err)

	var expected []dataset.Transaction
	for _, transaction := range table.Transactions() {
		if transaction.Country == "country-03" || transaction.Country == "country-01" {
			expected = append(expected, transaction)
		}
	}
	assert.True(t, dataset.NewTable(expected).Equal(filtered))
}

func TestFilterIsIdempotent(t *testing.T) {
	table := mixedTable()
	spec := analysis.FilterSpec{
		Clients:   []string{"client-03", "client-04", "client-05"},
		StartDate: date(2024, 1, 2),
		EndDate:   date(2024, 1, 6),
	}

	once, err := analysis.Filter(table, spec)
	require.NoError(t, err)
	twice, err := analysis.Filter(once, spec)
	require.NoError(t, err)

	assert.True(t, once.Equal(twice))
}

func TestEmptySpecWithFullRangeIsIdentity(t *testing.T) {
	table := mixedTable()

	filtered, err := analysis.Filter(table, fullRange(table))
	require.NoError(t, err)

	assert.True(t, table.Equal(filtered))
}

func TestFilterEmptyTableAndNoMatches(t *testing.T) {
	spec := analysis.FilterSpec{StartDate: date(2024, 1, 1), EndDate: date(2024, 12, 31)}

	filtered, err := analysis.Filter(dataset.NewTable(nil), spec)
	require.NoError(t, err)
	assert.Zero(t, filtered.Len())

	spec.Clients = []string{"nobody"}
	filtered, err = analysis.Filter(scenarioTable(), spec)
	require.NoError(t, err)
	assert.Zero(t, filtered.Len())
}

func TestSummarizeEmpty(t *testing.T) {
	metrics := analysis.Summarize(dataset.NewTable(nil))

	assert.True(t, metrics.TotalUSDB.IsZero())
	assert.Zero(t, metrics.DistinctClients)
	assert.Zero(t, metrics.DistinctCountries)
	assert.Zero(t, metrics.DistinctCurrencies)
}

func TestAggregationCaps(t *testing.T) {
	table := mixedTable()

	for _, testCase := range []struct {
		kind  analysis.AggregationKind
		limit int
	}{
		{analysis.AggregationTopClients, 10},
		{analysis.AggregationCountryDistribution, 15},
		{analysis.AggregationCurrencyDistribution, 10},
	} {
		t.Run(testCase.kind.String(), func(t *testing.T) {
			result, err := analysis.Aggregate(table, testCase.kind)
			require.NoError(t, err)
			assert.Len(t, result.Rows, testCase.limit)
			assert.Equal(t, testCase.limit, result.Limit)
		})
	}
}

func TestAggregationsSortDescendingWithStableTies(t *testing.T) {
	table := dataset.NewTable([]dataset.Transaction{
		{Client: "X", Country: "SE", Currency: "SEK", Date: date(2024, 2, 1), USDM: amount("3")},
		{Client: "Y", Country: "NO", Currency: "NOK", Date: date(2024, 2, 1), USDM: amount("7")},
		{Client: "Z", Country: "DK", Currency: "SEK", Date: date(2024, 2, 1), USDM: amount("3")},
		{Client: "X", Country: "SE", Currency: "DKK", Date: date(2024, 2, 1), USDM: amount("4")},
	})

	topClients, err := analysis.Aggregate(table, analysis.AggregationTopClients)
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z"}, keys(topClients))
	assert.True(t, topClients.Rows[0].Value.Equal(amount("7")))

	countries, err := analysis.Aggregate(table, analysis.AggregationCountryDistribution)
	require.NoError(t, err)
	// SE and NO tie at 7, SE appears first.
	assert.Equal(t, []string{"SE", "NO", "DK"}, keys(countries))

	currencies, err := analysis.Aggregate(table, analysis.AggregationCurrencyDistribution)
	require.NoError(t, err)
	assert.Equal(t, []string{"SEK", "NOK", "DKK"}, keys(currencies))
	assert.True(t, currencies.Rows[0].Value.Equal(amount("2")))
	assert.Equal(t, analysis.OperatorCount, currencies.Operator)
	assert.Equal(t, analysis.CountColumn, currencies.ValueColumn)
}

func TestTimeSeriesIsAscendingAndConservesSum(t *testing.T) {
	table := mixedTable()

	series, err := analysis.Aggregate(table, analysis.AggregationTimeSeries)
	require.NoError(t, err)

	assert.Len(t, series.Rows, 9)
	assert.Zero(t, series.Limit)
	for i := 1; i < len(series.Rows); i++ {
		assert.Less(t, series.Rows[i-1].Key, series.Rows[i].Key)
	}

	seriesTotal := decimal.Zero
	for _, row := range series.Rows {
		seriesTotal = seriesTotal.Add(row.Value)
	}
	tableTotal := decimal.Zero
	for _, transaction := range table.Transactions() {
		tableTotal = tableTotal.Add(transaction.USDM)
	}
	assert.True(t, seriesTotal.Equal(tableTotal))
}

func TestAggregateIsPure(t *testing.T) {
	table := mixedTable()

	for _, kind := range analysis.AggregationKinds {
		first, err := analysis.Aggregate(table, kind)
		require.NoError(t, err)
		second, err := analysis.Aggregate(dataset.NewTable(table.Transactions()), kind)
		require.NoError(t, err)

		assert.Equal(t, first, second)
	}
}

func TestAggregateUnknownKind(t *testing.T) {
	_, err := analysis.Aggregate(scenarioTable(), analysis.AggregationKind(0))
	assert.Error(t, err)
}

func TestAggregateAllOrder(t *testing.T) {
	results := analysis.AggregateAll(scenarioTable())

	require.Len(t, results, len(analysis.AggregationKinds))
	for i, kind := range analysis.AggregationKinds {
		assert.Equal(t, kind, results[i].Kind)
	}
}

func TestAggregateEmptyTable(t *testing.T) {
	for _, result := range analysis.AggregateAll(dataset.NewTable(nil)) {
		assert.Empty(t, result.Rows)
	}
}

func TestBuildDashboard(t *testing.T) {
	table := mixedTable()
	spec := fullRange(table)
	spec.Countries = []string{"country-00", "country-01", "country-02"}

	dashboard, err := analysis.BuildDashboard(table, spec, 3)
	require.NoError(t, err)

	filtered, err := analysis.Filter(table, spec)
	require.NoError(t, err)

	assert.Equal(t, filtered.Len(), dashboard.RowCount)
	assert.Equal(t, analysis.Summarize(filtered), dashboard.Metrics)
	assert.Len(t, dashboard.Aggregations, 4)
	assert.Equal(t, filtered.Head(3).Transactions(), dashboard.Preview)
}

func TestNewDashboardFromEmptyTable(t *testing.T) {
	dashboard := analysis.NewDashboard(dataset.NewTable(nil), analysis.FilterSpec{}, 10)

	assert.Zero(t, dashboard.RowCount)
	assert.Equal(t, analysis.Summarize(dataset.NewTable(nil)), dashboard.Metrics)
	assert.NotNil(t, dashboard.Preview)
	assert.Empty(t, dashboard.Preview)
	assert.Len(t, dashboard.Aggregations, 4)
}

func TestBuildDashboardPropagatesInvalidFilter(t *testing.T) {
	_, err := analysis.BuildDashboard(
		scenarioTable(),
		analysis.FilterSpec{StartDate: date(2024, 2, 1), EndDate: date(2024, 1, 1)},
		10,
	)

	var filterErr *analysis.InvalidFilterError
	assert.True(t, errors.As(err, &filterErr))
}

func TestAggregationKindJSON(t *testing.T) {
	encoded, err := json.Marshal(analysis.AggregationCountryDistribution)
	require.NoError(t, err)
	assert.Equal(t, `"COUNTRY_DISTRIBUTION"`, string(encoded))

	var decoded analysis.AggregationKind
	require.NoError(t, json.Unmarshal([]byte(`"TOP_CLIENTS"`), &decoded))
	assert.Equal(t, analysis.AggregationTopClients, decoded)
}

func TestFilterSpecJSON(t *testing.T) {
	var spec analysis.FilterSpec
	require.NoError(t, json.Unmarshal(
		[]byte(`{"clients":["A"],"startDate":"2024-01-01","endDate":"2024-01-31"}`),
		&spec,
	))

	assert.Equal(t, []string{"A"}, spec.Clients)
	assert.Equal(t, date(2024, 1, 1), spec.StartDate)
	assert.Equal(t, date(2024, 1, 31), spec.EndDate)
}

func keys(result analysis.AggregationResult) []string {
	keys := make([]string, 0, len(result.Rows))
	for _, row := range result.Rows {
		keys = append(keys, row.Key)
	}
	return keys
}
