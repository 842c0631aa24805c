package csv_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"hermannm.dev/findash/csv"
	"hermannm.dev/findash/dataset"
)

func openTestFile(t *testing.T, name string) *os.File {
	t.Helper()

	file, err := os.Open("testdata/" + name)
	require.NoError(t, err)
	t.Cleanup(func() { file.Close() })
	return file
}

func TestReadTable(t *testing.T) {
	table, err := csv.ReadTable(openTestFile(t, "transactions.csv"), csv.DefaultReadOptions)
	require.NoError(t, err)
	require.Equal(t, 4, table.Len())

	first := table.Row(0)
	assert.Equal(t, "A", first.Client)
	assert.Equal(t, "US", first.Country)
	assert.Equal(t, "USD", first.Currency)
	assert.Equal(t, civil.Date{Year: 2024, Month: 1, Day: 1}, first.Date)
	assert.True(t, first.USDM.Equal(decimal.NewFromInt(10)))

	quoted := table.Row(2)
	assert.Equal(t, "Banco, S.A.", quoted.Client)
	assert.Equal(t, civil.Date{Year: 2024, Month: 1, Day: 2}, quoted.Date)
}

func TestReadTableDeducesDelimiterAndIgnoresColumnOrder(t *testing.T) {
	table, err := csv.ReadTable(
		openTestFile(t, "reordered_semicolon.csv"),
		csv.ReadOptions{Delimiter: 0},
	)
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, "C", table.Row(0).Client)
	assert.Equal(t, "DE", table.Row(0).Country)
	assert.Equal(t, "EUR", table.Row(0).Currency)
	assert.True(t, table.Row(0).USDM.Equal(decimal.RequireFromString("1.5")))
}

func TestReadTableFailsOnInvalidDate(t *testing.T) {
	_, err := csv.ReadTable(openTestFile(t, "invalid_date.csv"), csv.DefaultReadOptions)

	var qualityErr *dataset.DataQualityError
	require.True(t, errors.As(err, &qualityErr))
	assert.Equal(t, 3, qualityErr.Row)
	assert.Equal(t, "someday", qualityErr.Value)
}

func TestReadTableCanSkipInvalidRows(t *testing.T) {
	table, err := csv.ReadTable(
		openTestFile(t, "invalid_date.csv"),
		csv.ReadOptions{Delimiter: ',', SkipInvalidRows: true},
	)
	require.NoError(t, err)

	require.Equal(t, 2, table.Len())
	assert.Equal(t, "A", table.Row(0).Client)
	assert.Equal(t, "C", table.Row(1).Client)
}

func TestReadTableFailsOnMissingColumn(t *testing.T) {
	_, err := csv.ReadTable(openTestFile(t, "missing_column.csv"), csv.DefaultReadOptions)

	var schemaErr *dataset.SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, []string{"Currency"}, schemaErr.MissingColumns)
}

func TestReadTableReportsShortRowAsDataQualityError(t *testing.T) {
	input := "Client,Country,Currency,Date,USD_M\nA,US,USD,2024-01-01\n"

	_, err := csv.ReadTable(strings.NewReader(input), csv.DefaultReadOptions)

	var qualityErr *dataset.DataQualityError
	require.True(t, errors.As(err, &qualityErr))
	assert.Equal(t, 2, qualityErr.Row)
}

func TestReadTableEmptyFile(t *testing.T) {
	_, err := csv.ReadTable(bytes.NewReader(nil), csv.DefaultReadOptions)
	assert.Error(t, err)
}

func TestReadTableHeaderOnly(t *testing.T) {
	table, err := csv.ReadTable(
		strings.NewReader("Client,Country,Currency,Date,USD_M\n"),
		csv.DefaultReadOptions,
	)
	require.NoError(t, err)
	assert.Zero(t, table.Len())
}

func TestFileSource(t *testing.T) {
	source := csv.FileSource{Options: csv.DefaultReadOptions}

	table, err := source.ReadTable(context.Background(), "testdata/transactions.csv")
	require.NoError(t, err)
	assert.Equal(t, 4, table.Len())
}

func TestFileSourceMissingFile(t *testing.T) {
	source := csv.FileSource{Options: csv.DefaultReadOptions}

	_, err := source.ReadTable(context.Background(), "testdata/does-not-exist.csv")

	var sourceErr *dataset.DataSourceError
	require.True(t, errors.As(err, &sourceErr))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoaderWithFileSource(t *testing.T) {
	loader := dataset.NewLoader()
	loader.RegisterSource(dataset.SchemeFile, csv.FileSource{Options: csv.DefaultReadOptions})

	first, err := loader.Load(context.Background(), "testdata/transactions.csv")
	require.NoError(t, err)
	second, err := loader.Load(context.Background(), "file://testdata/transactions.csv")
	require.NoError(t, err)

	assert.True(t, first.Equal(second))
}
