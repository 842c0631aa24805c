package clickhouse

import (
	"time"

	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"hermannm.dev/enumnames"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/findash/db"
)

// See https://clickhouse.com/docs/en/sql-reference/data-types
var clickhouseDataTypes = enumnames.NewMap(map[db.DataType]string{
	db.DataTypeText:    "String",
	db.DataTypeInt:     "UInt64",
	db.DataTypeDate:    "Date32",
	db.DataTypeDecimal: "Decimal(18, 6)",
	db.DataTypeUUID:    "UUID",
})

// Columns read back into transactions, in the order scanned by scanTransaction.
var transactionColumns = []db.Column{
	{Name: dataset.ColumnClient},
	{Name: dataset.ColumnCountry},
	{Name: dataset.ColumnCurrency},
	{Name: dataset.ColumnDate},
	{Name: dataset.ColumnUSDM},
}

// toRow converts a transaction to insert values in the order of db.TableColumns.
func toRow(id uuid.UUID, rowIndex int, transaction dataset.Transaction) []any {
	return []any{
		id.String(),
		uint64(rowIndex),
		transaction.Client,
		transaction.Country,
		transaction.Currency,
		transaction.Date.In(time.UTC),
		transaction.USDM,
	}
}

func fromDate(date time.Time) civil.Date {
	return civil.DateOf(date)
}
