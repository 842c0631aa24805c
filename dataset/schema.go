package dataset

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// Schema maps the required columns to their positions in a source's header row. Column order is
// irrelevant, and columns beyond the required ones are ignored.
type Schema struct {
	clientIndex   int
	countryIndex  int
	currencyIndex int
	dateIndex     int
	usdmIndex     int
	columnCount   int
}

func NewSchema(header []string) (Schema, error) {
	indexes := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, byteOrderMark))
		if _, duplicate := indexes[name]; !duplicate {
			indexes[name] = i
		}
	}

	var missing []string
	lookup := func(column string) int {
		index, ok := indexes[column]
		if !ok {
			missing = append(missing, column)
		}
		return index
	}

	schema := Schema{
		clientIndex:   lookup(ColumnClient),
		countryIndex:  lookup(ColumnCountry),
		currencyIndex: lookup(ColumnCurrency),
		dateIndex:     lookup(ColumnDate),
		usdmIndex:     lookup(ColumnUSDM),
		columnCount:   len(header),
	}
	if len(missing) > 0 {
		return Schema{}, &SchemaError{MissingColumns: missing}
	}

	return schema, nil
}

const byteOrderMark = "\ufeff"

// ParseRow converts a raw row into a transaction. Failure to parse Date or USD_M gives a
// *DataQualityError.
func (schema Schema) ParseRow(row []string, rowNumber int) (Transaction, error) {
	if len(row) != schema.columnCount {
		return Transaction{}, &DataQualityError{
			Row:   rowNumber,
			Value: strings.Join(row, ","),
			Err: fmt.Errorf(
				"row has %d fields, but header has %d columns",
				len(row),
				schema.columnCount,
			),
		}
	}

	dateField := row[schema.dateIndex]
	date, err := ParseDate(dateField)
	if err != nil {
		return Transaction{}, &DataQualityError{
			Row: rowNumber, Column: ColumnDate, Value: dateField, Err: err,
		}
	}

	usdmField := row[schema.usdmIndex]
	usdm, err := ParseAmount(usdmField)
	if err != nil {
		return Transaction{}, &DataQualityError{
			Row: rowNumber, Column: ColumnUSDM, Value: usdmField, Err: err,
		}
	}

	return Transaction{
		Client:   row[schema.clientIndex],
		Country:  row[schema.countryIndex],
		Currency: row[schema.currencyIndex],
		Date:     date,
		USDM:     usdm,
	}, nil
}

// Layouts tried after plain ISO dates. Any time of day is discarded.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04",
	"2006/01/02",
	"2006/01/02 15:04:05",
	"1/2/2006",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
}

func ParseDate(field string) (civil.Date, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return civil.Date{}, errors.New("date is blank")
	}

	if date, err := civil.ParseDate(field); err == nil {
		return date, nil
	}

	for _, layout := range dateTimeLayouts {
		if parsed, err := time.Parse(layout, field); err == nil {
			return civil.DateOf(parsed), nil
		}
	}

	return civil.Date{}, fmt.Errorf("unrecognized date format '%s'", field)
}

func ParseAmount(field string) (decimal.Decimal, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return decimal.Decimal{}, errors.New("amount is blank")
	}
	return decimal.NewFromString(field)
}
