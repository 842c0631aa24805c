package csv

import (
	"errors"
	"io"
	"log/slog"

	"hermannm.dev/devlog/log"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/wrap"
)

type ReadOptions struct {
	// 0 deduces the delimiter from the file.
	Delimiter rune
	// Drops rows with unparseable values instead of failing. Dropped rows are logged as a count.
	SkipInvalidRows bool
}

// DefaultReadOptions reads comma-separated files and fails on the first invalid row.
var DefaultReadOptions = ReadOptions{Delimiter: ',', SkipInvalidRows: false}

// ReadTable parses a CSV file with a header row into a table. Fails with *dataset.SchemaError if
// required columns are missing, and *dataset.DataQualityError for an invalid row unless
// options.SkipInvalidRows is set.
func ReadTable(csvFile io.ReadSeeker, options ReadOptions) (*dataset.Table, error) {
	reader, err := NewReader(csvFile, options.Delimiter)
	if err != nil {
		return nil, err
	}

	header, err := reader.ReadHeaderRow()
	if err != nil {
		return nil, wrap.Error(err, "failed to read CSV column names from header row")
	}

	schema, err := dataset.NewSchema(header)
	if err != nil {
		return nil, err
	}

	var transactions []dataset.Transaction
	skipped := 0

	for {
		row, rowNumber, done, err := reader.ReadRow()
		if done {
			break
		}
		if err != nil {
			return nil, wrap.Errorf(err, "failed to read row %d of CSV file", rowNumber)
		}

		transaction, err := schema.ParseRow(row, rowNumber)
		if err != nil {
			var qualityErr *dataset.DataQualityError
			if options.SkipInvalidRows && errors.As(err, &qualityErr) {
				skipped++
				continue
			}
			return nil, err
		}

		transactions = append(transactions, transaction)
	}

	if skipped > 0 {
		log.Warn(
			"skipped CSV rows with invalid values",
			slog.Int("skippedRows", skipped),
			slog.Int("keptRows", len(transactions)),
		)
	}

	return dataset.NewTable(transactions), nil
}
