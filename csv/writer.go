package csv

import (
	"encoding/csv"
	"io"

	"hermannm.dev/findash/dataset"
	"hermannm.dev/wrap"
)

// ExportFileName is the suggested file name for downloads of filtered data.
const ExportFileName = "filtered_financial_data.csv"

// WriteTable writes the table as comma-separated UTF-8 with a header row and no index column.
func WriteTable(output io.Writer, table *dataset.Table) error {
	writer := csv.NewWriter(output)

	if err := writer.Write(dataset.Columns); err != nil {
		return wrap.Error(err, "failed to write CSV header row")
	}

	record := make([]string, len(dataset.Columns))
	for i := 0; i < table.Len(); i++ {
		transaction := table.Row(i)

		record[0] = transaction.Client
		record[1] = transaction.Country
		record[2] = transaction.Currency
		record[3] = transaction.Date.String()
		record[4] = transaction.USDM.String()

		if err := writer.Write(record); err != nil {
			return wrap.Errorf(err, "failed to write CSV row %d", i+1)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return wrap.Error(err, "failed to flush CSV output")
	}
	return nil
}
