package clickhouse

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"hermannm.dev/devlog/log"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/wrap"
)

// ReadTable reads a stored table back in its original row order. Implements dataset.Source for
// "clickhouse://<table>" identifiers.
func (clickhouse ClickHouseDB) ReadTable(ctx context.Context, table string) (*dataset.Table, error) {
	query, err := buildSelectQuery(table)
	if err != nil {
		return nil, err
	}

	log.Debug("generated clickhouse query", slog.String("query", query))

	rows, err := clickhouse.conn.Query(ctx, query)
	if err != nil {
		return nil, wrap.Errorf(err, "failed to query ClickHouse table '%s'", table)
	}
	defer rows.Close()

	var transactions []dataset.Transaction
	for rows.Next() {
		var transaction dataset.Transaction
		var date time.Time
		var amount decimal.Decimal

		if err := rows.Scan(
			&transaction.Client,
			&transaction.Country,
			&transaction.Currency,
			&date,
			&amount,
		); err != nil {
			return nil, wrap.Errorf(err, "failed to scan row %d", len(transactions)+1)
		}

		transaction.Date = fromDate(date)
		transaction.USDM = amount
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap.Error(err, "failed to read query result")
	}

	return dataset.NewTable(transactions), nil
}
