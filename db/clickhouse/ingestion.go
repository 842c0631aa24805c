package clickhouse

import (
	"context"

	"github.com/google/uuid"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/wrap"
)

func (clickhouse ClickHouseDB) CreateTable(ctx context.Context, table string) error {
	query, err := buildCreateTableQuery(table)
	if err != nil {
		return err
	}

	if err := clickhouse.conn.Exec(ctx, query); err != nil {
		return wrap.Errorf(err, "ClickHouse table creation query failed for table '%s'", table)
	}

	return nil
}

// ClickHouse recommends keeping batch inserts between 10,000 and 100,000 rows:
// https://clickhouse.com/docs/en/cloud/bestpractices/bulk-inserts
const BatchInsertSize = 10000

func (clickhouse ClickHouseDB) InsertTable(
	ctx context.Context,
	table string,
	data *dataset.Table,
) error {
	query, err := buildInsertQuery(table)
	if err != nil {
		return err
	}

	for batchStart := 0; batchStart < data.Len(); batchStart += BatchInsertSize {
		batchEnd := min(batchStart+BatchInsertSize, data.Len())

		batch, err := clickhouse.conn.PrepareBatch(ctx, query)
		if err != nil {
			return wrap.Error(err, "failed to prepare batch data insert")
		}

		for i := batchStart; i < batchEnd; i++ {
			id, err := uuid.NewUUID()
			if err != nil {
				return wrap.Errorf(err, "failed to generate unique ID for row %d", i+1)
			}

			if err := batch.Append(toRow(id, i, data.Row(i))...); err != nil {
				return wrap.Errorf(err, "failed to add row %d to batch insert", i+1)
			}
		}

		if err := batch.Send(); err != nil {
			return wrap.Errorf(err, "failed to send batch insert of rows %d-%d", batchStart+1, batchEnd)
		}
	}

	return nil
}
