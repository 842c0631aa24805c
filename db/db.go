package db

import (
	"context"

	"hermannm.dev/findash/dataset"
	"hermannm.dev/wrap"
)

// Database stores transaction tables in an external backend. Every implementation also serves as
// a dataset.Source, so stored tables can be loaded back into the dashboard by name.
type Database interface {
	CreateTable(ctx context.Context, table string) error
	InsertTable(ctx context.Context, table string, data *dataset.Table) error
	DropTable(ctx context.Context, table string) (alreadyDropped bool, err error)
	ReadTable(ctx context.Context, table string) (*dataset.Table, error)
}

// IngestTable creates the table and inserts the data. If the insert fails, the created table is
// dropped again.
func IngestTable(ctx context.Context, database Database, table string, data *dataset.Table) error {
	if err := database.CreateTable(ctx, table); err != nil {
		return wrap.Errorf(err, "failed to create table '%s'", table)
	}

	if err := database.InsertTable(ctx, table, data); err != nil {
		if _, dropErr := database.DropTable(ctx, table); dropErr != nil {
			return wrap.Errors(
				"failed to insert data AND failed to clean up created table afterwards",
				err,
				dropErr,
			)
		}
		return wrap.Errorf(err, "failed to insert data into table '%s'", table)
	}

	return nil
}
