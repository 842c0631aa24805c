package csv

import (
	"context"
	"os"

	"hermannm.dev/findash/dataset"
)

// FileSource reads tables from local CSV files. Implements dataset.Source.
type FileSource struct {
	Options ReadOptions
}

func (source FileSource) ReadTable(ctx context.Context, path string) (*dataset.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &dataset.DataSourceError{Source: path, Err: err}
	}
	defer file.Close()

	return ReadTable(file, source.Options)
}
