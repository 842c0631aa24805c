package dataset

import (
	"fmt"
	"strings"
)

// DataSourceError is returned when a source cannot be found or read.
type DataSourceError struct {
	Source string
	Err    error
}

func (err *DataSourceError) Error() string {
	if err.Err == nil {
		return fmt.Sprintf("failed to read data source '%s'", err.Source)
	}
	return fmt.Sprintf("failed to read data source '%s': %v", err.Source, err.Err)
}

func (err *DataSourceError) Unwrap() error {
	return err.Err
}

// SchemaError is returned when a source lacks required columns.
type SchemaError struct {
	MissingColumns []string
}

func (err *SchemaError) Error() string {
	return fmt.Sprintf(
		"data is missing required columns: %s",
		strings.Join(err.MissingColumns, ", "),
	)
}

// DataQualityError identifies a row with a value that could not be parsed.
type DataQualityError struct {
	// Row number in the source, counting the header row as 1.
	Row int
	// Blank if the row as a whole is malformed, in which case Value holds the whole row.
	Column string
	Value  string
	Err    error
}

func (err *DataQualityError) Error() string {
	if err.Column == "" {
		return fmt.Sprintf("invalid row %d '%s': %v", err.Row, err.Value, err.Err)
	}
	return fmt.Sprintf(
		"invalid value '%s' for column '%s' in row %d: %v",
		err.Value,
		err.Column,
		err.Row,
		err.Err,
	)
}

func (err *DataQualityError) Unwrap() error {
	return err.Err
}
