package csv

import (
	"encoding/csv"
	"errors"
	"io"

	"hermannm.dev/wrap"
)

type Reader struct {
	inner      *csv.Reader
	currentRow int
}

// NewReader reads CSV with the given field delimiter. If delimiter is 0, it is deduced from the
// first rows of the file.
func NewReader(csvFile io.ReadSeeker, delimiter rune) (*Reader, error) {
	if delimiter == 0 {
		var err error
		delimiter, err = DeduceFieldDelimiter(csvFile, 20, DefaultDelimitersToCheck)
		if err != nil {
			return nil, wrap.Error(err, "failed to deduce CSV field delimiter")
		}
	}

	return &Reader{
		inner:      newInnerReader(csvFile, delimiter),
		currentRow: 0,
	}, nil
}

func newInnerReader(csvFile io.Reader, delimiter rune) *csv.Reader {
	reader := csv.NewReader(csvFile)
	reader.ReuseRecord = true
	reader.Comma = delimiter
	// Field counts are checked against the header when rows are parsed, so a short row is
	// reported with its row number.
	reader.FieldsPerRecord = -1
	return reader
}

// ReadRow returns done = true once the file is exhausted. The returned row is only valid until
// the next call.
func (reader *Reader) ReadRow() (row []string, rowNumber int, done bool, err error) {
	reader.currentRow++

	row, err = reader.inner.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, true, nil
		} else {
			return nil, reader.currentRow, false, err
		}
	}

	return row, reader.currentRow, false, nil
}

func (reader *Reader) ReadHeaderRow() (row []string, err error) {
	row, rowNumber, done, err := reader.ReadRow()
	if done {
		return nil, errors.New("csv file ended before header row")
	}
	if rowNumber != 1 {
		return nil, errors.New("tried to read header row after reading previous rows")
	}
	if err != nil {
		return nil, err
	}
	return row, nil
}
