package clickhouse

import (
	"errors"
	"fmt"
	"strings"

	"hermannm.dev/findash/db"
	"hermannm.dev/wrap"
)

type QueryBuilder struct {
	strings.Builder
}

// Must only be called after calling ValidateIdentifier on the given identifier.
func (builder *QueryBuilder) WriteIdentifier(identifier string) {
	builder.WriteRune('`')
	builder.WriteString(identifier)
	builder.WriteRune('`')
}

// WriteColumnNames writes the column names separated by commas.
func (builder *QueryBuilder) WriteColumnNames(columns []db.Column) {
	for i, column := range columns {
		if i != 0 {
			builder.WriteString(", ")
		}
		builder.WriteIdentifier(column.Name)
	}
}

func ValidateIdentifier(identifier string) error {
	if identifier == "" {
		return errors.New("identifier cannot be blank")
	}
	if strings.ContainsRune(identifier, '`') {
		return fmt.Errorf("'%s' contains `, which is incompatible with database", identifier)
	}

	return nil
}

func buildCreateTableQuery(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", wrap.Error(err, "invalid table name")
	}

	var query QueryBuilder
	query.WriteString("CREATE TABLE ")
	query.WriteIdentifier(table)
	query.WriteString(" (")

	for i, column := range db.TableColumns {
		dataType, ok := clickhouseDataTypes.GetName(column.DataType)
		if !ok {
			return "", fmt.Errorf("invalid data type '%v' in column '%s'", column.DataType, column.Name)
		}

		if i != 0 {
			query.WriteString(", ")
		}
		query.WriteIdentifier(column.Name)
		query.WriteByte(' ')
		query.WriteString(dataType)
	}

	query.WriteString(") ENGINE = MergeTree() ORDER BY ")
	query.WriteIdentifier(db.ColumnRow)

	return query.String(), nil
}

func buildInsertQuery(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", wrap.Error(err, "invalid table name")
	}

	var query QueryBuilder
	query.WriteString("INSERT INTO ")
	query.WriteIdentifier(table)
	query.WriteString(" (")
	query.WriteColumnNames(db.TableColumns)
	query.WriteByte(')')
	return query.String(), nil
}

func buildSelectQuery(table string) (string, error) {
	if err := ValidateIdentifier(table); err != nil {
		return "", wrap.Error(err, "invalid table name")
	}

	var query QueryBuilder
	query.WriteString("SELECT ")
	query.WriteColumnNames(transactionColumns)
	query.WriteString(" FROM ")
	query.WriteIdentifier(table)
	query.WriteString(" ORDER BY ")
	query.WriteIdentifier(db.ColumnRow)
	return query.String(), nil
}
