package db

import "hermannm.dev/findash/dataset"

type Column struct {
	Name     string   `json:"name"`
	DataType DataType `json:"dataType"`
}

const (
	// ColumnID holds a generated UUID per stored row.
	ColumnID = "id"
	// ColumnRow holds the row's index in the ingested table, so reads can restore source order.
	ColumnRow = "row"
)

// TableColumns is the layout of stored transaction tables, in insertion order.
var TableColumns = []Column{
	{Name: ColumnID, DataType: DataTypeUUID},
	{Name: ColumnRow, DataType: DataTypeInt},
	{Name: dataset.ColumnClient, DataType: DataTypeText},
	{Name: dataset.ColumnCountry, DataType: DataTypeText},
	{Name: dataset.ColumnCurrency, DataType: DataTypeText},
	{Name: dataset.ColumnDate, DataType: DataTypeDate},
	{Name: dataset.ColumnUSDM, DataType: DataTypeDecimal},
}
