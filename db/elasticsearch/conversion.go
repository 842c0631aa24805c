package elasticsearch

import (
	"encoding/json"
	"fmt"

	"cloud.google.com/go/civil"
	"github.com/elastic/go-elasticsearch/v8/typedapi/types"
	"github.com/shopspring/decimal"
	"hermannm.dev/findash/dataset"
	"hermannm.dev/findash/db"
	"hermannm.dev/wrap"
)

// tableMappings maps every stored column except the ID, which is used as document ID instead.
func tableMappings() (*types.TypeMapping, error) {
	mappings := new(types.TypeMapping)
	mappings.Properties = make(map[string]types.Property, len(db.TableColumns))

	for _, column := range db.TableColumns {
		if column.Name == db.ColumnID {
			continue
		}

		property, err := dataTypeToElasticProperty(column.DataType)
		if err != nil {
			return nil, wrap.Errorf(
				err,
				"failed to convert data type to Elasticsearch property for column '%s'",
				column.Name,
			)
		}

		mappings.Properties[column.Name] = property
	}

	return mappings, nil
}

func dataTypeToElasticProperty(dataType db.DataType) (types.Property, error) {
	switch dataType {
	case db.DataTypeText:
		return types.NewKeywordProperty(), nil
	case db.DataTypeInt:
		return types.NewLongNumberProperty(), nil
	case db.DataTypeDecimal:
		return types.NewDoubleNumberProperty(), nil
	case db.DataTypeDate:
		return types.NewDateProperty(), nil
	case db.DataTypeUUID:
		return types.NewKeywordProperty(), nil
	default:
		return nil, fmt.Errorf("unrecognized data type '%v'", dataType)
	}
}

// The amount is sent as a JSON number literal, and returned unchanged in _source, so it reads
// back without floating point rounding.
type transactionDocument struct {
	Row      int         `json:"row"`
	Client   string      `json:"Client"`
	Country  string      `json:"Country"`
	Currency string      `json:"Currency"`
	Date     string      `json:"Date"`
	USDM     json.Number `json:"USD_M"`
}

func toDocument(rowIndex int, transaction dataset.Transaction) transactionDocument {
	return transactionDocument{
		Row:      rowIndex,
		Client:   transaction.Client,
		Country:  transaction.Country,
		Currency: transaction.Currency,
		Date:     transaction.Date.String(),
		USDM:     json.Number(transaction.USDM.String()),
	}
}

func (document transactionDocument) toTransaction() (dataset.Transaction, error) {
	date, err := civil.ParseDate(document.Date)
	if err != nil {
		return dataset.Transaction{}, wrap.Errorf(err, "invalid date '%s'", document.Date)
	}

	amount, err := decimal.NewFromString(document.USDM.String())
	if err != nil {
		return dataset.Transaction{}, wrap.Errorf(err, "invalid amount '%s'", document.USDM)
	}

	return dataset.Transaction{
		Client:   document.Client,
		Country:  document.Country,
		Currency: document.Currency,
		Date:     date,
		USDM:     amount,
	}, nil
}
