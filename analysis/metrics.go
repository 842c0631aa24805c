package analysis

import (
	"github.com/shopspring/decimal"
	"hermannm.dev/findash/dataset"
)

type Metrics struct {
	// Sum of USD_M converted to billions.
	TotalUSDB          decimal.Decimal `json:"totalUsdB"`
	DistinctClients    int             `json:"distinctClients"`
	DistinctCountries  int             `json:"distinctCountries"`
	DistinctCurrencies int             `json:"distinctCurrencies"`
}

var millionsPerBillion = decimal.NewFromInt(1000)

// Summarize returns zero metrics for an empty table.
func Summarize(table *dataset.Table) Metrics {
	total := decimal.Zero
	clients := make(map[string]struct{})
	countries := make(map[string]struct{})
	currencies := make(map[string]struct{})

	for i := 0; i < table.Len(); i++ {
		transaction := table.Row(i)
		total = total.Add(transaction.USDM)
		clients[transaction.Client] = struct{}{}
		countries[transaction.Country] = struct{}{}
		currencies[transaction.Currency] = struct{}{}
	}

	return Metrics{
		TotalUSDB:          total.Div(millionsPerBillion),
		DistinctClients:    len(clients),
		DistinctCountries:  len(countries),
		DistinctCurrencies: len(currencies),
	}
}
