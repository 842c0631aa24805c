package dataset

import (
	"slices"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

const (
	ColumnClient   = "Client"
	ColumnCountry  = "Country"
	ColumnCurrency = "Currency"
	ColumnDate     = "Date"
	ColumnUSDM     = "USD_M"
)

// Columns lists the required columns in the order they are exported.
var Columns = []string{ColumnClient, ColumnCountry, ColumnCurrency, ColumnDate, ColumnUSDM}

type Transaction struct {
	Client   string     `json:"client"`
	Country  string     `json:"country"`
	Currency string     `json:"currency"`
	Date     civil.Date `json:"date"`
	// Transaction value in millions of US dollars.
	USDM decimal.Decimal `json:"usdM"`
}

// Table is an ordered sequence of transactions that is never modified after construction.
// Filtered tables share the type, so every operation that takes a table also takes a filtered
// one.
type Table struct {
	transactions []Transaction
}

// NewTable copies the given transactions, so later changes to the slice do not leak into the
// table.
func NewTable(transactions []Transaction) *Table {
	return &Table{transactions: slices.Clone(transactions)}
}

// newOwnedTable takes ownership of transactions without copying. Callers must not keep a
// reference to the slice.
func newOwnedTable(transactions []Transaction) *Table {
	return &Table{transactions: transactions}
}

func (table *Table) Len() int {
	if table == nil {
		return 0
	}
	return len(table.transactions)
}

func (table *Table) Row(index int) Transaction {
	return table.transactions[index]
}

// Transactions returns a copy of the table's rows.
func (table *Table) Transactions() []Transaction {
	if table.Len() == 0 {
		return []Transaction{}
	}
	return slices.Clone(table.transactions)
}

// Head returns a table of the first n rows, or the whole table if it has fewer.
func (table *Table) Head(n int) *Table {
	if n < 0 {
		n = 0
	}
	if n >= table.Len() {
		return table
	}
	return newOwnedTable(table.transactions[:n:n])
}

// Select returns a new table of the rows for which keep returns true, in their original order.
func (table *Table) Select(keep func(Transaction) bool) *Table {
	selected := make([]Transaction, 0, table.Len())
	for i := 0; i < table.Len(); i++ {
		if transaction := table.transactions[i]; keep(transaction) {
			selected = append(selected, transaction)
		}
	}
	return newOwnedTable(selected)
}

// Equal reports whether both tables hold the same rows in the same order.
func (table *Table) Equal(other *Table) bool {
	return slices.EqualFunc(
		table.Transactions(),
		other.Transactions(),
		func(a Transaction, b Transaction) bool { return a.Equal(b) },
	)
}

func (transaction Transaction) Equal(other Transaction) bool {
	return transaction.Client == other.Client &&
		transaction.Country == other.Country &&
		transaction.Currency == other.Currency &&
		transaction.Date == other.Date &&
		transaction.USDM.Equal(other.USDM)
}

// FilterOptions holds what a UI needs to populate its filter controls.
type FilterOptions struct {
	// Distinct values in order of first appearance.
	Clients    []string   `json:"clients"`
	Countries  []string   `json:"countries"`
	Currencies []string   `json:"currencies"`
	MinDate    civil.Date `json:"minDate"`
	MaxDate    civil.Date `json:"maxDate"`
	RowCount   int        `json:"rowCount"`
}

// Options collects distinct categorical values and the date bounds of the table. MinDate and
// MaxDate are zero for an empty table.
func (table *Table) Options() FilterOptions {
	options := FilterOptions{
		Clients:    []string{},
		Countries:  []string{},
		Currencies: []string{},
		RowCount:   table.Len(),
	}

	seenClients := make(map[string]struct{})
	seenCountries := make(map[string]struct{})
	seenCurrencies := make(map[string]struct{})

	for i := 0; i < table.Len(); i++ {
		transaction := table.transactions[i]

		options.Clients = appendUnseen(options.Clients, seenClients, transaction.Client)
		options.Countries = appendUnseen(options.Countries, seenCountries, transaction.Country)
		options.Currencies = appendUnseen(options.Currencies, seenCurrencies, transaction.Currency)

		if i == 0 || transaction.Date.Before(options.MinDate) {
			options.MinDate = transaction.Date
		}
		if i == 0 || transaction.Date.After(options.MaxDate) {
			options.MaxDate = transaction.Date
		}
	}

	return options
}

func appendUnseen(values []string, seen map[string]struct{}, value string) []string {
	if _, ok := seen[value]; ok {
		return values
	}
	seen[value] = struct{}{}
	return append(values, value)
}
