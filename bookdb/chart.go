package bookdb

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/etnz/books"
	"github.com/etnz/books/memengine"
)

// Chart is the YAML shape of a book seed: a chart of accounts, tax tables
// and business entities. Accounts and tax table entries reference each other
// by name, in declaration order.
//
//	currency: USD
//	accounts:
//	  - {name: Assets, type: asset}
//	  - {name: Checking, type: bank, code: "1000", parent: Assets}
//	  - {name: VAT Payable, type: liability}
//	tax_tables:
//	  - name: VAT
//	    entries:
//	      - {account: VAT Payable, percent: "19"}
//	customers: [ACME Corp]
type Chart struct {
	Currency  string         `yaml:"currency"`
	Accounts  []ChartAccount `yaml:"accounts"`
	TaxTables []ChartTable   `yaml:"tax_tables"`
	Customers []string       `yaml:"customers"`
	Vendors   []string       `yaml:"vendors"`
	Employees []string       `yaml:"employees"`
}

// ChartAccount is one account declaration.
type ChartAccount struct {
	Name        string `yaml:"name"`
	Type        string `yaml:"type"`
	Code        string `yaml:"code"`
	Description string `yaml:"description"`
	Parent      string `yaml:"parent"`   // name of an account declared earlier
	Currency    string `yaml:"currency"` // defaults to the chart currency
}

// ChartTable is one tax table declaration.
type ChartTable struct {
	Name    string       `yaml:"name"`
	Entries []ChartEntry `yaml:"entries"`
}

// ChartEntry is one tax table entry: either a percent rate or a flat
// amount, booked against an account declared in the chart.
type ChartEntry struct {
	Account string `yaml:"account"`
	Percent string `yaml:"percent"`
	Amount  string `yaml:"amount"`
}

// SeedChart parses a YAML chart and creates its accounts, tax tables and
// business entities in the book. It returns the accounts by name so callers
// can keep resolving them.
func SeedChart(e *memengine.Engine, book books.BookRef, data []byte) (map[string]books.AccountRef, error) {
	var chart Chart
	if err := yaml.Unmarshal(data, &chart); err != nil {
		return nil, fmt.Errorf("parsing chart: %w", err)
	}

	accounts := make(map[string]books.AccountRef, len(chart.Accounts))
	for _, ca := range chart.Accounts {
		typ, ok := books.ParseAccountType(ca.Type)
		if !ok {
			return nil, fmt.Errorf("account %q: unknown type %q", ca.Name, ca.Type)
		}
		a := books.Account{
			Name:        ca.Name,
			Code:        ca.Code,
			Description: ca.Description,
			Type:        typ,
			Currency:    ca.Currency,
		}
		if a.Currency == "" {
			a.Currency = chart.Currency
		}
		if ca.Parent != "" {
			parent, ok := accounts[ca.Parent]
			if !ok {
				return nil, fmt.Errorf("account %q: parent %q not declared before it", ca.Name, ca.Parent)
			}
			a.Parent = parent
		}
		ref, err := e.AddAccount(book, a)
		if err != nil {
			return nil, fmt.Errorf("account %q: %w", ca.Name, err)
		}
		accounts[ca.Name] = ref
	}

	for _, ct := range chart.TaxTables {
		table := books.TaxTable{Name: ct.Name}
		for _, ce := range ct.Entries {
			account, ok := accounts[ce.Account]
			if !ok {
				return nil, fmt.Errorf("tax table %q: account %q not declared", ct.Name, ce.Account)
			}
			te := books.TaxTableEntry{Account: account}
			switch {
			case ce.Percent != "":
				rate, err := parseRational(ce.Percent)
				if err != nil {
					return nil, fmt.Errorf("tax table %q: percent %q: %w", ct.Name, ce.Percent, err)
				}
				te.Amount, te.Type = rate, books.AmountPercent
			case ce.Amount != "":
				amount, err := parseRational(ce.Amount)
				if err != nil {
					return nil, fmt.Errorf("tax table %q: amount %q: %w", ct.Name, ce.Amount, err)
				}
				te.Amount, te.Type = amount, books.AmountValue
			default:
				return nil, fmt.Errorf("tax table %q: entry needs a percent or an amount", ct.Name)
			}
			table.Entries = append(table.Entries, te)
		}
		if _, err := e.AddTaxTable(book, table); err != nil {
			return nil, fmt.Errorf("tax table %q: %w", ct.Name, err)
		}
	}

	for _, name := range chart.Customers {
		if _, err := e.NewCustomer(book, name); err != nil {
			return nil, fmt.Errorf("customer %q: %w", name, err)
		}
	}
	for _, name := range chart.Vendors {
		if _, err := e.NewVendor(book, name); err != nil {
			return nil, fmt.Errorf("vendor %q: %w", name, err)
		}
	}
	for _, name := range chart.Employees {
		if _, err := e.NewEmployee(book, name); err != nil {
			return nil, fmt.Errorf("employee %q: %w", name, err)
		}
	}
	return accounts, nil
}

// parseRational parses a decimal string like "19" or "7.5" into an exact
// rational.
func parseRational(s string) (books.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return books.Numeric{}, err
	}
	return books.FromDecimal(d)
}
