package renderer

import (
	"github.com/etnz/books"
)

// InvoiceDoc is the view model of a committed invoice, ready to print.
type InvoiceDoc struct {
	// ID is the user-facing invoice identifier.
	ID string `json:"id"`
	// Owner is the display name of the billed party.
	Owner string `json:"owner"`
	// DateOpened is the opening day of the invoice.
	DateOpened string `json:"dateOpened"`
	BillingID  string `json:"billingId,omitempty"`
	Notes      string `json:"notes,omitempty"`
	// Lines are the invoice entries in accumulation order.
	Lines []InvoiceLine `json:"lines"`
	// Subtotal, Tax and Total are formatted in the invoice currency.
	Subtotal string `json:"subtotal"`
	Tax      string `json:"tax"`
	Total    string `json:"total"`
}

// InvoiceLine is one invoice entry.
type InvoiceLine struct {
	Description string `json:"description"`
	Action      string `json:"action,omitempty"`
	Account     string `json:"account"`
	Quantity    string `json:"quantity"`
	Price       string `json:"price"`
	Amount      string `json:"amount"`
	Taxable     bool   `json:"taxable"`
}

// NewInvoiceDoc builds the printable view of a committed invoice. The commit
// carries the exact subtotal and tax; total is the engine's figure. Line
// amounts are recomputed as price times quantity.
func NewInvoiceDoc(commit books.InvoiceCommit, total books.Numeric, ownerName, currency string, accounts map[books.AccountRef]books.Account) (*InvoiceDoc, error) {
	doc := &InvoiceDoc{
		ID:         commit.ID,
		Owner:      ownerName,
		DateOpened: formatDay(commit.DateOpened),
		BillingID:  commit.BillingID,
		Notes:      commit.Notes,
		Lines:      make([]InvoiceLine, 0, len(commit.Entries)),
		Subtotal:   FormatAmount(commit.Subtotal, currency),
		Tax:        FormatAmount(commit.TaxTotal, currency),
		Total:      FormatAmount(total, currency),
	}
	for _, e := range commit.Entries {
		amount, err := e.Price.Mul(e.Quantity)
		if err != nil {
			return nil, err
		}
		doc.Lines = append(doc.Lines, InvoiceLine{
			Description: e.Description,
			Action:      e.Action,
			Account:     accounts[e.Account].Name,
			Quantity:    e.Quantity.Decimal().String(),
			Price:       FormatAmount(e.Price, currency),
			Amount:      FormatAmount(amount, currency),
			Taxable:     e.Taxable,
		})
	}
	return doc, nil
}
