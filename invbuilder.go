package books

import (
	"fmt"
	"slices"
	"time"
)

// InvoiceBuilder accumulates entry specifications and header fields, then
// validates, computes exact subtotal and tax, and commits the invoice in one
// step. Like TransactionBuilder, a failed Build leaves the builder intact.
type InvoiceBuilder struct {
	book       BookRef
	id         string
	notes      string
	billingID  string
	owner      Owner
	dateOpened int64
	entries    []EntrySpec
}

// NewInvoice creates a builder for an invoice in book.
func NewInvoice(book BookRef) *InvoiceBuilder {
	return &InvoiceBuilder{book: book, owner: UndefinedOwner{}}
}

// ID sets the invoice identifier (e.g. "INV-001").
func (b *InvoiceBuilder) ID(id string) *InvoiceBuilder {
	b.id = id
	return b
}

// Notes sets the invoice notes.
func (b *InvoiceBuilder) Notes(notes string) *InvoiceBuilder {
	b.notes = notes
	return b
}

// BillingID sets the billing identifier.
func (b *InvoiceBuilder) BillingID(id string) *InvoiceBuilder {
	b.billingID = id
	return b
}

// Owner sets the business entity the invoice bills to.
func (b *InvoiceBuilder) Owner(owner Owner) *InvoiceBuilder {
	b.owner = owner
	return b
}

// DateOpened sets the opening date from a calendar (day, month, year)
// triple, stored as midnight UTC.
func (b *InvoiceBuilder) DateOpened(day, month, year int) *InvoiceBuilder {
	b.dateOpened = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Unix()
	return b
}

// Entry appends a non-taxable line: quantity units at price each, booked
// against account.
func (b *InvoiceBuilder) Entry(description string, price, quantity Numeric, account AccountRef) *InvoiceBuilder {
	b.entries = append(b.entries, EntrySpec{
		Description: description,
		Price:       price,
		Quantity:    quantity,
		Account:     account,
	})
	return b
}

// EntryWithAction appends a non-taxable line carrying an action tag
// (e.g. "Hours").
func (b *InvoiceBuilder) EntryWithAction(description string, price, quantity Numeric, account AccountRef, action string) *InvoiceBuilder {
	b.entries = append(b.entries, EntrySpec{
		Description: description,
		Price:       price,
		Quantity:    quantity,
		Account:     account,
		Action:      action,
	})
	return b
}

// TaxedEntry appends a taxable line whose tax is computed from the
// referenced tax table at build time.
func (b *InvoiceBuilder) TaxedEntry(description string, price, quantity Numeric, account AccountRef, table TaxTableRef) *InvoiceBuilder {
	b.entries = append(b.entries, EntrySpec{
		Description: description,
		Price:       price,
		Quantity:    quantity,
		Account:     account,
		Taxable:     true,
		TaxTable:    table,
	})
	return b
}

// NumEntries returns the number of entries accumulated so far.
func (b *InvoiceBuilder) NumEntries() int { return len(b.entries) }

// hundred divides percent rates.
var hundred = Numeric{num: 1, denom: 100}

// Build validates the accumulated invoice and, if every check passes, issues
// exactly one commit request creating the header and its entries in
// accumulation order.
//
// Per entry the line amount is the exact rational product price × quantity;
// the subtotal is the exact sum of line amounts. Taxable entries referencing
// a tax table contribute the table's percent rates applied to their line
// amount plus any flat amounts; everything else contributes zero tax.
//
// After a successful commit the engine's own computed total is compared to
// the local subtotal+tax: a disagreement returns the committed reference
// together with a TotalMismatchError. The commit is not rolled back — by the
// time the mismatch is observable it has already succeeded.
func (b *InvoiceBuilder) Build(e Engine) (InvoiceRef, error) {
	if b.owner == nil || b.owner.Type() == OwnerUndefined {
		return InvoiceRef{}, ErrMissingOwner
	}
	if len(b.entries) == 0 {
		return InvoiceRef{}, ErrEmptyInvoice
	}

	lines := make([]Numeric, 0, len(b.entries))
	for _, entry := range b.entries {
		line, err := entry.Price.Mul(entry.Quantity)
		if err != nil {
			return InvoiceRef{}, err
		}
		lines = append(lines, line)
	}
	subtotal, err := Sum(lines...)
	if err != nil {
		return InvoiceRef{}, err
	}

	taxTotal := Zero()
	tables := make(map[TaxTableRef]TaxTable)
	for i, entry := range b.entries {
		if !entry.Taxable || entry.TaxTable.IsNull() {
			continue
		}
		table, ok := tables[entry.TaxTable]
		if !ok {
			table, err = e.TaxTable(b.book, entry.TaxTable)
			if err != nil {
				return InvoiceRef{}, fmt.Errorf("resolving tax table %s: %w", entry.TaxTable, err)
			}
			tables[entry.TaxTable] = table
		}
		for _, te := range table.Entries {
			var tax Numeric
			switch te.Type {
			case AmountPercent:
				rated, err := lines[i].Mul(te.Amount)
				if err != nil {
					return InvoiceRef{}, err
				}
				if tax, err = rated.Mul(hundred); err != nil {
					return InvoiceRef{}, err
				}
			default:
				tax = te.Amount
			}
			if taxTotal, err = taxTotal.Add(tax); err != nil {
				return InvoiceRef{}, err
			}
		}
	}

	req := InvoiceCommit{
		ID:         b.id,
		Notes:      b.notes,
		BillingID:  b.billingID,
		Owner:      b.owner,
		DateOpened: b.dateOpened,
		Entries:    slices.Clone(b.entries),
		Subtotal:   subtotal,
		TaxTotal:   taxTotal,
	}
	if err := e.BeginEdit(b.book); err != nil {
		return InvoiceRef{}, &CommitError{Op: "begin-edit", Err: err}
	}
	ref, err := e.CreateInvoice(b.book, req)
	if err != nil {
		e.RollbackEdit(b.book)
		return InvoiceRef{}, &CommitError{Op: "create-invoice", Err: err}
	}
	if err := e.CommitEdit(b.book); err != nil {
		e.RollbackEdit(b.book)
		return InvoiceRef{}, &CommitError{Op: "commit-edit", Err: err}
	}

	// Post-commit consistency check against the engine's own arithmetic.
	total, err := subtotal.Add(taxTotal)
	if err != nil {
		return ref, err
	}
	engineTotal, err := e.InvoiceTotal(b.book, ref)
	if err != nil {
		return ref, fmt.Errorf("reading engine invoice total: %w", err)
	}
	same, err := total.Equal(engineTotal)
	if err != nil {
		return ref, err
	}
	if !same {
		return ref, &TotalMismatchError{Local: total, Engine: engineTotal}
	}
	return ref, nil
}
