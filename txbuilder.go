package books

import (
	"slices"
	"time"
)

// TransactionBuilder accumulates split specifications and header fields, then
// validates and commits the whole double-entry transaction in one step.
//
// Build is the only terminal operation and does not mutate the builder: a
// failed Build leaves every accumulated split in place, so the caller can
// correct the input and build again.
//
//	ref, err := books.NewTransaction(book).
//		Description("Groceries").
//		Date(15, 1, 2024).
//		Split(checking, books.Cents(-5000), "").
//		Split(expenses, books.Cents(5000), "").
//		Build(engine)
type TransactionBuilder struct {
	book        BookRef
	description string
	num         string
	notes       string
	currency    string
	datePosted  int64
	splits      []SplitSpec
}

// NewTransaction creates a builder for a transaction in book.
func NewTransaction(book BookRef) *TransactionBuilder {
	return &TransactionBuilder{book: book}
}

// Description sets the transaction description.
func (b *TransactionBuilder) Description(desc string) *TransactionBuilder {
	b.description = desc
	return b
}

// Num sets the transaction number.
func (b *TransactionBuilder) Num(num string) *TransactionBuilder {
	b.num = num
	return b
}

// Notes sets the transaction notes.
func (b *TransactionBuilder) Notes(notes string) *TransactionBuilder {
	b.notes = notes
	return b
}

// Currency sets the transaction currency mnemonic (e.g. "USD").
func (b *TransactionBuilder) Currency(mnemonic string) *TransactionBuilder {
	b.currency = mnemonic
	return b
}

// Date sets the posting date from a calendar (day, month, year) triple. The
// stored instant is midnight UTC of that date; the caller's locale plays no
// part in the conversion.
func (b *TransactionBuilder) Date(day, month, year int) *TransactionBuilder {
	b.datePosted = time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Unix()
	return b
}

// Split appends one line item: a signed amount against an account.
func (b *TransactionBuilder) Split(account AccountRef, amount Numeric, memo string) *TransactionBuilder {
	b.splits = append(b.splits, SplitSpec{Account: account, Amount: amount, Memo: memo})
	return b
}

// Transfer appends the two splits of a simple transfer: amount leaves from
// and enters to. The pair balances by construction.
func (b *TransactionBuilder) Transfer(from, to AccountRef, amount Numeric, memo string) *TransactionBuilder {
	return b.Split(from, amount.Neg(), memo).Split(to, amount, memo)
}

// NumSplits returns the number of splits accumulated so far.
func (b *TransactionBuilder) NumSplits() int { return len(b.splits) }

// Build validates the accumulated transaction and, if every check passes,
// issues exactly one commit request to the engine. Either the whole
// transaction is committed or no external mutation occurs.
//
// Validation order: at least two splits (ErrInsufficientSplits), every split
// resolved to an account (ErrMissingAccountReference), and an exactly zero
// rational sum of amounts (ImbalancedError carrying the computed imbalance).
// An engine failure during the commit is wrapped in CommitError after the
// edit cycle is rolled back; it is never retried here.
func (b *TransactionBuilder) Build(e Engine) (TransactionRef, error) {
	if len(b.splits) < 2 {
		return TransactionRef{}, ErrInsufficientSplits
	}
	amounts := make([]Numeric, 0, len(b.splits))
	for _, s := range b.splits {
		if s.Account.IsNull() {
			return TransactionRef{}, ErrMissingAccountReference
		}
		amounts = append(amounts, s.Amount)
	}
	imbalance, err := Sum(amounts...)
	if err != nil {
		return TransactionRef{}, err
	}
	if zero, err := imbalance.Equal(Zero()); err != nil {
		return TransactionRef{}, err
	} else if !zero {
		return TransactionRef{}, &ImbalancedError{Imbalance: imbalance}
	}

	req := TransactionCommit{
		Description: b.description,
		Num:         b.num,
		Notes:       b.notes,
		Currency:    b.currency,
		DatePosted:  b.datePosted,
		Splits:      slices.Clone(b.splits),
	}
	if err := e.BeginEdit(b.book); err != nil {
		return TransactionRef{}, &CommitError{Op: "begin-edit", Err: err}
	}
	ref, err := e.CreateTransaction(b.book, req)
	if err != nil {
		e.RollbackEdit(b.book)
		return TransactionRef{}, &CommitError{Op: "create-transaction", Err: err}
	}
	if err := e.CommitEdit(b.book); err != nil {
		e.RollbackEdit(b.book)
		return TransactionRef{}, &CommitError{Op: "commit-edit", Err: err}
	}
	return ref, nil
}
