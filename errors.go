package books

import (
	"errors"
	"fmt"
)

// Sentinel errors for deterministic, local failures. All of them are returned
// as values; nothing in this package panics on bad input.
var (
	// ErrDivisionByZero is returned by Numeric construction and arithmetic
	// when a denominator is zero.
	ErrDivisionByZero = errors.New("numeric: division by zero")

	// ErrArithmeticOverflow is returned when an exact rational operation
	// cannot represent an intermediate product or sum in 64 bits.
	ErrArithmeticOverflow = errors.New("numeric: arithmetic overflow")

	// ErrIncompatibleQueryTarget is returned when merging queries over
	// different collections, or running a query against the wrong typed run.
	ErrIncompatibleQueryTarget = errors.New("query: incompatible target collection")

	// ErrNoBookSet is returned by a run when the query has no owning book.
	ErrNoBookSet = errors.New("query: no book set")

	// ErrInsufficientSplits is returned by TransactionBuilder.Build when
	// fewer than two splits were accumulated.
	ErrInsufficientSplits = errors.New("transaction: at least two splits required")

	// ErrMissingAccountReference is returned by TransactionBuilder.Build
	// when a split carries a null account reference.
	ErrMissingAccountReference = errors.New("transaction: split has no account reference")

	// ErrMissingOwner is returned by InvoiceBuilder.Build when the owner is
	// unset or undefined.
	ErrMissingOwner = errors.New("invoice: owner is missing or undefined")

	// ErrEmptyInvoice is returned by InvoiceBuilder.Build when no entries
	// were accumulated.
	ErrEmptyInvoice = errors.New("invoice: no entries")
)

// ImbalancedError is returned by TransactionBuilder.Build when the exact sum
// of all split amounts is not zero. Imbalance is that sum.
type ImbalancedError struct {
	Imbalance Numeric
}

func (e *ImbalancedError) Error() string {
	return fmt.Sprintf("transaction is imbalanced by %s", e.Imbalance)
}

// TotalMismatchError reports that the engine's own invoice total disagrees
// with the locally computed one. The commit has already succeeded when this
// is detected: it is a data-integrity signal, not a rollback.
type TotalMismatchError struct {
	Local  Numeric
	Engine Numeric
}

func (e *TotalMismatchError) Error() string {
	return fmt.Sprintf("invoice total mismatch: computed %s, engine reports %s", e.Local, e.Engine)
}

// CommitError wraps a failure reported by the engine during a commit. It is
// propagated verbatim and never retried here; retry policy belongs to the
// caller.
type CommitError struct {
	Op  string // the engine operation that failed
	Err error
}

func (e *CommitError) Error() string { return fmt.Sprintf("engine commit failed: %s: %v", e.Op, e.Err) }
func (e *CommitError) Unwrap() error { return e.Err }
