// Package books is the domain logic layer above an external double-entry
// bookkeeping engine. The engine owns persistent storage of books, accounts,
// transactions and splits; this package owns the parts with real invariants:
//
//   - Numeric: exact rational arithmetic used for every monetary amount and
//     quantity. Balance checks and totals are never computed on floats.
//   - Query: a composable chain of search predicates with boolean
//     combinators, executed by the engine's native search primitive over
//     splits, transactions or accounts.
//   - TransactionBuilder: accumulates splits, enforces the zero-sum
//     double-entry invariant, then issues exactly one commit request.
//   - InvoiceBuilder: accumulates priced entries, computes exact subtotal
//     and tax, then commits and cross-checks the engine's own total.
//
// The engine is consumed through the narrow Engine interface and opaque
// guid-backed references; see the memengine package for the in-process
// reference implementation and bookdb for its sqlite persistence.
//
// Nothing here is safe for concurrent mutation of one book: a book and its
// entities belong to a single active caller at a time, serialization is the
// caller's job.
//
// This package serves as the foundational logic for the `bks` command-line
// tool.
package books
