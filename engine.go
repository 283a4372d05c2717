package books

// This file defines the boundary with the external bookkeeping engine. The
// engine owns persistent storage of books, accounts, transactions and their
// splits; this package only builds, validates and searches, then hands over.
//
// Entities are carried as opaque guid-backed references that this package
// never dereferences. Searches return read-only snapshots, not handles into
// the engine's mutable state.

// Opaque references to engine-owned entities. The zero value of each is the
// unresolved (null) reference.
type (
	BookRef        struct{ Guid }
	AccountRef     struct{ Guid }
	TransactionRef struct{ Guid }
	SplitRef       struct{ Guid }
	InvoiceRef     struct{ Guid }
	TaxTableRef    struct{ Guid }
	CustomerRef    struct{ Guid }
	VendorRef      struct{ Guid }
	EmployeeRef    struct{ Guid }
	JobRef         struct{ Guid }
)

// AccountType classifies an account in the tree.
type AccountType int

const (
	AccountAsset AccountType = iota
	AccountBank
	AccountCash
	AccountCredit
	AccountLiability
	AccountIncome
	AccountExpense
	AccountEquity
	AccountReceivable
	AccountPayable
)

var accountTypeNames = [...]string{
	AccountAsset:      "asset",
	AccountBank:       "bank",
	AccountCash:       "cash",
	AccountCredit:     "credit",
	AccountLiability:  "liability",
	AccountIncome:     "income",
	AccountExpense:    "expense",
	AccountEquity:     "equity",
	AccountReceivable: "receivable",
	AccountPayable:    "payable",
}

func (t AccountType) String() string {
	if t < 0 || int(t) >= len(accountTypeNames) {
		return "unknown"
	}
	return accountTypeNames[t]
}

// ParseAccountType returns the AccountType named by s.
func ParseAccountType(s string) (AccountType, bool) {
	for t, name := range accountTypeNames {
		if name == s {
			return AccountType(t), true
		}
	}
	return 0, false
}

// Account is a read-only snapshot of an engine account.
type Account struct {
	Ref         AccountRef
	Name        string
	Code        string
	Description string
	Type        AccountType
	Parent      AccountRef // null for a top-level account
	Currency    string
}

// Transaction is a read-only snapshot of an engine transaction.
type Transaction struct {
	Ref         TransactionRef
	Description string
	Num         string
	Notes       string
	Currency    string
	DatePosted  int64 // unix seconds, midnight UTC of the posting date
	DateEntered int64
	Splits      []SplitRef // in engine order
}

// Split is a read-only snapshot of one transaction line item.
type Split struct {
	Ref         SplitRef
	Transaction TransactionRef
	Account     AccountRef
	Amount      Numeric // signed, in the account's commodity
	Value       Numeric // signed, in the transaction currency
	Memo        string
	Reconciled  bool
}

// AmountType tells how a tax table entry amount applies.
type AmountType int

const (
	// AmountValue is a flat amount added per taxed entry.
	AmountValue AmountType = iota
	// AmountPercent is a percentage of the taxed line amount.
	AmountPercent
)

// TaxTableEntry is one rate or flat amount within a tax table, booked
// against one account.
type TaxTableEntry struct {
	Account AccountRef
	Amount  Numeric
	Type    AmountType
}

// TaxTable is a read-only snapshot of an engine tax table.
type TaxTable struct {
	Ref     TaxTableRef
	Name    string
	Entries []TaxTableEntry
}

// SplitSpec is the builder-side description of one split. It is transient:
// consumed once by TransactionBuilder.Build.
type SplitSpec struct {
	Account AccountRef
	Amount  Numeric
	Memo    string
}

// TransactionCommit is the single commit request a successful
// TransactionBuilder.Build issues to the engine.
type TransactionCommit struct {
	Description string
	Num         string
	Notes       string
	Currency    string
	DatePosted  int64
	Splits      []SplitSpec
}

// EntrySpec is the builder-side description of one invoice entry. It is
// transient: consumed once by InvoiceBuilder.Build.
type EntrySpec struct {
	Description string
	Price       Numeric
	Quantity    Numeric
	Account     AccountRef
	Action      string
	Taxable     bool
	TaxTable    TaxTableRef // null when Taxable is false or no table applies
}

// InvoiceCommit is the single commit request a successful
// InvoiceBuilder.Build issues to the engine. Subtotal and TaxTotal are the
// locally computed expected values; the engine derives its own total which
// is checked after the commit.
type InvoiceCommit struct {
	ID         string
	Notes      string
	BillingID  string
	Owner      Owner
	DateOpened int64
	Entries    []EntrySpec
	Subtotal   Numeric
	TaxTotal   Numeric
}

// Engine is the narrow interface this package consumes. Implementations own
// all persistence; they are documented as not safe for concurrent mutation
// of one book, so a book and its entities belong to a single active caller
// at a time.
//
// Every mutation must be bracketed by BeginEdit/CommitEdit; a failed commit
// rolls the book back to its pre-edit state via RollbackEdit.
type Engine interface {
	// SearchSplits evaluates an ordered predicate chain against the book's
	// splits, in the engine's native iteration order. A positive limit
	// silently truncates the result.
	SearchSplits(book BookRef, terms []Term, limit int) ([]Split, error)
	SearchTransactions(book BookRef, terms []Term, limit int) ([]Transaction, error)
	SearchAccounts(book BookRef, terms []Term, limit int) ([]Account, error)

	BeginEdit(book BookRef) error
	CommitEdit(book BookRef) error
	RollbackEdit(book BookRef) error

	// CreateTransaction creates the transaction record and one split record
	// per spec, inside the current edit cycle.
	CreateTransaction(book BookRef, req TransactionCommit) (TransactionRef, error)
	// CreateInvoice creates the invoice header and its entry records in
	// accumulation order, inside the current edit cycle.
	CreateInvoice(book BookRef, req InvoiceCommit) (InvoiceRef, error)
	// InvoiceTotal returns the engine's own computed total (subtotal plus
	// tax) for a committed invoice.
	InvoiceTotal(book BookRef, inv InvoiceRef) (Numeric, error)

	// TaxTable resolves a tax table reference.
	TaxTable(book BookRef, ref TaxTableRef) (TaxTable, error)
	// CustomerOfJob resolves the customer a job ultimately bills to.
	CustomerOfJob(book BookRef, ref JobRef) (CustomerRef, error)
}
