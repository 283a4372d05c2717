// Package memengine is the in-process reference implementation of the
// books.Engine boundary: books, an account tree, transactions and splits,
// business entities, tax tables and invoices, all held in memory in
// insertion order. It backs the bks CLI (persisted through bookdb) and the
// package tests.
//
// Like the real engine it emulates, it is not safe for concurrent mutation
// of one book.
package memengine

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/etnz/books"
)

var (
	// ErrUnknownBook is returned when a book reference is not held here.
	ErrUnknownBook = errors.New("memengine: unknown book")

	// ErrNoEdit is returned when a mutation happens outside an edit cycle.
	ErrNoEdit = errors.New("memengine: no edit in progress")

	// ErrNotFound is returned when a reference resolves to nothing.
	ErrNotFound = errors.New("memengine: not found")
)

// customer, vendor and employee records carry only what invoices need.
type customer struct {
	ref  books.CustomerRef
	name string
}

type vendor struct {
	ref  books.VendorRef
	name string
}

type employee struct {
	ref  books.EmployeeRef
	name string
}

type job struct {
	ref      books.JobRef
	name     string
	customer books.CustomerRef
}

type invoice struct {
	ref    books.InvoiceRef
	commit books.InvoiceCommit
	total  books.Numeric // engine-side arithmetic, checked by the builder
	posted int64
}

// book holds one book's collections, each in insertion order.
type book struct {
	accounts     []books.Account
	transactions []books.Transaction
	splits       []books.Split
	customers    []customer
	vendors      []vendor
	employees    []employee
	jobs         []job
	taxTables    []books.TaxTable
	invoices     []invoice

	editDepth int
	undo      *book // snapshot taken by the outermost BeginEdit
}

func (b *book) snapshot() *book {
	c := &book{
		accounts:  slices.Clone(b.accounts),
		customers: slices.Clone(b.customers),
		vendors:   slices.Clone(b.vendors),
		employees: slices.Clone(b.employees),
		jobs:      slices.Clone(b.jobs),
		splits:    slices.Clone(b.splits),
	}
	c.transactions = make([]books.Transaction, len(b.transactions))
	for i, t := range b.transactions {
		t.Splits = slices.Clone(t.Splits)
		c.transactions[i] = t
	}
	c.taxTables = make([]books.TaxTable, len(b.taxTables))
	for i, t := range b.taxTables {
		t.Entries = slices.Clone(t.Entries)
		c.taxTables[i] = t
	}
	c.invoices = make([]invoice, len(b.invoices))
	for i, inv := range b.invoices {
		inv.commit.Entries = slices.Clone(inv.commit.Entries)
		c.invoices[i] = inv
	}
	return c
}

// Engine implements books.Engine in memory.
type Engine struct {
	byRef map[books.BookRef]*book
}

// New creates an empty engine.
func New() *Engine {
	return &Engine{byRef: make(map[books.BookRef]*book)}
}

// NewBook creates an empty book and returns its reference.
func (e *Engine) NewBook() books.BookRef {
	ref := books.BookRef{Guid: books.NewGuid()}
	e.byRef[ref] = &book{}
	return ref
}

// Books returns the references of all books held, in no particular order.
func (e *Engine) Books() []books.BookRef {
	refs := make([]books.BookRef, 0, len(e.byRef))
	for ref := range e.byRef {
		refs = append(refs, ref)
	}
	return refs
}

func (e *Engine) book(ref books.BookRef) (*book, error) {
	b, ok := e.byRef[ref]
	if !ok {
		return nil, ErrUnknownBook
	}
	return b, nil
}

// ==================== entity creation ====================

// AddAccount stores a new account; the Ref field of the argument is ignored
// and a fresh reference is assigned and returned.
func (e *Engine) AddAccount(ref books.BookRef, a books.Account) (books.AccountRef, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.AccountRef{}, err
	}
	a.Ref = books.AccountRef{Guid: books.NewGuid()}
	b.accounts = append(b.accounts, a)
	return a.Ref, nil
}

// Account returns the snapshot of one account.
func (e *Engine) Account(ref books.BookRef, account books.AccountRef) (books.Account, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.Account{}, err
	}
	for _, a := range b.accounts {
		if a.Ref == account {
			return a, nil
		}
	}
	return books.Account{}, fmt.Errorf("account %s: %w", account, ErrNotFound)
}

// NewCustomer creates a customer entity.
func (e *Engine) NewCustomer(ref books.BookRef, name string) (books.CustomerRef, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.CustomerRef{}, err
	}
	c := customer{ref: books.CustomerRef{Guid: books.NewGuid()}, name: name}
	b.customers = append(b.customers, c)
	return c.ref, nil
}

// NewVendor creates a vendor entity.
func (e *Engine) NewVendor(ref books.BookRef, name string) (books.VendorRef, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.VendorRef{}, err
	}
	v := vendor{ref: books.VendorRef{Guid: books.NewGuid()}, name: name}
	b.vendors = append(b.vendors, v)
	return v.ref, nil
}

// NewEmployee creates an employee entity.
func (e *Engine) NewEmployee(ref books.BookRef, name string) (books.EmployeeRef, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.EmployeeRef{}, err
	}
	emp := employee{ref: books.EmployeeRef{Guid: books.NewGuid()}, name: name}
	b.employees = append(b.employees, emp)
	return emp.ref, nil
}

// NewJob creates a job billing to an existing customer.
func (e *Engine) NewJob(ref books.BookRef, name string, owner books.CustomerRef) (books.JobRef, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.JobRef{}, err
	}
	if !slices.ContainsFunc(b.customers, func(c customer) bool { return c.ref == owner }) {
		return books.JobRef{}, fmt.Errorf("customer %s: %w", owner, ErrNotFound)
	}
	j := job{ref: books.JobRef{Guid: books.NewGuid()}, name: name, customer: owner}
	b.jobs = append(b.jobs, j)
	return j.ref, nil
}

// AddTaxTable stores a tax table; the Ref field of the argument is ignored
// and a fresh reference is assigned and returned.
func (e *Engine) AddTaxTable(ref books.BookRef, t books.TaxTable) (books.TaxTableRef, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.TaxTableRef{}, err
	}
	t.Ref = books.TaxTableRef{Guid: books.NewGuid()}
	t.Entries = slices.Clone(t.Entries)
	b.taxTables = append(b.taxTables, t)
	return t.Ref, nil
}

// ==================== edit cycle ====================

// BeginEdit opens an edit cycle. Cycles nest: only the outermost one takes
// the rollback snapshot.
func (e *Engine) BeginEdit(ref books.BookRef) error {
	b, err := e.book(ref)
	if err != nil {
		return err
	}
	if b.editDepth == 0 {
		b.undo = b.snapshot()
	}
	b.editDepth++
	return nil
}

// CommitEdit closes the innermost edit cycle; the outermost close discards
// the rollback snapshot.
func (e *Engine) CommitEdit(ref books.BookRef) error {
	b, err := e.book(ref)
	if err != nil {
		return err
	}
	if b.editDepth == 0 {
		return ErrNoEdit
	}
	b.editDepth--
	if b.editDepth == 0 {
		b.undo = nil
	}
	return nil
}

// RollbackEdit abandons the whole edit cycle and restores the book to its
// state before the outermost BeginEdit.
func (e *Engine) RollbackEdit(ref books.BookRef) error {
	b, err := e.book(ref)
	if err != nil {
		return err
	}
	if b.editDepth == 0 {
		return ErrNoEdit
	}
	restored := b.undo
	*b = *restored
	b.editDepth = 0
	b.undo = nil
	return nil
}

// ==================== commits ====================

// CreateTransaction creates the transaction record and one split record per
// spec. It must run inside an edit cycle.
func (e *Engine) CreateTransaction(ref books.BookRef, req books.TransactionCommit) (books.TransactionRef, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.TransactionRef{}, err
	}
	if b.editDepth == 0 {
		return books.TransactionRef{}, ErrNoEdit
	}
	for _, s := range req.Splits {
		if !slices.ContainsFunc(b.accounts, func(a books.Account) bool { return a.Ref == s.Account }) {
			return books.TransactionRef{}, fmt.Errorf("account %s: %w", s.Account, ErrNotFound)
		}
	}

	txn := books.Transaction{
		Ref:         books.TransactionRef{Guid: books.NewGuid()},
		Description: req.Description,
		Num:         req.Num,
		Notes:       req.Notes,
		Currency:    req.Currency,
		DatePosted:  req.DatePosted,
		DateEntered: time.Now().Unix(),
	}
	for _, spec := range req.Splits {
		split := books.Split{
			Ref:         books.SplitRef{Guid: books.NewGuid()},
			Transaction: txn.Ref,
			Account:     spec.Account,
			Amount:      spec.Amount,
			Value:       spec.Amount,
			Memo:        spec.Memo,
		}
		b.splits = append(b.splits, split)
		txn.Splits = append(txn.Splits, split.Ref)
	}
	b.transactions = append(b.transactions, txn)
	return txn.Ref, nil
}

// CreateInvoice creates the invoice header and its entries in accumulation
// order, and computes the engine-side total with its own arithmetic. It must
// run inside an edit cycle.
func (e *Engine) CreateInvoice(ref books.BookRef, req books.InvoiceCommit) (books.InvoiceRef, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.InvoiceRef{}, err
	}
	if b.editDepth == 0 {
		return books.InvoiceRef{}, ErrNoEdit
	}
	if req.Owner == nil || req.Owner.Type() == books.OwnerUndefined {
		return books.InvoiceRef{}, fmt.Errorf("memengine: invoice without owner")
	}
	total, err := e.computeTotal(b, req)
	if err != nil {
		return books.InvoiceRef{}, err
	}
	inv := invoice{
		ref:    books.InvoiceRef{Guid: books.NewGuid()},
		commit: req,
		total:  total,
		posted: time.Now().Unix(),
	}
	inv.commit.Entries = slices.Clone(req.Entries)
	b.invoices = append(b.invoices, inv)
	return inv.ref, nil
}

// computeTotal derives subtotal plus tax from the entry specs, independently
// of the expected values the commit carries.
func (e *Engine) computeTotal(b *book, req books.InvoiceCommit) (books.Numeric, error) {
	percent := books.Cents(1) // 1/100
	total := books.Zero()
	for _, entry := range req.Entries {
		line, err := entry.Price.Mul(entry.Quantity)
		if err != nil {
			return books.Numeric{}, err
		}
		if total, err = total.Add(line); err != nil {
			return books.Numeric{}, err
		}
		if !entry.Taxable || entry.TaxTable.IsNull() {
			continue
		}
		table, err := e.taxTable(b, entry.TaxTable)
		if err != nil {
			return books.Numeric{}, err
		}
		for _, te := range table.Entries {
			tax := te.Amount
			if te.Type == books.AmountPercent {
				rated, err := line.Mul(te.Amount)
				if err != nil {
					return books.Numeric{}, err
				}
				if tax, err = rated.Mul(percent); err != nil {
					return books.Numeric{}, err
				}
			}
			if total, err = total.Add(tax); err != nil {
				return books.Numeric{}, err
			}
		}
	}
	return total, nil
}

// InvoiceTotal returns the engine's computed total for a committed invoice.
func (e *Engine) InvoiceTotal(ref books.BookRef, inv books.InvoiceRef) (books.Numeric, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.Numeric{}, err
	}
	for _, i := range b.invoices {
		if i.ref == inv {
			return i.total, nil
		}
	}
	return books.Numeric{}, fmt.Errorf("invoice %s: %w", inv, ErrNotFound)
}

// Invoice returns the stored commit request of an invoice, for reporting.
func (e *Engine) Invoice(ref books.BookRef, inv books.InvoiceRef) (books.InvoiceCommit, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.InvoiceCommit{}, err
	}
	for _, i := range b.invoices {
		if i.ref == inv {
			c := i.commit
			c.Entries = slices.Clone(c.Entries)
			return c, nil
		}
	}
	return books.InvoiceCommit{}, fmt.Errorf("invoice %s: %w", inv, ErrNotFound)
}

// ==================== lookups ====================

func (e *Engine) taxTable(b *book, ref books.TaxTableRef) (books.TaxTable, error) {
	for _, t := range b.taxTables {
		if t.Ref == ref {
			t.Entries = slices.Clone(t.Entries)
			return t, nil
		}
	}
	return books.TaxTable{}, fmt.Errorf("tax table %s: %w", ref, ErrNotFound)
}

// TaxTable resolves a tax table reference.
func (e *Engine) TaxTable(ref books.BookRef, table books.TaxTableRef) (books.TaxTable, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.TaxTable{}, err
	}
	return e.taxTable(b, table)
}

// CustomerOfJob resolves the customer a job bills to.
func (e *Engine) CustomerOfJob(ref books.BookRef, jobRef books.JobRef) (books.CustomerRef, error) {
	b, err := e.book(ref)
	if err != nil {
		return books.CustomerRef{}, err
	}
	for _, j := range b.jobs {
		if j.ref == jobRef {
			return j.customer, nil
		}
	}
	return books.CustomerRef{}, fmt.Errorf("job %s: %w", jobRef, ErrNotFound)
}

// OwnerName returns the display name of the entity an owner points to.
func (e *Engine) OwnerName(ref books.BookRef, o books.Owner) (string, error) {
	b, err := e.book(ref)
	if err != nil {
		return "", err
	}
	switch v := o.(type) {
	case books.CustomerOwner:
		for _, c := range b.customers {
			if c.ref == v.Ref {
				return c.name, nil
			}
		}
	case books.VendorOwner:
		for _, vd := range b.vendors {
			if vd.ref == v.Ref {
				return vd.name, nil
			}
		}
	case books.EmployeeOwner:
		for _, emp := range b.employees {
			if emp.ref == v.Ref {
				return emp.name, nil
			}
		}
	case books.JobOwner:
		for _, j := range b.jobs {
			if j.ref == v.Ref {
				return j.name, nil
			}
		}
	}
	return "", fmt.Errorf("owner %s: %w", o.OwnerGuid(), ErrNotFound)
}
