package memengine

import (
	"fmt"
	"slices"

	"github.com/etnz/books"
)

// This file is the snapshot exchange surface used by bookdb to persist and
// restore whole books with their references intact.

// Customer is the exported snapshot of a customer entity.
type Customer struct {
	Ref  books.CustomerRef
	Name string
}

// Vendor is the exported snapshot of a vendor entity.
type Vendor struct {
	Ref  books.VendorRef
	Name string
}

// Employee is the exported snapshot of an employee entity.
type Employee struct {
	Ref  books.EmployeeRef
	Name string
}

// Job is the exported snapshot of a job entity.
type Job struct {
	Ref      books.JobRef
	Name     string
	Customer books.CustomerRef
}

// Invoice is the exported snapshot of a committed invoice.
type Invoice struct {
	Ref    books.InvoiceRef
	Commit books.InvoiceCommit
	Total  books.Numeric
}

// State is the full content of one book, in insertion order.
type State struct {
	Accounts     []books.Account
	Transactions []books.Transaction
	Splits       []books.Split
	Customers    []Customer
	Vendors      []Vendor
	Employees    []Employee
	Jobs         []Job
	TaxTables    []books.TaxTable
	Invoices     []Invoice
}

// ExportBook snapshots the whole book. It fails during an edit cycle: a
// half-edited book is not a consistent snapshot.
func (e *Engine) ExportBook(ref books.BookRef) (State, error) {
	b, err := e.book(ref)
	if err != nil {
		return State{}, err
	}
	if b.editDepth != 0 {
		return State{}, fmt.Errorf("memengine: export during an edit cycle")
	}
	c := b.snapshot()
	st := State{
		Accounts:     c.accounts,
		Transactions: c.transactions,
		Splits:       c.splits,
		TaxTables:    c.taxTables,
	}
	for _, cu := range c.customers {
		st.Customers = append(st.Customers, Customer{Ref: cu.ref, Name: cu.name})
	}
	for _, v := range c.vendors {
		st.Vendors = append(st.Vendors, Vendor{Ref: v.ref, Name: v.name})
	}
	for _, emp := range c.employees {
		st.Employees = append(st.Employees, Employee{Ref: emp.ref, Name: emp.name})
	}
	for _, j := range c.jobs {
		st.Jobs = append(st.Jobs, Job{Ref: j.ref, Name: j.name, Customer: j.customer})
	}
	for _, inv := range c.invoices {
		st.Invoices = append(st.Invoices, Invoice{Ref: inv.ref, Commit: inv.commit, Total: inv.total})
	}
	return st, nil
}

// ImportBook registers a book under ref with the given content, references
// preserved. The reference must not already be held here.
func (e *Engine) ImportBook(ref books.BookRef, st State) error {
	if _, ok := e.byRef[ref]; ok {
		return fmt.Errorf("memengine: book %s already loaded", ref)
	}
	b := &book{
		accounts: slices.Clone(st.Accounts),
		splits:   slices.Clone(st.Splits),
	}
	b.transactions = make([]books.Transaction, len(st.Transactions))
	for i, t := range st.Transactions {
		t.Splits = slices.Clone(t.Splits)
		b.transactions[i] = t
	}
	b.taxTables = make([]books.TaxTable, len(st.TaxTables))
	for i, t := range st.TaxTables {
		t.Entries = slices.Clone(t.Entries)
		b.taxTables[i] = t
	}
	for _, cu := range st.Customers {
		b.customers = append(b.customers, customer{ref: cu.Ref, name: cu.Name})
	}
	for _, v := range st.Vendors {
		b.vendors = append(b.vendors, vendor{ref: v.Ref, name: v.Name})
	}
	for _, emp := range st.Employees {
		b.employees = append(b.employees, employee{ref: emp.Ref, name: emp.Name})
	}
	for _, j := range st.Jobs {
		b.jobs = append(b.jobs, job{ref: j.Ref, name: j.Name, customer: j.Customer})
	}
	for _, inv := range st.Invoices {
		i := invoice{ref: inv.Ref, commit: inv.Commit, total: inv.Total}
		i.commit.Entries = slices.Clone(inv.Commit.Entries)
		b.invoices = append(b.invoices, i)
	}
	e.byRef[ref] = b
	return nil
}
