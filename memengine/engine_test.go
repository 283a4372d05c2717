package memengine

import (
	"errors"
	"testing"

	"github.com/etnz/books"
)

// setupBook creates a book with a small chart and three booked transactions:
// a grocery run, a rent payment and a salary deposit.
func setupBook(t *testing.T) (*Engine, books.BookRef, map[string]books.AccountRef) {
	t.Helper()

	e := New()
	book := e.NewBook()

	accounts := make(map[string]books.AccountRef)
	for _, a := range []books.Account{
		{Name: "Checking", Type: books.AccountBank, Currency: "EUR"},
		{Name: "Groceries", Type: books.AccountExpense, Currency: "EUR"},
		{Name: "Rent", Type: books.AccountExpense, Currency: "EUR"},
		{Name: "Salary", Type: books.AccountIncome, Currency: "EUR"},
	} {
		ref, err := e.AddAccount(book, a)
		if err != nil {
			t.Fatalf("AddAccount(%s) failed: %v", a.Name, err)
		}
		accounts[a.Name] = ref
	}

	mustBuild := func(b *books.TransactionBuilder) {
		t.Helper()
		if _, err := b.Build(e); err != nil {
			t.Fatalf("Build() failed: %v", err)
		}
	}
	mustBuild(books.NewTransaction(book).
		Description("Groceries").
		Date(15, 1, 2024).
		Split(accounts["Checking"], books.Cents(-5000), "").
		Split(accounts["Groceries"], books.Cents(5000), "weekly run"))
	mustBuild(books.NewTransaction(book).
		Description("January rent").
		Date(1, 2, 2024).
		Split(accounts["Checking"], books.Cents(-120000), "").
		Split(accounts["Rent"], books.Cents(120000), "rent"))
	mustBuild(books.NewTransaction(book).
		Description("October salary").
		Date(3, 2, 2024).
		Split(accounts["Salary"], books.Cents(-150000), "").
		Split(accounts["Checking"], books.Cents(150000), "payday"))

	return e, book, accounts
}

func TestEngine_UnknownBook(t *testing.T) {
	e := New()
	ghost := books.BookRef{Guid: books.NewGuid()}
	if _, err := e.AddAccount(ghost, books.Account{Name: "x"}); !errors.Is(err, ErrUnknownBook) {
		t.Errorf("AddAccount on unknown book error = %v, want ErrUnknownBook", err)
	}
	if err := e.BeginEdit(ghost); !errors.Is(err, ErrUnknownBook) {
		t.Errorf("BeginEdit on unknown book error = %v, want ErrUnknownBook", err)
	}
}

func TestEngine_EditCycle(t *testing.T) {
	e := New()
	book := e.NewBook()
	checking, _ := e.AddAccount(book, books.Account{Name: "Checking", Type: books.AccountBank})
	savings, _ := e.AddAccount(book, books.Account{Name: "Savings", Type: books.AccountBank})

	// Mutations outside an edit cycle are rejected.
	req := books.TransactionCommit{Splits: []books.SplitSpec{
		{Account: checking, Amount: books.Cents(-100)},
		{Account: savings, Amount: books.Cents(100)},
	}}
	if _, err := e.CreateTransaction(book, req); !errors.Is(err, ErrNoEdit) {
		t.Errorf("CreateTransaction outside edit error = %v, want ErrNoEdit", err)
	}
	if err := e.CommitEdit(book); !errors.Is(err, ErrNoEdit) {
		t.Errorf("CommitEdit outside edit error = %v, want ErrNoEdit", err)
	}

	// A rolled-back edit leaves no trace.
	if err := e.BeginEdit(book); err != nil {
		t.Fatalf("BeginEdit() failed: %v", err)
	}
	if _, err := e.CreateTransaction(book, req); err != nil {
		t.Fatalf("CreateTransaction() failed: %v", err)
	}
	if err := e.RollbackEdit(book); err != nil {
		t.Fatalf("RollbackEdit() failed: %v", err)
	}
	splits, err := e.SearchSplits(book, nil, 0)
	if err != nil {
		t.Fatalf("SearchSplits() failed: %v", err)
	}
	if len(splits) != 0 {
		t.Errorf("rolled-back edit left %d splits", len(splits))
	}

	// Nested cycles commit as one unit.
	if err := e.BeginEdit(book); err != nil {
		t.Fatal(err)
	}
	if err := e.BeginEdit(book); err != nil {
		t.Fatal(err)
	}
	if _, err := e.CreateTransaction(book, req); err != nil {
		t.Fatal(err)
	}
	if err := e.CommitEdit(book); err != nil {
		t.Fatal(err)
	}
	if err := e.CommitEdit(book); err != nil {
		t.Fatal(err)
	}
	splits, err = e.SearchSplits(book, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(splits) != 2 {
		t.Errorf("committed edit holds %d splits, want 2", len(splits))
	}
}

func TestEngine_CreateTransaction(t *testing.T) {
	e, book, accounts := setupBook(t)

	txns, err := e.SearchTransactions(book, nil, 0)
	if err != nil {
		t.Fatalf("SearchTransactions() failed: %v", err)
	}
	if len(txns) != 3 {
		t.Fatalf("book holds %d transactions, want 3", len(txns))
	}
	// Insertion order is preserved.
	if txns[0].Description != "Groceries" || txns[2].Description != "October salary" {
		t.Errorf("transactions out of order: %q ... %q", txns[0].Description, txns[2].Description)
	}
	if len(txns[0].Splits) != 2 {
		t.Errorf("transaction has %d split refs, want 2", len(txns[0].Splits))
	}

	// Unknown accounts are rejected inside the edit cycle.
	_, err = books.NewTransaction(book).
		Split(books.AccountRef{Guid: books.NewGuid()}, books.Cents(-100), "").
		Split(accounts["Checking"], books.Cents(100), "").
		Build(e)
	var commitErr *books.CommitError
	if !errors.As(err, &commitErr) {
		t.Fatalf("Build() with unknown account error = %v, want CommitError", err)
	}
	if !errors.Is(err, ErrNotFound) {
		t.Error("CommitError does not wrap ErrNotFound")
	}
	// The failed build rolled back: still 3 transactions.
	txns, err = e.SearchTransactions(book, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(txns) != 3 {
		t.Errorf("failed build left %d transactions, want 3", len(txns))
	}
}

func TestEngine_InvoiceLifecycle(t *testing.T) {
	e := New()
	book := e.NewBook()
	sales, _ := e.AddAccount(book, books.Account{Name: "Sales", Type: books.AccountIncome})
	vat, _ := e.AddAccount(book, books.Account{Name: "VAT Payable", Type: books.AccountLiability})

	customer, err := e.NewCustomer(book, "ACME Corp")
	if err != nil {
		t.Fatalf("NewCustomer() failed: %v", err)
	}
	table, err := e.AddTaxTable(book, books.TaxTable{
		Name: "VAT",
		Entries: []books.TaxTableEntry{
			{Account: vat, Amount: books.FromInt(19), Type: books.AmountPercent},
		},
	})
	if err != nil {
		t.Fatalf("AddTaxTable() failed: %v", err)
	}

	// 8 units at 150.00 with 19% VAT. The engine's own arithmetic must agree
	// with the builder's, so no mismatch is reported.
	ref, err := books.NewInvoice(book).
		ID("INV-001").
		Owner(books.CustomerOwner{Ref: customer}).
		DateOpened(3, 2, 2024).
		TaxedEntry("Consulting", books.Cents(15000), books.FromInt(8), sales, table).
		Build(e)
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}

	total, err := e.InvoiceTotal(book, ref)
	if err != nil {
		t.Fatalf("InvoiceTotal() failed: %v", err)
	}
	eq, err := total.Equal(books.Cents(142800))
	if err != nil {
		t.Fatalf("Equal() failed: %v", err)
	}
	if !eq {
		t.Errorf("invoice total = %s, want 1428.00", total)
	}

	commit, err := e.Invoice(book, ref)
	if err != nil {
		t.Fatalf("Invoice() failed: %v", err)
	}
	if commit.ID != "INV-001" || len(commit.Entries) != 1 {
		t.Errorf("stored commit = %+v", commit)
	}

	name, err := e.OwnerName(book, commit.Owner)
	if err != nil {
		t.Fatalf("OwnerName() failed: %v", err)
	}
	if name != "ACME Corp" {
		t.Errorf("OwnerName() = %q, want ACME Corp", name)
	}
}

func TestEngine_Jobs(t *testing.T) {
	e := New()
	book := e.NewBook()

	customer, err := e.NewCustomer(book, "ACME Corp")
	if err != nil {
		t.Fatal(err)
	}
	// A job needs an existing customer.
	if _, err := e.NewJob(book, "orphan", books.CustomerRef{Guid: books.NewGuid()}); !errors.Is(err, ErrNotFound) {
		t.Errorf("NewJob with unknown customer error = %v, want ErrNotFound", err)
	}
	job, err := e.NewJob(book, "Rollout", customer)
	if err != nil {
		t.Fatalf("NewJob() failed: %v", err)
	}

	got, err := e.CustomerOfJob(book, job)
	if err != nil {
		t.Fatalf("CustomerOfJob() failed: %v", err)
	}
	if got != customer {
		t.Errorf("CustomerOfJob() = %s, want %s", got, customer)
	}

	// EndOwner chains through the engine.
	end, err := books.EndOwner(e, book, books.JobOwner{Ref: job})
	if err != nil {
		t.Fatalf("EndOwner() failed: %v", err)
	}
	co, ok := end.(books.CustomerOwner)
	if !ok || co.Ref != customer {
		t.Errorf("EndOwner(job) = %#v, want customer owner", end)
	}
}

func TestEngine_ExportImport(t *testing.T) {
	e, book, _ := setupBook(t)

	st, err := e.ExportBook(book)
	if err != nil {
		t.Fatalf("ExportBook() failed: %v", err)
	}
	if len(st.Accounts) != 4 || len(st.Transactions) != 3 || len(st.Splits) != 6 {
		t.Fatalf("exported %d accounts, %d transactions, %d splits",
			len(st.Accounts), len(st.Transactions), len(st.Splits))
	}

	// A second engine restores the book with references intact.
	e2 := New()
	if err := e2.ImportBook(book, st); err != nil {
		t.Fatalf("ImportBook() failed: %v", err)
	}
	splits, err := e2.SearchSplits(book, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(splits) != 6 {
		t.Errorf("imported book holds %d splits, want 6", len(splits))
	}
	original, err := e.SearchSplits(book, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range splits {
		if splits[i].Ref != original[i].Ref {
			t.Fatalf("split %d reference changed across export/import", i)
		}
	}

	// Importing over a held reference is rejected.
	if err := e2.ImportBook(book, st); err == nil {
		t.Error("ImportBook() over a held reference succeeded")
	}

	// Export during an edit cycle is rejected.
	if err := e.BeginEdit(book); err != nil {
		t.Fatal(err)
	}
	if _, err := e.ExportBook(book); err == nil {
		t.Error("ExportBook() during an edit cycle succeeded")
	}
}
