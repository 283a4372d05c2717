package bookdb

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/etnz/books"
	"github.com/etnz/books/memengine"
)

// populate fills a fresh engine with one of everything the database can
// hold: a small chart, booked transactions, business entities, a tax table
// and a posted invoice.
func populate(t *testing.T) (*memengine.Engine, books.BookRef) {
	t.Helper()

	e := memengine.New()
	book := e.NewBook()

	assets, err := e.AddAccount(book, books.Account{Name: "Assets", Type: books.AccountAsset, Currency: "EUR"})
	if err != nil {
		t.Fatal(err)
	}
	checking, err := e.AddAccount(book, books.Account{
		Name: "Checking", Type: books.AccountBank, Code: "1000", Parent: assets, Currency: "EUR"})
	if err != nil {
		t.Fatal(err)
	}
	sales, err := e.AddAccount(book, books.Account{Name: "Sales", Type: books.AccountIncome, Currency: "EUR"})
	if err != nil {
		t.Fatal(err)
	}
	vat, err := e.AddAccount(book, books.Account{Name: "VAT Payable", Type: books.AccountLiability, Currency: "EUR"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := books.NewTransaction(book).
		Description("Opening balance").
		Num("1").
		Date(2, 1, 2024).
		Split(checking, books.Cents(500000), "opening").
		Split(sales, books.Cents(-500000), "").
		Build(e); err != nil {
		t.Fatal(err)
	}

	customer, err := e.NewCustomer(book, "ACME Corp")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.NewVendor(book, "Paper Supplies"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.NewEmployee(book, "Jo Miller"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.NewJob(book, "Rollout", customer); err != nil {
		t.Fatal(err)
	}

	table, err := e.AddTaxTable(book, books.TaxTable{
		Name: "VAT",
		Entries: []books.TaxTableEntry{
			{Account: vat, Amount: books.FromInt(19), Type: books.AmountPercent},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := books.NewInvoice(book).
		ID("INV-001").
		Owner(books.CustomerOwner{Ref: customer}).
		DateOpened(3, 2, 2024).
		Notes("february retainer").
		TaxedEntry("Consulting", books.Cents(15000), books.FromInt(8), sales, table).
		Build(e); err != nil {
		t.Fatal(err)
	}

	return e, book
}

func TestSaveLoadRoundTrip(t *testing.T) {
	e, book := populate(t)
	st, err := e.ExportBook(book)
	if err != nil {
		t.Fatalf("ExportBook() failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "books.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	if err := db.SaveBook(book, st); err != nil {
		t.Fatalf("SaveBook() failed: %v", err)
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	// Reopen from disk and compare the snapshots field by field.
	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopening failed: %v", err)
	}
	defer db.Close()
	ref, loaded, err := db.LoadBook()
	if err != nil {
		t.Fatalf("LoadBook() failed: %v", err)
	}
	if ref != book {
		t.Errorf("LoadBook() ref = %s, want %s", ref, book)
	}
	if !reflect.DeepEqual(loaded.Accounts, st.Accounts) {
		t.Errorf("accounts changed across save/load:\ngot  %+v\nwant %+v", loaded.Accounts, st.Accounts)
	}
	if !reflect.DeepEqual(loaded.Transactions, st.Transactions) {
		t.Errorf("transactions changed across save/load:\ngot  %+v\nwant %+v", loaded.Transactions, st.Transactions)
	}
	if !reflect.DeepEqual(loaded.Splits, st.Splits) {
		t.Errorf("splits changed across save/load:\ngot  %+v\nwant %+v", loaded.Splits, st.Splits)
	}
	if !reflect.DeepEqual(loaded.Customers, st.Customers) ||
		!reflect.DeepEqual(loaded.Vendors, st.Vendors) ||
		!reflect.DeepEqual(loaded.Employees, st.Employees) ||
		!reflect.DeepEqual(loaded.Jobs, st.Jobs) {
		t.Error("business entities changed across save/load")
	}
	if !reflect.DeepEqual(loaded.TaxTables, st.TaxTables) {
		t.Errorf("tax tables changed across save/load:\ngot  %+v\nwant %+v", loaded.TaxTables, st.TaxTables)
	}
	if !reflect.DeepEqual(loaded.Invoices, st.Invoices) {
		t.Errorf("invoices changed across save/load:\ngot  %+v\nwant %+v", loaded.Invoices, st.Invoices)
	}

	// The snapshot imports into a fresh engine and keeps answering queries.
	e2 := memengine.New()
	if err := e2.ImportBook(ref, loaded); err != nil {
		t.Fatalf("ImportBook() failed: %v", err)
	}
	splits, err := e2.SearchSplits(ref, nil, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(splits) != 2 {
		t.Errorf("imported book holds %d splits, want 2", len(splits))
	}
}

func TestSaveBookReplaces(t *testing.T) {
	e, book := populate(t)
	st, err := e.ExportBook(book)
	if err != nil {
		t.Fatal(err)
	}

	db, err := Open(filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if err := db.SaveBook(book, st); err != nil {
		t.Fatal(err)
	}

	// A second save is a full replacement, not an append.
	small := memengine.New()
	book2 := small.NewBook()
	if _, err := small.AddAccount(book2, books.Account{Name: "Only", Type: books.AccountAsset}); err != nil {
		t.Fatal(err)
	}
	st2, err := small.ExportBook(book2)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.SaveBook(book2, st2); err != nil {
		t.Fatalf("second SaveBook() failed: %v", err)
	}

	ref, loaded, err := db.LoadBook()
	if err != nil {
		t.Fatalf("LoadBook() failed: %v", err)
	}
	if ref != book2 {
		t.Errorf("LoadBook() ref = %s, want %s", ref, book2)
	}
	if len(loaded.Accounts) != 1 || len(loaded.Transactions) != 0 || len(loaded.Invoices) != 0 {
		t.Errorf("replacement left %d accounts, %d transactions, %d invoices",
			len(loaded.Accounts), len(loaded.Transactions), len(loaded.Invoices))
	}
}

func TestLoadBookEmpty(t *testing.T) {
	db, err := Open(filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	_, _, err = db.LoadBook()
	if err == nil {
		t.Fatal("LoadBook() on an empty database succeeded")
	}
	if !strings.Contains(err.Error(), "no book") {
		t.Errorf("error = %q, want it to say no book is stored", err)
	}
}
