// Package cmd implements the CLI application to manage a company's books.
package cmd

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/etnz/books"
	"github.com/etnz/books/bookdb"
	"github.com/etnz/books/memengine"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&initCmd{}, "book")
	c.Register(&accountsCmd{}, "book")
	c.Register(&addAccountCmd{}, "book")

	c.Register(&txCmd{}, "transactions")
	c.Register(&transferCmd{}, "transactions")
	c.Register(&importCmd{}, "transactions")

	c.Register(&invoiceCmd{}, "invoices")

	c.Register(&findCmd{}, "reports")
	c.Register(&ledgerCmd{}, "reports")

	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var bookFile = flag.String("book-file", defaultBookFile(), "Path to the book database file")

// defaultBookFile resolves the book file from the environment, loading a
// local .env first. Missing .env is fine.
func defaultBookFile() string {
	_ = godotenv.Load()
	if v := os.Getenv("BOOKS_FILE"); v != "" {
		return v
	}
	return "books.db"
}

// openBook loads the book database into a fresh in-memory engine.
// The caller owns the returned DB and must Close it.
func openBook() (*bookdb.DB, *memengine.Engine, books.BookRef, error) {
	db, err := bookdb.Open(*bookFile)
	if err != nil {
		return nil, nil, books.BookRef{}, fmt.Errorf("opening book %q: %w", *bookFile, err)
	}
	ref, st, err := db.LoadBook()
	if err != nil {
		db.Close()
		return nil, nil, books.BookRef{}, fmt.Errorf("loading book %q: %w", *bookFile, err)
	}
	e := memengine.New()
	if err := e.ImportBook(ref, st); err != nil {
		db.Close()
		return nil, nil, books.BookRef{}, err
	}
	return db, e, ref, nil
}

// saveBook writes the engine's state back to the database.
func saveBook(db *bookdb.DB, e *memengine.Engine, ref books.BookRef) error {
	st, err := e.ExportBook(ref)
	if err != nil {
		return err
	}
	return db.SaveBook(ref, st)
}

// parseDay parses a calendar day, defaulting to today in UTC.
func parseDay(s string) (day, month, year int, err error) {
	t := time.Now().UTC()
	if s != "" {
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("invalid date %q, want YYYY-MM-DD: %w", s, err)
		}
	}
	return t.Day(), int(t.Month()), t.Year(), nil
}

// parseAmount parses a decimal amount like "50.00" into an exact rational.
func parseAmount(s string) (books.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return books.Numeric{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return books.FromDecimal(d)
}

// findAccount resolves an account by exact name through the query API.
func findAccount(e books.Engine, book books.BookRef, name string) (books.Account, error) {
	q := books.ForType(books.TargetAccount)
	q.SetBook(book)
	q.AddStringMatch([]string{books.ParamAccountName}, books.CompareEq, name, books.QueryAnd)
	found, err := q.RunAccounts(e)
	if err != nil {
		return books.Account{}, err
	}
	if len(found) == 0 {
		return books.Account{}, fmt.Errorf("no account named %q", name)
	}
	if len(found) > 1 {
		return books.Account{}, fmt.Errorf("account name %q is ambiguous (%d matches)", name, len(found))
	}
	return found[0], nil
}

// allAccounts returns every account of the book, in engine order.
func allAccounts(e books.Engine, book books.BookRef) ([]books.Account, error) {
	q := books.ForType(books.TargetAccount)
	q.SetBook(book)
	return q.RunAccounts(e)
}

// transactionsByRef indexes every transaction of the book.
func transactionsByRef(e books.Engine, book books.BookRef) (map[books.TransactionRef]books.Transaction, error) {
	q := books.ForType(books.TargetTransaction)
	q.SetBook(book)
	txns, err := q.RunTransactions(e)
	if err != nil {
		return nil, err
	}
	m := make(map[books.TransactionRef]books.Transaction, len(txns))
	for _, t := range txns {
		m[t.Ref] = t
	}
	return m, nil
}
