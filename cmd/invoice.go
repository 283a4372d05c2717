package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"

	"github.com/etnz/books"
	"github.com/etnz/books/memengine"
	"github.com/etnz/books/renderer"
)

type invoiceCmd struct {
	id       string
	owner    string
	billing  string
	notes    string
	date     string
	currency string
}

func (*invoiceCmd) Name() string     { return "invoice" }
func (*invoiceCmd) Synopsis() string { return "build and post an invoice" }
func (*invoiceCmd) Usage() string {
	return `bks invoice -id <id> -owner <kind>:<name> [-d <date>] <desc>:<price>:<qty>:<account>[:<taxtable>]...

  Posts an invoice for a customer, vendor, employee or job. Each positional
  argument is one entry: a description, a decimal unit price, a decimal
  quantity, the income account, and optionally a tax table name. Tax is
  computed per line on exact rationals.

Usage Examples:
$ bks invoice -id INV-7 -owner "customer:ACME Corp" "Consulting:150.00:8:Sales:VAT"

`
}

func (p *invoiceCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.id, "id", "", "User-facing invoice identifier.")
	f.StringVar(&p.owner, "owner", "", "Billed party, as kind:name (customer, vendor, employee, job).")
	f.StringVar(&p.billing, "billing", "", "Billing identifier.")
	f.StringVar(&p.notes, "notes", "", "Free-form notes.")
	f.StringVar(&p.date, "d", "", "Opening date (YYYY-MM-DD). Defaults to today.")
	f.StringVar(&p.currency, "currency", "EUR", "Currency used to format the amounts.")
}

func (p *invoiceCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: at least one entry is required.")
		return subcommands.ExitUsageError
	}
	day, month, year, err := parseDay(p.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	db, e, book, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	st, err := e.ExportBook(book)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	owner, err := resolveOwner(st, p.owner)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	b := books.NewInvoice(book).
		ID(p.id).
		BillingID(p.billing).
		Notes(p.notes).
		Owner(owner).
		DateOpened(day, month, year)

	for _, arg := range f.Args() {
		parts := strings.SplitN(arg, ":", 5)
		if len(parts) < 4 {
			fmt.Fprintf(os.Stderr, "Error: invalid entry %q, want desc:price:qty:account[:taxtable].\n", arg)
			return subcommands.ExitUsageError
		}
		price, err := parseAmount(parts[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		qty, err := parseAmount(parts[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		account, err := findAccount(e, book, parts[3])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		if len(parts) == 5 {
			table, err := findTaxTable(st, parts[4])
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return subcommands.ExitFailure
			}
			b.TaxedEntry(parts[0], price, qty, account.Ref, table)
		} else {
			b.Entry(parts[0], price, qty, account.Ref)
		}
	}

	ref, err := b.Build(e)
	var mismatch *books.TotalMismatchError
	if errors.As(err, &mismatch) {
		// The invoice is posted; report the discrepancy and keep going.
		fmt.Fprintf(os.Stderr, "Warning: engine total %s differs from computed total %s.\n",
			mismatch.Engine, mismatch.Local)
	} else if err != nil {
		fmt.Fprintf(os.Stderr, "Error posting invoice: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := saveBook(db, e, book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving book: %v\n", err)
		return subcommands.ExitFailure
	}

	printInvoice(e, book, ref, p.currency)
	return subcommands.ExitSuccess
}

// printInvoice renders the posted invoice. Rendering failures are reported
// but do not fail the command: the invoice is already posted and saved.
func printInvoice(e *memengine.Engine, book books.BookRef, ref books.InvoiceRef, currency string) {
	commit, err := e.Invoice(book, ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot render invoice: %v\n", err)
		return
	}
	total, err := e.InvoiceTotal(book, ref)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot render invoice: %v\n", err)
		return
	}
	ownerName, err := e.OwnerName(book, commit.Owner)
	if err != nil {
		ownerName = commit.Owner.Type().String()
	}
	accounts, err := allAccounts(e, book)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot render invoice: %v\n", err)
		return
	}
	byRef := make(map[books.AccountRef]books.Account, len(accounts))
	for _, a := range accounts {
		byRef[a.Ref] = a
	}
	doc, err := renderer.NewInvoiceDoc(commit, total, ownerName, currency, byRef)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: cannot render invoice: %v\n", err)
		return
	}
	printMarkdown(renderer.RenderInvoice(doc))
}

// resolveOwner parses a kind:name owner reference against the book's
// entities.
func resolveOwner(st memengine.State, s string) (books.Owner, error) {
	kind, name, ok := strings.Cut(s, ":")
	if !ok {
		return nil, fmt.Errorf("invalid owner %q, want kind:name", s)
	}
	switch kind {
	case "customer":
		for _, c := range st.Customers {
			if c.Name == name {
				return books.CustomerOwner{Ref: c.Ref}, nil
			}
		}
	case "vendor":
		for _, v := range st.Vendors {
			if v.Name == name {
				return books.VendorOwner{Ref: v.Ref}, nil
			}
		}
	case "employee":
		for _, emp := range st.Employees {
			if emp.Name == name {
				return books.EmployeeOwner{Ref: emp.Ref}, nil
			}
		}
	case "job":
		for _, j := range st.Jobs {
			if j.Name == name {
				return books.JobOwner{Ref: j.Ref}, nil
			}
		}
	default:
		return nil, fmt.Errorf("unknown owner kind %q", kind)
	}
	return nil, fmt.Errorf("no %s named %q", kind, name)
}

// findTaxTable resolves a tax table by name.
func findTaxTable(st memengine.State, name string) (books.TaxTableRef, error) {
	for _, t := range st.TaxTables {
		if t.Name == name {
			return t.Ref, nil
		}
	}
	return books.TaxTableRef{}, fmt.Errorf("no tax table named %q", name)
}
