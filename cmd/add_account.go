package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/books"
)

type addAccountCmd struct {
	name        string
	accountType string
	code        string
	description string
	parent      string
	currency    string
}

func (*addAccountCmd) Name() string     { return "add-account" }
func (*addAccountCmd) Synopsis() string { return "add an account to the book" }
func (*addAccountCmd) Usage() string {
	return `bks add-account -name <name> -type <type> [-code <code>] [-parent <name>] [-currency <code>]

  Adds one account to the chart. Types: asset, bank, cash, credit,
  liability, income, expense, equity, receivable, payable.
`
}

func (p *addAccountCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.name, "name", "", "Account name.")
	f.StringVar(&p.accountType, "type", "", "Account type.")
	f.StringVar(&p.code, "code", "", "Account code.")
	f.StringVar(&p.description, "description", "", "Account description.")
	f.StringVar(&p.parent, "parent", "", "Name of the parent account.")
	f.StringVar(&p.currency, "currency", "", "Account currency code.")
}

func (p *addAccountCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.name == "" || p.accountType == "" {
		fmt.Fprintln(os.Stderr, "Error: -name and -type are required.")
		return subcommands.ExitUsageError
	}
	typ, ok := books.ParseAccountType(p.accountType)
	if !ok {
		fmt.Fprintf(os.Stderr, "Error: unknown account type %q.\n", p.accountType)
		return subcommands.ExitUsageError
	}

	db, e, book, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	a := books.Account{
		Name:        p.name,
		Code:        p.code,
		Description: p.description,
		Type:        typ,
		Currency:    p.currency,
	}
	if p.parent != "" {
		parent, err := findAccount(e, book, p.parent)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		a.Parent = parent.Ref
	}

	if _, err := e.AddAccount(book, a); err != nil {
		fmt.Fprintf(os.Stderr, "Error adding account: %v\n", err)
		return subcommands.ExitFailure
	}
	if err := saveBook(db, e, book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving book: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Added account %q.\n", p.name)
	return subcommands.ExitSuccess
}
