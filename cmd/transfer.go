package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/books"
)

type transferCmd struct {
	from        string
	to          string
	amount      string
	memo        string
	description string
	date        string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "move an amount between two accounts" }
func (*transferCmd) Usage() string {
	return `bks transfer -from <account> -to <account> -amount <amount> [-d <date>] [-memo <memo>]

  Records a two-split transaction: the amount leaves the source account and
  enters the destination account.

Usage Examples:
$ bks transfer -from Checking -to Groceries -amount 50.00

`
}

func (p *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.from, "from", "", "Source account name.")
	f.StringVar(&p.to, "to", "", "Destination account name.")
	f.StringVar(&p.amount, "amount", "", "Decimal amount to move.")
	f.StringVar(&p.memo, "memo", "", "Memo set on both splits.")
	f.StringVar(&p.description, "desc", "", "Transaction description. Defaults to the account names.")
	f.StringVar(&p.date, "d", "", "Posting date (YYYY-MM-DD). Defaults to today.")
}

func (p *transferCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.from == "" || p.to == "" || p.amount == "" {
		fmt.Fprintln(os.Stderr, "Error: -from, -to and -amount are required.")
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount(p.amount)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
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

	from, err := findAccount(e, book, p.from)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	to, err := findAccount(e, book, p.to)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	description := p.description
	if description == "" {
		description = fmt.Sprintf("%s to %s", from.Name, to.Name)
	}

	ref, err := books.NewTransaction(book).
		Description(description).
		Date(day, month, year).
		Transfer(from.Ref, to.Ref, amount, p.memo).
		Build(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error recording transfer: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := saveBook(db, e, book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving book: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded transfer %s.\n", ref)
	return subcommands.ExitSuccess
}
