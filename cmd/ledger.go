package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/books"
	"github.com/etnz/books/renderer"
)

type ledgerCmd struct {
	account string
}

func (*ledgerCmd) Name() string     { return "ledger" }
func (*ledgerCmd) Synopsis() string { return "show an account register with its running balance" }
func (*ledgerCmd) Usage() string {
	return `bks ledger -account <name>

  Lists every split booked against the account, with the transaction
  description and an exact running balance.
`
}

func (p *ledgerCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.account, "account", "", "Account to report on.")
}

func (p *ledgerCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.account == "" {
		fmt.Fprintln(os.Stderr, "Error: -account is required.")
		return subcommands.ExitUsageError
	}

	db, e, book, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	account, err := findAccount(e, book, p.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	q := books.ForType(books.TargetSplit)
	q.SetBook(book)
	q.AddGuidMatch([]string{books.ParamSplitAccount}, account.Ref.Guid, books.QueryAnd)
	splits, err := q.RunSplits(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing splits: %v\n", err)
		return subcommands.ExitFailure
	}

	txns, err := transactionsByRef(e, book)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	l, err := renderer.NewLedger(account, splits, txns)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering ledger: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderLedger(l))
	return subcommands.ExitSuccess
}
