package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/books/renderer"
)

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list the chart of accounts" }
func (*accountsCmd) Usage() string {
	return `bks accounts

  Lists every account of the book, indented under its parent.
`
}

func (*accountsCmd) SetFlags(f *flag.FlagSet) {}

func (p *accountsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, e, book, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	accounts, err := allAccounts(e, book)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing accounts: %v\n", err)
		return subcommands.ExitFailure
	}

	printMarkdown(renderer.RenderChart(renderer.NewChart(accounts)))
	return subcommands.ExitSuccess
}
