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

type findCmd struct {
	limit    int
	invert   bool
	currency string
}

func (*findCmd) Name() string     { return "find" }
func (*findCmd) Synopsis() string { return "search splits with a chain of predicates" }
func (*findCmd) Usage() string {
	return `bks find [-limit <n>] [-invert] <predicate> [<join> <predicate>]...

  Searches the book's splits. Each predicate is "path op value"; paths hop
  with slashes (memo, value, trans/desc, account/name), comparisons are
  =, !=, <, <=, >, >=, contains, !contains. Predicates chain left to right
  with and, or, nand, nor, xor. -invert matches the complement.

Usage Examples:
$ bks find 'memo contains rent'
$ bks find 'value >= 100.00' and 'account/name contains Checking'

`
}

func (p *findCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&p.limit, "limit", 0, "Return at most N results. 0 means unlimited.")
	f.BoolVar(&p.invert, "invert", false, "Match exactly the splits the predicates reject.")
	f.StringVar(&p.currency, "currency", "EUR", "Currency used to format the amounts.")
}

func (p *findCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	db, e, book, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	q, err := buildQuery(books.TargetSplit, book, f.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}
	q.SetMaxResults(p.limit)
	if p.invert {
		q = q.Invert()
	}

	splits, err := q.RunSplits(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error running query: %v\n", err)
		return subcommands.ExitFailure
	}

	accounts, err := allAccounts(e, book)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	byRef := make(map[books.AccountRef]books.Account, len(accounts))
	for _, a := range accounts {
		byRef[a.Ref] = a
	}
	txns, err := transactionsByRef(e, book)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	list, err := renderer.NewSplitList(splits, byRef, txns, p.currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering results: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.RenderSplits(list))
	return subcommands.ExitSuccess
}
