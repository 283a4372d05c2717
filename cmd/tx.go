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
)

type txCmd struct {
	description string
	num         string
	notes       string
	currency    string
	date        string
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "record a transaction from its splits" }
func (*txCmd) Usage() string {
	return `bks tx -desc <description> [-d <date>] [-num <num>] [-currency <code>] <account>:<amount>[:<memo>]...

  Records one balanced transaction. Each positional argument is a split:
  an account name, a signed decimal amount and an optional memo, separated
  by colons. The amounts must sum to exactly zero.

Usage Examples:
# Pay 120.00 of rent from Checking.
$ bks tx -desc "October rent" Checking:-120.00 Rent:120.00

`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.description, "desc", "", "Transaction description.")
	f.StringVar(&p.num, "num", "", "Transaction number or check number.")
	f.StringVar(&p.notes, "notes", "", "Free-form notes.")
	f.StringVar(&p.currency, "currency", "", "Transaction currency code.")
	f.StringVar(&p.date, "d", "", "Posting date (YYYY-MM-DD). Defaults to today.")
}

func (p *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Error: at least two splits are required.")
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

	b := books.NewTransaction(book).
		Description(p.description).
		Num(p.num).
		Notes(p.notes).
		Currency(p.currency).
		Date(day, month, year)

	for _, arg := range f.Args() {
		parts := strings.SplitN(arg, ":", 3)
		if len(parts) < 2 {
			fmt.Fprintf(os.Stderr, "Error: invalid split %q, want account:amount[:memo].\n", arg)
			return subcommands.ExitUsageError
		}
		account, err := findAccount(e, book, parts[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		amount, err := parseAmount(parts[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitUsageError
		}
		memo := ""
		if len(parts) == 3 {
			memo = parts[2]
		}
		b.Split(account.Ref, amount, memo)
	}

	ref, err := b.Build(e)
	if err != nil {
		var imb *books.ImbalancedError
		if errors.As(err, &imb) {
			fmt.Fprintf(os.Stderr, "Error: splits do not balance, off by %s.\n", imb.Imbalance)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Error recording transaction: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := saveBook(db, e, book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving book: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Recorded transaction %s.\n", ref)
	return subcommands.ExitSuccess
}
