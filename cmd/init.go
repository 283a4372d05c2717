package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/etnz/books/bookdb"
	"github.com/etnz/books/memengine"
)

type initCmd struct {
	chartFile string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a new book from a chart of accounts" }
func (*initCmd) Usage() string {
	return `bks init -chart <chart.yaml>

  Creates the book database with the accounts, tax tables, customers,
  vendors and employees declared in the YAML chart file.

Usage Examples:
# Creates books.db from the given chart.
$ bks init -chart chart.yaml

`
}

func (p *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.chartFile, "chart", "", "YAML chart of accounts to seed the book with.")
}

func (p *initCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.chartFile == "" {
		fmt.Fprintln(os.Stderr, "Error: -chart is required.")
		return subcommands.ExitUsageError
	}
	if _, err := os.Stat(*bookFile); err == nil {
		fmt.Fprintf(os.Stderr, "Error: book %q already exists.\n", *bookFile)
		return subcommands.ExitFailure
	}

	data, err := os.ReadFile(p.chartFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading chart: %v\n", err)
		return subcommands.ExitFailure
	}

	e := memengine.New()
	book := e.NewBook()
	accounts, err := bookdb.SeedChart(e, book, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error seeding chart: %v\n", err)
		return subcommands.ExitFailure
	}

	db, err := bookdb.Open(*bookFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating book: %v\n", err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	if err := saveBook(db, e, book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving book: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Created book %s with %d accounts.\n", *bookFile, len(accounts))
	return subcommands.ExitSuccess
}
