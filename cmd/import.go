package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
	"gopkg.in/yaml.v3"

	"github.com/etnz/books"
)

type importCmd struct {
	mappingFile string
	account     string
	description string
	date        string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a JSON statement as one balanced transaction" }
func (*importCmd) Usage() string {
	return `bks import -mapping <mapping.yaml> -account <name> [-d <date>] <statement.json>

  Reads a JSON statement and books every row as a split, following the
  JSONPath mapping file. The splits are balanced against the given account,
  producing a single transaction.

Usage Examples:
$ bks import -mapping bank.yaml -account Checking statement.json

`
}

func (p *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.mappingFile, "mapping", "", "YAML mapping with rows, amount, account and memo JSONPaths.")
	f.StringVar(&p.account, "account", "", "Account the imported splits balance against.")
	f.StringVar(&p.description, "desc", "imported statement", "Transaction description.")
	f.StringVar(&p.date, "d", "", "Posting date (YYYY-MM-DD). Defaults to today.")
}

func (p *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.mappingFile == "" || p.account == "" || f.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Error: -mapping, -account and one statement file are required.")
		return subcommands.ExitUsageError
	}
	day, month, year, err := parseDay(p.date)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitUsageError
	}

	mappingData, err := os.ReadFile(p.mappingFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading mapping: %v\n", err)
		return subcommands.ExitFailure
	}
	var mapping books.ImportMapping
	if err := yaml.Unmarshal(mappingData, &mapping); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing mapping: %v\n", err)
		return subcommands.ExitFailure
	}

	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading statement: %v\n", err)
		return subcommands.ExitFailure
	}

	db, e, book, err := openBook()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer db.Close()

	accounts, err := allAccounts(e, book)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	byName := make(map[string]books.AccountRef, len(accounts))
	for _, a := range accounts {
		byName[a.Name] = a.Ref
	}

	splits, err := books.ImportSplits(data, mapping, byName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing statement: %v\n", err)
		return subcommands.ExitFailure
	}
	if len(splits) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: statement has no rows, nothing imported.")
		return subcommands.ExitSuccess
	}

	target, err := findAccount(e, book, p.account)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	b := books.NewTransaction(book).
		Description(p.description).
		Date(day, month, year)
	balance := books.Zero()
	for _, s := range splits {
		b.Split(s.Account, s.Amount, s.Memo)
		balance, err = balance.Add(s.Amount)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error balancing statement: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	b.Split(target.Ref, balance.Neg(), "")

	ref, err := b.Build(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error recording import: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := saveBook(db, e, book); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving book: %v\n", err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Imported %d splits as transaction %s.\n", len(splits), ref)
	return subcommands.ExitSuccess
}
