package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"

	"github.com/etnz/books/cmd"
)

func main() {
	// Shell completion: a no-op unless invoked by the completion machinery.
	completion := &complete.Command{
		Flags: map[string]complete.Predictor{
			"book-file": predict.Files("*.db"),
		},
		Sub: map[string]*complete.Command{
			"init":        {Flags: map[string]complete.Predictor{"chart": predict.Files("*.yaml")}},
			"accounts":    {},
			"add-account": {},
			"tx":          {},
			"transfer":    {},
			"invoice":     {},
			"find":        {},
			"ledger":      {},
			"import":      {Flags: map[string]complete.Predictor{"mapping": predict.Files("*.yaml")}},
			"topic":       {},
		},
	}
	completion.Complete("bks")

	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "help")
	commander.Register(commander.FlagsCommand(), "help")
	commander.Register(commander.CommandsCommand(), "help")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
