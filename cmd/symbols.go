package cmd

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/renderer"
	"github.com/google/subcommands"
)

type symbolsCmd struct{}

func (*symbolsCmd) Name() string     { return "symbols" }
func (*symbolsCmd) Synopsis() string { return "list the tradable symbols" }
func (*symbolsCmd) Usage() string {
	return `sdash symbols

  Lists the symbols known to the backend, one per line.
`
}

func (c *symbolsCmd) SetFlags(f *flag.FlagSet) {}

func (c *symbolsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, status := connect()
	if client == nil {
		return status
	}
	catalog, err := stockdash.LoadCatalog(ctx, client)
	if err != nil {
		return failure("loading symbols", err)
	}
	for _, s := range catalog {
		fmt.Fprintln(out, s)
	}
	return subcommands.ExitSuccess
}

type searchCmd struct{}

func (*searchCmd) Name() string     { return "search" }
func (*searchCmd) Synopsis() string { return "search symbols" }
func (*searchCmd) Usage() string {
	return `sdash search <text>

  Lists the symbols containing text, ignoring case, as the dashboard
  search box suggests them.
`
}

func (c *searchCmd) SetFlags(f *flag.FlagSet) {}

func (c *searchCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 1 {
		fmt.Fprintln(f.Output(), c.Usage())
		return subcommands.ExitUsageError
	}
	query := strings.TrimSpace(f.Arg(0))

	client, status := connect()
	if client == nil {
		return status
	}
	catalog, err := stockdash.LoadCatalog(ctx, client)
	if err != nil {
		return failure("loading symbols", err)
	}

	var auto stockdash.Autocomplete
	auto.SetCatalog(catalog)
	auto.SetQuery(query)
	printMarkdown(renderer.SuggestionsMarkdown(query, auto.Suggestions()))
	return subcommands.ExitSuccess
}
