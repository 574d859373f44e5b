package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/api"
	"github.com/etnz/stockdash/renderer"
	"github.com/google/subcommands"
)

type portfolioCmd struct{}

func (*portfolioCmd) Name() string     { return "portfolio" }
func (*portfolioCmd) Synopsis() string { return "display the positions and their profit or loss" }
func (*portfolioCmd) Usage() string {
	return `sdash portfolio

  Displays every position with its entry price, current value, profit or loss
  and trend, and the portfolio total.
`
}

func (c *portfolioCmd) SetFlags(f *flag.FlagSet) {}

func (c *portfolioCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, status := connect()
	if client == nil {
		return status
	}
	return showPortfolio(ctx, client)
}

func showPortfolio(ctx context.Context, client *api.Client) subcommands.ExitStatus {
	var p stockdash.Portfolio
	if err := p.Refresh(ctx, client); err != nil {
		return failure("loading portfolio", err)
	}
	printMarkdown(renderer.PortfolioMarkdown(p.Rows(), *currency))
	return subcommands.ExitSuccess
}

// addCmd holds the flags for the 'add' subcommand.
type addCmd struct {
	force bool
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "add a position to the portfolio" }
func (*addCmd) Usage() string {
	return `sdash add [-f] <symbol> <entry>

  Adds a position on symbol bought at the entry price, then displays the
  portfolio. The symbol must be known to the backend unless -f is set.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.force, "f", false, "Do not check the symbol against the catalog")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() != 2 {
		fmt.Fprintln(f.Output(), c.Usage())
		return subcommands.ExitUsageError
	}
	symbol := stockdash.Symbol(strings.ToUpper(strings.TrimSpace(f.Arg(0))))

	client, status := connect()
	if client == nil {
		return status
	}

	if !c.force {
		catalog, err := stockdash.LoadCatalog(ctx, client)
		if err != nil {
			return failure("loading symbols", err)
		}
		if !catalog.Contains(symbol) {
			fmt.Fprintf(os.Stderr, "Error: unknown symbol %q, see 'sdash search'\n", symbol)
			return subcommands.ExitUsageError
		}
	}

	var dialog stockdash.AddPosition
	dialog.Open(symbol)
	refresh, err := dialog.Submit(ctx, client, f.Arg(1))
	if err != nil {
		return failure("adding position", err)
	}
	fmt.Fprintf(os.Stderr, "Added %s at %s\n", symbol, strings.TrimSpace(f.Arg(1)))
	if !refresh {
		return subcommands.ExitSuccess
	}
	return showPortfolio(ctx, client)
}
