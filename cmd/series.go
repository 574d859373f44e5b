package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/date"
	"github.com/etnz/stockdash/renderer"
	"github.com/google/subcommands"
)

// seriesCmd holds the flags for the 'series' subcommand.
type seriesCmd struct {
	symbol string
	from   string
	to     string
}

func (*seriesCmd) Name() string     { return "series" }
func (*seriesCmd) Synopsis() string { return "display the close prices of a stock" }
func (*seriesCmd) Usage() string {
	return `sdash series -s <symbol> [-from <date>] [-to <date>]

  Displays the close prices of a stock between two days, with its low, high
  and change over the period.
`
}

func (c *seriesCmd) SetFlags(f *flag.FlagSet) {
	today := date.Today()
	f.StringVar(&c.symbol, "s", "", "Stock symbol, e.g. AAPL")
	f.StringVar(&c.from, "from", today.Add(-365).String(), "First day, YYYY-MM-DD")
	f.StringVar(&c.to, "to", today.String(), "Last day, YYYY-MM-DD")
}

func (c *seriesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	q, err := c.query()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		return subcommands.ExitUsageError
	}

	client, status := connect()
	if client == nil {
		return status
	}
	var viewer stockdash.SeriesViewer
	if err := viewer.Fetch(ctx, client, q); err != nil {
		return failure("fetching prices", err)
	}
	printMarkdown(renderer.SeriesMarkdown(q, viewer.Chart(), *currency))
	return subcommands.ExitSuccess
}

func (c *seriesCmd) query() (q stockdash.SeriesQuery, err error) {
	q.Symbol = stockdash.Symbol(strings.ToUpper(strings.TrimSpace(c.symbol)))
	if q.Symbol == "" {
		return q, fmt.Errorf("missing symbol, use -s")
	}
	if q.Range.From, err = date.Parse(c.from); err != nil {
		return q, err
	}
	if q.Range.To, err = date.Parse(c.to); err != nil {
		return q, err
	}
	if !q.Range.Valid() {
		return q, fmt.Errorf("invalid range %s, the start must not be after the end", q.Range)
	}
	return q, nil
}
