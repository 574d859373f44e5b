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

// backtestFlags are the backtest form fields, shared by 'backtest' and 'assist'.
type backtestFlags struct {
	fields map[string]*string
}

func (b *backtestFlags) SetFlags(f *flag.FlagSet) {
	defaults := stockdash.DefaultForm()
	today := date.Today()
	b.fields = map[string]*string{
		stockdash.FieldSymbol:         f.String("s", "", "Stock symbol, e.g. AAPL"),
		stockdash.FieldStartDate:      f.String("from", today.Add(-365).String(), "First day, YYYY-MM-DD"),
		stockdash.FieldEndDate:        f.String("to", today.String(), "Last day, YYYY-MM-DD"),
		stockdash.FieldInitialCapital: f.String("capital", defaults[stockdash.FieldInitialCapital], "Initial capital"),
		stockdash.FieldWindow:         f.String("window", defaults[stockdash.FieldWindow], "Bollinger Bands moving average window, in days"),
		stockdash.FieldNumStd:         f.String("std", defaults[stockdash.FieldNumStd], "Bollinger Bands width, in standard deviations"),
		stockdash.FieldFastWindow:     f.String("fast", defaults[stockdash.FieldFastWindow], "Fast moving average window, in days"),
		stockdash.FieldSlowWindow:     f.String("slow", defaults[stockdash.FieldSlowWindow], "Slow moving average window, in days"),
	}
}

// runner returns a runner for strategy name with the form filled from the flags.
func (b *backtestFlags) runner(name string) (*stockdash.BacktestRunner, error) {
	s, err := stockdash.ParseStrategy(name)
	if err != nil {
		return nil, err
	}
	r := stockdash.NewBacktestRunner()
	r.SelectStrategy(s)
	for field, v := range b.fields {
		value := *v
		if field == stockdash.FieldSymbol {
			value = strings.ToUpper(value)
		}
		r.SetField(field, value)
	}
	return r, nil
}

// backtestCmd holds the flags for the 'backtest' subcommand.
type backtestCmd struct {
	backtestFlags
}

func (*backtestCmd) Name() string     { return "backtest" }
func (*backtestCmd) Synopsis() string { return "backtest a trading strategy on a stock" }
func (*backtestCmd) Usage() string {
	return `sdash backtest -s <symbol> [-from <date>] [-to <date>] [flags] bollinger|ma

  Runs a trading strategy over the past prices of a stock and displays its
  metrics and trades. The strategy is either Bollinger Bands (bollinger, the
  default) using -window and -std, or a moving average crossover (ma) using
  -fast and -slow.
`
}

func (c *backtestCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() > 1 {
		fmt.Fprintln(f.Output(), c.Usage())
		return subcommands.ExitUsageError
	}
	name := stockdash.BollingerBands.String()
	if f.NArg() == 1 {
		name = f.Arg(0)
	}
	r, err := c.runner(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing strategy: %v\n", err)
		return subcommands.ExitUsageError
	}

	client, status := connect()
	if client == nil {
		return status
	}
	if err := r.Run(ctx, client); err != nil {
		return failure("running backtest", err)
	}
	printMarkdown(renderer.BacktestMarkdown(r))
	return subcommands.ExitSuccess
}

type logsCmd struct{}

func (*logsCmd) Name() string     { return "logs" }
func (*logsCmd) Synopsis() string { return "display the backtest history" }
func (*logsCmd) Usage() string {
	return `sdash logs

  Displays the backtests already run, newest first.
`
}

func (c *logsCmd) SetFlags(f *flag.FlagSet) {}

func (c *logsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	client, status := connect()
	if client == nil {
		return status
	}
	logs, err := client.BacktestLogs(ctx)
	if err != nil {
		return failure("loading backtest history", err)
	}
	printMarkdown(renderer.LogsMarkdown(logs))
	return subcommands.ExitSuccess
}
