package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/agent"
	"github.com/etnz/stockdash/renderer"
	"github.com/google/subcommands"
	"google.golang.org/genai"
)

// AssistCmd is the subcommand for the AI analyst.
type AssistCmd struct {
	backtestFlags
	strategy string
}

// Name returns the name of the command.
func (*AssistCmd) Name() string { return "assist" }

// Synopsis returns a short-one line synopsis of the command.
func (*AssistCmd) Synopsis() string { return "discuss a backtest or the portfolio with the AI analyst" }

// Usage returns a long-form usage string.
func (*AssistCmd) Usage() string {
	return `sdash assist [-s <symbol> [backtest flags]] [question...]

  Starts an interactive session with the AI analyst. With -s, a backtest is
  run first, using the same flags as 'sdash backtest', and the analyst
  comments it. Gemini credentials are read from the environment, e.g.
  GOOGLE_API_KEY.
`
}

// SetFlags sets the flags for the command.
func (c *AssistCmd) SetFlags(f *flag.FlagSet) {
	c.backtestFlags.SetFlags(f)
	f.StringVar(&c.strategy, "strategy", "bollinger", "Strategy to backtest: bollinger or ma")
}

// Execute executes the command.
func (c *AssistCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	client, status := connect()
	if client == nil {
		return status
	}

	var prompts []string
	if *c.fields[stockdash.FieldSymbol] != "" {
		r, err := c.runner(c.strategy)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing strategy: %v\n", err)
			return subcommands.ExitUsageError
		}
		if err := r.Run(ctx, client); err != nil {
			return failure("running backtest", err)
		}
		printMarkdown(renderer.BacktestMarkdown(r))
		prompts = append(prompts, agent.BacktestBrief(r))
	}
	if f.NArg() > 0 {
		prompts = append(prompts, strings.Join(f.Args(), " "))
	}

	gemini, err := genai.NewClient(ctx, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error initializing Gemini's client:", err)
		return subcommands.ExitFailure
	}

	a := agent.New(os.Stdout, os.Stdin, agent.NewAnalyst(client, *currency), agent.NewTrader())
	a.Print = func(_ io.Writer, answer string) { printMarkdown(answer) }
	if err := a.Run(ctx, gemini, prompts...); err != nil {
		fmt.Fprintln(os.Stderr, "Agent failed:", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
