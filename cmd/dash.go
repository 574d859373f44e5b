package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/etnz/stockdash/tui"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
)

type dashCmd struct{}

func (*dashCmd) Name() string     { return "dash" }
func (*dashCmd) Synopsis() string { return "start the interactive dashboard" }
func (*dashCmd) Usage() string {
	return `sdash dash

  Starts the interactive dashboard: portfolio with symbol search, backtest
  runner and price series. Logs go to -log-file, since the terminal belongs to
  the dashboard.
`
}

func (c *dashCmd) SetFlags(f *flag.FlagSet) {}

func (c *dashCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	logs, err := os.OpenFile(*logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file %q: %v\n", *logFile, err)
		return subcommands.ExitFailure
	}
	defer logs.Close()

	level := zerolog.InfoLevel
	if *Verbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(logs).Level(level).With().Timestamp().Logger()

	client, err := newClient(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring the backend client: %v\n", err)
		return subcommands.ExitUsageError
	}

	log.Info().Str("api", client.BaseURL()).Msg("dashboard started")
	p := tea.NewProgram(tui.New(ctx, client, log, *currency),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running the dashboard: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
