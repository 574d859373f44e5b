// Package cmd implements the sdash command line application: one subcommand
// per dashboard view, plus the interactive dashboard itself.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/api"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&symbolsCmd{}, "market")
	c.Register(&searchCmd{}, "market")
	c.Register(&seriesCmd{}, "market")

	c.Register(&portfolioCmd{}, "portfolio")
	c.Register(&addCmd{}, "portfolio")

	c.Register(&backtestCmd{}, "backtest")
	c.Register(&logsCmd{}, "backtest")
	c.Register(&AssistCmd{}, "backtest")

	c.Register(&dashCmd{}, "")
	c.Register(&topicCmd{}, "")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var (
	apiURL   = flag.String("api-url", "http://localhost:4000", "Base url of the stock dashboard backend")
	timeout  = flag.Duration("timeout", api.DefaultTimeout, "Timeout of each request to the backend")
	currency = flag.String("currency", "USD", "Currency of the prices, as an ISO 4217 code")
	cache    = flag.Bool("cache", false, "Cache market data responses on disk for the day")
	Verbose  = flag.Bool("v", false, "Log every request")
	logFile  = flag.String("log-file", "sdash.log", "File the dashboard logs to")
)

// Environment variables used as flag defaults.
var envFlags = map[string]string{
	"api-url":  "STOCKDASH_API_URL",
	"timeout":  "STOCKDASH_TIMEOUT",
	"currency": "STOCKDASH_CURRENCY",
	"cache":    "STOCKDASH_CACHE",
}

// LoadEnv reads the .env file of the working directory, if any, and sets the
// global flags from the STOCKDASH_* variables. It must be called before
// parsing the command line, which has the last word.
func LoadEnv(set *flag.FlagSet) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("error loading .env file: %w", err)
	}
	for name, key := range envFlags {
		v, ok := os.LookupEnv(key)
		if !ok || v == "" {
			continue
		}
		if err := set.Set(name, v); err != nil {
			return fmt.Errorf("invalid %s=%q: %w", key, v, err)
		}
	}
	return nil
}

// out is where commands print their report.
var out io.Writer = os.Stdout

// newLogger returns the console logger of the commands.
func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.WarnLevel
	if *Verbose {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()
}

// newClient returns the backend client configured by the global flags.
func newClient(log zerolog.Logger) (*api.Client, error) {
	opts := []api.Option{api.WithTimeout(*timeout), api.WithLogger(log)}
	if *cache {
		opts = append(opts, api.WithDailyCache(""))
	}
	return api.New(*apiURL, opts...)
}

// connect is newClient logging to stderr, reporting errors the way commands do.
func connect() (*api.Client, subcommands.ExitStatus) {
	client, err := newClient(newLogger(os.Stderr))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error configuring the backend client: %v\n", err)
		return nil, subcommands.ExitUsageError
	}
	return client, subcommands.ExitSuccess
}

// printMarkdown renders doc for the terminal, or prints it as is when out is
// not a terminal.
func printMarkdown(doc string) {
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		fmt.Fprint(out, doc)
		return
	}
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var rendered string
		if rendered, err = r.Render(doc); err == nil {
			fmt.Fprint(out, rendered)
			return
		}
	}
	fmt.Fprint(out, doc)
}

// failure reports err while doing what, and returns the matching exit status.
func failure(what string, err error) subcommands.ExitStatus {
	fmt.Fprintf(os.Stderr, "Error %s: %v\n", what, err)
	if stockdash.KindOf(err) == stockdash.ValidationFailure {
		return subcommands.ExitUsageError
	}
	return subcommands.ExitFailure
}
