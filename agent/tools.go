package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/date"
	"github.com/etnz/stockdash/renderer"
	"google.golang.org/genai"
)

// Backend is what the analyst tools query, typically an *api.Client.
type Backend interface {
	stockdash.PositionSource
	stockdash.BacktestSubmitter
	stockdash.PriceSource
	stockdash.LogSource
}

// Func implements a simple Function
type Func struct {
	Decl *genai.FunctionDeclaration
	Func func(ctx context.Context, args map[string]any) (string, error)
}

func (f *Func) Declaration() *genai.FunctionDeclaration { return f.Decl }

func (f *Func) Call(ctx context.Context, id string, args map[string]any) *genai.FunctionResponse {
	out, err := f.Func(ctx, args)
	if err != nil {
		return errorResponse(id, f.Decl.Name, toolError(err))
	}
	return outputResponse(id, f.Decl.Name, out)
}

// toolError hides transport details from the chat, other errors read fine.
func toolError(err error) error {
	var te *stockdash.TransportError
	if errors.As(err, &te) {
		return errors.New(stockdash.NotReachableMessage)
	}
	return err
}

var (
	symbolSchema = &genai.Schema{Type: genai.TypeString, Description: "The stock ticker, e.g. AAPL."}
	dateSchema   = &genai.Schema{Type: genai.TypeString, Description: "A day in the YYYY-MM-DD format."}
	markdown     = &genai.Schema{Type: genai.TypeString, Description: "A markdown report."}
)

// Tools returns the functions querying backend.
func Tools(backend Backend, currency string) []Function {
	return []Function{
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "Portfolio",
				Description: "Portfolio lists the user's positions with their entry price, current value and profit or loss.",
				Response:    markdown,
			},
			Func: func(ctx context.Context, _ map[string]any) (string, error) {
				var p stockdash.Portfolio
				if err := p.Refresh(ctx, backend); err != nil {
					return "", err
				}
				return renderer.PortfolioMarkdown(p.Rows(), currency), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "BacktestHistory",
				Description: "BacktestHistory lists the backtests already run, newest first, with their main metrics.",
				Response:    markdown,
			},
			Func: func(ctx context.Context, _ map[string]any) (string, error) {
				logs, err := backend.BacktestLogs(ctx)
				if err != nil {
					return "", err
				}
				return renderer.LogsMarkdown(logs), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name:        "PriceSeries",
				Description: "PriceSeries returns the close prices of a symbol between two days, with low, high and change.",
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"symbol":     symbolSchema,
						"start_date": dateSchema,
						"end_date":   dateSchema,
					},
					Required: []string{"symbol", "start_date", "end_date"},
				},
				Response: markdown,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				q, err := seriesQuery(args)
				if err != nil {
					return "", err
				}
				var v stockdash.SeriesViewer
				if err := v.Fetch(ctx, backend, q); err != nil {
					return "", err
				}
				return renderer.SeriesMarkdown(q, v.Chart(), currency), nil
			},
		},
		&Func{
			Decl: &genai.FunctionDeclaration{
				Name: "RunBacktest",
				Description: `RunBacktest runs a trading strategy over past prices and returns its metrics and trades.
				Strategy "bollinger" uses window and num_std, strategy "moving_average" uses fast_window and slow_window.
				Omitted parameters use the defaults: initial_capital 100000, window 20, num_std 2, fast_window 10, slow_window 30.`,
				Parameters: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"strategy":        {Type: genai.TypeString, Enum: []string{"bollinger", "moving_average"}},
						"symbol":          symbolSchema,
						"start_date":      dateSchema,
						"end_date":        dateSchema,
						"initial_capital": {Type: genai.TypeNumber},
						"window":          {Type: genai.TypeInteger},
						"num_std":         {Type: genai.TypeNumber},
						"fast_window":     {Type: genai.TypeInteger},
						"slow_window":     {Type: genai.TypeInteger},
					},
					Required: []string{"strategy", "symbol", "start_date", "end_date"},
				},
				Response: markdown,
			},
			Func: func(ctx context.Context, args map[string]any) (string, error) {
				name, err := stringArg(args, "strategy")
				if err != nil {
					return "", err
				}
				s, err := stockdash.ParseStrategy(name)
				if err != nil {
					return "", err
				}
				r := stockdash.NewBacktestRunner()
				r.SelectStrategy(s)
				for _, field := range s.Fields() {
					if v, ok := args[field]; ok {
						r.SetField(field, renderer.FormatValue(v))
					}
				}
				if err := r.Run(ctx, backend); err != nil && stockdash.KindOf(err) == stockdash.ValidationFailure {
					return "", err
				}
				return renderer.BacktestMarkdown(r), nil
			},
		},
	}
}

func seriesQuery(args map[string]any) (stockdash.SeriesQuery, error) {
	var q stockdash.SeriesQuery
	symbol, err := stringArg(args, "symbol")
	if err != nil {
		return q, err
	}
	q.Symbol = stockdash.Symbol(strings.ToUpper(strings.TrimSpace(symbol)))
	if q.Range.From, err = dateArg(args, "start_date"); err != nil {
		return q, err
	}
	if q.Range.To, err = dateArg(args, "end_date"); err != nil {
		return q, err
	}
	if !q.Valid() {
		return q, fmt.Errorf("want a symbol and a start date before the end date, got %s %s", q.Symbol, q.Range)
	}
	return q, nil
}

func dateArg(args map[string]any, name string) (date.Date, error) {
	s, err := stringArg(args, name)
	if err != nil {
		return date.Date{}, err
	}
	return date.Parse(s)
}
