package renderer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/etnz/stockdash"
	md "github.com/nao1215/markdown"
)

// BacktestView is the state BacktestMarkdown reads, typically a
// *stockdash.BacktestRunner.
type BacktestView interface {
	Strategy() stockdash.Strategy
	State() stockdash.BacktestState
	Request() stockdash.BacktestRequest
	Result() (stockdash.BacktestResult, bool)
	Message() string
}

// BacktestMarkdown renders the parameters and outcome of a backtest.
// Metrics and trades are rendered in the order the backend sent them.
func BacktestMarkdown(v BacktestView) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Backtest: " + v.Strategy().Title())
	if req := v.Request(); req != nil {
		doc.Table(md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Parameter", "Value"},
			Rows:      Parameters(req),
		})
	}

	switch v.State() {
	case stockdash.Idle:
		if msg := v.Message(); msg != "" {
			doc.PlainText(md.Bold("Invalid input:") + " " + msg)
		} else {
			doc.PlainText("Fill in the form and run the backtest.")
		}
	case stockdash.Pending:
		doc.PlainText(md.Italic("Running..."))
	case stockdash.Failed:
		doc.PlainText(md.Bold("Error:") + " " + v.Message())
	case stockdash.Succeeded:
		result, _ := v.Result()
		renderResult(doc, result)
	}
	return doc.String()
}

func renderResult(doc *md.Markdown, result stockdash.BacktestResult) {
	doc.H2("Results")
	if len(result.Metrics) == 0 {
		doc.PlainText("No metrics.")
	} else {
		table := md.TableSet{
			Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
			Header:    []string{"Metric", "Value"},
		}
		for _, m := range result.Metrics {
			table.Rows = append(table.Rows, []string{m.Name, FormatValue(m.Value)})
		}
		doc.Table(table)
	}

	doc.H2("Trades")
	if len(result.Trades) == 0 {
		doc.PlainText("No trades.")
		return
	}
	header := TradeColumns(result.Trades)
	table := md.TableSet{Header: append([]string{"#"}, header...)}
	for i, trade := range result.Trades {
		row := []string{strconv.Itoa(i + 1)}
		for _, name := range header {
			cell := ""
			if value, ok := trade.Get(name); ok {
				cell = FormatValue(value)
			}
			row = append(row, cell)
		}
		table.Rows = append(table.Rows, row)
	}
	doc.Table(table)
}

// TradeColumns returns the keys of all trades, in first seen order.
func TradeColumns(trades []stockdash.Record) []string {
	var columns []string
	seen := make(map[string]bool)
	for _, t := range trades {
		for _, m := range t {
			if !seen[m.Name] {
				seen[m.Name] = true
				columns = append(columns, m.Name)
			}
		}
	}
	return columns
}

// Parameters lists the fields sent by req as table rows.
func Parameters(req stockdash.BacktestRequest) [][]string {
	c := req.Params()
	rows := [][]string{
		{"Symbol", c.Symbol.String()},
		{"Start", c.Start.String()},
		{"End", c.End.String()},
		{"Initial Capital", c.InitialCapital.String()},
	}
	switch r := req.(type) {
	case stockdash.BollingerRequest:
		rows = append(rows,
			[]string{"Window", strconv.Itoa(r.Window)},
			[]string{"Std Deviations", r.NumStd.String()},
		)
	case stockdash.CrossoverRequest:
		rows = append(rows,
			[]string{"Fast Window", strconv.Itoa(r.FastWindow)},
			[]string{"Slow Window", strconv.Itoa(r.SlowWindow)},
		)
	}
	return rows
}

// FormatValue formats a value decoded from the backend. Numbers are printed
// as received.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return stockdash.Placeholder
	case json.Number:
		return x.String()
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}
