package renderer

import (
	"bytes"
	"strconv"

	"github.com/etnz/stockdash"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

func percent(d decimal.Decimal) string { return d.StringFixed(2) + "%" }

// LogsMarkdown renders the backtest history, in the given order.
func LogsMarkdown(logs []stockdash.BacktestLog) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Backtest History")
	if len(logs) == 0 {
		doc.PlainText("No backtest has been run yet.")
		return doc.String()
	}
	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
		},
		Header: []string{"ID", "Date", "Total Return", "Annual Return", "Trades", "Win Rate", "Sharpe", "Profit Factor"},
	}
	for _, l := range logs {
		created := stockdash.Placeholder
		if !l.CreatedAt.IsZero() {
			created = l.CreatedAt.Format("2006-01-02 15:04")
		}
		table.Rows = append(table.Rows, []string{
			l.ID,
			created,
			percent(l.TotalReturn),
			percent(l.AnnualReturn),
			strconv.Itoa(l.NumberOfTrades),
			percent(l.WinRate),
			l.SharpeRatio.StringFixed(3),
			l.ProfitFactor.StringFixed(2),
		})
	}
	doc.Table(table)
	return doc.String()
}
