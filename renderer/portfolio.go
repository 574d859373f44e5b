package renderer

import (
	"bytes"
	"strconv"

	"github.com/etnz/stockdash"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// PortfolioMarkdown renders the positions table, with a total row.
func PortfolioMarkdown(rows []stockdash.Row, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Portfolio")
	if len(rows) == 0 {
		doc.PlainText("No positions.")
		return doc.String()
	}

	table := md.TableSet{
		Alignment: []md.TableAlignment{
			md.AlignLeft,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignRight,
			md.AlignLeft,
		},
		Header: []string{"Symbol", "Entry", "Current Value", "P/L", "P/L %", "Trend"},
	}

	entry, current := M(decimal.Zero, currency), M(decimal.Zero, currency)
	for _, r := range rows {
		table.Rows = append(table.Rows, []string{
			r.Symbol.String(),
			M(r.Entry, currency).String(),
			M(r.CurrentValue, currency).String(),
			r.ProfitLossString(),
			r.PercentString(),
			trend(r.Valuation),
		})
		entry = entry.Add(M(r.Entry, currency))
		current = current.Add(M(r.CurrentValue, currency))
	}
	total := stockdash.Derive(stockdash.Position{Entry: entry.value, CurrentValue: current.value})
	table.Rows = append(table.Rows, []string{
		md.Bold("Total"),
		md.Bold(entry.String()),
		md.Bold(current.String()),
		md.Bold(M(total.ProfitLoss, currency).SignedString()),
		md.Bold(total.PercentString()),
		trend(total),
	})
	doc.Table(table)
	return doc.String()
}

// trend labels the percentage class when defined, the amount class otherwise.
func trend(v stockdash.Valuation) string {
	if v.PercentOK {
		return v.PercentTrend().String()
	}
	return v.Trend().String()
}

// SuggestionsMarkdown renders the autocomplete suggestions of query.
func SuggestionsMarkdown(query string, suggestions []stockdash.Symbol) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	if len(suggestions) == 0 {
		doc.PlainText(md.Italic("No symbol matches " + strconv.Quote(query) + "."))
		return doc.String()
	}
	items := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		items = append(items, s.String())
	}
	doc.OrderedList(items...)
	return doc.String()
}
