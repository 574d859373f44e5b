package renderer

import (
	"bytes"
	"fmt"

	"github.com/etnz/stockdash"
	md "github.com/nao1215/markdown"
	"github.com/shopspring/decimal"
)

// SeriesStats summarizes a chart.
type SeriesStats struct {
	First, Last, Low, High decimal.Decimal
	Change                 stockdash.Valuation // from First to Last
}

// Stats computes the summary of c. ok is false for an empty chart.
func Stats(c stockdash.Chart) (s SeriesStats, ok bool) {
	if c.Len() == 0 {
		return s, false
	}
	s.First, s.Last = c.Values[0], c.Values[c.Len()-1]
	s.Low, s.High = s.First, s.First
	for _, v := range c.Values {
		s.Low = decimal.Min(s.Low, v)
		s.High = decimal.Max(s.High, v)
	}
	s.Change = stockdash.Derive(stockdash.Position{Entry: s.First, CurrentValue: s.Last})
	return s, true
}

// SeriesMarkdown renders the close prices of q.
func SeriesMarkdown(q stockdash.SeriesQuery, c stockdash.Chart, currency string) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1(fmt.Sprintf("%s from %s to %s", q.Symbol, q.Range.From, q.Range.To))
	stats, ok := Stats(c)
	if !ok {
		doc.PlainText("No prices in this range.")
		return doc.String()
	}
	doc.Table(md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Points", fmt.Sprint(c.Len())},
		Rows: [][]string{
			{"First", M(stats.First, currency).String()},
			{"Last", M(stats.Last, currency).String()},
			{"Low", M(stats.Low, currency).String()},
			{"High", M(stats.High, currency).String()},
			{"Change", stats.Change.PercentString()},
		},
	})

	doc.H2("Close Prices")
	table := md.TableSet{
		Alignment: []md.TableAlignment{md.AlignLeft, md.AlignRight},
		Header:    []string{"Time", "Close"},
	}
	for i := range c.Len() {
		table.Rows = append(table.Rows, []string{c.Labels[i], M(c.Values[i], currency).String()})
	}
	doc.Table(table)
	return doc.String()
}
