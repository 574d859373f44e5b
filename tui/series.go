package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/date"
	"github.com/etnz/stockdash/renderer"
)

// seriesRows is the number of most recent prices listed under the chart.
const seriesRows = 10

func (m *Model) updateSeries(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "down":
		m.series[m.seriesField].Blur()
		if msg.String() == "up" {
			m.seriesField = (m.seriesField + len(m.series) - 1) % len(m.series)
		} else {
			m.seriesField = (m.seriesField + 1) % len(m.series)
		}
		return m.series[m.seriesField].Focus()
	}
	var cmd tea.Cmd
	m.series[m.seriesField], cmd = m.series[m.seriesField].Update(msg)
	return tea.Batch(cmd, m.maybeFetchSeries())
}

// seriesQuery reads the query from the inputs. Unparsable dates are zero,
// which makes the query invalid.
func (m *Model) seriesQuery() stockdash.SeriesQuery {
	from, _ := date.Parse(m.series[1].Value())
	to, _ := date.Parse(m.series[2].Value())
	return stockdash.SeriesQuery{
		Symbol: stockdash.Symbol(strings.ToUpper(strings.TrimSpace(m.series[0].Value()))),
		Range:  date.Range{From: from, To: to},
	}
}

// maybeFetchSeries refetches when the parameters changed.
func (m *Model) maybeFetchSeries() tea.Cmd {
	q := m.seriesQuery()
	if q == m.viewer.Query() {
		return nil
	}
	t, ok := m.viewer.Begin(q)
	if !ok {
		return nil
	}
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		points, err := backend.Prices(ctx, q.Symbol, q.Range)
		return seriesMsg{token: t, points: points, err: err}
	}
}

func (m *Model) viewSeries() string {
	var b strings.Builder
	labels := []string{"Symbol:", "From:", "To:"}
	for i, in := range m.series {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-8s", labels[i])), in.View())
	}
	fmt.Fprintln(&b)

	if err := m.viewer.Err(); err != nil {
		fmt.Fprintln(&b, errorStyle.Render(stockdash.UserMessage(err)))
	}
	if m.viewer.Pending() {
		fmt.Fprintln(&b, dimStyle.Render("Loading..."))
	}
	chart := m.viewer.Chart()
	stats, ok := renderer.Stats(chart)
	if !ok {
		if m.viewer.Shown().Valid() {
			fmt.Fprintln(&b, dimStyle.Render("No prices in this range."))
		}
		return b.String()
	}

	shown := m.viewer.Shown()
	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("%s %s", shown.Symbol, shown.Range)))
	values := make([]float64, chart.Len())
	for i, v := range chart.Values {
		values[i] = v.InexactFloat64()
	}
	fmt.Fprintln(&b, trendStyle(stats.Change.PercentTrend()).Render(sparkline(values, max(m.width-2, 10))))
	fmt.Fprintf(&b, "%s %s  %s %s  %s %s\n",
		labelStyle.Render("low"), renderer.M(stats.Low, m.currency),
		labelStyle.Render("high"), renderer.M(stats.High, m.currency),
		labelStyle.Render("change"), trendStyle(stats.Change.PercentTrend()).Render(stats.Change.PercentString()),
	)
	fmt.Fprintln(&b)
	for i := max(chart.Len()-seriesRows, 0); i < chart.Len(); i++ {
		fmt.Fprintf(&b, "%-18s %12s\n", chart.Labels[i], renderer.M(chart.Values[i], m.currency))
	}
	return b.String()
}
