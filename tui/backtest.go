package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/renderer"
)

// focusField moves the form focus to the i-th field of the current strategy.
func (m *Model) focusField(i int) tea.Cmd {
	names := m.runner.Strategy().Fields()
	m.field = min(max(i, 0), len(names)-1)
	var cmd tea.Cmd
	for j, name := range names {
		in := m.fields[name]
		if j == m.field {
			cmd = in.Focus()
		} else {
			in.Blur()
		}
		m.fields[name] = in
	}
	return cmd
}

func (m *Model) updateBacktest(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up":
		return m.focusField(m.field - 1)
	case "down":
		return m.focusField(m.field + 1)
	case "ctrl+s":
		next := stockdash.Strategies[(int(m.runner.Strategy())+1)%len(stockdash.Strategies)]
		m.runner.SelectStrategy(next)
		return m.focusField(0)
	case "enter":
		t, req, err := m.runner.Begin()
		if err != nil {
			m.log.Debug().Err(err).Msg("backtest not sent")
			return nil
		}
		ctx, backend := m.ctx, m.backend
		return func() tea.Msg {
			result, err := backend.Backtest(ctx, req)
			return backtestMsg{token: t, result: result, err: err}
		}
	}
	name := m.runner.Strategy().Fields()[m.field]
	in, cmd := m.fields[name].Update(msg)
	m.fields[name] = in
	m.runner.SetField(name, in.Value())
	return cmd
}

func (m *Model) viewBacktest() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", labelStyle.Render("Strategy:"), titleStyle.Render(m.runner.Strategy().Title()))
	for _, name := range m.runner.Strategy().Fields() {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render(fmt.Sprintf("%-16s", name)), m.fields[name].View())
	}
	fmt.Fprintln(&b)

	switch m.runner.State() {
	case stockdash.Idle:
		if msg := m.runner.Message(); msg != "" {
			fmt.Fprintln(&b, errorStyle.Render(msg))
		}
	case stockdash.Pending:
		fmt.Fprintln(&b, dimStyle.Render("Running..."))
	case stockdash.Failed:
		fmt.Fprintln(&b, errorStyle.Render(m.runner.Message()))
	case stockdash.Succeeded:
		result, _ := m.runner.Result()
		fmt.Fprintln(&b, titleStyle.Render("Results"))
		for _, metric := range result.Metrics {
			fmt.Fprintf(&b, "%-24s %s\n", metric.Name, renderer.FormatValue(metric.Value))
		}
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("Trades (%d)", len(result.Trades))))
		columns := renderer.TradeColumns(result.Trades)
		for _, trade := range result.Trades {
			var cells []string
			for _, c := range columns {
				if v, ok := trade.Get(c); ok {
					cells = append(cells, c+"="+renderer.FormatValue(v))
				}
			}
			fmt.Fprintln(&b, strings.Join(cells, "  "))
		}
	}
	return b.String()
}
