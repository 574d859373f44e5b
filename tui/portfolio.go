package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/renderer"
)

func (m *Model) updatePortfolio(msg tea.KeyMsg) tea.Cmd {
	if m.add.IsOpen() {
		return m.updateDialog(msg)
	}
	switch msg.String() {
	case "up":
		m.auto.MoveHighlight(-1)
		return nil
	case "down":
		m.auto.MoveHighlight(1)
		return nil
	case "esc":
		m.auto.Blur()
		return nil
	case "ctrl+r":
		return m.refreshPortfolio()
	case "enter":
		if !m.auto.PressHighlighted() {
			return nil
		}
		s, _ := m.auto.Selected()
		m.add.Open(s)
		m.search.Blur()
		m.entry.Reset()
		return m.entry.Focus()
	}
	var cmd tea.Cmd
	before := m.search.Value()
	m.search, cmd = m.search.Update(msg)
	if m.search.Value() != before {
		m.auto.SetQuery(m.search.Value())
	} else {
		m.auto.Focus()
	}
	return cmd
}

func (m *Model) updateDialog(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		m.add.Close()
		m.auto.ClearSelection()
		m.entry.Blur()
		return m.search.Focus()
	case "enter":
		p, err := m.add.Begin(m.entry.Value())
		if err != nil {
			m.log.Debug().Err(err).Msg("add position not sent")
			return nil
		}
		ctx, backend := m.ctx, m.backend
		return func() tea.Msg {
			return addedMsg{err: backend.AddPosition(ctx, p)}
		}
	}
	var cmd tea.Cmd
	m.entry, cmd = m.entry.Update(msg)
	return cmd
}

func (m *Model) viewPortfolio() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Symbol:"), m.search.View())

	if err := m.auto.CatalogErr(); err != nil {
		fmt.Fprintln(&b, errorStyle.Render(stockdash.UserMessage(err)))
	}
	hl, _ := m.auto.Highlighted()
	for _, s := range m.auto.Suggestions() {
		if s == hl {
			fmt.Fprintf(&b, "  %s\n", hlStyle.Render(s.String()))
		} else {
			fmt.Fprintf(&b, "  %s\n", s)
		}
	}

	if m.add.IsOpen() {
		var d strings.Builder
		fmt.Fprintf(&d, "%s\n", titleStyle.Render("Add "+m.add.Symbol().String()))
		fmt.Fprintf(&d, "%s %s", labelStyle.Render("Entry:"), m.entry.View())
		if m.add.Pending() {
			fmt.Fprintf(&d, "\n%s", dimStyle.Render("Adding..."))
		}
		if msg := m.add.Message(); msg != "" {
			fmt.Fprintf(&d, "\n%s", errorStyle.Render(msg))
		}
		fmt.Fprintln(&b, dialogStyle.Render(d.String()))
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, titleStyle.Render("Portfolio"))
	if err := m.portfolio.Err(); err != nil {
		fmt.Fprintln(&b, errorStyle.Render(stockdash.UserMessage(err)))
	}
	if !m.portfolio.Loaded() {
		if m.portfolio.Loading() {
			fmt.Fprintln(&b, dimStyle.Render("Loading..."))
		}
		return b.String()
	}
	rows := m.portfolio.Rows()
	if len(rows) == 0 {
		fmt.Fprintln(&b, dimStyle.Render("No positions."))
		return b.String()
	}
	fmt.Fprintln(&b, labelStyle.Render(fmt.Sprintf("%-8s %14s %14s %12s %10s", "Symbol", "Entry", "Current", "P/L", "P/L %")))
	for _, r := range rows {
		fmt.Fprintf(&b, "%-8s %14s %14s %s %s\n",
			r.Symbol,
			renderer.M(r.Entry, m.currency),
			renderer.M(r.CurrentValue, m.currency),
			trendStyle(r.Trend()).Render(fmt.Sprintf("%12s", r.ProfitLossString())),
			trendStyle(r.PercentTrend()).Render(fmt.Sprintf("%10s", r.PercentString())),
		)
	}
	return b.String()
}
