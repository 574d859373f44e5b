// Package tui is the terminal dashboard: portfolio, backtest and series views
// on one screen, switched with tab.
//
// All controller state is owned by the bubbletea update loop. Requests run as
// tea.Cmds; their messages carry the token issued when they were sent, and
// the controllers drop the ones that have been superseded.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/etnz/stockdash"
	"github.com/rs/zerolog"
)

// Backend is everything the dashboard talks to, typically an *api.Client.
type Backend interface {
	stockdash.CatalogSource
	stockdash.PositionSource
	stockdash.PositionCreator
	stockdash.BacktestSubmitter
	stockdash.PriceSource
}

type tab int

const (
	portfolioTab tab = iota
	backtestTab
	seriesTab
	tabCount
)

func (t tab) String() string {
	switch t {
	case portfolioTab:
		return "Portfolio"
	case backtestTab:
		return "Backtest"
	case seriesTab:
		return "Series"
	default:
		return fmt.Sprintf("tab(%d)", int(t))
	}
}

// Messages produced by the request commands.
type (
	catalogMsg struct {
		symbols []stockdash.Symbol
		err     error
	}
	portfolioMsg struct {
		token     stockdash.Token
		positions []stockdash.Position
		err       error
	}
	addedMsg struct {
		err error
	}
	backtestMsg struct {
		token  stockdash.Token
		result stockdash.BacktestResult
		err    error
	}
	seriesMsg struct {
		token  stockdash.Token
		points []stockdash.PricePoint
		err    error
	}
)

// Model is the dashboard. Create it with New and run it with tea.NewProgram.
type Model struct {
	ctx      context.Context
	backend  Backend
	log      zerolog.Logger
	currency string

	tab           tab
	viewport      viewport.Model
	ready         bool
	width, height int

	// Portfolio.
	search    textinput.Model
	entry     textinput.Model
	auto      stockdash.Autocomplete
	portfolio stockdash.Portfolio
	add       stockdash.AddPosition

	// Backtest.
	runner *stockdash.BacktestRunner
	fields map[string]textinput.Model
	field  int // index in runner.Strategy().Fields()

	// Series.
	series      [3]textinput.Model // symbol, start, end
	seriesField int
	viewer      stockdash.SeriesViewer
}

// New returns a dashboard on backend. Requests are bound to ctx.
func New(ctx context.Context, backend Backend, log zerolog.Logger, currency string) *Model {
	m := &Model{
		ctx:      ctx,
		backend:  backend,
		log:      log,
		currency: currency,
		search:   newInput("Search symbol", 12),
		entry:    newInput("Entry price", 12),
		runner:   stockdash.NewBacktestRunner(),
		fields:   make(map[string]textinput.Model),
	}
	m.search.Focus()

	for name, value := range m.runner.Form() {
		in := newInput(name, 16)
		in.SetValue(value)
		m.fields[name] = in
	}
	for _, name := range []string{stockdash.FieldSymbol, stockdash.FieldStartDate, stockdash.FieldEndDate} {
		if _, ok := m.fields[name]; !ok {
			m.fields[name] = newInput(name, 16)
		}
	}
	m.focusField(0)

	m.series[0] = newInput("Symbol", 12)
	m.series[1] = newInput("YYYY-MM-DD", 12)
	m.series[2] = newInput("YYYY-MM-DD", 12)
	m.series[0].Focus()
	return m
}

func newInput(placeholder string, width int) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.Width = width
	in.Prompt = ""
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

// Init loads the catalog and the portfolio.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.loadCatalog(), m.refreshPortfolio())
}

func (m *Model) loadCatalog() tea.Cmd {
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		symbols, err := backend.Symbols(ctx)
		return catalogMsg{symbols: symbols, err: err}
	}
}

func (m *Model) refreshPortfolio() tea.Cmd {
	t := m.portfolio.BeginRefresh()
	ctx, backend := m.ctx, m.backend
	return func() tea.Msg {
		positions, err := backend.Positions(ctx)
		return portfolioMsg{token: t, positions: positions, err: err}
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		h := max(m.height-2, 1) // header and footer
		if !m.ready {
			m.viewport = viewport.New(m.width, h)
			m.viewport.MouseWheelEnabled = true
			m.ready = true
		} else {
			m.viewport.Width, m.viewport.Height = m.width, h
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.tab = (m.tab + 1) % tabCount
		case "shift+tab":
			m.tab = (m.tab + tabCount - 1) % tabCount
		case "pgup", "pgdown":
			m.viewport, cmd = m.viewport.Update(msg)
		default:
			switch m.tab {
			case portfolioTab:
				cmd = m.updatePortfolio(msg)
			case backtestTab:
				cmd = m.updateBacktest(msg)
			case seriesTab:
				cmd = m.updateSeries(msg)
			}
		}

	case tea.MouseMsg:
		m.viewport, cmd = m.viewport.Update(msg)

	case catalogMsg:
		if msg.err != nil {
			m.log.Warn().Err(msg.err).Msg("cannot load the symbol catalog")
			m.auto.CatalogFailed(msg.err)
		} else {
			m.auto.SetCatalog(stockdash.Catalog(msg.symbols))
		}

	case portfolioMsg:
		if !m.portfolio.CompleteRefresh(msg.token, msg.positions, msg.err) {
			m.log.Debug().Uint64("token", uint64(msg.token)).Msg("stale portfolio response dropped")
		}

	case addedMsg:
		if m.add.Complete(msg.err) {
			m.entry.Reset()
			m.entry.Blur()
			m.auto.ClearSelection()
			m.search.Focus()
			cmd = m.refreshPortfolio()
		}

	case backtestMsg:
		if !m.runner.Complete(msg.token, msg.result, msg.err) {
			m.log.Debug().Uint64("token", uint64(msg.token)).Msg("stale backtest response dropped")
		}

	case seriesMsg:
		if !m.viewer.Complete(msg.token, msg.points, msg.err) {
			m.log.Debug().Uint64("token", uint64(msg.token)).Msg("stale series response dropped")
		}
	}

	if m.ready {
		m.viewport.SetContent(m.content())
	}
	return m, cmd
}

// content renders the body of the current tab.
func (m *Model) content() string {
	switch m.tab {
	case backtestTab:
		return m.viewBacktest()
	case seriesTab:
		return m.viewSeries()
	default:
		return m.viewPortfolio()
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var tabs []string
	for t := range tabCount {
		style := tabStyle
		if t == m.tab {
			style = activeTab
		}
		tabs = append(tabs, style.Render(t.String()))
	}
	header := headerStyle.Render(padOrTrunc(" stockdash ", 12)) + strings.Join(tabs, "")
	footer := footerStyle.Render(padOrTrunc(" "+m.help()+"  tab switch view  ctrl+c quit", m.width))
	return header + "\n" + m.viewport.View() + "\n" + footer
}

func (m *Model) help() string {
	switch m.tab {
	case backtestTab:
		return "up/dn field  ctrl+s strategy  enter run"
	case seriesTab:
		return "up/dn field"
	default:
		if m.add.IsOpen() {
			return "enter add  esc cancel"
		}
		return "up/dn select  enter pick  esc close list  ctrl+r refresh"
	}
}
