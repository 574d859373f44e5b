package stockdash

import (
	"context"

	"github.com/shopspring/decimal"
)

// Placeholder is rendered in place of a value that cannot be computed.
const Placeholder = "n/a"

var hundred = decimal.NewFromInt(100)

// Position is one portfolio entry as returned by the backend.
// Profit and loss are not part of it, see Derive.
type Position struct {
	ID           string
	Symbol       Symbol
	Entry        decimal.Decimal
	CurrentValue decimal.Decimal
}

// Trend is the visual class of a signed amount.
type Trend int

const (
	Gain Trend = iota // zero counts as a gain
	Loss
)

func (t Trend) String() string {
	if t == Loss {
		return "loss"
	}
	return "gain"
}

// TrendOf returns the class of d from its numeric sign.
func TrendOf(d decimal.Decimal) Trend {
	if d.IsNegative() {
		return Loss
	}
	return Gain
}

// Valuation holds the fields derived from a Position.
type Valuation struct {
	ProfitLoss decimal.Decimal
	Percent    decimal.Decimal // meaningful only if PercentOK
	PercentOK  bool            // false when the entry price is zero
}

// Derive computes profit/loss and its percentage of the entry price.
func Derive(p Position) Valuation {
	pl := p.CurrentValue.Sub(p.Entry)
	v := Valuation{ProfitLoss: pl}
	if !p.Entry.IsZero() {
		v.Percent = pl.Div(p.Entry).Mul(hundred)
		v.PercentOK = true
	}
	return v
}

// Trend returns the class of the profit/loss amount.
func (v Valuation) Trend() Trend { return TrendOf(v.ProfitLoss) }

// PercentTrend returns the class of the percentage, Gain when undefined.
func (v Valuation) PercentTrend() Trend {
	if !v.PercentOK {
		return Gain
	}
	return TrendOf(v.Percent)
}

// ProfitLossString formats the amount with two decimals.
func (v Valuation) ProfitLossString() string { return v.ProfitLoss.StringFixed(2) }

// PercentString formats the percentage with two decimals, or Placeholder.
func (v Valuation) PercentString() string {
	if !v.PercentOK {
		return Placeholder
	}
	return v.Percent.StringFixed(2) + "%"
}

// Row is a position together with its valuation, computed on demand.
type Row struct {
	Position
	Valuation
}

// PositionSource lists the current portfolio.
type PositionSource interface {
	Positions(ctx context.Context) ([]Position, error)
}

// Portfolio is the view-model of the current portfolio table.
//
// The list is only ever replaced as a whole by a successful refresh. A failed
// refresh keeps the previous list and records the error.
type Portfolio struct {
	seq       Sequence
	positions []Position
	loaded    bool
	loading   bool
	err       error
}

// BeginRefresh marks the portfolio as loading and returns the token the
// response must carry. Any earlier refresh still in flight is superseded.
func (p *Portfolio) BeginRefresh() Token {
	p.loading = true
	return p.seq.Next()
}

// CompleteRefresh reconciles the response of the refresh identified by t.
// It reports false, changing nothing, if t has been superseded.
func (p *Portfolio) CompleteRefresh(t Token, positions []Position, err error) bool {
	if !p.seq.Current(t) {
		return false
	}
	p.loading = false
	p.err = err
	if err == nil {
		p.positions = append([]Position(nil), positions...)
		p.loaded = true
	}
	return true
}

// Refresh fetches the positions from src and replaces the list.
func (p *Portfolio) Refresh(ctx context.Context, src PositionSource) error {
	t := p.BeginRefresh()
	positions, err := src.Positions(ctx)
	p.CompleteRefresh(t, positions, err)
	return err
}

// Positions returns a copy of the current list.
func (p *Portfolio) Positions() []Position { return append([]Position(nil), p.positions...) }

// Rows derives the valuation of every position, now.
func (p *Portfolio) Rows() []Row {
	rows := make([]Row, 0, len(p.positions))
	for _, pos := range p.positions {
		rows = append(rows, Row{Position: pos, Valuation: Derive(pos)})
	}
	return rows
}

// Loaded reports whether at least one refresh succeeded.
func (p *Portfolio) Loaded() bool { return p.loaded }

// Loading reports whether a refresh is in flight.
func (p *Portfolio) Loading() bool { return p.loading }

// Err returns the error of the last completed refresh.
func (p *Portfolio) Err() error { return p.err }
