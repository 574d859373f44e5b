package stockdash

import (
	"context"
	"time"

	"github.com/etnz/stockdash/date"
	"github.com/shopspring/decimal"
)

// PricePoint is one close price of a series.
type PricePoint struct {
	Time  time.Time
	Close decimal.Decimal
}

// PriceSource returns the price series of a symbol over a range of days.
type PriceSource interface {
	Prices(ctx context.Context, s Symbol, r date.Range) ([]PricePoint, error)
}

// Chart is a series reshaped for plotting: Labels[i] is the label of Values[i].
type Chart struct {
	Labels []string
	Values []decimal.Decimal
}

// Len returns the number of points.
func (c Chart) Len() int { return len(c.Values) }

// Reshape maps points to an index aligned chart, keeping their order. Points
// are not sorted here; an unsorted series is charted as received.
func Reshape(points []PricePoint) Chart {
	c := Chart{
		Labels: make([]string, len(points)),
		Values: make([]decimal.Decimal, len(points)),
	}
	for i, p := range points {
		c.Labels[i] = Label(p.Time)
		c.Values[i] = p.Close
	}
	return c
}

// Label formats a point time: the day alone at midnight, day and minute otherwise.
func Label(t time.Time) string {
	if t.IsZero() {
		return Placeholder
	}
	if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 {
		return t.Format(date.DateFormat)
	}
	return t.Format("2006-01-02 15:04")
}

// SeriesQuery are the parameters of a series fetch.
type SeriesQuery struct {
	Symbol Symbol
	Range  date.Range
}

// Valid reports whether the query can be fetched: a symbol and an ordered range.
func (q SeriesQuery) Valid() bool { return q.Symbol != "" && q.Range.Valid() }

// SeriesViewer tracks the series of the selected symbol and range.
//
// Every parameter change supersedes the fetch in flight. The chart on display
// always belongs to the query returned by Shown.
type SeriesViewer struct {
	seq     Sequence
	query   SeriesQuery
	shown   SeriesQuery
	chart   Chart
	pending bool
	err     error
}

// Begin selects q. If q is valid a fetch must be issued with the returned
// token, otherwise ok is false and nothing must be fetched. In both cases any
// fetch in flight for the previous parameters is superseded.
func (v *SeriesViewer) Begin(q SeriesQuery) (t Token, ok bool) {
	v.query = q
	v.err = nil
	if !q.Valid() {
		v.seq.Invalidate()
		v.pending = false
		v.chart = Chart{}
		v.shown = SeriesQuery{}
		return 0, false
	}
	v.pending = true
	return v.seq.Next(), true
}

// Complete reconciles a series response. Responses for superseded parameters
// are dropped and Complete reports false.
func (v *SeriesViewer) Complete(t Token, points []PricePoint, err error) bool {
	if !v.seq.Current(t) {
		return false
	}
	v.pending = false
	v.err = err
	if err != nil {
		v.chart = Chart{}
		v.shown = SeriesQuery{}
		return true
	}
	v.chart = Reshape(points)
	v.shown = v.query
	return true
}

// Fetch selects q and, when valid, loads its series from src.
// It does nothing, and returns nil, for an invalid query.
func (v *SeriesViewer) Fetch(ctx context.Context, src PriceSource, q SeriesQuery) error {
	t, ok := v.Begin(q)
	if !ok {
		return nil
	}
	points, err := src.Prices(ctx, q.Symbol, q.Range)
	v.Complete(t, points, err)
	return err
}

// Query returns the selected parameters.
func (v *SeriesViewer) Query() SeriesQuery { return v.query }

// Shown returns the parameters of the chart on display.
func (v *SeriesViewer) Shown() SeriesQuery { return v.shown }

// Chart returns the chart on display.
func (v *SeriesViewer) Chart() Chart { return v.chart }

// Pending reports whether a fetch for the selected query is in flight.
func (v *SeriesViewer) Pending() bool { return v.pending }

// Err returns the error of the last fetch.
func (v *SeriesViewer) Err() error { return v.err }
