package stockdash

import (
	"context"
	"errors"
	"testing"

	"github.com/etnz/stockdash/date"
	"github.com/shopspring/decimal"
)

// dec parses a decimal or fails the test.
func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("invalid decimal %q: %v", s, err)
	}
	return d
}

var errOffline = &TransportError{Op: "GET /api/test", Err: errors.New("connection refused")}

type fakePositions struct {
	positions []Position
	err       error
	calls     int
}

func (f *fakePositions) Positions(context.Context) ([]Position, error) {
	f.calls++
	return f.positions, f.err
}

type fakeCreator struct {
	got []NewPosition
	err error
}

func (f *fakeCreator) AddPosition(_ context.Context, p NewPosition) error {
	f.got = append(f.got, p)
	return f.err
}

type fakeSubmitter struct {
	got    []BacktestRequest
	result BacktestResult
	err    error
}

func (f *fakeSubmitter) Backtest(_ context.Context, r BacktestRequest) (BacktestResult, error) {
	f.got = append(f.got, r)
	return f.result, f.err
}

type fakePrices struct {
	points map[Symbol][]PricePoint
	calls  []SeriesQuery
}

func (f *fakePrices) Prices(_ context.Context, s Symbol, r date.Range) ([]PricePoint, error) {
	f.calls = append(f.calls, SeriesQuery{Symbol: s, Range: r})
	return f.points[s], nil
}
