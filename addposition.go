package stockdash

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// NewPosition is the body of a create request.
type NewPosition struct {
	Symbol Symbol
	Entry  decimal.Decimal
}

// PositionCreator adds a position to the portfolio.
type PositionCreator interface {
	AddPosition(ctx context.Context, p NewPosition) error
}

// ErrDialogClosed is returned when submitting while no symbol is being added.
var ErrDialogClosed = errors.New("add position dialog is closed")

// ParseEntry parses an entry price as typed by the user: a finite number, zero
// or positive.
func ParseEntry(text string) (decimal.Decimal, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return decimal.Decimal{}, invalid("entry", "Please enter the entry price.")
	}
	d, err := decimal.NewFromString(text)
	if err != nil {
		return decimal.Decimal{}, invalid("entry", "%q is not a number.", text)
	}
	if d.IsNegative() {
		return decimal.Decimal{}, invalid("entry", "The entry price cannot be negative.")
	}
	return d, nil
}

// AddPosition is the dialog flow adding one symbol to the portfolio.
//
// At most one create request is in flight: a second Begin before Complete
// returns ErrInFlight and sends nothing.
type AddPosition struct {
	symbol  Symbol
	open    bool
	pending bool
	message string
}

// Open shows the dialog for s, forgetting any previous message.
func (w *AddPosition) Open(s Symbol) {
	w.symbol = s
	w.open = true
	w.message = ""
}

// Close hides the dialog. An in-flight request still completes.
func (w *AddPosition) Close() {
	w.open = false
	w.message = ""
}

// Begin validates entryText and, if valid, marks the dialog pending and
// returns the request to send.
func (w *AddPosition) Begin(entryText string) (NewPosition, error) {
	switch {
	case w.pending:
		return NewPosition{}, ErrInFlight
	case !w.open:
		return NewPosition{}, ErrDialogClosed
	case w.symbol == "":
		err := invalid("symbol", "Please select a symbol.")
		w.message = err.Reason
		return NewPosition{}, err
	}
	entry, err := ParseEntry(entryText)
	if err != nil {
		w.message = UserMessage(err)
		return NewPosition{}, err
	}
	w.pending = true
	w.message = ""
	return NewPosition{Symbol: w.symbol, Entry: entry}, nil
}

// Complete reconciles the outcome of the create request. On success the dialog
// closes and refresh is true: the caller must refetch the portfolio. On failure
// the dialog stays open, with its symbol, showing the error.
func (w *AddPosition) Complete(err error) (refresh bool) {
	w.pending = false
	if err != nil {
		w.message = UserMessage(err)
		return false
	}
	w.open = false
	w.message = ""
	return true
}

// Submit runs Begin, the create request, and Complete.
func (w *AddPosition) Submit(ctx context.Context, c PositionCreator, entryText string) (refresh bool, err error) {
	p, err := w.Begin(entryText)
	if err != nil {
		return false, err
	}
	err = c.AddPosition(ctx, p)
	return w.Complete(err), err
}

// Symbol returns the symbol being added.
func (w *AddPosition) Symbol() Symbol { return w.symbol }

// IsOpen reports whether the dialog is shown.
func (w *AddPosition) IsOpen() bool { return w.open }

// Pending reports whether a create request is in flight.
func (w *AddPosition) Pending() bool { return w.pending }

// Message returns the validation or error text to display, if any.
func (w *AddPosition) Message() string { return w.message }
