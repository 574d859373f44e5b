package stockdash

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/etnz/stockdash/date"
	"github.com/shopspring/decimal"
)

// Strategy is one of the backtest algorithms offered by the backend.
type Strategy int

const (
	BollingerBands Strategy = iota
	MovingAverageCrossover
)

// Strategies lists every supported strategy, in menu order.
var Strategies = []Strategy{BollingerBands, MovingAverageCrossover}

// String returns the backend name of the strategy, which is also its endpoint.
func (s Strategy) String() string {
	switch s {
	case BollingerBands:
		return "bollinger"
	case MovingAverageCrossover:
		return "moving_average"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Title is the human readable name.
func (s Strategy) Title() string {
	switch s {
	case BollingerBands:
		return "Bollinger Bands"
	case MovingAverageCrossover:
		return "Moving Average Crossover"
	default:
		return s.String()
	}
}

// ParseStrategy accepts the backend name and a few short aliases.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "bollinger", "bb", "bollinger_bands":
		return BollingerBands, nil
	case "moving_average", "ma", "crossover", "moving_average_crossover":
		return MovingAverageCrossover, nil
	default:
		return 0, fmt.Errorf("unknown strategy %q, want one of bollinger, moving_average", name)
	}
}

// Backtest form field names. They are also the JSON keys sent to the backend.
const (
	FieldSymbol         = "symbol"
	FieldStartDate      = "start_date"
	FieldEndDate        = "end_date"
	FieldInitialCapital = "initial_capital"
	FieldWindow         = "window"
	FieldNumStd         = "num_std"
	FieldFastWindow     = "fast_window"
	FieldSlowWindow     = "slow_window"
)

var commonFields = []string{FieldSymbol, FieldStartDate, FieldEndDate, FieldInitialCapital}

// Fields returns the form fields relevant to s, in display order.
func (s Strategy) Fields() []string {
	switch s {
	case BollingerBands:
		return append(append([]string(nil), commonFields...), FieldWindow, FieldNumStd)
	case MovingAverageCrossover:
		return append(append([]string(nil), commonFields...), FieldFastWindow, FieldSlowWindow)
	default:
		return append([]string(nil), commonFields...)
	}
}

// Form holds the raw text of every backtest form field, as typed. It may hold
// fields of several strategies at once; BuildPayload picks the relevant ones.
type Form map[string]string

// DefaultForm returns a form pre-filled with the backend defaults.
func DefaultForm() Form {
	return Form{
		FieldInitialCapital: "100000",
		FieldWindow:         "20",
		FieldNumStd:         "2.0",
		FieldFastWindow:     "10",
		FieldSlowWindow:     "30",
	}
}

// Common are the parameters shared by every strategy.
type Common struct {
	Symbol         Symbol
	Start, End     date.Date
	InitialCapital decimal.Decimal
}

// BacktestRequest is a strategy specific backtest submission. It is a closed
// set: BollingerRequest or CrossoverRequest.
type BacktestRequest interface {
	Strategy() Strategy
	Params() Common
	json.Marshaler
	isBacktestRequest()
}

// BollingerRequest runs the Bollinger Bands strategy.
type BollingerRequest struct {
	Common
	Window int
	NumStd decimal.Decimal
}

func (BollingerRequest) Strategy() Strategy { return BollingerBands }
func (r BollingerRequest) Params() Common    { return r.Common }
func (BollingerRequest) isBacktestRequest() {}

// MarshalJSON emits only the Bollinger fields, numbers as JSON numbers.
func (r BollingerRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol         string      `json:"symbol"`
		StartDate      string      `json:"start_date"`
		EndDate        string      `json:"end_date"`
		Window         int         `json:"window"`
		NumStd         json.Number `json:"num_std"`
		InitialCapital json.Number `json:"initial_capital"`
	}{
		Symbol:         string(r.Symbol),
		StartDate:      r.Start.String(),
		EndDate:        r.End.String(),
		Window:         r.Window,
		NumStd:         json.Number(r.NumStd.String()),
		InitialCapital: json.Number(r.InitialCapital.String()),
	})
}

// CrossoverRequest runs the moving average crossover strategy.
type CrossoverRequest struct {
	Common
	FastWindow int
	SlowWindow int
}

func (CrossoverRequest) Strategy() Strategy { return MovingAverageCrossover }
func (r CrossoverRequest) Params() Common    { return r.Common }
func (CrossoverRequest) isBacktestRequest() {}

// MarshalJSON emits only the crossover fields, numbers as JSON numbers.
func (r CrossoverRequest) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Symbol         string      `json:"symbol"`
		StartDate      string      `json:"start_date"`
		EndDate        string      `json:"end_date"`
		FastWindow     int         `json:"fast_window"`
		SlowWindow     int         `json:"slow_window"`
		InitialCapital json.Number `json:"initial_capital"`
	}{
		Symbol:         string(r.Symbol),
		StartDate:      r.Start.String(),
		EndDate:        r.End.String(),
		FastWindow:     r.FastWindow,
		SlowWindow:     r.SlowWindow,
		InitialCapital: json.Number(r.InitialCapital.String()),
	})
}

// BuildPayload projects the fields relevant to s out of f and coerces them to
// their types. Fields of other strategies are ignored.
func BuildPayload(s Strategy, f Form) (BacktestRequest, error) {
	c, err := parseCommon(f)
	if err != nil {
		return nil, err
	}
	switch s {
	case BollingerBands:
		window, err := parseWindow(f, FieldWindow)
		if err != nil {
			return nil, err
		}
		numStd, err := parsePositive(f, FieldNumStd)
		if err != nil {
			return nil, err
		}
		return BollingerRequest{Common: c, Window: window, NumStd: numStd}, nil
	case MovingAverageCrossover:
		fast, err := parseWindow(f, FieldFastWindow)
		if err != nil {
			return nil, err
		}
		slow, err := parseWindow(f, FieldSlowWindow)
		if err != nil {
			return nil, err
		}
		return CrossoverRequest{Common: c, FastWindow: fast, SlowWindow: slow}, nil
	default:
		return nil, fmt.Errorf("unsupported strategy %v", s)
	}
}

func parseCommon(f Form) (Common, error) {
	var c Common
	sym := strings.TrimSpace(f[FieldSymbol])
	if sym == "" {
		return c, invalid(FieldSymbol, "a symbol is required")
	}
	c.Symbol = Symbol(strings.ToUpper(sym))

	var err error
	if c.Start, err = parseDate(f, FieldStartDate); err != nil {
		return c, err
	}
	if c.End, err = parseDate(f, FieldEndDate); err != nil {
		return c, err
	}
	if c.Start.After(c.End) {
		return c, invalid(FieldEndDate, "end date %s is before start date %s", c.End, c.Start)
	}
	if c.InitialCapital, err = parsePositive(f, FieldInitialCapital); err != nil {
		return c, err
	}
	return c, nil
}

func parseDate(f Form, field string) (date.Date, error) {
	d, err := date.Parse(f[field])
	if err != nil {
		return d, invalid(field, "%q is not a date, want YYYY-MM-DD", f[field])
	}
	if d.IsZero() {
		return d, invalid(field, "a date is required")
	}
	return d, nil
}

func parseWindow(f Form, field string) (int, error) {
	text := strings.TrimSpace(f[field])
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, invalid(field, "%q is not a whole number", text)
	}
	if n <= 0 {
		return 0, invalid(field, "must be positive, got %d", n)
	}
	return n, nil
}

func parsePositive(f Form, field string) (decimal.Decimal, error) {
	text := strings.TrimSpace(f[field])
	d, err := decimal.NewFromString(text)
	if err != nil {
		return d, invalid(field, "%q is not a number", text)
	}
	if !d.IsPositive() {
		return d, invalid(field, "must be positive, got %s", d)
	}
	return d, nil
}

// Metric is one named value of a backtest result, as sent by the backend.
// Numbers are kept as json.Number so they render exactly as received.
type Metric struct {
	Name  string
	Value any
}

// Record is an ordered set of metrics, e.g. one trade.
type Record []Metric

// Get returns the value named name.
func (r Record) Get(name string) (any, bool) {
	for _, m := range r {
		if m.Name == name {
			return m.Value, true
		}
	}
	return nil, false
}

// BacktestResult is the outcome of a successful run. Metrics and trades keep
// the order of the backend response; their keys are not known in advance.
type BacktestResult struct {
	Metrics Record
	Trades  []Record
}

// BacktestSubmitter runs a backtest on the backend.
type BacktestSubmitter interface {
	Backtest(ctx context.Context, r BacktestRequest) (BacktestResult, error)
}

// BacktestState is the state of a BacktestRunner.
type BacktestState int

const (
	Idle BacktestState = iota
	Pending
	Succeeded
	Failed
)

func (s BacktestState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Succeeded:
		return "success"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// BacktestRunner maps the backtest form to requests and tracks their outcome.
//
//	Idle -> Pending -> Succeeded | Failed -> Idle (strategy change or resubmit)
//
// A strategy change clears results and errors in any state, and supersedes the
// request in flight: its response is dropped when it arrives.
type BacktestRunner struct {
	strategy Strategy
	form     Form
	seq      Sequence
	state    BacktestState
	request  BacktestRequest
	result   BacktestResult
	message  string // failure or validation text
}

// NewBacktestRunner returns an idle runner on the first strategy, form
// pre-filled with defaults.
func NewBacktestRunner() *BacktestRunner {
	return &BacktestRunner{strategy: Strategies[0], form: DefaultForm()}
}

// Strategy returns the selected strategy.
func (r *BacktestRunner) Strategy() Strategy { return r.strategy }

// SelectStrategy switches strategy and goes back to Idle.
func (r *BacktestRunner) SelectStrategy(s Strategy) {
	r.strategy = s
	r.reset()
}

// Form returns the raw form.
func (r *BacktestRunner) Form() Form { return r.form }

// SetField sets the raw text of a form field.
func (r *BacktestRunner) SetField(name, value string) {
	if r.form == nil {
		r.form = Form{}
	}
	r.form[name] = value
}

// Begin builds the payload and moves to Pending. Validation errors leave the
// runner Idle, with the reason as Message, and nothing must be sent.
func (r *BacktestRunner) Begin() (Token, BacktestRequest, error) {
	r.reset()
	req, err := BuildPayload(r.strategy, r.form)
	if err != nil {
		r.message = UserMessage(err)
		return 0, nil, err
	}
	r.state = Pending
	r.request = req
	return r.seq.Next(), req, nil
}

// Complete reconciles the response to the request identified by t. It reports
// false, changing nothing, if t has been superseded.
func (r *BacktestRunner) Complete(t Token, result BacktestResult, err error) bool {
	if !r.seq.Current(t) || r.state != Pending {
		return false
	}
	if err != nil {
		r.state = Failed
		r.message = UserMessage(err)
		return true
	}
	r.state = Succeeded
	r.result = result
	return true
}

// Run submits the form and waits for the outcome.
func (r *BacktestRunner) Run(ctx context.Context, s BacktestSubmitter) error {
	t, req, err := r.Begin()
	if err != nil {
		return err
	}
	result, err := s.Backtest(ctx, req)
	r.Complete(t, result, err)
	return err
}

// State returns the current state.
func (r *BacktestRunner) State() BacktestState { return r.state }

// Request returns the last request sent, nil when Idle.
func (r *BacktestRunner) Request() BacktestRequest { return r.request }

// Result returns the results of a Succeeded run.
func (r *BacktestRunner) Result() (BacktestResult, bool) {
	return r.result, r.state == Succeeded
}

// Message returns the failure or validation text, if any.
func (r *BacktestRunner) Message() string { return r.message }

func (r *BacktestRunner) reset() {
	r.seq.Invalidate()
	r.state = Idle
	r.request = nil
	r.result = BacktestResult{}
	r.message = ""
}
