package stockdash

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/etnz/stockdash/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledForm() Form {
	f := DefaultForm()
	f[FieldSymbol] = "aapl"
	f[FieldStartDate] = "2023-01-01"
	f[FieldEndDate] = "2023-12-31"
	return f
}

// keys returns the top level keys of a JSON object.
func keys(t *testing.T, data []byte) map[string]json.RawMessage {
	t.Helper()
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestParseStrategy(t *testing.T) {
	for name, want := range map[string]Strategy{
		"bollinger":      BollingerBands,
		"BB":             BollingerBands,
		"moving_average": MovingAverageCrossover,
		" ma ":           MovingAverageCrossover,
		"crossover":      MovingAverageCrossover,
	} {
		got, err := ParseStrategy(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}
	_, err := ParseStrategy("rsi")
	assert.Error(t, err)
}

func TestBuildPayload_Bollinger(t *testing.T) {
	req, err := BuildPayload(BollingerBands, filledForm())
	require.NoError(t, err)

	b, ok := req.(BollingerRequest)
	require.True(t, ok)
	assert.Equal(t, Symbol("AAPL"), b.Symbol)
	assert.Equal(t, date.New(2023, 1, 1), b.Start)
	assert.Equal(t, 20, b.Window)

	data, err := json.Marshal(req)
	require.NoError(t, err)
	got := keys(t, data)
	assert.Len(t, got, 6)
	for _, k := range []string{FieldSymbol, FieldStartDate, FieldEndDate, FieldWindow, FieldNumStd, FieldInitialCapital} {
		assert.Contains(t, got, k)
	}
	assert.NotContains(t, got, FieldFastWindow)
	assert.NotContains(t, got, FieldSlowWindow)
	assert.JSONEq(t, `{"symbol":"AAPL","start_date":"2023-01-01","end_date":"2023-12-31","window":20,"num_std":2,"initial_capital":100000}`, string(data))
}

func TestBuildPayload_Crossover(t *testing.T) {
	req, err := BuildPayload(MovingAverageCrossover, filledForm())
	require.NoError(t, err)
	assert.Equal(t, MovingAverageCrossover, req.Strategy())

	data, err := json.Marshal(req)
	require.NoError(t, err)
	got := keys(t, data)
	assert.NotContains(t, got, FieldWindow)
	assert.NotContains(t, got, FieldNumStd)
	assert.JSONEq(t, `{"symbol":"AAPL","start_date":"2023-01-01","end_date":"2023-12-31","fast_window":10,"slow_window":30,"initial_capital":100000}`, string(data))
}

func TestBuildPayload_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"missing symbol", FieldSymbol, " "},
		{"missing start", FieldStartDate, ""},
		{"bad end", FieldEndDate, "31/12/2023"},
		{"reversed range", FieldEndDate, "2022-01-01"},
		{"zero capital", FieldInitialCapital, "0"},
		{"text window", FieldWindow, "twenty"},
		{"negative std", FieldNumStd, "-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := filledForm()
			f[tt.field] = tt.value
			_, err := BuildPayload(BollingerBands, f)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestBuildPayload_IgnoresOtherStrategyFields(t *testing.T) {
	f := filledForm()
	f[FieldFastWindow] = "not a number"
	_, err := BuildPayload(BollingerBands, f)
	assert.NoError(t, err)
}

func TestBacktestRunner_Run(t *testing.T) {
	result := BacktestResult{Metrics: Record{{Name: "total_return", Value: json.Number("12.5")}}}
	s := &fakeSubmitter{result: result}
	r := NewBacktestRunner()
	for k, v := range filledForm() {
		r.SetField(k, v)
	}

	require.NoError(t, r.Run(context.Background(), s))
	assert.Equal(t, Succeeded, r.State())
	got, ok := r.Result()
	require.True(t, ok)
	assert.Equal(t, result, got)
	require.Len(t, s.got, 1)
	assert.Equal(t, BollingerBands, s.got[0].Strategy())
}

func TestBacktestRunner_Failure(t *testing.T) {
	s := &fakeSubmitter{err: &BackendError{Status: 500, Message: "No data for symbol"}}
	r := NewBacktestRunner()
	for k, v := range filledForm() {
		r.SetField(k, v)
	}

	assert.Error(t, r.Run(context.Background(), s))
	assert.Equal(t, Failed, r.State())
	assert.Equal(t, "No data for symbol", r.Message())
	_, ok := r.Result()
	assert.False(t, ok)
}

func TestBacktestRunner_ValidationStaysIdle(t *testing.T) {
	s := &fakeSubmitter{}
	r := NewBacktestRunner()

	assert.Error(t, r.Run(context.Background(), s))
	assert.Equal(t, Idle, r.State())
	assert.NotEmpty(t, r.Message())
	assert.Empty(t, s.got, "nothing sent")
}

func TestBacktestRunner_StrategySwitchClears(t *testing.T) {
	r := NewBacktestRunner()
	for k, v := range filledForm() {
		r.SetField(k, v)
	}

	// Success then switch.
	tok, _, err := r.Begin()
	require.NoError(t, err)
	require.True(t, r.Complete(tok, BacktestResult{Metrics: Record{{Name: "x", Value: 1}}}, nil))
	r.SelectStrategy(MovingAverageCrossover)
	assert.Equal(t, Idle, r.State())
	_, ok := r.Result()
	assert.False(t, ok)

	// Failure then switch.
	tok, _, err = r.Begin()
	require.NoError(t, err)
	require.True(t, r.Complete(tok, BacktestResult{}, errOffline))
	assert.Equal(t, NotReachableMessage, r.Message())
	r.SelectStrategy(BollingerBands)
	assert.Empty(t, r.Message())

	// Pending then switch: the late response is dropped.
	tok, _, err = r.Begin()
	require.NoError(t, err)
	r.SelectStrategy(MovingAverageCrossover)
	assert.False(t, r.Complete(tok, BacktestResult{Metrics: Record{{Name: "late", Value: 1}}}, nil))
	assert.Equal(t, Idle, r.State())
	assert.Nil(t, r.Request())
}

func TestBacktestRunner_FormSurvivesSwitch(t *testing.T) {
	r := NewBacktestRunner()
	r.SetField(FieldSymbol, "TSLA")
	r.SelectStrategy(MovingAverageCrossover)
	assert.Equal(t, "TSLA", r.Form()[FieldSymbol])
}

func TestRecord_Get(t *testing.T) {
	r := Record{{Name: "a", Value: 1}, {Name: "b", Value: "x"}}
	v, ok := r.Get("b")
	assert.True(t, ok)
	assert.Equal(t, "x", v)
	_, ok = r.Get("c")
	assert.False(t, ok)
}
