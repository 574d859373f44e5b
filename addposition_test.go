package stockdash

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntry(t *testing.T) {
	tests := []struct {
		text    string
		want    string
		wantErr string
	}{
		{text: "250", want: "250"},
		{text: " 12.5 ", want: "12.5"},
		{text: "0", want: "0"},
		{text: "", wantErr: "Please enter the entry price."},
		{text: "   ", wantErr: "Please enter the entry price."},
		{text: "abc", wantErr: `"abc" is not a number.`},
		{text: "-1", wantErr: "The entry price cannot be negative."},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseEntry(tt.text)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, ValidationFailure, KindOf(err))
				assert.Equal(t, tt.wantErr, UserMessage(err))
				return
			}
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(t, tt.want)), "got %v", got)
		})
	}
}

func TestAddPosition_Submit(t *testing.T) {
	c := &fakeCreator{}
	var w AddPosition
	w.Open("TSLA")

	refresh, err := w.Submit(context.Background(), c, "250")
	require.NoError(t, err)
	assert.True(t, refresh)
	assert.False(t, w.IsOpen())
	require.Len(t, c.got, 1)
	assert.Equal(t, Symbol("TSLA"), c.got[0].Symbol)
	assert.True(t, c.got[0].Entry.Equal(dec(t, "250")))
}

func TestAddPosition_InvalidEntrySendsNothing(t *testing.T) {
	c := &fakeCreator{}
	var w AddPosition
	w.Open("TSLA")

	refresh, err := w.Submit(context.Background(), c, "")
	assert.Error(t, err)
	assert.False(t, refresh)
	assert.Empty(t, c.got)
	assert.True(t, w.IsOpen())
	assert.Equal(t, "Please enter the entry price.", w.Message())
}

func TestAddPosition_FailureKeepsDialog(t *testing.T) {
	c := &fakeCreator{err: &BackendError{Status: 400, Message: "Symbol not tradable"}}
	var w AddPosition
	w.Open("TSLA")

	refresh, err := w.Submit(context.Background(), c, "10")
	assert.Error(t, err)
	assert.False(t, refresh)
	assert.True(t, w.IsOpen())
	assert.Equal(t, Symbol("TSLA"), w.Symbol())
	assert.Equal(t, "Symbol not tradable", w.Message())
	assert.False(t, w.Pending())
}

func TestAddPosition_DoubleSubmit(t *testing.T) {
	var w AddPosition
	w.Open("AAPL")

	p, err := w.Begin("10")
	require.NoError(t, err)
	assert.Equal(t, Symbol("AAPL"), p.Symbol)
	assert.True(t, w.Pending())

	_, err = w.Begin("10")
	assert.ErrorIs(t, err, ErrInFlight)

	assert.True(t, w.Complete(nil))
	assert.False(t, w.Pending())
}

func TestAddPosition_Closed(t *testing.T) {
	var w AddPosition
	_, err := w.Begin("10")
	assert.ErrorIs(t, err, ErrDialogClosed)

	w.Open("AAPL")
	w.Close()
	_, err = w.Begin("10")
	assert.ErrorIs(t, err, ErrDialogClosed)
}

func TestAddPosition_ReopenClearsMessage(t *testing.T) {
	var w AddPosition
	w.Open("AAPL")
	_, _ = w.Begin("x")
	require.NotEmpty(t, w.Message())

	w.Open("AMZN")
	assert.Empty(t, w.Message())
	assert.Equal(t, Symbol("AMZN"), w.Symbol())
}
