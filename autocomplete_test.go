package stockdash

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Filter(t *testing.T) {
	catalog := NewCatalog("AAPL", "AMZN", "TSLA", "MSFT")
	tests := []struct {
		query string
		want  []Symbol
	}{
		{query: "a", want: []Symbol{"AAPL", "AMZN", "TSLA"}},
		{query: "A", want: []Symbol{"AAPL", "AMZN", "TSLA"}},
		{query: "am", want: []Symbol{"AMZN"}},
		{query: "sl", want: []Symbol{"TSLA"}},
		{query: "xyz", want: nil},
		{query: "", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, catalog.Filter(tt.query))
		})
	}
}

func TestCatalog_FilterIsPure(t *testing.T) {
	catalog := NewCatalog("AAPL", "AMZN", "TSLA")
	for _, q := range []string{"a", "T", "zz", ""} {
		first := catalog.Filter(q)
		second := catalog.Filter(q)
		assert.Equal(t, first, second, "filtering %q twice", q)
	}
	assert.Equal(t, NewCatalog("AAPL", "AMZN", "TSLA"), catalog, "filter must not mutate the catalog")
}

func TestAutocomplete_Scenario(t *testing.T) {
	var a Autocomplete
	a.SetCatalog(NewCatalog("AAPL", "AMZN", "TSLA"))

	a.SetQuery("a")
	assert.Equal(t, []Symbol{"AAPL", "AMZN", "TSLA"}, a.Suggestions())

	a.SetQuery("aa")
	assert.Equal(t, []Symbol{"AAPL"}, a.Suggestions())
}

func TestAutocomplete_SkipsNonMatching(t *testing.T) {
	var a Autocomplete
	a.SetCatalog(NewCatalog("AAPL", "AMZN", "MSFT"))
	a.SetQuery("a")
	assert.Equal(t, []Symbol{"AAPL", "AMZN"}, a.Suggestions())
}

func TestAutocomplete_EmptyQuery(t *testing.T) {
	var a Autocomplete
	a.SetCatalog(NewCatalog("AAPL", "AMZN", "TSLA"))
	a.SetQuery("a")
	require.NotEmpty(t, a.Suggestions())

	a.SetQuery("")
	assert.Empty(t, a.Suggestions())
	assert.Equal(t, "", a.Query())
}

func TestAutocomplete_QueryStoredVerbatim(t *testing.T) {
	var a Autocomplete
	a.SetCatalog(NewCatalog("AAPL"))
	a.SetQuery(" Aa")
	assert.Equal(t, " Aa", a.Query())
	assert.Empty(t, a.Suggestions(), "leading space is part of the query")
}

func TestAutocomplete_CatalogArrivesAfterTyping(t *testing.T) {
	var a Autocomplete
	a.SetQuery("ts")
	assert.Empty(t, a.Suggestions())

	a.SetCatalog(NewCatalog("AAPL", "TSLA"))
	assert.Equal(t, []Symbol{"TSLA"}, a.Suggestions())
}

func TestAutocomplete_Select(t *testing.T) {
	var a Autocomplete
	a.SetCatalog(NewCatalog("AAPL", "AMZN", "TSLA"))
	a.SetQuery("a")

	a.Select("AMZN")
	assert.Empty(t, a.Suggestions())
	got, ok := a.Selected()
	assert.True(t, ok)
	assert.Equal(t, Symbol("AMZN"), got)
}

func TestAutocomplete_PointerDownBeforeBlur(t *testing.T) {
	var a Autocomplete
	a.SetCatalog(NewCatalog("AAPL", "AMZN", "TSLA"))
	a.SetQuery("am")

	// Event order of a click on a suggestion: press first, then blur.
	require.True(t, a.PointerDown("AMZN"))
	a.Blur()

	got, ok := a.Selected()
	assert.True(t, ok)
	assert.Equal(t, Symbol("AMZN"), got)
	assert.Empty(t, a.Suggestions())
}

func TestAutocomplete_PointerDownIgnoresHiddenSymbol(t *testing.T) {
	var a Autocomplete
	a.SetCatalog(NewCatalog("AAPL", "AMZN", "TSLA"))
	a.SetQuery("am")
	a.Blur()

	assert.False(t, a.PointerDown("AMZN"), "list was cleared by blur")
	_, ok := a.Selected()
	assert.False(t, ok)
}

func TestAutocomplete_BlurThenFocus(t *testing.T) {
	var a Autocomplete
	a.SetCatalog(NewCatalog("AAPL", "AMZN", "TSLA"))
	a.SetQuery("t")
	a.Blur()
	assert.Empty(t, a.Suggestions())

	a.Focus()
	assert.Equal(t, []Symbol{"TSLA"}, a.Suggestions())
}

func TestAutocomplete_Keyboard(t *testing.T) {
	var a Autocomplete
	a.SetCatalog(NewCatalog("AAPL", "AMZN", "TSLA"))
	a.SetQuery("a")

	a.MoveHighlight(1)
	s, ok := a.Highlighted()
	require.True(t, ok)
	assert.Equal(t, Symbol("AMZN"), s)

	a.MoveHighlight(10)
	s, _ = a.Highlighted()
	assert.Equal(t, Symbol("TSLA"), s, "clamped to the last item")

	a.MoveHighlight(-10)
	s, _ = a.Highlighted()
	assert.Equal(t, Symbol("AAPL"), s, "clamped to the first item")

	require.True(t, a.PressHighlighted())
	got, _ := a.Selected()
	assert.Equal(t, Symbol("AAPL"), got)
	assert.False(t, a.PressHighlighted(), "nothing left to press")
}

func TestAutocomplete_CatalogFailed(t *testing.T) {
	var a Autocomplete
	a.SetCatalog(NewCatalog("AAPL"))
	a.CatalogFailed(errors.New("offline"))
	a.SetQuery("a")

	assert.Empty(t, a.Suggestions())
	assert.Error(t, a.CatalogErr())
}
