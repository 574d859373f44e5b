package stockdash

// Autocomplete derives symbol suggestions from a query and the catalog.
//
// Suggestions are always recomputed from the current query, never patched. The
// blur-versus-selection race is solved by ordering: a suggestion is chosen by a
// press event (PointerDown, or PressHighlighted from the keyboard) which is
// delivered before the input loses focus, so Blur can clear immediately.
type Autocomplete struct {
	catalog      Catalog
	catalogErr   error
	query        string
	suggestions  []Symbol
	highlighted  int
	selected     Symbol
	hasSelection bool
}

// SetCatalog installs the catalog once it has been fetched.
func (a *Autocomplete) SetCatalog(c Catalog) {
	a.catalog = c
	a.catalogErr = nil
	a.recompute()
}

// CatalogFailed records a failed catalog fetch. Suggestions stay empty until
// the user reloads, nothing is retried here.
func (a *Autocomplete) CatalogFailed(err error) {
	a.catalog = nil
	a.catalogErr = err
	a.recompute()
}

// CatalogErr returns the error of the last catalog fetch, if any.
func (a *Autocomplete) CatalogErr() error { return a.catalogErr }

// Catalog returns the installed catalog.
func (a *Autocomplete) Catalog() Catalog { return a.catalog }

// SetQuery stores q verbatim and recomputes the suggestions.
func (a *Autocomplete) SetQuery(q string) {
	a.query = q
	a.recompute()
}

// Query returns the current query.
func (a *Autocomplete) Query() string { return a.query }

// Focus recomputes the suggestions of the current query, e.g. when the input
// gets the focus back after a blur.
func (a *Autocomplete) Focus() { a.recompute() }

// Suggestions returns a copy of the current suggestion list.
func (a *Autocomplete) Suggestions() []Symbol {
	return append([]Symbol(nil), a.suggestions...)
}

// PointerDown handles the press on a suggestion item. It fires before blur.
// It reports false, and does nothing, if s is not currently suggested.
func (a *Autocomplete) PointerDown(s Symbol) bool {
	for _, x := range a.suggestions {
		if x == s {
			a.Select(s)
			return true
		}
	}
	return false
}

// Select sets the selection to s and clears the suggestions.
func (a *Autocomplete) Select(s Symbol) {
	a.selected = s
	a.hasSelection = true
	a.clear()
}

// Blur clears the suggestions.
func (a *Autocomplete) Blur() { a.clear() }

// Selected returns the selected symbol, if any.
func (a *Autocomplete) Selected() (Symbol, bool) { return a.selected, a.hasSelection }

// ClearSelection forgets the selected symbol, e.g. when its dialog closes.
func (a *Autocomplete) ClearSelection() {
	a.selected = ""
	a.hasSelection = false
}

// MoveHighlight moves the keyboard cursor over the suggestions, clamped.
func (a *Autocomplete) MoveHighlight(delta int) {
	if len(a.suggestions) == 0 {
		a.highlighted = 0
		return
	}
	a.highlighted = min(max(a.highlighted+delta, 0), len(a.suggestions)-1)
}

// Highlighted returns the suggestion under the keyboard cursor.
func (a *Autocomplete) Highlighted() (Symbol, bool) {
	if len(a.suggestions) == 0 {
		return "", false
	}
	return a.suggestions[a.highlighted], true
}

// PressHighlighted is the keyboard equivalent of PointerDown.
func (a *Autocomplete) PressHighlighted() bool {
	s, ok := a.Highlighted()
	if !ok {
		return false
	}
	return a.PointerDown(s)
}

func (a *Autocomplete) recompute() {
	a.suggestions = a.catalog.Filter(a.query)
	a.highlighted = 0
}

func (a *Autocomplete) clear() {
	a.suggestions = nil
	a.highlighted = 0
}
