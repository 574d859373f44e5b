package stockdash

import (
	"context"
	"strings"
)

// Symbol is an opaque ticker, as listed by the backend catalog.
type Symbol string

func (s Symbol) String() string { return string(s) }

// Matches reports whether the lowercase form of s contains the lowercase query.
func (s Symbol) Matches(query string) bool {
	return strings.Contains(strings.ToLower(string(s)), strings.ToLower(query))
}

// Catalog is the full list of tradable symbols, in backend order.
type Catalog []Symbol

// NewCatalog converts raw tickers into a Catalog.
func NewCatalog(tickers ...string) Catalog {
	c := make(Catalog, 0, len(tickers))
	for _, t := range tickers {
		c = append(c, Symbol(t))
	}
	return c
}

// Filter returns the catalog entries matching query, in catalog order.
//
// An empty query matches nothing: the whole catalog is never a suggestion list.
func (c Catalog) Filter(query string) []Symbol {
	if query == "" {
		return nil
	}
	var matches []Symbol
	for _, s := range c {
		if s.Matches(query) {
			matches = append(matches, s)
		}
	}
	return matches
}

// Contains reports whether s is listed, compared case-insensitively.
func (c Catalog) Contains(s Symbol) bool {
	for _, x := range c {
		if strings.EqualFold(string(x), string(s)) {
			return true
		}
	}
	return false
}

// CatalogSource lists the tradable symbols.
type CatalogSource interface {
	Symbols(ctx context.Context) ([]Symbol, error)
}

// LoadCatalog fetches the catalog once from src.
func LoadCatalog(ctx context.Context, src CatalogSource) (Catalog, error) {
	symbols, err := src.Symbols(ctx)
	if err != nil {
		return nil, err
	}
	return Catalog(symbols), nil
}
