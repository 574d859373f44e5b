// Package apitest runs an in-memory stock dashboard backend for tests.
//
// It serves the same routes as the real backend and records every request it
// receives, so tests can assert on what was sent.
package apitest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Request is a request as received by the Backend.
type Request struct {
	Method    string
	Path      string
	Query     url.Values
	Body      []byte
	RequestID string
}

// JSON decodes the body of r into a generic map.
func (r Request) JSON() map[string]any {
	var m map[string]any
	_ = json.Unmarshal(r.Body, &m)
	return m
}

// Price is one row of the stock series.
type Price struct {
	Timestamp string  `json:"timestamp"`
	Close     float64 `json:"close_price"`
	Volume    float64 `json:"volume"`
}

// Position is one row of the portfolio.
type Position struct {
	ID           int     `json:"id"`
	Symbol       string  `json:"symbol"`
	Entry        float64 `json:"entry"`
	CurrentValue float64 `json:"current_value"`
}

type response struct {
	status int
	body   string
}

// Backend is a fake backend. Its exported fields may be set before the first
// request; use the methods once it is serving.
type Backend struct {
	Symbols   []string
	Prices    map[string][]Price // by symbol, returned whatever the range
	Positions []Position
	// Backtest is the raw body returned by a successful backtest.
	Backtest string
	// Logs is the raw body of GET /api/backtest/logs.
	Logs string

	mu        sync.Mutex
	requests  []Request
	overrides map[string]response // by "METHOD /path"
	server    *httptest.Server
}

// DefaultBacktest is a successful backtest response, metrics in a non
// alphabetical order.
const DefaultBacktest = `{
  "success": true,
  "results": {"Total Return (%)": 12.5, "Annual Return (%)": 11.9, "Number of Trades": 2, "Win Rate (%)": 50.0, "Sharpe Ratio": 1.234, "Profit Factor": 1.8},
  "trades": [
    {"entry_date": "Tue, 03 Jan 2023 00:00:00 GMT", "entry_price": 125.07, "type": "buy"},
    {"exit_date": "Fri, 10 Feb 2023 00:00:00 GMT", "exit_price": 151.01, "returns": 0.2074}
  ]
}`

// New starts a backend with a small catalog and empty portfolio. It is closed
// when the test ends.
func New(t testing.TB) *Backend {
	b := &Backend{
		Symbols:  []string{"AAPL", "AMZN", "TSLA"},
		Prices:   map[string][]Price{},
		Backtest: DefaultBacktest,
		Logs:     "[]",
	}
	b.server = httptest.NewServer(b.router())
	t.Cleanup(b.server.Close)
	return b
}

// URL returns the base url of the backend.
func (b *Backend) URL() string { return b.server.URL }

// Fail makes every later call to "METHOD /path" answer status with body.
func (b *Backend) Fail(method, path string, status int, body string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.overrides == nil {
		b.overrides = map[string]response{}
	}
	b.overrides[method+" "+path] = response{status, body}
}

// Requests returns the requests received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Request(nil), b.requests...)
}

// Last returns the last request received to path.
func (b *Backend) Last(path string) (Request, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := len(b.requests) - 1; i >= 0; i-- {
		if b.requests[i].Path == path {
			return b.requests[i], true
		}
	}
	return Request{}, false
}

// SetPositions replaces the portfolio.
func (b *Backend) SetPositions(p ...Position) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Positions = p
}

func (b *Backend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(b.record)
	r.Use(b.override)

	r.Get("/api/stocks/symbols", b.handleSymbols)
	r.Get("/api/stocks", b.handleStocks)
	r.Get("/api/portfolio", b.handlePortfolio)
	r.Post("/api/portfolio/add", b.handleAdd)
	r.Get("/api/backtest/logs", b.handleLogs)
	r.Post("/api/backtest/{strategy}", b.handleBacktest)
	return r
}

func (b *Backend) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body.Close()
		b.mu.Lock()
		b.requests = append(b.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Query:     r.URL.Query(),
			Body:      body,
			RequestID: r.Header.Get("X-Request-ID"),
		})
		b.mu.Unlock()
		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (b *Backend) override(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		resp, ok := b.overrides[r.Method+" "+r.URL.Path]
		b.mu.Unlock()
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(resp.status)
		io.WriteString(w, resp.body)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeRaw(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	io.WriteString(w, body)
}

func (b *Backend) handleSymbols(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeJSON(w, http.StatusOK, b.Symbols)
}

func (b *Backend) handleStocks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	symbol, start, end := q.Get("symbol"), q.Get("start_date"), q.Get("end_date")
	if symbol == "" || start == "" || end == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing query parameters"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	prices := b.Prices[symbol]
	if prices == nil {
		prices = []Price{}
	}
	writeJSON(w, http.StatusOK, prices)
}

func (b *Backend) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	positions := b.Positions
	if positions == nil {
		positions = []Position{}
	}
	writeJSON(w, http.StatusOK, positions)
}

func (b *Backend) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Symbol string   `json:"symbol"`
		Entry  *float64 `json:"entry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "invalid JSON body"})
		return
	}
	if req.Symbol == "" || req.Entry == nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "symbol and entry are required"})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Positions = append(b.Positions, Position{
		ID:           len(b.Positions) + 1,
		Symbol:       req.Symbol,
		Entry:        *req.Entry,
		CurrentValue: *req.Entry,
	})
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (b *Backend) handleBacktest(w http.ResponseWriter, r *http.Request) {
	strategy := chi.URLParam(r, "strategy")
	switch strategy {
	case "bollinger", "moving_average":
	default:
		writeJSON(w, http.StatusNotFound, map[string]any{"success": false, "error": fmt.Sprintf("unknown strategy %q", strategy)})
		return
	}
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false, "error": err.Error()})
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	writeRaw(w, b.Backtest)
}

func (b *Backend) handleLogs(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()
	writeRaw(w, b.Logs)
}

