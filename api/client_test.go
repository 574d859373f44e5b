package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/apitest"
	"github.com/etnz/stockdash/date"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, b *apitest.Backend, opts ...Option) *Client {
	t.Helper()
	c, err := New(b.URL(), opts...)
	require.NoError(t, err)
	return c
}

func TestNew_InvalidURL(t *testing.T) {
	for _, u := range []string{"localhost:4000", "ftp://host", "://"} {
		_, err := New(u)
		assert.Error(t, err, u)
	}
}

func TestClient_Symbols(t *testing.T) {
	b := apitest.New(t)
	c := newClient(t, b)

	got, err := c.Symbols(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []stockdash.Symbol{"AAPL", "AMZN", "TSLA"}, got)

	req, ok := b.Last("/api/stocks/symbols")
	require.True(t, ok)
	_, err = uuid.Parse(req.RequestID)
	assert.NoError(t, err, "request id is a uuid")
}

func TestClient_Prices(t *testing.T) {
	b := apitest.New(t)
	b.Prices["AAPL"] = []apitest.Price{
		{Timestamp: "Tue, 03 Jan 2023 00:00:00 GMT", Close: 125.07},
		{Timestamp: "2023-01-04T14:30:00Z", Close: 126.36},
	}
	c := newClient(t, b)

	r := date.Range{From: date.New(2023, 1, 1), To: date.New(2023, 1, 31)}
	got, err := c.Prices(context.Background(), "AAPL", r)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC), got[0].Time.UTC())
	assert.True(t, got[0].Close.Equal(decimal.RequireFromString("125.07")))
	assert.Equal(t, "2023-01-04 14:30", stockdash.Label(got[1].Time))

	req, _ := b.Last("/api/stocks")
	assert.Equal(t, "AAPL", req.Query.Get("symbol"))
	assert.Equal(t, "2023-01-01", req.Query.Get("start_date"))
	assert.Equal(t, "2023-01-31", req.Query.Get("end_date"))
}

func TestClient_Positions(t *testing.T) {
	b := apitest.New(t)
	b.SetPositions(apitest.Position{ID: 7, Symbol: "AAPL", Entry: 100, CurrentValue: 120})
	c := newClient(t, b)

	got, err := c.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "7", got[0].ID)

	v := stockdash.Derive(got[0])
	assert.Equal(t, "20.00", v.ProfitLossString())
	assert.Equal(t, "20.00%", v.PercentString())
	assert.Equal(t, stockdash.Gain, v.Trend())
}

func TestClient_AddPosition(t *testing.T) {
	b := apitest.New(t)
	c := newClient(t, b)

	entry, err := stockdash.ParseEntry("250")
	require.NoError(t, err)
	require.NoError(t, c.AddPosition(context.Background(), stockdash.NewPosition{Symbol: "TSLA", Entry: entry}))

	req, ok := b.Last("/api/portfolio/add")
	require.True(t, ok)
	assert.Equal(t, http.MethodPost, req.Method)
	assert.JSONEq(t, `{"symbol":"TSLA","entry":250}`, string(req.Body))

	positions, err := c.Positions(context.Background())
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.Equal(t, stockdash.Symbol("TSLA"), positions[0].Symbol)
}

func TestClient_AddPositionErrors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantKind stockdash.ErrorKind
		wantMsg  string
	}{
		{"backend 400", 400, `{"success": false, "error": "Symbol not tradable"}`, stockdash.BackendFailure, "Symbol not tradable"},
		{"success false on 200", 200, `{"success": false, "error": "duplicate position"}`, stockdash.BackendFailure, "duplicate position"},
		{"500 without json", 500, `<html>Internal Server Error</html>`, stockdash.TransportFailure, stockdash.NotReachableMessage},
		{"200 not json", 200, `ok`, stockdash.TransportFailure, stockdash.NotReachableMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := apitest.New(t)
			b.Fail(http.MethodPost, "/api/portfolio/add", tt.status, tt.body)
			c := newClient(t, b)

			err := c.AddPosition(context.Background(), stockdash.NewPosition{Symbol: "TSLA", Entry: decimal.NewFromInt(1)})
			require.Error(t, err)
			assert.Equal(t, tt.wantKind, stockdash.KindOf(err))
			assert.Equal(t, tt.wantMsg, stockdash.UserMessage(err))
		})
	}
}

func TestClient_Unreachable(t *testing.T) {
	// Nothing listens on port 1.
	c, err := New("http://127.0.0.1:1", WithTimeout(time.Second))
	require.NoError(t, err)

	_, err = c.Symbols(context.Background())
	require.Error(t, err)
	var te *stockdash.TransportError
	assert.ErrorAs(t, err, &te)
	assert.Equal(t, stockdash.NotReachableMessage, stockdash.UserMessage(err))
}

func TestClient_Backtest(t *testing.T) {
	b := apitest.New(t)
	c := newClient(t, b)

	f := stockdash.DefaultForm()
	f[stockdash.FieldSymbol] = "AAPL"
	f[stockdash.FieldStartDate] = "2023-01-01"
	f[stockdash.FieldEndDate] = "2023-12-31"
	req, err := stockdash.BuildPayload(stockdash.BollingerBands, f)
	require.NoError(t, err)

	got, err := c.Backtest(context.Background(), req)
	require.NoError(t, err)

	var names []string
	for _, m := range got.Metrics {
		names = append(names, m.Name)
	}
	assert.Equal(t, []string{"Total Return (%)", "Annual Return (%)", "Number of Trades", "Win Rate (%)", "Sharpe Ratio", "Profit Factor"}, names)
	v, _ := got.Metrics.Get("Sharpe Ratio")
	assert.Equal(t, json.Number("1.234"), v)
	require.Len(t, got.Trades, 2)
	assert.Equal(t, "entry_date", got.Trades[0][0].Name)

	sent, ok := b.Last("/api/backtest/bollinger")
	require.True(t, ok)
	body := sent.JSON()
	assert.NotContains(t, body, "fast_window")
	assert.NotContains(t, body, "slow_window")
	assert.Equal(t, float64(20), body["window"])
}

func TestClient_BacktestCrossoverEndpoint(t *testing.T) {
	b := apitest.New(t)
	c := newClient(t, b)

	f := stockdash.DefaultForm()
	f[stockdash.FieldSymbol] = "TSLA"
	f[stockdash.FieldStartDate] = "2023-01-01"
	f[stockdash.FieldEndDate] = "2023-06-30"
	req, err := stockdash.BuildPayload(stockdash.MovingAverageCrossover, f)
	require.NoError(t, err)
	_, err = c.Backtest(context.Background(), req)
	require.NoError(t, err)

	sent, ok := b.Last("/api/backtest/moving_average")
	require.True(t, ok)
	body := sent.JSON()
	assert.NotContains(t, body, "window")
	assert.NotContains(t, body, "num_std")
	assert.Equal(t, float64(10), body["fast_window"])
}

func TestClient_BacktestBackendError(t *testing.T) {
	b := apitest.New(t)
	b.Fail(http.MethodPost, "/api/backtest/bollinger", 500, `{"success": false, "error": "No data found for symbol"}`)
	c := newClient(t, b)

	req := stockdash.BollingerRequest{
		Common: stockdash.Common{Symbol: "ZZZ", Start: date.New(2023, 1, 1), End: date.New(2023, 2, 1), InitialCapital: decimal.NewFromInt(1000)},
		Window: 20, NumStd: decimal.NewFromInt(2),
	}
	_, err := c.Backtest(context.Background(), req)
	var be *stockdash.BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, 500, be.Status)
	assert.Equal(t, "No data found for symbol", be.Message)
}

func TestClient_BacktestLogs(t *testing.T) {
	b := apitest.New(t)
	b.Logs = `[{"id": 2, "annual_return": 11.9, "number_of_trades": 4, "profit_factor": 1.8, "sharpe_ratio": 1.234, "total_return": 12.5, "win_rate": 50.0, "created_at": "Wed, 11 Oct 2023 09:15:00 GMT"},
	           {"id": 1, "annual_return": -3.2, "number_of_trades": 0, "profit_factor": 0, "sharpe_ratio": 0, "total_return": -3.2, "win_rate": 0, "created_at": null}]`
	c := newClient(t, b)

	got, err := c.BacktestLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.Equal(t, 4, got[0].NumberOfTrades)
	assert.True(t, got[0].SharpeRatio.Equal(decimal.RequireFromString("1.234")))
	assert.Equal(t, time.Date(2023, 10, 11, 9, 15, 0, 0, time.UTC), got[0].CreatedAt.UTC())
	assert.True(t, got[1].CreatedAt.IsZero())
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2023, 1, 3, 9, 30, 0, 0, time.UTC)
	tests := []struct {
		in   string
		want time.Time
	}{
		{"Tue, 03 Jan 2023 09:30:00 GMT", want},
		{"2023-01-03T09:30:00Z", want},
		{"2023-01-03T09:30:00", want},
		{"2023-01-03 09:30:00", want},
		{"2023-01-03", time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC)},
		{"", time.Time{}},
	}
	for _, tt := range tests {
		got, err := ParseTimestamp(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, tt.want.Equal(got), "%q: got %v", tt.in, got)
	}
	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestDecodeRecord(t *testing.T) {
	got, err := decodeRecord(json.RawMessage(`{"b": 1, "a": {"x": [1, 2]}, "c": "text"}`))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].Name)
	assert.Equal(t, json.Number("1"), got[0].Value)
	assert.Equal(t, "a", got[1].Name)
	assert.Equal(t, "c", got[2].Name)

	got, err = decodeRecord(json.RawMessage(`null`))
	assert.NoError(t, err)
	assert.Nil(t, got)

	_, err = decodeRecord(json.RawMessage(`[1]`))
	assert.Error(t, err)
}

func TestClient_DailyCache(t *testing.T) {
	b := apitest.New(t)
	c := newClient(t, b, WithDailyCache(t.TempDir()))

	for range 3 {
		got, err := c.Symbols(context.Background())
		require.NoError(t, err)
		assert.Len(t, got, 3)
	}
	assert.Len(t, b.Requests(), 1, "later calls are served from disk")

	require.NoError(t, c.AddPosition(context.Background(), stockdash.NewPosition{Symbol: "AAPL", Entry: decimal.NewFromInt(1)}))
	require.NoError(t, c.AddPosition(context.Background(), stockdash.NewPosition{Symbol: "AAPL", Entry: decimal.NewFromInt(1)}))
	assert.Len(t, b.Requests(), 3, "POST is never cached")
}

func TestClient_DailyCacheRefetchAfterAdd(t *testing.T) {
	b := apitest.New(t)
	c := newClient(t, b, WithDailyCache(t.TempDir()))
	ctx := context.Background()

	var p stockdash.Portfolio
	require.NoError(t, p.Refresh(ctx, c))
	assert.Empty(t, p.Rows())

	require.NoError(t, c.AddPosition(ctx, stockdash.NewPosition{Symbol: "TSLA", Entry: decimal.NewFromInt(250)}))
	require.NoError(t, p.Refresh(ctx, c))
	rows := p.Rows()
	require.Len(t, rows, 1, "the portfolio is never served from the cache")
	assert.Equal(t, stockdash.Symbol("TSLA"), rows[0].Symbol)
}

func TestCacheable(t *testing.T) {
	tests := []struct {
		method, url string
		want        bool
	}{
		{http.MethodGet, "http://localhost:4000/api/stocks/symbols", true},
		{http.MethodGet, "http://localhost:4000/api/stocks?symbol=AAPL", true},
		{http.MethodGet, "http://localhost:4000/prefix/api/stocks", true},
		{http.MethodGet, "http://localhost:4000/api/portfolio", false},
		{http.MethodGet, "http://localhost:4000/api/backtest/logs", false},
		{http.MethodPost, "http://localhost:4000/api/stocks", false},
	}
	for _, tt := range tests {
		req, err := http.NewRequest(tt.method, tt.url, nil)
		require.NoError(t, err)
		assert.Equal(t, tt.want, cacheable(req), "%s %s", tt.method, tt.url)
	}
}
