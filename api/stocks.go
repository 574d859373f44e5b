package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/date"
	"github.com/shopspring/decimal"
)

// Symbols lists the tradable symbols, in backend order.
func (c *Client) Symbols(ctx context.Context) ([]stockdash.Symbol, error) {
	var tickers []string
	if err := c.get(ctx, "/api/stocks/symbols", nil, &tickers); err != nil {
		return nil, err
	}
	symbols := make([]stockdash.Symbol, 0, len(tickers))
	for _, t := range tickers {
		symbols = append(symbols, stockdash.Symbol(t))
	}
	return symbols, nil
}

// pricePoint is one row of GET /api/stocks. Other columns (open, high, low,
// volume...) are ignored.
type pricePoint struct {
	Timestamp Timestamp       `json:"timestamp"`
	Close     decimal.Decimal `json:"close_price"`
}

// Prices returns the close prices of s over r, in backend order.
func (c *Client) Prices(ctx context.Context, s stockdash.Symbol, r date.Range) ([]stockdash.PricePoint, error) {
	query := url.Values{
		"symbol":     {s.String()},
		"start_date": {r.From.String()},
		"end_date":   {r.To.String()},
	}
	var rows []pricePoint
	if err := c.get(ctx, "/api/stocks", query, &rows); err != nil {
		return nil, err
	}
	points := make([]stockdash.PricePoint, 0, len(rows))
	for _, row := range rows {
		points = append(points, stockdash.PricePoint{Time: time.Time(row.Timestamp), Close: row.Close})
	}
	return points, nil
}

// timestampLayouts are tried in order. The backend serializes datetimes the
// HTTP way ("Mon, 02 Jan 2006 15:04:05 GMT") but ISO forms are accepted too.
var timestampLayouts = []string{
	http.TimeFormat,
	time.RFC1123,
	time.RFC1123Z,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	date.DateFormat,
}

// Timestamp is a backend datetime. null and "" decode to the zero time.
type Timestamp time.Time

// ParseTimestamp parses a backend datetime in any of the accepted layouts.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", s)
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	*t = Timestamp(v)
	return nil
}
