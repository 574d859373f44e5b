package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/etnz/stockdash"
	"github.com/shopspring/decimal"
)

// Backtest runs r on the endpoint of its strategy.
func (c *Client) Backtest(ctx context.Context, r stockdash.BacktestRequest) (stockdash.BacktestResult, error) {
	path := "/api/backtest/" + r.Strategy().String()
	body, err := c.post(ctx, path, r)
	if err != nil {
		return stockdash.BacktestResult{}, err
	}
	result, err := decodeResult(body)
	if err != nil {
		return stockdash.BacktestResult{}, &stockdash.TransportError{Op: "POST " + path, Err: err}
	}
	return result, nil
}

// decodeResult decodes the results and trades of a successful run. Objects are
// read token by token so the metrics keep the backend order.
func decodeResult(body []byte) (stockdash.BacktestResult, error) {
	var envelope struct {
		Results json.RawMessage   `json:"results"`
		Trades  []json.RawMessage `json:"trades"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return stockdash.BacktestResult{}, fmt.Errorf("invalid backtest response: %w", err)
	}
	var result stockdash.BacktestResult
	if len(envelope.Results) > 0 {
		metrics, err := decodeRecord(envelope.Results)
		if err != nil {
			return result, fmt.Errorf("invalid results: %w", err)
		}
		result.Metrics = metrics
	}
	for i, raw := range envelope.Trades {
		trade, err := decodeRecord(raw)
		if err != nil {
			return result, fmt.Errorf("invalid trade #%d: %w", i, err)
		}
		result.Trades = append(result.Trades, trade)
	}
	return result, nil
}

// decodeRecord decodes a JSON object into an ordered record. null is an empty
// record.
func decodeRecord(raw json.RawMessage) (stockdash.Record, error) {
	if string(bytes.TrimSpace(raw)) == "null" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("want an object, got %v", tok)
	}
	var record stockdash.Record
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("want a key, got %v", tok)
		}
		var value any
		if err := dec.Decode(&value); err != nil {
			return nil, fmt.Errorf("value of %q: %w", name, err)
		}
		record = append(record, stockdash.Metric{Name: name, Value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return record, nil
}

type backtestLog struct {
	ID             id              `json:"id"`
	AnnualReturn   decimal.Decimal `json:"annual_return"`
	NumberOfTrades int             `json:"number_of_trades"`
	ProfitFactor   decimal.Decimal `json:"profit_factor"`
	SharpeRatio    decimal.Decimal `json:"sharpe_ratio"`
	TotalReturn    decimal.Decimal `json:"total_return"`
	WinRate        decimal.Decimal `json:"win_rate"`
	CreatedAt      Timestamp       `json:"created_at"`
}

// BacktestLogs lists the persisted backtest runs, newest first as returned.
func (c *Client) BacktestLogs(ctx context.Context) ([]stockdash.BacktestLog, error) {
	var rows []backtestLog
	if err := c.get(ctx, "/api/backtest/logs", nil, &rows); err != nil {
		return nil, err
	}
	logs := make([]stockdash.BacktestLog, 0, len(rows))
	for _, r := range rows {
		logs = append(logs, stockdash.BacktestLog{
			ID:             string(r.ID),
			AnnualReturn:   r.AnnualReturn,
			NumberOfTrades: r.NumberOfTrades,
			ProfitFactor:   r.ProfitFactor,
			SharpeRatio:    r.SharpeRatio,
			TotalReturn:    r.TotalReturn,
			WinRate:        r.WinRate,
			CreatedAt:      time.Time(r.CreatedAt),
		})
	}
	return logs, nil
}
