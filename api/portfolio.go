package api

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/etnz/stockdash"
	"github.com/shopspring/decimal"
)

// id accepts both numeric and string identifiers.
type id string

func (i *id) UnmarshalJSON(data []byte) error {
	if bytes.HasPrefix(data, []byte(`"`)) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*i = id(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*i = id(n.String())
	return nil
}

type position struct {
	ID           id              `json:"id"`
	Symbol       string          `json:"symbol"`
	Entry        decimal.Decimal `json:"entry"`
	CurrentValue decimal.Decimal `json:"current_value"`
}

// Positions lists the portfolio. Profit and loss are derived client side.
func (c *Client) Positions(ctx context.Context) ([]stockdash.Position, error) {
	var rows []position
	if err := c.get(ctx, "/api/portfolio", nil, &rows); err != nil {
		return nil, err
	}
	positions := make([]stockdash.Position, 0, len(rows))
	for _, r := range rows {
		positions = append(positions, stockdash.Position{
			ID:           string(r.ID),
			Symbol:       stockdash.Symbol(r.Symbol),
			Entry:        r.Entry,
			CurrentValue: r.CurrentValue,
		})
	}
	return positions, nil
}

// AddPosition creates a position. The entry is sent as a JSON number.
func (c *Client) AddPosition(ctx context.Context, p stockdash.NewPosition) error {
	payload := struct {
		Symbol string      `json:"symbol"`
		Entry  json.Number `json:"entry"`
	}{
		Symbol: p.Symbol.String(),
		Entry:  json.Number(p.Entry.String()),
	}
	_, err := c.post(ctx, "/api/portfolio/add", payload)
	return err
}
