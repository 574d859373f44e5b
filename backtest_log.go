package stockdash

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BacktestLog is one persisted backtest run, as kept by the backend.
type BacktestLog struct {
	ID             string
	AnnualReturn   decimal.Decimal // %
	NumberOfTrades int
	ProfitFactor   decimal.Decimal
	SharpeRatio    decimal.Decimal
	TotalReturn    decimal.Decimal // %
	WinRate        decimal.Decimal // %
	CreatedAt      time.Time
}

// LogSource lists the backtest history, newest first.
type LogSource interface {
	BacktestLogs(ctx context.Context) ([]BacktestLog, error)
}
