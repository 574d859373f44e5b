package cmd

import (
	"context"
	"time"

	"github.com/etnz/stockdash"
	"github.com/etnz/stockdash/docs"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
	"github.com/rs/zerolog"
)

// Completion returns the shell completion of the sdash commands. Symbols are
// predicted from the backend catalog.
func Completion() *complete.Command {
	symbol := complete.PredictFunc(PredictSymbols)
	strategy := predict.Set{"bollinger", "ma"}
	backtest := map[string]complete.Predictor{
		"s": symbol, "from": predict.Something, "to": predict.Something,
		"capital": predict.Something, "window": predict.Something, "std": predict.Something,
		"fast": predict.Something, "slow": predict.Something,
	}
	assist := map[string]complete.Predictor{"strategy": strategy}
	for k, v := range backtest {
		assist[k] = v
	}
	topics, _ := docs.GetAllTopics()

	return &complete.Command{
		Sub: map[string]*complete.Command{
			"symbols":   {},
			"search":    {Args: symbol},
			"portfolio": {},
			"add":       {Flags: map[string]complete.Predictor{"f": predict.Nothing}, Args: symbol},
			"backtest":  {Flags: backtest, Args: strategy},
			"logs":      {},
			"series":    {Flags: map[string]complete.Predictor{"s": symbol, "from": predict.Something, "to": predict.Something}},
			"dash":      {},
			"assist":    {Flags: assist},
			"topic":     {Args: predict.Set(append(topics, "*"))},
		},
		Flags: map[string]complete.Predictor{
			"api-url":  predict.Something,
			"timeout":  predict.Something,
			"currency": predict.Set{"USD", "EUR", "GBP", "JPY"},
			"cache":    predict.Nothing,
			"v":        predict.Nothing,
			"log-file": predict.Files("*.log"),
		},
	}
}

// PredictSymbols returns the catalog symbols matching prefix, the whole catalog
// for an empty prefix. It returns nothing when the backend cannot be reached.
func PredictSymbols(prefix string) []string {
	client, err := newClient(zerolog.Nop())
	if err != nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	catalog, err := stockdash.LoadCatalog(ctx, client)
	if err != nil {
		return nil
	}
	matches := []stockdash.Symbol(catalog)
	if prefix != "" {
		matches = catalog.Filter(prefix)
	}
	result := make([]string, 0, len(matches))
	for _, s := range matches {
		result = append(result, s.String())
	}
	return result
}
