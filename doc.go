// Package stockdash holds the client side state of a stock dashboard: symbol
// autocomplete, portfolio valuation, the add-position dialog, backtest runs and
// price series.
//
// The backend owns the data and the strategy algorithms, it is reached through
// a handful of small interfaces (CatalogSource, PositionSource, PositionCreator,
// BacktestSubmitter, PriceSource) implemented by the api package.
//
// Every controller is a plain state machine meant to be driven from a single
// goroutine, typically the dashboard event loop. None of them is safe for
// concurrent use. Asynchronous work is split in two halves: a Begin call that
// returns a Token and the request to send, and a Complete call that reconciles
// the response. Complete drops any response whose Token has been superseded, so
// a slow answer for a stale symbol, date range or strategy is never displayed.
//
// The core functionalities include:
//   - Catalog and Autocomplete: case insensitive substring search over the
//     tradable symbols, with an explicit press-before-blur ordering.
//   - Portfolio: positions with profit/loss derived at render time.
//   - AddPosition: validated, single-flight creation of a position.
//   - BacktestRunner: strategy specific payloads and an Idle/Pending/Success/Failed
//     state machine.
//   - SeriesViewer: parameter reactive price series reshaped into a chart.
package stockdash
