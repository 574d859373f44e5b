package agent

import (
	"fmt"
	"strings"

	"github.com/etnz/stockdash/renderer"
	"google.golang.org/genai"
)

const model = "gemini-2.5-pro"

func newFacilitator(experts ...*Expert) *Expert {
	return &Expert{
		Name:      "Facilitator",
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(experts)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			As a facilitator you are in charge of the conversation and of solving the user's request.

			Learn about the expert's skill that you can get from the Tools to ask them questions.
			They keep context of your previous questions.

			The user follows a handful of stock positions and runs backtests of trading strategies on them.
			Devise a plan of questions to ask to each expert and come up with the best response to the user's request.

			The user will assume that you know about their positions, ask the Analyst first to learn what they are.
		`}}},
		},
		Library: NewLibrary(experts),
	}
}

// NewAnalyst returns the expert reading the dashboard backend.
func NewAnalyst(backend Backend, currency string) *Expert {
	lib := Tools(backend, currency)
	return &Expert{
		Name: "Analyst",
		Description: `This is the Analyst. They read the user's portfolio, the stock prices and the backtest history,
		and they can run new backtests of the Bollinger Bands or moving average crossover strategies.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{FunctionDeclarations: NewDeclaration(lib)},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
				You are a quantitative analyst in charge of the user's stock dashboard.
				Use the Tools to get facts: positions and their profit or loss, close prices, past and new backtests.
				Never make up a figure, quote the tools.
				When you run a backtest, explain the metrics: total and annual return, Sharpe ratio, win rate and profit factor.
			`}}},
		},
		Library: NewLibrary(lib),
	}
}

// NewTrader returns the expert grounded on Google Search.
func NewTrader() *Expert {
	return &Expert{
		Name: "Trader",
		Description: `This is an expert trader, aware of the latest news about companies and markets.
		Ask the Trader whenever you need recent or grounding information.`,
		ModelName: model,
		Config: &genai.GenerateContentConfig{
			Tools: []*genai.Tool{
				{GoogleSearch: &genai.GoogleSearch{}},
			},
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: `
			You are an expert in trading. You can search and find about anything related to
			companies, markets and indices. You leverage Google Search to ground your assertions.
			You know how to relate the latest news to the user's request.
			`}}},
		},
	}
}

// BacktestBrief returns the question asking to comment the backtest shown by v.
func BacktestBrief(v renderer.BacktestView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Comment this %s backtest for me. Is the strategy worth it on this stock and period?\n\n", v.Strategy().Title())
	b.WriteString(renderer.BacktestMarkdown(v))
	return b.String()
}
