// Package tools exposes portfolio analysis operations as host-registerable
// tool definitions with a dispatching executor.
package tools

import (
	"encoding/json"

	"github.com/sashabaranov/go-openai"
)

// Definitions returns all tool definitions in function-calling form, ready
// for a transport host to register.
func Definitions() []openai.Tool {
	return []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_market_time",
				Description: "Get current NYC market time and trading session status. Call this first to establish temporal context.",
				Parameters:  json.RawMessage(`{"type": "object", "properties": {}}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "analyze_portfolio",
				Description: "Analyze a Schwab portfolio CSV export and return prioritized risk alerts and a summary.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"csv_content": {
							"type": "string",
							"description": "Full content of a Schwab positions CSV export"
						}
					},
					"required": ["csv_content"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "generate_research_prompts",
				Description: "Generate follow-up research prompts from portfolio alerts. Run after analyze_portfolio.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"csv_content": {
							"type": "string",
							"description": "Full content of a Schwab positions CSV export"
						}
					},
					"required": ["csv_content"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_stock_quote",
				Description: "Get the current quote and key statistics for a stock symbol.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Stock ticker symbol (e.g., NVDA, AAPL)"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_option_chain",
				Description: "Fetch the option chain for a symbol with optional expiration, type, delta, and volume filters.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Stock ticker symbol"
						},
						"expiration": {
							"type": "string",
							"description": "Expiration date (YYYY-MM-DD). If omitted, returns available dates."
						},
						"option_type": {
							"type": "string",
							"enum": ["call", "put"],
							"description": "Restrict to calls or puts"
						},
						"delta_min": {
							"type": "number",
							"description": "Minimum absolute delta"
						},
						"delta_max": {
							"type": "number",
							"description": "Maximum absolute delta"
						},
						"min_volume": {
							"type": "integer",
							"description": "Minimum daily volume"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "find_covered_call",
				Description: "Find covered call candidates for an owned stock position, ranked by closeness to the target delta.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Stock ticker symbol"
						},
						"shares": {
							"type": "integer",
							"description": "Shares owned (default 100)",
							"default": 100
						},
						"target_delta": {
							"type": "number",
							"description": "Target delta for the short call (default 0.20)",
							"default": 0.20
						},
						"dte_min": {
							"type": "integer",
							"description": "Minimum days to expiration (default 20)",
							"default": 20
						},
						"dte_max": {
							"type": "integer",
							"description": "Maximum days to expiration (default 45)",
							"default": 45
						},
						"min_premium": {
							"type": "number",
							"description": "Minimum premium per contract in dollars"
						}
					},
					"required": ["symbol"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "find_cash_secured_put",
				Description: "Find cash-secured put candidates affordable with the available cash, ranked by closeness to the target delta.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"symbol": {
							"type": "string",
							"description": "Stock ticker symbol"
						},
						"cash_available": {
							"type": "number",
							"description": "Cash available for securing puts"
						},
						"target_delta": {
							"type": "number",
							"description": "Target delta for the short put (default 0.20)",
							"default": 0.20
						},
						"dte_min": {
							"type": "integer",
							"description": "Minimum days to expiration (default 20)",
							"default": 20
						},
						"dte_max": {
							"type": "integer",
							"description": "Maximum days to expiration (default 45)",
							"default": 45
						},
						"min_premium": {
							"type": "number",
							"description": "Minimum premium per contract in dollars"
						}
					},
					"required": ["symbol", "cash_available"]
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "get_portfolio_context",
				Description: "Read the persistent portfolio context document (strategy, thesis, lessons learned).",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"section": {
							"type": "string",
							"description": "Section name. If omitted, returns all sections."
						}
					}
				}`),
			},
		},
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        "update_portfolio_context",
				Description: "Update a section of the persistent portfolio context document.",
				Parameters: json.RawMessage(`{
					"type": "object",
					"properties": {
						"section": {
							"type": "string",
							"description": "Section name to update"
						},
						"content": {
							"type": "string",
							"description": "New content (markdown supported)"
						},
						"mode": {
							"type": "string",
							"enum": ["replace", "append", "prepend"],
							"description": "How to apply the update (default replace)",
							"default": "replace"
						}
					},
					"required": ["section", "content"]
				}`),
			},
		},
	}
}
