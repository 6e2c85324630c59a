// Package research derives follow-up research topics from portfolio alerts.
package research

import (
	"fmt"

	"portfolio-sentinel/internal/models"
)

// topicForCategory maps alert categories to research topics.
var topicForCategory = map[models.AlertCategory]string{
	models.CategoryITMAssignment: "assignment_risk",
	models.CategoryCashShortage:  "cash_management",
	models.CategoryHighDelta:     "delta_risk",
	models.CategoryExpiringSoon:  "expiration_decision",
	models.CategoryLargeLoss:     "thesis_review",
	models.CategoryNakedOption:   "coverage_review",
}

// GeneratePrompts turns an ordered alert sequence into research prompts.
// One prompt is produced per distinct (category, symbol) pair, in first-
// occurrence order; duplicate pairs collapse to the highest-severity
// occurrence. Pure function of its input.
func GeneratePrompts(alerts []models.Alert) []models.ResearchPrompt {
	type key struct {
		category models.AlertCategory
		symbol   string
	}

	var order []key
	best := make(map[key]models.Alert)

	for _, alert := range alerts {
		topic, ok := topicForCategory[alert.Category]
		if !ok || topic == "" {
			continue // bookkeeping alerts carry no research topic
		}
		k := key{alert.Category, alert.Symbol}
		prev, seen := best[k]
		if !seen {
			order = append(order, k)
			best[k] = alert
			continue
		}
		if alert.Severity.Rank() < prev.Severity.Rank() {
			best[k] = alert
		}
	}

	prompts := make([]models.ResearchPrompt, 0, len(order))
	for _, k := range order {
		alert := best[k]
		prompts = append(prompts, models.ResearchPrompt{
			Category: alert.Category,
			Symbol:   alert.Symbol,
			Priority: alert.Severity,
			Topic:    topicForCategory[alert.Category],
			Prompt:   promptBody(alert),
			Context:  alert.Message,
		})
	}
	return prompts
}

func promptBody(a models.Alert) string {
	switch a.Category {
	case models.CategoryITMAssignment:
		return fmt.Sprintf(`Research %s assignment risk and near-term outlook:
- Current stock price vs option strike
- Upcoming earnings, dividends, or catalysts
- Technical support/resistance levels
- Should I roll, close, or accept assignment?`, a.Symbol)
	case models.CategoryCashShortage:
		return `Research short put assignment timing:
- When do brokers typically exercise ITM puts?
- Market conditions affecting early assignment
- Cash management strategies for wheel traders`
	case models.CategoryHighDelta:
		return fmt.Sprintf(`Research %s short-term price action:
- Current IV rank and IV percentile
- Analyst price targets and recent ratings changes
- Technical momentum indicators
- Roll candidates: same strike further out, or lower strike?`, a.Symbol)
	case models.CategoryExpiringSoon:
		return fmt.Sprintf(`Research %s for expiration decision:
- Current implied volatility vs historical
- Any news or events before expiration
- Roll vs let expire analysis
- If rolling: optimal DTE and strike selection`, a.Symbol)
	case models.CategoryLargeLoss:
		return fmt.Sprintf(`Research %s thesis review:
- What caused the decline?
- Is the original investment thesis still valid?
- Analyst consensus and price targets
- Tax-loss harvesting considerations`, a.Symbol)
	case models.CategoryNakedOption:
		return fmt.Sprintf(`Research %s option coverage:
- Shares or cash needed to cover the short position
- Margin requirement if left uncovered
- Roll or close alternatives to reduce exposure`, a.Symbol)
	default:
		return a.Message
	}
}
