package models

import "time"

// OptionContract represents one option chain entry sourced from the market
// data gateway. Treated as read-only external data.
type OptionContract struct {
	Symbol            string     `json:"symbol,omitempty"`
	Underlying        string     `json:"underlying"`
	Type              OptionType `json:"type"`
	Strike            float64    `json:"strike"`
	Expiration        time.Time  `json:"expiration"`
	LastPrice         float64    `json:"last"`
	ImpliedVolatility float64    `json:"iv,omitempty"`
	Delta             float64    `json:"delta"` // signed, -1.0..1.0
	Volume            int64      `json:"volume"`
	OpenInterest      int64      `json:"open_interest"`
}

// DaysToExpiration returns calendar days from asOf to contract expiration.
func (c OptionContract) DaysToExpiration(asOf time.Time) int {
	return DaysBetween(asOf, c.Expiration)
}

// TradeCandidate is one ranked covered-call or cash-secured-put candidate.
type TradeCandidate struct {
	Contract         OptionContract `json:"contract"`
	DaysToExpiration int            `json:"dte"`
	PremiumAmount    float64        `json:"premium"`
	PremiumPercent   float64        `json:"premium_pct"`
	AnnualizedReturn float64        `json:"annualized_return"`
	BreakevenPrice   float64        `json:"breakeven"`
	DeltaDistance    float64        `json:"delta_distance"`
}

// ResearchPrompt is a follow-up research topic derived from an alert.
type ResearchPrompt struct {
	Category AlertCategory `json:"category"`
	Symbol   string        `json:"symbol,omitempty"`
	Priority Severity      `json:"priority"`
	Topic    string        `json:"topic"`
	Prompt   string        `json:"prompt"`
	Context  string        `json:"context"`
}
