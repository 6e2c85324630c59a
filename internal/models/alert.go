package models

import "time"

// Severity represents alert severity, ordered CRITICAL > WARNING > INFO.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityWarning  Severity = "WARNING"
	SeverityInfo     Severity = "INFO"
)

// Rank returns the sort rank of the severity. Lower ranks sort first.
func (s Severity) Rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityWarning:
		return 1
	case SeverityInfo:
		return 2
	default:
		return 3
	}
}

// AlertCategory classifies a derived portfolio finding. The declaration
// order below is the tie-break order used when sorting alerts.
type AlertCategory string

const (
	CategoryITMAssignment AlertCategory = "ITM_ASSIGNMENT"
	CategoryCashShortage  AlertCategory = "CASH_SHORTAGE"
	CategoryHighDelta     AlertCategory = "HIGH_DELTA"
	CategoryExpiringSoon  AlertCategory = "EXPIRING_SOON"
	CategoryLargeLoss     AlertCategory = "LARGE_LOSS"
	CategoryNakedOption   AlertCategory = "NAKED_OPTION"
	CategorySkippedRows   AlertCategory = "SKIPPED_ROWS"
)

// categoryOrder fixes the relative order of categories within a severity.
var categoryOrder = map[AlertCategory]int{
	CategoryITMAssignment: 0,
	CategoryCashShortage:  1,
	CategoryHighDelta:     2,
	CategoryExpiringSoon:  3,
	CategoryLargeLoss:     4,
	CategoryNakedOption:   5,
	CategorySkippedRows:   6,
}

// Rank returns the sort rank of the category.
func (c AlertCategory) Rank() int {
	if r, ok := categoryOrder[c]; ok {
		return r
	}
	return len(categoryOrder)
}

// Alert represents a prioritized finding derived from a position set.
// Alerts are pure functions of the positions plus the evaluation timestamp;
// they are never mutated after creation.
type Alert struct {
	Severity Severity      `json:"severity"`
	Category AlertCategory `json:"category"`
	Symbol   string        `json:"symbol,omitempty"`
	Message  string        `json:"message"`
	Metric   float64       `json:"metric,omitempty"`
}

// Summary aggregates a parsed position set.
type Summary struct {
	TotalValue    float64                 `json:"total_value"`
	Cash          float64                 `json:"cash"`
	Counts        map[SecurityType]int    `json:"counts"`
	Concentration float64                 `json:"concentration"` // largest position value / total value
	TopSymbol     string                  `json:"top_symbol,omitempty"`
}

// AnalysisReport is the result of one portfolio analysis call.
type AnalysisReport struct {
	AsOf        time.Time `json:"as_of"`
	Alerts      []Alert   `json:"alerts"`
	Summary     Summary   `json:"summary"`
	SkippedRows int       `json:"skipped_rows,omitempty"`
}
