// Package analyzer derives prioritized risk alerts from a position set.
package analyzer

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"portfolio-sentinel/internal/models"
	"portfolio-sentinel/pkg/utils"
)

// Config holds analyzer thresholds.
type Config struct {
	// HighDeltaThreshold flags option positions with |delta| above it.
	HighDeltaThreshold float64
	// ExpiryWindowDays flags options expiring within this many calendar days.
	ExpiryWindowDays int
	// LossThresholdPercent flags positions with gain percent at or below it.
	LossThresholdPercent float64
}

// DefaultConfig returns the default analyzer thresholds.
func DefaultConfig() Config {
	return Config{
		HighDeltaThreshold:   0.5,
		ExpiryWindowDays:     7,
		LossThresholdPercent: -10.0,
	}
}

// Analyzer turns positions into prioritized alerts and a summary. It holds
// no mutable state; concurrent Analyze calls on independent inputs are safe.
type Analyzer struct {
	cfg Config
}

// New creates an Analyzer with the given thresholds. The config is taken
// verbatim: a zero threshold is an explicit choice, not a request for the
// defaults. Start from DefaultConfig to get the usual values.
func New(cfg Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Analyze evaluates every rule against the position set as of the given
// timestamp. skipped is the count of malformed rows dropped during
// ingestion; when positive it is recorded as an INFO alert. The returned
// alert ordering is deterministic and total.
func (a *Analyzer) Analyze(positions []models.Position, skipped int, asOf time.Time) *models.AnalysisReport {
	var alerts []models.Alert

	equityShares, equityPrice := indexEquities(positions)

	alerts = append(alerts, a.checkITMAssignment(positions, equityPrice)...)
	alerts = append(alerts, a.checkCashShortage(positions)...)
	alerts = append(alerts, a.checkHighDelta(positions)...)
	alerts = append(alerts, a.checkExpiringSoon(positions, asOf)...)
	alerts = append(alerts, a.checkLargeLoss(positions)...)
	alerts = append(alerts, a.checkNakedOptions(positions, equityShares)...)

	if skipped > 0 {
		alerts = append(alerts, models.Alert{
			Severity: models.SeverityInfo,
			Category: models.CategorySkippedRows,
			Message:  fmt.Sprintf("%d malformed row(s) skipped during parsing", skipped),
			Metric:   float64(skipped),
		})
	}

	sortAlerts(alerts)

	return &models.AnalysisReport{
		AsOf:        asOf,
		Alerts:      alerts,
		Summary:     summarize(positions),
		SkippedRows: skipped,
	}
}

// indexEquities builds per-symbol long share counts and last prices.
func indexEquities(positions []models.Position) (shares map[string]float64, price map[string]float64) {
	shares = make(map[string]float64)
	price = make(map[string]float64)
	for _, p := range positions {
		if p.Type != models.SecurityEquity {
			continue
		}
		if p.Quantity > 0 {
			shares[p.Symbol] += p.Quantity
		}
		price[p.Symbol] = p.Price
	}
	return shares, price
}

func (a *Analyzer) checkITMAssignment(positions []models.Position, equityPrice map[string]float64) []models.Alert {
	var alerts []models.Alert
	for _, p := range positions {
		if p.Type != models.SecurityOption || !p.IsShort() {
			continue
		}
		underlying, ok := equityPrice[p.Underlying]
		if !ok {
			continue // no held underlying to price against
		}
		itm := (p.OptionType == models.OptionCall && underlying >= p.Strike) ||
			(p.OptionType == models.OptionPut && underlying <= p.Strike)
		if !itm {
			continue
		}
		alerts = append(alerts, models.Alert{
			Severity: models.SeverityCritical,
			Category: models.CategoryITMAssignment,
			Symbol:   p.Underlying,
			Message: fmt.Sprintf("Short %s $%.2f is ITM (%s at $%.2f)",
				p.OptionType, p.Strike, p.Underlying, underlying),
			Metric: math.Abs(underlying - p.Strike),
		})
	}
	return alerts
}

func (a *Analyzer) checkCashShortage(positions []models.Position) []models.Alert {
	var required, cash float64
	for _, p := range positions {
		switch {
		case p.Type == models.SecurityCash:
			cash += p.MarketValue
		case p.Type == models.SecurityOption && p.IsShort() && p.OptionType == models.OptionPut:
			required += p.Strike * 100 * p.Contracts()
		}
	}
	if required <= cash {
		return nil
	}
	shortfall := required - cash
	return []models.Alert{{
		Severity: models.SeverityCritical,
		Category: models.CategoryCashShortage,
		Message: fmt.Sprintf("Short puts require %s cash but only %s available (%s short)",
			utils.FormatUSD(required), utils.FormatUSD(cash), utils.FormatUSD(shortfall)),
		Metric: shortfall,
	}}
}

func (a *Analyzer) checkHighDelta(positions []models.Position) []models.Alert {
	var alerts []models.Alert
	for _, p := range positions {
		if p.Type != models.SecurityOption {
			continue
		}
		if math.Abs(p.Delta) <= a.cfg.HighDeltaThreshold {
			continue
		}
		alerts = append(alerts, models.Alert{
			Severity: models.SeverityWarning,
			Category: models.CategoryHighDelta,
			Symbol:   p.Underlying,
			Message: fmt.Sprintf("High delta %.2f on %s $%.2f %s",
				p.Delta, p.Underlying, p.Strike, p.OptionType),
			Metric: math.Abs(p.Delta),
		})
	}
	return alerts
}

func (a *Analyzer) checkExpiringSoon(positions []models.Position, asOf time.Time) []models.Alert {
	var alerts []models.Alert
	for _, p := range positions {
		if p.Type != models.SecurityOption {
			continue
		}
		dte := p.DaysToExpiration(asOf)
		if dte > a.cfg.ExpiryWindowDays {
			continue
		}
		alerts = append(alerts, models.Alert{
			Severity: models.SeverityWarning,
			Category: models.CategoryExpiringSoon,
			Symbol:   p.Underlying,
			Message: fmt.Sprintf("%s $%.2f %s expires in %dd",
				p.Underlying, p.Strike, p.OptionType, dte),
			Metric: float64(dte),
		})
	}
	return alerts
}

func (a *Analyzer) checkLargeLoss(positions []models.Position) []models.Alert {
	var alerts []models.Alert
	for _, p := range positions {
		if p.Type == models.SecurityCash {
			continue
		}
		if p.GainPercent > a.cfg.LossThresholdPercent {
			continue
		}
		symbol := p.Symbol
		if p.Type == models.SecurityOption {
			symbol = p.Underlying
		}
		alerts = append(alerts, models.Alert{
			Severity: models.SeverityWarning,
			Category: models.CategoryLargeLoss,
			Symbol:   symbol,
			Message:  fmt.Sprintf("%s down %.1f%%", symbol, math.Abs(p.GainPercent)),
			Metric:   p.GainPercent,
		})
	}
	return alerts
}

func (a *Analyzer) checkNakedOptions(positions []models.Position, equityShares map[string]float64) []models.Alert {
	var alerts []models.Alert
	for _, p := range positions {
		if p.Type != models.SecurityOption || !p.IsShort() {
			continue
		}
		naked := false
		switch p.OptionType {
		case models.OptionCall:
			naked = equityShares[p.Underlying] < 100*p.Contracts()
		case models.OptionPut:
			// Cash coverage cannot be verified from position rows, so
			// short puts always warn.
			naked = true
		}
		if !naked {
			continue
		}
		alerts = append(alerts, models.Alert{
			Severity: models.SeverityWarning,
			Category: models.CategoryNakedOption,
			Symbol:   p.Underlying,
			Message: fmt.Sprintf("Short %s $%.2f on %s not covered by held shares",
				p.OptionType, p.Strike, p.Underlying),
			Metric: p.Contracts(),
		})
	}
	return alerts
}

// sortAlerts applies the composite ordering: severity, category declaration
// order, symbol ascending case-insensitive, |metric| descending. The sort is
// stable so the ordering is total and reproducible.
func sortAlerts(alerts []models.Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		a, b := alerts[i], alerts[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() < b.Severity.Rank()
		}
		if a.Category.Rank() != b.Category.Rank() {
			return a.Category.Rank() < b.Category.Rank()
		}
		as, bs := strings.ToLower(a.Symbol), strings.ToLower(b.Symbol)
		if as != bs {
			return as < bs
		}
		return math.Abs(a.Metric) > math.Abs(b.Metric)
	})
}

func summarize(positions []models.Position) models.Summary {
	s := models.Summary{
		Counts: make(map[models.SecurityType]int),
	}

	var largest float64
	for _, p := range positions {
		s.Counts[p.Type]++
		s.TotalValue += p.MarketValue
		if p.Type == models.SecurityCash {
			s.Cash += p.MarketValue
		}
		if v := math.Abs(p.MarketValue); v > largest {
			largest = v
			s.TopSymbol = p.Symbol
		}
	}
	if s.TotalValue != 0 {
		s.Concentration = largest / math.Abs(s.TotalValue)
	}
	return s
}
