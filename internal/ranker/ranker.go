// Package ranker filters and ranks option chains into trade candidates.
package ranker

import (
	"math"
	"sort"
	"time"

	"portfolio-sentinel/internal/errors"
	"portfolio-sentinel/internal/models"
)

// Mode selects the income strategy being screened for.
type Mode string

const (
	ModeCoveredCall    Mode = "COVERED_CALL"
	ModeCashSecuredPut Mode = "CASH_SECURED_PUT"
)

// MaxCandidates caps the number of returned candidates.
const MaxCandidates = 10

// Params holds the screening parameters for one FindCandidates call.
type Params struct {
	Mode        Mode
	TargetDelta float64 // absolute, in [0,1]
	DTEMin      int
	DTEMax      int
	MinPremium  float64 // minimum premium per contract, in dollars

	// UnderlyingPrice is the current share price; used for covered-call
	// premium percent and for both breakeven sanity.
	UnderlyingPrice float64

	// Shares owned, for covered calls. One contract needs 100 shares.
	Shares int

	// Collateral available, for cash-secured puts.
	Collateral float64

	// AsOf anchors days-to-expiration; zero means time.Now().
	AsOf time.Time
}

// FindCandidates filters the chain and ranks survivors by closeness to the
// target delta, breaking ties by annualized return descending. Returns at
// most MaxCandidates entries. An empty result is valid, not an error.
func FindCandidates(chain []models.OptionContract, p Params) ([]models.TradeCandidate, error) {
	if err := validate(p); err != nil {
		return nil, err
	}

	asOf := p.AsOf
	if asOf.IsZero() {
		asOf = time.Now()
	}

	candidates := make([]models.TradeCandidate, 0, len(chain))
	for _, c := range chain {
		dte := c.DaysToExpiration(asOf)
		if !passesFilters(c, p, dte) {
			continue
		}
		candidates = append(candidates, build(c, p, dte))
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].DeltaDistance != candidates[j].DeltaDistance {
			return candidates[i].DeltaDistance < candidates[j].DeltaDistance
		}
		return candidates[i].AnnualizedReturn > candidates[j].AnnualizedReturn
	})

	if len(candidates) > MaxCandidates {
		candidates = candidates[:MaxCandidates]
	}
	return candidates, nil
}

func validate(p Params) error {
	switch p.Mode {
	case ModeCoveredCall, ModeCashSecuredPut:
	default:
		return errors.NewParameterError("mode", string(p.Mode), "must be COVERED_CALL or CASH_SECURED_PUT")
	}
	if p.TargetDelta < 0 || p.TargetDelta > 1 {
		return errors.NewParameterError("target_delta", p.TargetDelta, "must be in [0,1]")
	}
	if p.DTEMin > p.DTEMax {
		return errors.NewParameterError("dte_min", p.DTEMin, "must not exceed dte_max")
	}
	if p.Mode == ModeCoveredCall && p.UnderlyingPrice <= 0 {
		return errors.NewParameterError("underlying_price", p.UnderlyingPrice, "must be positive for covered calls")
	}
	return nil
}

func passesFilters(c models.OptionContract, p Params, dte int) bool {
	switch p.Mode {
	case ModeCoveredCall:
		if c.Type != models.OptionCall {
			return false
		}
		// One contract sold against every 100 shares owned.
		if p.Shares < 100 {
			return false
		}
	case ModeCashSecuredPut:
		if c.Type != models.OptionPut {
			return false
		}
		if c.Strike*100 > p.Collateral {
			return false
		}
	}

	if dte < p.DTEMin || dte > p.DTEMax {
		return false
	}
	if c.LastPrice*100 < p.MinPremium {
		return false
	}
	// Zero delta signals stale or unpriced chain data.
	if c.Delta == 0 {
		return false
	}
	return true
}

func build(c models.OptionContract, p Params, dte int) models.TradeCandidate {
	premium := c.LastPrice * 100

	var premiumPct, breakeven float64
	if c.Type == models.OptionPut {
		premiumPct = premium / (c.Strike * 100) * 100
		breakeven = c.Strike - c.LastPrice
	} else {
		premiumPct = premium / (p.UnderlyingPrice * 100) * 100
		breakeven = c.Strike + c.LastPrice
	}

	// Floor DTE at 1 so same-day expirations do not blow up the
	// annualization.
	annualDays := dte
	if annualDays < 1 {
		annualDays = 1
	}
	annualized := premiumPct * (365.0 / float64(annualDays))

	return models.TradeCandidate{
		Contract:         c,
		DaysToExpiration: dte,
		PremiumAmount:    premium,
		PremiumPercent:   premiumPct,
		AnnualizedReturn: annualized,
		BreakevenPrice:   breakeven,
		DeltaDistance:    math.Abs(math.Abs(c.Delta) - p.TargetDelta),
	}
}
