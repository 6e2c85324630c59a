package ranker

import (
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"portfolio-sentinel/internal/models"
)

func chainGen() gopter.Gen {
	contractGen := gopter.CombineGens(
		gen.Float64Range(10, 300),  // strike
		gen.Float64Range(0, 10),    // last price
		gen.Float64Range(-1, 1),    // delta
		gen.IntRange(0, 120),       // days to expiration
		gen.Bool(),                 // call vs put
	).Map(func(vals []interface{}) models.OptionContract {
		base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
		optType := models.OptionPut
		if vals[4].(bool) {
			optType = models.OptionCall
		}
		return models.OptionContract{
			Symbol:     "AAPL",
			Underlying: "AAPL",
			Type:       optType,
			Strike:     vals[0].(float64),
			Expiration: base.AddDate(0, 0, vals[3].(int)),
			LastPrice:  vals[1].(float64),
			Delta:      vals[2].(float64),
		}
	})
	return gen.SliceOf(contractGen)
}

// Property: for any chain, results are capped at MaxCandidates, every
// survivor passes every filter, and the ranking is monotone in
// (delta distance asc, annualized return desc).
func TestProperty_CandidatesFilteredAndRanked(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	asOf := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	properties.Property("put screening respects filters and order", prop.ForAll(
		func(chain []models.OptionContract, targetDelta, collateral, minPremium float64) bool {
			p := Params{
				Mode:        ModeCashSecuredPut,
				TargetDelta: targetDelta,
				DTEMin:      5,
				DTEMax:      60,
				MinPremium:  minPremium,
				Collateral:  collateral,
				AsOf:        asOf,
			}
			got, err := FindCandidates(chain, p)
			if err != nil {
				return false
			}
			if len(got) > MaxCandidates {
				return false
			}
			for i, c := range got {
				if c.Contract.Type != models.OptionPut {
					return false
				}
				if c.Contract.Strike*100 > collateral {
					return false
				}
				if c.DaysToExpiration < 5 || c.DaysToExpiration > 60 {
					return false
				}
				if c.PremiumAmount < minPremium {
					return false
				}
				if c.Contract.Delta == 0 {
					return false
				}
				if math.Abs(c.DeltaDistance-math.Abs(math.Abs(c.Contract.Delta)-targetDelta)) > 1e-9 {
					return false
				}
				if i > 0 {
					prev := got[i-1]
					if prev.DeltaDistance > c.DeltaDistance {
						return false
					}
					if prev.DeltaDistance == c.DeltaDistance && prev.AnnualizedReturn < c.AnnualizedReturn {
						return false
					}
				}
			}
			return true
		},
		chainGen(),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 50000),
		gen.Float64Range(0, 500),
	))

	properties.Property("covered call premium percent uses share price", prop.ForAll(
		func(chain []models.OptionContract, underlying float64) bool {
			p := Params{
				Mode:            ModeCoveredCall,
				TargetDelta:     0.2,
				DTEMin:          5,
				DTEMax:          60,
				UnderlyingPrice: underlying,
				Shares:          200,
				AsOf:            asOf,
			}
			got, err := FindCandidates(chain, p)
			if err != nil {
				return false
			}
			for _, c := range got {
				if c.Contract.Type != models.OptionCall {
					return false
				}
				want := c.PremiumAmount / (underlying * 100) * 100
				if math.Abs(c.PremiumPercent-want) > 1e-9 {
					return false
				}
				if math.Abs(c.BreakevenPrice-(c.Contract.Strike+c.Contract.LastPrice)) > 1e-9 {
					return false
				}
			}
			return true
		},
		chainGen(),
		gen.Float64Range(1, 500),
	))

	properties.TestingRun(t)
}
