package analyzer

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"portfolio-sentinel/internal/models"
)

func positionGen() gopter.Gen {
	symbols := gen.OneConstOf("NVDA", "AAPL", "VTI", "MMM", "TSLA")
	kinds := gen.IntRange(0, 2)

	return gopter.CombineGens(
		symbols, kinds,
		gen.Float64Range(-5, 5),     // quantity
		gen.Float64Range(1, 500),    // price / strike
		gen.Float64Range(-50, 5e4),  // market value
		gen.Float64Range(-60, 60),   // gain percent
		gen.Float64Range(-1, 1),     // delta
		gen.IntRange(0, 90),         // days to expiration
		gen.Bool(),                  // call vs put
	).Map(func(vals []interface{}) models.Position {
		symbol := vals[0].(string)
		kind := vals[1].(int)
		base := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

		switch kind {
		case 0:
			return models.Position{
				Symbol:      symbol,
				Quantity:    vals[2].(float64) * 40,
				Price:       vals[3].(float64),
				MarketValue: vals[4].(float64),
				GainPercent: vals[5].(float64),
				Type:        models.SecurityEquity,
			}
		case 1:
			optType := models.OptionPut
			delta := -1 * vals[6].(float64)
			if vals[8].(bool) {
				optType = models.OptionCall
				delta = vals[6].(float64)
			}
			exp := base.AddDate(0, 0, vals[7].(int))
			return models.Position{
				Symbol:      symbol + " " + exp.Format("01/02/2006") + " 100.00 C",
				Quantity:    vals[2].(float64),
				GainPercent: vals[5].(float64),
				Type:        models.SecurityOption,
				Underlying:  symbol,
				OptionType:  optType,
				Strike:      vals[3].(float64),
				Expiration:  exp,
				Delta:       delta,
			}
		default:
			return models.Position{
				Symbol:      "Cash & Cash Investments",
				Type:        models.SecurityCash,
				MarketValue: vals[4].(float64),
			}
		}
	})
}

// Property: analyzing the same positions twice yields identical reports, and
// the input slice is never mutated.
func TestProperty_AnalyzeIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("same input produces same report", prop.ForAll(
		func(positions []models.Position, skipped int) bool {
			asOf := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
			before := make([]models.Position, len(positions))
			copy(before, positions)

			a := New(DefaultConfig())
			first := a.Analyze(positions, skipped, asOf)
			second := a.Analyze(positions, skipped, asOf)

			if !reflect.DeepEqual(first, second) {
				return false
			}
			return reflect.DeepEqual(before, positions)
		},
		gen.SliceOf(positionGen()),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

// Property: every adjacent alert pair in a report satisfies the composite
// ordering: severity rank, then category rank, then symbol ascending
// case-insensitive, then |metric| descending.
func TestProperty_AlertOrderingIsTotal(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("alerts come out sorted", prop.ForAll(
		func(positions []models.Position, skipped int) bool {
			asOf := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
			report := New(DefaultConfig()).Analyze(positions, skipped, asOf)

			for i := 1; i < len(report.Alerts); i++ {
				a, b := report.Alerts[i-1], report.Alerts[i]
				if a.Severity.Rank() != b.Severity.Rank() {
					if a.Severity.Rank() > b.Severity.Rank() {
						return false
					}
					continue
				}
				if a.Category.Rank() != b.Category.Rank() {
					if a.Category.Rank() > b.Category.Rank() {
						return false
					}
					continue
				}
				sa, sb := strings.ToLower(a.Symbol), strings.ToLower(b.Symbol)
				if sa != sb {
					if sa > sb {
						return false
					}
					continue
				}
				if abs(a.Metric) < abs(b.Metric) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(positionGen()),
		gen.IntRange(0, 5),
	))

	properties.TestingRun(t)
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
