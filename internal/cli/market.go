package cli

import (
	"context"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"portfolio-sentinel/internal/models"
	"portfolio-sentinel/internal/tools"
	"portfolio-sentinel/pkg/utils"
)

const commandTimeout = 60 * time.Second

func newQuoteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "quote <symbol>",
		Short: "Get a stock quote",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			quote, err := app.Executor.StockQuote(ctx, strings.ToUpper(args[0]))
			if err != nil {
				output.Error("Failed to get quote: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(quote)
			}

			output.Header("%s  %s", quote.Symbol, utils.FormatUSD(quote.Price))
			output.Printf("Change:     %s (%s)\n", utils.FormatUSD(quote.Change), utils.FormatPercent(quote.ChangePercent))
			output.Printf("Prev close: %s\n", utils.FormatUSD(quote.PrevClose))
			output.Printf("Volume:     %d\n", quote.Volume)
			return nil
		},
	}
}

func newChainCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chain <symbol>",
		Short: "Display an option chain",
		Example: `  sentinel chain NVDA
  sentinel chain NVDA --expiration 2026-01-23 --type put`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			expiration, _ := cmd.Flags().GetString("expiration")
			optType, _ := cmd.Flags().GetString("type")
			deltaMin, _ := cmd.Flags().GetFloat64("delta-min")
			deltaMax, _ := cmd.Flags().GetFloat64("delta-max")
			minVolume, _ := cmd.Flags().GetInt64("min-volume")

			result, err := app.Executor.OptionChain(ctx, tools.ChainArgs{
				Symbol:     strings.ToUpper(args[0]),
				Expiration: expiration,
				OptionType: optType,
				DeltaMin:   deltaMin,
				DeltaMax:   deltaMax,
				MinVolume:  minVolume,
			})
			if err != nil {
				output.Error("Failed to get option chain: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			output.Header("%s  %s", result.Symbol, utils.FormatUSD(result.Price))
			if len(result.Expirations) > 0 {
				output.Println("Available expirations:")
				for _, exp := range result.Expirations {
					output.Printf("  %s\n", exp)
				}
				return nil
			}
			displayContracts(output, "CALLS", result.Calls)
			displayContracts(output, "PUTS", result.Puts)
			return nil
		},
	}

	cmd.Flags().String("expiration", "", "Expiration date (YYYY-MM-DD)")
	cmd.Flags().String("type", "", "Restrict to call or put")
	cmd.Flags().Float64("delta-min", 0, "Minimum absolute delta")
	cmd.Flags().Float64("delta-max", 0, "Maximum absolute delta")
	cmd.Flags().Int64("min-volume", 0, "Minimum daily volume")
	return cmd
}

func displayContracts(output *Output, label string, contracts []models.OptionContract) {
	if len(contracts) == 0 {
		return
	}
	output.Header("%s", label)
	output.Printf("%10s %10s %8s %10s %12s\n", "Strike", "Last", "Delta", "Volume", "OI")
	for _, c := range contracts {
		output.Printf("%10.2f %10.2f %8.3f %10d %12d\n",
			c.Strike, c.LastPrice, c.Delta, c.Volume, c.OpenInterest)
	}
}

func newCoveredCallCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "covered-call <symbol>",
		Short: "Find covered call candidates",
		Long: `Screen the call chain for covered call candidates ranked by closeness
to the target delta, ties broken by annualized return.`,
		Example: `  sentinel covered-call NVDA --shares 200
  sentinel covered-call AAPL --target-delta 0.25 --dte-min 30 --dte-max 60`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			shares, _ := cmd.Flags().GetInt("shares")
			targetDelta, _ := cmd.Flags().GetFloat64("target-delta")
			dteMin, _ := cmd.Flags().GetInt("dte-min")
			dteMax, _ := cmd.Flags().GetInt("dte-max")
			minPremium, _ := cmd.Flags().GetFloat64("min-premium")

			result, err := app.Executor.CoveredCalls(ctx, tools.CoveredCallArgs{
				Symbol:      strings.ToUpper(args[0]),
				Shares:      shares,
				TargetDelta: &targetDelta,
				DTEMin:      &dteMin,
				DTEMax:      &dteMax,
				MinPremium:  &minPremium,
			})
			if err != nil {
				output.Error("Screen failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			displayCandidates(output, result)
			return nil
		},
	}

	addScreenFlags(cmd, app)
	cmd.Flags().Int("shares", 100, "Shares owned")
	return cmd
}

// addScreenFlags registers the shared screening flags, defaulted from the
// ranker section of the config file.
func addScreenFlags(cmd *cobra.Command, app *App) {
	cmd.Flags().Float64("target-delta", app.Config.Ranker.TargetDelta, "Target delta")
	cmd.Flags().Int("dte-min", app.Config.Ranker.DTEMin, "Minimum days to expiration")
	cmd.Flags().Int("dte-max", app.Config.Ranker.DTEMax, "Maximum days to expiration")
	cmd.Flags().Float64("min-premium", app.Config.Ranker.MinPremium, "Minimum premium per contract ($)")
}

func newCashSecuredPutCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "csp <symbol>",
		Short: "Find cash-secured put candidates",
		Example: `  sentinel csp NVDA --cash 25000
  sentinel csp AAPL --cash 50000 --target-delta 0.30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			cash, _ := cmd.Flags().GetFloat64("cash")
			targetDelta, _ := cmd.Flags().GetFloat64("target-delta")
			dteMin, _ := cmd.Flags().GetInt("dte-min")
			dteMax, _ := cmd.Flags().GetInt("dte-max")
			minPremium, _ := cmd.Flags().GetFloat64("min-premium")

			result, err := app.Executor.CashSecuredPuts(ctx, tools.CashSecuredPutArgs{
				Symbol:        strings.ToUpper(args[0]),
				CashAvailable: cash,
				TargetDelta:   &targetDelta,
				DTEMin:        &dteMin,
				DTEMax:        &dteMax,
				MinPremium:    &minPremium,
			})
			if err != nil {
				output.Error("Screen failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}
			displayCandidates(output, result)
			return nil
		},
	}

	addScreenFlags(cmd, app)
	cmd.Flags().Float64("cash", 0, "Cash available for collateral ($)")
	return cmd
}

func displayCandidates(output *Output, result *tools.CandidateResult) {
	output.Header("%s  %s  target delta %.2f", result.Symbol, utils.FormatUSD(result.Price), result.TargetDelta)
	if len(result.Candidates) == 0 {
		output.Warn("No candidates passed the filters")
		return
	}
	output.Printf("%10s %12s %5s %8s %10s %10s %11s\n",
		"Strike", "Expiration", "DTE", "Delta", "Premium", "Ann.Ret", "Breakeven")
	for _, c := range result.Candidates {
		output.Printf("%10.2f %12s %5d %8.3f %10.2f %9.1f%% %11.2f\n",
			c.Contract.Strike,
			c.Contract.Expiration.Format("2006-01-02"),
			c.DaysToExpiration,
			c.Contract.Delta,
			c.PremiumAmount,
			c.AnnualizedReturn,
			c.BreakevenPrice)
	}
}

func newClockCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "clock",
		Short: "Show the current market session",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			clock := app.Executor.MarketTime()

			if output.IsJSON() {
				return output.JSON(clock)
			}

			output.Header("%s %s ET (%s)", clock.Date, clock.Time, clock.Weekday)
			if clock.Open {
				output.Success("Market is open (%s)", clock.Session)
			} else {
				output.Warn("Market is closed (%s)", clock.Session)
			}
			return nil
		},
	}
}
