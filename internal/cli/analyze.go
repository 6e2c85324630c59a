package cli

import (
	"os"

	"github.com/spf13/cobra"

	"portfolio-sentinel/internal/models"
	"portfolio-sentinel/pkg/utils"
)

func newAnalyzeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <positions.csv>",
		Short: "Analyze a Schwab portfolio export",
		Long: `Analyze a Schwab positions CSV export and print prioritized alerts.

Malformed rows are skipped and reported; analysis continues for the
remaining rows.`,
		Example: `  sentinel analyze positions.csv
  sentinel analyze positions.csv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			csvText, err := os.ReadFile(args[0])
			if err != nil {
				output.Error("Failed to read %s: %v", args[0], err)
				return err
			}

			report, err := app.Executor.AnalyzePortfolio(string(csvText))
			if err != nil {
				output.Error("Analysis failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(report)
			}

			displayReport(output, report)
			return nil
		},
	}
	return cmd
}

func newPromptsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prompts <positions.csv>",
		Short: "Generate research prompts from portfolio alerts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			csvText, err := os.ReadFile(args[0])
			if err != nil {
				output.Error("Failed to read %s: %v", args[0], err)
				return err
			}

			prompts, err := app.Executor.ResearchPrompts(string(csvText))
			if err != nil {
				output.Error("Prompt generation failed: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(prompts)
			}

			if len(prompts) == 0 {
				output.Success("No research topics; portfolio is quiet")
				return nil
			}
			for i, p := range prompts {
				output.Header("%d. [%s] %s %s", i+1, p.Priority, p.Topic, p.Symbol)
				output.Printf("%s\n\n", p.Prompt)
			}
			return nil
		},
	}
	return cmd
}

func displayReport(output *Output, report *models.AnalysisReport) {
	output.Header("Portfolio Analysis  %s", report.AsOf.Format("2006-01-02"))
	output.Println()

	if len(report.Alerts) == 0 {
		output.Success("No immediate alerts")
	}
	for _, alert := range report.Alerts {
		line := "[" + string(alert.Severity) + "] " + string(alert.Category) + ": " + alert.Message
		switch alert.Severity {
		case models.SeverityCritical:
			output.Error("%s", line)
		case models.SeverityWarning:
			output.Warn("%s", line)
		default:
			output.Printf("%s\n", line)
		}
	}

	output.Println()
	s := report.Summary
	output.Printf("Total value:    %s\n", utils.FormatUSD(s.TotalValue))
	output.Printf("Cash:           %s\n", utils.FormatUSD(s.Cash))
	output.Printf("Positions:      %d equity, %d option, %d cash\n",
		s.Counts[models.SecurityEquity], s.Counts[models.SecurityOption], s.Counts[models.SecurityCash])
	if s.TopSymbol != "" {
		output.Printf("Concentration:  %.1f%% in %s\n", s.Concentration*100, s.TopSymbol)
	}
	if report.SkippedRows > 0 {
		output.Warn("Skipped %d malformed row(s)", report.SkippedRows)
	}
}
