package cli

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

func newContextCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Read or update the persistent portfolio context document",
		Long: `The context document carries strategy, holdings thesis, and lessons
learned across sessions. Sections are named markdown blocks.`,
	}

	cmd.AddCommand(newContextGetCmd(app))
	cmd.AddCommand(newContextSetCmd(app))
	return cmd
}

func newContextGetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get [section]",
		Short: "Read the context document or one section",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			section := ""
			if len(args) == 1 {
				section = args[0]
			}

			result, err := app.Executor.PortfolioContext(ctx, section)
			if err != nil {
				output.Error("Failed to read context: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(result)
			}

			if len(result.Sections) == 0 {
				output.Warn("Context document is empty")
				return nil
			}
			for _, sec := range result.Sections {
				output.Header("## %s (v%d, %s)", sec.Name, sec.Version, sec.UpdatedAt.Format("2006-01-02"))
				output.Printf("%s\n\n", sec.Content)
			}
			return nil
		},
	}
}

func newContextSetCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set <section> [content]",
		Short: "Update a section of the context document",
		Long: `Update a section. Content is taken from the argument, or from stdin
when the argument is omitted.`,
		Example: `  sentinel context set "Lessons Learned" "Rolled NVDA calls too early."
  cat thesis.md | sentinel context set "Current Holdings & Thesis"
  sentinel context set "Open Questions" "Check AAPL IV rank" --mode append`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
			defer cancel()

			var content string
			if len(args) == 2 {
				content = args[1]
			} else {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					output.Error("Failed to read stdin: %v", err)
					return err
				}
				content = strings.TrimSpace(string(data))
			}

			mode, _ := cmd.Flags().GetString("mode")

			sec, err := app.Executor.UpdatePortfolioContext(ctx, args[0], content, mode)
			if err != nil {
				output.Error("Failed to update context: %v", err)
				return err
			}

			if output.IsJSON() {
				return output.JSON(sec)
			}
			output.Success("Updated %q (v%d)", sec.Name, sec.Version)
			return nil
		},
	}

	cmd.Flags().String("mode", "replace", "Update mode: replace, append, or prepend")
	return cmd
}
