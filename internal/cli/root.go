package cli

import (
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"portfolio-sentinel/internal/analyzer"
	"portfolio-sentinel/internal/config"
	"portfolio-sentinel/internal/gateway"
	"portfolio-sentinel/internal/logging"
	"portfolio-sentinel/internal/store"
	"portfolio-sentinel/internal/tools"
	"portfolio-sentinel/pkg/utils"
)

// Version information
const (
	Version = "0.1.0"
)

// App holds the application dependencies.
type App struct {
	Config   *config.Config
	Logger   zerolog.Logger
	Gateway  gateway.Gateway
	Store    store.ContextStore
	Executor *tools.Executor
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	app.Gateway = gateway.NewPolygonClient(gateway.PolygonConfig{
		APIKey:  cfg.Polygon.APIKey,
		BaseURL: cfg.Polygon.BaseURL,
		Timeout: time.Duration(cfg.Polygon.TimeoutSeconds) * time.Second,
		Retry:   utils.DefaultRetryConfig(),
	}, logger)

	a := analyzer.New(analyzer.Config{
		HighDeltaThreshold:   cfg.Analysis.HighDeltaThreshold,
		ExpiryWindowDays:     cfg.Analysis.ExpiryWindowDays,
		LossThresholdPercent: cfg.Analysis.LossThresholdPercent,
	})

	opts := []tools.Option{
		tools.WithScreenDefaults(tools.ScreenDefaults{
			TargetDelta: cfg.Ranker.TargetDelta,
			DTEMin:      cfg.Ranker.DTEMin,
			DTEMax:      cfg.Ranker.DTEMax,
			MinPremium:  cfg.Ranker.MinPremium,
		}),
	}
	if cfg.Store.Path != "" {
		if cs, err := store.NewSQLiteStore(cfg.Store.Path); err != nil {
			logger.Warn().Err(err).Msg("context store unavailable")
		} else {
			app.Store = cs
			opts = append(opts, tools.WithContextStore(cs))
		}
	}
	app.Executor = tools.NewExecutor(app.Gateway, a, logger, opts...)

	rootCmd := &cobra.Command{
		Use:   "sentinel",
		Short: "Portfolio risk analysis for Schwab accounts",
		Long: `sentinel analyzes Charles Schwab portfolio exports for assignment risk,
cash coverage, expiring options, and oversized losses, and screens option
chains for covered call and cash-secured put candidates.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.Store != nil {
				_ = app.Store.Close()
			}
		},
	}

	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			logging.SetDebugLevel()
		}
	}

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newAnalyzeCmd(app))
	rootCmd.AddCommand(newPromptsCmd(app))
	rootCmd.AddCommand(newQuoteCmd(app))
	rootCmd.AddCommand(newChainCmd(app))
	rootCmd.AddCommand(newCoveredCallCmd(app))
	rootCmd.AddCommand(newCashSecuredPutCmd(app))
	rootCmd.AddCommand(newClockCmd(app))
	rootCmd.AddCommand(newContextCmd(app))
	rootCmd.AddCommand(newToolsCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("sentinel %s\n", Version)
		},
	}
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the tool definitions a host can register",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			return output.JSON(tools.Definitions())
		},
	}
}
