package tools

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"portfolio-sentinel/internal/analyzer"
	"portfolio-sentinel/internal/errors"
	"portfolio-sentinel/internal/gateway"
	"portfolio-sentinel/internal/ingest"
	"portfolio-sentinel/internal/logging"
	"portfolio-sentinel/internal/models"
	"portfolio-sentinel/internal/ranker"
	"portfolio-sentinel/internal/research"
	"portfolio-sentinel/internal/store"
	"portfolio-sentinel/pkg/utils"
)

// Defaults applied when a tool call omits screening parameters and no
// configured defaults were supplied.
const (
	DefaultTargetDelta = 0.20
	DefaultDTEMin      = 20
	DefaultDTEMax      = 45
)

// ScreenDefaults are the screening parameters applied when a tool call
// omits them.
type ScreenDefaults struct {
	TargetDelta float64
	DTEMin      int
	DTEMax      int
	MinPremium  float64
}

// DefaultScreenDefaults returns the built-in screening defaults.
func DefaultScreenDefaults() ScreenDefaults {
	return ScreenDefaults{
		TargetDelta: DefaultTargetDelta,
		DTEMin:      DefaultDTEMin,
		DTEMax:      DefaultDTEMax,
	}
}

// Executor dispatches tool calls to the analysis components. All
// dependencies are injected; the executor keeps no mutable state across
// calls, so concurrent Execute calls are independent.
type Executor struct {
	gateway  gateway.Gateway
	analyzer *analyzer.Analyzer
	contexts store.ContextStore
	screen   ScreenDefaults
	logger   zerolog.Logger
	now      func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithClock overrides the executor's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Executor) { e.now = now }
}

// WithContextStore attaches the persistent context store.
func WithContextStore(cs store.ContextStore) Option {
	return func(e *Executor) { e.contexts = cs }
}

// WithScreenDefaults overrides the built-in screening defaults, typically
// from the ranker section of the config file.
func WithScreenDefaults(d ScreenDefaults) Option {
	return func(e *Executor) { e.screen = d }
}

// NewExecutor creates a tool executor.
func NewExecutor(gw gateway.Gateway, a *analyzer.Analyzer, logger zerolog.Logger, opts ...Option) *Executor {
	e := &Executor{
		gateway:  gw,
		analyzer: a,
		screen:   DefaultScreenDefaults(),
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute dispatches one named tool call with JSON-encoded arguments and
// returns the result as indented JSON.
func (e *Executor) Execute(ctx context.Context, name, argsJSON string) (string, error) {
	logger := logging.WithTool(e.logger, name)
	start := e.now()

	// Downstream API-call logs pick up the tool field through the context.
	ctx = logging.WithLogger(ctx, logger)
	result, err := e.dispatch(ctx, name, argsJSON)
	if err != nil {
		logger.Warn().Err(err).Dur("duration", e.now().Sub(start)).Msg("tool call failed")
		return "", err
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "encoding tool result")
	}
	logger.Debug().Dur("duration", e.now().Sub(start)).Msg("tool call completed")
	return string(out), nil
}

func (e *Executor) dispatch(ctx context.Context, name, argsJSON string) (interface{}, error) {
	if argsJSON == "" {
		argsJSON = "{}"
	}
	switch name {
	case "get_market_time":
		return e.MarketTime(), nil
	case "analyze_portfolio":
		var args csvArgs
		if err := unmarshalArgs(argsJSON, &args); err != nil {
			return nil, err
		}
		return e.AnalyzePortfolio(args.CSVContent)
	case "generate_research_prompts":
		var args csvArgs
		if err := unmarshalArgs(argsJSON, &args); err != nil {
			return nil, err
		}
		return e.ResearchPrompts(args.CSVContent)
	case "get_stock_quote":
		var args symbolArgs
		if err := unmarshalArgs(argsJSON, &args); err != nil {
			return nil, err
		}
		return e.StockQuote(ctx, args.Symbol)
	case "get_option_chain":
		var args ChainArgs
		if err := unmarshalArgs(argsJSON, &args); err != nil {
			return nil, err
		}
		return e.OptionChain(ctx, args)
	case "find_covered_call":
		var args CoveredCallArgs
		if err := unmarshalArgs(argsJSON, &args); err != nil {
			return nil, err
		}
		return e.CoveredCalls(ctx, args)
	case "find_cash_secured_put":
		var args CashSecuredPutArgs
		if err := unmarshalArgs(argsJSON, &args); err != nil {
			return nil, err
		}
		return e.CashSecuredPuts(ctx, args)
	case "get_portfolio_context":
		var args contextGetArgs
		if err := unmarshalArgs(argsJSON, &args); err != nil {
			return nil, err
		}
		return e.PortfolioContext(ctx, args.Section)
	case "update_portfolio_context":
		var args contextUpdateArgs
		if err := unmarshalArgs(argsJSON, &args); err != nil {
			return nil, err
		}
		return e.UpdatePortfolioContext(ctx, args.Section, args.Content, args.Mode)
	default:
		return nil, errors.NewParameterError("tool", name, "unknown tool")
	}
}

func unmarshalArgs(argsJSON string, out interface{}) error {
	if err := json.Unmarshal([]byte(argsJSON), out); err != nil {
		return errors.NewParameterError("arguments", argsJSON, "malformed tool arguments")
	}
	return nil
}

type csvArgs struct {
	CSVContent string `json:"csv_content"`
}

type symbolArgs struct {
	Symbol string `json:"symbol"`
}

type contextGetArgs struct {
	Section string `json:"section"`
}

type contextUpdateArgs struct {
	Section string `json:"section"`
	Content string `json:"content"`
	Mode    string `json:"mode"`
}

// MarketTime returns the current NYC market clock.
func (e *Executor) MarketTime() models.MarketClock {
	return utils.ClockAt(e.now())
}

// AnalyzePortfolio parses a Schwab CSV export and runs the analyzer over it.
// Malformed rows are skipped and reported inside the result, never as a
// call-level failure.
func (e *Executor) AnalyzePortfolio(csvText string) (*models.AnalysisReport, error) {
	if csvText == "" {
		return nil, errors.NewParameterError("csv_content", "", "must not be empty")
	}
	positions, rowErrs, err := ingest.ParsePortfolio(csvText)
	if err != nil {
		return nil, err
	}
	for _, rerr := range rowErrs {
		e.logger.Info().Str("field", rerr.Field).Int("row", rerr.Row).Msg("skipping malformed row")
	}
	report := e.analyzer.Analyze(positions, len(rowErrs), e.now())
	for _, a := range report.Alerts {
		logging.LogAlert(e.logger, string(a.Severity), string(a.Category), a.Symbol, a.Message)
	}
	return report, nil
}

// ResearchPrompts runs the analysis and derives research prompts from the
// resulting alerts.
func (e *Executor) ResearchPrompts(csvText string) ([]models.ResearchPrompt, error) {
	report, err := e.AnalyzePortfolio(csvText)
	if err != nil {
		return nil, err
	}
	return research.GeneratePrompts(report.Alerts), nil
}

// StockQuote fetches the current quote for a symbol.
func (e *Executor) StockQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if symbol == "" {
		return nil, errors.NewParameterError("symbol", "", "must not be empty")
	}
	return e.gateway.GetQuote(ctx, symbol)
}

// ChainArgs are the arguments for the get_option_chain tool.
type ChainArgs struct {
	Symbol     string  `json:"symbol"`
	Expiration string  `json:"expiration"`
	OptionType string  `json:"option_type"`
	DeltaMin   float64 `json:"delta_min"`
	DeltaMax   float64 `json:"delta_max"`
	MinVolume  int64   `json:"min_volume"`
}

// ChainResult is the get_option_chain tool response.
type ChainResult struct {
	Symbol      string                  `json:"symbol"`
	Price       float64                 `json:"price"`
	Expiration  string                  `json:"expiration,omitempty"`
	Expirations []string                `json:"expirations,omitempty"`
	Calls       []models.OptionContract `json:"calls,omitempty"`
	Puts        []models.OptionContract `json:"puts,omitempty"`
}

// OptionChain fetches a filtered option chain. With no expiration it returns
// the available expiration dates instead of contracts.
func (e *Executor) OptionChain(ctx context.Context, args ChainArgs) (*ChainResult, error) {
	if args.Symbol == "" {
		return nil, errors.NewParameterError("symbol", "", "must not be empty")
	}

	quote, err := e.gateway.GetQuote(ctx, args.Symbol)
	if err != nil {
		return nil, err
	}
	result := &ChainResult{Symbol: quote.Symbol, Price: quote.Price}

	if args.Expiration == "" {
		expirations, err := e.gateway.GetExpirations(ctx, args.Symbol)
		if err != nil {
			return nil, err
		}
		for i, exp := range expirations {
			if i == 20 {
				break
			}
			result.Expirations = append(result.Expirations, exp.Format("2006-01-02"))
		}
		return result, nil
	}

	expiration, err := time.Parse("2006-01-02", args.Expiration)
	if err != nil {
		return nil, errors.NewParameterError("expiration", args.Expiration, "want YYYY-MM-DD")
	}

	req := gateway.ChainRequest{
		Expiration: expiration,
		DeltaMin:   args.DeltaMin,
		DeltaMax:   args.DeltaMax,
		MinVolume:  args.MinVolume,
	}
	switch args.OptionType {
	case "":
	case "call":
		req.Type = models.OptionCall
	case "put":
		req.Type = models.OptionPut
	default:
		return nil, errors.NewParameterError("option_type", args.OptionType, "must be call or put")
	}

	chain, err := e.gateway.GetOptionChain(ctx, args.Symbol, req)
	if err != nil {
		return nil, err
	}

	result.Expiration = args.Expiration
	for _, c := range chain {
		if c.Type == models.OptionCall {
			result.Calls = append(result.Calls, c)
		} else {
			result.Puts = append(result.Puts, c)
		}
	}
	sort.Slice(result.Calls, func(i, j int) bool { return result.Calls[i].Strike < result.Calls[j].Strike })
	sort.Slice(result.Puts, func(i, j int) bool { return result.Puts[i].Strike < result.Puts[j].Strike })
	return result, nil
}

// CoveredCallArgs are the arguments for the find_covered_call tool.
// Pointer fields distinguish "omitted, use the default" from an explicit
// zero, which is a valid screening value.
type CoveredCallArgs struct {
	Symbol      string   `json:"symbol"`
	Shares      int      `json:"shares"`
	TargetDelta *float64 `json:"target_delta"`
	DTEMin      *int     `json:"dte_min"`
	DTEMax      *int     `json:"dte_max"`
	MinPremium  *float64 `json:"min_premium"`
}

// CandidateResult is the response of both screening tools.
type CandidateResult struct {
	Symbol      string                  `json:"symbol"`
	Price       float64                 `json:"price"`
	Shares      int                     `json:"shares,omitempty"`
	Cash        float64                 `json:"cash_available,omitempty"`
	TargetDelta float64                 `json:"target_delta"`
	Candidates  []models.TradeCandidate `json:"candidates"`
}

// CoveredCalls screens the call chain for covered call candidates.
func (e *Executor) CoveredCalls(ctx context.Context, args CoveredCallArgs) (*CandidateResult, error) {
	if args.Symbol == "" {
		return nil, errors.NewParameterError("symbol", "", "must not be empty")
	}
	if args.Shares == 0 {
		args.Shares = 100
	}

	quote, err := e.gateway.GetQuote(ctx, args.Symbol)
	if err != nil {
		return nil, err
	}
	chain, err := e.gateway.GetOptionChain(ctx, args.Symbol, gateway.ChainRequest{Type: models.OptionCall})
	if err != nil {
		return nil, err
	}

	params := ranker.Params{
		Mode:            ranker.ModeCoveredCall,
		TargetDelta:     orDefaultF(args.TargetDelta, e.screen.TargetDelta),
		DTEMin:          orDefaultI(args.DTEMin, e.screen.DTEMin),
		DTEMax:          orDefaultI(args.DTEMax, e.screen.DTEMax),
		MinPremium:      orDefaultF(args.MinPremium, e.screen.MinPremium),
		UnderlyingPrice: quote.Price,
		Shares:          args.Shares,
		AsOf:            e.now(),
	}
	candidates, err := ranker.FindCandidates(chain, params)
	if err != nil {
		return nil, err
	}

	return &CandidateResult{
		Symbol:      quote.Symbol,
		Price:       quote.Price,
		Shares:      args.Shares,
		TargetDelta: params.TargetDelta,
		Candidates:  candidates,
	}, nil
}

// CashSecuredPutArgs are the arguments for the find_cash_secured_put tool.
type CashSecuredPutArgs struct {
	Symbol        string   `json:"symbol"`
	CashAvailable float64  `json:"cash_available"`
	TargetDelta   *float64 `json:"target_delta"`
	DTEMin        *int     `json:"dte_min"`
	DTEMax        *int     `json:"dte_max"`
	MinPremium    *float64 `json:"min_premium"`
}

// CashSecuredPuts screens the put chain for cash-secured put candidates.
func (e *Executor) CashSecuredPuts(ctx context.Context, args CashSecuredPutArgs) (*CandidateResult, error) {
	if args.Symbol == "" {
		return nil, errors.NewParameterError("symbol", "", "must not be empty")
	}
	if args.CashAvailable <= 0 {
		return nil, errors.NewParameterError("cash_available", args.CashAvailable, "must be positive")
	}

	quote, err := e.gateway.GetQuote(ctx, args.Symbol)
	if err != nil {
		return nil, err
	}
	chain, err := e.gateway.GetOptionChain(ctx, args.Symbol, gateway.ChainRequest{Type: models.OptionPut})
	if err != nil {
		return nil, err
	}

	params := ranker.Params{
		Mode:            ranker.ModeCashSecuredPut,
		TargetDelta:     orDefaultF(args.TargetDelta, e.screen.TargetDelta),
		DTEMin:          orDefaultI(args.DTEMin, e.screen.DTEMin),
		DTEMax:          orDefaultI(args.DTEMax, e.screen.DTEMax),
		MinPremium:      orDefaultF(args.MinPremium, e.screen.MinPremium),
		UnderlyingPrice: quote.Price,
		Collateral:      args.CashAvailable,
		AsOf:            e.now(),
	}
	candidates, err := ranker.FindCandidates(chain, params)
	if err != nil {
		return nil, err
	}

	return &CandidateResult{
		Symbol:      quote.Symbol,
		Price:       quote.Price,
		Cash:        args.CashAvailable,
		TargetDelta: params.TargetDelta,
		Candidates:  candidates,
	}, nil
}

// ContextResult is the get_portfolio_context tool response.
type ContextResult struct {
	Sections []store.Section `json:"sections"`
}

// PortfolioContext reads the persistent context document or one section.
func (e *Executor) PortfolioContext(ctx context.Context, section string) (*ContextResult, error) {
	if e.contexts == nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, "context store not configured")
	}
	if section != "" {
		sec, err := e.contexts.GetSection(ctx, section)
		if err != nil {
			return nil, err
		}
		return &ContextResult{Sections: []store.Section{*sec}}, nil
	}
	sections, err := e.contexts.ListSections(ctx)
	if err != nil {
		return nil, err
	}
	return &ContextResult{Sections: sections}, nil
}

// UpdatePortfolioContext writes one section of the context document.
func (e *Executor) UpdatePortfolioContext(ctx context.Context, section, content, mode string) (*store.Section, error) {
	if e.contexts == nil {
		return nil, errors.Wrap(errors.ErrDatabaseError, "context store not configured")
	}
	if section == "" {
		return nil, errors.NewParameterError("section", "", "must not be empty")
	}
	if mode == "" {
		mode = string(store.ModeReplace)
	}
	return e.contexts.UpdateSection(ctx, section, content, store.UpdateMode(mode))
}

func orDefaultF(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

func orDefaultI(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}
