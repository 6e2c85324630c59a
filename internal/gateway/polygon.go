package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"portfolio-sentinel/internal/errors"
	"portfolio-sentinel/internal/logging"
	"portfolio-sentinel/internal/models"
	"portfolio-sentinel/pkg/utils"
)

// PolygonConfig holds Polygon.io client configuration.
type PolygonConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	Retry   utils.RetryConfig
	Breaker BreakerConfig
}

// PolygonClient implements Gateway against the Polygon.io REST API.
type PolygonClient struct {
	cfg     PolygonConfig
	http    *http.Client
	breaker *breaker
	logger  zerolog.Logger
}

// NewPolygonClient creates a Polygon.io gateway client.
func NewPolygonClient(cfg PolygonConfig, logger zerolog.Logger) *PolygonClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.polygon.io"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = utils.DefaultRetryConfig()
	}
	return &PolygonClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: newBreaker(cfg.Breaker),
		logger:  logger,
	}
}

// GetQuote fetches the current snapshot quote for a symbol.
func (c *PolygonClient) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol = strings.ToUpper(symbol)
	endpoint := fmt.Sprintf("/v2/snapshot/locale/us/markets/stocks/tickers/%s", symbol)

	resp, err := fetch[stockSnapshotResponse](ctx, c, symbol, endpoint, nil)
	if err != nil {
		return nil, err
	}

	t := resp.Ticker
	price := t.Day.Close
	if price == 0 {
		price = t.Min.Close
	}
	if price == 0 {
		price = t.LastTrade.Price
	}
	if price == 0 {
		return nil, errors.NewGatewayError(symbol, endpoint, 0, errors.ErrSymbolNotFound)
	}

	prev := t.PrevDay.Close
	var change, changePct float64
	if prev != 0 {
		change = price - prev
		changePct = change / prev * 100
	}

	return &models.Quote{
		Symbol:        symbol,
		Price:         price,
		Change:        change,
		ChangePercent: changePct,
		PrevClose:     prev,
		Volume:        int64(t.Day.Volume),
		VWAP:          t.Day.VWAP,
		MarketCap:     c.marketCap(ctx, symbol),
		Timestamp:     time.Now(),
	}, nil
}

// marketCap fetches the ticker's market cap from the reference endpoint.
// Best effort: detail lookups fail for some tickers, the quote still stands.
func (c *PolygonClient) marketCap(ctx context.Context, symbol string) int64 {
	endpoint := fmt.Sprintf("/v3/reference/tickers/%s", symbol)
	resp, err := fetch[tickerDetailsResponse](ctx, c, symbol, endpoint, nil)
	if err != nil {
		logger := logging.WithSymbol(c.logger, symbol)
		logger.Debug().Err(err).Msg("ticker details unavailable")
		return 0
	}
	return int64(resp.Results.MarketCap)
}

// GetOptionChain fetches the option chain snapshot for an underlying,
// applying the request filters server-side where Polygon supports them and
// locally otherwise.
func (c *PolygonClient) GetOptionChain(ctx context.Context, symbol string, req ChainRequest) ([]models.OptionContract, error) {
	symbol = strings.ToUpper(symbol)
	endpoint := fmt.Sprintf("/v3/snapshot/options/%s", symbol)

	params := url.Values{}
	params.Set("limit", "250")
	if !req.Expiration.IsZero() {
		params.Set("expiration_date", req.Expiration.Format("2006-01-02"))
	}
	if req.Type == models.OptionCall {
		params.Set("contract_type", "call")
	} else if req.Type == models.OptionPut {
		params.Set("contract_type", "put")
	}

	var contracts []models.OptionContract
	for {
		resp, err := fetch[optionChainResponse](ctx, c, symbol, endpoint, params)
		if err != nil {
			return nil, err
		}

		for _, r := range resp.Results {
			contract := toContract(symbol, r)
			if !matchesFilters(contract, req) {
				continue
			}
			contracts = append(contracts, contract)
		}

		if resp.NextURL == "" {
			break
		}
		next, err := url.Parse(resp.NextURL)
		if err != nil {
			break
		}
		endpoint = next.Path
		params = next.Query()
	}

	return contracts, nil
}

// GetExpirations lists available option expiration dates for a symbol.
func (c *PolygonClient) GetExpirations(ctx context.Context, symbol string) ([]time.Time, error) {
	symbol = strings.ToUpper(symbol)
	endpoint := "/v3/reference/options/contracts"

	params := url.Values{}
	params.Set("underlying_ticker", symbol)
	params.Set("expired", "false")
	params.Set("limit", "1000")

	resp, err := fetch[contractsResponse](ctx, c, symbol, endpoint, params)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []time.Time
	for _, r := range resp.Results {
		if _, ok := seen[r.ExpirationDate]; ok {
			continue
		}
		seen[r.ExpirationDate] = struct{}{}
		exp, err := time.Parse("2006-01-02", r.ExpirationDate)
		if err != nil {
			continue
		}
		out = append(out, exp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out, nil
}

func matchesFilters(c models.OptionContract, req ChainRequest) bool {
	absDelta := math.Abs(c.Delta)
	if req.DeltaMin != 0 && absDelta < req.DeltaMin {
		return false
	}
	if req.DeltaMax != 0 && absDelta > req.DeltaMax {
		return false
	}
	if req.MinVolume != 0 && c.Volume < req.MinVolume {
		return false
	}
	return true
}

// fetch performs one typed API call with retry on transient failures.
// Not-found responses are mapped to their sentinel and never retried.
func fetch[T any](ctx context.Context, c *PolygonClient, symbol, endpoint string, params url.Values) (*T, error) {
	if c.cfg.APIKey == "" {
		return nil, errors.NewGatewayError(symbol, endpoint, 0,
			errors.Wrap(errors.ErrGatewayUnavailable, "POLYGON_API_KEY not configured"))
	}
	if !c.breaker.allow() {
		return nil, errors.NewGatewayError(symbol, endpoint, 0,
			errors.Wrap(errors.ErrGatewayUnavailable, "too many recent failures, backing off"))
	}

	logger := c.logger
	if ctxLogger, ok := logging.FromContext(ctx); ok {
		logger = ctxLogger
	}
	logger = logging.WithSymbol(logger, symbol)

	var fatal error
	out, err := utils.RetryWithResult(ctx, c.cfg.Retry, func() (*T, error) {
		var resp T
		start := time.Now()
		err := c.doOnce(ctx, symbol, endpoint, params, &resp)
		logging.LogAPICall(logger, http.MethodGet, endpoint, time.Since(start), err)

		// A missing symbol is definitive; retrying cannot help.
		if err != nil && errors.Is(err, errors.ErrSymbolNotFound) {
			fatal = err
			return nil, nil
		}
		return &resp, err
	})
	if fatal != nil {
		c.breaker.record(fatal)
		return nil, fatal
	}
	c.breaker.record(err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PolygonClient) doOnce(ctx context.Context, symbol, endpoint string, params url.Values, out interface{}) error {
	u := c.cfg.BaseURL + endpoint
	q := url.Values{}
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("apiKey", c.cfg.APIKey)
	u += "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return errors.NewGatewayError(symbol, endpoint, 0, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewGatewayError(symbol, endpoint, 0,
			errors.Wrap(errors.ErrGatewayUnavailable, err.Error()))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return errors.NewGatewayError(symbol, endpoint, resp.StatusCode, errors.ErrSymbolNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return errors.NewGatewayError(symbol, endpoint, resp.StatusCode, errors.ErrRateLimited)
	case resp.StatusCode >= 500:
		return errors.NewGatewayError(symbol, endpoint, resp.StatusCode, errors.ErrGatewayUnavailable)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.NewGatewayError(symbol, endpoint, resp.StatusCode,
			errors.Wrapf(errors.ErrGatewayUnavailable, "unexpected response: %s", strings.TrimSpace(string(body))))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewGatewayError(symbol, endpoint, resp.StatusCode,
			errors.Wrap(errors.ErrGatewayUnavailable, "decoding response"))
	}
	return nil
}

// toContract maps one chain snapshot result onto the domain contract.
func toContract(underlying string, r optionSnapshotResult) models.OptionContract {
	optType := models.OptionCall
	if strings.EqualFold(r.Details.ContractType, "put") {
		optType = models.OptionPut
	}

	last := r.LastTrade.Price
	if last == 0 {
		last = r.Day.Close
	}

	exp, _ := time.Parse("2006-01-02", r.Details.ExpirationDate)

	return models.OptionContract{
		Symbol:            r.Details.Ticker,
		Underlying:        underlying,
		Type:              optType,
		Strike:            r.Details.StrikePrice,
		Expiration:        exp,
		LastPrice:         last,
		ImpliedVolatility: r.ImpliedVolatility,
		Delta:             r.Greeks.Delta,
		Volume:            int64(r.Day.Volume),
		OpenInterest:      int64(r.OpenInterest),
	}
}

// Polygon wire types, trimmed to the fields consumed here.

type stockSnapshotResponse struct {
	Ticker struct {
		Day struct {
			Close  float64 `json:"c"`
			Volume float64 `json:"v"`
			VWAP   float64 `json:"vw"`
		} `json:"day"`
		Min struct {
			Close float64 `json:"c"`
		} `json:"min"`
		PrevDay struct {
			Close float64 `json:"c"`
		} `json:"prevDay"`
		LastTrade struct {
			Price float64 `json:"p"`
		} `json:"lastTrade"`
	} `json:"ticker"`
}

type optionSnapshotResult struct {
	Details struct {
		Ticker         string  `json:"ticker"`
		ContractType   string  `json:"contract_type"`
		StrikePrice    float64 `json:"strike_price"`
		ExpirationDate string  `json:"expiration_date"`
	} `json:"details"`
	Greeks struct {
		Delta float64 `json:"delta"`
	} `json:"greeks"`
	Day struct {
		Close  float64 `json:"close"`
		Volume float64 `json:"volume"`
	} `json:"day"`
	LastTrade struct {
		Price float64 `json:"price"`
	} `json:"last_trade"`
	ImpliedVolatility float64 `json:"implied_volatility"`
	OpenInterest      float64 `json:"open_interest"`
}

type optionChainResponse struct {
	Results []optionSnapshotResult `json:"results"`
	NextURL string                 `json:"next_url"`
}

type contractsResponse struct {
	Results []struct {
		ExpirationDate string `json:"expiration_date"`
	} `json:"results"`
}

type tickerDetailsResponse struct {
	Results struct {
		MarketCap float64 `json:"market_cap"`
	} `json:"results"`
}
