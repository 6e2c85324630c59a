// Package gateway provides market data access for quotes and option chains.
package gateway

import (
	"context"
	"time"

	"portfolio-sentinel/internal/models"
)

// ChainRequest filters an option chain fetch. Zero values mean no filter.
type ChainRequest struct {
	Expiration time.Time
	Type       models.OptionType
	DeltaMin   float64
	DeltaMax   float64
	MinVolume  int64
}

// Gateway supplies quote and option chain data for a symbol. Implementations
// surface distinct errors for a missing symbol, rate limiting, and transient
// outages (see internal/errors sentinels) so callers can decide whether to
// fail the whole call or report partial data.
type Gateway interface {
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetOptionChain(ctx context.Context, symbol string, req ChainRequest) ([]models.OptionContract, error)
	GetExpirations(ctx context.Context, symbol string) ([]time.Time, error)
}
