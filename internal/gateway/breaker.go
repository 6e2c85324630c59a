package gateway

import (
	"sync"
	"time"

	"portfolio-sentinel/internal/errors"
)

// breakerState tracks whether calls are flowing, blocked, or probing.
type breakerState string

const (
	breakerClosed   breakerState = "CLOSED"
	breakerOpen     breakerState = "OPEN"
	breakerHalfOpen breakerState = "HALF_OPEN"
)

// BreakerConfig holds circuit breaker thresholds for the market data gateway.
type BreakerConfig struct {
	FailureThreshold int
	SuccessThreshold int
	Cooldown         time.Duration
}

// DefaultBreakerConfig returns the default breaker thresholds.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		SuccessThreshold: 2,
		Cooldown:         30 * time.Second,
	}
}

// breaker stops hammering the market data API once it is clearly down or
// rate limiting us. Only transient failures trip it: a symbol that does not
// exist says nothing about API health.
type breaker struct {
	cfg BreakerConfig

	mu          sync.Mutex
	state       breakerState
	failures    int
	successes   int
	lastFailure time.Time
}

func newBreaker(cfg BreakerConfig) *breaker {
	if cfg.FailureThreshold == 0 {
		cfg = DefaultBreakerConfig()
	}
	return &breaker{cfg: cfg, state: breakerClosed}
}

// allow reports whether a call may proceed, moving an open breaker to
// half-open once the cooldown has elapsed.
func (b *breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state == breakerOpen {
		if time.Since(b.lastFailure) < b.cfg.Cooldown {
			return false
		}
		b.state = breakerHalfOpen
		b.successes = 0
	}
	return true
}

// record feeds a call outcome back into the breaker.
func (b *breaker) record(err error) {
	transient := err != nil &&
		(errors.Is(err, errors.ErrGatewayUnavailable) || errors.Is(err, errors.ErrRateLimited))

	b.mu.Lock()
	defer b.mu.Unlock()

	if transient {
		b.failures++
		b.lastFailure = time.Now()
		if b.state == breakerHalfOpen || b.failures >= b.cfg.FailureThreshold {
			b.state = breakerOpen
		}
		return
	}

	switch b.state {
	case breakerHalfOpen:
		b.successes++
		if b.successes >= b.cfg.SuccessThreshold {
			b.state = breakerClosed
			b.failures = 0
		}
	case breakerClosed:
		b.failures = 0
	}
}

func (b *breaker) currentState() breakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}
