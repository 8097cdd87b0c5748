package llm

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"organizer-api/internal/config"
	"organizer-api/internal/logging"
	"organizer-api/internal/metrics"
)

// Gate throttles categorization calls and stops sending them after
// repeated upstream failures. One Gate is shared by the whole process;
// clients are rebuilt per call because settings may change.
type Gate struct {
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func NewGate(cfg config.LLMConfig) *Gate {
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Limit(cfg.RequestsPerMinute / 60)
	}
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 3
	}

	settings := gobreaker.Settings{
		Name:        "llm",
		MaxRequests: 1,
		Timeout:     time.Duration(cfg.BreakerTimeout) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// caller cancellation says nothing about upstream health
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Logger().Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("circuit breaker state changed")
		},
	}

	return &Gate{
		limiter: rate.NewLimiter(limit, 1),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Wrap returns c guarded by the gate.
func (g *Gate) Wrap(c Categorizer, provider string) Categorizer {
	return &gated{gate: g, next: c, provider: normalizeProvider(provider)}
}

type gated struct {
	gate     *Gate
	next     Categorizer
	provider string
}

func (g *gated) Name() string { return g.next.Name() }

func (g *gated) Complete(ctx context.Context, req Request) (*Response, error) {
	if err := g.gate.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := g.gate.breaker.Execute(func() (interface{}, error) {
		return g.next.Complete(ctx, req)
	})
	metrics.RecordLLMRequest(g.provider, time.Since(start), err == nil)

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrUnavailable, err)
	}
	if err != nil {
		return nil, err
	}
	return out.(*Response), nil
}
