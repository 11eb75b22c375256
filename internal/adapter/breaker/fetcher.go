package breaker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/user/catalog-webhook/internal/entity"
	"github.com/user/catalog-webhook/internal/repository"
	"github.com/user/catalog-webhook/pkg/metrics"
)

// Default circuit breaker settings.
const (
	defaultMaxFailures uint32        = 5
	defaultTimeout     time.Duration = 30 * time.Second
	defaultInterval    time.Duration = 60 * time.Second
)

// Config configures the circuit breaker behavior.
type Config struct {
	// MaxFailures is the number of consecutive failures before the circuit opens.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before going half-open.
	Timeout time.Duration
	// Interval is the cyclic period of the closed state for clearing failure counts.
	Interval time.Duration
}

// Fetcher wraps a PageFetcher with circuit breaker protection.
type Fetcher struct {
	inner   repository.PageFetcher
	breaker *gobreaker.CircuitBreaker[*entity.Page]
}

// NewFetcher wraps inner. Zero config values use defaults; m may be nil.
func NewFetcher(inner repository.PageFetcher, cfg Config, m *metrics.Metrics, logger *zap.Logger) *Fetcher {
	maxFailures := cfg.MaxFailures
	if maxFailures == 0 {
		maxFailures = defaultMaxFailures
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}
	interval := cfg.Interval
	if interval == 0 {
		interval = defaultInterval
	}

	cb := gobreaker.NewCircuitBreaker[*entity.Page](gobreaker.Settings{
		Name:        "catalog-fetch",
		MaxRequests: 1,
		Interval:    interval,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			if m != nil {
				m.CircuitState.Set(float64(to))
			}
		},
		IsSuccessful: func(err error) bool {
			// A caller giving up is not an upstream failure.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &Fetcher{inner: inner, breaker: cb}
}

// Fetch implements repository.PageFetcher.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*entity.Page, error) {
	page, err := f.breaker.Execute(func() (*entity.Page, error) {
		return f.inner.Fetch(ctx, url)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %w: %w", repository.ErrFetchFailed, repository.ErrCircuitOpen, err)
		}
		return nil, err
	}
	return page, nil
}

// State returns the current breaker state for health reporting.
func (f *Fetcher) State() gobreaker.State {
	return f.breaker.State()
}

var _ repository.PageFetcher = (*Fetcher)(nil)
