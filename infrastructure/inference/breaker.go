package inference

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/pkg/errors"
)

// BreakerConfig holds circuit breaker tuning for the inference client
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	MaxFailures uint32
}

// DefaultBreakerConfig returns the standard breaker tuning
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:        "inference",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     30 * time.Second,
		MaxFailures: 5,
	}
}

// BreakerInferrer wraps an inferrer with a circuit breaker so a
// failing inference service sheds load fast instead of stacking up
// timed-out requests.
type BreakerInferrer struct {
	inner   ports.RelationshipInferrer
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewBreakerInferrer wraps inner with a circuit breaker
func NewBreakerInferrer(inner ports.RelationshipInferrer, cfg BreakerConfig, logger *zap.Logger) *BreakerInferrer {
	if logger == nil {
		logger = zap.NewNop()
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellations say nothing about service health.
			return err == nil || errors.IsCancelled(err) || stderrors.Is(err, context.Canceled)
		},
	})

	return &BreakerInferrer{inner: inner, breaker: cb, logger: logger}
}

// Infer delegates to the wrapped inferrer through the breaker
func (b *BreakerInferrer) Infer(ctx context.Context, batch []ports.NodeSummary) ([]ports.RelationshipCandidate, error) {
	result, err := b.breaker.Execute(func() (any, error) {
		return b.inner.Infer(ctx, batch)
	})
	if err != nil {
		switch err {
		case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
			return nil, errors.NewExternalError("inference", err)
		default:
			return nil, err
		}
	}
	candidates, _ := result.([]ports.RelationshipCandidate)
	return candidates, nil
}
