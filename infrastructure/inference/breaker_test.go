package inference

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"kgraph/application/ports"
	"kgraph/pkg/errors"
)

type scriptInferrer struct {
	calls int
	fail  bool
}

func (s *scriptInferrer) Infer(_ context.Context, _ []ports.NodeSummary) ([]ports.RelationshipCandidate, error) {
	s.calls++
	if s.fail {
		return nil, fmt.Errorf("backend down")
	}
	return []ports.RelationshipCandidate{{SourceID: "a", TargetID: "b", Type: "related", Weight: 0.5}}, nil
}

func testBreakerConfig() BreakerConfig {
	cfg := DefaultBreakerConfig()
	cfg.MaxFailures = 2
	cfg.Timeout = time.Hour
	return cfg
}

func TestBreakerInferrer_PassThrough(t *testing.T) {
	inner := &scriptInferrer{}
	b := NewBreakerInferrer(inner, testBreakerConfig(), zap.NewNop())

	candidates, err := b.Infer(context.Background(), nil)

	require.NoError(t, err)
	assert.Len(t, candidates, 1)
	assert.Equal(t, 1, inner.calls)
}

func TestBreakerInferrer_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &scriptInferrer{fail: true}
	b := NewBreakerInferrer(inner, testBreakerConfig(), zap.NewNop())
	ctx := context.Background()

	_, err := b.Infer(ctx, nil)
	require.Error(t, err)
	_, err = b.Infer(ctx, nil)
	require.Error(t, err)

	// Third call must be rejected without reaching the backend.
	_, err = b.Infer(ctx, nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrorTypeExternal))
	assert.Equal(t, 2, inner.calls)
}

func TestBreakerInferrer_CancellationDoesNotTrip(t *testing.T) {
	cancelled := &cancelledInferrer{}
	b := NewBreakerInferrer(cancelled, testBreakerConfig(), zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := b.Infer(ctx, nil)
		require.Error(t, err)
	}

	// All five calls reached the backend; cancellations never opened
	// the breaker.
	assert.Equal(t, 5, cancelled.calls)
}

type cancelledInferrer struct {
	calls int
}

func (c *cancelledInferrer) Infer(_ context.Context, _ []ports.NodeSummary) ([]ports.RelationshipCandidate, error) {
	c.calls++
	return nil, errors.NewCancelledError("inference")
}
