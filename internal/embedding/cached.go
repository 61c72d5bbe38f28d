// Package embedding decorates embedding generators with caching and resilience.
package embedding

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/singleflight"

	"github.com/davidbz/searchmesh/internal/cache/memory"
	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/observability"
	"github.com/davidbz/searchmesh/internal/resilience"
)

// BreakerName is the circuit breaker guarding the embedding provider.
const BreakerName = "embedding"

// CachedGenerator serves embeddings from an in-memory cache and calls the wrapped
// generator on a miss, through the "embedding" breaker with retries. Concurrent
// misses for the same text share one provider call.
type CachedGenerator struct {
	next    domain.EmbeddingGenerator
	cache   *memory.Cache[[]float64]
	breaker *resilience.CircuitBreaker
	retry   resilience.RetryConfig
	group   singleflight.Group
}

// NewCachedGenerator creates a caching decorator (DI constructor).
func NewCachedGenerator(
	next domain.EmbeddingGenerator,
	cache *memory.Cache[[]float64],
	breakers *resilience.Registry,
	retry *resilience.RetryConfig,
) *CachedGenerator {
	cfg := resilience.DefaultRetryConfig()
	if retry != nil {
		cfg = *retry
	}

	return &CachedGenerator{
		next:    next,
		cache:   cache,
		breaker: breakers.Get(BreakerName),
		retry:   cfg,
	}
}

// cacheKey hashes the trimmed text together with the model.
func (g *CachedGenerator) cacheKey(text string) string {
	return strconv.FormatUint(xxhash.Sum64String(g.next.Model()+"\x00"+text), 16)
}

// Generate returns the cached embedding for text or computes and caches it.
// The returned slice is a copy and may be modified by the caller.
func (g *CachedGenerator) Generate(ctx context.Context, text string) ([]float64, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", domain.ErrValidation)
	}

	key := g.cacheKey(text)
	namespace := g.next.Model()

	if vec, ok := g.cache.Get(key, namespace); ok {
		return clone(vec), nil
	}

	ch := g.group.DoChan(key, func() (any, error) {
		callCtx := context.WithoutCancel(ctx)

		vec, err := resilience.Execute(callCtx, g.breaker, func(ctx context.Context) ([]float64, error) {
			return resilience.RetryWithResult(ctx, g.retry, func(ctx context.Context) ([]float64, error) {
				return g.next.Generate(ctx, text)
			})
		}, nil)
		if err != nil {
			return nil, err
		}

		if setErr := g.cache.Set(key, vec, memory.WithNamespace(namespace)); setErr != nil {
			observability.FromContext(ctx).Warn("failed to cache embedding",
				observability.String("model", namespace),
				observability.Error(setErr))
		}

		return vec, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return clone(res.Val.([]float64)), nil
	}
}

// Name returns the wrapped generator identifier.
func (g *CachedGenerator) Name() string {
	return g.next.Name()
}

// Model returns the wrapped model name.
func (g *CachedGenerator) Model() string {
	return g.next.Model()
}

// Dimension returns the wrapped vector dimension.
func (g *CachedGenerator) Dimension() int {
	return g.next.Dimension()
}

func clone(vec []float64) []float64 {
	out := make([]float64, len(vec))
	copy(out, vec)
	return out
}
