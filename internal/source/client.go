package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/davidbz/searchmesh/internal/cache/memory"
	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/observability"
	"github.com/davidbz/searchmesh/internal/resilience"
)

// VectorClient searches a vector collection. Query embeddings come from the
// embedding generator and processed results are cached per source, first by exact
// query text and then by embedding similarity.
type VectorClient struct {
	profile  Profile
	embedder domain.EmbeddingGenerator
	backend  domain.VectorBackend
	results  *ResultCache
	breaker  *resilience.CircuitBreaker
	retry    resilience.RetryConfig
	settings Settings
}

// Deps bundles what a VectorClient needs.
type Deps struct {
	Embedder domain.EmbeddingGenerator
	Backend  domain.VectorBackend
	Results  *ResultCache
	Breakers *resilience.Registry
	Retry    resilience.RetryConfig
	Settings Settings
}

// BreakerName returns the breaker guarding a source's backend.
func BreakerName(source string) string {
	return "source:" + source
}

// NewVectorClient creates a client for a vector-backed source.
func NewVectorClient(p Profile, deps Deps) (*VectorClient, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if deps.Embedder == nil {
		return nil, domain.Configuration(errors.New("embedding generator is not configured"))
	}
	if deps.Backend == nil {
		return nil, domain.Configuration(errors.New("vector backend is not configured"))
	}
	if deps.Breakers == nil {
		return nil, errors.New("breaker registry is required")
	}

	return &VectorClient{
		profile:  p,
		embedder: deps.Embedder,
		backend:  deps.Backend,
		results:  deps.Results,
		breaker:  deps.Breakers.Get(BreakerName(p.Name)),
		retry:    deps.Retry,
		settings: deps.Settings,
	}, nil
}

// SourceName returns the source identifier.
func (c *VectorClient) SourceName() string {
	return c.profile.Name
}

// ValidateResult reports whether a result carries the fields this source requires.
func (c *VectorClient) ValidateResult(result domain.SearchResult) bool {
	return validateResult(c.profile, result)
}

// FormatForDisplay renders results as plain text.
func (c *VectorClient) FormatForDisplay(results []domain.SearchResult) string {
	return formatResults(c.profile, results)
}

// Search embeds the query, consults the result cache and queries the backend.
// Failures are reported through the response status.
func (c *VectorClient) Search(ctx context.Context, q domain.SearchQuery) domain.SourceResponse {
	start := time.Now()
	ctx = observability.WithCollection(observability.WithSource(ctx, c.profile.Name), c.profile.Collection)
	logger := observability.FromContext(ctx)

	resp := domain.SourceResponse{Source: c.profile.Name, Results: []domain.SearchResult{}}
	finish := func(status domain.SourceStatus) domain.SourceResponse {
		resp.Status = status
		resp.Elapsed = time.Since(start)
		return resp
	}

	text := strings.TrimSpace(q.Query)
	if text == "" {
		return finish(domain.StatusEmpty)
	}

	limit := c.settings.limit(q.Limit)
	threshold := c.settings.threshold(q.ScoreThreshold)
	namespace := c.cacheNamespace(q, limit, threshold)
	key := strings.ToLower(text)

	if c.results != nil {
		if cached, ok := c.results.Get(key, namespace); ok {
			logger.Debug("result cache hit")
			resp.Results, resp.Dropped = cloneResults(cached.Results), cached.Dropped
			return finish(domain.StatusCached)
		}
	}

	timeout := c.settings.timeout(c.profile)

	embedCtx, cancel := context.WithTimeout(ctx, timeout)
	vector, err := c.embedder.Generate(embedCtx, text)
	cancel()
	if err != nil {
		logger.Warn("query embedding failed", observability.Error(err))
		return finish(statusFor(err))
	}

	if c.results != nil {
		if cached, similarity, ok := c.results.GetSemantic(vector, namespace, c.results.SimilarityThreshold()); ok {
			logger.Debug("semantic result cache hit", observability.Float64("similarity", similarity))
			resp.Results, resp.Dropped = cloneResults(cached.Results), cached.Dropped
			return finish(domain.StatusCached)
		}
	}

	filter := c.filter(ctx, q.Filters)
	raw, err := resilience.Execute(ctx, c.breaker, func(ctx context.Context) ([]domain.SearchResult, error) {
		return resilience.RetryWithResult(ctx, c.retry, func(ctx context.Context) ([]domain.SearchResult, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return c.backend.Search(attemptCtx, c.profile.Collection, vector, filter, limit*overfetch)
		})
	}, nil)
	if err != nil {
		logger.Warn("vector search failed", observability.Error(err))
		return finish(statusFor(err))
	}

	resp.Results, resp.Dropped = finalize(c.profile, q, raw, limit, threshold)
	if resp.Dropped > 0 {
		logger.Debug("dropped invalid results", observability.Int("dropped", resp.Dropped))
	}

	if c.results != nil {
		value := CachedResults{Results: cloneResults(resp.Results), Dropped: resp.Dropped}
		if setErr := c.results.Set(key, value, memory.WithNamespace(namespace), memory.WithEmbedding(vector)); setErr != nil {
			logger.Debug("results not cached", observability.Error(setErr))
		}
	}

	return finish(statusForResults(resp.Results))
}

// filter keeps the request filters this source can evaluate in the backend.
func (c *VectorClient) filter(ctx context.Context, f *domain.Filters) map[string]string {
	if f == nil {
		return nil
	}

	out := make(map[string]string, len(f.Fields)+1)
	if f.ClientID != "" && c.profile.allowsFilter("client_id") {
		out["client_id"] = f.ClientID
	}
	for field, value := range f.Fields {
		if !c.profile.allowsFilter(field) {
			observability.FromContext(ctx).Debug("ignoring unsupported filter", observability.String("field", field))
			continue
		}
		out[field] = value
	}
	return out
}

// cacheNamespace partitions cached results by everything except the query text, so
// a semantic hit never crosses filters or limits.
func (c *VectorClient) cacheNamespace(q domain.SearchQuery, limit int, threshold float64) string {
	filters, _ := json.Marshal(q.Filters)
	sum := xxhash.Sum64String(fmt.Sprintf("%s|%d|%g", filters, limit, threshold))
	return c.profile.Name + ":" + strconv.FormatUint(sum, 16)
}

// cloneResults copies results and their payload maps so callers and the result
// cache never share a map. Nested payload values are still shared.
func cloneResults(in []domain.SearchResult) []domain.SearchResult {
	out := make([]domain.SearchResult, len(in))
	for i, r := range in {
		r.Payload = maps.Clone(r.Payload)
		out[i] = r
	}
	return out
}
