package source

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/observability"
	"github.com/davidbz/searchmesh/internal/processor"
	"github.com/davidbz/searchmesh/internal/resilience"
)

// Searcher is a backend that returns raw hits instead of domain results. Hits may be
// mappings with a "score" key or values implementing processor.PayloadCarrier and
// processor.ScoreCarrier.
type Searcher interface {
	Query(ctx context.Context, text string, limit int) ([]any, error)
}

// Adapter turns a Searcher into a domain.SearchClient.
type Adapter struct {
	profile  Profile
	searcher Searcher
	breaker  *resilience.CircuitBreaker
	settings Settings
}

// NewAdapter wraps searcher for profile.
func NewAdapter(p Profile, searcher Searcher, breakers *resilience.Registry, settings Settings) (*Adapter, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if searcher == nil {
		return nil, domain.Configuration(errors.New("searcher is not configured"))
	}
	if breakers == nil {
		return nil, errors.New("breaker registry is required")
	}

	return &Adapter{
		profile:  p,
		searcher: searcher,
		breaker:  breakers.Get(BreakerName(p.Name)),
		settings: settings,
	}, nil
}

// SourceName returns the source identifier.
func (a *Adapter) SourceName() string {
	return a.profile.Name
}

// ValidateResult reports whether a result carries the fields this source requires.
func (a *Adapter) ValidateResult(result domain.SearchResult) bool {
	return validateResult(a.profile, result)
}

// FormatForDisplay renders results as plain text.
func (a *Adapter) FormatForDisplay(results []domain.SearchResult) string {
	return formatResults(a.profile, results)
}

// Search queries the wrapped searcher through the source breaker.
func (a *Adapter) Search(ctx context.Context, q domain.SearchQuery) domain.SourceResponse {
	start := time.Now()
	ctx = observability.WithSource(ctx, a.profile.Name)

	resp := domain.SourceResponse{Source: a.profile.Name, Results: []domain.SearchResult{}}
	text := strings.TrimSpace(q.Query)
	if text == "" {
		resp.Status = domain.StatusEmpty
		resp.Elapsed = time.Since(start)
		return resp
	}

	limit := a.settings.limit(q.Limit)

	hits, err := resilience.Execute(ctx, a.breaker, func(ctx context.Context) ([]any, error) {
		ctx, cancel := context.WithTimeout(ctx, a.settings.timeout(a.profile))
		defer cancel()
		return a.searcher.Query(ctx, text, limit*overfetch)
	}, nil)
	if err != nil {
		observability.FromContext(ctx).Warn("source search failed", observability.Error(err))
		resp.Status = statusFor(err)
		resp.Elapsed = time.Since(start)
		return resp
	}

	raw := make([]domain.SearchResult, 0, len(hits))
	for _, hit := range hits {
		payload := processor.ExtractPayload(hit)
		raw = append(raw, domain.SearchResult{
			ID:          fieldText(payload, "id"),
			Score:       processor.ExtractScore(hit),
			VectorScore: processor.ExtractScore(hit),
			Payload:     payload,
		})
	}

	resp.Results, resp.Dropped = finalize(a.profile, q, raw, limit, a.settings.threshold(q.ScoreThreshold))
	resp.Status = statusForResults(resp.Results)
	resp.Elapsed = time.Since(start)
	return resp
}
