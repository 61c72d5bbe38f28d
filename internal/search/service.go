// Package search fans a query out to every requested source and merges the answers
// into one ranked, de-duplicated list.
package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/observability"
	"github.com/davidbz/searchmesh/internal/processor"
)

const fallbackLimit = 10

// Observer receives the outcome of every single-source search.
type Observer func(source string, status domain.SourceStatus, elapsed time.Duration)

// Service orchestrates multi-source searches.
type Service struct {
	factory      domain.ClientFactory
	defaultLimit int
	observe      Observer
}

// Option configures a Service.
type Option func(*Service)

// WithObserver reports per-source outcomes to fn.
func WithObserver(fn Observer) Option {
	return func(s *Service) {
		s.observe = fn
	}
}

// NewService creates a search service (DI constructor).
func NewService(factory domain.ClientFactory, defaultLimit int, opts ...Option) *Service {
	if defaultLimit <= 0 {
		defaultLimit = fallbackLimit
	}

	s := &Service{
		factory:      factory,
		defaultLimit: defaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search queries the requested sources, or every configured source when none are
// named, and merges the results. A failing source never fails the request: its
// status is reported in the response instead.
func (s *Service) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}

	text := strings.TrimSpace(req.Query)
	if text == "" {
		return nil, fmt.Errorf("%w: query cannot be empty", domain.ErrValidation)
	}

	start := time.Now()
	logger := observability.FromContext(ctx)

	limit := req.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}

	clients := s.clients(ctx, req.Sources)
	names := make([]string, 0, len(clients))
	for name := range clients {
		names = append(names, name)
	}
	sort.Strings(names)

	query := domain.SearchQuery{
		Query:          text,
		Filters:        req.Filters,
		Limit:          limit,
		ScoreThreshold: req.ScoreThreshold,
	}

	responses := make([]domain.SourceResponse, len(names))
	var g errgroup.Group
	for i, name := range names {
		g.Go(func() error {
			responses[i] = clients[name].Search(ctx, query)
			return nil
		})
	}
	_ = g.Wait()

	resp := &domain.SearchResponse{
		Query:   text,
		Sources: make(map[string]domain.SourceStatus, len(names)),
	}
	if req.Format {
		resp.Text = make(map[string]string, len(names))
	}

	var merged []domain.SearchResult
	for i, name := range names {
		sr := responses[i]
		resp.Sources[name] = sr.Status
		merged = append(merged, sr.Results...)

		if req.Format {
			resp.Text[name] = clients[name].FormatForDisplay(sr.Results)
		}
		if s.observe != nil {
			s.observe(name, sr.Status, sr.Elapsed)
		}
	}

	merged = processor.Deduplicate(merged)
	processor.SortByScore(merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}

	resp.Results = merged
	resp.Elapsed = time.Since(start)

	logger.Info("search completed",
		observability.Int("sources", len(names)),
		observability.Int("results", len(merged)),
		observability.Duration("elapsed", resp.Elapsed),
	)

	return resp, nil
}

// clients resolves the requested sources. Duplicates collapse into one entry.
func (s *Service) clients(ctx context.Context, sources []string) map[string]domain.SearchClient {
	if len(sources) == 0 {
		return s.factory.GetAllClients(ctx)
	}

	out := make(map[string]domain.SearchClient, len(sources))
	for _, name := range sources {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, seen := out[name]; seen {
			continue
		}
		out[name] = s.factory.GetClient(ctx, name)
	}
	return out
}
