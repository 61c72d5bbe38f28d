package source

import (
	"context"
	"errors"
	"time"

	"github.com/davidbz/searchmesh/internal/cache/memory"
	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/processor"
)

const (
	defaultLimit   = 10
	defaultTimeout = 10 * time.Second
	overfetch      = 2
	resultOverhead = 64
)

// Settings holds per-search defaults shared by every client.
type Settings struct {
	DefaultLimit   int
	ScoreThreshold float64
	Timeout        time.Duration
}

func (s Settings) limit(requested int) int {
	if requested > 0 {
		return requested
	}
	if s.DefaultLimit > 0 {
		return s.DefaultLimit
	}
	return defaultLimit
}

func (s Settings) threshold(requested float64) float64 {
	if requested > 0 {
		return requested
	}
	return s.ScoreThreshold
}

func (s Settings) timeout(p Profile) time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	if s.Timeout > 0 {
		return s.Timeout
	}
	return defaultTimeout
}

// CachedResults is the value stored in the result cache.
type CachedResults struct {
	Results []domain.SearchResult `json:"results"`
	Dropped int                   `json:"dropped"`
}

// SizeBytes estimates the footprint of the cached results.
func (c CachedResults) SizeBytes() int64 {
	var size int64
	for _, r := range c.Results {
		size += resultOverhead + int64(len(r.ID)+len(r.SourceType)) + memory.EstimateSize(r.Payload)
	}
	return size
}

// ResultCache stores processed results per source.
type ResultCache = memory.Cache[CachedResults]

// finalize applies the similarity threshold and the processing pipeline to raw hits.
func finalize(p Profile, q domain.SearchQuery, raw []domain.SearchResult, limit int, threshold float64) ([]domain.SearchResult, int) {
	hits := make([]domain.SearchResult, 0, len(raw))
	for _, r := range raw {
		if r.Score < threshold {
			continue
		}
		r.SourceType = p.Name
		hits = append(hits, r)
	}

	opts := processor.Options{
		Validate: func(r domain.SearchResult) bool { return validateResult(p, r) },
		Limit:    limit,
	}
	if q.Filters != nil {
		opts.StartDate = q.Filters.StartDate
		opts.EndDate = q.Filters.EndDate
		opts.Scoring.ClientID = q.Filters.ClientID
	}

	out := processor.Process(hits, opts)
	return out.Results, out.Dropped
}

// validateResult requires a similarity score in [0, 1] and every required field.
func validateResult(p Profile, r domain.SearchResult) bool {
	if r.Score < 0 || r.Score > 1 {
		return false
	}
	for _, field := range p.RequiredFields {
		v, ok := r.Payload[field]
		if !ok || v == nil {
			return false
		}
		if s, isString := v.(string); isString && s == "" {
			return false
		}
	}
	return true
}

// statusFor maps a failed search onto the status reported to callers.
func statusFor(err error) domain.SourceStatus {
	switch {
	case errors.Is(err, domain.ErrCircuitOpen):
		return domain.StatusCircuitOpen
	case errors.Is(err, context.DeadlineExceeded):
		return domain.StatusTimeout
	case errors.Is(err, domain.ErrConfiguration):
		return domain.StatusUnavailable
	case errors.Is(err, domain.ErrTransient):
		return domain.StatusDegraded
	default:
		return domain.StatusError
	}
}

func statusForResults(results []domain.SearchResult) domain.SourceStatus {
	if len(results) == 0 {
		return domain.StatusEmpty
	}
	return domain.StatusOK
}
