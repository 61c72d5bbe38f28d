package source

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/observability"
)

// FallbackClient stands in for a source that could not be built. It never searches
// and logs its reason once.
type FallbackClient struct {
	profile Profile
	reason  error
	once    sync.Once
}

// NewFallbackClient creates a fallback client for p.
func NewFallbackClient(p Profile, reason error) *FallbackClient {
	return &FallbackClient{profile: p, reason: reason}
}

// SourceName returns the source identifier.
func (c *FallbackClient) SourceName() string {
	return c.profile.Name
}

// Reason returns why the real client is unavailable.
func (c *FallbackClient) Reason() error {
	return c.reason
}

// ValidateResult rejects everything.
func (c *FallbackClient) ValidateResult(domain.SearchResult) bool {
	return false
}

// Search returns an empty response marked unavailable.
func (c *FallbackClient) Search(ctx context.Context, _ domain.SearchQuery) domain.SourceResponse {
	c.once.Do(func() {
		fields := []observability.Field{observability.String("source", c.profile.Name)}
		if c.reason != nil {
			fields = append(fields, observability.Error(c.reason))
		}
		observability.FromContext(ctx).Warn("source unavailable, serving empty results", fields...)
	})

	return domain.SourceResponse{
		Source:  c.profile.Name,
		Results: []domain.SearchResult{},
		Status:  domain.StatusUnavailable,
		Elapsed: time.Duration(0),
	}
}

// FormatForDisplay returns the unavailable marker.
func (c *FallbackClient) FormatForDisplay([]domain.SearchResult) string {
	return fmt.Sprintf("%s search is currently unavailable.", c.profile.Label())
}
