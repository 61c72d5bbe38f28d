package processor

import (
	"slices"
	"time"

	"github.com/davidbz/searchmesh/internal/domain"
)

// Options configures Process.
type Options struct {
	// Validate drops results it rejects. Nil accepts everything.
	Validate func(domain.SearchResult) bool
	// StartDate and EndDate bound result dates, inclusive by calendar day.
	StartDate *time.Time
	EndDate   *time.Time
	Scoring   ScoringContext
	// Limit truncates the output; zero or negative keeps everything.
	Limit int
}

// Outcome is the result of Process.
type Outcome struct {
	Results []domain.SearchResult
	// Dropped counts results rejected by validation.
	Dropped int
}

// Process validates, date-filters, deduplicates, scores, sorts and truncates results.
// The input slice is not modified. Each result keeps its similarity score in
// VectorScore and carries the composite score in Score.
func Process(results []domain.SearchResult, opts Options) Outcome {
	valid := make([]domain.SearchResult, 0, len(results))
	dropped := 0
	for _, r := range results {
		if opts.Validate != nil && !opts.Validate(r) {
			dropped++
			continue
		}
		valid = append(valid, r)
	}

	valid = FilterByDate(valid, opts.StartDate, opts.EndDate)
	valid = Deduplicate(valid)

	for i := range valid {
		if valid[i].VectorScore == 0 {
			valid[i].VectorScore = valid[i].Score
		}
		valid[i].Score = CompositeScore(valid[i], opts.Scoring)
	}

	SortByScore(valid)

	if opts.Limit > 0 && len(valid) > opts.Limit {
		valid = valid[:opts.Limit]
	}

	return Outcome{Results: valid, Dropped: dropped}
}

// SortByScore orders results by descending score, keeping input order for ties.
func SortByScore(results []domain.SearchResult) {
	slices.SortStableFunc(results, func(a, b domain.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
}
