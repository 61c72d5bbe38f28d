package processor

import (
	"time"

	"github.com/davidbz/searchmesh/internal/domain"
)

// FilterByDate keeps results dated within [start, end], both bounds widened to whole
// UTC days. Results without a recognizable date are kept.
func FilterByDate(results []domain.SearchResult, start, end *time.Time) []domain.SearchResult {
	if start == nil && end == nil {
		return results
	}

	var from, to time.Time
	if start != nil {
		from = StartOfDay(*start)
	}
	if end != nil {
		to = EndOfDay(*end)
	}

	out := make([]domain.SearchResult, 0, len(results))
	for _, r := range results {
		date, ok := ResultDate(r.Payload)
		if !ok {
			out = append(out, r)
			continue
		}
		if start != nil && date.Before(from) {
			continue
		}
		if end != nil && date.After(to) {
			continue
		}
		out = append(out, r)
	}

	return out
}
