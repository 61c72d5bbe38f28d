package processor

import "github.com/davidbz/searchmesh/internal/domain"

// Deduplicate collapses results sharing a content hash into the highest scoring one.
// Groups keep the position of their first member.
func Deduplicate(results []domain.SearchResult) []domain.SearchResult {
	out := make([]domain.SearchResult, 0, len(results))
	index := make(map[string]int, len(results))

	for _, r := range results {
		h := resultHash(r)
		if h == "" {
			out = append(out, r)
			continue
		}

		if i, seen := index[h]; seen {
			if r.Score > out[i].Score {
				out[i] = r
			}
			continue
		}

		index[h] = len(out)
		out = append(out, r)
	}

	return out
}
