package source

import (
	"context"
	"sort"
	"strings"
)

// StaticSearcher matches query terms against documents held in memory. It makes no
// external calls and gives deterministic results, for development and tests.
type StaticSearcher struct {
	docs []staticDoc
}

type staticDoc struct {
	payload map[string]any
	terms   map[string]struct{}
}

// staticHit carries a document and its match score.
type staticHit struct {
	payload map[string]any
	score   float64
}

func (h staticHit) GetPayload() map[string]any { return h.payload }

func (h staticHit) GetScore() float64 { return h.score }

// NewStaticSearcher indexes documents by the words of their string fields.
func NewStaticSearcher(documents []map[string]any) *StaticSearcher {
	s := &StaticSearcher{docs: make([]staticDoc, 0, len(documents))}
	for _, doc := range documents {
		terms := make(map[string]struct{})
		for _, v := range doc {
			if text, ok := v.(string); ok {
				for _, term := range tokenize(text) {
					terms[term] = struct{}{}
				}
			}
		}
		s.docs = append(s.docs, staticDoc{payload: doc, terms: terms})
	}
	return s
}

// Query scores each document by the fraction of query terms it contains.
func (s *StaticSearcher) Query(ctx context.Context, text string, limit int) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := tokenize(text)
	if len(query) == 0 {
		return []any{}, nil
	}

	hits := make([]staticHit, 0, len(s.docs))
	for _, doc := range s.docs {
		matched := 0
		for _, term := range query {
			if _, ok := doc.terms[term]; ok {
				matched++
			}
		}
		if matched > 0 {
			hits = append(hits, staticHit{payload: doc.payload, score: float64(matched) / float64(len(query))})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]any, len(hits))
	for i, h := range hits {
		out[i] = h
	}
	return out, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r > 127)
	})
}
