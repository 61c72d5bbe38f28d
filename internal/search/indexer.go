package search

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/observability"
	"github.com/davidbz/searchmesh/internal/source"
)

const indexConcurrency = 4

// Indexer embeds documents and writes them into the collection of a vector source.
type Indexer struct {
	profiles map[string]source.Profile
	embedder domain.EmbeddingGenerator
	store    domain.DocumentIndexer
}

// NewIndexer creates an indexer for profiles (DI constructor).
func NewIndexer(profiles []source.Profile, embedder domain.EmbeddingGenerator, store domain.DocumentIndexer) *Indexer {
	byName := make(map[string]source.Profile, len(profiles))
	for _, p := range profiles {
		byName[p.Name] = p
	}

	return &Indexer{
		profiles: byName,
		embedder: embedder,
		store:    store,
	}
}

// Index stores every document of req. Documents that fail are listed in the
// response; only a failure to prepare the collection is returned as an error.
func (x *Indexer) Index(ctx context.Context, req *domain.IndexRequest) (*domain.IndexResponse, error) {
	if req == nil {
		return nil, errors.New("request cannot be nil")
	}
	if len(req.Documents) == 0 {
		return nil, fmt.Errorf("%w: no documents to index", domain.ErrValidation)
	}

	p, ok := x.profiles[req.Source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownSource, req.Source)
	}
	if p.Kind == source.KindStatic {
		return nil, domain.Configuration(fmt.Errorf("source %s does not accept documents", p.Name))
	}
	if x.embedder == nil || x.store == nil {
		return nil, domain.Configuration(errors.New("indexing requires an embedding provider and a vector store"))
	}

	ctx = observability.WithCollection(observability.WithSource(ctx, p.Name), p.Collection)
	logger := observability.FromContext(ctx)

	if err := x.store.EnsureCollection(ctx, p.Collection, x.embedder.Dimension(), p.FilterFields); err != nil {
		return nil, fmt.Errorf("failed to prepare collection %s: %w", p.Collection, err)
	}

	var (
		mu     sync.Mutex
		failed []string
	)
	fail := func(id string, err error) {
		logger.Warn("document not indexed", observability.String("id", id), observability.Error(err))
		mu.Lock()
		failed = append(failed, id)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(indexConcurrency)
	for _, doc := range req.Documents {
		g.Go(func() error {
			id := doc.ID
			if id == "" {
				id = uuid.NewString()
			}

			text := documentText(p, doc)
			if text == "" {
				fail(id, fmt.Errorf("%w: document has no text", domain.ErrValidation))
				return nil
			}

			vector, err := x.embedder.Generate(gctx, text)
			if err != nil {
				fail(id, err)
				return nil
			}

			payload := make(map[string]any, len(doc.Payload)+1)
			for k, v := range doc.Payload {
				payload[k] = v
			}
			payload["id"] = id

			if err = x.store.Index(gctx, p.Collection, id, vector, payload, tags(p, payload)); err != nil {
				fail(id, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	sort.Strings(failed)
	resp := &domain.IndexResponse{
		Source:  p.Name,
		Indexed: len(req.Documents) - len(failed),
		Failed:  failed,
	}

	logger.Info("documents indexed",
		observability.Int("indexed", resp.Indexed),
		observability.Int("failed", len(failed)),
	)

	return resp, nil
}

// documentText is the text that gets embedded: the explicit text, or the title
// and content fields of the payload.
func documentText(p source.Profile, doc domain.Document) string {
	if text := strings.TrimSpace(doc.Text); text != "" {
		return text
	}

	parts := make([]string, 0, 2)
	for _, field := range []string{p.TitleField, p.ContentField} {
		if field == "" {
			continue
		}
		if s, ok := doc.Payload[field].(string); ok && strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, "\n")
}

// tags extracts the filterable fields of a payload.
func tags(p source.Profile, payload map[string]any) map[string]string {
	out := make(map[string]string, len(p.FilterFields))
	for _, field := range p.FilterFields {
		v, ok := payload[field]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			out[field] = s
		}
	}
	return out
}
