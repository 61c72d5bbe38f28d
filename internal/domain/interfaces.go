package domain

import "context"

// SearchClient is the contract every per-source client satisfies, real or fallback.
type SearchClient interface {
	// SourceName returns the source identifier (e.g. "zendesk").
	SourceName() string

	// ValidateResult reports whether a backend result carries the fields this source needs.
	ValidateResult(result SearchResult) bool

	// Search runs a semantic query against the source. It never returns an error:
	// operational failures are reported through SourceResponse.Status.
	Search(ctx context.Context, query SearchQuery) SourceResponse

	// FormatForDisplay renders results as plain text.
	FormatForDisplay(results []SearchResult) string
}

// ClientFactory builds and caches per-source clients.
type ClientFactory interface {
	// Initialize constructs every configured client.
	Initialize(ctx context.Context) error

	// GetClient returns the client for a source, falling back to a no-op client.
	GetClient(ctx context.Context, sourceType string) SearchClient

	// GetAllClients returns every configured client keyed by source.
	GetAllClients(ctx context.Context) map[string]SearchClient
}

// EmbeddingGenerator creates vector embeddings from text.
type EmbeddingGenerator interface {
	// Generate creates a vector embedding from text.
	Generate(ctx context.Context, text string) ([]float64, error)

	// Name returns the generator identifier.
	Name() string

	// Model returns the embedding model name.
	Model() string

	// Dimension returns the vector dimension.
	Dimension() int
}

// VectorBackend performs vector similarity queries against a collection.
type VectorBackend interface {
	// Search returns up to limit nearest results for the vector.
	Search(ctx context.Context, collection string, vector []float64, filter map[string]string, limit int) ([]SearchResult, error)

	// CollectionExists reports whether the collection index is present.
	CollectionExists(ctx context.Context, collection string) (bool, error)
}

// EventPublisher publishes events for observability.
type EventPublisher interface {
	// Publish publishes an event with the given type and data.
	Publish(ctx context.Context, eventType string, data map[string]interface{})
}

// DocumentIndexer writes documents into a vector collection.
type DocumentIndexer interface {
	// EnsureCollection creates the collection if missing. Tag fields become filterable.
	EnsureCollection(ctx context.Context, collection string, dimension int, tagFields []string) error

	// Index stores one document embedding with its payload and filter tags.
	Index(ctx context.Context, collection, id string, embedding []float64, payload map[string]any, tags map[string]string) error
}
