// Package redis implements domain.VectorBackend on Redis Stack using per-collection
// FT.SEARCH KNN indexes over hashes.
package redis

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/observability"
)

const (
	redisDialectVersion = 2

	fieldEmbedding = "embedding"
	fieldPayload   = "payload"
	fieldIndexedAt = "indexed_at"
	fieldScore     = "score"
)

// VectorSearch implements vector similarity search using Redis.
type VectorSearch struct {
	client      redis.UniversalClient
	indexPrefix string
	keyPrefix   string
}

// NewClient creates a RESP2 Redis client so FT.* replies decode into typed results.
func NewClient(cfg *Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Protocol: redisDialectVersion,
	})
}

// NewVectorSearch creates a new Redis vector search adapter.
func NewVectorSearch(client redis.UniversalClient, cfg *Config) (*VectorSearch, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}

	v := &VectorSearch{
		client:      client,
		indexPrefix: "idx:",
		keyPrefix:   "doc:",
	}
	if cfg != nil {
		if cfg.IndexPrefix != "" {
			v.indexPrefix = cfg.IndexPrefix
		}
		if cfg.KeyPrefix != "" {
			v.keyPrefix = cfg.KeyPrefix
		}
	}

	return v, nil
}

// floatsToBytes converts float64 slice to binary byte representation.
func floatsToBytes(fs []float64) []byte {
	const bytesPerFloat32 = 4
	buf := make([]byte, len(fs)*bytesPerFloat32)

	for i, f := range fs {
		// Convert float64 to float32 for Redis compatibility
		u := math.Float32bits(float32(f))
		binary.LittleEndian.PutUint32(buf[i*bytesPerFloat32:], u)
	}

	return buf
}

func (v *VectorSearch) indexName(collection string) string {
	return v.indexPrefix + collection
}

func (v *VectorSearch) documentKey(collection, id string) string {
	return v.keyPrefix + collection + ":" + id
}

// Search returns the nearest documents of collection, restricted by exact-match tag filters.
func (v *VectorSearch) Search(
	ctx context.Context,
	collection string,
	vector []float64,
	filter map[string]string,
	limit int,
) ([]domain.SearchResult, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", domain.ErrValidation)
	}

	logger := observability.FromContext(observability.WithCollection(ctx, collection))
	logger.Debug("starting vector search",
		observability.Int("embedding_dim", len(vector)),
		observability.Int("limit", limit),
		observability.Int("filters", len(filter)))

	query := fmt.Sprintf("%s=>[KNN %d @%s $vec AS %s]", buildFilterQuery(filter), limit, fieldEmbedding, fieldScore)

	results, err := v.client.FTSearchWithArgs(ctx, v.indexName(collection), query,
		&redis.FTSearchOptions{
			Return: []redis.FTSearchReturn{
				{FieldName: fieldPayload},
				{FieldName: fieldIndexedAt},
				{FieldName: fieldScore},
			},
			SortBy:         []redis.FTSearchSortBy{{FieldName: fieldScore, Asc: true}},
			LimitOffset:    0,
			Limit:          limit,
			DialectVersion: redisDialectVersion,
			Params: map[string]any{
				"vec": floatsToBytes(vector),
			},
		},
	).Result()
	if err != nil {
		logger.Warn("vector search failed", observability.Error(err))
		return nil, classifyError(fmt.Errorf("search %s failed: %w", collection, err))
	}

	logger.Debug("vector search completed",
		observability.Int("total_docs", results.Total),
		observability.Int("docs_returned", len(results.Docs)))

	return v.parseSearchResults(ctx, collection, results), nil
}

// CollectionExists reports whether the collection's index is present.
func (v *VectorSearch) CollectionExists(ctx context.Context, collection string) (bool, error) {
	_, err := v.client.FTInfo(ctx, v.indexName(collection)).Result()
	if err == nil {
		return true, nil
	}
	if isUnknownIndex(err) {
		return false, nil
	}
	return false, classifyError(fmt.Errorf("inspect %s failed: %w", collection, err))
}

// EnsureCollection creates the collection index if it does not exist. Tag fields
// become filterable through Search.
func (v *VectorSearch) EnsureCollection(ctx context.Context, collection string, dimension int, tagFields []string) error {
	logger := observability.FromContext(observability.WithCollection(ctx, collection))

	exists, err := v.CollectionExists(ctx, collection)
	if err != nil {
		return err
	}
	if exists {
		logger.Debug("redis search index already exists, skipping creation",
			observability.String("index_name", v.indexName(collection)))
		return nil
	}

	logger.Info("creating redis search index",
		observability.String("index_name", v.indexName(collection)),
		observability.Int("embedding_dimension", dimension))

	schema := []*redis.FieldSchema{
		{
			FieldName: fieldEmbedding,
			FieldType: redis.SearchFieldTypeVector,
			VectorArgs: &redis.FTVectorArgs{
				FlatOptions: &redis.FTFlatOptions{
					Type:           "FLOAT32",
					Dim:            dimension,
					DistanceMetric: "COSINE",
				},
			},
		},
		{
			FieldName: fieldPayload,
			FieldType: redis.SearchFieldTypeText,
			NoIndex:   true,
		},
		{
			FieldName: fieldIndexedAt,
			FieldType: redis.SearchFieldTypeNumeric,
			Sortable:  true,
		},
	}
	for _, tag := range tagFields {
		schema = append(schema, &redis.FieldSchema{
			FieldName: tag,
			FieldType: redis.SearchFieldTypeTag,
		})
	}

	_, err = v.client.FTCreate(ctx, v.indexName(collection),
		&redis.FTCreateOptions{
			OnHash: true,
			Prefix: []any{v.keyPrefix + collection + ":"},
		},
		schema...,
	).Result()
	if err != nil {
		return classifyError(fmt.Errorf("failed to create index %s: %w", collection, err))
	}

	logger.Info("successfully created redis search index",
		observability.String("index_name", v.indexName(collection)))

	return nil
}

// Index stores a document vector with its payload. Tag values are stored as
// separate hash fields so they can be filtered on.
func (v *VectorSearch) Index(
	ctx context.Context,
	collection string,
	id string,
	embedding []float64,
	payload map[string]any,
	tags map[string]string,
) error {
	logger := observability.FromContext(observability.WithCollection(ctx, collection))
	logger.Debug("starting vector index",
		observability.String("id", id),
		observability.Int("embedding_dim", len(embedding)))

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: failed to encode payload: %w", domain.ErrValidation, err)
	}

	values := []any{
		fieldEmbedding, floatsToBytes(embedding),
		fieldPayload, string(data),
		fieldIndexedAt, time.Now().Unix(),
	}
	for _, k := range sortedKeys(tags) {
		values = append(values, k, tags[k])
	}

	if err = v.client.HSet(ctx, v.documentKey(collection, id), values...).Err(); err != nil {
		logger.Warn("vector index failed", observability.Error(err))
		return classifyError(fmt.Errorf("failed to index %s: %w", id, err))
	}

	return nil
}

// parseSearchResults parses Redis FTSearchResult into domain SearchResult structs.
func (v *VectorSearch) parseSearchResults(
	ctx context.Context,
	collection string,
	result redis.FTSearchResult,
) []domain.SearchResult {
	results := make([]domain.SearchResult, 0, len(result.Docs))

	for _, doc := range result.Docs {
		if r, ok := v.parseSearchResult(ctx, collection, doc); ok {
			results = append(results, r)
		}
	}

	return results
}

// parseSearchResult parses a single Document into a domain SearchResult.
func (v *VectorSearch) parseSearchResult(
	ctx context.Context,
	collection string,
	doc redis.Document,
) (domain.SearchResult, bool) {
	logger := observability.FromContext(ctx)

	// Extract score from fields (it's returned as "score" field, not doc.Score)
	scoreStr, ok := doc.Fields[fieldScore]
	if !ok {
		return domain.SearchResult{}, false
	}

	distance, err := strconv.ParseFloat(scoreStr, 64)
	if err != nil {
		return domain.SearchResult{}, false
	}

	// Cosine distance is in [0, 2]; map it onto a [0, 1] similarity.
	similarity := min(max(1.0-distance, 0), 1)

	payload := map[string]any{}
	if data, ok := doc.Fields[fieldPayload]; ok && data != "" {
		if err = json.Unmarshal([]byte(data), &payload); err != nil {
			logger.Warn("payload is not valid JSON",
				observability.String("key", doc.ID),
				observability.Error(err))
			return domain.SearchResult{}, false
		}
	}

	if ts, ok := doc.Fields[fieldIndexedAt]; ok {
		if _, exists := payload[fieldIndexedAt]; !exists {
			if n, parseErr := strconv.ParseInt(ts, 10, 64); parseErr == nil {
				payload[fieldIndexedAt] = n
			}
		}
	}

	id := strings.TrimPrefix(doc.ID, v.keyPrefix+collection+":")
	if _, exists := payload["id"]; !exists {
		payload["id"] = id
	}

	return domain.SearchResult{
		ID:          id,
		Score:       similarity,
		VectorScore: similarity,
		Payload:     payload,
	}, true
}

// buildFilterQuery renders tag filters as an FT.SEARCH prefilter.
func buildFilterQuery(filter map[string]string) string {
	if len(filter) == 0 {
		return "*"
	}

	clauses := make([]string, 0, len(filter))
	for _, field := range sortedKeys(filter) {
		value := filter[field]
		if value == "" {
			continue
		}
		clauses = append(clauses, fmt.Sprintf("@%s:{%s}", field, escapeTag(value)))
	}
	if len(clauses) == 0 {
		return "*"
	}

	return "(" + strings.Join(clauses, " ") + ")"
}

// escapeTag escapes RediSearch tag punctuation and whitespace.
func escapeTag(value string) string {
	var b strings.Builder
	for _, r := range value {
		if strings.ContainsRune(",.<>{}[]\"':;!@#$%^&*()-+=~|/\\ ", r) {
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isUnknownIndex(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unknown index") || strings.Contains(msg, "no such index")
}

// classifyError marks connectivity failures as transient and missing indexes as
// configuration errors.
func classifyError(err error) error {
	var netErr net.Error
	switch {
	case errors.Is(err, context.Canceled):
		return err
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, io.EOF),
		errors.Is(err, redis.ErrClosed),
		errors.As(err, &netErr):
		return domain.Transient(err)
	case isUnknownIndex(err):
		return domain.Configuration(err)
	}

	msg := strings.ToLower(err.Error())
	if strings.HasPrefix(msg, "loading") || strings.Contains(msg, "busy") || strings.Contains(msg, "tryagain") {
		return domain.Transient(err)
	}
	return err
}
