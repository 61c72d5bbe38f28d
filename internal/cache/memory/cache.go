// Package memory provides a bounded, namespaced in-memory cache with exact-key and
// embedding-similarity lookup, frequency-aware eviction, adaptive TTL, periodic
// maintenance and atomic snapshot persistence.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/davidbz/searchmesh/internal/domain"
)

const (
	// DefaultNamespace is used when a caller passes an empty namespace.
	DefaultNamespace = "default"

	lowWaterRatio = 0.8
)

// ErrEntryTooLarge is returned when a single value exceeds the memory limit.
var ErrEntryTooLarge = errors.New("cache entry exceeds memory limit")

// Clock returns the current time.
type Clock func() time.Time

// Metrics receives cache events. Implementations must be safe for concurrent use.
type Metrics interface {
	Lookup(cache, result string)
	Evicted(cache, reason string, n int)
	Usage(cache string, entries int, bytes int64)
}

// Config holds cache limits and maintenance settings.
type Config struct {
	MaxEntries          int           `env:"CACHE_MAX_ENTRIES"          envDefault:"10000"`
	MinEntries          int           `env:"CACHE_MIN_ENTRIES"          envDefault:"1000"`
	MaxEntriesCap       int           `env:"CACHE_MAX_ENTRIES_CAP"      envDefault:"50000"`
	MaxMemoryBytes      int64         `env:"CACHE_MAX_MEMORY_BYTES"     envDefault:"268435456"`
	TTL                 time.Duration `env:"CACHE_TTL"                  envDefault:"1h"`
	MinTTL              time.Duration `env:"CACHE_MIN_TTL"              envDefault:"5m"`
	MaxTTL              time.Duration `env:"CACHE_MAX_TTL"              envDefault:"24h"`
	MaintenanceInterval time.Duration `env:"CACHE_MAINTENANCE_INTERVAL" envDefault:"5m"`
	MinSamples          int           `env:"CACHE_MIN_SAMPLES"          envDefault:"50"`
	SnapshotPath        string        `env:"CACHE_SNAPSHOT_PATH"`
	SimilarityThreshold float64       `env:"CACHE_SIMILARITY_THRESHOLD" envDefault:"0.95"`
}

// DefaultConfig returns the defaults used for zero-valued fields.
func DefaultConfig() Config {
	return Config{
		MaxEntries:          10000,
		MinEntries:          1000,
		MaxEntriesCap:       50000,
		MaxMemoryBytes:      256 << 20,
		TTL:                 time.Hour,
		MinTTL:              5 * time.Minute,
		MaxTTL:              24 * time.Hour,
		MaintenanceInterval: 5 * time.Minute,
		MinSamples:          50,
		SimilarityThreshold: 0.95,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxEntries <= 0 {
		c.MaxEntries = d.MaxEntries
	}
	if c.MinEntries <= 0 || c.MinEntries > c.MaxEntries {
		c.MinEntries = min(d.MinEntries, c.MaxEntries)
	}
	if c.MaxEntriesCap < c.MaxEntries {
		c.MaxEntriesCap = max(d.MaxEntriesCap, c.MaxEntries)
	}
	if c.MaxMemoryBytes <= 0 {
		c.MaxMemoryBytes = d.MaxMemoryBytes
	}
	if c.TTL <= 0 {
		c.TTL = d.TTL
	}
	if c.MinTTL <= 0 || c.MinTTL > c.TTL {
		c.MinTTL = min(d.MinTTL, c.TTL)
	}
	if c.MaxTTL < c.TTL {
		c.MaxTTL = max(d.MaxTTL, c.TTL)
	}
	if c.MaintenanceInterval <= 0 {
		c.MaintenanceInterval = d.MaintenanceInterval
	}
	if c.MinSamples <= 0 {
		c.MinSamples = d.MinSamples
	}
	if c.SimilarityThreshold <= 0 {
		c.SimilarityThreshold = d.SimilarityThreshold
	}
	return c
}

// Stats is a point-in-time view of cache counters.
type Stats struct {
	Name            string        `json:"name"`
	Size            int           `json:"size"`
	Namespaces      int           `json:"namespaces"`
	Hits            int64         `json:"hits"`
	Misses          int64         `json:"misses"`
	SemanticHits    int64         `json:"semantic_hits"`
	SemanticMisses  int64         `json:"semantic_misses"`
	Evictions       int64         `json:"evictions"`
	Expirations     int64         `json:"expirations"`
	MemoryUsedBytes int64         `json:"memory_used_bytes"`
	MaxMemoryBytes  int64         `json:"max_memory_bytes"`
	MaxEntries      int           `json:"max_entries"`
	BaseTTL         time.Duration `json:"base_ttl"`
	HitRate         float64       `json:"hit_rate"`
}

// Cache is a bounded key/value store partitioned into namespaces.
// All methods are safe for concurrent use; no I/O happens under the lock.
type Cache[V any] struct {
	name    string
	cfg     Config
	now     Clock
	sizer   func(V) int64
	metrics Metrics
	events  domain.EventPublisher

	model     string
	dimension int

	mu         sync.Mutex
	namespaces map[string]map[string]*entry[V]
	count      int
	memoryUsed int64
	maxEntries int
	baseTTL    time.Duration

	hits           int64
	misses         int64
	semanticHits   int64
	semanticMisses int64
	evictions      int64
	expirations    int64
	windowHits     int64
	windowMisses   int64

	lifecycleMu sync.Mutex
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithClock overrides the time source.
func WithClock[V any](clock Clock) Option[V] {
	return func(c *Cache[V]) {
		if clock != nil {
			c.now = clock
		}
	}
}

// WithSizer overrides the size estimator.
func WithSizer[V any](sizer func(V) int64) Option[V] {
	return func(c *Cache[V]) {
		if sizer != nil {
			c.sizer = sizer
		}
	}
}

// WithMetrics attaches a metrics sink.
func WithMetrics[V any](m Metrics) Option[V] {
	return func(c *Cache[V]) {
		c.metrics = m
	}
}

// WithEvents publishes maintenance decisions to pub.
func WithEvents[V any](pub domain.EventPublisher) Option[V] {
	return func(c *Cache[V]) {
		c.events = pub
	}
}

// WithSnapshotIdentity sets the embedding model and dimension recorded in snapshots.
// A snapshot written under a different identity is rejected on load.
func WithSnapshotIdentity[V any](model string, dimension int) Option[V] {
	return func(c *Cache[V]) {
		c.model = model
		c.dimension = dimension
	}
}

// New creates a cache. Zero-valued config fields take their defaults.
func New[V any](name string, cfg Config, opts ...Option[V]) *Cache[V] {
	cfg = cfg.withDefaults()

	c := &Cache[V]{
		name:       name,
		cfg:        cfg,
		now:        time.Now,
		sizer:      func(v V) int64 { return EstimateSize(v) },
		namespaces: make(map[string]map[string]*entry[V]),
		maxEntries: cfg.MaxEntries,
		baseTTL:    cfg.TTL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Name returns the cache name.
func (c *Cache[V]) Name() string {
	return c.name
}

// SimilarityThreshold returns the configured default semantic threshold.
func (c *Cache[V]) SimilarityThreshold() float64 {
	return c.cfg.SimilarityThreshold
}

// SetOption configures a single Set call.
type SetOption func(*setOptions)

type setOptions struct {
	namespace string
	ttl       time.Duration
	embedding []float64
}

// WithNamespace stores the entry under namespace.
func WithNamespace(namespace string) SetOption {
	return func(o *setOptions) {
		o.namespace = namespace
	}
}

// WithTTL overrides the base TTL for the entry.
func WithTTL(ttl time.Duration) SetOption {
	return func(o *setOptions) {
		o.ttl = ttl
	}
}

// WithEmbedding attaches an embedding so the entry is reachable by GetSemantic.
func WithEmbedding(embedding []float64) SetOption {
	return func(o *setOptions) {
		o.embedding = embedding
	}
}

func namespaceOrDefault(namespace string) string {
	if namespace == "" {
		return DefaultNamespace
	}
	return namespace
}

// Get returns the value stored under key. Entries idle for longer than their
// effective TTL are evicted and reported as a miss.
func (c *Cache[V]) Get(key, namespace string) (V, bool) {
	var zero V
	namespace = namespaceOrDefault(namespace)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	e, ok := c.namespaces[namespace][key]
	if ok && e.expired(now, c.baseTTL) {
		c.removeLocked(e)
		c.expirations++
		c.recordEviction("expired", 1)
		ok = false
	}

	if !ok {
		c.misses++
		c.windowMisses++
		c.recordLookup("miss")
		return zero, false
	}

	e.touch(now)
	c.hits++
	c.windowHits++
	c.recordLookup("hit")
	return e.value, true
}

// GetSemantic returns the value whose stored embedding is most similar to
// queryEmbedding, provided the similarity is at least threshold. Entries without
// an embedding, with a different dimension, or expired are skipped.
func (c *Cache[V]) GetSemantic(queryEmbedding []float64, namespace string, threshold float64) (V, float64, bool) {
	var zero V
	namespace = namespaceOrDefault(namespace)

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	var best *entry[V]
	bestScore := threshold

	for _, e := range c.namespaces[namespace] {
		if len(e.embedding) == 0 || len(e.embedding) != len(queryEmbedding) {
			continue
		}
		if e.expired(now, c.baseTTL) {
			continue
		}
		score := CosineSimilarity(queryEmbedding, e.embedding)
		if score >= bestScore && (best == nil || score > bestScore) {
			best = e
			bestScore = score
		}
	}

	if best == nil {
		c.semanticMisses++
		c.recordLookup("semantic_miss")
		return zero, 0, false
	}

	best.touch(now)
	c.semanticHits++
	c.recordLookup("semantic_hit")
	return best.value, bestScore, true
}

// Set inserts or replaces a value, evicting cold entries first when the cache is full.
func (c *Cache[V]) Set(key string, value V, opts ...SetOption) error {
	var o setOptions
	for _, opt := range opts {
		opt(&o)
	}
	namespace := namespaceOrDefault(o.namespace)

	size := c.sizer(value) + numericSize*int64(len(o.embedding)) + int64(len(key))
	if size > c.cfg.MaxMemoryBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrEntryTooLarge, size, c.cfg.MaxMemoryBytes)
	}

	var embedding []float64
	if len(o.embedding) > 0 {
		embedding = make([]float64, len(o.embedding))
		copy(embedding, o.embedding)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if existing, ok := c.namespaces[namespace][key]; ok {
		c.removeLocked(existing)
	}

	c.makeRoomLocked(size, now)

	c.insertLocked(&entry[V]{
		namespace:    namespace,
		key:          key,
		value:        value,
		embedding:    embedding,
		createdAt:    now,
		lastAccessAt: now,
		ttl:          o.ttl,
		sizeBytes:    size,
	})

	c.recordUsage()
	return nil
}

// Delete removes key from namespace. It reports whether an entry was removed.
func (c *Cache[V]) Delete(key, namespace string) bool {
	namespace = namespaceOrDefault(namespace)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.namespaces[namespace][key]
	if !ok {
		return false
	}
	c.removeLocked(e)
	c.recordUsage()
	return true
}

// Clear drops every entry in namespace, or every entry when namespace is empty.
func (c *Cache[V]) Clear(namespace string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if namespace == "" {
		c.namespaces = make(map[string]map[string]*entry[V])
		c.count = 0
		c.memoryUsed = 0
		c.recordUsage()
		return
	}

	for _, e := range c.namespaces[namespace] {
		c.removeLocked(e)
	}
	c.recordUsage()
}

// Stats returns the current counters.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}

	return Stats{
		Name:            c.name,
		Size:            c.count,
		Namespaces:      len(c.namespaces),
		Hits:            c.hits,
		Misses:          c.misses,
		SemanticHits:    c.semanticHits,
		SemanticMisses:  c.semanticMisses,
		Evictions:       c.evictions,
		Expirations:     c.expirations,
		MemoryUsedBytes: c.memoryUsed,
		MaxMemoryBytes:  c.cfg.MaxMemoryBytes,
		MaxEntries:      c.maxEntries,
		BaseTTL:         c.baseTTL,
		HitRate:         hitRate,
	}
}

func (c *Cache[V]) insertLocked(e *entry[V]) {
	ns, ok := c.namespaces[e.namespace]
	if !ok {
		ns = make(map[string]*entry[V])
		c.namespaces[e.namespace] = ns
	}
	ns[e.key] = e
	c.count++
	c.memoryUsed += e.sizeBytes
}

func (c *Cache[V]) removeLocked(e *entry[V]) {
	ns, ok := c.namespaces[e.namespace]
	if !ok {
		return
	}
	if _, ok = ns[e.key]; !ok {
		return
	}
	delete(ns, e.key)
	if len(ns) == 0 {
		delete(c.namespaces, e.namespace)
	}
	c.count--
	c.memoryUsed -= e.sizeBytes
}

func (c *Cache[V]) recordLookup(result string) {
	if c.metrics != nil {
		c.metrics.Lookup(c.name, result)
	}
}

func (c *Cache[V]) recordEviction(reason string, n int) {
	if c.metrics != nil && n > 0 {
		c.metrics.Evicted(c.name, reason, n)
	}
}

func (c *Cache[V]) recordUsage() {
	if c.metrics != nil {
		c.metrics.Usage(c.name, c.count, c.memoryUsed)
	}
}
