package memory_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/searchmesh/internal/cache/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newCache(t *testing.T, cfg memory.Config, clock *fakeClock) *memory.Cache[string] {
	t.Helper()
	return memory.New[string]("test", cfg,
		memory.WithClock[string](clock.Now),
		memory.WithSizer[string](func(v string) int64 { return int64(len(v)) }),
	)
}

func TestCache_GetSet(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{}, clock)

	_, ok := c.Get("missing", "")
	require.False(t, ok)

	require.NoError(t, c.Set("k", "v"))

	got, ok := c.Get("k", memory.DefaultNamespace)
	require.True(t, ok)
	require.Equal(t, "v", got)

	stats := c.Stats()
	require.Equal(t, 1, stats.Size)
	require.Equal(t, int64(1), stats.Hits)
	require.Equal(t, int64(1), stats.Misses)
	require.InDelta(t, 0.5, stats.HitRate, 0.0001)
}

func TestCache_NamespacesAreIsolated(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{}, clock)

	require.NoError(t, c.Set("k", "zendesk", memory.WithNamespace("zendesk")))
	require.NoError(t, c.Set("k", "erp", memory.WithNamespace("erp")))

	got, ok := c.Get("k", "zendesk")
	require.True(t, ok)
	require.Equal(t, "zendesk", got)

	_, ok = c.Get("k", "confluence")
	require.False(t, ok)

	c.Clear("zendesk")
	_, ok = c.Get("k", "zendesk")
	require.False(t, ok)
	_, ok = c.Get("k", "erp")
	require.True(t, ok)

	c.Clear("")
	require.Equal(t, 0, c.Stats().Size)
	require.Equal(t, int64(0), c.Stats().MemoryUsedBytes)
}

func TestCache_SetReplacesExisting(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{}, clock)

	require.NoError(t, c.Set("k", "first"))
	require.NoError(t, c.Set("k", "second-value"))

	got, ok := c.Get("k", "")
	require.True(t, ok)
	require.Equal(t, "second-value", got)
	require.Equal(t, 1, c.Stats().Size)
	require.Equal(t, int64(len("second-value")+len("k")), c.Stats().MemoryUsedBytes)
}

func TestCache_Delete(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{}, clock)

	require.NoError(t, c.Set("k", "v"))
	require.True(t, c.Delete("k", ""))
	require.False(t, c.Delete("k", ""))

	_, ok := c.Get("k", "")
	require.False(t, ok)
}

func TestCache_EvictsLeastFrequentlyUsed(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{MaxEntries: 2, MinEntries: 1}, clock)

	require.NoError(t, c.Set("a", "A"))
	clock.Advance(time.Second)
	require.NoError(t, c.Set("b", "B"))

	_, ok := c.Get("a", "")
	require.True(t, ok)

	clock.Advance(time.Second)
	require.NoError(t, c.Set("c", "C"))

	_, ok = c.Get("b", "")
	require.False(t, ok, "b was the least accessed entry")

	_, ok = c.Get("a", "")
	require.True(t, ok)
	_, ok = c.Get("c", "")
	require.True(t, ok)

	require.Equal(t, int64(1), c.Stats().Evictions)
}

func TestCache_EvictionTieBreaksOnOldestAccess(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{MaxEntries: 3, MinEntries: 1}, clock)

	require.NoError(t, c.Set("old", "1"))
	clock.Advance(time.Second)
	require.NoError(t, c.Set("mid", "2"))
	clock.Advance(time.Second)
	require.NoError(t, c.Set("new", "3"))
	clock.Advance(time.Second)

	// floor(0.8 * 3) = 2, so exactly one entry goes before the insert.
	require.NoError(t, c.Set("next", "4"))

	_, ok := c.Get("old", "")
	require.False(t, ok)
	for _, key := range []string{"mid", "new", "next"} {
		_, ok = c.Get(key, "")
		require.True(t, ok, key)
	}
}

func TestCache_EvictsExpiredBeforeCold(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{MaxEntries: 2, MinEntries: 1, TTL: time.Minute}, clock)

	require.NoError(t, c.Set("short", "1", memory.WithTTL(time.Second)))
	require.NoError(t, c.Set("long", "2"))
	_, _ = c.Get("short", "")

	clock.Advance(5 * time.Second)
	require.NoError(t, c.Set("fresh", "3"))

	_, ok := c.Get("long", "")
	require.True(t, ok)
	require.Equal(t, int64(1), c.Stats().Expirations)
	require.Equal(t, int64(0), c.Stats().Evictions)
}

func TestCache_MemoryBoundHoldsAfterEverySet(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{MaxEntries: 1000, MaxMemoryBytes: 100}, clock)

	for i := range 50 {
		key := string(rune('a'+i%26)) + string(rune('a'+i/26))
		require.NoError(t, c.Set(key, "0123456789"))
		require.LessOrEqual(t, c.Stats().MemoryUsedBytes, int64(100))
	}
	require.Positive(t, c.Stats().Evictions)
}

func TestCache_RejectsOversizedEntry(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{MaxMemoryBytes: 10}, clock)

	err := c.Set("k", "this value is far too large")
	require.ErrorIs(t, err, memory.ErrEntryTooLarge)
	require.Equal(t, 0, c.Stats().Size)
}

func TestCache_ExpiryFollowsEffectiveTTL(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{TTL: 10 * time.Second}, clock)

	require.NoError(t, c.Set("cold", "v"))
	require.NoError(t, c.Set("hot", "v"))
	for range 10 {
		_, ok := c.Get("hot", "")
		require.True(t, ok)
	}

	clock.Advance(15 * time.Second)

	_, ok := c.Get("cold", "")
	require.False(t, ok, "idle longer than base TTL")

	_, ok = c.Get("hot", "")
	require.True(t, ok, "10 accesses double the TTL")
	require.Equal(t, int64(1), c.Stats().Expirations)
}

func TestEffectiveTTL(t *testing.T) {
	tests := []struct {
		name     string
		accesses int
		want     time.Duration
	}{
		{name: "never accessed", accesses: 0, want: 100 * time.Second},
		{name: "five accesses", accesses: 5, want: 150 * time.Second},
		{name: "saturates at ten", accesses: 25, want: 200 * time.Second},
		{name: "negative treated as zero", accesses: -3, want: 100 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, memory.EffectiveTTL(100*time.Second, tt.accesses))
		})
	}
}

func TestCache_GetSemantic(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{}, clock)

	require.NoError(t, c.Set("refund policy", "refunds", memory.WithEmbedding([]float64{1, 0, 0})))
	require.NoError(t, c.Set("no embedding", "plain"))

	t.Run("similar query hits", func(t *testing.T) {
		got, score, ok := c.GetSemantic([]float64{0.99, 0.1, 0}, "", 0.9)
		require.True(t, ok)
		require.Equal(t, "refunds", got)
		require.Greater(t, score, 0.9)
	})

	t.Run("dissimilar query misses", func(t *testing.T) {
		// cosine([1,0,0], [0.6,0.8,0]) = 0.6
		_, _, ok := c.GetSemantic([]float64{0.6, 0.8, 0}, "", 0.9)
		require.False(t, ok)
	})

	t.Run("dimension mismatch misses", func(t *testing.T) {
		_, _, ok := c.GetSemantic([]float64{1, 0}, "", 0.5)
		require.False(t, ok)
	})

	t.Run("other namespace misses", func(t *testing.T) {
		_, _, ok := c.GetSemantic([]float64{1, 0, 0}, "erp", 0.5)
		require.False(t, ok)
	})

	stats := c.Stats()
	require.Equal(t, int64(1), stats.SemanticHits)
	require.Equal(t, int64(3), stats.SemanticMisses)
}

func TestCache_GetSemanticPicksBestMatch(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{}, clock)

	require.NoError(t, c.Set("x", "x", memory.WithEmbedding([]float64{1, 0})))
	require.NoError(t, c.Set("y", "y", memory.WithEmbedding([]float64{0.8, 0.6})))

	got, _, ok := c.GetSemantic([]float64{0.9, 0.45}, "", 0.5)
	require.True(t, ok)
	require.Equal(t, "y", got)
}

func TestCache_GetSemanticSkipsExpired(t *testing.T) {
	clock := newFakeClock()
	c := newCache(t, memory.Config{TTL: time.Second}, clock)

	require.NoError(t, c.Set("k", "v", memory.WithEmbedding([]float64{1, 0})))
	clock.Advance(2 * time.Second)

	_, _, ok := c.GetSemantic([]float64{1, 0}, "", 0.5)
	require.False(t, ok)
}

func TestCosineSimilarity(t *testing.T) {
	require.InDelta(t, 1.0, memory.CosineSimilarity([]float64{1, 2}, []float64{2, 4}), 1e-9)
	require.InDelta(t, 0.0, memory.CosineSimilarity([]float64{1, 0}, []float64{0, 1}), 1e-9)
	require.Zero(t, memory.CosineSimilarity([]float64{0, 0}, []float64{1, 1}))
	require.Zero(t, memory.CosineSimilarity([]float64{1}, []float64{1, 1}))
	require.Zero(t, memory.CosineSimilarity(nil, nil))
}

func TestEstimateSize(t *testing.T) {
	require.Equal(t, int64(80), memory.EstimateSize(make([]float64, 10)))
	require.Equal(t, int64(40), memory.EstimateSize(make([]float32, 10)))
	require.Equal(t, int64(5), memory.EstimateSize("hello"))
	require.Equal(t, int64(3), memory.EstimateSize([]byte("abc")))
	require.Equal(t, int64(0), memory.EstimateSize(nil))
	require.Equal(t, int64(16), memory.EstimateSize(struct{ A int }{A: 1}))

	payload := map[string]any{"id": "abcd", "title": "abcd"}
	require.Equal(t, int64(14), memory.EstimateSize(payload))
}

type sized struct{}

func (sized) SizeBytes() int64 { return 1234 }

func TestEstimateSize_UsesSizer(t *testing.T) {
	require.Equal(t, int64(1234), memory.EstimateSize(sized{}))
}

func TestCache_Maintenance(t *testing.T) {
	t.Run("low hit rate and full cache grows capacity and ttl", func(t *testing.T) {
		clock := newFakeClock()
		c := newCache(t, memory.Config{
			MaxEntries: 10, MinEntries: 5, MaxEntriesCap: 100,
			TTL: time.Minute, MaxTTL: time.Hour, MinSamples: 10,
		}, clock)

		for i := range 10 {
			require.NoError(t, c.Set(string(rune('a'+i)), "v"))
		}
		for range 10 {
			_, _ = c.Get("missing", "")
		}

		report := c.RunMaintenance(context.Background())

		require.True(t, report.Evaluated)
		require.InDelta(t, 0.0, report.WindowHitRate, 0.0001)
		require.Equal(t, 12, report.MaxEntries)
		require.Equal(t, 72*time.Second, report.BaseTTL)
	})

	t.Run("high hit rate and sparse cache shrinks capacity and ttl", func(t *testing.T) {
		clock := newFakeClock()
		c := newCache(t, memory.Config{
			MaxEntries: 100, MinEntries: 50,
			TTL: time.Minute, MinTTL: 30 * time.Second, MinSamples: 10,
		}, clock)

		require.NoError(t, c.Set("k", "v"))
		for range 10 {
			_, _ = c.Get("k", "")
		}

		report := c.RunMaintenance(context.Background())

		require.True(t, report.Evaluated)
		require.Equal(t, 90, report.MaxEntries)
		require.Equal(t, 54*time.Second, report.BaseTTL)
	})

	t.Run("too few samples leaves settings alone", func(t *testing.T) {
		clock := newFakeClock()
		c := newCache(t, memory.Config{MinSamples: 50, TTL: time.Minute}, clock)

		_, _ = c.Get("k", "")
		report := c.RunMaintenance(context.Background())

		require.False(t, report.Evaluated)
		require.Equal(t, time.Minute, report.BaseTTL)
	})

	t.Run("sweeps expired entries", func(t *testing.T) {
		clock := newFakeClock()
		c := newCache(t, memory.Config{TTL: time.Minute}, clock)

		require.NoError(t, c.Set("a", "v"))
		require.NoError(t, c.Set("b", "v", memory.WithTTL(time.Hour)))
		clock.Advance(2 * time.Minute)

		report := c.RunMaintenance(context.Background())

		require.Equal(t, 1, report.Expired)
		require.Equal(t, 1, c.Stats().Size)
	})
}

func TestCache_StartClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	c := memory.New[string]("test", memory.Config{
		MaintenanceInterval: time.Hour,
		SnapshotPath:        path,
	})

	c.Start(context.Background())
	c.Start(context.Background())
	require.NoError(t, c.Set("k", "v"))
	require.NoError(t, c.Close(context.Background()))

	restored := memory.New[string]("test", memory.Config{})
	n, err := restored.Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCache_SnapshotRoundTrip(t *testing.T) {
	clock := newFakeClock()
	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")

	c := memory.New[string]("embeddings", memory.Config{},
		memory.WithClock[string](clock.Now),
		memory.WithSnapshotIdentity[string]("text-embedding-3-small", 3),
	)
	require.NoError(t, c.Set("q", "answer", memory.WithEmbedding([]float64{1, 0, 0}), memory.WithNamespace("zendesk")))
	require.NoError(t, c.Save(path))

	restored := memory.New[string]("embeddings", memory.Config{},
		memory.WithClock[string](clock.Now),
		memory.WithSnapshotIdentity[string]("text-embedding-3-small", 3),
	)
	n, err := restored.Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	got, ok := restored.Get("q", "zendesk")
	require.True(t, ok)
	require.Equal(t, "answer", got)

	_, _, ok = restored.GetSemantic([]float64{1, 0, 0}, "zendesk", 0.99)
	require.True(t, ok)
}

func TestCache_SnapshotRejectsMismatchedIdentity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")

	c := memory.New("embeddings", memory.Config{},
		memory.WithSnapshotIdentity[[]float64]("text-embedding-3-small", 1536))
	require.NoError(t, c.Set("q", []float64{1, 2, 3}))
	require.NoError(t, c.Save(path))

	other := memory.New("embeddings", memory.Config{},
		memory.WithSnapshotIdentity[[]float64]("text-embedding-3-large", 3072))
	n, err := other.Load(path)
	require.ErrorIs(t, err, memory.ErrSnapshotIncompatible)
	require.Zero(t, n)
	require.Zero(t, other.Stats().Size)
}

func TestCache_SnapshotSkipsExpiredEntries(t *testing.T) {
	clock := newFakeClock()
	path := filepath.Join(t.TempDir(), "snapshot.json")

	c := newCache(t, memory.Config{TTL: time.Minute}, clock)
	require.NoError(t, c.Set("stale", "v"))
	require.NoError(t, c.Set("durable", "v", memory.WithTTL(time.Hour)))
	require.NoError(t, c.Save(path))

	clock.Advance(10 * time.Minute)
	restored := newCache(t, memory.Config{TTL: time.Minute}, clock)
	n, err := restored.Load(path)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestCache_LoadMissingFile(t *testing.T) {
	c := memory.New[string]("test", memory.Config{})
	n, err := c.Load(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	require.Zero(t, n)
}
