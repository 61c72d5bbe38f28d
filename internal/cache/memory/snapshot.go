package memory

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/renameio"
)

// ErrSnapshotIncompatible is returned when a snapshot was written for a different
// embedding model or vector dimension.
var ErrSnapshotIncompatible = errors.New("snapshot incompatible with cache")

type snapshotMetadata struct {
	Model           string    `json:"model"`
	VectorDimension int       `json:"vector_dimension"`
	SavedAt         time.Time `json:"saved_at"`
	EntryCount      int       `json:"entry_count"`
}

type snapshotEntry[V any] struct {
	Namespace    string        `json:"namespace"`
	Key          string        `json:"key"`
	Value        V             `json:"value"`
	Embedding    []float64     `json:"embedding,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	LastAccessAt time.Time     `json:"last_access_at"`
	AccessCount  int           `json:"access_count"`
	TTL          time.Duration `json:"ttl"`
	SizeBytes    int64         `json:"size_bytes"`
}

type snapshot[V any] struct {
	Metadata snapshotMetadata   `json:"metadata"`
	Entries  []snapshotEntry[V] `json:"entries"`
}

// Save atomically writes every entry to path. Entries are copied under the lock
// and encoded outside it.
func (c *Cache[V]) Save(path string) error {
	c.mu.Lock()
	snap := snapshot[V]{
		Metadata: snapshotMetadata{
			Model:           c.model,
			VectorDimension: c.dimension,
			SavedAt:         c.now().UTC(),
			EntryCount:      c.count,
		},
		Entries: make([]snapshotEntry[V], 0, c.count),
	}
	for _, ns := range c.namespaces {
		for _, e := range ns {
			snap.Entries = append(snap.Entries, snapshotEntry[V]{
				Namespace:    e.namespace,
				Key:          e.key,
				Value:        e.value,
				Embedding:    e.embedding,
				CreatedAt:    e.createdAt,
				LastAccessAt: e.lastAccessAt,
				AccessCount:  e.accessCount,
				TTL:          e.ttl,
				SizeBytes:    e.sizeBytes,
			})
		}
	}
	c.mu.Unlock()

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	if err = renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	return nil
}

// Load restores entries from path and returns how many were loaded. A missing file
// loads nothing. Expired entries are skipped and capacity limits still apply.
func (c *Cache[V]) Load(path string) (int, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot: %w", err)
	}

	var snap snapshot[V]
	if err = json.Unmarshal(data, &snap); err != nil {
		return 0, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	if snap.Metadata.Model != c.model || snap.Metadata.VectorDimension != c.dimension {
		return 0, fmt.Errorf("%w: snapshot %s/%d, cache %s/%d", ErrSnapshotIncompatible,
			snap.Metadata.Model, snap.Metadata.VectorDimension, c.model, c.dimension)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	loaded := 0
	for _, se := range snap.Entries {
		e := &entry[V]{
			namespace:    namespaceOrDefault(se.Namespace),
			key:          se.Key,
			value:        se.Value,
			embedding:    se.Embedding,
			createdAt:    se.CreatedAt,
			lastAccessAt: se.LastAccessAt,
			accessCount:  se.AccessCount,
			ttl:          se.TTL,
			sizeBytes:    se.SizeBytes,
		}
		if e.sizeBytes <= 0 {
			e.sizeBytes = c.sizer(e.value) + numericSize*int64(len(e.embedding)) + int64(len(e.key))
		}
		if e.sizeBytes > c.cfg.MaxMemoryBytes || e.expired(now, c.baseTTL) {
			continue
		}

		if existing, ok := c.namespaces[e.namespace][e.key]; ok {
			c.removeLocked(existing)
		}
		c.makeRoomLocked(e.sizeBytes, now)
		c.insertLocked(e)
		loaded++
	}

	c.recordUsage()
	return loaded, nil
}
