package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/searchmesh/internal/domain"
)

func TestFloatsToBytes(t *testing.T) {
	buf := floatsToBytes([]float64{1.5, -2})

	require.Len(t, buf, 8)
	require.InDelta(t, 1.5, math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])), 1e-6)
	require.InDelta(t, -2, math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])), 1e-6)
}

func TestBuildFilterQuery(t *testing.T) {
	require.Equal(t, "*", buildFilterQuery(nil))
	require.Equal(t, "*", buildFilterQuery(map[string]string{"client_id": ""}))
	require.Equal(t, "(@client_id:{acme} @status:{open})",
		buildFilterQuery(map[string]string{"status": "open", "client_id": "acme"}))
	require.Equal(t, `(@client_id:{acme\-corp\ eu})`,
		buildFilterQuery(map[string]string{"client_id": "acme-corp eu"}))
}

func TestParseSearchResult(t *testing.T) {
	v, err := NewVectorSearch(redis.NewClient(&redis.Options{Addr: "localhost:0"}), &Config{KeyPrefix: "doc:"})
	require.NoError(t, err)

	t.Run("converts cosine distance to similarity", func(t *testing.T) {
		r, ok := v.parseSearchResult(context.Background(), "tickets", redis.Document{
			ID: "doc:tickets:42",
			Fields: map[string]string{
				"score":      "0.25",
				"payload":    `{"title":"Printer offline","status":"open"}`,
				"indexed_at": "1700000000",
			},
		})

		require.True(t, ok)
		require.Equal(t, "42", r.ID)
		require.InDelta(t, 0.75, r.Score, 1e-9)
		require.InDelta(t, 0.75, r.VectorScore, 1e-9)
		require.Equal(t, "Printer offline", r.Payload["title"])
		require.Equal(t, "42", r.Payload["id"])
		require.Equal(t, int64(1700000000), r.Payload["indexed_at"])
	})

	t.Run("clamps opposite vectors to zero", func(t *testing.T) {
		r, ok := v.parseSearchResult(context.Background(), "tickets", redis.Document{
			ID:     "doc:tickets:1",
			Fields: map[string]string{"score": "1.8"},
		})
		require.True(t, ok)
		require.Zero(t, r.Score)
	})

	t.Run("skips documents without score", func(t *testing.T) {
		_, ok := v.parseSearchResult(context.Background(), "tickets", redis.Document{ID: "doc:tickets:1"})
		require.False(t, ok)
	})

	t.Run("skips malformed payloads", func(t *testing.T) {
		_, ok := v.parseSearchResult(context.Background(), "tickets", redis.Document{
			ID:     "doc:tickets:1",
			Fields: map[string]string{"score": "0.1", "payload": "{not json"},
		})
		require.False(t, ok)
	})
}

func TestClassifyError(t *testing.T) {
	require.ErrorIs(t, classifyError(context.DeadlineExceeded), domain.ErrTransient)
	require.ErrorIs(t, classifyError(redis.ErrClosed), domain.ErrTransient)
	require.ErrorIs(t, classifyError(errors.New("LOADING Redis is loading the dataset in memory")), domain.ErrTransient)
	require.ErrorIs(t, classifyError(errors.New("idx:tickets: Unknown index name")), domain.ErrConfiguration)

	canceled := classifyError(context.Canceled)
	require.False(t, domain.IsTransient(canceled))

	other := errors.New("syntax error")
	require.Equal(t, other, classifyError(other))
}

func TestNewVectorSearch_RequiresClient(t *testing.T) {
	_, err := NewVectorSearch(nil, nil)
	require.Error(t, err)
}

func TestSearch_RejectsNonPositiveLimit(t *testing.T) {
	v, err := NewVectorSearch(redis.NewClient(&redis.Options{Addr: "localhost:0"}), nil)
	require.NoError(t, err)

	_, err = v.Search(context.Background(), "tickets", []float64{1}, nil, 0)
	require.ErrorIs(t, err, domain.ErrValidation)
}
