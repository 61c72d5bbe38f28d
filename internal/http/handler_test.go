package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/searchmesh/internal/cache/memory"
	"github.com/davidbz/searchmesh/internal/config"
	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/factory"
	httpserver "github.com/davidbz/searchmesh/internal/http"
	"github.com/davidbz/searchmesh/internal/http/middleware"
	"github.com/davidbz/searchmesh/internal/mocks"
	"github.com/davidbz/searchmesh/internal/resilience"
	"github.com/davidbz/searchmesh/internal/search"
	"github.com/davidbz/searchmesh/internal/source"
)

type fixture struct {
	router   http.Handler
	zendesk  *mocks.MockSearchClient
	embedder *mocks.MockEmbeddingGenerator
	store    *mocks.MockDocumentIndexer
	breakers *resilience.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		zendesk:  mocks.NewMockSearchClient(t),
		embedder: mocks.NewMockEmbeddingGenerator(t),
		store:    mocks.NewMockDocumentIndexer(t),
		breakers: resilience.NewRegistry(),
	}

	profiles := source.DefaultProfiles()[:1]
	clients, err := factory.New(profiles, func(context.Context, source.Profile) (domain.SearchClient, error) {
		return f.zendesk, nil
	}, f.breakers)
	require.NoError(t, err)

	handler := httpserver.NewHandler(
		search.NewService(clients, 10),
		search.NewIndexer(profiles, f.embedder, f.store),
		clients,
		f.breakers,
		memory.New[[]float64]("embeddings", memory.Config{}),
		memory.New[source.CachedResults]("results", memory.Config{}),
	)

	server := httpserver.NewServer(&config.ServerConfig{Port: 0}, handler, middleware.Chain(middleware.Recover()))
	f.router = server.Router()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(method, path, &buf))
	return w
}

func TestHandleSearch(t *testing.T) {
	f := newFixture(t)
	f.zendesk.EXPECT().Search(mock.Anything, domain.SearchQuery{Query: "printer", Limit: 10}).
		Return(domain.SourceResponse{
			Source: "zendesk",
			Status: domain.StatusOK,
			Results: []domain.SearchResult{
				{ID: "1", Score: 0.8, SourceType: "zendesk", Payload: map[string]any{"subject": "Printer offline"}},
			},
		}).Once()

	w := f.do(t, http.MethodPost, "/v1/search", domain.SearchRequest{Query: "printer"})

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp domain.SearchResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Len(t, resp.Results, 1)
	require.Equal(t, "1", resp.Results[0].ID)
	require.Equal(t, domain.StatusOK, resp.Sources["zendesk"])
}

func TestHandleSearch_BadRequests(t *testing.T) {
	f := newFixture(t)

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/search", bytes.NewBufferString("{")))
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/v1/search", domain.SearchRequest{Query: " "})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "query cannot be empty")

	w = f.do(t, http.MethodGet, "/v1/search", nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleIndex(t *testing.T) {
	f := newFixture(t)
	f.embedder.EXPECT().Dimension().Return(2)
	f.embedder.EXPECT().Generate(mock.Anything, "Printer offline").Return([]float64{1, 0}, nil).Once()
	f.store.EXPECT().EnsureCollection(mock.Anything, "zendesk_tickets", 2, mock.Anything).Return(nil).Once()
	f.store.EXPECT().Index(mock.Anything, "zendesk_tickets", "7", []float64{1, 0}, mock.Anything, mock.Anything).Return(nil).Once()

	w := f.do(t, http.MethodPost, "/v1/documents", domain.IndexRequest{
		Source:    "zendesk",
		Documents: []domain.Document{{ID: "7", Payload: map[string]any{"subject": "Printer offline"}}},
	})

	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"source":"zendesk","indexed":1}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/v1/documents", domain.IndexRequest{
		Source:    "jira",
		Documents: []domain.Document{{ID: "1", Text: "x"}},
	})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleIndex_PartialFailure(t *testing.T) {
	f := newFixture(t)
	f.embedder.EXPECT().Dimension().Return(2)
	f.embedder.EXPECT().Generate(mock.Anything, "x").Return(nil, domain.Transient(errors.New("503"))).Once()
	f.store.EXPECT().EnsureCollection(mock.Anything, "zendesk_tickets", 2, mock.Anything).Return(nil).Once()

	w := f.do(t, http.MethodPost, "/v1/documents", domain.IndexRequest{
		Source:    "zendesk",
		Documents: []domain.Document{{ID: "1", Text: "x"}},
	})

	require.Equal(t, http.StatusMultiStatus, w.Code)
	require.JSONEq(t, `{"source":"zendesk","indexed":0,"failed":["1"]}`, w.Body.String())
}

func TestHandleSources(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/sources", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"sources":[{"source":"zendesk","kind":"vector","state":"uninitialized"}]}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/v1/sources/reset", map[string]string{"name": "jira"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/v1/sources/reset", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHandleBreakers(t *testing.T) {
	f := newFixture(t)
	cb := f.breakers.Get("embedding")
	for range 5 {
		cb.RecordFailure()
	}
	require.Equal(t, resilience.StateOpen, cb.State())

	w := f.do(t, http.MethodGet, "/v1/breakers", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Breakers []resilience.Status `json:"breakers"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	require.Len(t, body.Breakers, 1)
	require.Equal(t, "open", body.Breakers[0].State)

	w = f.do(t, http.MethodPost, "/v1/breakers/reset", map[string]string{"name": "missing"})
	require.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/v1/breakers/reset", map[string]string{"name": "embedding"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, resilience.StateClosed, cb.State())
}

func TestHandleCacheStats(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/v1/cache/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var stats map[string]memory.Stats
	require.NoError(t, json.NewDecoder(w.Body).Decode(&stats))
	require.Equal(t, "embeddings", stats["embeddings"].Name)
	require.Equal(t, "results", stats["results"].Name)
}

func TestHandleHealthAndMetrics(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"healthy"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
}
