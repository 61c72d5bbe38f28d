package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/davidbz/searchmesh/internal/cache/memory"
	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/factory"
	"github.com/davidbz/searchmesh/internal/observability"
	"github.com/davidbz/searchmesh/internal/resilience"
	"github.com/davidbz/searchmesh/internal/search"
	"github.com/davidbz/searchmesh/internal/source"
)

const maxBodyBytes = 1 << 20

// Handler handles HTTP requests.
type Handler struct {
	search     *search.Service
	indexer    *search.Indexer
	clients    *factory.Factory
	breakers   *resilience.Registry
	embeddings *memory.Cache[[]float64]
	results    *source.ResultCache
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(
	svc *search.Service,
	indexer *search.Indexer,
	clients *factory.Factory,
	breakers *resilience.Registry,
	embeddings *memory.Cache[[]float64],
	results *source.ResultCache,
) *Handler {
	return &Handler{
		search:     svc,
		indexer:    indexer,
		clients:    clients,
		breakers:   breakers,
		embeddings: embeddings,
		results:    results,
	}
}

type resetRequest struct {
	Name string `json:"name"`
}

// HandleSearch runs a multi-source search.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.FromContext(ctx)

	var req domain.SearchRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	logger.Info("search request received",
		zap.Strings("sources", req.Sources),
		zap.Int("limit", req.Limit),
	)

	resp, err := h.search.Search(ctx, &req)
	if err != nil {
		logger.Warn("search rejected", zap.Error(err))
		writeError(w, statusCode(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// HandleIndex embeds and stores documents for one source.
func (h *Handler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req domain.IndexRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	resp, err := h.indexer.Index(ctx, &req)
	if err != nil {
		observability.FromContext(ctx).Error("indexing failed", zap.Error(err))
		writeError(w, statusCode(err), err.Error())
		return
	}

	status := http.StatusOK
	if len(resp.Failed) > 0 {
		status = http.StatusMultiStatus
	}
	writeJSON(w, status, resp)
}

// HandleSources reports the client state of every configured source.
func (h *Handler) HandleSources(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"sources": h.clients.Status()})
}

// HandleResetSources drops one client, or all of them when no name is given.
func (h *Handler) HandleResetSources(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if req.Name == "" {
		h.clients.ResetAll(r.Context())
	} else if !h.clients.Reset(r.Context(), req.Name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown source %s", req.Name))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"sources": h.clients.Status()})
}

// HandleBreakers reports every circuit breaker.
func (h *Handler) HandleBreakers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"breakers": h.breakers.Statuses()})
}

// HandleResetBreakers closes one breaker, or all of them when no name is given.
func (h *Handler) HandleResetBreakers(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	if req.Name == "" {
		h.breakers.ResetAll()
	} else if !h.breakers.Reset(req.Name) {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown breaker %s", req.Name))
		return
	}

	observability.FromContext(r.Context()).Info("circuit breakers reset", zap.String("name", req.Name))
	writeJSON(w, http.StatusOK, map[string]any{"breakers": h.breakers.Statuses()})
}

// HandleCacheStats reports the embedding and result cache counters.
func (h *Handler) HandleCacheStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]memory.Stats{
		"embeddings": h.embeddings.Stats(),
		"results":    h.results.Stats(),
	})
}

// HandleHealth handles health check requests.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnknownSource):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrTransient), errors.Is(err, domain.ErrCircuitOpen):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Status is already written; encoding errors can only be dropped.
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
