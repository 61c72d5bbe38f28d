package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	backendredis "github.com/davidbz/searchmesh/internal/backend/redis"
	"github.com/davidbz/searchmesh/internal/cache/memory"
	"github.com/davidbz/searchmesh/internal/config"
	"github.com/davidbz/searchmesh/internal/domain"
	"github.com/davidbz/searchmesh/internal/embedding"
	"github.com/davidbz/searchmesh/internal/embedding/openai"
	"github.com/davidbz/searchmesh/internal/factory"
	"github.com/davidbz/searchmesh/internal/http"
	"github.com/davidbz/searchmesh/internal/http/middleware"
	"github.com/davidbz/searchmesh/internal/metrics"
	"github.com/davidbz/searchmesh/internal/observability"
	"github.com/davidbz/searchmesh/internal/resilience"
	"github.com/davidbz/searchmesh/internal/search"
	"github.com/davidbz/searchmesh/internal/source"
)

func main() {
	container := buildContainer()

	if err := container.Invoke(run); err != nil {
		log.Fatalf("Application failed: %v", err)
	}
}

func buildContainer() *dig.Container {
	container := dig.New()

	providers := []struct {
		name        string
		constructor interface{}
	}{
		// Configuration
		{"config", config.Load},
		{"config dependencies", config.ParseDependenciesConfig},
		{"source profiles", config.Profiles},

		// Observability
		{"logger", observability.InitLogger},
		{"event bus", newEventBus},
		{"cache metrics", newCacheMetrics},

		// Resilience
		{"breaker registry", newBreakerRegistry},

		// Vector backend
		{"redis client", newRedisClient},
		{"vector search", backendredis.NewVectorSearch},
		{"vector backend", func(v *backendredis.VectorSearch) domain.VectorBackend { return v }},
		{"document indexer", func(v *backendredis.VectorSearch) domain.DocumentIndexer { return v }},

		// Caches and embeddings
		{"embedding cache", newEmbeddingCache},
		{"result cache", newResultCache},
		{"embedding generator", newEmbeddingGenerator},

		// Sources and search
		{"client dependencies", newClientDeps},
		{"client factory", newClientFactory},
		{"search service", newSearchService},
		{"indexer", search.NewIndexer},

		// HTTP Layer
		{"middleware chain", middleware.BuildMiddlewareChain},
		{"HTTP handler", http.NewHandler},
		{"HTTP server", http.NewServer},
	}

	for _, p := range providers {
		if err := container.Provide(p.constructor); err != nil {
			log.Fatalf("Failed to provide %s: %v", p.name, err)
		}
	}

	return container
}

func newEventBus(logger *zap.Logger) domain.EventPublisher {
	return observability.NewEventBus(logger)
}

func newCacheMetrics() memory.Metrics {
	metrics.Register()
	return metrics.NewCacheRecorder()
}

func newBreakerRegistry(cfg *resilience.Config, events domain.EventPublisher) *resilience.Registry {
	return resilience.NewRegistryFromConfig(cfg, func(name string, from, to resilience.State) {
		metrics.ObserveBreaker(name, from, to)
		events.Publish(context.Background(), "breaker.state_changed", map[string]interface{}{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		})
	})
}

func newRedisClient(cfg *backendredis.Config) goredis.UniversalClient {
	return backendredis.NewClient(cfg)
}

func newEmbeddingCache(
	cfg *config.EmbeddingCacheConfig,
	embeddingCfg *openai.Config,
	recorder memory.Metrics,
	events domain.EventPublisher,
) *memory.Cache[[]float64] {
	return memory.New("embeddings", cfg.Config,
		memory.WithMetrics[[]float64](recorder),
		memory.WithEvents[[]float64](events),
		memory.WithSnapshotIdentity[[]float64](embeddingCfg.Model, embeddingCfg.Dimension),
	)
}

func newResultCache(
	cfg *config.ResultCacheConfig,
	embeddingCfg *openai.Config,
	recorder memory.Metrics,
	events domain.EventPublisher,
) *source.ResultCache {
	return memory.New("results", cfg.Config,
		memory.WithSizer(func(v source.CachedResults) int64 { return v.SizeBytes() }),
		memory.WithMetrics[source.CachedResults](recorder),
		memory.WithEvents[source.CachedResults](events),
		memory.WithSnapshotIdentity[source.CachedResults](embeddingCfg.Model, embeddingCfg.Dimension),
	)
}

// newEmbeddingGenerator returns nil when the provider is not configured; vector
// sources then start as fallbacks.
func newEmbeddingGenerator(
	cfg *openai.Config,
	cache *memory.Cache[[]float64],
	breakers *resilience.Registry,
	retry *resilience.RetryConfig,
) domain.EmbeddingGenerator {
	generator, err := openai.NewGenerator(*cfg)
	if err != nil {
		observability.FromContext(context.Background()).Warn("embedding provider unavailable", zap.Error(err))
		return nil
	}
	return embedding.NewCachedGenerator(generator, cache, breakers, retry)
}

func newClientDeps(
	embedder domain.EmbeddingGenerator,
	backend domain.VectorBackend,
	results *source.ResultCache,
	breakers *resilience.Registry,
	retry *resilience.RetryConfig,
	searchCfg *config.SearchConfig,
) source.Deps {
	return source.Deps{
		Embedder: embedder,
		Backend:  backend,
		Results:  results,
		Breakers: breakers,
		Retry:    *retry,
		Settings: searchCfg.Settings(),
	}
}

func newClientFactory(
	profiles []source.Profile,
	deps source.Deps,
	backend domain.VectorBackend,
	breakers *resilience.Registry,
	events domain.EventPublisher,
) (*factory.Factory, error) {
	return factory.New(profiles, factory.DefaultConstructor(deps), breakers,
		factory.WithCollectionChecker(backend),
		factory.WithEvents(events),
	)
}

func newSearchService(clients *factory.Factory, cfg *config.SearchConfig) *search.Service {
	return search.NewService(clients, cfg.DefaultLimit, search.WithObserver(
		func(source string, status domain.SourceStatus, elapsed time.Duration) {
			metrics.ObserveSourceSearch(source, string(status), elapsed)
		},
	))
}

// run starts the caches, the clients and the HTTP server, then shuts everything
// down on SIGINT or SIGTERM.
func run(
	logger *zap.Logger,
	server *http.Server,
	clients *factory.Factory,
	embeddings *memory.Cache[[]float64],
	results *source.ResultCache,
	embeddingCacheCfg *config.EmbeddingCacheConfig,
	resultCacheCfg *config.ResultCacheConfig,
	serverCfg *config.ServerConfig,
) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	restore(ctx, "embeddings", embeddingCacheCfg.SnapshotPath, embeddings.Load)
	restore(ctx, "results", resultCacheCfg.SnapshotPath, results.Load)

	embeddings.Start(ctx)
	results.Start(ctx)

	if err := clients.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize search clients: %w", err)
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(serverCfg.ShutdownTimeout)*time.Second)
	defer cancel()

	err := errors.Join(
		server.Shutdown(shutdownCtx),
		embeddings.Close(shutdownCtx),
		results.Close(shutdownCtx),
	)
	if err != nil {
		logger.Error("error during shutdown", zap.Error(err))
		return err
	}

	logger.Info("server stopped gracefully")
	return nil
}

func restore(ctx context.Context, name, path string, load func(string) (int, error)) {
	if path == "" {
		return
	}

	logger := observability.FromContext(ctx)
	n, err := load(path)
	if err != nil {
		logger.Warn("cache snapshot not restored", zap.String("cache", name), zap.Error(err))
		return
	}
	logger.Info("cache snapshot restored", zap.String("cache", name), zap.Int("entries", n))
}
