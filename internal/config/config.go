package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"go.uber.org/dig"

	"github.com/davidbz/searchmesh/internal/backend/redis"
	"github.com/davidbz/searchmesh/internal/cache/memory"
	"github.com/davidbz/searchmesh/internal/embedding/openai"
	"github.com/davidbz/searchmesh/internal/observability"
	"github.com/davidbz/searchmesh/internal/resilience"
	"github.com/davidbz/searchmesh/internal/source"
)

// Config represents the service configuration.
type Config struct {
	Server         ServerConfig
	CORS           CORSConfig
	Logger         observability.LoggerConfig
	Embedding      openai.Config
	Redis          redis.Config
	EmbeddingCache EmbeddingCacheConfig `envPrefix:"EMBEDDING_"`
	ResultCache    ResultCacheConfig    `envPrefix:"RESULT_"`
	Breaker        resilience.Config
	Retry          resilience.RetryConfig
	Search         SearchConfig
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int `env:"SERVER_PORT"             envDefault:"8080"`
	ReadTimeout     int `env:"SERVER_READ_TIMEOUT"     envDefault:"30"`
	WriteTimeout    int `env:"SERVER_WRITE_TIMEOUT"    envDefault:"30"`
	ShutdownTimeout int `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"15"`
}

// CORSConfig contains CORS policy settings.
type CORSConfig struct {
	AllowedOrigins   []string `env:"CORS_ALLOWED_ORIGINS"   envSeparator:"," envDefault:"*"`
	AllowedMethods   []string `env:"CORS_ALLOWED_METHODS"   envSeparator:"," envDefault:"GET,POST,PUT,DELETE,OPTIONS"`
	AllowedHeaders   []string `env:"CORS_ALLOWED_HEADERS"   envSeparator:"," envDefault:"Content-Type,Authorization"`
	AllowCredentials bool     `env:"CORS_ALLOW_CREDENTIALS"                  envDefault:"true"`
	MaxAge           int      `env:"CORS_MAX_AGE"                            envDefault:"86400"`
}

// EmbeddingCacheConfig configures the query embedding cache (EMBEDDING_CACHE_*).
type EmbeddingCacheConfig struct {
	memory.Config
}

// ResultCacheConfig configures the per-source result cache (RESULT_CACHE_*).
type ResultCacheConfig struct {
	memory.Config
}

// SearchConfig contains search orchestration settings.
type SearchConfig struct {
	Sources        []string      `env:"SEARCH_SOURCES"         envSeparator:"," envDefault:"zendesk,confluence,erp"`
	Timeout        time.Duration `env:"SEARCH_TIMEOUT"                          envDefault:"10s"`
	DefaultLimit   int           `env:"SEARCH_DEFAULT_LIMIT"                    envDefault:"10"`
	ScoreThreshold float64       `env:"SEARCH_SCORE_THRESHOLD"                  envDefault:"0"`
	CatalogFile    string        `env:"SOURCES_FILE"`
}

// Settings returns the per-client search defaults.
func (c *SearchConfig) Settings() source.Settings {
	return source.Settings{
		DefaultLimit:   c.DefaultLimit,
		ScoreThreshold: c.ScoreThreshold,
		Timeout:        c.Timeout,
	}
}

// DepConfig is used for dependency injection with dig. Fields are named because
// several packages call their config type Config.
type DepConfig struct {
	dig.Out
	Server         *ServerConfig
	CORS           *CORSConfig
	Logger         *observability.LoggerConfig
	Embedding      *openai.Config
	Redis          *redis.Config
	EmbeddingCache *EmbeddingCacheConfig
	ResultCache    *ResultCacheConfig
	Breaker        *resilience.Config
	Retry          *resilience.RetryConfig
	Search         *SearchConfig
}

// Load loads environment files and parses configuration.
func Load() *Config {
	for _, file := range []string{".env"} {
		_ = godotenv.Load(file)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		panic(err)
	}

	return &cfg
}

// ParseDependenciesConfig returns pointers to sub-configs for dependency injection.
func ParseDependenciesConfig(cfg *Config) DepConfig {
	return DepConfig{
		dig.Out{},
		&cfg.Server,
		&cfg.CORS,
		&cfg.Logger,
		&cfg.Embedding,
		&cfg.Redis,
		&cfg.EmbeddingCache,
		&cfg.ResultCache,
		&cfg.Breaker,
		&cfg.Retry,
		&cfg.Search,
	}
}
