package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/searchmesh/internal/config"
)

// CORS applies the configured cross-origin policy. The trace headers are always
// accepted and exposed so browser clients can correlate their searches.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	allowed := append([]string{}, cfg.AllowedHeaders...)
	allowed = append(allowed, traceHeader, requestHeader)

	c := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   allowed,
		ExposedHeaders:   []string{traceHeader, requestHeader},
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return c.Handler
}
