// Package middleware holds the HTTP wrappers applied to every search API route.
package middleware

import (
	"net/http"

	"github.com/davidbz/searchmesh/internal/config"
)

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middlewares; the first one sees the request first. Nil entries
// are skipped.
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			if middlewares[i] != nil {
				final = middlewares[i](final)
			}
		}
		return final
	}
}

// BuildMiddlewareChain is the chain mounted on the router (DI constructor).
// Recover sits outermost so a panicking handler still answers with JSON and the
// CORS headers; Trace runs last so handler logs carry the request ids. Route
// metrics are added by the router itself.
func BuildMiddlewareChain(corsConfig *config.CORSConfig) Middleware {
	return Chain(
		Recover(),
		CORS(corsConfig),
		Trace(),
	)
}
