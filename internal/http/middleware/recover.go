package middleware

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/davidbz/searchmesh/internal/observability"
)

// Recover turns a panicking handler into a JSON 500 response.
func Recover() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}

					observability.FromContext(r.Context()).Error("panic recovered",
						observability.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{"error": "internal error"})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
