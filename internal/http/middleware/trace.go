package middleware

import (
	"net/http"
	"time"

	"github.com/davidbz/searchmesh/internal/observability"
)

const (
	traceHeader   = "X-Trace-Id"
	requestHeader = "X-Request-Id"
	maxHeaderID   = 128
)

// Trace attaches trace, span and request ids to the request context and logs the
// start and end of every request. Inbound X-Trace-Id and X-Request-Id headers are
// reused so ids follow a query across services.
func Trace() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			traceID := inboundID(r, traceHeader, observability.GenerateTraceID)
			requestID := inboundID(r, requestHeader, observability.GenerateRequestID)

			ctx := observability.WithTraceID(r.Context(), traceID)
			ctx = observability.WithSpanID(ctx, observability.GenerateSpanID())
			ctx = observability.WithRequestID(ctx, requestID)

			w.Header().Set(traceHeader, traceID)
			w.Header().Set(requestHeader, requestID)

			logger := observability.FromContext(ctx)
			logger.Debug("request started",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.String("remote_addr", r.RemoteAddr),
			)

			sw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r.WithContext(ctx))

			logger.Info("request completed",
				observability.String("method", r.Method),
				observability.String("path", r.URL.Path),
				observability.Int("status", sw.status),
				observability.Duration("elapsed", time.Since(start)),
			)
		})
	}
}

func inboundID(r *http.Request, header string, generate func() string) string {
	if id := r.Header.Get(header); id != "" && len(id) <= maxHeaderID {
		return id
	}
	return generate()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}
