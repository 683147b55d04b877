package logger

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the Flusher and Hijacker
// of the wrapped writer.
func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	n, err := s.ResponseWriter.Write(b)
	s.bytes += n
	return n, err
}

// Middleware logs one line per request and attaches a request scoped logger
// to the context, retrievable with zerolog.Ctx.
func Middleware(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			l := log.With().Str("request_id", middleware.GetReqID(r.Context())).Logger()
			if sc := trace.SpanContextFromContext(r.Context()); sc.HasTraceID() {
				l = l.With().Str("trace_id", sc.TraceID().String()).Logger()
			}
			ctx := l.WithContext(r.Context())

			next.ServeHTTP(rec, r.WithContext(ctx))

			// Downstream middleware may have enriched the context logger.
			final := zerolog.Ctx(ctx)
			evt := final.Info()
			if rec.status >= http.StatusInternalServerError {
				evt = final.Error()
			} else if rec.status >= http.StatusBadRequest {
				evt = final.Warn()
			}
			evt.Str("method", r.Method).
				Str("url", r.URL.RequestURI()).
				Int("status", rec.status).
				Int("bytes", rec.bytes).
				Dur("duration", time.Since(start)).
				Msg("request handled")
		})
	}
}
