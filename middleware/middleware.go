package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type contextKey string

const contextValueRequestID contextKey = "RequestID"
const HTTPHeaderRequestID = "X-Request-Id"

// AddRequestID tags the request context and its logger with a request id,
// taken from the X-Request-Id header or generated.
func AddRequestID(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HTTPHeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		logger := log.With().Str("requestID", id).Logger()
		ctx := logger.WithContext(r.Context())
		ctx = context.WithValue(ctx, contextValueRequestID, id)
		w.Header().Set(HTTPHeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}

func CtxGetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(contextValueRequestID).(string); ok {
		return id
	}
	return ""
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

// AddLogging logs one line per request with the request scoped logger.
func AddLogging(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Ctx(r.Context()).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	}
	return http.HandlerFunc(fn)
}

func AddAll(next http.Handler) http.Handler {
	return AddRequestID(AddLogging(next))
}
