package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"modelcatalog/internal/logging"
)

// RequestIDHeader carries the per-request id, echoed back when the caller sent one
const RequestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs one line per request, at warn for 4xx and error for 5xx
func RequestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get(RequestIDHeader)
			if requestID == "" {
				requestID = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, requestID)

			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			keyvals := []interface{}{
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"latency", time.Since(start),
			}
			switch {
			case rec.status >= 500:
				logger.Error("request completed", keyvals...)
			case rec.status >= 400:
				logger.Warn("request completed", keyvals...)
			default:
				logger.Info("request completed", keyvals...)
			}
		})
	}
}
