package middleware

import (
	"log/slog"
	"net/http"
	"time"
)

// Logger emits one structured log line per request: method, path, status,
// bytes written, duration, request ID, and remote address. Server errors log
// at error level and client errors at warn, so a log filter on level alone
// surfaces trouble.
func Logger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration_ms", float64(time.Since(start).Microseconds())/1000.0,
				"bytes", rec.bytes,
				"request_id", GetRequestID(r.Context()),
				"remote_addr", r.RemoteAddr,
			)
		})
	}
}

// statusRecorder captures the status code and byte count as the handler
// writes the response. The status defaults to 200 because a handler that
// writes without calling WriteHeader gets that from net/http.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusRecorder) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap exposes the wrapped writer so http.Flusher and friends keep working
// through the middleware chain.
func (w *statusRecorder) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
