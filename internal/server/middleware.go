package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/goliatone/go-hacksite/internal/logging"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	if r.status == 0 {
		r.status = status
	}
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// withRequestLogging attaches a request scoped logger to the context and logs
// one line per request.
func withRequestLogging(base *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		logger := base.With("method", r.Method, "path", r.URL.Path)
		rec := &statusRecorder{ResponseWriter: w}

		next.ServeHTTP(rec, r.WithContext(logging.WithLogger(r.Context(), logger)))

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		logger.Debug("request served", "status", status, "duration", time.Since(start))
	})
}
