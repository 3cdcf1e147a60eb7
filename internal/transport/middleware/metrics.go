package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/middleware"

	"github.com/frahmantamala/training-management/pkg/metrics"
)

// Metrics records request count and latency per method and status.
func Metrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.ObserveHTTP(r.Method, status, time.Since(start))
	})
}
