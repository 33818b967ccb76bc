package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/iho/finledger/internal/infrastructure/metrics"
)

// Metrics returns a middleware that records HTTP metrics.
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			m.HTTPRequestsInFlight.Inc()
			defer m.HTTPRequestsInFlight.Dec()

			// Wrap response writer to capture status code
			wrapped := &metricsRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			path := normalizePath(r.URL.Path)

			m.HTTPRequests.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			m.HTTPDuration.WithLabelValues(r.Method, path).Observe(duration)
		})
	}
}

type metricsRecorder struct {
	http.ResponseWriter

	statusCode int
}

func (r *metricsRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

const (
	statementsPrefix = "/api/v1/statements/"
	transfersPrefix  = statementsPrefix + "transfers/"
)

// normalizePath replaces IDs in URL paths to avoid high cardinality.
// /api/v1/statements/01ABC -> /api/v1/statements/:statement_id
func normalizePath(path string) string {
	switch {
	case strings.HasPrefix(path, transfersPrefix) && len(path) > len(transfersPrefix):
		return transfersPrefix + ":user_id"
	case strings.HasPrefix(path, statementsPrefix) && len(path) > len(statementsPrefix):
		rest := path[len(statementsPrefix):]
		switch rest {
		case "deposit", "withdraw", "balance":
			return path
		}
		return statementsPrefix + ":statement_id"
	}

	return path
}
