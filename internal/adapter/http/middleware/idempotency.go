package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/iho/finledger/internal/infrastructure/logger"
	"github.com/iho/finledger/internal/infrastructure/metrics"
	"github.com/iho/finledger/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader is set on responses served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	defaultIdempotencyTTL = 24 * time.Hour
	pendingMarker         = "processing"
)

// cachedResponse is what gets stored for a completed request.
type cachedResponse struct {
	Body   []byte `json:"body"`
	Status int    `json:"status"`
}

// IdempotencyMiddleware replays the response of a completed request that
// carried the same Idempotency-Key. Keys are scoped to the authenticated user;
// requests without a user in context are never cached or replayed.
type IdempotencyMiddleware struct {
	store   usecase.IdempotencyStore
	metrics *metrics.Metrics
	ttl     time.Duration
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl}
}

// WithMetrics enables replay counting.
func (m *IdempotencyMiddleware) WithMetrics(mt *metrics.Metrics) *IdempotencyMiddleware {
	m.metrics = mt
	return m
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		user, ok := GetUserFromContext(r.Context())
		if key == "" || !ok {
			next.ServeHTTP(w, r)
			return
		}
		key = user.ID + ":" + key

		exists, stored, err := m.store.CheckAndSet(r.Context(), key, nil, m.ttl)
		if err != nil {
			logger.FromContext(r.Context()).Error().Err(err).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			m.replay(w, r, stored)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		ctx := r.Context()
		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			// failed requests may be retried with the same key
			if err := m.store.Release(ctx, key); err != nil {
				logger.FromContext(ctx).Warn().Err(err).Msg("failed to release idempotency key")
			}
			return
		}

		payload, err := json.Marshal(cachedResponse{
			Status: recorder.statusCode,
			Body:   recorder.body.Bytes(),
		})
		if err == nil {
			err = m.store.Update(ctx, key, payload, m.ttl)
		}
		if err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, r *http.Request, stored []byte) {
	if string(stored) == pendingMarker {
		writeJSONError(w, http.StatusConflict, "a request with this idempotency key is in progress")
		return
	}

	var cached cachedResponse
	if err := json.Unmarshal(stored, &cached); err != nil {
		logger.FromContext(r.Context()).Error().Err(err).Msg("corrupt idempotent response")
		writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
		return
	}

	if m.metrics != nil {
		m.metrics.IdempotencyReplays.Inc()
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set(IdempotencyReplayHeader, "true")
	w.WriteHeader(cached.Status)
	_, _ = w.Write(cached.Body)
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
