package memory

import (
	"context"
	"sync"
	"time"
)

const pendingMarker = "processing"

type idempotencyEntry struct {
	expiresAt time.Time
	value     []byte
}

// IdempotencyStore implements usecase.IdempotencyStore for a single process.
type IdempotencyStore struct {
	entries map[string]idempotencyEntry
	mu      sync.Mutex
	now     func() time.Time
}

// NewIdempotencyStore creates an empty IdempotencyStore.
func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		entries: make(map[string]idempotencyEntry),
		now:     time.Now,
	}
}

// CheckAndSet claims key unless a live entry exists, in which case it
// returns true and the stored value.
func (s *IdempotencyStore) CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if entry, ok := s.entries[key]; ok && now.Before(entry.expiresAt) {
		return true, entry.value, nil
	}

	value := []byte(pendingMarker)
	if response != nil {
		value = response
	}
	s.entries[key] = idempotencyEntry{value: value, expiresAt: now.Add(ttl)}

	return false, nil, nil
}

// Update stores the final response for key.
func (s *IdempotencyStore) Update(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = idempotencyEntry{value: response, expiresAt: s.now().Add(ttl)}
	return nil
}

// Release deletes key.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}
