package cache

import (
	"context"
	"sync"
	"time"

	"github.com/retailpos/backend/internal/domain/shared"
)

// reservation holds the expiry of a claimed token
type reservation struct {
	expiresAt time.Time
}

// InMemoryIdempotencyStore implements IdempotencyStore with a map.
// Suitable for a single back-office instance and for tests.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	tokens    map[string]reservation
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryIdempotencyStore creates a new in-memory idempotency store.
// It starts a background goroutine that sweeps expired reservations.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		tokens:   make(map[string]reservation),
		stopChan: make(chan struct{}),
	}

	store.wg.Add(1)
	go store.cleanupLoop()

	return store
}

// Reserve atomically claims a token with a TTL.
// Returns true if the token was newly claimed, false if an earlier
// attempt already holds it.
func (s *InMemoryIdempotencyStore) Reserve(_ context.Context, token string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r, exists := s.tokens[token]; exists && time.Now().Before(r.expiresAt) {
		return false, nil
	}

	s.tokens[token] = reservation{expiresAt: time.Now().Add(ttl)}
	return true, nil
}

// Release frees a token so a failed commit can be retried
func (s *InMemoryIdempotencyStore) Release(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}

// IsReserved checks whether a token has already been claimed
func (s *InMemoryIdempotencyStore) IsReserved(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, exists := s.tokens[token]
	if !exists {
		return false, nil
	}
	if time.Now().After(r.expiresAt) {
		return false, nil
	}
	return true, nil
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for token, r := range s.tokens {
		if now.After(r.expiresAt) {
			delete(s.tokens, token)
		}
	}
}

// Size returns the number of live reservations (for testing/monitoring)
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tokens)
}

// Ensure InMemoryIdempotencyStore implements IdempotencyStore
var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
