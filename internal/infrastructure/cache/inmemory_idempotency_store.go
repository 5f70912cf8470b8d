package cache

import (
	"context"
	"sync"
	"time"

	"github.com/orderpost/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore keeps processed event IDs in a map. It
// protects a single process only; deployments with several instances
// need the Redis store to suppress cross-instance duplicates. A
// background goroutine evicts expired marks so the map does not grow
// with posting volume forever.
type InMemoryIdempotencyStore struct {
	mu        sync.RWMutex
	marks     map[string]time.Time
	stop      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)

// NewInMemoryIdempotencyStore builds the store and starts its eviction
// goroutine; Close stops it.
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		marks: make(map[string]time.Time),
		stop:  make(chan struct{}),
	}
	store.wg.Add(1)
	go store.evictLoop()
	return store
}

// MarkProcessed records the event ID until now+ttl; false means the ID
// is already marked and this delivery is a duplicate. An expired mark
// counts as absent and is overwritten.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if expiresAt, ok := s.marks[eventID]; ok && time.Now().Before(expiresAt) {
		return false, nil
	}
	s.marks[eventID] = time.Now().Add(ttl)
	return true, nil
}

// IsProcessed checks for an unexpired mark without recording one.
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	expiresAt, ok := s.marks[eventID]
	return ok && time.Now().Before(expiresAt), nil
}

// Size reports how many marks are held, expired ones included.
func (s *InMemoryIdempotencyStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.marks)
}

// Close stops the eviction goroutine. Safe to call more than once.
func (s *InMemoryIdempotencyStore) Close() error {
	s.closeOnce.Do(func() {
		close(s.stop)
		s.wg.Wait()
	})
	return nil
}

func (s *InMemoryIdempotencyStore) evictLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.evictExpired()
		}
	}
}

func (s *InMemoryIdempotencyStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for eventID, expiresAt := range s.marks {
		if now.After(expiresAt) {
			delete(s.marks, eventID)
		}
	}
}
