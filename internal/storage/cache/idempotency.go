package cache

import (
	"context"
	"sync"
	"time"
)

// IdempotencyStore reserves request keys so that a retried request is not
// applied twice while the first attempt is still known.
type IdempotencyStore interface {
	// Reserve claims key. It returns false if the key is already claimed.
	Reserve(ctx context.Context, key string) (bool, error)
	// Release drops a claim so the request can be retried.
	Release(ctx context.Context, key string) error
}

var _ IdempotencyStore = (*MemoryIdempotencyStore)(nil)

// MemoryIdempotencyStore keeps claims in process memory.
type MemoryIdempotencyStore struct {
	mu   sync.Mutex
	ttl  time.Duration
	now  func() time.Time
	keys map[string]time.Time
}

func NewMemoryIdempotencyStore(ttl time.Duration) *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{
		ttl:  ttl,
		now:  time.Now,
		keys: make(map[string]time.Time),
	}
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if expiresAt, ok := s.keys[key]; ok && now.Before(expiresAt) {
		return false, nil
	}

	// drop expired claims while the lock is held
	for k, expiresAt := range s.keys {
		if !now.Before(expiresAt) {
			delete(s.keys, k)
		}
	}

	s.keys[key] = now.Add(s.ttl)
	return true, nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.keys, key)
	return nil
}
