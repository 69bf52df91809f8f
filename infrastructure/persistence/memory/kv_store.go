package memory

import (
	"context"
	"sync"
	"time"

	"voidstate/application/ports"
	"voidstate/domain/services"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// KVStore is an in-process ports.KVStore for tests and single-instance
// development. Expiry is evaluated on read; there is no sweeper.
type KVStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   services.Clock
}

// NewKVStore creates an empty store. A nil clock uses the system clock.
func NewKVStore(clock services.Clock) *KVStore {
	if clock == nil {
		clock = services.SystemClock()
	}
	return &KVStore{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// Get implements ports.KVStore
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	now := s.clock.Now()

	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, false, nil
	}
	if e.expired(now) {
		s.mu.Lock()
		// re-check: a writer may have refreshed the key in between
		if cur, ok := s.entries[key]; ok && cur.expired(now) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}

	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Put implements ports.KVStore
func (s *KVStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e := entry{value: make([]byte, len(value))}
	copy(e.value, value)
	if ttl > 0 {
		e.expiresAt = s.clock.Now().Add(ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

var _ ports.KVStore = (*KVStore)(nil)
