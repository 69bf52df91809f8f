package ports

import (
	"context"
	"time"

	"voidstate/domain/core/entities"
	"voidstate/domain/core/valueobjects"
)

// KVStore is the shared key-value store every instance coordinates through.
// It offers single-key reads and writes only: no transactions, no
// compare-and-swap. A zero ttl means the record never expires.
type KVStore interface {
	// Get returns the value stored under key. found is false for missing or
	// expired records.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Put replaces the value under key and resets its expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// CounterRepository reads and bumps the global and daily thought counters.
// Increments are read-modify-write and may lose updates under contention.
type CounterRepository interface {
	Global(ctx context.Context) (int64, error)
	IncrementGlobal(ctx context.Context) (int64, error)
	Daily(ctx context.Context, day string) (int64, error)
	IncrementDaily(ctx context.Context, day string, ttl time.Duration) (int64, error)
}

// RateLimitRepository persists per-client rate windows.
type RateLimitRepository interface {
	// GetWindow returns nil when the client has no live window.
	GetWindow(ctx context.Context, client valueobjects.ClientID) (*entities.RateWindow, error)
	SaveWindow(ctx context.Context, client valueobjects.ClientID, w entities.RateWindow, ttl time.Duration) error
}

// PresenceRepository persists one set of client hashes per minute bucket.
type PresenceRepository interface {
	// GetBucket never returns nil; a missing bucket is an empty set.
	GetBucket(ctx context.Context, bucket valueobjects.MinuteBucket) (*entities.PresenceSet, error)
	SaveBucket(ctx context.Context, set *entities.PresenceSet, ttl time.Duration) error
}

// EchoRepository persists the echo buffer.
type EchoRepository interface {
	// Load never returns nil; a missing buffer is empty.
	Load(ctx context.Context) (*entities.EchoBuffer, error)
	Save(ctx context.Context, buf *entities.EchoBuffer) error
}
