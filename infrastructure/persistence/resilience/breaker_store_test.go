package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"voidstate/infrastructure/persistence/memory"
	pkgerrors "voidstate/pkg/errors"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// flakyStore fails while err is set
type flakyStore struct {
	*memory.KVStore
	err   error
	calls int
}

func (s *flakyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.calls++
	if s.err != nil {
		return nil, false, s.err
	}
	return s.KVStore.Get(ctx, key)
}

func (s *flakyStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	return s.KVStore.Put(ctx, key, value, ttl)
}

func testConfig() BreakerConfig {
	cfg := DefaultBreakerConfig("kv-test")
	cfg.MinRequests = 3
	cfg.FailureThreshold = 0.5
	cfg.Timeout = time.Hour
	return cfg
}

func TestBreakerStore_PassesThrough(t *testing.T) {
	ctx := context.Background()
	store := NewBreakerStore(memory.NewKVStore(nil), testConfig(), zap.NewNop())

	require.NoError(t, store.Put(ctx, "count", []byte("1"), 0))
	value, found, err := store.Get(ctx, "count")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1", string(value))
	assert.Equal(t, gobreaker.StateClosed, store.State())
}

func TestBreakerStore_TripsOnRepeatedFailures(t *testing.T) {
	ctx := context.Background()
	backend := &flakyStore{KVStore: memory.NewKVStore(nil), err: errors.New("connection refused")}
	store := NewBreakerStore(backend, testConfig(), zap.NewNop())

	for i := 0; i < 3; i++ {
		_, _, err := store.Get(ctx, "count")
		require.Error(t, err)
		assert.False(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	}
	assert.Equal(t, gobreaker.StateOpen, store.State())

	calls := backend.calls
	err := store.Put(ctx, "count", []byte("2"), 0)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsType(err, pkgerrors.ErrorTypeUnavailable))
	assert.Equal(t, calls, backend.calls, "an open breaker must not reach the store")
}

func TestBreakerStore_IgnoresCancellation(t *testing.T) {
	backend := &flakyStore{KVStore: memory.NewKVStore(nil), err: context.Canceled}
	store := NewBreakerStore(backend, testConfig(), zap.NewNop())

	for i := 0; i < 5; i++ {
		_, _, err := store.Get(context.Background(), "count")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, store.State())
}
