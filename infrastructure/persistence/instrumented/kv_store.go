package instrumented

import (
	"context"
	"time"

	"voidstate/application/ports"
)

// Recorder receives one observation per store call
type Recorder interface {
	RecordStoreOperation(operation string, err error, duration time.Duration)
}

// KVStore times every call to the wrapped store
type KVStore struct {
	next     ports.KVStore
	recorder Recorder
}

// NewKVStore wraps next
func NewKVStore(next ports.KVStore, recorder Recorder) *KVStore {
	return &KVStore{next: next, recorder: recorder}
}

// Get implements ports.KVStore
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, found, err := s.next.Get(ctx, key)
	s.recorder.RecordStoreOperation("get", err, time.Since(start))
	return value, found, err
}

// Put implements ports.KVStore
func (s *KVStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := s.next.Put(ctx, key, value, ttl)
	s.recorder.RecordStoreOperation("put", err, time.Since(start))
	return err
}

var _ ports.KVStore = (*KVStore)(nil)
