package pebble

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"voidstate/application/ports"
	"voidstate/domain/services"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"
)

// headerSize is the width of the expiry prefix stored ahead of every value:
// a big-endian Unix nanosecond timestamp, zero for records that never expire.
const headerSize = 8

// KVStore is a ports.KVStore backed by a local Pebble database. It serves
// single-node deployments; instances sharing state need the DynamoDB store.
type KVStore struct {
	db     *pebble.DB
	clock  services.Clock
	logger *zap.Logger
}

// Open opens (or creates) a Pebble database at path.
func Open(path string, clock services.Clock, logger *zap.Logger) (*KVStore, error) {
	if clock == nil {
		clock = services.SystemClock()
	}
	logger.Info("opening_pebble_db", zap.String("path", path))
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		logger.Error("pebble_open_failed", zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	logger.Info("pebble_opened", zap.String("path", path))
	return &KVStore{db: db, clock: clock, logger: logger}, nil
}

// Close closes the database
func (s *KVStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	s.logger.Info("pebble_closed")
	return err
}

// Get implements ports.KVStore
func (s *KVStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	raw, closer, err := s.db.Get([]byte(key))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	defer closer.Close()

	if len(raw) < headerSize {
		return nil, false, fmt.Errorf("record %q is truncated", key)
	}

	if exp := int64(binary.BigEndian.Uint64(raw[:headerSize])); exp != 0 && s.clock.Now().UnixNano() >= exp {
		return nil, false, nil
	}

	// raw is only valid until closer.Close
	out := make([]byte, len(raw)-headerSize)
	copy(out, raw[headerSize:])
	return out, true, nil
}

// Put implements ports.KVStore
func (s *KVStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var exp int64
	if ttl > 0 {
		exp = s.clock.Now().Add(ttl).UnixNano()
	}

	buf := make([]byte, headerSize+len(value))
	binary.BigEndian.PutUint64(buf[:headerSize], uint64(exp))
	copy(buf[headerSize:], value)

	if err := s.db.Set([]byte(key), buf, pebble.Sync); err != nil {
		s.logger.Error("pebble_put_failed", zap.String("key", key), zap.Error(err))
		return err
	}
	return nil
}

var _ ports.KVStore = (*KVStore)(nil)
