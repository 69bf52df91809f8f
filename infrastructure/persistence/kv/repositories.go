package kv

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"voidstate/application/ports"
	"voidstate/domain/core/entities"
	"voidstate/domain/core/valueobjects"
	pkgerrors "voidstate/pkg/errors"

	"go.uber.org/zap"
)

// CounterRepository implements ports.CounterRepository
type CounterRepository struct {
	store  ports.KVStore
	logger *zap.Logger
}

// NewCounterRepository creates a counter repository
func NewCounterRepository(store ports.KVStore, logger *zap.Logger) *CounterRepository {
	return &CounterRepository{store: store, logger: logger}
}

// Global returns the global thought count
func (r *CounterRepository) Global(ctx context.Context) (int64, error) {
	return r.read(ctx, keyGlobalCount)
}

// IncrementGlobal bumps the global count. The read and the write are
// separate store calls; concurrent increments can be lost.
func (r *CounterRepository) IncrementGlobal(ctx context.Context) (int64, error) {
	return r.increment(ctx, keyGlobalCount, 0)
}

// Daily returns the count for day
func (r *CounterRepository) Daily(ctx context.Context, day string) (int64, error) {
	return r.read(ctx, DailyKey(day))
}

// IncrementDaily bumps the count for day and pushes its expiry out by ttl.
func (r *CounterRepository) IncrementDaily(ctx context.Context, day string, ttl time.Duration) (int64, error) {
	return r.increment(ctx, DailyKey(day), ttl)
}

func (r *CounterRepository) read(ctx context.Context, key string) (int64, error) {
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return 0, pkgerrors.NewDatabaseError("get "+key, err)
	}
	if !found {
		return 0, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(string(raw)), 10, 64)
	if err != nil {
		// an unreadable counter restarts from zero rather than failing every request
		r.logger.Warn("Corrupt counter value, treating as zero",
			zap.String("key", key),
			zap.ByteString("value", raw),
		)
		return 0, nil
	}
	return n, nil
}

func (r *CounterRepository) increment(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	current, err := r.read(ctx, key)
	if err != nil {
		return 0, err
	}
	next := current + 1
	if err := r.store.Put(ctx, key, []byte(strconv.FormatInt(next, 10)), ttl); err != nil {
		return 0, pkgerrors.NewDatabaseError("put "+key, err)
	}
	return next, nil
}

// rateWindowRecord is the stored shape of a rate window
type rateWindowRecord struct {
	Count       int   `json:"count"`
	WindowStart int64 `json:"windowStart"`
}

// RateLimitRepository implements ports.RateLimitRepository
type RateLimitRepository struct {
	store ports.KVStore
}

// NewRateLimitRepository creates a rate limit repository
func NewRateLimitRepository(store ports.KVStore) *RateLimitRepository {
	return &RateLimitRepository{store: store}
}

// GetWindow loads the stored window for client, nil if absent.
func (r *RateLimitRepository) GetWindow(ctx context.Context, client valueobjects.ClientID) (*entities.RateWindow, error) {
	key := RateLimitKey(client)
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get "+key, err)
	}
	if !found {
		return nil, nil
	}

	var rec rateWindowRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, pkgerrors.NewDatabaseError("decode "+key, err)
	}
	return &entities.RateWindow{
		Count:       rec.Count,
		WindowStart: time.UnixMilli(rec.WindowStart),
	}, nil
}

// SaveWindow stores w for client with the given expiry.
func (r *RateLimitRepository) SaveWindow(ctx context.Context, client valueobjects.ClientID, w entities.RateWindow, ttl time.Duration) error {
	key := RateLimitKey(client)
	raw, err := json.Marshal(rateWindowRecord{
		Count:       w.Count,
		WindowStart: w.WindowStart.UnixMilli(),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("encode "+key, err)
	}
	if err := r.store.Put(ctx, key, raw, ttl); err != nil {
		return pkgerrors.NewDatabaseError("put "+key, err)
	}
	return nil
}

// PresenceRepository implements ports.PresenceRepository
type PresenceRepository struct {
	store ports.KVStore
}

// NewPresenceRepository creates a presence repository
func NewPresenceRepository(store ports.KVStore) *PresenceRepository {
	return &PresenceRepository{store: store}
}

// GetBucket loads the set for bucket; a missing bucket is empty.
func (r *PresenceRepository) GetBucket(ctx context.Context, bucket valueobjects.MinuteBucket) (*entities.PresenceSet, error) {
	key := PresenceKey(bucket)
	raw, found, err := r.store.Get(ctx, key)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get "+key, err)
	}
	if !found {
		return entities.NewPresenceSet(bucket, nil), nil
	}

	var members []valueobjects.ClientHash
	if err := json.Unmarshal(raw, &members); err != nil {
		return nil, pkgerrors.NewDatabaseError("decode "+key, err)
	}
	return entities.NewPresenceSet(bucket, members), nil
}

// SaveBucket rewrites the whole set with the given expiry.
func (r *PresenceRepository) SaveBucket(ctx context.Context, set *entities.PresenceSet, ttl time.Duration) error {
	key := PresenceKey(set.Bucket)
	members := set.Members()
	if members == nil {
		members = []valueobjects.ClientHash{}
	}
	raw, err := json.Marshal(members)
	if err != nil {
		return pkgerrors.NewDatabaseError("encode "+key, err)
	}
	if err := r.store.Put(ctx, key, raw, ttl); err != nil {
		return pkgerrors.NewDatabaseError("put "+key, err)
	}
	return nil
}

// EchoRepository implements ports.EchoRepository
type EchoRepository struct {
	store ports.KVStore
}

// NewEchoRepository creates an echo repository
func NewEchoRepository(store ports.KVStore) *EchoRepository {
	return &EchoRepository{store: store}
}

// Load returns the stored buffer; a missing buffer is empty.
func (r *EchoRepository) Load(ctx context.Context) (*entities.EchoBuffer, error) {
	raw, found, err := r.store.Get(ctx, keyEchoes)
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get "+keyEchoes, err)
	}
	if !found {
		return entities.NewEchoBuffer(nil), nil
	}

	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, pkgerrors.NewDatabaseError("decode "+keyEchoes, err)
	}
	return entities.NewEchoBuffer(entries), nil
}

// Save rewrites the buffer. Echoes never expire.
func (r *EchoRepository) Save(ctx context.Context, buf *entities.EchoBuffer) error {
	raw, err := json.Marshal(buf.Entries())
	if err != nil {
		return pkgerrors.NewDatabaseError("encode "+keyEchoes, err)
	}
	if err := r.store.Put(ctx, keyEchoes, raw, 0); err != nil {
		return pkgerrors.NewDatabaseError("put "+keyEchoes, err)
	}
	return nil
}

var (
	_ ports.CounterRepository   = (*CounterRepository)(nil)
	_ ports.RateLimitRepository = (*RateLimitRepository)(nil)
	_ ports.PresenceRepository  = (*PresenceRepository)(nil)
	_ ports.EchoRepository      = (*EchoRepository)(nil)
)
