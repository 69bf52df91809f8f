package resilience

import (
	"context"
	"errors"
	"time"

	"voidstate/application/ports"
	pkgerrors "voidstate/pkg/errors"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig holds configuration for the store circuit breaker
type BreakerConfig struct {
	Name        string
	MaxRequests uint32
	Interval    time.Duration
	Timeout     time.Duration
	// FailureThreshold is the failure ratio that trips the breaker once at
	// least MinRequests have been observed in the current interval.
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns a default configuration for the store breaker
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          10 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      10,
	}
}

// BreakerStore decorates a ports.KVStore with a circuit breaker so a failing
// store is answered fast instead of every request waiting on its timeout.
type BreakerStore struct {
	next ports.KVStore
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps next
func NewBreakerStore(next ports.KVStore, cfg BreakerConfig, logger *zap.Logger) *BreakerStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		// a caller giving up is not a store failure
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	})

	return &BreakerStore{next: next, cb: cb}
}

// Get implements ports.KVStore
func (s *BreakerStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	type result struct {
		value []byte
		found bool
	}

	out, err := s.cb.Execute(func() (interface{}, error) {
		value, found, err := s.next.Get(ctx, key)
		return result{value: value, found: found}, err
	})
	if err != nil {
		return nil, false, s.translate(err)
	}

	r := out.(result)
	return r.value, r.found, nil
}

// Put implements ports.KVStore
func (s *BreakerStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.next.Put(ctx, key, value, ttl)
	})
	if err != nil {
		return s.translate(err)
	}
	return nil
}

// State returns the breaker state
func (s *BreakerStore) State() gobreaker.State {
	return s.cb.State()
}

func (s *BreakerStore) translate(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.NewUnavailableError(s.cb.Name(), err)
	}
	return err
}

var _ ports.KVStore = (*BreakerStore)(nil)
