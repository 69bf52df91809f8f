package auth

import (
	"context"
	"time"

	"voidstate/application/ports"
	"voidstate/domain/core/valueobjects"
	"voidstate/domain/services"
)

// RateLimiter provides rate limiting functionality
type RateLimiter interface {
	Allow(ctx context.Context, client valueobjects.ClientID) (bool, error)
}

// WindowConfig describes a fixed window
type WindowConfig struct {
	Limit  int
	Window time.Duration
	// RecordTTL is how long a window record outlives its last write.
	RecordTTL time.Duration
}

// WindowRateLimiter implements fixed window rate limiting on top of a
// RateLimitRepository, so every instance sharing the store shares the limit.
//
// The read and the write are separate store calls. Two concurrent requests
// from one client can both be admitted on the last slot; the limit is best
// effort.
type WindowRateLimiter struct {
	repo  ports.RateLimitRepository
	cfg   WindowConfig
	clock services.Clock
}

// NewWindowRateLimiter creates a new window rate limiter
func NewWindowRateLimiter(repo ports.RateLimitRepository, cfg WindowConfig, clock services.Clock) *WindowRateLimiter {
	if clock == nil {
		clock = services.SystemClock()
	}
	return &WindowRateLimiter{repo: repo, cfg: cfg, clock: clock}
}

// Allow checks if a request from client is allowed. A rejected request
// leaves the stored window untouched.
func (l *WindowRateLimiter) Allow(ctx context.Context, client valueobjects.ClientID) (bool, error) {
	stored, err := l.repo.GetWindow(ctx, client)
	if err != nil {
		return false, err
	}

	next, ok := stored.Admit(l.clock.Now(), l.cfg.Limit, l.cfg.Window)
	if !ok {
		return false, nil
	}

	if err := l.repo.SaveWindow(ctx, client, next, l.cfg.RecordTTL); err != nil {
		return false, err
	}
	return true, nil
}

var _ RateLimiter = (*WindowRateLimiter)(nil)
