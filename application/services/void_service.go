package services

import (
	"context"
	"strings"

	"voidstate/application/ports"
	"voidstate/domain/config"
	"voidstate/domain/core/entities"
	"voidstate/domain/core/valueobjects"
	domainservices "voidstate/domain/services"
	"voidstate/pkg/auth"
	pkgerrors "voidstate/pkg/errors"
	"voidstate/pkg/observability"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RateLimitMessage is returned to clients submitting too fast
const RateLimitMessage = "the void needs time to digest"

// SubmitResult is the outcome of an accepted thought
type SubmitResult struct {
	Count int64   `json:"count"`
	Echo  *string `json:"echo"`
}

// StateResult is the collective state of the void
type StateResult struct {
	Count    int64  `json:"count"`
	Presence int    `json:"presence"`
	Mood     string `json:"mood"`
	Daily    int64  `json:"daily"`
}

// VoidService implements the three operations of the void directly on the
// repositories. None of them hold locks across store calls: every
// read-modify-write may lose concurrent updates.
type VoidService struct {
	counters ports.CounterRepository
	presence ports.PresenceRepository
	echoes   ports.EchoRepository
	limiter  auth.RateLimiter
	policy   *domainservices.EchoPolicy
	cfg      *config.DomainConfig
	clock    domainservices.Clock
	metrics  ports.Metrics
	tracer   *observability.Tracer
	logger   *zap.Logger
}

// NewVoidService creates a new void service
func NewVoidService(
	counters ports.CounterRepository,
	presence ports.PresenceRepository,
	echoes ports.EchoRepository,
	limiter auth.RateLimiter,
	policy *domainservices.EchoPolicy,
	cfg *config.DomainConfig,
	clock domainservices.Clock,
	metrics ports.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *VoidService {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if clock == nil {
		clock = domainservices.SystemClock()
	}
	if metrics == nil {
		metrics = ports.NopMetrics{}
	}
	return &VoidService{
		counters: counters,
		presence: presence,
		echoes:   echoes,
		limiter:  limiter,
		policy:   policy,
		cfg:      cfg,
		clock:    clock,
		metrics:  metrics,
		tracer:   tracer,
		logger:   logger,
	}
}

// SubmitThought validates and counts a thought, maybe keeps it as an echo
// and maybe hands one back. The steps run strictly in this order:
// validate, rate limit, global count, echo store, echo fetch, daily count.
// A failure after the rate limit step leaves earlier writes in place.
func (s *VoidService) SubmitThought(ctx context.Context, client valueobjects.ClientID, raw string) (*SubmitResult, error) {
	var result *SubmitResult
	err := s.tracer.TraceFunction(ctx, "SubmitThought", func(ctx context.Context) error {
		var err error
		result, err = s.submit(ctx, client, raw)
		return err
	})
	return result, err
}

func (s *VoidService) submit(ctx context.Context, client valueobjects.ClientID, raw string) (*SubmitResult, error) {
	thought, err := valueobjects.NewThoughtWithConfig(raw, s.cfg)
	if err != nil {
		s.metrics.RecordThoughtRejected(rejectReason(err))
		return nil, err
	}

	allowed, err := s.limiter.Allow(ctx, client)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "rate limit check failed")
	}
	if !allowed {
		s.metrics.RecordThoughtRejected("rate_limited")
		return nil, pkgerrors.NewRateLimitError(RateLimitMessage, s.cfg.RateLimit, s.cfg.RateWindow.String())
	}

	count, err := s.counters.IncrementGlobal(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to increment global count")
	}

	if err := s.maybeStoreEcho(ctx, thought); err != nil {
		return nil, err
	}

	echo, err := s.maybeFetchEcho(ctx)
	if err != nil {
		return nil, err
	}

	if _, err := s.counters.IncrementDaily(ctx, valueobjects.DayKey(s.clock.Now()), s.cfg.DailyCounterTTL); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to increment daily count")
	}

	s.metrics.RecordThoughtAccepted()
	s.logger.Debug("Thought accepted",
		zap.Int64("count", count),
		zap.Bool("echoed", echo != nil),
	)

	return &SubmitResult{Count: count, Echo: echo}, nil
}

// rejectReason labels a validation failure by its code, e.g.
// "thought_too_brief".
func rejectReason(err error) string {
	if pkgerrors.IsValidation(err) {
		if code := pkgerrors.GetAppError(err).Code; code != "" {
			return strings.ToLower(code)
		}
	}
	return "invalid"
}

func (s *VoidService) maybeStoreEcho(ctx context.Context, thought valueobjects.Thought) error {
	if !s.policy.Eligible(thought) {
		return nil
	}

	buf, err := s.echoes.Load(ctx)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to load echoes")
	}
	if !buf.Append(thought.Text(), s.cfg.MaxEchoes) {
		return nil
	}
	if err := s.echoes.Save(ctx, buf); err != nil {
		return pkgerrors.Wrap(err, "failed to save echoes")
	}

	s.metrics.RecordEchoStored()
	return nil
}

// maybeFetchEcho rolls the echo gate independently of whether anything was
// stored, re-reading the buffer when it fires.
func (s *VoidService) maybeFetchEcho(ctx context.Context) (*string, error) {
	if !s.policy.ShouldEcho() {
		return nil, nil
	}

	buf, err := s.echoes.Load(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to load echoes")
	}

	source := "buffer"
	if buf.Len() == 0 {
		source = "seed"
	}
	echo := s.policy.Pick(buf)
	s.metrics.RecordEchoReturned(source)
	s.tracer.AddAnnotation(ctx, "echo_source", source)
	return &echo, nil
}

// GetState reads the global count, today's count and the two most recent
// presence buckets concurrently.
func (s *VoidService) GetState(ctx context.Context) (*StateResult, error) {
	var result *StateResult
	err := s.tracer.TraceFunction(ctx, "GetState", func(ctx context.Context) error {
		var err error
		result, err = s.state(ctx)
		return err
	})
	return result, err
}

func (s *VoidService) state(ctx context.Context) (*StateResult, error) {
	now := s.clock.Now()
	bucket := valueobjects.MinuteBucketAt(now)

	var (
		count, daily      int64
		current, previous *entities.PresenceSet
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		count, err = s.counters.Global(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		daily, err = s.counters.Daily(gctx, valueobjects.DayKey(now))
		return err
	})
	g.Go(func() error {
		var err error
		current, err = s.presence.GetBucket(gctx, bucket)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = s.presence.GetBucket(gctx, bucket.Previous())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to read state")
	}

	mood := valueobjects.MoodFromDaily(daily).String()
	s.tracer.AddAnnotation(ctx, "mood", mood)

	return &StateResult{
		Count:    count,
		Presence: entities.UnionCount(current, previous),
		Mood:     mood,
		Daily:    daily,
	}, nil
}

// Heartbeat records the client as present in the current minute bucket.
// Only the salted hash of the client identity is stored.
func (s *VoidService) Heartbeat(ctx context.Context, client valueobjects.ClientID) error {
	return s.tracer.TraceFunction(ctx, "Heartbeat", func(ctx context.Context) error {
		return s.heartbeat(ctx, client)
	})
}

func (s *VoidService) heartbeat(ctx context.Context, client valueobjects.ClientID) error {
	bucket := valueobjects.MinuteBucketAt(s.clock.Now())
	hash := client.Hash(s.cfg.PresenceSalt, s.cfg.HashBytes)

	set, err := s.presence.GetBucket(ctx, bucket)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to load presence")
	}

	if set.Add(hash) {
		if err := s.presence.SaveBucket(ctx, set, s.cfg.PresenceTTL); err != nil {
			return pkgerrors.Wrap(err, "failed to save presence")
		}
	}

	s.metrics.RecordHeartbeat()
	return nil
}
