package di

import (
	"context"
	"fmt"

	"voidstate/application/ports"
	"voidstate/application/services"
	domainconfig "voidstate/domain/config"
	domainservices "voidstate/domain/services"
	"voidstate/infrastructure/config"
	"voidstate/infrastructure/persistence/dynamodb"
	"voidstate/infrastructure/persistence/instrumented"
	"voidstate/infrastructure/persistence/kv"
	"voidstate/infrastructure/persistence/memory"
	"voidstate/infrastructure/persistence/pebble"
	"voidstate/infrastructure/persistence/resilience"
	"voidstate/pkg/auth"
	pkgerrors "voidstate/pkg/errors"
	"voidstate/pkg/observability"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ProvideLogger creates a new logger instance. Every entry carries a
// per-process instance id so logs from concurrent instances can be told
// apart.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.IsProduction() {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)

	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}

	return logger.With(
		zap.String("service", cfg.ServiceName),
		zap.String("instance_id", uuid.NewString()),
	), nil
}

// ProvideDomainConfig returns the business rules
func ProvideDomainConfig(cfg *config.Config) *domainconfig.DomainConfig {
	return cfg.DomainConfig()
}

// ProvideClock returns the wall clock
func ProvideClock() domainservices.Clock {
	return domainservices.SystemClock()
}

// ProvideRandom returns the process-wide random source
func ProvideRandom() domainservices.Random {
	return domainservices.SystemRandom()
}

// ProvideCollector creates the Prometheus collector, nil when metrics are
// disabled.
func ProvideCollector(cfg *config.Config) *observability.Collector {
	if !cfg.EnableMetrics {
		return nil
	}
	return observability.NewCollector("void")
}

// ProvideMetrics adapts the collector to the service's metrics port
func ProvideMetrics(collector *observability.Collector) ports.Metrics {
	if collector == nil {
		return ports.NopMetrics{}
	}
	return collector
}

// ProvideTracer creates the X-Ray tracer
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(cfg.ServiceName, cfg.EnableTracing)
}

// ProvideKVStore opens the configured backend and decorates it with metrics
// and the circuit breaker.
func ProvideKVStore(
	ctx context.Context,
	cfg *config.Config,
	clock domainservices.Clock,
	collector *observability.Collector,
	logger *zap.Logger,
) (ports.KVStore, func(), error) {
	var (
		store   ports.KVStore
		cleanup = func() {}
	)

	switch cfg.StoreBackend {
	case config.StoreMemory:
		logger.Warn("Using in-memory store; state is lost on restart and not shared between instances")
		store = memory.NewKVStore(clock)

	case config.StorePebble:
		db, err := pebble.Open(cfg.PebblePath, clock, logger)
		if err != nil {
			return nil, nil, err
		}
		store = db
		cleanup = func() {
			if err := db.Close(); err != nil {
				logger.Error("Failed to close pebble store", zap.Error(err))
			}
		}

	case config.StoreDynamoDB:
		client, err := newDynamoDBClient(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		ddb, err := dynamodb.NewKVStore(client, cfg.TableName, cfg.ConsistentReads, clock, logger)
		if err != nil {
			return nil, nil, err
		}
		store = ddb

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	if collector != nil {
		store = instrumented.NewKVStore(store, collector)
	}

	if cfg.BreakerEnabled {
		bcfg := resilience.DefaultBreakerConfig("kv-" + cfg.StoreBackend)
		bcfg.Timeout = cfg.BreakerTimeout
		bcfg.MinRequests = cfg.BreakerMinRequests
		bcfg.FailureThreshold = cfg.BreakerThreshold
		store = resilience.NewBreakerStore(store, bcfg, logger)
	}

	logger.Info("Store ready", zap.String("backend", cfg.StoreBackend))
	return store, cleanup, nil
}

// newDynamoDBClient creates a DynamoDB client, instrumented for X-Ray when
// tracing is enabled.
func newDynamoDBClient(ctx context.Context, cfg *config.Config) (*awsdynamodb.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}

	return awsdynamodb.NewFromConfig(awsCfg, func(o *awsdynamodb.Options) {
		if cfg.DynamoDBEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoDBEndpoint)
		}
	}), nil
}

// ProvideCounterRepository creates the counter repository
func ProvideCounterRepository(store ports.KVStore, logger *zap.Logger) ports.CounterRepository {
	return kv.NewCounterRepository(store, logger)
}

// ProvideRateLimitRepository creates the rate limit repository
func ProvideRateLimitRepository(store ports.KVStore) ports.RateLimitRepository {
	return kv.NewRateLimitRepository(store)
}

// ProvidePresenceRepository creates the presence repository
func ProvidePresenceRepository(store ports.KVStore) ports.PresenceRepository {
	return kv.NewPresenceRepository(store)
}

// ProvideEchoRepository creates the echo repository
func ProvideEchoRepository(store ports.KVStore) ports.EchoRepository {
	return kv.NewEchoRepository(store)
}

// ProvideRateLimiter creates the per-client submission limiter
func ProvideRateLimiter(repo ports.RateLimitRepository, dcfg *domainconfig.DomainConfig, clock domainservices.Clock) auth.RateLimiter {
	return auth.NewWindowRateLimiter(repo, auth.WindowConfig{
		Limit:     dcfg.RateLimit,
		Window:    dcfg.RateWindow,
		RecordTTL: dcfg.RateWindowTTL,
	}, clock)
}

// ProvideBlocklist loads the echo blocklist. Without BLOCKLIST_PATH nothing
// is blocked.
func ProvideBlocklist(cfg *config.Config, logger *zap.Logger) (domainservices.Blocklist, func(), error) {
	if cfg.BlocklistPath == "" {
		return domainservices.StaticBlocklist(nil), func() {}, nil
	}

	watcher, err := config.NewBlocklistWatcher(cfg.BlocklistPath, logger)
	if err != nil {
		return nil, nil, err
	}
	watcher.Start()
	return watcher, watcher.Stop, nil
}

// ProvideEchoPolicy creates the echo policy
func ProvideEchoPolicy(dcfg *domainconfig.DomainConfig, blocklist domainservices.Blocklist, random domainservices.Random) *domainservices.EchoPolicy {
	return domainservices.NewEchoPolicy(dcfg, blocklist, random)
}

// ProvideVoidService creates the void service
func ProvideVoidService(
	counters ports.CounterRepository,
	presence ports.PresenceRepository,
	echoes ports.EchoRepository,
	limiter auth.RateLimiter,
	policy *domainservices.EchoPolicy,
	dcfg *domainconfig.DomainConfig,
	clock domainservices.Clock,
	metrics ports.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *services.VoidService {
	return services.NewVoidService(counters, presence, echoes, limiter, policy, dcfg, clock, metrics, tracer, logger)
}

// ProvideErrorHandler creates the HTTP error handler
func ProvideErrorHandler(cfg *config.Config, logger *zap.Logger) *pkgerrors.ErrorHandler {
	return pkgerrors.NewErrorHandler(logger, cfg.IsDevelopment())
}
