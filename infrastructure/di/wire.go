//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"voidstate/infrastructure/config"

	"github.com/google/wire"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideDomainConfig,
	ProvideClock,
	ProvideRandom,
	ProvideCollector,
	ProvideMetrics,
	ProvideTracer,
	ProvideKVStore,
	ProvideCounterRepository,
	ProvideRateLimitRepository,
	ProvidePresenceRepository,
	ProvideEchoRepository,
	ProvideRateLimiter,
	ProvideBlocklist,
	ProvideEchoPolicy,
	ProvideVoidService,
	ProvideErrorHandler,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container. The returned cleanup
// releases the store and the blocklist watcher.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, func(), error) {
	wire.Build(SuperSet)
	return nil, nil, nil // Wire will replace this
}
