package di

import (
	"net/http"

	"voidstate/application/ports"
	"voidstate/application/services"
	"voidstate/infrastructure/config"
	"voidstate/interfaces/http/rest"
	pkgerrors "voidstate/pkg/errors"
	"voidstate/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config       *config.Config
	Logger       *zap.Logger
	Store        ports.KVStore
	Service      *services.VoidService
	ErrorHandler *pkgerrors.ErrorHandler
	Collector    *observability.Collector
	Tracer       *observability.Tracer
}

// PublicHandler builds the public API router for the long-running server
func (c *Container) PublicHandler() http.Handler {
	return c.publicHandler(true)
}

// LambdaHandler builds the public API router for Lambda, where the runtime
// opens the X-Ray segment of each invocation.
func (c *Container) LambdaHandler() http.Handler {
	return c.publicHandler(false)
}

func (c *Container) publicHandler(traceSegments bool) http.Handler {
	return rest.NewRouter(
		c.Service,
		c.ErrorHandler,
		c.Collector,
		c.Tracer,
		rest.RouterConfig{
			ClientIPHeader: c.Config.ClientIPHeader,
			MaxBodyBytes:   c.Config.MaxBodyBytes,
			RequestTimeout: c.Config.RequestTimeout,
			TraceSegments:  traceSegments,
		},
		c.Logger,
	).Setup()
}

// AdminHandler builds the operator router
func (c *Container) AdminHandler() http.Handler {
	return rest.NewAdminRouter(c.Store, c.Collector, c.Logger).Setup()
}
