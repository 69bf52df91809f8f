package rest

import (
	"net/http"
	"time"

	"voidstate/application/services"
	"voidstate/interfaces/http/rest/handlers"
	"voidstate/interfaces/http/rest/middleware"
	pkgerrors "voidstate/pkg/errors"
	"voidstate/pkg/observability"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NotFoundMessage answers every unknown path and wrong method
const NotFoundMessage = pkgerrors.NotFoundMessage

// RouterConfig holds the request handling settings
type RouterConfig struct {
	ClientIPHeader string
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	// TraceSegments opens an X-Ray segment per request. Lambda owns the
	// segment of an invocation, so its router leaves this off.
	TraceSegments bool
}

// Router creates and configures the public HTTP router
type Router struct {
	service      *services.VoidService
	errorHandler *pkgerrors.ErrorHandler
	collector    *observability.Collector
	tracer       *observability.Tracer
	cfg          RouterConfig
	logger       *zap.Logger
}

// NewRouter creates a new router instance. collector and tracer may be nil.
func NewRouter(
	service *services.VoidService,
	errorHandler *pkgerrors.ErrorHandler,
	collector *observability.Collector,
	tracer *observability.Tracer,
	cfg RouterConfig,
	logger *zap.Logger,
) *Router {
	return &Router{
		service:      service,
		errorHandler: errorHandler,
		collector:    collector,
		tracer:       tracer,
		cfg:          cfg,
		logger:       logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(middleware.Logger(rt.logger))
	if rt.collector != nil {
		router.Use(middleware.Metrics(rt.collector))
	}
	router.Use(middleware.CORS())
	router.Use(middleware.Preflight)
	router.Use(rt.errorHandler.Middleware)
	router.Use(rt.segments())
	router.Use(middleware.Deadline(rt.cfg.RequestTimeout))
	router.Use(middleware.ClientIdentity(rt.cfg.ClientIPHeader))

	voidHandler := handlers.NewVoidHandler(rt.service, rt.errorHandler, rt.cfg.MaxBodyBytes, rt.logger)

	router.Route("/api", func(r chi.Router) {
		r.Post("/thought", voidHandler.SubmitThought)
		r.Get("/state", voidHandler.GetState)
		r.Post("/heartbeat", voidHandler.Heartbeat)
	})

	// a wrong method is indistinguishable from an unknown path
	router.NotFound(rt.notFound)
	router.MethodNotAllowed(rt.notFound)

	return router
}

// segments returns the X-Ray segment middleware, or a passthrough when
// segments are opened elsewhere.
func (rt *Router) segments() func(http.Handler) http.Handler {
	if !rt.cfg.TraceSegments {
		return func(next http.Handler) http.Handler { return next }
	}
	return rt.tracer.Middleware
}

func (rt *Router) notFound(w http.ResponseWriter, r *http.Request) {
	rt.errorHandler.Handle(w, r, pkgerrors.NewNotFoundError(r.Method+" "+r.URL.Path))
}
