package rest

import (
	"context"
	"net/http"
	"time"

	"voidstate/application/ports"
	"voidstate/pkg/common"
	"voidstate/pkg/observability"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// readinessKey is read to prove the store answers
const readinessKey = "count"

// AdminRouter serves health, readiness and metrics on the operator listener,
// away from the public API.
type AdminRouter struct {
	store     ports.KVStore
	collector *observability.Collector
	logger    *zap.Logger
}

// NewAdminRouter creates a new admin router. collector may be nil.
func NewAdminRouter(store ports.KVStore, collector *observability.Collector, logger *zap.Logger) *AdminRouter {
	return &AdminRouter{store: store, collector: collector, logger: logger}
}

// Setup configures all routes
func (a *AdminRouter) Setup() http.Handler {
	router := chi.NewRouter()

	router.Get("/health", a.healthCheck)
	router.Get("/ready", a.readinessCheck)
	if a.collector != nil {
		router.Method(http.MethodGet, "/metrics", a.collector.Handler())
	}

	return router
}

// healthCheck handles health check requests
func (a *AdminRouter) healthCheck(w http.ResponseWriter, req *http.Request) {
	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck reports ready once the store answers a read
func (a *AdminRouter) readinessCheck(w http.ResponseWriter, req *http.Request) {
	ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
	defer cancel()

	if _, _, err := a.store.Get(ctx, readinessKey); err != nil {
		a.logger.Warn("Readiness check failed", zap.Error(err))
		common.RespondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}

	common.RespondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
