package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"voidstate/infrastructure/config"
	"voidstate/infrastructure/di"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Initialize context with cancellation on interrupt
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize dependency container
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	logger := container.Logger

	servers := []*http.Server{{
		Addr:              cfg.ServerAddress,
		Handler:           container.PublicHandler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}}
	if cfg.MetricsAddress != "" {
		servers = append(servers, &http.Server{
			Addr:              cfg.MetricsAddress,
			Handler:           container.AdminHandler(),
			ReadHeaderTimeout: 5 * time.Second,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("Starting server",
				zap.String("address", srv.Addr),
				zap.String("environment", cfg.Environment),
				zap.String("store", cfg.StoreBackend),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}

	// Graceful shutdown once a signal arrives or a listener fails
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Server shutdown error", zap.String("address", srv.Addr), zap.Error(err))
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server failed", zap.Error(err))
	}

	// Clean up resources
	_ = logger.Sync()
	log.Println("Server stopped")
}
