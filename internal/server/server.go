// Package server assembles the HTTP API: routing, middleware and the
// listener lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/handlers"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/middleware"
	"github.com/INKEDDRAW/InkedDrawApp-sub003/internal/server/storage"
)

const (
	healthPath    = "/api/v1/health"
	recognizePath = "/api/v1/recognize"
	shutdownGrace = 5 * time.Second
)

// RateLimitConfig задаёт лимиты запросов на IP
type RateLimitConfig struct {
	Requests          int           `mapstructure:"requests"`
	Window            time.Duration `mapstructure:"window"`
	RecognizeRequests int           `mapstructure:"recognize_requests"` // распознавание дороже остальных запросов
}

// Config holds HTTP server settings
type Config struct {
	Addr      string
	JWT       handlers.JWTConfig
	RateLimit RateLimitConfig
}

// Storage is the persistence the API is served from
type Storage interface {
	storage.RecordStorage
	storage.ProductStorage
	handlers.Pinger
}

// NewRouter builds the API router
func NewRouter(logger *slog.Logger, cfg Config, store Storage, recognizer handlers.Recognizer) http.Handler {
	health := handlers.NewHealthHandler(logger, store)
	records := handlers.NewRecordsHandler(logger, store)
	products := handlers.NewProductsHandler(logger, store)
	recognize := handlers.NewRecognizeHandler(logger, recognizer)

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.SendError(w, "not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handlers.SendError(w, "method not allowed", http.StatusMethodNotAllowed)
	})

	router.Use(middleware.RequestLogger(logger, healthPath))
	router.Use(middleware.Recover(logger))
	router.Use(middleware.RateLimit(logger,
		middleware.Limit{Requests: cfg.RateLimit.Requests, Window: cfg.RateLimit.Window},
		middleware.Limit{Prefix: recognizePath, Requests: cfg.RateLimit.RecognizeRequests, Window: cfg.RateLimit.Window},
	))

	router.HandleFunc(healthPath, health.Health).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Authenticate(logger, cfg.JWT))

	api.HandleFunc("/records/{table}", records.Create).Methods(http.MethodPost)
	api.HandleFunc("/records/{table}", records.List).Methods(http.MethodGet)
	api.HandleFunc("/records/{table}/{id}", records.Update).Methods(http.MethodPut)
	api.HandleFunc("/records/{table}/{id}", records.Delete).Methods(http.MethodDelete)
	api.HandleFunc("/changes", records.Changes).Methods(http.MethodGet)

	api.HandleFunc("/products", products.List).Methods(http.MethodGet)
	api.HandleFunc("/products", products.Create).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", products.Get).Methods(http.MethodGet)

	api.HandleFunc("/recognize", recognize.Recognize).Methods(http.MethodPost)

	return router
}

// Run serves handler on cfg.Addr until ctx is cancelled, then shuts down
// gracefully
func Run(ctx context.Context, logger *slog.Logger, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}
}
