package api

import (
	"context"
	"net/http"
	"time"

	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/api/rest"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/metrics"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	requestTimeout = 10 * time.Second
	readTimeout    = 15 * time.Second
	writeTimeout   = 15 * time.Second
)

// StatusServer serves the read-only observability endpoints: node and file
// status, replica health and Prometheus metrics. It never mutates the cluster.
type StatusServer struct {
	server *http.Server
	logger *zap.Logger
}

// NewStatusServer assembles the status router and wraps it in an HTTP server
// listening on addr.
func NewStatusServer(addr string, manager rest.StatusManager, logger *zap.Logger) *StatusServer {
	router := mux.NewRouter()
	router.Use(rest.RequestLoggingMiddleware(logger))
	router.Use(rest.TimeoutMiddleware(requestTimeout))
	router.Use(metrics.MetricsMiddleware)

	statusHandler := rest.NewStatusHandler(manager)
	statusHandler.RegisterRoutes(router)
	metrics.RegisterMetricsHandler(router)

	return &StatusServer{
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
		},
		logger: logger,
	}
}

// Handler exposes the assembled router, mainly for tests
func (s *StatusServer) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving in the background. Listen failures are logged rather
// than fatal: the status surface is optional observability and must not take
// the simulator down with it.
func (s *StatusServer) Start() {
	s.logger.Info("starting status server", zap.String("address", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("status server failed", zap.Error(err))
		}
	}()
}

// Shutdown gracefully stops the server
func (s *StatusServer) Shutdown(ctx context.Context) error {
	s.logger.Info("stopping status server")
	return s.server.Shutdown(ctx)
}
