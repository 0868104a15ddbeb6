package cluster

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const serverShutdownGrace = 5 * time.Second

// StatusServer is the slice of the HTTP surface the shutdown sequence stops
type StatusServer interface {
	Shutdown(ctx context.Context) error
}

// MetricsCollector is a background sampler that can be stopped
type MetricsCollector interface {
	Stop()
}

// ShutdownManager handles the graceful shutdown sequence for the simulator
type ShutdownManager struct {
	statusServer   StatusServer
	collector      MetricsCollector
	logger         *zap.Logger
	timeout        time.Duration
	mu             sync.Mutex
	isShuttingDown bool
}

// NewShutdownManager creates a new ShutdownManager instance. Either target
// may be nil when the corresponding subsystem is disabled.
func NewShutdownManager(statusServer StatusServer, collector MetricsCollector, logger *zap.Logger, timeout time.Duration) *ShutdownManager {
	if timeout == 0 {
		timeout = 30 * time.Second // Default timeout of 30 seconds
	}

	return &ShutdownManager{
		statusServer: statusServer,
		collector:    collector,
		logger:       logger,
		timeout:      timeout,
	}
}

// Shutdown performs a graceful shutdown of the simulator's background
// subsystems. Replica bytes already on disk need no teardown; metadata and
// liveness are in-memory only and are deliberately discarded.
func (sm *ShutdownManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	if sm.isShuttingDown {
		sm.mu.Unlock()
		return fmt.Errorf("shutdown already in progress")
	}
	sm.isShuttingDown = true
	sm.mu.Unlock()

	sm.logger.Info("Starting graceful shutdown sequence")

	ctx, cancel := context.WithTimeout(ctx, sm.timeout)
	defer cancel()

	var errs error

	// Step 1: Stop the system metrics sampler; Stop waits for the
	// collection goroutine to exit.
	if sm.collector != nil {
		sm.logger.Info("Stopping system metrics collector")
		sm.collector.Stop()
	}

	// Step 2: Stop the status server, draining in-flight requests
	if sm.statusServer != nil {
		sm.logger.Info("Stopping status server - no longer accepting new requests")
		serverCtx, serverCancel := context.WithTimeout(ctx, serverShutdownGrace)
		if err := sm.statusServer.Shutdown(serverCtx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("status server shutdown: %w", err))
		}
		serverCancel()
	}

	if errs != nil {
		sm.logger.Error("Graceful shutdown completed with errors", zap.Error(errs))
		return errs
	}

	sm.logger.Info("Graceful shutdown completed successfully")
	return nil
}
