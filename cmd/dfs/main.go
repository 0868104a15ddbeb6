package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/api"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/cluster"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/config"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/dispatch"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/metrics"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/storage"
	"go.uber.org/zap"
)

const shutdownTimeout = 30 * time.Second // Default timeout for graceful shutdown

func main() {
	// Load configuration
	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Initialize logger
	if err := config.InitLogger(); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger := config.GetLogger()
	defer config.Sync()

	// Create the per-node replica directories
	store, err := storage.NewDiskStore(cfg.DataDir, cfg.NodeCount)
	if err != nil {
		logger.Fatal("Failed to initialize node directories", zap.Error(err))
	}

	// Initialize cluster state and the replication manager
	registry := cluster.NewNodeRegistry(cfg.NodeCount)
	manager := cluster.NewReplicationManager(registry, store, cfg.ReplicationFactor, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start the system metrics sampler
	collector := metrics.NewSystemCollector(cfg.DataDir, cfg.SystemMetricsInterval, logger)
	collector.Start(ctx)

	// Start the status server when an address is configured
	var statusServer *api.StatusServer
	if cfg.StatusAddr != "" {
		statusServer = api.NewStatusServer(cfg.StatusAddr, manager, logger)
		statusServer.Start()
	}

	fmt.Printf("[DFS] Initialized with %d nodes.\n", cfg.NodeCount)

	// Run the interactive command loop
	dispatcher := dispatch.NewDispatcher(manager, cfg.DownloadPrefix, os.Stdout, logger)
	loopDone := make(chan error, 1)
	go func() {
		loopDone <- dispatcher.Run(ctx, os.Stdin)
	}()

	// Setup signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-signalCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-loopDone:
		if err != nil {
			logger.Error("Command loop failed", zap.Error(err))
		}
	}

	// Trigger graceful shutdown with a timeout context
	var statusTarget cluster.StatusServer
	if statusServer != nil {
		statusTarget = statusServer
	}
	shutdownMgr := cluster.NewShutdownManager(statusTarget, collector, logger, shutdownTimeout)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := shutdownMgr.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("Shutdown completed")
}
