package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// SimulatorConfig holds all configuration settings for the simulator
type SimulatorConfig struct {
	// Cluster settings
	NodeCount         int `json:"node_count"`         // Number of simulated storage nodes
	ReplicationFactor int `json:"replication_factor"` // R: Number of copies per file

	// Storage settings
	DataDir        string `json:"data_dir"`        // Root directory for per-node replica dirs
	DownloadPrefix string `json:"download_prefix"` // Prefix for files written by download

	// Status endpoint settings
	StatusAddr string `json:"status_addr"` // Listen address for the status HTTP server; empty disables it

	// Metrics settings
	SystemMetricsInterval time.Duration `json:"system_metrics_interval"` // Time between system resource samples
}

// DefaultConfig returns a SimulatorConfig with default values
func DefaultConfig() *SimulatorConfig {
	return &SimulatorConfig{
		NodeCount:             4,
		ReplicationFactor:     3, // Default to 3 replicas (R)
		DataDir:               "./data",
		DownloadPrefix:        "downloaded_",
		StatusAddr:            "", // Disabled unless set
		SystemMetricsInterval: 15 * time.Second,
	}
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *SimulatorConfig {
	config := DefaultConfig()

	if nodeCount := os.Getenv("DFS_NODE_COUNT"); nodeCount != "" {
		if count, err := strconv.Atoi(nodeCount); err == nil {
			config.NodeCount = count
		}
	}

	if replicationFactor := os.Getenv("DFS_REPLICATION_FACTOR"); replicationFactor != "" {
		if factor, err := strconv.Atoi(replicationFactor); err == nil {
			config.ReplicationFactor = factor
		}
	}

	if dataDir := os.Getenv("DFS_DATA_DIR"); dataDir != "" {
		config.DataDir = dataDir
	}

	if prefix := os.Getenv("DFS_DOWNLOAD_PREFIX"); prefix != "" {
		config.DownloadPrefix = prefix
	}

	if statusAddr := os.Getenv("DFS_STATUS_ADDR"); statusAddr != "" {
		config.StatusAddr = statusAddr
	}

	if interval := os.Getenv("DFS_SYSTEM_METRICS_INTERVAL"); interval != "" {
		if duration, err := time.ParseDuration(interval); err == nil {
			config.SystemMetricsInterval = duration
		}
	}

	return config
}

// Validate checks if the configuration is valid. The replication factor is
// deliberately allowed to exceed the node count; uploads then fail with an
// insufficient-replicas error instead of being silently clamped.
func (c *SimulatorConfig) Validate() error {
	if c.NodeCount < 1 {
		return fmt.Errorf("node count must be positive, got %d", c.NodeCount)
	}
	if c.ReplicationFactor < 1 {
		return fmt.Errorf("replication factor must be positive, got %d", c.ReplicationFactor)
	}
	if c.DataDir == "" {
		return fmt.Errorf("data directory must not be empty")
	}
	if c.SystemMetricsInterval <= 0 {
		return fmt.Errorf("system metrics interval must be positive, got %s", c.SystemMetricsInterval)
	}
	return nil
}
