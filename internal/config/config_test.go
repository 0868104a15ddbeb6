package config

import (
	"os"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.NodeCount != 4 {
		t.Errorf("Expected default node count 4, got %d", cfg.NodeCount)
	}
	if cfg.ReplicationFactor != 3 {
		t.Errorf("Expected default replication factor 3, got %d", cfg.ReplicationFactor)
	}
	if cfg.DataDir != "./data" {
		t.Errorf("Expected default data dir ./data, got %s", cfg.DataDir)
	}
	if cfg.DownloadPrefix != "downloaded_" {
		t.Errorf("Expected default download prefix downloaded_, got %s", cfg.DownloadPrefix)
	}
	if cfg.StatusAddr != "" {
		t.Errorf("Expected status server disabled by default, got %s", cfg.StatusAddr)
	}
	if cfg.SystemMetricsInterval != 15*time.Second {
		t.Errorf("Expected default system metrics interval 15s, got %s", cfg.SystemMetricsInterval)
	}
}

func TestLoadConfig(t *testing.T) {
	// Save original env vars
	origNodeCount := os.Getenv("DFS_NODE_COUNT")
	origFactor := os.Getenv("DFS_REPLICATION_FACTOR")
	defer func() {
		os.Setenv("DFS_NODE_COUNT", origNodeCount)
		os.Setenv("DFS_REPLICATION_FACTOR", origFactor)
	}()

	// Test environment variable overrides
	tests := []struct {
		name     string
		envVars  map[string]string
		validate func(*SimulatorConfig) error
	}{
		{
			name: "custom cluster size",
			envVars: map[string]string{
				"DFS_NODE_COUNT":         "8",
				"DFS_REPLICATION_FACTOR": "5",
			},
			validate: func(cfg *SimulatorConfig) error {
				if cfg.NodeCount != 8 {
					t.Errorf("Expected node count 8, got %d", cfg.NodeCount)
				}
				if cfg.ReplicationFactor != 5 {
					t.Errorf("Expected replication factor 5, got %d", cfg.ReplicationFactor)
				}
				return nil
			},
		},
		{
			name: "custom paths and status address",
			envVars: map[string]string{
				"DFS_DATA_DIR":        "/tmp/dfs-data",
				"DFS_DOWNLOAD_PREFIX": "out_",
				"DFS_STATUS_ADDR":     "127.0.0.1:9310",
			},
			validate: func(cfg *SimulatorConfig) error {
				if cfg.DataDir != "/tmp/dfs-data" {
					t.Errorf("Expected data dir /tmp/dfs-data, got %s", cfg.DataDir)
				}
				if cfg.DownloadPrefix != "out_" {
					t.Errorf("Expected download prefix out_, got %s", cfg.DownloadPrefix)
				}
				if cfg.StatusAddr != "127.0.0.1:9310" {
					t.Errorf("Expected status addr 127.0.0.1:9310, got %s", cfg.StatusAddr)
				}
				return nil
			},
		},
		{
			name: "custom metrics interval",
			envVars: map[string]string{
				"DFS_SYSTEM_METRICS_INTERVAL": "250ms",
			},
			validate: func(cfg *SimulatorConfig) error {
				if cfg.SystemMetricsInterval != 250*time.Millisecond {
					t.Errorf("Expected interval 250ms, got %s", cfg.SystemMetricsInterval)
				}
				return nil
			},
		},
		{
			name: "invalid node count value",
			envVars: map[string]string{
				"DFS_NODE_COUNT": "invalid",
			},
			validate: func(cfg *SimulatorConfig) error {
				if cfg.NodeCount != 4 {
					t.Errorf("Expected default node count 4 for invalid input, got %d", cfg.NodeCount)
				}
				return nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Set environment variables
			for k, v := range tt.envVars {
				os.Setenv(k, v)
			}

			cfg := LoadConfig()
			if err := tt.validate(cfg); err != nil {
				t.Error(err)
			}

			// Clean up environment variables
			for k := range tt.envVars {
				os.Unsetenv(k)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SimulatorConfig)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(cfg *SimulatorConfig) {},
			wantErr: false,
		},
		{
			name:    "zero node count",
			mutate:  func(cfg *SimulatorConfig) { cfg.NodeCount = 0 },
			wantErr: true,
		},
		{
			name:    "negative replication factor",
			mutate:  func(cfg *SimulatorConfig) { cfg.ReplicationFactor = -1 },
			wantErr: true,
		},
		{
			name:    "empty data dir",
			mutate:  func(cfg *SimulatorConfig) { cfg.DataDir = "" },
			wantErr: true,
		},
		{
			name:    "zero metrics interval",
			mutate:  func(cfg *SimulatorConfig) { cfg.SystemMetricsInterval = 0 },
			wantErr: true,
		},
		{
			name: "replication factor above node count is accepted",
			mutate: func(cfg *SimulatorConfig) {
				cfg.NodeCount = 2
				cfg.ReplicationFactor = 3
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no validation error, got %v", err)
			}
		})
	}
}
