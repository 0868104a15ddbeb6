package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"
)

// SystemCollector periodically samples host CPU, memory and data directory
// disk usage into the Prometheus gauges. Sampling failures are logged and
// skipped; the next tick retries naturally.
type SystemCollector struct {
	metrics  *PrometheusMetrics
	dataDir  string
	interval time.Duration
	logger   *zap.Logger
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSystemCollector creates a collector sampling every interval
func NewSystemCollector(dataDir string, interval time.Duration, logger *zap.Logger) *SystemCollector {
	return &SystemCollector{
		metrics:  GetMetrics(),
		dataDir:  dataDir,
		interval: interval,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the sampling loop. It samples once immediately so gauges
// are populated before the first tick.
func (c *SystemCollector) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		c.Collect(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-c.stopCh:
				return
			case <-ticker.C:
				c.Collect(ctx)
			}
		}
	}()
}

// Stop halts the sampling loop and waits for it to exit. Safe to call more
// than once.
func (c *SystemCollector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
	c.wg.Wait()
}

// Collect takes one sample of every system gauge
func (c *SystemCollector) Collect(ctx context.Context) {
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err != nil {
		c.logger.Debug("cpu sample failed", zap.Error(err))
	} else if len(percents) > 0 {
		c.metrics.SetSystemCPUPercent(percents[0])
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err != nil {
		c.logger.Debug("memory sample failed", zap.Error(err))
	} else {
		c.metrics.SetSystemMemoryUsed(vm.Used)
	}

	if usage, err := disk.UsageWithContext(ctx, c.dataDir); err != nil {
		c.logger.Debug("disk sample failed", zap.Error(err))
	} else {
		c.metrics.SetDataDirUsedBytes(usage.Used)
	}
}
