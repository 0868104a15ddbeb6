package cluster

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/metrics"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/storage"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/utils"
	"go.uber.org/zap"
)

const (
	// DefaultReplicationFactor is the number of replicas to maintain for each file
	DefaultReplicationFactor = 3
)

// ReplicationManager coordinates uploads, downloads, deletes and node
// liveness across the simulated cluster. All state is owned by the instance,
// so independent simulations can run side by side.
//
// One coarse RWMutex serialises the mutating operations against each other;
// reads share it. Operations fail fast and never retry internally.
type ReplicationManager struct {
	mu       sync.RWMutex
	registry *NodeRegistry
	store    storage.ReplicaStore
	index    *storage.MetadataIndex
	factor   int
	logger   *zap.Logger
	metrics  *metrics.PrometheusMetrics
}

// NewReplicationManager creates a manager over the given node set and
// replica store. factor is the number of copies required for an upload to
// succeed; values below one fall back to DefaultReplicationFactor.
func NewReplicationManager(registry *NodeRegistry, store storage.ReplicaStore, factor int, logger *zap.Logger) *ReplicationManager {
	if factor < 1 {
		factor = DefaultReplicationFactor
	}
	rm := &ReplicationManager{
		registry: registry,
		store:    store,
		index:    storage.NewMetadataIndex(),
		factor:   factor,
		logger:   logger,
		metrics:  metrics.GetMetrics(),
	}
	rm.metrics.SetNodesTotal(registry.Count())
	rm.metrics.SetNodesLive(registry.LiveCount())
	rm.metrics.SetFilesTracked(0)
	return rm
}

// ReplicationFactor returns the number of replicas required per file
func (rm *ReplicationManager) ReplicationFactor() int {
	return rm.factor
}

// NodeCount returns the total number of configured nodes
func (rm *ReplicationManager) NodeCount() int {
	return rm.registry.Count()
}

// Upload reads the file at sourcePath and copies it to the first live nodes
// in ascending ID order until the replication factor is met, then records
// the placement. The stored name is the base name of sourcePath.
//
// Any replica write fault aborts the whole upload; bytes already copied to
// earlier nodes stay behind, but no metadata is written, so the file does
// not exist as far as the store is concerned.
func (rm *ReplicationManager) Upload(sourcePath string) (*storage.FileRecord, error) {
	start := time.Now()

	rm.mu.Lock()
	defer rm.mu.Unlock()

	name := filepath.Base(sourcePath)
	logger := rm.logger.With(
		zap.String("op_id", utils.NewOperationID()),
		zap.String("file", name),
	)

	src, err := os.Open(sourcePath)
	if err != nil {
		logger.Warn("source file not readable", zap.String("path", sourcePath), zap.Error(err))
		return nil, rm.fail("upload", fmt.Errorf("%w: %s", ErrSourceNotFound, sourcePath))
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		logger.Error("reading source failed", zap.Error(err))
		return nil, rm.fail("upload", fmt.Errorf("%w: reading %s: %v", ErrReplicationFailed, sourcePath, err))
	}

	placed := make([]int, 0, rm.factor)
	for id := 1; id <= rm.registry.Count() && len(placed) < rm.factor; id++ {
		if !rm.registry.IsLive(id) {
			continue
		}
		if err := rm.store.Put(id, name, bytes.NewReader(data)); err != nil {
			logger.Error("replica write failed", zap.Int("node_id", id), zap.Error(err))
			return nil, rm.fail("upload", fmt.Errorf("%w: node %d: %v", ErrReplicationFailed, id, err))
		}
		placed = append(placed, id)
	}

	if len(placed) < rm.factor {
		logger.Warn("not enough live nodes for replication",
			zap.Int("placed", len(placed)),
			zap.Int("required", rm.factor),
		)
		return nil, rm.fail("upload", fmt.Errorf("%w: placed %d of %d", ErrInsufficientReplicas, len(placed), rm.factor))
	}

	record := storage.FileRecord{
		Name:       name,
		Nodes:      placed,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
	}
	rm.index.Set(record)

	rm.metrics.RecordUpload()
	rm.metrics.ObserveOperationDuration("upload", time.Since(start).Seconds())
	rm.publishCatalogMetrics(rm.evaluateHealth())

	logger.Info("upload complete",
		zap.Ints("nodes", placed),
		zap.Int64("size", record.Size),
	)
	return &record, nil
}

// Download copies the named file to dstPath from the first live node in its
// recorded placement order and returns the serving node ID. Later replicas
// are never consulted: a read fault on the chosen node fails the whole call.
func (rm *ReplicationManager) Download(name, dstPath string) (int, error) {
	start := time.Now()

	rm.mu.RLock()
	defer rm.mu.RUnlock()

	logger := rm.logger.With(
		zap.String("op_id", utils.NewOperationID()),
		zap.String("file", name),
	)

	record, ok := rm.index.Get(name)
	if !ok {
		logger.Warn("download of unknown file")
		return 0, rm.fail("download", fmt.Errorf("%w: %s", ErrFileNotFound, name))
	}

	for _, id := range record.Nodes {
		if !rm.registry.IsLive(id) {
			continue
		}
		if err := rm.copyReplica(id, name, dstPath); err != nil {
			logger.Error("replica read failed", zap.Int("node_id", id), zap.Error(err))
			return 0, rm.fail("download", fmt.Errorf("%w: node %d: %v", ErrDownloadFailed, id, err))
		}

		rm.metrics.RecordDownload()
		rm.metrics.ObserveOperationDuration("download", time.Since(start).Seconds())
		logger.Info("download complete", zap.Int("node_id", id), zap.String("destination", dstPath))
		return id, nil
	}

	logger.Warn("no live replica", zap.Ints("nodes", record.Nodes))
	return 0, rm.fail("download", fmt.Errorf("%w: %s", ErrAllReplicasUnavailable, name))
}

func (rm *ReplicationManager) copyReplica(nodeID int, name, dstPath string) error {
	src, err := rm.store.Get(nodeID, name)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

// Delete removes every recorded replica of the named file, then drops its
// metadata. Replicas are removed from failed nodes too: their directories
// remain reachable, only simulated operations treat the node as down.
//
// The first removal fault aborts the call and keeps the metadata record so
// the delete can be retried; replicas already removed stay removed.
func (rm *ReplicationManager) Delete(name string) error {
	start := time.Now()

	rm.mu.Lock()
	defer rm.mu.Unlock()

	logger := rm.logger.With(
		zap.String("op_id", utils.NewOperationID()),
		zap.String("file", name),
	)

	record, ok := rm.index.Get(name)
	if !ok {
		logger.Warn("delete of unknown file")
		return rm.fail("delete", fmt.Errorf("%w: %s", ErrFileNotFound, name))
	}

	for _, id := range record.Nodes {
		if err := rm.store.Remove(id, name); err != nil {
			logger.Error("replica removal failed", zap.Int("node_id", id), zap.Error(err))
			return rm.fail("delete", fmt.Errorf("%w: node %d: %v", ErrDeletionFailed, id, err))
		}
	}
	rm.index.Remove(name)

	rm.metrics.RecordDeletion()
	rm.metrics.ObserveOperationDuration("delete", time.Since(start).Seconds())
	rm.publishCatalogMetrics(rm.evaluateHealth())

	logger.Info("delete complete", zap.Ints("nodes", record.Nodes))
	return nil
}

// FailNode marks a node as failed and returns the resulting health report.
// Failing an already failed node is a no-op.
func (rm *ReplicationManager) FailNode(id int) ([]FileHealth, error) {
	return rm.setNodeLive("fail_node", id, false)
}

// RecoverNode marks a node as live again and returns the resulting health
// report. Replica bytes written before the failure become readable again.
func (rm *ReplicationManager) RecoverNode(id int) ([]FileHealth, error) {
	return rm.setNodeLive("recover_node", id, true)
}

func (rm *ReplicationManager) setNodeLive(operation string, id int, live bool) ([]FileHealth, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if err := rm.registry.SetLive(id, live); err != nil {
		return nil, rm.fail(operation, err)
	}
	rm.metrics.SetNodesLive(rm.registry.LiveCount())

	rm.logger.Info("node liveness changed",
		zap.Int("node_id", id),
		zap.Bool("live", live),
	)

	report := rm.evaluateHealth()
	rm.publishCatalogMetrics(report)
	return report, nil
}

// EvaluateReplicaHealth recomputes the health of every tracked file from
// current node liveness. Health is always derived on demand, never cached,
// and nothing here repairs under-replicated files.
func (rm *ReplicationManager) EvaluateReplicaHealth() []FileHealth {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	report := rm.evaluateHealth()
	rm.publishCatalogMetrics(report)
	return report
}

// evaluateHealth builds the per-file report; callers hold rm.mu
func (rm *ReplicationManager) evaluateHealth() []FileHealth {
	records := rm.index.ListAll()
	report := make([]FileHealth, 0, len(records))
	for _, record := range records {
		live := 0
		for _, id := range record.Nodes {
			if rm.registry.IsLive(id) {
				live++
			}
		}
		report = append(report, FileHealth{
			Name:         record.Name,
			LiveReplicas: live,
			TotalNodes:   len(record.Nodes),
			Status:       ClassifyReplicas(live),
		})
	}
	return report
}

// publishCatalogMetrics pushes file counts and health tallies; callers hold rm.mu
func (rm *ReplicationManager) publishCatalogMetrics(report []FileHealth) {
	rm.metrics.SetFilesTracked(rm.index.Len())

	counts := make(map[HealthStatus]int, 3)
	for _, health := range report {
		counts[health.Status]++
	}
	for _, status := range []HealthStatus{HealthHealthy, HealthAtRisk, HealthLost} {
		rm.metrics.SetFilesByHealth(status.String(), counts[status])
	}
}

// ListFiles returns a record for every tracked file, sorted by name
func (rm *ReplicationManager) ListFiles() []storage.FileRecord {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return rm.index.ListAll()
}

// Nodes returns the state of every node, ordered by ID
func (rm *ReplicationManager) Nodes() []Node {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	return rm.registry.Snapshot()
}

// NodeState returns the state of a single node
func (rm *ReplicationManager) NodeState(id int) (Node, error) {
	rm.mu.RLock()
	defer rm.mu.RUnlock()

	if err := rm.registry.Validate(id); err != nil {
		return Node{}, err
	}
	return Node{ID: id, Live: rm.registry.IsLive(id)}, nil
}

// fail counts the failure for metrics and passes the error through
func (rm *ReplicationManager) fail(operation string, err error) error {
	rm.metrics.RecordOperationFailure(operation, failureKind(err))
	return err
}
