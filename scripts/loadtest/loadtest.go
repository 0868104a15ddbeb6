package main

import (
	"crypto/rand"
	"errors"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/cluster"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/storage"
)

// Configuration options
var (
	dataDir           string
	nodeCount         int
	replicationFactor int
	numWorkers        int
	duration          time.Duration
	readRatio         float64
	deleteRatio       float64
	fileCount         int
	fileSize          int
	reportInterval    time.Duration
	filePrefix        string
	outputFile        string
	opsPerSec         int
	maxConcurrency    int
	churnInterval     time.Duration
	warmupFileCount   int
)

// Statistics
type Stats struct {
	TotalOps       int64
	SuccessOps     int64
	FailedOps      int64
	UploadOps      int64
	DownloadOps    int64
	DeleteOps      int64
	TotalLatency   int64 // in microseconds
	MinLatency     int64 // in microseconds
	MaxLatency     int64 // in microseconds
	Latencies      []int64
	Outcomes       map[string]int64
	StartTime      time.Time
	EndTime        time.Time
	OpsPerSec      float64
	AverageLatency float64 // in milliseconds
	P50Latency     float64 // in milliseconds
	P90Latency     float64 // in milliseconds
	P95Latency     float64 // in milliseconds
	P99Latency     float64 // in milliseconds
	ErrorRate      float64
	mu             sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		MinLatency: math.MaxInt64,
		Latencies:  make([]int64, 0, 1000000),
		Outcomes:   make(map[string]int64),
		StartTime:  time.Now(),
	}
}

func (s *Stats) AddLatency(latency time.Duration) {
	latencyMicros := latency.Microseconds()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalLatency += latencyMicros
	s.Latencies = append(s.Latencies, latencyMicros)

	if latencyMicros < s.MinLatency {
		s.MinLatency = latencyMicros
	}

	if latencyMicros > s.MaxLatency {
		s.MaxLatency = latencyMicros
	}
}

func (s *Stats) AddOutcome(outcome string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Outcomes[outcome]++

	if outcome == "ok" {
		atomic.AddInt64(&s.SuccessOps, 1)
	} else {
		atomic.AddInt64(&s.FailedOps, 1)
	}
}

func (s *Stats) AddUploadOp() {
	atomic.AddInt64(&s.UploadOps, 1)
	atomic.AddInt64(&s.TotalOps, 1)
}

func (s *Stats) AddDownloadOp() {
	atomic.AddInt64(&s.DownloadOps, 1)
	atomic.AddInt64(&s.TotalOps, 1)
}

func (s *Stats) AddDeleteOp() {
	atomic.AddInt64(&s.DeleteOps, 1)
	atomic.AddInt64(&s.TotalOps, 1)
}

func (s *Stats) CalculateStats() {
	s.EndTime = time.Now()
	duration := s.EndTime.Sub(s.StartTime).Seconds()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Sort latencies for percentile calculations
	sort.Slice(s.Latencies, func(i, j int) bool {
		return s.Latencies[i] < s.Latencies[j]
	})

	// Calculate statistics
	s.OpsPerSec = float64(s.TotalOps) / duration

	if len(s.Latencies) > 0 {
		s.AverageLatency = float64(s.TotalLatency) / float64(len(s.Latencies)) / 1000.0 // Convert to ms

		// Calculate percentiles
		p50Index := int(float64(len(s.Latencies)) * 0.5)
		p90Index := int(float64(len(s.Latencies)) * 0.9)
		p95Index := int(float64(len(s.Latencies)) * 0.95)
		p99Index := int(float64(len(s.Latencies)) * 0.99)

		if p50Index < len(s.Latencies) {
			s.P50Latency = float64(s.Latencies[p50Index]) / 1000.0 // Convert to ms
		}
		if p90Index < len(s.Latencies) {
			s.P90Latency = float64(s.Latencies[p90Index]) / 1000.0 // Convert to ms
		}
		if p95Index < len(s.Latencies) {
			s.P95Latency = float64(s.Latencies[p95Index]) / 1000.0 // Convert to ms
		}
		if p99Index < len(s.Latencies) {
			s.P99Latency = float64(s.Latencies[p99Index]) / 1000.0 // Convert to ms
		}
	}

	if s.TotalOps > 0 {
		s.ErrorRate = float64(s.FailedOps) / float64(s.TotalOps) * 100.0
	}
}

func (s *Stats) PrintStats() {
	fmt.Println("\n=== Workload Results ===")
	fmt.Printf("Duration: %.2f seconds\n", s.EndTime.Sub(s.StartTime).Seconds())
	fmt.Printf("Total Operations: %d\n", s.TotalOps)
	fmt.Printf("Successful Operations: %d\n", s.SuccessOps)
	fmt.Printf("Failed Operations: %d\n", s.FailedOps)
	fmt.Printf("Uploads: %d\n", s.UploadOps)
	fmt.Printf("Downloads: %d\n", s.DownloadOps)
	fmt.Printf("Deletes: %d\n", s.DeleteOps)
	fmt.Printf("Operations/sec: %.2f\n", s.OpsPerSec)
	fmt.Printf("Error Rate: %.2f%%\n", s.ErrorRate)

	fmt.Println("\n=== Latency (ms) ===")
	fmt.Printf("Min: %.2f\n", float64(s.MinLatency)/1000.0)
	fmt.Printf("Max: %.2f\n", float64(s.MaxLatency)/1000.0)
	fmt.Printf("Average: %.2f\n", s.AverageLatency)
	fmt.Printf("P50: %.2f\n", s.P50Latency)
	fmt.Printf("P90: %.2f\n", s.P90Latency)
	fmt.Printf("P95: %.2f\n", s.P95Latency)
	fmt.Printf("P99: %.2f\n", s.P99Latency)

	fmt.Println("\n=== Outcomes ===")
	for outcome, count := range s.Outcomes {
		fmt.Printf("%s: %d\n", outcome, count)
	}
}

func (s *Stats) WriteToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	// Write CSV header
	file.WriteString("metric,value\n")

	// Write metrics
	file.WriteString(fmt.Sprintf("duration_seconds,%.2f\n", s.EndTime.Sub(s.StartTime).Seconds()))
	file.WriteString(fmt.Sprintf("total_operations,%d\n", s.TotalOps))
	file.WriteString(fmt.Sprintf("successful_operations,%d\n", s.SuccessOps))
	file.WriteString(fmt.Sprintf("failed_operations,%d\n", s.FailedOps))
	file.WriteString(fmt.Sprintf("upload_operations,%d\n", s.UploadOps))
	file.WriteString(fmt.Sprintf("download_operations,%d\n", s.DownloadOps))
	file.WriteString(fmt.Sprintf("delete_operations,%d\n", s.DeleteOps))
	file.WriteString(fmt.Sprintf("operations_per_second,%.2f\n", s.OpsPerSec))
	file.WriteString(fmt.Sprintf("error_rate,%.2f\n", s.ErrorRate))
	file.WriteString(fmt.Sprintf("min_latency_ms,%.2f\n", float64(s.MinLatency)/1000.0))
	file.WriteString(fmt.Sprintf("max_latency_ms,%.2f\n", float64(s.MaxLatency)/1000.0))
	file.WriteString(fmt.Sprintf("avg_latency_ms,%.2f\n", s.AverageLatency))
	file.WriteString(fmt.Sprintf("p50_latency_ms,%.2f\n", s.P50Latency))
	file.WriteString(fmt.Sprintf("p90_latency_ms,%.2f\n", s.P90Latency))
	file.WriteString(fmt.Sprintf("p95_latency_ms,%.2f\n", s.P95Latency))
	file.WriteString(fmt.Sprintf("p99_latency_ms,%.2f\n", s.P99Latency))

	// Write outcome counts
	for outcome, count := range s.Outcomes {
		file.WriteString(fmt.Sprintf("outcome_%s,%d\n", outcome, count))
	}

	return nil
}

// classify maps operation errors to outcome labels for the stats table.
func classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, cluster.ErrSourceNotFound):
		return "source_not_found"
	case errors.Is(err, cluster.ErrInsufficientReplicas):
		return "insufficient_replicas"
	case errors.Is(err, cluster.ErrReplicationFailed):
		return "replication_failed"
	case errors.Is(err, cluster.ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, cluster.ErrAllReplicasUnavailable):
		return "all_replicas_unavailable"
	case errors.Is(err, cluster.ErrDownloadFailed):
		return "download_failed"
	case errors.Is(err, cluster.ErrDeletionFailed):
		return "deletion_failed"
	default:
		return "internal"
	}
}

// Helper functions
func randomFileName() string {
	return fmt.Sprintf("%s%d.bin", filePrefix, time.Now().UnixNano()%int64(fileCount))
}

func writePayloadFile(path string, size int) error {
	payload := make([]byte, size)
	if _, err := rand.Read(payload); err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0644)
}

// Worker function
func worker(id int, mgr *cluster.ReplicationManager, sourceDir, downloadDir string, stats *Stats, wg *sync.WaitGroup, throttle chan struct{}, done chan struct{}) {
	defer wg.Done()

	destPath := filepath.Join(downloadDir, fmt.Sprintf("worker-%d.bin", id))

	for {
		select {
		case <-done:
			return
		case <-throttle:
			// Pick the operation based on the configured mix
			draw := float64(time.Now().UnixNano()%100) / 100.0

			name := randomFileName()
			startTime := time.Now()

			var err error
			switch {
			case draw < readRatio:
				stats.AddDownloadOp()
				_, err = mgr.Download(name, destPath)
			case draw < readRatio+deleteRatio:
				stats.AddDeleteOp()
				err = mgr.Delete(name)
			default:
				stats.AddUploadOp()
				_, err = mgr.Upload(filepath.Join(sourceDir, name))
			}

			stats.AddLatency(time.Since(startTime))
			stats.AddOutcome(classify(err))
		}
	}
}

// Progress reporter
func reportProgress(stats *Stats, done chan struct{}) {
	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	prevOps := int64(0)

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			currentOps := atomic.LoadInt64(&stats.TotalOps)
			currentSuccessful := atomic.LoadInt64(&stats.SuccessOps)
			currentFailed := atomic.LoadInt64(&stats.FailedOps)

			opsPerSec := float64(currentOps-prevOps) / reportInterval.Seconds()

			fmt.Printf("[%s] Operations: %d (%.2f/sec), Success: %d, Failed: %d\n",
				time.Now().Format("15:04:05"),
				currentOps,
				opsPerSec,
				currentSuccessful,
				currentFailed)

			prevOps = currentOps
		}
	}
}

// Node churn: fail one node at a time and recover it on the next tick, so the
// placement and download paths keep exercising their liveness checks.
func churnNodes(mgr *cluster.ReplicationManager, done chan struct{}) {
	ticker := time.NewTicker(churnInterval)
	defer ticker.Stop()

	failed := 0

	for {
		select {
		case <-done:
			if failed != 0 {
				mgr.RecoverNode(failed)
			}
			return
		case <-ticker.C:
			if failed != 0 {
				mgr.RecoverNode(failed)
				fmt.Printf("[churn] node %d recovered\n", failed)
				failed = 0
				continue
			}

			failed = int(time.Now().UnixNano()%int64(nodeCount)) + 1
			mgr.FailNode(failed)
			fmt.Printf("[churn] node %d down\n", failed)
		}
	}
}

// Warmup function
func warmup(mgr *cluster.ReplicationManager, sourceDir string) {
	fmt.Printf("Generating %d source files of %d bytes...\n", fileCount, fileSize)

	for i := 0; i < fileCount; i++ {
		name := fmt.Sprintf("%s%d.bin", filePrefix, i)
		if err := writePayloadFile(filepath.Join(sourceDir, name), fileSize); err != nil {
			log.Fatalf("Error creating source file %s: %v", name, err)
		}
	}

	fmt.Printf("Warming up with %d uploads...\n", warmupFileCount)

	for i := 0; i < warmupFileCount; i++ {
		name := fmt.Sprintf("%s%d.bin", filePrefix, i)
		if _, err := mgr.Upload(filepath.Join(sourceDir, name)); err != nil {
			log.Printf("Error during warmup upload of %s: %v", name, err)
			continue
		}

		if i%10 == 0 {
			fmt.Printf("Warmed up %d/%d files\n", i, warmupFileCount)
		}
	}

	fmt.Println("Warmup complete")
}

func main() {
	// Parse command line flags
	flag.StringVar(&dataDir, "data-dir", "", "Directory for node storage (empty = temp dir, removed on exit)")
	flag.IntVar(&nodeCount, "nodes", 4, "Number of simulated storage nodes")
	flag.IntVar(&replicationFactor, "replicas", 3, "Replicas per file")
	flag.IntVar(&numWorkers, "workers", 8, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 30*time.Second, "Test duration")
	flag.Float64Var(&readRatio, "read-ratio", 0.8, "Download share of operations (0.8 = 80% downloads)")
	flag.Float64Var(&deleteRatio, "delete-ratio", 0.0, "Delete share of operations")
	flag.IntVar(&fileCount, "files", 500, "Number of unique file names to use")
	flag.IntVar(&fileSize, "file-size", 4096, "Size of each file in bytes")
	flag.DurationVar(&reportInterval, "report-interval", 1*time.Second, "Progress report interval")
	flag.StringVar(&filePrefix, "file-prefix", "workload-", "Prefix for file names")
	flag.StringVar(&outputFile, "output", "workload-results.csv", "Output file for results")
	flag.IntVar(&opsPerSec, "ops", 0, "Target operations per second (0 = unlimited)")
	flag.IntVar(&maxConcurrency, "max-concurrency", 0, "Maximum concurrency (0 = unlimited)")
	flag.DurationVar(&churnInterval, "churn-interval", 0, "Interval between node fail/recover events (0 = no churn)")
	flag.IntVar(&warmupFileCount, "warmup-files", 100, "Number of files to pre-populate during warmup")

	flag.Parse()

	// Validate parameters
	if maxConcurrency == 0 {
		maxConcurrency = numWorkers
	}
	if warmupFileCount > fileCount {
		warmupFileCount = fileCount
	}

	// Print configuration
	fmt.Println("=== Workload Configuration ===")
	fmt.Printf("Nodes: %d\n", nodeCount)
	fmt.Printf("Replication Factor: %d\n", replicationFactor)
	fmt.Printf("Workers: %d\n", numWorkers)
	fmt.Printf("Duration: %s\n", duration)
	fmt.Printf("Read Ratio: %.2f\n", readRatio)
	fmt.Printf("Delete Ratio: %.2f\n", deleteRatio)
	fmt.Printf("File Count: %d\n", fileCount)
	fmt.Printf("File Size: %d bytes\n", fileSize)
	fmt.Printf("Target Ops/sec: %d\n", opsPerSec)
	fmt.Printf("Max Concurrency: %d\n", maxConcurrency)
	fmt.Printf("Churn Interval: %s\n", churnInterval)
	fmt.Printf("Warmup Files: %d\n", warmupFileCount)

	// Set up the working directory tree
	if dataDir == "" {
		tmp, err := os.MkdirTemp("", "dfs-workload-")
		if err != nil {
			log.Fatalf("Error creating temp directory: %v", err)
		}
		defer os.RemoveAll(tmp)
		dataDir = tmp
	}

	sourceDir := filepath.Join(dataDir, "sources")
	downloadDir := filepath.Join(dataDir, "downloads")
	for _, dir := range []string{sourceDir, downloadDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Error creating directory %s: %v", dir, err)
		}
	}

	// Assemble an in-process cluster
	store, err := storage.NewDiskStore(filepath.Join(dataDir, "data"), nodeCount)
	if err != nil {
		log.Fatalf("Error initializing node directories: %v", err)
	}

	registry := cluster.NewNodeRegistry(nodeCount)
	mgr := cluster.NewReplicationManager(registry, store, replicationFactor, zap.NewNop())

	// Perform warmup
	warmup(mgr, sourceDir)

	// Initialize statistics
	stats := NewStats()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create channels for coordination
	done := make(chan struct{})
	var throttle chan struct{}

	// Setup rate limiting if requested
	if opsPerSec > 0 {
		throttle = make(chan struct{}, maxConcurrency)
		go func() {
			ticker := time.NewTicker(time.Second / time.Duration(opsPerSec))
			defer ticker.Stop()

			for {
				select {
				case <-done:
					return
				case <-ticker.C:
					select {
					case throttle <- struct{}{}:
					default:
						// Channel is full, skip this tick
					}
				}
			}
		}()
	} else {
		// No rate limiting, just fill the channel
		throttle = make(chan struct{}, maxConcurrency)
		go func() {
			for {
				select {
				case <-done:
					return
				default:
					select {
					case throttle <- struct{}{}:
					default:
						// Channel is full, wait a bit
						time.Sleep(1 * time.Millisecond)
					}
				}
			}
		}()
	}

	// Start node churn if requested
	if churnInterval > 0 {
		go churnNodes(mgr, done)
	}

	// Start progress reporter
	go reportProgress(stats, done)

	// Start worker goroutines
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(i, mgr, sourceDir, downloadDir, stats, &wg, throttle, done)
	}

	// Setup test duration timer
	timer := time.NewTimer(duration)

	// Wait for duration or interrupt
	select {
	case <-timer.C:
		fmt.Println("\nTest duration completed")
	case sig := <-sigChan:
		fmt.Printf("\nReceived signal %v, stopping test\n", sig)
	}

	// Signal workers to stop
	close(done)

	// Wait for all workers to finish
	wg.Wait()

	// Calculate and print statistics
	stats.CalculateStats()
	stats.PrintStats()

	// Write results to file
	if err := stats.WriteToFile(outputFile); err != nil {
		log.Printf("Error writing results to file: %v", err)
	} else {
		fmt.Printf("\nResults written to %s\n", outputFile)
	}
}
