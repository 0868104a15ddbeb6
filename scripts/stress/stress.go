package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
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
	fileSize          int
	reportInterval    time.Duration
	filePrefix        string
	outputFile        string
	maxFiles          int
	batchSize         int
)

// Statistics
type Stats struct {
	TotalUploads  int64
	SuccessOps    int64
	FailedOps     int64
	FilesStored   int64
	BytesStored   int64
	Outcomes      map[string]int64
	StartTime     time.Time
	EndTime       time.Time
	mu            sync.Mutex
}

func NewStats() *Stats {
	return &Stats{
		Outcomes:  make(map[string]int64),
		StartTime: time.Now(),
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

func (s *Stats) AddUpload() {
	atomic.AddInt64(&s.TotalUploads, 1)
}

func (s *Stats) AddFileStored() {
	atomic.AddInt64(&s.FilesStored, 1)
}

func (s *Stats) AddBytesStored(bytes int64) {
	atomic.AddInt64(&s.BytesStored, bytes)
}

func (s *Stats) CalculateStats() {
	s.EndTime = time.Now()
}

func (s *Stats) PrintStats() {
	duration := s.EndTime.Sub(s.StartTime).Seconds()

	fmt.Println("\n=== Ingest Results ===")
	fmt.Printf("Duration: %.2f seconds\n", duration)
	fmt.Printf("Total Uploads: %d\n", s.TotalUploads)
	fmt.Printf("Successful Uploads: %d\n", s.SuccessOps)
	fmt.Printf("Failed Uploads: %d\n", s.FailedOps)
	fmt.Printf("Files Stored: %d\n", s.FilesStored)
	fmt.Printf("Data Stored: %.2f MB\n", float64(s.BytesStored)/(1024*1024))
	fmt.Printf("Uploads/sec: %.2f\n", float64(s.TotalUploads)/duration)
	fmt.Printf("Ingest Rate: %.2f MB/sec\n", float64(s.BytesStored)/(1024*1024)/duration)

	fmt.Println("\n=== Outcomes ===")
	for outcome, count := range s.Outcomes {
		fmt.Printf("%s: %d\n", outcome, count)
	}
}

func (s *Stats) WriteToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	duration := s.EndTime.Sub(s.StartTime).Seconds()

	// Write CSV header
	file.WriteString("metric,value\n")

	// Write metrics
	file.WriteString(fmt.Sprintf("duration_seconds,%.2f\n", duration))
	file.WriteString(fmt.Sprintf("total_uploads,%d\n", s.TotalUploads))
	file.WriteString(fmt.Sprintf("successful_uploads,%d\n", s.SuccessOps))
	file.WriteString(fmt.Sprintf("failed_uploads,%d\n", s.FailedOps))
	file.WriteString(fmt.Sprintf("files_stored,%d\n", s.FilesStored))
	file.WriteString(fmt.Sprintf("bytes_stored,%d\n", s.BytesStored))
	file.WriteString(fmt.Sprintf("uploads_per_second,%.2f\n", float64(s.TotalUploads)/duration))
	file.WriteString(fmt.Sprintf("ingest_rate_mb_per_second,%.2f\n", float64(s.BytesStored)/(1024*1024)/duration))

	// Write outcome counts
	for outcome, count := range s.Outcomes {
		file.WriteString(fmt.Sprintf("outcome_%s,%d\n", outcome, count))
	}

	return nil
}

// classify maps upload errors to outcome labels for the stats table
func classify(err error) string {
	switch {
	case err == nil:
		return "ok"
	default:
		return "failed"
	}
}

// Batch worker: each pass ingests batchSize unique files. The local source
// copy is removed right after the upload, so only replica bytes accumulate.
func batchWorker(id int, mgr *cluster.ReplicationManager, sourceDir string, stats *Stats, wg *sync.WaitGroup, fileCounter *int64, done chan struct{}) {
	defer wg.Done()

	payload := make([]byte, fileSize)

	for {
		select {
		case <-done:
			return
		default:
			// Process a batch of files
			for i := 0; i < batchSize; i++ {
				// Check if we've reached the maximum number of files
				current := atomic.AddInt64(fileCounter, 1)
				if maxFiles > 0 && current > int64(maxFiles) {
					return
				}

				// Generate the source file
				name := fmt.Sprintf("%s%d.bin", filePrefix, current)
				srcPath := filepath.Join(sourceDir, name)

				if _, err := rand.Read(payload); err != nil {
					log.Printf("Error generating payload: %v", err)
					continue
				}
				if err := os.WriteFile(srcPath, payload, 0644); err != nil {
					log.Printf("Error writing source file: %v", err)
					continue
				}

				stats.AddUpload()

				record, err := mgr.Upload(srcPath)
				os.Remove(srcPath)

				stats.AddOutcome(classify(err))
				if err != nil {
					log.Printf("Error uploading %s: %v", name, err)
					continue
				}

				stats.AddFileStored()
				stats.AddBytesStored(record.Size * int64(len(record.Nodes)))
			}
		}
	}
}

// Progress reporter
func reportProgress(stats *Stats, fileCounter *int64, done chan struct{}) {
	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	var prevUploads int64
	var prevBytes int64

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			currentUploads := atomic.LoadInt64(&stats.TotalUploads)
			currentSuccessful := atomic.LoadInt64(&stats.SuccessOps)
			currentFailed := atomic.LoadInt64(&stats.FailedOps)
			currentFiles := atomic.LoadInt64(&stats.FilesStored)
			currentBytes := atomic.LoadInt64(&stats.BytesStored)
			currentCounter := atomic.LoadInt64(fileCounter)

			uploadsPerSec := float64(currentUploads-prevUploads) / reportInterval.Seconds()
			mbPerSec := float64(currentBytes-prevBytes) / (1024 * 1024) / reportInterval.Seconds()

			// Get memory stats
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			fmt.Printf("[%s] Files: %d/%d, Uploads: %d (%.2f/sec), Success: %d, Failed: %d, Data: %.2f MB (%.2f MB/sec), Mem: %.2f MB\n",
				time.Now().Format("15:04:05"),
				currentFiles,
				currentCounter,
				currentUploads,
				uploadsPerSec,
				currentSuccessful,
				currentFailed,
				float64(currentBytes)/(1024*1024),
				mbPerSec,
				float64(m.Alloc)/(1024*1024))

			prevUploads = currentUploads
			prevBytes = currentBytes
		}
	}
}

func main() {
	// Parse command line flags
	flag.StringVar(&dataDir, "data-dir", "", "Directory for node storage (empty = temp dir, removed on exit)")
	flag.IntVar(&nodeCount, "nodes", 4, "Number of simulated storage nodes")
	flag.IntVar(&replicationFactor, "replicas", 3, "Replicas per file")
	flag.IntVar(&numWorkers, "workers", 8, "Number of concurrent workers")
	flag.DurationVar(&duration, "duration", 5*time.Minute, "Test duration")
	flag.IntVar(&fileSize, "file-size", 1024, "Size of each file in bytes")
	flag.DurationVar(&reportInterval, "report-interval", 5*time.Second, "Progress report interval")
	flag.StringVar(&filePrefix, "file-prefix", "ingest-", "Prefix for file names")
	flag.StringVar(&outputFile, "output", "stress-results.csv", "Output file for results")
	flag.IntVar(&maxFiles, "max-files", 0, "Maximum number of files to store (0 = unlimited)")
	flag.IntVar(&batchSize, "batch-size", 10, "Number of files to process in each batch")

	flag.Parse()

	// Print configuration
	fmt.Println("=== Ingest Stress Configuration ===")
	fmt.Printf("Nodes: %d\n", nodeCount)
	fmt.Printf("Replication Factor: %d\n", replicationFactor)
	fmt.Printf("Workers: %d\n", numWorkers)
	fmt.Printf("Duration: %s\n", duration)
	fmt.Printf("File Size: %d bytes\n", fileSize)
	fmt.Printf("Max Files: %d\n", maxFiles)
	fmt.Printf("Batch Size: %d\n", batchSize)
	fmt.Printf("Estimated Data Size: %.2f MB\n", float64(maxFiles*fileSize*replicationFactor)/(1024*1024))

	// Set up the working directory tree
	if dataDir == "" {
		tmp, err := os.MkdirTemp("", "dfs-stress-")
		if err != nil {
			log.Fatalf("Error creating temp directory: %v", err)
		}
		defer os.RemoveAll(tmp)
		dataDir = tmp
	}

	sourceDir := filepath.Join(dataDir, "sources")
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		log.Fatalf("Error creating directory %s: %v", sourceDir, err)
	}

	// Assemble an in-process cluster
	store, err := storage.NewDiskStore(filepath.Join(dataDir, "data"), nodeCount)
	if err != nil {
		log.Fatalf("Error initializing node directories: %v", err)
	}

	registry := cluster.NewNodeRegistry(nodeCount)
	mgr := cluster.NewReplicationManager(registry, store, replicationFactor, zap.NewNop())

	// Initialize statistics
	stats := NewStats()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Create channels for coordination
	done := make(chan struct{})

	// Initialize file counter
	var fileCounter int64

	// Start progress reporter
	go reportProgress(stats, &fileCounter, done)

	// Start worker goroutines
	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go batchWorker(i, mgr, sourceDir, stats, &wg, &fileCounter, done)
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
