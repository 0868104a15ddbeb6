package metrics

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// ExampleServerWithMetrics demonstrates how to expose the simulator metrics
// alongside instrumented status endpoints
func ExampleServerWithMetrics() {
	router := mux.NewRouter()

	// Register metrics scrape endpoint
	RegisterMetricsHandler(router)

	// Instrument application endpoints with the metrics middleware
	router.Use(MetricsMiddleware)
	router.HandleFunc("/status/files", exampleFilesHandler).Methods(http.MethodGet)

	// Sample host gauges in the background
	collector := NewSystemCollector("./data", 15*time.Second, zap.NewNop())
	collector.Start(context.Background())
	defer collector.Stop()

	// Simulate file operations in a separate goroutine
	go simulateOperations()

	// Start the server
	log.Println("Starting status server with metrics on :9090")
	log.Println("Metrics available at http://localhost:9090/metrics")
	if err := http.ListenAndServe(":9090", router); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

// exampleFilesHandler stands in for a real status endpoint
func exampleFilesHandler(w http.ResponseWriter, r *http.Request) {
	// Simulate processing
	time.Sleep(10 * time.Millisecond)
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("[]"))
}

// simulateOperations demonstrates feeding the operation counters and catalog
// gauges the way the replication manager does
func simulateOperations() {
	m := GetMetrics()

	m.SetNodesTotal(4)
	m.SetNodesLive(4)

	for i := 0; i < 100; i++ {
		start := time.Now()
		time.Sleep(5 * time.Millisecond)

		m.RecordUpload()
		m.ObserveOperationDuration("upload", time.Since(start).Seconds())

		// Occasionally simulate a failed download
		if i%10 == 0 {
			m.RecordOperationFailure("download", "all_replicas_unavailable")
		}

		m.SetFilesTracked(i + 1)
		m.SetFilesByHealth("healthy", i+1)
	}

	log.Println("Simulated operations completed")
}
