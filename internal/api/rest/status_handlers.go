package rest

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/cluster"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/storage"
	"github.com/gorilla/mux"
)

// StatusManager is the read-only view of the cluster served by the status API.
// Liveness is only ever changed through the command dispatcher, so every
// endpoint here is a snapshot read.
type StatusManager interface {
	Nodes() []cluster.Node
	NodeState(id int) (cluster.Node, error)
	ListFiles() []storage.FileRecord
	EvaluateReplicaHealth() []cluster.FileHealth
	ReplicationFactor() int
	NodeCount() int
}

// StatusHandler handles cluster status API endpoints
type StatusHandler struct {
	manager StatusManager
}

// NewStatusHandler creates a new instance of StatusHandler
func NewStatusHandler(manager StatusManager) *StatusHandler {
	return &StatusHandler{
		manager: manager,
	}
}

// RegisterRoutes registers status routes
func (h *StatusHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/healthz", h.handleHealthz).Methods(http.MethodGet)
	r.HandleFunc("/status/nodes", h.handleListNodes).Methods(http.MethodGet)
	r.HandleFunc("/status/nodes/{nodeID}", h.handleGetNode).Methods(http.MethodGet)
	r.HandleFunc("/status/files", h.handleListFiles).Methods(http.MethodGet)
	r.HandleFunc("/status/health", h.handleReplicaHealth).Methods(http.MethodGet)
}

// handleHealthz handles GET /healthz requests
func (h *StatusHandler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Status string `json:"status"`
	}{
		Status: "ok",
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// handleListNodes handles GET /status/nodes requests
func (h *StatusHandler) handleListNodes(w http.ResponseWriter, r *http.Request) {
	response := struct {
		Nodes             []cluster.Node `json:"nodes"`
		ReplicationFactor int            `json:"replication_factor"`
	}{
		Nodes:             h.manager.Nodes(),
		ReplicationFactor: h.manager.ReplicationFactor(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// handleGetNode handles GET /status/nodes/{nodeID} requests
func (h *StatusHandler) handleGetNode(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	id, err := strconv.Atoi(vars["nodeID"])
	if err != nil {
		http.Error(w, "node ID must be an integer", http.StatusBadRequest)
		return
	}

	node, err := h.manager.NodeState(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(node)
}

// handleListFiles handles GET /status/files requests
func (h *StatusHandler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.manager.ListFiles())
}

// handleReplicaHealth handles GET /status/health requests
func (h *StatusHandler) handleReplicaHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.manager.EvaluateReplicaHealth())
}
