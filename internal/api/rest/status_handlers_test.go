package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/cluster"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/storage"
	"github.com/gorilla/mux"
)

// mockStatusManager implements the StatusManager interface for testing
type mockStatusManager struct {
	nodes  []cluster.Node
	files  []storage.FileRecord
	health []cluster.FileHealth
	factor int
}

func newMockStatusManager() *mockStatusManager {
	return &mockStatusManager{
		nodes: []cluster.Node{
			{ID: 1, Live: true},
			{ID: 2, Live: true},
			{ID: 3, Live: false},
			{ID: 4, Live: true},
		},
		files: []storage.FileRecord{
			{Name: "a.txt", Nodes: []int{1, 2, 3}, Size: 42, UploadedAt: time.Unix(1700000000, 0)},
			{Name: "b.txt", Nodes: []int{1, 2, 4}, Size: 7, UploadedAt: time.Unix(1700000100, 0)},
		},
		health: []cluster.FileHealth{
			{Name: "a.txt", LiveReplicas: 2, TotalNodes: 3, Status: cluster.HealthHealthy},
			{Name: "b.txt", LiveReplicas: 1, TotalNodes: 3, Status: cluster.HealthAtRisk},
		},
		factor: 3,
	}
}

func (m *mockStatusManager) Nodes() []cluster.Node {
	return m.nodes
}

func (m *mockStatusManager) NodeState(id int) (cluster.Node, error) {
	for _, node := range m.nodes {
		if node.ID == id {
			return node, nil
		}
	}
	return cluster.Node{}, fmt.Errorf("%w: %d", cluster.ErrInvalidNodeID, id)
}

func (m *mockStatusManager) ListFiles() []storage.FileRecord {
	return m.files
}

func (m *mockStatusManager) EvaluateReplicaHealth() []cluster.FileHealth {
	return m.health
}

func (m *mockStatusManager) ReplicationFactor() int {
	return m.factor
}

func (m *mockStatusManager) NodeCount() int {
	return len(m.nodes)
}

func setupStatusHandlerTest(t *testing.T) (*mockStatusManager, *mux.Router) {
	t.Helper()
	manager := newMockStatusManager()
	handler := NewStatusHandler(manager)
	router := mux.NewRouter()
	handler.RegisterRoutes(router)
	return manager, router
}

func TestStatusHandler_Healthz(t *testing.T) {
	_, router := setupStatusHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusOK)
	}

	var response struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response.Status != "ok" {
		t.Errorf("handler returned wrong status field: got %v want ok", response.Status)
	}
}

func TestStatusHandler_ListNodes(t *testing.T) {
	_, router := setupStatusHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/status/nodes", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusOK)
	}

	var response struct {
		Nodes             []cluster.Node `json:"nodes"`
		ReplicationFactor int            `json:"replication_factor"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response.Nodes) != 4 {
		t.Errorf("handler returned wrong number of nodes: got %v want %v",
			len(response.Nodes), 4)
	}
	if response.ReplicationFactor != 3 {
		t.Errorf("handler returned wrong replication factor: got %v want %v",
			response.ReplicationFactor, 3)
	}
	if response.Nodes[2].Live {
		t.Error("node 3 should be reported as not live")
	}
}

func TestStatusHandler_GetNode(t *testing.T) {
	_, router := setupStatusHandlerTest(t)

	tests := []struct {
		name       string
		nodeID     string
		wantStatus int
	}{
		{
			name:       "Existing node",
			nodeID:     "2",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Failed node still resolvable",
			nodeID:     "3",
			wantStatus: http.StatusOK,
		},
		{
			name:       "Out of range node",
			nodeID:     "99",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Non-numeric node ID",
			nodeID:     "xyz",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/status/nodes/"+tt.nodeID, nil)
			rr := httptest.NewRecorder()

			router.ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("handler returned wrong status code: got %v want %v",
					rr.Code, tt.wantStatus)
			}

			if tt.wantStatus == http.StatusOK {
				var node cluster.Node
				if err := json.NewDecoder(rr.Body).Decode(&node); err != nil {
					t.Fatalf("Failed to decode response: %v", err)
				}
				if fmt.Sprintf("%d", node.ID) != tt.nodeID {
					t.Errorf("handler returned wrong node: got %v want %v",
						node.ID, tt.nodeID)
				}
			}
		})
	}
}

func TestStatusHandler_ListFiles(t *testing.T) {
	_, router := setupStatusHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/status/files", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusOK)
	}

	var response []storage.FileRecord
	if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(response) != 2 {
		t.Errorf("handler returned wrong number of files: got %v want %v",
			len(response), 2)
	}
	if response[0].Name != "a.txt" || response[1].Name != "b.txt" {
		t.Errorf("handler returned files in wrong order: %v, %v",
			response[0].Name, response[1].Name)
	}
}

func TestStatusHandler_ReplicaHealth(t *testing.T) {
	_, router := setupStatusHandlerTest(t)

	req := httptest.NewRequest(http.MethodGet, "/status/health", nil)
	rr := httptest.NewRecorder()

	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("handler returned wrong status code: got %v want %v",
			rr.Code, http.StatusOK)
	}

	// Health statuses must serialize by name, not as enum integers
	body := rr.Body.String()
	if !strings.Contains(body, `"status":"healthy"`) {
		t.Errorf("payload missing named healthy status: %s", body)
	}
	if !strings.Contains(body, `"status":"at_risk"`) {
		t.Errorf("payload missing named at_risk status: %s", body)
	}

	var response []cluster.FileHealth
	if err := json.Unmarshal([]byte(body), &response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(response) != 2 {
		t.Errorf("handler returned wrong number of entries: got %v want %v",
			len(response), 2)
	}
	if response[1].Status != cluster.HealthAtRisk {
		t.Errorf("decoded status = %v, want at_risk", response[1].Status)
	}
}

func TestStatusHandler_MutatingMethodsRejected(t *testing.T) {
	_, router := setupStatusHandlerTest(t)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodDelete} {
		req := httptest.NewRequest(method, "/status/nodes", nil)
		rr := httptest.NewRecorder()

		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("%s should be rejected: got %v want %v",
				method, rr.Code, http.StatusMethodNotAllowed)
		}
	}
}
