package cluster

import (
	"errors"
	"testing"
)

func TestNodeRegistryInitialState(t *testing.T) {
	registry := NewNodeRegistry(4)

	if got := registry.Count(); got != 4 {
		t.Errorf("Count() = %d, want 4", got)
	}
	if got := registry.LiveCount(); got != 4 {
		t.Errorf("LiveCount() = %d, want 4", got)
	}
	for id := 1; id <= 4; id++ {
		if !registry.IsLive(id) {
			t.Errorf("node %d should start live", id)
		}
	}
}

func TestNodeRegistryValidate(t *testing.T) {
	registry := NewNodeRegistry(4)

	tests := []struct {
		name    string
		id      int
		wantErr bool
	}{
		{"first node", 1, false},
		{"last node", 4, false},
		{"zero", 0, true},
		{"negative", -1, true},
		{"past the end", 5, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := registry.Validate(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%d) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidNodeID) {
				t.Errorf("Validate(%d) error = %v, want ErrInvalidNodeID", tt.id, err)
			}
		})
	}
}

func TestNodeRegistrySetLive(t *testing.T) {
	registry := NewNodeRegistry(3)

	if err := registry.SetLive(2, false); err != nil {
		t.Fatalf("SetLive(2, false) returned error: %v", err)
	}
	if registry.IsLive(2) {
		t.Error("node 2 should be failed")
	}
	if got := registry.LiveCount(); got != 2 {
		t.Errorf("LiveCount() = %d, want 2", got)
	}

	// Failing an already failed node is a no-op, not an error
	if err := registry.SetLive(2, false); err != nil {
		t.Errorf("repeated SetLive(2, false) returned error: %v", err)
	}

	if err := registry.SetLive(2, true); err != nil {
		t.Fatalf("SetLive(2, true) returned error: %v", err)
	}
	if !registry.IsLive(2) {
		t.Error("node 2 should be live after recovery")
	}

	if err := registry.SetLive(99, false); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("SetLive(99, false) error = %v, want ErrInvalidNodeID", err)
	}
}

func TestNodeRegistrySnapshot(t *testing.T) {
	registry := NewNodeRegistry(3)
	if err := registry.SetLive(1, false); err != nil {
		t.Fatalf("SetLive returned error: %v", err)
	}

	nodes := registry.Snapshot()
	if len(nodes) != 3 {
		t.Fatalf("Snapshot() returned %d nodes, want 3", len(nodes))
	}
	for i, node := range nodes {
		if node.ID != i+1 {
			t.Errorf("nodes[%d].ID = %d, want %d", i, node.ID, i+1)
		}
	}
	if nodes[0].Live {
		t.Error("node 1 should be failed in snapshot")
	}
	if !nodes[1].Live || !nodes[2].Live {
		t.Error("nodes 2 and 3 should be live in snapshot")
	}

	// Mutating the snapshot must not affect the registry
	nodes[1].Live = false
	if !registry.IsLive(2) {
		t.Error("mutating a snapshot changed registry state")
	}
}
