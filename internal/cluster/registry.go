package cluster

import (
	"fmt"
	"sort"
	"sync"
)

// Node represents a single storage node in the simulated cluster
type Node struct {
	// ID is the node identifier, dense in the range 1..Count
	ID int `json:"id"`
	// Live reports whether the node currently accepts reads and writes
	Live bool `json:"live"`
}

// NodeRegistry tracks the fixed node set and per-node liveness. The set is
// sized once at construction and never grows or shrinks; fail/recover only
// flip the liveness flag.
type NodeRegistry struct {
	mu    sync.RWMutex
	live  map[int]bool
	count int
}

// NewNodeRegistry creates a registry of count nodes, all initially live
func NewNodeRegistry(count int) *NodeRegistry {
	live := make(map[int]bool, count)
	for id := 1; id <= count; id++ {
		live[id] = true
	}
	return &NodeRegistry{
		live:  live,
		count: count,
	}
}

// Count returns the total number of nodes, live or failed
func (r *NodeRegistry) Count() int {
	return r.count
}

// Validate checks that id falls in the configured node range
func (r *NodeRegistry) Validate(id int) error {
	if id < 1 || id > r.count {
		return fmt.Errorf("%w: %d (valid range 1-%d)", ErrInvalidNodeID, id, r.count)
	}
	return nil
}

// IsLive reports whether the given node accepts operations. Unknown IDs
// report false; callers that need the distinction use Validate first.
func (r *NodeRegistry) IsLive(id int) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.live[id]
}

// SetLive flips the liveness flag for a node
func (r *NodeRegistry) SetLive(id int, live bool) error {
	if err := r.Validate(id); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.live[id] = live
	return nil
}

// LiveCount returns the number of nodes currently marked live
func (r *NodeRegistry) LiveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, live := range r.live {
		if live {
			count++
		}
	}
	return count
}

// Snapshot returns the state of every node, ordered by ID
func (r *NodeRegistry) Snapshot() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	nodes := make([]Node, 0, r.count)
	for id, live := range r.live {
		nodes = append(nodes, Node{ID: id, Live: live})
	}
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].ID < nodes[j].ID
	})
	return nodes
}
