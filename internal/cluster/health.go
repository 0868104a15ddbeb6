package cluster

import (
	"encoding/json"
	"fmt"
)

// HealthStatus classifies how well replicated a file currently is. It is
// derived from node liveness at evaluation time and never stored.
type HealthStatus int

const (
	// HealthHealthy means at least two replicas sit on live nodes
	HealthHealthy HealthStatus = iota
	// HealthAtRisk means exactly one live replica remains
	HealthAtRisk
	// HealthLost means no node holding the file is live
	HealthLost
)

// String returns the status name used in reports and metric labels
func (s HealthStatus) String() string {
	switch s {
	case HealthHealthy:
		return "healthy"
	case HealthAtRisk:
		return "at_risk"
	case HealthLost:
		return "lost"
	default:
		return "unknown"
	}
}

// MarshalJSON encodes the status by name so API payloads stay readable
func (s HealthStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts the status name emitted by MarshalJSON
func (s *HealthStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "healthy":
		*s = HealthHealthy
	case "at_risk":
		*s = HealthAtRisk
	case "lost":
		*s = HealthLost
	default:
		return fmt.Errorf("unknown health status %q", name)
	}
	return nil
}

// FileHealth reports the live replica count for a single file
type FileHealth struct {
	Name         string       `json:"name"`
	LiveReplicas int          `json:"live_replicas"`
	TotalNodes   int          `json:"total_nodes"`
	Status       HealthStatus `json:"status"`
}

// ClassifyReplicas maps a live replica count to a health status. The
// thresholds are fixed: two live copies keep a file healthy, one leaves it
// at risk, zero means it is unreachable until a holder recovers.
func ClassifyReplicas(liveReplicas int) HealthStatus {
	switch {
	case liveReplicas >= 2:
		return HealthHealthy
	case liveReplicas == 1:
		return HealthAtRisk
	default:
		return HealthLost
	}
}
