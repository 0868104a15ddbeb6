package cluster

import "errors"

var (
	// ErrSourceNotFound is returned when the local source file for an upload does not exist
	ErrSourceNotFound = errors.New("source file not found")
	// ErrInsufficientReplicas is returned when fewer live nodes than the replication factor are available
	ErrInsufficientReplicas = errors.New("insufficient replicas")
	// ErrReplicationFailed is returned when copying bytes to a replica node fails mid-upload
	ErrReplicationFailed = errors.New("replication failed")
	// ErrFileNotFound is returned when no metadata record exists for the requested file
	ErrFileNotFound = errors.New("file not found")
	// ErrAllReplicasUnavailable is returned when every node holding a file is marked failed
	ErrAllReplicasUnavailable = errors.New("all replicas unavailable")
	// ErrDownloadFailed is returned when reading from the selected replica node fails
	ErrDownloadFailed = errors.New("download failed")
	// ErrDeletionFailed is returned when removing a replica fails, leaving metadata intact
	ErrDeletionFailed = errors.New("deletion failed")
	// ErrInvalidNodeID is returned for node IDs outside the configured range
	ErrInvalidNodeID = errors.New("invalid node ID")
)

// failureKind maps a classified error to its metric label
func failureKind(err error) string {
	switch {
	case errors.Is(err, ErrSourceNotFound):
		return "source_not_found"
	case errors.Is(err, ErrInsufficientReplicas):
		return "insufficient_replicas"
	case errors.Is(err, ErrReplicationFailed):
		return "replication_failed"
	case errors.Is(err, ErrFileNotFound):
		return "file_not_found"
	case errors.Is(err, ErrAllReplicasUnavailable):
		return "all_replicas_unavailable"
	case errors.Is(err, ErrDownloadFailed):
		return "download_failed"
	case errors.Is(err, ErrDeletionFailed):
		return "deletion_failed"
	case errors.Is(err, ErrInvalidNodeID):
		return "invalid_node_id"
	default:
		return "internal"
	}
}
