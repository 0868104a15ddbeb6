package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// ReplicaStore abstracts the byte-copy primitive used to place, fetch and
// remove replica files on individual nodes. Implementations perform a single
// attempt per call; retry policy belongs to the caller.
type ReplicaStore interface {
	// Put writes the contents of src as the named file on the given node
	Put(nodeID int, name string, src io.Reader) error
	// Get opens the named file stored on the given node
	Get(nodeID int, name string) (io.ReadCloser, error)
	// Remove deletes the named file from the given node. Removing a file
	// that does not exist counts as success.
	Remove(nodeID int, name string) error
}

// DiskStore implements ReplicaStore with one node_<id> directory per node
// under a common base directory. Node directories are created at
// construction and survive process restarts, so replica bytes persist even
// though in-memory metadata does not.
type DiskStore struct {
	baseDir string
}

// NewDiskStore creates the base directory and one directory per node
func NewDiskStore(baseDir string, nodeCount int) (*DiskStore, error) {
	for id := 1; id <= nodeCount; id++ {
		dir := nodeDir(baseDir, id)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create node directory %s: %w", dir, err)
		}
	}
	return &DiskStore{baseDir: baseDir}, nil
}

func nodeDir(baseDir string, nodeID int) string {
	return filepath.Join(baseDir, fmt.Sprintf("node_%d", nodeID))
}

// NodeDir returns the directory backing the given node
func (d *DiskStore) NodeDir(nodeID int) string {
	return nodeDir(d.baseDir, nodeID)
}

// BaseDir returns the directory containing all node directories
func (d *DiskStore) BaseDir() string {
	return d.baseDir
}

func (d *DiskStore) replicaPath(nodeID int, name string) string {
	return filepath.Join(d.NodeDir(nodeID), name)
}

// Put writes src to the node's directory, truncating any previous replica
func (d *DiskStore) Put(nodeID int, name string, src io.Reader) error {
	dst, err := os.Create(d.replicaPath(nodeID, name))
	if err != nil {
		return fmt.Errorf("failed to create replica file: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("failed to write replica data: %w", err)
	}
	return dst.Close()
}

// Get opens the replica for reading; the caller closes it
func (d *DiskStore) Get(nodeID int, name string) (io.ReadCloser, error) {
	f, err := os.Open(d.replicaPath(nodeID, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open replica file: %w", err)
	}
	return f, nil
}

// Remove deletes the replica; a missing file is treated as already removed
func (d *DiskStore) Remove(nodeID int, name string) error {
	if err := os.Remove(d.replicaPath(nodeID, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove replica file: %w", err)
	}
	return nil
}
