package storage

import (
	"sort"
	"sync"
	"time"
)

// FileRecord describes one stored file: which nodes hold its replicas, in
// the order they were written. Size and UploadedAt are informational and
// never influence placement.
type FileRecord struct {
	Name       string    `json:"name"`
	Nodes      []int     `json:"nodes"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// clone returns a copy whose node list is independent of the original
func (r FileRecord) clone() FileRecord {
	out := r
	out.Nodes = make([]int, len(r.Nodes))
	copy(out.Nodes, r.Nodes)
	return out
}

// MetadataIndex maps filenames to their replica records. Filenames are
// case-sensitive unique keys. The index lives in memory only: restarting
// the process loses it while replica bytes stay on disk.
type MetadataIndex struct {
	mu      sync.RWMutex
	records map[string]FileRecord
}

// NewMetadataIndex creates an empty index
func NewMetadataIndex() *MetadataIndex {
	return &MetadataIndex{
		records: make(map[string]FileRecord),
	}
}

// Set records the entry for record.Name, replacing any previous record
func (m *MetadataIndex) Set(record FileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[record.Name] = record.clone()
}

// Get returns the record for name and whether it exists
func (m *MetadataIndex) Get(name string) (FileRecord, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.records[name]
	if !ok {
		return FileRecord{}, false
	}
	return record.clone(), true
}

// Remove drops the record for name if present
func (m *MetadataIndex) Remove(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.records, name)
}

// Len returns the number of tracked files
func (m *MetadataIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}

// ListAll returns every record sorted lexicographically by filename, so
// repeated listings of the same state always print in the same order
func (m *MetadataIndex) ListAll() []FileRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]FileRecord, 0, len(m.records))
	for _, record := range m.records {
		records = append(records, record.clone())
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})
	return records
}
