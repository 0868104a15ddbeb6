package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewDiskStoreCreatesNodeDirectories(t *testing.T) {
	base := t.TempDir()

	store, err := NewDiskStore(base, 3)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	for id := 1; id <= 3; id++ {
		dir := store.NodeDir(id)
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("node directory %d missing: %v", id, err)
		}
		if !info.IsDir() {
			t.Errorf("node path %s is not a directory", dir)
		}
	}

	// Construction over an existing layout must not fail
	if _, err := NewDiskStore(base, 3); err != nil {
		t.Errorf("NewDiskStore over existing directories returned error: %v", err)
	}
}

func TestDiskStorePutGet(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 2)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	content := "replicated payload"
	if err := store.Put(1, "report.txt", strings.NewReader(content)); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	rc, err := store.Get(1, "report.txt")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("reading replica returned error: %v", err)
	}
	if string(data) != content {
		t.Errorf("replica content = %q, want %q", data, content)
	}

	// The replica lives only on the node it was written to
	if _, err := store.Get(2, "report.txt"); err == nil {
		t.Error("Get on node 2 should fail, replica was only written to node 1")
	}
}

func TestDiskStorePutOverwrites(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 1)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	if err := store.Put(1, "a.txt", strings.NewReader("first version")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Put(1, "a.txt", strings.NewReader("second")); err != nil {
		t.Fatalf("overwriting Put returned error: %v", err)
	}

	rc, err := store.Get(1, "a.txt")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	defer rc.Close()

	data, _ := io.ReadAll(rc)
	if string(data) != "second" {
		t.Errorf("replica content = %q, want %q", data, "second")
	}
}

func TestDiskStoreRemove(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 1)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	if err := store.Put(1, "a.txt", strings.NewReader("data")); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Remove(1, "a.txt"); err != nil {
		t.Fatalf("Remove returned error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(store.NodeDir(1), "a.txt")); !os.IsNotExist(err) {
		t.Errorf("replica file still present after Remove, stat err = %v", err)
	}

	// Removing a missing replica is success, not an error
	if err := store.Remove(1, "a.txt"); err != nil {
		t.Errorf("Remove of missing replica returned error: %v", err)
	}
	if err := store.Remove(1, "never-created.txt"); err != nil {
		t.Errorf("Remove of never-created replica returned error: %v", err)
	}
}

func TestDiskStoreGetMissingReplica(t *testing.T) {
	store, err := NewDiskStore(t.TempDir(), 1)
	if err != nil {
		t.Fatalf("NewDiskStore returned error: %v", err)
	}

	if _, err := store.Get(1, "ghost.txt"); err == nil {
		t.Error("Get of missing replica should return an error")
	}
}
