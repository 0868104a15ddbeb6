// Package dispatch implements the interactive command loop that drives the
// cluster from stdin and prints human-readable results.
package dispatch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/cluster"
	"github.com/abhinavsingla012/DISTRIBUTIVE-FILE-SYSTEM-FAULT-TOLERANCE/internal/storage"
	"go.uber.org/zap"
)

// Manager is the subset of cluster operations the dispatcher drives
type Manager interface {
	Upload(sourcePath string) (*storage.FileRecord, error)
	Download(name, dstPath string) (int, error)
	Delete(name string) error
	ListFiles() []storage.FileRecord
	FailNode(id int) ([]cluster.FileHealth, error)
	RecoverNode(id int) ([]cluster.FileHealth, error)
	EvaluateReplicaHealth() []cluster.FileHealth
	Nodes() []cluster.Node
	ReplicationFactor() int
}

// Dispatcher reads commands line by line and executes them against the manager
type Dispatcher struct {
	manager        Manager
	downloadPrefix string
	out            io.Writer
	logger         *zap.Logger
}

// NewDispatcher creates a dispatcher writing its output to out. Downloaded
// files are written to downloadPrefix + <name>.
func NewDispatcher(manager Manager, downloadPrefix string, out io.Writer, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		manager:        manager,
		downloadPrefix: downloadPrefix,
		out:            out,
		logger:         logger,
	}
}

// Run prints the banner and processes commands from in until exit, EOF or
// context cancellation.
func (d *Dispatcher) Run(ctx context.Context, in io.Reader) error {
	fmt.Fprint(d.out, "\n=== DISTRIBUTED FILE SYSTEM ===\n")
	fmt.Fprint(d.out, "Commands: upload, download, delete, list, fail, recover, nodes, health, exit\n\n")

	scanner := bufio.NewScanner(in)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(d.out, "DFS> ")
		if !scanner.Scan() {
			break
		}
		if quit := d.handleCommand(scanner.Text()); quit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading commands: %w", err)
	}
	return nil
}

// handleCommand executes one command line and reports whether to quit
func (d *Dispatcher) handleCommand(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	d.logger.Debug("command received", zap.String("verb", fields[0]))

	switch fields[0] {
	case "upload":
		if len(fields) != 2 {
			fmt.Fprintln(d.out, "Usage: upload <file>")
			return false
		}
		d.upload(fields[1])

	case "download":
		if len(fields) != 2 {
			fmt.Fprintln(d.out, "Usage: download <name>")
			return false
		}
		d.download(fields[1])

	case "delete":
		if len(fields) != 2 {
			fmt.Fprintln(d.out, "Usage: delete <name>")
			return false
		}
		d.delete(fields[1])

	case "list":
		d.list()

	case "fail":
		if id, ok := d.parseNodeID(fields, "Usage: fail <id>"); ok {
			d.setNodeLive(id, false)
		}

	case "recover":
		if id, ok := d.parseNodeID(fields, "Usage: recover <id>"); ok {
			d.setNodeLive(id, true)
		}

	case "nodes":
		d.nodes()

	case "health":
		d.health()

	case "exit":
		return true

	default:
		fmt.Fprintln(d.out, "Invalid command.")
	}
	return false
}

func (d *Dispatcher) parseNodeID(fields []string, usage string) (int, bool) {
	if len(fields) != 2 {
		fmt.Fprintln(d.out, usage)
		return 0, false
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		fmt.Fprintln(d.out, usage)
		return 0, false
	}
	return id, true
}

func (d *Dispatcher) upload(path string) {
	record, err := d.manager.Upload(path)
	if err != nil {
		switch {
		case errors.Is(err, cluster.ErrSourceNotFound):
			fmt.Fprintln(d.out, "Error: File not found.")
		case errors.Is(err, cluster.ErrInsufficientReplicas):
			fmt.Fprintf(d.out, "Error: Not enough active nodes for %d replicas!\n", d.manager.ReplicationFactor())
		case errors.Is(err, cluster.ErrReplicationFailed):
			fmt.Fprintf(d.out, "Error during file replication: %v\n", err)
		default:
			fmt.Fprintf(d.out, "Error: %v\n", err)
		}
		return
	}

	fmt.Fprint(d.out, "[UPLOAD SUCCESS] File replicated to nodes:")
	for _, id := range record.Nodes {
		fmt.Fprintf(d.out, " %d", id)
	}
	fmt.Fprint(d.out, "\n\n")
}

func (d *Dispatcher) download(name string) {
	nodeID, err := d.manager.Download(name, d.downloadPrefix+name)
	if err != nil {
		switch {
		case errors.Is(err, cluster.ErrFileNotFound):
			fmt.Fprintln(d.out, "Error: File not found in DFS.")
		case errors.Is(err, cluster.ErrAllReplicasUnavailable):
			fmt.Fprintln(d.out, "[ERROR] All replicas are unavailable. File cannot be downloaded.")
		case errors.Is(err, cluster.ErrDownloadFailed):
			fmt.Fprintf(d.out, "Error during download: %v\n", err)
		default:
			fmt.Fprintf(d.out, "Error: %v\n", err)
		}
		return
	}
	fmt.Fprintf(d.out, "[DOWNLOAD SUCCESS] File downloaded from Node %d\n", nodeID)
}

func (d *Dispatcher) delete(name string) {
	if err := d.manager.Delete(name); err != nil {
		switch {
		case errors.Is(err, cluster.ErrFileNotFound):
			fmt.Fprintln(d.out, "Error: File not found.")
		case errors.Is(err, cluster.ErrDeletionFailed):
			fmt.Fprintf(d.out, "Error during deletion: %v\n", err)
		default:
			fmt.Fprintf(d.out, "Error: %v\n", err)
		}
		return
	}
	fmt.Fprint(d.out, "[DELETE SUCCESS] File removed from DFS.\n\n")
}

func (d *Dispatcher) list() {
	files := d.manager.ListFiles()
	if len(files) == 0 {
		fmt.Fprint(d.out, "(Empty) No files stored.\n\n")
		return
	}

	fmt.Fprint(d.out, "\nFILES IN DFS:\n")
	for _, record := range files {
		fmt.Fprintf(d.out, " - %s → Nodes:", record.Name)
		for _, id := range record.Nodes {
			fmt.Fprintf(d.out, " %d", id)
		}
		fmt.Fprintln(d.out)
	}
	fmt.Fprintln(d.out)
}

func (d *Dispatcher) setNodeLive(id int, live bool) {
	var (
		report []cluster.FileHealth
		err    error
	)
	if live {
		report, err = d.manager.RecoverNode(id)
	} else {
		report, err = d.manager.FailNode(id)
	}
	if err != nil {
		fmt.Fprintf(d.out, "Error: Invalid node ID %d.\n", id)
		return
	}

	if live {
		fmt.Fprintf(d.out, "[NODE RECOVERED] Node %d is active.\n", id)
	} else {
		fmt.Fprintf(d.out, "[NODE FAILED] Node %d is inactive.\n", id)
	}
	d.printWarnings(report)
	fmt.Fprintln(d.out)
}

// printWarnings flags every file that dropped below two live replicas
func (d *Dispatcher) printWarnings(report []cluster.FileHealth) {
	for _, fh := range report {
		if fh.Status == cluster.HealthHealthy {
			continue
		}
		fmt.Fprintf(d.out, "WARNING: File '%s' has only %d active replicas! Data loss risk!\n",
			fh.Name, fh.LiveReplicas)
	}
}

func (d *Dispatcher) nodes() {
	fmt.Fprint(d.out, "\nNODE STATUS:\n")
	for _, node := range d.manager.Nodes() {
		status := "Active"
		if !node.Live {
			status = "Failed"
		}
		fmt.Fprintf(d.out, "Node %d: %s\n", node.ID, status)
	}
	fmt.Fprintln(d.out)
}

func (d *Dispatcher) health() {
	report := d.manager.EvaluateReplicaHealth()
	if len(report) == 0 {
		fmt.Fprint(d.out, "(Empty) No files stored.\n\n")
		return
	}

	fmt.Fprint(d.out, "\nREPLICA HEALTH:\n")
	for _, fh := range report {
		fmt.Fprintf(d.out, " - %s → %d/%d live (%s)\n",
			fh.Name, fh.LiveReplicas, fh.TotalNodes, fh.Status)
	}
	fmt.Fprintln(d.out)
}
