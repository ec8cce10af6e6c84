// Package file provides file-based persistence for workflows, executions and snapshots.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dukex/flowdeck/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using the file system.
//
// Layout under root:
//
//	workflows/<id>.json
//	executions/<id>.json
//	snapshots/<id>.meta.json and snapshots/<id>.blob
type Persistence struct {
	root string

	// mu serializes writers; readers of one record never see a half written file
	// because every write goes through a rename.
	mu sync.RWMutex

	workflowRepo  *WorkflowRepository
	executionRepo *ExecutionRepository
	snapshotRepo  *SnapshotRepository
}

// NewPersistence creates a new instance of Persistence with the specified root directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	p := &Persistence{root: cleanRoot}
	p.workflowRepo = &WorkflowRepository{store: p}
	p.executionRepo = &ExecutionRepository{store: p}
	p.snapshotRepo = &SnapshotRepository{store: p}

	return p
}

// Close performs any necessary cleanup. For file-based persistence, there is nothing to clean up.
func (p *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck checks that the root directory exists and can be written.
func (p *Persistence) HealthCheck(_ context.Context) error {
	err := os.MkdirAll(p.root, 0750)
	if err != nil {
		return fmt.Errorf("file persistence root %s is not usable: %w", p.root, err)
	}

	probe, err := os.CreateTemp(p.root, ".health-*")
	if err != nil {
		return fmt.Errorf("file persistence root %s is not writable: %w", p.root, err)
	}

	_ = probe.Close()

	return os.Remove(probe.Name())
}

func (p *Persistence) WorkflowRepository() persistence.WorkflowRepository {
	return p.workflowRepo
}

func (p *Persistence) ExecutionRepository() persistence.ExecutionRepository {
	return p.executionRepo
}

func (p *Persistence) SnapshotRepository() persistence.SnapshotRepository {
	return p.snapshotRepo
}

// validateID rejects ids that would escape their directory.
func validateID(id string) error {
	if id == "" {
		return errors.New("id cannot be empty")
	}

	if strings.Contains(id, "..") || strings.ContainsAny(id, `/\`) {
		return errors.New("id contains invalid characters")
	}

	return nil
}

func (p *Persistence) path(dir, name string) string {
	return filepath.Join(p.root, dir, name)
}

// writeFile replaces the file atomically by writing a sibling and renaming it.
func (p *Persistence) writeFile(dir, name string, data []byte) error {
	err := os.MkdirAll(filepath.Join(p.root, dir), 0750)
	if err != nil {
		return fmt.Errorf("failed to create %s directory: %w", dir, err)
	}

	target := p.path(dir, name)
	tmp := target + ".tmp"

	err = os.WriteFile(tmp, data, 0600)
	if err != nil {
		return err
	}

	return os.Rename(tmp, target)
}

func (p *Persistence) writeJSON(dir, name string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}

	return p.writeFile(dir, name, data)
}

// readJSON decodes dir/name into target; it reports os.ErrNotExist untouched.
func (p *Persistence) readJSON(dir, name string, target any) error {
	body, err := os.ReadFile(filepath.Clean(p.path(dir, name)))
	if err != nil {
		return err
	}

	err = json.Unmarshal(body, target)
	if err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", name, err)
	}

	return nil
}

// listJSON returns the ids of every <id><suffix> file in dir.
func (p *Persistence) listJSON(dir, suffix string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(p.root, dir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, err
	}

	ids := make([]string, 0, len(entries))

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, suffix) {
			continue
		}

		ids = append(ids, strings.TrimSuffix(name, suffix))
	}

	return ids, nil
}

func (p *Persistence) remove(dir, name string) error {
	return os.Remove(p.path(dir, name))
}
