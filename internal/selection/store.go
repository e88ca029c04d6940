// Package selection persists the user's org/project/branch/driver choices
// across process restarts. It is pure durable state: the lifecycle controller
// owns all business rules, the store only guarantees that a Selection is
// written as a unit and never observed half-updated.
package selection

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConnectionType distinguishes connecting to an existing branch from letting
// the proxy create an ephemeral branch off a parent.
type ConnectionType string

const (
	ConnectionTypeExisting ConnectionType = "existing"
	ConnectionTypeNew      ConnectionType = "new"
)

// Selection is the desired connection target. BranchID and ParentBranchID
// are mutually exclusive: exactly one of them is meaningful, decided by
// ConnectionType.
type Selection struct {
	OrgID          string         `yaml:"orgId"`
	ProjectID      string         `yaml:"projectId"`
	BranchID       string         `yaml:"branchId,omitempty"`
	ParentBranchID string         `yaml:"parentBranchId,omitempty"`
	Driver         string         `yaml:"driver"`
	ConnectionType ConnectionType `yaml:"connectionType"`
}

const stateFileName = "state.yaml"

// Store is a durable key/value holder for the current Selection. All
// mutations go through Update, which rewrites the backing file atomically
// (temp file + rename) so a crash mid-write never leaves a torn state.
type Store struct {
	mu      sync.Mutex
	path    string
	current Selection
}

// NewStore opens (or initializes) the selection store inside dir. An existing
// state file is loaded; a missing one is not an error.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	s := &Store{path: filepath.Join(dir, stateFileName)}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read selection state: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.current); err != nil {
		return nil, fmt.Errorf("failed to parse selection state %s: %w", s.path, err)
	}
	return s, nil
}

// Get returns a copy of the current selection.
func (s *Store) Get() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Update applies mutate to the current selection and persists the result as
// a single atomic write. The updated copy is returned.
func (s *Store) Update(mutate func(*Selection)) (Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	updated := s.current
	mutate(&updated)

	if err := s.write(updated); err != nil {
		return s.current, err
	}
	s.current = updated
	return updated, nil
}

// SetOrg selects an organization. Project and branch selections belong to
// the previous org, so they are cleared.
func (s *Store) SetOrg(orgID string) (Selection, error) {
	return s.Update(func(sel *Selection) {
		sel.OrgID = orgID
		sel.ProjectID = ""
		sel.BranchID = ""
		sel.ParentBranchID = ""
	})
}

// SetProject selects a project and clears any branch selection.
func (s *Store) SetProject(projectID string) (Selection, error) {
	return s.Update(func(sel *Selection) {
		sel.ProjectID = projectID
		sel.BranchID = ""
		sel.ParentBranchID = ""
	})
}

// SetBranch selects an existing branch to connect to.
func (s *Store) SetBranch(branchID string) (Selection, error) {
	return s.Update(func(sel *Selection) {
		sel.BranchID = branchID
		sel.ParentBranchID = ""
		sel.ConnectionType = ConnectionTypeExisting
	})
}

// SetParentBranch selects the parent for an ephemeral branch the proxy will
// create on start.
func (s *Store) SetParentBranch(parentBranchID string) (Selection, error) {
	return s.Update(func(sel *Selection) {
		sel.ParentBranchID = parentBranchID
		sel.BranchID = ""
		sel.ConnectionType = ConnectionTypeNew
	})
}

// SetDriver records the local wire protocol choice.
func (s *Store) SetDriver(driver string) (Selection, error) {
	return s.Update(func(sel *Selection) {
		sel.Driver = driver
	})
}

// write persists sel via temp-file rename. Rename is atomic on POSIX
// filesystems, so readers see either the old or the new file, never a mix.
func (s *Store) write(sel Selection) error {
	data, err := yaml.Marshal(&sel)
	if err != nil {
		return fmt.Errorf("failed to marshal selection: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write selection state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace selection state: %w", err)
	}
	return nil
}
