package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// BranchesFileName is the file the proxy writes inside its state directory
// once it has provisioned an ephemeral branch.
const BranchesFileName = ".branches"

// Binding-await cadence. The proxy writes the file shortly after the branch
// is created; thirty seconds is well beyond any observed provisioning time.
const (
	bindingPollInterval = 500 * time.Millisecond
	bindingTimeout      = 30 * time.Second
)

// ErrBranchFileTimeout indicates the branch binding file never appeared (or
// never contained a branch id) within the await window.
var ErrBranchFileTimeout = errors.New("proxy: timed out waiting for branch binding")

// BranchBinding maps a connection key to the ephemeral branch the proxy
// provisioned for it.
type BranchBinding struct {
	Key      string
	BranchID string
}

type branchEntry struct {
	BranchID string `json:"branch_id"`
}

// ReadBranchBinding parses the .branches file in dir. The file is a JSON
// object keyed by connection key; a single proxy writes exactly one entry.
// Returns os.ErrNotExist while the file has not been written yet.
func ReadBranchBinding(dir string) (BranchBinding, error) {
	data, err := os.ReadFile(filepath.Join(dir, BranchesFileName))
	if err != nil {
		return BranchBinding{}, err
	}
	var entries map[string]branchEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return BranchBinding{}, fmt.Errorf("malformed branch binding file: %w", err)
	}
	for key, entry := range entries {
		if entry.BranchID != "" {
			return BranchBinding{Key: key, BranchID: entry.BranchID}, nil
		}
	}
	return BranchBinding{}, fmt.Errorf("branch binding file has no branch id")
}

// AwaitBranchBinding polls dir until the proxy has written a usable branch
// binding, the timeout elapses, or ctx is cancelled. Transient states (file
// absent, partially written JSON) are retried; only the deadline turns them
// into an error.
func AwaitBranchBinding(ctx context.Context, dir string) (BranchBinding, error) {
	deadline := time.NewTimer(bindingTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(bindingPollInterval)
	defer tick.Stop()

	for {
		binding, err := ReadBranchBinding(dir)
		if err == nil {
			return binding, nil
		}
		select {
		case <-ctx.Done():
			return BranchBinding{}, ctx.Err()
		case <-deadline.C:
			return BranchBinding{}, fmt.Errorf("%w: %v", ErrBranchFileTimeout, err)
		case <-tick.C:
		}
	}
}
