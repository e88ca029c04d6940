// Package controller owns the connection lifecycle: it is the only writer of
// proxy-running state and drives every transition between disconnected and
// connected, including crash recovery on process restart.
package controller

import (
	"errors"
	"fmt"

	"neonlocal/internal/selection"
)

// State is the lifecycle state of the proxy connection.
type State string

const (
	StateDisconnected State = "Disconnected"
	StateStarting     State = "Starting"
	StateConnected    State = "Connected"
	StateStopping     State = "Stopping"

	// StateRestarting covers an in-place driver change: stop-then-start
	// presented as a single phase so callers never observe a disconnected
	// flash in between.
	StateRestarting State = "Restarting"

	// StateError is recoverable: the selection survives and a fresh start
	// request is valid.
	StateError State = "Error"
)

// String makes State satisfy fmt.Stringer.
func (s State) String() string {
	return string(s)
}

// Typed failures surfaced across the command boundary.
var (
	// ErrOperationInProgress rejects a start/stop/restart while another
	// lifecycle operation holds the lock. Callers should not queue.
	ErrOperationInProgress = errors.New("another connection operation is in progress")

	// ErrNoProjectSelected and ErrNoBranchSelected are start preconditions.
	ErrNoProjectSelected = errors.New("no project selected")
	ErrNoBranchSelected  = errors.New("no branch selected")

	// ErrNoParentBranch refuses a reset when the connected branch has no
	// parent to reset from.
	ErrNoParentBranch = errors.New("branch has no parent branch")

	// ErrNotConnected guards operations that need a live connection.
	ErrNotConnected = errors.New("no active connection")

	// ErrAlreadyConnected rejects a start while a connection is live; the
	// running proxy is never restarted implicitly.
	ErrAlreadyConnected = errors.New("already connected")
)

// ConnectionState is the authoritative view of the proxy connection. Copies
// are handed out; only the controller mutates the original.
type ConnectionState struct {
	State State

	// CurrentBranchID is the branch actually served by the running proxy.
	// In new mode this is the ephemeral branch read back from the binding
	// file, not the selected parent. Non-empty iff State is Connected or
	// Restarting.
	CurrentBranchID string

	ConnectionType selection.ConnectionType
	Driver         string
	ContainerID    string
	HostPort       int

	Databases []string
	Roles     []string

	// Err holds the failure that put us in StateError.
	Err error
}

// Connected reports whether the proxy is serving connections.
func (cs ConnectionState) Connected() bool {
	return cs.State == StateConnected
}

func (cs ConnectionState) String() string {
	return fmt.Sprintf("ConnectionState(%s, branch=%s, driver=%s)", cs.State, cs.CurrentBranchID, cs.Driver)
}
