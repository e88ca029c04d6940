// Package view distributes connection state snapshots to interested sinks:
// the console, the status command, and the MCP server. Producers publish a
// full snapshot on every observable change; sinks never mutate state.
package view

import (
	"fmt"
	"time"
)

// ConnectionSnapshot is a complete, self-describing picture of the
// connection at a point in time. Sinks render it without reaching back
// into the controller.
type ConnectionSnapshot struct {
	State string

	OrgID     string
	ProjectID string

	// BranchID is the branch actually being served: the selected branch in
	// existing mode, or the provisioned ephemeral branch once known.
	BranchID       string
	ParentBranchID string
	Driver         string

	ContainerID string
	HostPort    int

	Databases []string
	Roles     []string

	// Err is set while the connection is in an error state.
	Err error

	LastUpdated time.Time
}

// String gives a compact one-line form for debug output.
func (s ConnectionSnapshot) String() string {
	return fmt.Sprintf("Snapshot(state=%s project=%s branch=%s driver=%s port=%d err=%v)",
		s.State, s.ProjectID, s.BranchID, s.Driver, s.HostPort, s.Err)
}
