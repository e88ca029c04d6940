package view

import (
	"neonlocal/pkg/logging"
)

// ConsoleSink logs state transitions via the logging package. It suppresses
// snapshots that do not change the state so polling does not flood the log.
type ConsoleSink struct {
	lastState string
}

// NewConsoleSink creates a console sink.
func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{}
}

// Run consumes snapshots until the subscription channel is closed.
func (c *ConsoleSink) Run(sub *Subscription) {
	for snapshot := range sub.Channel {
		c.render(snapshot)
	}
}

func (c *ConsoleSink) render(snapshot ConnectionSnapshot) {
	if snapshot.State == c.lastState && snapshot.Err == nil {
		return
	}
	c.lastState = snapshot.State

	switch {
	case snapshot.Err != nil:
		logging.Error("Connection", snapshot.Err, "State: %s", snapshot.State)
	case snapshot.State == "Connected":
		logging.Info("Connection", "Connected to branch %s (driver=%s) on localhost:%d", snapshot.BranchID, snapshot.Driver, snapshot.HostPort)
	default:
		logging.Info("Connection", "State: %s", snapshot.State)
	}
}
