package controller

import (
	"context"
	"errors"
	"time"

	"neonlocal/internal/proxy"
	"neonlocal/pkg/logging"
)

// spawnReadinessWatchdog watches the freshly started container's logs for
// the readiness marker. A container that runs but never signals readiness
// within the grace window is torn down rather than presented as connected.
func (c *Controller) spawnReadinessWatchdog(containerID string) {
	c.stateMu.Lock()
	c.watchdogSeq++
	seq := c.watchdogSeq
	c.stateMu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.readyGrace+10*time.Second)
		defer cancel()

		lines, err := c.runtime.TailLogs(ctx)
		if err != nil {
			logging.Warn("Watchdog", "Cannot tail proxy logs, skipping readiness check: %v", err)
			return
		}

		err = proxy.AwaitReady(ctx, lines, c.readyGrace)
		if err == nil {
			logging.Debug("Watchdog", "Proxy signalled readiness")
			return
		}
		if !errors.Is(err, proxy.ErrNotReady) {
			return
		}

		if !c.watchdogCurrent(seq) {
			return
		}

		logging.Warn("Watchdog", "Proxy never became ready within %s, tearing it down", c.readyGrace)
		c.demoteUnready(containerID, seq)
	}()
}

// watchdogCurrent reports whether seq still identifies the live watchdog.
// A stop or restart bumps the sequence, orphaning older watchdogs.
func (c *Controller) watchdogCurrent(seq int64) bool {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.watchdogSeq == seq
}

// invalidateWatchdog orphans any running watchdog. Called on every stop and
// restart so a late not-ready verdict cannot tear down a newer container.
func (c *Controller) invalidateWatchdog() {
	c.stateMu.Lock()
	c.watchdogSeq++
	c.stateMu.Unlock()
}

// demoteUnready removes the unready container and falls back to
// Disconnected. If a user operation holds the lock the demotion is skipped;
// that operation will settle the state itself.
func (c *Controller) demoteUnready(containerID string, seq int64) {
	if !c.tryBeginOp() {
		return
	}
	defer c.endOp()

	if !c.watchdogCurrent(seq) {
		return
	}
	state := c.State()
	if state.ContainerID != containerID {
		return
	}

	c.setState(func(cs *ConnectionState) {
		cs.State = StateError
		cs.Err = proxy.ErrNotReady
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	c.teardownContainer(ctx)
	c.clearBranchBinding()

	c.setState(func(cs *ConnectionState) {
		cs.State = StateDisconnected
		cs.CurrentBranchID = ""
		cs.ContainerID = ""
		cs.Databases = nil
		cs.Roles = nil
	})
}
