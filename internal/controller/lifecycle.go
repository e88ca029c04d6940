package controller

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"neonlocal/internal/config"
	"neonlocal/internal/proxy"
	"neonlocal/internal/selection"
	"neonlocal/pkg/logging"
)

// Start brings the proxy up against the currently selected branch. The call
// blocks until the connection is established or fails; on failure the state
// settles back to Disconnected with the error recorded. A stop requested
// while the start is in flight is honored immediately after the container
// calls finish.
func (c *Controller) Start(ctx context.Context) error {
	if state := c.State(); state.Connected() {
		return fmt.Errorf("%w to branch %s, disconnect first", ErrAlreadyConnected, state.CurrentBranchID)
	}

	if !c.tryBeginOp() {
		return ErrOperationInProgress
	}

	err := c.startLocked(ctx, StateStarting)

	// An absorbed stop runs while the lock is still held. Releasing first
	// would let a fresh start interleave and be torn down by this stale
	// stop path.
	if c.stopPending() {
		logging.Info("Controller", "Start superseded by stop request, stopping now")
		c.performStop(ctx)
	}
	c.endOp()
	return err
}

// startLocked runs the start sequence. Caller holds the operation lock.
// phase is the state published while the transition runs: Starting for a
// plain start, Restarting for a driver change on a live connection.
func (c *Controller) startLocked(ctx context.Context, phase State) (err error) {
	sel := c.selections.Get()
	driver := sel.Driver
	if driver == "" {
		driver = c.cfg.DefaultDriver
	}

	if err := validateStartSelection(sel); err != nil {
		return err
	}

	c.setState(func(cs *ConnectionState) {
		cs.State = phase
		cs.Err = nil
		cs.Databases = nil
		cs.Roles = nil
		cs.Driver = driver
		cs.ConnectionType = sel.ConnectionType
		cs.HostPort = c.hostPort()
	})

	// Whatever goes wrong from here, never leave the state stuck in a
	// transitional phase.
	defer func() {
		if err != nil {
			c.setState(func(cs *ConnectionState) {
				cs.State = StateDisconnected
				cs.CurrentBranchID = ""
				cs.ContainerID = ""
				cs.Err = err
			})
		}
	}()

	containerID, effectiveBranch, err := c.startContainer(ctx, sel, driver)
	if err != nil {
		return err
	}

	databases, roles := c.fetchCatalogLists(ctx, sel.ProjectID, effectiveBranch)

	c.setState(func(cs *ConnectionState) {
		cs.State = StateConnected
		cs.CurrentBranchID = effectiveBranch
		cs.ContainerID = containerID
		cs.Databases = databases
		cs.Roles = roles
	})

	c.spawnReadinessWatchdog(containerID)

	logging.Info("Controller", "Connected to branch %s (driver=%s, container=%s)", effectiveBranch, driver, containerID)
	return nil
}

// startContainer creates and starts the proxy container and resolves the
// branch it actually serves. The name-conflict recovery lives here: a stale
// container with our name is force-removed and the start retried exactly
// once.
func (c *Controller) startContainer(ctx context.Context, sel selection.Selection, driver string) (containerID, effectiveBranch string, err error) {
	port := c.hostPort()
	if inUse, portErr := c.runtime.PortInUse(ctx, port); portErr != nil {
		return "", "", portErr
	} else if inUse {
		return "", "", fmt.Errorf("%w: another container already publishes port %d, stop it or configure a different hostPort", proxy.ErrPortConflict, port)
	}

	startCfg := proxy.StartConfig{
		Image:     c.image(),
		APIKey:    c.cfg.APIKey,
		ProjectID: sel.ProjectID,
		Driver:    driver,
		HostPort:  port,
	}
	if sel.ConnectionType == selection.ConnectionTypeNew {
		startCfg.ParentBranchID = sel.ParentBranchID
		startCfg.DeleteBranch = c.cfg.DeleteOnStop
		startCfg.StateDir = c.stateDir
	} else {
		startCfg.BranchID = sel.BranchID
	}

	containerID, err = c.runtime.Start(ctx, startCfg)
	if errors.Is(err, proxy.ErrNameConflict) {
		logging.Warn("Controller", "Stale container holds the proxy name, removing and retrying once")
		if rmErr := c.runtime.Remove(ctx, true); rmErr != nil {
			return "", "", fmt.Errorf("failed to remove stale container: %w", rmErr)
		}
		containerID, err = c.runtime.Start(ctx, startCfg)
	}
	if err != nil {
		return "", "", err
	}

	if sel.ConnectionType == selection.ConnectionTypeNew {
		binding, bindErr := c.readBinding(ctx, c.stateDir)
		if bindErr != nil {
			// The container is up but we cannot learn which branch it
			// serves. Tear it down rather than report a connection we
			// cannot describe.
			c.teardownContainer(ctx)
			return "", "", fmt.Errorf("ephemeral branch was never bound: %w", bindErr)
		}
		effectiveBranch = binding.BranchID
	} else {
		effectiveBranch = sel.BranchID
	}

	return containerID, effectiveBranch, nil
}

// Stop tears the proxy down. Idempotent: stopping an already-removed
// container still lands in Disconnected without error. The user's selection
// is preserved so reconnecting is a single action.
func (c *Controller) Stop(ctx context.Context) error {
	if !c.tryBeginOp() {
		if c.requestStopDuringStart() {
			// The in-flight start will run the stop path once its container
			// calls finish; rejecting here keeps the response observable
			// without racing the create call.
			return fmt.Errorf("%w: stop will run when the current operation completes", ErrOperationInProgress)
		}
		return ErrOperationInProgress
	}
	defer c.endOp()

	c.performStop(ctx)
	return nil
}

// performStop is the shared stop path. Caller holds the operation lock.
func (c *Controller) performStop(ctx context.Context) {
	c.invalidateWatchdog()

	c.setState(func(cs *ConnectionState) {
		cs.State = StateStopping
	})

	c.teardownContainer(ctx)
	c.clearBranchBinding()

	c.setState(func(cs *ConnectionState) {
		cs.State = StateDisconnected
		cs.CurrentBranchID = ""
		cs.ContainerID = ""
		cs.Databases = nil
		cs.Roles = nil
		cs.Err = nil
	})
}

// teardownContainer stops and removes the proxy container, tolerating a
// container that is already gone.
func (c *Controller) teardownContainer(ctx context.Context) {
	if err := c.runtime.Stop(ctx); err != nil {
		logging.Warn("Controller", "Failed to stop proxy container: %v", err)
	}
	if err := c.runtime.Remove(ctx, true); err != nil {
		logging.Warn("Controller", "Failed to remove proxy container: %v", err)
	}
}

// clearBranchBinding removes the branch binding file so a stale ephemeral
// branch id cannot leak into the next session.
func (c *Controller) clearBranchBinding() {
	if c.stateDir == "" {
		return
	}
	path := filepath.Join(c.stateDir, proxy.BranchesFileName)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		logging.Warn("Controller", "Failed to clear branch binding file: %v", err)
	}
}

// SetDriver changes the wire protocol. Disconnected, it only persists the
// choice. Connected, it restarts the proxy with the new driver as one atomic
// operation: callers observe a single Restarting phase, never an
// intermediate Disconnected.
func (c *Controller) SetDriver(ctx context.Context, driver string) error {
	if driver != config.DriverPostgres && driver != config.DriverServerless {
		return fmt.Errorf("unknown driver %q (want %s or %s)", driver, config.DriverPostgres, config.DriverServerless)
	}

	wasConnected := c.State().Connected()
	if !wasConnected {
		_, err := c.selections.SetDriver(driver)
		return err
	}

	if !c.tryBeginOp() {
		return ErrOperationInProgress
	}

	if _, err := c.selections.SetDriver(driver); err != nil {
		c.endOp()
		return err
	}

	c.invalidateWatchdog()
	c.setState(func(cs *ConnectionState) {
		cs.State = StateRestarting
	})
	c.teardownContainer(ctx)
	c.clearBranchBinding()

	err := c.startLocked(ctx, StateRestarting)

	if c.stopPending() {
		c.performStop(ctx)
	}
	c.endOp()
	return err
}

// ResetToParent resets the connected branch to its parent's state. The
// container keeps running; the branch id does not change. The branch must
// actually have a parent, and the reset call is never retried.
func (c *Controller) ResetToParent(ctx context.Context) error {
	state := c.State()
	if !state.Connected() || state.CurrentBranchID == "" {
		return ErrNotConnected
	}

	if !c.tryBeginOp() {
		return ErrOperationInProgress
	}
	defer c.endOp()

	sel := c.selections.Get()
	branch, err := c.catalog.GetBranch(ctx, sel.ProjectID, state.CurrentBranchID)
	if err != nil {
		return fmt.Errorf("failed to resolve branch %s: %w", state.CurrentBranchID, err)
	}
	if branch.ParentID == "" {
		return fmt.Errorf("%w: branch %s is a root branch", ErrNoParentBranch, state.CurrentBranchID)
	}

	if err := c.catalog.ResetBranchToParent(ctx, sel.ProjectID, state.CurrentBranchID); err != nil {
		return fmt.Errorf("reset of branch %s failed: %w", state.CurrentBranchID, err)
	}

	logging.Info("Controller", "Branch %s reset to parent %s", state.CurrentBranchID, branch.ParentID)
	return nil
}

func (c *Controller) image() string {
	if c.cfg.Image != "" {
		return c.cfg.Image
	}
	return config.DefaultImage
}

func validateStartSelection(sel selection.Selection) error {
	if sel.ProjectID == "" {
		return ErrNoProjectSelected
	}
	switch sel.ConnectionType {
	case selection.ConnectionTypeNew:
		if sel.ParentBranchID == "" {
			return fmt.Errorf("%w: new-branch mode needs a parent branch", ErrNoBranchSelected)
		}
	default:
		if sel.BranchID == "" {
			return ErrNoBranchSelected
		}
	}
	return nil
}
