package controller

import (
	"context"
	"time"

	"neonlocal/internal/proxy"
	"neonlocal/pkg/logging"
)

// DefaultPollInterval is how often the background poller re-reads the
// container's status. The engine does not push events reliably enough to
// subscribe to, so we treat it as a source of truth to be re-read.
const DefaultPollInterval = 5 * time.Second

// Reconcile aligns the controller with a container that may have outlived a
// previous process. A running proxy is adopted as Connected with the branch
// it is actually serving, resolved from the binding file first and the
// container's own environment second. The persisted selection is never
// trusted for this; the user may have changed dropdowns after the container
// started.
func (c *Controller) Reconcile(ctx context.Context) error {
	if !c.tryBeginOp() {
		return ErrOperationInProgress
	}
	defer c.endOp()

	status, err := c.runtime.Status(ctx)
	if err != nil {
		return err
	}
	if status != proxy.StatusRunning {
		c.setState(func(cs *ConnectionState) {
			cs.State = StateDisconnected
			cs.CurrentBranchID = ""
			cs.ContainerID = ""
		})
		return nil
	}

	env, err := c.runtime.InspectEnv(ctx)
	if err != nil {
		return err
	}

	branchID := c.resolveActiveBranch(env)
	if branchID == "" {
		// Running container whose branch we cannot determine is worse than
		// no container: tear it down instead of faking a connection.
		logging.Warn("Controller", "Adopted container serves an unknown branch, removing it")
		c.teardownContainer(ctx)
		c.clearBranchBinding()
		c.setState(func(cs *ConnectionState) {
			cs.State = StateDisconnected
			cs.CurrentBranchID = ""
			cs.ContainerID = ""
		})
		return nil
	}

	driver := proxy.DriverFromEnv(env)
	if driver == "" {
		driver = c.cfg.DefaultDriver
	}
	// The container knows which project it serves; the selection may have
	// moved on since it started.
	projectID := proxy.ProjectIDFromEnv(env)
	if projectID == "" {
		projectID = c.selections.Get().ProjectID
	}
	databases, roles := c.fetchCatalogLists(ctx, projectID, branchID)

	c.setState(func(cs *ConnectionState) {
		cs.State = StateConnected
		cs.CurrentBranchID = branchID
		cs.Driver = driver
		cs.HostPort = c.hostPort()
		cs.Databases = databases
		cs.Roles = roles
		cs.Err = nil
	})

	logging.Info("Controller", "Adopted running proxy serving branch %s (driver=%s)", branchID, driver)
	return nil
}

// resolveActiveBranch determines which branch a running container serves:
// the binding file knows the ephemeral branch id, the environment knows an
// explicitly selected one.
func (c *Controller) resolveActiveBranch(env map[string]string) string {
	if c.stateDir != "" {
		if binding, err := proxy.ReadBranchBinding(c.stateDir); err == nil {
			return binding.BranchID
		}
	}
	branchID, _ := proxy.BranchIDFromEnv(env)
	return branchID
}

// RunPoller periodically re-reads the container's status until ctx is
// cancelled. It stands down while a lifecycle operation is in flight, and
// only acts on observed status changes, not on every tick.
func (c *Controller) RunPoller(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastObserved proxy.Status
	var haveObservation bool

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if c.operationInFlight() {
			// Mid-transition the container legitimately flickers between
			// absent and running; acting on that would fight the operation.
			continue
		}

		status, err := c.runtime.Status(ctx)
		if err != nil {
			logging.Debug("Poller", "Status probe failed: %v", err)
			continue
		}
		if haveObservation && status == lastObserved {
			continue
		}
		lastObserved = status
		haveObservation = true

		c.handleObservedStatus(ctx, status)
	}
}

// handleObservedStatus reacts to a change in the container's observed
// status. Only a disappearance while Connected mutates state; anything else
// is the business of explicit operations.
func (c *Controller) handleObservedStatus(ctx context.Context, status proxy.Status) {
	state := c.State()
	if !state.Connected() || status == proxy.StatusRunning {
		return
	}

	if !c.tryBeginOp() {
		return
	}
	defer c.endOp()

	if !c.State().Connected() {
		return
	}

	logging.Warn("Controller", "Proxy container disappeared (now %s), marking disconnected", status)
	c.invalidateWatchdog()
	c.clearBranchBinding()
	c.setState(func(cs *ConnectionState) {
		cs.State = StateDisconnected
		cs.CurrentBranchID = ""
		cs.ContainerID = ""
		cs.Databases = nil
		cs.Roles = nil
	})
}
