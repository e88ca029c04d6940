package controller

import (
	"context"
	"sync"
	"time"

	"neonlocal/internal/catalog"
	"neonlocal/internal/config"
	"neonlocal/internal/proxy"
	"neonlocal/internal/selection"
	"neonlocal/internal/view"
	"neonlocal/pkg/logging"
)

// ContainerRuntime is the slice of the proxy runtime the controller drives.
// *proxy.Runtime satisfies it; tests substitute a fake.
type ContainerRuntime interface {
	Status(ctx context.Context) (proxy.Status, error)
	Start(ctx context.Context, cfg proxy.StartConfig) (string, error)
	Stop(ctx context.Context) error
	Remove(ctx context.Context, force bool) error
	TailLogs(ctx context.Context) (<-chan string, error)
	PortInUse(ctx context.Context, port int) (bool, error)
	InspectEnv(ctx context.Context) (map[string]string, error)
}

// Catalog is the slice of the remote catalog the controller consumes.
type Catalog interface {
	GetBranch(ctx context.Context, projectID, branchID string) (catalog.Branch, error)
	ListDatabases(ctx context.Context, projectID, branchID string) ([]catalog.Database, error)
	ListRoles(ctx context.Context, projectID, branchID string) ([]catalog.Role, error)
	ResetBranchToParent(ctx context.Context, projectID, branchID string) error
}

// BranchBindingReader resolves the ephemeral branch id the proxy allocated.
// The default implementation polls the .branches file the container writes.
type BranchBindingReader func(ctx context.Context, dir string) (proxy.BranchBinding, error)

// Controller reconciles the user's selection with the actual state of the
// proxy container. All mutation of ConnectionState goes through it.
type Controller struct {
	runtime     ContainerRuntime
	catalog     Catalog
	selections  *selection.Store
	cfg         config.Config
	notifier    *view.Notifier
	stateDir    string
	readBinding BranchBindingReader
	readyGrace  time.Duration

	// opMu serializes lifecycle operations. It is a try-lock: contended
	// requests are rejected with ErrOperationInProgress, never queued.
	opMu       sync.Mutex
	opInFlight bool

	// pendingStop is set when a stop request arrives while a start holds
	// the lock. The start finishes its container calls, then runs the stop
	// path instead of leaving an untracked container behind.
	pendingStop bool

	// stateMu guards state. Held briefly; never across engine or API calls.
	stateMu sync.RWMutex
	state   ConnectionState

	// watchdogSeq invalidates a readiness watchdog once the container it
	// observed is gone.
	watchdogSeq int64
}

// Options configures optional controller behavior. Zero values select the
// production defaults.
type Options struct {
	BranchBindingReader BranchBindingReader
	ReadyGrace          time.Duration
}

// New creates a controller in the Disconnected state. Call Reconcile to pick
// up a container that outlived a previous process.
func New(runtime ContainerRuntime, cat Catalog, selections *selection.Store, cfg config.Config, notifier *view.Notifier, stateDir string, opts Options) *Controller {
	readBinding := opts.BranchBindingReader
	if readBinding == nil {
		readBinding = proxy.AwaitBranchBinding
	}
	readyGrace := opts.ReadyGrace
	if readyGrace <= 0 {
		readyGrace = proxy.DefaultReadyGrace
	}
	return &Controller{
		runtime:     runtime,
		catalog:     cat,
		selections:  selections,
		cfg:         cfg,
		notifier:    notifier,
		stateDir:    stateDir,
		readBinding: readBinding,
		readyGrace:  readyGrace,
		state:       ConnectionState{State: StateDisconnected, Driver: cfg.DefaultDriver},
	}
}

// State returns a copy of the current connection state.
func (c *Controller) State() ConnectionState {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// tryBeginOp acquires the lifecycle operation lock without blocking.
func (c *Controller) tryBeginOp() bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if c.opInFlight {
		return false
	}
	c.opInFlight = true
	c.pendingStop = false
	return true
}

// endOp releases the operation lock.
func (c *Controller) endOp() {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	c.opInFlight = false
	c.pendingStop = false
}

// stopPending reports whether a stop was requested while the current
// operation has held the lock. Callers act on it before endOp, so the
// absorbed stop runs under the same mutual exclusion as the operation that
// absorbed it; a stop executed after release could race a fresh start and
// tear down its container.
func (c *Controller) stopPending() bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.opInFlight && c.pendingStop
}

// operationInFlight reports whether a lifecycle operation holds the lock.
// The background poller uses it to stand down mid-transition.
func (c *Controller) operationInFlight() bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	return c.opInFlight
}

// requestStopDuringStart marks the in-flight start as superseded. Returns
// false if no operation holds the lock.
func (c *Controller) requestStopDuringStart() bool {
	c.opMu.Lock()
	defer c.opMu.Unlock()
	if !c.opInFlight {
		return false
	}
	c.pendingStop = true
	return true
}

// setState replaces the connection state and pushes a snapshot to the view
// layer.
func (c *Controller) setState(mutate func(*ConnectionState)) {
	c.stateMu.Lock()
	mutate(&c.state)
	snapshot := c.snapshotLocked()
	c.stateMu.Unlock()

	if c.notifier != nil {
		c.notifier.Publish(snapshot)
	}
}

func (c *Controller) snapshotLocked() view.ConnectionSnapshot {
	sel := c.selections.Get()
	return view.ConnectionSnapshot{
		State:          string(c.state.State),
		OrgID:          sel.OrgID,
		ProjectID:      sel.ProjectID,
		BranchID:       c.state.CurrentBranchID,
		ParentBranchID: sel.ParentBranchID,
		Driver:         c.state.Driver,
		ContainerID:    c.state.ContainerID,
		HostPort:       c.state.HostPort,
		Databases:      c.state.Databases,
		Roles:          c.state.Roles,
		Err:            c.state.Err,
	}
}

// hostPort resolves the configured host port.
func (c *Controller) hostPort() int {
	if c.cfg.HostPort > 0 {
		return c.cfg.HostPort
	}
	return config.DefaultHostPort
}

// fetchCatalogLists loads databases and roles for the active branch. Failures
// degrade to empty lists rather than failing the connection; the proxy is
// already serving traffic at this point.
func (c *Controller) fetchCatalogLists(ctx context.Context, projectID, branchID string) (databases, roles []string) {
	dbs, err := c.catalog.ListDatabases(ctx, projectID, branchID)
	if err != nil {
		logging.Warn("Controller", "Failed to list databases for branch %s: %v", branchID, err)
	}
	for _, db := range dbs {
		databases = append(databases, db.Name)
	}

	rs, err := c.catalog.ListRoles(ctx, projectID, branchID)
	if err != nil {
		logging.Warn("Controller", "Failed to list roles for branch %s: %v", branchID, err)
	}
	for _, role := range rs {
		roles = append(roles, role.Name)
	}
	return databases, roles
}
