package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"neonlocal/internal/catalog"
	"neonlocal/internal/config"
	"neonlocal/internal/proxy"
	"neonlocal/internal/selection"
	"neonlocal/internal/view"
)

// fakeRuntime is a scriptable ContainerRuntime that records calls.
type fakeRuntime struct {
	mu sync.Mutex

	statusFunc  func() (proxy.Status, error)
	startFunc   func(cfg proxy.StartConfig) (string, error)
	portInUse   bool
	inspectEnv  map[string]string
	logLines    []string
	closeLogs   bool
	startBlocks chan struct{} // when set, Start waits until the channel is closed
	stopBlocks  chan struct{} // when set, Stop waits until the channel is closed

	startCalls  int
	startCfgs   []proxy.StartConfig
	stopCalls   int
	removeCalls int
}

func (f *fakeRuntime) Status(context.Context) (proxy.Status, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusFunc != nil {
		return f.statusFunc()
	}
	return proxy.StatusAbsent, nil
}

func (f *fakeRuntime) Start(_ context.Context, cfg proxy.StartConfig) (string, error) {
	f.mu.Lock()
	f.startCalls++
	f.startCfgs = append(f.startCfgs, cfg)
	blocker := f.startBlocks
	fn := f.startFunc
	f.mu.Unlock()

	if blocker != nil {
		<-blocker
	}
	if fn != nil {
		return fn(cfg)
	}
	return fmt.Sprintf("cid-%d", f.calls()), nil
}

func (f *fakeRuntime) Stop(context.Context) error {
	f.mu.Lock()
	f.stopCalls++
	blocker := f.stopBlocks
	f.mu.Unlock()

	if blocker != nil {
		<-blocker
	}
	return nil
}

func (f *fakeRuntime) Remove(context.Context, bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	return nil
}

func (f *fakeRuntime) TailLogs(context.Context) (<-chan string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make(chan string, len(f.logLines)+1)
	for _, line := range f.logLines {
		lines <- line
	}
	if f.closeLogs {
		close(lines)
	}
	return lines, nil
}

func (f *fakeRuntime) PortInUse(context.Context, int) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.portInUse, nil
}

func (f *fakeRuntime) InspectEnv(context.Context) (map[string]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.inspectEnv, nil
}

func (f *fakeRuntime) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCalls
}

func (f *fakeRuntime) stops() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopCalls
}

func (f *fakeRuntime) lastStartCfg() proxy.StartConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.startCfgs[len(f.startCfgs)-1]
}

// fakeCatalog serves canned branch metadata and records reset calls.
type fakeCatalog struct {
	mu             sync.Mutex
	branches       map[string]catalog.Branch
	databases      []catalog.Database
	roles          []catalog.Role
	resetCalls     int
	resetErr       error
	listedProjects []string
}

func (f *fakeCatalog) GetBranch(_ context.Context, _, branchID string) (catalog.Branch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	branch, ok := f.branches[branchID]
	if !ok {
		return catalog.Branch{}, &catalog.APIError{StatusCode: 404, Message: "branch not found"}
	}
	return branch, nil
}

func (f *fakeCatalog) ListDatabases(_ context.Context, projectID, _ string) ([]catalog.Database, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listedProjects = append(f.listedProjects, projectID)
	return f.databases, nil
}

func (f *fakeCatalog) ListRoles(context.Context, string, string) ([]catalog.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles, nil
}

func (f *fakeCatalog) ResetBranchToParent(context.Context, string, string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetCalls++
	return f.resetErr
}

func (f *fakeCatalog) resets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resetCalls
}

func (f *fakeCatalog) projectsListed() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.listedProjects...)
}

type fixture struct {
	controller *Controller
	runtime    *fakeRuntime
	catalog    *fakeCatalog
	selections *selection.Store
}

func newFixture(t *testing.T, mutate func(rt *fakeRuntime, cat *fakeCatalog)) *fixture {
	t.Helper()

	rt := &fakeRuntime{
		logLines: []string{proxy.ReadyLogMarker},
	}
	cat := &fakeCatalog{
		branches: map[string]catalog.Branch{},
		databases: []catalog.Database{
			{Name: "neondb", OwnerName: "neondb_owner"},
		},
		roles: []catalog.Role{
			{Name: "neondb_owner"},
		},
	}
	if mutate != nil {
		mutate(rt, cat)
	}

	store, err := selection.NewStore(t.TempDir())
	require.NoError(t, err)

	cfg := config.GetDefaultConfig()
	cfg.APIKey = "test-key"

	bindingReader := func(context.Context, string) (proxy.BranchBinding, error) {
		return proxy.BranchBinding{Key: "default", BranchID: "br-ephemeral-9"}, nil
	}

	ctrl := New(rt, cat, store, cfg, view.NewNotifier(), t.TempDir(), Options{
		BranchBindingReader: bindingReader,
		ReadyGrace:          time.Hour,
	})
	return &fixture{controller: ctrl, runtime: rt, catalog: cat, selections: store}
}

func (fx *fixture) selectExistingBranch(t *testing.T, projectID, branchID string) {
	t.Helper()
	_, err := fx.selections.SetProject(projectID)
	require.NoError(t, err)
	_, err = fx.selections.SetBranch(branchID)
	require.NoError(t, err)
}

func TestStart_ExistingBranch(t *testing.T) {
	fx := newFixture(t, nil)
	fx.selectExistingBranch(t, "proj-1", "br_123")

	require.NoError(t, fx.controller.Start(context.Background()))

	state := fx.controller.State()
	assert.Equal(t, StateConnected, state.State)
	assert.Equal(t, "br_123", state.CurrentBranchID)
	assert.Equal(t, config.DriverPostgres, state.Driver)
	assert.Equal(t, []string{"neondb"}, state.Databases)
	assert.Equal(t, []string{"neondb_owner"}, state.Roles)

	cfg := fx.runtime.lastStartCfg()
	assert.Equal(t, "br_123", cfg.BranchID)
	assert.Empty(t, cfg.ParentBranchID)
	assert.Equal(t, config.DriverPostgres, cfg.Driver)
}

func TestStart_NewBranchResolvesEphemeralID(t *testing.T) {
	fx := newFixture(t, nil)
	_, err := fx.selections.SetProject("proj-1")
	require.NoError(t, err)
	_, err = fx.selections.SetParentBranch("br_main")
	require.NoError(t, err)

	require.NoError(t, fx.controller.Start(context.Background()))

	state := fx.controller.State()
	assert.Equal(t, StateConnected, state.State)
	assert.Equal(t, "br-ephemeral-9", state.CurrentBranchID, "must come from the binding file, not the selected parent")

	cfg := fx.runtime.lastStartCfg()
	assert.Equal(t, "br_main", cfg.ParentBranchID)
	assert.Empty(t, cfg.BranchID)
	assert.NotEmpty(t, cfg.StateDir, "new mode needs the binding file mount")
}

func TestStart_Preconditions(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(t *testing.T, fx *fixture)
		wantErr error
	}{
		{
			name:    "no project",
			prepare: func(*testing.T, *fixture) {},
			wantErr: ErrNoProjectSelected,
		},
		{
			name: "no branch in existing mode",
			prepare: func(t *testing.T, fx *fixture) {
				_, err := fx.selections.SetProject("proj-1")
				require.NoError(t, err)
			},
			wantErr: ErrNoBranchSelected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fx := newFixture(t, nil)
			tt.prepare(t, fx)

			err := fx.controller.Start(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, StateDisconnected, fx.controller.State().State)
			assert.Zero(t, fx.runtime.calls(), "no container may be created")
		})
	}
}

func TestStart_PortConflictCreatesNothing(t *testing.T) {
	fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
		rt.portInUse = true
	})
	fx.selectExistingBranch(t, "proj-1", "br_123")

	err := fx.controller.Start(context.Background())
	assert.ErrorIs(t, err, proxy.ErrPortConflict)

	state := fx.controller.State()
	assert.Equal(t, StateDisconnected, state.State)
	assert.Zero(t, fx.runtime.calls(), "no container may be created on a port conflict")
}

func TestStart_NameConflictRetriedExactlyOnce(t *testing.T) {
	nameConflict := fmt.Errorf("%w: stale", proxy.ErrNameConflict)

	t.Run("retry succeeds after cleanup", func(t *testing.T) {
		fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
			rt.startFunc = func(proxy.StartConfig) (string, error) {
				if rt.calls() == 1 {
					return "", nameConflict
				}
				return "cid-retry", nil
			}
		})
		fx.selectExistingBranch(t, "proj-1", "br_123")

		require.NoError(t, fx.controller.Start(context.Background()))
		assert.Equal(t, StateConnected, fx.controller.State().State)
		assert.Equal(t, 2, fx.runtime.calls())
		assert.Equal(t, 1, fx.runtime.removeCalls, "stale container must be force-removed before the retry")
	})

	t.Run("persistent conflict surfaces after one retry", func(t *testing.T) {
		fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
			rt.startFunc = func(proxy.StartConfig) (string, error) {
				return "", nameConflict
			}
		})
		fx.selectExistingBranch(t, "proj-1", "br_123")

		err := fx.controller.Start(context.Background())
		assert.ErrorIs(t, err, proxy.ErrNameConflict)
		assert.Equal(t, 2, fx.runtime.calls(), "exactly one retry")
		assert.Equal(t, StateDisconnected, fx.controller.State().State)
	})
}

func TestStart_BindingTimeoutTearsContainerDown(t *testing.T) {
	fx := newFixture(t, nil)
	fx.controller.readBinding = func(context.Context, string) (proxy.BranchBinding, error) {
		return proxy.BranchBinding{}, proxy.ErrBranchFileTimeout
	}
	_, err := fx.selections.SetProject("proj-1")
	require.NoError(t, err)
	_, err = fx.selections.SetParentBranch("br_main")
	require.NoError(t, err)

	err = fx.controller.Start(context.Background())
	assert.ErrorIs(t, err, proxy.ErrBranchFileTimeout)

	state := fx.controller.State()
	assert.Equal(t, StateDisconnected, state.State)
	assert.Empty(t, state.CurrentBranchID)
	assert.GreaterOrEqual(t, fx.runtime.removeCalls, 1, "the orphaned container must be removed")
}

func TestStart_RejectedWhileStarting(t *testing.T) {
	blocker := make(chan struct{})
	fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
		rt.startBlocks = blocker
	})
	fx.selectExistingBranch(t, "proj-1", "br_123")

	done := make(chan error, 1)
	go func() { done <- fx.controller.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		return fx.runtime.calls() == 1
	}, time.Second, 5*time.Millisecond)

	err := fx.controller.Start(context.Background())
	assert.ErrorIs(t, err, ErrOperationInProgress)
	assert.Equal(t, 1, fx.runtime.calls(), "rejected start must not touch the engine")

	close(blocker)
	require.NoError(t, <-done)
	assert.Equal(t, StateConnected, fx.controller.State().State)
}

func TestStop_ClearsEverythingButSelection(t *testing.T) {
	fx := newFixture(t, nil)
	fx.selectExistingBranch(t, "proj-1", "br_123")
	require.NoError(t, fx.controller.Start(context.Background()))

	require.NoError(t, fx.controller.Stop(context.Background()))

	state := fx.controller.State()
	assert.Equal(t, StateDisconnected, state.State)
	assert.Empty(t, state.CurrentBranchID)
	assert.Nil(t, state.Databases)
	assert.Nil(t, state.Roles)

	sel := fx.selections.Get()
	assert.Equal(t, "proj-1", sel.ProjectID, "selection survives a stop")
	assert.Equal(t, "br_123", sel.BranchID)
}

func TestStop_IdempotentAgainstRemovedContainer(t *testing.T) {
	fx := newFixture(t, nil)
	fx.selectExistingBranch(t, "proj-1", "br_123")
	require.NoError(t, fx.controller.Start(context.Background()))

	require.NoError(t, fx.controller.Stop(context.Background()))
	require.NoError(t, fx.controller.Stop(context.Background()), "second stop against a gone container must not fail")
	assert.Equal(t, StateDisconnected, fx.controller.State().State)
}

func TestStop_DuringStartRunsAfterStartFinishes(t *testing.T) {
	blocker := make(chan struct{})
	fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
		rt.startBlocks = blocker
	})
	fx.selectExistingBranch(t, "proj-1", "br_123")

	done := make(chan error, 1)
	go func() { done <- fx.controller.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		return fx.runtime.calls() == 1
	}, time.Second, 5*time.Millisecond)

	err := fx.controller.Stop(context.Background())
	assert.ErrorIs(t, err, ErrOperationInProgress, "the caller gets an observable response")

	close(blocker)
	<-done

	// The superseded start must have run the stop path itself.
	require.Eventually(t, func() bool {
		return fx.controller.State().State == StateDisconnected
	}, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, fx.runtime.removeCalls, 1, "the container must not be leaked")
}

func TestStop_AbsorbedStopHoldsLockAgainstNewStart(t *testing.T) {
	startGate := make(chan struct{})
	stopGate := make(chan struct{})
	fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
		rt.startBlocks = startGate
		rt.stopBlocks = stopGate
	})
	fx.selectExistingBranch(t, "proj-1", "br_123")

	done := make(chan error, 1)
	go func() { done <- fx.controller.Start(context.Background()) }()

	require.Eventually(t, func() bool {
		return fx.runtime.calls() == 1
	}, time.Second, 5*time.Millisecond)

	err := fx.controller.Stop(context.Background())
	require.ErrorIs(t, err, ErrOperationInProgress)

	// Let the start finish its container call; its absorbed stop path is now
	// held in the engine's Stop.
	close(startGate)
	require.Eventually(t, func() bool {
		return fx.runtime.stops() == 1
	}, time.Second, 5*time.Millisecond)

	err = fx.controller.Start(context.Background())
	assert.ErrorIs(t, err, ErrOperationInProgress, "the absorbed stop still holds the operation lock")
	assert.Equal(t, 1, fx.runtime.calls(), "no second container may be created while the stop path runs")

	close(stopGate)
	require.NoError(t, <-done)
	assert.Equal(t, StateDisconnected, fx.controller.State().State)
	assert.Equal(t, 1, fx.runtime.calls())
}

func TestStart_RejectedWhileConnected(t *testing.T) {
	fx := newFixture(t, nil)
	fx.selectExistingBranch(t, "proj-1", "br_123")
	require.NoError(t, fx.controller.Start(context.Background()))

	err := fx.controller.Start(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyConnected)

	state := fx.controller.State()
	assert.Equal(t, StateConnected, state.State)
	assert.Equal(t, "br_123", state.CurrentBranchID)
	assert.Equal(t, 1, fx.runtime.calls(), "the live proxy must not be restarted")
	assert.Zero(t, fx.runtime.removeCalls)
}

func TestReconcile_AdoptsRunningContainer(t *testing.T) {
	fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
		rt.statusFunc = func() (proxy.Status, error) { return proxy.StatusRunning, nil }
		rt.inspectEnv = map[string]string{
			"NEON_PROJECT_ID": "proj-1",
			"BRANCH_ID":       "b1",
			"DRIVER":          "serverless",
		}
	})
	// Persisted selection deliberately disagrees with the running container.
	fx.selectExistingBranch(t, "proj-1", "br_other")

	require.NoError(t, fx.controller.Reconcile(context.Background()))

	state := fx.controller.State()
	assert.Equal(t, StateConnected, state.State)
	assert.Equal(t, "b1", state.CurrentBranchID, "the running container wins over the persisted selection")
	assert.Equal(t, "serverless", state.Driver)
}

func TestReconcile_UsesContainerProjectForCatalog(t *testing.T) {
	fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
		rt.statusFunc = func() (proxy.Status, error) { return proxy.StatusRunning, nil }
		rt.inspectEnv = map[string]string{
			"NEON_PROJECT_ID": "proj-live",
			"BRANCH_ID":       "b1",
		}
	})
	// The user switched projects after the container started.
	fx.selectExistingBranch(t, "proj-stale", "br_other")

	require.NoError(t, fx.controller.Reconcile(context.Background()))

	listed := fx.catalog.projectsListed()
	assert.Contains(t, listed, "proj-live", "catalog lookups must use the project the container serves")
	assert.NotContains(t, listed, "proj-stale")
}

func TestReconcile_NoContainerStaysDisconnected(t *testing.T) {
	fx := newFixture(t, nil)

	require.NoError(t, fx.controller.Reconcile(context.Background()))
	assert.Equal(t, StateDisconnected, fx.controller.State().State)
}

func TestReconcile_UnresolvableBranchTearsDown(t *testing.T) {
	fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
		rt.statusFunc = func() (proxy.Status, error) { return proxy.StatusRunning, nil }
		rt.inspectEnv = map[string]string{
			"NEON_PROJECT_ID":  "proj-1",
			"PARENT_BRANCH_ID": "br_main",
		}
	})
	// No binding file exists in the fixture's state dir, so the ephemeral
	// branch id is unknowable.
	require.NoError(t, fx.controller.Reconcile(context.Background()))

	assert.Equal(t, StateDisconnected, fx.controller.State().State)
	assert.GreaterOrEqual(t, fx.runtime.removeCalls, 1)
}

func TestSetDriver_DisconnectedOnlyPersists(t *testing.T) {
	fx := newFixture(t, nil)

	require.NoError(t, fx.controller.SetDriver(context.Background(), config.DriverServerless))

	assert.Equal(t, config.DriverServerless, fx.selections.Get().Driver)
	assert.Equal(t, StateDisconnected, fx.controller.State().State)
	assert.Zero(t, fx.runtime.calls())
}

func TestSetDriver_ConnectedRestartsAtomically(t *testing.T) {
	fx := newFixture(t, nil)
	fx.selectExistingBranch(t, "proj-1", "br_123")
	require.NoError(t, fx.controller.Start(context.Background()))

	sub := fx.controller.notifier.Subscribe()
	defer fx.controller.notifier.Unsubscribe(sub)

	require.NoError(t, fx.controller.SetDriver(context.Background(), config.DriverServerless))

	state := fx.controller.State()
	assert.Equal(t, StateConnected, state.State)
	assert.Equal(t, config.DriverServerless, state.Driver)
	assert.Equal(t, 2, fx.runtime.calls(), "a new container with the new driver")
	assert.Equal(t, config.DriverServerless, fx.runtime.lastStartCfg().Driver)

	for {
		select {
		case snapshot := <-sub.Channel:
			assert.NotEqual(t, string(StateDisconnected), snapshot.State,
				"callers must never observe a disconnected flash during a driver change")
			continue
		default:
		}
		break
	}
}

func TestSetDriver_RejectsUnknownDriver(t *testing.T) {
	fx := newFixture(t, nil)
	assert.Error(t, fx.controller.SetDriver(context.Background(), "mysql"))
}

func TestResetToParent(t *testing.T) {
	t.Run("refused when disconnected", func(t *testing.T) {
		fx := newFixture(t, nil)
		err := fx.controller.ResetToParent(context.Background())
		assert.ErrorIs(t, err, ErrNotConnected)
		assert.Zero(t, fx.catalog.resets())
	})

	t.Run("refused for root branch without issuing the call", func(t *testing.T) {
		fx := newFixture(t, func(_ *fakeRuntime, cat *fakeCatalog) {
			cat.branches["br_123"] = catalog.Branch{ID: "br_123", Name: "main"}
		})
		fx.selectExistingBranch(t, "proj-1", "br_123")
		require.NoError(t, fx.controller.Start(context.Background()))

		err := fx.controller.ResetToParent(context.Background())
		assert.ErrorIs(t, err, ErrNoParentBranch)
		assert.Zero(t, fx.catalog.resets(), "no destructive call may be issued")
	})

	t.Run("resets the running branch and leaves the container alone", func(t *testing.T) {
		fx := newFixture(t, func(_ *fakeRuntime, cat *fakeCatalog) {
			cat.branches["br_123"] = catalog.Branch{ID: "br_123", ParentID: "br_main"}
		})
		fx.selectExistingBranch(t, "proj-1", "br_123")
		require.NoError(t, fx.controller.Start(context.Background()))
		stopsBefore := fx.runtime.stopCalls

		require.NoError(t, fx.controller.ResetToParent(context.Background()))

		assert.Equal(t, 1, fx.catalog.resets())
		assert.Equal(t, stopsBefore, fx.runtime.stopCalls, "reset must not touch the container")
		assert.Equal(t, StateConnected, fx.controller.State().State)
		assert.Equal(t, "br_123", fx.controller.State().CurrentBranchID)
	})
}

func TestWatchdog_UnreadyContainerIsDemoted(t *testing.T) {
	fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
		rt.logLines = nil
		rt.closeLogs = true // log stream ends without the readiness marker
	})
	fx.controller.readyGrace = 50 * time.Millisecond
	fx.selectExistingBranch(t, "proj-1", "br_123")

	require.NoError(t, fx.controller.Start(context.Background()))

	require.Eventually(t, func() bool {
		state := fx.controller.State()
		return state.State == StateDisconnected && errors.Is(state.Err, proxy.ErrNotReady)
	}, 2*time.Second, 10*time.Millisecond, "an unready container must be torn down, not presented as connected")
	assert.GreaterOrEqual(t, fx.runtime.removeCalls, 1)
}

func TestPoller_DetectsVanishedContainer(t *testing.T) {
	var status proxy.Status = proxy.StatusRunning
	var statusMu sync.Mutex
	fx := newFixture(t, func(rt *fakeRuntime, _ *fakeCatalog) {
		rt.statusFunc = func() (proxy.Status, error) {
			statusMu.Lock()
			defer statusMu.Unlock()
			return status, nil
		}
	})
	fx.selectExistingBranch(t, "proj-1", "br_123")
	require.NoError(t, fx.controller.Start(context.Background()))
	require.Equal(t, StateConnected, fx.controller.State().State)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go fx.controller.RunPoller(ctx, 10*time.Millisecond)

	// Let the poller observe Running first, then kill the container.
	time.Sleep(50 * time.Millisecond)
	statusMu.Lock()
	status = proxy.StatusAbsent
	statusMu.Unlock()

	require.Eventually(t, func() bool {
		return fx.controller.State().State == StateDisconnected
	}, 2*time.Second, 10*time.Millisecond)

	sel := fx.selections.Get()
	assert.Equal(t, "br_123", sel.BranchID, "selection survives an external container loss")
}
