// Package proxy wraps the container engine for the single named Neon Local
// proxy container: create/start/stop/remove, state inspection, log tailing,
// and published-port enumeration. It knows nothing about connection
// lifecycle; the controller owns all policy.
package proxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/docker/go-connections/nat"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"

	"neonlocal/pkg/logging"
)

const (
	// ContainerName is the fixed name of the proxy container. There is at
	// most one proxy at a time; the name is the identity.
	ContainerName = "neon-local-connect"

	// guestPort is the port the proxy listens on inside the container.
	guestPort = "5432/tcp"

	// branchesMountPath is where the proxy expects its state directory; the
	// .branches file appears here once an ephemeral branch is provisioned.
	branchesMountPath = "/tmp/.neon_local"
)

// Container environment keys consumed by the proxy image.
const (
	envAPIKey         = "NEON_API_KEY"
	envProjectID      = "NEON_PROJECT_ID"
	envBranchID       = "BRANCH_ID"
	envParentBranchID = "PARENT_BRANCH_ID"
	envDriver         = "DRIVER"
	envDeleteBranch   = "DELETE_BRANCH"
)

// Status is the observed state of the named proxy container.
type Status string

const (
	StatusRunning Status = "Running"
	StatusStopped Status = "Stopped"
	StatusAbsent  Status = "Absent"
)

// StartConfig describes the container to create. Exactly one of BranchID and
// ParentBranchID must be set: the former connects to an existing branch, the
// latter has the proxy provision an ephemeral branch off the parent.
type StartConfig struct {
	Image          string
	APIKey         string
	ProjectID      string
	BranchID       string
	ParentBranchID string
	Driver         string
	DeleteBranch   bool
	HostPort       int

	// StateDir is a host directory bind-mounted into the container for the
	// branch binding file. Empty disables the mount (existing-branch mode
	// does not need it).
	StateDir string
}

// DockerAPI is the subset of the engine client the runtime needs. *client.Client
// satisfies it; tests substitute a fake.
type DockerAPI interface {
	ContainerCreate(ctx context.Context, config *container.Config, hostConfig *container.HostConfig, networkingConfig *network.NetworkingConfig, platform *ocispec.Platform, containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerStop(ctx context.Context, containerID string, options container.StopOptions) error
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
	ContainerInspect(ctx context.Context, containerID string) (types.ContainerJSON, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]types.Container, error)
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ImagePull(ctx context.Context, refStr string, options image.PullOptions) (io.ReadCloser, error)
	Ping(ctx context.Context) (types.Ping, error)
}

// Runtime is the container runtime adapter for the proxy container.
type Runtime struct {
	api DockerAPI
}

// NewRuntime connects to the local container engine via the standard
// environment (DOCKER_HOST etc.).
func NewRuntime() (*Runtime, error) {
	api, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create container engine client: %w", err)
	}
	return &Runtime{api: api}, nil
}

// NewRuntimeWithAPI creates a runtime over an explicit engine API. Used by
// tests.
func NewRuntimeWithAPI(api DockerAPI) *Runtime {
	return &Runtime{api: api}
}

// Status reports whether the named proxy container is running, stopped, or
// absent.
func (r *Runtime) Status(ctx context.Context) (Status, error) {
	info, err := r.api.ContainerInspect(ctx, ContainerName)
	if err != nil {
		if errdefs.IsNotFound(err) {
			return StatusAbsent, nil
		}
		return StatusAbsent, classifyEngineError(err)
	}
	if info.State != nil && info.State.Running {
		return StatusRunning, nil
	}
	return StatusStopped, nil
}

// Start creates and starts the proxy container, returning its id. On a
// missing image it attempts one pull before giving up. Name conflicts are
// NOT resolved here; the controller decides whether to clean up and retry.
func (r *Runtime) Start(ctx context.Context, cfg StartConfig) (string, error) {
	env, err := buildEnv(cfg)
	if err != nil {
		return "", err
	}

	hostPort := cfg.HostPort
	if hostPort == 0 {
		hostPort = 5432
	}

	containerCfg := &container.Config{
		Image: cfg.Image,
		Env:   env,
		ExposedPorts: nat.PortSet{
			nat.Port(guestPort): struct{}{},
		},
	}
	hostCfg := &container.HostConfig{
		PortBindings: nat.PortMap{
			nat.Port(guestPort): []nat.PortBinding{
				{HostIP: "127.0.0.1", HostPort: strconv.Itoa(hostPort)},
			},
		},
	}
	if cfg.StateDir != "" {
		hostCfg.Binds = []string{cfg.StateDir + ":" + branchesMountPath}
	}

	created, err := r.api.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, ContainerName)
	if err != nil {
		classified := classifyEngineError(err)
		if !errors.Is(classified, ErrImageUnavailable) {
			return "", classified
		}
		// Image missing locally: pull once, then retry the create.
		if pullErr := r.ensureImage(ctx, cfg.Image); pullErr != nil {
			return "", pullErr
		}
		created, err = r.api.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, ContainerName)
		if err != nil {
			return "", classifyEngineError(err)
		}
	}

	if err := r.api.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return "", classifyEngineError(err)
	}

	logging.Debug("ProxyRuntime", "Started container %s (%s)", ContainerName, created.ID)
	return created.ID, nil
}

// Stop stops the proxy container. A container that is already gone counts
// as stopped.
func (r *Runtime) Stop(ctx context.Context) error {
	if err := r.api.ContainerStop(ctx, ContainerName, container.StopOptions{}); err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		return classifyEngineError(err)
	}
	return nil
}

// Remove removes the proxy container. "No such container" and "removal
// already in progress" both count as success.
func (r *Runtime) Remove(ctx context.Context, force bool) error {
	err := r.api.ContainerRemove(ctx, ContainerName, container.RemoveOptions{Force: force})
	if err != nil {
		if errdefs.IsNotFound(err) {
			return nil
		}
		if errdefs.IsConflict(err) && strings.Contains(strings.ToLower(err.Error()), "removal") {
			return nil
		}
		return classifyEngineError(err)
	}
	return nil
}

// TailLogs follows the container's log stream, emitting one line at a time
// until the container exits or ctx is cancelled. The channel is closed when
// the stream ends.
func (r *Runtime) TailLogs(ctx context.Context) (<-chan string, error) {
	reader, err := r.api.ContainerLogs(ctx, ContainerName, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return nil, classifyEngineError(err)
	}

	lines := make(chan string, 64)

	// Engine log streams are multiplexed when the container has no TTY;
	// stdcopy demultiplexes into a single pipe we scan line by line.
	pr, pw := io.Pipe()
	go func() {
		_, copyErr := stdcopy.StdCopy(pw, pw, reader)
		pw.CloseWithError(copyErr)
		reader.Close()
	}()
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(pr)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				pr.Close()
				return
			}
		}
	}()

	return lines, nil
}

// PortInUse reports whether another running container of this engine already
// publishes the given host port. The proxy container itself is skipped so a
// restart does not trip over its own binding.
func (r *Runtime) PortInUse(ctx context.Context, port int) (bool, error) {
	containers, err := r.api.ContainerList(ctx, container.ListOptions{})
	if err != nil {
		return false, classifyEngineError(err)
	}
	for _, c := range containers {
		if isProxyContainer(c) {
			continue
		}
		for _, p := range c.Ports {
			if int(p.PublicPort) == port {
				return true, nil
			}
		}
	}
	return false, nil
}

// InspectEnv returns the environment of the named container as a map. Used
// during activation reconciliation to recover which branch a surviving
// container is actually serving.
func (r *Runtime) InspectEnv(ctx context.Context) (map[string]string, error) {
	info, err := r.api.ContainerInspect(ctx, ContainerName)
	if err != nil {
		return nil, classifyEngineError(err)
	}
	env := make(map[string]string)
	if info.Config != nil {
		for _, kv := range info.Config.Env {
			if k, v, ok := strings.Cut(kv, "="); ok {
				env[k] = v
			}
		}
	}
	return env, nil
}

// Ping checks that the engine daemon is reachable.
func (r *Runtime) Ping(ctx context.Context) error {
	if _, err := r.api.Ping(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrDaemonUnreachable, err)
	}
	return nil
}

func (r *Runtime) ensureImage(ctx context.Context, ref string) error {
	logging.Info("ProxyRuntime", "Pulling image %s", ref)
	reader, err := r.api.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("%w: pull failed: %v", ErrImageUnavailable, err)
	}
	defer reader.Close()
	// The pull only completes once the progress stream is drained.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		return fmt.Errorf("%w: pull interrupted: %v", ErrImageUnavailable, err)
	}
	return nil
}

func buildEnv(cfg StartConfig) ([]string, error) {
	if cfg.BranchID != "" && cfg.ParentBranchID != "" {
		return nil, fmt.Errorf("branch id and parent branch id are mutually exclusive")
	}
	if cfg.BranchID == "" && cfg.ParentBranchID == "" {
		return nil, fmt.Errorf("either a branch id or a parent branch id is required")
	}

	env := []string{
		envAPIKey + "=" + cfg.APIKey,
		envProjectID + "=" + cfg.ProjectID,
		envDriver + "=" + cfg.Driver,
	}
	if cfg.BranchID != "" {
		env = append(env, envBranchID+"="+cfg.BranchID)
	} else {
		env = append(env, envParentBranchID+"="+cfg.ParentBranchID)
		if cfg.DeleteBranch {
			env = append(env, envDeleteBranch+"=true")
		}
	}
	return env, nil
}

func isProxyContainer(c types.Container) bool {
	for _, name := range c.Names {
		if strings.TrimPrefix(name, "/") == ContainerName {
			return true
		}
	}
	return false
}

// BranchIDFromEnv extracts the branch identity a running container was
// started with: the concrete branch id in existing mode, or empty when the
// container was started in parent (ephemeral) mode.
func BranchIDFromEnv(env map[string]string) (branchID, parentBranchID string) {
	return env[envBranchID], env[envParentBranchID]
}

// DriverFromEnv extracts the driver a running container was started with.
func DriverFromEnv(env map[string]string) string {
	return env[envDriver]
}

// ProjectIDFromEnv extracts the project a running container was started
// against.
func ProjectIDFromEnv(env map[string]string) string {
	return env[envProjectID]
}
