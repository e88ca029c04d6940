package proxy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/docker/docker/client"
	"github.com/docker/docker/errdefs"
)

// Failure taxonomy for the container engine boundary. The controller keys
// its recovery policy off these: NameConflict gets one forced cleanup and
// retry, everything else is surfaced as-is.
var (
	// ErrDaemonUnreachable means the container engine itself is not
	// answering. Fatal for the current operation, no retry.
	ErrDaemonUnreachable = errors.New("container engine unreachable")

	// ErrPortConflict means the requested host port is already published by
	// another container. The user has to free the port.
	ErrPortConflict = errors.New("host port already in use")

	// ErrNameConflict means a container with our fixed name already exists,
	// usually a stale leftover from a crashed session.
	ErrNameConflict = errors.New("container name already in use")

	// ErrImageUnavailable means the proxy image is missing locally and
	// could not be pulled.
	ErrImageUnavailable = errors.New("proxy image unavailable")
)

// classifyEngineError maps a raw engine error onto the failure taxonomy,
// keeping the original error in the chain for log output.
func classifyEngineError(err error) error {
	if err == nil {
		return nil
	}

	if client.IsErrConnectionFailed(err) {
		return fmt.Errorf("%w: %v", ErrDaemonUnreachable, err)
	}

	msg := strings.ToLower(err.Error())
	switch {
	case errdefs.IsConflict(err) && strings.Contains(msg, "is already in use"):
		return fmt.Errorf("%w: %v", ErrNameConflict, err)
	case strings.Contains(msg, "port is already allocated"),
		strings.Contains(msg, "address already in use"):
		return fmt.Errorf("%w: %v", ErrPortConflict, err)
	case errdefs.IsNotFound(err) && strings.Contains(msg, "no such image"):
		return fmt.Errorf("%w: %v", ErrImageUnavailable, err)
	}
	return err
}
