package proxy

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ReadyLogMarker is the line fragment the proxy emits once it has finished
// bootstrapping and is accepting connections.
const ReadyLogMarker = "Neon Local is ready"

// DefaultReadyGrace bounds how long a freshly started container may run
// without emitting the readiness marker before it is treated as broken.
const DefaultReadyGrace = 60 * time.Second

// ErrNotReady indicates the container started but never signalled readiness
// within the grace window.
var ErrNotReady = errors.New("proxy: container never became ready")

// IsReadyLine reports whether a log line carries the readiness marker.
func IsReadyLine(line string) bool {
	return strings.Contains(line, ReadyLogMarker)
}

// AwaitReady consumes log lines until the readiness marker appears, the
// grace window elapses, or ctx is cancelled. A closed channel before the
// marker means the container exited and is reported as not ready.
func AwaitReady(ctx context.Context, lines <-chan string, grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultReadyGrace
	}
	timer := time.NewTimer(grace)
	defer timer.Stop()

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				return ErrNotReady
			}
			if IsReadyLine(line) {
				return nil
			}
		case <-timer.C:
			return ErrNotReady
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
