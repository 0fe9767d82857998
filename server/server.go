// Package server manages the lifecycle of blob-storage servers under
// test: ephemeral port allocation, process spawning, TCP readiness
// probing, and guaranteed termination.
package server

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"
)

const (
	// DefaultReadyTimeout bounds how long Start waits for a spawned
	// server to accept TCP connections.
	DefaultReadyTimeout = 30 * time.Second

	stopGracePeriod = 5 * time.Second
)

// Handle is an owned reference to a running server process, created by
// Start and consumed by Stop. The driver threads it explicitly through
// its control flow; there is no ambient shared handle.
type Handle struct {
	Label   string
	Port    int
	Account string
	Key     string

	cmd    *exec.Cmd
	stdout *bytes.Buffer
	stderr *bytes.Buffer

	done     chan struct{}
	waitErr  error
	stopOnce sync.Once
}

// Output returns the captured stdout and stderr of the server process.
// Only valid after Stop has returned.
func (h *Handle) Output() (stdout, stderr string) {
	return h.stdout.String(), h.stderr.String()
}

// StartupError reports a server that never became reachable within the
// readiness timeout. Captured process output is attached for
// postmortem diagnostics.
type StartupError struct {
	Label  string
	Stdout string
	Stderr string
}

func (e *StartupError) Error() string {
	return fmt.Sprintf("%s failed to start listening", e.Label)
}

// Diagnostics renders the captured process output for display.
func (e *StartupError) Diagnostics() string {
	var b strings.Builder

	fmt.Fprintf(&b, "---- %s stdout ----\n%s\n", e.Label, e.Stdout)
	fmt.Fprintf(&b, "---- %s stderr ----\n%s\n", e.Label, e.Stderr)

	return b.String()
}

// Manager starts and stops server-under-test processes. At most one
// server is expected to be live at a time; the driver runs passes
// strictly sequentially.
type Manager struct {
	logger       *slog.Logger
	readyTimeout time.Duration
}

// NewManager creates a Manager with the default readiness timeout.
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger:       logger,
		readyTimeout: DefaultReadyTimeout,
	}
}

// Start spawns the server described by spec, captures its output
// streams, and blocks until it accepts TCP connections on the spec's
// port. On readiness timeout the process is torn down and a
// *StartupError carrying the captured output is returned. The returned
// handle must be released with Stop on every exit path.
func (m *Manager) Start(ctx context.Context, spec LaunchSpec) (*Handle, error) {
	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...)
	cmd.Dir = spec.Dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	// On context cancellation (driver interrupt), terminate the child
	// gracefully and escalate to a kill after the grace period so no
	// orphaned server outlives the driver.
	cmd.Cancel = func() error {
		return cmd.Process.Signal(syscall.SIGTERM)
	}
	cmd.WaitDelay = stopGracePeriod

	m.logger.InfoContext(ctx, "starting server",
		slog.String("server", spec.Label),
		slog.String("command", spec.Command),
		slog.Int("port", spec.Port),
	)

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("spawn %s: %w", spec.Label, err)
	}

	h := &Handle{
		Label:   spec.Label,
		Port:    spec.Port,
		Account: AccountName,
		Key:     AccountKey,
		cmd:     cmd,
		stdout:  &stdout,
		stderr:  &stderr,
		done:    make(chan struct{}),
	}

	go func() {
		h.waitErr = cmd.Wait()
		close(h.done)
	}()

	if !WaitReady("127.0.0.1", spec.Port, m.readyTimeout) {
		m.Stop(h)

		return nil, &StartupError{
			Label:  spec.Label,
			Stdout: stdout.String(),
			Stderr: stderr.String(),
		}
	}

	m.logger.InfoContext(ctx, "server ready",
		slog.String("server", spec.Label),
		slog.Int("port", spec.Port),
	)

	return h, nil
}

// Stop terminates the server process: SIGTERM, a bounded grace period,
// then SIGKILL. Safe to call multiple times and on handles whose
// process has already exited; signal errors against a dead process are
// swallowed.
func (m *Manager) Stop(h *Handle) {
	if h == nil {
		return
	}

	h.stopOnce.Do(func() {
		_ = h.cmd.Process.Signal(syscall.SIGTERM)

		select {
		case <-h.done:
		case <-time.After(stopGracePeriod):
			_ = h.cmd.Process.Kill()
			<-h.done
		}

		m.logger.Info("server stopped", slog.String("server", h.Label))
	})
}
