//go:build !windows

package launcher

import (
	"context"
	"fmt"
	"os/exec"
	"syscall"
)

// start execs the target in a new session so it outlives summon and is
// detached from the controlling terminal.
func (l *Launcher) start(_ context.Context, target string, app bool) error {
	if app {
		return ErrAppIdentifier
	}

	// Not CommandContext: the child must survive the caller's context.
	cmd := exec.Command(target)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true, // Create new session
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", target, err)
	}

	// Reap the child so it does not linger as a zombie while summon runs
	go func() { _ = cmd.Wait() }()
	return nil
}
