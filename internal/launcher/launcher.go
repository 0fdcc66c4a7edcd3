// Package launcher starts programs detached from the calling process.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/MrSnakeDoc/summon/internal/domain"
	"github.com/MrSnakeDoc/summon/internal/shell"
)

var (
	// ErrInvalidPath is returned for targets that are neither an app
	// identifier nor an existing file.
	ErrInvalidPath = errors.New("invalid program path")

	// ErrAppIdentifier is returned when an app identifier is launched on a
	// system without the Windows shell.
	ErrAppIdentifier = errors.New("app identifiers can only be started on windows")
)

// Starter starts a program by path or app identifier.
type Starter interface {
	Start(ctx context.Context, target string) error
}

// Launcher is the process-start capability used by the engine.
type Launcher struct {
	shell shell.Runner
}

// New creates a launcher. The runner is only used on Windows.
func New(runner shell.Runner) *Launcher {
	if runner == nil {
		runner = shell.DefaultPowerShell()
	}
	return &Launcher{shell: runner}
}

// Start launches target and returns once the process has been spawned.
// It does not wait for the program to exit.
func (l *Launcher) Start(ctx context.Context, target string) error {
	app := (&domain.ProgramCandidate{ExecutablePath: target}).IsAppIdentifier()

	if !app {
		info, err := os.Stat(target)
		if err != nil || info.IsDir() {
			return fmt.Errorf("%w: %s", ErrInvalidPath, target)
		}
	}

	return l.start(ctx, target, app)
}

var _ Starter = (*Launcher)(nil)
