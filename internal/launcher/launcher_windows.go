//go:build windows

package launcher

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/summon/internal/shell"
)

// start hands the target to Start-Process so the Windows shell resolves
// app identifiers and file associations.
func (l *Launcher) start(ctx context.Context, target string, app bool) error {
	script := "Start-Process -FilePath " + shell.Quote(target)
	if app {
		script = "Start-Process " + shell.Quote(target)
	}

	if _, err := l.shell.Run(ctx, script); err != nil {
		return fmt.Errorf("failed to start %s: %w", target, err)
	}
	return nil
}
