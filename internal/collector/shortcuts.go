package collector

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/MrSnakeDoc/summon/internal/domain"
	"github.com/MrSnakeDoc/summon/internal/shell"
)

// DefaultShortcutDirs returns the start menu and desktop folders holding
// .lnk files.
func DefaultShortcutDirs() []string {
	var dirs []string
	if v := os.Getenv("ProgramData"); v != "" {
		dirs = append(dirs, filepath.Join(v, "Microsoft", "Windows", "Start Menu", "Programs"))
	}
	if v := os.Getenv("AppData"); v != "" {
		dirs = append(dirs, filepath.Join(v, "Microsoft", "Windows", "Start Menu", "Programs"))
	}
	if v := os.Getenv("Public"); v != "" {
		dirs = append(dirs, filepath.Join(v, "Desktop"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, "Desktop"))
	}
	return dirs
}

// Shortcuts resolves .lnk files through WScript.Shell and keeps the ones
// pointing at an existing .exe.
type Shortcuts struct {
	Shell shell.Runner
	Dirs  []string
}

func (s *Shortcuts) Collect(ctx context.Context) ([]domain.RawCandidate, error) {
	if !isWindows() {
		return nil, ErrUnsupported
	}

	var existing []string
	for _, dir := range s.Dirs {
		if dirExists(dir) {
			existing = append(existing, dir)
		}
	}
	if len(existing) == 0 {
		return nil, nil
	}

	output, err := s.Shell.Run(ctx, shortcutScript(existing))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve shortcuts: %w", err)
	}

	return parseShortcuts(output, fileExists), nil
}

func shortcutScript(dirs []string) string {
	quoted := make([]string, len(dirs))
	for i, dir := range dirs {
		quoted[i] = shell.Quote(dir)
	}

	return "$ws = New-Object -ComObject WScript.Shell; " +
		"Get-ChildItem -Path " + strings.Join(quoted, ",") + " -Filter *.lnk -Recurse -ErrorAction SilentlyContinue | " +
		"ForEach-Object { $s = $ws.CreateShortcut($_.FullName); [PSCustomObject]@{Name=$_.BaseName;Target=$s.TargetPath} } | " +
		"Where-Object { $_.Target -and $_.Target -like '*.exe' } | " +
		"ConvertTo-Csv -NoTypeInformation"
}

// parseShortcuts maps {Name, Target} rows, keeping .exe targets that exist.
func parseShortcuts(output string, exists func(string) bool) []domain.RawCandidate {
	rows := readCSV(output)
	candidates := make([]domain.RawCandidate, 0, len(rows))

	for _, row := range rows {
		name, target := row["Name"], row["Target"]
		if name == "" || target == "" || !isExe(target) || !exists(target) {
			continue
		}
		candidates = append(candidates, domain.RawCandidate{Name: name, Path: target})
	}

	return candidates
}
