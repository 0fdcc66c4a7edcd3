package collector

import (
	"context"
	"os"
	"path/filepath"
	"runtime"

	"github.com/MrSnakeDoc/summon/internal/domain"
)

// PathEnv lists the executables found directly inside the PATH directories.
type PathEnv struct {
	Dirs []string
	goos string
}

// NewPathEnv reads the directories from the PATH environment variable.
func NewPathEnv() *PathEnv {
	return &PathEnv{
		Dirs: filepath.SplitList(os.Getenv("PATH")),
		goos: runtime.GOOS,
	}
}

func (p *PathEnv) Collect(ctx context.Context) ([]domain.RawCandidate, error) {
	goos := p.goos
	if goos == "" {
		goos = runtime.GOOS
	}

	var candidates []domain.RawCandidate
	seenDirs := make(map[string]bool, len(p.Dirs))

	for _, dir := range p.Dirs {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}
		if dir == "" || seenDirs[dir] {
			continue
		}
		seenDirs[dir] = true

		entries, err := os.ReadDir(dir)
		if err != nil {
			// Missing or unreadable PATH entries are common
			continue
		}

		for _, entry := range entries {
			full := filepath.Join(dir, entry.Name())
			if !isExecutable(goos, full, entry) {
				continue
			}
			candidates = append(candidates, domain.RawCandidate{
				Name: stem(entry.Name()),
				Path: full,
			})
		}
	}

	return candidates, nil
}
