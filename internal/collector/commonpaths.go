package collector

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/MrSnakeDoc/summon/internal/domain"
)

// DefaultScanDepth is how many directory levels CommonPaths descends.
const DefaultScanDepth = 2

// DefaultRoots returns the usual program install locations for this OS.
// Roots that do not exist are skipped at scan time.
func DefaultRoots() []string {
	home, _ := os.UserHomeDir()

	if runtime.GOOS == "windows" {
		roots := []string{
			os.Getenv("ProgramFiles"),
			os.Getenv("ProgramFiles(x86)"),
		}
		if local := os.Getenv("LocalAppData"); local != "" {
			roots = append(roots, filepath.Join(local, "Programs"))
		}
		if home != "" {
			roots = append(roots, filepath.Join(home, "AppData", "Local", "Programs"))
		}
		return roots
	}

	roots := []string{"/opt"}
	if home != "" {
		roots = append(roots, filepath.Join(home, ".local", "bin"))
	}
	return roots
}

// CommonPaths scans install roots a few levels deep for executables.
// Dot-directories are skipped. On Windows only .exe files count.
type CommonPaths struct {
	Roots []string
	Depth int
}

func (c *CommonPaths) Collect(ctx context.Context) ([]domain.RawCandidate, error) {
	depth := c.Depth
	if depth <= 0 {
		depth = DefaultScanDepth
	}

	var candidates []domain.RawCandidate
	seenRoots := make(map[string]bool, len(c.Roots))

	for _, root := range c.Roots {
		if root == "" || seenRoots[root] || !dirExists(root) {
			continue
		}
		seenRoots[root] = true

		found, err := scanDir(ctx, root, depth, 0)
		candidates = append(candidates, found...)
		if err != nil {
			return candidates, err
		}
	}

	return candidates, nil
}

func scanDir(ctx context.Context, dir string, maxDepth, depth int) ([]domain.RawCandidate, error) {
	if depth >= maxDepth {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil
	}

	var candidates []domain.RawCandidate
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())

		if entry.IsDir() {
			if strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			found, err := scanDir(ctx, full, maxDepth, depth+1)
			candidates = append(candidates, found...)
			if err != nil {
				return candidates, err
			}
			continue
		}

		if !scannable(full, entry) {
			continue
		}
		candidates = append(candidates, domain.RawCandidate{
			Name: stem(entry.Name()),
			Path: full,
		})
	}

	return candidates, nil
}

func scannable(path string, entry os.DirEntry) bool {
	if isWindows() {
		return isExe(entry.Name())
	}
	return isExecutable(runtime.GOOS, path, entry)
}
