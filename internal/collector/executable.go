package collector

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// windowsExecutables are the extensions PATH lookups treat as programs.
var windowsExecutables = map[string]bool{
	".exe": true,
	".bat": true,
	".cmd": true,
}

// isExe reports whether name ends in .exe, case-insensitively.
func isExe(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".exe")
}

// isExecutable reports whether the entry at path is a program on goos.
// On Windows only the extension counts; elsewhere the file must be regular
// and carry an exec bit. Symlinks are followed.
func isExecutable(goos, path string, entry fs.DirEntry) bool {
	if goos == "windows" {
		return windowsExecutables[strings.ToLower(filepath.Ext(entry.Name()))] && !entry.IsDir()
	}

	info, err := entry.Info()
	if err != nil {
		return false
	}
	if info.Mode()&fs.ModeSymlink != 0 {
		if info, err = os.Stat(path); err != nil {
			return false
		}
	}
	return info.Mode().IsRegular() && info.Mode().Perm()&0o111 != 0
}

// stem returns the file name without its extension.
func stem(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}

func isWindows() bool {
	return runtime.GOOS == "windows"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
