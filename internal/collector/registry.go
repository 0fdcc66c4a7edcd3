package collector

import (
	"os"
	"path/filepath"
	"strings"
)

// uninstallPath is the registry key installers register programs under.
const (
	uninstallPath      = `SOFTWARE\Microsoft\Windows\CurrentVersion\Uninstall`
	uninstallPathWOW64 = `SOFTWARE\WOW6432Node\Microsoft\Windows\CurrentVersion\Uninstall`
)

// Registry lists programs registered in the Windows Uninstall keys.
type Registry struct{}

// uninstallEntry is the subset of an Uninstall subkey the collector reads.
type uninstallEntry struct {
	DisplayName     string
	DisplayIcon     string
	InstallLocation string
}

// exePath picks the program an Uninstall entry refers to.
//
// DisplayIcon wins when it points at an existing .exe ("path,index" and
// quotes are stripped). Otherwise an .exe in InstallLocation whose stem
// contains, or is contained in, the directory name is preferred, then the
// first .exe found there. Empty when nothing qualifies.
func (e uninstallEntry) exePath() string {
	if e.DisplayIcon != "" {
		icon, _, _ := strings.Cut(e.DisplayIcon, ",")
		icon = strings.Trim(strings.TrimSpace(icon), `"`)
		if isExe(icon) && fileExists(icon) {
			return icon
		}
	}

	if e.InstallLocation == "" || !dirExists(e.InstallLocation) {
		return ""
	}

	entries, err := os.ReadDir(e.InstallLocation)
	if err != nil {
		return ""
	}

	dirName := strings.ToLower(filepath.Base(filepath.Clean(e.InstallLocation)))
	first := ""
	for _, entry := range entries {
		if entry.IsDir() || !isExe(entry.Name()) {
			continue
		}
		full := filepath.Join(e.InstallLocation, entry.Name())
		if first == "" {
			first = full
		}
		exeName := strings.ToLower(stem(entry.Name()))
		if strings.Contains(dirName, exeName) || strings.Contains(exeName, dirName) {
			return full
		}
	}

	return first
}
