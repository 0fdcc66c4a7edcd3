//go:build windows

package collector

import (
	"context"

	"golang.org/x/sys/windows/registry"

	"github.com/MrSnakeDoc/summon/internal/domain"
)

var uninstallRoots = []struct {
	root registry.Key
	path string
}{
	{registry.LOCAL_MACHINE, uninstallPath},
	{registry.LOCAL_MACHINE, uninstallPathWOW64},
	{registry.CURRENT_USER, uninstallPath},
}

func (r *Registry) Collect(ctx context.Context) ([]domain.RawCandidate, error) {
	var candidates []domain.RawCandidate

	for _, u := range uninstallRoots {
		if err := ctx.Err(); err != nil {
			return candidates, err
		}

		key, err := registry.OpenKey(u.root, u.path, registry.ENUMERATE_SUB_KEYS|registry.QUERY_VALUE)
		if err != nil {
			continue
		}
		names, err := key.ReadSubKeyNames(-1)
		if err != nil {
			key.Close()
			continue
		}

		for _, name := range names {
			entry, ok := readUninstallEntry(key, name)
			if !ok {
				continue
			}
			path := entry.exePath()
			if path == "" {
				continue
			}
			candidates = append(candidates, domain.RawCandidate{
				Name:     entry.DisplayName,
				Path:     path,
				Metadata: map[string]string{"install_location": entry.InstallLocation},
			})
		}
		key.Close()
	}

	return candidates, nil
}

func readUninstallEntry(parent registry.Key, name string) (uninstallEntry, bool) {
	sub, err := registry.OpenKey(parent, name, registry.QUERY_VALUE)
	if err != nil {
		return uninstallEntry{}, false
	}
	defer sub.Close()

	entry := uninstallEntry{
		DisplayName:     readString(sub, "DisplayName"),
		DisplayIcon:     readString(sub, "DisplayIcon"),
		InstallLocation: readString(sub, "InstallLocation"),
	}
	return entry, entry.DisplayName != ""
}

// readString returns the string value or "" when missing or not a string.
func readString(key registry.Key, name string) string {
	value, _, err := key.GetStringValue(name)
	if err != nil {
		return ""
	}
	return value
}
