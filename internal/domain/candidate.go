package domain

import (
	"path/filepath"
	"strings"
)

// Source identifies which collector discovered a candidate.
type Source string

const (
	SourceStartMenu Source = "startmenu"
	SourcePath      Source = "path"
	SourceScan      Source = "scan"
	SourceRegistry  Source = "registry"
	SourceShortcut  Source = "shortcut"
	SourceCache     Source = "cache"
)

// AppsFolderPrefix marks packaged (UWP) applications started through the shell.
const AppsFolderPrefix = `shell:AppsFolder\`

// RawCandidate is what a collector reports before it becomes part of the catalog.
type RawCandidate struct {
	Name     string
	Path     string
	Metadata map[string]string
}

// ProgramCandidate is one launchable program in the catalog.
//
// Candidates are created by collectors or decoded from the cache and are
// never mutated once merged into the catalog; a re-index replaces the slice.
type ProgramCandidate struct {
	// ─────────────────────────────
	// Identity
	// ─────────────────────────────

	// DisplayName is what the user sees and what usage stats are keyed by.
	DisplayName string

	// ExecutablePath is a filesystem path or an app identifier
	// (shell:AppsFolder\...). Compared case-insensitively, it is the dedup key.
	ExecutablePath string

	// ─────────────────────────────
	// Provenance & matching
	// ─────────────────────────────

	// Source is the collector that discovered this candidate.
	Source Source

	// Aliases are extra names the candidate answers to, in order.
	Aliases []string

	// Metadata carries collector specific details (appid, install_location).
	Metadata map[string]string
}

// Key returns the case-insensitive dedup key.
func (c *ProgramCandidate) Key() string {
	return strings.ToLower(c.ExecutablePath)
}

// AllNames returns every name the candidate can be matched against:
// display name, aliases, the path's file stem and file name.
// Order is deterministic, duplicates and blanks are removed.
func (c *ProgramCandidate) AllNames() []string {
	names := make([]string, 0, len(c.Aliases)+3)
	seen := make(map[string]bool, len(c.Aliases)+3)

	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		names = append(names, name)
	}

	add(c.DisplayName)
	for _, alias := range c.Aliases {
		add(alias)
	}
	if c.ExecutablePath != "" {
		base := fileName(c.ExecutablePath)
		add(strings.TrimSuffix(base, filepath.Ext(base)))
		add(base)
	}

	return names
}

// IsAppIdentifier reports whether the path is a shell app identifier
// rather than a file on disk.
func (c *ProgramCandidate) IsAppIdentifier() bool {
	return strings.HasPrefix(strings.ToLower(c.ExecutablePath), strings.ToLower(AppsFolderPrefix))
}

// fileName returns the last element of a path using both separators, so
// Windows paths behave the same on every OS.
func fileName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}
