package aliases

import (
	"strings"

	"github.com/MrSnakeDoc/summon/internal/domain"
)

// Table resolves the aliases of a candidate.
// A nil *Table has no aliases.
type Table struct {
	rules map[string][]string // lower-cased match -> names
}

// NewTable builds a lookup table from a parsed file.
// Rules without a match or without names are ignored; rules sharing a
// match accumulate their names in file order.
func NewTable(file *File) *Table {
	t := &Table{rules: make(map[string][]string)}
	if file == nil {
		return t
	}

	for _, rule := range file.Aliases {
		match := strings.ToLower(strings.TrimSpace(rule.Match))
		if match == "" {
			continue
		}
		for _, name := range rule.Names {
			if name = strings.TrimSpace(name); name != "" {
				t.rules[match] = append(t.rules[match], name)
			}
		}
	}

	return t
}

// Load reads path and builds a table. An empty path yields an empty table.
func Load(path string) (*Table, error) {
	if path == "" {
		return NewTable(nil), nil
	}
	file, err := NewLoader(path).Load()
	if err != nil {
		return nil, err
	}
	return NewTable(file), nil
}

// Len returns the number of distinct match keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// For returns the aliases for a candidate identified by display name and path.
func (t *Table) For(displayName, path string) []string {
	if t.Len() == 0 {
		return nil
	}

	var names []string
	for _, key := range matchKeys(displayName, path) {
		names = append(names, t.rules[key]...)
	}
	return names
}

// matchKeys lists the lower-cased forms a rule can match, without repeats.
func matchKeys(displayName, path string) []string {
	keys := make([]string, 0, 3)
	add := func(k string) {
		k = strings.ToLower(k)
		if k == "" {
			return
		}
		for _, existing := range keys {
			if existing == k {
				return
			}
		}
		keys = append(keys, k)
	}

	if path != "" {
		candidate := &domain.ProgramCandidate{ExecutablePath: path}
		names := candidate.AllNames()
		add(names[len(names)-1]) // file name
		add(path)
	}
	add(displayName)

	return keys
}
