package domain

// Merge concatenates existing and incoming, keeping the first candidate seen
// for each case-insensitive path key. Later duplicates are dropped as a whole,
// fields are never merged, so earlier phases win over later discoveries.
// Candidates with an empty path are dropped.
func Merge(existing, incoming []*ProgramCandidate) []*ProgramCandidate {
	merged := make([]*ProgramCandidate, 0, len(existing)+len(incoming))
	seen := make(map[string]bool, len(existing)+len(incoming))

	for _, list := range [][]*ProgramCandidate{existing, incoming} {
		for _, c := range list {
			if c == nil || c.ExecutablePath == "" {
				continue
			}
			key := c.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, c)
		}
	}

	return merged
}
