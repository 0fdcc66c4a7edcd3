package domain

// IndexState tracks how much of the catalog has been built.
// States only move forward: NotIndexed -> QuickIndexed -> FullIndexed.
type IndexState int

const (
	NotIndexed IndexState = iota
	QuickIndexed
	FullIndexed
)

func (s IndexState) String() string {
	switch s {
	case NotIndexed:
		return "not_indexed"
	case QuickIndexed:
		return "quick_indexed"
	case FullIndexed:
		return "full_indexed"
	default:
		return "unknown"
	}
}

// Advance returns the state after attempting a transition to next.
// The second value is false when the transition would not move forward.
func (s IndexState) Advance(next IndexState) (IndexState, bool) {
	if next <= s || next > FullIndexed {
		return s, false
	}
	return next, true
}
