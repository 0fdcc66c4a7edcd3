package domain

import (
	"sort"
	"strings"
)

const (
	// Scoring tiers, first matching rule wins.
	ScoreExactMatch             = 100
	ScorePrefixMatch            = 90
	ScorePhoneticPrefixMatch    = 85
	ScoreInitialsPrefixMatch    = 75
	ScoreSubstringMatch         = 60
	ScorePhoneticSubstringMatch = 55
	ScoreInitialsSubstringMatch = 50
	ScoreNoMatch                = 0

	// ScoreUsageWeight is added per recorded successful launch.
	ScoreUsageWeight = 2

	// FallbackThreshold: a primary top score below this triggers the
	// similarity fallback.
	FallbackThreshold = 50
)

// Transliterator converts a name into romanized readings.
// Full returns complete readings, Initials only the first letter of each
// syllable. Both return lower-case strings without separators, the most
// common reading first. Characters with several pronunciations yield
// several readings.
type Transliterator interface {
	Full(text string) []string
	Initials(text string) []string
}

// UsageCounter reports how many times a display name was launched.
type UsageCounter interface {
	Count(displayName string) int64
}

// Candidate is a program with its match scores.
type Candidate struct {
	Program      *ProgramCandidate
	LexicalScore int   // best per-name score
	UsageCount   int64 // successful launches for the display name
	TotalScore   int   // lexical + usage bonus
}

// Matcher scores queries against catalog entries.
// A nil transliterator disables the phonetic tiers.
type Matcher struct {
	phonetic Transliterator
}

// NewMatcher creates a matcher. Pass nil when no transliteration is available.
func NewMatcher(phonetic Transliterator) *Matcher {
	return &Matcher{phonetic: phonetic}
}

// Normalize lower-cases and trims s.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ScoreName scores a single name against the query.
func (m *Matcher) ScoreName(query, name string) int {
	query = Normalize(query)
	name = Normalize(name)
	if query == "" || name == "" {
		return ScoreNoMatch
	}

	if query == name {
		return ScoreExactMatch
	}
	if strings.HasPrefix(name, query) {
		return ScorePrefixMatch
	}

	var full, initials []string
	if m.phonetic != nil {
		full = m.phonetic.Full(name)
		if anyReading(full, query, strings.HasPrefix) {
			return ScorePhoneticPrefixMatch
		}
		initials = m.phonetic.Initials(name)
		if anyReading(initials, query, strings.HasPrefix) {
			return ScoreInitialsPrefixMatch
		}
	}

	if strings.Contains(name, query) {
		return ScoreSubstringMatch
	}

	if anyReading(full, query, strings.Contains) {
		return ScorePhoneticSubstringMatch
	}
	if anyReading(initials, query, strings.Contains) {
		return ScoreInitialsSubstringMatch
	}

	return ScoreNoMatch
}

func anyReading(readings []string, query string, match func(s, sub string) bool) bool {
	for _, r := range readings {
		if r != "" && match(r, query) {
			return true
		}
	}
	return false
}

// ScoreCandidate returns the best score over all names of the candidate.
func (m *Matcher) ScoreCandidate(query string, c *ProgramCandidate) int {
	if c == nil {
		return ScoreNoMatch
	}
	best := ScoreNoMatch
	for _, name := range c.AllNames() {
		if score := m.ScoreName(query, name); score > best {
			best = score
			if best == ScoreExactMatch {
				break
			}
		}
	}
	return best
}

// RankCandidates scores every program, adds the usage bonus and sorts by
// total score descending. Programs that do not match at all are left out.
// Ties keep catalog order.
func (m *Matcher) RankCandidates(query string, programs []*ProgramCandidate, usage UsageCounter) []*Candidate {
	candidates := make([]*Candidate, 0, len(programs))

	for _, program := range programs {
		lexical := m.ScoreCandidate(query, program)
		if lexical == ScoreNoMatch {
			continue
		}

		var count int64
		if usage != nil {
			count = usage.Count(program.DisplayName)
		}

		candidates = append(candidates, &Candidate{
			Program:      program,
			LexicalScore: lexical,
			UsageCount:   count,
			TotalScore:   lexical + int(count)*ScoreUsageWeight,
		})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].TotalScore > candidates[j].TotalScore
	})

	return candidates
}

// Search ranks the catalog for query and returns at most limit programs.
// When the best total score is below FallbackThreshold the similarity
// fallback is tried and, if it finds anything, replaces the ranking.
func (m *Matcher) Search(query string, programs []*ProgramCandidate, usage UsageCounter, limit int) []*ProgramCandidate {
	if Normalize(query) == "" || limit <= 0 {
		return nil
	}

	ranked := m.RankCandidates(query, programs, usage)

	if len(ranked) == 0 || ranked[0].TotalScore < FallbackThreshold {
		if fallback := FallbackSearch(query, programs, limit); len(fallback) > 0 {
			return fallback
		}
	}

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	results := make([]*ProgramCandidate, 0, len(ranked))
	for _, c := range ranked {
		results = append(results, c.Program)
	}
	return results
}

// Match returns the single best program for query, or nil.
func (m *Matcher) Match(query string, programs []*ProgramCandidate, usage UsageCounter) *ProgramCandidate {
	results := m.Search(query, programs, usage, 1)
	if len(results) == 0 {
		return nil
	}
	return results[0]
}
