package domain

import (
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
)

// FallbackMinSimilarity is the lowest similarity a name needs to be kept.
const FallbackMinSimilarity = 60

// FallbackSearch ranks every known name by approximate similarity to the
// query. Each name maps to the first candidate that carries it. Names below
// FallbackMinSimilarity are dropped and each candidate appears once.
func FallbackSearch(query string, programs []*ProgramCandidate, limit int) []*ProgramCandidate {
	if limit <= 0 {
		return nil
	}

	type scoredName struct {
		name  string
		score int
	}

	owner := make(map[string]*ProgramCandidate)
	var scored []scoredName

	for _, program := range programs {
		for _, name := range program.AllNames() {
			if _, ok := owner[name]; ok {
				continue
			}
			owner[name] = program
			scored = append(scored, scoredName{name: name, score: Similarity(query, name)})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	// Dedup by path key rather than identity so equal entries from
	// different merges collapse as well.
	seen := make(map[string]bool)
	results := make([]*ProgramCandidate, 0, limit)
	for _, s := range scored {
		if s.score < FallbackMinSimilarity {
			break
		}
		program := owner[s.name]
		if seen[program.Key()] {
			continue
		}
		seen[program.Key()] = true
		results = append(results, program)
		if len(results) == limit {
			break
		}
	}

	return results
}

// Similarity returns a 0-100 weighted similarity between two strings.
// It takes the best of a plain ratio, a token-sort ratio and a token-set
// ratio. When lengths differ a lot the partial (best window) variants are
// used instead and scaled down.
func Similarity(a, b string) int {
	a = processText(a)
	b = processText(b)
	if a == "" || b == "" {
		return 0
	}

	base := ratio(a, b)

	la, lb := len([]rune(a)), len([]rune(b))
	longer, shorter := max(la, lb), min(la, lb)
	lenRatio := float64(longer) / float64(shorter)

	if lenRatio < 1.5 {
		tokenSort := float64(ratio(sortTokens(a), sortTokens(b))) * 0.95
		tokenSet := float64(tokenSetRatio(a, b, ratio)) * 0.95
		return roundScore(maxFloat(float64(base), tokenSort, tokenSet))
	}

	partialScale := 0.9
	if lenRatio > 8 {
		partialScale = 0.6
	}
	partial := float64(partialRatio(a, b)) * partialScale
	partialTokenSort := float64(partialRatio(sortTokens(a), sortTokens(b))) * 0.95 * partialScale
	partialTokenSet := float64(tokenSetRatio(a, b, partialRatio)) * 0.95 * partialScale

	return roundScore(maxFloat(float64(base), partial, partialTokenSort, partialTokenSet))
}

// tokenSetRatio compares the shared tokens against each side's shared plus
// remaining tokens, so extra words on one side cost little.
func tokenSetRatio(a, b string, score func(a, b string) int) int {
	ta, tb := tokenSet(a), tokenSet(b)

	var common, onlyA, onlyB []string
	for tok := range ta {
		if tb[tok] {
			common = append(common, tok)
		} else {
			onlyA = append(onlyA, tok)
		}
	}
	for tok := range tb {
		if !ta[tok] {
			onlyB = append(onlyB, tok)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	t0 := strings.Join(common, " ")
	t1 := strings.TrimSpace(t0 + " " + strings.Join(onlyA, " "))
	t2 := strings.TrimSpace(t0 + " " + strings.Join(onlyB, " "))

	best := score(t1, t2)
	if t0 != "" {
		best = max(best, score(t0, t1), score(t0, t2))
	}
	return best
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// ratio is 100 * (1 - distance / combined length), distance counted in runes.
func ratio(a, b string) int {
	total := len([]rune(a)) + len([]rune(b))
	if total == 0 {
		return 0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return roundScore(100 * float64(total-dist) / float64(total))
}

// partialRatio compares the shorter string with every same-length window of
// the longer one and keeps the best ratio.
func partialRatio(a, b string) int {
	short, long := []rune(a), []rune(b)
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == 0 {
		return 0
	}

	best := 0
	s := string(short)
	for i := 0; i+len(short) <= len(long); i++ {
		r := ratio(s, string(long[i:i+len(short)]))
		if r > best {
			best = r
			if best == 100 {
				break
			}
		}
	}
	return best
}

// processText lower-cases, replaces non alphanumerics with spaces and trims.
func processText(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

func sortTokens(s string) string {
	tokens := strings.Fields(s)
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

func roundScore(f float64) int {
	return int(f + 0.5)
}

func maxFloat(values ...float64) float64 {
	best := values[0]
	for _, v := range values[1:] {
		if v > best {
			best = v
		}
	}
	return best
}
