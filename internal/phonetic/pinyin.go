// Package phonetic turns program names into romanized readings so that
// "jsb" or "jishiben" can find 记事本.
package phonetic

import (
	"strings"
	"sync"

	"github.com/mozillazg/go-pinyin"
)

// MaxReadings caps how many heteronym combinations one name expands to.
const MaxReadings = 16

// Pinyin transliterates Han characters to pinyin. Non-Han runes are kept
// as-is. Characters with several pronunciations produce one reading per
// combination, the dictionary default first, so 音乐 reads both "yinle"
// and "yinyue".
// Results are memoized; the catalog rescoring the same names on every
// query is the common case.
type Pinyin struct {
	fullArgs     pinyin.Args
	initialsArgs pinyin.Args

	full     sync.Map // string -> []string
	initials sync.Map // string -> []string
}

// NewPinyin creates a pinyin transliterator.
func NewPinyin() *Pinyin {
	keep := func(r rune, _ pinyin.Args) []string {
		return []string{string(r)}
	}

	full := pinyin.NewArgs()
	full.Style = pinyin.Normal
	full.Heteronym = true
	full.Fallback = keep

	initials := pinyin.NewArgs()
	initials.Style = pinyin.FirstLetter
	initials.Heteronym = true
	initials.Fallback = keep

	return &Pinyin{fullArgs: full, initialsArgs: initials}
}

// Full returns the complete lower-case readings without separators.
func (p *Pinyin) Full(text string) []string {
	return p.convert(&p.full, text, p.fullArgs)
}

// Initials returns the first letter of each syllable, lower-case.
func (p *Pinyin) Initials(text string) []string {
	return p.convert(&p.initials, text, p.initialsArgs)
}

func (p *Pinyin) convert(memo *sync.Map, text string, args pinyin.Args) []string {
	if text == "" {
		return nil
	}
	if v, ok := memo.Load(text); ok {
		return v.([]string)
	}

	readings := []string{""}
	for _, syllables := range pinyin.Pinyin(text, args) {
		readings = expand(readings, distinct(syllables))
	}

	memo.Store(text, readings)
	return readings
}

// expand appends every option to every reading. The default option is
// applied to all readings first so readings[0] stays the default one;
// alternatives are added until MaxReadings is reached.
func expand(readings, options []string) []string {
	if len(options) == 0 {
		return readings
	}

	next := make([]string, 0, min(len(readings)*len(options), MaxReadings))
	for _, r := range readings {
		next = append(next, r+options[0])
	}
	for _, option := range options[1:] {
		for _, r := range readings {
			if len(next) >= MaxReadings {
				return next
			}
			next = append(next, r+option)
		}
	}
	return next
}

func distinct(syllables []string) []string {
	out := make([]string, 0, len(syllables))
	for _, s := range syllables {
		s = strings.ToLower(s)
		if s == "" {
			continue
		}
		dup := false
		for _, o := range out {
			if o == s {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, s)
		}
	}
	return out
}
