package helpers

import (
	"unicode"

	"github.com/coregx/ahocorasick"
)

// nonASCII stands in for every rune above 0x7F in the byte projection of the input.
// None of the patterns contain it so it never produces a false hit.
const nonASCII = 0xFF

// MultiStringSearcher finds the leftmost position where any of a set of
// strings begins. ASCII-only pattern sets run through an Aho-Corasick automaton
// over a byte projection of the input; anything else falls back to
// StringSearchValues.
type MultiStringSearcher struct {
	vals       [][]rune
	ignoreCase bool
	maxLen     int

	auto     *ahocorasick.Automaton
	fallback StringSearchValues
}

// NewMultiStringSearcher builds a searcher over vals. Empty values are ignored.
func NewMultiStringSearcher(vals [][]rune, ignoreCase bool) *MultiStringSearcher {
	m := &MultiStringSearcher{ignoreCase: ignoreCase}
	asciiOnly := true
	for _, v := range vals {
		if len(v) == 0 {
			continue
		}
		if ignoreCase {
			v = toLowerRunes(v)
		}
		m.vals = append(m.vals, v)
		if len(v) > m.maxLen {
			m.maxLen = len(v)
		}
		for _, c := range v {
			if c > unicode.MaxASCII {
				asciiOnly = false
			}
		}
	}

	if asciiOnly && len(m.vals) > 0 {
		builder := ahocorasick.NewBuilder()
		for _, v := range m.vals {
			b := make([]byte, len(v))
			for i, c := range v {
				b[i] = byte(c)
			}
			builder.AddPattern(b)
		}
		if auto, err := builder.Build(); err == nil {
			m.auto = auto
		}
	}
	if m.auto == nil {
		m.fallback = NewStringSearchValues(m.vals, false)
	}
	return m
}

// UsesAutomaton reports whether searches run through Aho-Corasick
func (m *MultiStringSearcher) UsesAutomaton() bool {
	return m.auto != nil
}

// IndexOfAny returns the first index in "in" where one of the strings starts, or -1
func (m *MultiStringSearcher) IndexOfAny(in []rune) int {
	if len(m.vals) == 0 {
		return -1
	}
	if m.auto == nil {
		if m.ignoreCase {
			return m.indexIgnoreCaseSlow(in)
		}
		return m.fallback.IndexOfAny(in)
	}

	hay := m.project(in)
	pos := 0
	for pos <= len(hay) {
		hit := m.auto.Find(hay, pos)
		if hit == nil {
			return -1
		}
		// the automaton may report the earliest-ending match rather than the
		// leftmost-starting one, so re-check the window that could hold an
		// earlier start.
		from := hit.End - m.maxLen
		if from < pos {
			from = pos
		}
		for i := from; i <= hit.Start; i++ {
			if m.startsAt(hay, i) {
				return i
			}
		}
		pos = hit.Start + 1
	}
	return -1
}

func (m *MultiStringSearcher) startsAt(hay []byte, i int) bool {
	for _, v := range m.vals {
		if i+len(v) > len(hay) {
			continue
		}
		ok := true
		for j, c := range v {
			if hay[i+j] != byte(c) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func (m *MultiStringSearcher) project(in []rune) []byte {
	hay := make([]byte, len(in))
	for i, c := range in {
		switch {
		case c > unicode.MaxASCII:
			// the Kelvin sign folds to 'k' and the long s to 's'
			if m.ignoreCase && (c == '\u212A' || c == '\u017F') {
				if c == '\u212A' {
					hay[i] = 'k'
				} else {
					hay[i] = 's'
				}
				continue
			}
			hay[i] = nonASCII
		case m.ignoreCase && 'A' <= c && c <= 'Z':
			hay[i] = byte(c + ('a' - 'A'))
		default:
			hay[i] = byte(c)
		}
	}
	return hay
}

func (m *MultiStringSearcher) indexIgnoreCaseSlow(in []rune) int {
	for i := range in {
		for _, v := range m.vals {
			if StartsWithIgnoreCase(in[i:], v) {
				return i
			}
		}
	}
	return -1
}
