package helpers

import (
	"math"
	"slices"
	"unicode"
)

// asciiSet has one bit per ascii rune
type asciiSet [2]uint64

func (a *asciiSet) add(c rune) {
	a[c/64] |= 1 << (c % 64)
}

func (a *asciiSet) has(c rune) bool {
	if c > unicode.MaxASCII || c < 0 {
		return false
	}
	return a[c/64]&(1<<(c%64)) != 0
}

// RuneSearchValues is a precomputed lookup over a fixed set of runes. Ascii
// members are answered from a bitmap, the rest by a scan of the originals.
type RuneSearchValues struct {
	vals     []rune
	ascii    asciiSet
	allASCII bool
}

func newRuneSearchValues(vals []rune) *RuneSearchValues {
	sv := &RuneSearchValues{vals: vals, allASCII: true}
	for _, v := range vals {
		if v > unicode.MaxASCII || v < 0 {
			sv.allASCII = false
			continue
		}
		sv.ascii.add(v)
	}
	return sv
}

func NewRuneSearchValues(vals string) *RuneSearchValues {
	return newRuneSearchValues([]rune(vals))
}

func (s *RuneSearchValues) Contains(c rune) bool {
	if s.ascii.has(c) {
		return true
	}
	if s.allASCII {
		return false
	}
	return slices.Contains(s.vals, c)
}

// IndexOfAny returns the first index in chars holding one of the values, or -1
func (s *RuneSearchValues) IndexOfAny(chars []rune) int {
	for i, c := range chars {
		if s.Contains(c) {
			return i
		}
	}
	return -1
}

func (s *RuneSearchValues) IndexOfAnyExcept(chars []rune) int {
	for i, c := range chars {
		if !s.Contains(c) {
			return i
		}
	}
	return -1
}

func (s *RuneSearchValues) LastIndexOfAny(chars []rune) int {
	for i := len(chars) - 1; i >= 0; i-- {
		if s.Contains(chars[i]) {
			return i
		}
	}
	return -1
}

func (s *RuneSearchValues) LastIndexOfAnyExcept(chars []rune) int {
	for i := len(chars) - 1; i >= 0; i-- {
		if !s.Contains(chars[i]) {
			return i
		}
	}
	return -1
}

// StringSearchValues finds the first position where any of a small set of
// strings begins. Larger ascii sets go through MultiStringSearcher.
type StringSearchValues struct {
	vals        [][]rune
	ignoreCase  bool
	shortestVal int

	firstChars *RuneSearchValues
}

func NewStringSearchValues(vals [][]rune, ignoreCase bool) StringSearchValues {
	shortest := math.MaxInt
	var firsts []rune
	addFirst := func(c rune) {
		if !slices.Contains(firsts, c) {
			firsts = append(firsts, c)
		}
	}
	lowered := make([][]rune, len(vals))
	for i, val := range vals {
		shortest = min(shortest, len(val))
		if ignoreCase {
			val = toLowerRunes(val)
		}
		lowered[i] = val
		if len(val) == 0 {
			continue
		}
		addFirst(val[0])
		if ignoreCase {
			for f := unicode.SimpleFold(val[0]); f != val[0]; f = unicode.SimpleFold(f) {
				addFirst(f)
			}
		}
	}
	if len(vals) == 0 {
		shortest = 0
	}

	return StringSearchValues{
		vals:        lowered,
		ignoreCase:  ignoreCase,
		shortestVal: shortest,
		firstChars:  newRuneSearchValues(firsts),
	}
}

func toLowerRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, c := range in {
		out[i] = unicode.ToLower(c)
	}
	return out
}

// StartsWith returns the length of the first value that prefixes chars, or -1
func (s StringSearchValues) StartsWith(chars []rune) int {
	for _, val := range s.vals {
		if s.ignoreCase {
			if StartsWithIgnoreCase(chars, val) {
				return len(val)
			}
		} else if StartsWith(chars, val) {
			return len(val)
		}
	}
	return -1
}

func (s StringSearchValues) IndexOfAny(in []rune) int {
	if len(s.vals) == 0 {
		return -1
	}
	for i := 0; i <= len(in)-s.shortestVal; i++ {
		j := s.firstChars.IndexOfAny(in[i:])
		if j < 0 {
			return -1
		}
		i += j
		if s.StartsWith(in[i:]) >= 0 {
			return i
		}
	}
	return -1
}
