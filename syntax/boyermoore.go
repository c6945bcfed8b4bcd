package syntax

import (
	"bytes"
	"fmt"
)

// BoyerMoore finds a literal prefix in the input using the bad character
// rule (Horspool's variant). Comparison is ordinal: case insensitive
// prefixes are searched for as sets instead.
type BoyerMoore struct {
	pattern     []rune
	rightToLeft bool

	// distance to slide when a rune is the one under the window's
	// anchor position; runes missing from the tables slide by len(pattern)
	shiftASCII [128]int
	shift      map[rune]int
}

func newBoyerMoore(pattern []rune, rightToLeft bool) *BoyerMoore {
	b := &BoyerMoore{
		pattern:     pattern,
		rightToLeft: rightToLeft,
	}
	m := len(pattern)
	for i := range b.shiftASCII {
		b.shiftASCII[i] = m
	}

	set := func(ch rune, d int) {
		if ch < 128 {
			b.shiftASCII[ch] = d
			return
		}
		if b.shift == nil {
			b.shift = make(map[rune]int)
		}
		b.shift[ch] = d
	}

	if !rightToLeft {
		// the window is keyed on its last rune
		for i := 0; i < m-1; i++ {
			set(pattern[i], m-1-i)
		}
	} else {
		// the window is keyed on its first rune
		for i := m - 1; i > 0; i-- {
			set(pattern[i], i)
		}
	}
	return b
}

func (b *BoyerMoore) slide(ch rune) int {
	if ch >= 0 && ch < 128 {
		return b.shiftASCII[ch]
	}
	if d, ok := b.shift[ch]; ok {
		return d
	}
	return len(b.pattern)
}

func (b *BoyerMoore) String() string {
	return string(b.pattern)
}

// Dump returns the pattern and its shift tables
func (b *BoyerMoore) Dump(indent string) string {
	buf := &bytes.Buffer{}
	fmt.Fprintf(buf, "%sBM Pattern: %s\n", indent, string(b.pattern))
	for ch, d := range b.shiftASCII {
		if d != len(b.pattern) {
			fmt.Fprintf(buf, "%s  %s %d\n", indent, Escape(string(rune(ch))), d)
		}
	}
	return buf.String()
}

// Scan looks for the pattern in text[beglimit:endlimit]. Left to right it
// returns the start of the first occurrence at or after index. Right to
// left it returns the end of the last occurrence ending at or before index.
// It returns -1 when there is none.
func (b *BoyerMoore) Scan(text []rune, index, beglimit, endlimit int) int {
	m := len(b.pattern)
	if m == 0 {
		return index
	}

	if !b.rightToLeft {
		for i := max(index, beglimit); i+m <= endlimit; i += b.slide(text[i+m-1]) {
			if b.matchAt(text, i) {
				return i
			}
		}
		return -1
	}

	for i := min(index, endlimit); i-m >= beglimit; i -= b.slide(text[i-m]) {
		if b.matchAt(text, i-m) {
			return i
		}
	}
	return -1
}

// matchAt compares the pattern to text starting at i, last rune first
func (b *BoyerMoore) matchAt(text []rune, i int) bool {
	for j := len(b.pattern) - 1; j >= 0; j-- {
		if text[i+j] != b.pattern[j] {
			return false
		}
	}
	return true
}
