// Package helpers holds the rune slice searches the matcher uses to jump to
// candidate match positions.
package helpers

import (
	"bytes"
	"slices"
	"unicode"
	"unsafe"

	"golang.org/x/sys/cpu"
)

// useByteScan reports whether the platform has wide vector registers that make
// bytes.Index over the raw rune memory faster than a rune-by-rune loop.
var useByteScan = cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD

// below this many runes the plain loop wins
const byteScanMin = 32

// IndexFunc is the index of the first rune satisfying f, or -1
func IndexFunc(in []rune, f func(ch rune) bool) int {
	return slices.IndexFunc(in, f)
}

// IndexOfAny is the index of the first rune found in set, or -1
func IndexOfAny(in []rune, set []rune) int {
	if len(set) == 0 {
		return -1
	}
	return slices.IndexFunc(in, func(c rune) bool { return slices.Contains(set, c) })
}

// IndexOfAny1 is the index of the first occurrence of ch, or -1
func IndexOfAny1(in []rune, ch rune) int {
	if useByteScan && len(in) >= byteScanMin {
		return indexRuneBytes(in, ch)
	}
	return slices.Index(in, ch)
}

// indexRuneBytes searches the little-endian byte view of the rune slice and
// discards hits that don't start on a rune boundary.
func indexRuneBytes(in []rune, ch rune) int {
	hay, needle := runeBytes(in), runeBytes([]rune{ch})
	for off := 0; ; {
		i := bytes.Index(hay[off:], needle)
		if i < 0 {
			return -1
		}
		if i += off; i%4 == 0 {
			return i / 4
		}
		off = i + 1
	}
}

func IndexOfAny2(in []rune, a, b rune) int {
	for i, c := range in {
		if c == a || c == b {
			return i
		}
	}
	return -1
}

func IndexOfAny3(in []rune, a, b, c rune) int {
	for i, r := range in {
		if r == a || r == b || r == c {
			return i
		}
	}
	return -1
}

// IndexOfAnyInRange finds the first rune in lo..hi inclusive
func IndexOfAnyInRange(in []rune, lo, hi rune) int {
	return slices.IndexFunc(in, func(c rune) bool { return c >= lo && c <= hi })
}

// IndexOfAnyExceptInRange finds the first rune outside lo..hi
func IndexOfAnyExceptInRange(in []rune, lo, hi rune) int {
	return slices.IndexFunc(in, func(c rune) bool { return c < lo || c > hi })
}

// IndexOfAnyExcept finds the first rune not in set
func IndexOfAnyExcept(in []rune, set []rune) int {
	return slices.IndexFunc(in, func(c rune) bool { return !slices.Contains(set, c) })
}

// IndexOf is the index of the first occurrence of sub in in; an empty sub is found at 0
func IndexOf(in []rune, sub []rune) int {
	switch len(sub) {
	case 0:
		return 0
	case 1:
		return IndexOfAny1(in, sub[0])
	}
	for i := 0; i+len(sub) <= len(in); i++ {
		if occursAt(in, sub, i) {
			return i
		}
	}
	return -1
}

// LastIndexOf is the start of the last occurrence of sub; an empty sub is found at len(in)
func LastIndexOf(in []rune, sub []rune) int {
	if len(sub) == 0 {
		return len(in)
	}
	for i := len(in) - len(sub); i >= 0; i-- {
		if occursAt(in, sub, i) {
			return i
		}
	}
	return -1
}

// occursAt checks the end runes before comparing the whole of sub
func occursAt(in, sub []rune, i int) bool {
	last := len(sub) - 1
	return in[i] == sub[0] && in[i+last] == sub[last] && bytesEqual(in[i:i+len(sub)], sub)
}

func LastIndexOfAny1(in []rune, ch rune) int {
	for i := len(in) - 1; i >= 0; i-- {
		if in[i] == ch {
			return i
		}
	}
	return -1
}

// IndexOfIgnoreCase finds sub in "in" comparing with simple case folding
func IndexOfIgnoreCase(in []rune, sub []rune) int {
	for i := 0; i+len(sub) <= len(in); i++ {
		if StartsWithIgnoreCase(in[i:], sub) {
			return i
		}
	}
	return -1
}

// StartsWith reports whether in begins with prefix
func StartsWith(in []rune, prefix []rune) bool {
	return len(in) >= len(prefix) && bytesEqual(in[:len(prefix)], prefix)
}

// StartsWithIgnoreCase is StartsWith under simple case folding
func StartsWithIgnoreCase(in []rune, prefix []rune) bool {
	if len(in) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if !EqualFold(in[i], p) {
			return false
		}
	}
	return true
}

// EqualFold reports whether a and b are in the same simple case folding orbit
func EqualFold(a, b rune) bool {
	if a == b {
		return true
	}
	for f := unicode.SimpleFold(a); f != a; f = unicode.SimpleFold(f) {
		if f == b {
			return true
		}
	}
	return false
}

// bytesEqual compares equal-length rune slices as raw memory
func bytesEqual(a, b []rune) bool {
	return len(a) == len(b) && bytes.Equal(runeBytes(a), runeBytes(b))
}

func runeBytes(a []rune) []byte {
	if len(a) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&a[0])), len(a)*4)
}
