// Package runecacher turns strings into rune slices for the matcher, decoding
// lazily and recycling buffers between calls.
package runecacher

import (
	"sync"
	"unicode/utf8"
)

// runes decoded up front by NewFromString
const cachePrimeSize = 10

// buffers bigger than this are left to the garbage collector
const maxPooledRunes = 1 << 16

// RuneCacher holds the decoded prefix of a string. Runes past the prefix are
// decoded the first time something asks for them.
type RuneCacher struct {
	runes []rune
	src   string
	// byte offset in src of the first rune not yet in runes
	next   int
	pooled bool
}

var pool = sync.Pool{
	New: func() any { return new(RuneCacher) },
}

// NewFromRunes wraps runes the caller already has. Nothing is copied and
// Release is a no-op.
func NewFromRunes(runes []rune) *RuneCacher {
	return &RuneCacher{runes: runes}
}

// NewFromString takes a cacher from the pool and primes it with the first
// runes of s. Call Release when the runes are no longer referenced.
func NewFromString(s string) *RuneCacher {
	rc := pool.Get().(*RuneCacher)
	if cap(rc.runes) < len(s) {
		rc.runes = make([]rune, 0, len(s))
	}
	rc.runes, rc.src, rc.next, rc.pooled = rc.runes[:0], s, 0, true
	rc.decode(cachePrimeSize)
	return rc
}

// Release hands a pooled cacher back. Runes it returned must not be used afterwards.
func (rc *RuneCacher) Release() {
	if !rc.pooled {
		return
	}
	rc.pooled = false
	rc.src, rc.next = "", 0
	if cap(rc.runes) <= maxPooledRunes {
		pool.Put(rc)
	}
}

// Len is the rune count of the whole input
func (rc *RuneCacher) Len() int {
	return len(rc.runes) + utf8.RuneCountInString(rc.src[rc.next:])
}

func (rc *RuneCacher) String() string {
	if rc.src != "" {
		return rc.src
	}
	return string(rc.runes)
}

// RuneAt returns rune i, decoding up to it if needed
func (rc *RuneCacher) RuneAt(i int) rune {
	if i >= len(rc.runes) {
		rc.decode(i - len(rc.runes) + 1)
	}
	return rc.runes[i]
}

// Runes decodes the rest of the input and returns every rune
func (rc *RuneCacher) Runes() []rune {
	rc.decode(len(rc.src) - rc.next)
	return rc.runes
}

// decode appends up to n more runes
func (rc *RuneCacher) decode(n int) {
	for ; n > 0 && rc.next < len(rc.src); n-- {
		r, size := utf8.DecodeRuneInString(rc.src[rc.next:])
		rc.runes = append(rc.runes, r)
		rc.next += size
	}
}
