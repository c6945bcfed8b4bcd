package runecacher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRuneAt(t *testing.T) {
	for _, rc := range []*RuneCacher{NewFromString("test"), NewFromRunes([]rune("test"))} {
		for i, want := range "test" {
			if got := rc.RuneAt(i); want != got {
				t.Fatalf("rune %d: wanted %v, got %v", i, want, got)
			}
		}
		rc.Release()
	}
}

func TestPrimedPrefix(t *testing.T) {
	long := NewFromString(strings.Repeat("ab", cachePrimeSize))
	defer long.Release()
	require.Len(t, long.runes, cachePrimeSize)

	short := NewFromString("test")
	defer short.Release()
	require.Len(t, short.runes, 4)
}

func TestLazyDecode(t *testing.T) {
	rc := NewFromString(strings.Repeat("x", cachePrimeSize) + "yz")
	defer rc.Release()

	require.Equal(t, 'y', rc.RuneAt(cachePrimeSize))
	require.Len(t, rc.runes, cachePrimeSize+1)
	require.Equal(t, cachePrimeSize+2, rc.Len())
}

func TestMultibyte(t *testing.T) {
	const s = "héllo wörld, ünïcode"
	rc := NewFromString(s)
	defer rc.Release()

	require.Equal(t, 20, rc.Len())
	require.Equal(t, []rune(s), rc.Runes())
	require.Equal(t, s, rc.String())
	require.Equal(t, 'w', rc.RuneAt(6))
}

func TestReleaseReuse(t *testing.T) {
	rc := NewFromString("first input")
	require.Equal(t, "first input", string(rc.Runes()))
	rc.Release()
	require.False(t, rc.pooled)

	// whatever the pool hands back must only hold the new input
	rc = NewFromString("two")
	defer rc.Release()
	require.Equal(t, []rune("two"), rc.Runes())
}

func TestRunesNotCopied(t *testing.T) {
	in := []rune("shared")
	rc := NewFromRunes(in)
	rc.Release()

	out := rc.Runes()
	require.Equal(t, 6, rc.Len())
	require.Equal(t, &in[0], &out[0])
}
