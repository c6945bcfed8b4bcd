package regexp2

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// firstMatchAt returns the first position at or after from (at or before it,
// right to left) where a match of anchored ends or starts, or -1.
func firstMatchAt(t *testing.T, anchored *Regexp, text []rune, from int) int {
	step := 1
	if anchored.RightToLeft() {
		step = -1
	}
	for q := from; q >= 0 && q <= len(text); q += step {
		m, err := anchored.FindRunesMatchStartingAt(text, q)
		require.NoError(t, err)
		if m != nil {
			return q
		}
	}
	return -1
}

// The scan may stop early, but never past a position where a match begins.
func TestFindOptimizations_NeverSkipsAMatch(t *testing.T) {
	inputs := []string{
		"",
		"abc",
		"xxabcxxdefxx",
		"ABC dEf abc",
		"hello hello world",
		"1x 22x yx 3",
		"aab aaaaab ab",
		"foo\nbar foo\nfoo",
		"a cat concat cat",
		"abc\n",
		"xa1\n",
		"zzz.y.zz",
	}
	tests := []struct {
		pattern string
		opt     RegexOptions
	}{
		{`abc`, 0},
		{`hello\w+`, 0},
		{`abc|def`, 0},
		{`(?i)abc|def`, 0},
		{`(?i)abc`, 0},
		{`[0-9]x`, 0},
		{`a{2,5}b`, 0},
		{`abc\z`, 0},
		{`a\d\Z`, 0},
		{`\Aabc`, 0},
		{`^foo`, Multiline},
		{`foo$`, Multiline},
		{`\bcat\b`, 0},
		{`x*y`, 0},
		{`.+z`, 0},
		{`(?:ab|a)c?`, 0},
		{`[a-c]+\n`, 0},
		{`abc`, RightToLeft},
		{`a`, RightToLeft},
		{`[0-9]x`, RightToLeft},
		{`ab|de`, RightToLeft},
		{`\Aab`, RightToLeft},
		{`c\z`, RightToLeft},
	}
	for _, tt := range tests {
		re := MustCompile(tt.pattern, tt.opt)
		fo := re.code.FindOptimizations
		rtl := tt.opt&RightToLeft != 0

		// \G pins a match to the position the search is started at
		anchored := MustCompile(`\G(?:`+tt.pattern+`)`, tt.opt)
		if rtl {
			anchored = MustCompile(`(?:`+tt.pattern+`)\G`, tt.opt)
		}

		for _, in := range inputs {
			text := []rune(in)
			for p := 0; p <= len(text); p++ {
				want := firstMatchAt(t, anchored, text, p)
				pos := p
				ok := fo.TryFindNextStartingPosition(text, &pos, 0, p, len(text))
				if want < 0 {
					continue
				}
				require.True(t, ok, "%s on %q from %v: match at %v was skipped (%v)", tt.pattern, in, p, want, fo.FindMode)
				if rtl {
					require.True(t, pos >= want && pos <= p, "%s on %q from %v: wanted a position in [%v, %v], got %v", tt.pattern, in, p, want, p, pos)
				} else {
					require.True(t, pos >= p && pos <= want, "%s on %q from %v: wanted a position in [%v, %v], got %v", tt.pattern, in, p, p, want, pos)
				}
			}
		}
	}
}

// Patterns that can only match where the scan starts get exactly one attempt.
func TestFindOptimizations_AnchoredVisitsOnce(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		start   int
	}{
		{`\Aabc`, "abcabcabc", 0},
		{`\Aabc`, "xabcabc", 0},
		{`\Gx+`, "xxxxxx", 0},
		{`\Gx+`, "yxxxxx", 2},
	}
	for _, tt := range tests {
		fo := MustCompile(tt.pattern, 0).code.FindOptimizations
		text := []rune(tt.input)

		var visited []int
		for pos := tt.start; pos <= len(text); pos++ {
			if !fo.TryFindNextStartingPosition(text, &pos, 0, tt.start, len(text)) {
				break
			}
			visited = append(visited, pos)
		}

		require.Equal(t, []int{tt.start}, visited, "%s on %q from %v", tt.pattern, tt.input, tt.start)
	}
}
