package regexp2

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type matchResult struct {
	index, length int
	groups        []string
}

func allMatches(t *testing.T, re *Regexp, input string) []matchResult {
	t.Helper()
	var res []matchResult
	m, err := re.FindStringMatch(input)
	require.NoError(t, err)
	for m != nil {
		r := matchResult{index: m.Index, length: m.Length}
		for _, g := range m.Groups() {
			r.groups = append(r.groups, g.String())
		}
		res = append(res, r)
		m, err = re.FindNextMatch(m)
		require.NoError(t, err)
	}
	return res
}

func TestRunner_EndToEnd(t *testing.T) {
	tests := []struct {
		pattern string
		opt     RegexOptions
		input   string
		index   int
		length  int
	}{
		{`a+b`, 0, "aaab", 0, 4},
		{`(a|ab)c`, 0, "abc", 0, 3},
		{`^abc$`, Multiline, "x\nabc\ny", 2, 3},
		{`a+?`, 0, "aaa", 0, 1},
		{`(?<=a)b`, 0, "cbab", 3, 1},
		{`(?<!a)b`, 0, "abcb", 3, 1},
		{`b(?=c)`, 0, "babc", 2, 1},
		{`(a)\1`, IgnoreCase, "xaA", 1, 2},
		{`(a)?(?(1)b|c)`, 0, "xab", 1, 2},
		{`(a)?(?(1)b|c)`, 0, "xc", 1, 1},
		{`(?(?=\d)\d+|[a-z]+)`, 0, "--abc", 2, 3},
		{`\bis\b`, 0, "this is", 5, 2},
		{`(?>a+)b`, 0, "aaab", 0, 4},
		{`\d{2,3}`, 0, "a12345", 1, 3},
		{`\d+`, RightToLeft, "a12b345", 4, 3},
		{`[^\d\s]+`, 0, "12 ab3", 3, 2},
		{`ß`, IgnoreCase, "xẞ", 1, 1},
		{`\w+@\w+\.com`, 0, "mail bob@site.com now", 5, 12},
		{`(?i)HELLO|world`, 0, "say hello", 4, 5},
		{`x*`, 0, "abc", 0, 0},
		{`a.c`, Singleline, "a\nc", 0, 3},
		{`$`, 0, "ab\n", 2, 0},
		{`\z`, 0, "ab\n", 3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			re := MustCompile(tt.pattern, tt.opt)
			m, err := re.FindStringMatch(tt.input)
			require.NoError(t, err)
			require.NotNil(t, m, "dump: %v", re.code.Dump())
			require.Equal(t, tt.index, m.Index)
			require.Equal(t, tt.length, m.Length)
		})
	}
}

func TestRunner_NamedGroups(t *testing.T) {
	re := MustCompile(`(?<n>\d+)-(?<n2>\d+)`, 0)
	m, err := re.FindStringMatch("12-34")
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, "12", m.GroupByName("n").String())
	require.Equal(t, "34", m.GroupByName("n2").String())
	require.Nil(t, m.GroupByName("missing"))
}

func TestRunner_NoMatch(t *testing.T) {
	for _, p := range []string{`a+b`, `^b`, `(?!a)a`, `[^a]`, `a{4}`} {
		re := MustCompile(p, 0)
		m, err := re.FindStringMatch("aaa")
		require.NoError(t, err)
		require.Nil(t, m, p)

		ok, err := re.MatchString("aaa")
		require.NoError(t, err)
		require.False(t, ok, p)
	}
}

func TestRunner_EmptyMatchesAdvance(t *testing.T) {
	re := MustCompile(`a*`, 0)
	got := allMatches(t, re, "baaac")
	want := []matchResult{
		{0, 0, []string{""}},
		{1, 3, []string{"aaa"}},
		{4, 0, []string{""}},
		{5, 0, []string{""}},
	}
	require.Equal(t, want, got)
}

func TestRunner_ContiguousG(t *testing.T) {
	re := MustCompile(`\Ga`, 0)
	got := allMatches(t, re, "aab a")
	require.Len(t, got, 2)
	require.Equal(t, 1, got[1].index)
}

func TestRunner_RightToLeftIteration(t *testing.T) {
	re := MustCompile(`\d+`, RightToLeft)
	got := allMatches(t, re, "1 22 333")
	require.Equal(t, []matchResult{
		{5, 3, []string{"333"}},
		{2, 2, []string{"22"}},
		{0, 1, []string{"1"}},
	}, got)
}

func TestRunner_RepeatedCaptures(t *testing.T) {
	re := MustCompile(`(?:(\w)-)+`, 0)
	m, err := re.FindStringMatch("a-b-c-")
	require.NoError(t, err)
	require.NotNil(t, m)

	g := m.GroupByNumber(1)
	require.Equal(t, "c", g.String())
	require.Len(t, g.Captures, 3)
	require.Equal(t, "a", g.Captures[0].String())
	require.Equal(t, "b", g.Captures[1].String())
}

func TestRunner_BalancingGroups(t *testing.T) {
	re := MustCompile(`^(?:[^()]|(?<o>\()|(?<-o>\)))*(?(o)(?!))$`, 0)
	for input, want := range map[string]bool{
		"(a(b)c)": true,
		"((a)":    false,
		"a)(b":    false,
		"":        true,
	} {
		ok, err := re.MatchString(input)
		require.NoError(t, err)
		require.Equal(t, want, ok, input)
	}
}

func TestRunner_StartingAt(t *testing.T) {
	re := MustCompile(`l+`, 0)

	m, err := re.FindStringMatchStartingAt("héllo hello", 4)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, 3, m.Index)
	require.Equal(t, "l", m.String())

	// inside the two bytes of é
	_, err = re.FindStringMatchStartingAt("héllo", 2)
	require.ErrorIs(t, err, ErrStartOutOfRange)

	_, err = re.FindStringMatchStartingAt("héllo", 10)
	require.ErrorIs(t, err, ErrStartOutOfRange)

	m, err = re.FindRunesMatchStartingAt([]rune("hello hello"), 5)
	require.NoError(t, err)
	require.Equal(t, 8, m.Index)

	_, err = re.FindRunesMatchStartingAt([]rune("hi"), 3)
	require.ErrorIs(t, err, ErrStartOutOfRange)

	// \G is the starting position
	re = MustCompile(`\Gb`, 0)
	m, err = re.FindStringMatchStartingAt("ab", 1)
	require.NoError(t, err)
	require.NotNil(t, m)
	require.Equal(t, 1, m.Index)
}

func TestRunner_MatchRunes(t *testing.T) {
	re := MustCompile(`\p{Lu}\p{Ll}+`, 0)
	ok, err := re.MatchRunes([]rune("hi Émile"))
	require.NoError(t, err)
	require.True(t, ok)

	m, err := re.FindRunesMatch([]rune("hi Émile"))
	require.NoError(t, err)
	require.Equal(t, "Émile", string(m.Runes()))
}

// same matches with and without atomic promotion of loops
func TestRunner_AutoAtomicEquivalence(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
	}{
		{`a+b`, "aaab aab b"},
		{`\d+\w`, "123a 45 6b"},
		{`[a-z]+\d*x`, "abc12x abx ab1"},
		{`(a+)+b`, "aaaab ab"},
		{`(?:ab|a)+c`, "ababac abc"},
		{`\s*,\s*`, "a , b,c  ,d"},
		{`"[^"]*"`, `say "hi" and "bye"`},
		{`(\w+)\s+\1`, "the the cat cat dog"},
		{`x*y+z?`, "xxyyz yz xy"},
		{`.*foo`, "barfoo bazfoo"},
		{`[^,]*,`, "a,bb,,c"},
		{`(?:a|b)*c`, "ababc bc c"},
		{`(?:x?)+?`, "xx a"},
		{`(?:(?!b))+?`, "xcbc a"},
		{`(a+)+b\1`, "aaaba aab"},
		{`(\d+)*x`, "12x 3 45x"},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			optimized := MustCompile(tt.pattern, 0)
			plain, err := CompileWithReduceOptions(tt.pattern, 0, ReduceOptions{DisableAutoAtomic: true})
			require.NoError(t, err)

			require.Equal(t, allMatches(t, plain, tt.input), allMatches(t, optimized, tt.input))
		})
	}
}

func TestRunner_CatastrophicShapeCompletes(t *testing.T) {
	for _, pattern := range []string{`(a+)+b`, `(?:a+)+b`, `([ab]+)*c`} {
		t.Run(pattern, func(t *testing.T) {
			re := MustCompile(pattern, 0)
			re.MatchTimeout = 30 * time.Second

			m, err := re.FindStringMatch(strings.Repeat("a", 40))
			require.NoError(t, err)
			require.Nil(t, m)
		})
	}

	// still finds the match when there is one
	m, err := MustCompile(`(a+)+b`, 0).FindStringMatch("xaaab")
	require.NoError(t, err)
	require.Equal(t, "aaab", m.String())
	require.Equal(t, "aaa", m.GroupByNumber(1).String())
}

// lazy loops whose body can match nothing must leave the stack as they found it
func TestRunner_LazyLoopEmptyIteration(t *testing.T) {
	tests := []struct {
		pattern string
		input   string
		want    [][2]int
	}{
		{`(?:x?)+?`, "", [][2]int{{0, 0}}},
		{`(?:x?)+?`, "ab", [][2]int{{0, 0}, {1, 0}, {2, 0}}},
		{`(?>(?:x?)+?)y`, "ay", [][2]int{{1, 1}}},
		{`(?=(?:x?)+?)a`, "ba", [][2]int{{1, 1}}},
		{`((?:x?)+?)z`, "az", [][2]int{{1, 1}}},
		{`(?:(?!b))+?`, "xcbc a", [][2]int{{0, 0}, {1, 0}, {3, 0}, {4, 0}, {5, 0}, {6, 0}}},
	}
	for _, tt := range tests {
		for _, ro := range []ReduceOptions{{}, {DisableAutoAtomic: true}} {
			re, err := CompileWithReduceOptions(tt.pattern, 0, ro)
			require.NoError(t, err)

			var got [][2]int
			m, err := re.FindStringMatch(tt.input)
			for ; m != nil && err == nil && len(got) < 20; m, err = re.FindNextMatch(m) {
				got = append(got, [2]int{m.Index, m.Length})
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got, "%s on %q (%+v)", tt.pattern, tt.input, ro)
		}
	}

	out, err := MustCompile(`(?:(?!b))+?`, 0).Replace("xcbc a", "-", -1, -1)
	require.NoError(t, err)
	require.Equal(t, "-x-cb-c- -a-", out)
}

func TestRunner_Timeout(t *testing.T) {
	re := MustCompile(`(x+x+)+y`, 0)
	re.MatchTimeout = 20 * time.Millisecond

	input := strings.Repeat("x", 40)
	_, err := re.FindStringMatch(input)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrMatchTimeout))

	var te *MatchTimeoutError
	require.True(t, errors.As(err, &te))
	require.Equal(t, `(x+x+)+y`, te.Pattern)
	require.Equal(t, input, te.Input)
	require.Equal(t, 20*time.Millisecond, te.Timeout)

	// the runner went back to the cache and still works
	re.MatchTimeout = DefaultMatchTimeout
	ok, err := re.MatchString("xxy")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRunner_ConcurrentUse(t *testing.T) {
	re := MustCompile(`(?<word>\w+)@(?<host>\w+)`, 0)
	inputs := []string{"a@b", "xx joe@site yy", "none here", "q@r s@t"}
	want := make([][]matchResult, len(inputs))
	for i, in := range inputs {
		want[i] = allMatches(t, re, in)
	}

	var wg sync.WaitGroup
	errs := make(chan string, 64)
	for g := 0; g < 16; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				idx := (g + i) % len(inputs)
				var got []matchResult
				m, err := re.FindStringMatch(inputs[idx])
				for err == nil && m != nil {
					r := matchResult{index: m.Index, length: m.Length}
					for _, grp := range m.Groups() {
						r.groups = append(r.groups, grp.String())
					}
					got = append(got, r)
					m, err = re.FindNextMatch(m)
				}
				if err != nil || len(got) != len(want[idx]) {
					errs <- inputs[idx]
					return
				}
				for j := range got {
					if got[j].index != want[idx][j].index || got[j].length != want[idx][j].length {
						errs <- inputs[idx]
						return
					}
				}
			}
		}(g)
	}
	wg.Wait()
	close(errs)

	for in := range errs {
		t.Errorf("concurrent match on %q disagreed", in)
	}
}

func TestRunner_CultureInvariantFolding(t *testing.T) {
	re := MustCompile(`k`, IgnoreCase|CultureInvariant)
	ok, err := re.MatchString("K")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRunner_AtomicGroupDiscardsChoices(t *testing.T) {
	for _, p := range []string{`(?>(x|xy))z`, `(?>x|xy)z`, `(?>(?:ab)*)abz`} {
		for _, ro := range []ReduceOptions{{}, {DisableAutoAtomic: true}} {
			re, err := CompileWithReduceOptions(p, 0, ro)
			require.NoError(t, err)
			ok, err := re.MatchString("xyz ababz xxy")
			require.NoError(t, err)
			require.False(t, ok, "%v %+v\n%v", p, ro, re.code.Dump())
		}
	}

	// the same patterns without the atomic group backtrack into it
	for _, p := range []string{`(x|xy)z`, `(?:x|xy)z`, `(?:(?:ab)*)abz`} {
		ok, err := MustCompile(p, 0).MatchString("xyz ababz xxy")
		require.NoError(t, err)
		require.True(t, ok, p)
	}
}
