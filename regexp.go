/*
Package regexp2 is a regexp package that has an interface similar to Go's framework regexp engine but uses a
more feature full regex engine behind the scenes.

It doesn't have constant time guarantees, but it allows backtracking and is compatible with Perl5 and .NET.
You'll likely be better off with the RE2 engine from the regexp package and should only use this if you
need to write very complex patterns or require compatibility with .NET.

Patterns are parsed into a tree, reduced, analyzed and written to a small
bytecode program. Before each match attempt the runner uses the find
optimizations computed from the tree (literal prefixes, leading sets, anchors)
to skip positions that cannot start a match.
*/
package regexp2

import (
	"math"
	"slices"
	"strconv"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/ModxVoldHunter/CSharp-SDK-sub006/runecacher"
	"github.com/ModxVoldHunter/CSharp-SDK-sub006/syntax"
)

// Default timeout used when running regexp matches -- "forever"
var DefaultMatchTimeout = time.Duration(math.MaxInt64)

// Regexp is the representation of a compiled regular expression.
// A Regexp is safe for concurrent use by multiple goroutines.
type Regexp struct {
	//timeout when trying to find matches
	MatchTimeout time.Duration

	// read-only after Compile
	pattern string       // as passed to Compile
	options RegexOptions // options

	caps     map[int]int    // capnum->index
	capnames map[string]int //capture group name -> index
	capslist []string       //sorted list of capture group names
	capsize  int            // size of the capture array

	code *syntax.Code // compiled program

	// set for engines added through RegisterEngine
	findFirstChar func(*Runner) bool
	execute       func(*Runner) error

	// one spare runner; concurrent matches make their own
	runner atomic.Pointer[Runner]

	// last parsed replacement pattern
	replacer atomic.Pointer[syntax.ReplacerData]
}

// RegexOptions tune how a pattern is parsed and run. They can be combined with |.
type RegexOptions = syntax.RegexOptions

const (
	None                    RegexOptions = 0x0
	IgnoreCase                           = syntax.IgnoreCase              // "i"
	Multiline                            = syntax.Multiline               // "m"
	ExplicitCapture                      = syntax.ExplicitCapture         // "n"
	Compiled                             = syntax.Compiled                // "c"
	Singleline                           = syntax.Singleline              // "s"
	IgnorePatternWhitespace              = syntax.IgnorePatternWhitespace // "x"
	RightToLeft                          = syntax.RightToLeft             // "r"
	Debug                                = syntax.Debug                   // "d"
	ECMAScript                           = syntax.ECMAScript              // "e"
	RE2                                  = syntax.RE2                     // RE2 (regexp package) compatibility mode
	Unicode                              = syntax.Unicode                 // "u"
	MaintainCaptureOrder                 = syntax.MaintainCaptureOrder    // "o"
	CultureInvariant                     = syntax.CultureInvariant
	NonBacktracking                      = syntax.NonBacktracking
)

// ReduceOptions switch off individual tree optimizations, see CompileWithReduceOptions
type ReduceOptions = syntax.ReduceOptions

// Compile parses a regular expression and returns, if successful,
// a Regexp object that can be used to match against text.
func Compile(expr string, opt RegexOptions) (*Regexp, error) {
	return CompileWithReduceOptions(expr, opt, ReduceOptions{})
}

// CompileWithReduceOptions is Compile with some of the tree optimizations
// switched off. The matches found are the same either way; only the
// generated program differs.
func CompileWithReduceOptions(expr string, opt RegexOptions, ro ReduceOptions) (*Regexp, error) {
	// a registered engine wins over parsing the pattern
	if re := getEngineRegexp(expr, opt); re != nil {
		return re, nil
	}

	tree, err := syntax.ParseWithReduceOptions(expr, opt, ro)
	if err != nil {
		return nil, err
	}

	code, err := syntax.Write(tree)
	if err != nil {
		return nil, err
	}

	return &Regexp{
		pattern:      expr,
		options:      opt,
		caps:         code.Caps,
		capnames:     tree.Capnames,
		capslist:     tree.Caplist,
		capsize:      code.Capsize,
		code:         code,
		MatchTimeout: DefaultMatchTimeout,
	}, nil
}

// MustCompile is like Compile but panics if the expression cannot be parsed.
// It simplifies safe initialization of global variables holding compiled regular
// expressions.
func MustCompile(str string, opt RegexOptions) *Regexp {
	re, err := Compile(str, opt)
	if err != nil {
		panic(`regexp2: Compile(` + quote(str) + `): ` + err.Error())
	}
	return re
}

// Escape adds backslashes to any special characters in the input string
func Escape(input string) string {
	return syntax.Escape(input)
}

// Unescape removes any backslashes from previously-escaped special characters in the input string
func Unescape(input string) (string, error) {
	return syntax.Unescape(input)
}

// String returns the source text used to compile the regular expression.
func (re *Regexp) String() string {
	return re.pattern
}

func quote(s string) string {
	if strconv.CanBackquote(s) {
		return "`" + s + "`"
	}
	return strconv.Quote(s)
}

// RightToLeft returns true if the regex was compiled to search from the end of the input
func (re *Regexp) RightToLeft() bool {
	return re.options&RightToLeft != 0
}

// Debug returns true if the regex prints its tree, program and runner state
func (re *Regexp) Debug() bool {
	return re.options&Debug != 0
}

// FindStringMatch searches the input string for a Regexp match
func (re *Regexp) FindStringMatch(s string) (*Match, error) {
	// convert string to runes
	return re.run(false, -1, -1, []rune(s))
}

// FindRunesMatch searches the input rune slice for a Regexp match
func (re *Regexp) FindRunesMatch(r []rune) (*Match, error) {
	return re.run(false, -1, -1, r)
}

// FindStringMatchStartingAt searches the input string for a Regexp match starting at the startAt index.
// startAt is a byte offset into s and must fall on a rune boundary.
func (re *Regexp) FindStringMatchStartingAt(s string, startAt int) (*Match, error) {
	if startAt > len(s) {
		return nil, ErrStartOutOfRange
	}
	r, startAt := re.getRunesAndStart(s, startAt)
	if startAt == -1 {
		// we didn't find our start index in the string -- that's a problem
		return nil, ErrStartOutOfRange
	}

	return re.run(false, -1, startAt, r)
}

// FindRunesMatchStartingAt searches the input rune slice for a Regexp match starting at the startAt index
func (re *Regexp) FindRunesMatchStartingAt(r []rune, startAt int) (*Match, error) {
	if startAt > len(r) {
		return nil, ErrStartOutOfRange
	}
	return re.run(false, -1, startAt, r)
}

// FindNextMatch returns the next match in the same input string as the match parameter.
// Will return nil if there is no next match or if given a nil match.
func (re *Regexp) FindNextMatch(m *Match) (*Match, error) {
	if m == nil {
		return nil, nil
	}

	// If previous match was empty, advance by one before matching to prevent
	// infinite loop
	return re.run(false, m.Length, m.textpos, m.text)
}

// MatchString return true if the string matches the regex
// error will be set if a timeout occurs
func (re *Regexp) MatchString(s string) (bool, error) {
	rc := runecacher.NewFromString(s)
	defer rc.Release()

	m, err := re.run(true, -1, -1, rc.Runes())
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// MatchRunes return true if the runes matches the regex
// error will be set if a timeout occurs
func (re *Regexp) MatchRunes(r []rune) (bool, error) {
	m, err := re.run(true, -1, -1, r)
	if err != nil {
		return false, err
	}
	return m != nil, nil
}

// getRunesAndStart decodes s and maps the byte offset startAt to a rune
// index. A negative startAt means the natural start for the search direction;
// -1 comes back when startAt isn't on a rune boundary.
func (re *Regexp) getRunesAndStart(s string, startAt int) ([]rune, int) {
	if startAt < 0 {
		r := []rune(s)
		if re.RightToLeft() {
			return r, len(r)
		}
		return r, 0
	}
	ret := make([]rune, len(s))
	i := 0
	runeIdx := -1
	for strIdx, r := range s {
		if strIdx == startAt {
			runeIdx = i
		}
		ret[i] = r
		i++
	}
	if startAt == len(s) {
		runeIdx = i
	}
	return ret[:i], runeIdx
}

// runeIndex maps a byte offset in s to a rune index, or -1 when the offset
// isn't on a rune boundary
func runeIndex(s string, byteIdx int) int {
	if byteIdx < 0 || byteIdx > len(s) {
		return -1
	}
	if byteIdx < len(s) && !utf8.RuneStart(s[byteIdx]) {
		return -1
	}
	return utf8.RuneCountInString(s[:byteIdx])
}

// GetGroupNames returns the group names in slot order. Unnamed groups are
// named by their number.
func (re *Regexp) GetGroupNames() []string {
	if re.capslist != nil {
		return slices.Clone(re.capslist)
	}
	names := make([]string, re.capsize)
	for i := range names {
		names[i] = strconv.Itoa(i)
	}
	return names
}

// GetGroupNumbers returns the group numbers in slot order, matching GetGroupNames
func (re *Regexp) GetGroupNumbers() []int {
	if re.caps == nil {
		nums := make([]int, re.capsize)
		for i := range nums {
			nums[i] = i
		}
		return nums
	}
	nums := make([]int, len(re.caps))
	for num, slot := range re.caps {
		nums[slot] = num
	}
	return nums
}

// GroupNameFromNumber returns the name of group i, its number as a string when
// it is unnamed, or "" when there is no such group.
func (re *Regexp) GroupNameFromNumber(i int) string {
	if re.caps != nil {
		slot, ok := re.caps[i]
		if !ok {
			return ""
		}
		i = slot
	}
	if i < 0 || i >= re.capsize {
		return ""
	}
	if re.capslist == nil {
		return strconv.Itoa(i)
	}
	return re.capslist[i]
}

// GroupNumberFromName returns the number of the named group, or -1. Unnamed
// groups answer to their number written out in decimal.
func (re *Regexp) GroupNumberFromName(name string) int {
	if re.capnames != nil {
		if num, ok := re.capnames[name]; ok {
			return num
		}
		return -1
	}

	num := 0
	for _, ch := range []byte(name) {
		if ch < '0' || ch > '9' {
			return -1
		}
		num = num*10 + int(ch-'0')
	}
	if num < re.capsize {
		return num
	}
	return -1
}
