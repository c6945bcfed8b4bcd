package starlarkre

import (
	"fmt"
	"math"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	regexp2 "github.com/ModxVoldHunter/CSharp-SDK-sub006"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// default endpos; positions are clamped to the string
const posMax = math.MaxInt

// Pattern is a compiled regular expression
type Pattern struct {
	re      *regexp2.Regexp
	pattern string
	flags   int
	timeout time.Duration

	// re anchored at both ends, built on first use by fullmatch
	fullOnce sync.Once
	full     *regexp2.Regexp
	fullErr  error
}

func newPattern(pattern string, flags int, timeout time.Duration) (*Pattern, error) {
	opt, err := regexOptions(flags)
	if err != nil {
		return nil, err
	}
	re, err := compileRegexp(pattern, opt, timeout)
	if err != nil {
		return nil, err
	}
	return &Pattern{re: re, pattern: pattern, flags: flags, timeout: timeout}, nil
}

// fullRegexp returns the pattern wrapped so it only matches from the start
// position to the end of the input. Groups keep their numbers.
func (p *Pattern) fullRegexp() (*regexp2.Regexp, error) {
	p.fullOnce.Do(func() {
		end := ")\\z"
		if p.flags&flagVerbose != 0 {
			// a trailing comment would swallow the closing paren
			end = "\n" + end
		}
		opt, _ := regexOptions(p.flags)
		p.full, p.fullErr = compileRegexp(`\G(?:`+p.pattern+end, opt, p.timeout)
	})
	return p.full, p.fullErr
}

var (
	_ starlark.Value      = (*Pattern)(nil)
	_ starlark.HasAttrs   = (*Pattern)(nil)
	_ starlark.Comparable = (*Pattern)(nil)
)

func (p *Pattern) String() string {
	var b strings.Builder
	b.WriteString("re.compile(")
	b.WriteString(starlark.String(p.pattern).String())
	if p.flags != 0 {
		b.WriteString(", 0x")
		b.WriteString(strconv.FormatInt(int64(p.flags), 16))
	}
	b.WriteByte(')')
	return b.String()
}

func (p *Pattern) Type() string          { return "pattern" }
func (p *Pattern) Freeze()               {}
func (p *Pattern) Truth() starlark.Bool  { return true }
func (p *Pattern) Hash() (uint32, error) { return starlark.String(p.pattern).Hash() }

func (p *Pattern) CompareSameType(op syntax.Token, y starlark.Value, _ int) (bool, error) {
	o := y.(*Pattern)
	eq := p.pattern == o.pattern && p.flags == o.flags
	switch op {
	case syntax.EQL:
		return eq, nil
	case syntax.NEQ:
		return !eq, nil
	default:
		return false, fmt.Errorf("%s %s %s not implemented", p.Type(), op, o.Type())
	}
}

var patternMethods = map[string]*starlark.Builtin{
	"search":    starlark.NewBuiltin("search", patternSearch),
	"match":     starlark.NewBuiltin("match", patternMatch),
	"fullmatch": starlark.NewBuiltin("fullmatch", patternFullmatch),
	"findall":   starlark.NewBuiltin("findall", patternFindall),
	"finditer":  starlark.NewBuiltin("finditer", patternFinditer),
	"split":     starlark.NewBuiltin("split", patternSplit),
	"sub":       starlark.NewBuiltin("sub", patternSub),
	"subn":      starlark.NewBuiltin("subn", patternSub),
}

var patternMembers = map[string]func(p *Pattern) starlark.Value{
	"pattern": func(p *Pattern) starlark.Value { return starlark.String(p.pattern) },
	"flags":   func(p *Pattern) starlark.Value { return starlark.MakeInt(p.flags) },
	"groups":  func(p *Pattern) starlark.Value { return starlark.MakeInt(len(p.re.GetGroupNumbers()) - 1) },
	"groupindex": func(p *Pattern) starlark.Value { return p.groupIndex() },
}

// groupIndex maps the names of the named groups to their numbers
func (p *Pattern) groupIndex() *starlark.Dict {
	names := p.re.GetGroupNames()
	gi := starlark.NewDict(len(names))
	for _, name := range names {
		num := p.re.GroupNumberFromName(name)
		if name != strconv.Itoa(num) {
			_ = gi.SetKey(starlark.String(name), starlark.MakeInt(num))
		}
	}
	gi.Freeze()
	return gi
}

func (p *Pattern) Attr(name string) (starlark.Value, error) {
	if o, ok := patternMethods[name]; ok {
		return o.BindReceiver(p), nil
	}
	if o, ok := patternMembers[name]; ok {
		return o(p), nil
	}
	return nil, nil
}

func (p *Pattern) AttrNames() []string {
	names := make([]string, 0, len(patternMethods)+len(patternMembers))
	for name := range patternMethods {
		names = append(names, name)
	}
	for name := range patternMembers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// text is a searched string with the runes of the searched part and the byte
// offset of each rune. Starlark positions are byte offsets, the engine's are
// rune indexes.
type text struct {
	s     string
	runes []rune
	offs  []int
}

func newText(s string) *text {
	t := &text{
		s:     s,
		runes: make([]rune, 0, len(s)),
		offs:  make([]int, 0, len(s)+1),
	}
	for i, r := range s {
		t.runes = append(t.runes, r)
		t.offs = append(t.offs, i)
	}
	t.offs = append(t.offs, len(s))
	return t
}

// runeIndex maps a byte offset that starts a rune to its rune index
func (t *text) runeIndex(off int) int {
	return sort.SearchInts(t.offs, off)
}

// window clamps pos and endpos to s and moves them onto rune boundaries
func window(s string, pos, endpos int) (int, int) {
	n := len(s)
	pos = min(max(pos, 0), n)
	endpos = min(max(endpos, 0), n)
	for pos < n && !utf8.RuneStart(s[pos]) {
		pos++
	}
	for endpos > 0 && endpos < n && !utf8.RuneStart(s[endpos]) {
		endpos--
	}
	return pos, endpos
}

// first runs re over s[:endpos] from pos
func (p *Pattern) first(re *regexp2.Regexp, s string, pos, endpos int) (*Match, error) {
	pos, endpos = window(s, pos, endpos)
	if pos > endpos {
		return nil, nil
	}
	t := newText(s[:endpos])
	t.s = s
	m, err := re.FindRunesMatchStartingAt(t.runes, t.runeIndex(pos))
	if err != nil || m == nil {
		return nil, err
	}
	return newMatch(p, t, m, pos, endpos), nil
}

func (p *Pattern) search(s string, pos, endpos int) (starlark.Value, error) {
	m, err := p.first(p.re, s, pos, endpos)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return starlark.None, nil
	}
	return m, nil
}

// match only accepts a match at pos. The leftmost match from pos starts at pos
// whenever any match does.
func (p *Pattern) match(s string, pos, endpos int) (starlark.Value, error) {
	m, err := p.first(p.re, s, pos, endpos)
	if err != nil {
		return nil, err
	}
	if m == nil || m.start(0) != m.pos {
		return starlark.None, nil
	}
	return m, nil
}

func (p *Pattern) fullmatch(s string, pos, endpos int) (starlark.Value, error) {
	full, err := p.fullRegexp()
	if err != nil {
		return nil, err
	}
	m, err := p.first(full, s, pos, endpos)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return starlark.None, nil
	}
	return m, nil
}

// each calls fn for every match in s[pos:endpos] until fn returns false
func (p *Pattern) each(s string, pos, endpos int, fn func(m *Match) bool) error {
	m, err := p.first(p.re, s, pos, endpos)
	for ; m != nil && err == nil; m, err = m.next() {
		if !fn(m) {
			break
		}
	}
	return err
}

func (p *Pattern) findall(s string, pos, endpos int) (starlark.Value, error) {
	var l []starlark.Value
	err := p.each(s, pos, endpos, func(m *Match) bool {
		nums := p.re.GetGroupNumbers()
		switch len(nums) {
		case 1:
			l = append(l, starlark.String(m.m.String()))
		case 2:
			l = append(l, starlark.String(m.text(nums[1])))
		default:
			t := make(starlark.Tuple, 0, len(nums)-1)
			for _, n := range nums[1:] {
				t = append(t, starlark.String(m.text(n)))
			}
			l = append(l, t)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return starlark.NewList(l), nil
}

func (p *Pattern) finditer(s string, pos, endpos int) (starlark.Value, error) {
	var l []starlark.Value
	err := p.each(s, pos, endpos, func(m *Match) bool {
		l = append(l, m)
		return true
	})
	if err != nil {
		return nil, err
	}
	return starlark.NewList(l), nil
}

// split uses the engine's split: matched groups are included, unmatched ones
// are left out
func (p *Pattern) split(s string, maxSplit int) (starlark.Value, error) {
	count := -1
	if maxSplit > 0 {
		count = maxSplit + 1
	}
	parts, err := p.re.Split(s, count)
	if err != nil {
		return nil, err
	}
	l := make([]starlark.Value, len(parts))
	for i, part := range parts {
		l[i] = starlark.String(part)
	}
	return starlark.NewList(l), nil
}

func (p *Pattern) sub(thread *starlark.Thread, repl starlark.Value, s string, count int, withCount bool) (starlark.Value, error) {
	if count < 0 {
		return nil, fmt.Errorf("count must not be negative, got %d", count)
	}
	limit := -1
	if count > 0 {
		limit = count
	}

	var (
		out string
		n   int
		err error
	)
	switch r := repl.(type) {
	case starlark.String:
		if withCount {
			n, err = p.countMatches(s, limit)
			if err != nil {
				return nil, err
			}
		}
		out, err = p.re.Replace(s, string(r), -1, limit)

	case starlark.Callable:
		t := newText(s)
		var callErr error
		out, err = p.re.ReplaceFunc(s, func(m regexp2.Match) string {
			n++
			if callErr != nil {
				return ""
			}
			v, e := starlark.Call(thread, r, starlark.Tuple{newMatch(p, t, &m, 0, len(s))}, nil)
			if e != nil {
				callErr = e
				return ""
			}
			str, ok := starlark.AsString(v)
			if !ok {
				callErr = fmt.Errorf("replacement function returned %s, want string", v.Type())
				return ""
			}
			return str
		}, -1, limit)
		if err == nil {
			err = callErr
		}

	default:
		return nil, fmt.Errorf("got %s for repl, want string or callable", repl.Type())
	}
	if err != nil {
		return nil, err
	}

	if withCount {
		return starlark.Tuple{starlark.String(out), starlark.MakeInt(n)}, nil
	}
	return starlark.String(out), nil
}

// countMatches counts the matches a replace with limit would make
func (p *Pattern) countMatches(s string, limit int) (int, error) {
	n := 0
	err := p.each(s, 0, posMax, func(*Match) bool {
		n++
		return limit < 0 || n < limit
	})
	return n, err
}

func patternSearch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		s      string
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).search(s, pos, endpos)
}

func patternMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		s      string
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).match(s, pos, endpos)
}

func patternFullmatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		s      string
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).fullmatch(s, pos, endpos)
}

func patternFindall(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		s      string
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).findall(s, pos, endpos)
}

func patternFinditer(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		s      string
		pos    = 0
		endpos = posMax
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s, "pos?", &pos, "endpos?", &endpos); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).finditer(s, pos, endpos)
}

func patternSplit(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		s        string
		maxSplit int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "string", &s, "maxsplit?", &maxSplit); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).split(s, maxSplit)
}

func patternSub(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		repl  starlark.Value
		s     string
		count int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "repl", &repl, "string", &s, "count?", &count); err != nil {
		return nil, err
	}
	return b.Receiver().(*Pattern).sub(thread, repl, s, count, b.Name() == "subn")
}
