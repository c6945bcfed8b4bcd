// Package starlarkre exposes the regexp2 engine to Starlark scripts as an
// re module in the style of Python's, with .NET pattern and replacement syntax.
package starlarkre

import (
	"container/list"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	regexp2 "github.com/ModxVoldHunter/CSharp-SDK-sub006"
	"go.starlark.net/starlark"
)

// maximum number of compiled patterns the module keeps around
const maxCacheSize = 32

// Values of the flags parameter
const (
	flagIgnoreCase = 1 << 1
	flagMultiline  = 1 << 3
	flagDotAll     = 1 << 4
	flagVerbose    = 1 << 6
	flagECMAScript = 1 << 10
	flagExplicit   = 1 << 11

	allFlags = flagIgnoreCase | flagMultiline | flagDotAll | flagVerbose | flagECMAScript | flagExplicit
)

// Module is the re module value. Compiled patterns are kept in a least
// recently used cache shared by every function of the module.
type Module struct {
	members starlark.StringDict
	timeout time.Duration

	mu    sync.Mutex
	list  *list.List                 // most recently used first
	cache map[cacheKey]*list.Element // pattern -> element of list
}

type cacheKey struct {
	pattern string
	flags   int
}

// list elements carry their key so eviction can clean the map
type cacheValue struct {
	pattern *Pattern
	key     cacheKey
}

// NewModule creates an re module. Every pattern it compiles gives up after
// timeout; zero means no limit.
func NewModule(timeout time.Duration) *Module {
	members := starlark.StringDict{
		"NOFLAG":     starlark.MakeInt(0),
		"I":          starlark.MakeInt(flagIgnoreCase),
		"IGNORECASE": starlark.MakeInt(flagIgnoreCase),
		"M":          starlark.MakeInt(flagMultiline),
		"MULTILINE":  starlark.MakeInt(flagMultiline),
		"S":          starlark.MakeInt(flagDotAll),
		"DOTALL":     starlark.MakeInt(flagDotAll),
		"X":          starlark.MakeInt(flagVerbose),
		"VERBOSE":    starlark.MakeInt(flagVerbose),
		"E":          starlark.MakeInt(flagECMAScript),
		"ECMASCRIPT": starlark.MakeInt(flagECMAScript),
		"N":          starlark.MakeInt(flagExplicit),
		"EXPLICIT":   starlark.MakeInt(flagExplicit),

		"compile":   starlark.NewBuiltin("compile", reCompile),
		"purge":     starlark.NewBuiltin("purge", rePurge),
		"escape":    starlark.NewBuiltin("escape", reEscape),
		"search":    starlark.NewBuiltin("search", reSearch),
		"match":     starlark.NewBuiltin("match", reMatch),
		"fullmatch": starlark.NewBuiltin("fullmatch", reFullmatch),
		"findall":   starlark.NewBuiltin("findall", reFindall),
		"finditer":  starlark.NewBuiltin("finditer", reFinditer),
		"split":     starlark.NewBuiltin("split", reSplit),
		"sub":       starlark.NewBuiltin("sub", reSub),
		"subn":      starlark.NewBuiltin("subn", reSub),
	}

	return &Module{
		members: members,
		timeout: timeout,
		list:    list.New(),
		cache:   make(map[cacheKey]*list.Element),
	}
}

var (
	_ starlark.Value    = (*Module)(nil)
	_ starlark.HasAttrs = (*Module)(nil)
)

func (m *Module) Freeze()               { m.members.Freeze() }
func (m *Module) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", m.Type()) }
func (m *Module) String() string        { return "<module re>" }
func (m *Module) Truth() starlark.Bool  { return true }
func (m *Module) Type() string          { return "module" }

func (m *Module) Attr(name string) (starlark.Value, error) {
	if v, ok := m.members[name]; ok {
		if b, ok := v.(*starlark.Builtin); ok {
			return b.BindReceiver(m), nil
		}
		return v, nil
	}
	return nil, nil
}

func (m *Module) AttrNames() []string { return m.members.Keys() }

// compile returns the cached pattern for pattern and flags, compiling and
// caching it on a miss. The least recently used pattern is evicted once the
// cache is full.
func (m *Module) compile(pattern string, flags int) (*Pattern, error) {
	key := cacheKey{pattern, flags}

	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.cache[key]; ok {
		m.list.MoveToFront(e)
		return e.Value.(*cacheValue).pattern, nil
	}

	p, err := newPattern(pattern, flags, m.timeout)
	if err != nil {
		return nil, err
	}

	if m.list.Len() >= maxCacheSize {
		last := m.list.Back()
		delete(m.cache, last.Value.(*cacheValue).key)
		m.list.Remove(last)
	}
	m.cache[key] = m.list.PushFront(&cacheValue{pattern: p, key: key})

	return p, nil
}

// purge empties the pattern cache
func (m *Module) purge() {
	m.mu.Lock()
	m.list.Init()
	clear(m.cache)
	m.mu.Unlock()
}

func (m *Module) cached() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list.Len()
}

// regexOptions translates the flags parameter to engine options
func regexOptions(flags int) (regexp2.RegexOptions, error) {
	if flags&^allFlags != 0 {
		return 0, fmt.Errorf("invalid flags 0x%x", flags)
	}

	opt := regexp2.None
	if flags&flagIgnoreCase != 0 {
		opt |= regexp2.IgnoreCase
	}
	if flags&flagMultiline != 0 {
		opt |= regexp2.Multiline
	}
	if flags&flagDotAll != 0 {
		opt |= regexp2.Singleline
	}
	if flags&flagVerbose != 0 {
		opt |= regexp2.IgnorePatternWhitespace
	}
	if flags&flagECMAScript != 0 {
		opt |= regexp2.ECMAScript
	}
	if flags&flagExplicit != 0 {
		opt |= regexp2.ExplicitCapture
	}
	return opt, nil
}

// compileRegexp compiles expr with the module's timeout, trimming the
// engine's error prefix for script authors
func compileRegexp(expr string, opt regexp2.RegexOptions, timeout time.Duration) (*regexp2.Regexp, error) {
	re, err := regexp2.Compile(expr, opt)
	if err != nil {
		if e, ok := strings.CutPrefix(err.Error(), "error parsing regexp: "); ok {
			return nil, errors.New(e)
		}
		return nil, err
	}
	if timeout > 0 {
		re.MatchTimeout = timeout
	}
	return re, nil
}

// patternParam is either a compiled Pattern or a pattern string
type patternParam struct {
	compiled *Pattern
	raw      string
}

var _ starlark.Unpacker = (*patternParam)(nil)

func (p *patternParam) Unpack(v starlark.Value) error {
	switch t := v.(type) {
	case *Pattern:
		p.compiled = t
	case starlark.String:
		p.raw = string(t)
	default:
		return errors.New("first argument must be string or compiled pattern")
	}
	return nil
}

// compilePattern resolves a pattern parameter through the module cache of the
// builtin's receiver
func compilePattern(b *starlark.Builtin, p patternParam, flags int) (*Pattern, error) {
	if p.compiled != nil {
		if flags != 0 {
			return nil, errors.New("cannot process flags argument with a compiled pattern")
		}
		return p.compiled, nil
	}
	return b.Receiver().(*Module).compile(p.raw, flags)
}

func reCompile(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		flags   int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "flags?", &flags); err != nil {
		return nil, err
	}
	return compilePattern(b, pattern, flags)
}

func rePurge(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if err := starlark.UnpackArgs(b.Name(), args, kwargs); err != nil {
		return nil, err
	}
	b.Receiver().(*Module).purge()
	return starlark.None, nil
}

// reEscape escapes every character that has a meaning in a pattern
func reEscape(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &s); err != nil {
		return nil, err
	}
	return starlark.String(regexp2.Escape(s)), nil
}

// reSearch returns the first match of pattern in string, or None
func reSearch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		s       string
		flags   int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &s, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.search(s, 0, posMax)
}

// reMatch returns a match starting at the beginning of string, or None
func reMatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		s       string
		flags   int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &s, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.match(s, 0, posMax)
}

// reFullmatch returns a match covering all of string, or None
func reFullmatch(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		s       string
		flags   int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &s, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.fullmatch(s, 0, posMax)
}

// reFindall lists the text of every match, or of its groups when the pattern has any
func reFindall(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		s       string
		flags   int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &s, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.findall(s, 0, posMax)
}

// reFinditer lists a Match for every match
func reFinditer(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern patternParam
		s       string
		flags   int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &s, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.finditer(s, 0, posMax)
}

// reSplit splits string around the matches. With a nonzero maxsplit at most
// that many splits happen and the rest of the string is the last element.
func reSplit(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern         patternParam
		s               string
		maxSplit, flags int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "string", &s, "maxsplit?", &maxSplit, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.split(s, maxSplit)
}

// reSub replaces the matches with repl, a replacement pattern ($1, ${name},
// $$ ...) or a function of the Match. subn also returns the number of
// replacements.
func reSub(thread *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var (
		pattern      patternParam
		repl         starlark.Value
		s            string
		count, flags int
	)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "pattern", &pattern, "repl", &repl, "string", &s, "count?", &count, "flags?", &flags); err != nil {
		return nil, err
	}
	p, err := compilePattern(b, pattern, flags)
	if err != nil {
		return nil, err
	}
	return p.sub(thread, repl, s, count, b.Name() == "subn")
}
