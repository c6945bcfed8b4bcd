package starlarkre

import (
	"errors"
	"fmt"
	"slices"

	regexp2 "github.com/ModxVoldHunter/CSharp-SDK-sub006"
	"go.starlark.net/starlark"
)

// Match is the result of a successful search. Positions are byte offsets
// into the searched string.
type Match struct {
	p   *Pattern
	t   *text
	m   *regexp2.Match
	pos int

	endpos int
}

var (
	_ starlark.Value    = (*Match)(nil)
	_ starlark.HasAttrs = (*Match)(nil)
	_ starlark.Mapping  = (*Match)(nil)
)

func newMatch(p *Pattern, t *text, m *regexp2.Match, pos, endpos int) *Match {
	return &Match{p: p, t: t, m: m, pos: pos, endpos: endpos}
}

// next finds the following match in the same input
func (m *Match) next() (*Match, error) {
	n, err := m.p.re.FindNextMatch(m.m)
	if err != nil || n == nil {
		return nil, err
	}
	return newMatch(m.p, m.t, n, m.pos, m.endpos), nil
}

func (m *Match) String() string {
	return fmt.Sprintf("<re.Match object; span=(%d, %d), match=%s>",
		m.start(0), m.end(0), starlark.String(m.m.String()))
}

func (m *Match) Type() string          { return "match" }
func (m *Match) Freeze()               {}
func (m *Match) Truth() starlark.Bool  { return true }
func (m *Match) Hash() (uint32, error) { return 0, fmt.Errorf("unhashable: %s", m.Type()) }

var errNoGroup = errors.New("no such group")

// group resolves an int or string group key
func (m *Match) group(v starlark.Value) (*regexp2.Group, error) {
	switch k := v.(type) {
	case starlark.Int:
		n, ok := k.Int64()
		if !ok {
			return nil, errNoGroup
		}
		if g := m.m.GroupByNumber(int(n)); g != nil {
			return g, nil
		}
	case starlark.String:
		if g := m.m.GroupByName(string(k)); g != nil {
			return g, nil
		}
	default:
		return nil, fmt.Errorf("group key must be int or string, got %s", v.Type())
	}
	return nil, errNoGroup
}

func matched(g *regexp2.Group) bool { return len(g.Captures) > 0 }

// text returns the last capture of group n, or "" when it didn't take part
func (m *Match) text(n int) string {
	g := m.m.GroupByNumber(n)
	if g == nil || !matched(g) {
		return ""
	}
	return g.String()
}

func (m *Match) value(g *regexp2.Group, dflt starlark.Value) starlark.Value {
	if !matched(g) {
		return dflt
	}
	return starlark.String(g.String())
}

func (m *Match) span(g *regexp2.Group) (int, int) {
	if !matched(g) {
		return -1, -1
	}
	return m.t.offs[g.Index], m.t.offs[g.Index+g.Length]
}

func (m *Match) start(n int) int {
	s, _ := m.span(m.m.GroupByNumber(n))
	return s
}

func (m *Match) end(n int) int {
	_, e := m.span(m.m.GroupByNumber(n))
	return e
}

// Get makes m[g] the same as m.group(g)
func (m *Match) Get(k starlark.Value) (starlark.Value, bool, error) {
	g, err := m.group(k)
	if err != nil {
		return nil, false, err
	}
	return m.value(g, starlark.None), true, nil
}

var matchMethods = map[string]*starlark.Builtin{
	"group":     starlark.NewBuiltin("group", matchGroup),
	"groups":    starlark.NewBuiltin("groups", matchGroups),
	"groupdict": starlark.NewBuiltin("groupdict", matchGroupdict),
	"start":     starlark.NewBuiltin("start", matchSpan),
	"end":       starlark.NewBuiltin("end", matchSpan),
	"span":      starlark.NewBuiltin("span", matchSpan),
}

var matchMembers = map[string]func(m *Match) starlark.Value{
	"string": func(m *Match) starlark.Value { return starlark.String(m.t.s) },
	"re":     func(m *Match) starlark.Value { return m.p },
	"pos":    func(m *Match) starlark.Value { return starlark.MakeInt(m.pos) },
	"endpos": func(m *Match) starlark.Value { return starlark.MakeInt(m.endpos) },
}

func (m *Match) Attr(name string) (starlark.Value, error) {
	if o, ok := matchMethods[name]; ok {
		return o.BindReceiver(m), nil
	}
	if o, ok := matchMembers[name]; ok {
		return o(m), nil
	}
	return nil, nil
}

func (m *Match) AttrNames() []string {
	names := make([]string, 0, len(matchMethods)+len(matchMembers))
	for name := range matchMethods {
		names = append(names, name)
	}
	for name := range matchMembers {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// group() is group 0, one key gives a string and several give a tuple
func matchGroup(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	if len(kwargs) > 0 {
		return nil, fmt.Errorf("%s: unexpected keyword arguments", b.Name())
	}
	m := b.Receiver().(*Match)
	if len(args) == 0 {
		return starlark.String(m.m.String()), nil
	}
	res := make(starlark.Tuple, len(args))
	for i, a := range args {
		g, err := m.group(a)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", b.Name(), err)
		}
		res[i] = m.value(g, starlark.None)
	}
	if len(res) == 1 {
		return res[0], nil
	}
	return res, nil
}

func matchGroups(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dflt starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "default?", &dflt); err != nil {
		return nil, err
	}
	m := b.Receiver().(*Match)
	nums := m.p.re.GetGroupNumbers()
	res := make(starlark.Tuple, 0, len(nums)-1)
	for _, n := range nums[1:] {
		res = append(res, m.value(m.m.GroupByNumber(n), dflt))
	}
	return res, nil
}

// groupdict maps the named groups to their text
func matchGroupdict(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var dflt starlark.Value = starlark.None
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "default?", &dflt); err != nil {
		return nil, err
	}
	m := b.Receiver().(*Match)
	gi := m.p.groupIndex()
	d := starlark.NewDict(gi.Len())
	for _, name := range gi.Keys() {
		g := m.m.GroupByName(string(name.(starlark.String)))
		if err := d.SetKey(name, m.value(g, dflt)); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// matchSpan implements start, end and span
func matchSpan(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var key starlark.Value = starlark.MakeInt(0)
	if err := starlark.UnpackArgs(b.Name(), args, kwargs, "group?", &key); err != nil {
		return nil, err
	}
	m := b.Receiver().(*Match)
	g, err := m.group(key)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", b.Name(), err)
	}
	s, e := m.span(g)
	switch b.Name() {
	case "start":
		return starlark.MakeInt(s), nil
	case "end":
		return starlark.MakeInt(e), nil
	default:
		return starlark.Tuple{starlark.MakeInt(s), starlark.MakeInt(e)}, nil
	}
}
