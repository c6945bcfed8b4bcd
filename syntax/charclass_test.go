package syntax

import (
	"reflect"
	"testing"
	"unicode"
)

func rangeSet(negate bool, pairs ...rune) *CharSet {
	set := &CharSet{negate: negate}
	for i := 0; i < len(pairs); i += 2 {
		set.addRange(pairs[i], pairs[i+1])
	}
	set.canonicalize()
	return set
}

func TestCharSetHashRoundTrip(t *testing.T) {
	mixed := &CharSet{}
	mixed.addRange('a', 'z')
	mixed.addRange('A', 'Z')
	mixed.addChar(':')
	mixed.addDigit(false, false)

	withSub := rangeSet(false, 'a', 'z')
	withSub.addSubtraction(rangeSet(false, 'a', 'e'))

	for name, set := range map[string]*CharSet{
		"mixed":       mixed,
		"negated":     rangeSet(true, '0', '9'),
		"subtraction": withSub,
		"word":        WordClass(),
		"not space":   NotSpaceClass(),
		"ecma digit":  ECMADigitClass(),
	} {
		got, err := NewCharSetRuntime(string(set.Hash()))
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if !set.Equals(&got) {
			t.Errorf("%s: Wanted '%v'\nGot '%v'", name, set, got)
		}
	}
}

func TestCharSetHashCorrupt(t *testing.T) {
	hash := WordClass().Hash()
	for _, buf := range []string{
		"",
		string(hash[:len(hash)-1]),
		// no ranges, then one category code past the end of the table
		"\x00\x00\x01\xfe\x7f",
	} {
		if _, err := NewCharSetRuntime(buf); err == nil {
			t.Errorf("%q: expected an error", buf)
		}
	}
}

func TestCharSetString(t *testing.T) {
	tests := []struct {
		set  *CharSet
		want string
	}{
		{rangeSet(false, '\x01', unicode.MaxRune), `[^\x00]`},
		{rangeSet(false, 'a', 'z'), `[a-z]`},
		{rangeSet(false, 'a', 'b'), `[ab]`},
		{rangeSet(true, 'x', 'x'), `[^x]`},
		{rangeSet(false, 'a', 'c', 'b', 'f', 'h', 'h'), `[a-fh]`},
		{rangeSet(false, 0, unicode.MaxRune), `[any]`},
	}
	for _, tc := range tests {
		if got := tc.set.String(); tc.want != got {
			t.Errorf("Wanted '%v'\nGot '%v'", tc.want, got)
		}
	}
}

func TestCharSetCharIn(t *testing.T) {
	tests := []struct {
		name string
		set  *CharSet
		yes  string
		no   string
	}{
		{"range", rangeSet(false, 'a', 'z'), "aqz", "AQ0{"},
		{"negated", rangeSet(true, 'a', 'z'), "AQ0{", "aqz"},
		{"digit", DigitClass(), "05٣", "a "},
		{"ecma digit", ECMADigitClass(), "05", "a٣"},
		{"word", WordClass(), "a_Z9é", " -!"},
		{"space", SpaceClass(), " \t\n ", "a_"},
		{"any", AnyClass(), "a\n\u0000", ""},
	}
	for _, tc := range tests {
		for _, ch := range tc.yes {
			if !tc.set.CharIn(ch) {
				t.Errorf("%s: expected %q in %v", tc.name, ch, tc.set)
			}
		}
		for _, ch := range tc.no {
			if tc.set.CharIn(ch) {
				t.Errorf("%s: expected %q not in %v", tc.name, ch, tc.set)
			}
		}
	}
}

func TestCharSetSingleton(t *testing.T) {
	set := &CharSet{}
	set.addChar('x')
	if !set.IsSingleton() || set.IsSingletonInverse() {
		t.Fatalf("[x] should be a singleton: %v", set)
	}
	if want, got := 'x', set.SingletonChar(); want != got {
		t.Fatalf("Wanted '%c'\nGot '%c'", want, got)
	}

	inv := rangeSet(true, 'x', 'x')
	if inv.IsSingleton() || !inv.IsSingletonInverse() {
		t.Fatalf("[^x] should be a singleton inverse: %v", inv)
	}

	if rangeSet(false, 'x', 'y').IsSingleton() {
		t.Fatal("[xy] is not a singleton")
	}
}

func TestCharSetGetSetChars(t *testing.T) {
	tests := []struct {
		set  *CharSet
		max  int
		want []rune
	}{
		{rangeSet(false, 'a', 'c'), 3, []rune("abc")},
		{rangeSet(false, 'a', 'c'), 2, nil},
		{rangeSet(false, 'a', 'a', 'x', 'y'), 5, []rune("axy")},
		{rangeSet(true, 'a', 'c'), 5, nil},
		{DigitClass(), 10, nil},
	}
	for _, tc := range tests {
		if got := tc.set.GetSetChars(tc.max); !reflect.DeepEqual(tc.want, got) {
			t.Errorf("%v max %v: Wanted '%q'\nGot '%q'", tc.set, tc.max, tc.want, got)
		}
	}
}

func TestCharSetMayOverlap(t *testing.T) {
	tests := []struct {
		a, b *CharSet
		want bool
	}{
		{rangeSet(false, 'a', 'c'), rangeSet(false, 'b', 'd'), true},
		{rangeSet(false, 'a', 'c'), rangeSet(false, 'x', 'z'), false},
		{rangeSet(true, 'a', 'c'), rangeSet(false, 'b', 'b'), false},
		{rangeSet(false, 'b', 'b'), rangeSet(true, 'a', 'c'), false},
		{rangeSet(true, 'a', 'c'), rangeSet(false, 'c', 'd'), true},
		{rangeSet(true, 'a', 'a'), rangeSet(true, 'b', 'b'), true},
		{DigitClass(), rangeSet(false, 'a', 'a'), true},
	}
	for _, tc := range tests {
		if got := tc.a.MayOverlap(*tc.b); tc.want != got {
			t.Errorf("%v and %v: Wanted '%v'\nGot '%v'", tc.a, tc.b, tc.want, got)
		}
	}
}

func firstSet(n *RegexNode) *CharSet {
	if n.Set != nil {
		return n.Set
	}
	for _, c := range n.Children {
		if s := firstSet(c); s != nil {
			return s
		}
	}
	return nil
}

func TestCharSetNamedBlocks(t *testing.T) {
	greek := &CharSet{}
	greek.addCategory("IsGreek", false, false)
	notGreek := &CharSet{}
	notGreek.addCategory("IsGreek", true, false)

	tests := []struct {
		pattern string
		set     *CharSet
		yes     string
		no      string
	}{
		{`\p{IsGreek}`, greek, "αβΩϿ", "a1я"},
		{`\P{IsGreek}`, notGreek, "a1я", "αβΩ"},
		{`\p{IsBasicLatin}`, nil, "a~\x00", "é"},
		{`[\p{IsLatin-1Supplement}x]`, nil, "éx", "a"},
		{`[^\p{IsGreek}\p{Nd}]`, nil, "a_я", "α5٣"},
	}
	for _, tc := range tests {
		tree, err := Parse(tc.pattern, 0)
		if err != nil {
			t.Fatalf("%s: %v", tc.pattern, err)
		}
		set := firstSet(tree.Root)
		if set == nil {
			t.Fatalf("%s: no set in %v", tc.pattern, tree.Dump())
		}
		if tc.set != nil && !tc.set.Equals(set) {
			t.Errorf("%s: Wanted '%v'\nGot '%v'", tc.pattern, tc.set, set)
		}
		for _, ch := range tc.yes {
			if !set.CharIn(ch) {
				t.Errorf("%s: expected %q in %v", tc.pattern, ch, set)
			}
		}
		for _, ch := range tc.no {
			if set.CharIn(ch) {
				t.Errorf("%s: expected %q not in %v", tc.pattern, ch, set)
			}
		}
	}

	if _, err := Parse(`\p{IsKlingon}`, 0); err == nil {
		t.Fatal("unknown block should not parse")
	}
}
