package regexp2

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestRegexp_Basic(t *testing.T) {
	r, err := Compile("test(?<named>ing)?", 0)
	if err != nil {
		t.Fatalf("unexpected compile err: %v", err)
	}
	m, err := r.FindStringMatch("this is a testing stuff")
	if err != nil {
		t.Fatalf("unexpected match err: %v", err)
	}
	if m == nil {
		t.Fatal("Nil match, expected success")
	}
	if want, got := "testing", m.String(); want != got {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
	}
	if want, got := "ing", m.GroupByName("named").String(); want != got {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
	}
	if want, got := "test(?<named>ing)?", r.String(); want != got {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
	}
}

func TestMustCompilePanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		msg, _ := r.(string)
		if !strings.HasPrefix(msg, "regexp2: Compile(`a{3,1}`): ") {
			t.Fatalf("unexpected panic: %v", r)
		}
	}()
	MustCompile("a{3,1}", 0)
}

// check all our functions and properties around basic capture groups and referential for Group 0
func TestCapture_Basic(t *testing.T) {
	r := MustCompile(`.*\B(SUCCESS)\B.*`, 0)
	m, err := r.FindStringMatch("adfadsfSUCCESSadsfadsf")
	if err != nil {
		t.Fatalf("Unexpected match error: %v", err)
	}
	if m == nil {
		t.Fatalf("Should have matched")
	}

	checks := []struct {
		name      string
		want, got interface{}
	}{
		{"match", "adfadsfSUCCESSadsfadsf", m.String()},
		{"index", 0, m.Index},
		{"length", 22, m.Length},
		{"captures", 1, len(m.Captures)},
		{"capture text", m.String(), m.Captures[0].String()},
		{"capture index", 0, m.Captures[0].Index},
		{"capture length", 22, m.Captures[0].Length},
		{"groups", 2, len(m.Groups())},
		{"group 0", m.String(), m.Groups()[0].String()},
		{"group 0 captures", 1, len(m.Groups()[0].Captures)},
		{"group 0 capture index", m.Captures[0].Index, m.Groups()[0].Captures[0].Index},
		{"group 0 capture length", m.Captures[0].Length, m.Groups()[0].Captures[0].Length},
		{"group 0 capture text", m.Captures[0].String(), m.Groups()[0].Captures[0].String()},
		{"group 1 index", 7, m.Groups()[1].Index},
		{"group 1 length", 7, m.Groups()[1].Length},
		{"group 1", "SUCCESS", m.Groups()[1].String()},
		{"group 1 runes", "SUCCESS", string(m.Groups()[1].Runes())},
	}
	for _, c := range checks {
		if c.want != c.got {
			t.Fatalf("%s: Wanted '%v'\nGot '%v'", c.name, c.want, c.got)
		}
	}
}

func TestEscapeUnescape_Basic(t *testing.T) {
	s1 := "#$^*+(){}<>\\|. "
	s2 := Escape(s1)
	s3, err := Unescape(s2)
	if err != nil {
		t.Fatalf("Unexpected error during unescape: %v", err)
	}

	if want, got := `\#\$\^\*\+\(\)\{\}<>\\\|\.\ `, s2; want != got {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
	}
	if want, got := s1, s3; want != got {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
	}
}

func TestGroups_Basic(t *testing.T) {
	type d struct {
		p    string
		s    string
		name []string
		num  []int
		strs []string
	}
	data := []d{
		{"(?<first_name>\\S+)\\s(?<last_name>\\S+)",
			"Ryan Byington",
			[]string{"0", "first_name", "last_name"},
			[]int{0, 1, 2},
			[]string{"Ryan Byington", "Ryan", "Byington"}},
		{"((?<One>abc)\\d+)?(?<Two>xyz)(.*)",
			"abc208923xyzanqnakl",
			[]string{"0", "1", "2", "One", "Two"},
			[]int{0, 1, 2, 3, 4},
			[]string{"abc208923xyzanqnakl", "abc208923", "anqnakl", "abc", "xyz"}},
		{"(?<5>a)(b)",
			"xab",
			[]string{"0", "1", "5"},
			[]int{0, 1, 5},
			[]string{"ab", "b", "a"}},
	}

	validateGroupNamesNumbers := func(re *Regexp, v d) {
		if len(v.name) != len(v.num) {
			t.Fatalf("Invalid data, group name count and number count must match: %+v", v)
		}

		groupNames := re.GetGroupNames()
		if !reflect.DeepEqual(groupNames, v.name) {
			t.Fatalf("expected: %v, actual: %v", v.name, groupNames)
		}
		groupNums := re.GetGroupNumbers()
		if !reflect.DeepEqual(groupNums, v.num) {
			t.Fatalf("expected: %v, actual: %v", v.num, groupNums)
		}
		for i := range groupNums {
			if want, got := groupNames[i], re.GroupNameFromNumber(groupNums[i]); want != got {
				t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
			}
			if want, got := groupNums[i], re.GroupNumberFromName(groupNames[i]); want != got {
				t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
			}
		}
	}

	for _, v := range data {
		re := MustCompile(v.p, 0)

		fatalf := func(format string, args ...interface{}) {
			args = append(args, v, re.code.Dump())
			t.Fatalf(format+" using test data: %#v\ndump:%v", args...)
		}

		validateGroupNamesNumbers(re, v)

		m, err := re.FindStringMatch(v.s)
		if err != nil {
			fatalf("Unexpected error in match: %v", err)
		}
		if want, got := len(v.strs), m.GroupCount(); want != got {
			fatalf("Wanted '%v'\nGot '%v'", want, got)
		}
		if want, got := len(v.strs), len(m.Groups()); want != got {
			fatalf("Wanted '%v'\nGot '%v'", want, got)
		}
		for i := range v.name {
			grp1 := m.GroupByName(v.name[i])
			grp2 := m.GroupByNumber(v.num[i])
			if grp1 != grp2 {
				fatalf("Expected GroupByName and GroupByNumber to return same result for %v, %v", v.name[i], v.num[i])
			}
			if want, got := v.strs[i], grp1.String(); want != got {
				fatalf("Value[%v] Wanted '%v'\nGot '%v'", i, want, got)
			}
		}

		// running a match leaves the group info alone
		validateGroupNamesNumbers(re, v)
	}
}

func TestGroupLookupMisses(t *testing.T) {
	re := MustCompile(`(?<a>x)(y)`, 0)
	m, err := re.FindStringMatch("xy")
	if err != nil || m == nil {
		t.Fatalf("expected match, got %v, %v", m, err)
	}
	if g := m.GroupByName("nope"); g != nil {
		t.Fatalf("expected nil group, got %v", g)
	}
	if g := m.GroupByNumber(7); g != nil {
		t.Fatalf("expected nil group, got %v", g)
	}
	if want, got := "", re.GroupNameFromNumber(7); want != got {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
	}
	if want, got := -1, re.GroupNumberFromName("nope"); want != got {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
	}
}

func TestFindStringMatchStartingAt(t *testing.T) {
	re := MustCompile(`b`, 0)
	s := "äbäb" // ä is two bytes

	m, err := re.FindStringMatchStartingAt(s, 3)
	if err != nil {
		t.Fatal(err)
	}
	// indexes of matches are in runes
	if want, got := 3, m.Index; want != got {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
	}

	if _, err := re.FindStringMatchStartingAt(s, 1); !errors.Is(err, ErrStartOutOfRange) {
		t.Fatalf("start inside a rune: got %v", err)
	}
	if _, err := re.FindStringMatchStartingAt(s, 99); !errors.Is(err, ErrStartOutOfRange) {
		t.Fatalf("start past the end: got %v", err)
	}
	if _, err := re.FindRunesMatchStartingAt([]rune(s), 5); !errors.Is(err, ErrStartOutOfRange) {
		t.Fatalf("rune start past the end: got %v", err)
	}
}

func TestMatchStringAndRunes(t *testing.T) {
	re := MustCompile(`^\d{3}-\d{4}$`, 0)
	for _, tc := range []struct {
		in   string
		want bool
	}{
		{"555-1234", true},
		{"555-12345", false},
		{"", false},
	} {
		got, err := re.MatchString(tc.in)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("MatchString(%q) = %v, want %v", tc.in, got, tc.want)
		}
		got, err = re.MatchRunes([]rune(tc.in))
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("MatchRunes(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}

func TestFindNextMatchEmpty(t *testing.T) {
	re := MustCompile(`x*`, 0)
	var spans [][2]int
	m, err := re.FindStringMatch("axxb")
	for ; m != nil && err == nil; m, err = re.FindNextMatch(m) {
		spans = append(spans, [2]int{m.Index, m.Length})
	}
	if err != nil {
		t.Fatal(err)
	}
	want := [][2]int{{0, 0}, {1, 2}, {3, 0}, {4, 0}}
	if !reflect.DeepEqual(want, spans) {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, spans)
	}
	if m, _ := re.FindNextMatch(nil); m != nil {
		t.Fatalf("expected nil for a nil match, got %v", m)
	}
}

func TestMatchDump(t *testing.T) {
	m, err := MustCompile(`(?<word>\w+) (\d)+`, 0).FindStringMatch("go 123")
	if err != nil || m == nil {
		t.Fatalf("expected a match, got %v %v", m, err)
	}
	out := m.dump()
	for _, want := range []string{
		"Group 0 (0), 1 caps:\n  (0, 6) go 123\n",
		"Group 1 (1), 3 caps:\n  (3, 1) 1\n  (4, 1) 2\n  (5, 1) 3\n",
		"Group 2 (word), 1 caps:\n  (0, 2) go\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Wanted '%v'\nGot '%v'", want, out)
		}
	}
}
