package regexp2

import (
	"testing"
)

func TestRE2CompatCapture(t *testing.T) {
	r := MustCompile(`re(?P<a>2)`, RE2)
	m, err := r.FindStringMatch("blahre2blah")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if m == nil {
		t.Fatal("Expected match")
	}
	if want, got := "2", m.GroupByName("a").String(); want != got {
		t.Fatalf("Wanted %v got %v", want, got)
	}
}

func TestRE2CompatCapture_Invalid(t *testing.T) {
	bogus := []string{
		`(?P<name>a`,
		`(?P<name>`,
		`(?P<name`,
		`(?P<x y>a)`,
		`(?P<>a)`,
	}
	for _, inp := range bogus {
		t.Run(inp, func(t *testing.T) {
			r, err := Compile(inp, RE2)
			if err == nil {
				t.Fatal("Expected failure to parse")
			}
			if r != nil {
				t.Fatal("expected regexp to be nil")
			}
		})
	}
}

func TestRE2NamedAscii(t *testing.T) {
	table := []struct {
		nm  string
		pos string
		neg string
	}{
		{nm: "alnum", pos: "1", neg: "!"},
		{nm: "alpha", pos: "g", neg: "0"},
		{nm: "blank", pos: " ", neg: "_"},
		{nm: "ascii", pos: "*", neg: "\x8f"},
		{nm: "cntrl", pos: "\t", neg: "A"},
		{nm: "graph", pos: "!", neg: " "},
		{nm: "lower", pos: "a", neg: "A"},
		{nm: "print", pos: " ", neg: "\r"},
		{nm: "punct", pos: "@", neg: "A"},
		{nm: "space", pos: " ", neg: "A"},
		{nm: "digit", pos: "1", neg: "A"},
		{nm: "upper", pos: "A", neg: "a"},
		{nm: "word", pos: "_", neg: "-"},
		{nm: "xdigit", pos: "A", neg: "G"},
	}

	for _, row := range table {
		for _, negate := range []bool{false, true} {
			pattern, yes, no := `[[:`+row.nm+`:]]`, row.pos, row.neg
			if negate {
				pattern, yes, no = `[[:^`+row.nm+`:]]`, row.neg, row.pos
			}
			t.Run(pattern, func(t *testing.T) {
				r := MustCompile(pattern, RE2)
				if m, _ := r.MatchString(yes); !m {
					t.Fatalf("Expected match of %q", yes)
				}
				if m, _ := r.MatchString(no); m {
					t.Fatalf("Expected no match of %q", no)
				}
			})
		}
	}
}

// The RE2 option switches classes to ASCII and $ to end of text only
func TestRE2Semantics(t *testing.T) {
	notZero := "߀" // ߀

	tests := []struct {
		pattern string
		opt     RegexOptions
		input   string
		want    bool
	}{
		{`[[:digit:]a]`, RE2, "b", false},
		{`[[:digit:]a]`, RE2, "a", true},
		{`[[:digit:]a]`, RE2, "[", false},
		{`[[:digit:]a]`, RE2, "5", true},

		// PCRE allows for \n after the $ and RE2 doesn't
		{`^ac$\n`, RE2, "ac", false},
		{`^ac$\n`, RE2, "ac\n", false},
		{`^ac$\n`, RE2 | Multiline, "ac", false},
		{`^ac$\n`, RE2 | Multiline, "ac\n", true},

		{`^\d$`, RE2, notZero, false},
		{`^\D$`, RE2, notZero, true},
		{`^\d$`, 0, notZero, true},
		{`^\D$`, 0, notZero, false},

		{`\w`, RE2, "å", false},
		{`\W`, RE2, "å", true},
		{`\w`, 0, "å", true},
		{`\W`, 0, "å", false},

		{`\s`, RE2, "\x0b", false},
		{`\S`, RE2, "\x0b", true},
		{`\s`, 0, "\x0b", true},
		{`\S`, 0, "\x0b", false},

		{`a\_test`, RE2, "a_test", true},
		{`a\_test`, RE2, "a\\_test", false},
	}
	for _, tc := range tests {
		r := MustCompile(tc.pattern, tc.opt)
		got, err := r.MatchString(tc.input)
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("%q (options %v) on %q: got %v, want %v", tc.pattern, tc.opt, tc.input, got, tc.want)
		}
	}
}

func TestEscapeLiteralDefaults(t *testing.T) {
	if _, err := Compile(`a\_test`, 0); err == nil {
		t.Fatal("Expected compile fail")
	}
}
