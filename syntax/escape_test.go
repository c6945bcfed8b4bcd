package syntax

import (
	"errors"
	"testing"
)

func TestEscape(t *testing.T) {
	scenarios := []struct {
		in, want string
	}{
		{`abc`, `abc`},
		{`a.b*c`, `a\.b\*c`},
		{`(x|y)`, `\(x\|y\)`},
		{"tab\there", `tab\there`},
		{"new\nline", `new\nline`},
		{`# $5 ^`, `\#\ \$5\ \^`},
		{`é`, `é`},
	}
	for _, s := range scenarios {
		if got := Escape(s.in); got != s.want {
			t.Errorf("Escape(%q): wanted %q, got %q", s.in, s.want, got)
		}
	}
}

func TestUnescape(t *testing.T) {
	scenarios := []struct {
		in, want string
	}{
		{`abc`, `abc`},
		{`a\.b`, `a.b`},
		{`\x41B`, `AB`},
		{`line\n`, "line\n"},
		{`\\`, `\`},
	}
	for _, s := range scenarios {
		got, err := Unescape(s.in)
		if err != nil {
			t.Errorf("Unescape(%q): %v", s.in, err)
			continue
		}
		if got != s.want {
			t.Errorf("Unescape(%q): wanted %q, got %q", s.in, s.want, got)
		}
	}

	if _, err := Unescape(`abc\`); !errors.Is(err, &Error{Code: ErrIllegalEndEscape}) {
		t.Fatalf("expected illegal end escape, got %v", err)
	}
}

func TestEscapeRoundTrip(t *testing.T) {
	for _, in := range []string{"a+b", "[x]{2}", "1.5 * (2 + 3)", "a\tb\r\n", "$^|#"} {
		esc := Escape(in)
		back, err := Unescape(esc)
		if err != nil {
			t.Fatalf("Unescape(%q): %v", esc, err)
		}
		if back != in {
			t.Fatalf("round trip of %q gave %q", in, back)
		}

		// an escaped string parses to plain text
		tree, err := Parse(esc, 0)
		if err != nil {
			t.Fatalf("Parse(%q): %v", esc, err)
		}
		if n := findNode(tree.Root, NtLoop); n != nil {
			t.Fatalf("%q parsed to a loop:\n%v", esc, tree.Dump())
		}
	}
}
