package helpers

import (
	"strings"
	"testing"
)

func TestIndexOf(t *testing.T) {
	for _, tc := range []struct {
		in, find  string
		want      int
		wantLast  int
		ignoreIdx int
	}{
		{"GHMJ", "HIJ", -1, -1, -1},
		{"abcabc", "bc", 1, 4, 1},
		{"abcabc", "", 0, 6, 0},
		{"aXbxb", "xb", 3, 3, 1},
		{"ab", "abc", -1, -1, -1},
		{"ääÄ", "ä", 0, 1, 0},
	} {
		in, find := []rune(tc.in), []rune(tc.find)
		if want, got := tc.want, IndexOf(in, find); want != got {
			t.Errorf("IndexOf(%q, %q): Expected %v got %v", tc.in, tc.find, want, got)
		}
		if want, got := tc.wantLast, LastIndexOf(in, find); want != got {
			t.Errorf("LastIndexOf(%q, %q): Expected %v got %v", tc.in, tc.find, want, got)
		}
		if want, got := tc.ignoreIdx, IndexOfIgnoreCase(in, find); want != got {
			t.Errorf("IndexOfIgnoreCase(%q, %q): Expected %v got %v", tc.in, tc.find, want, got)
		}
	}
}

func TestIndexOfAny1_Long(t *testing.T) {
	// long enough for the byte scan, with a byte pattern that straddles runes
	in := []rune(strings.Repeat("Ā", 40) + "\u0001")
	if want, got := 40, IndexOfAny1(in, '\u0001'); want != got {
		t.Fatalf("Expected %v got %v", want, got)
	}
	if want, got := -1, IndexOfAny1(in, 'ā'); want != got {
		t.Fatalf("Expected %v got %v", want, got)
	}
}

func TestIndexOfAnyVariants(t *testing.T) {
	in := []rune("hello, world")
	checks := []struct {
		name      string
		want, got int
	}{
		{"any", 4, IndexOfAny(in, []rune("wo"))},
		{"any empty", -1, IndexOfAny(in, nil)},
		{"any2", 5, IndexOfAny2(in, ',', ' ')},
		{"any3", 2, IndexOfAny3(in, 'z', 'l', 'd')},
		{"range", 5, IndexOfAnyInRange(in, ' ', ',')},
		{"except", 1, IndexOfAnyExcept(in, []rune("h"))},
		{"except range", 5, IndexOfAnyExceptInRange(in, 'a', 'z')},
		{"func", 6, IndexFunc(in, func(c rune) bool { return c == ' ' })},
		{"last1", 10, LastIndexOfAny1(in, 'l')},
	}
	for _, c := range checks {
		if c.want != c.got {
			t.Errorf("%s: Expected %v got %v", c.name, c.want, c.got)
		}
	}
}

func TestStartsWith(t *testing.T) {
	if StartsWith([]rune("GHMJ")[1:], []rune("HIJ")) {
		t.Fatal("unexpected prefix match")
	}
	if !StartsWith([]rune("HIJK"), []rune("HIJ")) {
		t.Fatal("expected prefix match")
	}
	if !StartsWithIgnoreCase([]rune("\u01C5emal"), []rune("\u01C6e")) {
		t.Fatal("expected case-insensitive prefix match across the title case orbit")
	}
	if !EqualFold('k', '\u212A') {
		t.Fatal("expected kelvin sign to fold to k")
	}
}
