package syntax

import (
	"testing"

	"slices"
)

func TestFindMode(t *testing.T) {
	scenarios := []struct {
		p    string
		opt  RegexOptions
		mode FindNextStartingPositionMode
	}{
		{`\Aabc`, 0, LeadingAnchor_LeftToRight_Beginning},
		{`\Gx+`, 0, LeadingAnchor_LeftToRight_Start},
		{`abc\z`, 0, TrailingAnchor_FixedLength_LeftToRight_End},
		{`a\d\Z`, 0, TrailingAnchor_FixedLength_LeftToRight_EndZ},
		{`hello\w+`, 0, LeadingString_LeftToRight},
		{`abc`, RightToLeft, LeadingString_RightToLeft},
		{`a`, RightToLeft, LeadingChar_RightToLeft},
		{`abc|def`, 0, LeadingStrings_LeftToRight},
		{`(?i)abc|def`, 0, LeadingStrings_OrdinalIgnoreCase_LeftToRight},
		{`.*`, 0, NoSearch},
	}

	for _, s := range scenarios {
		tree, err := Parse(s.p, s.opt)
		if err != nil {
			t.Fatal(err)
		}
		if got := tree.FindOptimizations.FindMode; got != s.mode {
			t.Errorf("%v: wanted %v, got %v\n%v", s.p, s.mode, got, tree.Dump())
		}
	}
}

func TestFindOptimizationsLengths(t *testing.T) {
	tree, err := Parse(`a{2,5}b`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.FindOptimizations.MinRequiredLength; got != 3 {
		t.Fatalf("wanted min length 3, got %v", got)
	}
	// only computed with a trailing anchor
	if got := tree.FindOptimizations.MaxPossibleLength; got != -1 {
		t.Fatalf("wanted no max length, got %v", got)
	}

	tree, err = Parse(`a{2,5}b\z`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.FindOptimizations.MaxPossibleLength; got != 6 {
		t.Fatalf("wanted max length 6, got %v", got)
	}
}

func TestFindOptimizationsLeadingPrefix(t *testing.T) {
	tree, err := Parse(`hello\w+`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got := tree.FindOptimizations.LeadingPrefix; got != "hello" {
		t.Fatalf("wanted prefix hello, got %q", got)
	}

	tree, err = Parse(`abc|def`, 0)
	if err != nil {
		t.Fatal(err)
	}
	got := append([]string(nil), tree.FindOptimizations.LeadingPrefixes...)
	slices.Sort(got)
	if !slices.Equal(got, []string{"abc", "def"}) {
		t.Fatalf("unexpected prefixes %q", got)
	}
}
