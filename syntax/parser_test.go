package syntax

import (
	"errors"
	"strings"
	"testing"
)

func TestParseErrors(t *testing.T) {
	scenarios := []struct {
		p    string
		code ErrorCode
	}{
		{`(a`, ErrInsufficientClosingParens},
		{`a)`, ErrInsufficientOpeningParens},
		{`[a`, ErrUnterminatedBracket},
		{`[z-a]`, ErrReversedCharRange},
		{`a{3,1}`, ErrReversedQuantifierRange},
		{`*a`, ErrQuantifierAfterNothing},
		{`a**`, ErrNestedQuantifier},
		{`\1`, ErrUndefinedBackRef},
		{`\k<x>`, ErrUndefinedNameRef},
		{`\p{Foo}`, ErrUnknownSlashP},
		{`[\p{IsNoSuchBlock}]`, ErrUnknownSlashP},
		{`a\`, ErrIllegalEndEscape},
		{`(?#abc`, ErrUnterminatedComment},
		{`(a)(?(1)b|c|d)`, ErrTooManyAlternates},
		{`(?<0>a)`, ErrCapNumNotZero},
		{strings.Repeat("(", MaxNestingDepth+1) + strings.Repeat(")", MaxNestingDepth+1), ErrNestingTooDeep},
	}

	for _, s := range scenarios {
		_, err := Parse(s.p, 0)
		if err == nil {
			t.Errorf("%v: expected error %q, got none", shorten(s.p), s.code)
			continue
		}
		if !errors.Is(err, &Error{Code: s.code}) {
			t.Errorf("%v: expected error %q, got %v", shorten(s.p), s.code, err)
		}
		var perr *Error
		if !errors.As(err, &perr) || perr.Expr != s.p {
			t.Errorf("%v: error doesn't carry the pattern: %#v", shorten(s.p), err)
		}
	}
}

func shorten(p string) string {
	if len(p) > 20 {
		return p[:20] + "..."
	}
	return p
}

func TestParseErrorMessage(t *testing.T) {
	_, err := Parse(`a{3,1}`, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if want := "error parsing regexp: illegal {x,y} with x > y in `a{3,1}`"; err.Error() != want {
		t.Fatalf("wanted %q, got %q", want, err.Error())
	}

	_, err = Parse(`\k<nope>`, 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "reference to undefined group name nope") {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestParseNestingAtLimit(t *testing.T) {
	p := strings.Repeat("(?:", MaxNestingDepth) + "a" + strings.Repeat(")", MaxNestingDepth)
	if _, err := Parse(p, 0); err != nil {
		t.Fatalf("unexpected error at the nesting limit: %v", err)
	}
}

func TestParseCaptures(t *testing.T) {
	tree, err := Parse(`(a)(?<name>b)(c)`, 0)
	if err != nil {
		t.Fatal(err)
	}
	// unnamed groups are numbered first, then named ones
	if tree.Captop != 4 {
		t.Fatalf("wanted 4 capture slots, got %v", tree.Captop)
	}
	if got := tree.Capnames["name"]; got != 3 {
		t.Fatalf("wanted named group at 3, got %v", got)
	}
	if want := []string{"0", "1", "2", "name"}; strings.Join(tree.Caplist, ",") != strings.Join(want, ",") {
		t.Fatalf("wanted caplist %v, got %v", want, tree.Caplist)
	}
}

func TestParseSparseCaptures(t *testing.T) {
	tree, err := Parse(`(?<5>a)(b)`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Caps == nil {
		t.Fatal("expected a sparse capture map")
	}
	if tree.Caps[5] != 2 || tree.Caps[0] != 0 {
		t.Fatalf("unexpected capture slots %v", tree.Caps)
	}
}

func TestParseExplicitCapture(t *testing.T) {
	tree, err := Parse(`(a)(?<n>b)`, ExplicitCapture)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Captop != 2 {
		t.Fatalf("wanted only group 0 and the named group, got %v slots", tree.Captop)
	}
	if _, ok := tree.Capnames["n"]; !ok {
		t.Fatal("missing named group")
	}
}

func TestParseRightToLeftReversesConcatenation(t *testing.T) {
	tree, err := Parse(`a\d`, RightToLeft)
	if err != nil {
		t.Fatal(err)
	}
	concat := findNode(tree.Root, NtConcatenate)
	if concat == nil || len(concat.Children) != 2 {
		t.Fatalf("unexpected tree:\n%v", tree.Dump())
	}
	// the \d is matched first when running right to left
	if concat.Children[0].T != NtSet || concat.Children[1].T != NtOne {
		t.Fatalf("children not in execution order:\n%v", tree.Dump())
	}
}

func TestParseRootIsCaptureZero(t *testing.T) {
	for _, p := range []string{`a`, `a|b`, `(x)+`, ``} {
		tree, err := Parse(p, 0)
		if err != nil {
			t.Fatal(err)
		}
		if tree.Root.T != NtCapture || tree.Root.M != 0 {
			t.Fatalf("%v: root should be capture 0:\n%v", p, tree.Dump())
		}
	}
}

// findNode returns the first node of type t in depth first order
func findNode(n *RegexNode, t NodeType) *RegexNode {
	if n.T == t {
		return n
	}
	for _, c := range n.Children {
		if f := findNode(c, t); f != nil {
			return f
		}
	}
	return nil
}

func countNodes(n *RegexNode, t NodeType) int {
	count := 0
	if n.T == t {
		count++
	}
	for _, c := range n.Children {
		count += countNodes(c, t)
	}
	return count
}
