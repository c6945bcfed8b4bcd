package syntax

import (
	"testing"
)

func TestAnalysisAtomicByAncestor(t *testing.T) {
	tree, err := Parse(`(?=(ab|cd))x`, 0)
	if err != nil {
		t.Fatal(err)
	}
	a := tree.Analysis
	if !a.Complete() {
		t.Fatal("analysis should be complete")
	}

	alt := findNode(tree.Root, NtAlternate)
	if alt == nil {
		t.Fatalf("no alternation:\n%v", tree.Dump())
	}
	if !a.IsAtomicByAncestor(alt) {
		t.Fatal("alternation inside a lookahead is atomic by ancestry")
	}
	if a.MayBacktrack(alt) {
		t.Fatal("alternation inside a lookahead can't be backtracked into")
	}
	if !a.IsAtomicByAncestor(tree.Root) {
		t.Fatal("root is atomic")
	}
}

func TestAnalysisMayBacktrack(t *testing.T) {
	tree, err := Parse(`(ab|cd)e`, 0)
	if err != nil {
		t.Fatal(err)
	}
	alt := findNode(tree.Root, NtAlternate)
	if alt == nil {
		t.Fatalf("no alternation:\n%v", tree.Dump())
	}
	if !tree.Analysis.MayBacktrack(alt) {
		t.Fatal("alternation followed by more pattern may backtrack")
	}
	// and it bubbles up
	if !tree.Analysis.MayBacktrack(tree.Root) {
		t.Fatal("root contains a backtracking node")
	}

	tree, err = Parse(`abc`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if tree.Analysis.MayBacktrack(tree.Root) {
		t.Fatalf("plain text can't backtrack:\n%v", tree.Dump())
	}
}

func TestAnalysisInLoop(t *testing.T) {
	tree, err := Parse(`(?:ab(c)d)+e`, 0)
	if err != nil {
		t.Fatal(err)
	}
	a := tree.Analysis
	capture := findNode(tree.Root.Children[0], NtCapture)
	if capture == nil {
		t.Fatalf("no capture:\n%v", tree.Dump())
	}
	if !a.IsInLoop(capture) {
		t.Fatal("capture repeats with the loop")
	}
	loop := findNode(tree.Root, NtLoop)
	if loop == nil {
		t.Fatalf("no loop:\n%v", tree.Dump())
	}
	if a.IsInLoop(loop) {
		t.Fatal("the loop itself isn't inside a loop")
	}
	if !a.MayContainCapture(loop) || !a.MayContainCapture(tree.Root) {
		t.Fatal("loop and root contain a capture")
	}

	// a loop that runs at most once doesn't repeat its body
	tree, err = Parse(`(?:ab(c)d)?e`, 0)
	if err != nil {
		t.Fatal(err)
	}
	capture = findNode(tree.Root.Children[0], NtCapture)
	if capture == nil {
		t.Fatalf("no capture:\n%v", tree.Dump())
	}
	if tree.Analysis.IsInLoop(capture) {
		t.Fatal("capture in an optional group isn't in a loop")
	}
}

func TestAnalysisFlags(t *testing.T) {
	// only backreferences keep IgnoreCase after reduction
	tree, err := Parse(`(a)(?i:\1)`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Analysis.HasIgnoreCase() {
		t.Fatal("expected ignore case")
	}
	if tree.Analysis.HasRightToLeft() {
		t.Fatal("unexpected right to left")
	}

	tree, err = Parse(`a(?<=b)`, 0)
	if err != nil {
		t.Fatal(err)
	}
	if !tree.Analysis.HasRightToLeft() {
		t.Fatal("lookbehind runs right to left")
	}
}

func TestAnalysisTooDeep(t *testing.T) {
	// build the tree directly, the parser wouldn't accept this much nesting
	root := newRegexNodeM(NtCapture, 0, 0)
	cur := root
	for i := 0; i < MaxAnalysisDepth+100; i++ {
		next := newRegexNodeM(NtCapture, 0, 1)
		cur.addChild(next)
		cur = next
	}
	leaf := newRegexNodeCh(NtOne, 0, 'a')
	cur.Children = append(cur.Children, leaf)
	leaf.Parent = cur

	a := AnalyzeTree(&RegexTree{Root: root})
	if a.Complete() {
		t.Fatal("analysis should have given up")
	}
	// every question gets the safe answer
	if !a.IsAtomicByAncestor(leaf) || !a.MayBacktrack(leaf) || !a.IsInLoop(leaf) ||
		!a.MayContainCapture(leaf) || !a.HasIgnoreCase() || !a.HasRightToLeft() {
		t.Fatal("incomplete analysis must answer conservatively")
	}
}

func TestAnalysisNil(t *testing.T) {
	var a *AnalysisResults
	n := newRegexNode(NtEmpty, 0)
	if a.Complete() {
		t.Fatal("nil results are never complete")
	}
	if !a.MayBacktrack(n) || !a.IsInLoop(n) || !a.MayContainCapture(n) {
		t.Fatal("nil results answer conservatively")
	}
}
