package syntax

import (
	"strings"
)

// AnchorLoc is a bit set of the anchors a pattern starts with
type AnchorLoc int16

const (
	AnchorBeginning AnchorLoc = 1 << iota
	AnchorBol
	AnchorStart
	AnchorEol
	AnchorEndZ
	AnchorEnd
	AnchorBoundary
	AnchorECMABoundary
)

// anchorNodes maps each anchoring node type to its bit, in the order
// AnchorLoc.String lists them
var anchorNodes = []struct {
	t    NodeType
	a    AnchorLoc
	name string
}{
	{NtBeginning, AnchorBeginning, "Beginning"},
	{NtStart, AnchorStart, "Start"},
	{NtBol, AnchorBol, "Bol"},
	{NtBoundary, AnchorBoundary, "Boundary"},
	{NtECMABoundary, AnchorECMABoundary, "ECMABoundary"},
	{NtEol, AnchorEol, "Eol"},
	{NtEnd, AnchorEnd, "End"},
	{NtEndZ, AnchorEndZ, "EndZ"},
}

// getAnchors reports the anchor the pattern has to begin with, if any
func getAnchors(tree *RegexTree) AnchorLoc {
	t := findLeadingOrTrailingAnchor(tree.Root, true)
	for _, n := range anchorNodes {
		if n.t == t {
			return n.a
		}
	}
	return 0
}

func (anchors AnchorLoc) String() string {
	var names []string
	for _, n := range anchorNodes {
		if anchors&n.a != 0 {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "None"
	}
	return strings.Join(names, ", ")
}

func isAnchorNode(t NodeType) bool {
	for _, n := range anchorNodes {
		if n.t == t {
			return true
		}
	}
	return false
}

// findLeadingOrTrailingAnchor returns the anchor every match has to begin
// (leading) or end with, or NtUnknown
func findLeadingOrTrailingAnchor(node *RegexNode, leading bool) NodeType {
	for {
		switch {
		case isAnchorNode(node.T):
			return node.T

		case node.T == NtAtomic || node.T == NtCapture:
			node = node.Children[0]

		case node.T == NtConcatenate:
			next := edgeChild(node.Children, leading)
			if next == nil {
				return NtUnknown
			}
			node = next

		case node.T == NtAlternate:
			// every branch needs the same anchor
			anchor := NtUnknown
			for i, child := range node.Children {
				a := findLeadingOrTrailingAnchor(child, leading)
				if a == NtUnknown || (i > 0 && a != anchor) {
					return NtUnknown
				}
				anchor = a
			}
			return anchor

		default:
			return NtUnknown
		}
	}
}

// edgeChild is the first (or last) child that could be an anchor. Empty,
// lookaround and bumpalong nodes match no text and are passed over.
func edgeChild(children []*RegexNode, first bool) *RegexNode {
	for i := range children {
		if !first {
			i = len(children) - 1 - i
		}
		switch children[i].T {
		case NtEmpty, NtPosLook, NtNegLook, NtUpdateBumpalong:
			continue
		}
		return children[i]
	}
	return nil
}
