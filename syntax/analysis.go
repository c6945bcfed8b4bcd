package syntax

// MaxAnalysisDepth bounds how deep the tree analysis recurses. A deeper tree
// leaves the analysis incomplete and every query then answers conservatively.
const MaxAnalysisDepth = 2000

// AnalysisResults holds per-node facts about a finished tree that the writer
// uses to skip backtracking bookkeeping.
type AnalysisResults struct {
	complete bool

	atomicByAncestor map[*RegexNode]struct{}
	containsCapture  map[*RegexNode]struct{}
	mayBacktrack     map[*RegexNode]struct{}
	inLoops          map[*RegexNode]struct{}

	hasIgnoreCase  bool
	hasRightToLeft bool
}

// AnalyzeTree walks the reduced tree once and records which nodes are atomic by
// ancestry, may backtrack, sit in a loop, or contain a capture.
func AnalyzeTree(tree *RegexTree) *AnalysisResults {
	r := &AnalysisResults{
		atomicByAncestor: map[*RegexNode]struct{}{},
		containsCapture:  map[*RegexNode]struct{}{},
		mayBacktrack:     map[*RegexNode]struct{}{},
		inLoops:          map[*RegexNode]struct{}{},
	}
	if tree == nil || tree.Root == nil {
		return r
	}
	// the root is atomic: nothing follows a match
	r.complete = r.analyzeNode(tree.Root, true, false, 0)
	return r
}

func (r *AnalysisResults) analyzeNode(node *RegexNode, isAtomicByAncestor, isInLoop bool, depth int) bool {
	if depth > MaxAnalysisDepth {
		return false
	}

	r.hasIgnoreCase = r.hasIgnoreCase || node.Options&IgnoreCase != 0
	r.hasRightToLeft = r.hasRightToLeft || node.Options&RightToLeft != 0

	if isInLoop {
		r.inLoops[node] = struct{}{}
	}

	if isAtomicByAncestor {
		r.atomicByAncestor[node] = struct{}{}
	} else {
		switch node.T {
		case NtAtomic, NtPosLook, NtNegLook:
			isAtomicByAncestor = true
		}
	}

	for i, child := range node.Children {
		treatChildAsAtomic := false
		switch node.T {
		case NtAtomic, NtPosLook, NtNegLook, NtCapture,
			NtAlternate, NtBackRefCond:
			treatChildAsAtomic = isAtomicByAncestor
		case NtExprCond:
			// the condition is run like a lookahead
			treatChildAsAtomic = i == 0 || isAtomicByAncestor
		case NtConcatenate:
			treatChildAsAtomic = isAtomicByAncestor && i == len(node.Children)-1
		}

		childInLoop := isInLoop || ((node.T == NtLoop || node.T == NtLazyloop) && node.N > 1)

		if !r.analyzeNode(child, treatChildAsAtomic, childInLoop, depth+1) {
			return false
		}

		if _, ok := r.containsCapture[child]; ok {
			r.containsCapture[node] = struct{}{}
		}
		if _, ok := r.mayBacktrack[child]; ok {
			r.mayBacktrack[node] = struct{}{}
		}
	}

	if node.T == NtCapture {
		r.containsCapture[node] = struct{}{}
	}

	// nodes that leave choice points behind of their own
	if !isAtomicByAncestor {
		switch node.T {
		case NtOneloop, NtNotoneloop, NtSetloop, NtOnelazy, NtNotonelazy, NtSetlazy,
			NtLoop, NtLazyloop:
			if node.M != node.N {
				r.mayBacktrack[node] = struct{}{}
			}
		case NtAlternate, NtBackRefCond, NtExprCond:
			r.mayBacktrack[node] = struct{}{}
		}
	}

	return true
}

// Complete reports whether the whole tree was analyzed
func (r *AnalysisResults) Complete() bool { return r != nil && r.complete }

// IsAtomicByAncestor reports whether an ancestor guarantees nothing can backtrack
// into node once it has matched. An incomplete analysis answers true; callers
// that act on the answer check Complete first.
func (r *AnalysisResults) IsAtomicByAncestor(node *RegexNode) bool {
	if r == nil || !r.complete {
		return true
	}
	_, ok := r.atomicByAncestor[node]
	return ok
}

// MayContainCapture reports whether node or one of its descendants captures
func (r *AnalysisResults) MayContainCapture(node *RegexNode) bool {
	if r == nil || !r.complete {
		return true
	}
	_, ok := r.containsCapture[node]
	return ok
}

// MayBacktrack reports whether node or one of its descendants can be
// backtracked into after it first matches
func (r *AnalysisResults) MayBacktrack(node *RegexNode) bool {
	if r == nil || !r.complete {
		return true
	}
	_, ok := r.mayBacktrack[node]
	return ok
}

// IsInLoop reports whether node sits inside a loop that can run more than once
func (r *AnalysisResults) IsInLoop(node *RegexNode) bool {
	if r == nil || !r.complete {
		return true
	}
	_, ok := r.inLoops[node]
	return ok
}

// HasIgnoreCase reports whether any analyzed node kept the IgnoreCase option
func (r *AnalysisResults) HasIgnoreCase() bool {
	return r == nil || !r.complete || r.hasIgnoreCase
}

// HasRightToLeft reports whether any analyzed node runs right to left
func (r *AnalysisResults) HasRightToLeft() bool {
	return r == nil || !r.complete || r.hasRightToLeft
}
