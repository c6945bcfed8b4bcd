package syntax

import (
	"math"
	"slices"
)

// ReduceOptions switches off individual whole-tree optimizations. The zero
// value runs all of them.
type ReduceOptions struct {
	// DisableAutoAtomic keeps every loop and alternation backtrackable, even
	// when nothing following it could use the text it gives back
	DisableAutoAtomic bool
}

// finalOptimize runs the optimizations that need to see the whole reduced tree
// rather than one node at a time. It returns the (possibly new) root.
func (n *RegexNode) finalOptimize(ro ReduceOptions) *RegexNode {
	root := n
	root.setParents()

	if root.Options&RightToLeft == 0 {
		root = root.extractCommonPrefixesInTree()
		root.setParents()
	}

	if root.Options&(RightToLeft|NonBacktracking) == 0 {
		if !ro.DisableAutoAtomic {
			root.findAndMakeLoopsAtomic(!root.capturesObserved())
			root.eliminateEndingBacktracking()
		}
		root.insertUpdateBumpalong()
	}

	root.setParents()
	return root
}

// extractCommonPrefixesInTree visits every alternation bottom-up and factors out
// the text or single-char heads its neighbouring branches share
func (n *RegexNode) extractCommonPrefixesInTree() *RegexNode {
	for i, c := range n.Children {
		nc := c.extractCommonPrefixesInTree()
		if nc != c {
			n.Children[i] = nc
			nc.Parent = n
		}
	}
	if n.T != NtAlternate || len(n.Children) < 2 {
		return n
	}
	return n.extractCommonPrefixOneNotoneSet().extractCommonPrefixText()
}

// Pulls the same leading One, Notone or Set (single or fixed loop) out of contiguous
// branches that are concatenations:
//
// \w12|\d34|\d56|\w78|\w90 -> \w12|\d(?:34|56)|\w(?:78|90)
func (n *RegexNode) extractCommonPrefixOneNotoneSet() *RegexNode {
	if n.T != NtAlternate || n.Options&RightToLeft != 0 {
		return n
	}
	for _, c := range n.Children {
		if c.T != NtConcatenate || len(c.Children) < 2 {
			return n
		}
	}

	for start := 0; start < len(n.Children)-1; start++ {
		required := n.Children[start].Children[0]
		switch required.T {
		case NtOne, NtNotone, NtSet, NtOneloopatomic, NtNotoneloopatomic, NtSetloopatomic:
		case NtOneloop, NtNotoneloop, NtSetloop, NtOnelazy, NtNotonelazy, NtSetlazy:
			// a variable loop could consume differently depending on what follows it in each branch
			if required.M != required.N {
				continue
			}
		default:
			continue
		}

		end := start + 1
		for ; end < len(n.Children); end++ {
			other := n.Children[end].Children[0]
			if !required.sameSingle(other) {
				break
			}
		}
		if end-start <= 1 {
			continue
		}

		alt := newRegexNode(NtAlternate, n.Options)
		for i := start; i < end; i++ {
			branch := n.Children[i]
			branch.Children = branch.Children[1:]
			alt.addChild(branch)
		}
		tail := alt
		if alt.T == NtAlternate {
			tail = alt.extractCommonPrefixOneNotoneSet().extractCommonPrefixText()
		}
		if n.Parent != nil && n.Parent.T == NtAtomic {
			atomic := newRegexNode(NtAtomic, n.Options)
			atomic.addChild(tail)
			tail = atomic
		}

		concat := newRegexNode(NtConcatenate, n.Options)
		concat.addChild(required)
		concat.addChild(tail)
		n.ReplaceChild(start, concat)
		n.removeChildren(start+1, end)
	}

	return n.stripEnation(NtNothing)
}

// sameSingle reports whether two single char nodes (or single char loops) are interchangeable
func (n *RegexNode) sameSingle(o *RegexNode) bool {
	if n.T != o.T || n.Options != o.Options || n.M != o.M || n.N != o.N || n.Ch != o.Ch {
		return false
	}
	if n.Set == nil || o.Set == nil {
		return n.Set == o.Set
	}
	return n.Set.Equals(o.Set)
}

// Pulls text shared by the start of contiguous branches into a single literal
// in front of a new alternation:
//
// abc|ade -> a(?:bc|de)
func (n *RegexNode) extractCommonPrefixText() *RegexNode {
	if n.T != NtAlternate || n.Options&RightToLeft != 0 {
		return n
	}

	for start := 0; start < len(n.Children)-1; start++ {
		startNode := n.Children[start].findBranchOneOrMultiStart()
		if startNode == nil {
			return n
		}

		opts := startNode.Options
		var prefix []rune
		if startNode.T == NtOne {
			prefix = []rune{startNode.Ch}
		} else {
			prefix = startNode.Str
		}

		end := start + 1
		for ; end < len(n.Children); end++ {
			other := n.Children[end].findBranchOneOrMultiStart()
			if other == nil || other.Options != opts {
				break
			}
			if other.T == NtOne {
				if prefix[0] != other.Ch {
					break
				}
				prefix = prefix[:1]
				continue
			}
			c := 0
			for c < len(prefix) && c < len(other.Str) && prefix[c] == other.Str[c] {
				c++
			}
			if c == 0 {
				break
			}
			prefix = prefix[:c]
		}
		if end-start <= 1 {
			continue
		}

		// the branches' strings are about to be trimmed, so keep our own copy
		prefix = slices.Clone(prefix)
		var prefixNode *RegexNode
		if len(prefix) == 1 {
			prefixNode = newRegexNodeCh(NtOne, opts, prefix[0])
		} else {
			prefixNode = newRegexNodeStr(NtMulti, opts, prefix)
		}

		alt := newRegexNode(NtAlternate, opts)
		for i := start; i < end; i++ {
			branch := n.Children[i]
			head := branch
			if branch.T == NtConcatenate {
				head = branch.Children[0]
			}
			head.trimLiteralPrefix(len(prefix))
			alt.addChild(branch)
		}
		tail := alt
		if alt.T == NtAlternate {
			tail = alt.extractCommonPrefixOneNotoneSet().extractCommonPrefixText()
		}
		if n.Parent != nil && n.Parent.T == NtAtomic {
			atomic := newRegexNode(NtAtomic, opts)
			atomic.addChild(tail)
			tail = atomic
		}

		concat := newRegexNode(NtConcatenate, opts)
		concat.addChild(prefixNode)
		concat.addChild(tail)
		n.ReplaceChild(start, concat)
		n.removeChildren(start+1, end)
	}

	return n.stripEnation(NtNothing)
}

// trimLiteralPrefix drops the first count chars of a One or Multi, leaving an
// Empty when nothing remains
func (n *RegexNode) trimLiteralPrefix(count int) {
	if n.T == NtOne {
		n.T = NtEmpty
		n.Ch = 0
		return
	}
	switch rest := len(n.Str) - count; {
	case rest == 0:
		n.T = NtEmpty
		n.Str = nil
	case rest == 1:
		n.T = NtOne
		n.Ch = n.Str[len(n.Str)-1]
		n.Str = nil
	default:
		n.Str = slices.Clone(n.Str[count:])
	}
}

// findAndMakeLoopsAtomic upgrades every single char loop in a concatenation
// whose successor can't match what the loop would give back. With wholeLoops
// set, unbounded loops over a single char loop such as (a+)+ are wrapped in an
// atomic group under the same condition.
func (n *RegexNode) findAndMakeLoopsAtomic(wholeLoops bool) {
	if n.Options&(RightToLeft|NonBacktracking) != 0 {
		return
	}
	if n.T == NtConcatenate {
		for i := 0; i < len(n.Children)-1; i++ {
			makeEndingLoopAtomic(n.Children[i], n.Children[i+1], wholeLoops)
		}
	}
	for _, c := range n.Children {
		c.findAndMakeLoopsAtomic(wholeLoops)
	}
}

func makeEndingLoopAtomic(node, subsequent *RegexNode, wholeLoops bool) {
	for {
		if node.T == NtCapture || node.T == NtConcatenate {
			node = node.Children[len(node.Children)-1]
			continue
		}
		if node.T == NtLoop {
			if last := node.findLastExpressionInLoopForAutoAtomic(); last != nil {
				node = last
				continue
			}
		}
		break
	}

	if node.Options != subsequent.Options {
		return
	}

	switch node.T {
	case NtOneloop, NtNotoneloop, NtSetloop:
		if canBeMadeAtomic(node, subsequent, true, false) {
			node.makeLoopAtomic()
		}
	case NtLoop:
		if !wholeLoops || node.Parent == nil || node.Parent.T == NtAtomic {
			return
		}
		if chars := node.repeatedChars(); chars != nil && canBeMadeAtomic(chars, subsequent, true, false) {
			node.wrapInAtomic()
		}
	case NtAlternate, NtBackRefCond, NtExprCond:
		b := 0
		if node.T == NtExprCond {
			b = 1
		}
		for ; b < len(node.Children); b++ {
			makeEndingLoopAtomic(node.Children[b], subsequent, wholeLoops)
		}
	}
}

// repeatedChars describes an unbounded loop whose body is a single char loop,
// optionally captured, as the equivalent set loop. Such a loop always stops at
// the first char its body can't match, so every shorter way of matching it
// ends just before a char it consumed. Any other loop gives nil.
func (n *RegexNode) repeatedChars() *RegexNode {
	if n.N != math.MaxInt32 {
		return nil
	}
	body := n.Children[0]
	for body.T == NtCapture || body.T == NtAtomic {
		body = body.Children[0]
	}
	if !body.IsSingleCharLoop() || body.M == 0 {
		return nil
	}

	var set *CharSet
	switch {
	case body.IsSetFamily():
		set = body.Set
	default:
		set = &CharSet{}
		set.addChar(body.Ch)
		set.negate = body.IsNotoneFamily()
	}
	return &RegexNode{T: NtSetloop, Options: n.Options, Set: set, M: 0, N: math.MaxInt32, Parent: n.Parent}
}

// wrapInAtomic replaces n in its parent with an atomic group holding n
func (n *RegexNode) wrapInAtomic() {
	parent := n.Parent
	atomic := newRegexNode(NtAtomic, n.Options)
	atomic.Children = []*RegexNode{n}
	atomic.Parent = parent
	parent.Children[slices.Index(parent.Children, n)] = atomic
	n.Parent = atomic
}

// capturesObserved reports whether matching ever reads capture state:
// backreferences, capture conditionals and balancing groups all do
func (n *RegexNode) capturesObserved() bool {
	switch n.T {
	case NtRef, NtBackRefCond:
		return true
	case NtCapture:
		if n.N != -1 {
			return true
		}
	}
	for _, c := range n.Children {
		if c.capturesObserved() {
			return true
		}
	}
	return false
}

// findLastExpressionInLoopForAutoAtomic returns the last node of a loop body that
// can be treated as being followed by the body's first node, or nil
func (n *RegexNode) findLastExpressionInLoopForAutoAtomic() *RegexNode {
	node := n.Children[0]
	for node.T == NtCapture {
		node = node.Children[0]
	}

	// in (a+[def])* the [def] may be followed by the a+ of the next iteration, so the
	// two have to be disjoint
	if node.T == NtConcatenate {
		last := node.Children[len(node.Children)-1]
		if canBeMadeAtomic(last, node.Children[0], false, false) {
			return last
		}
	}
	return nil
}

// canBeMadeAtomic reports whether the single char loop in node can never give
// back a character that subsequent (or, when subsequent may match nothing and
// iterateNullableSubsequent is set, what follows it) could use
func canBeMadeAtomic(node, subsequent *RegexNode, iterateNullableSubsequent, allowLazy bool) bool {
	for {
		// skip down to the closest node that's guaranteed to run first
	descend:
		for len(subsequent.Children) > 0 {
			switch subsequent.T {
			case NtConcatenate, NtCapture, NtAtomic:
				subsequent = subsequent.Children[0]
			case NtPosLook:
				// lookbehinds are right to left and run against text before us
				if subsequent.Options&RightToLeft != 0 {
					break descend
				}
				subsequent = subsequent.Children[0]
			case NtLoop, NtLazyloop:
				if subsequent.M == 0 {
					break descend
				}
				subsequent = subsequent.Children[0]
			default:
				break descend
			}
		}

		if node.Options != subsequent.Options {
			return false
		}

		switch subsequent.T {
		case NtAlternate:
			for _, c := range subsequent.Children {
				if !canBeMadeAtomic(node, c, iterateNullableSubsequent, false) {
					return false
				}
			}
			return true
		case NtExprCond:
			if len(subsequent.Children) == 3 {
				for _, c := range subsequent.Children[1:] {
					if !canBeMadeAtomic(node, c, iterateNullableSubsequent, false) {
						return false
					}
				}
				return true
			}
		}

		if !loopDisjointFrom(node, subsequent, allowLazy) {
			return false
		}
		if subsequent.T == NtEnd {
			return true
		}
		if isDecisive(node, subsequent) {
			return true
		}

		// subsequent may match nothing, so whatever comes after it has to be checked too
		if !iterateNullableSubsequent {
			return false
		}

	climb:
		for {
			parent := subsequent.Parent
			if parent == nil {
				// the end of the pattern can't backtrack
				return true
			}
			switch parent.T {
			case NtAtomic, NtAlternate, NtCapture:
				subsequent = parent
			case NtConcatenate:
				idx := slices.Index(parent.Children, subsequent)
				if idx+1 == len(parent.Children) {
					subsequent = parent
					continue
				}
				subsequent = parent.Children[idx+1]
				break climb
			default:
				return false
			}
		}
	}
}

// loopDisjointFrom reports whether nothing node's loop could give back is matched
// by subsequent. It also answers true for zero-width or optional subsequents that
// don't conflict with the loop; isDecisive then tells whether the search can stop.
func loopDisjointFrom(node, subsequent *RegexNode, allowLazy bool) bool {
	switch node.T {
	case NtOneloop:
	case NtOnelazy, NtNotonelazy, NtSetlazy:
		if !allowLazy {
			return false
		}
	case NtNotoneloop, NtSetloop:
	default:
		return false
	}

	switch {
	case node.IsOneFamily():
		ch := node.Ch
		switch subsequent.T {
		case NtOne:
			return ch != subsequent.Ch
		case NtNotone:
			return ch == subsequent.Ch
		case NtSet:
			return !subsequent.Set.CharIn(ch)
		case NtOnelazy, NtOneloop, NtOneloopatomic:
			return ch != subsequent.Ch
		case NtNotonelazy, NtNotoneloop, NtNotoneloopatomic:
			return ch == subsequent.Ch
		case NtSetlazy, NtSetloop, NtSetloopatomic:
			return !subsequent.Set.CharIn(ch)
		case NtMulti:
			return ch != subsequent.Str[0]
		case NtEnd:
			return true
		case NtEndZ, NtEol:
			return ch != '\n'
		case NtBoundary:
			return node.M > 0 && IsBoundaryWordChar(ch)
		case NtNonboundary:
			return node.M > 0 && !IsBoundaryWordChar(ch)
		case NtECMABoundary:
			return node.M > 0 && IsECMAWordChar(ch)
		case NtNonECMABoundary:
			return node.M > 0 && !IsECMAWordChar(ch)
		}

	case node.IsNotoneFamily():
		ch := node.Ch
		switch subsequent.T {
		case NtOne:
			return ch == subsequent.Ch
		case NtOnelazy, NtOneloop, NtOneloopatomic:
			return ch == subsequent.Ch
		case NtMulti:
			return ch == subsequent.Str[0]
		case NtEnd:
			return true
		}

	default:
		set := node.Set
		switch subsequent.T {
		case NtOne:
			return !set.CharIn(subsequent.Ch)
		case NtSet:
			return !set.MayOverlap(*subsequent.Set)
		case NtOnelazy, NtOneloop, NtOneloopatomic:
			return !set.CharIn(subsequent.Ch)
		case NtSetlazy, NtSetloop, NtSetloopatomic:
			return !set.MayOverlap(*subsequent.Set)
		case NtMulti:
			return !set.CharIn(subsequent.Str[0])
		case NtEnd:
			return true
		case NtEndZ, NtEol:
			return !set.CharIn('\n')
		case NtBoundary:
			return node.M > 0 && (set.Equals(WordClass()) || set.Equals(DigitClass()))
		case NtNonboundary:
			return node.M > 0 && (set.Equals(NotWordClass()) || set.Equals(NotDigitClass()))
		case NtECMABoundary:
			return node.M > 0 && (set.Equals(ECMAWordClass()) || set.Equals(ECMADigitClass()))
		case NtNonECMABoundary:
			return node.M > 0 && (set.Equals(NotECMAWordClass()) || set.Equals(NotDigitClass()))
		}
	}
	return false
}

// isDecisive reports whether a subsequent node that is disjoint from the loop also
// ends the search, i.e. it must consume a character the loop can't
func isDecisive(node, subsequent *RegexNode) bool {
	switch subsequent.T {
	case NtOne, NtNotone, NtSet, NtMulti, NtEnd:
		return true
	case NtEndZ, NtEol:
		return true
	case NtOneloop, NtOnelazy, NtOneloopatomic,
		NtNotoneloop, NtNotonelazy, NtNotoneloopatomic,
		NtSetloop, NtSetlazy, NtSetloopatomic:
		return subsequent.M > 0
	}
	// boundaries are zero-width
	return false
}

// eliminateEndingBacktracking makes the constructs at the very end of the pattern
// (and of each lookaround) atomic, since nothing after them could ever
// backtrack into them
func (n *RegexNode) eliminateEndingBacktracking() {
	if n.Options&(RightToLeft|NonBacktracking) != 0 {
		return
	}

	node := n
	for {
		switch node.T {
		case NtOneloop, NtNotoneloop, NtSetloop:
			node.makeLoopAtomic()

		case NtCapture, NtConcatenate:
			last := node.Children[len(node.Children)-1]
			switch last.T {
			case NtAlternate, NtBackRefCond, NtExprCond, NtLoop, NtLazyloop:
				if node.Parent == nil || node.Parent.T != NtAtomic {
					atomic := newRegexNode(NtAtomic, last.Options)
					atomic.Children = []*RegexNode{last}
					last.Parent = atomic
					atomic.Parent = node
					node.Children[len(node.Children)-1] = atomic
				}
			}
			node = last
			continue

		case NtAtomic:
			node = node.Children[0]
			continue

		case NtAlternate, NtBackRefCond:
			for i := 1; i < len(node.Children); i++ {
				node.Children[i].eliminateEndingBacktracking()
			}
			node = node.Children[0]
			continue

		case NtExprCond:
			for i := 1; i < len(node.Children); i++ {
				node.Children[i].eliminateEndingBacktracking()
			}

		case NtLazyloop:
			if node.M != node.N {
				break
			}
			// an exact count has nothing to be lazy about
			node.T = NtLoop
			fallthrough

		case NtLoop:
			if node.N == 1 {
				// at most one iteration, so the loop body is the end of the loop
				node = node.Children[0]
				continue
			}
			if last := node.findLastExpressionInLoopForAutoAtomic(); last != nil {
				node = last
				continue
			}

		case NtPosLook, NtNegLook:
			node.Children[0].eliminateEndingBacktracking()
		}
		break
	}
}

// insertUpdateBumpalong records how far a leading unbounded loop got so a failed
// match resumes scanning from there instead of one position further on
func (n *RegexNode) insertUpdateBumpalong() {
	if n.T != NtCapture || len(n.Children) == 0 {
		return
	}
	node := n.Children[0]
	atomicByAncestry := true
	for {
		switch node.T {
		case NtAtomic:
			node = node.Children[0]
			continue
		case NtConcatenate:
			atomicByAncestry = false
			node = node.Children[0]
			continue
		case NtOneloop, NtOneloopatomic, NtNotoneloop, NtNotoneloopatomic, NtSetloop, NtSetloopatomic:
			if node.N == math.MaxInt32 && !atomicByAncestry && node.Parent != nil && node.Parent.T == NtConcatenate {
				bump := newRegexNode(NtUpdateBumpalong, node.Options)
				bump.Parent = node.Parent
				node.Parent.insertChildren(1, []*RegexNode{bump})
			}
		}
		return
	}
}
