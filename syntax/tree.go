package syntax

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"slices"
)

// MultiVsRepeaterLimit is the longest run of one char written as a Multi
// rather than a fixed count loop
const MultiVsRepeaterLimit = 64

// RegexTree is a parsed and reduced pattern with its capture bookkeeping
type RegexTree struct {
	Root *RegexNode

	Caps       map[int]int    // sparse group number to slot, nil when numbering is dense
	Capnumlist []int          // group numbers in ascending order
	Captop     int            // one past the highest group number
	Capnames   map[string]int // group name to number
	Caplist    []string       // group names in number order

	Options RegexOptions
	Culture CaseFolder

	Analysis          *AnalysisResults
	FindOptimizations *FindOptimizations
}

// RegexNode is one construct of the pattern tree. The tree only lives
// between parsing and code generation.
//
// Leaves carry their data in Ch, Str or Set, and loops and captures keep
// their two integers in M and N. Parent is maintained by addChild and
// ReplaceChild and rebuilt by setParents after the optimizer has moved
// nodes around. Nodes created under RightToLeft run backwards, which for a
// concatenation means its children are stored in execution order.
//
// next links the stack of open groups while parsing.
type RegexNode struct {
	T        NodeType
	Children []*RegexNode
	Str      []rune
	Set      *CharSet
	Ch       rune
	M        int
	N        int
	Options  RegexOptions
	Parent   *RegexNode

	next *RegexNode
}

type NodeType int32

// The values match the runtime opcodes for the primitives, see code.go
const (
	NtUnknown NodeType = -1

	// single char loops: Ch or Set, M..N times
	NtOneloop    NodeType = 3 // a*
	NtNotoneloop NodeType = 4 // [^a]*
	NtSetloop    NodeType = 5 // [a-z]*
	NtOnelazy    NodeType = 6 // a*?
	NtNotonelazy NodeType = 7 // [^a]*?
	NtSetlazy    NodeType = 8 // [a-z]*?

	// single chars and strings
	NtOne    NodeType = 9  // a
	NtNotone NodeType = 10 // [^a]
	NtSet    NodeType = 11 // [a-z\s] \w \d
	NtMulti  NodeType = 12 // abcd
	NtRef    NodeType = 13 // \1 \k<name>

	// zero-width assertions
	NtBol         NodeType = 14 // ^
	NtEol         NodeType = 15 // $
	NtBoundary    NodeType = 16 // \b
	NtNonboundary NodeType = 17 // \B
	NtBeginning   NodeType = 18 // \A
	NtStart       NodeType = 19 // \G
	NtEndZ        NodeType = 20 // \Z
	NtEnd         NodeType = 21 // \z

	// interior nodes
	NtNothing     NodeType = 22 // []
	NtEmpty       NodeType = 23 // ()
	NtAlternate   NodeType = 24 // a|b
	NtConcatenate NodeType = 25 // ab
	NtLoop        NodeType = 26 // (ab)* with M, N
	NtLazyloop    NodeType = 27 // (ab)*? with M, N
	NtCapture     NodeType = 28 // (ab) with number M, balanced group N
	NtGroup       NodeType = 29 // (?:ab)
	NtPosLook     NodeType = 30 // (?=ab) (?<=ab)
	NtNegLook     NodeType = 31 // (?!ab) (?<!ab)
	NtAtomic      NodeType = 32 // (?>ab)
	NtBackRefCond NodeType = 33 // (?(1)yes|no)
	NtExprCond    NodeType = 34 // (?(?=x)yes|no)

	NtECMABoundary    NodeType = 41 // \b with ECMAScript
	NtNonECMABoundary NodeType = 42 // \B with ECMAScript

	// moves the next scan's start up to the current position
	NtUpdateBumpalong NodeType = 43

	// loops that give nothing back
	NtOneloopatomic    NodeType = 44 // a*+
	NtNotoneloopatomic NodeType = 45 // [^a]*+
	NtSetloopatomic    NodeType = 46 // [a-z]*+
)

func newRegexNode(t NodeType, opt RegexOptions) *RegexNode {
	return &RegexNode{
		T:       t,
		Options: opt,
	}
}

func newRegexNodeCh(t NodeType, opt RegexOptions, ch rune) *RegexNode {
	return &RegexNode{
		T:       t,
		Options: opt,
		Ch:      ch,
	}
}

func newRegexNodeStr(t NodeType, opt RegexOptions, str []rune) *RegexNode {
	return &RegexNode{
		T:       t,
		Options: opt,
		Str:     str,
	}
}

func newRegexNodeSet(t NodeType, opt RegexOptions, set *CharSet) *RegexNode {
	return &RegexNode{
		T:       t,
		Options: opt,
		Set:     set,
	}
}

func newRegexNodeM(t NodeType, opt RegexOptions, m int) *RegexNode {
	return &RegexNode{
		T:       t,
		Options: opt,
		M:       m,
	}
}
func newRegexNodeMN(t NodeType, opt RegexOptions, m, n int) *RegexNode {
	return &RegexNode{
		T:       t,
		Options: opt,
		M:       m,
		N:       n,
	}
}

// nodeWithCaseConversion turns a case-insensitive char node into a set of the
// char's case equivalents and widens a case-insensitive set with its equivalents.
// Afterwards nothing but backreferences needs to know about IgnoreCase.
func nodeWithCaseConversion(n *RegexNode, folder CaseFolder) *RegexNode {
	if n.Options&IgnoreCase == 0 {
		return n
	}

	if n.IsOneFamily() || n.IsNotoneFamily() {
		eq := folder.Equivalences(n.Ch)
		if len(eq) < 2 {
			return n
		}
		set := &CharSet{}
		for _, c := range eq {
			set.addChar(c)
		}
		set.negate = n.IsNotoneFamily()

		return &RegexNode{
			T:       setFamilyOf(n.T),
			Options: n.Options,
			Set:     set,
			M:       n.M,
			N:       n.N,
		}
	} else if n.Set != nil {
		// leave the original set alone, it may be shared with a case-sensitive part of the pattern
		s := n.Set.Copy()
		s.addCaseEquivalences(folder)
		n.Set = &s
	}

	return n
}

func setFamilyOf(t NodeType) NodeType {
	switch t {
	case NtOne, NtNotone:
		return NtSet
	case NtOneloop, NtNotoneloop:
		return NtSetloop
	case NtOnelazy, NtNotonelazy:
		return NtSetlazy
	case NtOneloopatomic, NtNotoneloopatomic:
		return NtSetloopatomic
	}
	return t
}

func (n *RegexNode) IsSetFamily() bool {
	return n.T == NtSet || n.T == NtSetloop || n.T == NtSetlazy || n.T == NtSetloopatomic
}
func (n *RegexNode) IsOneFamily() bool {
	return n.T == NtOne || n.T == NtOneloop || n.T == NtOnelazy || n.T == NtOneloopatomic
}
func (n *RegexNode) IsNotoneFamily() bool {
	return n.T == NtNotone || n.T == NtNotoneloop || n.T == NtNotonelazy || n.T == NtNotoneloopatomic
}

// IsSingleCharLoop reports whether n repeats a single char, notone or set
func (n *RegexNode) IsSingleCharLoop() bool {
	switch n.T {
	case NtOneloop, NtNotoneloop, NtSetloop,
		NtOnelazy, NtNotonelazy, NtSetlazy,
		NtOneloopatomic, NtNotoneloopatomic, NtSetloopatomic:
		return true
	}
	return false
}

func (n *RegexNode) addChild(child *RegexNode) {
	child.Parent = n
	reduced := child.reduce()
	n.Children = append(n.Children, reduced)
	reduced.Parent = n
}

func (n *RegexNode) insertChildren(afterIndex int, nodes []*RegexNode) {
	newChildren := make([]*RegexNode, 0, len(n.Children)+len(nodes))
	n.Children = append(append(append(newChildren, n.Children[:afterIndex]...), nodes...), n.Children[afterIndex:]...)
}

// removes children including the start but not the end index
func (n *RegexNode) removeChildren(startIndex, endIndex int) {
	n.Children = append(n.Children[:startIndex], n.Children[endIndex:]...)
}

func (n *RegexNode) ReplaceChild(index int, newChild *RegexNode) {
	newChild.Parent = n // so that the child can see its parent while being reduced
	newChild = newChild.reduce()
	newChild.Parent = n // in case reduce returns a different node that needs to be reparented

	n.Children[index] = newChild
}

// Pass type as OneLazy or OneLoop
func (n *RegexNode) makeRep(t NodeType, min, max int) {
	n.T += (t - NtOne)
	n.M = min
	n.N = max
}

// makeLoopAtomic converts a single char loop to its atomic counterpart. A lazy
// loop that can't be backtracked into only ever matches its minimum.
func (n *RegexNode) makeLoopAtomic() {
	switch n.T {
	case NtOneloop, NtNotoneloop, NtSetloop:
		n.T += NtOneloopatomic - NtOneloop

	case NtOnelazy, NtNotonelazy, NtSetlazy:
		n.T += NtOneloopatomic - NtOnelazy
		n.N = n.M
		if n.N == 0 {
			n.T = NtEmpty
			n.Ch = 0
			n.Set = nil
		} else if n.T == NtOneloopatomic && n.N >= 2 && n.N <= MultiVsRepeaterLimit {
			n.T = NtMulti
			n.Str = []rune(strings.Repeat(string(n.Ch), n.N))
			n.Ch = 0
			n.M, n.N = 0, 0
		}
	}
}

// reduce applies the local simplifications for n's type. Case insensitivity
// has already been turned into sets, only backreferences still need it.
func (n *RegexNode) reduce() *RegexNode {
	if n.T != NtRef {
		n.Options &^= IgnoreCase
	}

	switch n.T {
	case NtAlternate:
		return n.reduceAlternation()
	case NtConcatenate:
		return n.reduceConcatenation()
	case NtLoop, NtLazyloop:
		return n.reduceRep()
	case NtAtomic:
		return n.reduceAtomic()
	case NtGroup:
		return n.reduceGroup()
	case NtSet, NtSetloop, NtSetlazy, NtSetloopatomic:
		return n.reduceSet()
	case NtPosLook, NtNegLook:
		return n.reduceLookaround()
	}
	return n
}

// reduceAlternation flattens nested alternations, drops branches that can
// never match and folds neighbouring single-char branches into one set:
//
//	a|b|c|def|g|h -> [a-c]|def|[gh]
//	apple|(?:orange|pear)|grape -> apple|orange|pear|grape
func (n *RegexNode) reduceAlternation() *RegexNode {
	if len(n.Children) == 0 {
		return newRegexNode(NtNothing, n.Options)
	}

	branches := make([]*RegexNode, 0, len(n.Children))
	// whether the last branch is a char or set the next one can fold into
	foldable := false
	var foldOpts RegexOptions

	var walk func([]*RegexNode)
	walk = func(children []*RegexNode) {
		for _, at := range children {
			switch at.T {
			case NtAlternate:
				walk(at.Children)
				continue
			case NtNothing:
				continue
			case NtOne, NtSet:
				// sets with different direction or case options stay apart
				opts := at.Options & (RightToLeft | IgnoreCase)
				mergeable := at.T == NtOne || at.Set.IsMergeable()
				if foldable && mergeable && opts == foldOpts {
					branches[len(branches)-1].foldIntoSet(at)
					continue
				}
				foldable, foldOpts = mergeable, opts
			default:
				foldable = false
			}
			at.Parent = n
			branches = append(branches, at)
		}
	}
	walk(n.Children)

	n.Children = branches
	return n.stripEnation(NtNothing)
}

// foldIntoSet turns n (a One or mergeable Set) into a Set that also matches at
func (n *RegexNode) foldIntoSet(at *RegexNode) {
	set := &CharSet{}
	if n.T == NtOne {
		set.addChar(n.Ch)
	} else {
		// n.Set may be shared with another node
		c := n.Set.Copy()
		set = &c
	}
	if at.T == NtOne {
		set.addChar(at.Ch)
	} else {
		set.addSet(*at.Set)
	}
	n.T = NtSet
	n.Set = set
}

// reduceConcatenation flattens nested concatenations running the same
// direction, drops empties and joins neighbouring chars and strings:
//
//	(?:abc)(?:def) -> abcdef
func (n *RegexNode) reduceConcatenation() *RegexNode {
	if len(n.Children) == 0 {
		return newRegexNode(NtEmpty, n.Options)
	}

	dir := n.Options & RightToLeft
	parts := make([]*RegexNode, 0, len(n.Children))
	// whether the last part is text the next char or string can join
	joinable := false
	var joinOpts RegexOptions

	var walk func([]*RegexNode)
	walk = func(children []*RegexNode) {
		for _, at := range children {
			switch {
			case at.T == NtConcatenate && at.Options&RightToLeft == dir:
				walk(at.Children)
				continue
			case at.T == NtEmpty:
				continue
			case at.T == NtMulti || at.T == NtOne:
				opts := at.Options & (RightToLeft | IgnoreCase)
				if joinable && opts == joinOpts {
					parts[len(parts)-1].joinText(at)
					continue
				}
				joinable, joinOpts = true, opts
			default:
				joinable = false
			}
			at.Parent = n
			parts = append(parts, at)
		}
	}
	walk(n.Children)

	n.Children = parts
	n.reduceConcatenationWithAdjacentLoops()

	return n.stripEnation(NtEmpty)
}

// joinText makes n a Multi holding its own text followed by at's, or
// preceded by it when matching right to left
func (n *RegexNode) joinText(at *RegexNode) {
	head := n.Str
	if n.T == NtOne {
		head = []rune{n.Ch}
	}
	tail := at.Str
	if at.T == NtOne {
		tail = []rune{at.Ch}
	}
	if at.Options&RightToLeft != 0 {
		head, tail = tail, head
	}

	// always a fresh slice, Str can alias the pattern
	joined := make([]rune, 0, len(head)+len(tail))
	n.Str = append(append(joined, head...), tail...)
	n.T = NtMulti
}

// Combines adjacent loops over the same char, notone or set, and folds a
// trailing single instance into the loop before it:
//
// a*a+ -> a+, \d{2}\d -> \d{3}
func (n *RegexNode) reduceConcatenationWithAdjacentLoops() {
	if len(n.Children) < 2 || n.Options&RightToLeft != 0 {
		return
	}

	current, next := 0, 1
	for next < len(n.Children) {
		cur := n.Children[current]
		nxt := n.Children[next]

		if cur.Options == nxt.Options && cur.mergeLoop(nxt) {
			next++
			continue
		}

		current++
		n.Children[current] = n.Children[next]
		next++
	}

	for i := current + 1; i < len(n.Children); i++ {
		n.Children[i] = nil
	}
	n.Children = n.Children[:current+1]
}

// mergeLoop folds nxt into n when the two are the same loop kind over the same
// value (or nxt is one more instance of n's value) and reports whether it did
func (n *RegexNode) mergeLoop(nxt *RegexNode) bool {
	switch n.T {
	case NtOneloop, NtOnelazy, NtNotoneloop, NtNotonelazy, NtSetloop, NtSetlazy:
	default:
		return false
	}

	single := NtOne + (n.T-NtOneloop)%3

	switch {
	case nxt.T == n.T && n.sameValue(nxt):
		n.M = addCapped(n.M, nxt.M)
		n.N = addCapped(n.N, nxt.N)
		return true

	case nxt.T == single && n.sameValue(nxt):
		n.M = addCapped(n.M, 1)
		n.N = addCapped(n.N, 1)
		return true
	}
	return false
}

func (n *RegexNode) sameValue(o *RegexNode) bool {
	if n.Set != nil || o.Set != nil {
		return n.Set != nil && o.Set != nil && n.Set.Equals(o.Set)
	}
	return n.Ch == o.Ch
}

func addCapped(a, b int) int {
	if a == math.MaxInt32 || b == math.MaxInt32 || a+b >= math.MaxInt32 {
		return math.MaxInt32
	}
	return a + b
}

// reduceRep multiplies directly nested quantifiers of the same greediness
// into one, (?:a{2,3}){4} -> a{8,12}, unless the inner counts are too lumpy
// for that to keep the meaning, e.g. (?:a{100,105}){3} or (?:a{2,})?.
func (n *RegexNode) reduceRep() *RegexNode {
	u := n
	lo, hi := n.M, n.N

	for len(u.Children) > 0 {
		child := u.Children[0]
		if child.T != n.T && !n.nestsLoop(child.T) {
			break
		}
		if u.M == 0 && child.M > 1 || child.N < child.M*2 {
			break
		}

		u = child
		if u.M > 0 {
			lo = mulCapped(lo, u.M)
			u.M = lo
		}
		if u.N > 0 {
			hi = mulCapped(hi, u.N)
			u.N = hi
		}
	}

	if lo == math.MaxInt32 {
		return newRegexNode(NtNothing, n.Options)
	}

	if len(u.Children) != 1 {
		return u
	}
	child := u.Children[0]
	switch child.T {
	case NtEmpty:
		return child
	case NtNothing:
		if u.M == 0 {
			return newRegexNode(NtEmpty, n.Options)
		}
		return child
	case NtOne, NtNotone, NtSet:
		if u.T == NtLazyloop {
			child.makeRep(NtOnelazy, u.M, u.N)
		} else {
			child.makeRep(NtOneloop, u.M, u.N)
		}
		return child
	}
	return u
}

// nestsLoop reports whether a single char loop of type t can be folded into
// the loop n
func (n *RegexNode) nestsLoop(t NodeType) bool {
	switch t {
	case NtOneloop, NtNotoneloop, NtSetloop, NtOneloopatomic, NtNotoneloopatomic, NtSetloopatomic:
		return n.T == NtLoop
	case NtOnelazy, NtNotonelazy, NtSetlazy:
		return n.T == NtLazyloop
	}
	return false
}

// stripEnation replaces a concatenation or alternation with its only child,
// or with an emptyType node when it has none
func (n *RegexNode) stripEnation(emptyType NodeType) *RegexNode {
	switch len(n.Children) {
	case 0:
		return newRegexNode(emptyType, n.Options)
	case 1:
		return n.Children[0]
	default:
		return n
	}
}

func (n *RegexNode) reduceGroup() *RegexNode {
	u := n

	for u.T == NtGroup {
		u = u.Children[0]
	}

	return u
}

// Atomic groups around nothing, empty or another atomic construct can be
// dropped, and single char loops become their atomic variant:
//
// (?>a*) -> a*+, (?>(?>x)) -> (?>x)
func (n *RegexNode) reduceAtomic() *RegexNode {
	atomic := n
	child := n.Children[0]
	for child.T == NtAtomic {
		atomic = child
		child = atomic.Children[0]
	}

	switch child.T {
	case NtEmpty, NtNothing,
		NtOneloopatomic, NtNotoneloopatomic, NtSetloopatomic:
		return child

	case NtOneloop, NtNotoneloop, NtSetloop,
		NtOnelazy, NtNotonelazy, NtSetlazy:
		child.makeLoopAtomic()
		return child

	case NtAlternate:
		if n.Options&RightToLeft == 0 {
			// nothing can backtrack into the alternation, so an Empty branch wins
			// and every branch after it is unreachable
			if child.Children[0].T == NtEmpty {
				return newRegexNode(NtEmpty, child.Options)
			}
			for i := 1; i < len(child.Children)-1; i++ {
				if child.Children[i].T == NtEmpty {
					child.Children = child.Children[:i+1]
					break
				}
			}
		}
	}

	if atomic != n {
		n.Children[0] = child
		child.Parent = n
	}
	return n
}

// A lookaround around an empty always succeeds (or always fails when negated)
func (n *RegexNode) reduceLookaround() *RegexNode {
	if n.Children[0].T == NtEmpty {
		if n.T == NtPosLook {
			n.T = NtEmpty
		} else {
			n.T = NtNothing
		}
		n.Children = nil
	}
	return n
}

// reduceSet turns an empty set into Nothing (or Empty for a loop that may run
// zero times) and a one char set or its inverse into the One or Notone form
func (n *RegexNode) reduceSet() *RegexNode {
	set := n.Set
	switch {
	case set == nil || set.IsEmpty():
		if n.T != NtSet && n.M == 0 {
			n.T = NtEmpty
		} else {
			n.T = NtNothing
		}
		n.Set = nil
	case set.IsSingleton() || set.IsSingletonInverse():
		single := NtOne
		if set.IsNegated() {
			single = NtNotone
		}
		n.T += single - NtSet
		n.Ch = set.SingletonChar()
		n.Set = nil
	}
	return n
}

func (n *RegexNode) reverseLeft() *RegexNode {
	if n.Options&RightToLeft != 0 && n.T == NtConcatenate && len(n.Children) > 0 {
		//reverse children order
		for left, right := 0, len(n.Children)-1; left < right; left, right = left+1, right-1 {
			n.Children[left], n.Children[right] = n.Children[right], n.Children[left]
		}
	}

	return n
}

func (n *RegexNode) makeQuantifier(lazy bool, min, max int) *RegexNode {
	if min == max {
		switch {
		case max == 0:
			return newRegexNode(NtEmpty, n.Options)
		case max == 1:
			return n
		case max <= MultiVsRepeaterLimit && n.T == NtOne:
			// a fixed count of the same char reads better downstream as a string
			n.T = NtMulti
			n.Str = []rune(strings.Repeat(string(n.Ch), max))
			n.Ch = 0
			return n
		}
	}

	switch n.T {
	case NtOne, NtNotone, NtSet:
		if lazy {
			n.makeRep(NtOnelazy, min, max)
		} else {
			n.makeRep(NtOneloop, min, max)
		}
		return n

	default:
		var t NodeType
		if lazy {
			t = NtLazyloop
		} else {
			t = NtLoop
		}
		result := newRegexNodeMN(t, n.Options, min, max)
		result.addChild(n)
		return result
	}
}

// ComputeMinLength returns a lower bound on the length of any match of n.
// Zero means no bound can be given.
func (n *RegexNode) ComputeMinLength() int {
	switch n.T {
	case NtOne, NtNotone, NtSet:
		return 1
	case NtMulti:
		return len(n.Str)
	case NtAtomic, NtCapture, NtGroup:
		return n.Children[0].ComputeMinLength()
	case NtLoop, NtLazyloop:
		return mulCapped(n.M, n.Children[0].ComputeMinLength())
	case NtConcatenate:
		total := 0
		for _, c := range n.Children {
			total = addCapped(total, c.ComputeMinLength())
		}
		return total
	case NtAlternate:
		return shortestOf(n.Children)
	case NtBackRefCond:
		// a missing no branch matches empty
		if len(n.Children) < 2 {
			return 0
		}
		return shortestOf(n.Children)
	case NtExprCond:
		// child 0 is the zero-width condition
		if len(n.Children) < 3 {
			return 0
		}
		return shortestOf(n.Children[1:])
	}
	if n.IsSingleCharLoop() {
		return n.M
	}
	// anchors, lookarounds, backreferences and the empty nodes
	return 0
}

func shortestOf(nodes []*RegexNode) int {
	shortest := nodes[0].ComputeMinLength()
	for _, c := range nodes[1:] {
		if shortest == 0 {
			break
		}
		shortest = min(shortest, c.ComputeMinLength())
	}
	return shortest
}

func mulCapped(a, b int) int {
	if a == 0 || b == 0 {
		return 0
	}
	if a > (math.MaxInt32-1)/b {
		return math.MaxInt32
	}
	return a * b
}

// computeMaxLength returns the longest possible match of n, or -1 when that
// is unbounded or only known at match time
func (n *RegexNode) computeMaxLength() int {
	switch n.T {
	case NtOne, NtNotone, NtSet:
		return 1
	case NtMulti:
		return len(n.Str)
	case NtAtomic, NtCapture, NtGroup:
		return n.Children[0].computeMaxLength()
	case NtLoop, NtLazyloop:
		if n.N == math.MaxInt32 {
			return -1
		}
		c := n.Children[0].computeMaxLength()
		if c < 0 {
			return -1
		}
		if l := mulCapped(n.N, c); l < math.MaxInt32 {
			return l
		}
		return -1
	case NtConcatenate:
		total := 0
		for _, c := range n.Children {
			l := c.computeMaxLength()
			if l < 0 {
				return -1
			}
			if total += l; total >= math.MaxInt32 {
				return -1
			}
		}
		return total
	case NtAlternate, NtBackRefCond:
		return longestOf(n.Children)
	case NtExprCond:
		return longestOf(n.Children[1:])
	case NtRef:
		return -1
	case NtEmpty, NtNothing, NtUpdateBumpalong,
		NtBeginning, NtBol, NtStart, NtEndZ, NtEnd, NtEol,
		NtBoundary, NtNonboundary, NtECMABoundary, NtNonECMABoundary,
		NtPosLook, NtNegLook:
		return 0
	}
	if n.IsSingleCharLoop() {
		if n.N == math.MaxInt32 {
			return -1
		}
		return n.N
	}
	return -1
}

func longestOf(nodes []*RegexNode) int {
	longest := 0
	for _, c := range nodes {
		l := c.computeMaxLength()
		if l < 0 {
			return -1
		}
		longest = max(longest, l)
	}
	return longest
}

// setParents points every node's Parent at the node that holds it
func (n *RegexNode) setParents() {
	stack := []*RegexNode{n}
	n.Parent = nil
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, c := range cur.Children {
			c.Parent = cur
			stack = append(stack, c)
		}
	}
}

var nodeTypeNames = map[NodeType]string{
	NtOneloop: "Oneloop", NtNotoneloop: "Notoneloop", NtSetloop: "Setloop",
	NtOnelazy: "Onelazy", NtNotonelazy: "Notonelazy", NtSetlazy: "Setlazy",
	NtOneloopatomic: "Oneloopatomic", NtNotoneloopatomic: "Notoneloopatomic", NtSetloopatomic: "Setloopatomic",
	NtOne: "One", NtNotone: "Notone", NtSet: "Set", NtMulti: "Multi", NtRef: "Ref",
	NtBol: "Bol", NtEol: "Eol", NtBoundary: "Boundary", NtNonboundary: "Nonboundary",
	NtECMABoundary: "ECMABoundary", NtNonECMABoundary: "NonECMABoundary",
	NtBeginning: "Beginning", NtStart: "Start", NtEndZ: "EndZ", NtEnd: "End",
	NtNothing: "Nothing", NtEmpty: "Empty", NtAlternate: "Alternate", NtConcatenate: "Concatenate",
	NtLoop: "Loop", NtLazyloop: "Lazyloop", NtCapture: "Capture", NtGroup: "Group",
	NtPosLook: "PositiveLookaround", NtNegLook: "NegativeLookaround", NtAtomic: "Atomic",
	NtBackRefCond: "BackreferenceConditional", NtExprCond: "ExpressionConditional",
	NtUpdateBumpalong: "UpdateBumpalong",
}

func (t NodeType) String() string {
	if name, ok := nodeTypeNames[t]; ok {
		return name
	}
	return "Unknown(" + strconv.Itoa(int(t)) + ")"
}

var optionTags = []struct {
	opt RegexOptions
	tag string
}{
	{ExplicitCapture, "-C"}, {IgnoreCase, "-I"}, {RightToLeft, "-L"}, {Multiline, "-M"},
	{Singleline, "-S"}, {IgnorePatternWhitespace, "-X"}, {ECMAScript, "-E"},
}

// Description is the one line form of n used by Dump, e.g. Oneloop-I(Ch = a)(Min = 0, Max = inf)
func (n *RegexNode) Description() string {
	buf := &bytes.Buffer{}
	buf.WriteString(n.T.String())
	for _, o := range optionTags {
		if n.Options&o.opt != 0 {
			buf.WriteString(o.tag)
		}
	}

	switch {
	case n.IsOneFamily() || n.IsNotoneFamily():
		fmt.Fprintf(buf, "(Ch = %s)", CharDescription(n.Ch))
	case n.IsSetFamily():
		fmt.Fprintf(buf, "(Set = %s)", n.Set)
	case n.T == NtMulti:
		fmt.Fprintf(buf, "(String = %s)", string(n.Str))
	case n.T == NtCapture:
		fmt.Fprintf(buf, "(index = %d, unindex = %d)", n.M, n.N)
	case n.T == NtRef || n.T == NtBackRefCond:
		fmt.Fprintf(buf, "(index = %d)", n.M)
	}

	if n.IsSingleCharLoop() || n.T == NtLoop || n.T == NtLazyloop {
		hi := "inf"
		if n.N != math.MaxInt32 {
			hi = strconv.Itoa(n.N)
		}
		fmt.Fprintf(buf, "(Min = %d, Max = %s)", n.M, hi)
	}

	return buf.String()
}

var padSpace = []byte("                                ")

func (t *RegexTree) Dump() string {
	return t.Root.dump()
}

func (n *RegexNode) dump() string {
	type frame struct {
		node  *RegexNode
		depth int
	}
	buf := &bytes.Buffer{}
	stack := []frame{{n, 0}}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		depth := cur.depth
		if depth > 32 {
			depth = 32
		}
		buf.Write(padSpace[:depth])
		buf.WriteString(cur.node.Description())
		buf.WriteRune('\n')

		for i := len(cur.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{cur.node.Children[i], cur.depth + 1})
		}
	}
	return buf.String()
}

// TryGetOrdinalCaseInsensitiveString collects the text of the children in
// [childIndex, exclusiveChildBound) that can be compared with ASCII case
// folding: ASCII chars and strings that don't take part in case conversion and
// [Aa] style sets, the latter lower cased. It stops at the first child that
// doesn't qualify and succeeds when at least two chars were collected.
//
// With consumeZeroWidthNodes anchors, boundaries and lookarounds are skipped
// over. The string then no longer represents those nodes exactly, so that is
// only fit for finding candidate positions, never for matching.
func (n *RegexNode) TryGetOrdinalCaseInsensitiveString(childIndex int, exclusiveChildBound int, consumeZeroWidthNodes bool) (success bool, nodesConsumed int, caseInsensitiveString string) {
	var sb strings.Builder
	pair := make([]rune, 0, 2)

	i := childIndex
	for ; i < exclusiveChildBound; i++ {
		if !n.Children[i].appendOrdinalCaseInsensitive(&sb, pair, consumeZeroWidthNodes) {
			break
		}
	}

	if sb.Len() < 2 {
		return false, 0, ""
	}
	return true, i - childIndex, sb.String()
}

func (n *RegexNode) appendOrdinalCaseInsensitive(sb *strings.Builder, pair []rune, consumeZeroWidthNodes bool) bool {
	switch n.T {
	case NtOne:
		if n.Ch >= unicode.MaxASCII || participatesInCaseConversion(n.Ch) {
			return false
		}
		sb.WriteRune(n.Ch)
		return true

	case NtMulti:
		if slices.ContainsFunc(n.Str, func(ch rune) bool { return ch > unicode.MaxASCII }) ||
			anyParticipatesInCaseConversion(string(n.Str)) {
			return false
		}
		sb.WriteString(string(n.Str))
		return true

	case NtSet, NtSetloop, NtSetlazy, NtSetloopatomic:
		count := 1
		if n.T != NtSet {
			if n.M != n.N {
				return false
			}
			count = n.M
		}
		ok, chars := n.Set.containsAsciiIgnoreCaseCharacter(pair)
		if !ok {
			return false
		}
		sb.WriteString(strings.Repeat(string(chars[0]|0x20), count))
		return true

	case NtEmpty:
		return true

	case NtBeginning, NtBol, NtStart,
		NtBoundary, NtECMABoundary, NtNonboundary, NtNonECMABoundary,
		NtNegLook, NtPosLook, NtUpdateBumpalong:
		return consumeZeroWidthNodes
	}
	return false
}

// FindStartingLiteralNode returns the char, string or set every match of n
// must begin with, or nil. Loops qualify when they run at least once.
// Lookaheads are looked into only when allowZeroWidth is set.
func (n *RegexNode) FindStartingLiteralNode(allowZeroWidth bool) *RegexNode {
	for node := n; node != nil && node.Options&RightToLeft == 0; {
		switch {
		case node.T == NtOne || node.T == NtNotone || node.T == NtMulti || node.T == NtSet:
			return node
		case node.IsSingleCharLoop():
			if node.M > 0 {
				return node
			}
			return nil
		case node.T == NtAtomic || node.T == NtConcatenate || node.T == NtCapture || node.T == NtGroup,
			(node.T == NtLoop || node.T == NtLazyloop) && node.M > 0,
			node.T == NtPosLook && allowZeroWidth:
			node = node.Children[0]
		default:
			return nil
		}
	}
	return nil
}

// Gets the character that begins a One or Multi.
func (n *RegexNode) FirstCharOfOneOrMulti() rune {
	if n.IsOneFamily() {
		return n.Ch
	}
	return n.Str[0]
}

// findBranchOneOrMultiStart returns the One or Multi an alternation branch
// starts with, or nil
func (n *RegexNode) findBranchOneOrMultiStart() *RegexNode {
	branch := n
	if branch.T == NtConcatenate {
		branch = branch.Children[0]
	}
	if branch.T == NtOne || branch.T == NtMulti {
		return branch
	}
	return nil
}
