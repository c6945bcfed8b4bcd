package syntax

import (
	"errors"
	"fmt"
	"math"
	"os"
)

const (
	BeforeChild NodeType = 64
	AfterChild  NodeType = 128
	//MaxPrefixSize is the largest number of runes we'll use for a BoyerMoore prefix
	MaxPrefixSize = 50
)

// ErrUnexpectedNode is returned by Write for a node type it has no opcodes for
var ErrUnexpectedNode = errors.New("unexpected node in regular expression generation")

// Write turns a reduced, analyzed tree into the program the runner interprets
func Write(tree *RegexTree) (*Code, error) {
	w := writer{
		code:     make([]int, 0, 64),
		strings:  make(map[string]int),
		sets:     make(map[string]int),
		analysis: tree.Analysis,
	}

	code, err := w.write(tree)
	if err != nil {
		return nil, err
	}

	if tree.Options&Debug > 0 {
		os.Stdout.WriteString(code.Dump())
		os.Stdout.WriteString("\n")
	}
	return code, nil
}

type writer struct {
	code       []int
	trackcount int

	// pending jump positions and child indexes of the walk
	stack []int

	strings     map[string]int
	stringtable [][]rune
	sets        map[string]int
	settable    []*CharSet

	caps     map[int]int // capnum -> slot when the numbers are sparse
	analysis *AnalysisResults
}

// write walks the tree depth first without recursion, emitting code before
// and after each child of an interior node and at each leaf. Jumps forward
// are written with a zero target and patched once the target is known.
func (w *writer) write(tree *RegexTree) (*Code, error) {
	capsize := tree.Captop
	if tree.Capnumlist != nil && tree.Captop != len(tree.Capnumlist) {
		capsize = len(tree.Capnumlist)
		w.caps = tree.Caps
		for slot, num := range tree.Capnumlist {
			w.caps[num] = slot
		}
	}

	w.emit1(Lazybranch, 0)

	node, child := tree.Root, 0
	for {
		switch {
		case len(node.Children) == 0:
			if err := w.emitFragment(node.T, node, 0); err != nil {
				return nil, err
			}
		case child < len(node.Children):
			if err := w.emitFragment(node.T|BeforeChild, node, child); err != nil {
				return nil, err
			}
			w.push(child)
			node, child = node.Children[child], 0
			continue
		}

		if len(w.stack) == 0 {
			break
		}
		child = w.pop()
		node = node.Parent
		if err := w.emitFragment(node.T|AfterChild, node, child); err != nil {
			return nil, err
		}
		child++
	}

	w.patchJump(0, w.curPos())
	w.emit(Stop)

	return &Code{
		Codes:             w.code,
		Strings:           w.stringtable,
		Sets:              w.settable,
		TrackCount:        w.trackcount,
		Caps:              w.caps,
		Capsize:           capsize,
		Anchors:           getAnchors(tree),
		RightToLeft:       tree.Options&RightToLeft != 0,
		FindOptimizations: tree.FindOptimizations,
		Tree:              tree,
	}, nil
}

// emitFragment writes the code for one visit of node: the whole node for a
// leaf, otherwise the part before or after child curIndex.
func (w *writer) emitFragment(nodetype NodeType, node *RegexNode, curIndex int) error {
	var bits InstOp
	if nodetype <= NtRef || (nodetype >= NtOneloopatomic && nodetype <= NtSetloopatomic) {
		if node.Options&RightToLeft != 0 {
			bits |= Rtl
		}
		if node.Options&IgnoreCase != 0 {
			bits |= Ci
		}
	}
	last := curIndex == len(node.Children)-1

	switch nodetype {
	case NtConcatenate | BeforeChild, NtConcatenate | AfterChild, NtGroup | BeforeChild, NtGroup | AfterChild, NtEmpty:

	case NtAlternate | BeforeChild:
		// every branch but the last can be left for the next one
		if !last {
			w.emitForward(Lazybranch)
		}

	case NtAlternate | AfterChild:
		if !last {
			branch := w.pop()
			w.emitForward(Goto)
			w.patchJump(branch, w.curPos())
			break
		}
		// the Gotos ending the earlier branches land here
		for i := 0; i < curIndex; i++ {
			w.patchJump(w.pop(), w.curPos())
		}

	case NtBackRefCond | BeforeChild:
		if curIndex == 0 {
			w.emit(Setjump)
			w.emitForward(Lazybranch)
			w.emit1(Testref, w.mapCapnum(node.M))
			w.emit(Forejump)
		}

	case NtBackRefCond | AfterChild:
		switch curIndex {
		case 0:
			branch := w.pop()
			w.emitForward(Goto)
			w.patchJump(branch, w.curPos())
			w.emit(Forejump)
			if len(node.Children) == 1 {
				w.patchJump(w.pop(), w.curPos())
			}
		case 1:
			w.patchJump(w.pop(), w.curPos())
		}

	case NtExprCond | BeforeChild:
		if curIndex == 0 {
			w.emit(Setjump)
			w.emit(Setmark)
			w.emitForward(Lazybranch)
		}

	case NtExprCond | AfterChild:
		switch curIndex {
		case 0:
			w.emit(Getmark)
			w.emit(Forejump)
		case 1:
			branch := w.pop()
			w.emitForward(Goto)
			w.patchJump(branch, w.curPos())
			w.emit(Getmark)
			w.emit(Forejump)
			if len(node.Children) == 2 {
				w.patchJump(w.pop(), w.curPos())
			}
		case 2:
			w.patchJump(w.pop(), w.curPos())
		}

	case NtLoop | BeforeChild, NtLazyloop | BeforeChild:
		switch {
		case counted(node) && node.M == 0:
			w.emit1(Nullcount, 0)
		case counted(node):
			w.emit1(Setcount, 1-node.M)
		case node.M == 0:
			w.emit(Nullmark)
		default:
			w.emit(Setmark)
		}
		// an optional body is entered from the bottom test
		if node.M == 0 {
			w.emitForward(Goto)
		}
		w.push(w.curPos())

	case NtLoop | AfterChild, NtLazyloop | AfterChild:
		test := w.curPos()
		lazy := InstOp(nodetype - (NtLoop | AfterChild))
		body := w.pop()

		if counted(node) {
			w.emit2(Branchcount+lazy, body, repCount(node))
		} else {
			w.emit1(Branchmark+lazy, body)
		}
		if node.M == 0 {
			w.patchJump(w.pop(), test)
		}

	case NtCapture | BeforeChild:
		w.emit(Setmark)

	case NtCapture | AfterChild:
		w.emit2(Capturemark, w.mapCapnum(node.M), w.mapCapnum(node.N))

	case NtPosLook | BeforeChild:
		// lookarounds don't backtrack once they've matched
		w.emit(Setjump)
		w.emit(Setmark)

	case NtPosLook | AfterChild:
		w.emit(Getmark)
		w.emit(Forejump)

	case NtNegLook | BeforeChild:
		w.emit(Setjump)
		w.emitForward(Lazybranch)

	case NtNegLook | AfterChild:
		w.emit(Backjump)
		w.patchJump(w.pop(), w.curPos())
		w.emit(Forejump)

	case NtAtomic | BeforeChild:
		if w.atomicNeedsJump(node) {
			w.emit(Setjump)
		}

	case NtAtomic | AfterChild:
		if w.atomicNeedsJump(node) {
			w.emit(Forejump)
		}

	case NtOne, NtNotone:
		w.emit1(InstOp(node.T)|bits, int(node.Ch))

	case NtOneloop, NtOnelazy, NtOneloopatomic:
		if node.M > 0 {
			w.emit2(Onerep|bits, int(node.Ch), node.M)
		}
		if node.N > node.M {
			w.emit2(w.loopOp(node)|bits, int(node.Ch), repCount(node))
		}

	case NtNotoneloop, NtNotonelazy, NtNotoneloopatomic:
		if node.M > 0 {
			w.emit2(Notonerep|bits, int(node.Ch), node.M)
		}
		if node.N > node.M {
			w.emit2(w.loopOp(node)|bits, int(node.Ch), repCount(node))
		}

	case NtSetloop, NtSetlazy, NtSetloopatomic:
		set := w.setCode(node.Set)
		if node.M > 0 {
			w.emit2(Setrep|bits, set, node.M)
		}
		if node.N > node.M {
			w.emit2(w.loopOp(node)|bits, set, repCount(node))
		}

	case NtMulti:
		w.emit1(InstOp(node.T)|bits, w.stringCode(node.Str))

	case NtSet:
		w.emit1(InstOp(node.T)|bits, w.setCode(node.Set))

	case NtRef:
		w.emit1(InstOp(node.T)|bits, w.mapCapnum(node.M))

	case NtNothing, NtBol, NtEol, NtBoundary, NtNonboundary, NtECMABoundary, NtNonECMABoundary, NtBeginning, NtStart, NtEndZ, NtEnd:
		w.emit(InstOp(node.T))

	case NtUpdateBumpalong:
		w.emit(UpdateBumpalong)

	default:
		return fmt.Errorf("%w: %v", ErrUnexpectedNode, nodetype)
	}

	return nil
}

// counted loops keep an iteration count, the others only a start mark
func counted(node *RegexNode) bool {
	return node.N < math.MaxInt32 || node.M > 1
}

// atomicNeedsJump reports whether an atomic group has to discard the
// backtracking state of its child. A child that can't be backtracked into
// leaves nothing to discard.
func (w *writer) atomicNeedsJump(node *RegexNode) bool {
	if len(node.Children) == 0 || !w.analysis.Complete() {
		return true
	}
	child := node.Children[0]
	return w.analysis.MayBacktrack(child) || w.emitsBacktracking(child)
}

// emitsBacktracking reports whether the code written for node leaves track
// entries that resume matching when backtracked into. The analysis treats
// nodes inside an atomic group as not backtracking, but the interpreter still
// runs their alternations and loops with choice points.
func (w *writer) emitsBacktracking(node *RegexNode) bool {
	switch node.T {
	case NtAtomic, NtPosLook, NtNegLook:
		// these discard their own state
		return false
	case NtAlternate, NtLoop, NtLazyloop, NtBackRefCond, NtExprCond:
		return true
	case NtOnelazy, NtNotonelazy, NtSetlazy:
		return node.N > node.M
	case NtOneloop, NtNotoneloop, NtSetloop:
		return node.N > node.M && w.loopOp(node) == InstOp(node.T)
	}
	for _, child := range node.Children {
		if w.emitsBacktracking(child) {
			return true
		}
	}
	return false
}

// loopOp picks the opcode for the optional part of a single char loop. A
// greedy loop nothing can backtrack into runs as its atomic form.
func (w *writer) loopOp(node *RegexNode) InstOp {
	switch node.T {
	case NtOneloopatomic, NtNotoneloopatomic, NtSetloopatomic:
		return InstOp(node.T)
	case NtOneloop, NtNotoneloop, NtSetloop:
		if node.Options&RightToLeft == 0 && w.analysis.Complete() && w.analysis.IsAtomicByAncestor(node) {
			return InstOp(node.T + NtOneloopatomic - NtOneloop)
		}
	}
	return InstOp(node.T)
}

func repCount(node *RegexNode) int {
	if node.N == math.MaxInt32 {
		return math.MaxInt32
	}
	return node.N - node.M
}

func (w *writer) push(i int) {
	w.stack = append(w.stack, i)
}

func (w *writer) pop() int {
	i := w.stack[len(w.stack)-1]
	w.stack = w.stack[:len(w.stack)-1]
	return i
}

func (w *writer) curPos() int {
	return len(w.code)
}

// emitForward writes a jump whose target isn't known yet and pushes its
// position for patchJump
func (w *writer) emitForward(op InstOp) {
	w.push(w.curPos())
	w.emit1(op, 0)
}

// patchJump points the jump at offset to dest
func (w *writer) patchJump(offset, dest int) {
	w.code[offset+1] = dest
}

// setCode returns the set's index in the set table, adding it if an equal
// set isn't there yet
func (w *writer) setCode(set *CharSet) int {
	key := string(set.Hash())
	i, ok := w.sets[key]
	if !ok {
		i = len(w.settable)
		w.sets[key] = i
		w.settable = append(w.settable, set)
	}
	return i
}

// stringCode returns the string's index in the string table, adding it if
// it isn't there yet
func (w *writer) stringCode(str []rune) int {
	key := string(str)
	i, ok := w.strings[key]
	if !ok {
		i = len(w.stringtable)
		w.strings[key] = i
		w.stringtable = append(w.stringtable, str)
	}
	return i
}

// mapCapnum translates a group number to its capture slot. Sparse numbers
// are mapped here so the runner never has to.
func (w *writer) mapCapnum(capnum int) int {
	if capnum == -1 {
		return -1
	}
	if w.caps != nil {
		return w.caps[capnum]
	}
	return capnum
}

func (w *writer) emit(op InstOp) {
	w.note(op)
	w.code = append(w.code, int(op))
}

func (w *writer) emit1(op InstOp, opd1 int) {
	w.note(op)
	w.code = append(w.code, int(op), opd1)
}

func (w *writer) emit2(op InstOp, opd1, opd2 int) {
	w.note(op)
	w.code = append(w.code, int(op), opd1, opd2)
}

// note counts the instructions that push backtracking state, which sizes
// the runner's track stack
func (w *writer) note(op InstOp) {
	if opcodeBacktracks(op) {
		w.trackcount++
	}
}
