package regexp2

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ModxVoldHunter/CSharp-SDK-sub006/syntax"
)

// errUnknownState is returned by execute for an opcode the interpreter doesn't handle
var errUnknownState = errors.New("unknown state in regex runner")

// Runner holds the mutable state of a single match attempt. A Regexp keeps one
// spare Runner around; concurrent callers get a fresh one. Compiled backends
// registered through RegisterEngine drive the same fields.
type Runner struct {
	re   *Regexp
	code *syntax.Code

	Runtextstart int    // starting point for search
	Runtext      []rune // text to search
	Runtextpos   int    // current position in text
	Runtextbeg   int    // first position that can be looked at
	Runtextend   int    // one past the last position that can be looked at

	// The backtracking stack. Opcodes use this to store data regarding
	// what they have matched and where to backtrack to. Each "frame" on
	// the stack takes the form of [CodePosition Data1 Data2...], where
	// CodePosition is the position of the current opcode and
	// the data values are all optional. A negative CodePosition ("back2")
	// is used by the branch family of opcodes to tell a backtrack after
	// a successful match of the loop body from one after a failed one.
	// When we backtrack, we pop the CodePosition off the stack, set the current
	// instruction pointer to that code position, and mark the opcode
	// with a backtracking flag ("Back"). Each opcode then knows how to
	// handle its own data.
	Runtrack    []int
	Runtrackpos int

	// This stack is used to track text positions across different opcodes.
	// For example, in /(a*b)+/, the parentheses result in a SetMark/CaptureMark
	// pair. SetMark records the text position before we match a*b. Then
	// CaptureMark uses that position to figure out where the capture starts.
	// Opcodes which push onto this stack are always paired with other opcodes
	// which will pop the value from it later. A successful match should mean
	// that this stack is empty.
	Runstack    []int
	Runstackpos int

	// The crawl stack is used to keep track of captures. Every time a group
	// has a capture, we push its group number onto the crawl stack. In
	// the case of a balanced match, we push BOTH groups onto the stack.
	Runcrawl    []int
	Runcrawlpos int

	runtrackcount int // count of states that may do backtracking

	Runmatch *Match // result object

	ignoreTimeout bool
	timeout       time.Duration // timeout in milliseconds (needed for actual)
	deadline      fasttime

	// set when control jumps backward; the timeout is checked before the next op
	backEdge bool

	culture syntax.CaseFolder

	operator        syntax.InstOp
	codepos         int
	rightToLeft     bool
	caseInsensitive bool
}

func newRunner(re *Regexp) *Runner {
	r := &Runner{re: re, code: re.code, culture: syntax.CurrentCulture()}
	if re.code != nil && re.code.Tree != nil && re.code.Tree.Culture != nil {
		r.culture = re.code.Tree.Culture
	}
	return r
}

// run searches for matches and can continue from the previous match
//
// quick is usually false, but can be true to not return matches, just put it in caches
// textstart is -1 to start at the "beginning" (depending on Right-To-Left), otherwise an index in input
// prevlen is the length of the match the search continues from, or -1
// input is the string to search for our regex pattern
func (re *Regexp) run(quick bool, prevlen, textstart int, input []rune) (*Match, error) {
	// get a cached runner
	runner := re.getRunner()
	defer re.putRunner(runner)

	if textstart < 0 {
		if re.RightToLeft() {
			textstart = len(input)
		} else {
			textstart = 0
		}
	}

	return runner.scan(input, textstart, prevlen, quick, re.MatchTimeout)
}

// getRunner checks the spare runner out of the cache, or makes a new one
// when another goroutine holds it
func (re *Regexp) getRunner() *Runner {
	if r := re.runner.Load(); r != nil && re.runner.CompareAndSwap(r, nil) {
		return r
	}
	return newRunner(re)
}

// putRunner returns r to the cache unless the slot was refilled meanwhile
func (re *Regexp) putRunner(r *Runner) {
	re.runner.CompareAndSwap(nil, r)
}

// Scans the string to find the first match. Uses the Match object
// both to feed text in and as a place to store matches that come out.
//
// findFirstChar skips the positions that can't start a match, execute
// runs the program at the position it stopped at. A failed attempt moves
// one position on (or past the bumpalong position the program recorded).
func (r *Runner) scan(rt []rune, textstart, prevlen int, quick bool, timeout time.Duration) (*Match, error) {
	r.timeout = timeout
	r.ignoreTimeout = (time.Duration(math.MaxInt64) == timeout)
	r.Runtextstart = textstart
	r.Runtext = rt
	r.Runtextbeg = 0
	r.Runtextend = len(rt)

	stoppos := r.Runtextend
	bump := 1

	if r.re.RightToLeft() {
		bump = -1
		stoppos = r.Runtextbeg
	}

	r.Runtextpos = textstart

	// an empty previous match would be found again at the same place,
	// so step over it while \G still refers to where it ended
	if prevlen == 0 {
		if textstart == stoppos {
			return nil, nil
		}
		r.Runtextpos += bump
	}

	initted := false

	r.startTimeoutWatch()
	for {
		if r.re.Debug() {
			fmt.Printf("\nSearch range: from %v to %v\n", r.Runtextbeg, r.Runtextend)
			fmt.Printf("Firstchar search starting at %v stopping at %v\n", r.Runtextpos, stoppos)
		}

		if r.findFirstChar() {
			if err := r.CheckTimeout(); err != nil {
				return nil, err
			}

			if !initted {
				r.initMatch()
				initted = true
			}

			if r.re.Debug() {
				fmt.Printf("Executing engine starting at %v\n\n", r.Runtextpos)
			}

			if err := r.execute(); err != nil {
				return nil, err
			}

			if r.Runmatch.matchcount[0] > 0 {
				// We'll return a match even if it touches a previous empty match
				m := r.tidyMatch(quick)
				if m != nil && r.re.Debug() {
					fmt.Printf("Match found at %v:%v", m.Index, m.dump())
				}
				return m, nil
			}

			// reset state for another go
			r.Runtrackpos = len(r.Runtrack)
			r.Runstackpos = len(r.Runstack)
			r.Runcrawlpos = len(r.Runcrawl)
		}

		// failure!

		if r.Runtextpos == stoppos {
			return nil, nil
		}

		// execute leaves the position where the attempt started, or where
		// the bumpalong opcode moved it to

		r.Runtextpos += bump
	}
	// We never get here
}

func (r *Runner) findFirstChar() bool {
	if r.re.findFirstChar != nil {
		return r.re.findFirstChar(r)
	}
	return r.code.FindOptimizations.TryFindNextStartingPosition(r.Runtext, &r.Runtextpos, r.Runtextbeg, r.Runtextstart, r.Runtextend)
}

func (r *Runner) execute() error {
	if r.re.execute != nil {
		return r.re.execute(r)
	}

	r.goTo(0)

	for {

		if r.re.Debug() {
			r.dumpState()
		}

		if r.backEdge {
			r.backEdge = false
			if err := r.CheckTimeout(); err != nil {
				return err
			}
		}

		switch r.operator {
		case syntax.Stop:
			return nil

		case syntax.Nothing:
			break

		case syntax.Goto:
			r.goTo(r.operand(0))
			continue

		case syntax.Testref:
			if !r.IsMatched(r.operand(0)) {
				break
			}
			r.advance(1)
			continue

		case syntax.Lazybranch:
			r.trackPush1(r.textPos())
			r.advance(1)
			continue

		case syntax.Lazybranch | syntax.Back:
			r.trackPop()
			r.textto(r.trackPeek())
			r.goTo(r.operand(0))
			continue

		case syntax.Setmark:
			r.stackPush(r.textPos())
			r.trackPush()
			r.advance(0)
			continue

		case syntax.Nullmark:
			r.stackPush(-1)
			r.trackPush()
			r.advance(0)
			continue

		case syntax.Setmark | syntax.Back, syntax.Nullmark | syntax.Back:
			r.stackPop()
			break

		case syntax.Getmark:
			r.stackPop()
			r.trackPush1(r.stackPeek())
			r.textto(r.stackPeek())
			r.advance(0)
			continue

		case syntax.Getmark | syntax.Back:
			r.trackPop()
			r.stackPush(r.trackPeek())
			break

		case syntax.Capturemark:
			if r.operand(1) != -1 && !r.IsMatched(r.operand(1)) {
				break
			}
			r.stackPop()
			if r.operand(1) != -1 {
				r.TransferCapture(r.operand(0), r.operand(1), r.stackPeek(), r.textPos())
			} else {
				r.Capture(r.operand(0), r.stackPeek(), r.textPos())
			}
			r.trackPush1(r.stackPeek())

			r.advance(2)

			continue

		case syntax.Capturemark | syntax.Back:
			r.trackPop()
			r.stackPush(r.trackPeek())
			r.Uncapture()
			if r.operand(0) != -1 && r.operand(1) != -1 {
				r.Uncapture()
			}

			break

		case syntax.Branchmark:
			r.stackPop()

			matched := r.textPos() - r.stackPeek()

			if matched != 0 { // Nonempty match -> loop now
				r.trackPush2(r.stackPeek(), r.textPos()) // Save old mark, textpos
				r.stackPush(r.textPos())                 // Make new mark
				r.goTo(r.operand(0))                     // Loop
			} else { // Empty match -> straight now
				r.trackPushNeg1(r.stackPeek()) // Save old mark
				r.advance(1)                   // Straight
			}
			continue

		case syntax.Branchmark | syntax.Back:
			r.trackPopN(2)
			r.stackPop()
			r.textto(r.trackPeekN(1))      // Recall position
			r.trackPushNeg1(r.trackPeek()) // Save old mark
			r.advance(1)                   // Straight
			continue

		case syntax.Branchmark | syntax.Back2:
			r.trackPop()
			r.stackPush(r.trackPeek()) // Recall old mark
			break                      // Backtrack

		case syntax.Lazybranchmark:
			// We hit this the first time through a lazy loop and after each
			// successful match of the inner expression. It simply continues
			// on and doesn't loop.
			r.stackPop()

			oldMarkPos := r.stackPeek()

			if r.textPos() != oldMarkPos { // Nonempty match -> try to loop again by going to 'back' branch
				if oldMarkPos != -1 {
					r.trackPush2(oldMarkPos, r.textPos()) // Save old mark, textpos
				} else {
					r.trackPush2(r.textPos(), r.textPos())
				}
			} else {
				// An empty iteration never loops again. The mark moves to the
				// track, flagged by a -1 position, so the stack stays balanced
				// for whatever encloses the loop.
				r.trackPush2(oldMarkPos, -1)
			}
			r.advance(1)
			continue

		case syntax.Lazybranchmark | syntax.Back:

			// After the first time, Lazybranchmark | syntax.Back occurs
			// with each iteration of the loop, and therefore with every attempted
			// match of the inner expression. We'll try to match the inner expression,
			// then go back to Lazybranchmark if successful. If the inner expression
			// fails, we go to Lazybranchmark | syntax.Back2

			r.trackPopN(2)
			pos := r.trackPeekN(1)
			if pos == -1 {
				// the last iteration was empty: put its mark back and keep backtracking
				r.stackPush(r.trackPeek())
				break
			}
			r.trackPushNeg1(r.trackPeek()) // Save old mark
			r.stackPush(pos)               // Make new mark
			r.textto(pos)                  // Recall position
			r.goTo(r.operand(0))           // Loop
			continue

		case syntax.Lazybranchmark | syntax.Back2:
			// The lazy loop has failed. We'll do a true backtrack and
			// start over before the lazy loop.
			r.stackPop()
			r.trackPop()
			r.stackPush(r.trackPeek()) // Recall old mark
			break

		case syntax.Setcount:
			r.stackPush2(r.textPos(), r.operand(0))
			r.trackPush()
			r.advance(1)
			continue

		case syntax.Nullcount:
			r.stackPush2(-1, r.operand(0))
			r.trackPush()
			r.advance(1)
			continue

		case syntax.Setcount | syntax.Back, syntax.Nullcount | syntax.Back:
			r.stackPopN(2)
			break

		case syntax.Branchcount:
			// r.stackPush:
			//  0: Mark
			//  1: Count

			r.stackPopN(2)
			mark := r.stackPeek()
			count := r.stackPeekN(1)
			matched := r.textPos() - mark

			if count >= r.operand(1) || (matched == 0 && count >= 0) { // Max loops or empty match -> straight now
				r.trackPushNeg2(mark, count) // Save old mark, count
				r.advance(2)                 // Straight
			} else { // Nonempty match -> count+loop now
				r.trackPush1(mark)                 // remember mark
				r.stackPush2(r.textPos(), count+1) // Make new mark, incr count
				r.goTo(r.operand(0))               // Loop
			}
			continue

		case syntax.Branchcount | syntax.Back:
			// r.trackPush:
			//  0: Previous mark
			// r.stackPush:
			//  0: Mark (= current pos, discarded)
			//  1: Count
			r.trackPop()
			r.stackPopN(2)
			if r.stackPeekN(1) > 0 { // Positive -> can go straight
				r.textto(r.stackPeek())                           // Zap to mark
				r.trackPushNeg2(r.trackPeek(), r.stackPeekN(1)-1) // Save old mark, old count
				r.advance(2)                                      // Straight
				continue
			}
			r.stackPush2(r.trackPeek(), r.stackPeekN(1)-1) // recall old mark, old count
			break

		case syntax.Branchcount | syntax.Back2:
			// r.trackPush:
			//  0: Previous mark
			//  1: Previous count
			r.trackPopN(2)
			r.stackPush2(r.trackPeek(), r.trackPeekN(1)) // Recall old mark, old count
			break // Backtrack

		case syntax.Lazybranchcount:
			// r.stackPush:
			//  0: Mark
			//  1: Count

			r.stackPopN(2)
			mark := r.stackPeek()
			count := r.stackPeekN(1)

			if count < 0 { // Negative count -> loop now
				r.trackPushNeg1(mark)              // Save old mark
				r.stackPush2(r.textPos(), count+1) // Make new mark, incr count
				r.goTo(r.operand(0))               // Loop
			} else { // Nonneg count -> straight now
				r.trackPush3(mark, count, r.textPos()) // Save mark, count, position
				r.advance(2)                           // Straight
			}
			continue

		case syntax.Lazybranchcount | syntax.Back:
			// r.trackPush:
			//  0: Mark
			//  1: Count
			//  2: r.textPos

			r.trackPopN(3)
			mark := r.trackPeek()
			textpos := r.trackPeekN(2)

			if r.trackPeekN(1) < r.operand(1) && textpos != mark { // Under limit and not empty match -> loop
				r.textto(textpos)                        // Recall position
				r.stackPush2(textpos, r.trackPeekN(1)+1) // Make new mark, incr count
				r.trackPushNeg1(mark)                    // Save old mark
				r.goTo(r.operand(0))                     // Loop
				continue
			}
			// Max loops or empty match -> backtrack
			r.stackPush2(r.trackPeek(), r.trackPeekN(1)) // Recall old mark, count
			break                                        // backtrack

		case syntax.Lazybranchcount | syntax.Back2:
			// r.trackPush:
			//  0: Previous mark
			// r.stackPush:
			//  0: Mark (== current pos, discarded)
			//  1: Count
			r.trackPop()
			r.stackPopN(2)
			r.stackPush2(r.trackPeek(), r.stackPeekN(1)-1) // Recall old mark, count
			break                                          // Backtrack

		case syntax.Setjump:
			r.stackPush2(r.trackpos(), r.crawlpos())
			r.trackPush()
			r.advance(0)
			continue

		case syntax.Setjump | syntax.Back:
			r.stackPopN(2)
			break

		case syntax.Backjump:
			// r.stackPush:
			//  0: Saved trackpos
			//  1: r.crawlpos
			r.stackPopN(2)
			r.trackto(r.stackPeek())

			for r.crawlpos() != r.stackPeekN(1) {
				r.Uncapture()
			}

			break

		case syntax.Forejump:
			// r.stackPush:
			//  0: Saved trackpos
			//  1: r.crawlpos
			r.stackPopN(2)
			r.trackto(r.stackPeek())
			r.trackPush1(r.stackPeekN(1))
			r.advance(0)
			continue

		case syntax.Forejump | syntax.Back:
			// r.trackPush:
			//  0: r.crawlpos
			r.trackPop()

			for r.crawlpos() != r.trackPeek() {
				r.Uncapture()
			}

			break

		case syntax.Bol:
			if r.leftchars() > 0 && r.charAt(r.textPos()-1) != '\n' {
				break
			}
			r.advance(0)
			continue

		case syntax.Eol:
			if r.rightchars() > 0 && r.charAt(r.textPos()) != '\n' {
				break
			}
			r.advance(0)
			continue

		case syntax.Boundary:
			if !r.IsBoundary(r.textPos(), r.Runtextbeg, r.Runtextend) {
				break
			}
			r.advance(0)
			continue

		case syntax.Nonboundary:
			if r.IsBoundary(r.textPos(), r.Runtextbeg, r.Runtextend) {
				break
			}
			r.advance(0)
			continue

		case syntax.ECMABoundary:
			if !r.IsECMABoundary(r.textPos(), r.Runtextbeg, r.Runtextend) {
				break
			}
			r.advance(0)
			continue

		case syntax.NonECMABoundary:
			if r.IsECMABoundary(r.textPos(), r.Runtextbeg, r.Runtextend) {
				break
			}
			r.advance(0)
			continue

		case syntax.Beginning:
			if r.leftchars() > 0 {
				break
			}
			r.advance(0)
			continue

		case syntax.Start:
			if r.textPos() != r.Runtextstart {
				break
			}
			r.advance(0)
			continue

		case syntax.EndZ:
			rchars := r.rightchars()
			if rchars > 1 || rchars == 1 && r.charAt(r.textPos()) != '\n' {
				break
			}
			r.advance(0)
			continue

		case syntax.End:
			if r.rightchars() > 0 {
				break
			}
			r.advance(0)
			continue

		case syntax.UpdateBumpalong:
			// the root frame holds the position the attempt started at; a
			// failed attempt restores it, so raising it skips the positions
			// the leading loop already covered
			if root := &r.Runtrack[len(r.Runtrack)-1]; *root < r.textPos() {
				*root = r.textPos()
			}
			r.advance(0)
			continue

		case syntax.One:
			if r.forwardchars() < 1 || r.forwardcharnext() != rune(r.operand(0)) {
				break
			}

			r.advance(1)
			continue

		case syntax.Notone:
			if r.forwardchars() < 1 || r.forwardcharnext() == rune(r.operand(0)) {
				break
			}

			r.advance(1)
			continue

		case syntax.Set:

			if r.forwardchars() < 1 || !r.code.Sets[r.operand(0)].CharIn(r.forwardcharnext()) {
				break
			}

			r.advance(1)
			continue

		case syntax.Multi:
			if !r.runematch(r.code.Strings[r.operand(0)]) {
				break
			}

			r.advance(1)
			continue

		case syntax.Ref:

			capnum := r.operand(0)

			if r.IsMatched(capnum) {
				if !r.refmatch(r.MatchIndex(capnum), r.MatchLength(capnum)) {
					break
				}
			} else {
				if (r.re.options & ECMAScript) == 0 {
					break
				}
			}

			r.advance(1)
			continue

		case syntax.Onerep:

			c := r.operand(1)

			if r.forwardchars() < c {
				break
			}

			ch := rune(r.operand(0))

			for c > 0 {
				if r.forwardcharnext() != ch {
					goto BreakBackward
				}
				c--
			}

			r.advance(2)
			continue

		case syntax.Notonerep:

			c := r.operand(1)

			if r.forwardchars() < c {
				break
			}
			ch := rune(r.operand(0))

			for c > 0 {
				if r.forwardcharnext() == ch {
					goto BreakBackward
				}
				c--
			}

			r.advance(2)
			continue

		case syntax.Setrep:

			c := r.operand(1)

			if r.forwardchars() < c {
				break
			}

			set := r.code.Sets[r.operand(0)]

			for c > 0 {
				if !set.CharIn(r.forwardcharnext()) {
					goto BreakBackward
				}
				c--
			}

			r.advance(2)
			continue

		case syntax.Oneloop, syntax.Oneloopatomic:

			c := min(r.operand(1), r.forwardchars())
			ch := rune(r.operand(0))
			i := c

			for ; i > 0; i-- {
				if r.forwardcharnext() != ch {
					r.backwardnext()
					break
				}
			}

			if c > i && r.operator == syntax.Oneloop {
				r.trackPush2(c-i-1, r.textPos()-r.bump())
			}

			r.advance(2)
			continue

		case syntax.Notoneloop, syntax.Notoneloopatomic:

			c := min(r.operand(1), r.forwardchars())
			ch := rune(r.operand(0))
			i := c

			for ; i > 0; i-- {
				if r.forwardcharnext() == ch {
					r.backwardnext()
					break
				}
			}

			if c > i && r.operator == syntax.Notoneloop {
				r.trackPush2(c-i-1, r.textPos()-r.bump())
			}

			r.advance(2)
			continue

		case syntax.Setloop, syntax.Setloopatomic:

			c := min(r.operand(1), r.forwardchars())
			set := r.code.Sets[r.operand(0)]
			i := c

			for ; i > 0; i-- {
				if !set.CharIn(r.forwardcharnext()) {
					r.backwardnext()
					break
				}
			}

			if c > i && r.operator == syntax.Setloop {
				r.trackPush2(c-i-1, r.textPos()-r.bump())
			}

			r.advance(2)
			continue

		case syntax.Oneloop | syntax.Back, syntax.Notoneloop | syntax.Back, syntax.Setloop | syntax.Back:

			r.trackPopN(2)
			i := r.trackPeek()
			pos := r.trackPeekN(1)

			r.textto(pos)

			if i > 0 {
				r.trackPush2(i-1, pos-r.bump())
			}

			r.advance(2)
			continue

		case syntax.Onelazy, syntax.Notonelazy, syntax.Setlazy:

			c := min(r.operand(1), r.forwardchars())

			if c > 0 {
				r.trackPush2(c-1, r.textPos())
			}

			r.advance(2)
			continue

		case syntax.Onelazy | syntax.Back:

			r.trackPopN(2)
			pos := r.trackPeekN(1)
			r.textto(pos)

			if r.forwardcharnext() != rune(r.operand(0)) {
				break
			}

			i := r.trackPeek()

			if i > 0 {
				r.trackPush2(i-1, pos+r.bump())
			}

			r.advance(2)
			continue

		case syntax.Notonelazy | syntax.Back:

			r.trackPopN(2)
			pos := r.trackPeekN(1)
			r.textto(pos)

			if r.forwardcharnext() == rune(r.operand(0)) {
				break
			}

			i := r.trackPeek()

			if i > 0 {
				r.trackPush2(i-1, pos+r.bump())
			}

			r.advance(2)
			continue

		case syntax.Setlazy | syntax.Back:

			r.trackPopN(2)
			pos := r.trackPeekN(1)
			r.textto(pos)

			if !r.code.Sets[r.operand(0)].CharIn(r.forwardcharnext()) {
				break
			}

			i := r.trackPeek()

			if i > 0 {
				r.trackPush2(i-1, pos+r.bump())
			}

			r.advance(2)
			continue

		default:
			return fmt.Errorf("%w: %v", errUnknownState, r.operator)
		}

	BreakBackward:
		// "break Backward" comes here:
		r.backtrack()
	}
}

// increase the size of stack and track storage
func (r *Runner) ensureStorage() {
	if r.Runstackpos < r.runtrackcount*4 {
		doubleIntSlice(&r.Runstack, &r.Runstackpos)
	}
	if r.Runtrackpos < r.runtrackcount*4 {
		doubleIntSlice(&r.Runtrack, &r.Runtrackpos)
	}
}

// the stacks grow downward, so the old contents move to the top half
func doubleIntSlice(s *[]int, pos *int) {
	oldLen := len(*s)
	newS := make([]int, oldLen*2)

	copy(newS[oldLen:], *s)
	*pos += oldLen
	*s = newS
}

// Save a number on the longjump unrolling stack
func (r *Runner) crawl(i int) {
	if r.Runcrawlpos == 0 {
		doubleIntSlice(&r.Runcrawl, &r.Runcrawlpos)
	}
	r.Runcrawlpos--
	r.Runcrawl[r.Runcrawlpos] = i
}

// Remove a number from the longjump unrolling stack
func (r *Runner) popcrawl() int {
	val := r.Runcrawl[r.Runcrawlpos]
	r.Runcrawlpos++
	return val
}

// Get the height of the stack
func (r *Runner) crawlpos() int {
	return len(r.Runcrawl) - r.Runcrawlpos
}

func (r *Runner) advance(i int) {
	r.codepos += (i + 1)
	r.setOperator(r.code.Codes[r.codepos])
}

func (r *Runner) goTo(newpos int) {
	// when branching backward or in place, ensure storage
	if newpos <= r.codepos {
		r.ensureStorage()
		r.backEdge = true
	}

	r.setOperator(r.code.Codes[newpos])
	r.codepos = newpos
}

func (r *Runner) textto(newpos int) {
	r.Runtextpos = newpos
}

func (r *Runner) trackto(newpos int) {
	r.Runtrackpos = len(r.Runtrack) - newpos
}

func (r *Runner) textPos() int {
	return r.Runtextpos
}

func (r *Runner) trackpos() int {
	return len(r.Runtrack) - r.Runtrackpos
}

// push onto the backtracking stack
func (r *Runner) trackPush() {
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = r.codepos
}

func (r *Runner) trackPush1(I1 int) {
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = I1
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = r.codepos
}

func (r *Runner) trackPush2(I1, I2 int) {
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = I1
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = I2
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = r.codepos
}

func (r *Runner) trackPush3(I1, I2, I3 int) {
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = I1
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = I2
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = I3
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = r.codepos
}

func (r *Runner) trackPushNeg1(I1 int) {
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = I1
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = -r.codepos
}

func (r *Runner) trackPushNeg2(I1, I2 int) {
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = I1
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = I2
	r.Runtrackpos--
	r.Runtrack[r.Runtrackpos] = -r.codepos
}

func (r *Runner) backtrack() {
	newpos := r.Runtrack[r.Runtrackpos]
	r.Runtrackpos++

	if newpos < 0 {
		newpos = -newpos
		r.setOperator(r.code.Codes[newpos] | syntax.Back2)
	} else {
		r.setOperator(r.code.Codes[newpos] | syntax.Back)
	}

	// When branching backward, ensure storage
	if newpos < r.codepos {
		r.ensureStorage()
	}

	r.codepos = newpos
	r.backEdge = true
}

func (r *Runner) setOperator(op int) {
	r.caseInsensitive = (0 != (op & syntax.Ci))
	r.rightToLeft = (0 != (op & syntax.Rtl))
	r.operator = syntax.InstOp(op & ^(syntax.Rtl | syntax.Ci))
}

func (r *Runner) trackPop() {
	r.Runtrackpos++
}

// pop framesize items from the backtracking stack
func (r *Runner) trackPopN(framesize int) {
	r.Runtrackpos += framesize
}

// Technically we are actually peeking at items already popped.  So if you want to
// get and pop the top item from the stack, you do
// r.trackPop();
// r.trackPeek();
func (r *Runner) trackPeek() int {
	return r.Runtrack[r.Runtrackpos-1]
}

// get the ith element down on the backtracking stack
func (r *Runner) trackPeekN(i int) int {
	return r.Runtrack[r.Runtrackpos-i-1]
}

// Push onto the grouping stack
func (r *Runner) stackPush(I1 int) {
	r.Runstackpos--
	r.Runstack[r.Runstackpos] = I1
}

func (r *Runner) stackPush2(I1, I2 int) {
	r.Runstackpos--
	r.Runstack[r.Runstackpos] = I1
	r.Runstackpos--
	r.Runstack[r.Runstackpos] = I2
}

func (r *Runner) stackPop() {
	r.Runstackpos++
}

// pop framesize items from the grouping stack
func (r *Runner) stackPopN(framesize int) {
	r.Runstackpos += framesize
}

// Technically we are actually peeking at items already popped.  So if you want to
// get and pop the top item from the stack, you do
// r.stackPop();
// r.stackPeek();
func (r *Runner) stackPeek() int {
	return r.Runstack[r.Runstackpos-1]
}

// get the ith element down on the grouping stack
func (r *Runner) stackPeekN(i int) int {
	return r.Runstack[r.Runstackpos-i-1]
}

func (r *Runner) operand(i int) int {
	return r.code.Codes[r.codepos+i+1]
}

func (r *Runner) leftchars() int {
	return r.Runtextpos - r.Runtextbeg
}

func (r *Runner) rightchars() int {
	return r.Runtextend - r.Runtextpos
}

func (r *Runner) bump() int {
	if r.rightToLeft {
		return -1
	}
	return 1
}

func (r *Runner) forwardchars() int {
	if r.rightToLeft {
		return r.Runtextpos - r.Runtextbeg
	}
	return r.Runtextend - r.Runtextpos
}

func (r *Runner) forwardcharnext() rune {
	var ch rune
	if r.rightToLeft {
		r.Runtextpos--
		ch = r.Runtext[r.Runtextpos]
	} else {
		ch = r.Runtext[r.Runtextpos]
		r.Runtextpos++
	}

	return ch
}

func (r *Runner) runematch(str []rune) bool {
	var pos int

	c := len(str)
	if !r.rightToLeft {
		if r.Runtextend-r.Runtextpos < c {
			return false
		}

		pos = r.Runtextpos + c
	} else {
		if r.Runtextpos-r.Runtextbeg < c {
			return false
		}

		pos = r.Runtextpos
	}

	for c != 0 {
		c--
		pos--
		if str[c] != r.Runtext[pos] {
			return false
		}
	}

	if !r.rightToLeft {
		pos += len(str)
	}

	r.Runtextpos = pos

	return true
}

func (r *Runner) refmatch(index, length int) bool {
	var c, pos, cmpos int

	if !r.rightToLeft {
		if r.Runtextend-r.Runtextpos < length {
			return false
		}

		pos = r.Runtextpos + length
	} else {
		if r.Runtextpos-r.Runtextbeg < length {
			return false
		}

		pos = r.Runtextpos
	}
	cmpos = index + length

	c = length

	if !r.caseInsensitive {
		for c != 0 {
			c--
			cmpos--
			pos--
			if r.Runtext[cmpos] != r.Runtext[pos] {
				return false
			}

		}
	} else {
		for c != 0 {
			c--
			cmpos--
			pos--

			if !r.foldEqual(r.Runtext[cmpos], r.Runtext[pos]) {
				return false
			}
		}
	}

	if !r.rightToLeft {
		pos += length
	}

	r.Runtextpos = pos

	return true
}

// foldEqual compares two characters ignoring case under the pattern's culture
func (r *Runner) foldEqual(a, b rune) bool {
	if a == b {
		return true
	}
	for _, eq := range r.culture.Equivalences(a) {
		if eq == b {
			return true
		}
	}
	return false
}

func (r *Runner) backwardnext() {
	if r.rightToLeft {
		r.Runtextpos++
	} else {
		r.Runtextpos--
	}
}

func (r *Runner) charAt(j int) rune {
	return r.Runtext[j]
}

// IsBoundary reports whether index sits between a word and a non-word character
func (r *Runner) IsBoundary(index, startpos, endpos int) bool {
	return (index > startpos && syntax.IsBoundaryWordChar(r.Runtext[index-1])) !=
		(index < endpos && syntax.IsBoundaryWordChar(r.Runtext[index]))
}

// IsECMABoundary is IsBoundary with the ECMAScript definition of a word character
func (r *Runner) IsECMABoundary(index, startpos, endpos int) bool {
	return (index > startpos && syntax.IsECMAWordChar(r.Runtext[index-1])) !=
		(index < endpos && syntax.IsECMAWordChar(r.Runtext[index]))
}

func (r *Runner) startTimeoutWatch() {
	if r.ignoreTimeout {
		return
	}
	r.deadline = makeDeadline(r.timeout)
}

// CheckTimeout returns a *MatchTimeoutError once the match deadline has passed
func (r *Runner) CheckTimeout() error {
	if r.ignoreTimeout || !r.deadline.reached() {
		return nil
	}

	if r.re.Debug() {
		fmt.Printf("\nRegex match timeout occurred!\nSpecified timeout: %v\nCheck period:      %v\nSearch pattern:    %v\n",
			r.timeout, clockPeriod, r.re.pattern)
	}

	return &MatchTimeoutError{
		Pattern: r.re.pattern,
		Input:   string(r.Runtext),
		Timeout: r.timeout,
	}
}

func (r *Runner) initTrackCount() {
	if r.code != nil {
		r.runtrackcount = r.code.TrackCount
	}
}

// initMatch is called before each match attempt. It resets the match and
// (on first use) allocates the stacks.
func (r *Runner) initMatch() {
	// Use a hashtable'ed Match object if the capture numbers are sparse

	if r.Runmatch == nil {
		if r.re.caps != nil {
			r.Runmatch = newMatchSparse(r.re, r.re.caps, r.re.capsize, r.Runtext, r.Runtextstart)
		} else {
			r.Runmatch = newMatch(r.re, r.re.capsize, r.Runtext, r.Runtextstart)
		}
	} else {
		r.Runmatch.reset(r.Runtext, r.Runtextstart)
	}

	// the crawl stack is allocated last, so it tells whether all three exist

	if r.Runcrawl != nil {
		r.Runtrackpos = len(r.Runtrack)
		r.Runstackpos = len(r.Runstack)
		r.Runcrawlpos = len(r.Runcrawl)
		return
	}

	r.initTrackCount()

	tracksize := r.runtrackcount * 8
	stacksize := r.runtrackcount * 8

	if tracksize < 32 {
		tracksize = 32
	}
	if stacksize < 16 {
		stacksize = 16
	}

	r.Runtrack = make([]int, tracksize)
	r.Runtrackpos = tracksize

	r.Runstack = make([]int, stacksize)
	r.Runstackpos = stacksize

	r.Runcrawl = make([]int, 32)
	r.Runcrawlpos = 32
}

func (r *Runner) tidyMatch(quick bool) *Match {
	if !quick {
		match := r.Runmatch

		r.Runmatch = nil

		match.tidy(r.Runtextpos)
		return match
	}
	// the match only signals success here, it never leaves the package
	return r.Runmatch
}

// Capture records a capture of [start, end) (either order) in group capnum
func (r *Runner) Capture(capnum, start, end int) {
	if end < start {
		end, start = start, end
	}

	r.crawl(capnum)
	r.Runmatch.addMatch(capnum, start, end-start)
}

// TransferCapture records a balancing group capture: the last capture of
// uncapnum is balanced out, and capnum (unless -1) gets the text between
// the two
func (r *Runner) TransferCapture(capnum, uncapnum, start, end int) {
	var start2, end2 int

	// these are the two intervals that are cancelling each other

	if end < start {
		start, end = end, start
	}

	start2 = r.MatchIndex(uncapnum)
	end2 = start2 + r.MatchLength(uncapnum)

	// The new capture gets the innermost defined interval

	if start >= end2 {
		end = start
		start = end2
	} else if end <= start2 {
		start = start2
	} else {
		if end > end2 {
			end = end2
		}
		if start2 > start {
			start = start2
		}
	}

	r.crawl(uncapnum)
	r.Runmatch.balanceMatch(uncapnum)

	if capnum != -1 {
		r.crawl(capnum)
		r.Runmatch.addMatch(capnum, start, end-start)
	}
}

// Uncapture reverts the last capture
func (r *Runner) Uncapture() {
	capnum := r.popcrawl()
	r.Runmatch.removeMatch(capnum)
}

// IsMatched reports whether group cap has a capture
func (r *Runner) IsMatched(cap int) bool {
	return r.Runmatch.isMatched(cap)
}

// MatchIndex is the start of the last capture of group cap
func (r *Runner) MatchIndex(cap int) int {
	return r.Runmatch.matchIndex(cap)
}

// MatchLength is the length of the last capture of group cap
func (r *Runner) MatchLength(cap int) int {
	return r.Runmatch.matchLength(cap)
}

// dump the current state
func (r *Runner) dumpState() {
	back := ""
	if r.operator&syntax.Back != 0 {
		back = " Back"
	}
	if r.operator&syntax.Back2 != 0 {
		back += " Back2"
	}
	fmt.Printf("Text:  %v\nTrack: %v\nStack: %v\n       %s%s\n\n",
		r.textposDescription(),
		r.stackDescription(r.Runtrack, r.Runtrackpos),
		r.stackDescription(r.Runstack, r.Runstackpos),
		r.code.OpcodeDescription(r.codepos),
		back)
}

func (r *Runner) stackDescription(a []int, index int) string {
	buf := &bytes.Buffer{}

	fmt.Fprintf(buf, "%v/%v", len(a)-index, len(a))
	if buf.Len() < 8 {
		buf.WriteString(strings.Repeat(" ", 8-buf.Len()))
	}

	buf.WriteRune('(')
	for i := index; i < len(a); i++ {
		if i > index {
			buf.WriteRune(' ')
		}

		buf.WriteString(strconv.Itoa(a[i]))
	}

	buf.WriteRune(')')

	return buf.String()
}

func (r *Runner) textposDescription() string {
	buf := &bytes.Buffer{}

	buf.WriteString(strconv.Itoa(r.Runtextpos))

	if buf.Len() < 8 {
		buf.WriteString(strings.Repeat(" ", 8-buf.Len()))
	}

	if r.Runtextpos > r.Runtextbeg {
		buf.WriteString(syntax.CharDescription(r.Runtext[r.Runtextpos-1]))
	} else {
		buf.WriteRune('^')
	}

	buf.WriteRune('>')

	for i := r.Runtextpos; i < r.Runtextend; i++ {
		buf.WriteString(syntax.CharDescription(r.Runtext[i]))
	}
	if buf.Len() >= 64 {
		buf.Truncate(61)
		buf.WriteString("...")
	} else {
		buf.WriteRune('$')
	}

	return buf.String()
}
