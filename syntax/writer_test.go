package syntax

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCode(t *testing.T, p string, opt RegexOptions, ro ReduceOptions) *Code {
	t.Helper()
	tree, err := ParseWithReduceOptions(p, opt, ro)
	require.NoError(t, err)
	code, err := Write(tree)
	require.NoError(t, err)
	return code
}

// opcodes lists the instructions in code without modifiers
func opcodes(c *Code) []InstOp {
	var ops []InstOp
	for i := 0; i < len(c.Codes); i += OpcodeSize(InstOp(c.Codes[i])) {
		ops = append(ops, InstOp(c.Codes[i])&Mask)
	}
	return ops
}

func hasOp(c *Code, op InstOp) bool {
	for _, o := range opcodes(c) {
		if o == op {
			return true
		}
	}
	return false
}

func TestWriteLiteral(t *testing.T) {
	code := writeCode(t, `abc`, 0, ReduceOptions{})

	require.Equal(t, []InstOp{Lazybranch, Setmark, Multi, Capturemark, Stop}, opcodes(code))
	// the outer lazybranch jumps to the final stop
	require.Equal(t, len(code.Codes)-1, code.Codes[1])
	require.Equal(t, [][]rune{[]rune("abc")}, code.Strings)
	require.Equal(t, 1, code.Capsize)
	require.False(t, code.RightToLeft)
	require.Greater(t, code.TrackCount, 0)
}

func TestWriteRightToLeftBits(t *testing.T) {
	code := writeCode(t, `abc`, RightToLeft, ReduceOptions{})
	require.True(t, code.RightToLeft)

	found := false
	for i := 0; i < len(code.Codes); i += OpcodeSize(InstOp(code.Codes[i])) {
		op := InstOp(code.Codes[i])
		if op&Mask == Multi {
			found = true
			require.NotZero(t, op&Rtl, "multi should carry the right to left bit")
		}
	}
	require.True(t, found)
}

func TestWriteAtomicLoops(t *testing.T) {
	code := writeCode(t, `a+b`, 0, ReduceOptions{})
	require.Equal(t, []InstOp{Lazybranch, Setmark, Onerep, Oneloopatomic, UpdateBumpalong, One, Capturemark, Stop}, opcodes(code))

	code = writeCode(t, `a+b`, 0, ReduceOptions{DisableAutoAtomic: true})
	require.True(t, hasOp(code, Oneloop))
	require.False(t, hasOp(code, Oneloopatomic))

	// a loop ending the pattern has nothing after it to give chars back to
	code = writeCode(t, `x\d*`, 0, ReduceOptions{DisableAutoAtomic: true})
	require.True(t, hasOp(code, Setloopatomic), code.Dump())
}

func TestWriteAtomicGroupJumps(t *testing.T) {
	// nothing in the group can be backtracked into, so no jump frame is needed
	code := writeCode(t, `(?>(a)b)c`, 0, ReduceOptions{})
	require.False(t, hasOp(code, Setjump), code.Dump())
	require.False(t, hasOp(code, Forejump), code.Dump())

	// the alternation's choice point has to be dropped at the end of the group
	code = writeCode(t, `(?>(x|xy))z`, 0, ReduceOptions{})
	require.True(t, hasOp(code, Setjump), code.Dump())
	require.True(t, hasOp(code, Forejump), code.Dump())

	code = writeCode(t, `(?>(?:ab)*)abz`, 0, ReduceOptions{DisableAutoAtomic: true})
	require.True(t, hasOp(code, Setjump), code.Dump())
}

func TestWriteLookarounds(t *testing.T) {
	code := writeCode(t, `a(?=b)`, 0, ReduceOptions{})
	require.True(t, hasOp(code, Setjump))
	require.True(t, hasOp(code, Getmark))
	require.True(t, hasOp(code, Forejump))

	code = writeCode(t, `a(?!b)`, 0, ReduceOptions{})
	require.True(t, hasOp(code, Backjump))
}

func TestWriteLoopCounts(t *testing.T) {
	code := writeCode(t, `(?:ab){2,5}c`, 0, ReduceOptions{})
	require.True(t, hasOp(code, Setcount), code.Dump())
	require.True(t, hasOp(code, Branchcount), code.Dump())

	code = writeCode(t, `(?:ab)*?c`, 0, ReduceOptions{})
	require.True(t, hasOp(code, Nullmark), code.Dump())
	require.True(t, hasOp(code, Lazybranchmark), code.Dump())
}

func TestWriteSparseCaptures(t *testing.T) {
	code := writeCode(t, `(?<5>a)b`, 0, ReduceOptions{})
	require.Equal(t, 2, code.Capsize)
	require.Equal(t, map[int]int{0: 0, 5: 1}, code.Caps)

	// capture numbers are written as slots
	var indexes []int
	for i := 0; i < len(code.Codes); i += OpcodeSize(InstOp(code.Codes[i])) {
		if InstOp(code.Codes[i])&Mask == Capturemark {
			indexes = append(indexes, code.Codes[i+1])
		}
	}
	require.ElementsMatch(t, []int{0, 1}, indexes)
}

func TestWriteSetAndStringTablesDedupe(t *testing.T) {
	code := writeCode(t, `(?:ab)+\d(?:ab)+\d`, 0, ReduceOptions{})
	require.Len(t, code.Sets, 1, code.Dump())
	require.Len(t, code.Strings, 1, code.Dump())
}

func TestCodeDump(t *testing.T) {
	code := writeCode(t, `abc`, 0, ReduceOptions{})
	dump := code.Dump()

	require.Contains(t, dump, "Direction:  left-to-right")
	require.Contains(t, dump, `Search: LeadingString_LeftToRight "abc"`)
	require.Contains(t, dump, "000000 *Lazybranch(Addr = ")
	require.Contains(t, dump, " Multi(String = abc)")
	require.True(t, strings.HasSuffix(dump, " Stop()\n"), dump)

	code = writeCode(t, `a{2,}`, RightToLeft, ReduceOptions{})
	dump = code.Dump()
	require.Contains(t, dump, "Direction:  right-to-left")
	require.Contains(t, dump, "Rep = inf")
	require.Contains(t, dump, "-Rtl")
}

func TestOpcodeSizeUnknown(t *testing.T) {
	require.Panics(t, func() { OpcodeSize(InstOp(Mask)) })
}
