package syntax

import (
	"cmp"
	"math"
	"slices"
	"unicode"
)

// findFirstCharClass computes a set holding every char that could start a match of root.
// It looks further than the fixed-distance analysis: for a*b it finds [ab] even
// though neither char sits at a fixed offset. It returns nil if root can match
// the empty string or contains something it can't reason about.
func findFirstCharClass(root *RegexNode) *CharSet {
	fc := &firstChars{}
	if fc.visit(root) == fcStop {
		return fc.set
	}
	return nil
}

type fcResult int

const (
	// the node couldn't be handled and the whole result is untrustworthy
	fcFail fcResult = iota
	// the node always consumes a char, nothing after it can start a match
	fcStop
	// the node may be zero-width, the next node can also start a match
	fcContinue
)

type firstChars struct {
	// lazily created so that a leading negated set can be used as is
	set *CharSet
}

func (fc *firstChars) mergeable() bool {
	if fc.set == nil {
		fc.set = &CharSet{}
	}
	return fc.set.IsMergeable()
}

func (fc *firstChars) visit(node *RegexNode) fcResult {
	switch node.T {
	case NtOne, NtOneloop, NtOnelazy, NtOneloopatomic:
		if !fc.mergeable() {
			return fcFail
		}
		fc.set.addChar(node.Ch)
		if node.T == NtOne || node.M > 0 {
			return fcStop
		}
		return fcContinue

	case NtNotone, NtNotoneloop, NtNotonelazy, NtNotoneloopatomic:
		if !fc.mergeable() {
			return fcFail
		}
		if node.Ch > 0 {
			fc.set.addRange(0, node.Ch-1)
		}
		if node.Ch < unicode.MaxRune {
			fc.set.addRange(node.Ch+1, unicode.MaxRune)
		}
		if node.T == NtNotone || node.M > 0 {
			return fcStop
		}
		return fcContinue

	case NtSet, NtSetloop, NtSetlazy, NtSetloopatomic:
		if fc.set == nil {
			c := node.Set.Copy()
			fc.set = &c
		} else if fc.set.IsMergeable() && node.Set.IsMergeable() {
			fc.set.addSet(*node.Set)
		} else {
			return fcFail
		}
		if node.T == NtSet || node.M > 0 {
			return fcStop
		}
		return fcContinue

	case NtMulti:
		if !fc.mergeable() {
			return fcFail
		}
		if node.Options&RightToLeft != 0 {
			fc.set.addChar(node.Str[len(node.Str)-1])
		} else {
			fc.set.addChar(node.Str[0])
		}
		return fcStop

	case NtEmpty, NtNothing, NtBol, NtEol, NtBoundary, NtNonboundary, NtECMABoundary, NtNonECMABoundary,
		NtBeginning, NtStart, NtEndZ, NtEnd, NtUpdateBumpalong, NtPosLook, NtNegLook:
		return fcContinue

	case NtAtomic, NtCapture, NtGroup:
		return fc.visit(node.Children[0])

	case NtLoop, NtLazyloop:
		r := fc.visit(node.Children[0])
		if r == fcStop && node.M == 0 {
			return fcContinue
		}
		return r

	case NtConcatenate:
		for _, c := range node.Children {
			if r := fc.visit(c); r != fcContinue {
				return r
			}
		}
		return fcContinue

	case NtAlternate:
		nullable := false
		for _, c := range node.Children {
			switch fc.visit(c) {
			case fcFail:
				return fcFail
			case fcContinue:
				nullable = true
			}
		}
		if nullable {
			return fcContinue
		}
		return fcStop

	case NtBackRefCond, NtExprCond:
		first := 1
		if node.T == NtBackRefCond {
			first = 0
		}
		if first+1 >= len(node.Children) {
			// a missing "no" branch matches empty
			if first < len(node.Children) && fc.visit(node.Children[first]) == fcFail {
				return fcFail
			}
			return fcContinue
		}
		yes := fc.visit(node.Children[first])
		no := fc.visit(node.Children[first+1])
		if yes == fcFail || no == fcFail {
			return fcFail
		}
		if yes == fcContinue || no == fcContinue {
			return fcContinue
		}
		return fcStop
	}

	// backreferences and anything unknown
	return fcFail
}

// findPrefixOrdinalCaseInsensitive finds a leading run of ASCII text that has to
// match ignoring case, lowercased. Empty if there is none.
func findPrefixOrdinalCaseInsensitive(node *RegexNode) string {
	for {
		switch node.T {
		case NtAtomic, NtCapture:
			node = node.Children[0]
		case NtLoop, NtLazyloop:
			if node.M == 0 {
				return ""
			}
			node = node.Children[0]
		case NtConcatenate:
			_, _, s := node.TryGetOrdinalCaseInsensitiveString(0, len(node.Children), true)
			return s
		default:
			return ""
		}
	}
}

// findPrefix returns the text every match of node starts with, possibly empty
func findPrefix(node *RegexNode) string {
	var prefix []rune
	tryFindPrefix(node, &prefix)
	return string(prefix)
}

// tryFindPrefix appends node's guaranteed leading text to prefix and reports
// whether the nodes following it may extend the prefix further
func tryFindPrefix(node *RegexNode, prefix *[]rune) bool {
	// right to left is handled for one node only
	rtl := node.Options&RightToLeft != 0

	switch node.T {
	case NtConcatenate:
		for _, c := range node.Children {
			if !tryFindPrefix(c, prefix) {
				return false
			}
		}
		return !rtl

	case NtAlternate:
		if rtl {
			return false
		}
		start := len(*prefix)
		tryFindPrefix(node.Children[0], prefix)
		shared := len(*prefix) - start

		var branch []rune
		for i := 1; i < len(node.Children) && shared > 0; i++ {
			branch = branch[:0]
			tryFindPrefix(node.Children[i], &branch)
			shared = commonPrefixLen((*prefix)[start:start+shared], branch)
		}
		*prefix = (*prefix)[:start+shared]

		// only text shared by every branch survives, so what follows can't be added
		return false

	case NtOne:
		*prefix = append(*prefix, node.Ch)
		return !rtl

	case NtMulti:
		*prefix = append(*prefix, node.Str...)
		return !rtl

	case NtOneloop, NtOnelazy, NtOneloopatomic:
		if node.M <= 0 {
			return false
		}
		count := min(node.M, 32)
		for i := 0; i < count; i++ {
			*prefix = append(*prefix, node.Ch)
		}
		return count == node.N && !rtl

	case NtLoop, NtLazyloop:
		if node.M <= 0 {
			return false
		}
		limit := min(node.M, 4)
		for i := 0; i < limit; i++ {
			if !tryFindPrefix(node.Children[0], prefix) {
				return false
			}
		}
		return limit == node.N && !rtl

	case NtAtomic, NtCapture:
		return tryFindPrefix(node.Children[0], prefix)

	case NtBol, NtEol, NtBoundary, NtECMABoundary, NtNonboundary, NtNonECMABoundary, NtBeginning,
		NtStart, NtEndZ, NtEnd, NtEmpty, NtUpdateBumpalong, NtPosLook, NtNegLook:
		return true
	}
	return false
}

func commonPrefixLen(a, b []rune) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}

const (
	// shorter prefixes are better served by searching for a set of chars
	minPrefixLength = 2
	maxPrefixLength = 8
	maxPrefixes     = 16
)

// findPrefixes returns the small set of strings one of which every match of node
// has to start with, or nil when there's no such set worth searching for
func findPrefixes(node *RegexNode, ignoreCase bool) []string {
	results := [][]rune{nil}
	findPrefixesCore(node, &results, ignoreCase)

	if len(results) > maxPrefixes || slices.ContainsFunc(results, func(p []rune) bool { return len(p) < minPrefixLength }) {
		return nil
	}

	out := make([]string, len(results))
	for i, p := range results {
		out[i] = string(p)
	}
	return out
}

// findPrefixesCore extends every prefix in res with what node is guaranteed to
// match first. The prefixes found are always valid; it returns false once nodes
// after this one can no longer extend them.
func findPrefixesCore(node *RegexNode, res *[][]rune, ignoreCase bool) bool {
	if node.Options&RightToLeft != 0 || len(*res) > maxPrefixes ||
		slices.ContainsFunc(*res, func(p []rune) bool { return len(p) >= maxPrefixLength }) {
		return false
	}

	for {
		switch node.T {
		case NtAtomic, NtCapture:
			node = node.Children[0]
			continue

		case NtBol, NtEol, NtBoundary, NtECMABoundary, NtNonboundary, NtNonECMABoundary,
			NtBeginning, NtStart, NtEndZ, NtEnd, NtEmpty, NtUpdateBumpalong,
			NtPosLook, NtNegLook:
			return true

		case NtOne, NtOneloop, NtOnelazy, NtOneloopatomic:
			if ignoreCase && participatesInCaseConversion(node.Ch) {
				return false
			}
			reps := 1
			if node.T != NtOne {
				reps = min(node.M, maxPrefixLength)
			}
			results := *res
			for i := range results {
				for r := 0; r < reps; r++ {
					results[i] = append(results[i], node.Ch)
				}
			}
			return node.T == NtOne || reps == node.N

		case NtMulti:
			results := *res
			for _, c := range node.Str {
				if ignoreCase && participatesInCaseConversion(c) {
					return false
				}
				for i := range results {
					results[i] = append(results[i], c)
				}
			}
			return true

		case NtSet, NtSetloop, NtSetlazy, NtSetloopatomic:
			if node.Set.IsNegated() {
				return false
			}
			reps := 1
			if node.T != NtSet {
				reps = min(node.M, maxPrefixLength)
			}

			if ignoreCase {
				// only a case pair of one ASCII letter, like [Aa], folds to a single char
				ok, pair := node.Set.containsAsciiIgnoreCaseCharacter(nil)
				if !ok {
					return false
				}
				results := *res
				for i := range results {
					for r := 0; r < reps; r++ {
						results[i] = append(results[i], pair[1])
					}
				}
				return node.T == NtSet || reps == node.N
			}

			chars := node.Set.GetSetChars(maxPrefixes)
			if len(chars) == 0 {
				return false
			}
			for r := 0; r < reps; r++ {
				existing := *res
				if len(existing)*len(chars) > maxPrefixes {
					return false
				}
				next := make([][]rune, 0, len(existing)*len(chars))
				for _, c := range chars {
					for _, p := range existing {
						next = append(next, append(slices.Clone(p), c))
					}
				}
				*res = next
			}
			return node.T == NtSet || reps == node.N

		case NtConcatenate:
			for _, c := range node.Children {
				if !findPrefixesCore(c, res, ignoreCase) {
					return false
				}
			}
			return true

		case NtLoop, NtLazyloop:
			if node.M == 0 {
				return false
			}
			limit := min(node.M, maxPrefixLength)
			for i := 0; i < limit; i++ {
				if !findPrefixesCore(node.Children[0], res, ignoreCase) {
					return false
				}
			}
			return limit == node.N

		case NtAlternate:
			if len(node.Children) > maxPrefixes {
				return false
			}

			var all [][]rune
			for _, c := range node.Children {
				branch := [][]rune{nil}
				findPrefixesCore(c, &branch, ignoreCase)
				if len(all)+len(branch) > maxPrefixes {
					return false
				}
				// an empty branch prefix makes every other branch's prefix useless
				for _, p := range branch {
					if len(p) == 0 {
						return false
					}
				}
				all = append(all, branch...)
			}

			existing := *res
			if len(existing) == 1 && len(existing[0]) == 0 {
				*res = all
			} else {
				if len(existing)*len(all) > maxPrefixes {
					return false
				}
				next := make([][]rune, 0, len(existing)*len(all))
				for _, suffix := range all {
					for _, p := range existing {
						next = append(next, append(slices.Clone(p), suffix...))
					}
				}
				*res = next
			}

			// a branch may have been cut short, so nothing after the alternation can be appended
			return false
		}
		return false
	}
}

const (
	maxLoopExpansion = 20
	maxFixedResults  = 50
)

// findFixedDistanceSets finds the sets sitting at a fixed offset from the start of
// a match. When thorough is set alternations are explored as well.
func findFixedDistanceSets(root *RegexNode, thorough bool) []FixedDistanceSet {
	var results []FixedDistanceSet
	distance := 0
	tryFindRawFixedSets(root, &results, &distance, thorough)

	// sets matching everything (. in Singleline, [\s\S]) don't narrow the search
	results = slices.DeleteFunc(results, func(s FixedDistanceSet) bool { return s.Set.IsAnything() })

	if len(results) == 0 {
		c := findFirstCharClass(root)
		if c == nil || c.IsAnything() {
			return nil
		}
		results = append(results, FixedDistanceSet{Set: c, Distance: 0})
	}

	for i := range results {
		r := &results[i]
		r.Negated = r.Set.IsNegated()

		if ranges, ok := r.Set.GetIfNRanges(1); ok && ranges[0].Last-ranges[0].First > 1 {
			rg := ranges[0]
			r.Range = &rg
			continue
		}
		positive := r.Set.Copy()
		positive.negate = false
		if chars := positive.GetSetChars(128); len(chars) > 0 {
			r.Chars = chars
		}
	}

	return results
}

// tryFindRawFixedSets appends the sets found at a fixed distance within node to res,
// advancing distance past node. It returns false when node's length varies, after
// which distance can't be trusted; everything already appended stays valid.
func tryFindRawFixedSets(node *RegexNode, res *[]FixedDistanceSet, distance *int, thorough bool) bool {
	if node.Options&RightToLeft != 0 {
		return false
	}

	// add puts set at the next n offsets and reports whether all of them fit
	add := func(set *CharSet, n int) bool {
		for i := 0; i < n; i++ {
			if len(*res) >= maxFixedResults {
				return false
			}
			*res = append(*res, FixedDistanceSet{Set: set, Distance: *distance})
			*distance++
		}
		return true
	}
	// a single char loop contributes its first iterations, and is only of fixed
	// length when every iteration was added
	loop := func(set *CharSet) bool {
		if node.M == 0 {
			return false
		}
		return add(set, min(node.M, maxLoopExpansion)) && node.M <= maxLoopExpansion && node.M == node.N
	}

	switch {
	case node.T == NtOne:
		return add(charSetOf(node.Ch), 1)
	case node.T == NtSet:
		return add(node.Set, 1)
	case node.T == NtMulti:
		for _, ch := range node.Str {
			if !add(charSetOf(ch), 1) {
				return false
			}
		}
		return true
	case node.T == NtNotone:
		// matches nearly anything, not worth a set
		*distance++
		return true
	case node.IsOneFamily():
		return loop(charSetOf(node.Ch))
	case node.IsSetFamily():
		return loop(node.Set)
	case node.IsNotoneFamily():
		if node.M != node.N {
			return false
		}
		*distance += node.M
		return true
	}

	switch node.T {
	case NtBeginning, NtBol, NtStart, NtEnd, NtEndZ, NtEol,
		NtBoundary, NtNonboundary, NtECMABoundary, NtNonECMABoundary,
		NtPosLook, NtNegLook, NtEmpty, NtUpdateBumpalong:
		return true

	case NtAtomic, NtGroup, NtCapture:
		return tryFindRawFixedSets(node.Children[0], res, distance, thorough)

	case NtLoop, NtLazyloop:
		if node.M > 0 {
			// only the first iteration is looked at
			tryFindRawFixedSets(node.Children[0], res, distance, thorough)
		}
		return false

	case NtConcatenate:
		for _, c := range node.Children {
			if !tryFindRawFixedSets(c, res, distance, thorough) {
				return false
			}
		}
		return true

	case NtAlternate:
		return thorough && tryFindAlternationFixedSets(node, res, distance)
	}
	return false
}

func charSetOf(ch rune) *CharSet {
	set := &CharSet{}
	set.addChar(ch)
	return set
}

// tryFindAlternationFixedSets keeps only the offsets every branch has a set at,
// merging the branches' sets there
func tryFindAlternationFixedSets(node *RegexNode, res *[]FixedDistanceSet, distance *int) bool {
	type merged struct {
		set   *CharSet
		count int
	}
	allSameSize := true
	sameDistance := -1
	combined := map[int]*merged{}

	for _, c := range node.Children {
		var local []FixedDistanceSet
		localDistance := 0
		allSameSize = tryFindRawFixedSets(c, &local, &localDistance, true) && allSameSize
		if len(local) == 0 {
			return false
		}
		if allSameSize {
			if sameDistance == -1 {
				sameDistance = localDistance
			} else if sameDistance != localDistance {
				allSameSize = false
			}
		}

		for _, fs := range local {
			m, ok := combined[fs.Distance]
			if !ok {
				cp := fs.Set.Copy()
				combined[fs.Distance] = &merged{set: &cp, count: 1}
				continue
			}
			if m.set.IsMergeable() && fs.Set.IsMergeable() {
				m.set.addSet(*fs.Set)
				m.count++
			}
		}
	}

	dists := make([]int, 0, len(combined))
	for d := range combined {
		dists = append(dists, d)
	}
	slices.Sort(dists)
	for _, d := range dists {
		if len(*res) >= maxFixedResults {
			allSameSize = false
			break
		}
		if m := combined[d]; m.count == len(node.Children) {
			*res = append(*res, FixedDistanceSet{Set: m.set, Distance: d + *distance})
		}
	}

	if allSameSize {
		*distance += sameDistance
		return true
	}
	return false
}

// compareFixedDistanceSetsByQuality orders sets from the cheapest and most
// selective to search for to the least
func compareFixedDistanceSetsByQuality(s1, s2 FixedDistanceSet) int {
	// negated sets are big and match often
	if s1.Negated != s2.Negated {
		return firstIf(!s1.Negated)
	}

	r1, r2 := getRangeLength(s1.Range, s1.Negated), getRangeLength(s2.Range, s2.Negated)
	c1, c2 := len(s1.Chars), len(s2.Chars)

	if !s1.Negated {
		if c1 > 0 && c2 > 0 {
			// rarer chars first, the table is only a tie-breaker
			if f1, f2 := sumFrequencies(s1.Chars), sumFrequencies(s2.Chars); f1 != f2 {
				return cmp.Compare(f1, f2)
			}
			if !isASCIIRunes(s1.Chars) && !isASCIIRunes(s2.Chars) {
				return cmp.Compare(c1, c2)
			}
		}
		if c1 > 0 && r2 > 0 || r1 > 0 && c2 > 0 {
			if c := cmp.Compare(max(r1, c1), max(r2, c2)); c != 0 {
				return c
			}
			return firstIf(c1 > 0)
		}
		if (c1 > 0) != (c2 > 0) {
			return firstIf(c1 > 0)
		}
	}

	if (r1 > 0) != (r2 > 0) {
		return firstIf(r1 > 0)
	}
	if r1 > 0 {
		return cmp.Compare(r1, r2)
	}
	return cmp.Compare(s1.Distance, s2.Distance)
}

// firstIf orders the left value first when cond holds
func firstIf(cond bool) int {
	if cond {
		return -1
	}
	return 1
}

func isASCIIRunes(rs []rune) bool {
	for _, r := range rs {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}

func getRangeLength(r *SingleRange, negated bool) int {
	if r == nil {
		return 0
	}
	if negated {
		return int(unicode.MaxRune - (r.Last - r.First))
	}
	return int(r.Last - r.First + 1)
}

func sumFrequencies(chars []rune) float32 {
	var sum float32
	for _, c := range chars {
		// non-ASCII counts as never seen
		if c < unicode.MaxASCII {
			sum += frequency[c]
		}
	}
	return sum
}

// frequency is how often, in percent, each ASCII char turns up in a sample of
// source code and English text. Rarer chars make better search anchors.
var frequency = [128]float32{
	/* 0x00-0x0F */ 0, 0, 0, 0, 0, 0, 0, 0, 0, 0.001, 0, 0, 0, 0, 0, 0,
	/* 0x10-0x1F */ 0, 0, 0, 0, 0.003, 0, 0, 0, 0, 0.004, 0, 0, 0.006, 0.006, 0, 0,
	/* 0x20-0x2F */ 8.952, 0.065, 0.42, 0.01, 0.011, 0.005, 0.07, 0.05, 3.911, 3.91, 0.356, 2.775, 1.411, 0.173, 2.054, 0.677,
	/* 0x30-0x3F */ 1.199, 0.87, 0.729, 0.491, 0.335, 0.269, 0.435, 0.24, 0.234, 0.196, 0.144, 0.983, 0.357, 0.661, 0.371, 0.088,
	/* 0x40-0x4F */ 0.007, 0.763, 0.229, 0.551, 0.306, 0.449, 0.337, 0.162, 0.131, 0.489, 0.031, 0.035, 0.301, 0.205, 0.253, 0.228,
	/* 0x50-0x5F */ 0.288, 0.034, 0.38, 0.73, 0.675, 0.265, 0.309, 0.137, 0.084, 0.023, 0.023, 0.591, 0.085, 0.59, 0.013, 0.797,
	/* 0x60-0x6F */ 0.001, 4.596, 1.296, 2.081, 2.005, 6.903, 1.494, 1.019, 1.024, 3.75, 0.286, 0.439, 2.913, 1.459, 3.908, 3.23,
	/* 0x70-0x7F */ 1.444, 0.231, 4.22, 3.924, 5.312, 2.112, 0.737, 0.573, 0.992, 1.067, 0.181, 0.391, 0.056, 0.391, 0.002, 0,
}

// findLiteralFollowingLeadingLoop looks for a pattern starting with an unbounded
// set loop followed by a literal the loop can't match. A search can then find the
// literal and walk back over the loop to where the match starts.
func findLiteralFollowingLeadingLoop(node *RegexNode) *LiteralAfterLoop {
	if node.Options&RightToLeft != 0 {
		return nil
	}

	// loops aren't entered: the loop node is skipped during matching
	for node.T == NtAtomic || node.T == NtCapture {
		node = node.Children[0]
	}
	if node.T != NtConcatenate || len(node.Children) < 2 {
		return nil
	}

	loop := node.Children[0]
	for loop.T == NtAtomic || loop.T == NtCapture {
		loop = loop.Children[0]
	}
	if (loop.T != NtSetloop && loop.T != NtSetlazy && loop.T != NtSetloopatomic) || loop.N != math.MaxInt32 {
		return nil
	}

	next := node.Children[1]
	if next.T == NtUpdateBumpalong {
		if len(node.Children) == 2 {
			return nil
		}
		next = node.Children[2]
	}

	if prefix := []rune(findPrefix(next)); len(prefix) >= 1 {
		// the loop must not be able to eat the literal's first char
		if loop.Set.CharIn(prefix[0]) {
			return nil
		}
		if len(prefix) == 1 {
			return &LiteralAfterLoop{LoopNode: loop, Char: prefix[0]}
		}
		return &LiteralAfterLoop{LoopNode: loop, String: string(prefix)}
	}

	if ci := findPrefixOrdinalCaseInsensitive(next); len(ci) >= 2 {
		ch := rune(ci[0])
		if participatesInCaseConversion(ch) {
			if loop.Set.CharIn(ch|0x20) || loop.Set.CharIn(ch&^0x20) {
				return nil
			}
		} else if loop.Set.CharIn(ch) {
			return nil
		}
		return &LiteralAfterLoop{LoopNode: loop, String: ci, StringIgnoreCase: true}
	}

	for next.T == NtAtomic || next.T == NtCapture || next.T == NtConcatenate ||
		((next.T == NtLoop || next.T == NtLazyloop) && next.M >= 1) {
		next = next.Children[0]
	}

	if next.IsSetFamily() && !next.Set.IsNegated() && (next.T == NtSet || next.M >= 1) {
		chars := next.Set.GetSetChars(5)
		if len(chars) == 0 {
			return nil
		}
		for _, c := range chars {
			if loop.Set.CharIn(c) {
				return nil
			}
		}
		return &LiteralAfterLoop{LoopNode: loop, Chars: chars}
	}

	return nil
}
