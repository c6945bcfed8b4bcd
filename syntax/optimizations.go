package syntax

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/ModxVoldHunter/CSharp-SDK-sub006/helpers"
)

// FindOptimizations describes how to skip ahead to the next position where a match
// could possibly begin, without running the full interpreter at every position.
type FindOptimizations struct {
	rightToLeft bool

	FindMode          FindNextStartingPositionMode
	LeadingAnchor     NodeType
	TrailingAnchor    NodeType
	MinRequiredLength int
	// MaxPossibleLength is -1 when unbounded or not computed. It is only computed
	// for patterns ending in \z or \Z.
	MaxPossibleLength int
	LeadingPrefix     string
	LeadingPrefixes   []string

	FixedDistanceLiteral FixedDistanceLiteral
	FixedDistanceSets    []FixedDistanceSet
	LiteralAfterLoop     *LiteralAfterLoop

	leadingPrefix  []rune
	bmPrefix       *BoyerMoore
	leadingStrings *helpers.MultiStringSearcher
}

// LiteralAfterLoop is a literal found right after an unbounded leading set loop
// the literal can't overlap with. Exactly one of String, Char or Chars is used.
type LiteralAfterLoop struct {
	String           string
	StringIgnoreCase bool
	Char             rune
	Chars            []rune

	LoopNode *RegexNode
}

// FixedDistanceSet is a set every match has at Distance chars from its start.
// Chars (the set's members, or its complement's when Negated) and Range are filled
// in when the set is small enough for a faster search.
type FixedDistanceSet struct {
	Set      *CharSet
	Chars    []rune
	Negated  bool
	Range    *SingleRange
	Distance int

	values *helpers.RuneSearchValues // Chars as a lookup table, when there are more than three
}

func (s *FixedDistanceSet) prepare() {
	if len(s.Chars) > 3 {
		s.values = helpers.NewRuneSearchValues(string(s.Chars))
	}
}

// FixedDistanceLiteral is a char (C) or string (S) at Distance from the start of every match
type FixedDistanceLiteral struct {
	S        string
	C        rune
	Distance int
}

// FindNextStartingPositionMode is the strategy used to skip to the next
// position a match could start at
type FindNextStartingPositionMode int

const (
	NoSearch FindNextStartingPositionMode = iota

	// the pattern starts with \A, \G, \Z or \z
	LeadingAnchor_LeftToRight_Beginning
	LeadingAnchor_LeftToRight_Start
	LeadingAnchor_LeftToRight_EndZ
	LeadingAnchor_LeftToRight_End
	LeadingAnchor_RightToLeft_Beginning
	LeadingAnchor_RightToLeft_Start
	LeadingAnchor_RightToLeft_EndZ
	LeadingAnchor_RightToLeft_End

	// a fixed length pattern ending in \z or \Z can only start at one place
	TrailingAnchor_FixedLength_LeftToRight_End
	TrailingAnchor_FixedLength_LeftToRight_EndZ

	// every match starts with LeadingPrefix
	LeadingString_LeftToRight
	LeadingString_RightToLeft
	LeadingString_OrdinalIgnoreCase_LeftToRight
	// every match starts with one of LeadingPrefixes
	LeadingStrings_LeftToRight
	LeadingStrings_OrdinalIgnoreCase_LeftToRight

	// every match starts with a char in FixedDistanceSets[0]
	LeadingSet_LeftToRight
	LeadingSet_RightToLeft
	// every right to left match ends with FixedDistanceLiteral.C
	LeadingChar_RightToLeft

	// FixedDistanceLiteral sits at a fixed offset into every match
	FixedDistanceChar_LeftToRight
	FixedDistanceString_LeftToRight
	// all of FixedDistanceSets match at their offsets
	FixedDistanceSets_LeftToRight

	// a literal follows a leading set loop it can't overlap with
	LiteralAfterLoop_LeftToRight
)

var findModeNames = map[FindNextStartingPositionMode]string{
	NoSearch:                                     "NoSearch",
	LeadingAnchor_LeftToRight_Beginning:          "LeadingAnchor_LeftToRight_Beginning",
	LeadingAnchor_LeftToRight_Start:              "LeadingAnchor_LeftToRight_Start",
	LeadingAnchor_LeftToRight_EndZ:               "LeadingAnchor_LeftToRight_EndZ",
	LeadingAnchor_LeftToRight_End:                "LeadingAnchor_LeftToRight_End",
	LeadingAnchor_RightToLeft_Beginning:          "LeadingAnchor_RightToLeft_Beginning",
	LeadingAnchor_RightToLeft_Start:              "LeadingAnchor_RightToLeft_Start",
	LeadingAnchor_RightToLeft_EndZ:               "LeadingAnchor_RightToLeft_EndZ",
	LeadingAnchor_RightToLeft_End:                "LeadingAnchor_RightToLeft_End",
	TrailingAnchor_FixedLength_LeftToRight_End:   "TrailingAnchor_FixedLength_LeftToRight_End",
	TrailingAnchor_FixedLength_LeftToRight_EndZ:  "TrailingAnchor_FixedLength_LeftToRight_EndZ",
	LeadingString_LeftToRight:                    "LeadingString_LeftToRight",
	LeadingString_RightToLeft:                    "LeadingString_RightToLeft",
	LeadingString_OrdinalIgnoreCase_LeftToRight:  "LeadingString_OrdinalIgnoreCase_LeftToRight",
	LeadingStrings_LeftToRight:                   "LeadingStrings_LeftToRight",
	LeadingStrings_OrdinalIgnoreCase_LeftToRight: "LeadingStrings_OrdinalIgnoreCase_LeftToRight",
	LeadingSet_LeftToRight:                       "LeadingSet_LeftToRight",
	LeadingSet_RightToLeft:                       "LeadingSet_RightToLeft",
	LeadingChar_RightToLeft:                      "LeadingChar_RightToLeft",
	FixedDistanceChar_LeftToRight:                "FixedDistanceChar_LeftToRight",
	FixedDistanceString_LeftToRight:              "FixedDistanceString_LeftToRight",
	FixedDistanceSets_LeftToRight:                "FixedDistanceSets_LeftToRight",
	LiteralAfterLoop_LeftToRight:                 "LiteralAfterLoop_LeftToRight",
}

func (m FindNextStartingPositionMode) String() string {
	if s, ok := findModeNames[m]; ok {
		return s
	}
	return "Unknown"
}

// maxSetsToUse caps how many fixed-distance sets a search checks per candidate
const maxSetsToUse = 3

func newFindOptimizations(tree *RegexTree, opt RegexOptions) *FindOptimizations {
	root := tree.Root
	f := &FindOptimizations{
		rightToLeft:       opt&RightToLeft != 0,
		MinRequiredLength: root.ComputeMinLength(),
		MaxPossibleLength: -1,
		LeadingAnchor:     findLeadingOrTrailingAnchor(root, true),
		TrailingAnchor:    NtUnknown,
	}
	if f.rightToLeft && f.LeadingAnchor == NtBol {
		// right to left searches don't use Bol
		f.LeadingAnchor = NtUnknown
	}

	// strategies from most to least selective, the first that applies wins
	for _, try := range []func(*RegexNode) bool{
		f.tryLeadingAnchor,
		f.tryTrailingAnchor,
		f.tryLeadingString,
		f.tryRightToLeftFirstChar,
		f.tryLeadingStringIgnoreCase,
		f.tryLeadingStrings,
		f.tryFixedDistance,
	} {
		if try(root) {
			break
		}
	}
	return f
}

func (f *FindOptimizations) tryLeadingAnchor(*RegexNode) bool {
	f.FindMode = getFindMode(f.rightToLeft, f.LeadingAnchor)
	return f.FindMode != NoSearch
}

// a trailing \z or \Z on a fixed length pattern pins the only place a match can start
func (f *FindOptimizations) tryTrailingAnchor(root *RegexNode) bool {
	if f.rightToLeft {
		return false
	}
	f.TrailingAnchor = findLeadingOrTrailingAnchor(root, false)
	if f.TrailingAnchor != NtEnd && f.TrailingAnchor != NtEndZ {
		return false
	}
	f.MaxPossibleLength = root.computeMaxLength()
	if f.MinRequiredLength != f.MaxPossibleLength {
		return false
	}
	f.FindMode = TrailingAnchor_FixedLength_LeftToRight_EndZ
	if f.TrailingAnchor == NtEnd {
		f.FindMode = TrailingAnchor_FixedLength_LeftToRight_End
	}
	return true
}

func (f *FindOptimizations) tryLeadingString(root *RegexNode) bool {
	prefix := findPrefix(root)
	if len([]rune(prefix)) < 2 {
		return false
	}
	f.setLeadingPrefix(prefix)
	f.FindMode = LeadingString_LeftToRight
	if f.rightToLeft {
		f.FindMode = LeadingString_RightToLeft
	}
	return true
}

// right to left patterns only get their first char looked at. This always
// ends the search for a strategy, possibly with NoSearch.
func (f *FindOptimizations) tryRightToLeftFirstChar(root *RegexNode) bool {
	if !f.rightToLeft {
		return false
	}
	set := findFirstCharClass(root)
	if set == nil {
		return true
	}
	if chars := set.GetSetChars(5); len(chars) == 1 {
		f.FixedDistanceLiteral.C = chars[0]
		f.FindMode = LeadingChar_RightToLeft
	} else {
		f.FixedDistanceSets = []FixedDistanceSet{{Chars: chars, Set: set}}
		f.FixedDistanceSets[0].prepare()
		f.FindMode = LeadingSet_RightToLeft
	}
	return true
}

func (f *FindOptimizations) tryLeadingStringIgnoreCase(root *RegexNode) bool {
	prefix := findPrefixOrdinalCaseInsensitive(root)
	if len(prefix) < 2 {
		return false
	}
	f.setLeadingPrefix(prefix)
	f.FindMode = LeadingString_OrdinalIgnoreCase_LeftToRight
	return true
}

// several possible leading strings go through one multi-string search
func (f *FindOptimizations) tryLeadingStrings(root *RegexNode) bool {
	if prefixes := findPrefixes(root, true); len(prefixes) > 1 {
		f.setLeadingPrefixes(prefixes, true)
		f.FindMode = LeadingStrings_OrdinalIgnoreCase_LeftToRight
		return true
	}
	if prefixes := findPrefixes(root, false); len(prefixes) > 1 {
		f.setLeadingPrefixes(prefixes, false)
		f.FindMode = LeadingStrings_LeftToRight
		return true
	}
	return false
}

func (f *FindOptimizations) tryFixedDistance(root *RegexNode) bool {
	sets := findFixedDistanceSets(root, true)
	if best := findFixedDistanceString(sets); best != nil {
		f.FixedDistanceLiteral = *best
		f.FindMode = FixedDistanceString_LeftToRight
		return true
	}

	afterLoop := findLiteralFollowingLeadingLoop(root)
	if len(sets) > 0 {
		slices.SortFunc(sets, compareFixedDistanceSetsByQuality)
		best := sets[0]
		// a literal after the loop beats a negated set or one we can't enumerate
		if afterLoop == nil || (len(best.Chars) > 0 && !best.Negated) {
			f.useFixedDistanceSets(sets)
			return true
		}
	}

	if afterLoop != nil {
		f.LiteralAfterLoop = afterLoop
		f.FindMode = LiteralAfterLoop_LeftToRight
		return true
	}
	return false
}

func (f *FindOptimizations) useFixedDistanceSets(sets []FixedDistanceSet) {
	if len(sets) == 1 && len(sets[0].Chars) == 1 && !sets[0].Negated {
		f.FixedDistanceLiteral = FixedDistanceLiteral{C: sets[0].Chars[0], Distance: sets[0].Distance}
		f.FindMode = FixedDistanceChar_LeftToRight
		return
	}

	if len(sets) > maxSetsToUse {
		sets = sets[:maxSetsToUse]
	}
	for i := range sets {
		sets[i].prepare()
	}
	f.FixedDistanceSets = sets
	if len(sets) == 1 && sets[0].Distance == 0 {
		f.FindMode = LeadingSet_LeftToRight
	} else {
		f.FindMode = FixedDistanceSets_LeftToRight
	}
}

func (f *FindOptimizations) setLeadingPrefix(prefix string) {
	f.LeadingPrefix = prefix
	f.leadingPrefix = []rune(prefix)
	if len(f.leadingPrefix) > MaxPrefixSize {
		return
	}
	f.bmPrefix = newBoyerMoore(f.leadingPrefix, f.rightToLeft)
}

func (f *FindOptimizations) setLeadingPrefixes(prefixes []string, ignoreCase bool) {
	f.LeadingPrefixes = prefixes
	vals := make([][]rune, len(prefixes))
	for i, p := range prefixes {
		vals[i] = []rune(p)
	}
	f.leadingStrings = helpers.NewMultiStringSearcher(vals, ignoreCase)
}

var leadingAnchorModes = map[NodeType][2]FindNextStartingPositionMode{
	NtBeginning: {LeadingAnchor_LeftToRight_Beginning, LeadingAnchor_RightToLeft_Beginning},
	NtStart:     {LeadingAnchor_LeftToRight_Start, LeadingAnchor_RightToLeft_Start},
	NtEndZ:      {LeadingAnchor_LeftToRight_EndZ, LeadingAnchor_RightToLeft_EndZ},
	NtEnd:       {LeadingAnchor_LeftToRight_End, LeadingAnchor_RightToLeft_End},
}

// getFindMode maps a leading anchor to its search mode, NoSearch for anything else
func getFindMode(rtl bool, t NodeType) FindNextStartingPositionMode {
	modes, ok := leadingAnchorModes[t]
	if !ok {
		return NoSearch
	}
	if rtl {
		return modes[1]
	}
	return modes[0]
}

// findFixedDistanceString finds the longest run (at least two) of single-char sets
// at consecutive distances, and returns it as a string
func findFixedDistanceString(fixedDistanceSets []FixedDistanceSet) *FixedDistanceLiteral {
	if len(fixedDistanceSets) < 2 {
		return nil
	}

	sets := slices.Clone(fixedDistanceSets)
	slices.SortFunc(sets, func(s1, s2 FixedDistanceSet) int {
		return cmp.Compare(s1.Distance, s2.Distance)
	})

	var best *FixedDistanceLiteral
	bestLen := 1
	buf := &bytes.Buffer{}
	start := -1
	for i := 0; i <= len(sets); i++ {
		var chars []rune
		usable := false
		if i < len(sets) {
			chars = sets[i].Chars
			usable = len(chars) == 1 && !sets[i].Negated
		}

		if !usable || (i > 0 && sets[i].Distance != sets[i-1].Distance+1) {
			if start != -1 && i-start > bestLen {
				bestLen = i - start
				best = &FixedDistanceLiteral{
					S:        buf.String(),
					Distance: sets[start].Distance,
				}
			}
			buf.Reset()
			start = -1
			if !usable {
				continue
			}
		}

		if start == -1 {
			start = i
		}
		buf.WriteRune(chars[0])
	}

	return best
}

// Dump describes the chosen search for debugging
func (f *FindOptimizations) Dump() string {
	buf := &bytes.Buffer{}
	buf.WriteString("Search: ")
	buf.WriteString(f.FindMode.String())
	switch f.FindMode {
	case LeadingString_LeftToRight, LeadingString_RightToLeft, LeadingString_OrdinalIgnoreCase_LeftToRight:
		buf.WriteString(" \"" + f.LeadingPrefix + "\"")
	case LeadingStrings_LeftToRight, LeadingStrings_OrdinalIgnoreCase_LeftToRight:
		for _, p := range f.LeadingPrefixes {
			buf.WriteString(" \"" + p + "\"")
		}
	case FixedDistanceChar_LeftToRight, LeadingChar_RightToLeft:
		buf.WriteString(" " + CharDescription(f.FixedDistanceLiteral.C))
	case FixedDistanceString_LeftToRight:
		buf.WriteString(" \"" + f.FixedDistanceLiteral.S + "\"")
	case LeadingSet_LeftToRight, LeadingSet_RightToLeft, FixedDistanceSets_LeftToRight:
		for _, s := range f.FixedDistanceSets {
			buf.WriteString(" " + s.Set.String())
		}
	}
	buf.WriteString("\n")
	return buf.String()
}
