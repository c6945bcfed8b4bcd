package syntax

import (
	"github.com/ModxVoldHunter/CSharp-SDK-sub006/helpers"
)

// TryFindNextStartingPosition moves pos to the next position in text[beginning:end]
// where a match could start, and reports whether there is one. start is the
// position the scan began at (what \G matches). Left to right pos only moves
// forward and is left at end on failure; right to left it only moves backward
// and is left at beginning.
func (f *FindOptimizations) TryFindNextStartingPosition(text []rune, pos *int, beginning, start, end int) bool {
	if !f.rightToLeft {
		if *pos > end-f.MinRequiredLength {
			*pos = end
			return false
		}
		if f.LeadingAnchor == NtBol && !f.skipToNextLine(text, pos, beginning, end) {
			return false
		}
	} else if *pos-f.MinRequiredLength < beginning {
		*pos = beginning
		return false
	}

	p := *pos
	switch f.FindMode {
	case LeadingAnchor_LeftToRight_Beginning:
		if p > beginning {
			*pos = end
			return false
		}
		return true

	case LeadingAnchor_LeftToRight_Start:
		if p != start {
			*pos = end
			return false
		}
		return true

	case LeadingAnchor_LeftToRight_EndZ:
		if p < end-1 {
			*pos = end - 1
		}
		return true

	case LeadingAnchor_LeftToRight_End:
		if p < end {
			*pos = end
		}
		return true

	case LeadingAnchor_RightToLeft_Beginning:
		if p > beginning {
			*pos = beginning
		}
		return true

	case LeadingAnchor_RightToLeft_Start:
		if p != start {
			*pos = beginning
			return false
		}
		return true

	case LeadingAnchor_RightToLeft_EndZ:
		if p < end-1 || (p == end-1 && text[p] != '\n') {
			*pos = beginning
			return false
		}
		return true

	case LeadingAnchor_RightToLeft_End:
		if p < end {
			*pos = beginning
			return false
		}
		return true

	case TrailingAnchor_FixedLength_LeftToRight_End:
		if p < end-f.MinRequiredLength {
			*pos = end - f.MinRequiredLength
		}
		return true

	case TrailingAnchor_FixedLength_LeftToRight_EndZ:
		if p < end-f.MinRequiredLength-1 {
			*pos = end - f.MinRequiredLength - 1
		}
		return true

	case LeadingString_LeftToRight:
		var i int
		if f.bmPrefix != nil {
			i = f.bmPrefix.Scan(text, p, beginning, end)
			if i >= 0 {
				i -= p
			}
		} else {
			i = helpers.IndexOf(text[p:end], f.leadingPrefix)
		}
		return f.foundAt(pos, p, i, end)

	case LeadingString_RightToLeft:
		var i int
		if f.bmPrefix != nil {
			i = f.bmPrefix.Scan(text, p, beginning, end)
		} else if j := helpers.LastIndexOf(text[beginning:p], f.leadingPrefix); j >= 0 {
			i = beginning + j + len(f.leadingPrefix)
		} else {
			i = -1
		}
		if i < 0 {
			*pos = beginning
			return false
		}
		*pos = i
		return true

	case LeadingString_OrdinalIgnoreCase_LeftToRight:
		return f.foundAt(pos, p, helpers.IndexOfIgnoreCase(text[p:end], f.leadingPrefix), end)

	case LeadingStrings_LeftToRight, LeadingStrings_OrdinalIgnoreCase_LeftToRight:
		return f.foundAt(pos, p, f.leadingStrings.IndexOfAny(text[p:end]), end)

	case LeadingSet_LeftToRight:
		return f.foundAt(pos, p, indexOfSet(text[p:end], &f.FixedDistanceSets[0]), end)

	case LeadingSet_RightToLeft:
		if v := f.FixedDistanceSets[0].values; v != nil {
			if i := v.LastIndexOfAny(text[beginning:p]); i >= 0 {
				*pos = beginning + i + 1
				return true
			}
			*pos = beginning
			return false
		}
		set := f.FixedDistanceSets[0].Set
		for i := p - 1; i >= beginning; i-- {
			if set.CharIn(text[i]) {
				*pos = i + 1
				return true
			}
		}
		*pos = beginning
		return false

	case LeadingChar_RightToLeft:
		if i := helpers.LastIndexOfAny1(text[beginning:p], f.FixedDistanceLiteral.C); i >= 0 {
			*pos = beginning + i + 1
			return true
		}
		*pos = beginning
		return false

	case FixedDistanceChar_LeftToRight:
		d := f.FixedDistanceLiteral.Distance
		if p+d >= end {
			*pos = end
			return false
		}
		return f.foundAt(pos, p, helpers.IndexOfAny1(text[p+d:end], f.FixedDistanceLiteral.C), end)

	case FixedDistanceString_LeftToRight:
		d := f.FixedDistanceLiteral.Distance
		if p+d >= end {
			*pos = end
			return false
		}
		return f.foundAt(pos, p, helpers.IndexOf(text[p+d:end], []rune(f.FixedDistanceLiteral.S)), end)

	case FixedDistanceSets_LeftToRight:
		return f.findFixedDistanceSets(text, pos, end)

	case LiteralAfterLoop_LeftToRight:
		return f.findLiteralAfterLoop(text, pos, end)
	}

	// NoSearch
	return true
}

// skipToNextLine moves pos past the next '\n' unless it already sits at the start of a line
func (f *FindOptimizations) skipToNextLine(text []rune, pos *int, beginning, end int) bool {
	p := *pos
	if p <= beginning || text[p-1] == '\n' {
		return true
	}
	nl := helpers.IndexOfAny1(text[p:end], '\n')
	if nl < 0 {
		*pos = end
		return false
	}
	p += nl + 1
	if p > end-f.MinRequiredLength {
		*pos = end
		return false
	}
	*pos = p
	return true
}

// foundAt turns an index relative to from into the new position, or fails
func (f *FindOptimizations) foundAt(pos *int, from, i, end int) bool {
	if i < 0 {
		*pos = end
		return false
	}
	*pos = from + i
	return true
}

// indexOfSet finds the first char of in that belongs to s, using the cheapest scan s allows
func indexOfSet(in []rune, s *FixedDistanceSet) int {
	switch {
	case s.values != nil && s.Negated:
		return s.values.IndexOfAnyExcept(in)
	case s.values != nil:
		return s.values.IndexOfAny(in)
	case len(s.Chars) > 0 && s.Negated:
		return helpers.IndexOfAnyExcept(in, s.Chars)
	case len(s.Chars) == 1:
		return helpers.IndexOfAny1(in, s.Chars[0])
	case len(s.Chars) == 2:
		return helpers.IndexOfAny2(in, s.Chars[0], s.Chars[1])
	case len(s.Chars) == 3:
		return helpers.IndexOfAny3(in, s.Chars[0], s.Chars[1], s.Chars[2])
	case len(s.Chars) > 0:
		return helpers.IndexOfAny(in, s.Chars)
	case s.Range != nil && s.Negated:
		return helpers.IndexOfAnyExceptInRange(in, s.Range.First, s.Range.Last)
	case s.Range != nil:
		return helpers.IndexOfAnyInRange(in, s.Range.First, s.Range.Last)
	}
	set := s.Set
	return helpers.IndexFunc(in, set.CharIn)
}

func (f *FindOptimizations) findFixedDistanceSets(text []rune, pos *int, end int) bool {
	primary := &f.FixedDistanceSets[0]
	// the last position a match of the minimum length could start
	last := end - max(1, f.MinRequiredLength)

	for p := *pos; p <= last; {
		from := p + primary.Distance
		if from >= end {
			break
		}
		i := indexOfSet(text[from:end], primary)
		if i < 0 {
			break
		}
		candidate := from + i - primary.Distance
		if candidate > last {
			break
		}

		ok := true
		for j := 1; j < len(f.FixedDistanceSets); j++ {
			s := &f.FixedDistanceSets[j]
			at := candidate + s.Distance
			if at >= end || !s.Set.CharIn(text[at]) {
				ok = false
				break
			}
		}
		if ok {
			*pos = candidate
			return true
		}
		p = candidate + 1
	}

	*pos = end
	return false
}

func (f *FindOptimizations) findLiteralAfterLoop(text []rune, pos *int, end int) bool {
	lit := f.LiteralAfterLoop
	loop := lit.LoopNode
	startingPos := *pos

	for startingPos < end {
		slice := text[startingPos:end]
		var i int
		switch {
		case lit.String != "" && lit.StringIgnoreCase:
			i = helpers.IndexOfIgnoreCase(slice, []rune(lit.String))
		case lit.String != "":
			i = helpers.IndexOf(slice, []rune(lit.String))
		case len(lit.Chars) > 0:
			i = helpers.IndexOfAny(slice, lit.Chars)
		default:
			i = helpers.IndexOfAny1(slice, lit.Char)
		}
		if i < 0 {
			break
		}

		// walk back over everything the loop could have matched
		prev := i - 1
		for prev >= 0 && loop.Set.CharIn(slice[prev]) {
			prev--
		}

		if i-prev-1 < loop.M {
			// the loop can't overlap the literal, so resume just past it
			startingPos += i + 1
			continue
		}

		*pos = startingPos + prev + 1
		return true
	}

	*pos = end
	return false
}
