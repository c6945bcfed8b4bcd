package syntax

import (
	"bytes"
	"errors"
)

// ReplacerData is a parsed replacement pattern: literal runs and group
// references in order.
type ReplacerData struct {
	Rep     string
	Strings []string
	// Rules holds an index into Strings for a literal (>= 0), or for a group
	// reference -replaceSpecials-1-slot, so whole-string and portion
	// specials land at -1..-4
	Rules []int
}

const (
	replaceSpecials     = 4
	replaceLeftPortion  = -1
	replaceRightPortion = -2
	replaceLastGroup    = -3
	replaceWholeString  = -4
)

// Special rule values a Rules entry can hold besides literal indexes and group slots
const (
	ReplaceLeftPortion  = -replaceSpecials - 1 - replaceLeftPortion
	ReplaceRightPortion = -replaceSpecials - 1 - replaceRightPortion
	ReplaceLastGroup    = -replaceSpecials - 1 - replaceLastGroup
	ReplaceWholeString  = -replaceSpecials - 1 - replaceWholeString
)

// ErrReplacementError is a general error during parsing the replacement text
var ErrReplacementError = errors.New("replacement pattern error")

// NewReplacerData will populate a reusable replacer data struct based on the given replacement string
// and the capture group data from a regexp
func NewReplacerData(rep string, caps map[int]int, capsize int, capnames map[string]int, op RegexOptions) (*ReplacerData, error) {
	p := parser{
		options:  op,
		caps:     caps,
		capsize:  capsize,
		capnames: capnames,
	}
	p.setPattern(rep)
	concat, err := p.scanReplacement()
	if err != nil {
		return nil, err
	}

	if concat.T != NtConcatenate {
		return nil, ErrReplacementError
	}

	sb := &bytes.Buffer{}
	var (
		strs  []string
		rules []int
	)

	for _, child := range concat.Children {
		switch child.T {
		case NtMulti:
			sb.WriteString(string(child.Str))

		case NtOne:
			sb.WriteRune(child.Ch)

		case NtRef:
			if sb.Len() > 0 {
				rules = append(rules, len(strs))
				strs = append(strs, sb.String())
				sb.Reset()
			}
			slot := child.M

			if len(caps) > 0 && slot >= 0 {
				slot = caps[slot]
			}

			rules = append(rules, -replaceSpecials-1-slot)

		default:
			return nil, ErrReplacementError
		}
	}

	if sb.Len() > 0 {
		rules = append(rules, len(strs))
		strs = append(strs, sb.String())
	}

	return &ReplacerData{
		Rep:     rep,
		Strings: strs,
		Rules:   rules,
	}, nil
}

// GroupSlot returns the capture slot a rule refers to, if it is a group reference
func GroupSlot(rule int) (int, bool) {
	if rule < -replaceSpecials {
		return -replaceSpecials - 1 - rule, true
	}
	return 0, false
}
