package regexp2

import (
	"slices"

	"github.com/ModxVoldHunter/CSharp-SDK-sub006/runecacher"
)

// Split breaks input around each match of the pattern. At most count parts
// come back and the final part holds whatever was not split; -1 splits the
// whole input, 0 yields nil and 1 yields the input unchanged.
//
// Captured groups that took part in a match are emitted between the parts,
// so "(-)" splits "a-b" into ["a", "-", "b"] where "-" gives ["a", "b"].
// A right-to-left pattern splits from the end but the parts stay in input order.
func (re *Regexp) Split(input string, count int) ([]string, error) {
	switch {
	case count < -1:
		return nil, ErrCountTooSmall
	case count == 0:
		return nil, nil
	case count == 1:
		return []string{input}, nil
	}

	rc := runecacher.NewFromString(input)
	defer rc.Release()
	txt := rc.Runes()

	m, err := re.run(false, -1, -1, txt)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return []string{input}, nil
	}

	rtl := re.RightToLeft()
	// lo..hi is the text not yet handed out
	lo, hi := 0, len(txt)
	var parts []string
	for splits := count - 1; m != nil; m, err = re.FindNextMatch(m) {
		if rtl {
			parts = append(parts, string(txt[m.Index+m.Length:hi]))
			hi = m.Index
		} else {
			parts = append(parts, string(txt[lo:m.Index]))
			lo = m.Index + m.Length
		}
		parts = appendGroups(parts, m)

		if splits--; splits == 0 {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	parts = append(parts, string(txt[lo:hi]))

	if rtl {
		slices.Reverse(parts)
	}
	return parts, nil
}

// appendGroups adds the text of each participating group except group 0
func appendGroups(parts []string, m *Match) []string {
	for i := 1; i < len(m.matchcount); i++ {
		if m.isMatched(i) {
			parts = append(parts, m.GroupByNumber(m.groupNumber(i)).String())
		}
	}
	return parts
}
