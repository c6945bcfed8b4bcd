package regexp2

import (
	"bytes"
	"slices"

	"github.com/ModxVoldHunter/CSharp-SDK-sub006/runecacher"
	"github.com/ModxVoldHunter/CSharp-SDK-sub006/syntax"
)

// MatchEvaluator computes the replacement text for a single match
type MatchEvaluator func(Match) string

// Replace substitutes replacement for each match in input. The replacement may
// reference groups ($1, ${name}) and the special $&, $`, $', $+ and $_ forms;
// $$ is a literal dollar.
//
// startAt is a byte offset where the search begins (scanning leftward from it
// for RightToLeft patterns) and count caps the number of substitutions.
// Pass -1 for either to use the whole input.
func (re *Regexp) Replace(input, replacement string, startAt, count int) (string, error) {
	data, err := re.replacerData(replacement)
	if err != nil {
		return "", err
	}
	return re.replace(input, startAt, count, false, func(buf *bytes.Buffer, m *Match) {
		for _, r := range data.Rules {
			writeRule(data, r, buf, m)
		}
	})
}

// ReplaceFunc is Replace with each substitution computed by evaluator
func (re *Regexp) ReplaceFunc(input string, evaluator MatchEvaluator, startAt, count int) (string, error) {
	return re.replace(input, startAt, count, true, func(buf *bytes.Buffer, m *Match) {
		buf.WriteString(evaluator(*m))
	})
}

// replacerData parses a replacement pattern, reusing the last one parsed
func (re *Regexp) replacerData(replacement string) (*syntax.ReplacerData, error) {
	if data := re.replacer.Load(); data != nil && data.Rep == replacement {
		return data, nil
	}

	data, err := syntax.NewReplacerData(replacement, re.caps, re.capsize, re.capnames, re.options)
	if err != nil {
		return nil, err
	}
	re.replacer.Store(data)
	return data, nil
}

// replace walks the matches the same way Split does, writing the untouched
// gaps and whatever emit produces for each match. Input with no match comes
// back as is.
func (re *Regexp) replace(input string, startAt, count int, keepsMatch bool, emit func(*bytes.Buffer, *Match)) (string, error) {
	if count < -1 {
		return "", ErrCountTooSmall
	}
	if count == 0 {
		return input, nil
	}

	start := -1
	if startAt >= 0 {
		if start = runeIndex(input, startAt); start < 0 {
			return "", ErrStartOutOfRange
		}
	}

	// an evaluator may keep the Match it was handed, so it must not see pooled runes
	var text []rune
	if keepsMatch {
		text = []rune(input)
	} else {
		rc := runecacher.NewFromString(input)
		defer rc.Release()
		text = rc.Runes()
	}

	m, err := re.run(false, -1, start, text)
	if err != nil {
		return "", err
	}
	if m == nil {
		return input, nil
	}

	if !re.RightToLeft() {
		buf := &bytes.Buffer{}
		prev := 0
		for ; m != nil; m, err = re.FindNextMatch(m) {
			buf.WriteString(string(text[prev:m.Index]))
			emit(buf, m)
			prev = m.Index + m.Length
			if count--; count == 0 {
				break
			}
		}
		if err != nil {
			return "", err
		}
		buf.WriteString(string(text[prev:]))
		return buf.String(), nil
	}

	// right to left produces pieces from the end backwards
	var pieces []string
	piece := &bytes.Buffer{}
	prev := len(text)
	for ; m != nil; m, err = re.FindNextMatch(m) {
		pieces = append(pieces, string(text[m.Index+m.Length:prev]))
		piece.Reset()
		emit(piece, m)
		pieces = append(pieces, piece.String())
		prev = m.Index
		if count--; count == 0 {
			break
		}
	}
	if err != nil {
		return "", err
	}
	pieces = append(pieces, string(text[:prev]))
	slices.Reverse(pieces)

	buf := &bytes.Buffer{}
	for _, p := range pieces {
		buf.WriteString(p)
	}
	return buf.String(), nil
}

// writeRule appends the text for one replacement rule: a literal string when
// r >= 0, otherwise a group or one of the special portions
func writeRule(data *syntax.ReplacerData, r int, buf *bytes.Buffer, m *Match) {
	if r >= 0 {
		buf.WriteString(data.Strings[r])
		return
	}
	if slot, ok := syntax.GroupSlot(r); ok {
		if slot < len(m.matchcount) {
			m.groupValueAppendToBuf(slot, buf)
		}
		return
	}

	switch r {
	case syntax.ReplaceLeftPortion:
		buf.WriteString(string(m.text[:m.Index]))
	case syntax.ReplaceRightPortion:
		buf.WriteString(string(m.text[m.Index+m.Length:]))
	case syntax.ReplaceLastGroup:
		m.groupValueAppendToBuf(len(m.matchcount)-1, buf)
	case syntax.ReplaceWholeString:
		buf.WriteString(string(m.text))
	}
}
