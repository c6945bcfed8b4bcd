package helpers

import "unicode"

// IsWordChar is the \w test used by \b and \B: letters, non-spacing marks,
// decimal digits and connector punctuation, plus the zero-width joiners
// (UTS#18 RL1.4).
func IsWordChar(r rune) bool {
	if r < 0x80 {
		return 'a' <= r && r <= 'z' || 'A' <= r && r <= 'Z' || '0' <= r && r <= '9' || r == '_'
	}
	return unicode.In(r, unicode.L, unicode.Mn, unicode.Nd, unicode.Pc) || r == '\u200D' || r == '\u200C'
}
