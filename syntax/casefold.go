package syntax

import (
	"strings"
	"sync/atomic"
	"unicode"
)

// CaseFolder supplies the characters that compare equal to a character when
// ignoring case. The parser uses it to turn case-insensitive literals into sets.
type CaseFolder interface {
	// Equivalences returns every character equal to ch ignoring case, ch included.
	Equivalences(ch rune) []rune
}

// invariantFolder follows the simple case folding orbits of the unicode tables
type invariantFolder struct{}

func (invariantFolder) Equivalences(ch rune) []rune {
	ret := []rune{ch}
	for f := unicode.SimpleFold(ch); f != ch; f = unicode.SimpleFold(f) {
		ret = append(ret, f)
	}
	return ret
}

// turkishFolder maps dotted and dotless i the way Turkish and Azeri do:
// i <-> U+0130 and I <-> U+0131.
type turkishFolder struct{}

func (turkishFolder) Equivalences(ch rune) []rune {
	switch ch {
	case 'i', 'İ':
		return []rune{'i', 'İ'}
	case 'I', 'ı':
		return []rune{'I', 'ı'}
	}
	up := unicode.TurkishCase.ToUpper(ch)
	low := unicode.TurkishCase.ToLower(ch)
	ret := []rune{ch}
	for f := unicode.SimpleFold(ch); f != ch; f = unicode.SimpleFold(f) {
		if f == 'i' || f == 'I' || f == 'İ' || f == 'ı' {
			continue
		}
		ret = append(ret, f)
	}
	if up != ch && !containsRune(ret, up) {
		ret = append(ret, up)
	}
	if low != ch && !containsRune(ret, low) {
		ret = append(ret, low)
	}
	return ret
}

func containsRune(rs []rune, r rune) bool {
	for _, c := range rs {
		if c == r {
			return true
		}
	}
	return false
}

var currentCulture atomic.Value

func init() {
	currentCulture.Store(CaseFolder(invariantFolder{}))
}

// InvariantCulture is the culture-independent case folder
func InvariantCulture() CaseFolder {
	return invariantFolder{}
}

// SetCulture changes the culture used for case-insensitive patterns that don't
// specify CultureInvariant. Names starting with "tr" or "az" select the Turkish
// rules, anything else selects the invariant rules. Compiled patterns are not affected.
func SetCulture(name string) {
	currentCulture.Store(cultureFromName(name))
}

// CurrentCulture returns the folder new patterns will use
func CurrentCulture() CaseFolder {
	return currentCulture.Load().(CaseFolder)
}

func cultureFromName(name string) CaseFolder {
	lang := strings.ToLower(name)
	if i := strings.IndexAny(lang, "-_"); i >= 0 {
		lang = lang[:i]
	}
	switch lang {
	case "tr", "az":
		return turkishFolder{}
	}
	return invariantFolder{}
}

// participatesInCaseConversion reports whether ch has any other case equivalent
func participatesInCaseConversion(ch rune) bool {
	return unicode.SimpleFold(ch) != ch
}

func anyParticipatesInCaseConversion(s string) bool {
	for _, ch := range s {
		if participatesInCaseConversion(ch) {
			return true
		}
	}
	return false
}
