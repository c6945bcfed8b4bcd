package syntax

import (
	"bytes"
	"strings"
)

// Escape adds backslashes to any special characters in the input string
// so the result matches the input literally.
func Escape(input string) string {
	b := &bytes.Buffer{}
	for _, r := range input {
		escape(b, r, false)
	}
	return b.String()
}

// Unescape removes any backslashes from previously-escaped special characters
// in the input string, converting escape codes (\n, \x41, A, ...) to the
// characters they stand for.
func Unescape(input string) (string, error) {
	idx := strings.IndexRune(input, '\\')
	if idx == -1 {
		return input, nil
	}

	buf := bytes.NewBufferString(input[:idx])

	// everything after the first slash goes through the escape scanner
	p := parser{}
	p.setPattern(input[idx+1:])
	for {
		if p.rightMost() {
			return "", p.getErr(ErrIllegalEndEscape)
		}
		r, err := p.scanCharEscape()
		if err != nil {
			return "", err
		}
		buf.WriteRune(r)

		if p.rightMost() {
			return buf.String(), nil
		}

		for r = p.moveRightGetChar(); r != '\\'; r = p.moveRightGetChar() {
			buf.WriteRune(r)
			if p.rightMost() {
				return buf.String(), nil
			}
		}
	}
}
