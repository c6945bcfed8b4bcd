package syntax

import (
	"fmt"
)

// Error is the single error type returned for a pattern that fails to parse
type Error struct {
	Code ErrorCode
	Expr string
	// Offset is the rune index in Expr where parsing stopped
	Offset int
	Args   []interface{}
}

func (e *Error) Error() string {
	if len(e.Args) == 0 {
		return "error parsing regexp: " + e.Code.String() + " in `" + e.Expr + "`"
	}
	return "error parsing regexp: " + fmt.Sprintf(e.Code.String(), e.Args...) + " in `" + e.Expr + "`"
}

// Is lets errors.Is match a parse error by its code alone:
//
//	errors.Is(err, &syntax.Error{Code: syntax.ErrMissingParen})
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// ErrorCode describes a failure to parse a regular expression
type ErrorCode string

const (
	// internal issue
	ErrInternalError ErrorCode = "regexp/syntax: internal error"
	// Parser errors
	ErrUnterminatedComment        ErrorCode = "unterminated comment"
	ErrInvalidCharRange           ErrorCode = "invalid character class range"
	ErrInvalidRepeatSize          ErrorCode = "invalid repeat count"
	ErrInvalidUTF8                ErrorCode = "invalid UTF-8"
	ErrCaptureGroupOutOfRange     ErrorCode = "capture group number out of range"
	ErrUnexpectedParen            ErrorCode = "unexpected )"
	ErrMissingParen               ErrorCode = "missing closing )"
	ErrMissingBrace               ErrorCode = "missing closing }"
	ErrInvalidRepeatOp            ErrorCode = "invalid nested repetition operator"
	ErrMissingRepeatArgument      ErrorCode = "missing argument to repetition operator"
	ErrConditionalExpression      ErrorCode = "illegal conditional (?(...)) expression"
	ErrTooManyAlternates          ErrorCode = "too many | in (?()|)"
	ErrUnrecognizedGrouping       ErrorCode = "unrecognized grouping construct: (%v"
	ErrInvalidGroupName           ErrorCode = "invalid group name: group names must begin with a word character and have a matching terminator"
	ErrCapNumNotZero              ErrorCode = "capture number cannot be zero"
	ErrUndefinedBackRef           ErrorCode = "reference to undefined group number %v"
	ErrUndefinedNameRef           ErrorCode = "reference to undefined group name %v"
	ErrAlternationCantCapture     ErrorCode = "alternation conditions do not capture and cannot be named"
	ErrAlternationCantHaveComment ErrorCode = "alternation conditions cannot be comments"
	ErrMalformedReference         ErrorCode = "(?(%v) ) malformed"
	ErrUndefinedReference         ErrorCode = "(?(%v) ) reference to undefined group"
	ErrIllegalEndEscape           ErrorCode = "illegal \\ at end of pattern"
	ErrMalformedSlashP            ErrorCode = "malformed \\p{X} character escape"
	ErrIncompleteSlashP           ErrorCode = "incomplete \\p{X} character escape"
	ErrUnknownSlashP              ErrorCode = "unknown unicode category, script, or property '%v'"
	ErrUnrecognizedEscape         ErrorCode = "unrecognized escape sequence \\%v"
	ErrMissingControl             ErrorCode = "missing control character"
	ErrUnrecognizedControl        ErrorCode = "unrecognized control character"
	ErrTooFewHex                  ErrorCode = "insufficient hexadecimal digits"
	ErrInvalidHex                 ErrorCode = "hex values may not be larger than 0x10FFFF"
	ErrMalformedNameRef           ErrorCode = "malformed \\k<...> named back reference"
	ErrBadClassInCharRange        ErrorCode = "cannot create range with shorthand escape sequence \\%v"
	ErrUnterminatedBracket        ErrorCode = "unterminated [] set"
	ErrSubtractionMustBeLast      ErrorCode = "a subtraction must be the last element in a character class"
	ErrReversedCharRange          ErrorCode = "[%c-%c] range in reverse order"
	ErrInsufficientOpeningParens  ErrorCode = "too many )'s"
	ErrInsufficientClosingParens  ErrorCode = "not enough )'s"
	ErrReversedQuantifierRange    ErrorCode = "illegal {x,y} with x > y"
	ErrQuantifierAfterNothing     ErrorCode = "quantifier '%v' following nothing"
	ErrNestedQuantifier           ErrorCode = "nested quantifier '%v'"
	ErrNestingTooDeep             ErrorCode = "expression nesting too deep"
)

func (e ErrorCode) String() string {
	return string(e)
}

// getErr builds the error for the current parse position
func (p *parser) getErr(code ErrorCode, args ...interface{}) error {
	return &Error{Code: code, Expr: p.patternRaw, Offset: p.currentPos, Args: args}
}
