package regexp2

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrMatchTimeout is matched by errors.Is for every timeout error
	ErrMatchTimeout = errors.New("match timeout")
	// ErrStartOutOfRange is returned when a starting position lies outside the input
	ErrStartOutOfRange = errors.New("start index out of range")
	// ErrCountTooSmall is returned for a replace or split count below -1
	ErrCountTooSmall = errors.New("count too small")
)

// MatchTimeoutError is returned when a match runs past the Regexp's MatchTimeout
type MatchTimeoutError struct {
	Pattern string
	Input   string
	Timeout time.Duration
}

func (e *MatchTimeoutError) Error() string {
	return fmt.Sprintf("match timeout after %v on input `%v`", e.Timeout, snippet(e.Input))
}

// Is lets errors.Is(err, ErrMatchTimeout) match any timeout
func (e *MatchTimeoutError) Is(target error) bool {
	return target == ErrMatchTimeout
}

// snippet keeps timeout messages readable for long inputs
func snippet(s string) string {
	const max = 64
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
