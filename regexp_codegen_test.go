package regexp2

import (
	"testing"
	"time"
)

type emptyEngine struct {
	findFirstChar func(r *Runner) bool
	execute       func(r *Runner) error
}

func (t *emptyEngine) Caps() map[int]int        { return nil }
func (t *emptyEngine) CapNames() map[string]int { return nil }
func (t *emptyEngine) CapsList() []string       { return nil }
func (t *emptyEngine) CapSize() int             { return 1 }
func (t *emptyEngine) FindFirstChar(r *Runner) bool {
	return t.findFirstChar(r)
}
func (t *emptyEngine) Execute(r *Runner) error {
	return t.execute(r)
}

// recordingEngine never matches and notes what the runner called
func recordingEngine(didFindFirst, didExecute *bool) *emptyEngine {
	return &emptyEngine{
		findFirstChar: func(r *Runner) bool {
			*didFindFirst = true
			return true
		},
		execute: func(r *Runner) error {
			*didExecute = true
			return nil
		},
	}
}

func TestRegisterEngine(t *testing.T) {
	tests := []struct {
		name                string
		pattern             string
		registerOpt, useOpt RegexOptions
		wantEngine          bool
	}{
		// the engine never matches, the interpreter does
		{"cache hit", "This is a regexp", RE2, RE2, true},
		{"options differ", "This is a regexp", Debug, 0, false},
		{"pattern differs", "This is another regexp", RE2 | Multiline, RE2 | IgnoreCase, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var didFindFirst, didExecute bool
			RegisterEngine(tc.pattern, tc.registerOpt, recordingEngine(&didFindFirst, &didExecute))

			re := MustCompile(tc.pattern, tc.useOpt)
			val, err := re.MatchString(tc.pattern)
			if err != nil {
				t.Fatal("Unexpected error", err)
			}

			if want, got := tc.wantEngine, didFindFirst; want != got {
				t.Fatalf("find first char called: Wanted '%v'\nGot '%v'", want, got)
			}
			if want, got := tc.wantEngine, didExecute; want != got {
				t.Fatalf("execute called: Wanted '%v'\nGot '%v'", want, got)
			}
			if want, got := !tc.wantEngine, val; want != got {
				t.Fatalf("match: Wanted '%v'\nGot '%v'", want, got)
			}
		})
	}
}

func TestRegisterEngine_TimeoutNotShared(t *testing.T) {
	var didFindFirst, didExecute bool
	RegisterEngine("shared timeout", None, recordingEngine(&didFindFirst, &didExecute))

	a := MustCompile("shared timeout", None)
	a.MatchTimeout = time.Second
	b := MustCompile("shared timeout", None)

	if want, got := DefaultMatchTimeout, b.MatchTimeout; want != got {
		t.Fatalf("Wanted '%v'\nGot '%v'", want, got)
	}
}
