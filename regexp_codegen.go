package regexp2

import (
	"sync"
)

// RuntimeEngine is a pre-built matcher for one pattern and option set, for
// example one generated ahead of time. It replaces the interpreter: the
// Runner's exported fields and methods are its view of the match state.
type RuntimeEngine interface {
	// Caps maps group numbers to capture slots; nil when they coincide
	Caps() map[int]int
	CapNames() map[string]int
	// CapsList is the group names by slot
	CapsList() []string
	CapSize() int
	FindFirstChar(r *Runner) bool
	Execute(r *Runner) error
}

type engineKey struct {
	pattern string
	opt     RegexOptions
}

// engineKey -> RuntimeEngine
var engines sync.Map

// RegisterEngine makes Compile(pattern, opt) return a Regexp driven by engine
// instead of the interpreter. A later registration for the same key wins.
func RegisterEngine(pattern string, opt RegexOptions, engine RuntimeEngine) {
	engines.Store(engineKey{pattern, opt}, engine)
}

// getEngineRegexp returns a new Regexp for a registered engine, or nil. Each
// call builds its own value so MatchTimeout is never shared.
func getEngineRegexp(pattern string, opt RegexOptions) *Regexp {
	v, ok := engines.Load(engineKey{pattern, opt})
	if !ok {
		return nil
	}
	e := v.(RuntimeEngine)
	return &Regexp{
		pattern:       pattern,
		options:       opt,
		caps:          e.Caps(),
		capnames:      e.CapNames(),
		capslist:      e.CapsList(),
		capsize:       e.CapSize(),
		MatchTimeout:  DefaultMatchTimeout,
		findFirstChar: e.FindFirstChar,
		execute:       e.Execute,
	}
}
