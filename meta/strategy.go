package meta

import "strings"

// Strategy selects the interpreter an Engine runs.
type Strategy int

const (
	// UseThompson runs the parallel-state simulator. All rules are live at
	// once and the longest token wins; ties go to the rule whose accept
	// comes first in the program.
	UseThompson Strategy = iota

	// UseBacktrack runs the iterative backtracker. Rules are tried in
	// address order and the first token found wins.
	UseBacktrack

	// UseRecursive runs the recursive backtracker. It gives the same
	// answers as UseBacktrack and exists as a reference.
	UseRecursive
)

var strategyNames = [...]string{
	UseThompson:  "thompson",
	UseBacktrack: "backtrack",
	UseRecursive: "recursive",
}

// String returns the name accepted by ParseStrategy.
func (s Strategy) String() string {
	if s.valid() {
		return strategyNames[s]
	}
	return "Unknown"
}

func (s Strategy) valid() bool {
	return s >= UseThompson && int(s) < len(strategyNames)
}

// Longest reports whether the strategy yields longest-match tokens.
func (s Strategy) Longest() bool {
	return s == UseThompson
}

// ParseStrategy maps a strategy name to its Strategy. Matching is case
// insensitive.
func ParseStrategy(name string) (Strategy, error) {
	for s, n := range strategyNames {
		if strings.EqualFold(name, n) {
			return Strategy(s), nil
		}
	}
	return 0, &ConfigError{
		Field:   "Strategy",
		Message: "unknown strategy " + name + " (want thompson, backtrack or recursive)",
	}
}
