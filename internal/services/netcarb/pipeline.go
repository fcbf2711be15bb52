// File: internal/services/netcarb/pipeline.go

// Package netcarb implements the deterministic net-carb directive:
// parsing the "netcarbs <total> <fiber> <polyols>" command and the
// net-carb formula. Pure functions, no state, no I/O.
package netcarb

import (
	"strconv"
	"strings"
)

// Directive holds the three numeric arguments of a recognized
// "netcarbs" command.
type Directive struct {
	Total   float64
	Fiber   float64
	Polyols float64
}

// ParseDirective recognizes exactly "netcarbs <total> <fiber> <polyols>":
// four whitespace-separated tokens, case-insensitive keyword, real-number
// arguments (sign and fraction allowed, no range check). Any other shape
// returns ok=false, which is a negative match, not an error: callers fall
// back to plain completion.
func ParseDirective(input string) (Directive, bool) {
	parts := strings.Fields(input)
	if len(parts) != 4 || !strings.EqualFold(parts[0], "netcarbs") {
		return Directive{}, false
	}

	total, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Directive{}, false
	}
	fiber, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Directive{}, false
	}
	polyols, err := strconv.ParseFloat(parts[3], 64)
	if err != nil {
		return Directive{}, false
	}

	return Directive{Total: total, Fiber: fiber, Polyols: polyols}, true
}

// NetCarbs computes total - fiber - 0.5*polyols. The result is not
// clamped: a negative value is preserved so data-entry mistakes stay
// visible instead of being masked.
func NetCarbs(total, fiber, polyols float64) float64 {
	return total - fiber - 0.5*polyols
}

// Compute applies NetCarbs to a parsed directive.
func (d Directive) Compute() float64 {
	return NetCarbs(d.Total, d.Fiber, d.Polyols)
}
