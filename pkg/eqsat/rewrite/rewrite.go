// Package rewrite drives equality saturation: repeatedly matching a set of
// rules against an e-graph and applying the matches found, until either no
// rule fires (saturation) or a budget is exhausted.
//
// Per spec, matching and application are split into two passes per
// iteration: every rule is matched against a read-only snapshot of the
// e-graph's current state, and only once every match has been collected are
// the corresponding new nodes added and merges applied.  This "snapshot
// match, then write" split means a rule added early in an iteration never
// observes a class created by a rule applied later in the same iteration —
// removing any dependence on rule-application order within one pass.
package rewrite

import (
	"fmt"
	"time"

	"github.com/trailofbits/circuitous-go/pkg/eqsat/egraph"
	"github.com/trailofbits/circuitous-go/pkg/eqsat/match"
	"github.com/trailofbits/circuitous-go/pkg/eqsat/pattern"
)

// Budget bounds one call to Saturate.  A zero value in any field means
// "unbounded" for that dimension.
type Budget struct {
	MaxIterations int
	MaxNodes      int
	MaxTime       time.Duration
}

// ErrBudgetExhausted is returned by Saturate when a budget limit was hit
// before the rule set reached a fixed point.  It is not a failure: callers
// may inspect Reason and decide whether the partial result is usable.
type ErrBudgetExhausted struct {
	Reason     string
	Iterations int
}

func (e *ErrBudgetExhausted) Error() string {
	return fmt.Sprintf("budget exhausted after %d iteration(s): %s", e.Iterations, e.Reason)
}

// Applier builds the right-hand side of a rule into the e-graph, given the
// bindings a match produced, and returns the class its result belongs to.
// This is necessarily domain-specific (the e-graph's K/D type parameters
// vary per caller), so the driver accepts it as a function rather than
// trying to interpret pattern.Pattern generically.
type Applier func(rhs pattern.Pattern, bindings map[string]egraph.Id) (egraph.Id, error)

// Graph is the view of an e-graph the driver needs beyond what package
// match already requires: the ability to merge two classes and rebuild
// congruence afterward.
type Graph interface {
	match.Graph
	Find(id egraph.Id) egraph.Id
	Merge(a, b egraph.Id) egraph.Id
	Rebuild()
	NumNodes() int
}

// Rule pairs a left-hand-side pattern to match with the pattern used to
// build its right-hand side.  The match.Rule for LHS is compiled afresh in
// every iteration.
type Rule struct {
	Name string
	LHS  pattern.Pattern
	RHS  pattern.Pattern
}

// Compile converts a parsed pattern.Rule into a driver Rule, copying its
// name and both patterns.
func Compile(r pattern.Rule) Rule {
	return Rule{Name: r.Name, LHS: r.LHS, RHS: r.RHS}
}

// Stats reports what one Saturate call did.
type Stats struct {
	Iterations int
	Matches    int
	Merges     int
}

// Saturate applies rules, in declaration order within each iteration, until
// a full pass produces no new merges (saturation) or budget is exhausted.
// On budget exhaustion it returns the *ErrBudgetExhausted alongside the
// Stats accumulated so far; callers that don't care about the distinction
// can check errors.As.
func Saturate(g Graph, rules []Rule, apply Applier, budget Budget) (Stats, error) {
	var stats Stats

	var deadline time.Time
	if budget.MaxTime > 0 {
		deadline = time.Now().Add(budget.MaxTime)
	}

	for {
		if budget.MaxIterations > 0 && stats.Iterations >= budget.MaxIterations {
			return stats, &ErrBudgetExhausted{Reason: "max iterations reached", Iterations: stats.Iterations}
		}

		if !deadline.IsZero() && time.Now().After(deadline) {
			return stats, &ErrBudgetExhausted{Reason: "max time reached", Iterations: stats.Iterations}
		}

		if budget.MaxNodes > 0 && g.NumNodes() >= budget.MaxNodes {
			return stats, &ErrBudgetExhausted{Reason: "max nodes reached", Iterations: stats.Iterations}
		}

		applied, err := runIteration(g, rules, apply)
		if err != nil {
			return stats, err
		}

		stats.Iterations++
		stats.Matches += applied.matches
		stats.Merges += applied.merges

		if applied.merges == 0 {
			return stats, nil
		}
	}
}

type iterationResult struct {
	matches int
	merges  int
}

// pendingMatch freezes a match.Result together with the rule it came from,
// so every rule's matches against the pre-iteration snapshot can be
// collected before any of them is applied.
type pendingMatch struct {
	rule Rule
	res  match.Result
}

func runIteration(g Graph, rules []Rule, apply Applier) (iterationResult, error) {
	var pending []pendingMatch

	for _, r := range rules {
		mr := match.CompileRule(r.Name, r.LHS)

		results, err := match.All(g, mr)
		if err != nil {
			return iterationResult{}, fmt.Errorf("rule %q: %w", r.Name, err)
		}

		for _, res := range results {
			pending = append(pending, pendingMatch{rule: r, res: res})
		}
	}

	result := iterationResult{matches: len(pending)}

	for _, pm := range pending {
		newID, err := apply(pm.rule.RHS, pm.res.Bindings)
		if err != nil {
			return iterationResult{}, fmt.Errorf("rule %q: applying result: %w", pm.rule.Name, err)
		}

		if g.Find(pm.res.Root) != g.Find(newID) {
			g.Merge(pm.res.Root, newID)
			result.merges++
		}
	}

	if result.merges > 0 {
		g.Rebuild()
	}

	return result, nil
}
