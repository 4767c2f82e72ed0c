// Package match implements pattern matching of a single rewrite-rule
// pattern against an e-graph.  The observable contract, per spec, is: the
// matcher yields every consistent binding, in left-to-right child order,
// without mutating the graph.
//
// Rather than a generator/coroutine (the original's shape, per
// spec.md §9 "Coroutines in matching"), this is an internal iterator: the
// matcher accepts a sink callback invoked once per match, returning false
// to stop early.  Bindings are threaded as an immutable map
// (github.com/benbjohnson/immutable) because each child match along a
// List pattern branches the binding environment — exactly the persistent,
// cheaply-forked state shape benbjohnson/glee uses for its backtracking
// execution-state heap.
package match

import (
	"github.com/benbjohnson/immutable"

	"github.com/trailofbits/circuitous-go/pkg/eqsat/egraph"
	"github.com/trailofbits/circuitous-go/pkg/eqsat/pattern"
)

// Graph is the minimal view of an e-graph the matcher needs.  Matching
// must not require a particular e-node payload type beyond the ability to
// read its tag, its constant value (if any), and its children — so this
// is expressed as an interface rather than a direct dependency on
// egraph.EGraph's type parameters, letting callers from any domain
// (circuit or otherwise) reuse the matcher as-is.
type Graph interface {
	// ClassIds returns every live class id, in deterministic order.
	ClassIds() []egraph.Id
	// Nodes returns the e-nodes belonging to the class named by id.
	Nodes(id egraph.Id) []Node
	// ClassOf returns the canonical class id of one of a node's children.
	ClassOf(child egraph.Id) egraph.Id
}

// Node is the minimal view of an e-node the matcher needs.
type Node interface {
	// OpTag returns the operator tag as rendered in pattern text (matches
	// pattern.Op.Tag and pattern.List.Head).
	OpTag() string
	// ConstantValue returns the node's value if it is a literal constant.
	ConstantValue() (int64, bool)
	// Children returns the node's ordered child class ids.
	Children() []egraph.Id
}

// bindings maps place name to the class id it is bound to.
type bindings = *immutable.Map[string, egraph.Id]

func newBindings() bindings {
	return immutable.NewMap[string, egraph.Id](nil)
}

// Result is one complete match: the class the pattern matched at, and the
// place bindings discovered along the way.
type Result struct {
	Root     egraph.Id
	Bindings map[string]egraph.Id
}

// Sink is invoked once per match.  Returning false stops the search early.
type Sink func(Result) bool

// Rule pairs a name with a compiled Places list so callers don't need to
// recompute pattern.Places on every call to Match.
type Rule struct {
	Name  string
	LHS   pattern.Pattern
	Arity []string // pattern.Places(LHS), precomputed
}

// CompileRule precomputes the place list for a rule's left-hand side.
func CompileRule(name string, lhs pattern.Pattern) Rule {
	return Rule{Name: name, LHS: lhs, Arity: pattern.Places(lhs)}
}

// Match finds every match of rule.LHS against g, invoking sink for each
// complete match (every place bound).  It never mutates g.
func Match(g Graph, rule Rule, sink Sink) error {
	for _, classID := range g.ClassIds() {
		for _, n := range g.Nodes(classID) {
			keepGoing, err := matchNode(g, rule.LHS, classID, n, newBindings(), func(env bindings) (bool, error) {
				if env.Len() != len(rule.Arity) {
					return true, nil
				}

				return sink(toResult(classID, env)), nil
			})
			if err != nil {
				return err
			}

			if !keepGoing {
				return nil
			}
		}
	}

	return nil
}

func toResult(root egraph.Id, env bindings) Result {
	m := make(map[string]egraph.Id, env.Len())

	it := env.Iterator()
	for !it.Done() {
		k, v, _ := it.Next()
		m[k] = v
	}

	return Result{Root: root, Bindings: m}
}

// continuation is invoked with each binding environment a match step
// produces. It returns false to stop the search entirely (a sink asked
// to stop, or an ancestor already found what it needed), which every
// caller propagates outward without trying further candidates.
type continuation func(bindings) (bool, error)

// matchNode attempts to match p against the single e-node n, which lives
// in class "at", calling cont once for every way p can match n. A
// pattern.List child may itself match several distinct e-nodes in its
// class; matchNode (via matchChildren) tries each in turn rather than
// committing to the first one that succeeds, so a binding that only a
// later child can make consistent is never missed — spec §4.3's
// backtracking requirement.
func matchNode(g Graph, p pattern.Pattern, at egraph.Id, n Node, env bindings, cont continuation) (bool, error) {
	switch pat := p.(type) {
	case pattern.Constant:
		if v, ok := n.ConstantValue(); !ok || v != pat.Value {
			return true, nil
		}

		return cont(env)

	case pattern.Op:
		if n.OpTag() != pat.Tag || len(n.Children()) != 0 {
			return true, nil
		}

		return cont(env)

	case pattern.Place:
		if bound, ok := env.Get(pat.Name); ok {
			if bound != at {
				return true, nil
			}

			return cont(env)
		}

		return cont(env.Set(pat.Name, at))

	case pattern.List:
		return matchList(g, pat, at, n, env, cont)

	case pattern.Label:
		return false, &pattern.ErrUnimplementedPatternNode{Construct: "label " + pat.Name}

	default:
		return false, &pattern.ErrUnimplementedPatternNode{Construct: "unknown pattern node"}
	}
}

func matchList(g Graph, pat pattern.List, at egraph.Id, n Node, env bindings, cont continuation) (bool, error) {
	if n.OpTag() != pat.Head || len(n.Children()) != len(pat.Children) {
		return true, nil
	}

	return matchChildren(g, pat.Children, n.Children(), 0, env, cont)
}

// matchChildren matches pats[i:] against the e-graph children ids[i:]
// left to right.  For each child it tries every e-node in that child's
// class, recursing into the remaining children per candidate and only
// moving on once the whole remaining tail has been explored for that
// candidate — the backtracking spec §4.3 describes, rather than
// committing to the first e-node that matches.
func matchChildren(g Graph, pats []pattern.Pattern, ids []egraph.Id, i int, env bindings, cont continuation) (bool, error) {
	if i == len(pats) {
		return cont(env)
	}

	childClass := g.ClassOf(ids[i])

	for _, childNode := range g.Nodes(childClass) {
		keepGoing, err := matchNode(g, pats[i], childClass, childNode, env, func(next bindings) (bool, error) {
			return matchChildren(g, pats, ids, i+1, next, cont)
		})
		if err != nil {
			return false, err
		}

		if !keepGoing {
			return false, nil
		}
	}

	return true, nil
}

// All is a convenience wrapper around Match that collects every match
// eagerly.  Use Match directly with a Sink to stop early or avoid the
// allocation.
func All(g Graph, rule Rule) ([]Result, error) {
	var results []Result

	err := Match(g, rule, func(r Result) bool {
		results = append(results, r)
		return true
	})

	return results, err
}
