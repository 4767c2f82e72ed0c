package rewrite

import (
	"sort"
	"testing"
	"time"

	"github.com/trailofbits/circuitous-go/pkg/eqsat/egraph"
	"github.com/trailofbits/circuitous-go/pkg/eqsat/match"
	"github.com/trailofbits/circuitous-go/pkg/eqsat/pattern"
)

// testNode is a minimal concrete e-node used by the fake graph below: a tag,
// an optional constant, and children, exactly what match.Node requires.
type testNode struct {
	tag      string
	constant int64
	isConst  bool
	children []egraph.Id
}

func (n *testNode) OpTag() string               { return n.tag }
func (n *testNode) ConstantValue() (int64, bool) { return n.constant, n.isConst }
func (n *testNode) Children() []egraph.Id        { return n.children }

// testGraph is a tiny union-find-backed graph sufficient to exercise the
// saturation driver without depending on a concrete egraph.EGraph
// instantiation (which requires a domain Kind/Immediate pair the driver
// itself must stay agnostic to).
type testGraph struct {
	parent  map[egraph.Id]egraph.Id
	classes map[egraph.Id][]match.Node
	next    egraph.Id
}

func newTestGraph() *testGraph {
	return &testGraph{parent: map[egraph.Id]egraph.Id{}, classes: map[egraph.Id][]match.Node{}}
}

func (g *testGraph) fresh(n *testNode) egraph.Id {
	id := g.next
	g.next++
	g.parent[id] = id
	g.classes[id] = []match.Node{n}

	return id
}

func (g *testGraph) Find(id egraph.Id) egraph.Id {
	for g.parent[id] != id {
		id = g.parent[id]
	}

	return id
}

func (g *testGraph) ClassOf(child egraph.Id) egraph.Id { return g.Find(child) }

func (g *testGraph) ClassIds() []egraph.Id {
	seen := map[egraph.Id]bool{}

	var ids []egraph.Id

	for id := range g.classes {
		canon := g.Find(id)
		if !seen[canon] {
			seen[canon] = true

			ids = append(ids, canon)
		}
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

func (g *testGraph) Nodes(id egraph.Id) []match.Node { return g.classes[g.Find(id)] }

func (g *testGraph) Merge(a, b egraph.Id) egraph.Id {
	a, b = g.Find(a), g.Find(b)
	if a == b {
		return a
	}

	g.classes[a] = append(g.classes[a], g.classes[b]...)
	delete(g.classes, b)
	g.parent[b] = a

	return a
}

func (g *testGraph) Rebuild()          {}
func (g *testGraph) NumNodes() int     { return len(g.classes) }

// applyConst interprets RHS patterns consisting only of pattern.Constant or
// pattern.Place, which is all these tests need: it either returns the class
// bound to a place, or allocates a fresh constant node.
func applyConst(g *testGraph) Applier {
	return func(rhs pattern.Pattern, bindings map[string]egraph.Id) (egraph.Id, error) {
		switch p := rhs.(type) {
		case pattern.Place:
			return bindings[p.Name], nil
		case pattern.Constant:
			return g.fresh(&testNode{isConst: true, constant: p.Value}), nil
		default:
			return 0, &pattern.ErrUnimplementedPatternNode{Construct: "non-trivial RHS in test applier"}
		}
	}
}

func Test_Rewrite_01_AddZeroIdentityCollapses(t *testing.T) {
	g := newTestGraph()
	x := g.fresh(&testNode{isConst: true, constant: 5})
	zero := g.fresh(&testNode{isConst: true, constant: 0})
	sum := g.fresh(&testNode{tag: "add", children: []egraph.Id{x, zero}})

	rule := Rule{
		Name: "add-zero",
		LHS: pattern.List{Head: "add", Children: []pattern.Pattern{
			pattern.Place{Name: "x"}, pattern.Constant{Value: 0},
		}},
		RHS: pattern.Place{Name: "x"},
	}

	stats, err := Saturate(g, []Rule{rule}, applyConst(g), Budget{MaxIterations: 10})
	if err != nil {
		t.Fatal(err)
	}

	if stats.Merges != 1 {
		t.Fatalf("expected exactly one merge, got %d", stats.Merges)
	}

	if g.Find(sum) != g.Find(x) {
		t.Fatalf("expected (add x 0) to collapse into x's class")
	}
}

func Test_Rewrite_02_SaturationStopsWhenNoRuleFires(t *testing.T) {
	g := newTestGraph()
	g.fresh(&testNode{isConst: true, constant: 42})

	rule := Rule{
		Name: "add-zero",
		LHS: pattern.List{Head: "add", Children: []pattern.Pattern{
			pattern.Place{Name: "x"}, pattern.Constant{Value: 0},
		}},
		RHS: pattern.Place{Name: "x"},
	}

	stats, err := Saturate(g, []Rule{rule}, applyConst(g), Budget{MaxIterations: 10})
	if err != nil {
		t.Fatal(err)
	}

	if stats.Iterations != 1 || stats.Merges != 0 {
		t.Fatalf("expected one no-op iteration, got %+v", stats)
	}
}

func Test_Rewrite_03_BudgetExhaustedOnNodes(t *testing.T) {
	g := newTestGraph()
	a := g.fresh(&testNode{isConst: true, constant: 1})
	b := g.fresh(&testNode{isConst: true, constant: 0})
	g.fresh(&testNode{tag: "add", children: []egraph.Id{a, b}})

	rule := Rule{
		Name: "add-zero",
		LHS: pattern.List{Head: "add", Children: []pattern.Pattern{
			pattern.Place{Name: "x"}, pattern.Constant{Value: 0},
		}},
		RHS: pattern.Place{Name: "x"},
	}

	_, err := Saturate(g, []Rule{rule}, applyConst(g), Budget{MaxIterations: 0, MaxNodes: 1})

	var budgetErr *ErrBudgetExhausted
	if err == nil {
		t.Fatalf("expected budget exhaustion error")
	} else if e, ok := err.(*ErrBudgetExhausted); !ok {
		t.Fatalf("expected *ErrBudgetExhausted, got %T", err)
	} else {
		budgetErr = e
	}

	if budgetErr.Iterations != 0 {
		t.Fatalf("expected exhaustion before any iteration ran, got %+v", budgetErr)
	}
}

func Test_Rewrite_04_TimeBudgetHonoured(t *testing.T) {
	g := newTestGraph()
	g.fresh(&testNode{isConst: true, constant: 0})

	rule := Rule{Name: "noop", LHS: pattern.Constant{Value: 999}, RHS: pattern.Constant{Value: 999}}

	_, err := Saturate(g, []Rule{rule}, applyConst(g), Budget{MaxTime: time.Nanosecond})
	if err == nil {
		t.Fatalf("expected a time-budget error for a vanishingly small deadline")
	}
}
