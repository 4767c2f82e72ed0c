package match

import (
	"sort"
	"testing"

	"github.com/trailofbits/circuitous-go/pkg/eqsat/egraph"
	"github.com/trailofbits/circuitous-go/pkg/eqsat/pattern"
)

// fakeNode and fakeGraph give the matcher a graph to run against without
// pulling in a concrete egraph.EGraph instantiation — any domain that can
// answer these three questions can be matched against.
type fakeNode struct {
	tag      string
	constant int64
	isConst  bool
	children []egraph.Id
}

func (n *fakeNode) OpTag() string                  { return n.tag }
func (n *fakeNode) ConstantValue() (int64, bool)    { return n.constant, n.isConst }
func (n *fakeNode) Children() []egraph.Id           { return n.children }

type fakeGraph struct {
	classes map[egraph.Id][]Node
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{classes: make(map[egraph.Id][]Node)}
}

func (g *fakeGraph) add(id egraph.Id, n *fakeNode) {
	g.classes[id] = append(g.classes[id], n)
}

func (g *fakeGraph) ClassIds() []egraph.Id {
	ids := make([]egraph.Id, 0, len(g.classes))
	for id := range g.classes {
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

func (g *fakeGraph) Nodes(id egraph.Id) []Node { return g.classes[id] }
func (g *fakeGraph) ClassOf(child egraph.Id) egraph.Id { return child }

func Test_Match_01_ConstantAgainstLiteral(t *testing.T) {
	g := newFakeGraph()
	g.add(0, &fakeNode{isConst: true, constant: 0})
	g.add(1, &fakeNode{isConst: true, constant: 7})

	rule := CompileRule("zero", pattern.Constant{Value: 0})

	results, err := All(g, rule)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 1 || results[0].Root != 0 {
		t.Fatalf("expected exactly one match at class 0, got %v", results)
	}
}

func Test_Match_02_AddXZeroMatchesShape(t *testing.T) {
	g := newFakeGraph()
	// class 2: (add 1 0)
	g.add(0, &fakeNode{isConst: true, constant: 0})
	g.add(1, &fakeNode{isConst: true, constant: 5})
	g.add(2, &fakeNode{tag: "add", children: []egraph.Id{1, 0}})

	lhs := pattern.List{
		Head: "add",
		Children: []pattern.Pattern{
			pattern.Place{Name: "x"},
			pattern.Constant{Value: 0},
		},
	}
	rule := CompileRule("add-zero", lhs)

	results, err := All(g, rule)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}

	if results[0].Bindings["x"] != 1 {
		t.Fatalf("expected x bound to class 1, got %v", results[0].Bindings)
	}
}

func Test_Match_03_RepeatedPlaceRequiresEquality(t *testing.T) {
	g := newFakeGraph()
	g.add(0, &fakeNode{isConst: true, constant: 9})
	g.add(1, &fakeNode{isConst: true, constant: 9})
	// class 2: (xor 0 0) -- same class both sides, should match (xor ?x ?x)
	g.add(2, &fakeNode{tag: "xor", children: []egraph.Id{0, 0}})
	// class 3: (xor 0 1) -- distinct classes, should NOT match
	g.add(3, &fakeNode{tag: "xor", children: []egraph.Id{0, 1}})

	lhs := pattern.List{
		Head: "xor",
		Children: []pattern.Pattern{
			pattern.Place{Name: "x"},
			pattern.Place{Name: "x"},
		},
	}
	rule := CompileRule("xor-self", lhs)

	results, err := All(g, rule)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 1 || results[0].Root != 2 {
		t.Fatalf("expected exactly one match at class 2, got %v", results)
	}
}

func Test_Match_04_NoMatchOnArityMismatch(t *testing.T) {
	g := newFakeGraph()
	g.add(0, &fakeNode{isConst: true, constant: 0})
	g.add(1, &fakeNode{tag: "not", children: []egraph.Id{0}})

	lhs := pattern.List{
		Head: "add",
		Children: []pattern.Pattern{
			pattern.Place{Name: "x"},
			pattern.Place{Name: "y"},
		},
	}
	rule := CompileRule("add-any", lhs)

	results, err := All(g, rule)
	if err != nil {
		t.Fatal(err)
	}

	if len(results) != 0 {
		t.Fatalf("expected no matches, got %v", results)
	}
}

func Test_Match_05_LabelReturnsUnimplementedError(t *testing.T) {
	g := newFakeGraph()
	g.add(0, &fakeNode{isConst: true, constant: 0})

	rule := CompileRule("labelled", pattern.Label{Name: "foo", Pattern: pattern.Place{Name: "x"}})

	if _, err := All(g, rule); err == nil {
		t.Fatalf("expected an unimplemented-construct error")
	}
}

func Test_Match_06_SinkStopsEarly(t *testing.T) {
	g := newFakeGraph()
	g.add(0, &fakeNode{isConst: true, constant: 1})
	g.add(1, &fakeNode{isConst: true, constant: 1})
	g.add(2, &fakeNode{isConst: true, constant: 1})

	rule := CompileRule("one", pattern.Constant{Value: 1})

	count := 0
	err := Match(g, rule, func(Result) bool {
		count++
		return false
	})
	if err != nil {
		t.Fatal(err)
	}

	if count != 1 {
		t.Fatalf("expected sink to run exactly once, got %d", count)
	}
}
