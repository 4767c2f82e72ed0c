package circuit

import (
	"testing"

	"github.com/trailofbits/circuitous-go/pkg/eqsat/egraph"
	"github.com/trailofbits/circuitous-go/pkg/eqsat/pattern"
	"github.com/trailofbits/circuitous-go/pkg/eqsat/rewrite"
)

func Test_EGraphAdapter_01_KindNamesRoundTrip(t *testing.T) {
	for _, name := range sortedKindNames() {
		k, ok := KindByName(name)
		if !ok || k.String() != name {
			t.Fatalf("round-trip failed for kind name %q", name)
		}
	}
}

func Test_EGraphAdapter_02_ConstantFoldEndToEnd(t *testing.T) {
	g := NewEGraph()

	x, _ := g.Add(KindInputRegister, nil, Immediate{BitWidth: 8, Register: "r0"})
	zero, _ := g.Add(KindConstant, nil, Immediate{BitWidth: 8, ConstantBits: ConstantFromUint64(0, 8)})
	sum, _ := g.Add(KindAdd, []egraph.Id{x, zero}, Immediate{BitWidth: 8})

	rules, err := pattern.ParseRules("(rule (add ?x 0) ?x)")
	if err != nil {
		t.Fatal(err)
	}

	view := View(g)

	stats, err := rewrite.Saturate(view, []rewrite.Rule{rewrite.Compile(rules[0])}, Applier(g), rewrite.Budget{MaxIterations: 5})
	if err != nil {
		t.Fatal(err)
	}

	if stats.Merges != 1 {
		t.Fatalf("expected exactly one merge, got %+v", stats)
	}

	if g.Find(sum) != g.Find(x) {
		t.Fatalf("expected (add x 0) to collapse into x's class")
	}
}
