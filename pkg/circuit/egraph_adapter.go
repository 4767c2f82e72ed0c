package circuit

import (
	"sort"

	"github.com/trailofbits/circuitous-go/pkg/eqsat/egraph"
	"github.com/trailofbits/circuitous-go/pkg/eqsat/match"
	"github.com/trailofbits/circuitous-go/pkg/eqsat/pattern"
)

// EGraph is the e-graph instantiation this domain rewrites: circuit
// operator kinds as the tag, circuit immediates as the per-node payload.
type EGraph = egraph.EGraph[Kind, Immediate]

// NewEGraph constructs an empty circuit e-graph.
func NewEGraph() *EGraph {
	return egraph.New[Kind, Immediate]()
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, int(kindCount))
	for k := Kind(1); k < kindCount; k++ {
		m[k.String()] = k
	}

	return m
}()

// KindByName resolves a pattern op-atom (e.g. "add") to its Kind, for use
// when interpreting rewrite-rule patterns against circuit e-graphs.
func KindByName(name string) (Kind, bool) {
	k, ok := kindByName[name]
	return k, ok
}

// GraphView adapts an *EGraph to the match.Graph and rewrite.Graph
// interfaces, which are deliberately kept domain-agnostic (they see only
// tags, constants, and children) so the matcher and saturation driver
// never import this package.
type GraphView struct {
	g *EGraph
}

// View wraps g for use with package match and package rewrite.
func View(g *EGraph) *GraphView { return &GraphView{g: g} }

func (v *GraphView) ClassIds() []egraph.Id {
	return v.g.ClassIds()
}

func (v *GraphView) Nodes(id egraph.Id) []match.Node {
	cls := v.g.Class(id)
	if cls == nil {
		return nil
	}

	out := make([]match.Node, len(cls.Nodes))
	for i, n := range cls.Nodes {
		out[i] = nodeView{n}
	}

	return out
}

func (v *GraphView) ClassOf(child egraph.Id) egraph.Id {
	return v.g.Find(child)
}

func (v *GraphView) Find(id egraph.Id) egraph.Id { return v.g.Find(id) }

func (v *GraphView) Merge(a, b egraph.Id) egraph.Id { return v.g.Merge(a, b) }

func (v *GraphView) Rebuild() { v.g.Rebuild() }

func (v *GraphView) NumNodes() int { return v.g.NumNodes() }

type nodeView struct {
	n *egraph.ENode[Kind, Immediate]
}

func (nv nodeView) OpTag() string { return nv.n.Kind.String() }

func (nv nodeView) ConstantValue() (int64, bool) {
	if nv.n.Kind != KindConstant {
		return 0, false
	}

	return int64(nv.n.Data.ConstantUint64()), true
}

func (nv nodeView) Children() []egraph.Id { return nv.n.Children }

// Applier builds a rule's right-hand-side pattern into g, resolving
// places via bindings.  Constant leaves are built with an unspecified
// (zero) bit width: the text rule language carries no width annotation,
// so width-sensitive rewriting is left to rules that only ever bind and
// rearrange existing classes rather than mint new constants of a
// particular width.
func Applier(g *EGraph) func(rhs pattern.Pattern, bindings map[string]egraph.Id) (egraph.Id, error) {
	return func(rhs pattern.Pattern, bindings map[string]egraph.Id) (egraph.Id, error) {
		return build(g, rhs, bindings)
	}
}

func build(g *EGraph, p pattern.Pattern, bindings map[string]egraph.Id) (egraph.Id, error) {
	switch pat := p.(type) {
	case pattern.Place:
		id, ok := bindings[pat.Name]
		if !ok {
			return 0, &pattern.ErrUnimplementedPatternNode{Construct: "unbound place ?" + pat.Name + " in rhs"}
		}

		return id, nil

	case pattern.Constant:
		id, _ := g.Add(KindConstant, nil, Immediate{ConstantBits: ConstantFromUint64(uint64(pat.Value), 64)})
		return id, nil

	case pattern.Op:
		kind, ok := KindByName(pat.Tag)
		if !ok {
			return 0, &pattern.ErrUnimplementedPatternNode{Construct: "unknown op " + pat.Tag}
		}

		id, _ := g.Add(kind, nil, Immediate{})

		return id, nil

	case pattern.List:
		kind, ok := KindByName(pat.Head)
		if !ok {
			return 0, &pattern.ErrUnimplementedPatternNode{Construct: "unknown op " + pat.Head}
		}

		children := make([]egraph.Id, len(pat.Children))

		for i, c := range pat.Children {
			cid, err := build(g, c, bindings)
			if err != nil {
				return 0, err
			}

			children[i] = cid
		}

		id, _ := g.Add(kind, children, Immediate{})

		return id, nil

	default:
		return 0, &pattern.ErrUnimplementedPatternNode{Construct: "unsupported rhs pattern node"}
	}
}

// sortedKindNames is a debug helper used by tests to assert every
// declared Kind round-trips through KindByName.
func sortedKindNames() []string {
	names := make([]string, 0, len(kindByName))
	for name := range kindByName {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
