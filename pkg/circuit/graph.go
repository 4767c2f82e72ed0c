// Package circuit defines the domain e-node payload — operator kinds,
// immediates, and the typed accessors that replace RTTI downcasts — plus a
// flat arena representation of an extracted circuit (a concrete DAG with
// no further equivalences to track) used by traversals, analyses, the
// decoder-tree synthesizer, and the serializer.
//
// The two representations are deliberately separate: pkg/eqsat/egraph
// holds many structurally-equal-but-not-yet-unified e-nodes per class
// while rewriting is in progress; Graph holds exactly one node per
// extracted position, addressed by a stable arena index, matching the
// source's choice to "represent nodes in arena storage... and address
// them by stable index" (spec §9 "Cyclic graphs").
package circuit

import (
	"fmt"

	"github.com/davecgh/go-spew/spew"
)

// Id names a node's position in a Graph's arena.  Stable for the Graph's
// lifetime; never reused.
type Id int

// Node is one circuit-IR operation: a kind, its immediate payload, and its
// ordered operand ids.  Users are tracked out-of-line on the owning Graph
// because they are a derived, append-only reverse index rather than part
// of a node's own identity.
type Node struct {
	Kind     Kind
	Data     Immediate
	Operands []Id
}

// Graph is an arena of Nodes with maintained operand/user edges.
type Graph struct {
	nodes []Node
	users [][]Id
	root  Id
}

// NewGraph constructs an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add appends a new node and wires its user back-edges, returning its id.
// Unlike egraph.EGraph.Add, this never deduplicates: a Graph is a
// concrete, already-extracted DAG, not a congruence-closed structure.
func (g *Graph) Add(kind Kind, data Immediate, operands ...Id) Id {
	id := Id(len(g.nodes))
	g.nodes = append(g.nodes, Node{Kind: kind, Data: data, Operands: append([]Id(nil), operands...)})
	g.users = append(g.users, nil)

	for _, o := range operands {
		g.users[o] = append(g.users[o], id)
	}

	return id
}

// SetRoot records which node is the top-level Circuit root.
func (g *Graph) SetRoot(id Id) { g.root = id }

// Root returns the top-level Circuit root id.
func (g *Graph) Root() Id { return g.root }

// NumNodes returns the number of nodes in the arena.
func (g *Graph) NumNodes() int { return len(g.nodes) }

// Node returns the node stored at id.  Panics on an out-of-range id, since
// a bad Id is always a programming error (an InvariantViolation, per
// spec's error-kind table) rather than recoverable data.
func (g *Graph) Node(id Id) *Node {
	if int(id) < 0 || int(id) >= len(g.nodes) {
		panic(fmt.Sprintf("circuit: invalid node id %d", id))
	}

	return &g.nodes[id]
}

// Operands returns id's ordered operand ids.
func (g *Graph) Operands(id Id) []Id {
	return g.Node(id).Operands
}

// Users returns the ids of every node that has id as an operand, in
// insertion order.
func (g *Graph) Users(id Id) []Id {
	return g.users[id]
}

// Kind returns id's operator tag.
func (g *Graph) Kind(id Id) Kind {
	return g.Node(id).Kind
}

// DebugDump renders every node's kind, immediate payload, and operand ids
// via spew, for --verbose diagnostics.  Not meant to be parsed; use
// pkg/serialize or the pkg/printer family for machine-readable output.
func (g *Graph) DebugDump() string {
	spewCfg := spew.ConfigState{Indent: "  ", DisablePointerAddresses: true, DisableCapacities: true}
	return spewCfg.Sdump(g.nodes)
}
