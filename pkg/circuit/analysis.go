package circuit

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ContextCollection computes, for every node reachable from any
// KindVerifyInstruction root in the graph, the set of VerifyInstruction
// ids whose subtree contains it.  A node shared between two instruction
// contexts (a common sub-expression) collects both.
//
// The fixed point is computed by propagating downward from each VI
// through operands rather than literally walking the users graph
// upward from scratch per node (which spec's wording suggests but which
// is quadratic): both produce the same annotation, since "n reaches VI
// via users" is exactly "VI reaches n via operands".
func (g *Graph) ContextCollection() map[Id]map[Id]bool {
	contexts := make(map[Id]map[Id]bool, len(g.nodes))

	for id := range g.nodes {
		if g.Kind(Id(id)) != KindVerifyInstruction {
			continue
		}

		vi := Id(id)

		g.Visit(vi, func(n Id) bool {
			set, ok := contexts[n]
			if !ok {
				set = make(map[Id]bool, 1)
				contexts[n] = set
			}

			set[vi] = true

			return true
		})
	}

	return contexts
}

// UndefReachable reports whether any path downward from id (through
// operands) reaches a KindUndefined node.  Used to permit don't-care
// semantics on a RegConstraint's value operand.
func (g *Graph) UndefReachable(id Id) bool {
	found := false

	visited := make([]bool, len(g.nodes))
	g.undefReachable(id, visited, &found)

	return found
}

func (g *Graph) undefReachable(id Id, visited []bool, found *bool) {
	if *found || visited[id] {
		return
	}

	visited[id] = true

	if g.Kind(id) == KindUndefined {
		*found = true
		return
	}

	for _, operand := range g.Operands(id) {
		g.undefReachable(operand, visited, found)

		if *found {
			return
		}
	}
}

// TopologyHasher computes canonical, memoized structural hashes for
// subtrees, used for structural deduplication and debug output.  It is
// kept separate from Graph so callers that never need hashing pay
// nothing for the memo table.
type TopologyHasher struct {
	g     *Graph
	memo  map[Id]string
}

// NewTopologyHasher constructs a hasher over g.  Hashes are memoized per
// hasher instance, not per graph: invalidate by constructing a fresh
// hasher if g's contents change.
func NewTopologyHasher(g *Graph) *TopologyHasher {
	return &TopologyHasher{g: g, memo: make(map[Id]string)}
}

// Hash returns id's topology hash, computing and memoizing it (and every
// operand's hash along the way) on first use.
func (h *TopologyHasher) Hash(id Id) string {
	if cached, ok := h.memo[id]; ok {
		return cached
	}

	n := h.g.Node(id)

	sum := sha256.New()
	fmt.Fprintf(sum, "%s|%s", n.Kind, n.Data.Key())

	for _, operand := range n.Operands {
		fmt.Fprintf(sum, "|%s", h.Hash(operand))
	}

	digest := hex.EncodeToString(sum.Sum(nil))
	h.memo[id] = digest

	return digest
}
