package decoder

import (
	"sort"

	log "github.com/sirupsen/logrus"
)

// Node is one node of the synthesized decision tree.  A leaf (BitIndex
// < 0) carries the contexts to try, in order; an internal node tests
// BitIndex and descends into Zero or One.
type Node struct {
	BitIndex int
	Zero     *Node
	One      *Node
	Leaf     []*Context
}

// ErrInvariantViolation reports an input rule set that fails the decoder's
// build-time uniqueness check: per spec, at most one context may be
// satisfiable by any concrete 15-byte input, or the sum-of-leaf-calls
// return convention degenerates into nonsense.
type ErrInvariantViolation struct {
	Detail string
}

func (e *ErrInvariantViolation) Error() string { return "decoder: invariant violation: " + e.Detail }

// Build synthesizes a decision tree over contexts.  It asserts pairwise
// uniqueness first: for every pair of contexts, there must be some bit
// index both require concretely and disagree on, which guarantees no
// 15-byte input satisfies both. This is necessary for the tree's
// sum-of-leaf-calls correctness but not a full semantic check — two
// contexts could still be unreachable-vacuous or otherwise degenerate in
// ways this mask intersection can't see; callers dealing with rule sets
// from untrusted sources should not rely on this as a complete verifier.
func Build(contexts []*Context) (*Node, error) {
	if err := assertPairwiseDistinguishable(contexts); err != nil {
		return nil, err
	}

	return build(contexts, make([]bool, NumBits), 0), nil
}

func assertPairwiseDistinguishable(contexts []*Context) error {
	for i := 0; i < len(contexts); i++ {
		for j := i + 1; j < len(contexts); j++ {
			if !distinguishable(contexts[i], contexts[j]) {
				return &ErrInvariantViolation{Detail: "contexts " + contexts[i].Name + " and " + contexts[j].Name + " are not distinguishable by any required bit"}
			}
		}
	}

	return nil
}

func distinguishable(a, b *Context) bool {
	for i := uint(0); i < NumBits; i++ {
		if a.requiresOne(i) && b.requiresZero(i) {
			return true
		}

		if a.requiresZero(i) && b.requiresOne(i) {
			return true
		}
	}

	return false
}

func build(contexts []*Context, chosen []bool, depth int) *Node {
	log.WithField("depth", depth).WithField("contexts", len(contexts)).Debug("decoder: synthesizing tree node")

	bestBit, bestScore := -1, 0

	for i := 0; i < NumBits; i++ {
		if chosen[i] {
			continue
		}

		zeros, ones := 0, 0

		for _, c := range contexts {
			if c.requiresZero(uint(i)) {
				zeros++
			} else if c.requiresOne(uint(i)) {
				ones++
			}
		}

		score := zeros
		if ones < score {
			score = ones
		}

		if score > bestScore {
			bestScore = score
			bestBit = i
		}
	}

	if bestBit < 0 {
		return &Node{BitIndex: -1, Leaf: sortedLeaf(contexts)}
	}

	chosen[bestBit] = true
	defer func() { chosen[bestBit] = false }()

	var zeroSide, oneSide []*Context

	for _, c := range contexts {
		if !c.requiresOne(uint(bestBit)) {
			zeroSide = append(zeroSide, c)
		}

		if !c.requiresZero(uint(bestBit)) {
			oneSide = append(oneSide, c)
		}
	}

	return &Node{
		BitIndex: bestBit,
		Zero:     build(zeroSide, chosen, depth+1),
		One:      build(oneSide, chosen, depth+1),
	}
}

// sortedLeaf orders a leaf's contexts by name for deterministic codegen,
// matching spec's "Determinism" testable property.
func sortedLeaf(contexts []*Context) []*Context {
	out := append([]*Context(nil), contexts...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// MaxDepth returns the tree's maximum root-to-leaf depth, bounded by
// NumBits per spec's resource-bounds note.
func (n *Node) MaxDepth() int {
	if n.BitIndex < 0 {
		return 0
	}

	l, r := n.Zero.MaxDepth(), n.One.MaxDepth()
	if l > r {
		return 1 + l
	}

	return 1 + r
}
