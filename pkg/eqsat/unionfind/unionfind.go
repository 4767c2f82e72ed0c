// Package unionfind implements a disjoint-set forest over dense,
// monotonically-increasing class identifiers.  It underlies the e-graph's
// notion of equivalence between e-classes.
package unionfind

// Id names a disjoint-set element.  An Id is stable under Find
// canonicalization but not across Merge: once a class loses a merge, its Id
// continues to resolve via Find to the winner rather than naming its own
// set.
type Id uint32

// node is one entry of the forest.  Size counts the elements in the subtree
// rooted here when this node is itself a root; it is used to union by size
// (the larger set's root becomes the parent), which keeps the forest
// shallow without needing a separate rank.
type node struct {
	parent Id
	size   uint32
}

// UnionFind is an append-only disjoint-set forest.  Ids are assigned by
// MakeSet in increasing order starting at zero; nothing is ever removed, so
// existing Ids remain valid for the lifetime of the structure.
type UnionFind struct {
	nodes []node
}

// New constructs an empty forest.
func New() *UnionFind {
	return &UnionFind{}
}

// MakeSet allocates a fresh singleton set and returns its Id.
func (uf *UnionFind) MakeSet() Id {
	id := Id(len(uf.nodes))
	uf.nodes = append(uf.nodes, node{parent: id, size: 1})

	return id
}

// Len returns the number of elements ever allocated via MakeSet (not the
// number of distinct sets currently live).
func (uf *UnionFind) Len() int {
	return len(uf.nodes)
}

// Find returns the representative of x's set, without mutating the forest.
func (uf *UnionFind) Find(x Id) Id {
	for uf.nodes[x].parent != x {
		x = uf.nodes[x].parent
	}

	return x
}

// FindCompress returns the representative of x's set and compresses the
// path from x to the root so that subsequent lookups are cheaper.
func (uf *UnionFind) FindCompress(x Id) Id {
	root := uf.Find(x)
	// second pass: repoint every node on the path directly at root
	for uf.nodes[x].parent != root {
		next := uf.nodes[x].parent
		uf.nodes[x].parent = root
		x = next
	}

	return root
}

// Merge unions the sets containing a and b by size, and returns the new
// representative.  If a and b are already in the same set, it is returned
// unchanged.
func (uf *UnionFind) Merge(a, b Id) Id {
	a = uf.FindCompress(a)
	b = uf.FindCompress(b)

	if a == b {
		return a
	}

	if uf.nodes[a].size < uf.nodes[b].size {
		a, b = b, a
	}

	uf.nodes[b].parent = a
	uf.nodes[a].size += uf.nodes[b].size

	return a
}
