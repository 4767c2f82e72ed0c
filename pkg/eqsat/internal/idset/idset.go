// Package idset provides a sorted, duplicate-free set of union-find
// identifiers.  The e-graph uses it for the "pending" worklist so that
// Rebuild visits dirty classes in a deterministic, increasing order instead
// of whatever order a Go map would yield.
//
// Adapted from the sorted-set insertion/merge algorithm used elsewhere in
// this codebase for column identifiers; specialised here to
// unionfind.Id and stripped of the generic iterator wiring that callers in
// this package don't need.
package idset

import (
	"sort"

	"github.com/trailofbits/circuitous-go/pkg/eqsat/unionfind"
)

// Set is a sorted slice of distinct Ids.
type Set []unionfind.Id

// New returns an empty set.
func New() Set {
	return Set{}
}

// Contains reports whether id is a member.
func (s Set) Contains(id unionfind.Id) bool {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	return i < len(s) && s[i] == id
}

// Insert adds id to the set, returning the (possibly reallocated) set.  A
// no-op if id is already present.
func (s Set) Insert(id unionfind.Id) Set {
	i := sort.Search(len(s), func(i int) bool { return s[i] >= id })
	if i < len(s) && s[i] == id {
		return s
	}

	s = append(s, 0)
	copy(s[i+1:], s[i:])
	s[i] = id

	return s
}

// Slice returns the underlying sorted, duplicate-free slice.
func (s Set) Slice() []unionfind.Id {
	return s
}
