// Package decoder synthesizes a bit-test decision tree over a set of
// decode contexts — one per instruction encoding — that routes a 15-byte
// input to the context it satisfies, or to no leaf at all.
package decoder

import (
	"fmt"

	"github.com/bits-and-blooms/bitset"
)

// NumBits is the number of bit indices the decoder tests: 15 bytes.
const NumBits = 120

// MaxLength is the largest encoded instruction length the generated
// decoder can report.
const MaxLength = 15

// Context is one instruction encoding's decode predicate: for every bit
// index in [0, NumBits), it requires 0, requires 1, or doesn't care.
// Ones and Ignore are disjoint bitsets over NumBits bits; a bit absent
// from both is implicitly required to be 0.
type Context struct {
	Name   string
	Ones   *bitset.BitSet
	Ignore *bitset.BitSet
	Length int
}

// NewContext constructs an empty context (every bit implicitly required
// zero) with the given name and encoded length.
func NewContext(name string, length int) (*Context, error) {
	if length < 1 || length > MaxLength {
		return nil, &ErrEncodingTooLong{Length: length}
	}

	return &Context{
		Name:   name,
		Ones:   bitset.New(NumBits),
		Ignore: bitset.New(NumBits),
		Length: length,
	}, nil
}

// RequireOne marks bit i as required to be 1.
func (c *Context) RequireOne(i uint) { c.Ones.Set(i) }

// RequireIgnore marks bit i as don't-care.
func (c *Context) RequireIgnore(i uint) { c.Ignore.Set(i) }

// RequireBits marks the half-open bit range [low, high) according to the
// little-endian value v: bit low+k is required to (v>>k)&1.
func (c *Context) RequireBits(low, high int, v uint64) {
	for i := low; i < high; i++ {
		if (v>>(i-low))&1 == 1 {
			c.RequireOne(uint(i))
		}
	}
}

// ErrEncodingTooLong reports a context whose length operand exceeds the
// 15-byte decoder surface.
type ErrEncodingTooLong struct {
	Length int
}

func (e *ErrEncodingTooLong) Error() string {
	return fmt.Sprintf("decoder: encoding too long: implied length %d exceeds %d bytes", e.Length, MaxLength)
}

// requiresZero reports whether bit i is required to be 0 in c (neither
// set in Ones nor Ignore).
func (c *Context) requiresZero(i uint) bool {
	return !c.Ones.Test(i) && !c.Ignore.Test(i)
}

// requiresOne reports whether bit i is required to be 1 in c.
func (c *Context) requiresOne(i uint) bool {
	return c.Ones.Test(i) && !c.Ignore.Test(i)
}
