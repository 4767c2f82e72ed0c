package circuit

import "fmt"

// Immediate is the per-node payload that isn't an operand: bit width plus
// whichever of the kind-specific fields below apply.  It satisfies
// egraph.Immediate so e-graphs of circuit IR can hashcons on it, and it
// replaces the RTTI downcasts the source uses to recover a node's concrete
// shape (spec's "Dynamic casts" design note): instead of a type switch on a
// concrete struct, callers read the Kind on the owning e-node and pull out
// whichever field that kind defines via the typed accessors in
// typed_access.go.
type Immediate struct {
	// BitWidth is carried by every node; spec requires "every kind carries
	// a bit width".
	BitWidth int

	// ConstantBits holds the value for KindConstant, little-endian.
	ConstantBits []byte

	// ExtractLow and ExtractHigh bound a KindExtract or the extract half
	// of a KindDecodeCondition: [ExtractLow, ExtractHigh).
	ExtractLow  int
	ExtractHigh int

	// Register names the referenced register for KindInputRegister,
	// KindOutputRegister, and KindRegConstraint.
	Register string
}

// Key renders the immediate into the hashcons-key fragment the e-graph
// string-concatenates with tag and canonicalized children (see
// pkg/eqsat/egraph.ENode.key).  Two Immediates with equal Key values are
// treated as interchangeable for deduplication purposes.
func (im Immediate) Key() string {
	return fmt.Sprintf("%d|%x|%d|%d|%s", im.BitWidth, im.ConstantBits, im.ExtractLow, im.ExtractHigh, im.Register)
}

// ConstantUint64 decodes ConstantBits as a little-endian unsigned integer,
// for kinds narrow enough to fit; the DecodeCondition splitting heuristic
// and constant-fold rules both only ever need constants this size.
func (im Immediate) ConstantUint64() uint64 {
	var v uint64
	for i, b := range im.ConstantBits {
		if i >= 8 {
			break
		}

		v |= uint64(b) << (8 * i)
	}

	return v
}

// ConstantFromUint64 builds the ConstantBits encoding of v, width bits
// wide (rounded up to a whole byte).
func ConstantFromUint64(v uint64, width int) []byte {
	n := (width + 7) / 8
	buf := make([]byte, n)

	for i := 0; i < n; i++ {
		buf[i] = byte(v >> (8 * i))
	}

	return buf
}
