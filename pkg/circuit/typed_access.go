package circuit

// Typed accessors replace the source's RTTI downcasts (spec §9 "Dynamic
// casts"): callers read Kind first, then call the accessor that applies
// to it.  Each accessor's second return value is false if called against
// a node of the wrong kind, rather than panicking, since a rewrite rule
// or printer walking arbitrary IR routinely probes kinds it doesn't
// expect to match.

// ConstantValue returns a KindConstant node's value as a little-endian
// unsigned integer.
func (g *Graph) ConstantValue(id Id) (uint64, bool) {
	n := g.Node(id)
	if n.Kind != KindConstant {
		return 0, false
	}

	return n.Data.ConstantUint64(), true
}

// ExtractRange returns a KindExtract node's [low, high) bit range.
func (g *Graph) ExtractRange(id Id) (low, high int, ok bool) {
	n := g.Node(id)
	if n.Kind != KindExtract {
		return 0, 0, false
	}

	return n.Data.ExtractLow, n.Data.ExtractHigh, true
}

// RegisterName returns the register a KindInputRegister, KindOutputRegister,
// or KindRegConstraint node refers to.
func (g *Graph) RegisterName(id Id) (string, bool) {
	n := g.Node(id)
	switch n.Kind {
	case KindInputRegister, KindOutputRegister, KindRegConstraint:
		return n.Data.Register, true
	default:
		return "", false
	}
}

// DecodeConditionParts returns a KindDecodeCondition node's constant and
// extract operands, validating the invariant from spec §3 ("operand 0 is
// a Constant and operand 1 is an Extract").
func (g *Graph) DecodeConditionParts(id Id) (constant, extract Id, ok bool) {
	n := g.Node(id)
	if n.Kind != KindDecodeCondition || len(n.Operands) != 2 {
		return 0, 0, false
	}

	c, e := n.Operands[0], n.Operands[1]
	if g.Node(c).Kind != KindConstant || g.Node(e).Kind != KindExtract {
		return 0, 0, false
	}

	return c, e, true
}

// BitWidth returns id's declared bit width.
func (g *Graph) BitWidth(id Id) int {
	return g.Node(id).Data.BitWidth
}
