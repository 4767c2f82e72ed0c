package circuit

// Kind is the closed set of circuit operator tags.  It doubles as the
// e-graph operator-tag type parameter (see pkg/eqsat/egraph.EGraph's K):
// every e-node built from circuit IR carries one of these as its Kind.
type Kind uint8

const (
	KindInvalid Kind = iota

	// Inputs.
	KindInputRegister
	KindOutputRegister
	KindInputInstructionBits
	KindAdvice
	KindUndefined
	KindConstant

	// Bitvector.
	KindExtract
	KindConcat
	KindAdd
	KindSub
	KindMul
	KindAnd
	KindOr
	KindXor
	KindNot
	KindShl
	KindLShr
	KindAShr
	KindPopcount
	KindParity
	KindZeroExt
	KindSignExt
	KindTrunc
	KindSelect

	// Predicates.
	KindEqual
	KindDecodeCondition
	KindRegConstraint

	// Roots.
	KindVerifyInstruction
	KindCircuit

	kindCount
)

var kindNames = [kindCount]string{
	KindInvalid:              "invalid",
	KindInputRegister:        "input_register",
	KindOutputRegister:       "output_register",
	KindInputInstructionBits: "input_instruction_bits",
	KindAdvice:               "advice",
	KindUndefined:            "undefined",
	KindConstant:             "constant",
	KindExtract:              "extract",
	KindConcat:               "concat",
	KindAdd:                  "add",
	KindSub:                  "sub",
	KindMul:                  "mul",
	KindAnd:                  "and",
	KindOr:                   "or",
	KindXor:                  "xor",
	KindNot:                  "not",
	KindShl:                  "shl",
	KindLShr:                 "lshr",
	KindAShr:                 "ashr",
	KindPopcount:             "popcount",
	KindParity:               "parity",
	KindZeroExt:              "zero_ext",
	KindSignExt:              "sign_ext",
	KindTrunc:                "trunc",
	KindSelect:               "select",
	KindEqual:                "equal",
	KindDecodeCondition:      "decode_condition",
	KindRegConstraint:        "reg_constraint",
	KindVerifyInstruction:    "verify_instruction",
	KindCircuit:              "circuit",
}

func (k Kind) String() string {
	if k >= kindCount {
		return "unknown"
	}

	return kindNames[k]
}

// IsInput reports whether k is one of the leaf input kinds.
func (k Kind) IsInput() bool {
	switch k {
	case KindInputRegister, KindOutputRegister, KindInputInstructionBits, KindAdvice, KindUndefined, KindConstant:
		return true
	default:
		return false
	}
}

// IsPredicate reports whether k produces a single-bit boolean result.
func (k Kind) IsPredicate() bool {
	switch k {
	case KindEqual, KindDecodeCondition, KindRegConstraint:
		return true
	default:
		return false
	}
}

// IsRoot reports whether k is one of the two root-only kinds.
func (k Kind) IsRoot() bool {
	return k == KindVerifyInstruction || k == KindCircuit
}

// Arity returns the fixed number of operands k requires, or -1 if k is
// variadic (Concat, Circuit, VerifyInstruction).
func (k Kind) Arity() int {
	switch k {
	case KindInputRegister, KindOutputRegister, KindInputInstructionBits, KindAdvice, KindUndefined, KindConstant:
		return 0
	case KindExtract, KindNot, KindPopcount, KindParity, KindZeroExt, KindSignExt, KindTrunc:
		return 1
	case KindAdd, KindSub, KindMul, KindAnd, KindOr, KindXor, KindShl, KindLShr, KindAShr, KindEqual, KindDecodeCondition, KindRegConstraint:
		return 2
	case KindSelect:
		return 3
	case KindConcat, KindCircuit, KindVerifyInstruction:
		return -1
	default:
		return -1
	}
}
