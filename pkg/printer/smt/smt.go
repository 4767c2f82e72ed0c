// Package smt renders a circuit.Graph as SMT-LIB2 bitvector assertions,
// one `define-fun` per node in dependency order, for consumption by an
// external SMT solver verifying rewrite soundness (spec's stated
// Non-goal: this module never calls a solver itself).
package smt

import (
	"fmt"
	"io"

	"github.com/trailofbits/circuitous-go/pkg/circuit"
)

var binaryOps = map[circuit.Kind]string{
	circuit.KindAdd:  "bvadd",
	circuit.KindSub:  "bvsub",
	circuit.KindMul:  "bvmul",
	circuit.KindAnd:  "bvand",
	circuit.KindOr:   "bvor",
	circuit.KindXor:  "bvxor",
	circuit.KindShl:  "bvshl",
	circuit.KindLShr: "bvlshr",
	circuit.KindAShr: "bvashr",
	circuit.KindEqual: "=",
}

// Write renders g's transitive closure from g.Root() as a sequence of
// SMT-LIB2 define-fun forms, each naming the prior nodes it depends on.
func Write(w io.Writer, g *circuit.Graph) error {
	var werr error

	g.Visit(g.Root(), func(id circuit.Id) bool {
		n := g.Node(id)

		expr, ok := exprFor(g, id, n)
		if !ok {
			expr = fmt.Sprintf("; unsupported kind %s", n.Kind)
		}

		_, err := fmt.Fprintf(w, "(define-fun n%d () (_ BitVec %d) %s)\n", id, n.Data.BitWidth, expr)
		if err != nil {
			werr = err
			return false
		}

		return true
	})

	return werr
}

func exprFor(g *circuit.Graph, id circuit.Id, n *circuit.Node) (string, bool) {
	switch n.Kind {
	case circuit.KindConstant:
		return fmt.Sprintf("(_ bv%d %d)", n.Data.ConstantUint64(), n.Data.BitWidth), true
	case circuit.KindInputRegister, circuit.KindOutputRegister:
		return fmt.Sprintf("|%s|", n.Data.Register), true
	case circuit.KindInputInstructionBits:
		return "instruction_bits", true
	case circuit.KindUndefined, circuit.KindAdvice:
		return fmt.Sprintf("undef_%d", id), true
	case circuit.KindNot:
		return fmt.Sprintf("(bvnot n%d)", n.Operands[0]), true
	case circuit.KindExtract:
		return fmt.Sprintf("((_ extract %d %d) n%d)", n.Data.ExtractHigh-1, n.Data.ExtractLow, n.Operands[0]), true
	default:
		if op, ok := binaryOps[n.Kind]; ok && len(n.Operands) == 2 {
			return fmt.Sprintf("(%s n%d n%d)", op, n.Operands[0], n.Operands[1]), true
		}

		return "", false
	}
}
