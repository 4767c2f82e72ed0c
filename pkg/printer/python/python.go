// Package python renders a circuit.Graph as Python assignment statements,
// one per node, mirroring the structure of the smt and dot printers; meant
// for scripting and ad hoc inspection rather than execution at scale.
package python

import (
	"fmt"
	"io"

	"github.com/trailofbits/circuitous-go/pkg/circuit"
)

var pyBinaryOps = map[circuit.Kind]string{
	circuit.KindAdd: "+",
	circuit.KindSub: "-",
	circuit.KindMul: "*",
	circuit.KindAnd: "&",
	circuit.KindOr:  "|",
	circuit.KindXor: "^",
	circuit.KindShl: "<<",
	circuit.KindLShr: ">>",
}

// Write renders g's transitive closure from g.Root() as Python
// assignment statements, each naming the prior nodes it depends on.
func Write(w io.Writer, g *circuit.Graph) error {
	var werr error

	g.Visit(g.Root(), func(id circuit.Id) bool {
		n := g.Node(id)

		expr := pyExprFor(n)

		_, err := fmt.Fprintf(w, "n%d = %s  # %s, width %d\n", id, expr, n.Kind, n.Data.BitWidth)
		if err != nil {
			werr = err
			return false
		}

		return true
	})

	if werr != nil {
		return werr
	}

	_, err := fmt.Fprintf(w, "root = n%d\n", g.Root())

	return err
}

func pyExprFor(n *circuit.Node) string {
	switch n.Kind {
	case circuit.KindConstant:
		return fmt.Sprintf("%d", n.Data.ConstantUint64())
	case circuit.KindInputRegister, circuit.KindOutputRegister:
		return fmt.Sprintf("regs[%q]", n.Data.Register)
	case circuit.KindInputInstructionBits:
		return "instruction_bits"
	case circuit.KindUndefined, circuit.KindAdvice:
		return "None"
	case circuit.KindNot:
		return fmt.Sprintf("~n%d", n.Operands[0])
	case circuit.KindExtract:
		return fmt.Sprintf("extract(n%d, %d, %d)", n.Operands[0], n.Data.ExtractLow, n.Data.ExtractHigh)
	default:
		if op, ok := pyBinaryOps[n.Kind]; ok && len(n.Operands) == 2 {
			return fmt.Sprintf("n%d %s n%d", n.Operands[0], op, n.Operands[1])
		}

		return fmt.Sprintf("None  # unsupported kind %s", n.Kind)
	}
}
