// Package dot renders a circuit.Graph as Graphviz DOT, one node per
// node reachable from the root, edges following operand order.  Emission is mechanical:
// the core only guarantees a stable traversal (circuit.Graph.Visit) to
// walk.
package dot

import (
	"fmt"
	"io"

	"github.com/trailofbits/circuitous-go/pkg/circuit"
)

// Write renders g rooted at g.Root() as a DOT digraph.
func Write(w io.Writer, g *circuit.Graph) error {
	if _, err := fmt.Fprintln(w, "digraph circuit {"); err != nil {
		return err
	}

	var werr error

	g.Visit(g.Root(), func(id circuit.Id) bool {
		n := g.Node(id)

		if _, err := fmt.Fprintf(w, "  n%d [label=%q];\n", id, n.Kind.String()); err != nil {
			werr = err
			return false
		}

		for i, operand := range n.Operands {
			if _, err := fmt.Fprintf(w, "  n%d -> n%d [label=%q];\n", id, operand, fmt.Sprintf("%d", i)); err != nil {
				werr = err
				return false
			}
		}

		return true
	})

	if werr != nil {
		return werr
	}

	_, err := fmt.Fprintln(w, "}")

	return err
}
