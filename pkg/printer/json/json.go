// Package json renders a circuit.Graph as a JSON object holding the root
// id and an array of node records, suitable for tooling outside this
// module (spec's --json_out surface).
package json

import (
	"encoding/json"
	"io"

	"github.com/trailofbits/circuitous-go/pkg/circuit"
)

type nodeRecord struct {
	Id           int           `json:"id"`
	Kind         string        `json:"kind"`
	BitWidth     int           `json:"bit_width"`
	ConstantBits []byte        `json:"constant_bits,omitempty"`
	ExtractLow   int           `json:"extract_low,omitempty"`
	ExtractHigh  int           `json:"extract_high,omitempty"`
	Register     string        `json:"register,omitempty"`
	Operands     []circuit.Id  `json:"operands,omitempty"`
}

// Write renders every node in arena order, plus the root id, as a single
// JSON object.
func Write(w io.Writer, g *circuit.Graph) error {
	records := make([]nodeRecord, g.NumNodes())

	for id := 0; id < g.NumNodes(); id++ {
		n := g.Node(circuit.Id(id))
		records[id] = nodeRecord{
			Id:           id,
			Kind:         n.Kind.String(),
			BitWidth:     n.Data.BitWidth,
			ConstantBits: n.Data.ConstantBits,
			ExtractLow:   n.Data.ExtractLow,
			ExtractHigh:  n.Data.ExtractHigh,
			Register:     n.Data.Register,
			Operands:     n.Operands,
		}
	}

	out := struct {
		Root  circuit.Id   `json:"root"`
		Nodes []nodeRecord `json:"nodes"`
	}{Root: g.Root(), Nodes: records}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(out)
}
