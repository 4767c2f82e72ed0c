package serialize

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/trailofbits/circuitous-go/pkg/circuit"
)

// snapshot flattens a Graph into a comparable value: cmp.Diff needs plain
// data, not the arena's private slices, to compare two graphs structurally
// regardless of how they were built.
func snapshot(g *circuit.Graph) []circuit.Node {
	out := make([]circuit.Node, g.NumNodes())
	for i := range out {
		out[i] = *g.Node(circuit.Id(i))
	}

	return out
}

func buildSample() *circuit.Graph {
	g := circuit.NewGraph()
	a := g.Add(circuit.KindConstant, circuit.Immediate{BitWidth: 8, ConstantBits: circuit.ConstantFromUint64(5, 8)})
	b := g.Add(circuit.KindConstant, circuit.Immediate{BitWidth: 8, ConstantBits: circuit.ConstantFromUint64(0, 8)})
	sum := g.Add(circuit.KindAdd, circuit.Immediate{BitWidth: 8}, a, b)
	g.SetRoot(sum)

	return g
}

func Test_Serialize_01_RoundTrip(t *testing.T) {
	g := buildSample()

	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatal(err)
	}

	got, err := Read(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got.NumNodes() != g.NumNodes() {
		t.Fatalf("expected %d nodes, got %d", g.NumNodes(), got.NumNodes())
	}

	if got.Root() != g.Root() {
		t.Fatalf("expected root %v, got %v", g.Root(), got.Root())
	}

	sumNode := got.Node(got.Root())
	if sumNode.Kind != circuit.KindAdd || len(sumNode.Operands) != 2 {
		t.Fatalf("unexpected round-tripped root node: %+v", sumNode)
	}

	v, ok := got.ConstantValue(sumNode.Operands[0])
	if !ok || v != 5 {
		t.Fatalf("expected first operand to round-trip as constant 5, got %d %v", v, ok)
	}

	if diff := cmp.Diff(snapshot(g), snapshot(got)); diff != "" {
		t.Fatalf("round-tripped graph differs from the original (-want +got):\n%s", diff)
	}
}

func Test_Serialize_02_DeterministicOutput(t *testing.T) {
	g1 := buildSample()
	g2 := buildSample()

	var b1, b2 bytes.Buffer
	if err := Write(&b1, g1); err != nil {
		t.Fatal(err)
	}

	if err := Write(&b2, g2); err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(b1.Bytes(), b2.Bytes()) {
		t.Fatalf("expected isomorphic graphs to serialize identically")
	}
}

func Test_Serialize_03_BadMagicRejected(t *testing.T) {
	if _, err := Read(bytes.NewReader([]byte("NOTCIR!!!!"))); err == nil {
		t.Fatalf("expected bad magic to be rejected")
	}
}

func Test_Serialize_04_UnsupportedVersionRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(magic)

	versionBytes := []byte{99, 0, 0, 0}
	buf.Write(versionBytes)

	if _, err := Read(&buf); err == nil {
		t.Fatalf("expected an unrecognized version to be rejected")
	}
}

func Test_Serialize_05_TruncatedStreamReportsOffset(t *testing.T) {
	g := buildSample()

	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatal(err)
	}

	truncated := buf.Bytes()[:len(buf.Bytes())-3]

	_, err := Read(bytes.NewReader(truncated))
	if err == nil {
		t.Fatalf("expected truncated input to be rejected")
	}

	derr, ok := err.(*ErrDeserializeFailed)
	if !ok {
		t.Fatalf("expected *ErrDeserializeFailed, got %T", err)
	}

	if derr.Offset <= 0 {
		t.Fatalf("expected a nonzero byte offset in the error, got %d", derr.Offset)
	}
}

func Test_Serialize_06_LittleEndianEncoding(t *testing.T) {
	g := circuit.NewGraph()
	a := g.Add(circuit.KindConstant, circuit.Immediate{BitWidth: 32})
	g.SetRoot(a)

	var buf bytes.Buffer
	if err := Write(&buf, g); err != nil {
		t.Fatal(err)
	}

	// node count (uint32) sits right after the 5-byte magic and 4-byte
	// version; with 1 node it must read as 0x01 0x00 0x00 0x00.
	raw := buf.Bytes()
	countOffset := len(magic) + 4

	got := raw[countOffset : countOffset+4]
	want := []byte{1, 0, 0, 0}

	if !bytes.Equal(got, want) {
		t.Fatalf("expected little-endian node count %v, got %v", want, got)
	}
}
