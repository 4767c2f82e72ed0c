// Package serialize implements the binary circuit format: a versioned
// header followed by a linear sequence of tagged records, one per arena
// node in id order, then a tagged root record, using little-endian
// integers throughout (spec §6 states this explicitly).  Records carry no
// length prefix of their own; only byte strings inside a record do.
package serialize

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/trailofbits/circuitous-go/pkg/circuit"
)

// FormatVersion is the current binary format's version tag.  A reader
// rejects any version it does not recognize rather than guess at layout.
const FormatVersion uint32 = 1

const magic = "CIRGB"

// tag values identify a record's shape on the wire.  Unknown tags are
// rejected with their numeric value and byte offset per spec's
// DeserializeFailed policy.
type tag uint8

const (
	tagNode tag = iota + 1
	tagRoot
)

// ErrDeserializeFailed reports malformed input, always including the byte
// offset at which the problem was found.
type ErrDeserializeFailed struct {
	Offset int64
	Reason string
}

func (e *ErrDeserializeFailed) Error() string {
	return fmt.Sprintf("deserialize failed at offset %d: %s", e.Offset, e.Reason)
}

// Write encodes g to w: magic, version, node count, then one tagged
// record per node in arena order, then a root record.
func Write(w io.Writer, g *circuit.Graph) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(magic); err != nil {
		return err
	}

	if err := writeU32(bw, FormatVersion); err != nil {
		return err
	}

	if err := writeU32(bw, uint32(g.NumNodes())); err != nil {
		return err
	}

	for id := 0; id < g.NumNodes(); id++ {
		if err := writeNode(bw, g, circuit.Id(id)); err != nil {
			return err
		}
	}

	if err := bw.WriteByte(byte(tagRoot)); err != nil {
		return err
	}

	if err := writeU32(bw, uint32(g.Root())); err != nil {
		return err
	}

	return bw.Flush()
}

func writeNode(w *bufio.Writer, g *circuit.Graph, id circuit.Id) error {
	n := g.Node(id)

	if err := w.WriteByte(byte(tagNode)); err != nil {
		return err
	}

	if err := writeU32(w, uint32(n.Kind)); err != nil {
		return err
	}

	if err := writeU32(w, uint32(n.Data.BitWidth)); err != nil {
		return err
	}

	if err := writeBytes(w, n.Data.ConstantBits); err != nil {
		return err
	}

	if err := writeU32(w, uint32(n.Data.ExtractLow)); err != nil {
		return err
	}

	if err := writeU32(w, uint32(n.Data.ExtractHigh)); err != nil {
		return err
	}

	if err := writeBytes(w, []byte(n.Data.Register)); err != nil {
		return err
	}

	if err := writeU32(w, uint32(len(n.Operands))); err != nil {
		return err
	}

	for _, op := range n.Operands {
		if err := writeU32(w, uint32(op)); err != nil {
			return err
		}
	}

	return nil
}

func writeU32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)

	_, err := w.Write(buf[:])

	return err
}

func writeBytes(w *bufio.Writer, b []byte) error {
	if err := writeU32(w, uint32(len(b))); err != nil {
		return err
	}

	_, err := w.Write(b)

	return err
}

// Read decodes a Graph previously written by Write.
func Read(r io.Reader) (*circuit.Graph, error) {
	br := bufio.NewReader(r)

	var offset int64

	hdr := make([]byte, len(magic))
	if _, err := io.ReadFull(br, hdr); err != nil {
		return nil, &ErrDeserializeFailed{Offset: offset, Reason: "truncated magic"}
	}

	offset += int64(len(hdr))

	if string(hdr) != magic {
		return nil, &ErrDeserializeFailed{Offset: 0, Reason: "bad magic"}
	}

	version, err := readU32(br, &offset)
	if err != nil {
		return nil, err
	}

	if version != FormatVersion {
		return nil, &ErrDeserializeFailed{Offset: offset, Reason: fmt.Sprintf("unsupported version %d", version)}
	}

	count, err := readU32(br, &offset)
	if err != nil {
		return nil, err
	}

	g := circuit.NewGraph()

	for i := uint32(0); i < count; i++ {
		if err := readNode(br, g, &offset); err != nil {
			return nil, err
		}
	}

	t, err := readByte(br, &offset)
	if err != nil {
		return nil, err
	}

	if tag(t) != tagRoot {
		return nil, &ErrDeserializeFailed{Offset: offset, Reason: fmt.Sprintf("expected root record, got tag %d", t)}
	}

	root, err := readU32(br, &offset)
	if err != nil {
		return nil, err
	}

	g.SetRoot(circuit.Id(root))

	return g, nil
}

func readNode(r *bufio.Reader, g *circuit.Graph, offset *int64) error {
	t, err := readByte(r, offset)
	if err != nil {
		return err
	}

	if tag(t) != tagNode {
		return &ErrDeserializeFailed{Offset: *offset, Reason: fmt.Sprintf("unknown record tag %d", t)}
	}

	kind, err := readU32(r, offset)
	if err != nil {
		return err
	}

	width, err := readU32(r, offset)
	if err != nil {
		return err
	}

	constBits, err := readBytes(r, offset)
	if err != nil {
		return err
	}

	low, err := readU32(r, offset)
	if err != nil {
		return err
	}

	high, err := readU32(r, offset)
	if err != nil {
		return err
	}

	reg, err := readBytes(r, offset)
	if err != nil {
		return err
	}

	numOperands, err := readU32(r, offset)
	if err != nil {
		return err
	}

	operands := make([]circuit.Id, numOperands)
	for i := range operands {
		v, err := readU32(r, offset)
		if err != nil {
			return err
		}

		operands[i] = circuit.Id(v)
	}

	g.Add(circuit.Kind(kind), circuit.Immediate{
		BitWidth:     int(width),
		ConstantBits: constBits,
		ExtractLow:   int(low),
		ExtractHigh:  int(high),
		Register:     string(reg),
	}, operands...)

	return nil
}

func readByte(r *bufio.Reader, offset *int64) (byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return 0, &ErrDeserializeFailed{Offset: *offset, Reason: "truncated stream"}
	}

	*offset++

	return b, nil
}

func readU32(r *bufio.Reader, offset *int64) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, &ErrDeserializeFailed{Offset: *offset, Reason: "truncated integer"}
	}

	*offset += 4

	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readBytes(r *bufio.Reader, offset *int64) ([]byte, error) {
	n, err := readU32(r, offset)
	if err != nil {
		return nil, err
	}

	if n == 0 {
		return nil, nil
	}

	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, &ErrDeserializeFailed{Offset: *offset, Reason: "truncated byte string"}
	}

	*offset += int64(n)

	return buf, nil
}
