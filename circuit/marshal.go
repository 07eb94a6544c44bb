package circuit

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	miter "github.com/go-eda/miter"
)

// Compiled circuits serialize to a small binary artifact: a fixed header
// carrying a magic number, the producing version and the body length,
// followed by a deterministic CBOR body. Expression nodes are interface
// values, so the codec registers every concrete node type under a stable
// CBOR tag.

const artifactMagic = uint32(0x4d495452) // "MITR"

const headerLen = 4 + 4 + 4 + 8

type artifactHeader struct {
	magic   uint32
	major   uint32
	minor   uint32
	bodyLen uint64
}

func (h *artifactHeader) toBytes() []byte {
	buf := make([]byte, 0, headerLen+h.bodyLen)
	buf = binary.LittleEndian.AppendUint32(buf, h.magic)
	buf = binary.LittleEndian.AppendUint32(buf, h.major)
	buf = binary.LittleEndian.AppendUint32(buf, h.minor)
	buf = binary.LittleEndian.AppendUint64(buf, h.bodyLen)
	return buf
}

func (h *artifactHeader) fromBytes(buf []byte) {
	h.magic = binary.LittleEndian.Uint32(buf[:4])
	h.major = binary.LittleEndian.Uint32(buf[4:8])
	h.minor = binary.LittleEndian.Uint32(buf[8:12])
	h.bodyLen = binary.LittleEndian.Uint64(buf[12:20])
}

type serializedCircuit struct {
	Name      string
	Inputs    []Port
	Registers []Register
	Outputs   []Output
}

// IsArtifact reports whether data begins with the circuit artifact
// header. Callers use it to tell artifacts apart from netlist sources.
func IsArtifact(data []byte) bool {
	return len(data) >= 4 && binary.LittleEndian.Uint32(data[:4]) == artifactMagic
}

// ToBytes serializes the circuit.
func (c *Circuit) ToBytes() ([]byte, error) {
	enc, err := cbor.CoreDetEncOptions().EncModeWithTags(getTagSet())
	if err != nil {
		return nil, err
	}
	var body bytes.Buffer
	if err := enc.NewEncoder(&body).Encode(&serializedCircuit{
		Name:      c.name,
		Inputs:    c.inputs,
		Registers: c.regs,
		Outputs:   c.outs,
	}); err != nil {
		return nil, err
	}

	h := artifactHeader{
		magic:   artifactMagic,
		major:   uint32(miter.Version.Major),
		minor:   uint32(miter.Version.Minor),
		bodyLen: uint64(body.Len()),
	}
	return append(h.toBytes(), body.Bytes()...), nil
}

// FromBytes deserializes a circuit and returns the number of bytes read.
// The artifact is recompiled on load, so a corrupted body surfaces as a
// compile error rather than a malformed circuit.
func (c *Circuit) FromBytes(data []byte) (int, error) {
	if len(data) < headerLen {
		return 0, errors.New("circuit: artifact shorter than its header")
	}
	var h artifactHeader
	h.fromBytes(data)
	if h.magic != artifactMagic {
		return 0, errors.New("circuit: not a circuit artifact")
	}
	if h.major != uint32(miter.Version.Major) {
		return 0, fmt.Errorf("circuit: artifact written by version %d.%d, want major %d", h.major, h.minor, miter.Version.Major)
	}
	if uint64(len(data)-headerLen) < h.bodyLen {
		return 0, errors.New("circuit: artifact body truncated")
	}

	dm, err := cbor.DecOptions{
		MaxArrayElements: 1 << 20,
		MaxMapPairs:      1 << 20,
	}.DecModeWithTags(getTagSet())
	if err != nil {
		return 0, err
	}
	var s serializedCircuit
	if err := dm.NewDecoder(bytes.NewReader(data[headerLen : headerLen+int(h.bodyLen)])).Decode(&s); err != nil {
		return 0, err
	}

	// the decoder may hand interface fields back as pointers to the
	// registered node types
	for i := range s.Registers {
		s.Registers[i].Next = normalizeExpr(s.Registers[i].Next)
	}
	for i := range s.Outputs {
		s.Outputs[i].Expr = normalizeExpr(s.Outputs[i].Expr)
	}

	// reset muxes are already part of the stored next-state trees
	cc, err := compile(s.Name, s.Inputs, s.Registers, s.Outputs, false)
	if err != nil {
		return 0, err
	}
	*c = *cc
	return headerLen + int(h.bodyLen), nil
}

// WriteTo implements io.WriterTo.
func (c *Circuit) WriteTo(w io.Writer) (int64, error) {
	buf, err := c.ToBytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(buf)
	return int64(n), err
}

// ReadFrom implements io.ReaderFrom.
func (c *Circuit) ReadFrom(r io.Reader) (int64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return int64(len(data)), err
	}
	n, err := c.FromBytes(data)
	return int64(n), err
}

func normalizeExpr(e Expr) Expr {
	switch n := e.(type) {
	case nil:
		return nil
	case *Const:
		return *n
	case *Ref:
		return *n
	case *Unary:
		return Unary{Op: n.Op, X: normalizeExpr(n.X)}
	case *Binary:
		return Binary{Op: n.Op, X: normalizeExpr(n.X), Y: normalizeExpr(n.Y)}
	case *Mux:
		return Mux{Sel: normalizeExpr(n.Sel), T: normalizeExpr(n.T), E: normalizeExpr(n.E)}
	case *Slice:
		return Slice{X: normalizeExpr(n.X), Hi: n.Hi, Lo: n.Lo}
	case Unary:
		return Unary{Op: n.Op, X: normalizeExpr(n.X)}
	case Binary:
		return Binary{Op: n.Op, X: normalizeExpr(n.X), Y: normalizeExpr(n.Y)}
	case Mux:
		return Mux{Sel: normalizeExpr(n.Sel), T: normalizeExpr(n.T), E: normalizeExpr(n.E)}
	case Slice:
		return Slice{X: normalizeExpr(n.X), Hi: n.Hi, Lo: n.Lo}
	default:
		return e
	}
}

func getTagSet() cbor.TagSet {
	ts := cbor.NewTagSet()
	// https://www.iana.org/assignments/cbor-tags/cbor-tags.xhtml
	// 65536-15309735 Unassigned
	tagNum := uint64(5310021)
	addType := func(t reflect.Type) {
		if err := ts.Add(
			cbor.TagOptions{EncTag: cbor.EncTagRequired, DecTag: cbor.DecTagRequired},
			t,
			tagNum,
		); err != nil {
			panic(err)
		}
		tagNum++
	}

	addType(reflect.TypeOf(Const{}))
	addType(reflect.TypeOf(Ref{}))
	addType(reflect.TypeOf(Unary{}))
	addType(reflect.TypeOf(Binary{}))
	addType(reflect.TypeOf(Mux{}))
	addType(reflect.TypeOf(Slice{}))

	return ts
}
