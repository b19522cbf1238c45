package ast

import (
	"encoding/binary"

	"github.com/chazu/dexast/descriptor"
)

// ---------------------------------------------------------------------------
// Deterministic binary serialization of the method AST.
//
// Encoding conventions:
//   - First byte: FormatVersion (0x01)
//   - Every node starts with its tag byte; an absent child is TagNone
//   - Integers: big-endian fixed-width (int64=8B, uint16=2B)
//   - Strings: uint32 big-endian length + UTF-8 bytes
//   - Types: kind byte + name string + uint16 dim
//   - Child nodes: serialized inline (flat)
// ---------------------------------------------------------------------------

// Serialize produces a deterministic byte serialization of a node tree.
func Serialize(node Node) []byte {
	s := &serializer{buf: make([]byte, 0, 256)}
	s.writeByte(FormatVersion)
	s.serializeNode(node)
	return s.buf
}

// SerializeMethod serializes a whole method: triple, flags, parameters,
// return type and body. Comments are reserved and not serialized.
func SerializeMethod(m *MethodAST) []byte {
	s := &serializer{buf: make([]byte, 0, 512)}
	s.writeByte(FormatVersion)
	s.writeByte(TagMethod)
	s.writeString(m.Triple.Class)
	s.writeString(m.Triple.Name)
	s.writeString(m.Triple.Descriptor)
	s.writeUint32(uint32(len(m.Flags)))
	for _, f := range m.Flags {
		s.writeString(f)
	}
	s.writeUint32(uint32(len(m.Params)))
	for _, p := range m.Params {
		s.writeString(p.Slot)
		s.writeType(p.Type)
	}
	s.writeType(m.Return)
	if m.Body == nil {
		s.writeByte(TagNone)
	} else {
		s.serializeNode(m.Body)
	}
	return s.buf
}

type serializer struct {
	buf []byte
}

func (s *serializer) writeByte(b byte) {
	s.buf = append(s.buf, b)
}

func (s *serializer) writeUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	s.buf = append(s.buf, b[:]...)
}

func (s *serializer) writeString(v string) {
	s.writeUint32(uint32(len(v)))
	s.buf = append(s.buf, v...)
}

func (s *serializer) writeType(t descriptor.Type) {
	s.writeByte(byte(t.Kind))
	s.writeString(t.Name)
	s.writeUint16(uint16(t.Dim))
}

func (s *serializer) writeNodes(nodes []Node) {
	s.writeUint32(uint32(len(nodes)))
	for _, n := range nodes {
		s.serializeNode(n)
	}
}

func (s *serializer) serializeNode(node Node) {
	switch n := node.(type) {
	case nil:
		s.writeByte(TagNone)

	case *Block:
		s.writeByte(TagBlock)
		s.writeNodes(n.Statements)

	case *ExprStmt:
		s.writeByte(TagExprStmt)
		s.serializeNode(n.Expr)

	case *Return:
		s.writeByte(TagReturn)
		s.serializeNode(n.Value)

	case *If:
		s.writeByte(TagIf)
		s.serializeNode(n.Cond)
		if n.Then == nil {
			s.writeByte(TagNone)
		} else {
			s.serializeNode(n.Then)
		}

	case *Goto:
		s.writeByte(TagGoto)
		s.writeString(n.Label)

	case *Assignment:
		s.writeByte(TagAssignment)
		s.serializeNode(n.Target)
		s.serializeNode(n.Value)

	case *BinaryExpr:
		s.writeByte(TagBinaryExpr)
		s.writeString(n.Op)
		s.serializeNode(n.Left)
		s.serializeNode(n.Right)

	case *UnaryExpr:
		s.writeByte(TagUnaryExpr)
		s.writeString(n.Op)
		s.serializeNode(n.Operand)

	case *Cast:
		s.writeByte(TagCast)
		s.writeType(n.To)
		s.serializeNode(n.Operand)

	case *Invocation:
		s.writeByte(TagInvocation)
		s.writeString(n.Owner)
		s.writeString(n.Member)
		s.serializeNode(n.Receiver)
		s.writeNodes(n.Args)

	case *FieldAccess:
		s.writeByte(TagFieldAccess)
		s.writeString(n.Owner)
		s.writeString(n.Field)
		s.serializeNode(n.Object)

	case *StaticFieldAccess:
		s.writeByte(TagStaticFieldAccess)
		s.writeString(n.Owner)
		s.writeString(n.Field)

	case *ArrayAccess:
		s.writeByte(TagArrayAccess)
		s.serializeNode(n.Array)
		s.serializeNode(n.Index)

	case *NewInstance:
		s.writeByte(TagNewInstance)
		s.writeString(n.Class)

	case *LocalRef:
		s.writeByte(TagLocalRef)
		s.writeString(n.Reg)

	case *ParamRef:
		s.writeByte(TagParamRef)
		s.writeString(n.Reg)

	case *ThisRef:
		s.writeByte(TagThisRef)

	case *IntLiteral:
		s.writeByte(TagIntLiteral)
		s.writeInt64(n.Value)

	case *StringLiteral:
		s.writeByte(TagStringLiteral)
		s.writeString(n.Value)

	case *Unknown:
		s.writeByte(TagUnknown)
		s.writeString(n.Raw)
	}
}
