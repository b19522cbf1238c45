package ast

import (
	"errors"
	"fmt"

	"github.com/chazu/dexast/descriptor"
	"github.com/fxamacker/cbor/v2"
)

// ErrMalformed is returned when a wire blob does not describe a valid tree.
var ErrMalformed = errors.New("ast: malformed wire node")

// cborEncMode uses canonical options so equal trees encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ast: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// wireNode is the uniform shape every node takes on the wire. Nil entries
// in Kids mark absent children.
type wireNode struct {
	Tag  byte             `cbor:"1,keyasint"`
	Strs []string         `cbor:"2,keyasint,omitempty"`
	Int  int64            `cbor:"3,keyasint,omitempty"`
	Type *descriptor.Type `cbor:"4,keyasint,omitempty"`
	Kids []*wireNode      `cbor:"5,keyasint,omitempty"`
}

// wireMethod is the CBOR envelope of a MethodAST.
type wireMethod struct {
	Version  string          `cbor:"1,keyasint"`
	Triple   Triple          `cbor:"2,keyasint"`
	Flags    []string        `cbor:"3,keyasint"`
	Params   []Param         `cbor:"4,keyasint"`
	Return   descriptor.Type `cbor:"5,keyasint"`
	Body     *wireNode       `cbor:"6,keyasint"`
	Comments []string        `cbor:"7,keyasint"`
}

// MarshalMethod serializes a MethodAST to CBOR bytes.
func MarshalMethod(m *MethodAST) ([]byte, error) {
	w := wireMethod{
		Version:  WireVersion,
		Triple:   m.Triple,
		Flags:    m.Flags,
		Params:   m.Params,
		Return:   m.Return,
		Comments: m.Comments,
	}
	if m.Body != nil {
		w.Body = toWire(m.Body)
	}
	return cborEncMode.Marshal(&w)
}

// UnmarshalMethod deserializes a MethodAST from CBOR bytes. It also returns
// the wire version recorded in the blob.
func UnmarshalMethod(data []byte) (*MethodAST, string, error) {
	var w wireMethod
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, "", fmt.Errorf("ast: unmarshal method: %w", err)
	}

	m := &MethodAST{
		Triple:   w.Triple,
		Flags:    w.Flags,
		Params:   w.Params,
		Return:   w.Return,
		Comments: w.Comments,
	}
	if m.Comments == nil {
		m.Comments = []string{}
	}
	if w.Body != nil {
		n, err := fromWire(w.Body)
		if err != nil {
			return nil, w.Version, err
		}
		block, ok := n.(*Block)
		if !ok {
			return nil, w.Version, fmt.Errorf("%w: body tag 0x%02X", ErrMalformed, w.Body.Tag)
		}
		m.Body = block
	}
	return m, w.Version, nil
}

func toWireAll(nodes []Node) []*wireNode {
	out := make([]*wireNode, len(nodes))
	for i, n := range nodes {
		out[i] = toWire(n)
	}
	return out
}

func toWire(node Node) *wireNode {
	switch n := node.(type) {
	case nil:
		return nil
	case *Block:
		return &wireNode{Tag: TagBlock, Kids: toWireAll(n.Statements)}
	case *ExprStmt:
		return &wireNode{Tag: TagExprStmt, Kids: []*wireNode{toWire(n.Expr)}}
	case *Return:
		return &wireNode{Tag: TagReturn, Kids: []*wireNode{toWire(n.Value)}}
	case *If:
		var then *wireNode
		if n.Then != nil {
			then = toWire(n.Then)
		}
		return &wireNode{Tag: TagIf, Kids: []*wireNode{toWire(n.Cond), then}}
	case *Goto:
		return &wireNode{Tag: TagGoto, Strs: []string{n.Label}}
	case *Assignment:
		return &wireNode{Tag: TagAssignment, Kids: []*wireNode{toWire(n.Target), toWire(n.Value)}}
	case *BinaryExpr:
		return &wireNode{Tag: TagBinaryExpr, Strs: []string{n.Op}, Kids: []*wireNode{toWire(n.Left), toWire(n.Right)}}
	case *UnaryExpr:
		return &wireNode{Tag: TagUnaryExpr, Strs: []string{n.Op}, Kids: []*wireNode{toWire(n.Operand)}}
	case *Cast:
		to := n.To
		return &wireNode{Tag: TagCast, Type: &to, Kids: []*wireNode{toWire(n.Operand)}}
	case *Invocation:
		kids := append([]*wireNode{toWire(n.Receiver)}, toWireAll(n.Args)...)
		return &wireNode{Tag: TagInvocation, Strs: []string{n.Owner, n.Member}, Kids: kids}
	case *FieldAccess:
		return &wireNode{Tag: TagFieldAccess, Strs: []string{n.Owner, n.Field}, Kids: []*wireNode{toWire(n.Object)}}
	case *StaticFieldAccess:
		return &wireNode{Tag: TagStaticFieldAccess, Strs: []string{n.Owner, n.Field}}
	case *ArrayAccess:
		return &wireNode{Tag: TagArrayAccess, Kids: []*wireNode{toWire(n.Array), toWire(n.Index)}}
	case *NewInstance:
		return &wireNode{Tag: TagNewInstance, Strs: []string{n.Class}}
	case *LocalRef:
		return &wireNode{Tag: TagLocalRef, Strs: []string{n.Reg}}
	case *ParamRef:
		return &wireNode{Tag: TagParamRef, Strs: []string{n.Reg}}
	case *ThisRef:
		return &wireNode{Tag: TagThisRef}
	case *IntLiteral:
		return &wireNode{Tag: TagIntLiteral, Int: n.Value}
	case *StringLiteral:
		return &wireNode{Tag: TagStringLiteral, Strs: []string{n.Value}}
	case *Unknown:
		return &wireNode{Tag: TagUnknown, Strs: []string{n.Raw}}
	}
	return nil
}

// shape checks that w has exactly the given number of strings and at least
// minKids children.
func (w *wireNode) shape(strs, minKids int) error {
	if len(w.Strs) != strs || len(w.Kids) < minKids {
		return fmt.Errorf("%w: tag 0x%02X has %d strings and %d children",
			ErrMalformed, w.Tag, len(w.Strs), len(w.Kids))
	}
	return nil
}

func fromWireAll(ws []*wireNode) ([]Node, error) {
	out := make([]Node, 0, len(ws))
	for _, w := range ws {
		n, err := fromWire(w)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// fromWireKids decodes exactly the first n children.
func fromWireKids(w *wireNode, n int) ([]Node, error) {
	if err := w.shape(len(w.Strs), n); err != nil {
		return nil, err
	}
	return fromWireAll(w.Kids[:n])
}

func fromWire(w *wireNode) (Node, error) {
	if w == nil {
		return nil, nil
	}

	switch w.Tag {
	case TagBlock:
		stmts, err := fromWireAll(w.Kids)
		if err != nil {
			return nil, err
		}
		return &Block{Statements: stmts}, nil

	case TagExprStmt:
		kids, err := fromWireKids(w, 1)
		if err != nil {
			return nil, err
		}
		return &ExprStmt{Expr: kids[0]}, nil

	case TagReturn:
		kids, err := fromWireKids(w, 1)
		if err != nil {
			return nil, err
		}
		return &Return{Value: kids[0]}, nil

	case TagIf:
		kids, err := fromWireKids(w, 2)
		if err != nil {
			return nil, err
		}
		n := &If{Cond: kids[0]}
		if kids[1] != nil {
			g, ok := kids[1].(*Goto)
			if !ok {
				return nil, fmt.Errorf("%w: if target tag 0x%02X", ErrMalformed, kids[1].Tag())
			}
			n.Then = g
		}
		return n, nil

	case TagGoto:
		if err := w.shape(1, 0); err != nil {
			return nil, err
		}
		return &Goto{Label: w.Strs[0]}, nil

	case TagAssignment:
		kids, err := fromWireKids(w, 2)
		if err != nil {
			return nil, err
		}
		return &Assignment{Target: kids[0], Value: kids[1]}, nil

	case TagBinaryExpr:
		if err := w.shape(1, 2); err != nil {
			return nil, err
		}
		kids, err := fromWireKids(w, 2)
		if err != nil {
			return nil, err
		}
		return &BinaryExpr{Op: w.Strs[0], Left: kids[0], Right: kids[1]}, nil

	case TagUnaryExpr:
		if err := w.shape(1, 1); err != nil {
			return nil, err
		}
		kids, err := fromWireKids(w, 1)
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{Op: w.Strs[0], Operand: kids[0]}, nil

	case TagCast:
		if w.Type == nil {
			return nil, fmt.Errorf("%w: cast without type", ErrMalformed)
		}
		kids, err := fromWireKids(w, 1)
		if err != nil {
			return nil, err
		}
		return &Cast{To: *w.Type, Operand: kids[0]}, nil

	case TagInvocation:
		if err := w.shape(2, 1); err != nil {
			return nil, err
		}
		recv, err := fromWire(w.Kids[0])
		if err != nil {
			return nil, err
		}
		args, err := fromWireAll(w.Kids[1:])
		if err != nil {
			return nil, err
		}
		return &Invocation{Receiver: recv, Owner: w.Strs[0], Member: w.Strs[1], Args: args}, nil

	case TagFieldAccess:
		if err := w.shape(2, 1); err != nil {
			return nil, err
		}
		kids, err := fromWireKids(w, 1)
		if err != nil {
			return nil, err
		}
		return &FieldAccess{Object: kids[0], Owner: w.Strs[0], Field: w.Strs[1]}, nil

	case TagStaticFieldAccess:
		if err := w.shape(2, 0); err != nil {
			return nil, err
		}
		return &StaticFieldAccess{Owner: w.Strs[0], Field: w.Strs[1]}, nil

	case TagArrayAccess:
		kids, err := fromWireKids(w, 2)
		if err != nil {
			return nil, err
		}
		return &ArrayAccess{Array: kids[0], Index: kids[1]}, nil

	case TagNewInstance:
		if err := w.shape(1, 0); err != nil {
			return nil, err
		}
		return &NewInstance{Class: w.Strs[0]}, nil

	case TagLocalRef:
		if err := w.shape(1, 0); err != nil {
			return nil, err
		}
		return &LocalRef{Reg: w.Strs[0]}, nil

	case TagParamRef:
		if err := w.shape(1, 0); err != nil {
			return nil, err
		}
		return &ParamRef{Reg: w.Strs[0]}, nil

	case TagThisRef:
		return &ThisRef{}, nil

	case TagIntLiteral:
		return &IntLiteral{Value: w.Int}, nil

	case TagStringLiteral:
		if err := w.shape(1, 0); err != nil {
			return nil, err
		}
		return &StringLiteral{Value: w.Strs[0]}, nil

	case TagUnknown:
		if err := w.shape(1, 0); err != nil {
			return nil, err
		}
		return &Unknown{Raw: w.Strs[0]}, nil
	}

	return nil, fmt.Errorf("%w: unknown tag 0x%02X", ErrMalformed, w.Tag)
}
