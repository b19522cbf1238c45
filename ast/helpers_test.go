package ast

import "github.com/chazu/dexast/descriptor"

// sampleMethod builds a small instance method touching most node kinds.
func sampleMethod() *MethodAST {
	return &MethodAST{
		Triple: Triple{Class: "com.example.Foo", Name: "bar", Descriptor: "(I)V"},
		Flags:  []string{"public"},
		Params: []Param{
			{Slot: "p0", Type: descriptor.This},
			{Slot: "p1", Type: descriptor.Primitive("int")},
		},
		Return: descriptor.Void,
		Body: &Block{Statements: []Node{
			&Assignment{
				Target: &LocalRef{Reg: "v0"},
				Value:  &BinaryExpr{Op: "ADD", Left: &LocalRef{Reg: "v0"}, Right: &ParamRef{Reg: "p1"}},
			},
			&If{
				Cond: &UnaryExpr{Op: "==", Operand: &LocalRef{Reg: "v0"}},
				Then: &Goto{Label: "cond_0"},
			},
			&ExprStmt{Expr: &Invocation{
				Receiver: &ParamRef{Reg: "p0"},
				Owner:    "com.example.Foo",
				Member:   "baz",
				Args:     []Node{&LocalRef{Reg: "v0"}},
			}},
			&Return{},
		}},
		Comments: []string{},
	}
}
