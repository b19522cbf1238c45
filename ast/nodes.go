// Package ast defines the tree produced from a disassembled method body,
// together with its deterministic encodings: a binary serialization for
// content hashing, a bracket text rendering and token stream for
// embeddings, JSON, and a CBOR wire form for caching.
package ast

import "github.com/chazu/dexast/descriptor"

// ---------------------------------------------------------------------------
// Method AST types.
//
// Nodes carry no positions or generated identifiers, so converting the same
// method twice yields identical trees. Nodes are not mutated after
// construction; only the statement list of a Block grows during assembly.
// ---------------------------------------------------------------------------

// Node is the interface implemented by all AST nodes.
type Node interface {
	Tag() byte
	node() // marker method
}

// ---------------------------------------------------------------------------
// Statement nodes
// ---------------------------------------------------------------------------

// Block is an ordered statement list.
type Block struct {
	Statements []Node
}

// ExprStmt evaluates an expression for its effect.
type ExprStmt struct {
	Expr Node
}

// Return exits the method. Value is nil for return-void.
type Return struct {
	Value Node
}

// If jumps to Then.Label when Cond holds. Fallthrough is implicit.
type If struct {
	Cond Node
	Then *Goto
}

// Goto names a branch target label without its leading ':'.
type Goto struct {
	Label string
}

// Assignment stores Value into Target.
type Assignment struct {
	Target Node
	Value  Node
}

func (*Block) Tag() byte      { return TagBlock }
func (*ExprStmt) Tag() byte   { return TagExprStmt }
func (*Return) Tag() byte     { return TagReturn }
func (*If) Tag() byte         { return TagIf }
func (*Goto) Tag() byte       { return TagGoto }
func (*Assignment) Tag() byte { return TagAssignment }

func (*Block) node()      {}
func (*ExprStmt) node()   {}
func (*Return) node()     {}
func (*If) node()         {}
func (*Goto) node()       {}
func (*Assignment) node() {}

// ---------------------------------------------------------------------------
// Expression nodes
// ---------------------------------------------------------------------------

// BinaryExpr applies Op to two operands. Op is an upper-cased opcode
// family ("ADD", "SHL") or a comparison symbol ("==", "<").
type BinaryExpr struct {
	Op    string
	Left  Node
	Right Node
}

// UnaryExpr applies a comparison against zero to one operand.
type UnaryExpr struct {
	Op      string
	Operand Node
}

// Cast converts Operand to a primitive type.
type Cast struct {
	To      descriptor.Type
	Operand Node
}

// Invocation calls Owner.Member. Receiver is nil for static calls.
type Invocation struct {
	Receiver Node
	Owner    string
	Member   string
	Args     []Node
}

// FieldAccess reads an instance field of Object.
type FieldAccess struct {
	Object Node
	Owner  string
	Field  string
}

// StaticFieldAccess names a class field without a receiver.
type StaticFieldAccess struct {
	Owner string
	Field string
}

// ArrayAccess indexes into an array.
type ArrayAccess struct {
	Array Node
	Index Node
}

// NewInstance allocates an object (or array) of Class.
type NewInstance struct {
	Class string
}

func (*BinaryExpr) Tag() byte        { return TagBinaryExpr }
func (*UnaryExpr) Tag() byte         { return TagUnaryExpr }
func (*Cast) Tag() byte              { return TagCast }
func (*Invocation) Tag() byte        { return TagInvocation }
func (*FieldAccess) Tag() byte       { return TagFieldAccess }
func (*StaticFieldAccess) Tag() byte { return TagStaticFieldAccess }
func (*ArrayAccess) Tag() byte       { return TagArrayAccess }
func (*NewInstance) Tag() byte       { return TagNewInstance }

func (*BinaryExpr) node()        {}
func (*UnaryExpr) node()         {}
func (*Cast) node()              {}
func (*Invocation) node()        {}
func (*FieldAccess) node()       {}
func (*StaticFieldAccess) node() {}
func (*ArrayAccess) node()       {}
func (*NewInstance) node()       {}

// ---------------------------------------------------------------------------
// Leaf nodes
// ---------------------------------------------------------------------------

// LocalRef references a local register (v0, v1, ...).
type LocalRef struct{ Reg string }

// ParamRef references a parameter register (p0, p1, ...).
type ParamRef struct{ Reg string }

// ThisRef is the literal receiver reference.
type ThisRef struct{}

// IntLiteral is an integer constant.
type IntLiteral struct{ Value int64 }

// StringLiteral is a string constant without its quotes.
type StringLiteral struct{ Value string }

// Unknown keeps an operand that fits no other kind, for diagnostics.
type Unknown struct{ Raw string }

func (*LocalRef) Tag() byte      { return TagLocalRef }
func (*ParamRef) Tag() byte      { return TagParamRef }
func (*ThisRef) Tag() byte       { return TagThisRef }
func (*IntLiteral) Tag() byte    { return TagIntLiteral }
func (*StringLiteral) Tag() byte { return TagStringLiteral }
func (*Unknown) Tag() byte       { return TagUnknown }

func (*LocalRef) node()      {}
func (*ParamRef) node()      {}
func (*ThisRef) node()       {}
func (*IntLiteral) node()    {}
func (*StringLiteral) node() {}
func (*Unknown) node()       {}
