package ast

import (
	"strconv"
	"strings"

	"github.com/chazu/dexast/descriptor"
)

// ---------------------------------------------------------------------------
// Bracket rendering.
//
// Produces the nested-list text form the embedding side tokenizes, e.g.
//
//	['IfStatement', ['UnaryExpression', '==', ['Local', 'v0']], ['GotoStatement', 'L1']]
//
// Strings are single-quoted, absent children print as None, and
// owner/member pairs print as tuples.
// ---------------------------------------------------------------------------

// Render returns the bracket text of a node.
func Render(n Node) string {
	var b strings.Builder
	renderNode(&b, n)
	return b.String()
}

// RenderMethod returns the bracket text of a whole method, with keys in
// sorted order: body, comments, flags, params, ret, triple.
func RenderMethod(m *MethodAST) string {
	var b strings.Builder
	b.WriteString("{'body': ")
	if m.Body == nil {
		b.WriteString("None")
	} else {
		renderNode(&b, m.Body)
	}

	b.WriteString(", 'comments': ")
	renderStrings(&b, m.Comments)

	b.WriteString(", 'flags': ")
	renderStrings(&b, m.Flags)

	b.WriteString(", 'params': [")
	for i, p := range m.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("[")
		renderTypeName(&b, p.Type)
		b.WriteString(", ['Local', ")
		quote(&b, p.Slot)
		b.WriteString("]]")
	}
	b.WriteString("]")

	b.WriteString(", 'ret': ")
	renderTypeName(&b, m.Return)

	b.WriteString(", 'triple': (")
	quote(&b, m.Triple.Class)
	b.WriteString(", ")
	quote(&b, m.Triple.Name)
	b.WriteString(", ")
	quote(&b, m.Triple.Descriptor)
	b.WriteString(")}")
	return b.String()
}

func renderTypeName(b *strings.Builder, t descriptor.Type) {
	b.WriteString("['TypeName', (")
	quote(b, t.Name)
	b.WriteString(", ")
	b.WriteString(strconv.Itoa(t.Dim))
	b.WriteString(")]")
}

func renderStrings(b *strings.Builder, ss []string) {
	b.WriteString("[")
	for i, s := range ss {
		if i > 0 {
			b.WriteString(", ")
		}
		quote(b, s)
	}
	b.WriteString("]")
}

func quote(b *strings.Builder, s string) {
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
}

// open writes "['Name'"; the caller writes the remaining items and the
// closing bracket is added by renderNode.
func open(b *strings.Builder, tag byte) {
	b.WriteString("[")
	quote(b, TagName(tag))
}

func item(b *strings.Builder) {
	b.WriteString(", ")
}

func pair(b *strings.Builder, a, c string) {
	b.WriteString("(")
	quote(b, a)
	b.WriteString(", ")
	quote(b, c)
	b.WriteString(")")
}

func renderNode(b *strings.Builder, node Node) {
	switch n := node.(type) {
	case nil:
		b.WriteString("None")
		return

	case *Block:
		open(b, TagBlock)
		item(b)
		b.WriteString("None, [")
		for i, s := range n.Statements {
			if i > 0 {
				b.WriteString(", ")
			}
			renderNode(b, s)
		}
		b.WriteString("]")

	case *ExprStmt:
		open(b, TagExprStmt)
		item(b)
		renderNode(b, n.Expr)

	case *Return:
		open(b, TagReturn)
		item(b)
		renderNode(b, n.Value)

	case *If:
		open(b, TagIf)
		item(b)
		renderNode(b, n.Cond)
		item(b)
		if n.Then == nil {
			b.WriteString("None")
		} else {
			renderNode(b, n.Then)
		}

	case *Goto:
		open(b, TagGoto)
		item(b)
		quote(b, n.Label)

	case *Assignment:
		open(b, TagAssignment)
		item(b)
		renderNode(b, n.Target)
		item(b)
		renderNode(b, n.Value)

	case *BinaryExpr:
		open(b, TagBinaryExpr)
		item(b)
		quote(b, n.Op)
		item(b)
		renderNode(b, n.Left)
		item(b)
		renderNode(b, n.Right)

	case *UnaryExpr:
		open(b, TagUnaryExpr)
		item(b)
		quote(b, n.Op)
		item(b)
		renderNode(b, n.Operand)

	case *Cast:
		open(b, TagCast)
		item(b)
		quote(b, strings.ToUpper(n.To.String()))
		item(b)
		renderNode(b, n.Operand)

	case *Invocation:
		open(b, TagInvocation)
		item(b)
		renderNode(b, n.Receiver)
		item(b)
		pair(b, n.Owner, n.Member)
		b.WriteString(", [")
		for i, a := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			renderNode(b, a)
		}
		b.WriteString("]")

	case *FieldAccess:
		open(b, TagFieldAccess)
		item(b)
		renderNode(b, n.Object)
		item(b)
		pair(b, n.Owner, n.Field)

	case *StaticFieldAccess:
		open(b, TagStaticFieldAccess)
		item(b)
		quote(b, n.Owner)
		item(b)
		quote(b, n.Field)

	case *ArrayAccess:
		open(b, TagArrayAccess)
		item(b)
		renderNode(b, n.Array)
		item(b)
		renderNode(b, n.Index)

	case *NewInstance:
		open(b, TagNewInstance)
		item(b)
		quote(b, n.Class)

	case *LocalRef:
		open(b, TagLocalRef)
		item(b)
		quote(b, n.Reg)

	case *ParamRef:
		open(b, TagParamRef)
		item(b)
		quote(b, n.Reg)

	case *ThisRef:
		open(b, TagThisRef)

	case *IntLiteral:
		open(b, TagIntLiteral)
		item(b)
		b.WriteString(strconv.FormatInt(n.Value, 10))

	case *StringLiteral:
		open(b, TagStringLiteral)
		item(b)
		quote(b, n.Value)

	case *Unknown:
		open(b, TagUnknown)
		item(b)
		quote(b, n.Raw)

	default:
		b.WriteString("None")
		return
	}
	b.WriteString("]")
}
