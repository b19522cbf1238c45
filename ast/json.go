package ast

import "encoding/json"

// jsonMethod is the JSON shape of a MethodAST.
type jsonMethod struct {
	Triple   Triple   `json:"triple"`
	Flags    []string `json:"flags"`
	Params   []Param  `json:"params"`
	Return   any      `json:"ret"`
	Body     any      `json:"body"`
	Comments []string `json:"comments"`
	Hash     string   `json:"hash"`
}

// MarshalJSON encodes the method with nodes as objects carrying a "type"
// discriminator. Map keys are sorted by encoding/json, so output is stable.
func (m MethodAST) MarshalJSON() ([]byte, error) {
	comments := m.Comments
	if comments == nil {
		comments = []string{}
	}
	return json.Marshal(jsonMethod{
		Triple:   m.Triple,
		Flags:    m.Flags,
		Params:   m.Params,
		Return:   m.Return,
		Body:     ToJSON(m.Body),
		Comments: comments,
		Hash:     HashHex(&m),
	})
}

// ToJSON converts a node into plain maps and slices ready for
// encoding/json. Absent nodes become nil.
func ToJSON(node Node) any {
	switch n := node.(type) {
	case nil:
		return nil
	case *Block:
		if n == nil {
			return nil
		}
		return obj(TagBlock, "statements", toJSONAll(n.Statements))
	case *ExprStmt:
		return obj(TagExprStmt, "expr", ToJSON(n.Expr))
	case *Return:
		return obj(TagReturn, "value", ToJSON(n.Value))
	case *If:
		var then any
		if n.Then != nil {
			then = ToJSON(n.Then)
		}
		return obj(TagIf, "cond", ToJSON(n.Cond), "then", then)
	case *Goto:
		return obj(TagGoto, "label", n.Label)
	case *Assignment:
		return obj(TagAssignment, "target", ToJSON(n.Target), "value", ToJSON(n.Value))
	case *BinaryExpr:
		return obj(TagBinaryExpr, "op", n.Op, "left", ToJSON(n.Left), "right", ToJSON(n.Right))
	case *UnaryExpr:
		return obj(TagUnaryExpr, "op", n.Op, "operand", ToJSON(n.Operand))
	case *Cast:
		return obj(TagCast, "to", n.To, "operand", ToJSON(n.Operand))
	case *Invocation:
		return obj(TagInvocation, "receiver", ToJSON(n.Receiver), "owner", n.Owner,
			"member", n.Member, "args", toJSONAll(n.Args))
	case *FieldAccess:
		return obj(TagFieldAccess, "object", ToJSON(n.Object), "owner", n.Owner, "field", n.Field)
	case *StaticFieldAccess:
		return obj(TagStaticFieldAccess, "owner", n.Owner, "field", n.Field)
	case *ArrayAccess:
		return obj(TagArrayAccess, "array", ToJSON(n.Array), "index", ToJSON(n.Index))
	case *NewInstance:
		return obj(TagNewInstance, "class", n.Class)
	case *LocalRef:
		return obj(TagLocalRef, "reg", n.Reg)
	case *ParamRef:
		return obj(TagParamRef, "reg", n.Reg)
	case *ThisRef:
		return obj(TagThisRef)
	case *IntLiteral:
		return obj(TagIntLiteral, "value", n.Value)
	case *StringLiteral:
		return obj(TagStringLiteral, "value", n.Value)
	case *Unknown:
		return obj(TagUnknown, "raw", n.Raw)
	}
	return nil
}

func toJSONAll(nodes []Node) []any {
	out := make([]any, len(nodes))
	for i, n := range nodes {
		out[i] = ToJSON(n)
	}
	return out
}

func obj(tag byte, kv ...any) map[string]any {
	m := map[string]any{"type": TagName(tag)}
	for i := 0; i+1 < len(kv); i += 2 {
		m[kv[i].(string)] = kv[i+1]
	}
	return m
}
