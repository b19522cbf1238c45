package ast

// Children returns the direct children of n in a fixed order. Absent
// optional children (a void return value, a static call's receiver) are
// omitted.
func Children(n Node) []Node {
	switch n := n.(type) {
	case *Block:
		return n.Statements
	case *ExprStmt:
		return []Node{n.Expr}
	case *Return:
		if n.Value == nil {
			return nil
		}
		return []Node{n.Value}
	case *If:
		if n.Then == nil {
			return []Node{n.Cond}
		}
		return []Node{n.Cond, n.Then}
	case *Assignment:
		return []Node{n.Target, n.Value}
	case *BinaryExpr:
		return []Node{n.Left, n.Right}
	case *UnaryExpr:
		return []Node{n.Operand}
	case *Cast:
		return []Node{n.Operand}
	case *Invocation:
		kids := make([]Node, 0, len(n.Args)+1)
		if n.Receiver != nil {
			kids = append(kids, n.Receiver)
		}
		return append(kids, n.Args...)
	case *FieldAccess:
		return []Node{n.Object}
	case *ArrayAccess:
		return []Node{n.Array, n.Index}
	}
	return nil
}

// Walk visits n and its descendants in pre-order. If fn returns false the
// children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, fn)
	}
}

// CountTags returns how many nodes of each tag appear under n.
func CountTags(n Node) map[byte]int {
	counts := make(map[byte]int)
	Walk(n, func(x Node) bool {
		counts[x.Tag()]++
		return true
	})
	return counts
}
