package lift

import (
	"strings"

	"github.com/chazu/dexast/ast"
	"github.com/chazu/dexast/descriptor"
	"github.com/chazu/dexast/regs"
)

// conditions maps a branch condition code to its operator.
var conditions = map[string]string{
	"eq": "==", "ne": "!=",
	"lt": "<", "le": "<=",
	"gt": ">", "ge": ">=",
	"eqz": "==", "nez": "!=",
	"ltz": "<", "lez": "<=",
	"gtz": ">", "gez": ">=",
}

// ConditionOperator returns the operator for a condition code such as "nez".
func ConditionOperator(code string) (string, bool) {
	op, ok := conditions[code]
	return op, ok
}

// buildReturn: return-void, return vA, return-wide vA, return-object vA.
func buildReturn(op, text string) ast.Node {
	ops := splitOperands(text)
	if op == "return-void" || len(ops) == 0 {
		return &ast.Return{}
	}
	return &ast.Return{Value: ClassifyOperand(ops[len(ops)-1])}
}

// buildCast: int-to-long vA, vB. The destination's type becomes the
// target type. The destination is always rendered as a local.
func buildCast(op, text string, table *regs.Table) ast.Node {
	ops := splitOperands(text)
	if len(ops) != 2 {
		return nil
	}
	_, toName, _ := strings.Cut(op, "-to-")
	to := descriptor.Primitive(toName)

	if table != nil {
		table.Set(ops[0], to)
	}
	return &ast.Assignment{
		Target: &ast.LocalRef{Reg: ops[0]},
		Value:  &ast.Cast{To: to, Operand: ClassifyOperand(ops[1])},
	}
}

// buildInvoke: invoke-virtual {vA, vB}, Lowner;->member(sig)ret. The
// argument list may also be a range "{vA .. vB}" or appear without braces.
func buildInvoke(op, text string) ast.Node {
	argTokens, target, ok := invokeOperands(text)
	if !ok {
		return nil
	}
	owner, member, ok := descriptor.ParseMemberDescriptor(target)
	if !ok {
		return nil
	}

	args := make([]ast.Node, 0, len(argTokens))
	for _, tok := range argTokens {
		args = append(args, ClassifyOperand(tok))
	}

	call := &ast.Invocation{Owner: owner, Member: member}
	if strings.Contains(op, "static") {
		call.Args = args
	} else {
		if len(args) == 0 {
			return nil
		}
		call.Receiver = args[0]
		call.Args = args[1:]
	}
	return &ast.ExprStmt{Expr: call}
}

// invokeOperands separates the argument registers from the call target.
func invokeOperands(text string) (args []string, target string, ok bool) {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "{") {
		end := strings.IndexByte(text, '}')
		if end < 0 {
			return nil, "", false
		}
		inner := strings.TrimSpace(text[1:end])
		target = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text[end+1:]), ","))
		if expanded, isRange := expandRange(inner); isRange {
			return expanded, target, true
		}
		if inner == "" {
			return []string{}, target, true
		}
		return splitOperands(inner), target, true
	}

	ops := splitOperands(text)
	if len(ops) == 0 {
		return nil, "", false
	}
	return ops[:len(ops)-1], ops[len(ops)-1], true
}

// buildFieldAccess: iget vA, vB, Lowner;->field:type. iput has the same
// operand layout and produces the same shape.
func buildFieldAccess(text string) ast.Node {
	ops := splitOperands(text)
	if len(ops) != 3 {
		return nil
	}
	owner, field, ok := descriptor.ParseFieldDescriptor(ops[2])
	if !ok {
		return nil
	}
	return &ast.Assignment{
		Target: ClassifyOperand(ops[0]),
		Value:  &ast.FieldAccess{Object: ClassifyOperand(ops[1]), Owner: owner, Field: field},
	}
}

// buildBinary covers arithmetic and bitwise opcodes in their 2addr and
// three-register forms. Only the bitwise family parses lit8/lit16
// immediates; arithmetic immediates are classified like any operand.
func buildBinary(op, text string, immediates bool) ast.Node {
	ops := splitOperands(text)
	name, _, _ := strings.Cut(op, "-")
	operator := strings.ToUpper(name)

	var left, right ast.Node
	switch len(ops) {
	case 2:
		left, right = ClassifyOperand(ops[0]), ClassifyOperand(ops[1])
	case 3:
		left = ClassifyOperand(ops[1])
		if immediates && strings.Contains(op, "/lit") {
			right = immediate(ops[2])
		} else {
			right = ClassifyOperand(ops[2])
		}
	default:
		return nil
	}

	return &ast.Assignment{
		Target: ClassifyOperand(ops[0]),
		Value:  &ast.BinaryExpr{Op: operator, Left: left, Right: right},
	}
}

// buildBranch: if-eqz vA, :label or if-eq vA, vB, :label. The fallthrough
// path produces no node.
func buildBranch(op, text string) ast.Node {
	code := strings.TrimPrefix(op, "if-")
	operator, ok := conditions[code]
	if !ok {
		return nil
	}
	ops := splitOperands(text)

	var cond ast.Node
	if strings.HasSuffix(code, "z") {
		if len(ops) != 2 {
			return nil
		}
		cond = &ast.UnaryExpr{Op: operator, Operand: ClassifyOperand(ops[0])}
	} else {
		if len(ops) != 3 {
			return nil
		}
		cond = &ast.BinaryExpr{Op: operator, Left: ClassifyOperand(ops[0]), Right: ClassifyOperand(ops[1])}
	}

	label := strings.Trim(ops[len(ops)-1], ":")
	return &ast.If{Cond: cond, Then: &ast.Goto{Label: label}}
}

// buildArrayAccess: aget vA, vArr, vIdx reads into vA; aput vA, vArr, vIdx
// stores vA.
func buildArrayAccess(op, text string) ast.Node {
	ops := splitOperands(text)
	if len(ops) != 3 {
		return nil
	}
	elem := &ast.ArrayAccess{Array: ClassifyOperand(ops[1]), Index: ClassifyOperand(ops[2])}

	if strings.HasPrefix(op, "aget") {
		return &ast.Assignment{Target: ClassifyOperand(ops[0]), Value: elem}
	}
	return &ast.Assignment{Target: elem, Value: ClassifyOperand(ops[0])}
}

// buildNewObject: new-instance vA, Lclass; or new-array vA, vSize, [type.
// The class descriptor is always the last operand; the destination's type
// becomes that class and it is rendered as a local.
func buildNewObject(text string, table *regs.Table) ast.Node {
	ops := splitOperands(text)
	if len(ops) < 2 {
		return nil
	}
	dest, classDesc := ops[0], ops[len(ops)-1]
	typ := descriptor.ParseType(classDesc)

	if table != nil {
		table.Set(dest, typ)
	}
	return &ast.Assignment{
		Target: &ast.LocalRef{Reg: dest},
		Value:  &ast.NewInstance{Class: descriptor.ClassName(classDesc)},
	}
}
