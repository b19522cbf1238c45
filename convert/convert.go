// Package convert assembles a MethodAST from a disassembled method.
//
// Conversion is pure: one call owns one register table, reads one
// instruction sequence and returns a fresh tree. Calls share nothing, so
// callers may convert methods concurrently.
package convert

import (
	"github.com/chazu/dexast/ast"
	"github.com/chazu/dexast/descriptor"
	"github.com/chazu/dexast/lift"
	"github.com/chazu/dexast/regs"
	"github.com/chazu/dexast/smali"
)

// BuildBody lifts instructions in order into a single Block. Instructions
// that produce no node are left out.
func BuildBody(instructions []smali.Instruction, params []regs.Parameter) *ast.Block {
	table := regs.NewTable(params)

	stmts := make([]ast.Node, 0, len(instructions))
	for _, ins := range instructions {
		if n := lift.Dispatch(ins, table); n != nil {
			stmts = append(stmts, n)
		}
	}
	return &ast.Block{Statements: stmts}
}

// ConvertMethod returns the AST of m, or nil when m has no body (external,
// abstract or native declarations).
func ConvertMethod(m *smali.Method, isStatic bool) *ast.MethodAST {
	if !m.HasBody() {
		return nil
	}

	paramTypes, ret := descriptor.ParseMethodDescriptor(m.Descriptor)
	binding := regs.Bind(paramTypes, isStatic)

	params := make([]ast.Param, len(binding.Params))
	for i, p := range binding.Params {
		params[i] = ast.Param{Slot: p.Slot, Type: p.Type}
	}

	return &ast.MethodAST{
		Triple: ast.Triple{
			Class:      descriptor.ClassName(m.Class),
			Name:       m.Name,
			Descriptor: m.Descriptor,
		},
		Flags:    descriptor.SplitAccessFlags(m.AccessFlags),
		Params:   params,
		Return:   ret,
		Body:     BuildBody(m.Instructions, binding.Params),
		Comments: []string{},
	}
}

// Convert is ConvertMethod with staticness taken from m's access flags.
func Convert(m *smali.Method) *ast.MethodAST {
	if m == nil {
		return nil
	}
	return ConvertMethod(m, descriptor.IsStatic(descriptor.SplitAccessFlags(m.AccessFlags)))
}
