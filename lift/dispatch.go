// Package lift turns single disassembled instructions into AST statements.
//
// Dispatch routes each instruction to the builder for its family. Builders
// parse the operand text described in package smali and return nil when the
// operands do not have the expected shape. Only the cast and object-creation
// builders see the register table; they are the only ones that change it.
package lift

import (
	"github.com/chazu/dexast/ast"
	"github.com/chazu/dexast/regs"
	"github.com/chazu/dexast/smali"
)

// Dispatch builds the statement for one instruction, or returns nil when
// the instruction is dropped. table may be nil, in which case register
// types are not tracked.
func Dispatch(ins smali.Instruction, table *regs.Table) ast.Node {
	op := ins.Opcode
	text := ins.Operands

	switch ClassifyOpcode(op) {
	case FamilyReturn:
		return buildReturn(op, text)
	case FamilyCast:
		return buildCast(op, text, table)
	case FamilyInvoke:
		return buildInvoke(op, text)
	case FamilyFieldAccess:
		return buildFieldAccess(text)
	case FamilyArithmetic:
		return buildBinary(op, text, false)
	case FamilyBitwise:
		return buildBinary(op, text, true)
	case FamilyBranch:
		return buildBranch(op, text)
	case FamilyArrayAccess:
		return buildArrayAccess(op, text)
	case FamilyNewObject:
		return buildNewObject(text, table)
	case FamilyUnrecognized:
		return nil
	}
	return nil
}

// Recognized reports whether Dispatch has a builder for the opcode.
func Recognized(opcode string) bool {
	return ClassifyOpcode(opcode) != FamilyUnrecognized
}
