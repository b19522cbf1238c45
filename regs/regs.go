// Package regs binds declared method parameters to Dalvik parameter
// registers and tracks per-register types during a method conversion.
package regs

import (
	"sort"
	"strconv"

	"github.com/chazu/dexast/descriptor"
)

// ReceiverSlot is the slot holding the implicit receiver of instance methods.
const ReceiverSlot = "p0"

// Parameter is a declared parameter bound to its first register slot.
type Parameter struct {
	Slot string          `json:"slot" cbor:"1,keyasint"`
	Type descriptor.Type `json:"type" cbor:"2,keyasint"`
}

// Width returns the number of consecutive slots the parameter occupies.
func (p Parameter) Width() int {
	if p.Type.IsWide() {
		return 2
	}
	return 1
}

// Binding is the result of assigning parameters to slots.
type Binding struct {
	Params   []Parameter
	NextSlot int // first slot index not taken by a parameter
}

// SlotName formats a parameter register index as "p<N>".
func SlotName(index int) string {
	return "p" + strconv.Itoa(index)
}

// Bind assigns slots to params. Instance methods get the receiver in p0
// and their declared parameters from p1; static methods start at p0.
// Wide primitives take two slots.
func Bind(params []descriptor.Type, static bool) Binding {
	bound := make([]Parameter, 0, len(params)+1)
	idx := 0
	if !static {
		bound = append(bound, Parameter{Slot: ReceiverSlot, Type: descriptor.This})
		idx = 1
	}

	for _, t := range params {
		p := Parameter{Slot: SlotName(idx), Type: t}
		bound = append(bound, p)
		idx += p.Width()
	}

	return Binding{Params: bound, NextSlot: idx}
}

// Table is the register type table for one method conversion. It is not
// safe for concurrent use; each conversion owns its own table.
type Table struct {
	types map[string]descriptor.Type
}

// NewTable seeds a table from bound parameters.
func NewTable(params []Parameter) *Table {
	t := &Table{types: make(map[string]descriptor.Type, len(params))}
	for _, p := range params {
		t.types[p.Slot] = p.Type
	}
	return t
}

// Get returns the current type of slot.
func (t *Table) Get(slot string) (descriptor.Type, bool) {
	typ, ok := t.types[slot]
	return typ, ok
}

// Set records typ as the type of slot. The receiver keeps its "this"
// type; Set reports false and leaves the table unchanged for it.
func (t *Table) Set(slot string, typ descriptor.Type) bool {
	if cur, ok := t.types[slot]; ok && cur.Kind == descriptor.KindThis {
		return false
	}
	t.types[slot] = typ
	return true
}

// Len returns the number of slots with a known type.
func (t *Table) Len() int {
	return len(t.types)
}

// Slots returns the known slots in sorted order.
func (t *Table) Slots() []string {
	slots := make([]string, 0, len(t.types))
	for s := range t.types {
		slots = append(slots, s)
	}
	sort.Strings(slots)
	return slots
}
