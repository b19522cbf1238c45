// Package smali defines the records a disassembler hands to the converter
// and readers that produce them from text listings, JSON lines and YAML.
//
// The converter parses operand text, so it is coupled to the layout the
// disassembler renders. The grammar assumed for Instruction.Operands is:
//
//   - operands are comma-separated, destination first
//   - registers are tokens prefixed "v" (locals) or "p" (parameters)
//   - invoke argument lists are brace-enclosed: "{v0, v1}" or "{v0 .. v3}"
//   - fields are "Lowner;->name:Type", methods "Lowner;->name(Params)Ret"
//   - branch targets are ":label"
//   - immediates are decimal or 0x-prefixed hex
//
// A front end that renders differently can still feed the converter by
// producing Instruction values in this form.
package smali

// Instruction is one disassembled instruction.
type Instruction struct {
	Opcode   string `json:"op" yaml:"op"`
	Operands string `json:"operands,omitempty" yaml:"operands,omitempty"`
}

// String renders the instruction as it appears in a listing.
func (i Instruction) String() string {
	if i.Operands == "" {
		return i.Opcode
	}
	return i.Opcode + " " + i.Operands
}

// Method is one disassembled method. Class is a type descriptor
// ("Lcom/Foo;"), Descriptor the method descriptor ("(I)V") and AccessFlags
// a space-separated modifier list ("public static").
type Method struct {
	Class        string        `json:"class" yaml:"class"`
	Name         string        `json:"name" yaml:"name"`
	Descriptor   string        `json:"descriptor" yaml:"descriptor"`
	AccessFlags  string        `json:"access_flags" yaml:"access_flags"`
	Instructions []Instruction `json:"instructions" yaml:"instructions"`
	External     bool          `json:"external,omitempty" yaml:"external,omitempty"`
}

// HasBody reports whether the method carries retrievable code.
func (m *Method) HasBody() bool {
	return m != nil && !m.External
}

// Body returns the method's instructions, or nil when it has no body.
func (m *Method) Body() []Instruction {
	if !m.HasBody() {
		return nil
	}
	return m.Instructions
}

// Key returns the "Lcom/Foo;->bar(I)V" form identifying the method.
func (m *Method) Key() string {
	return m.Class + "->" + m.Name + m.Descriptor
}
