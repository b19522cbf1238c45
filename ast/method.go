package ast

import "github.com/chazu/dexast/descriptor"

// Triple identifies a method by class, name and descriptor.
type Triple struct {
	Class      string `json:"class" cbor:"1,keyasint"`
	Name       string `json:"name" cbor:"2,keyasint"`
	Descriptor string `json:"descriptor" cbor:"3,keyasint"`
}

// String renders the triple as "com.Foo.bar(I)V".
func (t Triple) String() string {
	return t.Class + "." + t.Name + t.Descriptor
}

// Param is a parameter bound to its register slot.
type Param struct {
	Slot string          `json:"slot" cbor:"1,keyasint"`
	Type descriptor.Type `json:"type" cbor:"2,keyasint"`
}

// MethodAST is the converted form of one method.
type MethodAST struct {
	Triple   Triple
	Flags    []string
	Params   []Param
	Return   descriptor.Type
	Body     *Block
	Comments []string // reserved, always empty
}

// StatementCount returns the number of top-level statements in the body.
func (m *MethodAST) StatementCount() int {
	if m == nil || m.Body == nil {
		return 0
	}
	return len(m.Body.Statements)
}
