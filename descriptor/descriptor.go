// Package descriptor parses Dalvik type, field and method descriptors.
//
// The parsers never fail. Malformed input degrades to an empty parameter
// list, a void return type, an "unknown" primitive, or an absent
// owner/member pair, so callers can keep converting the rest of a method.
package descriptor

import (
	"fmt"
	"strings"
)

// Kind distinguishes the three shapes a Type can take.
type Kind uint8

const (
	KindPrimitive Kind = iota
	KindReference
	KindThis
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindReference:
		return "reference"
	case KindThis:
		return "this"
	}
	return "unknown"
}

var kindsByName = map[string]Kind{
	"primitive": KindPrimitive,
	"reference": KindReference,
	"this":      KindThis,
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if k > KindThis {
		return nil, fmt.Errorf("descriptor: invalid kind %d", uint8(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name written by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, ok := kindsByName[string(text)]
	if !ok {
		return fmt.Errorf("descriptor: unknown kind %q", text)
	}
	*k = kind
	return nil
}

// Type is a parsed type descriptor.
type Type struct {
	Kind Kind   `json:"kind" cbor:"1,keyasint"`
	Name string `json:"name" cbor:"2,keyasint"` // dotted class name or primitive keyword
	Dim  int    `json:"dim" cbor:"3,keyasint"`  // array depth
}

// Unknown is the name given to type codes outside the primitive table.
const Unknown = "unknown"

// primitives maps single-letter type codes to primitive keywords.
var primitives = map[byte]string{
	'V': "void",
	'Z': "boolean",
	'B': "byte",
	'S': "short",
	'C': "char",
	'I': "int",
	'J': "long",
	'F': "float",
	'D': "double",
}

// Void is the return type reported for descriptors that cannot be parsed.
var Void = Type{Kind: KindPrimitive, Name: "void"}

// This is the type bound to the receiver slot of instance methods.
var This = Type{Kind: KindThis, Name: "this"}

// Primitive returns the primitive type with the given keyword.
func Primitive(name string) Type {
	return Type{Kind: KindPrimitive, Name: name}
}

// Reference returns a reference type for a dotted class name.
func Reference(name string, dim int) Type {
	return Type{Kind: KindReference, Name: name, Dim: dim}
}

// PrimitiveName maps a type code to its keyword, or Unknown.
func PrimitiveName(code byte) string {
	if name, ok := primitives[code]; ok {
		return name
	}
	return Unknown
}

// IsWide reports whether values of t take two register slots.
func (t Type) IsWide() bool {
	return t.Kind == KindPrimitive && t.Dim == 0 && (t.Name == "long" || t.Name == "double")
}

// String renders t the way Java source would, e.g. "java.lang.String[]".
func (t Type) String() string {
	if t.Dim == 0 {
		return t.Name
	}
	return t.Name + strings.Repeat("[]", t.Dim)
}

// ParseMethodDescriptor parses "(params)return" into parameter types and a
// return type. Input that does not have that shape yields no parameters
// and a void return.
func ParseMethodDescriptor(text string) ([]Type, Type) {
	if !strings.HasPrefix(text, "(") {
		return nil, Void
	}
	closeIdx := strings.IndexByte(text, ')')
	if closeIdx < 0 {
		return nil, Void
	}
	paramText, retText := text[1:closeIdx], text[closeIdx+1:]

	var params []Type
	for i := 0; i < len(paramText); {
		t, next := scanType(paramText, i)
		params = append(params, t)
		i = next
	}

	if retText == "" {
		return params, Void
	}
	ret, _ := scanType(retText, 0)
	return params, ret
}

// ParseType parses a single field-type descriptor such as "I",
// "[Ljava/lang/String;" or "Lcom/Foo;".
func ParseType(text string) Type {
	if text == "" {
		return Type{Kind: KindPrimitive, Name: Unknown}
	}
	t, _ := scanType(text, 0)
	return t
}

// scanType reads one type starting at i and returns it with the index of
// the first byte after it. It always advances at least one byte.
func scanType(s string, i int) (Type, int) {
	dim := 0
	for i < len(s) && s[i] == '[' {
		dim++
		i++
	}
	if i >= len(s) {
		return Type{Kind: KindPrimitive, Name: Unknown, Dim: dim}, i
	}

	if s[i] == 'L' {
		end := strings.IndexByte(s[i:], ';')
		if end < 0 {
			// Unterminated class name; consume the rest.
			return Reference(dotted(s[i+1:]), dim), len(s)
		}
		return Reference(dotted(s[i+1:i+end]), dim), i + end + 1
	}

	return Type{Kind: KindPrimitive, Name: PrimitiveName(s[i]), Dim: dim}, i + 1
}

func dotted(s string) string {
	return strings.ReplaceAll(s, "/", ".")
}

// ClassName converts a class descriptor ("Lcom/Foo;") to a dotted name
// ("com.Foo"). Array and primitive descriptors render through Type.String.
func ClassName(desc string) string {
	desc = strings.TrimSpace(desc)
	if strings.HasPrefix(desc, "L") && strings.HasSuffix(desc, ";") {
		return dotted(desc[1 : len(desc)-1])
	}
	return ParseType(desc).String()
}
