package descriptor

import "strings"

// MemberSep separates the owner class from a field or method name.
const MemberSep = "->"

// Signature is a method's owner, name and parsed descriptor.
type Signature struct {
	Owner  string
	Name   string
	Params []Type
	Return Type
}

// ParseSignature builds a Signature from a class descriptor, a method name
// and a method descriptor.
func ParseSignature(classDesc, name, methodDesc string) Signature {
	params, ret := ParseMethodDescriptor(methodDesc)
	return Signature{
		Owner:  ClassName(classDesc),
		Name:   name,
		Params: params,
		Return: ret,
	}
}

// ParseFieldDescriptor splits "Lcom/Foo;->bar:I" into ("com.Foo", "bar").
// ok is false when the text has no owner/member separator.
func ParseFieldDescriptor(text string) (owner, field string, ok bool) {
	classPart, fieldPart, found := strings.Cut(strings.TrimSpace(text), MemberSep)
	if !found {
		return "", "", false
	}
	field, _, _ = strings.Cut(fieldPart, ":")
	return ownerName(classPart), field, true
}

// ParseMemberDescriptor splits an invocation target such as
// "Lcom/Foo;->bar(I)V" into ("com.Foo", "bar"). ok is false when the text
// has no owner/member separator.
func ParseMemberDescriptor(text string) (owner, member string, ok bool) {
	classPart, rest, found := strings.Cut(strings.TrimSpace(text), MemberSep)
	if !found {
		return "", "", false
	}
	member, _, _ = strings.Cut(rest, "(")
	member, _, _ = strings.Cut(member, ":")
	return ownerName(classPart), member, true
}

// ownerName strips the leading 'L' and trailing ';' from a class part.
func ownerName(classPart string) string {
	classPart = strings.TrimPrefix(classPart, "L")
	classPart, _, _ = strings.Cut(classPart, ":")
	classPart = strings.TrimSuffix(classPart, ";")
	return dotted(classPart)
}
