package descriptor

import "strings"

// accessFlag pairs a DEX access flag bit with its modifier keyword.
type accessFlag struct {
	bit  uint32
	name string
}

// accessFlags lists DEX access flags in the order modifiers are printed.
var accessFlags = []accessFlag{
	{0x00001, "public"},
	{0x00002, "private"},
	{0x00004, "protected"},
	{0x00008, "static"},
	{0x00010, "final"},
	{0x00020, "synchronized"},
	{0x00040, "bridge"},
	{0x00080, "varargs"},
	{0x00100, "native"},
	{0x00200, "interface"},
	{0x00400, "abstract"},
	{0x00800, "strictfp"},
	{0x01000, "synthetic"},
	{0x02000, "annotation"},
	{0x04000, "enum"},
	{0x10000, "constructor"},
	{0x20000, "declared-synchronized"},
}

// AccessFlagNames decodes numeric method access flags into modifier
// keywords. Unknown bits are ignored.
func AccessFlagNames(bits uint32) []string {
	var names []string
	for _, f := range accessFlags {
		if bits&f.bit != 0 {
			names = append(names, f.name)
		}
	}
	return names
}

// SplitAccessFlags splits an access-flag description such as
// "public static final" into modifier keywords.
func SplitAccessFlags(desc string) []string {
	return strings.Fields(desc)
}

// HasFlag reports whether flags contains the modifier name.
func HasFlag(flags []string, name string) bool {
	for _, f := range flags {
		if f == name {
			return true
		}
	}
	return false
}

// IsStatic reports whether flags marks a static method.
func IsStatic(flags []string) bool {
	return HasFlag(flags, "static")
}
