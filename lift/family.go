package lift

import (
	"fmt"
	"strings"
)

// Family is the closed set of instruction families the dispatcher knows.
type Family int

const (
	FamilyUnrecognized Family = iota
	FamilyReturn
	FamilyCast
	FamilyInvoke
	FamilyFieldAccess
	FamilyArithmetic
	FamilyBitwise
	FamilyBranch
	FamilyArrayAccess
	FamilyNewObject
)

var familyNames = map[Family]string{
	FamilyUnrecognized: "unrecognized",
	FamilyReturn:       "return",
	FamilyCast:         "cast",
	FamilyInvoke:       "invoke",
	FamilyFieldAccess:  "field-access",
	FamilyArithmetic:   "arithmetic",
	FamilyBitwise:      "bitwise",
	FamilyBranch:       "branch",
	FamilyArrayAccess:  "array-access",
	FamilyNewObject:    "new-object",
}

func (f Family) String() string {
	if name, ok := familyNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Family(%d)", int(f))
}

var (
	arithmeticPrefixes = []string{"add", "sub", "mul", "div", "rem"}
	bitwisePrefixes    = []string{"shl", "shr", "and", "or", "xor"}
)

// ClassifyOpcode maps an opcode name to its family. Patterns are checked in
// a fixed order and the first match wins.
func ClassifyOpcode(opcode string) Family {
	switch {
	case strings.HasPrefix(opcode, "return"):
		return FamilyReturn
	case strings.Contains(opcode, "-to-"):
		return FamilyCast
	case strings.HasPrefix(opcode, "invoke"):
		return FamilyInvoke
	case strings.HasPrefix(opcode, "iget"), strings.HasPrefix(opcode, "iput"):
		return FamilyFieldAccess
	case hasAnyPrefix(opcode, arithmeticPrefixes):
		return FamilyArithmetic
	case hasAnyPrefix(opcode, bitwisePrefixes):
		return FamilyBitwise
	case strings.HasPrefix(opcode, "if-"):
		return FamilyBranch
	case strings.HasPrefix(opcode, "aget"), strings.HasPrefix(opcode, "aput"):
		return FamilyArrayAccess
	case strings.HasPrefix(opcode, "new-"):
		return FamilyNewObject
	}
	return FamilyUnrecognized
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
