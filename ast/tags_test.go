package ast

import "testing"

func TestTagUniqueness(t *testing.T) {
	seen := make(map[byte]bool, len(allTags))
	for _, tag := range allTags {
		if seen[tag] {
			t.Errorf("duplicate tag: 0x%02X", tag)
		}
		seen[tag] = true
	}
}

func TestTagsInRange(t *testing.T) {
	for _, tag := range allTags {
		if tag >= 0xFE {
			t.Errorf("tag 0x%02X is in reserved range 0xFE-0xFF", tag)
		}
	}
}

func TestFormatVersionNonZero(t *testing.T) {
	if FormatVersion == 0 {
		t.Error("FormatVersion must be non-zero")
	}
}

func TestEveryTagHasName(t *testing.T) {
	for _, tag := range allTags {
		if tag == TagNone {
			continue
		}
		if TagName(tag) == "" {
			t.Errorf("tag 0x%02X has no name", tag)
		}
	}
}

func TestNodeTags(t *testing.T) {
	tests := []struct {
		node Node
		want byte
	}{
		{&Block{}, TagBlock},
		{&ExprStmt{}, TagExprStmt},
		{&Return{}, TagReturn},
		{&If{}, TagIf},
		{&Goto{}, TagGoto},
		{&Assignment{}, TagAssignment},
		{&BinaryExpr{}, TagBinaryExpr},
		{&UnaryExpr{}, TagUnaryExpr},
		{&Cast{}, TagCast},
		{&Invocation{}, TagInvocation},
		{&FieldAccess{}, TagFieldAccess},
		{&StaticFieldAccess{}, TagStaticFieldAccess},
		{&ArrayAccess{}, TagArrayAccess},
		{&NewInstance{}, TagNewInstance},
		{&LocalRef{}, TagLocalRef},
		{&ParamRef{}, TagParamRef},
		{&ThisRef{}, TagThisRef},
		{&IntLiteral{}, TagIntLiteral},
		{&StringLiteral{}, TagStringLiteral},
		{&Unknown{}, TagUnknown},
	}
	for _, tt := range tests {
		if got := tt.node.Tag(); got != tt.want {
			t.Errorf("%T.Tag() = 0x%02X, want 0x%02X", tt.node, got, tt.want)
		}
	}
}
