package ast

// ---------------------------------------------------------------------------
// Frozen tag bytes for the method AST.
//
// IMPORTANT: These tags are FROZEN. They appear in serialized bytes, content
// hashes and cached wire blobs. Adding new tags is fine; changing existing
// ones breaks every stored hash and cache entry.
// ---------------------------------------------------------------------------

// FormatVersion is the version prefix for the serialization format.
// Bumping this invalidates all existing content hashes.
const FormatVersion byte = 1

// WireVersion is the semantic version written into CBOR method blobs.
// Readers check it against a compatibility constraint.
const WireVersion = "1.0.0"

// Node type tags.
const (
	TagNone byte = 0x00 // version prefix / absent child

	// Statements
	TagBlock      byte = 0x01
	TagExprStmt   byte = 0x02
	TagReturn     byte = 0x03
	TagIf         byte = 0x04
	TagGoto       byte = 0x05
	TagAssignment byte = 0x06

	// Reserved 0x07-0x0F

	// Expressions
	TagBinaryExpr        byte = 0x10
	TagUnaryExpr         byte = 0x11
	TagCast              byte = 0x12
	TagInvocation        byte = 0x13
	TagFieldAccess       byte = 0x14
	TagStaticFieldAccess byte = 0x15
	TagArrayAccess       byte = 0x16
	TagNewInstance       byte = 0x17

	// Leaves
	TagLocalRef      byte = 0x20
	TagParamRef      byte = 0x21
	TagThisRef       byte = 0x22
	TagIntLiteral    byte = 0x23
	TagStringLiteral byte = 0x24
	TagUnknown       byte = 0x25

	// Top level
	TagMethod byte = 0x30

	// Reserved 0xFE-0xFF
)

// allTags lists every defined tag for uniqueness verification in tests.
var allTags = []byte{
	TagNone,
	TagBlock, TagExprStmt, TagReturn, TagIf, TagGoto, TagAssignment,
	TagBinaryExpr, TagUnaryExpr, TagCast, TagInvocation,
	TagFieldAccess, TagStaticFieldAccess, TagArrayAccess, TagNewInstance,
	TagLocalRef, TagParamRef, TagThisRef,
	TagIntLiteral, TagStringLiteral, TagUnknown,
	TagMethod,
}

// tagNames are the construct names used by the bracket rendering and the
// JSON form. They match the token vocabulary downstream embeddings use.
var tagNames = map[byte]string{
	TagBlock:             "BlockStatement",
	TagExprStmt:          "ExpressionStatement",
	TagReturn:            "ReturnStatement",
	TagIf:                "IfStatement",
	TagGoto:              "GotoStatement",
	TagAssignment:        "Assignment",
	TagBinaryExpr:        "BinaryExpression",
	TagUnaryExpr:         "UnaryExpression",
	TagCast:              "CastExpression",
	TagInvocation:        "MethodInvocation",
	TagFieldAccess:       "FieldAccess",
	TagStaticFieldAccess: "StaticFieldAccess",
	TagArrayAccess:       "ArrayAccess",
	TagNewInstance:       "NewInstance",
	TagLocalRef:          "Local",
	TagParamRef:          "Parameter",
	TagThisRef:           "ThisReference",
	TagIntLiteral:        "Literal",
	TagStringLiteral:     "Literal",
	TagUnknown:           "Unknown",
	TagMethod:            "Method",
}

// TagName returns the construct name for tag, or "" for TagNone and
// undefined tags.
func TagName(tag byte) string {
	return tagNames[tag]
}
