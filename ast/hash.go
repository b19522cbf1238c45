package ast

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashMethod computes the SHA-256 content hash of a converted method.
//
// The hash covers the deterministic serialization of the method's triple,
// modifiers, parameters, return type and body, so two conversions of the
// same method record always hash equal.
func HashMethod(m *MethodAST) [32]byte {
	return sha256.Sum256(SerializeMethod(m))
}

// HashHex returns HashMethod as a lowercase hex string.
func HashHex(m *MethodAST) string {
	h := HashMethod(m)
	return hex.EncodeToString(h[:])
}
