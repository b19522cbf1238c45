package ast

import (
	"regexp"
	"strings"
)

// tokenPattern keeps '[' and ']' as their own tokens and splits everything
// else on whitespace.
var tokenPattern = regexp.MustCompile(`\[|]|[^\[\]\s]+`)

// Tokenize splits bracket text into the token sequence fed to embeddings.
func Tokenize(text string) []string {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\n", " "))
	return tokenPattern.FindAllString(text, -1)
}

// Tokens flattens a method into its embedding token sequence.
func Tokens(m *MethodAST) []string {
	return Tokenize(RenderMethod(m))
}
