package lift

import (
	"strconv"
	"strings"

	"github.com/chazu/dexast/ast"
	"github.com/chazu/dexast/descriptor"
)

// ClassifyOperand turns one operand token into a leaf node. It never fails:
// anything it cannot place becomes Unknown carrying the trimmed token.
func ClassifyOperand(token string) ast.Node {
	tok := strings.TrimSpace(token)

	switch {
	case strings.HasPrefix(tok, "v"):
		return &ast.LocalRef{Reg: tok}
	case strings.HasPrefix(tok, "p"):
		return &ast.ParamRef{Reg: tok}
	case strings.Contains(tok, descriptor.MemberSep):
		owner, field, _ := descriptor.ParseFieldDescriptor(tok)
		return &ast.StaticFieldAccess{Owner: owner, Field: field}
	case tok == "this":
		return &ast.ThisRef{}
	case isDigits(tok):
		v, err := strconv.ParseInt(tok, 10, 64)
		if err != nil {
			return &ast.Unknown{Raw: tok}
		}
		return &ast.IntLiteral{Value: v}
	case strings.HasPrefix(tok, `"`):
		return &ast.StringLiteral{Value: strings.Trim(tok, `"`)}
	}
	return &ast.Unknown{Raw: tok}
}

// immediate parses a lit8/lit16 operand. Base is taken from the prefix, so
// "0x1f", "-0x1" and "12" all parse.
func immediate(token string) ast.Node {
	tok := strings.TrimSpace(token)
	v, err := strconv.ParseInt(tok, 0, 64)
	if err != nil {
		return &ast.Unknown{Raw: tok}
	}
	return &ast.IntLiteral{Value: v}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// splitOperands splits an operand line on commas that are not inside a
// brace list or a string literal. Each piece is trimmed.
func splitOperands(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var (
		parts    []string
		depth    int
		inString bool
		start    int
	)
	for i := 0; i < len(text); i++ {
		switch c := text[i]; {
		case inString && c == '\\':
			i++
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			if depth > 0 {
				depth--
			}
		case c == ',' && depth == 0:
			parts = append(parts, strings.TrimSpace(text[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(text[start:]))
}

// expandRange expands "v0 .. v3" into v0 v1 v2 v3. ok is false when the
// text is not a register range.
func expandRange(text string) ([]string, bool) {
	lo, hi, found := strings.Cut(text, "..")
	if !found {
		return nil, false
	}
	lo, hi = strings.TrimSpace(lo), strings.TrimSpace(hi)
	if len(lo) < 2 || len(hi) < 2 || lo[0] != hi[0] || (lo[0] != 'v' && lo[0] != 'p') {
		return nil, false
	}
	from, err1 := strconv.Atoi(lo[1:])
	to, err2 := strconv.Atoi(hi[1:])
	if err1 != nil || err2 != nil || from > to {
		return nil, false
	}

	out := make([]string, 0, to-from+1)
	for i := from; i <= to; i++ {
		out = append(out, string(lo[0])+strconv.Itoa(i))
	}
	return out, true
}
