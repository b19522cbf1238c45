package smali

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// blockDirectives open a region whose body lines are data, not code.
var blockDirectives = map[string]string{
	".annotation":    ".end annotation",
	".subannotation": ".end subannotation",
	".packed-switch": ".end packed-switch",
	".sparse-switch": ".end sparse-switch",
	".array-data":    ".end array-data",
}

// ReadListing parses a baksmali-style text listing. Directives, labels and
// comments inside a method are skipped; every other line is an instruction.
// A method without instructions whose flags include abstract or native is
// marked External.
func ReadListing(r io.Reader) ([]Method, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 1024*1024)
	scanner.Buffer(buf, len(buf))

	var (
		methods []Method
		class   string
		current *Method
		skipTo  string
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(stripComment(scanner.Text()))
		if line == "" {
			continue
		}

		if skipTo != "" {
			if line == skipTo {
				skipTo = ""
			}
			continue
		}

		directive, rest := splitFirst(line)

		switch {
		case directive == ".class":
			if current != nil {
				return nil, fmt.Errorf("smali: line %d: .class inside method %s", lineNo, current.Name)
			}
			class = lastField(rest)

		case directive == ".method":
			if current != nil {
				return nil, fmt.Errorf("smali: line %d: nested .method", lineNo)
			}
			m, err := parseMethodHeader(class, rest)
			if err != nil {
				return nil, fmt.Errorf("smali: line %d: %w", lineNo, err)
			}
			current = m

		case line == ".end method":
			if current == nil {
				return nil, fmt.Errorf("smali: line %d: .end method outside method", lineNo)
			}
			if len(current.Instructions) == 0 && hasAnyFlag(current.AccessFlags, "abstract", "native") {
				current.External = true
			}
			methods = append(methods, *current)
			current = nil

		case current == nil:
			// Class-level directives and fields.

		case strings.HasPrefix(line, "."):
			if end, ok := blockDirectives[directive]; ok {
				skipTo = end
			}

		case strings.HasPrefix(line, ":"):
			// label

		default:
			current.Instructions = append(current.Instructions, Instruction{
				Opcode:   directive,
				Operands: rest,
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("smali: read listing: %w", err)
	}
	if current != nil {
		return nil, fmt.Errorf("smali: unterminated method %s", current.Name)
	}
	return methods, nil
}

// parseMethodHeader splits "public static foo(I)V" into flags, name and
// descriptor.
func parseMethodHeader(class, header string) (*Method, error) {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty .method header")
	}
	sig := fields[len(fields)-1]
	paren := strings.IndexByte(sig, '(')
	if paren <= 0 {
		return nil, fmt.Errorf("malformed method signature %q", sig)
	}
	return &Method{
		Class:        class,
		Name:         sig[:paren],
		Descriptor:   sig[paren:],
		AccessFlags:  strings.Join(fields[:len(fields)-1], " "),
		Instructions: []Instruction{},
	}, nil
}

// stripComment removes a trailing "#" comment that is not inside a string
// literal.
func stripComment(line string) string {
	inString := false
	for i := 0; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if inString {
				i++
			}
		case '"':
			inString = !inString
		case '#':
			if !inString {
				return line[:i]
			}
		}
	}
	return line
}

// splitFirst splits a line at its first run of whitespace.
func splitFirst(line string) (string, string) {
	i := strings.IndexAny(line, " \t")
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimSpace(line[i:])
}

func lastField(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func hasAnyFlag(flags string, names ...string) bool {
	for _, f := range strings.Fields(flags) {
		for _, n := range names {
			if f == n {
				return true
			}
		}
	}
	return false
}
