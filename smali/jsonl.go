package smali

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// ReadJSONL reads one JSON Method record per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]Method, error) {
	scanner := bufio.NewScanner(r)
	// Increase buffer for methods with long bodies
	buf := make([]byte, 4*1024*1024)
	scanner.Buffer(buf, len(buf))

	var methods []Method
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var m Method
		if err := json.Unmarshal([]byte(line), &m); err != nil {
			return nil, fmt.Errorf("smali: jsonl line %d: %w", lineNo, err)
		}
		methods = append(methods, m)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("smali: read jsonl: %w", err)
	}
	return methods, nil
}

// WriteJSONL writes each method as one JSON line.
func WriteJSONL(w io.Writer, methods []Method) error {
	enc := json.NewEncoder(w)
	for i := range methods {
		if err := enc.Encode(&methods[i]); err != nil {
			return fmt.Errorf("smali: write jsonl: %w", err)
		}
	}
	return nil
}
