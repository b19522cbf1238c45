package smali

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ReadYAML reads a YAML sequence of Method records.
func ReadYAML(r io.Reader) ([]Method, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("smali: read yaml: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML parses YAML content into Method records.
func ParseYAML(data []byte) ([]Method, error) {
	var methods []Method
	if err := yaml.Unmarshal(data, &methods); err != nil {
		return nil, fmt.Errorf("smali: parse yaml: %w", err)
	}
	for i := range methods {
		if methods[i].Name == "" {
			return nil, fmt.Errorf("smali: yaml method %d: missing name", i)
		}
	}
	return methods, nil
}
