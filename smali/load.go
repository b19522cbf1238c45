package smali

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrUnknownFormat is returned for unrecognized input formats.
var ErrUnknownFormat = errors.New("smali: unknown input format")

// Format names an input encoding.
type Format string

const (
	FormatListing Format = "smali"
	FormatJSONL   Format = "jsonl"
	FormatYAML    Format = "yaml"
)

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".smali", ".txt":
		return FormatListing, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
}

// Read decodes methods from r in the given format.
func Read(r io.Reader, format Format) ([]Method, error) {
	switch format {
	case FormatListing:
		return ReadListing(r)
	case FormatJSONL:
		return ReadJSONL(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// LoadFile reads a file, picking the reader by extension.
func LoadFile(path string) ([]Method, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	return LoadFileAs(path, format)
}

// LoadFileAs reads a file in an explicit format.
func LoadFileAs(path string, format Format) ([]Method, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("smali: open %s: %w", path, err)
	}
	defer f.Close()

	methods, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return methods, nil
}
