package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/chazu/dexast/ast"
	"github.com/chazu/dexast/manifest"
	"github.com/chazu/dexast/pipeline"
)

// writeResults writes every converted or cached method in the given
// format. Absent and failed methods produce no output.
//
//	json    one JSON object per line
//	text    one bracket rendering per line
//	tokens  space-separated token stream per line
//	cbor    concatenated CBOR items
func writeResults(w io.Writer, results []pipeline.Result, format string) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	for _, r := range results {
		if r.AST == nil {
			continue
		}

		var err error
		switch format {
		case manifest.FormatJSON, "":
			err = enc.Encode(r.AST)
		case manifest.FormatText:
			_, err = fmt.Fprintln(bw, ast.RenderMethod(r.AST))
		case manifest.FormatTokens:
			_, err = fmt.Fprintln(bw, strings.Join(ast.Tokens(r.AST), " "))
		case manifest.FormatCBOR:
			var data []byte
			data, err = ast.MarshalMethod(r.AST)
			if err == nil {
				_, err = bw.Write(data)
			}
		default:
			return fmt.Errorf("unknown output format %q", format)
		}
		if err != nil {
			return fmt.Errorf("writing %s: %w", r.Method.Key(), err)
		}
	}
	return bw.Flush()
}
