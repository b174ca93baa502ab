// Package parse is the seam between this compiler's core and the external
// lexer/parser collaborator (spec.md §1 places lexing and parsing out of
// scope). The core consumes only the pkg/ast shapes; a front end supplies
// them by implementing Func and handing it to a Frontend along with the
// preprocessor options collected from the command line.
package parse

import (
	"fmt"
	"os"

	"sv2v/pkg/ast"
)

// Func parses one SystemVerilog source file into its top-level
// descriptions.
type Func func(path string, src []byte, opts Options) ([]ast.Description, error)

// Options carries the preprocessor configuration the CLI accepts:
// "+define+NAME[=VALUE]" macro definitions and "+incdir+PATH" include
// search directories.
type Options struct {
	Defines map[string]string
	IncDirs []string
}

// Frontend reads source files and parses each with the configured parser.
type Frontend struct {
	Parse Func
	Opts  Options
}

// ReadFiles reads and parses the given paths in order, concatenating each
// file's descriptions into one aggregate list, which is exactly the shape
// the driver's passes consume (multiple files are one symbol space).
func (f *Frontend) ReadFiles(paths []string) ([]ast.Description, error) {
	if f.Parse == nil {
		return nil, fmt.Errorf("no SystemVerilog parser registered")
	}

	var out []ast.Description

	for _, path := range paths {
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}

		descs, err := f.Parse(path, src, f.Opts)
		if err != nil {
			return nil, err
		}

		out = append(out, descs...)
	}

	return out, nil
}
