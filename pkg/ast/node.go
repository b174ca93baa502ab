// Package ast defines the algebraic data model for the subset of
// SystemVerilog this compiler ingests and the Verilog-2005 it emits. Every
// node is immutable once constructed and is never mutated in place by a
// pass: passes build replacement nodes and return new trees, mirroring the
// teacher compiler's own Corset AST (github.com/consensys/go-corset's
// pkg/corset/ast), which follows the same "closed family of tagged
// variants" discipline.
//
// Each family (Description, PackageItem, Decl, Type, ModuleItem, GenItem,
// Stmt, Expr, LHS) is a sealed Go interface: an unexported marker method
// closes the family to the variants declared in this package, and a
// type-switch is the idiomatic way to dispatch over it (see pkg/traverse).
package ast

import "strings"

// Node is implemented by every node in the AST. Node.String renders a node
// back to Verilog-2005 source text, which is the pretty-printer contract
// this package is responsible for (the lexer/parser producing these nodes,
// and any further text formatting beyond per-node String(), are external
// collaborators).
type Node interface {
	String() string
}

func indent(body string) string {
	if body == "" {
		return ""
	}

	lines := strings.Split(strings.TrimRight(body, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = "  " + l
		}
	}

	return strings.Join(lines, "\n") + "\n"
}
