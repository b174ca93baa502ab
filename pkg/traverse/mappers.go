// Package traverse provides generic, reusable walkers over the pkg/ast
// node families, generalizing the boilerplate every pass in
// github.com/consensys/go-corset's pkg/corset/compiler hand-writes afresh
// (see e.g. compiler/preprocessor.go's per-declaration type switches).
//
// Two shapes cover every family {Description, PackageItem, Decl, Type,
// ModuleItem, GenItem, Stmt, Expr, LHS}:
//
//   - Map: transform each child bottom-up with a user-supplied function,
//     reconstructing parents from the (possibly new) children. A MapX
//     function is exported for Description, PackageItem, Decl, ModuleItem
//     and GenItem; the remaining families are reached through Node.
//   - Collect: a single write-only traversal built on top of Map that accumulates
//     into whatever monoid the caller's visitor closures close over (a
//     set, a slice, a boolean flag, ...).
//
// Mappers.<Family> being nil means "identity for this family" — a pass
// that only cares about, say, Expr can leave every other field unset and
// get a correct full-tree walk for free.
package traverse

import "sv2v/pkg/ast"

// Mappers bundles one optional per-family transform. Every MapX function
// in this package applies the relevant field *after* recursing into a
// node's same-family and cross-family children, i.e. bottom-up.
type Mappers struct {
	Description func(ast.Description) ast.Description
	PackageItem func(ast.PackageItem) ast.PackageItem
	Decl        func(ast.Decl) ast.Decl
	Type        func(ast.Type) ast.Type
	ModuleItem  func(ast.ModuleItem) ast.ModuleItem
	GenItem     func(ast.GenItem) ast.GenItem
	Stmt        func(ast.Stmt) ast.Stmt
	Expr        func(ast.Expr) ast.Expr
	LHS         func(ast.LHS) ast.LHS
}

func (m Mappers) description(d ast.Description) ast.Description {
	if m.Description != nil {
		return m.Description(d)
	}

	return d
}

func (m Mappers) packageItem(p ast.PackageItem) ast.PackageItem {
	if m.PackageItem != nil {
		return m.PackageItem(p)
	}

	return p
}

func (m Mappers) decl(d ast.Decl) ast.Decl {
	if m.Decl != nil {
		return m.Decl(d)
	}

	return d
}

func (m Mappers) typ(t ast.Type) ast.Type {
	if t == nil {
		return nil
	}

	t = mapTypeChildren(t, m)

	if m.Type != nil {
		return m.Type(t)
	}

	return t
}

func (m Mappers) moduleItem(mi ast.ModuleItem) ast.ModuleItem {
	if m.ModuleItem != nil {
		return m.ModuleItem(mi)
	}

	return mi
}

func (m Mappers) genItem(g ast.GenItem) ast.GenItem {
	if m.GenItem != nil {
		return m.GenItem(g)
	}

	return g
}

func (m Mappers) stmt(s ast.Stmt) ast.Stmt {
	if s == nil {
		return nil
	}

	s = mapStmtChildren(s, m)

	if m.Stmt != nil {
		return m.Stmt(s)
	}

	return s
}

func (m Mappers) expr(e ast.Expr) ast.Expr {
	if e == nil {
		return nil
	}

	e = mapExprChildren(e, m)

	if m.Expr != nil {
		return m.Expr(e)
	}

	return e
}

func (m Mappers) lhs(l ast.LHS) ast.LHS {
	if l == nil {
		return nil
	}

	l = mapLHSChildren(l, m)

	if m.LHS != nil {
		return m.LHS(l)
	}

	return l
}

// Node dispatches a mapper across any node regardless of its family,
// trying each family's Map function in turn. This is traverseNodes from
// spec.md §4.1: it wires the per-family mappers into a single mapper over
// any parent node, for contexts (the Scoper's embedScopes callback, the
// generic identifier-use collector) that hold an ast.Node without
// statically knowing which family it belongs to.
func Node(n ast.Node, m Mappers) ast.Node {
	switch v := n.(type) {
	case ast.Description:
		return MapDescription(v, m)
	case ast.PackageItem:
		return MapPackageItem(v, m)
	case ast.Decl:
		return MapDecl(v, m)
	case ast.Type:
		return m.typ(v)
	case ast.ModuleItem:
		return MapModuleItem(v, m)
	case ast.GenItem:
		return MapGenItem(v, m)
	case ast.Stmt:
		return m.stmt(v)
	case ast.Expr:
		return m.expr(v)
	case ast.LHS:
		return m.lhs(v)
	default:
		return n
	}
}
