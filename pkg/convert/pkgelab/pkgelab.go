// Package pkgelab implements Package & class elaboration (spec.md §4.4):
// it resolves every package import, export and class specialization across
// a whole file set and lowers the result into plain, flat Verilog-2005
// identifiers, since Verilog-2005 has no package or class namespace at all.
//
// Grounded on github.com/consensys/go-corset's pkg/corset/compiler package
// resolution passes (resolveImports, a lazy per-module compile-on-first-use
// driven by a visiting stack that flags circular dependencies exactly the
// way findPackage/processPackage do here), generalized from Corset's
// module-graph shape to SystemVerilog's package/class namespace.
package pkgelab

import (
	"fmt"
	"sort"

	"sv2v/pkg/ast"
	"sv2v/pkg/ferror"
	"sv2v/pkg/scope"
	"sv2v/pkg/util"
)

type classRecord struct {
	params []ast.Decl
	items  []ast.PackageItem
}

type packageRecord struct {
	items   []ast.PackageItem
	exports map[string]string
	done    bool
}

// elaborator carries the whole-file-set state Convert needs: every
// package's and class's raw body (Step A), plus the lazily-computed,
// memoized result of processing each package at most once. extraRoot
// accumulates the processed items of every synthetic class-specialization
// package; they have no source position of their own, so the only way
// they reach the output is injection into a Part that uses them.
type elaborator struct {
	packages  map[string]*packageRecord
	classes   map[string]classRecord
	visiting  map[string]int
	stack     []string
	extraRoot []ast.PackageItem
}

// Convert elaborates every Package and Class description out of descs.
// Each Package is replaced by an inert marker followed by its processed
// (mangled, reordered) items spliced back at the same source position;
// each Class is replaced by a marker alone, its items surfacing only
// through the synthetic packages its specializations produce. Every Part
// is rewritten in place, and finally any root-package or synthetic item a
// Part references is injected into it ahead of its first use.
func Convert(descs []ast.Description) ([]ast.Description, error) {
	e := &elaborator{
		packages: map[string]*packageRecord{},
		classes:  map[string]classRecord{},
		visiting: map[string]int{},
	}

	var rootItems []ast.PackageItem

	for _, d := range descs {
		switch v := d.(type) {
		case *ast.Package:
			e.packages[v.Name] = &packageRecord{items: v.Items}
		case *ast.Class:
			e.classes[v.Name] = classRecord{params: v.Params, items: v.Items}
		case *ast.TopItem:
			rootItems = append(rootItems, v.Item)
		}
	}

	e.packages[""] = &packageRecord{items: rootItems}

	if _, err := e.findPackage(""); err != nil {
		return nil, err
	}

	rootProcessed := e.packages[""].items

	parts := map[*ast.Part]*ast.Part{}

	for _, d := range descs {
		part, ok := d.(*ast.Part)
		if !ok {
			continue
		}

		converted, err := e.convertPart(part)
		if err != nil {
			return nil, err
		}

		parts[part] = converted
	}

	// Unreferenced packages still appear in the output (their processed
	// items replace them below), so force elaboration of any package no
	// reference has pulled in yet, in name order for determinism.
	for _, name := range sortedPackageNames(e.packages) {
		if _, err := e.findPackage(name); err != nil {
			return nil, err
		}
	}

	pis := map[string]ast.PackageItem{}

	for _, it := range append(append([]ast.PackageItem{}, rootProcessed...), e.extraRoot...) {
		for _, n := range it.DefinedNames() {
			pis[n] = it
		}
	}

	var out []ast.Description

	emittedRoot := false

	for _, d := range descs {
		switch v := d.(type) {
		case *ast.Package:
			out = append(out, comment("removed package "+v.Name))
			for _, it := range e.packages[v.Name].items {
				out = append(out, &ast.TopItem{Item: it})
			}
		case *ast.Class:
			out = append(out, comment("removed class "+v.Name))
		case *ast.TopItem:
			// The root package was processed as one aggregate item list, so
			// its full processed form replaces the first stray top item and
			// the rest collapse away.
			if !emittedRoot {
				emittedRoot = true
				for _, it := range rootProcessed {
					out = append(out, &ast.TopItem{Item: it})
				}
			}
		case *ast.Part:
			out = append(out, injectRootItems(parts[v], pis))
		default:
			out = append(out, d)
		}
	}

	return out, nil
}

func comment(text string) ast.Description {
	return &ast.TopItem{Item: &ast.DeclItem{Decl: &ast.CommentDecl{Text: text}}}
}

func sortedPackageNames(packages map[string]*packageRecord) []string {
	out := make([]string, 0, len(packages))
	for name := range packages {
		out = append(out, name)
	}

	sort.Strings(out)

	return out
}

// findPackage lazily processes a package (or synthetic class
// specialization already registered in e.packages) the first time anything
// references it, memoizing the result and detecting a package that
// transitively imports itself.
func (e *elaborator) findPackage(name string) (map[string]string, error) {
	rec, ok := e.packages[name]
	if !ok {
		return nil, &ferror.MissingSymbol{Pkg: name}
	}

	if rec.done {
		return rec.exports, nil
	}

	if e.visiting[name] > 0 {
		return nil, &ferror.DependencyCycle{Cycle: util.Append(e.stack, name)}
	}

	e.visiting[name]++
	e.stack = append(e.stack, name)

	isPackage := name != ""

	exports, items, err := e.processItems(name, isPackage, fromPackageItems(rec.items))

	e.stack = e.stack[:len(e.stack)-1]
	e.visiting[name]--

	if err != nil {
		return nil, err
	}

	rec.exports = exports
	rec.items = toPackageItems(items)
	rec.done = true

	return rec.exports, nil
}

// processItems reorders items and walks them left to right, building the
// owner's scope as it goes (spec.md §4.4 Steps C.2-C.6): resolving every
// import, recording every export request for Step C.5 to settle once the
// whole list has been seen, and rewriting every declaration and identifier
// reference it finds. isPackage gates whether a top-level declaration gets
// mangled to "owner_name" (packages) or keeps its bare name (modules, and
// the synthetic root package).
func (e *elaborator) processItems(owner string, isPackage bool, items []workItem) (map[string]string, []workItem, error) {
	s := scope.New[IdentState]()
	s.PushFrame(owner, false)
	defer s.PopFrame()

	var pendingExports []*ast.Export

	out := make([]workItem, 0, len(items))

	for _, it := range reorderItems(items) {
		rewritten, export, drop, err := e.rewriteItem(s, owner, isPackage, it)
		if err != nil {
			return nil, nil, err
		}

		if export != nil {
			pendingExports = append(pendingExports, export)
			continue
		}

		if drop {
			continue
		}

		out = append(out, rewritten)
	}

	exports := map[string]string{}

	for name, st := range s.ExtractMapping() {
		if st.Kind == StateDeclared {
			exports[name] = owner
		}
	}

	for _, exp := range pendingExports {
		if err := e.resolveExport(s, owner, isPackage, exp, exports); err != nil {
			return nil, nil, err
		}
	}

	return exports, out, nil
}

// resolveExport settles one deferred export request against the scope the
// full item walk produced. Each exported name maps to its root package:
// the package whose mangled prefix every outside reference to the name
// must carry, which for a re-exported symbol is the package it was
// originally declared in, not the one it was re-imported through.
func (e *elaborator) resolveExport(s *scope.Scoper[IdentState], owner string, isPackage bool, exp *ast.Export, exports map[string]string) error {
	if !isPackage {
		return &ferror.StructuralError{Message: "export outside a package"}
	}

	switch {
	case exp.Pkg == "" && exp.Ident == "":
		for name, st := range s.ExtractMapping() {
			if st.Kind == StateImported {
				exports[name] = st.Pkgs[0]
			}
		}
	case exp.Ident == "":
		pkgExports, err := e.findPackage(exp.Pkg)
		if err != nil {
			return err
		}

		// Symbols of exp.Pkg that this package never re-imported, or
		// re-imported from a different root, drop silently.
		for name, root := range pkgExports {
			if e := s.LookupElemM(name); e.HasValue() {
				if st := e.Unwrap().Meta; st.Kind == StateImported && st.Pkgs[0] == root {
					exports[name] = root
				}
			}
		}
	case exp.Pkg == "":
		return &ferror.StructuralError{Message: fmt.Sprintf("malformed export ::%s", exp.Ident)}
	default:
		pkgExports, err := e.findPackage(exp.Pkg)
		if err != nil {
			return err
		}

		root, ok := pkgExports[exp.Ident]
		if !ok {
			return &ferror.MissingSymbol{Pkg: exp.Pkg, Name: exp.Ident}
		}

		e := s.LookupElemM(exp.Ident)
		if e.IsEmpty() || e.Unwrap().Meta.Kind != StateImported {
			return &ferror.MissingSymbol{Pkg: exp.Pkg, Name: exp.Ident}
		}

		if st := e.Unwrap().Meta; st.Pkgs[0] != root {
			return &ferror.NameConflict{Name: exp.Ident, Context: fmt.Sprintf("export %s::%s", exp.Pkg, exp.Ident)}
		}

		exports[exp.Ident] = root
	}

	return nil
}
