package pkgelab

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"sv2v/pkg/ast"
	"sv2v/pkg/constfold"
	"sv2v/pkg/ferror"
	"sv2v/pkg/scope"
	"sv2v/pkg/traverse"
)

// IdentStateKind classifies how a name currently sits in the scope being
// built up while processItems walks a package or module, per spec.md
// §4.4's three-state identifier lifecycle.
type IdentStateKind int

// The three states an identifier can be in while a single item list is
// being processed.
const (
	// StateAvailable means a wildcard import exposed the name but nothing
	// has referenced it yet; Pkgs lists every root package that could
	// supply it.
	StateAvailable IdentStateKind = iota
	// StateImported means the name is bound to exactly one root package,
	// either because an explicit (non-wildcard) import named it or because
	// a reference settled a single wildcard candidate.
	StateImported
	// StateDeclared means the name is a local declaration; Resolved is the
	// name to substitute at every reference (itself, if no mangling
	// applied; "<owner>_name" if it did).
	StateDeclared
)

// IdentState is the per-identifier metadata pkg/scope.Scoper carries while
// pkg/convert/pkgelab processes one package or module's item list. For
// Available and Imported states, Pkgs holds root packages: the package a
// symbol was originally declared in, which a chain of re-exports preserves.
type IdentState struct {
	Kind     IdentStateKind
	Resolved string
	Pkgs     []string
}

// mangleRef renders a reference to symbol x of root package root. Root
// package "" is the synthetic aggregate of stray top-level items, whose
// symbols keep their bare names.
func mangleRef(root, x string) string {
	if root == "" {
		return x
	}

	return root + "_" + x
}

// prefixIdent registers a freshly-encountered declaration named x into s,
// deciding and returning the name every later reference to x should resolve
// to. Outside a procedure, a package-scope declaration is mangled to
// "<owner>_x" (spec.md §4.4 Step 3); a module-scope or in-procedure
// declaration keeps its own name, since Verilog-2005 has no package
// namespace to collide with at that point.
func prefixIdent(s *scope.Scoper[IdentState], owner string, isPackage bool, x string) (string, error) {
	if e := s.LookupLocalIdentM(x); e.HasValue() && e.Unwrap().Meta.Kind == StateImported {
		return "", &ferror.NameConflict{Name: x, Context: owner}
	}

	resolved := x
	if isPackage && owner != "" && !s.WithinProcedureM() {
		resolved = owner + "_" + x
	}

	s.InsertElem(x, IdentState{Kind: StateDeclared, Resolved: resolved})

	return resolved, nil
}

// resolveIdent resolves a plain name reference against the current scope,
// upgrading an Available entry to Imported the first time it is actually
// used (spec.md §4.4 Step 6). A name absent from the scope altogether is
// left untouched: it is either a loop/genvar identifier this excerpt's
// scoping does not model, or a builtin system name.
func resolveIdent(s *scope.Scoper[IdentState], name string) (string, error) {
	e := s.LookupElemM(name)
	if e.IsEmpty() {
		return name, nil
	}

	st := e.Unwrap().Meta

	switch st.Kind {
	case StateDeclared:
		return st.Resolved, nil
	case StateImported:
		return mangleRef(st.Pkgs[0], name), nil
	case StateAvailable:
		if len(st.Pkgs) != 1 {
			pkgs := append([]string{}, st.Pkgs...)
			sort.Strings(pkgs)

			return "", &ferror.AmbiguousReference{Name: name, Packages: pkgs}
		}

		s.InsertElem(name, IdentState{Kind: StateImported, Pkgs: st.Pkgs})

		return mangleRef(st.Pkgs[0], name), nil
	default:
		return name, nil
	}
}

// resolvePSIdent resolves an explicit "P::x" reference, either into a
// plain package member or, when P actually names a parameterless class, by
// delegating to resolveCSIdent.
func (e *elaborator) resolvePSIdent(p, x string) (string, error) {
	if cls, ok := e.classes[p]; ok {
		if len(cls.params) > 0 {
			return "", &ferror.ClassParameterError{Class: p, Message: "reference to parameterized class without #(...)"}
		}

		return e.resolveCSIdent(p, nil, nil, x)
	}

	exports, err := e.findPackage(p)
	if err != nil {
		return "", err
	}

	root, ok := exports[x]
	if !ok {
		return "", &ferror.MissingSymbol{Pkg: p, Name: x}
	}

	return mangleRef(root, x), nil
}

// resolveCSIdent resolves a "C#(bindings)::x" reference by specializing
// class C into a synthetic package, memoized on the hash of scopeKeys (the
// short hashes of every access path referenced inside bindings, computed by
// the caller from its own live scope) and the resolved binding values
// themselves, per spec.md §4.4 Step D.
func (e *elaborator) resolveCSIdent(class string, bindings []ast.ParamBinding, scopeKeys []string, x string) (string, error) {
	cls, ok := e.classes[class]
	if !ok {
		return "", &ferror.ClassParameterError{Class: class, Message: "unknown class"}
	}

	names := make([]string, len(cls.params))
	for i, p := range cls.params {
		names[i] = p.DeclName()
	}

	resolved, err := constfold.ResolveBindings(fmt.Sprintf("class %s specialization", class), names, bindings)
	if err != nil {
		return "", &ferror.ClassParameterError{Class: class, Message: err.Error()}
	}

	synthetic := class + "_" + scope.ShortHash(append(append([]string{}, scopeKeys...), bindingsKey(resolved)...)...)

	if _, ok := e.packages[synthetic]; !ok {
		if err := e.specializeClass(synthetic, class, cls, resolved); err != nil {
			return "", err
		}
	}

	return synthetic + "_" + x, nil
}

// specializeClass processes class cls once under its synthetic package
// name, substitutes the supplied parameter overrides, folds what the
// overrides made constant, and registers the result both as a package
// (so later references memoize) and in the root injection pool (so the
// items can be spliced into any Part that uses them).
func (e *elaborator) specializeClass(synthetic, class string, cls classRecord, overrides map[string]ast.ParamBinding) error {
	items := make([]ast.PackageItem, 0, len(cls.params)+len(cls.items))
	for _, p := range cls.params {
		items = append(items, &ast.DeclItem{Decl: p})
	}

	items = append(items, cls.items...)

	exports, processed, err := e.processItems(synthetic, true, fromPackageItems(items))
	if err != nil {
		return err
	}

	processed, err = applyClassOverrides(synthetic, class, processed, overrides)
	if err != nil {
		return err
	}

	processed = foldSpecialization(processed)

	pkgItems := toPackageItems(processed)
	e.packages[synthetic] = &packageRecord{exports: exports, items: pkgItems, done: true}
	e.extraRoot = append(e.extraRoot, pkgItems...)

	return nil
}

func applyClassOverrides(synthetic, class string, items []workItem, overrides map[string]ast.ParamBinding) ([]workItem, error) {
	out := make([]workItem, len(items))
	copy(out, items)

	for i, it := range out {
		di, ok := it.pi.(*ast.DeclItem)
		if !ok {
			continue
		}

		switch d := di.Decl.(type) {
		case *ast.Param:
			if d.Kind != ast.Parameter {
				continue
			}

			orig := stripPrefix(synthetic, d.Name)

			b, has := overrides[orig]
			switch {
			case has && b.Type != nil:
				return nil, &ferror.ClassParameterError{Class: class, Message: fmt.Sprintf("parameter %q expects a value, got a type", orig)}
			case has && b.Expr != nil:
				nd := *d
				nd.Expr = b.Expr
				out[i] = workItem{pi: &ast.DeclItem{Decl: &nd}}
			case !has && d.Expr == nil:
				return nil, &ferror.ClassParameterError{Class: class, Message: fmt.Sprintf("missing required parameter %q", orig)}
			}
		case *ast.ParamType:
			if d.Kind != ast.Parameter {
				continue
			}

			orig := stripPrefix(synthetic, d.Name)

			b, has := overrides[orig]
			switch {
			case has && b.Type != nil:
				nd := *d
				nd.Type = b.Type
				out[i] = workItem{pi: &ast.DeclItem{Decl: &nd}}
			case has && b.Expr != nil:
				t, ok := constfold.ExprToType(b.Expr)
				if !ok {
					return nil, &ferror.ClassParameterError{Class: class, Message: fmt.Sprintf("parameter %q override is not a type", orig)}
				}

				nd := *d
				nd.Type = t
				out[i] = workItem{pi: &ast.DeclItem{Decl: &nd}}
			case !has && d.Type == nil:
				return nil, &ferror.ClassParameterError{Class: class, Message: fmt.Sprintf("missing required type parameter %q", orig)}
			}
		}
	}

	return out, nil
}

// foldSpecialization substitutes the specialized parameter values through
// the synthetic package's remaining items: value parameters fold into
// Number literals wherever constfold can evaluate them, and type
// parameters substitute structurally into every alias that names one,
// merging any packed ranges the alias carried (so "BASE [WIDTH-1:0]" with
// BASE=logic, WIDTH=2 becomes "logic [1:0]"). Parameters constfold cannot
// evaluate simply stay symbolic.
func foldSpecialization(items []workItem) []workItem {
	values := map[string]*apd.Decimal{}
	types := map[string]ast.Type{}

	for _, it := range items {
		di, ok := it.pi.(*ast.DeclItem)
		if !ok {
			continue
		}

		switch d := di.Decl.(type) {
		case *ast.Param:
			if v, ok := constfold.Eval(d.Expr, values); ok {
				values[d.Name] = v
			}
		case *ast.ParamType:
			if d.Type != nil {
				types[d.Name] = d.Type
			}
		}
	}

	if len(values) == 0 && len(types) == 0 {
		return items
	}

	m := traverse.Mappers{
		Expr: func(ex ast.Expr) ast.Expr {
			switch ex.(type) {
			case *ast.Ident, *ast.Binary, *ast.Unary:
				// Substitute parameter values and fold whatever arithmetic
				// the substitution made constant ("WIDTH-1" with WIDTH=2
				// collapses to "1"); anything non-constant stays symbolic.
				if v, ok := constfold.Eval(ex, values); ok {
					return constfold.DecimalToExpr(v)
				}
			}

			return ex
		},
		Type: func(t ast.Type) ast.Type {
			a, ok := t.(*ast.Alias)
			if !ok || a.Pkg != "" || a.Class != "" {
				return t
			}

			base, ok := types[a.Name]
			if !ok {
				return t
			}

			stripped, baseRanges := ast.TypeRanges(base)

			return withRanges(stripped, append(append(ast.Ranges{}, a.Ranges...), baseRanges...))
		},
	}

	out := make([]workItem, len(items))

	for i, it := range items {
		di, ok := it.pi.(*ast.DeclItem)
		if ok {
			if _, isParam := di.Decl.(*ast.Param); isParam {
				out[i] = it
				continue
			}

			if _, isParamType := di.Decl.(*ast.ParamType); isParamType {
				out[i] = it
				continue
			}
		}

		if it.pi != nil {
			out[i] = workItem{pi: traverse.MapPackageItem(it.pi, m)}
		} else {
			out[i] = it
		}
	}

	return out
}

// withRanges rebuilds a range-carrying type with the given packed ranges;
// a type that cannot carry ranges is returned unchanged when ranges is
// empty, and wrapped in the ranged Alias-free forms otherwise.
func withRanges(t ast.Type, ranges ast.Ranges) ast.Type {
	if len(ranges) == 0 {
		return t
	}

	switch v := t.(type) {
	case *ast.IntegerVector:
		cp := *v
		cp.Ranges = ranges

		return &cp
	case *ast.Net:
		cp := *v
		cp.Ranges = ranges

		return &cp
	case *ast.Implicit:
		cp := *v
		cp.Ranges = ranges

		return &cp
	case *ast.Alias:
		cp := *v
		cp.Ranges = ranges

		return &cp
	case *ast.Enum:
		cp := *v
		cp.Ranges = ranges

		return &cp
	case *ast.StructUnion:
		cp := *v
		cp.Ranges = ranges

		return &cp
	default:
		return t
	}
}

func stripPrefix(owner, mangled string) string {
	prefix := owner + "_"
	if strings.HasPrefix(mangled, prefix) {
		return mangled[len(prefix):]
	}

	return mangled
}

func bindingsKey(resolved map[string]ast.ParamBinding) []string {
	names := make([]string, 0, len(resolved))
	for n := range resolved {
		names = append(names, n)
	}

	sort.Strings(names)

	out := make([]string, len(names))
	for i, n := range names {
		out[i] = n + "=" + resolved[n].String()
	}

	return out
}
