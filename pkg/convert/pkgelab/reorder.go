package pkgelab

import (
	"sort"

	"github.com/mpvl/unique"

	"sv2v/pkg/ast"
	"sv2v/pkg/scope"
	"sv2v/pkg/traverse"
)

// workItem unifies a PackageItem (from a Package, a Class, or the synthetic
// root package of stray top-level items) and a ModuleItem (from a Part)
// under one shape, so reorderItems and processItems operate identically
// over both spec.md §4.4 inputs ("a module name T, or package name P").
type workItem struct {
	pi ast.PackageItem
	mi ast.ModuleItem
}

func fromPackageItems(items []ast.PackageItem) []workItem {
	out := make([]workItem, len(items))
	for i, it := range items {
		out[i] = workItem{pi: it}
	}

	return out
}

func fromModuleItems(items []ast.ModuleItem) []workItem {
	out := make([]workItem, len(items))
	for i, it := range items {
		out[i] = workItem{mi: it}
	}

	return out
}

func toPackageItems(items []workItem) []ast.PackageItem {
	out := make([]ast.PackageItem, 0, len(items))
	for _, it := range items {
		if it.pi != nil {
			out = append(out, it.pi)
		}
	}

	return out
}

func toModuleItems(items []workItem) []ast.ModuleItem {
	out := make([]ast.ModuleItem, 0, len(items))
	for _, it := range items {
		if it.mi != nil {
			out = append(out, it.mi)
		}
	}

	return out
}

func (w workItem) node() ast.Node {
	if w.pi != nil {
		return w.pi
	}

	return w.mi
}

// definedNames returns the names this item introduces into its enclosing
// scope. ast.PackageItem already carries this contract; the ModuleItem
// shapes that define a name (a declaration, a nested function/task) are
// mapped onto it by hand since ast.ModuleItem has no equivalent method.
func (w workItem) definedNames() []string {
	if w.pi != nil {
		return w.pi.DefinedNames()
	}

	switch v := w.mi.(type) {
	case *ast.MIDecl:
		if name := v.Decl.DeclName(); name != "" {
			return []string{name}
		}
	case *ast.MIFunction:
		return []string{v.Function.Name}
	case *ast.MITask:
		return []string{v.Task.Name}
	}

	return nil
}

// usedIdents collects every plain identifier this item's body references,
// sorted and deduplicated for deterministic reorder/inject decisions. It
// intentionally ignores package- and class-scoped references (P::x,
// C#(...)::x): those resolve against an already-known package, not against
// a name reorderItems might still need to move forward.
func (w workItem) usedIdents() []string {
	var out []string

	collect := traverse.Mappers{
		Expr: func(e ast.Expr) ast.Expr {
			if id, ok := e.(*ast.Ident); ok {
				out = append(out, id.Name)
			}

			return e
		},
		LHS: func(l ast.LHS) ast.LHS {
			if id, ok := l.(*ast.LHSIdent); ok {
				out = append(out, id.Name)
			}

			return l
		},
		Type: func(t ast.Type) ast.Type {
			if a, ok := t.(*ast.Alias); ok && a.Pkg == "" && a.Class == "" {
				out = append(out, a.Name)
			}

			return t
		},
	}

	traverse.Collect(w.node(), collect)
	sort.Strings(out)
	unique.Strings(&out)

	return out
}

// reorderItems moves a use-before-def item forward just enough to satisfy
// its dependency on a later, locally-defined item, per spec.md §4.4 Step
// C.3. It processes items depth-first in original order, emitting each
// item's unmet local dependencies immediately before the item itself, and
// suppresses duplicate emission of any item (including one pulled forward
// more than once by different dependents) via an identity set. An item
// whose emission is already under way is not re-entered, so an item that
// uses its own name, or two items that use each other, are each emitted
// exactly once.
func reorderItems(items []workItem) []workItem {
	definers := map[string]workItem{}

	for _, it := range items {
		for _, n := range it.definedNames() {
			if n != "" {
				definers[n] = it
			}
		}
	}

	var out []workItem

	emitted := map[string]bool{}
	done := map[ast.Node]bool{}
	inProgress := map[ast.Node]bool{}

	var emit func(it workItem)

	emit = func(it workItem) {
		node := it.node()
		if done[node] || inProgress[node] {
			return
		}

		inProgress[node] = true

		for _, dep := range it.usedIdents() {
			if emitted[dep] {
				continue
			}

			def, ok := definers[dep]
			if !ok || done[def.node()] || inProgress[def.node()] {
				continue
			}

			emit(def)
		}

		if done[node] {
			return
		}

		done[node] = true
		out = append(out, it)

		for _, n := range it.definedNames() {
			if n != "" {
				emitted[n] = true
			}
		}
	}

	for _, it := range items {
		emit(it)
	}

	return out
}

// classScopeKeys collects the short hash of the resolved absolute access
// path of every plain identifier referenced inside a class
// specialization's parameter bindings, resolved against the caller's live
// scope. Two textually identical "C#(WIDTH)::x" references from different
// lexical scopes must specialize into distinct synthetic packages whenever
// WIDTH itself resolves differently in each scope, which is exactly what
// folding these path hashes into the synthetic package's name achieves.
func classScopeKeys(s *scope.Scoper[IdentState], bindings []ast.ParamBinding) []string {
	var keys []string

	for _, b := range bindings {
		var e ast.Expr = b.Expr
		if e == nil {
			continue
		}

		traverse.Collect(e, traverse.Mappers{
			Expr: func(e ast.Expr) ast.Expr {
				if id, ok := e.(*ast.Ident); ok {
					if entry := s.LookupElemM(id.Name); entry.HasValue() {
						keys = append(keys, scope.ShortHash(entry.Unwrap().Path.String()))
					}
				}

				return e
			},
		})
	}

	sort.Strings(keys)
	unique.Strings(&keys)

	return keys
}
