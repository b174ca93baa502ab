package pkgelab

import (
	"sv2v/pkg/ast"
	"sv2v/pkg/util"
)

// convertPart rewrites one module or interface under the same item walk
// packages get: imports apply and vanish, declarations enter the scope
// (unmangled, since a Part is not a package), and every identifier
// reference resolves through whatever the imports exposed.
func (e *elaborator) convertPart(p *ast.Part) (*ast.Part, error) {
	_, items, err := e.processItems(p.Name, false, fromModuleItems(p.Items))
	if err != nil {
		return nil, err
	}

	out := *p
	out.Items = toModuleItems(items)

	return &out, nil
}

// injectRootItems splices any root-package or synthetic-specialization
// item a Part's body references into the Part, immediately before the
// first item that uses it (spec.md §4.4 Step E). Each Part draws from its
// own copy of the pool, so two Parts using the same symbol each receive
// the definition.
func injectRootItems(p *ast.Part, pis map[string]ast.PackageItem) *ast.Part {
	pool := util.ShallowCloneMap(pis)
	items := p.Items

	for {
		idx, pi, ok := firstUnmet(items, pool)
		if !ok {
			break
		}

		items = util.InsertAt(items, idx, packageItemToModuleItem(pi))

		for _, n := range pi.DefinedNames() {
			delete(pool, n)
		}
	}

	out := *p
	out.Items = items

	return &out
}

// firstUnmet scans items in order for the first one using a name the pool
// can supply and no earlier item already defines. A name an earlier item
// re-declares counts as met regardless of the pool.
func firstUnmet(items []ast.ModuleItem, pool map[string]ast.PackageItem) (uint, ast.PackageItem, bool) {
	defined := map[string]bool{}

	for i, it := range items {
		w := workItem{mi: it}

		for _, dep := range w.usedIdents() {
			if defined[dep] {
				continue
			}

			if pi, ok := pool[dep]; ok {
				return uint(i), pi, true
			}
		}

		for _, n := range w.definedNames() {
			defined[n] = true
		}
	}

	return 0, nil, false
}

// packageItemToModuleItem wraps an injected package item in its module-
// item counterpart. Only name-defining items ever reach the injection
// pool, so the remaining shapes (Import, Export, Directive) have no
// mapping here.
func packageItemToModuleItem(pi ast.PackageItem) ast.ModuleItem {
	switch v := pi.(type) {
	case *ast.DeclItem:
		return &ast.MIDecl{Decl: v.Decl}
	case *ast.Function:
		return &ast.MIFunction{Function: v}
	case *ast.Task:
		return &ast.MITask{Task: v}
	default:
		return &ast.MIComment{Text: "unsupported injected item: " + pi.String()}
	}
}
