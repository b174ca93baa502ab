package pkgelab

import (
	"sort"

	"sv2v/pkg/ast"
	"sv2v/pkg/constfold"
	"sv2v/pkg/ferror"
	"sv2v/pkg/scope"
	"sv2v/pkg/traverse"
	"sv2v/pkg/util"
)

// rewriteItem processes one reordered top-level item: it resolves an
// Import directly into the scope and drops it (Verilog-2005 has no import
// statement to lower it to), defers an Export for resolveExport to settle
// once every item has been seen, and otherwise renames any declaration the
// item introduces before rewriting every identifier reference inside it.
func (e *elaborator) rewriteItem(s *scope.Scoper[IdentState], owner string, isPackage bool, it workItem) (workItem, *ast.Export, bool, error) {
	switch {
	case it.pi != nil:
		switch v := it.pi.(type) {
		case *ast.Import:
			if err := e.applyImport(s, owner, v); err != nil {
				return workItem{}, nil, false, err
			}

			return workItem{}, nil, true, nil
		case *ast.Export:
			return workItem{}, v, false, nil
		case *ast.Function:
			f, err := e.rewriteFunction(s, owner, isPackage, v)

			return workItem{pi: f}, nil, false, err
		case *ast.Task:
			t, err := e.rewriteTask(s, owner, isPackage, v)

			return workItem{pi: t}, nil, false, err
		case *ast.DeclItem:
			d, err := e.rewriteDecl(s, owner, isPackage, v.Decl)

			return workItem{pi: &ast.DeclItem{Decl: d}}, nil, false, err
		default:
			n, err := e.rewriteGenericDispatch(s, it.pi)
			if err != nil {
				return workItem{}, nil, false, err
			}

			return workItem{pi: n.(ast.PackageItem)}, nil, false, nil
		}
	case it.mi != nil:
		switch v := it.mi.(type) {
		case *ast.MIImport:
			if err := e.applyImport(s, owner, v.Import); err != nil {
				return workItem{}, nil, false, err
			}

			return workItem{}, nil, true, nil
		case *ast.MIFunction:
			f, err := e.rewriteFunction(s, owner, isPackage, v.Function)

			return workItem{mi: &ast.MIFunction{Function: f}}, nil, false, err
		case *ast.MITask:
			t, err := e.rewriteTask(s, owner, isPackage, v.Task)

			return workItem{mi: &ast.MITask{Task: t}}, nil, false, err
		case *ast.MIDecl:
			d, err := e.rewriteDecl(s, owner, isPackage, v.Decl)

			return workItem{mi: &ast.MIDecl{Decl: d}}, nil, false, err
		case *ast.MIGenerate:
			items, err := e.rewriteGenItems(s, owner, isPackage, v.Items)

			return workItem{mi: &ast.MIGenerate{Items: items}}, nil, false, err
		default:
			n, err := e.rewriteGenericDispatch(s, it.mi)
			if err != nil {
				return workItem{}, nil, false, err
			}

			return workItem{mi: n.(ast.ModuleItem)}, nil, false, nil
		}
	default:
		return it, nil, true, nil
	}
}

// applyImport records an import into the current scope. Both forms bind
// names to their ROOT package (the package a symbol was declared in, which
// re-export chains preserve), so a later reference mangles to the root's
// prefix no matter how many exports the symbol travelled through.
func (e *elaborator) applyImport(s *scope.Scoper[IdentState], owner string, imp *ast.Import) error {
	exports, err := e.findPackage(imp.Pkg)
	if err != nil {
		return err
	}

	if imp.Ident != "" {
		root, ok := exports[imp.Ident]
		if !ok {
			return &ferror.MissingSymbol{Pkg: imp.Pkg, Name: imp.Ident}
		}

		if e := s.LookupLocalIdentM(imp.Ident); e.HasValue() {
			st := e.Unwrap().Meta

			switch {
			case st.Kind == StateDeclared:
				return &ferror.NameConflict{Name: imp.Ident, Context: owner}
			case st.Kind == StateImported && st.Pkgs[0] != root:
				return &ferror.NameConflict{Name: imp.Ident, Context: owner}
			}
		}

		s.InsertElem(imp.Ident, IdentState{Kind: StateImported, Pkgs: []string{root}})

		return nil
	}

	for _, name := range sortedKeys(exports) {
		root := exports[name]

		if e := s.LookupLocalIdentM(name); e.HasValue() {
			st := e.Unwrap().Meta

			switch st.Kind {
			case StateDeclared, StateImported:
				continue
			case StateAvailable:
				s.InsertElem(name, IdentState{Kind: StateAvailable, Pkgs: appendUnique(st.Pkgs, root)})
				continue
			}
		}

		s.InsertElem(name, IdentState{Kind: StateAvailable, Pkgs: []string{root}})
	}

	return nil
}

func sortedKeys(m map[string]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}

	sort.Strings(out)

	return out
}

func appendUnique(pkgs []string, p string) []string {
	if util.ContainsMatching(pkgs, func(q string) bool { return q == p }) {
		return pkgs
	}

	return util.Append(pkgs, p)
}

func (e *elaborator) rewriteDecl(s *scope.Scoper[IdentState], owner string, isPackage bool, d ast.Decl) (ast.Decl, error) {
	name := d.DeclName()
	if name == "" {
		return e.rewriteGeneric(s, d).(ast.Decl), nil
	}

	typ, err := e.rewriteGenericDispatch(s, d)
	if err != nil {
		return nil, err
	}

	d = typ.(ast.Decl)

	// Enum items are declared alongside their owning declaration: each
	// member name enters the scope (and is mangled) exactly as the
	// declaration itself is.
	d, err = e.prefixEnumItems(s, owner, isPackage, d)
	if err != nil {
		return nil, err
	}

	resolved, err := prefixIdent(s, owner, isPackage, name)
	if err != nil {
		return nil, err
	}

	switch v := d.(type) {
	case *ast.Variable:
		nv := *v
		nv.Name = resolved

		return &nv, nil
	case *ast.Param:
		nv := *v
		nv.Name = resolved

		return &nv, nil
	case *ast.ParamType:
		nv := *v
		nv.Name = resolved

		return &nv, nil
	case *ast.Typedef:
		nv := *v
		nv.Name = resolved

		return &nv, nil
	default:
		return d, nil
	}
}

func (e *elaborator) prefixEnumItems(s *scope.Scoper[IdentState], owner string, isPackage bool, d ast.Decl) (ast.Decl, error) {
	var firstErr error

	out := traverse.MapDecl(d, traverse.Mappers{
		Type: func(t ast.Type) ast.Type {
			en, ok := t.(*ast.Enum)
			if !ok {
				return t
			}

			items := make([]string, len(en.Items))

			for i, item := range en.Items {
				resolved, err := prefixIdent(s, owner, isPackage, item)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}

					resolved = item
				}

				items[i] = resolved
			}

			ne := *en
			ne.Items = items

			return &ne
		},
	})

	return out, firstErr
}

func (e *elaborator) rewriteFunction(s *scope.Scoper[IdentState], owner string, isPackage bool, f *ast.Function) (*ast.Function, error) {
	name, err := prefixIdent(s, owner, isPackage, f.Name)
	if err != nil {
		return nil, err
	}

	s.PushFrame(f.Name, true)
	defer s.PopFrame()

	ports := make([]*ast.Variable, len(f.Ports))

	for i, p := range f.Ports {
		np, err := e.rewritePort(s, p)
		if err != nil {
			return nil, err
		}

		ports[i] = np
	}

	retType, err := e.rewriteGenericDispatch(s, f.ReturnType)
	if err != nil {
		return nil, err
	}

	body, err := e.rewriteStmts(s, f.Body)
	if err != nil {
		return nil, err
	}

	return &ast.Function{Name: name, ReturnType: retType.(ast.Type), Ports: ports, Body: body}, nil
}

func (e *elaborator) rewriteTask(s *scope.Scoper[IdentState], owner string, isPackage bool, t *ast.Task) (*ast.Task, error) {
	name, err := prefixIdent(s, owner, isPackage, t.Name)
	if err != nil {
		return nil, err
	}

	s.PushFrame(t.Name, true)
	defer s.PopFrame()

	ports := make([]*ast.Variable, len(t.Ports))

	for i, p := range t.Ports {
		np, err := e.rewritePort(s, p)
		if err != nil {
			return nil, err
		}

		ports[i] = np
	}

	body, err := e.rewriteStmts(s, t.Body)
	if err != nil {
		return nil, err
	}

	return &ast.Task{Name: name, Ports: ports, Body: body}, nil
}

func (e *elaborator) rewritePort(s *scope.Scoper[IdentState], v *ast.Variable) (*ast.Variable, error) {
	resolved, err := prefixIdent(s, "", false, v.Name)
	if err != nil {
		return nil, err
	}

	n, err := e.rewriteGenericDispatch(s, v)
	if err != nil {
		return nil, err
	}

	nv := *n.(*ast.Variable)
	nv.Name = resolved

	return &nv, nil
}

func (e *elaborator) rewriteStmts(s *scope.Scoper[IdentState], stmts []ast.Stmt) ([]ast.Stmt, error) {
	out := make([]ast.Stmt, len(stmts))

	for i, st := range stmts {
		n, err := e.rewriteStmt(s, st)
		if err != nil {
			return nil, err
		}

		out[i] = n
	}

	return out, nil
}

// rewriteStmt handles the one statement shape (a named or anonymous Block)
// that can itself introduce new locally-scoped declarations in source
// order; every other statement shape is handled by the generic bottom-up
// dispatch once its own Expr/LHS children are rewritten.
func (e *elaborator) rewriteStmt(s *scope.Scoper[IdentState], st ast.Stmt) (ast.Stmt, error) {
	block, ok := st.(*ast.Block)
	if !ok {
		n, err := e.rewriteGenericDispatch(s, st)
		if err != nil {
			return nil, err
		}

		return n.(ast.Stmt), nil
	}

	if block.Name != "" {
		s.PushFrame(block.Name, s.WithinProcedureM())
		defer s.PopFrame()
	}

	decls := make([]ast.Decl, len(block.Decls))

	for i, d := range block.Decls {
		nd, err := e.rewriteDecl(s, "", false, d)
		if err != nil {
			return nil, err
		}

		decls[i] = nd
	}

	stmts, err := e.rewriteStmts(s, block.Stmts)
	if err != nil {
		return nil, err
	}

	return &ast.Block{Name: block.Name, Decls: decls, Stmts: stmts}, nil
}

func (e *elaborator) rewriteGenItems(s *scope.Scoper[IdentState], owner string, isPackage bool, items []ast.GenItem) ([]ast.GenItem, error) {
	out := make([]ast.GenItem, len(items))

	for i, g := range items {
		switch v := g.(type) {
		case *ast.GIBlock:
			s.PushFrame(v.Name, false)

			nested, err := e.rewriteBlockItems(s, owner, isPackage, v.Items)

			s.PopFrame()

			if err != nil {
				return nil, err
			}

			out[i] = &ast.GIBlock{Name: v.Name, Items: nested}
		case *ast.GIModuleItem:
			rewritten, _, _, err := e.rewriteItem(s, owner, isPackage, workItem{mi: v.Item})
			if err != nil {
				return nil, err
			}

			if rewritten.mi == nil {
				out[i] = &ast.GIModuleItem{Item: &ast.MIComment{Text: "removed by package elaboration"}}
				continue
			}

			out[i] = &ast.GIModuleItem{Item: rewritten.mi}
		default:
			out[i] = g
		}
	}

	return out, nil
}

func (e *elaborator) rewriteBlockItems(s *scope.Scoper[IdentState], owner string, isPackage bool, items []ast.ModuleItem) ([]ast.ModuleItem, error) {
	out := make([]ast.ModuleItem, 0, len(items))

	for _, mi := range items {
		rewritten, _, drop, err := e.rewriteItem(s, owner, isPackage, workItem{mi: mi})
		if err != nil {
			return nil, err
		}

		if drop || rewritten.mi == nil {
			continue
		}

		out = append(out, rewritten.mi)
	}

	return out, nil
}

// rewriteGeneric applies the generic bottom-up identifier resolution to any
// node shape with no declarations of its own (MIAssign, MIAlwaysComb,
// Instance bindings and port expressions, a CommentDecl, a Directive, ...).
func (e *elaborator) rewriteGeneric(s *scope.Scoper[IdentState], n ast.Node) ast.Node {
	out, _ := e.rewriteGenericDispatch(s, n)

	return out
}

func (e *elaborator) rewriteGenericDispatch(s *scope.Scoper[IdentState], n ast.Node) (ast.Node, error) {
	var firstErr error

	m := traverse.Mappers{
		Expr: func(expr ast.Expr) ast.Expr {
			switch v := expr.(type) {
			case *ast.Ident:
				resolved, err := resolveIdent(s, v.Name)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}

					return expr
				}

				return &ast.Ident{Name: resolved}
			case *ast.PSIdent:
				resolved, err := e.resolvePSIdent(v.Pkg, v.Name)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}

					return expr
				}

				return &ast.Ident{Name: resolved}
			case *ast.CSIdent:
				keys := classScopeKeys(s, v.Bindings)

				resolved, err := e.resolveCSIdent(v.Class, v.Bindings, keys, v.Name)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}

					return expr
				}

				return &ast.Ident{Name: resolved}
			default:
				return expr
			}
		},
		LHS: func(l ast.LHS) ast.LHS {
			id, ok := l.(*ast.LHSIdent)
			if !ok {
				return l
			}

			resolved, err := resolveIdent(s, id.Name)
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}

				return l
			}

			return &ast.LHSIdent{Name: resolved}
		},
		Type: func(t ast.Type) ast.Type {
			if to, ok := t.(*ast.TypeOf); ok {
				// "type(expr)" lowers to whatever exprToType makes of its
				// operand, or stays as the expression when nothing does.
				if converted, ok := constfold.ExprToType(to.Expr); ok {
					return converted
				}

				return t
			}

			a, ok := t.(*ast.Alias)
			if !ok {
				return t
			}

			switch {
			case a.Class != "":
				keys := classScopeKeys(s, a.Bindings)

				resolved, err := e.resolveCSIdent(a.Class, a.Bindings, keys, a.Name)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}

					return t
				}

				return &ast.Alias{Name: resolved, Ranges: a.Ranges}
			case a.Pkg != "":
				resolved, err := e.resolvePSIdent(a.Pkg, a.Name)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}

					return t
				}

				return &ast.Alias{Name: resolved, Ranges: a.Ranges}
			default:
				resolved, err := resolveIdent(s, a.Name)
				if err != nil {
					if firstErr == nil {
						firstErr = err
					}

					return t
				}

				return &ast.Alias{Name: resolved, Ranges: a.Ranges}
			}
		},
	}

	out := traverse.Node(n, m)

	return out, firstErr
}
