// Package logic implements the Logic conversion pass of spec.md §4.3: a
// two-phase (observe, then rewrite) reclassification of every `logic`
// declaration in a Part to either a procedural `reg` or a continuous
// `wire`, plus the surrounding module-item repairs that decision forces.
//
// Grounded on github.com/consensys/go-corset/pkg/corset/compiler's own
// resolver.go, which splits ResolveCircuit into an initialiseDeclarations
// pass (recording every declaration into scope before anything else can
// reference it) followed by a resolveDeclarations pass that depends on
// that first pass having run to completion — the same observe-then-
// rewrite idiom this package's observe/rewrite split realizes over
// pkg/scope instead of Corset's ModuleScope.
package logic

import (
	"fmt"

	"sv2v/pkg/ast"
	"sv2v/pkg/ferror"
	"sv2v/pkg/scope"
	"sv2v/pkg/util"
)

// declMeta is the per-identifier metadata this pass attaches to each
// Scoper entry: the type as declared (before any reclassification) and
// whether the declaration's enclosing frame was procedural.
type declMeta struct {
	typ        ast.Type
	procedural bool
}

// observation is the result of Phase 1: the set of absolute paths
// assigned procedurally (the set S of spec.md §4.3), and every
// declaration's own metadata, keyed by its own absolute path so Phase 2
// can look either up without needing to replay Phase 1's frame-shadowing
// decisions.
type observation struct {
	assigned map[string]bool
	declared map[string]declMeta
}

func (o *observation) isReg(e util.Option[scope.Entry[declMeta]]) bool {
	if e.IsEmpty() {
		// Names that cannot be resolved are treated as non-regs, per
		// spec.md §4.3's explicit safe default.
		return false
	}

	pathStr := e.Unwrap().Path.String()

	return o.assigned[pathStr] || o.declared[pathStr].procedural
}

// Convert applies the Logic conversion pass to every Part in descs,
// leaving Packages, Classes and stray top-level items untouched (they
// carry no procedural/continuous distinction of their own; Package &
// class elaboration has already run by the time the Driver invokes this
// pass, per spec.md §4.5's fixed pass order).
func Convert(descs []ast.Description) ([]ast.Description, error) {
	portDirs := collectPortDirs(descs)
	out := make([]ast.Description, len(descs))

	for i, d := range descs {
		part, ok := d.(*ast.Part)
		if !ok {
			out[i] = d
			continue
		}

		np, err := convertPart(part, portDirs)
		if err != nil {
			return nil, err
		}

		out[i] = np
	}

	return out, nil
}

// collectPortDirs builds a module-name -> port-name -> direction table
// across every Part in the file set, since deciding whether an instance
// port binding drives a reg-bound output (spec.md §4.3's "reg driving
// output port" repair) requires knowing the instantiated module's own
// port directions, not just the current Part's.
func collectPortDirs(descs []ast.Description) map[string]map[string]ast.Direction {
	out := make(map[string]map[string]ast.Direction)

	for _, d := range descs {
		p, ok := d.(*ast.Part)
		if !ok {
			continue
		}

		dirs := make(map[string]ast.Direction)

		for _, item := range p.Items {
			mi, ok := item.(*ast.MIDecl)
			if !ok {
				continue
			}

			v, ok := mi.Decl.(*ast.Variable)
			if !ok || v.Direction == ast.DirNone {
				continue
			}

			dirs[v.Name] = v.Direction
		}

		out[p.Name] = dirs
	}

	return out
}

func convertPart(p *ast.Part, portDirs map[string]map[string]ast.Direction) (*ast.Part, error) {
	obs := observe(p)

	s := scope.New[declMeta]()
	s.PushFrame(p.Name, false)

	items, err := rewriteModuleItems(p.Items, s, obs, portDirs)

	s.PopFrame()

	if err != nil {
		return nil, err
	}

	out := *p
	out.Items = items

	return &out, nil
}

// Phase 1 — observe.
// =============================================================================

func observe(p *ast.Part) *observation {
	obs := &observation{assigned: make(map[string]bool), declared: make(map[string]declMeta)}

	s := scope.New[declMeta]()
	s.PushFrame(p.Name, false)

	for _, item := range p.Items {
		observeModuleItem(item, s, obs)
	}

	s.PopFrame()

	return obs
}

func observeDecl(d ast.Decl, s *scope.Scoper[declMeta], obs *observation) {
	v, ok := d.(*ast.Variable)
	if !ok {
		return
	}

	meta := declMeta{typ: v.Type, procedural: s.WithinProcedureM()}
	s.InsertElem(v.Name, meta)

	obs.declared[s.CurrentPath(v.Name).String()] = meta
}

func observeModuleItem(item ast.ModuleItem, s *scope.Scoper[declMeta], obs *observation) {
	switch m := item.(type) {
	case *ast.MIDecl:
		observeDecl(m.Decl, s, obs)
	case *ast.MIAlwaysComb:
		observeStmt(m.Stmt, s, obs)
	case *ast.MIAlways:
		observeStmt(m.Stmt, s, obs)
	case *ast.MIFunction:
		s.PushFrame(m.Function.Name, true)

		for _, port := range m.Function.Ports {
			observeDecl(port, s, obs)
		}

		for _, st := range m.Function.Body {
			observeStmt(st, s, obs)
		}

		s.PopFrame()
	case *ast.MITask:
		s.PushFrame(m.Task.Name, true)

		for _, port := range m.Task.Ports {
			observeDecl(port, s, obs)
		}

		for _, st := range m.Task.Body {
			observeStmt(st, s, obs)
		}

		s.PopFrame()
	case *ast.MIGenerate:
		for _, g := range m.Items {
			observeGenItem(g, s, obs)
		}
	}
}

func observeGenItem(g ast.GenItem, s *scope.Scoper[declMeta], obs *observation) {
	switch v := g.(type) {
	case *ast.GIBlock:
		s.PushFrame(v.Name, false)

		for _, item := range v.Items {
			observeModuleItem(item, s, obs)
		}

		s.PopFrame()
	case *ast.GIModuleItem:
		observeModuleItem(v.Item, s, obs)
	}
}

// observeStmt walks procedural statements, collecting every LHS that
// appears on the left of a procedural assignment (or as a $readmemh/
// $readmemb variable argument) into obs.assigned. A Timing statement's
// own Control.Events are ordinary Exprs, never LHSs, so they are never
// candidates here in the first place — nothing further needs excluding
// to honor spec.md §4.3's "the Timing construct's own trigger LHSs are
// excluded".
func observeStmt(stmt ast.Stmt, s *scope.Scoper[declMeta], obs *observation) {
	switch v := stmt.(type) {
	case *ast.Block:
		pushed := v.Name != ""
		if pushed {
			s.PushFrame(v.Name, true)
		}

		for _, d := range v.Decls {
			observeDecl(d, s, obs)
		}

		for _, st := range v.Stmts {
			observeStmt(st, s, obs)
		}

		if pushed {
			s.PopFrame()
		}
	case *ast.Assign:
		observeLHS(v.LHS, s, obs)
	case *ast.If:
		observeStmt(v.Then, s, obs)

		if v.Else != nil {
			observeStmt(v.Else, s, obs)
		}
	case *ast.Timing:
		observeStmt(v.Stmt, s, obs)
	case *ast.ReadMem:
		observeLHS(v.Var, s, obs)
	}
}

// observeLHS destructures a concatenation target into its parts before
// resolving each, per spec.md §4.2's note that callers handling
// concatenations must do so explicitly.
func observeLHS(l ast.LHS, s *scope.Scoper[declMeta], obs *observation) {
	if c, ok := l.(*ast.LHSConcat); ok {
		for _, p := range c.Parts {
			observeLHS(p, s, obs)
		}

		return
	}

	if e := s.LookupLHS(l); e.HasValue() {
		obs.assigned[e.Unwrap().Path.String()] = true
	}
}

// Phase 2 — rewrite.
// =============================================================================

func rewriteDecl(d ast.Decl, s *scope.Scoper[declMeta], obs *observation) (ast.Decl, error) {
	switch v := d.(type) {
	case *ast.Variable:
		iv, ok := v.Type.(*ast.IntegerVector)
		if !ok || iv.Kind != ast.TLogic {
			s.InsertElem(v.Name, declMeta{typ: v.Type, procedural: s.WithinProcedureM()})
			return d, nil
		}

		pathStr := s.CurrentPath(v.Name).String()
		isReg := obs.assigned[pathStr] || s.WithinProcedureM()

		nv := *v
		if isReg {
			nv.Type = &ast.IntegerVector{Kind: ast.TReg, Signing: iv.Signing, Ranges: iv.Ranges}

			if nv.Direction == ast.Inout {
				nv.Direction = ast.Output
			}
		} else {
			nv.Type = &ast.Net{Kind: ast.NetWire, Signing: iv.Signing, Ranges: iv.Ranges}
		}

		s.InsertElem(nv.Name, declMeta{typ: nv.Type, procedural: s.WithinProcedureM()})

		return &nv, nil
	case *ast.Param:
		nv := *v
		nv.Type = ast.CollapseParamType(v.Type)

		return &nv, nil
	default:
		return d, nil
	}
}

func rewriteModuleItems(
	items []ast.ModuleItem,
	s *scope.Scoper[declMeta],
	obs *observation,
	portDirs map[string]map[string]ast.Direction,
) ([]ast.ModuleItem, error) {
	out := make([]ast.ModuleItem, 0, len(items))

	for _, item := range items {
		rewritten, err := rewriteModuleItem(item, s, obs, portDirs)
		if err != nil {
			return nil, err
		}

		out = append(out, rewritten...)
	}

	return out, nil
}

func rewriteModuleItem(
	item ast.ModuleItem,
	s *scope.Scoper[declMeta],
	obs *observation,
	portDirs map[string]map[string]ast.Direction,
) ([]ast.ModuleItem, error) {
	switch m := item.(type) {
	case *ast.MIDecl:
		nd, err := rewriteDecl(m.Decl, s, obs)
		if err != nil {
			return nil, err
		}

		return []ast.ModuleItem{&ast.MIDecl{Decl: nd}}, nil
	case *ast.MIAssign:
		return rewriteAssign(m, s, obs)
	case *ast.MIAlwaysComb:
		ns, err := rewriteStmt(m.Stmt, s, obs)
		if err != nil {
			return nil, err
		}

		return []ast.ModuleItem{&ast.MIAlwaysComb{Stmt: ns}}, nil
	case *ast.MIAlways:
		ns, err := rewriteStmt(m.Stmt, s, obs)
		if err != nil {
			return nil, err
		}

		return []ast.ModuleItem{&ast.MIAlways{Control: m.Control, Stmt: ns}}, nil
	case *ast.Instance:
		return rewriteInstance(m, s, obs, portDirs)
	case *ast.MIGenerate:
		gi, err := rewriteGenItems(m.Items, s, obs, portDirs)
		if err != nil {
			return nil, err
		}

		return []ast.ModuleItem{&ast.MIGenerate{Items: gi}}, nil
	case *ast.MIFunction:
		return rewriteFunction(m, s, obs)
	case *ast.MITask:
		return rewriteTask(m, s, obs)
	default:
		return []ast.ModuleItem{item}, nil
	}
}

func rewriteFunction(m *ast.MIFunction, s *scope.Scoper[declMeta], obs *observation) ([]ast.ModuleItem, error) {
	s.PushFrame(m.Function.Name, true)

	ports := make([]*ast.Variable, len(m.Function.Ports))

	for i, p := range m.Function.Ports {
		nd, err := rewriteDecl(p, s, obs)
		if err != nil {
			s.PopFrame()
			return nil, err
		}

		ports[i] = nd.(*ast.Variable)
	}

	body := make([]ast.Stmt, len(m.Function.Body))

	for i, st := range m.Function.Body {
		ns, err := rewriteStmt(st, s, obs)
		if err != nil {
			s.PopFrame()
			return nil, err
		}

		body[i] = ns
	}

	s.PopFrame()

	nf := *m.Function
	nf.Ports = ports
	nf.Body = body

	return []ast.ModuleItem{&ast.MIFunction{Function: &nf}}, nil
}

func rewriteTask(m *ast.MITask, s *scope.Scoper[declMeta], obs *observation) ([]ast.ModuleItem, error) {
	s.PushFrame(m.Task.Name, true)

	ports := make([]*ast.Variable, len(m.Task.Ports))

	for i, p := range m.Task.Ports {
		nd, err := rewriteDecl(p, s, obs)
		if err != nil {
			s.PopFrame()
			return nil, err
		}

		ports[i] = nd.(*ast.Variable)
	}

	body := make([]ast.Stmt, len(m.Task.Body))

	for i, st := range m.Task.Body {
		ns, err := rewriteStmt(st, s, obs)
		if err != nil {
			s.PopFrame()
			return nil, err
		}

		body[i] = ns
	}

	s.PopFrame()

	nt := *m.Task
	nt.Ports = ports
	nt.Body = body

	return []ast.ModuleItem{&ast.MITask{Task: &nt}}, nil
}

func rewriteGenItems(
	items []ast.GenItem,
	s *scope.Scoper[declMeta],
	obs *observation,
	portDirs map[string]map[string]ast.Direction,
) ([]ast.GenItem, error) {
	out := make([]ast.GenItem, 0, len(items))

	for _, g := range items {
		switch v := g.(type) {
		case *ast.GIBlock:
			s.PushFrame(v.Name, false)

			ni, err := rewriteModuleItems(v.Items, s, obs, portDirs)

			s.PopFrame()

			if err != nil {
				return nil, err
			}

			out = append(out, &ast.GIBlock{Name: v.Name, Items: ni})
		case *ast.GIModuleItem:
			mis, err := rewriteModuleItem(v.Item, s, obs, portDirs)
			if err != nil {
				return nil, err
			}

			for _, mi := range mis {
				out = append(out, &ast.GIModuleItem{Item: mi})
			}
		}
	}

	return out, nil
}

func rewriteStmt(st ast.Stmt, s *scope.Scoper[declMeta], obs *observation) (ast.Stmt, error) {
	switch v := st.(type) {
	case *ast.Block:
		pushed := v.Name != ""
		if pushed {
			s.PushFrame(v.Name, true)
		}

		decls := make([]ast.Decl, len(v.Decls))

		for i, d := range v.Decls {
			nd, err := rewriteDecl(d, s, obs)
			if err != nil {
				if pushed {
					s.PopFrame()
				}

				return nil, err
			}

			decls[i] = nd
		}

		stmts := make([]ast.Stmt, len(v.Stmts))

		for i, s2 := range v.Stmts {
			ns, err := rewriteStmt(s2, s, obs)
			if err != nil {
				if pushed {
					s.PopFrame()
				}

				return nil, err
			}

			stmts[i] = ns
		}

		if pushed {
			s.PopFrame()
		}

		return &ast.Block{Name: v.Name, Decls: decls, Stmts: stmts}, nil
	case *ast.If:
		then, err := rewriteStmt(v.Then, s, obs)
		if err != nil {
			return nil, err
		}

		var els ast.Stmt

		if v.Else != nil {
			els, err = rewriteStmt(v.Else, s, obs)
			if err != nil {
				return nil, err
			}
		}

		return &ast.If{Cond: v.Cond, Then: then, Else: els}, nil
	case *ast.Timing:
		ns, err := rewriteStmt(v.Stmt, s, obs)
		if err != nil {
			return nil, err
		}

		return &ast.Timing{Control: v.Control, Stmt: ns}, nil
	default:
		return st, nil
	}
}

// rewriteAssign implements the "bad continuous assignment" repair: an
// `assign lhs = expr` whose LHS resolves to a reg cannot remain a
// continuous assignment in Verilog-2005, so it is replaced by a
// generate block introducing a fresh trampoline wire, a continuous
// assignment of that wire from expr, and an `always @*` that copies the
// wire into the original (reg) lhs procedurally.
func rewriteAssign(m *ast.MIAssign, s *scope.Scoper[declMeta], obs *observation) ([]ast.ModuleItem, error) {
	if !lhsResolvesToReg(m.LHS, s, obs) {
		return []ast.ModuleItem{m}, nil
	}

	ranges := lhsRanges(m.LHS, s, obs)
	tmp := "sv2v_tmp_" + scope.ShortHash(m.LHS.String(), m.Expr.String())

	wireDecl := &ast.Variable{Type: &ast.Net{Kind: ast.NetWire, Ranges: ranges}, Name: tmp}

	gen := &ast.MIGenerate{Items: []ast.GenItem{
		&ast.GIModuleItem{Item: &ast.MIDecl{Decl: wireDecl}},
		&ast.GIModuleItem{Item: &ast.MIAssign{LHS: &ast.LHSIdent{Name: tmp}, Expr: m.Expr}},
		&ast.GIModuleItem{Item: &ast.MIAlways{
			Control: ast.EventControl{Star: true},
			Stmt:    &ast.Assign{Blocking: true, LHS: m.LHS, Expr: &ast.Ident{Name: tmp}},
		}},
	}}

	return []ast.ModuleItem{gen}, nil
}

// lhsResolvesToReg reports whether any identifier the target writes
// through resolves to a reg, destructuring a concatenation target into
// its parts the same way the observation phase does.
func lhsResolvesToReg(l ast.LHS, s *scope.Scoper[declMeta], obs *observation) bool {
	if c, ok := l.(*ast.LHSConcat); ok {
		for _, p := range c.Parts {
			if lhsResolvesToReg(p, s, obs) {
				return true
			}
		}

		return false
	}

	return obs.isReg(s.LookupLHS(l))
}

// lhsRanges returns the declared packed ranges of a single-base target,
// or nil for a concatenation (whose overall width this pass does not
// compute; the unranged trampoline wire still carries the value).
func lhsRanges(l ast.LHS, s *scope.Scoper[declMeta], obs *observation) ast.Ranges {
	if _, ok := l.(*ast.LHSConcat); ok {
		return nil
	}

	e := s.LookupLHS(l)
	if e.IsEmpty() {
		return nil
	}

	_, ranges := ast.TypeRanges(obs.declared[e.Unwrap().Path.String()].typ)

	return ranges
}

// rewriteInstance implements the "reg driving output port" repair: any
// port binding whose declared direction is Output and whose supplied
// expression resolves to a reg is rerouted through a fresh local wire,
// with an `always @*` copying the wire back into the original reg.
func rewriteInstance(
	m *ast.Instance,
	s *scope.Scoper[declMeta],
	obs *observation,
	portDirs map[string]map[string]ast.Direction,
) ([]ast.ModuleItem, error) {
	dirs := portDirs[m.Module]

	newPorts := make([]ast.PortConnection, len(m.Ports))
	copy(newPorts, m.Ports)

	var preItems, postItems []ast.ModuleItem

	for i, pc := range m.Ports {
		dir, known := dirs[pc.Port]
		if !known || dir != ast.Output || pc.Expr == nil {
			continue
		}

		lhs, ok := exprToLHS(pc.Expr)
		if !ok {
			return nil, &ferror.StructuralError{
				Message: fmt.Sprintf("non-LHS expression bound to output port %s.%s of instance %s",
					m.Module, pc.Port, m.Name),
			}
		}

		e := s.LookupLHS(lhs)
		if !obs.isReg(e) {
			continue
		}

		var ranges ast.Ranges
		if e.HasValue() {
			_, ranges = ast.TypeRanges(obs.declared[e.Unwrap().Path.String()].typ)
		}

		tmp := fmt.Sprintf("sv2v_tmp_%s_%s", m.Name, pc.Port)
		wireDecl := &ast.Variable{Type: &ast.Net{Kind: ast.NetWire, Ranges: ranges}, Name: tmp}

		preItems = append(preItems, &ast.MIDecl{Decl: wireDecl})
		newPorts[i] = ast.PortConnection{Port: pc.Port, Expr: &ast.Ident{Name: tmp}}
		postItems = append(postItems, &ast.MIAlways{
			Control: ast.EventControl{Star: true},
			Stmt:    &ast.Assign{Blocking: true, LHS: lhs, Expr: &ast.Ident{Name: tmp}},
		})
	}

	if len(preItems) == 0 {
		return []ast.ModuleItem{m}, nil
	}

	newInst := *m
	newInst.Ports = newPorts

	out := make([]ast.ModuleItem, 0, 2+len(preItems)+len(postItems))
	out = append(out, &ast.MIComment{Text: fmt.Sprintf("sv2v: trampoline wires for %s", m.Name)})
	out = append(out, preItems...)
	out = append(out, &newInst)
	out = append(out, postItems...)

	return out, nil
}

// exprToLHS recognizes the subset of Expr shapes that also denote a
// valid assignment target (plain identifier, index, part-select),
// mirroring ast.LHS's own shape. Any other expression bound to an
// output port is a structural error per spec.md §4.3.
func exprToLHS(e ast.Expr) (ast.LHS, bool) {
	switch v := e.(type) {
	case *ast.Ident:
		return &ast.LHSIdent{Name: v.Name}, true
	case *ast.Index:
		base, ok := exprToLHS(v.Base)
		if !ok {
			return nil, false
		}

		return &ast.LHSIndex{Base: base, Index: v.Index}, true
	case *ast.PartSelect:
		base, ok := exprToLHS(v.Base)
		if !ok {
			return nil, false
		}

		return &ast.LHSRange{Base: base, MSB: v.MSB, LSB: v.LSB}, true
	default:
		return nil, false
	}
}
