package traverse

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"sv2v/pkg/ast"
)

func renameIdents(suffix string) Mappers {
	return Mappers{
		Expr: func(e ast.Expr) ast.Expr {
			if id, ok := e.(*ast.Ident); ok {
				return &ast.Ident{Name: id.Name + suffix}
			}

			return e
		},
		LHS: func(l ast.LHS) ast.LHS {
			if id, ok := l.(*ast.LHSIdent); ok {
				return &ast.LHSIdent{Name: id.Name + suffix}
			}

			return l
		},
	}
}

func Test_Map_NestedExprs(t *testing.T) {
	in := &ast.Binary{
		Op:   "+",
		Left: &ast.Ident{Name: "a"},
		Right: &ast.Index{
			Base:  &ast.Ident{Name: "b"},
			Index: &ast.Cond{Cond: &ast.Ident{Name: "c"}, Then: &ast.Number{Text: "1"}, Else: &ast.Number{Text: "0"}},
		},
	}

	want := &ast.Binary{
		Op:   "+",
		Left: &ast.Ident{Name: "a_x"},
		Right: &ast.Index{
			Base:  &ast.Ident{Name: "b_x"},
			Index: &ast.Cond{Cond: &ast.Ident{Name: "c_x"}, Then: &ast.Number{Text: "1"}, Else: &ast.Number{Text: "0"}},
		},
	}

	got := Node(in, renameIdents("_x"))

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mapped expression mismatch (-want +got):\n%s", diff)
	}
}

func Test_Map_StmtReachesExprsAndLHS(t *testing.T) {
	in := &ast.Block{
		Name:  "blk",
		Decls: []ast.Decl{&ast.Variable{Type: &ast.IntegerVector{Kind: ast.TLogic}, Name: "t", Init: &ast.Ident{Name: "a"}}},
		Stmts: []ast.Stmt{
			&ast.If{
				Cond: &ast.Ident{Name: "c"},
				Then: &ast.Assign{Blocking: true, LHS: &ast.LHSIdent{Name: "t"}, Expr: &ast.Ident{Name: "a"}},
			},
		},
	}

	got := Node(in, renameIdents("2")).(*ast.Block)

	init := got.Decls[0].(*ast.Variable).Init.(*ast.Ident)
	if init.Name != "a2" {
		t.Errorf("declaration init mapped to %q, want a2", init.Name)
	}

	assign := got.Stmts[0].(*ast.If).Then.(*ast.Assign)
	if assign.LHS.(*ast.LHSIdent).Name != "t2" {
		t.Errorf("assignment LHS mapped to %q, want t2", assign.LHS.String())
	}

	if assign.Expr.(*ast.Ident).Name != "a2" {
		t.Errorf("assignment RHS mapped to %q, want a2", assign.Expr.String())
	}
}

func Test_Map_ModuleItemReachesInstancePorts(t *testing.T) {
	in := &ast.Instance{
		Module: "sub",
		Name:   "u",
		Ports:  []ast.PortConnection{{Port: "q", Expr: &ast.Ident{Name: "r"}}},
	}

	got := MapModuleItem(in, renameIdents("_m")).(*ast.Instance)

	if got.Ports[0].Expr.(*ast.Ident).Name != "r_m" {
		t.Errorf("port expression mapped to %q, want r_m", got.Ports[0].Expr.String())
	}
}

func Test_Map_TypeRangesMapped(t *testing.T) {
	in := &ast.Variable{
		Type: &ast.IntegerVector{
			Kind:   ast.TLogic,
			Ranges: ast.Ranges{ast.NewRange(&ast.Ident{Name: "W"}, &ast.Number{Text: "0"})},
		},
		Name: "x",
	}

	got := MapDecl(in, renameIdents("1")).(*ast.Variable)

	msb := got.Type.(*ast.IntegerVector).Ranges[0].MSB.(*ast.Ident)
	if msb.Name != "W1" {
		t.Errorf("range bound mapped to %q, want W1", msb.Name)
	}
}

func Test_Collect_GathersIdents(t *testing.T) {
	var seen []string

	item := &ast.MIAlwaysComb{
		Stmt: &ast.Assign{
			Blocking: true,
			LHS:      &ast.LHSIdent{Name: "o"},
			Expr:     &ast.Binary{Op: "&", Left: &ast.Ident{Name: "a"}, Right: &ast.Ident{Name: "b"}},
		},
	}

	Collect(item, Mappers{
		Expr: func(e ast.Expr) ast.Expr {
			if id, ok := e.(*ast.Ident); ok {
				seen = append(seen, id.Name)
			}

			return e
		},
	})

	want := []string{"a", "b"}
	if diff := cmp.Diff(want, seen); diff != "" {
		t.Errorf("collected idents mismatch (-want +got):\n%s", diff)
	}
}

func Test_Map_IdentityWhenNoMappers(t *testing.T) {
	in := &ast.Part{
		Kind: ast.ModuleKind,
		Name: "m",
		Items: []ast.ModuleItem{
			&ast.MIAssign{LHS: &ast.LHSIdent{Name: "o"}, Expr: &ast.Number{Text: "1'b0"}},
		},
	}

	got := MapDescription(in, Mappers{})

	if diff := cmp.Diff(ast.Description(in), got); diff != "" {
		t.Errorf("identity map changed the tree (-want +got):\n%s", diff)
	}
}
