package pkgelab

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"sv2v/pkg/ast"
	"sv2v/pkg/ferror"
	"sv2v/pkg/scope"
)

func num(text string) *ast.Number { return &ast.Number{Text: text} }

func param(name string, expr ast.Expr) ast.PackageItem {
	return &ast.DeclItem{Decl: &ast.Param{Kind: ast.Parameter, Name: name, Expr: expr}}
}

func convertOK(t *testing.T, descs ...ast.Description) []ast.Description {
	t.Helper()

	out, err := Convert(descs)
	if err != nil {
		t.Fatal(err)
	}

	return out
}

func topItems(descs []ast.Description) []ast.PackageItem {
	var out []ast.PackageItem

	for _, d := range descs {
		if ti, ok := d.(*ast.TopItem); ok {
			if di, ok := ti.Item.(*ast.DeclItem); ok {
				if _, isComment := di.Decl.(*ast.CommentDecl); isComment {
					continue
				}
			}

			out = append(out, ti.Item)
		}
	}

	return out
}

// package A; parameter X=5; endpackage
// package B; import A::*; parameter Y=X+1; endpackage
// produces top-level "parameter A_X = 5; parameter B_Y = A_X+1;".
func Test_Elab_WildcardImport(t *testing.T) {
	descs := convertOK(t,
		&ast.Package{Name: "A", Items: []ast.PackageItem{param("X", num("5"))}},
		&ast.Package{Name: "B", Items: []ast.PackageItem{
			&ast.Import{Pkg: "A"},
			param("Y", &ast.Binary{Op: "+", Left: &ast.Ident{Name: "X"}, Right: num("1")}),
		}},
	)

	want := []ast.PackageItem{
		param("A_X", num("5")),
		param("B_Y", &ast.Binary{Op: "+", Left: &ast.Ident{Name: "A_X"}, Right: num("1")}),
	}

	if diff := cmp.Diff(want, topItems(descs)); diff != "" {
		t.Errorf("elaborated items mismatch (-want +got):\n%s", diff)
	}
}

// Two wildcard imports exposing the same name make any reference to it
// fatally ambiguous, naming both candidate packages.
func Test_Elab_AmbiguousImport(t *testing.T) {
	_, err := Convert([]ast.Description{
		&ast.Package{Name: "A", Items: []ast.PackageItem{param("X", num("1"))}},
		&ast.Package{Name: "B", Items: []ast.PackageItem{param("X", num("2"))}},
		&ast.Part{Kind: ast.ModuleKind, Name: "M", Items: []ast.ModuleItem{
			&ast.MIImport{Import: &ast.Import{Pkg: "A"}},
			&ast.MIImport{Import: &ast.Import{Pkg: "B"}},
			&ast.MIDecl{Decl: &ast.Variable{Type: &ast.Net{Kind: ast.NetWire}, Name: "w", Init: &ast.Ident{Name: "X"}}},
		}},
	})

	var ambiguous *ferror.AmbiguousReference
	if !errors.As(err, &ambiguous) {
		t.Fatalf("got %v, want an ambiguous-reference error", err)
	}

	msg := err.Error()
	if !strings.Contains(msg, "A") || !strings.Contains(msg, "B") {
		t.Errorf("ambiguity error %q does not name both packages", msg)
	}
}

func Test_Elab_DependencyLoop(t *testing.T) {
	_, err := Convert([]ast.Description{
		&ast.Package{Name: "A", Items: []ast.PackageItem{&ast.Import{Pkg: "B"}}},
		&ast.Package{Name: "B", Items: []ast.PackageItem{&ast.Import{Pkg: "A"}}},
	})

	var cycle *ferror.DependencyCycle
	if !errors.As(err, &cycle) {
		t.Fatalf("got %v, want a dependency-cycle error", err)
	}

	msg := err.Error()
	if !strings.Contains(msg, "A") || !strings.Contains(msg, "B") {
		t.Errorf("cycle error %q does not name both packages", msg)
	}
}

func Test_Elab_MissingPackage(t *testing.T) {
	_, err := Convert([]ast.Description{
		&ast.Package{Name: "A", Items: []ast.PackageItem{&ast.Import{Pkg: "NoSuch"}}},
	})

	var missing *ferror.MissingSymbol
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want a missing-symbol error", err)
	}
}

func Test_Elab_ImportDeclConflict(t *testing.T) {
	_, err := Convert([]ast.Description{
		&ast.Package{Name: "A", Items: []ast.PackageItem{param("X", num("1"))}},
		&ast.Package{Name: "B", Items: []ast.PackageItem{
			&ast.Import{Pkg: "A", Ident: "X"},
			param("X", num("2")),
		}},
	})

	var conflict *ferror.NameConflict
	if !errors.As(err, &conflict) {
		t.Fatalf("got %v, want a name-conflict error", err)
	}
}

func Test_Elab_ExportOutsidePackage(t *testing.T) {
	_, err := Convert([]ast.Description{
		&ast.TopItem{Item: &ast.Export{Pkg: "A", Ident: "X"}},
	})

	var structural *ferror.StructuralError
	if !errors.As(err, &structural) {
		t.Fatalf("got %v, want a structural error", err)
	}
}

// Re-exported symbols keep their root package's prefix: importing X
// through B (which re-exports it from A) still references A_X.
func Test_Elab_ReexportKeepsRoot(t *testing.T) {
	descs := convertOK(t,
		&ast.Package{Name: "A", Items: []ast.PackageItem{param("X", num("1"))}},
		&ast.Package{Name: "B", Items: []ast.PackageItem{
			&ast.Import{Pkg: "A", Ident: "X"},
			&ast.Export{Pkg: "A", Ident: "X"},
		}},
		&ast.Part{Kind: ast.ModuleKind, Name: "M", Items: []ast.ModuleItem{
			&ast.MIImport{Import: &ast.Import{Pkg: "B", Ident: "X"}},
			&ast.MIDecl{Decl: &ast.Variable{Type: &ast.Net{Kind: ast.NetWire}, Name: "w", Init: &ast.Ident{Name: "X"}}},
		}},
	)

	var part *ast.Part

	for _, d := range descs {
		if p, ok := d.(*ast.Part); ok {
			part = p
		}
	}

	v := part.Items[0].(*ast.MIDecl).Decl.(*ast.Variable)
	if got := v.Init.(*ast.Ident).Name; got != "A_X" {
		t.Errorf("re-exported reference resolved to %q, want A_X", got)
	}
}

func Test_Elab_ExportNotImportedFatal(t *testing.T) {
	_, err := Convert([]ast.Description{
		&ast.Package{Name: "A", Items: []ast.PackageItem{param("X", num("1"))}},
		&ast.Package{Name: "B", Items: []ast.PackageItem{
			&ast.Export{Pkg: "A", Ident: "X"},
		}},
	})

	var missing *ferror.MissingSymbol
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want a missing-symbol error", err)
	}
}

// reorderItems pulls a locally-defined dependency forward so every use
// follows its defining item.
func Test_Elab_ReorderUseBeforeDef(t *testing.T) {
	descs := convertOK(t,
		&ast.Package{Name: "P", Items: []ast.PackageItem{
			param("Y", &ast.Binary{Op: "+", Left: &ast.Ident{Name: "X"}, Right: num("1")}),
			param("X", num("2")),
		}},
	)

	want := []ast.PackageItem{
		param("P_X", num("2")),
		param("P_Y", &ast.Binary{Op: "+", Left: &ast.Ident{Name: "P_X"}, Right: num("1")}),
	}

	if diff := cmp.Diff(want, topItems(descs)); diff != "" {
		t.Errorf("reordered items mismatch (-want +got):\n%s", diff)
	}
}

func Test_Elab_PSIdentReference(t *testing.T) {
	descs := convertOK(t,
		&ast.Package{Name: "A", Items: []ast.PackageItem{param("X", num("1"))}},
		&ast.Part{Kind: ast.ModuleKind, Name: "M", Items: []ast.ModuleItem{
			&ast.MIDecl{Decl: &ast.Variable{Type: &ast.Net{Kind: ast.NetWire}, Name: "w", Init: &ast.PSIdent{Pkg: "A", Name: "X"}}},
		}},
	)

	var part *ast.Part

	for _, d := range descs {
		if p, ok := d.(*ast.Part); ok {
			part = p
		}
	}

	v := part.Items[0].(*ast.MIDecl).Decl.(*ast.Variable)
	if got := v.Init.(*ast.Ident).Name; got != "A_X" {
		t.Errorf("package-scoped reference resolved to %q, want A_X", got)
	}
}

func Test_Elab_PSIdentMissingMember(t *testing.T) {
	_, err := Convert([]ast.Description{
		&ast.Package{Name: "A", Items: []ast.PackageItem{param("X", num("1"))}},
		&ast.Part{Kind: ast.ModuleKind, Name: "M", Items: []ast.ModuleItem{
			&ast.MIDecl{Decl: &ast.Variable{Type: &ast.Net{Kind: ast.NetWire}, Name: "w", Init: &ast.PSIdent{Pkg: "A", Name: "Nope"}}},
		}},
	})

	var missing *ferror.MissingSymbol
	if !errors.As(err, &missing) {
		t.Fatalf("got %v, want a missing-symbol error", err)
	}
}

func specClass() *ast.Class {
	return &ast.Class{
		Name: "P",
		Params: []ast.Decl{
			&ast.Param{Kind: ast.Parameter, Name: "WIDTH", Expr: num("1")},
			&ast.ParamType{Kind: ast.Parameter, Name: "BASE", Type: &ast.IntegerVector{Kind: ast.TLogic}},
		},
		Items: []ast.PackageItem{
			&ast.DeclItem{Decl: &ast.Typedef{
				Type: &ast.Alias{
					Name:   "BASE",
					Ranges: ast.Ranges{ast.NewRange(&ast.Binary{Op: "-", Left: &ast.Ident{Name: "WIDTH"}, Right: num("1")}, num("0"))},
				},
				Name: "Unit",
			}},
		},
	}
}

// class P #(parameter WIDTH=1, parameter type BASE=logic);
//   typedef BASE [WIDTH-1:0] Unit;
// endclass
// module top; P#(2)::Unit b; endmodule
// yields a synthetic package P_<h> whose folded typedef is injected into
// top ahead of the declaration that uses it.
func Test_Elab_ClassSpecialization(t *testing.T) {
	descs := convertOK(t,
		specClass(),
		&ast.Part{Kind: ast.ModuleKind, Name: "top", Items: []ast.ModuleItem{
			&ast.MIDecl{Decl: &ast.Variable{
				Type: &ast.Alias{Class: "P", Bindings: []ast.ParamBinding{{Expr: num("2")}}, Name: "Unit"},
				Name: "b",
			}},
		}},
	)

	syn := "P_" + scope.ShortHash("WIDTH=2")

	var part *ast.Part

	for _, d := range descs {
		if p, ok := d.(*ast.Part); ok {
			part = p
		}
	}

	want := []ast.ModuleItem{
		&ast.MIDecl{Decl: &ast.Typedef{
			Type: &ast.IntegerVector{Kind: ast.TLogic, Ranges: ast.Ranges{ast.NewRange(num("1"), num("0"))}},
			Name: syn + "_Unit",
		}},
		&ast.MIDecl{Decl: &ast.Variable{Type: &ast.Alias{Name: syn + "_Unit"}, Name: "b"}},
	}

	if diff := cmp.Diff(want, part.Items); diff != "" {
		t.Errorf("specialized module mismatch (-want +got):\n%s", diff)
	}
}

// Two identical specializations, even in different modules, share one
// synthetic package name.
func Test_Elab_SpecializationDeterministic(t *testing.T) {
	mkModule := func(name string) *ast.Part {
		return &ast.Part{Kind: ast.ModuleKind, Name: name, Items: []ast.ModuleItem{
			&ast.MIDecl{Decl: &ast.Variable{
				Type: &ast.Alias{Class: "P", Bindings: []ast.ParamBinding{{Expr: num("2")}}, Name: "Unit"},
				Name: "b",
			}},
		}}
	}

	descs := convertOK(t, specClass(), mkModule("m1"), mkModule("m2"))

	var types []string

	for _, d := range descs {
		p, ok := d.(*ast.Part)
		if !ok {
			continue
		}

		for _, it := range p.Items {
			if mi, ok := it.(*ast.MIDecl); ok {
				if v, ok := mi.Decl.(*ast.Variable); ok && v.Name == "b" {
					types = append(types, v.Type.String())
				}
			}
		}
	}

	if len(types) != 2 || types[0] != types[1] {
		t.Errorf("identical specializations resolved differently: %v", types)
	}
}

func Test_Elab_ParameterlessClassReference(t *testing.T) {
	descs := convertOK(t,
		&ast.Class{Name: "C", Items: []ast.PackageItem{
			&ast.DeclItem{Decl: &ast.Typedef{Type: &ast.IntegerVector{Kind: ast.TLogic}, Name: "T"}},
		}},
		&ast.Part{Kind: ast.ModuleKind, Name: "M", Items: []ast.ModuleItem{
			&ast.MIDecl{Decl: &ast.Variable{Type: &ast.Alias{Pkg: "C", Name: "T"}, Name: "x"}},
		}},
	)

	var part *ast.Part

	for _, d := range descs {
		if p, ok := d.(*ast.Part); ok {
			part = p
		}
	}

	v := part.Items[len(part.Items)-1].(*ast.MIDecl).Decl.(*ast.Variable)
	if !strings.HasPrefix(v.Type.String(), "C_") {
		t.Errorf("parameterless class member resolved to %q, want C_<h>_T", v.Type.String())
	}
}

func Test_Elab_ParameterizedClassWithoutBindings(t *testing.T) {
	_, err := Convert([]ast.Description{
		specClass(),
		&ast.Part{Kind: ast.ModuleKind, Name: "M", Items: []ast.ModuleItem{
			&ast.MIDecl{Decl: &ast.Variable{Type: &ast.Alias{Pkg: "P", Name: "Unit"}, Name: "x"}},
		}},
	})

	var classErr *ferror.ClassParameterError
	if !errors.As(err, &classErr) {
		t.Fatalf("got %v, want a class-parameter error", err)
	}
}

func Test_Elab_UnknownClassFatal(t *testing.T) {
	_, err := Convert([]ast.Description{
		&ast.Part{Kind: ast.ModuleKind, Name: "M", Items: []ast.ModuleItem{
			&ast.MIDecl{Decl: &ast.Variable{
				Type: &ast.Alias{Class: "NoSuch", Bindings: []ast.ParamBinding{{Expr: num("1")}}, Name: "T"},
				Name: "x",
			}},
		}},
	})

	var classErr *ferror.ClassParameterError
	if !errors.As(err, &classErr) {
		t.Fatalf("got %v, want a class-parameter error", err)
	}
}

func Test_Elab_TypeParamValueMismatch(t *testing.T) {
	_, err := Convert([]ast.Description{
		specClass(),
		&ast.Part{Kind: ast.ModuleKind, Name: "M", Items: []ast.ModuleItem{
			&ast.MIDecl{Decl: &ast.Variable{
				Type: &ast.Alias{
					Class:    "P",
					Bindings: []ast.ParamBinding{{Name: "WIDTH", Type: &ast.IntegerVector{Kind: ast.TLogic}}},
					Name:     "Unit",
				},
				Name: "x",
			}},
		}},
	})

	var classErr *ferror.ClassParameterError
	if !errors.As(err, &classErr) {
		t.Fatalf("got %v, want a class-parameter error", err)
	}
}

// Identifiers declared inside a package procedure keep their bare names;
// only the function itself is mangled.
func Test_Elab_ProcedureLocalsUnmangled(t *testing.T) {
	descs := convertOK(t,
		&ast.Package{Name: "P", Items: []ast.PackageItem{
			&ast.Function{
				Name:       "f",
				ReturnType: &ast.IntegerVector{Kind: ast.TLogic},
				Ports:      []*ast.Variable{{Direction: ast.Input, Type: &ast.IntegerVector{Kind: ast.TLogic}, Name: "a"}},
				Body: []ast.Stmt{
					&ast.Assign{Blocking: true, LHS: &ast.LHSIdent{Name: "f"}, Expr: &ast.Ident{Name: "a"}},
				},
			},
		}},
	)

	items := topItems(descs)
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}

	f := items[0].(*ast.Function)
	if f.Name != "P_f" {
		t.Errorf("function mangled to %q, want P_f", f.Name)
	}

	if f.Ports[0].Name != "a" {
		t.Errorf("procedure-local port mangled to %q, want a", f.Ports[0].Name)
	}
}

func Test_Elab_EnumItemsMangled(t *testing.T) {
	descs := convertOK(t,
		&ast.Package{Name: "P", Items: []ast.PackageItem{
			&ast.DeclItem{Decl: &ast.Typedef{
				Type: &ast.Enum{Base: &ast.IntegerVector{Kind: ast.TLogic}, Items: []string{"RED", "GREEN"}},
				Name: "color_t",
			}},
			param("FIRST", &ast.Ident{Name: "RED"}),
		}},
	)

	items := topItems(descs)

	td := items[0].(*ast.DeclItem).Decl.(*ast.Typedef)
	en := td.Type.(*ast.Enum)

	if en.Items[0] != "P_RED" || en.Items[1] != "P_GREEN" {
		t.Errorf("enum items mangled to %v, want P_RED, P_GREEN", en.Items)
	}

	first := items[1].(*ast.DeclItem).Decl.(*ast.Param)
	if got := first.Expr.(*ast.Ident).Name; got != "P_RED" {
		t.Errorf("enum item reference resolved to %q, want P_RED", got)
	}
}
