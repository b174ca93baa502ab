package constfold

import (
	"testing"

	"github.com/cockroachdb/apd/v3"

	"sv2v/pkg/ast"
)

func evalInt(t *testing.T, e ast.Expr, bindings map[string]*apd.Decimal) string {
	t.Helper()

	v, ok := Eval(e, bindings)
	if !ok {
		t.Fatalf("could not fold %s", e.String())
	}

	return v.Text('f')
}

func Test_Eval_Literal(t *testing.T) {
	if got := evalInt(t, &ast.Number{Text: "32"}, nil); got != "32" {
		t.Errorf("folded to %s, want 32", got)
	}
}

func Test_Eval_SizedDecimal(t *testing.T) {
	if got := evalInt(t, &ast.Number{Text: "8'd5"}, nil); got != "5" {
		t.Errorf("folded to %s, want 5", got)
	}
}

func Test_Eval_Arithmetic(t *testing.T) {
	e := &ast.Binary{
		Op:    "-",
		Left:  &ast.Binary{Op: "*", Left: &ast.Number{Text: "4"}, Right: &ast.Number{Text: "8"}},
		Right: &ast.Number{Text: "1"},
	}

	if got := evalInt(t, e, nil); got != "31" {
		t.Errorf("folded to %s, want 31", got)
	}
}

func Test_Eval_Negation(t *testing.T) {
	e := &ast.Unary{Op: "-", Operand: &ast.Number{Text: "3"}}

	if got := evalInt(t, e, nil); got != "-3" {
		t.Errorf("folded to %s, want -3", got)
	}
}

func Test_Eval_BoundIdent(t *testing.T) {
	two, _, _ := apd.NewFromString("2")
	e := &ast.Binary{Op: "-", Left: &ast.Ident{Name: "WIDTH"}, Right: &ast.Number{Text: "1"}}

	if got := evalInt(t, e, map[string]*apd.Decimal{"WIDTH": two}); got != "1" {
		t.Errorf("folded to %s, want 1", got)
	}
}

func Test_Eval_UnboundIdentFails(t *testing.T) {
	if _, ok := Eval(&ast.Ident{Name: "W"}, nil); ok {
		t.Error("unbound identifier folded")
	}
}

func Test_Eval_HexLiteralFails(t *testing.T) {
	if _, ok := Eval(&ast.Number{Text: "16'h1F"}, nil); ok {
		t.Error("hex literal folded; only decimal bases are supported")
	}
}

func Test_ExprToType_Keyword(t *testing.T) {
	ty, ok := ExprToType(&ast.Ident{Name: "logic"})
	if !ok {
		t.Fatal("logic keyword not converted")
	}

	iv, ok := ty.(*ast.IntegerVector)
	if !ok || iv.Kind != ast.TLogic {
		t.Errorf("converted to %s, want logic", ty.String())
	}
}

func Test_ExprToType_Alias(t *testing.T) {
	ty, ok := ExprToType(&ast.Ident{Name: "word_t"})
	if !ok {
		t.Fatal("type name not converted")
	}

	if a, ok := ty.(*ast.Alias); !ok || a.Name != "word_t" {
		t.Errorf("converted to %s, want word_t alias", ty.String())
	}
}

func Test_ExprToType_PackageScoped(t *testing.T) {
	ty, ok := ExprToType(&ast.PSIdent{Pkg: "P", Name: "word_t"})
	if !ok {
		t.Fatal("package-scoped type name not converted")
	}

	if a, ok := ty.(*ast.Alias); !ok || a.Pkg != "P" || a.Name != "word_t" {
		t.Errorf("converted to %s, want P::word_t alias", ty.String())
	}
}

func Test_ExprToType_NonTypeFails(t *testing.T) {
	if _, ok := ExprToType(&ast.Number{Text: "5"}); ok {
		t.Error("numeric literal converted to a type")
	}
}

func Test_ResolveBindings_Positional(t *testing.T) {
	out, err := ResolveBindings("test", []string{"A", "B"}, []ast.ParamBinding{
		{Expr: &ast.Number{Text: "1"}},
		{Expr: &ast.Number{Text: "2"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if out["A"].Expr.String() != "1" || out["B"].Expr.String() != "2" {
		t.Errorf("positional bindings resolved to %v", out)
	}
}

func Test_ResolveBindings_NamedOverridesPositional(t *testing.T) {
	out, err := ResolveBindings("test", []string{"A", "B"}, []ast.ParamBinding{
		{Expr: &ast.Number{Text: "1"}},
		{Name: "A", Expr: &ast.Number{Text: "9"}},
	})
	if err != nil {
		t.Fatal(err)
	}

	if out["A"].Expr.String() != "9" {
		t.Errorf("named binding did not override positional: %s", out["A"].Expr.String())
	}
}

func Test_ResolveBindings_UnknownName(t *testing.T) {
	_, err := ResolveBindings("test", []string{"A"}, []ast.ParamBinding{
		{Name: "Z", Expr: &ast.Number{Text: "1"}},
	})
	if err == nil {
		t.Error("unknown parameter name accepted")
	}
}

func Test_ResolveBindings_TooManyPositional(t *testing.T) {
	_, err := ResolveBindings("test", []string{"A"}, []ast.ParamBinding{
		{Expr: &ast.Number{Text: "1"}},
		{Expr: &ast.Number{Text: "2"}},
	})
	if err == nil {
		t.Error("excess positional binding accepted")
	}
}
