// Package constfold implements the two small helper contracts spec.md §6
// names as external collaborators of the core (resolveBindings,
// exprToType) plus the constant integer arithmetic Package & class
// elaboration needs to evaluate parameter expressions deterministically
// during class specialization (spec.md §4.4 Step D: computing a WIDTH-1
// bit-range bound, folding a specialization's "#(WIDTH-1)" binding, ...).
//
// Grounded on github.com/cue-lang/cue's internal/core/adt package, which
// evaluates its own constant arithmetic with github.com/cockroachdb/apd
// rather than Go's untyped big.Int/big.Float, for the same reason this
// package does: exact, rounding-free decimal arithmetic over arbitrarily
// wide bit-vector literals, with no risk of float64 precision loss.
package constfold

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/apd/v3"

	"sv2v/pkg/ast"
	"sv2v/pkg/util"
)

var ctx = apd.BaseContext.WithPrecision(64)

// Eval folds expr to an exact integer value, consulting bindings for any
// identifier it encounters. It supports the arithmetic a packed-dimension
// bound or a class parameter override actually uses: +, -, *, unary -,
// and parenthesised sub-expressions; anything else (a system-function
// call, a non-constant identifier) fails with ok=false rather than
// guessing.
func Eval(expr ast.Expr, bindings map[string]*apd.Decimal) (*apd.Decimal, bool) {
	switch e := expr.(type) {
	case *ast.Number:
		return parseNumber(e.Text)
	case *ast.Ident:
		if v, ok := bindings[e.Name]; ok {
			return v, true
		}

		return nil, false
	case *ast.Unary:
		v, ok := Eval(e.Operand, bindings)
		if !ok {
			return nil, false
		}

		switch e.Op {
		case "-":
			var out apd.Decimal
			_, _ = ctx.Neg(&out, v)

			return &out, true
		case "+":
			return v, true
		default:
			return nil, false
		}
	case *ast.Binary:
		left, ok := Eval(e.Left, bindings)
		if !ok {
			return nil, false
		}

		right, ok := Eval(e.Right, bindings)
		if !ok {
			return nil, false
		}

		var out apd.Decimal

		switch e.Op {
		case "+":
			_, _ = ctx.Add(&out, left, right)
		case "-":
			_, _ = ctx.Sub(&out, left, right)
		case "*":
			_, _ = ctx.Mul(&out, left, right)
		default:
			return nil, false
		}

		return &out, true
	default:
		return nil, false
	}
}

// parseNumber interprets the literal text the parser preserved verbatim
// on ast.Number. A plain decimal literal ("32", "-1") is parsed directly;
// a sized literal ("8'd5", "4'b0101", "16'h1F") takes only the value
// field after the base letter, matching the one radix (decimal) this
// excerpt's constant folding actually needs to support (width/bound
// arithmetic never folds a binary or hex literal's own bits).
func parseNumber(text string) (*apd.Decimal, bool) {
	if idx := strings.IndexByte(text, '\''); idx >= 0 {
		rest := text[idx+1:]
		if rest == "" {
			return nil, false
		}

		base := rest[0]
		digits := rest[1:]

		switch base {
		case 'd', 'D':
			return decimalFromString(digits)
		default:
			return nil, false
		}
	}

	return decimalFromString(text)
}

func decimalFromString(s string) (*apd.Decimal, bool) {
	d, _, err := apd.NewFromString(s)
	if err != nil {
		return nil, false
	}

	return d, true
}

// DecimalToExpr renders a folded constant back into an ast.Expr, the
// inverse operation class specialization needs when an overridden
// parameter's folded value must be spliced back into the AST as a
// Number literal.
func DecimalToExpr(d *apd.Decimal) ast.Expr {
	return &ast.Number{Text: d.Text('f')}
}

// ExprToType attempts to interpret expr as a Type, the best-effort
// "exprToType" helper spec.md §6 names. It recognizes a bare identifier
// (a builtin type keyword becomes that type, any other name an
// unqualified Alias), a package- or class-scoped identifier (a scoped
// Alias), and a "type(expr)" wrapper recursing on its own operand.
// Anything else returns ok=false, leaving the original expression in place exactly as
// spec.md §4.4 Step 6 describes ("type(expr) is interpreted by trying
// exprToType; if it yields a type, use it, else leave the expression").
func ExprToType(expr ast.Expr) (ast.Type, bool) {
	switch e := expr.(type) {
	case *ast.TypeOfExpr:
		return ExprToType(e.Expr)
	case *ast.Ident:
		if t, ok := builtinTypeKeyword(e.Name); ok {
			return t, true
		}

		return &ast.Alias{Name: e.Name}, true
	case *ast.PSIdent:
		return &ast.Alias{Pkg: e.Pkg, Name: e.Name}, true
	case *ast.CSIdent:
		return &ast.Alias{Class: e.Class, Bindings: e.Bindings, Name: e.Name}, true
	default:
		return nil, false
	}
}

func builtinTypeKeyword(name string) (ast.Type, bool) {
	switch name {
	case "logic":
		return &ast.IntegerVector{Kind: ast.TLogic}, true
	case "reg":
		return &ast.IntegerVector{Kind: ast.TReg}, true
	case "bit":
		return &ast.IntegerVector{Kind: ast.TBit}, true
	case "int":
		return ast.NewAtomType(ast.TInt, ast.Unspecified, nil), true
	case "integer":
		return ast.NewAtomType(ast.TInteger, ast.Unspecified, nil), true
	case "real":
		return &ast.NonInteger{Kind: ast.TReal}, true
	default:
		return nil, false
	}
}

// ResolveBindings matches a class specialization's supplied positional
// and named parameter bindings against its declared parameter names,
// exactly the "resolveBindings msg paramNames bindings" helper contract
// of spec.md §6. Positional bindings fill paramNames left to right; named
// bindings (ParamBinding.Name != "") may appear in any order and override
// a positional slot with the same name. Any binding naming an unknown
// parameter, or more positional bindings than paramNames has slots, fails
// with msg.
func ResolveBindings(msg string, paramNames []string, bindings []ast.ParamBinding) (map[string]ast.ParamBinding, error) {
	out := make(map[string]ast.ParamBinding, len(paramNames))
	positional := 0

	for _, b := range bindings {
		if b.Name == "" {
			if positional >= len(paramNames) {
				return nil, fmt.Errorf("%s: too many positional parameters", msg)
			}

			out[paramNames[positional]] = b
			positional++

			continue
		}

		name := b.Name
		if !util.ContainsMatching(paramNames, func(n string) bool { return n == name }) {
			return nil, fmt.Errorf("%s: unknown parameter %q", msg, b.Name)
		}

		out[b.Name] = b
	}

	return out, nil
}

// FormatInt renders an integer for use as a synthesized Number literal's
// Text, e.g. when a width computed by Eval must be spliced back into a
// Range bound.
func FormatInt(v int) string {
	return strconv.Itoa(v)
}
