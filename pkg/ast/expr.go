package ast

import (
	"fmt"
	"strings"
)

// Expr is the sealed family of expression nodes.
type Expr interface {
	Node
	isExpr()
}

// Number is a raw numeric literal, kept as the literal text the parser saw
// (e.g. "4'b0101", "32") since reformatting numeric literals is outside
// this compiler's scope; pkg/constfold is responsible for interpreting the
// text where arithmetic must actually be performed on it.
type Number struct {
	Text string
}

func (*Number) isExpr() {}

func (e *Number) String() string { return e.Text }

// StringLit is a string literal, printed with its surrounding quotes.
type StringLit struct {
	Value string
}

func (*StringLit) isExpr() {}

func (e *StringLit) String() string { return fmt.Sprintf("%q", e.Value) }

// Ident is a plain, unqualified identifier reference. Package/class
// elaboration (pkg/convert/pkgelab) replaces these with new Ident nodes
// carrying the mangled names once their binding is known.
type Ident struct {
	Name string
}

func (*Ident) isExpr() {}

func (e *Ident) String() string { return e.Name }

// PSIdent is a package-scoped reference "P::x".
type PSIdent struct {
	Pkg  string
	Name string
}

func (*PSIdent) isExpr() {}

func (e *PSIdent) String() string { return fmt.Sprintf("%s::%s", e.Pkg, e.Name) }

// ParamBinding is one actual parameter supplied to a class specialization,
// either positional (Name == "") or named. Exactly one of Expr or Type is
// set, mirroring the expr-parameter vs type-parameter distinction in
// ast.Param / ast.ParamType.
type ParamBinding struct {
	Name string
	Expr Expr
	Type Type
}

func (b ParamBinding) String() string {
	value := ""

	switch {
	case b.Type != nil:
		value = b.Type.String()
	case b.Expr != nil:
		value = b.Expr.String()
	}

	if b.Name == "" {
		return value
	}

	return fmt.Sprintf(".%s(%s)", b.Name, value)
}

// CSIdent is a class-scoped reference "C#(bindings)::x".
type CSIdent struct {
	Class    string
	Bindings []ParamBinding
	Name     string
}

func (*CSIdent) isExpr() {}

func (e *CSIdent) String() string {
	return fmt.Sprintf("%s#(%s)::%s", e.Class, joinBindings(e.Bindings), e.Name)
}

// Binary is a binary operator expression.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

func (*Binary) isExpr() {}

func (e *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", e.Left.String(), e.Op, e.Right.String())
}

// Unary is a unary (prefix) operator expression.
type Unary struct {
	Op      string
	Operand Expr
}

func (*Unary) isExpr() {}

func (e *Unary) String() string { return fmt.Sprintf("(%s%s)", e.Op, e.Operand.String()) }

// Cond is the ternary conditional operator "cond ? then : else".
type Cond struct {
	Cond Expr
	Then Expr
	Else Expr
}

func (*Cond) isExpr() {}

func (e *Cond) String() string {
	return fmt.Sprintf("(%s ? %s : %s)", e.Cond.String(), e.Then.String(), e.Else.String())
}

// Call is a function call or system-task/function invocation such as
// "$readmemh(file, mem)" or "$size(x)".
type Call struct {
	Name string
	Args []Expr
}

func (*Call) isExpr() {}

func (e *Call) String() string {
	args := make([]string, len(e.Args))
	for i, a := range e.Args {
		args[i] = a.String()
	}

	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(args, ", "))
}

// Index is an array/bit-select expression "base[index]".
type Index struct {
	Base  Expr
	Index Expr
}

func (*Index) isExpr() {}

func (e *Index) String() string { return fmt.Sprintf("%s[%s]", e.Base.String(), e.Index.String()) }

// PartSelect is a range (part) select expression "base[msb:lsb]".
type PartSelect struct {
	Base Expr
	MSB  Expr
	LSB  Expr
}

func (*PartSelect) isExpr() {}

func (e *PartSelect) String() string {
	return fmt.Sprintf("%s[%s:%s]", e.Base.String(), e.MSB.String(), e.LSB.String())
}

// Concat is a concatenation expression "{a, b, c}".
type Concat struct {
	Parts []Expr
}

func (*Concat) isExpr() {}

func (e *Concat) String() string {
	parts := make([]string, len(e.Parts))
	for i, p := range e.Parts {
		parts[i] = p.String()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// TypeOfExpr is an expression used in a type-parameter position that might
// resolve to a type via exprToType (pkg/constfold); syntactically it is an
// ordinary expression wrapped here so the elaborator remembers to attempt
// that conversion.
type TypeOfExpr struct {
	Expr Expr
}

func (*TypeOfExpr) isExpr() {}

func (e *TypeOfExpr) String() string { return e.Expr.String() }
