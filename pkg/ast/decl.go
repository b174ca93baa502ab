package ast

import "fmt"

// Direction is a port direction annotation.
type Direction int

// Port directions. DirNone marks a non-port variable declaration.
const (
	DirNone Direction = iota
	Input
	Output
	Inout
)

func (d Direction) String() string {
	switch d {
	case Input:
		return "input"
	case Output:
		return "output"
	case Inout:
		return "inout"
	default:
		return ""
	}
}

// Decl is the sealed family of declaration-like nodes shared by package
// and module scope (variables, parameters, typedefs, and inert comments).
type Decl interface {
	Node
	isDecl()
	// DeclName returns the name this declaration introduces.
	DeclName() string
}

// Variable is a net or variable declaration, e.g. "output logic [3:0] x;".
// Dims holds any packed dimensions attached directly to the declarator
// (distinct from ranges embedded in Type, which a single Type value may be
// shared across several declarators).
type Variable struct {
	Direction Direction
	Type      Type
	Name      string
	Dims      Ranges
	Init      Expr
}

func (*Variable) isDecl() {}

func (d *Variable) DeclName() string { return d.Name }

func (d *Variable) String() string {
	dir := ""
	if s := d.Direction.String(); s != "" {
		dir = s + " "
	}

	init := ""
	if d.Init != nil {
		init = " = " + d.Init.String()
	}

	return fmt.Sprintf("%s%s %s%s%s;", dir, d.Type.String(), d.Name, d.Dims.String(), init)
}

// ParamKind distinguishes "parameter" from "localparam".
type ParamKind int

// The two parameter declaration kinds.
const (
	Parameter ParamKind = iota
	Localparam
)

func (k ParamKind) String() string {
	if k == Localparam {
		return "localparam"
	}

	return "parameter"
}

// Param is a value-parameter declaration, e.g. "parameter WIDTH = 8;".
type Param struct {
	Kind ParamKind
	Type Type
	Name string
	Expr Expr
}

func (*Param) isDecl() {}

func (d *Param) DeclName() string { return d.Name }

func (d *Param) String() string {
	ty := ""
	if d.Type != nil && d.Type.String() != "" {
		ty = d.Type.String() + " "
	}

	return fmt.Sprintf("%s %s%s = %s;", d.Kind.String(), ty, d.Name, d.Expr.String())
}

// ParamType is a type-parameter declaration, e.g.
// "parameter type BASE = logic;".
type ParamType struct {
	Kind ParamKind
	Name string
	Type Type
}

func (*ParamType) isDecl() {}

func (d *ParamType) DeclName() string { return d.Name }

func (d *ParamType) String() string {
	def := ""
	if d.Type != nil {
		def = " = " + d.Type.String()
	}

	return fmt.Sprintf("%s type %s%s;", d.Kind.String(), d.Name, def)
}

// Typedef declares a named alias for a type, e.g.
// "typedef logic [1:0] word_t;".
type Typedef struct {
	Type Type
	Name string
}

func (*Typedef) isDecl() {}

func (d *Typedef) DeclName() string { return d.Name }

func (d *Typedef) String() string {
	return fmt.Sprintf("typedef %s %s;", d.Type.String(), d.Name)
}

// CommentDecl is emitted verbatim as a comment and is semantically inert:
// it participates in no scope, is never a use-before-def dependency, and
// exists purely so passes can leave a textual trace of what they removed
// or synthesized (e.g. "// removed package P").
type CommentDecl struct {
	Text string
}

func (*CommentDecl) isDecl() {}

func (d *CommentDecl) DeclName() string { return "" }

func (d *CommentDecl) String() string { return "// " + d.Text }

// CollapseParamType applies the Verilog-2005 parameter-typing rule: a
// parameter or localparam whose type is an IntegerVector has no equivalent
// keyword in Verilog-2005 (there is no "parameter logic [3:0] X"), so its
// type collapses to the typeless Implicit form, carrying over only signing
// and ranges. An empty range list becomes the canonical single-bit range
// "[0:0]" so the declaration still parses as a ranged parameter once
// lowered (matching how a 1-bit logic parameter is printed after
// conversion).
func CollapseParamType(t Type) Type {
	iv, ok := t.(*IntegerVector)
	if !ok {
		return t
	}

	ranges := iv.Ranges
	if len(ranges) == 0 {
		ranges = Ranges{NewRange(&Number{Text: "0"}, &Number{Text: "0"})}
	}

	return &Implicit{Signing: iv.Signing, Ranges: ranges}
}
