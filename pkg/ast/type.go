package ast

import (
	"fmt"
	"strings"
)

// Signing captures an explicit sign annotation on a type. The zero value,
// Unspecified, means no "signed"/"unsigned" keyword was written and the
// type's default signedness applies.
type Signing int

// The three signing states a type or declaration may carry.
const (
	Unspecified Signing = iota
	Signed
	Unsigned
)

func (s Signing) String() string {
	switch s {
	case Signed:
		return "signed"
	case Unsigned:
		return "unsigned"
	default:
		return ""
	}
}

// Range is a single packed dimension, e.g. "[7:0]".
type Range struct {
	MSB Expr
	LSB Expr
}

// NewRange constructs a packed dimension from its bounds.
func NewRange(msb, lsb Expr) Range {
	return Range{msb, lsb}
}

func (r Range) String() string {
	return fmt.Sprintf("[%s:%s]", r.MSB.String(), r.LSB.String())
}

// Ranges is an ordered list of packed dimensions, outermost first, rendered
// as the concatenation of each bracketed range.
type Ranges []Range

func (rs Ranges) String() string {
	var b strings.Builder

	for _, r := range rs {
		b.WriteString(r.String())
	}

	return b.String()
}

// Type is the sealed family of SystemVerilog/Verilog type expressions.
type Type interface {
	Node
	isType()
}

// IntegerVectorKind distinguishes the three integer-vector base keywords.
type IntegerVectorKind int

// The integer-vector keywords Verilog-2005 and SystemVerilog share.
const (
	TLogic IntegerVectorKind = iota
	TReg
	TBit
)

func (k IntegerVectorKind) String() string {
	switch k {
	case TReg:
		return "reg"
	case TBit:
		return "bit"
	default:
		return "logic"
	}
}

// IntegerVector is a 4-state or 2-state vector type, e.g. "logic [7:0]" or
// signed "reg signed [31:0]". It is the only Type variant that surfaces
// directly as a Verilog-2005 net/variable keyword after conversion.
type IntegerVector struct {
	Kind    IntegerVectorKind
	Signing Signing
	Ranges  Ranges
}

func (*IntegerVector) isType() {}

func (t *IntegerVector) String() string {
	return joinNonEmpty(t.Kind.String(), t.Signing.String(), t.Ranges.String())
}

// IntegerAtomKind distinguishes the fixed-width integer-atom keywords.
type IntegerAtomKind int

// The integer-atom keywords, each with a fixed intrinsic width.
const (
	TInt IntegerAtomKind = iota
	TShortint
	TLongint
	TByte
	TInteger
	TTime
)

// Width returns the fixed bit width of an integer-atom kind.
func (k IntegerAtomKind) Width() uint {
	switch k {
	case TShortint:
		return 16
	case TLongint:
		return 64
	case TByte:
		return 8
	case TTime:
		return 64
	default:
		// TInt, TInteger
		return 32
	}
}

// NewAtomType constructs the canonical elaborated form of an integer-atom
// declaration. Per the data-model invariant, IntegerAtom TInt/TShortint/
// TLongint/TByte always elaborates to IntegerVector TLogic with an explicit
// bit range matching the atom's intrinsic width, signed unless explicitly
// overridden to unsigned; TInteger elaborates the same way but appends its
// 32-bit range to any user-supplied range list (so "integer [3:0] x"
// becomes "logic signed [3:0][31:0] x" rather than replacing the extra
// dimension). Because every Type value is built through this constructor
// (there is no exported IntegerAtom variant), the invariant holds for every
// node reachable from the parser or from a pass.
func NewAtomType(kind IntegerAtomKind, signing Signing, extra Ranges) *IntegerVector {
	width := kind.Width()
	bit := NewRange(intLit(width-1), intLit(0))

	sg := signing
	if sg == Unspecified {
		sg = Signed
	}

	var ranges Ranges
	if kind == TInteger {
		ranges = append(append(Ranges{}, extra...), bit)
	} else {
		ranges = Ranges{bit}
	}

	return &IntegerVector{TLogic, sg, ranges}
}

func intLit(v uint) Expr {
	return &Number{Text: fmt.Sprintf("%d", v)}
}

// NonIntegerKind enumerates SystemVerilog's non-integer scalar types, none
// of which ever carry packed ranges.
type NonIntegerKind int

// The non-integer type keywords.
const (
	TReal NonIntegerKind = iota
	TShortreal
	TRealtime
	TString
	TEvent
	TChandle
)

func (k NonIntegerKind) String() string {
	switch k {
	case TShortreal:
		return "shortreal"
	case TRealtime:
		return "realtime"
	case TString:
		return "string"
	case TEvent:
		return "event"
	case TChandle:
		return "chandle"
	default:
		return "real"
	}
}

// NonInteger is a scalar type which is neither an integer vector nor an
// integer atom (real, string, event, ...). It never carries packed ranges.
type NonInteger struct {
	Kind NonIntegerKind
}

func (*NonInteger) isType() {}

func (t *NonInteger) String() string { return t.Kind.String() }

// NetKind enumerates the Verilog-2005 net-type keywords a logic
// declaration can lower to, or that a source net declaration already uses.
type NetKind int

// The net-type keywords.
const (
	NetWire NetKind = iota
	NetWand
	NetWor
	NetTri
	NetTriand
	NetTrior
	NetTri0
	NetTri1
	NetSupply0
	NetSupply1
	NetUwire
)

func (k NetKind) String() string {
	switch k {
	case NetWand:
		return "wand"
	case NetWor:
		return "wor"
	case NetTri:
		return "tri"
	case NetTriand:
		return "triand"
	case NetTrior:
		return "trior"
	case NetTri0:
		return "tri0"
	case NetTri1:
		return "tri1"
	case NetSupply0:
		return "supply0"
	case NetSupply1:
		return "supply1"
	case NetUwire:
		return "uwire"
	default:
		return "wire"
	}
}

// Net is a continuous-assignment-driven signal, e.g. "wire [3:0]".
type Net struct {
	Kind    NetKind
	Signing Signing
	Ranges  Ranges
}

func (*Net) isType() {}

func (t *Net) String() string {
	return joinNonEmpty(t.Kind.String(), t.Signing.String(), t.Ranges.String())
}

// Implicit is the typeless form used for ports and for Verilog-2005
// parameters, which carry only optional signing and ranges, e.g.
// "signed [7:0]" with no keyword at all.
type Implicit struct {
	Signing Signing
	Ranges  Ranges
}

func (*Implicit) isType() {}

func (t *Implicit) String() string {
	return joinNonEmpty(t.Signing.String(), t.Ranges.String())
}

// Alias refers to a type by name rather than by structure: a plain
// typedef/enum/struct name, a package-scoped "P::X", or a class-scoped
// "C#(params)::X". Exactly one of Pkg or (Class, Bindings) is populated;
// both empty means a plain, unqualified alias.
type Alias struct {
	Pkg      string
	Class    string
	Bindings []ParamBinding
	Name     string
	Ranges   Ranges
}

func (*Alias) isType() {}

func (t *Alias) String() string {
	switch {
	case t.Class != "":
		return fmt.Sprintf("%s#(%s)::%s%s", t.Class, joinBindings(t.Bindings), t.Name, t.Ranges.String())
	case t.Pkg != "":
		return fmt.Sprintf("%s::%s%s", t.Pkg, t.Name, t.Ranges.String())
	default:
		return t.Name + t.Ranges.String()
	}
}

// TypedefRef is the internal, post-elaboration counterpart of Alias: once a
// name has been resolved to the declaration that defines it, later passes
// can follow Decl directly rather than re-resolving the name through a
// scope. It prints identically to an unqualified Alias of the same name.
type TypedefRef struct {
	Name string
	Decl Decl
}

func (*TypedefRef) isType() {}

func (t *TypedefRef) String() string { return t.Name }

// Enum is an enumerated type with an explicit base type (defaulting to
// "int" when omitted, per IEEE 1800) and its member names in declaration
// order.
type Enum struct {
	Base   Type
	Items  []string
	Ranges Ranges
}

func (*Enum) isType() {}

func (t *Enum) String() string {
	base := ""
	if t.Base != nil {
		base = t.Base.String() + " "
	}

	return fmt.Sprintf("enum %s{%s}%s", base, strings.Join(t.Items, ","), t.Ranges.String())
}

// StructField is a single member of a StructUnion type.
type StructField struct {
	Type Type
	Name string
}

func (f StructField) String() string {
	return fmt.Sprintf("%s %s", f.Type.String(), f.Name)
}

// StructUnion is a packed or unpacked struct/union type.
type StructUnion struct {
	IsUnion bool
	Packed  bool
	Signing Signing
	Fields  []StructField
	Ranges  Ranges
}

func (*StructUnion) isType() {}

func (t *StructUnion) String() string {
	kw := "struct"
	if t.IsUnion {
		kw = "union"
	}

	packed := ""
	if t.Packed {
		packed = " packed"
	}

	sg := ""
	if s := t.Signing.String(); s != "" {
		sg = " " + s
	}

	fields := make([]string, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = f.String() + ";"
	}

	return fmt.Sprintf("%s%s%s {%s}%s", kw, packed, sg, strings.Join(fields, " "), t.Ranges.String())
}

// InterfaceType references an interface (optionally through one of its
// modports), e.g. "some_if.mp".
type InterfaceType struct {
	Interface string
	Modport   string
}

func (*InterfaceType) isType() {}

func (t *InterfaceType) String() string {
	if t.Modport == "" {
		return t.Interface
	}

	return t.Interface + "." + t.Modport
}

// TypeOf models the "type(expr)" type-operator. Package/class elaboration
// resolves it via exprToType where possible (see pkg/constfold).
type TypeOf struct {
	Expr Expr
}

func (*TypeOf) isType() {}

func (t *TypeOf) String() string { return fmt.Sprintf("type(%s)", t.Expr.String()) }

// UnpackedType is the internal representation of a declarator's unpacked
// dimensions (e.g. the "[7:0]" in "logic x [7:0]" memory declarations). It
// is never produced directly by user syntax in this subset; passes
// construct it when they need to carry unpacked dimensions through a
// rewrite without disturbing the packed Type underneath.
type UnpackedType struct {
	Element Type
	Dims    Ranges
}

func (*UnpackedType) isType() {}

func (t *UnpackedType) String() string {
	return fmt.Sprintf("%s %s", t.Element.String(), t.Dims.String())
}

// TypeRanges destructures a type into its ranges and a copy of the type
// with those ranges cleared, enforcing the invariant that types which
// cannot carry packed ranges (integer atoms via NewAtomType's NonInteger
// sibling, NonInteger itself, Enum/struct base references, aliases with no
// ranges, ...) always report an empty range list rather than silently
// dropping one a caller attached by mistake.
func TypeRanges(t Type) (Type, Ranges) {
	switch v := t.(type) {
	case *IntegerVector:
		cp := *v
		cp.Ranges = nil

		return &cp, v.Ranges
	case *Net:
		cp := *v
		cp.Ranges = nil

		return &cp, v.Ranges
	case *Implicit:
		cp := *v
		cp.Ranges = nil

		return &cp, v.Ranges
	case *Alias:
		cp := *v
		cp.Ranges = nil

		return &cp, v.Ranges
	case *Enum:
		cp := *v
		cp.Ranges = nil

		return &cp, v.Ranges
	case *StructUnion:
		cp := *v
		cp.Ranges = nil

		return &cp, v.Ranges
	default:
		// NonInteger, TypedefRef, InterfaceType, TypeOf, UnpackedType: never
		// carry ranges.
		return t, nil
	}
}

func joinNonEmpty(parts ...string) string {
	var kept []string

	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}

	return strings.Join(kept, " ")
}

func joinBindings(bindings []ParamBinding) string {
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		parts[i] = b.String()
	}

	return strings.Join(parts, ",")
}
