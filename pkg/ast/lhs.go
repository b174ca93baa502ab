package ast

import (
	"fmt"
	"strings"
)

// LHS is the sealed family of assignment-target (left-hand-side) nodes.
// LHS is kept distinct from Expr, even though every LHS has an Expr-shaped
// counterpart, because the Scoper and Logic conversion pass (pkg/scope,
// pkg/convert/logic) only ever need to resolve and classify assignment
// targets, never arbitrary expressions appearing there.
type LHS interface {
	Node
	isLHS()
}

// LHSIdent is a plain identifier used as an assignment target.
type LHSIdent struct {
	Name string
}

func (*LHSIdent) isLHS() {}

func (l *LHSIdent) String() string { return l.Name }

// LHSIndex is a bit-select or array-index assignment target "base[index]".
type LHSIndex struct {
	Base  LHS
	Index Expr
}

func (*LHSIndex) isLHS() {}

func (l *LHSIndex) String() string {
	return fmt.Sprintf("%s[%s]", l.Base.String(), l.Index.String())
}

// LHSRange is a part-select assignment target "base[msb:lsb]".
type LHSRange struct {
	Base LHS
	MSB  Expr
	LSB  Expr
}

func (*LHSRange) isLHS() {}

func (l *LHSRange) String() string {
	return fmt.Sprintf("%s[%s:%s]", l.Base.String(), l.MSB.String(), l.LSB.String())
}

// LHSConcat is a concatenation assignment target "{a, b, c}".
type LHSConcat struct {
	Parts []LHS
}

func (*LHSConcat) isLHS() {}

func (l *LHSConcat) String() string {
	parts := make([]string, len(l.Parts))
	for i, p := range l.Parts {
		parts[i] = p.String()
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// BaseIdent returns the innermost identifier name an LHS ultimately refers
// to, i.e. unwraps any Index/Range selects. It panics on LHSConcat, since a
// concatenation target has no single base identifier; callers that must
// handle concatenations (the Scoper's LHS observation pass) destructure
// them into their parts first.
func BaseIdent(l LHS) string {
	switch v := l.(type) {
	case *LHSIdent:
		return v.Name
	case *LHSIndex:
		return BaseIdent(v.Base)
	case *LHSRange:
		return BaseIdent(v.Base)
	default:
		panic(fmt.Sprintf("LHS has no single base identifier: %s", l.String()))
	}
}
