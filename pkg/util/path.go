package util

import "strings"

// Access is one segment of an absolute identifier path, as built up by
// pkg/scope while it threads the current frame stack: a plain name, or a
// name subscripted by a constant generate-block index (e.g. the "[2]" in
// a generate-for unrolled block). Index is only meaningful when HasIndex
// is true, following the same optional-field discipline as Option.
type Access struct {
	Name     string
	Index    int
	HasIndex bool
}

// NewAccess constructs a plain, unindexed path segment.
func NewAccess(name string) Access {
	return Access{Name: name}
}

// NewIndexedAccess constructs a path segment subscripted by a constant
// index, as produced when a Scoper frame was pushed for one concrete
// unrolling of a generate block.
func NewIndexedAccess(name string, index int) Access {
	return Access{Name: name, Index: index, HasIndex: true}
}

func (a Access) String() string {
	if !a.HasIndex {
		return a.Name
	}

	return a.Name + "[" + itoa(a.Index) + "]"
}

func itoa(v int) string {
	if v == 0 {
		return "0"
	}

	neg := v < 0
	if neg {
		v = -v
	}

	var digits []byte
	for v > 0 {
		digits = append([]byte{byte('0' + v%10)}, digits...)
		v /= 10
	}

	if neg {
		digits = append([]byte{'-'}, digits...)
	}

	return string(digits)
}

// AccessPath is a resolved absolute path to a declared identifier: the
// sequence of enclosing frame labels (module, generate block, named
// block, ...) followed by the identifier's own name, exactly the
// "accesses" field spec.md §4.2 attaches to every Scoper entry.
type AccessPath []Access

// String renders a path the same dotted way the teacher's util.Path does
// for diagnostics (this package has no need for util.Path's absolute/
// relative distinction, since every AccessPath the Scoper builds is
// already rooted at the enclosing Part).
func (p AccessPath) String() string {
	parts := make([]string, len(p))
	for i, a := range p {
		parts[i] = a.String()
	}

	return strings.Join(parts, ".")
}

// Equal reports whether two paths have identical segments.
func (p AccessPath) Equal(other AccessPath) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// Tail returns the final segment's name, i.e. the identifier itself
// rather than any enclosing frame label.
func (p AccessPath) Tail() string {
	if len(p) == 0 {
		return ""
	}

	return p[len(p)-1].Name
}
