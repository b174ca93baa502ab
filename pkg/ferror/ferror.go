// Package ferror implements the fatal-error taxonomy of spec.md §7 as
// distinguishable Go types rather than bare strings, so pkg/driver and
// cmd/sv2v can format and (if ever needed) discriminate on the category
// of a fatal error uniformly. Every category is fatal and unrecoverable:
// there is no warning variant and no recovery path, matching spec.md's
// explicit "Non-goals: error recovery (a single fatal error aborts the
// run)".
package ferror

import "fmt"

// NameConflict reports an import that conflicts with a declaration, or
// two imports of the same symbol that disagree on its source package.
type NameConflict struct {
	Name    string
	Context string
}

func (e *NameConflict) Error() string {
	return fmt.Sprintf("name conflict: %q already bound in %s", e.Name, e.Context)
}

// AmbiguousReference reports a wildcard-import situation where two
// distinct packages both expose the same symbol name and a reference to
// it cannot be resolved unambiguously.
type AmbiguousReference struct {
	Name     string
	Packages []string
}

func (e *AmbiguousReference) Error() string {
	return fmt.Sprintf("ambiguous reference to %q: exposed by packages %v", e.Name, e.Packages)
}

// MissingSymbol reports a reference to an unknown package, or an unknown
// member of an otherwise-known package.
type MissingSymbol struct {
	Pkg  string
	Name string
}

func (e *MissingSymbol) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("missing package %q", e.Pkg)
	}

	return fmt.Sprintf("missing symbol %q in package %q", e.Name, e.Pkg)
}

// DependencyCycle reports a package dependency loop discovered while
// lazily elaborating a package that transitively imports itself.
type DependencyCycle struct {
	Cycle []string
}

func (e *DependencyCycle) Error() string {
	return fmt.Sprintf("dependency loop: %v", e.Cycle)
}

// ClassParameterError reports a missing required class parameter, a
// type/expression mismatch on a parameter override, or a reference to a
// parameterized class with no "#(...)" specialization.
type ClassParameterError struct {
	Class   string
	Message string
}

func (e *ClassParameterError) Error() string {
	return fmt.Sprintf("class parameter error in %q: %s", e.Class, e.Message)
}

// StructuralError reports a structural violation that is not a naming or
// dependency problem: an export outside a package, a non-LHS expression
// bound to an output port, packed ranges applied to a non-vector type.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string {
	return "structural error: " + e.Message
}
