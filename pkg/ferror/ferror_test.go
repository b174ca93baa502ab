package ferror

import (
	"strings"
	"testing"
)

func Test_Messages(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&NameConflict{Name: "X", Context: "B"}, `name conflict: "X" already bound in B`},
		{&AmbiguousReference{Name: "X", Packages: []string{"A", "B"}}, `ambiguous reference to "X": exposed by packages [A B]`},
		{&MissingSymbol{Pkg: "A"}, `missing package "A"`},
		{&MissingSymbol{Pkg: "A", Name: "X"}, `missing symbol "X" in package "A"`},
		{&DependencyCycle{Cycle: []string{"A", "B", "A"}}, "dependency loop: [A B A]"},
		{&ClassParameterError{Class: "P", Message: "missing required parameter"}, `class parameter error in "P": missing required parameter`},
		{&StructuralError{Message: "export outside a package"}, "structural error: export outside a package"},
	}

	for _, c := range cases {
		if got := c.err.Error(); got != c.want {
			t.Errorf("got %q, want %q", got, c.want)
		}
	}
}

func Test_CycleNamesAllMembers(t *testing.T) {
	err := &DependencyCycle{Cycle: []string{"A", "B", "A"}}

	for _, name := range []string{"A", "B"} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("cycle message %q omits %s", err.Error(), name)
		}
	}
}
