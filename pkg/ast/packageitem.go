package ast

import "fmt"

// PackageItem is the sealed family of declaration-like items legal at
// package scope or directly inside a module body.
type PackageItem interface {
	Node
	isPackageItem()
	// DefinedNames returns the names this item introduces into its
	// enclosing scope (zero for Import/Export/Directive).
	DefinedNames() []string
}

// Function is a function definition.
type Function struct {
	Name       string
	ReturnType Type
	Ports      []*Variable
	Body       []Stmt
}

func (*Function) isPackageItem() {}

func (f *Function) DefinedNames() []string { return []string{f.Name} }

func (f *Function) String() string {
	ports := make([]string, len(f.Ports))
	for i, p := range f.Ports {
		ports[i] = p.Name
	}

	header := fmt.Sprintf("function %s %s(%s);", f.ReturnType.String(), f.Name, joinNames(ports))

	return header + "\n" + indent(joinStmts(f.Body)) + "endfunction"
}

// Task is a task definition.
type Task struct {
	Name  string
	Ports []*Variable
	Body  []Stmt
}

func (*Task) isPackageItem() {}

func (t *Task) DefinedNames() []string { return []string{t.Name} }

func (t *Task) String() string {
	ports := make([]string, len(t.Ports))
	for i, p := range t.Ports {
		ports[i] = p.Name
	}

	header := fmt.Sprintf("task %s(%s);", t.Name, joinNames(ports))

	return header + "\n" + indent(joinStmts(t.Body)) + "endtask"
}

// Import is an "import pkg::ident;" item. An empty Ident means a wildcard
// import "import pkg::*;".
type Import struct {
	Pkg   string
	Ident string
}

func (*Import) isPackageItem() {}

func (*Import) DefinedNames() []string { return nil }

func (i *Import) String() string {
	ident := i.Ident
	if ident == "" {
		ident = "*"
	}

	return fmt.Sprintf("import %s::%s;", i.Pkg, ident)
}

// Export is an "export pkg::ident;" item. An empty Pkg or Ident denotes the
// corresponding wildcard form ("export *::*;", "export pkg::*;").
type Export struct {
	Pkg   string
	Ident string
}

func (*Export) isPackageItem() {}

func (*Export) DefinedNames() []string { return nil }

func (e *Export) String() string {
	pkg := e.Pkg
	if pkg == "" {
		pkg = "*"
	}

	ident := e.Ident
	if ident == "" {
		ident = "*"
	}

	return fmt.Sprintf("export %s::%s;", pkg, ident)
}

// DeclItem wraps a Decl so it can appear wherever a PackageItem is
// expected (package items and module items both admit plain
// declarations).
type DeclItem struct {
	Decl Decl
}

func (*DeclItem) isPackageItem() {}

func (d *DeclItem) DefinedNames() []string {
	if name := d.Decl.DeclName(); name != "" {
		return []string{name}
	}

	return nil
}

func (d *DeclItem) String() string { return d.Decl.String() }

// Directive is a preprocessor or tool directive preserved verbatim (e.g. a
// `timescale or an unrecognized backtick-directive line); it is emitted
// byte-for-byte and never participates in scoping.
type Directive struct {
	Raw string
}

func (*Directive) isPackageItem() {}

func (*Directive) DefinedNames() []string { return nil }

func (d *Directive) String() string { return d.Raw }

func joinNames(names []string) string {
	out := ""

	for i, n := range names {
		if i > 0 {
			out += ", "
		}

		out += n
	}

	return out
}

func joinStmts(stmts []Stmt) string {
	out := ""

	for _, s := range stmts {
		out += s.String() + "\n"
	}

	return out
}
