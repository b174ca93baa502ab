package ast

import (
	"fmt"
	"strings"
)

// ModuleItem is the sealed family of items that can appear directly in a
// module or interface body.
type ModuleItem interface {
	Node
	isModuleItem()
}

// MIDecl wraps a Decl as a module item.
type MIDecl struct {
	Decl Decl
}

func (*MIDecl) isModuleItem() {}

func (m *MIDecl) String() string { return m.Decl.String() }

// MIAssign is a continuous assignment "assign lhs = expr;".
type MIAssign struct {
	LHS  LHS
	Expr Expr
}

func (*MIAssign) isModuleItem() {}

func (m *MIAssign) String() string {
	return fmt.Sprintf("assign %s = %s;", m.LHS.String(), m.Expr.String())
}

// MIAlwaysComb is an "always_comb" procedural block.
type MIAlwaysComb struct {
	Stmt Stmt
}

func (*MIAlwaysComb) isModuleItem() {}

func (m *MIAlwaysComb) String() string { return "always_comb " + m.Stmt.String() }

// MIAlways is a general "always @(...)" procedural block, including the
// "always @*" form (Control.Star == true) introduced by the Logic
// conversion pass when it generates trampoline assignments.
type MIAlways struct {
	Control EventControl
	Stmt    Stmt
}

func (*MIAlways) isModuleItem() {}

func (m *MIAlways) String() string {
	return fmt.Sprintf("always %s %s", m.Control.String(), m.Stmt.String())
}

// PortConnection is one ".port(expr)" instance port binding.
type PortConnection struct {
	Port string
	Expr Expr
}

func (p PortConnection) String() string {
	if p.Expr == nil {
		return fmt.Sprintf(".%s()", p.Port)
	}

	return fmt.Sprintf(".%s(%s)", p.Port, p.Expr.String())
}

// Instance is a module/interface instantiation.
type Instance struct {
	Module   string
	Bindings []ParamBinding
	Name     string
	Ports    []PortConnection
}

func (*Instance) isModuleItem() {}

func (m *Instance) String() string {
	params := ""
	if len(m.Bindings) > 0 {
		params = fmt.Sprintf(" #(%s)", joinBindings(m.Bindings))
	}

	ports := make([]string, len(m.Ports))
	for i, p := range m.Ports {
		ports[i] = p.String()
	}

	return fmt.Sprintf("%s%s %s(%s);", m.Module, params, m.Name, strings.Join(ports, ", "))
}

// MIGenerate is a "generate ... endgenerate" block.
type MIGenerate struct {
	Items []GenItem
}

func (*MIGenerate) isModuleItem() {}

func (m *MIGenerate) String() string {
	body := ""
	for _, g := range m.Items {
		body += g.String() + "\n"
	}

	return "generate\n" + indent(body) + "endgenerate"
}

// MIFunction wraps a Function as a module item (functions may be declared
// directly inside a module body, not only inside a package).
type MIFunction struct {
	Function *Function
}

func (*MIFunction) isModuleItem() {}

func (m *MIFunction) String() string { return m.Function.String() }

// MITask wraps a Task as a module item.
type MITask struct {
	Task *Task
}

func (*MITask) isModuleItem() {}

func (m *MITask) String() string { return m.Task.String() }

// MIImport wraps an Import as a module item (modules may import package
// contents directly, exactly as packages do).
type MIImport struct {
	Import *Import
}

func (*MIImport) isModuleItem() {}

func (m *MIImport) String() string { return m.Import.String() }

// MIComment is a verbatim comment module item, used the same way
// CommentDecl is for inert declarations (e.g. a header comment preceding
// an injected trampoline net/always pair).
type MIComment struct {
	Text string
}

func (*MIComment) isModuleItem() {}

func (m *MIComment) String() string { return "// " + m.Text }
