package ast

import (
	"fmt"
	"strings"
)

// Lifetime is a module/package/class lifetime qualifier.
type Lifetime int

// Lifetime qualifiers; LifetimeUnspecified is the default (static) when no
// keyword was written.
const (
	LifetimeUnspecified Lifetime = iota
	Static
	Automatic
)

func (l Lifetime) String() string {
	switch l {
	case Static:
		return "static"
	case Automatic:
		return "automatic"
	default:
		return ""
	}
}

// PartKind distinguishes a module header from an interface header.
type PartKind int

// The two Part keywords.
const (
	ModuleKind PartKind = iota
	InterfaceKind
)

func (k PartKind) String() string {
	if k == InterfaceKind {
		return "interface"
	}

	return "module"
}

// Description is the sealed family of top-level items a file is made of.
type Description interface {
	Node
	isDescription()
}

// Part is a module or interface: the main unit of hardware description and
// the primary subject of both conversion passes.
type Part struct {
	Attributes []string
	Extern     bool
	Kind       PartKind
	Lifetime   Lifetime
	Name       string
	Ports      []string
	Items      []ModuleItem
}

func (*Part) isDescription() {}

func (p *Part) String() string {
	var b strings.Builder

	for _, a := range p.Attributes {
		b.WriteString("(* " + a + " *)\n")
	}

	if p.Extern {
		b.WriteString("extern ")
	}

	b.WriteString(p.Kind.String())

	if l := p.Lifetime.String(); l != "" {
		b.WriteString(" " + l)
	}

	b.WriteString(" " + p.Name + "(" + strings.Join(p.Ports, ", ") + ");\n")

	body := ""
	for _, item := range p.Items {
		body += item.String() + "\n"
	}

	b.WriteString(indent(body))
	b.WriteString("end" + p.Kind.String())

	return b.String()
}

// Package is a named package containing PackageItems.
type Package struct {
	Lifetime Lifetime
	Name     string
	Items    []PackageItem
}

func (*Package) isDescription() {}

func (p *Package) String() string {
	body := ""
	for _, item := range p.Items {
		body += item.String() + "\n"
	}

	return fmt.Sprintf("package %s;\n%sendpackage", p.Name, indent(body))
}

// Class is a parameterized class definition. Its Params are restricted (by
// construction, not by the type system) to *Param and *ParamType
// declarations, since those are the only declaration shapes that make
// sense in a "#(...)" class parameter port list.
type Class struct {
	Lifetime Lifetime
	Name     string
	Params   []Decl
	Items    []PackageItem
}

func (*Class) isDescription() {}

func (c *Class) String() string {
	params := make([]string, len(c.Params))
	for i, p := range c.Params {
		params[i] = strings.TrimSuffix(p.String(), ";")
	}

	header := fmt.Sprintf("class %s", c.Name)
	if len(params) > 0 {
		header += " #(" + strings.Join(params, ", ") + ")"
	}

	body := ""
	for _, item := range c.Items {
		body += item.String() + "\n"
	}

	return header + ";\n" + indent(body) + "endclass"
}

// TopItem wraps a stray top-level PackageItem (one declared outside any
// module, package or class) as a Description.
type TopItem struct {
	Item PackageItem
}

func (*TopItem) isDescription() {}

func (d *TopItem) String() string { return d.Item.String() }
