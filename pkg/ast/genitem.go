package ast

// GenItem is the sealed family of items appearing inside a "generate"
// block. Genvar-driven unrolling (for/if/case generate constructs) is one
// of the independent conversion passes spec.md places out of scope, so
// this subset only models what the Scoper and Package/class elaboration
// passes actually need to see: named generate blocks (a scoping frame
// pushed per spec.md §4.2) and ordinary module items nested inside one.
type GenItem interface {
	Node
	isGenItem()
}

// GIBlock is a named "begin : label ... end" generate block. The Scoper
// pushes a frame for it, exactly as it does for a named statement block.
type GIBlock struct {
	Name  string
	Items []ModuleItem
}

func (*GIBlock) isGenItem() {}

func (g *GIBlock) String() string {
	body := ""
	for _, m := range g.Items {
		body += m.String() + "\n"
	}

	return "begin : " + g.Name + "\n" + indent(body) + "end"
}

// GIModuleItem is a bare module item appearing directly inside a generate
// block with no enclosing named block.
type GIModuleItem struct {
	Item ModuleItem
}

func (*GIModuleItem) isGenItem() {}

func (g *GIModuleItem) String() string { return g.Item.String() }
