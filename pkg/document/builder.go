package document

// Builder accumulates block nodes through a fluent interface and produces a
// Document. Nothing is validated per call; a builder only collects, and the
// resulting document is checked at the point it is handed to a publish
// operation.
//
//	doc := document.NewBuilder().
//		Heading(2, "Release notes").
//		Paragraph(document.Text("Now with "), document.Styled("lists", document.Bold)).
//		BulletList("one", "two").
//		Build()
type Builder struct {
	nodes []Node
}

func NewBuilder() *Builder {
	return &Builder{}
}

// Heading appends a heading with plain text content.
func (b *Builder) Heading(level int, text string) *Builder {
	b.nodes = append(b.nodes, Heading(level, Text(text)))
	return b
}

// Paragraph appends a paragraph composed of the given runs.
func (b *Builder) Paragraph(runs ...TextRun) *Builder {
	b.nodes = append(b.nodes, Paragraph(runs...))
	return b
}

// Text appends a paragraph containing a single unmarked run.
func (b *Builder) Text(s string) *Builder {
	return b.Paragraph(Text(s))
}

// BulletList appends an unordered list with one plain-text item per argument.
func (b *Builder) BulletList(items ...string) *Builder {
	b.nodes = append(b.nodes, Node{Kind: KindBulletList, Items: itemParagraphs(items)})
	return b
}

// OrderedList appends a numbered list with one plain-text item per argument.
func (b *Builder) OrderedList(items ...string) *Builder {
	b.nodes = append(b.nodes, Node{Kind: KindOrderedList, Items: itemParagraphs(items)})
	return b
}

// Node appends an already-built node, for block shapes the shorthand methods
// do not cover (for example list items with inline marks).
func (b *Builder) Node(n Node) *Builder {
	b.nodes = append(b.nodes, n)
	return b
}

// Build returns the accumulated document. The builder can keep being used
// afterwards; the returned document owns a copy of the node slice.
func (b *Builder) Build() Document {
	nodes := make([]Node, len(b.nodes))
	copy(nodes, b.nodes)
	return Document{Nodes: nodes}
}

func itemParagraphs(items []string) []Node {
	out := make([]Node, 0, len(items))
	for _, item := range items {
		out = append(out, Paragraph(Text(item)))
	}
	return out
}
