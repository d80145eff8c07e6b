// Package document models the structured document tree the publishing
// platform stores article bodies in. A Document is an ordered list of block
// nodes (headings, paragraphs, lists) whose inline content is a sequence of
// text runs, each carrying the set of marks active over that span of text.
//
// Document marshals directly to the platform wire schema, so a value can be
// embedded in request payloads or serialized into the draft body field
// without an intermediate representation.
package document

import (
	"encoding/json"
	"strings"
)

// Kind identifies a block node type.
type Kind string

const (
	KindHeading     Kind = "heading"
	KindParagraph   Kind = "paragraph"
	KindBulletList  Kind = "bullet_list"
	KindOrderedList Kind = "ordered_list"
)

// MarkType identifies an inline mark, named as the platform schema names it.
type MarkType string

const (
	MarkBold          MarkType = "strong"
	MarkItalic        MarkType = "em"
	MarkStrikethrough MarkType = "strikethrough"
	MarkCode          MarkType = "code"
	MarkLink          MarkType = "link"
)

// Mark is one inline decoration. Href is set only for link marks and is
// carried verbatim; the platform expects no client-side normalization.
type Mark struct {
	Type MarkType
	Href string
}

// Convenience values for the attribute-free marks.
var (
	Bold          = Mark{Type: MarkBold}
	Italic        = Mark{Type: MarkItalic}
	Strikethrough = Mark{Type: MarkStrikethrough}
	Code          = Mark{Type: MarkCode}
)

// Link builds a link mark pointing at href.
func Link(href string) Mark {
	return Mark{Type: MarkLink, Href: href}
}

// TextRun is a span of text with the union of marks active over it.
type TextRun struct {
	Text  string
	Marks []Mark
}

// Text builds an unmarked run.
func Text(s string) TextRun {
	return TextRun{Text: s}
}

// Styled builds a run carrying the given marks.
func Styled(s string, marks ...Mark) TextRun {
	return TextRun{Text: s, Marks: marks}
}

// Node is one block of a document. Level is meaningful for headings, Inline
// for headings and paragraphs, Items for lists (each item is a paragraph
// node). Node ordering within a document is significant and preserved.
type Node struct {
	Kind   Kind
	Level  int
	Inline []TextRun
	Items  []Node
}

// Heading builds a heading node.
func Heading(level int, runs ...TextRun) Node {
	return Node{Kind: KindHeading, Level: level, Inline: runs}
}

// Paragraph builds a paragraph node.
func Paragraph(runs ...TextRun) Node {
	return Node{Kind: KindParagraph, Inline: runs}
}

// Document is an immutable-by-convention tree of block nodes. The zero value
// is a valid empty document and marshals to a doc with an empty content
// array, never null.
type Document struct {
	Nodes []Node
}

// New builds a document from the given nodes.
func New(nodes ...Node) Document {
	return Document{Nodes: nodes}
}

// IsEmpty reports whether the document has no top-level nodes.
func (d Document) IsEmpty() bool {
	return len(d.Nodes) == 0
}

// PlainText flattens the document back to mark-free text. Blocks are joined
// with single newlines, list items one per line. Useful for previews and for
// verifying that conversion preserved the source text.
func (d Document) PlainText() string {
	var lines []string
	for _, n := range d.Nodes {
		switch n.Kind {
		case KindBulletList, KindOrderedList:
			for _, item := range n.Items {
				lines = append(lines, runText(item.Inline))
			}
		default:
			lines = append(lines, runText(n.Inline))
		}
	}
	return strings.Join(lines, "\n")
}

func runText(runs []TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}

// Wire schema. Link marks always carry the fixed target/rel attributes the
// platform editor emits, and class is serialized as an explicit null.

type schemaDoc struct {
	Type    string       `json:"type"`
	Content []schemaNode `json:"content"`
}

type schemaNode struct {
	Type    string       `json:"type"`
	Attrs   *schemaAttrs `json:"attrs,omitempty"`
	Content []schemaNode `json:"content,omitempty"`
	Text    string       `json:"text,omitempty"`
	Marks   []schemaMark `json:"marks,omitempty"`
}

type schemaAttrs struct {
	Level int `json:"level,omitempty"`
	Start int `json:"start,omitempty"`
	Order int `json:"order,omitempty"`
}

type schemaMark struct {
	Type  string           `json:"type"`
	Attrs *schemaLinkAttrs `json:"attrs,omitempty"`
}

type schemaLinkAttrs struct {
	Href   string `json:"href"`
	Target string `json:"target"`
	Rel    string `json:"rel"`
	Class  any    `json:"class"`
}

// MarshalJSON renders the platform wire schema for the whole tree.
func (d Document) MarshalJSON() ([]byte, error) {
	content := make([]schemaNode, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		content = append(content, n.schema())
	}
	return json.Marshal(schemaDoc{Type: "doc", Content: content})
}

// BodyJSON returns the schema serialization as a string, the form the draft
// update endpoint stores in its body field.
func (d Document) BodyJSON() (string, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (n Node) schema() schemaNode {
	switch n.Kind {
	case KindHeading:
		return schemaNode{
			Type:    "heading",
			Attrs:   &schemaAttrs{Level: n.Level},
			Content: runSchemas(n.Inline),
		}
	case KindBulletList:
		return schemaNode{Type: "bullet_list", Content: itemSchemas(n.Items)}
	case KindOrderedList:
		return schemaNode{
			Type:    "ordered_list",
			Attrs:   &schemaAttrs{Start: 1, Order: 1},
			Content: itemSchemas(n.Items),
		}
	default:
		return schemaNode{Type: "paragraph", Content: runSchemas(n.Inline)}
	}
}

func itemSchemas(items []Node) []schemaNode {
	out := make([]schemaNode, 0, len(items))
	for _, item := range items {
		out = append(out, schemaNode{
			Type:    "list_item",
			Content: []schemaNode{item.schema()},
		})
	}
	return out
}

func runSchemas(runs []TextRun) []schemaNode {
	if len(runs) == 0 {
		return nil
	}
	out := make([]schemaNode, 0, len(runs))
	for _, r := range runs {
		node := schemaNode{Type: "text", Text: r.Text}
		for _, m := range r.Marks {
			node.Marks = append(node.Marks, m.schema())
		}
		out = append(out, node)
	}
	return out
}

func (m Mark) schema() schemaMark {
	if m.Type == MarkLink {
		return schemaMark{
			Type: string(MarkLink),
			Attrs: &schemaLinkAttrs{
				Href:   m.Href,
				Target: "_blank",
				Rel:    "noopener noreferrer nofollow",
			},
		}
	}
	return schemaMark{Type: string(m.Type)}
}
