package markup

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/b992/substack-go/pkg/document"
	"github.com/b992/substack-go/pkg/logger"
)

// ConvertMarkdown runs a zero-value Converter over Markdown source.
func ConvertMarkdown(src string) document.Document {
	return Converter{}.ConvertMarkdown(src)
}

// ConvertMarkdown parses Markdown (with strikethrough enabled) and maps the
// goldmark AST onto the same document tree Convert produces: **bold**,
// *italic*, ~~strike~~, `code` and [text](url) become marks, headings clamp
// into the 2-3 level range the platform supports, and block shapes outside
// the subset degrade to plain-text paragraphs. Like Convert it never fails.
func (c Converter) ConvertMarkdown(src string) document.Document {
	source := []byte(src)
	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	root := md.Parser().Parse(text.NewReader(source))

	p := &mdWalker{source: source, log: c.logger()}
	var nodes []document.Node
	for child := root.FirstChild(); child != nil; child = child.NextSibling() {
		nodes = append(nodes, p.block(child)...)
	}
	return document.Document{Nodes: nodes}
}

type mdWalker struct {
	source []byte
	log    logger.Logger
}

func (w *mdWalker) block(n ast.Node) []document.Node {
	switch b := n.(type) {
	case *ast.Heading:
		level := b.Level
		if level < 2 {
			level = 2
		}
		if level > 3 {
			level = 3
		}
		runs := w.inline(b, nil)
		if len(runs) == 0 {
			return nil
		}
		return []document.Node{document.Heading(level, runs...)}
	case *ast.Paragraph:
		runs := w.inline(b, nil)
		if len(runs) == 0 {
			return nil
		}
		return []document.Node{document.Paragraph(runs...)}
	case *ast.TextBlock:
		runs := w.inline(b, nil)
		if len(runs) == 0 {
			return nil
		}
		return []document.Node{document.Paragraph(runs...)}
	case *ast.List:
		return []document.Node{w.list(b)}
	default:
		// outside the supported subset: keep the text, drop the structure
		txt := strings.TrimSpace(string(n.Text(w.source)))
		if txt == "" {
			return nil
		}
		w.log.Warn("markdown: block outside supported subset degraded to paragraph",
			"kind", n.Kind().String())
		return []document.Node{document.Paragraph(document.Text(txt))}
	}
}

func (w *mdWalker) list(l *ast.List) document.Node {
	kind := document.KindBulletList
	if l.IsOrdered() {
		kind = document.KindOrderedList
	}
	var items []document.Node
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		var runs []document.TextRun
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			runs = append(runs, w.inline(child, nil)...)
		}
		items = append(items, document.Paragraph(runs...))
	}
	return document.Node{Kind: kind, Items: items}
}

// inline flattens the inline children of n into runs, accumulating marks on
// the way down so nested emphasis collapses into single runs, mirroring the
// open-mark stack of the tag converter.
func (w *mdWalker) inline(n ast.Node, marks []document.Mark) []document.TextRun {
	var runs []document.TextRun
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		switch c := child.(type) {
		case *ast.Text:
			txt := string(c.Segment.Value(w.source))
			if c.SoftLineBreak() || c.HardLineBreak() {
				txt += " "
			}
			if txt != "" {
				runs = append(runs, document.TextRun{Text: txt, Marks: cloneMarks(marks)})
			}
		case *ast.String:
			if len(c.Value) > 0 {
				runs = append(runs, document.TextRun{Text: string(c.Value), Marks: cloneMarks(marks)})
			}
		case *ast.Emphasis:
			m := document.Italic
			if c.Level >= 2 {
				m = document.Bold
			}
			runs = append(runs, w.inline(c, addMark(marks, m))...)
		case *east.Strikethrough:
			runs = append(runs, w.inline(c, addMark(marks, document.Strikethrough))...)
		case *ast.CodeSpan:
			txt := string(c.Text(w.source))
			if txt != "" {
				runs = append(runs, document.TextRun{
					Text:  txt,
					Marks: append(cloneMarks(marks), document.Code),
				})
			}
		case *ast.Link:
			runs = append(runs, w.inline(c, addMark(marks, document.Link(string(c.Destination))))...)
		case *ast.AutoLink:
			url := string(c.URL(w.source))
			runs = append(runs, document.TextRun{
				Text:  url,
				Marks: append(cloneMarks(marks), document.Link(url)),
			})
		default:
			runs = append(runs, w.inline(child, marks)...)
		}
	}
	return runs
}

func addMark(marks []document.Mark, m document.Mark) []document.Mark {
	if containsMark(marks, m) {
		return cloneMarks(marks)
	}
	return append(cloneMarks(marks), m)
}

func cloneMarks(marks []document.Mark) []document.Mark {
	if len(marks) == 0 {
		return nil
	}
	out := make([]document.Mark, len(marks))
	copy(out, marks)
	return out
}
