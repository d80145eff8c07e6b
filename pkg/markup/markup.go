// Package markup converts the constrained markup subset used for article
// bodies into the platform document tree.
//
// The supported subset is: headings h2-h4, paragraphs, unordered and ordered
// lists with list items, and the inline tags strong, em, s, code and a[href].
// Conversion never fails: anything outside the subset degrades to plain text
// with tags stripped, and a malformed tag boundary turns the remainder of the
// input into plain text. Degraded fragments are reported through the
// converter's logger so callers can notice lossy input without handling an
// error.
package markup

import (
	"strings"

	"github.com/b992/substack-go/pkg/document"
	"github.com/b992/substack-go/pkg/logger"
)

// Converter turns markup into documents. The zero value is ready to use and
// silent; set Logger to observe degraded fragments.
type Converter struct {
	Logger logger.Logger
}

// Convert runs a zero-value Converter over markup.
func Convert(markup string) document.Document {
	return Converter{}.Convert(markup)
}

// Convert transforms markup into a document tree. Empty or whitespace-only
// input yields a document with zero nodes. The output preserves source order;
// h4 headings are normalized to level 3, the deepest sub-level the platform
// schema supports.
func (c Converter) Convert(markup string) document.Document {
	p := &parser{toks: lex(markup), log: c.logger()}
	return document.Document{Nodes: p.blocks()}
}

func (c Converter) logger() logger.Logger {
	if c.Logger == nil {
		return logger.Nop()
	}
	return c.Logger
}

// Tokenizer. Tag syntax is deliberately narrow: a tag is '<', an optional
// '/', a name starting with a letter, optional attributes, '>'. Anything
// else is a malformed boundary and demotes the rest of the input to text.

type tokKind int

const (
	tokText tokKind = iota
	tokOpen
	tokClose
	tokSelfClose
)

type token struct {
	kind tokKind
	name string
	href string
	text string
}

func lex(src string) []token {
	var toks []token
	pos := 0
	for pos < len(src) {
		lt := strings.IndexByte(src[pos:], '<')
		if lt < 0 {
			toks = append(toks, token{kind: tokText, text: src[pos:]})
			break
		}
		lt += pos
		if lt > pos {
			toks = append(toks, token{kind: tokText, text: src[pos:lt]})
		}
		gt := strings.IndexByte(src[lt:], '>')
		if gt < 0 {
			// unterminated tag: the remainder is plain text
			toks = append(toks, token{kind: tokText, text: src[lt:]})
			break
		}
		gt += lt
		tok, ok := parseTag(src[lt+1 : gt])
		if !ok {
			toks = append(toks, token{kind: tokText, text: src[lt:]})
			break
		}
		toks = append(toks, tok)
		pos = gt + 1
	}
	return toks
}

func parseTag(body string) (token, bool) {
	body = strings.TrimSpace(body)
	if body == "" {
		return token{}, false
	}
	kind := tokOpen
	if body[0] == '/' {
		kind = tokClose
		body = strings.TrimSpace(body[1:])
	} else if strings.HasSuffix(body, "/") {
		kind = tokSelfClose
		body = strings.TrimSpace(body[:len(body)-1])
	}
	name, rest := splitTagName(body)
	if name == "" {
		return token{}, false
	}
	t := token{kind: kind, name: name}
	if name == "a" {
		t.href = hrefAttr(rest)
	}
	return t, true
}

func splitTagName(body string) (string, string) {
	if body == "" || !isAlpha(body[0]) {
		return "", ""
	}
	i := 1
	for i < len(body) && (isAlpha(body[i]) || body[i] >= '0' && body[i] <= '9') {
		i++
	}
	return strings.ToLower(body[:i]), body[i:]
}

func isAlpha(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

// hrefAttr extracts a quoted href attribute value verbatim. The value is not
// validated or normalized; the platform schema carries it as-is.
func hrefAttr(attrs string) string {
	idx := indexFold(attrs, "href=")
	if idx < 0 {
		return ""
	}
	rest := attrs[idx+len("href="):]
	if rest == "" {
		return ""
	}
	if rest[0] == '"' || rest[0] == '\'' {
		quote := rest[0]
		if end := strings.IndexByte(rest[1:], quote); end >= 0 {
			return rest[1 : 1+end]
		}
		return rest[1:]
	}
	if end := strings.IndexAny(rest, " \t\n"); end >= 0 {
		return rest[:end]
	}
	return rest
}

// indexFold finds the first case-insensitive occurrence of sub in s. The
// search must not lowercase s up front: case mapping can change a rune's
// byte length, skewing offsets back into the original string.
func indexFold(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if strings.EqualFold(s[i:i+len(sub)], sub) {
			return i
		}
	}
	return -1
}

// Parser.

var blockTags = map[string]bool{
	"p": true, "h2": true, "h3": true, "h4": true,
	"ul": true, "ol": true, "li": true,
}

func isBlockTag(name string) bool {
	return blockTags[name]
}

func headingLevel(name string) int {
	switch name {
	case "h2":
		return 2
	case "h3", "h4":
		// the target schema supports two sub-levels only
		return 3
	default:
		return 0
	}
}

func inlineMark(t token) (document.Mark, bool) {
	switch t.name {
	case "strong":
		return document.Bold, true
	case "em":
		return document.Italic, true
	case "s":
		return document.Strikethrough, true
	case "code":
		return document.Code, true
	case "a":
		return document.Link(t.href), true
	}
	return document.Mark{}, false
}

type parser struct {
	toks []token
	i    int
	log  logger.Logger
}

func (p *parser) blocks() []document.Node {
	var nodes []document.Node
	for p.i < len(p.toks) {
		t := p.toks[p.i]
		switch {
		case t.kind == tokOpen && headingLevel(t.name) > 0:
			level := headingLevel(t.name)
			p.i++
			runs := edgeTrim(p.inline(t.name))
			if len(runs) > 0 {
				nodes = append(nodes, document.Heading(level, runs...))
			}
		case t.kind == tokOpen && t.name == "p":
			p.i++
			nodes = append(nodes, document.Paragraph(edgeTrim(p.inline("p"))...))
		case t.kind == tokOpen && (t.name == "ul" || t.name == "ol"):
			nodes = append(nodes, p.list(t.name))
		case t.kind == tokOpen && t.name == "li":
			// a list item without a list ancestor cannot be represented
			p.i++
			dropped := p.inline("li")
			p.degrade("list item outside a list dropped", "text", runsText(dropped))
		case t.kind == tokClose || t.kind == tokSelfClose:
			p.i++
		case t.kind == tokOpen && !isInline(t):
			// unknown tag: strip it, its text content flows through
			p.degrade("unknown tag stripped", "tag", t.name)
			p.i++
		default:
			// bare text or inline tags at the top level become a paragraph
			runs := edgeTrim(p.inline(""))
			if len(runs) > 0 {
				nodes = append(nodes, document.Paragraph(runs...))
			}
		}
	}
	return nodes
}

func isInline(t token) bool {
	_, ok := inlineMark(t)
	return ok
}

func (p *parser) list(name string) document.Node {
	kind := document.KindBulletList
	if name == "ol" {
		kind = document.KindOrderedList
	}
	p.i++
	var items []document.Node
	for p.i < len(p.toks) {
		t := p.toks[p.i]
		switch {
		case t.kind == tokClose && t.name == name:
			p.i++
			return document.Node{Kind: kind, Items: items}
		case t.kind == tokOpen && t.name == "li":
			p.i++
			items = append(items, document.Paragraph(edgeTrim(p.inline("li"))...))
		case t.kind == tokText && strings.TrimSpace(t.text) == "":
			p.i++
		case t.kind == tokOpen && isBlockTag(t.name) && t.name != "li":
			// a new block began before the list closed
			p.degrade("unterminated list", "tag", name)
			return document.Node{Kind: kind, Items: items}
		default:
			p.degrade("content outside list item dropped", "tag", name)
			p.i++
		}
	}
	p.degrade("unterminated list", "tag", name)
	return document.Node{Kind: kind, Items: items}
}

// inline consumes tokens until the close tag named by stop, maintaining a
// stack of open marks. Each text token becomes one run carrying the union of
// the marks active at that boundary, so nested tags collapse into a single
// run rather than one run per tag. stop == "" collects an implicit paragraph
// at the top level and ends at any block boundary.
func (p *parser) inline(stop string) []document.TextRun {
	var runs []document.TextRun
	var stack []document.Mark
	for p.i < len(p.toks) {
		t := p.toks[p.i]
		switch t.kind {
		case tokText:
			if t.text != "" {
				runs = append(runs, document.TextRun{Text: t.text, Marks: activeMarks(stack)})
			}
			p.i++
		case tokSelfClose:
			p.i++
		case tokOpen:
			if isBlockTag(t.name) {
				if stop != "" {
					p.degrade("unterminated tag", "tag", stop)
				}
				return runs
			}
			if m, ok := inlineMark(t); ok {
				stack = append(stack, m)
			} else {
				p.degrade("unknown tag stripped", "tag", t.name)
			}
			p.i++
		case tokClose:
			if t.name == stop {
				p.i++
				return runs
			}
			if isBlockTag(t.name) {
				return runs
			}
			if m, ok := inlineMark(t); ok {
				stack = popMark(stack, m.Type)
			} else {
				p.degrade("unknown tag stripped", "tag", t.name)
			}
			p.i++
		}
	}
	if stop != "" {
		p.degrade("unterminated tag", "tag", stop)
	}
	return runs
}

func (p *parser) degrade(msg string, args ...any) {
	p.log.Warn("markup: "+msg+", fragment degraded to plain text", args...)
}

// activeMarks snapshots the open-mark stack as a set: duplicate marks opened
// twice contribute once.
func activeMarks(stack []document.Mark) []document.Mark {
	if len(stack) == 0 {
		return nil
	}
	out := make([]document.Mark, 0, len(stack))
	for _, m := range stack {
		if !containsMark(out, m) {
			out = append(out, m)
		}
	}
	return out
}

func containsMark(marks []document.Mark, m document.Mark) bool {
	for _, have := range marks {
		if have == m {
			return true
		}
	}
	return false
}

// popMark removes the most recently opened mark of the given type, tolerating
// overlapping tags such as <strong>a<em>b</strong>c</em>.
func popMark(stack []document.Mark, mt document.MarkType) []document.Mark {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i].Type == mt {
			return append(stack[:i], stack[i+1:]...)
		}
	}
	return stack
}

// edgeTrim normalizes whitespace at the edges of a block: whitespace-only
// runs are dropped from both ends and the outermost runs lose their leading
// and trailing space. Interior whitespace, including a trailing space before
// a styled run, is preserved.
func edgeTrim(runs []document.TextRun) []document.TextRun {
	start, end := 0, len(runs)
	for start < end && strings.TrimSpace(runs[start].Text) == "" {
		start++
	}
	for end > start && strings.TrimSpace(runs[end-1].Text) == "" {
		end--
	}
	if start == end {
		return nil
	}
	out := make([]document.TextRun, end-start)
	copy(out, runs[start:end])
	out[0].Text = strings.TrimLeft(out[0].Text, " \t\r\n")
	last := len(out) - 1
	out[last].Text = strings.TrimRight(out[last].Text, " \t\r\n")
	return out
}

func runsText(runs []document.TextRun) string {
	var b strings.Builder
	for _, r := range runs {
		b.WriteString(r.Text)
	}
	return b.String()
}
