// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package document

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	markOrder = []Mark{Bold, Italic, Strike, Code}

	markTags = map[Mark]string{
		Bold:   "strong",
		Italic: "em",
		Strike: "s",
		Code:   "code",
	}

	marksByTag = map[string]Mark{
		"strong": Bold,
		"b":      Bold,
		"em":     Italic,
		"i":      Italic,
		"s":      Strike,
		"del":    Strike,
		"strike": Strike,
		"code":   Code,
	}

	leafBlocks = map[string]bool{
		"p": true, "pre": true, "li": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	}

	// containers are unwrapped, but their content never shares a block with
	// the text around them
	containerBlocks = map[string]bool{
		"div": true, "blockquote": true, "section": true, "article": true,
		"aside": true, "header": true, "footer": true, "main": true, "nav": true,
		"figure": true, "figcaption": true, "address": true, "dl": true, "dt": true, "dd": true,
		"table": true, "tr": true, "td": true, "th": true,
	}
)

// bodyContext parses fragments the way a browser parses innerHTML of <body>.
var bodyContext = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}

// Parse reads an HTML fragment into a Document.
//
// Paragraphs, headings, pre and list items become blocks. Containers such as
// div and blockquote are unwrapped, each starting a new paragraph. Text outside
// any block is collected into an implicit paragraph. Whitespace collapses the
// way a browser renders it, except inside pre.
func Parse(s string) (*Document, error) {
	nodes, err := html.ParseFragment(strings.NewReader(s), bodyContext)
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	var p parser

	for _, n := range nodes {
		p.walk(n, 0)
	}

	p.closeBlock()

	return &Document{Blocks: p.blocks}, nil
}

type parser struct {
	blocks  []Block
	current *Block
	list    string
}

func (p *parser) walk(n *html.Node, marks Mark) {
	switch n.Type {
	case html.TextNode:
		p.appendText(n.Data, marks)

		return
	case html.ElementNode:
	default:
		p.walkChildren(n, marks)

		return
	}

	switch tag := n.Data; {
	case tag == "script" || tag == "style":
	case tag == "br":
		p.appendBreak(marks)
	case tag == "ul" || tag == "ol":
		p.closeBlock()

		outer := p.list
		p.list = tag
		p.walkChildren(n, marks)
		p.closeBlock()
		p.list = outer
	case tag == "p" && p.current != nil && p.current.Tag == "li" && len(p.current.Runs) == 0:
		// <li><p>...</p></li> as written by rich-text editors
		p.walkChildren(n, marks)
	case leafBlocks[tag]:
		p.closeBlock()

		block := Block{Tag: tag}
		if tag == "li" {
			block.List = p.list
		}

		p.current = &block
		p.walkChildren(n, marks)
		p.closeBlock()
	case containerBlocks[tag] && (p.current == nil || p.current.Tag != "li"):
		p.closeBlock()
		p.walkChildren(n, marks)
		p.closeBlock()
	default:
		p.walkChildren(n, marks|marksByTag[tag])
	}
}

func (p *parser) walkChildren(n *html.Node, marks Mark) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		p.walk(c, marks)
	}
}

func (p *parser) appendText(text string, marks Mark) {
	if p.current == nil || p.current.Tag != "pre" {
		text = collapseSpace(text)
	}

	if p.current == nil {
		// whitespace between blocks is formatting, not content
		if strings.TrimSpace(text) == "" {
			return
		}

		p.current = &Block{Tag: "p"}
	}

	if p.current.Tag != "pre" && p.atLineStart() {
		text = strings.TrimPrefix(text, " ")
	}

	p.current.Runs = append(p.current.Runs, Run{Text: text, Marks: marks})
}

func (p *parser) appendBreak(marks Mark) {
	if p.current == nil {
		p.current = &Block{Tag: "p"}
	}

	p.current.Runs = append(p.current.Runs, Run{Text: "\n", Marks: marks, Break: true})
}

// atLineStart reports whether a collapsed space appended now would be invisible.
func (p *parser) atLineStart() bool {
	for i := len(p.current.Runs) - 1; i >= 0; i-- {
		run := p.current.Runs[i]

		switch {
		case run.Break:
			return true
		case run.Text != "":
			return strings.HasSuffix(run.Text, " ")
		}
	}

	return true
}

func (p *parser) closeBlock() {
	if p.current == nil {
		return
	}

	if p.current.Tag != "pre" {
		trimTrailingSpace(p.current.Runs)
	}

	doc := Document{Blocks: []Block{*p.current}}
	doc.normalize()

	p.blocks = append(p.blocks, doc.Blocks[0])
	p.current = nil
}

// collapseSpace replaces every run of HTML whitespace with a single space.
func collapseSpace(s string) string {
	var sb strings.Builder

	sb.Grow(len(s))

	space := false

	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true

			continue
		}

		if space {
			sb.WriteByte(' ')

			space = false
		}

		sb.WriteRune(r)
	}

	if space {
		sb.WriteByte(' ')
	}

	return sb.String()
}

// trimTrailingSpace drops the collapsed space ending a line, which a browser never renders.
func trimTrailingSpace(runs []Run) {
	for i := len(runs) - 1; i >= 0; i-- {
		if runs[i].Break {
			continue
		}

		runs[i].Text = strings.TrimSuffix(runs[i].Text, " ")
		if runs[i].Text != "" {
			return
		}
	}
}

// HTML serializes the document. An empty document renders as "<p></p>".
func (d *Document) HTML() string {
	if len(d.Blocks) == 0 {
		return "<p></p>"
	}

	var sb strings.Builder

	for _, n := range d.nodes() {
		// strings.Builder never fails
		_ = html.Render(&sb, n)
	}

	return sb.String()
}

// Sanitize reduces arbitrary markup to the elements a Document can hold,
// dropping attributes, scripts and unknown tags. Unparsable input is escaped.
func Sanitize(s string) string {
	doc, err := Parse(s)
	if err != nil {
		return "<p>" + html.EscapeString(s) + "</p>"
	}

	return doc.HTML()
}

func (d *Document) nodes() []*html.Node {
	var (
		out  []*html.Node
		list *html.Node
	)

	for _, block := range d.Blocks {
		if block.Tag != "li" || block.List == "" {
			list = nil

			out = append(out, inlineNodes(element(block.Tag), block.Runs))

			continue
		}

		if list == nil || list.Data != block.List {
			list = element(block.List)
			out = append(out, list)
		}

		item := element("li")
		item.AppendChild(inlineNodes(element("p"), block.Runs))
		list.AppendChild(item)
	}

	return out
}

// inlineNodes appends the runs to parent, wrapping each in its mark elements.
func inlineNodes(parent *html.Node, runs []Run) *html.Node {
	for _, run := range runs {
		target := parent

		if run.Break {
			parent.AppendChild(element("br"))

			continue
		}

		for _, mark := range markOrder {
			if run.Marks.Has(mark) {
				wrapper := element(markTags[mark])
				target.AppendChild(wrapper)
				target = wrapper
			}
		}

		target.AppendChild(&html.Node{Type: html.TextNode, Data: run.Text})
	}

	return parent
}

func element(tag string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
}
