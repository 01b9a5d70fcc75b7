// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package document models the formatted text held by an editor pane: a list of
blocks, each a sequence of text runs carrying inline marks.

Documents are parsed from and serialized to HTML markup with
golang.org/x/net/html. Only the structure a rich-text editor produces is
kept; unknown elements are unwrapped and their text preserved.
*/
package document

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mark is a set of inline formatting flags.
type Mark uint8

// Inline marks, in the order they are nested when serialized.
const (
	Bold Mark = 1 << iota
	Italic
	Strike
	Code
)

// Has reports whether every flag of other is set in m.
func (m Mark) Has(other Mark) bool {
	return m&other == other
}

func (m Mark) String() string {
	names := make([]string, 0, 4)

	for _, mark := range markOrder {
		if m.Has(mark) {
			names = append(names, markTags[mark])
		}
	}

	return strings.Join(names, "+")
}

// Run is a stretch of text with uniform marks.
//
// A hard line break (<br>) is a run of its own with Break set and Text "\n",
// so it occupies one rune of [Document.Text]. Newlines in other runs only
// occur inside pre blocks.
type Run struct {
	Text  string
	Marks Mark
	Break bool
}

// Block is a paragraph-level element.
type Block struct {
	// Tag is one of p, h1 to h6, pre or li.
	Tag string
	// List is ul or ol for list items, empty otherwise.
	List string
	Runs []Run
}

// Text returns the block's text without formatting.
func (b Block) Text() string {
	var sb strings.Builder

	for _, run := range b.Runs {
		sb.WriteString(run.Text)
	}

	return sb.String()
}

// Document is a parsed formatted-content string.
type Document struct {
	Blocks []Block
}

// Text returns the text content of all blocks concatenated without separators.
// Selection offsets index into this string, counted in runes.
func (d *Document) Text() string {
	var sb strings.Builder

	for _, block := range d.Blocks {
		sb.WriteString(block.Text())
	}

	return sb.String()
}

// Len is the length of Text in runes.
func (d *Document) Len() int {
	return utf8.RuneCountInString(d.Text())
}

// IsEmpty reports whether the document has no visible text.
func (d *Document) IsEmpty() bool {
	return strings.IndexFunc(d.Text(), func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}

// IsEmpty reports whether the markup s holds no visible text,
// such as "" or the empty editor's "<p></p>".
func IsEmpty(s string) bool {
	if strings.TrimSpace(s) == "" {
		return true
	}

	doc, err := Parse(s)
	if err != nil {
		return false
	}

	return doc.IsEmpty()
}

// normalize merges adjacent runs with equal marks and drops empty runs.
func (d *Document) normalize() {
	for i := range d.Blocks {
		runs := d.Blocks[i].Runs[:0]

		for _, run := range d.Blocks[i].Runs {
			switch {
			case run.Text == "" && !run.Break:
				continue
			case run.Break:
				runs = append(runs, run)
			case len(runs) > 0 && !runs[len(runs)-1].Break && runs[len(runs)-1].Marks == run.Marks:
				runs[len(runs)-1].Text += run.Text
			default:
				runs = append(runs, run)
			}
		}

		d.Blocks[i].Runs = runs
	}
}
