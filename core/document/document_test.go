// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package document

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []Block
	}{
		{
			name:  "Empty editor",
			input: "<p></p>",
			want:  []Block{{Tag: "p"}},
		},
		{
			name:  "Nested marks",
			input: "<p>สวัสดี <strong>ครับ <em>ทุกคน</em></strong></p>",
			want: []Block{{Tag: "p", Runs: []Run{
				{Text: "สวัสดี "},
				{Text: "ครับ ", Marks: Bold},
				{Text: "ทุกคน", Marks: Bold | Italic},
			}}},
		},
		{
			name:  "Legacy tags and hard break",
			input: "<p><b>a</b><i>b</i><br>c</p>",
			want: []Block{{Tag: "p", Runs: []Run{
				{Text: "a", Marks: Bold},
				{Text: "b", Marks: Italic},
				{Text: "\n", Break: true},
				{Text: "c"},
			}}},
		},
		{
			name:  "Source newlines collapse",
			input: "<p>\n  Hello\n  <strong>big </strong> world\n</p>",
			want: []Block{{Tag: "p", Runs: []Run{
				{Text: "Hello "},
				{Text: "big ", Marks: Bold},
				{Text: "world"},
			}}},
		},
		{
			name:  "Pre keeps newlines",
			input: "<pre>a\n  b</pre>",
			want:  []Block{{Tag: "pre", Runs: []Run{{Text: "a\n  b"}}}},
		},
		{
			name:  "Div lines",
			input: "<div>one</div><div><br></div><div>two</div>",
			want: []Block{
				{Tag: "p", Runs: []Run{{Text: "one"}}},
				{Tag: "p", Runs: []Run{{Text: "\n", Break: true}}},
				{Tag: "p", Runs: []Run{{Text: "two"}}},
			},
		},
		{
			name:  "Text before a div",
			input: "one<div>two</div>",
			want: []Block{
				{Tag: "p", Runs: []Run{{Text: "one"}}},
				{Tag: "p", Runs: []Run{{Text: "two"}}},
			},
		},
		{
			name:  "Bare text becomes a paragraph",
			input: "hello <em>world</em>",
			want: []Block{{Tag: "p", Runs: []Run{
				{Text: "hello "},
				{Text: "world", Marks: Italic},
			}}},
		},
		{
			name:  "Lists and headings",
			input: "<h2>Title</h2>\n<ul><li><p>one</p></li><li><p>two</p></li></ul>",
			want: []Block{
				{Tag: "h2", Runs: []Run{{Text: "Title"}}},
				{Tag: "li", List: "ul", Runs: []Run{{Text: "one"}}},
				{Tag: "li", List: "ul", Runs: []Run{{Text: "two"}}},
			},
		},
		{
			name:  "Containers are unwrapped",
			input: `<div><blockquote><p><span class="x">quoted</span></p></blockquote></div><script>alert(1)</script>`,
			want:  []Block{{Tag: "p", Runs: []Run{{Text: "quoted"}}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := Parse(tt.input)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, doc.Blocks); diff != "" {
				t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}

func TestHTMLRoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"<p></p>",
		"<p>สวัสดี <strong>ครับ</strong></p>",
		"<p><strong><em>both</em></strong> plain</p><p>second</p>",
		"<ol><li><p>first</p></li><li><p>second</p></li></ol><p>after</p>",
		"<p>a<br/>b &amp; &lt;c&gt;</p>",
	}

	for _, input := range inputs {
		doc, err := Parse(input)
		require.NoError(t, err)

		assert.Equal(t, input, doc.HTML(), input)
	}
}

func TestEmptyDocumentHTML(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "<p></p>", (&Document{}).HTML())
}

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"":                         true,
		"   ":                      true,
		"<p></p>":                  true,
		"<p> <br> </p><p></p>":     true,
		"<p><strong></strong></p>": true,
		"<p>ก</p>":                 false,
		"plain":                    false,
	}

	for input, want := range tests {
		assert.Equal(t, want, IsEmpty(input), "IsEmpty(%q)", input)
	}
}

func TestMarkString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "strong+em", (Bold | Italic).String())
	assert.Empty(t, Mark(0).String())
}

func TestSanitize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: "<p></p>"},
		{input: `<p onclick="x()">สวัสดี <b class="a">ครับ</b></p>`, want: "<p>สวัสดี <strong>ครับ</strong></p>"},
		{input: `<script>alert(1)</script><p>ok</p>`, want: "<p>ok</p>"},
		{input: `<a href="javascript:x">link</a>`, want: "<p>link</p>"},
		{input: `<img src=x onerror=y>`, want: "<p></p>"},
		{input: "<p>Hello\nworld</p>", want: "<p>Hello world</p>"},
		{input: "<div>one</div><div>two</div>", want: "<p>one</p><p>two</p>"},
		{input: "one<div>two</div>", want: "<p>one</p><p>two</p>"},
		{input: "<div>one</div><div><br></div>", want: "<p>one</p><p><br/></p>"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.input), tt.input)
	}
}
