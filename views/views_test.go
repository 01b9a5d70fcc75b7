// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package views

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"codeberg.org/plae/plae/core/translator"
	"codeberg.org/plae/plae/core/workspace"
	"codeberg.org/plae/plae/i18n"
)

func TestMain(m *testing.M) {
	// The shipped catalogues live at the module root.
	err := i18n.SetupFS(os.DirFS(".."))
	if err != nil {
		panic(err)
	}

	os.Exit(m.Run())
}

func render(t *testing.T, ctx context.Context, c templ.Component) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer

	require.NoError(t, c.Render(ctx, &buf))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)

	return doc
}

func TestButton(t *testing.T) {
	t.Parallel()

	ctx := templ.WithChildren(context.Background(), Text("<B>"))

	doc := render(t, ctx, Button(ButtonProps{
		Name:     "action",
		Value:    "bold:0",
		Variant:  Secondary,
		Disabled: true,
		Title:    `"Bold"`,
		Attrs:    templ.Attributes{"data-x": "1"},
	}))

	button := doc.Find("button")
	require.Equal(t, 1, button.Length())

	assert.Equal(t, "submit", button.AttrOr("type", ""))
	assert.Equal(t, "button button-secondary", button.AttrOr("class", ""))
	assert.Equal(t, "bold:0", button.AttrOr("value", ""))
	assert.Equal(t, `"Bold"`, button.AttrOr("title", ""))
	assert.Equal(t, "1", button.AttrOr("data-x", ""))
	assert.Equal(t, "<B>", button.Text())

	_, disabled := button.Attr("disabled")
	assert.True(t, disabled)
}

func TestCard(t *testing.T) {
	t.Parallel()

	content := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return CardContent().Render(templ.WithChildren(ctx, Text("body")), w)
	})

	doc := render(t, templ.WithChildren(context.Background(), content), Card("extra"))

	assert.Equal(t, "card extra", doc.Find("section").AttrOr("class", ""))
	assert.Equal(t, "body", doc.Find("section > div.card-content").Text())

	doc = render(t, context.Background(), Card(""))
	assert.Equal(t, "card", doc.Find("section").AttrOr("class", ""))
}

func TestButtonDefaults(t *testing.T) {
	t.Parallel()

	doc := render(t, context.Background(), Button(ButtonProps{Type: "button"}))
	button := doc.Find("button")

	assert.Equal(t, "button", button.AttrOr("type", ""))
	assert.Equal(t, "button button-primary", button.AttrOr("class", ""))

	_, named := button.Attr("name")
	assert.False(t, named)

	_, disabled := button.Attr("disabled")
	assert.False(t, disabled)
}

func TestTranslatorSingleField(t *testing.T) {
	t.Parallel()

	ws := workspace.New(nil, 1)
	ws.Field(0).Source.SetContent("<p>สวัสดี <strong>ครับ</strong></p>")
	ws.Field(0).Target.SetContent(`<p>Hello <script>alert(1)</script></p>`)

	doc := render(t, context.Background(), Translator(TranslatorData{Workspace: ws, FormToken: "token"}))

	assert.Equal(t, "token", doc.Find(`input[name="csrf"]`).AttrOr("value", ""))
	assert.Equal(t, 1, doc.Find("section.field").Length())
	assert.Equal(t, 0, doc.Find("h2.field-title").Length(), "a single field has no heading")

	assert.Equal(t, "<p>สวัสดี <strong>ครับ</strong></p>", doc.Find(`textarea[name="source"]`).Text())
	assert.Equal(t, 1, doc.Find(".editor[data-source] strong").Length())

	assert.Equal(t, `<p>Hello <script>alert(1)</script></p>`, doc.Find(`input[name="target"]`).AttrOr("value", ""),
		"the raw target is carried to the next submission")
	assert.Equal(t, 0, doc.Find(".editor-readonly script").Length())
	assert.Equal(t, "Hello ", doc.Find(".editor-readonly").Text())

	trigger := doc.Find(`button[value="translate"]`)
	assert.Equal(t, "Translate", trigger.Text())

	_, disabled := trigger.Attr("disabled")
	assert.False(t, disabled)

	assert.Equal(t, 1, doc.Find(`button[value="bold:0"]`).Length())
	assert.Equal(t, 1, doc.Find(`button[value="italic:0"]`).Length())
	assert.Equal(t, 0, doc.Find(".error").Length())
}

func TestTranslatorMultiField(t *testing.T) {
	t.Parallel()

	ws := workspace.New(nil, 3)

	doc := render(t, context.Background(), Translator(TranslatorData{Workspace: ws}))

	assert.Equal(t, 3, doc.Find("section.field").Length())
	assert.Equal(t, 3, doc.Find(`textarea[name="source"]`).Length())
	assert.Equal(t, 3, doc.Find(`input[name="target"]`).Length())
	assert.Equal(t, "Field 2", doc.Find("h2.field-title").Eq(1).Text())
	assert.Equal(t, 1, doc.Find(`button[value="italic:2"]`).Length())
}

func TestTranslatorError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ws := workspace.New(nil, 1)
	ws.Fail(ctx, i18n.NewUserError(ctx, "<b>broken</b>"))

	var buf bytes.Buffer

	require.NoError(t, Translator(TranslatorData{Workspace: ws}).Render(ctx, &buf))

	assert.Contains(t, buf.String(), "&lt;b&gt;broken&lt;/b&gt;")

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	assert.Equal(t, "<b>broken</b>", doc.Find(`.error[role="alert"]`).Text())
}

func TestTranslatorBusy(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})
	release := make(chan struct{})

	ws := workspace.New(translator.TranslatorFunc(func(context.Context, string) (string, error) {
		close(started)
		<-release

		return "<p>Hello</p>", nil
	}), 1)
	ws.Field(0).Source.SetContent("<p>สวัสดี</p>")

	done := make(chan error, 1)

	go func() { done <- ws.Translate(context.Background()) }()

	<-started

	doc := render(t, context.Background(), Translator(TranslatorData{Workspace: ws}))
	trigger := doc.Find(`button[value="translate"]`)

	_, disabled := trigger.Attr("disabled")
	assert.True(t, disabled)
	assert.Equal(t, "Translating...", trigger.Text())
	assert.Equal(t, "true", doc.Find("form").AttrOr("aria-busy", ""))

	close(release)
	require.NoError(t, <-done)

	doc = render(t, context.Background(), Translator(TranslatorData{Workspace: ws}))

	_, disabled = doc.Find(`button[value="translate"]`).Attr("disabled")
	assert.False(t, disabled)
	assert.Equal(t, "Hello", doc.Find(".editor-readonly").Text())
}

func TestTranslatorThai(t *testing.T) {
	t.Parallel()

	ctx := i18n.WithTag(context.Background(), language.Thai)

	doc := render(t, ctx, Translator(TranslatorData{Workspace: workspace.New(nil, 1)}))

	assert.Equal(t, "th", doc.Find("html").AttrOr("lang", ""))
	assert.Equal(t, "แปลภาษาไทยเป็นอังกฤษ", doc.Find("h1").Text())
	assert.Equal(t, "ภาษาไทย", doc.Find(".pane-header label").Text())
	assert.Equal(t, "แปลภาษา", doc.Find(`button[value="translate"]`).Text())
	assert.Equal(t, "กำลังแปล...", doc.Find(`button[value="translate"]`).AttrOr("data-busy-label", ""))
	assert.Equal(t, "true", doc.Find(`.languages a[hreflang="th"]`).AttrOr("aria-current", ""))
	assert.True(t, strings.HasSuffix(doc.Find("title").Text(), " - Plae"))
}

func TestError(t *testing.T) {
	t.Parallel()

	doc := render(t, context.Background(), Error(ErrorData{StatusCode: 404, RequestID: "abc"}))

	assert.Equal(t, "Page not found", doc.Find("h1").Text())
	assert.Equal(t, "Not Found", doc.Find(".status").Text())
	assert.Equal(t, "Request ID: abc", doc.Find(".request-id").Text())

	doc = render(t, context.Background(), Error(ErrorData{StatusCode: 500, Message: "boom"}))

	assert.Equal(t, "Something went wrong", doc.Find("h1").Text())
	assert.Equal(t, "boom", doc.Find(".error").Text())
	assert.Equal(t, 0, doc.Find(".request-id").Length())
}

func TestAbout(t *testing.T) {
	t.Parallel()

	doc := render(t, context.Background(), About(AboutData{
		Version: "v0.4.0",
		Backend: "gemini",
		Fields:  3,
		RepoURL: "https://codeberg.org/plae/plae",
	}))

	values := doc.Find("dl.about-list dd").Map(func(_ int, s *goquery.Selection) string { return s.Text() })

	assert.Contains(t, values, "v0.4.0")
	assert.Contains(t, values, "gemini")
	assert.Contains(t, values, "3")
	assert.Equal(t, "https://codeberg.org/plae/plae", doc.Find(`main a[href^="https://"]`).Text())
}
