// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/core/document"
	"codeberg.org/plae/plae/core/translator"
	"codeberg.org/plae/plae/core/workspace"
	"codeberg.org/plae/plae/i18n"
	"codeberg.org/plae/plae/server/request_context"
	"codeberg.org/plae/plae/server/utils"
	"codeberg.org/plae/plae/views"
)

// IndexPage renders an idle translator with empty fields.
func IndexPage(w http.ResponseWriter, r *http.Request) error {
	ws := newWorkspace()

	return renderTranslator(w, r, ws)
}

// IndexAction handles a submission of the translator form.
//
// The workspace is rebuilt from the submitted source and target fields, the
// requested action runs on it, and the page is rendered again.
func IndexAction(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	rc := request_context.FromRequest(r)

	if err := r.ParseForm(); err != nil {
		return NewHTTPError(http.StatusBadRequest, err)
	}

	if err := rc.VerifyFormToken(r.PostFormValue(views.FieldCSRF)); err != nil {
		log.Ctx(ctx).Debug().Err(err).Msg("Rejected form submission")

		return NewHTTPError(http.StatusForbidden,
			i18n.NewUserError(ctx, "This form has expired. Reload the page and try again."))
	}

	ws := workspaceFromForm(r)
	action, field := parseAction(r.PostFormValue(views.FieldAction))

	switch action {
	case views.ActionTranslate:
		// the failure is kept in the workspace status
		_ = ws.Translate(ctx)
	case views.ActionBold, views.ActionItalic:
		mark := document.Bold
		if action == views.ActionItalic {
			mark = document.Italic
		}

		if field < 0 || field >= ws.Len() {
			return NewHTTPError(http.StatusBadRequest, i18n.NewUserError(ctx, "The form refers to a field that does not exist."))
		}

		sel := selectionFromForm(r, ws.Field(field).Source.GetContent())
		if _, err := ws.Format(field, mark, sel); err != nil {
			ws.Fail(ctx, err)
		}
	default:
		return NewHTTPError(http.StatusBadRequest, i18n.NewUserError(ctx, "Unknown form action."))
	}

	return renderTranslator(w, r, ws)
}

func renderTranslator(w http.ResponseWriter, r *http.Request, ws *workspace.Workspace) error {
	// the page embeds a form token bound to this browser
	w.Header().Set("Cache-Control", "no-store")

	pageData := views.TranslatorData{
		Workspace: ws,
		FormToken: request_context.FromRequest(r).FormToken(),
	}

	return views.Translator(pageData).Render(r.Context(), w)
}

func newWorkspace() *workspace.Workspace {
	return workspace.New(translator.New(&config.Global), config.Global.Frontend.Fields)
}

// workspaceFromForm restores the editor contents carried by the form.
// Submitted fields beyond the configured count are ignored.
func workspaceFromForm(r *http.Request) *workspace.Workspace {
	ws := newWorkspace()

	sources := utils.GetFormValues(r, views.FieldSource)
	targets := utils.GetFormValues(r, views.FieldTarget)

	for i, pair := range ws.Fields() {
		if i < len(sources) {
			// textareas submit CRLF line breaks
			pair.Source.SetContent(strings.ReplaceAll(sources[i], "\r\n", "\n"))
		}

		if i < len(targets) {
			pair.Target.SetContent(targets[i])
		}
	}

	return ws
}

// parseAction splits "bold:2" into the action and the zero-based field index.
// Actions without an index apply to field 0.
func parseAction(raw string) (string, int) {
	action, index, found := strings.Cut(raw, ":")
	if !found {
		return action, 0
	}

	field, err := strconv.Atoi(index)
	if err != nil {
		return action, -1
	}

	return action, field
}

// selectionFromForm reads the rune offsets set by editor.js. Without them the
// whole text of content is selected.
func selectionFromForm(r *http.Request, content string) document.Selection {
	from := utils.GetFormInt(r, views.FieldFrom, -1)
	to := utils.GetFormInt(r, views.FieldTo, -1)

	if from >= 0 && to >= 0 {
		return document.Selection{From: from, To: to}
	}

	doc, err := document.Parse(content)
	if err != nil {
		return document.Selection{}
	}

	return document.Selection{From: 0, To: doc.Len()}
}
