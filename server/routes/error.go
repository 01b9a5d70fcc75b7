// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/i18n"
	"codeberg.org/plae/plae/server/request_context"
	"codeberg.org/plae/plae/views"
)

// ErrorPage renders an error page for the request's RequestError and StatusCode.
func ErrorPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	rc := request_context.FromRequest(r)

	pageData := views.ErrorData{
		StatusCode: rc.StatusCode,
		Message:    errorMessage(rc.RequestError),
		RequestID:  rc.RequestID,
	}

	if err := views.Error(pageData).Render(r.Context(), w); err != nil {
		log.Err(err).Msg("Failed to render the error page")
	}
}

// errorMessage picks what the error page may reveal about err.
func errorMessage(err error) string {
	var userErr *i18n.UserError

	switch {
	case err == nil:
		return ""
	case errors.As(err, &userErr):
		return userErr.Error()
	case config.Global.Development.InDevelopment:
		return err.Error()
	default:
		return ""
	}
}
