// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/core/translator"
	"codeberg.org/plae/plae/i18n"
)

// APITranslate is the local translation service, see
// translator.ServeServiceRequest.
//
// Failures answer with a non-2xx status and a plain-text body, and return
// the error so the error handling middleware logs it. Status codes of 400
// and above keep the written body instead of the error page.
func APITranslate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var reply translator.ServiceReply

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, translator.MaxServiceRequestBody))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			reply = translator.ReplyError(http.StatusRequestEntityTooLarge, i18n.Tr(ctx, "The request body is too large."), err)
		} else {
			reply = translator.ReplyError(http.StatusBadRequest, i18n.Tr(ctx, "Could not read the request body."), err)
		}
	} else {
		reply = translator.ServeServiceRequest(ctx, translator.NewGemini(&config.Global), body)
	}

	w.Header().Set("Content-Type", reply.ContentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(reply.StatusCode)

	if _, err := w.Write(reply.Body); err != nil {
		log.Ctx(ctx).Err(err).Msg("Failed to write translation response")
	}

	return reply.Err
}
