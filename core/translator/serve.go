// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/tidwall/gjson"

	"codeberg.org/plae/plae/i18n"
)

// MaxServiceRequestBody bounds the body accepted by the local translation service.
const MaxServiceRequestBody = 1 << 20

var (
	// ErrRequestTooLarge means a service request body exceeds MaxServiceRequestBody.
	ErrRequestTooLarge = errors.New("request body is too large")

	errInvalidServiceRequest = errors.New(`request body must be JSON with a string "originalHtml"`)
	errEmptyOriginalHTML     = errors.New("originalHtml is empty")
)

// ServiceReply is the answer of the local translation service to one request.
// Failed requests carry Err and a plain-text Body that the translator page
// shows after "Translation failed: ".
type ServiceReply struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Err         error
}

// ServeServiceRequest answers one local translation service request:
// {"originalHtml": "..."} in, {"translatedHtml": "..."} out.
func ServeServiceRequest(ctx context.Context, t Translator, body []byte) ServiceReply {
	if len(body) > MaxServiceRequestBody {
		return ReplyError(http.StatusRequestEntityTooLarge, i18n.Tr(ctx, "The request body is too large."), ErrRequestTooLarge)
	}

	original := gjson.GetBytes(body, "originalHtml")
	if !gjson.ValidBytes(body) || original.Type != gjson.String {
		return ReplyError(http.StatusBadRequest,
			i18n.Tr(ctx, `The request body must be JSON with a string "originalHtml".`), errInvalidServiceRequest)
	}

	if original.String() == "" {
		return ReplyError(http.StatusBadRequest, i18n.Tr(ctx, "There is nothing to translate."), errEmptyOriginalHTML)
	}

	translated, err := t.Translate(ctx, original.String())
	if err != nil {
		return ReplyError(HTTPStatus(err), Describe(ctx, err), err)
	}

	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(ServiceResponse{TranslatedHTML: translated}); err != nil {
		return ReplyError(http.StatusInternalServerError, err.Error(), err)
	}

	return ServiceReply{
		StatusCode:  http.StatusOK,
		ContentType: "application/json",
		Body:        bytes.TrimSuffix(buf.Bytes(), []byte("\n")),
	}
}

// ReplyError is a failed ServiceReply with a plain-text message.
func ReplyError(statusCode int, message string, err error) ServiceReply {
	return ServiceReply{
		StatusCode:  statusCode,
		ContentType: "text/plain; charset=utf-8",
		Body:        []byte(message),
		Err:         err,
	}
}
