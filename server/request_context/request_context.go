// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

/*
Package request_context provides per-request state management for HTTP handlers.

This package is separate because Go disallows a cyclic import graph.
*/
package request_context

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/text/language"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/core/authenticated"
	"codeberg.org/plae/plae/core/idgen"
	"codeberg.org/plae/plae/i18n"
)

const (
	// FormNonceCookie binds form tokens to one browser.
	FormNonceCookie = "plae-form"

	formNonceMaxAge = 30 * 24 * time.Hour
)

// RequestContext carries request-scoped data through the middleware chain.
type RequestContext struct {
	// RequestID is an identifier for tracing requests.
	RequestID string

	// Holds any critical error encountered during request processing.
	//
	// Populated by middleware.CatchError when handlers return errors, which
	// replaces the normal response with an error page.
	RequestError error

	// HTTP status code to be sent in the response. Defaults to 200 OK.
	StatusCode int

	// Lang is the UI language chosen for this request.
	Lang language.Tag

	// FormNonce is the value of FormNonceCookie, set by the middleware.
	FormNonce string
}

type requestContextKeyType struct{}

var requestContextKey = requestContextKeyType{}

// WithRequestContext initializes a new request context and attaches it to
// the parent context, together with the i18n language tag.
//
// This is called once per request, first in the middleware chain.
func WithRequestContext(ctx context.Context, r *http.Request) context.Context {
	ctx = i18n.WithRequest(ctx, r)

	rc := RequestContext{
		RequestID:  idgen.Make(),
		StatusCode: http.StatusOK,
		Lang:       i18n.TagFrom(ctx),
	}

	if c, err := r.Cookie(FormNonceCookie); err == nil {
		rc.FormNonce = c.Value
	}

	return context.WithValue(ctx, requestContextKey, &rc)
}

// FromContext extracts the RequestContext from a context, always returning
// a valid pointer.
//
// If no context is found, returns a zero-value instance.
func FromContext(ctx context.Context) *RequestContext {
	if ctx != nil {
		if rc, ok := ctx.Value(requestContextKey).(*RequestContext); ok {
			return rc
		}
	}

	return &RequestContext{}
}

// FromRequest is a convenience wrapper for extracting RequestContext
// directly from HTTP requests.
func FromRequest(r *http.Request) *RequestContext {
	return FromContext(r.Context())
}

// FormToken signs a fresh form token bound to the request's nonce.
func (rc *RequestContext) FormToken() string {
	return config.PasetoValidator.SignFormToken(rc.FormNonce)
}

// VerifyFormToken checks a submitted form token against the request's nonce.
func (rc *RequestContext) VerifyFormToken(token string) error {
	return config.PasetoValidator.VerifyFormToken(token, rc.FormNonce)
}

// EnsureFormNonce makes sure the browser holds a nonce cookie, issuing one if needed.
func (rc *RequestContext) EnsureFormNonce(w http.ResponseWriter, secure bool) {
	if rc.FormNonce != "" {
		return
	}

	rc.FormNonce = authenticated.NewNonce()

	http.SetCookie(w, &http.Cookie{
		Name:     FormNonceCookie,
		Value:    rc.FormNonce,
		Path:     "/",
		MaxAge:   int(formNonceMaxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}
