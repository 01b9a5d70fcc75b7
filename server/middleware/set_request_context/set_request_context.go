// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package set_request_context

import (
	"net/http"
	"strings"
	"time"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/i18n"
	"codeberg.org/plae/plae/server/request_context"
	"codeberg.org/plae/plae/server/utils"
)

const langCookieMaxAge = 365 * 24 * time.Hour

// WithRequestContext is a middleware that attaches a RequestContext to each
// HTTP request and makes sure the browser holds a form nonce cookie.
//
// A lang query parameter is remembered in i18n.LangCookie.
func WithRequestContext(w http.ResponseWriter, r *http.Request, next http.Handler) {
	r = r.WithContext(request_context.WithRequestContext(r.Context(), r))

	rc := request_context.FromRequest(r)
	secure := utils.IsConnectionSecure(r, config.Global.TrustedProxies())

	rc.EnsureFormNonce(w, secure)

	if q := r.URL.Query().Get(i18n.LangParam); q != "" {
		rememberLanguage(w, rc, strings.EqualFold(q, "auto"), secure)
	}

	next.ServeHTTP(w, r)
}

// rememberLanguage stores the chosen UI language, or forgets it for "auto".
func rememberLanguage(w http.ResponseWriter, rc *request_context.RequestContext, auto, secure bool) {
	cookie := &http.Cookie{
		Name:     i18n.LangCookie,
		Value:    rc.Lang.String(),
		Path:     "/",
		MaxAge:   int(langCookieMaxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	if auto {
		cookie.Value = ""
		cookie.MaxAge = -1
	}

	http.SetCookie(w, cookie)
}
