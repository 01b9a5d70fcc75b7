// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"strings"
)

// directoryPrefixes are served as directories and keep their trailing slash.
var directoryPrefixes = []string{"/css/", "/js/", "/debug/pprof/"}

// NormalizeURL redirects paths with a trailing slash (except root and
// directoryPrefixes) to the path without it.
func NormalizeURL(w http.ResponseWriter, r *http.Request, next http.Handler) {
	if hasTrailingSlash(r) {
		removeTrailingSlash(w, r)

		return
	}

	next.ServeHTTP(w, r)
}

// hasTrailingSlash checks if a request path has a trailing slash (except root).
func hasTrailingSlash(r *http.Request) bool {
	path := r.URL.Path
	if path == "/" || !strings.HasSuffix(path, "/") {
		return false
	}

	for _, prefix := range directoryPrefixes {
		if path == prefix {
			return false
		}
	}

	return true
}

// removeTrailingSlash removes trailing slashes and redirects.
//
// 308 keeps the method and body of form submissions.
func removeTrailingSlash(w http.ResponseWriter, r *http.Request) {
	target := *r.URL
	target.Path = strings.TrimRight(target.Path, "/")
	target.RawPath = ""

	// "//evil.example" would be read as a scheme-relative URL
	if target.Path == "" || strings.HasPrefix(target.Path, "//") {
		target.Path = "/"
	}

	http.Redirect(w, r, target.RequestURI(), http.StatusPermanentRedirect)
}
