// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/plae/plae/config"
)

func TestSetResponseHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path         string
		cacheControl string
	}{
		{path: "/", cacheControl: "private, no-cache"},
		{path: "/css/style.css", cacheControl: "max-age=604800"},
		{path: "/js/editor.js", cacheControl: "max-age=604800"},
		{path: "/robots.txt", cacheControl: "max-age=86400"},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)
		rr := httptest.NewRecorder()

		Wrap(SetResponseHeaders, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})).ServeHTTP(rr, req)

		headers := rr.Header()
		assert.Equal(t, tt.cacheControl, headers.Get("Cache-Control"), tt.path)
		assert.Equal(t, config.BuildVersion, headers.Get("Plae-Version"))
		assert.Equal(t, "nosniff", headers.Get("X-Content-Type-Options"))
		assert.Contains(t, headers.Get("Content-Security-Policy"), "script-src 'self';")
		assert.Contains(t, headers.Get("Content-Security-Policy"), "frame-ancestors 'none'")
	}
}

func TestCompress(t *testing.T) {
	t.Parallel()

	body := make([]byte, 4096)
	for i := range body {
		body[i] = 'a'
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")

	rr := httptest.NewRecorder()
	Wrap(Compress, next).ServeHTTP(rr, req)

	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))
	assert.Less(t, rr.Body.Len(), len(body))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rr = httptest.NewRecorder()
	Wrap(Compress, next).ServeHTTP(rr, req)

	assert.Empty(t, rr.Header().Get("Content-Encoding"))
	assert.Equal(t, len(body), rr.Body.Len())
}
