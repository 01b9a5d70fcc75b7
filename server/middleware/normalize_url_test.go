// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name             string
		method           string
		requestURL       string
		expectedStatus   int
		expectedLocation string
	}{
		{
			name:           "Root path should not redirect",
			requestURL:     "/",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Path without trailing slash should not redirect",
			requestURL:     "/about",
			expectedStatus: http.StatusOK,
		},
		{
			name:             "Path with trailing slash should redirect",
			requestURL:       "/about/",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/about",
		},
		{
			name:             "Form submissions keep their method",
			method:           http.MethodPost,
			requestURL:       "/api/translate/",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/api/translate",
		},
		{
			name:             "Query parameters should be preserved",
			requestURL:       "/about/?lang=th",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/about?lang=th",
		},
		{
			name:             "Repeated slashes are not turned into a scheme-relative URL",
			requestURL:       "//evil.example/",
			expectedStatus:   http.StatusPermanentRedirect,
			expectedLocation: "/",
		},
		{
			name:           "Asset directories keep their slash",
			requestURL:     "/css/",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			method := tt.method
			if method == "" {
				method = http.MethodGet
			}

			req := httptest.NewRequest(method, tt.requestURL, strings.NewReader(""))
			w := httptest.NewRecorder()

			Wrap(NormalizeURL, next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedLocation, w.Header().Get("Location"))
		})
	}
}

func TestHasTrailingSlash(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path     string
		expected bool
	}{
		{"/", false},
		{"/about", false},
		{"/about/", true},
		{"/api/translate/", true},
		{"/js/", false},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, tt.path, nil)

		assert.Equal(t, tt.expected, hasTrailingSlash(req), tt.path)
	}
}
