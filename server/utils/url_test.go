// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package utils_test

import (
	"net/http"
	"net/http/httptest"
	"net/netip"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"codeberg.org/plae/plae/server/utils"
)

func TestParseURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		urlStr   string
		urlType  string
		wantErr  bool
		expected string
	}{
		{"Valid URL", "https://example.com", "Test", false, "https://example.com"},
		{"Service endpoint", "http://localhost:8080/api/translate", "Service", false, "http://localhost:8080/api/translate"},
		{"Missing scheme", "example.com", "Test", true, ""},
		{"Missing host", "https://", "Test", true, ""},
		{"Trailing slash", "https://example.com/", "Test", false, "https://example.com"},
		{"Path with trailing slash", "https://generativelanguage.googleapis.com/v1beta/", "Gemini", false, "https://generativelanguage.googleapis.com/v1beta"},
		{"Empty URL", "", "Test", true, ""},
		{"URL with query params", "https://example.com/path?q=test", "Test", false, "https://example.com/path?q=test"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := utils.ParseURL(tt.urlStr, tt.urlType)
			if (err != nil) != tt.wantErr {
				t.Errorf("utils.ParseURL() error = %v, wantErr %v", err, tt.wantErr)

				return
			}

			if !tt.wantErr && got.String() != tt.expected {
				t.Errorf("utils.ParseURL() got = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestFormHelpers(t *testing.T) {
	t.Parallel()

	form := url.Values{
		"source": {"<p>ก</p>", "", "<p>ค</p>"},
		"field":  {"2"},
		"from":   {"x"},
	}

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	assert.Equal(t, []string{"<p>ก</p>", "", "<p>ค</p>"}, utils.GetFormValues(r, "source"))
	assert.Equal(t, 2, utils.GetFormInt(r, "field", 0))
	assert.Equal(t, 7, utils.GetFormInt(r, "from", 7), "malformed falls back")
	assert.Equal(t, 3, utils.GetFormInt(r, "to", 3), "missing falls back")
	assert.Equal(t, "translate", utils.GetFormValue(r, "action", "translate"))
}

func TestIsConnectionSecure(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.2:1234"
	assert.False(t, utils.IsConnectionSecure(r, nil))

	r.Header.Set("X-Forwarded-Proto", "https")
	assert.True(t, utils.IsConnectionSecure(r, nil))

	r.RemoteAddr = "203.0.113.9:1234"
	assert.False(t, utils.IsConnectionSecure(r, nil), "public proxies are not trusted")
	assert.True(t, utils.IsConnectionSecure(r, []netip.Prefix{netip.MustParsePrefix("203.0.113.0/24")}))
}
