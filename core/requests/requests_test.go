// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package requests

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/plae/plae/core/audit"
)

func TestPostJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "secret", r.Header.Get("X-Api-Key"))
		assert.Contains(t, r.Header.Get("User-Agent"), "Plae/")

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"originalHtml":"<p>ก</p>"}`, string(body))

		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	defer server.Close()

	resp, body, err := PostJSON(
		context.Background(),
		server.URL,
		map[string]string{"originalHtml": "<p>ก</p>"},
		http.Header{"X-Api-Key": {"secret"}},
		audit.ToService,
	)
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, resp.StatusCode, "non-OK statuses are not errors")
	assert.Equal(t, "short and stout", string(body))

	again, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, body, again)
}

func TestDoTransportFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, _, err := Do(context.Background(), RequestOptions{Method: http.MethodGet, URL: url, Destination: audit.ToService})

	require.Error(t, err)
}

func TestDoCanceledContext(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := Do(ctx, RequestOptions{Method: http.MethodGet, URL: server.URL, Destination: audit.ToService})

	require.Error(t, err)
	assert.True(t, IsContextCanceled(err))
}

func TestRedactURL(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodPost, "https://example.com/v1/models/m:generateContent?key=abc", nil)

	assert.Equal(t, "https://example.com/v1/models/m:generateContent", redactURL(req))
}
