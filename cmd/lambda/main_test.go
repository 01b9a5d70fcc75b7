// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/plae/plae/core/translator"
)

func newRequestEvent(t *testing.T, body string, base64Encoded bool) json.RawMessage {
	t.Helper()

	event, err := json.Marshal(events.APIGatewayV2HTTPRequest{
		RawPath:         "/api/translate",
		Body:            body,
		IsBase64Encoded: base64Encoded,
	})
	require.NoError(t, err)

	return event
}

func TestHandleRequestWarmup(t *testing.T) {
	t.Parallel()

	h := &handler{translator: translator.TranslatorFunc(func(context.Context, string) (string, error) {
		t.Error("warmup must not translate")

		return "", nil
	})}

	out, err := h.handleRequest(context.Background(), json.RawMessage(`{"warmup":true}`))

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"status": "warm"}, out)
}

func TestHandleRequest(t *testing.T) {
	t.Parallel()

	upstreamErr := &translator.StatusError{StatusCode: http.StatusTooManyRequests, Message: "quota"}

	tests := []struct {
		name   string
		body   string
		base64 bool
		result string
		err    error
		status int
		want   string
	}{
		{
			name:   "Translated",
			body:   `{"originalHtml":"<p><strong>สวัสดี</strong></p>"}`,
			result: "<p><strong>Hello</strong></p>",
			status: http.StatusOK,
			want:   `{"translatedHtml":"<p><strong>Hello</strong></p>"}`,
		},
		{
			name:   "Base64 body",
			body:   base64.StdEncoding.EncodeToString([]byte(`{"originalHtml":"<p>สวัสดี</p>"}`)),
			base64: true,
			result: "<p>Hello</p>",
			status: http.StatusOK,
			want:   `{"translatedHtml":"<p>Hello</p>"}`,
		},
		{
			name:   "Invalid base64",
			body:   "not base64!",
			base64: true,
			status: http.StatusBadRequest,
			want:   "Could not read the request body.",
		},
		{
			name:   "Not JSON",
			body:   "originalHtml",
			status: http.StatusBadRequest,
			want:   `The request body must be JSON with a string "originalHtml".`,
		},
		{
			name:   "Empty",
			body:   `{"originalHtml":""}`,
			status: http.StatusBadRequest,
			want:   "There is nothing to translate.",
		},
		{
			name:   "Missing key",
			body:   `{"originalHtml":"<p>ก</p>"}`,
			err:    translator.ErrMissingAPIKey,
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "Upstream status",
			body:   `{"originalHtml":"<p>ก</p>"}`,
			err:    upstreamErr,
			status: http.StatusBadGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := &handler{translator: translator.TranslatorFunc(func(_ context.Context, html string) (string, error) {
				assert.Contains(t, html, "<p>")

				return tt.result, tt.err
			})}

			out, err := h.handleRequest(context.Background(), newRequestEvent(t, tt.body, tt.base64))
			require.NoError(t, err)

			resp, ok := out.(events.APIGatewayV2HTTPResponse)
			require.True(t, ok)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.Equal(t, "no-store", resp.Headers["Cache-Control"])

			if tt.want != "" {
				assert.Equal(t, tt.want, resp.Body)
			}

			if tt.err != nil {
				assert.Equal(t, translator.Describe(context.Background(), tt.err), resp.Body)
			}
		})
	}
}

func TestHandleRequestInvalidEvent(t *testing.T) {
	t.Parallel()

	h := &handler{translator: translator.TranslatorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("unreachable")
	})}

	_, err := h.handleRequest(context.Background(), json.RawMessage(`[]`))

	assert.Error(t, err)
}
