// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package translator

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"codeberg.org/plae/plae/config"
	"codeberg.org/plae/plae/i18n"
)

var (
	// ErrMissingAPIKey means the generative-language API key is not configured.
	ErrMissingAPIKey = errors.New("gemini API key is not configured")

	// ErrUnexpectedResponse means the backend answered 2xx with a body
	// that lacks the translated content.
	ErrUnexpectedResponse = errors.New("unexpected response from translation backend")
)

// TransportError is a failure to exchange a request with a backend at all.
type TransportError struct {
	Backend config.BackendMode
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s backend unreachable: %v", e.Backend, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx answer from a backend.
type StatusError struct {
	Backend    config.BackendMode
	StatusCode int
	// Body is the raw response body.
	Body string
	// Message is the error message extracted from Body, if any.
	Message string
}

func (e *StatusError) Error() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s backend returned status %d", e.Backend, e.StatusCode)

	if detail := e.detail(); detail != "" {
		b.WriteString(": ")
		b.WriteString(detail)
	}

	return b.String()
}

func (e *StatusError) detail() string {
	if e.Message != "" {
		return e.Message
	}

	if body := strings.TrimSpace(e.Body); body != "" {
		return body
	}

	return http.StatusText(e.StatusCode)
}

// Describe turns err into one human-readable message in the locale of ctx.
// It returns "" for a nil error.
func Describe(ctx context.Context, err error) string {
	var (
		statusErr    *StatusError
		transportErr *TransportError
		userErr      *i18n.UserError
	)

	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMissingAPIKey):
		return i18n.Tr(ctx, "The Gemini API key is not configured. Set PLAE_GEMINI_API_KEY and restart Plae.")
	case errors.As(err, &statusErr) && statusErr.Backend == config.ServiceBackend:
		return i18n.Tr(ctx, "Translation failed: {{.Body}}", "Body", statusErr.Body)
	case errors.As(err, &statusErr):
		return i18n.Tr(ctx, "The translation API returned status {{.Status}}: {{.Message}}",
			"Status", statusErr.StatusCode,
			"Message", statusErr.detail())
	case errors.As(err, &transportErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return i18n.Tr(ctx, "The translation backend did not answer in time.")
		}

		return i18n.Tr(ctx, "Could not reach the translation backend.")
	case errors.Is(err, ErrUnexpectedResponse):
		return i18n.Tr(ctx, "The translation backend returned an unexpected response.")
	case errors.As(err, &userErr):
		return userErr.Error()
	default:
		return i18n.Tr(ctx, "An unknown error occurred.")
	}
}

// HTTPStatus maps err to the status the translation service answers with.
func HTTPStatus(err error) int {
	var (
		transportErr *TransportError
		statusErr    *StatusError
	)

	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrMissingAPIKey):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.As(err, &transportErr), errors.As(err, &statusErr), errors.Is(err, ErrUnexpectedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
