// Copyright 2025 - 2026, the Plae contributors
// SPDX-License-Identifier: AGPL-3.0-only

package routes

import (
	"fmt"
	"net/http"
)

// HTTPError carries the status code a handler wants for its failure.
//
// The error handling middleware catches it, sets the status and renders the
// error page. Err is shown to the user when it is an i18n.UserError.
type HTTPError struct {
	StatusCode int
	Err        error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %v", e.StatusCode, http.StatusText(e.StatusCode), e.Err)
}

func (e *HTTPError) Unwrap() error {
	return e.Err
}

// NewHTTPError wraps err with a status code.
func NewHTTPError(statusCode int, err error) error {
	return &HTTPError{StatusCode: statusCode, Err: err}
}
